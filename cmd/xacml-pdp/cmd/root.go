// Package cmd provides the CLI commands for the XACML PDP.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticeauth/xacml-pdp/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "xacml-pdp",
	Short: "xacml-pdp - a XACML 3.0 Policy Decision Point",
	Long: `xacml-pdp evaluates XACML 3.0 access requests against a policy tree.

It implements the core reference-architecture engine: target/rule/policy/
policy-set evaluation, combining algorithms, obligations and advice, and
policy reference resolution. It is a library and a local testing CLI, not
a network service -- wire-protocol parsing (XACML XML, the JSON/REST
profile) and transport are left to an embedding application.

Configuration:
  Config is loaded from xacml-pdp.yaml in the current directory,
  $HOME/.xacml-pdp/, or /etc/xacml-pdp/.

  Environment variables can override config values with the XACML_PDP_ prefix.
  Example: XACML_PDP_SERVER_HTTP_ADDR=:9443

Commands:
  evaluate    Evaluate one request document against a policy file
  validate    Static-link a policy set and report reference/depth errors
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./xacml-pdp.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
