// Package config provides configuration loading for the XACML PDP.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for xacml-pdp.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, which Viper's built-in SetConfigName
// would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("xacml-pdp")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: XACML_PDP_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("XACML_PDP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a xacml-pdp config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".xacml-pdp"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "xacml-pdp"))
		}
	} else {
		paths = append(paths, "/etc/xacml-pdp")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for xacml-pdp.yaml
// or .yml. Returns the full path of the first match, or empty string if
// none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "xacml-pdp"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds the PDPConfig keys most useful to override via
// environment variable. Example: XACML_PDP_SERVER_HTTP_ADDR overrides
// server.http_addr.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("max_policy_set_ref_depth")
	_ = viper.BindEnv("max_variable_reference_depth")
	_ = viper.BindEnv("enable_xpath")
	_ = viper.BindEnv("strict_attribute_issuer_match")

	_ = viper.BindEnv("request_filter")
	_ = viper.BindEnv("result_filter")

	_ = viper.BindEnv("decision_cache.kind")
	_ = viper.BindEnv("decision_cache.max_entries")
	_ = viper.BindEnv("decision_cache.redis_addr")
	_ = viper.BindEnv("decision_cache.ttl")

	_ = viper.BindEnv("ref_policy_provider.mode")
	_ = viper.BindEnv("ref_policy_provider.store")
	_ = viper.BindEnv("ref_policy_provider.dsn")

	// Note: root_policy_provider.paths and attribute_providers are
	// arrays, complex to override via env; use the config file for these.

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults and dev-mode defaults, validates the result, and returns the
// PDPConfig. A validation failure is returned as an error.
func LoadConfig() (*PDPConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg PDPConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but does
// NOT apply dev defaults or validate. Use this when CLI flags may override
// DevMode before validation.
func LoadConfigRaw() (*PDPConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg PDPConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded. Returns an empty string if no config file was found (env vars
// only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
