// Command xacml-pdp is a thin CLI driver over the PDP façade (internal/service),
// useful for local policy experimentation: evaluating one request document
// against a policy file, and static-linking a policy set to surface
// reference/depth/cycle errors without evaluating anything.
package main

import "github.com/latticeauth/xacml-pdp/cmd/xacml-pdp/cmd"

func main() {
	cmd.Execute()
}
