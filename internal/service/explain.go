package service

import (
	"fmt"
	"strings"
)

// Explain assembles a human-readable summary of a Result: the decision,
// its status message, and (when present) the policies that contributed to
// it. Grounded on the teacher's PolicyEvaluationService.GenerateHelpText,
// generalized from an RBAC allow/deny rationale to XACML's Decision/
// Status/PolicyIdentifierList shape. Never consulted by evaluation itself
// -- this is an output-formatting convenience for the CLI and logs, not a
// decision input.
func Explain(r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", r.Decision)
	if r.Status.Message != "" {
		fmt.Fprintf(&b, " (%s)", r.Status.Message)
	}
	if len(r.PolicyIdentifierList) > 0 {
		fmt.Fprintf(&b, " -- policies: %s", strings.Join(r.PolicyIdentifierList, ", "))
	}
	return b.String()
}
