package service

import (
	"strings"
	"testing"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

func TestExplainIncludesDecisionAndStatusMessage(t *testing.T) {
	t.Parallel()

	r := Result{Decision: pdp.Indeterminate, Status: pdp.SyntaxErrorStatus("bad literal")}
	got := Explain(r)
	if !strings.Contains(got, "Indeterminate") || !strings.Contains(got, "bad literal") {
		t.Fatalf("Explain() = %q, want to contain Decision and Status message", got)
	}
}

func TestExplainIncludesPolicyIdentifierList(t *testing.T) {
	t.Parallel()

	r := Result{Decision: pdp.Permit, PolicyIdentifierList: []string{"root", "child"}}
	got := Explain(r)
	if !strings.Contains(got, "root") || !strings.Contains(got, "child") {
		t.Fatalf("Explain() = %q, want to contain policy ids", got)
	}
}

func TestExplainOmitsEmptyStatusMessage(t *testing.T) {
	t.Parallel()

	r := Result{Decision: pdp.Permit, Status: pdp.OKStatus()}
	got := Explain(r)
	if strings.Contains(got, "()") {
		t.Fatalf("Explain() = %q, want no empty parens for an empty status message", got)
	}
}
