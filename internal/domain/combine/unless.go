package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

const (
	DenyUnlessPermitRuleID     = "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:deny-unless-permit"
	DenyUnlessPermitPolicyID   = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:deny-unless-permit"
	PermitUnlessDenyRuleID     = "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:permit-unless-deny"
	PermitUnlessDenyPolicyID   = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:permit-unless-deny"
)

// unlessAlgorithm implements deny-unless-permit and permit-unless-deny (spec
// Annex C.11/C.12): the two "total" algorithms that never return
// NotApplicable or Indeterminate -- every other outcome, including every
// child being NotApplicable or erroring, collapses to the fallback
// decision. Every child is always evaluated, since ctx cancellation aside
// there is nothing to short-circuit on.
type unlessAlgorithm struct {
	id       string
	trigger  pdp.Decision // the decision that, if found in any child, wins
	fallback pdp.Decision // returned otherwise
}

func (a unlessAlgorithm) ID() string { return a.id }

func (a unlessAlgorithm) Combine(ctx context.Context, children []Evaluatable) pdp.Result {
	var obligations, advice []pdp.ObligationOrAdvice
	found := false
	for _, c := range children {
		if r, done := ctxErr(ctx); done {
			return r
		}
		r := c.Evaluate(ctx)
		if r.Decision == a.trigger {
			found = true
			obligations = append(obligations, r.Obligations...)
			advice = append(advice, r.Advice...)
		}
	}
	if found {
		return result(a.trigger, obligations, advice)
	}
	return result(a.fallback, nil, nil)
}

func init() {
	register(unlessAlgorithm{id: DenyUnlessPermitRuleID, trigger: pdp.Permit, fallback: pdp.Deny})
	register(unlessAlgorithm{id: DenyUnlessPermitPolicyID, trigger: pdp.Permit, fallback: pdp.Deny})
	register(unlessAlgorithm{id: PermitUnlessDenyRuleID, trigger: pdp.Deny, fallback: pdp.Permit})
	register(unlessAlgorithm{id: PermitUnlessDenyPolicyID, trigger: pdp.Deny, fallback: pdp.Permit})
}
