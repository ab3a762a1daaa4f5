package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

// DenyOverridesRuleID and friends are the standard rule- and policy-
// combining algorithm identifiers (spec §4.7, Annex C.1/C.2). XACML 3.0
// folded the legacy "ordered" variants into the same semantics as the
// unordered ones (only obligation/advice ordering differs, and this
// implementation already evaluates children in the order given), so both
// URIs register the same Algorithm.
const (
	DenyOverridesRuleID        = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:deny-overrides"
	OrderedDenyOverridesRuleID = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:ordered-deny-overrides"
	DenyOverridesPolicyID        = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:deny-overrides"
	OrderedDenyOverridesPolicyID = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:ordered-deny-overrides"

	PermitOverridesRuleID        = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:permit-overrides"
	OrderedPermitOverridesRuleID = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:ordered-permit-overrides"
	PermitOverridesPolicyID        = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:permit-overrides"
	OrderedPermitOverridesPolicyID = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:ordered-permit-overrides"
)

// overridesAlgorithm implements both deny-overrides and permit-overrides,
// the two algorithms being exact duals of each other (spec Annex C.1/C.2
// pseudocode): the "overriding" decision wins outright the moment any child
// reaches it, eliding every later child (spec §4.7, §5); otherwise an
// Indeterminate that could only have resolved to the overriding decision
// propagates; only once every child is accounted for does the
// non-overriding decision (or NotApplicable) win.
type overridesAlgorithm struct {
	id        string
	overrides pdp.Decision // the decision that wins outright (Deny or Permit)
}

func (a overridesAlgorithm) ID() string { return a.id }

func (a overridesAlgorithm) Combine(ctx context.Context, children []Evaluatable) pdp.Result {
	other := otherDecision(a.overrides)
	var otherObligations []pdp.ObligationOrAdvice
	var otherAdvice []pdp.ObligationOrAdvice
	foundOther := false
	// extOverriding tracks an Indeterminate that still might resolve to the
	// overriding decision (e.g. Indeterminate{D} when overrides==Deny);
	// extBoth tracks one that could resolve either way ({DP} or no hint).
	extOverriding := false
	extOther := false
	extBoth := false

	for _, c := range children {
		if r, done := ctxErr(ctx); done {
			return r
		}
		r := c.Evaluate(ctx)
		switch r.Decision {
		case a.overrides:
			// The overriding decision is dominating: no later child can
			// change the outcome, so elide their evaluation entirely
			// (spec §4.7, §5 short-circuit).
			return result(a.overrides, r.Obligations, r.Advice)
		case other:
			foundOther = true
			otherObligations = append(otherObligations, r.Obligations...)
			otherAdvice = append(otherAdvice, r.Advice...)
		case pdp.Indeterminate:
			switch r.Extended {
			case extendedFor(a.overrides):
				extOverriding = true
			case extendedFor(other):
				extOther = true
			default:
				extBoth = true
			}
		}
	}

	if extBoth {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("child evaluation indeterminate"), pdp.ExtDP)
	}
	if foundOther && extOverriding {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("child evaluation indeterminate"), pdp.ExtDP)
	}
	if extOverriding {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("child evaluation indeterminate"), extendedFor(a.overrides))
	}
	if foundOther {
		return result(other, otherObligations, otherAdvice)
	}
	if extOther {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("child evaluation indeterminate"), extendedFor(other))
	}
	return pdp.NotApplicableResult()
}

func otherDecision(d pdp.Decision) pdp.Decision {
	if d == pdp.Deny {
		return pdp.Permit
	}
	return pdp.Deny
}

func extendedFor(d pdp.Decision) pdp.ExtendedIndeterminate {
	if d == pdp.Deny {
		return pdp.ExtD
	}
	return pdp.ExtP
}

func result(d pdp.Decision, obligations, advice []pdp.ObligationOrAdvice) pdp.Result {
	if d == pdp.Permit {
		return pdp.PermitResult(obligations, advice)
	}
	return pdp.DenyResult(obligations, advice)
}

func init() {
	denyOverrides := overridesAlgorithm{id: DenyOverridesRuleID, overrides: pdp.Deny}
	register(denyOverrides)
	register(overridesAlgorithm{id: OrderedDenyOverridesRuleID, overrides: pdp.Deny})
	register(overridesAlgorithm{id: DenyOverridesPolicyID, overrides: pdp.Deny})
	register(overridesAlgorithm{id: OrderedDenyOverridesPolicyID, overrides: pdp.Deny})

	register(overridesAlgorithm{id: PermitOverridesRuleID, overrides: pdp.Permit})
	register(overridesAlgorithm{id: OrderedPermitOverridesRuleID, overrides: pdp.Permit})
	register(overridesAlgorithm{id: PermitOverridesPolicyID, overrides: pdp.Permit})
	register(overridesAlgorithm{id: OrderedPermitOverridesPolicyID, overrides: pdp.Permit})
}
