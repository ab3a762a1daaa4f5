package policytree

import "github.com/latticeauth/xacml-pdp/internal/domain/combine"

// BuiltinDenyAllID is the identifier given to the synthetic PolicySet
// BuiltinDenyAllPolicySet returns.
const BuiltinDenyAllID = "urn:xacml-pdp:builtin:deny-all"

// BuiltinDenyAllPolicySet returns a PolicySet that denies every request: an
// untargeted Policy containing a single untargeted, unconditioned Deny
// rule. Used as the façade's root when no rootPolicyProvider is configured
// (spec §6), so an unconfigured PDP fails closed rather than panicking or
// silently permitting.
func BuiltinDenyAllPolicySet() PolicySet {
	denyAlg, _ := combine.Lookup(combine.DenyOverridesRuleID)
	policyAlg, _ := combine.Lookup(combine.DenyOverridesPolicyID)

	policy := Policy{
		ID:         "urn:xacml-pdp:builtin:deny-all-policy",
		CombineAlg: denyAlg,
		Rules: []Rule{
			{ID: "deny-all", Effect: "Deny"},
		},
	}
	return PolicySet{
		ID:         BuiltinDenyAllID,
		CombineAlg: policyAlg,
		Children:   []Child{policy},
	}
}
