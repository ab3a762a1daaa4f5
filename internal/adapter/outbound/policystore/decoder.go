// Package policystore implements refresolve.RefPolicyProvider against a
// persisted catalog of policy/policy-set documents, so
// PolicyIdReference/PolicySetIdReference (spec §4.8 C8) can be resolved
// dynamically instead of requiring every referenced policy to be wired into
// the in-memory tree at construction time.
package policystore

import (
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
)

// Decoder turns a stored policy/policy-set document's raw bytes into the
// domain types the evaluation engine runs. The store itself is agnostic to
// document format (XACML XML, a JSON DSL, anything else); format-specific
// parsing is injected so the same SQL schema can back more than one
// authoring format.
type Decoder interface {
	DecodePolicy(document []byte) (policytree.Policy, error)
	DecodePolicySet(document []byte) (policytree.PolicySet, error)
}
