// Package service implements the PDP façade (spec §4.9 C9): the single
// Evaluate entry point a transport adapter calls, wiring request
// filtering, attribute-context construction, policy evaluation, decision
// caching, and result filtering into one per-request pipeline.
package service

import (
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// RequestAttribute is one attribute value set within a category (spec §6
// "Input request" shape): an id, optional issuer, datatype, the lexical
// values supplied, and whether it must be echoed back in the response.
type RequestAttribute struct {
	AttributeID     string
	Issuer          string
	Datatype        value.Type
	Values          []string
	MustBePresent   bool
	IncludeInResult bool
}

// CategoryAttributes is one attribute category's content: its attributes
// plus optional raw Content for AttributeSelector evaluation.
type CategoryAttributes struct {
	Category    string
	Content     []byte
	ContentType string
	Attributes  []RequestAttribute
}

// Request is one decision request (spec §6): a set of attribute
// categories plus the two response-shaping flags.
type Request struct {
	Categories         []CategoryAttributes
	CombinedDecision   bool
	ReturnPolicyIdList bool
}

// EchoedAttribute is an attribute the caller asked to have included in the
// response (IncludeInResult=true), carried through unevaluated.
type EchoedAttribute struct {
	Category    string
	AttributeID string
	Issuer      string
	Datatype    value.Type
	Values      []string
}

// Result is one decision result (spec §6 "Output response" shape).
// RequestID correlates this Result with log lines and trace spans emitted
// during its evaluation; it plays no role in XACML semantics.
type Result struct {
	RequestID            string
	Decision             pdp.Decision
	Status               pdp.Status
	Obligations          []pdp.ObligationOrAdvice
	Advice               []pdp.ObligationOrAdvice
	Echoed               []EchoedAttribute
	PolicyIdentifierList []string
}

// Response is the full PDP response: the Results of the individual decision
// requests produced by request-filter splitting, as shaped by the result
// filter (spec §4.9 step 2 / step 5) -- one per individual request under
// DefaultResultFilter, a single combined Result under
// CombinedDecisionResultFilter.
type Response struct {
	Results []Result
}
