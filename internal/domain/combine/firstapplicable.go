package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

const (
	FirstApplicableRuleID   = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:first-applicable"
	FirstApplicablePolicyID = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:first-applicable"
)

// firstApplicable returns the first child whose decision is not
// NotApplicable, unchanged (spec Annex C.3): the simplest algorithm,
// evaluation order is significant and children after the first decisive one
// are never evaluated.
type firstApplicable struct{ id string }

func (a firstApplicable) ID() string { return a.id }

func (a firstApplicable) Combine(ctx context.Context, children []Evaluatable) pdp.Result {
	for _, c := range children {
		if r, done := ctxErr(ctx); done {
			return r
		}
		r := c.Evaluate(ctx)
		if r.Decision != pdp.NotApplicable {
			return r
		}
	}
	return pdp.NotApplicableResult()
}

func init() {
	register(firstApplicable{id: FirstApplicableRuleID})
	register(firstApplicable{id: FirstApplicablePolicyID})
}
