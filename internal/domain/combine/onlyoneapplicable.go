package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

const OnlyOneApplicablePolicyID = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:only-one-applicable"

// onlyOneApplicable is valid only as a policy-combining algorithm (spec
// Annex C.9): exactly one child policy may apply to the request; zero
// applicable children is NotApplicable, more than one is a processing
// error. The spec's own definition of "applicable" here is the child's
// Target match, evaluated independently of its rules; this implementation
// approximates that with the child's full Decision being anything other
// than NotApplicable, since Evaluatable exposes only the combined result,
// not a separate Target probe.
type onlyOneApplicable struct{ id string }

func (a onlyOneApplicable) ID() string { return a.id }

func (a onlyOneApplicable) Combine(ctx context.Context, children []Evaluatable) pdp.Result {
	var applicable pdp.Result
	count := 0
	for _, c := range children {
		if r, done := ctxErr(ctx); done {
			return r
		}
		r := c.Evaluate(ctx)
		if r.Decision == pdp.NotApplicable {
			continue
		}
		count++
		applicable = r
	}
	switch {
	case count == 0:
		return pdp.NotApplicableResult()
	case count == 1:
		return applicable
	default:
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("more than one policy applicable under only-one-applicable"), pdp.ExtDP)
	}
}

func init() {
	register(onlyOneApplicable{id: OnlyOneApplicablePolicyID})
}
