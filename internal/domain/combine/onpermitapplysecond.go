package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

const OnPermitApplySecondPolicyID = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:on-permit-apply-second"

// onPermitApplySecond is a three-child policy-combining algorithm used to
// gate a detailed policy behind a coarse filter (experimental, per the
// algorithm's own naming): the first child gates; if it evaluates to
// Permit, the second child's full result is returned in its place; on any
// other outcome for the first child (Deny, NotApplicable, or
// Indeterminate), the third child's result is returned instead. Exactly
// one of the second/third children is ever evaluated.
type onPermitApplySecond struct{}

func (onPermitApplySecond) ID() string { return OnPermitApplySecondPolicyID }

func (onPermitApplySecond) Combine(ctx context.Context, children []Evaluatable) pdp.Result {
	if len(children) != 3 {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("on-permit-apply-second requires exactly three children"), pdp.ExtDP)
	}
	if r, done := ctxErr(ctx); done {
		return r
	}
	first := children[0].Evaluate(ctx)
	if r, done := ctxErr(ctx); done {
		return r
	}
	if first.Decision == pdp.Permit {
		return children[1].Evaluate(ctx)
	}
	return children[2].Evaluate(ctx)
}

func init() {
	register(onPermitApplySecond{})
}
