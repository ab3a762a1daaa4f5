package policytree

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

// Child is anything a PolicySet can combine: a Policy, a nested PolicySet, or
// (once resolved by the refresolve package) a PolicyIdReference/
// PolicySetIdReference standing in for one fetched from a policy store (spec
// §4.6.2, §4.8).
type Child interface {
	Evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result
}

// PolicySet is a named Target plus an ordered set of child Policies/
// PolicySets combined by a single policy-combining algorithm (spec §4.6.2,
// invariant 2).
type PolicySet struct {
	ID          string
	Target      *Target
	Children    []Child
	CombineAlg  combine.Algorithm
	Obligations []ObligationExpression
	Advice      []ObligationExpression
}

func (ps PolicySet) Evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result {
	if ps.Target != nil {
		mr, err := ps.Target.Evaluate(ctx, ec)
		switch mr {
		case noMatch:
			return pdp.NotApplicableResult()
		case indeterminate:
			return pdp.IndeterminateResult(statusFor(err), pdp.ExtDP)
		}
	}

	children := make([]combine.Evaluatable, len(ps.Children))
	for i, c := range ps.Children {
		c := c
		children[i] = evaluatableFunc(func(ctx context.Context) pdp.Result {
			return c.Evaluate(ctx, ec)
		})
	}

	result := ps.CombineAlg.Combine(ctx, children)
	if result.Decision != pdp.Permit && result.Decision != pdp.Deny {
		return result
	}

	obligations, err := filterAndEvaluate(ctx, ec, ps.Obligations, result.Decision)
	if err != nil {
		return pdp.IndeterminateResult(statusFor(err), extendedForResult(result))
	}
	advice, err := filterAndEvaluate(ctx, ec, ps.Advice, result.Decision)
	if err != nil {
		return pdp.IndeterminateResult(statusFor(err), extendedForResult(result))
	}
	result.Obligations = append(result.Obligations, obligations...)
	result.Advice = append(result.Advice, advice...)
	return result
}
