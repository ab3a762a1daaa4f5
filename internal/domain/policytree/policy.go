package policytree

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

// Policy is a named Target plus an ordered set of Rules combined by a single
// rule-combining algorithm (spec §4.6.2, invariant 2). VariableDefinitions
// declared on a Policy are scoped to it: they are registered on the
// EvaluationContext immediately before its Rules are evaluated.
type Policy struct {
	ID          string
	Target      *Target
	Rules       []Rule
	CombineAlg  combine.Algorithm
	Variables   map[string]expr.Node
	Obligations []ObligationExpression
	Advice      []ObligationExpression
}

// Evaluate implements the evaluatable contract used by PolicySet and by the
// top-level service façade.
func (p Policy) Evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result {
	if p.Target != nil {
		mr, err := p.Target.Evaluate(ctx, ec)
		switch mr {
		case noMatch:
			return pdp.NotApplicableResult()
		case indeterminate:
			return pdp.IndeterminateResult(statusFor(err), pdp.ExtDP)
		}
	}

	for id, def := range p.Variables {
		ec.DefineVariable(id, def)
	}

	children := make([]combine.Evaluatable, len(p.Rules))
	for i, r := range p.Rules {
		r := r
		children[i] = evaluatableFunc(func(ctx context.Context) pdp.Result {
			return r.evaluate(ctx, ec)
		})
	}

	result := p.CombineAlg.Combine(ctx, children)
	if result.Decision != pdp.Permit && result.Decision != pdp.Deny {
		return result
	}

	obligations, err := filterAndEvaluate(ctx, ec, p.Obligations, result.Decision)
	if err != nil {
		return pdp.IndeterminateResult(statusFor(err), extendedForResult(result))
	}
	advice, err := filterAndEvaluate(ctx, ec, p.Advice, result.Decision)
	if err != nil {
		return pdp.IndeterminateResult(statusFor(err), extendedForResult(result))
	}
	result.Obligations = append(result.Obligations, obligations...)
	result.Advice = append(result.Advice, advice...)
	return result
}

// evaluatableFunc adapts a closure to combine.Evaluatable.
type evaluatableFunc func(ctx context.Context) pdp.Result

func (f evaluatableFunc) Evaluate(ctx context.Context) pdp.Result { return f(ctx) }

func extendedForResult(r pdp.Result) pdp.ExtendedIndeterminate {
	if r.Decision == pdp.Permit {
		return pdp.ExtP
	}
	return pdp.ExtD
}
