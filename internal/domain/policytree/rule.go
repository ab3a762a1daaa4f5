package policytree

import (
	"context"
	"errors"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// Rule is the innermost XACML evaluatable element (spec §4.6.3, invariant 1):
// an optional Target narrowing when it applies, an optional Condition
// refining further, an Effect (Permit or Deny) returned when both are
// satisfied, and Obligation/AdviceExpressions attached to that Effect.
type Rule struct {
	ID          string
	Effect      pdp.Decision
	Target      *Target
	Condition   expr.Node
	Obligations []ObligationExpression
	Advice      []ObligationExpression
}

// evaluate runs the rule's Target then Condition against ec, converting
// every internal failure into the appropriately extended Indeterminate
// (spec §7.11's evaluation table for a Rule): a Target or Condition error
// yields Indeterminate{P} if Effect is Permit, Indeterminate{D} if Deny --
// never {DP}, since a Rule has only one possible effect to begin with.
func (r Rule) evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result {
	ext := extendedFor(r.Effect)

	if r.Target != nil {
		mr, err := r.Target.Evaluate(ctx, ec)
		switch mr {
		case noMatch:
			return pdp.NotApplicableResult()
		case indeterminate:
			return pdp.IndeterminateResult(statusFor(err), ext)
		}
	}

	if r.Condition != nil {
		res, err := r.Condition.Evaluate(ctx, ec)
		if err != nil {
			return pdp.IndeterminateResult(statusFor(err), ext)
		}
		if res.IsBag() {
			return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("Condition evaluated to a bag, expected boolean"), ext)
		}
		cond, ok := res.Scalar.(value.BooleanValue)
		if !ok {
			return pdp.IndeterminateResult(pdp.ProcessingErrorStatus("Condition did not evaluate to boolean"), ext)
		}
		if !bool(cond) {
			return pdp.NotApplicableResult()
		}
	}

	var obligations, advice []pdp.ObligationOrAdvice
	var err error
	if obligations, err = filterAndEvaluate(ctx, ec, r.Obligations, r.Effect); err != nil {
		return pdp.IndeterminateResult(statusFor(err), ext)
	}
	if advice, err = filterAndEvaluate(ctx, ec, r.Advice, r.Effect); err != nil {
		return pdp.IndeterminateResult(statusFor(err), ext)
	}

	if r.Effect == pdp.Permit {
		return pdp.PermitResult(obligations, advice)
	}
	return pdp.DenyResult(obligations, advice)
}

func extendedFor(effect pdp.Decision) pdp.ExtendedIndeterminate {
	if effect == pdp.Permit {
		return pdp.ExtP
	}
	return pdp.ExtD
}

func statusFor(err error) pdp.Status {
	var missing *pdp.MissingAttributeError
	if errors.As(err, &missing) {
		return pdp.MissingAttributeStatus(err.Error(), missing.Detail)
	}
	return pdp.ProcessingErrorStatus(err.Error())
}
