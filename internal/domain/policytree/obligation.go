package policytree

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

// AttributeAssignmentExpression is one <AttributeAssignmentExpression>: an
// expression evaluated and carried as a lexical string into the resulting
// ObligationOrAdvice (spec §5.1 -- assignments are opaque payload, not
// interpreted by the PDP).
type AttributeAssignmentExpression struct {
	AttributeID string
	Expression  expr.Node
}

// ObligationExpression is one <ObligationExpression> or <AdviceExpression>:
// an identifier, the decision it is attached to, and its assignments. Only
// surfaced when the enclosing Rule/Policy/PolicySet's reached Decision
// equals FulfillOn (spec §5.1 invariant).
type ObligationExpression struct {
	ID          string
	FulfillOn   pdp.Decision
	Assignments []AttributeAssignmentExpression
}

func (o ObligationExpression) evaluate(ctx context.Context, ec *pdp.EvaluationContext) (pdp.ObligationOrAdvice, error) {
	assignments := make(map[string]string, len(o.Assignments))
	for _, a := range o.Assignments {
		r, err := a.Expression.Evaluate(ctx, ec)
		if err != nil {
			return pdp.ObligationOrAdvice{}, err
		}
		if r.IsBag() {
			assignments[a.AttributeID] = r.Bag.Lexical()
			continue
		}
		assignments[a.AttributeID] = r.Scalar.Lexical()
	}
	return pdp.ObligationOrAdvice{ID: o.ID, AttributeAssignments: assignments, FulfillOn: o.FulfillOn}, nil
}

// filterAndEvaluate evaluates and returns only the elements of exprs whose
// FulfillOn matches reached, the decision the enclosing element actually
// produced (spec §5.1: obligations attached to the effect not taken are
// silently dropped, never evaluated).
func filterAndEvaluate(ctx context.Context, ec *pdp.EvaluationContext, exprs []ObligationExpression, reached pdp.Decision) ([]pdp.ObligationOrAdvice, error) {
	var out []pdp.ObligationOrAdvice
	for _, oe := range exprs {
		if oe.FulfillOn != reached {
			continue
		}
		v, err := oe.evaluate(ctx, ec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
