// Package policytree implements the XACML 3.0 policy structure (spec §4.6
// C6): Target matching, Rule/Policy/PolicySet evaluation, and obligation and
// advice filtering by the decision actually reached.
package policytree

import (
	"context"
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/function"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// matchResult is the three-valued outcome of evaluating a Target, AnyOf, or
// AllOf (spec §7.6): Match, NoMatch, or Indeterminate when a designator or
// the match function itself fails.
type matchResult int

const (
	noMatch matchResult = iota
	match
	indeterminate
)

// Match is a single <Match>: a function applied between a literal
// AttributeValue and every value of an AttributeDesignator or
// AttributeSelector's bag, true if any pairing is true (spec §4.6.1). The
// designator/selector's own authored MustBePresent governs whether a missing
// attribute is simply NoMatch or Indeterminate (spec §3, §8 scenario S2):
// MustBePresent=false yields an empty bag and NoMatch, MustBePresent=true
// yields Indeterminate, same as any other designator/selector read.
type Match struct {
	FunctionID     string
	AttributeValue value.Value
	Designator     *expr.Designator
	Selector       *expr.Selector
}

func (m Match) evaluate(ctx context.Context, ec *pdp.EvaluationContext) (matchResult, error) {
	var bag value.Bag
	switch {
	case m.Designator != nil:
		r, err := m.Designator.Evaluate(ctx, ec)
		if err != nil {
			return indeterminate, err
		}
		bag = *r.Bag
	case m.Selector != nil:
		r, err := m.Selector.Evaluate(ctx, ec)
		if err != nil {
			return indeterminate, err
		}
		bag = *r.Bag
	default:
		return indeterminate, fmt.Errorf("policytree: Match has neither a Designator nor a Selector")
	}

	fn, ok := function.Lookup(m.FunctionID)
	if !ok {
		return indeterminate, fmt.Errorf("policytree: unknown match function %q", m.FunctionID)
	}
	for _, v := range bag.Values() {
		out, err := fn.Call([]function.Arg{function.ScalarArg(m.AttributeValue), function.ScalarArg(v)})
		if err != nil {
			return indeterminate, err
		}
		b, ok := out.Scalar.(value.BooleanValue)
		if !ok {
			return indeterminate, fmt.Errorf("policytree: match function %q did not return boolean", m.FunctionID)
		}
		if bool(b) {
			return match, nil
		}
	}
	return noMatch, nil
}

// AllOf is a conjunction of Matches: all must match for the AllOf to match
// (spec §4.6.1). Short-circuits on the first NoMatch; an Indeterminate match
// only wins if no other Match definitively fails the conjunction.
type AllOf struct {
	Matches []Match
}

func (a AllOf) evaluate(ctx context.Context, ec *pdp.EvaluationContext) (matchResult, error) {
	sawIndeterminate := false
	var firstErr error
	for _, m := range a.Matches {
		r, err := m.evaluate(ctx, ec)
		switch r {
		case noMatch:
			return noMatch, nil
		case indeterminate:
			sawIndeterminate = true
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if sawIndeterminate {
		return indeterminate, firstErr
	}
	return match, nil
}

// AnyOf is a disjunction of AllOfs: any one matching makes the AnyOf match
// (spec §4.6.1).
type AnyOf struct {
	AllOfs []AllOf
}

func (a AnyOf) evaluate(ctx context.Context, ec *pdp.EvaluationContext) (matchResult, error) {
	sawIndeterminate := false
	var firstErr error
	for _, all := range a.AllOfs {
		r, err := all.evaluate(ctx, ec)
		switch r {
		case match:
			return match, nil
		case indeterminate:
			sawIndeterminate = true
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if sawIndeterminate {
		return indeterminate, firstErr
	}
	return noMatch, nil
}

// Target is a conjunction of AnyOfs (spec §4.6.1): every AnyOf must match for
// the Target to match. An empty Target (no AnyOfs) matches everything -- the
// XACML convention for a Rule/Policy/PolicySet applicable regardless of
// request content.
type Target struct {
	AnyOfs []AnyOf
}

// Evaluate reports whether t applies to the current request.
func (t Target) Evaluate(ctx context.Context, ec *pdp.EvaluationContext) (matchResult, error) {
	if len(t.AnyOfs) == 0 {
		return match, nil
	}
	sawIndeterminate := false
	var firstErr error
	for _, any := range t.AnyOfs {
		r, err := any.evaluate(ctx, ec)
		switch r {
		case noMatch:
			return noMatch, nil
		case indeterminate:
			sawIndeterminate = true
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if sawIndeterminate {
		return indeterminate, firstErr
	}
	return match, nil
}
