package expr

import (
	"context"
	"fmt"
	"time"
)

// Limits bounds how expensive a single expression evaluation is allowed to
// be, mirroring the teacher evaluator's nesting-depth and cost-budget guards
// (cel/evaluator.go's maxNestingDepth/maxCostBudget/evalTimeout) generalized
// from a CEL program to this Apply tree.
type Limits struct {
	MaxNestingDepth int
	MaxNodeCount    int
	EvalTimeout     time.Duration
}

// DefaultLimits matches the teacher evaluator's constants.
var DefaultLimits = Limits{
	MaxNestingDepth: 50,
	MaxNodeCount:    100_000,
	EvalTimeout:     5 * time.Second,
}

// Validate walks the tree and rejects it before first use if it exceeds
// limits, the same "fail at compile time, not mid-request" posture as
// evaluator.go's ValidateExpression.
func Validate(n Node, limits Limits) error {
	count := 0
	var walk func(n Node, depth int) error
	walk = func(n Node, depth int) error {
		count++
		if count > limits.MaxNodeCount {
			return fmt.Errorf("expr: expression exceeds node limit (%d)", limits.MaxNodeCount)
		}
		if depth > limits.MaxNestingDepth {
			return fmt.Errorf("expr: expression nesting too deep: %d levels (max %d)", depth, limits.MaxNestingDepth)
		}
		apply, ok := n.(*Apply)
		if !ok {
			return nil
		}
		for _, arg := range apply.Args {
			if err := walk(arg, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(n, 0)
}

// Compile validates n under limits and folds its constant subtrees, the
// expr-package analogue of evaluator.go's Compile (parse + type-check +
// cache the resulting program once, ahead of the request path).
func Compile(n Node, limits Limits) (Node, error) {
	if err := Validate(n, limits); err != nil {
		return nil, err
	}
	return Fold(n), nil
}

// Evaluate runs n to completion or until limits.EvalTimeout elapses,
// whichever comes first (evaluator.go's ContextEval-with-timeout, applied
// here to a tree walk instead of a CEL program).
func Evaluate(parent context.Context, n Node, ec Context, limits Limits) (Result, error) {
	ctx, cancel := context.WithTimeout(parent, limits.EvalTimeout)
	defer cancel()

	type outcome struct {
		r   Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := n.Evaluate(ctx, ec)
		done <- outcome{r, err}
	}()
	select {
	case o := <-done:
		return o.r, o.err
	case <-ctx.Done():
		return Result{}, fmt.Errorf("expr: evaluation timed out after %s: %w", limits.EvalTimeout, ctx.Err())
	}
}
