package expr

import "context"

// Fold performs constant folding: an Apply node all of whose arguments are
// themselves constant (Literal or BagLiteral, recursively) is replaced by
// the Literal/BagLiteral of its evaluated result. This runs once at policy
// compile time, not per request, so a condition like
// string-equal("a","a") never re-executes a function call on the hot path.
// Folding never touches Designator/Selector/VariableReference, which must
// always be re-evaluated per request.
func Fold(n Node) Node {
	apply, ok := n.(*Apply)
	if !ok {
		return n
	}
	folded := make([]Node, len(apply.Args))
	allConst := true
	for i, arg := range apply.Args {
		folded[i] = Fold(arg)
		if !isConstant(folded[i]) {
			allConst = false
		}
	}
	out := &Apply{FunctionID: apply.FunctionID, Args: folded}
	if !allConst {
		return out
	}
	r, err := out.Evaluate(context.Background(), nil)
	if err != nil {
		// Leave unfolded: the error (e.g. division by zero) must surface at
		// evaluation time as Indeterminate, not at compile time.
		return out
	}
	if r.IsBag() {
		return &BagLiteral{Bag: *r.Bag}
	}
	return &Literal{Value: r.Scalar}
}

func isConstant(n Node) bool {
	switch n.(type) {
	case *Literal, *BagLiteral:
		return true
	default:
		return false
	}
}
