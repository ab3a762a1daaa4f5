package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// FnAnd and FnOr are the URIs of the variadic logical functions. Their
// short-circuit, Indeterminate-aware evaluation (spec Annex A.3: "and"
// returns false as soon as any argument is false, even if a later argument
// would itself be Indeterminate) requires lazy argument evaluation, so the
// expr package's Apply evaluator special-cases these two IDs and never calls
// through Fn.Call for them (expr.Fold goes through the same Apply
// evaluation). The registrations below exist so the IDs still resolve for
// introspection (arity checks, policy validation) and so a caller holding a
// fully-evaluated argument list can call them directly.
const (
	FnAnd = "urn:oasis:names:tc:xacml:1.0:function:and"
	FnOr  = "urn:oasis:names:tc:xacml:1.0:function:or"
	FnNot = "urn:oasis:names:tc:xacml:1.0:function:not"
)

func asBoolean(id string, a Arg) (bool, error) {
	v, err := scalar(id, a)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.BooleanValue)
	if !ok {
		return false, newProcessingError(id, fmt.Errorf("expected boolean, got %s", v.Type()))
	}
	return bool(b), nil
}

func init() {
	Register(&Fn{ID: FnAnd, Call: func(args []Arg) (Arg, error) {
		for _, a := range args {
			b, err := asBoolean(FnAnd, a)
			if err != nil {
				return Arg{}, err
			}
			if !b {
				return ScalarArg(value.BooleanValue(false)), nil
			}
		}
		return ScalarArg(value.BooleanValue(true)), nil
	}})

	Register(&Fn{ID: FnOr, Call: func(args []Arg) (Arg, error) {
		for _, a := range args {
			b, err := asBoolean(FnOr, a)
			if err != nil {
				return Arg{}, err
			}
			if b {
				return ScalarArg(value.BooleanValue(true)), nil
			}
		}
		return ScalarArg(value.BooleanValue(false)), nil
	}})

	Register(&Fn{ID: FnNot, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(FnNot, args, 1); err != nil {
			return Arg{}, err
		}
		b, err := asBoolean(FnNot, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(!b)), nil
	}})

	Register(&Fn{ID: "urn:oasis:names:tc:xacml:1.0:function:n-of", Call: func(args []Arg) (Arg, error) {
		if len(args) < 1 {
			return Arg{}, newProcessingError("n-of", fmt.Errorf("expected at least 1 argument"))
		}
		n, err := asInteger("n-of", args[0])
		if err != nil {
			return Arg{}, err
		}
		need := n.Big().Int64()
		count := int64(0)
		for _, a := range args[1:] {
			b, err := asBoolean("n-of", a)
			if err != nil {
				return Arg{}, err
			}
			if b {
				count++
			}
			if count >= need {
				return ScalarArg(value.BooleanValue(true)), nil
			}
		}
		return ScalarArg(value.BooleanValue(false)), nil
	}})
}
