package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// HigherOrder is one of the XACML higher-order bag functions (any-of, all-of,
// map, and their -any/-all variants, spec Annex A.3). Unlike an ordinary Fn,
// a HigherOrder's first argument is the URI of another function rather than
// a value, so it cannot be represented as a plain Arg; the expr package's
// Apply evaluator recognizes these IDs, evaluates the remaining operands
// itself, and calls Invoke with the already-resolved sub-function and the
// evaluated operands.
type HigherOrder struct {
	ID     string
	Invoke func(sub *Fn, args []Arg) (Arg, error)
}

var higherOrderRegistry = map[string]*HigherOrder{}

func registerHigherOrder(ho *HigherOrder) {
	if _, dup := higherOrderRegistry[ho.ID]; dup {
		panic(fmt.Sprintf("function: duplicate higher-order registration for %s", ho.ID))
	}
	higherOrderRegistry[ho.ID] = ho
}

// LookupHigherOrder returns the HigherOrder registered under id, or false if
// id does not name one of the higher-order bag functions.
func LookupHigherOrder(id string) (*HigherOrder, bool) {
	ho, ok := higherOrderRegistry[id]
	return ho, ok
}

func callBoolean(sub *Fn, args ...Arg) (bool, error) {
	r, err := sub.Call(args)
	if err != nil {
		return false, err
	}
	b, err := asBoolean(sub.ID, r)
	if err != nil {
		return false, err
	}
	return b, nil
}

const (
	fnAnyOf       = "urn:oasis:names:tc:xacml:3.0:function:any-of"
	fnAllOf       = "urn:oasis:names:tc:xacml:3.0:function:all-of"
	fnAnyOfAny    = "urn:oasis:names:tc:xacml:3.0:function:any-of-any"
	fnAllOfAny    = "urn:oasis:names:tc:xacml:1.0:function:all-of-any"
	fnAnyOfAll    = "urn:oasis:names:tc:xacml:1.0:function:any-of-all"
	fnAllOfAll    = "urn:oasis:names:tc:xacml:1.0:function:all-of-all"
	fnMap         = "urn:oasis:names:tc:xacml:3.0:function:map"
)

func init() {
	// any-of(pred, bag, x2, ..., xn): true if pred(e, x2, ..., xn) is true for
	// some e in bag.
	registerHigherOrder(&HigherOrder{ID: fnAnyOf, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if len(args) < 1 {
			return Arg{}, newProcessingError(fnAnyOf, fmt.Errorf("expected at least one bag argument"))
		}
		b, err := bag(fnAnyOf, args[0])
		if err != nil {
			return Arg{}, err
		}
		rest := args[1:]
		for _, e := range b.Values() {
			call := append([]Arg{ScalarArg(e)}, rest...)
			ok, err := callBoolean(sub, call...)
			if err != nil {
				return Arg{}, err
			}
			if ok {
				return boolArg(true), nil
			}
		}
		return boolArg(false), nil
	}})

	// all-of(pred, bag, x2, ..., xn): true if pred holds for every element.
	registerHigherOrder(&HigherOrder{ID: fnAllOf, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if len(args) < 1 {
			return Arg{}, newProcessingError(fnAllOf, fmt.Errorf("expected at least one bag argument"))
		}
		b, err := bag(fnAllOf, args[0])
		if err != nil {
			return Arg{}, err
		}
		rest := args[1:]
		for _, e := range b.Values() {
			call := append([]Arg{ScalarArg(e)}, rest...)
			ok, err := callBoolean(sub, call...)
			if err != nil {
				return Arg{}, err
			}
			if !ok {
				return boolArg(false), nil
			}
		}
		return boolArg(true), nil
	}})

	// any-of-any(pred, bag1, bag2): true if pred(e1, e2) holds for some pair.
	registerHigherOrder(&HigherOrder{ID: fnAnyOfAny, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if err := mustArgs(fnAnyOfAny, args, 2); err != nil {
			return Arg{}, err
		}
		b1, err := bag(fnAnyOfAny, args[0])
		if err != nil {
			return Arg{}, err
		}
		b2, err := bag(fnAnyOfAny, args[1])
		if err != nil {
			return Arg{}, err
		}
		for _, e1 := range b1.Values() {
			for _, e2 := range b2.Values() {
				ok, err := callBoolean(sub, ScalarArg(e1), ScalarArg(e2))
				if err != nil {
					return Arg{}, err
				}
				if ok {
					return boolArg(true), nil
				}
			}
		}
		return boolArg(false), nil
	}})

	// all-of-any(pred, bag1, bag2): true if for every e1 in bag1, pred(e1, e2)
	// holds for some e2 in bag2.
	registerHigherOrder(&HigherOrder{ID: fnAllOfAny, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if err := mustArgs(fnAllOfAny, args, 2); err != nil {
			return Arg{}, err
		}
		b1, err := bag(fnAllOfAny, args[0])
		if err != nil {
			return Arg{}, err
		}
		b2, err := bag(fnAllOfAny, args[1])
		if err != nil {
			return Arg{}, err
		}
		for _, e1 := range b1.Values() {
			any := false
			for _, e2 := range b2.Values() {
				ok, err := callBoolean(sub, ScalarArg(e1), ScalarArg(e2))
				if err != nil {
					return Arg{}, err
				}
				if ok {
					any = true
					break
				}
			}
			if !any {
				return boolArg(false), nil
			}
		}
		return boolArg(true), nil
	}})

	// any-of-all(pred, bag1, bag2): true if some e1 in bag1 has pred(e1, e2)
	// holding for every e2 in bag2.
	registerHigherOrder(&HigherOrder{ID: fnAnyOfAll, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if err := mustArgs(fnAnyOfAll, args, 2); err != nil {
			return Arg{}, err
		}
		b1, err := bag(fnAnyOfAll, args[0])
		if err != nil {
			return Arg{}, err
		}
		b2, err := bag(fnAnyOfAll, args[1])
		if err != nil {
			return Arg{}, err
		}
		for _, e1 := range b1.Values() {
			all := true
			for _, e2 := range b2.Values() {
				ok, err := callBoolean(sub, ScalarArg(e1), ScalarArg(e2))
				if err != nil {
					return Arg{}, err
				}
				if !ok {
					all = false
					break
				}
			}
			if all {
				return boolArg(true), nil
			}
		}
		return boolArg(false), nil
	}})

	// all-of-all(pred, bag1, bag2): true if pred(e1, e2) holds for every pair.
	registerHigherOrder(&HigherOrder{ID: fnAllOfAll, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if err := mustArgs(fnAllOfAll, args, 2); err != nil {
			return Arg{}, err
		}
		b1, err := bag(fnAllOfAll, args[0])
		if err != nil {
			return Arg{}, err
		}
		b2, err := bag(fnAllOfAll, args[1])
		if err != nil {
			return Arg{}, err
		}
		for _, e1 := range b1.Values() {
			for _, e2 := range b2.Values() {
				ok, err := callBoolean(sub, ScalarArg(e1), ScalarArg(e2))
				if err != nil {
					return Arg{}, err
				}
				if !ok {
					return boolArg(false), nil
				}
			}
		}
		return boolArg(true), nil
	}})

	// map(fn, bag): applies fn to every element, returning a bag of results.
	// The result's element type is whatever the first application produces;
	// an empty input bag maps to an empty bag of the same element type as the
	// input (spec Annex A.3, XACML 3.0 core function 10.2.1).
	registerHigherOrder(&HigherOrder{ID: fnMap, Invoke: func(sub *Fn, args []Arg) (Arg, error) {
		if err := mustArgs(fnMap, args, 1); err != nil {
			return Arg{}, err
		}
		b, err := bag(fnMap, args[0])
		if err != nil {
			return Arg{}, err
		}
		vals := b.Values()
		if len(vals) == 0 {
			return BagArg(emptyBagLike(b)), nil
		}
		results := make([]Arg, 0, len(vals))
		for _, e := range vals {
			r, err := sub.Call([]Arg{ScalarArg(e)})
			if err != nil {
				return Arg{}, err
			}
			if r.IsBag() {
				return Arg{}, newProcessingError(fnMap, fmt.Errorf("sub-function %s returned a bag, expected a scalar", sub.ID))
			}
			results = append(results, r)
		}
		return BagArg(bagFromArgs(results)), nil
	}})
}

func boolArg(b bool) Arg { return ScalarArg(value.BooleanValue(b)) }

func emptyBagLike(b value.Bag) value.Bag { return value.EmptyBag(b.ElementType()) }

// bagFromArgs collects scalar results of a map() application into a bag.
// Every application must have produced a scalar of the same datatype (map's
// sub-function is required to be a non-bag-valued function, spec Annex A.3);
// a bag result indicates the sub-function itself was misapplied, and map's
// Invoke reports it as a ProcessingError before calling bagFromArgs rather
// than letting it be flattened here.
func bagFromArgs(args []Arg) value.Bag {
	if len(args) == 0 {
		return value.Bag{}
	}
	elemType := args[0].Type()
	vals := make([]value.Value, 0, len(args))
	for _, a := range args {
		if a.IsBag() {
			vals = append(vals, a.Bag.Values()...)
			continue
		}
		vals = append(vals, a.Scalar)
	}
	return value.NewBag(elemType, vals)
}
