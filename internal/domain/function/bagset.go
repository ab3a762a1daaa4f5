package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// bagConstructorFn builds the typeName-bag function: N scalar arguments of
// the same datatype collapsed into a bag (spec Annex A.3).
func bagConstructorFn(id string, typ value.Type) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		vals := make([]value.Value, 0, len(args))
		for _, a := range args {
			v, err := scalar(id, a)
			if err != nil {
				return Arg{}, err
			}
			if v.Type() != typ {
				return Arg{}, newProcessingError(id, fmt.Errorf("expected %s, got %s", typ, v.Type()))
			}
			vals = append(vals, v)
		}
		return BagArg(value.NewBag(typ, vals)), nil
	}}
}

// bagSizeFn is typeName-bag-size: cardinality of the bag, as an integer.
func bagSizeFn(id string) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 1); err != nil {
			return Arg{}, err
		}
		b, err := bag(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.NewInteger(int64(b.Size()))), nil
	}}
}

// bagIsInFn is typeName-is-in: whether a scalar occurs in a bag.
func bagIsInFn(id string, typ value.Type) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		v, err := scalar(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := bag(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(b.Contains(v))), nil
	}}
}

// bagOnlyOneAndOnlyFn is typeName-one-and-only: the sole element of a
// singleton bag, a ProcessingError otherwise (spec Annex A.3).
func bagOnlyOneAndOnlyFn(id string) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 1); err != nil {
			return Arg{}, err
		}
		b, err := bag(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		v, err := b.OnlyOneAndOnly()
		if err != nil {
			return Arg{}, newProcessingError(id, err)
		}
		return ScalarArg(v), nil
	}}
}

func bagOpFn(id string, op func(a, b value.Bag) value.Bag) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := bag(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := bag(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		return BagArg(op(a, b)), nil
	}}
}

func bagPredicateFn(id string, pred func(a, b value.Bag) bool) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := bag(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := bag(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(pred(a, b))), nil
	}}
}

var bagTypes = []value.Type{
	value.TypeString, value.TypeBoolean, value.TypeInteger, value.TypeDouble,
	value.TypeDate, value.TypeTime, value.TypeDateTime, value.TypeAnyURI,
	value.TypeHexBinary, value.TypeBase64Binary, value.TypeDayTimeDuration,
	value.TypeYearMonthDuration, value.TypeRFC822Name, value.TypeX500Name,
	value.TypeIPAddress, value.TypeDNSName,
}

func init() {
	for _, typ := range bagTypes {
		short := shortDatatypeName(typ)
		Register(bagConstructorFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-bag", short), typ))
		Register(bagSizeFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-bag-size", short)))
		Register(bagIsInFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-is-in", short), typ))
		Register(bagOnlyOneAndOnlyFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-one-and-only", short)))
		Register(bagOpFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-union", short), func(a, b value.Bag) value.Bag { return a.Union(b) }))
		Register(bagOpFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-intersection", short), func(a, b value.Bag) value.Bag { return a.Intersection(b) }))
		Register(bagPredicateFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-at-least-one-member-of", short), func(a, b value.Bag) bool { return a.Intersection(b).Size() > 0 }))
		Register(bagPredicateFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-subset", short), func(a, b value.Bag) bool { return a.IsSubset(b) }))
		Register(bagPredicateFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-set-equals", short), func(a, b value.Bag) bool { return a.SetEquals(b) }))
	}
}
