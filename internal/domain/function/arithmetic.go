package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

const (
	fnIntegerAdd      = "urn:oasis:names:tc:xacml:1.0:function:integer-add"
	fnIntegerSubtract = "urn:oasis:names:tc:xacml:1.0:function:integer-subtract"
	fnIntegerMultiply = "urn:oasis:names:tc:xacml:1.0:function:integer-multiply"
	fnIntegerDivide   = "urn:oasis:names:tc:xacml:1.0:function:integer-divide"
	fnIntegerMod      = "urn:oasis:names:tc:xacml:1.0:function:integer-mod"
	fnIntegerAbs      = "urn:oasis:names:tc:xacml:1.0:function:integer-abs"
	fnDoubleAdd       = "urn:oasis:names:tc:xacml:1.0:function:double-add"
	fnDoubleSubtract  = "urn:oasis:names:tc:xacml:1.0:function:double-subtract"
	fnDoubleMultiply  = "urn:oasis:names:tc:xacml:1.0:function:double-multiply"
	fnDoubleDivide    = "urn:oasis:names:tc:xacml:1.0:function:double-divide"
	fnDoubleAbs       = "urn:oasis:names:tc:xacml:1.0:function:double-abs"
	fnFloor           = "urn:oasis:names:tc:xacml:1.0:function:floor"
	fnRound           = "urn:oasis:names:tc:xacml:1.0:function:round"
)

func asInteger(id string, a Arg) (value.IntegerValue, error) {
	v, err := scalar(id, a)
	if err != nil {
		return value.IntegerValue{}, err
	}
	i, ok := v.(value.IntegerValue)
	if !ok {
		return value.IntegerValue{}, newProcessingError(id, fmt.Errorf("expected integer, got %s", v.Type()))
	}
	return i, nil
}

func asDouble(id string, a Arg) (value.DoubleValue, error) {
	v, err := scalar(id, a)
	if err != nil {
		return 0, err
	}
	d, ok := v.(value.DoubleValue)
	if !ok {
		return 0, newProcessingError(id, fmt.Errorf("expected double, got %s", v.Type()))
	}
	return d, nil
}

func integerBinOp(id string, f func(a, b value.IntegerValue) (value.IntegerValue, error)) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := asInteger(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := asInteger(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		r, err := f(a, b)
		if err != nil {
			return Arg{}, newProcessingError(id, err)
		}
		return ScalarArg(r), nil
	}}
}

func doubleBinOp(id string, f func(a, b value.DoubleValue) value.DoubleValue) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := asDouble(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := asDouble(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(f(a, b)), nil
	}}
}

func init() {
	Register(integerBinOp(fnIntegerAdd, func(a, b value.IntegerValue) (value.IntegerValue, error) { return a.Add(b), nil }))
	Register(integerBinOp(fnIntegerSubtract, func(a, b value.IntegerValue) (value.IntegerValue, error) { return a.Subtract(b), nil }))
	Register(integerBinOp(fnIntegerMultiply, func(a, b value.IntegerValue) (value.IntegerValue, error) { return a.Multiply(b), nil }))
	Register(integerBinOp(fnIntegerDivide, func(a, b value.IntegerValue) (value.IntegerValue, error) { return a.Divide(b) }))
	Register(integerBinOp(fnIntegerMod, func(a, b value.IntegerValue) (value.IntegerValue, error) { return a.Mod(b) }))

	Register(&Fn{ID: fnIntegerAbs, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnIntegerAbs, args, 1); err != nil {
			return Arg{}, err
		}
		v, err := asInteger(fnIntegerAbs, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(v.Abs()), nil
	}})

	Register(doubleBinOp(fnDoubleAdd, func(a, b value.DoubleValue) value.DoubleValue { return a.Add(b) }))
	Register(doubleBinOp(fnDoubleSubtract, func(a, b value.DoubleValue) value.DoubleValue { return a.Subtract(b) }))
	Register(doubleBinOp(fnDoubleMultiply, func(a, b value.DoubleValue) value.DoubleValue { return a.Multiply(b) }))
	Register(doubleBinOp(fnDoubleDivide, func(a, b value.DoubleValue) value.DoubleValue { return a.Divide(b) }))

	Register(&Fn{ID: fnDoubleAbs, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnDoubleAbs, args, 1); err != nil {
			return Arg{}, err
		}
		v, err := asDouble(fnDoubleAbs, args[0])
		if err != nil {
			return Arg{}, err
		}
		if v < 0 {
			v = -v
		}
		return ScalarArg(v), nil
	}})

	Register(&Fn{ID: fnFloor, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnFloor, args, 1); err != nil {
			return Arg{}, err
		}
		v, err := asDouble(fnFloor, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(v.Floor()), nil
	}})

	Register(&Fn{ID: fnRound, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnRound, args, 1); err != nil {
			return Arg{}, err
		}
		v, err := asDouble(fnRound, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(v.Round()), nil
	}})
}
