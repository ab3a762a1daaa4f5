package function

import (
	"math/big"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

const (
	fnDoubleToInteger = "urn:oasis:names:tc:xacml:1.0:function:double-to-integer"
	fnIntegerToDouble = "urn:oasis:names:tc:xacml:1.0:function:integer-to-double"
)

func init() {
	Register(&Fn{ID: fnDoubleToInteger, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnDoubleToInteger, args, 1); err != nil {
			return Arg{}, err
		}
		d, err := asDouble(fnDoubleToInteger, args[0])
		if err != nil {
			return Arg{}, err
		}
		bi, _ := big.NewFloat(float64(d)).Int(nil)
		return ScalarArg(value.NewIntegerFromBig(bi)), nil
	}})

	Register(&Fn{ID: fnIntegerToDouble, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnIntegerToDouble, args, 1); err != nil {
			return Arg{}, err
		}
		i, err := asInteger(fnIntegerToDouble, args[0])
		if err != nil {
			return Arg{}, err
		}
		f := new(big.Float).SetInt(i.Big())
		fv, _ := f.Float64()
		return ScalarArg(value.DoubleValue(fv)), nil
	}})
}
