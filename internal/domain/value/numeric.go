package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// IntegerValue is the XACML integer datatype: arbitrary-precision signed
// (spec §4.1). Division truncates toward zero; mod follows XACML §A.3.6
// (same sign as the dividend, matching Go's big.Int.QuoRem truncated
// semantics).
type IntegerValue struct{ v *big.Int }

// NewInteger wraps n as an IntegerValue.
func NewInteger(n int64) IntegerValue { return IntegerValue{big.NewInt(n)} }

// NewIntegerFromBig wraps a copy of n as an IntegerValue, so later changes to
// n do not affect the (immutable) IntegerValue.
func NewIntegerFromBig(n *big.Int) IntegerValue { return IntegerValue{new(big.Int).Set(n)} }

func (v IntegerValue) Big() *big.Int { return new(big.Int).Set(v.v) }

func (v IntegerValue) Type() Type      { return TypeInteger }
func (v IntegerValue) Lexical() string { return v.v.String() }
func (v IntegerValue) Equal(o Value) bool {
	i, ok := o.(IntegerValue)
	return ok && v.v.Cmp(i.v) == 0
}
func (v IntegerValue) Compare(o Value) (int, error) {
	i, ok := o.(IntegerValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	return v.v.Cmp(i.v), nil
}

// Add, Subtract, Multiply return a new exact IntegerValue.
func (v IntegerValue) Add(o IntegerValue) IntegerValue {
	return IntegerValue{new(big.Int).Add(v.v, o.v)}
}
func (v IntegerValue) Subtract(o IntegerValue) IntegerValue {
	return IntegerValue{new(big.Int).Sub(v.v, o.v)}
}
func (v IntegerValue) Multiply(o IntegerValue) IntegerValue {
	return IntegerValue{new(big.Int).Mul(v.v, o.v)}
}

// Divide implements XACML integer division: truncation toward zero. Returns
// an error on division by zero (spec: integer arithmetic has no infinities).
func (v IntegerValue) Divide(o IntegerValue) (IntegerValue, error) {
	if o.v.Sign() == 0 {
		return IntegerValue{}, fmt.Errorf("integer division by zero")
	}
	q := new(big.Int).Quo(v.v, o.v)
	return IntegerValue{q}, nil
}

// Mod implements XACML §A.3.6 integer-mod: truncated remainder, same sign as
// the dividend.
func (v IntegerValue) Mod(o IntegerValue) (IntegerValue, error) {
	if o.v.Sign() == 0 {
		return IntegerValue{}, fmt.Errorf("integer mod by zero")
	}
	r := new(big.Int).Rem(v.v, o.v)
	return IntegerValue{r}, nil
}

// Abs returns the absolute value.
func (v IntegerValue) Abs() IntegerValue { return IntegerValue{new(big.Int).Abs(v.v)} }

// Negate returns -v.
func (v IntegerValue) Negate() IntegerValue { return IntegerValue{new(big.Int).Neg(v.v)} }

func parseInteger(lexical string) (Value, error) {
	s := strings.TrimSpace(lexical)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a valid xs:integer: %q", lexical)
	}
	return IntegerValue{n}, nil
}

// DoubleValue is the XACML double datatype: IEEE-754 binary64 (spec §4.1).
// floor/round follow XACML §7.5; division by zero yields ±Inf or NaN, never
// a Go error, matching IEEE-754 (no exception).
type DoubleValue float64

func (v DoubleValue) Type() Type      { return TypeDouble }
func (v DoubleValue) Lexical() string { return formatDouble(float64(v)) }
func (v DoubleValue) Equal(o Value) bool {
	d, ok := o.(DoubleValue)
	if !ok {
		return false
	}
	// NaN is never equal to anything, including itself, matching IEEE-754.
	return float64(v) == float64(d)
}
func (v DoubleValue) Compare(o Value) (int, error) {
	d, ok := o.(DoubleValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	a, b := float64(v), float64(d)
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, fmt.Errorf("double comparison involving NaN is undefined")
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

// Floor implements XACML §7.5 floor: rounds toward negative infinity.
func (v DoubleValue) Floor() DoubleValue { return DoubleValue(math.Floor(float64(v))) }

// Round implements XACML §7.5 round: rounds to the nearest integer, ties away
// from zero (matching the reference implementation's mapping onto
// java.lang.Math.round semantics generalized to both signs).
func (v DoubleValue) Round() DoubleValue { return DoubleValue(math.Round(float64(v))) }

func (v DoubleValue) Add(o DoubleValue) DoubleValue      { return v + o }
func (v DoubleValue) Subtract(o DoubleValue) DoubleValue { return v - o }
func (v DoubleValue) Multiply(o DoubleValue) DoubleValue { return v * o }

// Divide follows IEEE-754: division by zero yields ±Inf or NaN, never an
// error (spec §4.1).
func (v DoubleValue) Divide(o DoubleValue) DoubleValue { return v / o }

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func parseDouble(lexical string) (Value, error) {
	s := strings.TrimSpace(lexical)
	switch s {
	case "NaN":
		return DoubleValue(math.NaN()), nil
	case "INF", "+INF":
		return DoubleValue(math.Inf(1)), nil
	case "-INF":
		return DoubleValue(math.Inf(-1)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a valid xs:double: %q", lexical)
	}
	return DoubleValue(f), nil
}

func init() {
	register(&Datatype{ID: TypeInteger, Parse: parseInteger, Ordered: true})
	register(&Datatype{ID: TypeDouble, Parse: parseDouble, Ordered: true})
}
