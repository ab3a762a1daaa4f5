package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// equalityFn registers a -equal function for a concrete datatype: spec
// Annex A.3 defines one per primitive type rather than a single polymorphic
// equals, so mismatched argument types are a ProcessingError, not "false".
func equalityFn(id string, typ value.Type) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := scalar(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := scalar(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		if a.Type() != typ || b.Type() != typ {
			return Arg{}, newProcessingError(id, fmt.Errorf("expected two %s arguments", typ))
		}
		return ScalarArg(value.BooleanValue(a.Equal(b))), nil
	}}
}

// orderedComparisonFn registers one of greater-than/less-than/etc. for any
// Ordered datatype (numeric, date/time, duration).
func orderedComparisonFn(id string, typ value.Type, accept func(cmp int) bool) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		a, err := scalar(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		b, err := scalar(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		if a.Type() != typ || b.Type() != typ {
			return Arg{}, newProcessingError(id, fmt.Errorf("expected two %s arguments", typ))
		}
		oa, ok := a.(value.Ordered)
		if !ok {
			return Arg{}, newProcessingError(id, fmt.Errorf("%s is not an ordered datatype", typ))
		}
		cmp, err := oa.Compare(b)
		if err != nil {
			return Arg{}, newProcessingError(id, err)
		}
		return ScalarArg(value.BooleanValue(accept(cmp))), nil
	}}
}

func init() {
	for _, typ := range []value.Type{
		value.TypeString, value.TypeBoolean, value.TypeInteger, value.TypeDouble,
		value.TypeDate, value.TypeTime, value.TypeDateTime, value.TypeAnyURI,
		value.TypeHexBinary, value.TypeBase64Binary, value.TypeDayTimeDuration,
		value.TypeYearMonthDuration, value.TypeRFC822Name, value.TypeX500Name,
	} {
		shortName := shortDatatypeName(typ)
		Register(equalityFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-equal", shortName), typ))
	}

	for _, typ := range []value.Type{value.TypeInteger, value.TypeDouble, value.TypeDate, value.TypeTime, value.TypeDateTime} {
		shortName := shortDatatypeName(typ)
		Register(orderedComparisonFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-greater-than", shortName), typ, func(c int) bool { return c > 0 }))
		Register(orderedComparisonFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-greater-than-or-equal", shortName), typ, func(c int) bool { return c >= 0 }))
		Register(orderedComparisonFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-less-than", shortName), typ, func(c int) bool { return c < 0 }))
		Register(orderedComparisonFn(fmt.Sprintf("urn:oasis:names:tc:xacml:1.0:function:%s-less-than-or-equal", shortName), typ, func(c int) bool { return c <= 0 }))
	}
}

func shortDatatypeName(typ value.Type) string {
	switch typ {
	case value.TypeString:
		return "string"
	case value.TypeBoolean:
		return "boolean"
	case value.TypeInteger:
		return "integer"
	case value.TypeDouble:
		return "double"
	case value.TypeDate:
		return "date"
	case value.TypeTime:
		return "time"
	case value.TypeDateTime:
		return "dateTime"
	case value.TypeAnyURI:
		return "anyURI"
	case value.TypeHexBinary:
		return "hexBinary"
	case value.TypeBase64Binary:
		return "base64Binary"
	case value.TypeDayTimeDuration:
		return "dayTimeDuration"
	case value.TypeYearMonthDuration:
		return "yearMonthDuration"
	case value.TypeRFC822Name:
		return "rfc822Name"
	case value.TypeX500Name:
		return "x500Name"
	default:
		return string(typ)
	}
}
