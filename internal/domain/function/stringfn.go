package function

import (
	"fmt"
	"strings"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

const (
	fnStringConcatenate   = "urn:oasis:names:tc:xacml:2.0:function:string-concatenate"
	fnStringStartsWith    = "urn:oasis:names:tc:xacml:3.0:function:string-starts-with"
	fnStringEndsWith      = "urn:oasis:names:tc:xacml:3.0:function:string-ends-with"
	fnStringContains      = "urn:oasis:names:tc:xacml:3.0:function:string-contains"
	fnStringSubstring     = "urn:oasis:names:tc:xacml:3.0:function:string-substring"
	fnStringNormSpace     = "urn:oasis:names:tc:xacml:1.0:function:string-normalize-space"
	fnStringNormLowerCase = "urn:oasis:names:tc:xacml:1.0:function:string-normalize-to-lower-case"
)

func asString(id string, a Arg) (string, error) {
	v, err := scalar(id, a)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.StringValue)
	if !ok {
		return "", newProcessingError(id, fmt.Errorf("expected string, got %s", v.Type()))
	}
	return string(s), nil
}

func init() {
	Register(&Fn{ID: fnStringConcatenate, Call: func(args []Arg) (Arg, error) {
		var b strings.Builder
		for _, a := range args {
			s, err := asString(fnStringConcatenate, a)
			if err != nil {
				return Arg{}, err
			}
			b.WriteString(s)
		}
		return ScalarArg(value.StringValue(b.String())), nil
	}})

	Register(&Fn{ID: fnStringStartsWith, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringStartsWith, args, 2); err != nil {
			return Arg{}, err
		}
		prefix, err := asString(fnStringStartsWith, args[0])
		if err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringStartsWith, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(strings.HasPrefix(s, prefix))), nil
	}})

	Register(&Fn{ID: fnStringEndsWith, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringEndsWith, args, 2); err != nil {
			return Arg{}, err
		}
		suffix, err := asString(fnStringEndsWith, args[0])
		if err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringEndsWith, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(strings.HasSuffix(s, suffix))), nil
	}})

	Register(&Fn{ID: fnStringContains, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringContains, args, 2); err != nil {
			return Arg{}, err
		}
		needle, err := asString(fnStringContains, args[0])
		if err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringContains, args[1])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.BooleanValue(strings.Contains(s, needle))), nil
	}})

	Register(&Fn{ID: fnStringSubstring, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringSubstring, args, 3); err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringSubstring, args[0])
		if err != nil {
			return Arg{}, err
		}
		begin, err := asInteger(fnStringSubstring, args[1])
		if err != nil {
			return Arg{}, err
		}
		end, err := asInteger(fnStringSubstring, args[2])
		if err != nil {
			return Arg{}, err
		}
		runes := []rune(s)
		b := int(begin.Big().Int64())
		e := int(end.Big().Int64())
		if e < 0 {
			e = len(runes)
		}
		if b < 0 || b > len(runes) || e < b || e > len(runes) {
			return Arg{}, newProcessingError(fnStringSubstring, fmt.Errorf("substring bounds [%d,%d) out of range for length %d", b, e, len(runes)))
		}
		return ScalarArg(value.StringValue(string(runes[b:e]))), nil
	}})

	Register(&Fn{ID: fnStringNormSpace, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringNormSpace, args, 1); err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringNormSpace, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.StringValue(strings.Join(strings.Fields(s), " "))), nil
	}})

	Register(&Fn{ID: fnStringNormLowerCase, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnStringNormLowerCase, args, 1); err != nil {
			return Arg{}, err
		}
		s, err := asString(fnStringNormLowerCase, args[0])
		if err != nil {
			return Arg{}, err
		}
		return ScalarArg(value.StringValue(strings.ToLower(s))), nil
	}})
}
