package value

import "fmt"

func typeMismatch(a, b Value) error {
	return fmt.Errorf("value: cannot compare %s with %s", a.Type(), b.Type())
}

func errInvalidBoolean(lexical string) error {
	return fmt.Errorf("not a valid xs:boolean: %q", lexical)
}
