// Package value implements the XACML 3.0 primitive datatypes and bag algebra
// (spec §3, §4.1). Every Value is immutable; equality is value-equality and
// hashing agrees with equality.
package value

import "fmt"

// Type identifies a primitive XACML datatype by its canonical URI.
type Type string

// The closed set of primitive datatypes the engine recognizes.
const (
	TypeString             Type = "http://www.w3.org/2001/XMLSchema#string"
	TypeBoolean            Type = "http://www.w3.org/2001/XMLSchema#boolean"
	TypeInteger            Type = "http://www.w3.org/2001/XMLSchema#integer"
	TypeDouble             Type = "http://www.w3.org/2001/XMLSchema#double"
	TypeTime               Type = "http://www.w3.org/2001/XMLSchema#time"
	TypeDate               Type = "http://www.w3.org/2001/XMLSchema#date"
	TypeDateTime           Type = "http://www.w3.org/2001/XMLSchema#dateTime"
	TypeDayTimeDuration    Type = "urn:oasis:names:tc:xacml:2.0:data-type:dayTimeDuration"
	TypeYearMonthDuration  Type = "urn:oasis:names:tc:xacml:2.0:data-type:yearMonthDuration"
	TypeAnyURI             Type = "http://www.w3.org/2001/XMLSchema#anyURI"
	TypeHexBinary          Type = "http://www.w3.org/2001/XMLSchema#hexBinary"
	TypeBase64Binary       Type = "http://www.w3.org/2001/XMLSchema#base64Binary"
	TypeRFC822Name         Type = "urn:oasis:names:tc:xacml:1.0:data-type:rfc822Name"
	TypeX500Name           Type = "urn:oasis:names:tc:xacml:1.0:data-type:x500Name"
	TypeIPAddress          Type = "urn:oasis:names:tc:xacml:2.0:data-type:ipAddress"
	TypeDNSName            Type = "urn:oasis:names:tc:xacml:2.0:data-type:dnsName"
	TypeXPathExpression    Type = "urn:oasis:names:tc:xacml:3.0:data-type:xpathExpression"
)

// Value is an immutable instance of some primitive XACML datatype.
type Value interface {
	// Type returns the datatype URI of this value.
	Type() Type
	// Lexical returns the canonical lexical (print) form. parse(print(v)) must
	// reproduce a value equal to v (spec §8 property 7).
	Lexical() string
	// Equal reports whether this value is XACML-equal to other. Callers must
	// only compare values of the same Type; cross-type comparisons are false.
	Equal(other Value) bool
}

// Ordered is implemented by values whose datatype has a total order (numeric,
// temporal, and duration types). Compare returns -1/0/1.
type Ordered interface {
	Value
	Compare(other Value) (int, error)
}

// Datatype is the registry entry for one primitive type: how to parse its
// lexical form, and whether it supports a total order.
type Datatype struct {
	ID      Type
	Parse   func(lexical string) (Value, error)
	Ordered bool
}

var registry = map[Type]*Datatype{}

func register(dt *Datatype) {
	registry[dt.ID] = dt
}

// Lookup returns the Datatype registered for id, or false if id is not one of
// the closed set of primitive datatypes the engine recognizes.
func Lookup(id Type) (*Datatype, bool) {
	dt, ok := registry[id]
	return dt, ok
}

// Parse parses lexical as a value of the given datatype. Returns a SyntaxError
// (per spec §7) wrapped as a plain Go error; callers in the evaluation hot
// path convert this into an Indeterminate{SyntaxError}.
func Parse(id Type, lexical string) (Value, error) {
	dt, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("value: unknown datatype %q", id)
	}
	v, err := dt.Parse(lexical)
	if err != nil {
		return nil, fmt.Errorf("value: invalid lexical form %q for %s: %w", lexical, id, err)
	}
	return v, nil
}

// IsOrdered reports whether the given datatype has total-order semantics.
func IsOrdered(id Type) bool {
	dt, ok := Lookup(id)
	return ok && dt.Ordered
}
