package value

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// HexBinaryValue is the XACML hexBinary datatype: raw octets, equality is
// byte-exact (case in the lexical form is not significant).
type HexBinaryValue struct{ b []byte }

func (v HexBinaryValue) Type() Type      { return TypeHexBinary }
func (v HexBinaryValue) Lexical() string { return hex.EncodeToString(v.b) }
func (v HexBinaryValue) Bytes() []byte   { return append([]byte(nil), v.b...) }
func (v HexBinaryValue) Equal(o Value) bool {
	h, ok := o.(HexBinaryValue)
	if !ok || len(h.b) != len(v.b) {
		return false
	}
	for i := range v.b {
		if v.b[i] != h.b[i] {
			return false
		}
	}
	return true
}

func parseHexBinary(lexical string) (Value, error) {
	b, err := hex.DecodeString(lexical)
	if err != nil {
		return nil, fmt.Errorf("not a valid xs:hexBinary: %q", lexical)
	}
	return HexBinaryValue{b: b}, nil
}

// Base64BinaryValue is the XACML base64Binary datatype.
type Base64BinaryValue struct{ b []byte }

func (v Base64BinaryValue) Type() Type      { return TypeBase64Binary }
func (v Base64BinaryValue) Lexical() string { return base64.StdEncoding.EncodeToString(v.b) }
func (v Base64BinaryValue) Bytes() []byte   { return append([]byte(nil), v.b...) }
func (v Base64BinaryValue) Equal(o Value) bool {
	b64, ok := o.(Base64BinaryValue)
	if !ok || len(b64.b) != len(v.b) {
		return false
	}
	for i := range v.b {
		if v.b[i] != b64.b[i] {
			return false
		}
	}
	return true
}

func parseBase64Binary(lexical string) (Value, error) {
	b, err := base64.StdEncoding.DecodeString(lexical)
	if err != nil {
		return nil, fmt.Errorf("not a valid xs:base64Binary: %q", lexical)
	}
	return Base64BinaryValue{b: b}, nil
}

func init() {
	register(&Datatype{ID: TypeHexBinary, Parse: parseHexBinary})
	register(&Datatype{ID: TypeBase64Binary, Parse: parseBase64Binary})
}
