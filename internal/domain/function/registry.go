// Package function implements the XACML 3.0 standard function library
// (spec §3, Annex A.3): arithmetic, comparison, logical, bag/set, string, and
// name-matching functions, plus the higher-order functions (any-of, all-of,
// map, and their -any/-all variants) that apply a named function across a
// bag. Every function is a pure, side-effect-free transform over value.Value
// (spec §4.2: function evaluation never blocks and never fails except by
// returning a ProcessingError).
package function

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// Arg is a single evaluated function argument or return value: either a
// scalar Value or a Bag, never both (spec §4.1: bags are never nested, and a
// bag is a distinct kind of thing from the scalar it bags).
type Arg struct {
	Scalar value.Value
	Bag    *value.Bag
}

// ScalarArg wraps a scalar value.Value as an Arg.
func ScalarArg(v value.Value) Arg { return Arg{Scalar: v} }

// BagArg wraps a value.Bag as an Arg.
func BagArg(b value.Bag) Arg { return Arg{Bag: &b} }

// IsBag reports whether a carries a bag rather than a scalar.
func (a Arg) IsBag() bool { return a.Bag != nil }

// Type returns the element datatype of a, whether a is a bag or a scalar.
func (a Arg) Type() value.Type {
	if a.Bag != nil {
		return a.Bag.ElementType()
	}
	return a.Scalar.Type()
}

// ProcessingError reports a function evaluation failure that must surface as
// Indeterminate{ProcessingError} to the caller (spec §7): a malformed
// argument that type-checked but is semantically invalid at evaluation time,
// e.g. division by zero, or a *-one-and-only call against a bag whose size
// is not exactly one.
type ProcessingError struct {
	FunctionID string
	Err        error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("function %s: %v", e.FunctionID, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

func newProcessingError(id string, err error) error {
	return &ProcessingError{FunctionID: id, Err: err}
}

// Fn is one registered standard function: a fixed identity (the function's
// URI, spec Annex A.3) and the Go closure that implements it.
type Fn struct {
	ID   string
	Call func(args []Arg) (Arg, error)
}

var registry = map[string]*Fn{}

// Register adds fn to the standard function registry. Called only from
// package init(); panics on ID collision since that indicates a programming
// error, not a runtime condition.
func Register(fn *Fn) {
	if _, dup := registry[fn.ID]; dup {
		panic(fmt.Sprintf("function: duplicate registration for %s", fn.ID))
	}
	registry[fn.ID] = fn
}

// Lookup returns the Fn registered under id, or false if id does not name a
// known standard function.
func Lookup(id string) (*Fn, bool) {
	fn, ok := registry[id]
	return fn, ok
}

// mustArgs validates arg count and returns a ProcessingError-wrapped error on
// mismatch; functions call this first so later code can assume len(args).
func mustArgs(id string, args []Arg, n int) error {
	if len(args) != n {
		return newProcessingError(id, fmt.Errorf("expected %d argument(s), got %d", n, len(args)))
	}
	return nil
}

func scalar(id string, a Arg) (value.Value, error) {
	if a.IsBag() {
		return nil, newProcessingError(id, fmt.Errorf("expected a scalar argument, got a bag"))
	}
	return a.Scalar, nil
}

func bag(id string, a Arg) (value.Bag, error) {
	if !a.IsBag() {
		return value.Bag{}, newProcessingError(id, fmt.Errorf("expected a bag argument, got a scalar"))
	}
	return *a.Bag, nil
}
