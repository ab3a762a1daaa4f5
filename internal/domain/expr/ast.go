// Package expr implements the XACML 3.0 expression language: Apply, the
// AttributeDesignator/AttributeSelector leaf references, VariableReference,
// and literal AttributeValues (spec §4.1, §4.3, §4.4). Evaluation is
// side-effect free except for reads through the Context it is given; it
// never blocks except through that Context's own I/O (e.g. a PIP-backed
// designator lookup).
package expr

import (
	"context"
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/function"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// Result is the outcome of evaluating a Node: either a scalar Value or a
// Bag, mirroring function.Arg (spec §4.1: bags are never nested).
type Result struct {
	Scalar value.Value
	Bag    *value.Bag
}

func ScalarResult(v value.Value) Result { return Result{Scalar: v} }
func BagResult(b value.Bag) Result      { return Result{Bag: &b} }

func (r Result) IsBag() bool { return r.Bag != nil }

func (r Result) Type() value.Type {
	if r.Bag != nil {
		return r.Bag.ElementType()
	}
	return r.Scalar.Type()
}

func toArg(r Result) function.Arg {
	if r.Bag != nil {
		return function.BagArg(*r.Bag)
	}
	return function.ScalarArg(r.Scalar)
}

func fromArg(a function.Arg) Result {
	if a.IsBag() {
		return BagResult(*a.Bag)
	}
	return ScalarResult(a.Scalar)
}

// Context is everything a Node needs from its surrounding evaluation to
// resolve a leaf reference. The pdp package's EvaluationContext implements
// this; expr depends only on this narrow interface so the two packages do
// not import each other.
type Context interface {
	// Designator resolves an AttributeDesignator (spec §4.3.2): the bag of
	// all values of the named attribute in the given category, restricted to
	// issuer if issuer is non-empty. Returns an empty bag, never an error,
	// when mustBePresent is false and nothing matches; returns an error
	// (surfaced as Indeterminate{MissingAttribute}) when mustBePresent is
	// true and nothing matches.
	Designator(category, attributeID string, datatype value.Type, issuer string, mustBePresent bool) (value.Bag, error)

	// Selector resolves an AttributeSelector (spec §4.3.3) against the
	// content of contextSelectorID's category (or the designated default
	// category) using path. XPath evaluation itself is an injected
	// capability (spec: out of scope to implement), so implementations that
	// have not wired an XPath engine return an error when mustBePresent is
	// true and an empty bag otherwise.
	Selector(contextSelectorID, path string, datatype value.Type, mustBePresent bool) (value.Bag, error)

	// Variable resolves a VariableReference (spec §4.4) by id, evaluating
	// and memoizing the referenced VariableDefinition's expression exactly
	// once per request (spec §8 property: a VariableDefinition referenced N
	// times is evaluated once).
	Variable(id string) (Result, error)
}

// Node is one expression-tree element.
type Node interface {
	Evaluate(ctx context.Context, ec Context) (Result, error)
}

// Literal is a constant AttributeValue (spec §4.1).
type Literal struct {
	Value value.Value
}

func (n *Literal) Evaluate(context.Context, Context) (Result, error) {
	return ScalarResult(n.Value), nil
}

// BagLiteral is a constant bag, produced only by constant folding a bag-
// constructor Apply whose arguments were all literals.
type BagLiteral struct {
	Bag value.Bag
}

func (n *BagLiteral) Evaluate(context.Context, Context) (Result, error) {
	return BagResult(n.Bag), nil
}

// Designator is an AttributeDesignator reference.
type Designator struct {
	Category      string
	AttributeID   string
	Datatype      value.Type
	Issuer        string
	MustBePresent bool
}

func (n *Designator) Evaluate(_ context.Context, ec Context) (Result, error) {
	b, err := ec.Designator(n.Category, n.AttributeID, n.Datatype, n.Issuer, n.MustBePresent)
	if err != nil {
		return Result{}, err
	}
	return BagResult(b), nil
}

// Selector is an AttributeSelector reference.
type Selector struct {
	ContextSelectorID string
	Path              string
	Datatype          value.Type
	MustBePresent     bool
}

func (n *Selector) Evaluate(_ context.Context, ec Context) (Result, error) {
	b, err := ec.Selector(n.ContextSelectorID, n.Path, n.Datatype, n.MustBePresent)
	if err != nil {
		return Result{}, err
	}
	return BagResult(b), nil
}

// VariableReference is a reference to a VariableDefinition by id.
type VariableReference struct {
	VariableID string
}

func (n *VariableReference) Evaluate(_ context.Context, ec Context) (Result, error) {
	return ec.Variable(n.VariableID)
}

// FunctionRef names a standard function without applying it: the only legal
// use is as the first child of an Apply whose FunctionID is one of the
// higher-order bag functions (spec §4.1: "Function" element used as a
// first-class value).
type FunctionRef struct {
	FunctionID string
}

func (n *FunctionRef) Evaluate(context.Context, Context) (Result, error) {
	return Result{}, fmt.Errorf("expr: function %q referenced outside of a higher-order Apply", n.FunctionID)
}

// Apply is a function application (spec §4.2). If FunctionID names one of
// the higher-order bag functions, Args[0] must be a *FunctionRef and is not
// evaluated as an ordinary operand; the sub-function is looked up and
// invoked with the remaining, evaluated arguments. If FunctionID is "and" or
// "or", arguments are evaluated lazily left-to-right with early exit on the
// first decisive value (spec Annex A.3: "and" short-circuits on the first
// false, "or" on the first true), so an error in an argument that is never
// reached is never surfaced.
type Apply struct {
	FunctionID string
	Args       []Node
}

func (n *Apply) Evaluate(ctx context.Context, ec Context) (Result, error) {
	if ho, ok := function.LookupHigherOrder(n.FunctionID); ok {
		return n.evaluateHigherOrder(ctx, ec, ho)
	}
	switch n.FunctionID {
	case function.FnAnd:
		return n.evaluateShortCircuit(ctx, ec, false)
	case function.FnOr:
		return n.evaluateShortCircuit(ctx, ec, true)
	}

	fn, ok := function.Lookup(n.FunctionID)
	if !ok {
		return Result{}, fmt.Errorf("expr: unknown function %q", n.FunctionID)
	}
	args, err := evaluateAll(ctx, ec, n.Args)
	if err != nil {
		return Result{}, err
	}
	out, err := fn.Call(args)
	if err != nil {
		return Result{}, err
	}
	return fromArg(out), nil
}

func (n *Apply) evaluateHigherOrder(ctx context.Context, ec Context, ho *function.HigherOrder) (Result, error) {
	if len(n.Args) == 0 {
		return Result{}, fmt.Errorf("expr: %s requires a function reference as its first argument", n.FunctionID)
	}
	ref, ok := n.Args[0].(*FunctionRef)
	if !ok {
		return Result{}, fmt.Errorf("expr: %s's first argument must be a function reference", n.FunctionID)
	}
	sub, ok := function.Lookup(ref.FunctionID)
	if !ok {
		return Result{}, fmt.Errorf("expr: unknown function %q", ref.FunctionID)
	}
	args, err := evaluateAll(ctx, ec, n.Args[1:])
	if err != nil {
		return Result{}, err
	}
	out, err := ho.Invoke(sub, args)
	if err != nil {
		return Result{}, err
	}
	return fromArg(out), nil
}

func (n *Apply) evaluateShortCircuit(ctx context.Context, ec Context, decisiveOn bool) (Result, error) {
	allTrueFallback := value.BooleanValue(!decisiveOn)
	for _, arg := range n.Args {
		r, err := arg.Evaluate(ctx, ec)
		if err != nil {
			return Result{}, err
		}
		b, ok := r.Scalar.(value.BooleanValue)
		if !ok {
			return Result{}, fmt.Errorf("expr: %s argument did not evaluate to boolean", n.FunctionID)
		}
		if bool(b) == decisiveOn {
			return ScalarResult(value.BooleanValue(decisiveOn)), nil
		}
	}
	return ScalarResult(allTrueFallback), nil
}

func evaluateAll(ctx context.Context, ec Context, nodes []Node) ([]function.Arg, error) {
	args := make([]function.Arg, 0, len(nodes))
	for _, node := range nodes {
		r, err := node.Evaluate(ctx, ec)
		if err != nil {
			return nil, err
		}
		args = append(args, toArg(r))
	}
	return args, nil
}
