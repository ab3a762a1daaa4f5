package expr

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

type fakeContext struct {
	designators map[string]value.Bag
	variables   map[string]Result
}

func (f *fakeContext) Designator(category, attributeID string, datatype value.Type, issuer string, mustBePresent bool) (value.Bag, error) {
	key := category + "|" + attributeID
	if b, ok := f.designators[key]; ok {
		return b, nil
	}
	if mustBePresent {
		return value.Bag{}, errMissing(attributeID)
	}
	return value.EmptyBag(datatype), nil
}

func (f *fakeContext) Selector(contextSelectorID, path string, datatype value.Type, mustBePresent bool) (value.Bag, error) {
	return value.EmptyBag(datatype), nil
}

func (f *fakeContext) Variable(id string) (Result, error) {
	if r, ok := f.variables[id]; ok {
		return r, nil
	}
	return Result{}, errMissing(id)
}

type missingErr string

func (e missingErr) Error() string { return "missing: " + string(e) }
func errMissing(id string) error   { return missingErr(id) }

func TestApplyStringEqual(t *testing.T) {
	n := &Apply{
		FunctionID: "urn:oasis:names:tc:xacml:1.0:function:string-equal",
		Args: []Node{
			&Literal{Value: value.StringValue("a")},
			&Literal{Value: value.StringValue("a")},
		},
	}
	r, err := n.Evaluate(context.Background(), &fakeContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bool(r.Scalar.(value.BooleanValue)) {
		t.Fatalf("expected true")
	}
}

func TestAndShortCircuitsWithoutEvaluatingLaterArg(t *testing.T) {
	evaluated := false
	poison := nodeFunc(func(context.Context, Context) (Result, error) {
		evaluated = true
		return Result{}, fmt.Errorf("should never be evaluated")
	})
	n := &Apply{
		FunctionID: "urn:oasis:names:tc:xacml:1.0:function:and",
		Args:       []Node{&Literal{Value: value.BooleanValue(false)}, poison},
	}
	r, err := n.Evaluate(context.Background(), &fakeContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bool(r.Scalar.(value.BooleanValue)) {
		t.Fatalf("expected false")
	}
	if evaluated {
		t.Fatalf("second argument of and must not be evaluated once the first is false")
	}
}

func TestDesignatorResolvesFromContext(t *testing.T) {
	bag := value.NewBag(value.TypeString, []value.Value{value.StringValue("alice")})
	ec := &fakeContext{designators: map[string]value.Bag{"subject|id": bag}}
	n := &Designator{Category: "subject", AttributeID: "id", Datatype: value.TypeString}
	r, err := n.Evaluate(context.Background(), ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsBag() || r.Bag.Size() != 1 {
		t.Fatalf("expected a 1-element bag")
	}
}

func TestMissingMustBePresentDesignatorErrors(t *testing.T) {
	ec := &fakeContext{}
	n := &Designator{Category: "subject", AttributeID: "id", Datatype: value.TypeString, MustBePresent: true}
	if _, err := n.Evaluate(context.Background(), ec); err == nil {
		t.Fatalf("expected error for missing required attribute")
	}
}

func TestVariableReferenceMemoizedByContext(t *testing.T) {
	ec := &fakeContext{variables: map[string]Result{"v1": ScalarResult(value.NewInteger(42))}}
	n := &VariableReference{VariableID: "v1"}
	r, err := n.Evaluate(context.Background(), ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Scalar.(value.IntegerValue).Big().Int64() != 42 {
		t.Fatalf("got %v", r.Scalar)
	}
}

func TestHigherOrderAnyOf(t *testing.T) {
	n := &Apply{
		FunctionID: "urn:oasis:names:tc:xacml:3.0:function:any-of",
		Args: []Node{
			&FunctionRef{FunctionID: "urn:oasis:names:tc:xacml:1.0:function:string-equal"},
			&BagLiteral{Bag: value.NewBag(value.TypeString, []value.Value{value.StringValue("a"), value.StringValue("b")})},
			&Literal{Value: value.StringValue("b")},
		},
	}
	r, err := n.Evaluate(context.Background(), &fakeContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bool(r.Scalar.(value.BooleanValue)) {
		t.Fatalf("expected true")
	}
}

func TestFoldConstantSubtree(t *testing.T) {
	n := &Apply{
		FunctionID: "urn:oasis:names:tc:xacml:1.0:function:integer-add",
		Args: []Node{
			&Literal{Value: value.NewInteger(2)},
			&Literal{Value: value.NewInteger(3)},
		},
	}
	folded := Fold(n)
	lit, ok := folded.(*Literal)
	if !ok {
		t.Fatalf("expected constant folding to produce a Literal, got %T", folded)
	}
	if lit.Value.(value.IntegerValue).Big().Int64() != 5 {
		t.Fatalf("got %v", lit.Value)
	}
}

func TestFoldLeavesDesignatorUnfolded(t *testing.T) {
	n := &Apply{
		FunctionID: "urn:oasis:names:tc:xacml:1.0:function:string-equal",
		Args: []Node{
			&Designator{Category: "subject", AttributeID: "id", Datatype: value.TypeString},
			&Literal{Value: value.StringValue("a")},
		},
	}
	folded := Fold(n)
	if _, ok := folded.(*Literal); ok {
		t.Fatalf("expression referencing a designator must not be folded to a constant")
	}
}

func TestValidateRejectsExcessiveNesting(t *testing.T) {
	var n Node = &Literal{Value: value.BooleanValue(true)}
	for i := 0; i < 10; i++ {
		n = &Apply{FunctionID: "urn:oasis:names:tc:xacml:1.0:function:not", Args: []Node{n}}
	}
	if err := Validate(n, Limits{MaxNestingDepth: 5, MaxNodeCount: 1000}); err == nil {
		t.Fatalf("expected nesting-depth rejection")
	}
}

func TestEvaluateTimesOut(t *testing.T) {
	slow := nodeFunc(func(ctx context.Context, ec Context) (Result, error) {
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	_, err := Evaluate(context.Background(), slow, &fakeContext{}, Limits{EvalTimeout: 10 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}

// nodeFunc adapts a plain function to the Node interface for test doubles.
type nodeFunc func(context.Context, Context) (Result, error)

func (f nodeFunc) Evaluate(ctx context.Context, ec Context) (Result, error) { return f(ctx, ec) }
