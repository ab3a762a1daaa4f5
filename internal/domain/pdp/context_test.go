package pdp

import (
	"context"
	"testing"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

func TestDesignatorResolvesStoredAttribute(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	ec.SetAttribute(AttributeKey{Category: "subject", AttributeID: "id", Datatype: value.TypeString}, value.StringValue("alice"))

	b, err := ec.Designator("subject", "id", value.TypeString, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 1 || !b.Contains(value.StringValue("alice")) {
		t.Fatalf("expected bag containing alice, got %v", b)
	}
}

func TestDesignatorMissingNotRequired(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	b, err := ec.Designator("subject", "id", value.TypeString, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 0 {
		t.Fatalf("expected empty bag")
	}
}

func TestDesignatorMissingRequired(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	if _, err := ec.Designator("subject", "id", value.TypeString, "", true); err == nil {
		t.Fatalf("expected MissingAttributeError")
	}
}

func TestDesignatorIssuerFallbackWhenNotStrict(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	ec.SetAttribute(AttributeKey{Category: "subject", AttributeID: "id", Datatype: value.TypeString, Issuer: "idp-a"}, value.StringValue("alice"))

	b, err := ec.Designator("subject", "id", value.TypeString, "idp-b", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 1 {
		t.Fatalf("expected fallback to issuer-less match, got size %d", b.Size())
	}
}

func TestDesignatorIssuerStrictRejectsMismatch(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, true, time.Now())
	ec.SetAttribute(AttributeKey{Category: "subject", AttributeID: "id", Datatype: value.TypeString, Issuer: "idp-a"}, value.StringValue("alice"))

	b, err := ec.Designator("subject", "id", value.TypeString, "idp-b", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 0 {
		t.Fatalf("expected no match under strict issuer mode, got size %d", b.Size())
	}
}

func TestVariableMemoizedOnce(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	calls := 0
	counting := countingNode{calls: &calls}
	ec.DefineVariable("v1", counting)

	for i := 0; i < 3; i++ {
		if _, err := ec.Variable("v1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected variable to be evaluated exactly once, got %d", calls)
	}
}

type countingNode struct{ calls *int }

func (n countingNode) Evaluate(context.Context, expr.Context) (expr.Result, error) {
	*n.calls++
	return expr.ScalarResult(value.NewInteger(1)), nil
}

func TestSelectorWithoutXPathEvaluatorErrorsWhenRequired(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	if _, err := ec.Selector("resource", "//foo", value.TypeString, true); err == nil {
		t.Fatalf("expected error: no XPath evaluator configured")
	}
}

func TestSelectorWithoutXPathEvaluatorEmptyBagWhenNotRequired(t *testing.T) {
	ec := NewEvaluationContext(nil, nil, false, time.Now())
	b, err := ec.Selector("resource", "//foo", value.TypeString, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 0 {
		t.Fatalf("expected empty bag")
	}
}

type fakeProvider struct {
	name      string
	category  string
	attribute string
	value     value.Value
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Supplies() []AttributeRef {
	return []AttributeRef{{Category: p.category, AttributeID: p.attribute}}
}
func (p *fakeProvider) Requires() []AttributeRef { return nil }
func (p *fakeProvider) Provide(_ context.Context, category, attributeID string, datatype value.Type, issuer string) (value.Bag, bool, error) {
	if category != p.category || attributeID != p.attribute {
		return value.Bag{}, false, nil
	}
	return value.NewBag(datatype, []value.Value{p.value}), true, nil
}

func TestDesignatorFallsBackToProvider(t *testing.T) {
	provider := &fakeProvider{name: "roles", category: "subject", attribute: "role", value: value.StringValue("admin")}
	ec := NewEvaluationContext([]AttributeProvider{provider}, nil, false, time.Now())

	b, err := ec.Designator("subject", "role", value.TypeString, "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Size() != 1 || !b.Contains(value.StringValue("admin")) {
		t.Fatalf("expected provider-supplied value, got %v", b)
	}
}

func TestValidateProviderGraphDetectsCycle(t *testing.T) {
	a := &cyclicProvider{name: "A", supplies: AttributeRef{Category: "c", AttributeID: "a"}, requires: AttributeRef{Category: "c", AttributeID: "b"}}
	b := &cyclicProvider{name: "B", supplies: AttributeRef{Category: "c", AttributeID: "b"}, requires: AttributeRef{Category: "c", AttributeID: "a"}}
	if err := ValidateProviderGraph([]AttributeProvider{a, b}); err == nil {
		t.Fatalf("expected cycle to be detected")
	}
}

func TestValidateProviderGraphAcceptsAcyclic(t *testing.T) {
	a := &cyclicProvider{name: "A", supplies: AttributeRef{Category: "c", AttributeID: "a"}}
	b := &cyclicProvider{name: "B", supplies: AttributeRef{Category: "c", AttributeID: "b"}, requires: AttributeRef{Category: "c", AttributeID: "a"}}
	if err := ValidateProviderGraph([]AttributeProvider{a, b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type cyclicProvider struct {
	name     string
	supplies AttributeRef
	requires AttributeRef
}

func (p *cyclicProvider) Name() string              { return p.name }
func (p *cyclicProvider) Supplies() []AttributeRef   { return []AttributeRef{p.supplies} }
func (p *cyclicProvider) Requires() []AttributeRef {
	if p.requires == (AttributeRef{}) {
		return nil
	}
	return []AttributeRef{p.requires}
}
func (p *cyclicProvider) Provide(context.Context, string, string, value.Type, string) (value.Bag, bool, error) {
	return value.Bag{}, false, nil
}
