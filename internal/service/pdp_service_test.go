package service

import (
	"context"
	"testing"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

func allowAdminsPolicy() policytree.Policy {
	denyOverrides, _ := combine.Lookup(combine.DenyOverridesRuleID)
	return policytree.Policy{
		ID: "allow-admins",
		Target: &policytree.Target{AnyOfs: []policytree.AnyOf{{AllOfs: []policytree.AllOf{{Matches: []policytree.Match{{
			FunctionID:     "urn:oasis:names:tc:xacml:1.0:function:string-equal",
			AttributeValue: value.StringValue("admin"),
			Designator: &expr.Designator{
				Category:    "subject",
				AttributeID: "role",
				Datatype:    value.TypeString,
			},
		}}}}}}},
		Rules: []policytree.Rule{
			{ID: "permit-admin", Effect: pdp.Permit},
		},
		CombineAlg: denyOverrides,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(allowAdminsPolicy(), false)
}

func TestEvaluatePermitsMatchingSubject(t *testing.T) {
	s := newTestService(t)
	req := Request{Categories: []CategoryAttributes{{
		Category: "subject",
		Attributes: []RequestAttribute{{
			AttributeID: "role",
			Datatype:    value.TypeString,
			Values:      []string{"admin"},
		}},
	}}}

	resp, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(resp.Results))
	}
	if resp.Results[0].Decision != pdp.Permit {
		t.Fatalf("expected Permit, got %v (%v)", resp.Results[0].Decision, resp.Results[0].Status)
	}
}

func TestEvaluateNotApplicableWhenTargetMisses(t *testing.T) {
	s := newTestService(t)
	req := Request{Categories: []CategoryAttributes{{
		Category: "subject",
		Attributes: []RequestAttribute{{
			AttributeID: "role",
			Datatype:    value.TypeString,
			Values:      []string{"guest"},
		}},
	}}}

	resp, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Decision != pdp.NotApplicable {
		t.Fatalf("expected NotApplicable, got %v", resp.Results[0].Decision)
	}
}

func TestEvaluateCombinedDecisionRejectedByDefaultResultFilter(t *testing.T) {
	s := newTestService(t)
	req := Request{CombinedDecision: true}

	resp, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Decision != pdp.Indeterminate {
		t.Fatalf("expected Indeterminate for unsupported CombinedDecision, got %v", resp.Results[0].Decision)
	}
	if resp.Results[0].Status.Code != pdp.StatusSyntaxError {
		t.Fatalf("expected SyntaxError status, got %v", resp.Results[0].Status.Code)
	}
}

func TestEvaluateEchoesRequestedAttributes(t *testing.T) {
	s := newTestService(t)
	req := Request{Categories: []CategoryAttributes{{
		Category: "subject",
		Attributes: []RequestAttribute{{
			AttributeID:     "role",
			Datatype:        value.TypeString,
			Values:          []string{"admin"},
			IncludeInResult: true,
		}},
	}}}

	resp, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results[0].Echoed) != 1 || resp.Results[0].Echoed[0].AttributeID != "role" {
		t.Fatalf("expected echoed role attribute, got %v", resp.Results[0].Echoed)
	}
}

type countingCache struct {
	gets, puts int
	store      map[string]Result
}

func newCountingCache() *countingCache {
	return &countingCache{store: map[string]Result{}}
}

func (c *countingCache) GetAll(_ context.Context, keys []string) (map[string]Result, error) {
	c.gets++
	hits := map[string]Result{}
	for _, k := range keys {
		if r, ok := c.store[k]; ok {
			hits[k] = r
		}
	}
	return hits, nil
}

func (c *countingCache) PutAll(_ context.Context, results map[string]Result) error {
	c.puts++
	for k, r := range results {
		c.store[k] = r
	}
	return nil
}

func TestEvaluateSecondIdenticalRequestHitsCache(t *testing.T) {
	cache := newCountingCache()
	s := NewService(allowAdminsPolicy(), false, WithCache(cache))
	req := Request{Categories: []CategoryAttributes{{
		Category: "subject",
		Attributes: []RequestAttribute{{
			AttributeID: "role",
			Datatype:    value.TypeString,
			Values:      []string{"admin"},
		}},
	}}}

	if _, err := s.Evaluate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Evaluate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.puts != 1 {
		t.Fatalf("expected exactly one write-back, got %d", cache.puts)
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// currentTimeRule builds a Permit rule whose Condition reads the
// PDP-issued current-dateTime environment designator and compares it for
// equality against the literal lexical form lit.
func currentTimeRule(lit string) policytree.Rule {
	return policytree.Rule{
		ID:     "r1",
		Effect: pdp.Permit,
		Condition: &expr.Apply{
			FunctionID: "urn:oasis:names:tc:xacml:1.0:function:dateTime-equal",
			Args: []expr.Node{
				&expr.Apply{
					FunctionID: "urn:oasis:names:tc:xacml:1.0:function:dateTime-one-and-only",
					Args: []expr.Node{
						&expr.Designator{
							Category:      environmentCategory,
							AttributeID:   currentDateTimeAttrID,
							Datatype:      value.TypeDateTime,
							MustBePresent: true,
						},
					},
				},
				&expr.Literal{Value: mustParseDateTime(lit)},
			},
		},
	}
}

func mustParseDateTime(lexical string) value.Value {
	v, err := value.Parse(value.TypeDateTime, lexical)
	if err != nil {
		panic(err)
	}
	return v
}

func TestEvaluateSeedsCurrentDateTimeFromClockSample(t *testing.T) {
	denyOverrides, _ := combine.Lookup(combine.DenyOverridesRuleID)
	now := time.Date(2030, time.March, 4, 12, 30, 0, 0, time.UTC)
	root := policytree.Policy{
		ID:         "clock-policy",
		Rules:      []policytree.Rule{currentTimeRule("2030-03-04T12:30:00Z")},
		CombineAlg: denyOverrides,
	}
	s := NewService(root, false, WithClock(fixedClock{t: now}))

	resp, err := s.Evaluate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].Decision != pdp.Permit {
		t.Fatalf("expected Permit from a Condition matching the seeded clock sample, got %v (%v)", resp.Results[0].Decision, resp.Results[0].Status)
	}
}

func TestEvaluateReturnPolicyIdListIncludesRootID(t *testing.T) {
	s := newTestService(t)
	req := Request{
		ReturnPolicyIdList: true,
		Categories: []CategoryAttributes{{
			Category: "subject",
			Attributes: []RequestAttribute{{
				AttributeID: "role",
				Datatype:    value.TypeString,
				Values:      []string{"admin"},
			}},
		}},
	}

	resp, err := s.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := resp.Results[0].PolicyIdentifierList
	if len(ids) != 1 || ids[0] != "allow-admins" {
		t.Fatalf("expected [allow-admins], got %v", ids)
	}
}
