package refresolve

import (
	"context"
	"testing"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
)

func TestVersionCompare(t *testing.T) {
	a, _ := ParseVersion("1.2.3")
	b, _ := ParseVersion("1.2.10")
	if a.Compare(b) >= 0 {
		t.Fatalf("expected 1.2.3 < 1.2.10")
	}
	c, _ := ParseVersion("1.2")
	d, _ := ParseVersion("1.2.0")
	if c.Compare(d) != 0 {
		t.Fatalf("expected 1.2 == 1.2.0 with zero-padding")
	}
}

func TestVersionPatternWildcardAndPlus(t *testing.T) {
	p, _ := ParseVersionPattern("1.*")
	v1, _ := ParseVersion("1.5")
	v2, _ := ParseVersion("2.5")
	if !p.Matches(v1) || p.Matches(v2) {
		t.Fatalf("wildcard pattern matched wrong versions")
	}
	plus, _ := ParseVersionPattern("1.2+")
	ok, _ := ParseVersion("1.5")
	bad, _ := ParseVersion("1.1")
	if !plus.Matches(ok) || plus.Matches(bad) {
		t.Fatalf("plus pattern matched wrong versions")
	}
}

func TestConstraintSelectsNewestMatching(t *testing.T) {
	v1, _ := ParseVersion("1.0")
	v2, _ := ParseVersion("1.5")
	v3, _ := ParseVersion("2.0")
	c := Constraint{}
	got, ok := c.Select([]Version{v1, v2, v3})
	if !ok || got.Compare(v3) != 0 {
		t.Fatalf("expected newest version 2.0, got %v", got)
	}

	pat, _ := ParseVersionPattern("1.*")
	c2 := Constraint{Version: &pat}
	got2, ok2 := c2.Select([]Version{v1, v2, v3})
	if !ok2 || got2.Compare(v2) != 0 {
		t.Fatalf("expected newest matching 1.* to be 1.5, got %v", got2)
	}
}

type stubProvider struct {
	policies    map[string]policytree.Policy
	policySets  map[string]policytree.PolicySet
	versions    map[string][]Version
	resolveErr  error
}

func (p *stubProvider) AvailableVersions(_ context.Context, id string) ([]Version, error) {
	return p.versions[id], nil
}

func (p *stubProvider) ResolvePolicy(_ context.Context, id string, _ Version) (policytree.Policy, error) {
	return p.policies[id], p.resolveErr
}

func (p *stubProvider) ResolvePolicySet(_ context.Context, id string, _ Version) (policytree.PolicySet, error) {
	return p.policySets[id], p.resolveErr
}

func permitPolicy(id string) policytree.Policy {
	alg, _ := combine.Lookup(combine.DenyOverridesRuleID)
	return policytree.Policy{ID: id, Rules: []policytree.Rule{{ID: "r1", Effect: pdp.Permit}}, CombineAlg: alg}
}

func TestPolicyIdReferenceResolvesAndEvaluates(t *testing.T) {
	v1, _ := ParseVersion("1.0")
	provider := &stubProvider{
		policies: map[string]policytree.Policy{"p1": permitPolicy("p1")},
		versions: map[string][]Version{"p1": {v1}},
	}
	ref := PolicyIdReference{ID: "p1", Provider: provider, MaxDepth: 10}
	ec := pdp.NewEvaluationContext(nil, nil, false, time.Now())
	res := ref.Evaluate(context.Background(), ec)
	if res.Decision != pdp.Permit {
		t.Fatalf("expected Permit, got %s", res.Decision)
	}
}

func TestPolicyIdReferenceNoMatchingVersionIsIndeterminate(t *testing.T) {
	provider := &stubProvider{versions: map[string][]Version{"p1": {}}}
	ref := PolicyIdReference{ID: "p1", Provider: provider, MaxDepth: 10}
	ec := pdp.NewEvaluationContext(nil, nil, false, time.Now())
	res := ref.Evaluate(context.Background(), ec)
	if res.Decision != pdp.Indeterminate {
		t.Fatalf("expected Indeterminate, got %s", res.Decision)
	}
}

func TestPolicySetIdReferenceCycleIsIndeterminate(t *testing.T) {
	v1, _ := ParseVersion("1.0")
	provider := &stubProvider{versions: map[string][]Version{"a": {v1}, "b": {v1}}}

	refB := PolicySetIdReference{ID: "b", Provider: provider, MaxDepth: 10}
	refA := PolicySetIdReference{ID: "a", Provider: provider, MaxDepth: 10}

	alg, _ := combine.Lookup(combine.FirstApplicablePolicyID)
	psA := policytree.PolicySet{ID: "a", Children: []policytree.Child{refB}, CombineAlg: alg}
	psB := policytree.PolicySet{ID: "b", Children: []policytree.Child{refA}, CombineAlg: alg}
	provider.policySets = map[string]policytree.PolicySet{"a": psA, "b": psB}

	ec := pdp.NewEvaluationContext(nil, nil, false, time.Now())
	res := refA.Evaluate(context.Background(), ec)
	if res.Decision != pdp.Indeterminate {
		t.Fatalf("expected cycle to surface as Indeterminate, got %s", res.Decision)
	}
}

func TestPolicySetIdReferenceDepthExceeded(t *testing.T) {
	v1, _ := ParseVersion("1.0")
	provider := &stubProvider{versions: map[string][]Version{"a": {v1}, "b": {v1}}}
	refA := PolicySetIdReference{ID: "a", Provider: provider, MaxDepth: 1}
	refB := PolicySetIdReference{ID: "b", Provider: provider, MaxDepth: 1}
	alg, _ := combine.Lookup(combine.FirstApplicablePolicyID)
	psA := policytree.PolicySet{ID: "a", Children: []policytree.Child{refB}, CombineAlg: alg}
	psB := policytree.PolicySet{ID: "b", CombineAlg: alg}
	provider.policySets = map[string]policytree.PolicySet{"a": psA, "b": psB}

	ec := pdp.NewEvaluationContext(nil, nil, false, time.Now())
	res := refA.Evaluate(context.Background(), ec)
	if res.Decision != pdp.Indeterminate {
		t.Fatalf("expected depth-exceeded Indeterminate, got %s", res.Decision)
	}
}

func TestValidateStaticDetectsCycle(t *testing.T) {
	v1, _ := ParseVersion("1.0")
	provider := &stubProvider{versions: map[string][]Version{"a": {v1}, "b": {v1}}}

	refB := PolicySetIdReference{ID: "b", Provider: provider, MaxDepth: 10}
	refA := PolicySetIdReference{ID: "a", Provider: provider, MaxDepth: 10}
	alg, _ := combine.Lookup(combine.FirstApplicablePolicyID)
	psA := policytree.PolicySet{ID: "a", Children: []policytree.Child{refB}, CombineAlg: alg}
	psB := policytree.PolicySet{ID: "b", Children: []policytree.Child{refA}, CombineAlg: alg}
	provider.policySets = map[string]policytree.PolicySet{"a": psA, "b": psB}

	if err := ValidateStatic(context.Background(), psA, 10); err == nil {
		t.Fatal("expected static validation to detect the cycle")
	}
}
