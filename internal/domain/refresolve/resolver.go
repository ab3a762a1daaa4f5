package refresolve

import (
	"context"
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
)

// RefPolicyProvider resolves a PolicyIdReference/PolicySetIdReference to a
// concrete Policy or PolicySet, given the reference's id and version
// constraint (spec §4.8 C8, the "refPolicyProvider" configuration option).
type RefPolicyProvider interface {
	// AvailableVersions lists every version of id the provider can serve, so
	// Constraint.Select can pick the newest one satisfying the reference.
	AvailableVersions(ctx context.Context, id string) ([]Version, error)
	ResolvePolicy(ctx context.Context, id string, version Version) (policytree.Policy, error)
	ResolvePolicySet(ctx context.Context, id string, version Version) (policytree.PolicySet, error)
}

// chainEntry is one link of the reference chain carried on ctx: the
// (PolicyId, Version) of a Policy(Set)IdReference currently being
// followed (spec §4.8: "the ordered list of (PolicyId, Version) currently
// being evaluated").
type chainEntry struct {
	id      string
	version Version
}

type chainKeyType struct{}

var chainKey = chainKeyType{}

func chainFrom(ctx context.Context) []chainEntry {
	v, _ := ctx.Value(chainKey).([]chainEntry)
	return v
}

// follow extends the chain carried on ctx with (id, version), rejecting the
// follow if it would exceed maxDepth or revisit an id+version already on
// the chain (spec §4.8 (a)/(b)).
func follow(ctx context.Context, id string, version Version, maxDepth int) (context.Context, error) {
	chain := chainFrom(ctx)
	for _, e := range chain {
		if e.id == id && e.version.Compare(version) == 0 {
			return ctx, fmt.Errorf("refresolve: cyclic reference to %s v%s", id, version)
		}
	}
	if len(chain) >= maxDepth {
		return ctx, fmt.Errorf("refresolve: reference chain depth exceeded (max %d)", maxDepth)
	}
	next := append(append([]chainEntry{}, chain...), chainEntry{id: id, version: version})
	return context.WithValue(ctx, chainKey, next), nil
}

// PolicyIdReference is a dynamically-resolved <PolicyIdReference>: on
// Evaluate it asks Provider for the newest version satisfying Constraint,
// checks the reference chain, and evaluates the resolved Policy in its
// place. Implements policytree.Child so it can appear directly among a
// PolicySet's Children.
type PolicyIdReference struct {
	ID         string
	Constraint Constraint
	Provider   RefPolicyProvider
	MaxDepth   int
}

func (r PolicyIdReference) Evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result {
	version, err := r.resolveVersion(ctx)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	nextCtx, err := follow(ctx, r.ID, version, r.MaxDepth)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	p, err := r.Provider.ResolvePolicy(nextCtx, r.ID, version)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	return p.Evaluate(nextCtx, ec)
}

func (r PolicyIdReference) resolveVersion(ctx context.Context) (Version, error) {
	versions, err := r.Provider.AvailableVersions(ctx, r.ID)
	if err != nil {
		return Version{}, err
	}
	v, ok := r.Constraint.Select(versions)
	if !ok {
		return Version{}, fmt.Errorf("refresolve: no version of %s satisfies the reference's version constraint", r.ID)
	}
	return v, nil
}

// PolicySetIdReference is the PolicySet analogue of PolicyIdReference.
type PolicySetIdReference struct {
	ID         string
	Constraint Constraint
	Provider   RefPolicyProvider
	MaxDepth   int
}

func (r PolicySetIdReference) Evaluate(ctx context.Context, ec *pdp.EvaluationContext) pdp.Result {
	versions, err := r.Provider.AvailableVersions(ctx, r.ID)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	version, ok := r.Constraint.Select(versions)
	if !ok {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(fmt.Sprintf("refresolve: no version of %s satisfies the reference's version constraint", r.ID)), pdp.ExtDP)
	}
	nextCtx, err := follow(ctx, r.ID, version, r.MaxDepth)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	ps, err := r.Provider.ResolvePolicySet(nextCtx, r.ID, version)
	if err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP)
	}
	return ps.Evaluate(nextCtx, ec)
}

// ValidateStatic eagerly walks every reference reachable from root,
// rejecting the policy graph at load time if it contains a cycle or a
// chain longer than maxDepth (spec §4.8 "static (eager)" mode), instead of
// deferring the check to request time the way the dynamic Evaluate path
// above does.
func ValidateStatic(ctx context.Context, root policytree.Child, maxDepth int) error {
	return walkStatic(ctx, root, nil, maxDepth)
}

func walkStatic(ctx context.Context, node policytree.Child, chain []chainEntry, maxDepth int) error {
	switch n := node.(type) {
	case PolicyIdReference:
		version, err := n.resolveVersion(ctx)
		if err != nil {
			return err
		}
		next, err := appendChain(chain, n.ID, version, maxDepth)
		if err != nil {
			return err
		}
		p, err := n.Provider.ResolvePolicy(ctx, n.ID, version)
		if err != nil {
			return err
		}
		_ = next
		_ = p
		return nil
	case PolicySetIdReference:
		versions, err := n.Provider.AvailableVersions(ctx, n.ID)
		if err != nil {
			return err
		}
		version, ok := n.Constraint.Select(versions)
		if !ok {
			return fmt.Errorf("refresolve: no version of %s satisfies the reference's version constraint", n.ID)
		}
		next, err := appendChain(chain, n.ID, version, maxDepth)
		if err != nil {
			return err
		}
		ps, err := n.Provider.ResolvePolicySet(ctx, n.ID, version)
		if err != nil {
			return err
		}
		for _, child := range ps.Children {
			if err := walkStatic(ctx, child, next, maxDepth); err != nil {
				return err
			}
		}
		return nil
	case policytree.PolicySet:
		for _, child := range n.Children {
			if err := walkStatic(ctx, child, chain, maxDepth); err != nil {
				return err
			}
		}
		return nil
	default:
		// policytree.Policy and any other leaf Child carry no further
		// references to follow.
		return nil
	}
}

func appendChain(chain []chainEntry, id string, version Version, maxDepth int) ([]chainEntry, error) {
	for _, e := range chain {
		if e.id == id && e.version.Compare(version) == 0 {
			return nil, fmt.Errorf("refresolve: cyclic reference to %s v%s", id, version)
		}
	}
	if len(chain) >= maxDepth {
		return nil, fmt.Errorf("refresolve: reference chain depth exceeded (max %d)", maxDepth)
	}
	return append(append([]chainEntry{}, chain...), chainEntry{id: id, version: version}), nil
}
