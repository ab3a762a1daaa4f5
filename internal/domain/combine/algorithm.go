// Package combine implements the XACML 3.0 rule- and policy-combining
// algorithms (spec §4.7, Annex C): deny-overrides, permit-overrides,
// first-applicable, only-one-applicable, deny-unless-permit,
// permit-unless-deny, and on-permit-apply-second, each operating uniformly
// over rules, policies, or policy sets through the Evaluatable interface.
package combine

import (
	"context"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
)

// Evaluatable is anything a combining algorithm can combine: a Rule, a
// Policy, or a PolicySet, each already resolved to a single pdp.Result by
// the time the algorithm sees it (internal errors are converted to
// Indeterminate results by the caller, never surfaced as a Go error here).
type Evaluatable interface {
	Evaluate(ctx context.Context) pdp.Result
}

// Algorithm combines the results of a set of children into one pdp.Result.
// Implementations must respect ctx cancellation between children (spec §4.9:
// evaluation is abandoned, not merely short-circuited, once ctx is done).
type Algorithm interface {
	ID() string
	Combine(ctx context.Context, children []Evaluatable) pdp.Result
}

var registry = map[string]Algorithm{}

func register(a Algorithm) {
	registry[a.ID()] = a
}

// Lookup returns the Algorithm registered under id.
func Lookup(id string) (Algorithm, bool) {
	a, ok := registry[id]
	return a, ok
}

func ctxErr(ctx context.Context) (pdp.Result, bool) {
	if err := ctx.Err(); err != nil {
		return pdp.IndeterminateResult(pdp.ProcessingErrorStatus(err.Error()), pdp.ExtDP), true
	}
	return pdp.Result{}, false
}
