package pdp

import (
	"context"
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// AttributeProvider is a Policy Information Point (spec §2, C5): a source of
// attribute values not supplied in the original request, consulted when a
// Designator misses against the request's own attribute store. Providers may
// perform I/O (a directory lookup, a database query) and must honor ctx
// cancellation/deadline.
type AttributeProvider interface {
	// Name uniquely identifies the provider for dependency-graph and
	// diagnostic purposes.
	Name() string
	// Supplies lists the (category, attributeID) pairs this provider can
	// produce, used to build the static dependency graph before any request
	// is evaluated.
	Supplies() []AttributeRef
	// Requires lists the (category, attributeID) pairs this provider itself
	// needs as input (e.g. a roles-by-user-id provider requires the user id
	// attribute), used for the same dependency graph.
	Requires() []AttributeRef
	// Provide resolves one attribute. found=false with a nil error means the
	// provider has nothing for this attribute (not an error, spec §4.5: a
	// provider that cannot supply a value is simply skipped).
	Provide(ctx context.Context, category, attributeID string, datatype value.Type, issuer string) (bag value.Bag, found bool, err error)
}

// AttributeRef names an attribute by category and id, without a datatype,
// for dependency-graph purposes (a provider may supply an attribute at more
// than one datatype).
type AttributeRef struct {
	Category    string
	AttributeID string
}

// ValidateProviderGraph rejects a provider set containing a dependency
// cycle: provider A requires an attribute only provider B supplies, and B
// (transitively) requires one only A supplies (spec §4.5 invariant: provider
// dependencies must be acyclic, checked once at configuration time rather
// than per request).
func ValidateProviderGraph(providers []AttributeProvider) error {
	supplierOf := map[AttributeRef]string{}
	for _, p := range providers {
		for _, ref := range p.Supplies() {
			supplierOf[ref] = p.Name()
		}
	}

	edges := map[string]map[string]bool{}
	for _, p := range providers {
		edges[p.Name()] = map[string]bool{}
		for _, req := range p.Requires() {
			if supplier, ok := supplierOf[req]; ok && supplier != p.Name() {
				edges[p.Name()][supplier] = true
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string
	var visit func(node string) error
	visit = func(node string) error {
		color[node] = gray
		stack = append(stack, node)
		for next := range edges[node] {
			switch color[next] {
			case gray:
				return fmt.Errorf("pdp: attribute provider dependency cycle: %v -> %s", append(append([]string{}, stack...), next), next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return nil
	}
	for _, p := range providers {
		if color[p.Name()] == white {
			if err := visit(p.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}
