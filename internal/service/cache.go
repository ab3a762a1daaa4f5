package service

import "context"

// DecisionCache is the external decision-cache collaborator (spec §9
// "Decision cache" design note): getAll(keys) -> partial hits,
// putAll(newResults) -> write-back, with no interpretation of cache
// semantics beyond "same key may return the same result." Keys are
// opaque strings the façade derives from an individual Request's
// canonical attribute content.
type DecisionCache interface {
	GetAll(ctx context.Context, keys []string) (map[string]Result, error)
	PutAll(ctx context.Context, results map[string]Result) error
}

// NoCache is the zero-configuration DecisionCache: every lookup misses,
// every write-back is a no-op. Used when no decisionCache is configured.
type NoCache struct{}

func (NoCache) GetAll(context.Context, []string) (map[string]Result, error) { return nil, nil }
func (NoCache) PutAll(context.Context, map[string]Result) error             { return nil }
