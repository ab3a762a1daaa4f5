package cache

import (
	"context"
	"testing"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/service"
)

func TestMemoryCacheMissOnEmpty(t *testing.T) {
	c := NewMemoryCache(10)
	hits, err := c.GetAll(context.Background(), []string{"k1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits")
	}
}

func TestMemoryCachePutThenGetHits(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()
	if err := c.PutAll(ctx, map[string]service.Result{"k1": {Decision: pdp.Permit}}); err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}
	hits, err := c.GetAll(ctx, []string{"k1"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if hits["k1"].Decision != pdp.Permit {
		t.Fatalf("expected Permit, got %v", hits["k1"].Decision)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	_ = c.PutAll(ctx, map[string]service.Result{"a": {Decision: pdp.Permit}})
	_ = c.PutAll(ctx, map[string]service.Result{"b": {Decision: pdp.Deny}})

	// Touch "a" so "b" becomes the least recently used entry.
	if _, err := c.GetAll(ctx, []string{"a"}); err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	_ = c.PutAll(ctx, map[string]service.Result{"c": {Decision: pdp.NotApplicable}})

	hits, err := c.GetAll(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if _, ok := hits["b"]; ok {
		t.Fatalf("expected b to have been evicted")
	}
	if _, ok := hits["a"]; !ok {
		t.Fatalf("expected a to survive eviction")
	}
	if _, ok := hits["c"]; !ok {
		t.Fatalf("expected c to be present")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestMemoryCacheClearEmptiesEntries(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()
	_ = c.PutAll(ctx, map[string]service.Result{"a": {Decision: pdp.Permit}})
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after Clear, got size %d", c.Size())
	}
}
