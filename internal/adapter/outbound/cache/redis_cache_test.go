package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/service"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, "xacml-pdp:decision:", time.Minute)
}

func TestRedisCacheMissOnEmpty(t *testing.T) {
	c := newTestRedisCache(t)
	hits, err := c.GetAll(context.Background(), []string{"k1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestRedisCachePutThenGetRoundTrips(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	want := service.Result{Decision: pdp.Permit, Status: pdp.OKStatus()}
	if err := c.PutAll(ctx, map[string]service.Result{"k1": want}); err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}

	hits, err := c.GetAll(ctx, []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got, ok := hits["k1"]
	if !ok {
		t.Fatalf("expected hit for k1")
	}
	if got.Decision != want.Decision {
		t.Fatalf("expected decision %v, got %v", want.Decision, got.Decision)
	}
	if _, ok := hits["k2"]; ok {
		t.Fatalf("expected no hit for k2")
	}
}

func TestRedisCacheEntriesExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client, "xacml-pdp:decision:", time.Second)
	ctx := context.Background()
	if err := c.PutAll(ctx, map[string]service.Result{"k1": {Decision: pdp.Deny}}); err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	hits, err := c.GetAll(ctx, []string{"k1"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected expired entry to miss, got %v", hits)
	}
}
