package policystore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
	"github.com/latticeauth/xacml-pdp/internal/domain/refresolve"
)

type stubDecoder struct{}

func (stubDecoder) DecodePolicy(document []byte) (policytree.Policy, error) {
	return policytree.Policy{ID: string(document), Rules: []policytree.Rule{{ID: "r1", Effect: pdp.Permit}}}, nil
}

func (stubDecoder) DecodePolicySet(document []byte) (policytree.PolicySet, error) {
	return policytree.PolicySet{ID: string(document)}, nil
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db, stubDecoder{})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	return store
}

func TestSQLiteStoreAvailableVersionsEmptyForUnknownID(t *testing.T) {
	store := newTestStore(t)
	versions, err := store.AvailableVersions(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions, got %v", versions)
	}
}

func TestSQLiteStorePutThenResolvePolicy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutPolicy(ctx, "policy-a", "1.0", []byte("policy-a-doc")); err != nil {
		t.Fatalf("PutPolicy failed: %v", err)
	}
	if err := store.PutPolicy(ctx, "policy-a", "2.0", []byte("policy-a-doc-v2")); err != nil {
		t.Fatalf("PutPolicy failed: %v", err)
	}

	versions, err := store.AvailableVersions(ctx, "policy-a")
	if err != nil {
		t.Fatalf("AvailableVersions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}

	v, err := refresolve.ParseVersion("2.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := store.ResolvePolicy(ctx, "policy-a", v)
	if err != nil {
		t.Fatalf("ResolvePolicy failed: %v", err)
	}
	if p.ID != "policy-a-doc-v2" {
		t.Fatalf("expected decoded document content as ID, got %q", p.ID)
	}
}

func TestSQLiteStoreResolvePolicyMissingVersionErrors(t *testing.T) {
	store := newTestStore(t)
	v, err := refresolve.ParseVersion("9.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.ResolvePolicy(context.Background(), "policy-a", v); err == nil {
		t.Fatalf("expected error resolving a version that was never stored")
	}
}

func TestSQLiteStorePutThenResolvePolicySet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.PutPolicySet(ctx, "set-a", "1.0", []byte("set-a-doc")); err != nil {
		t.Fatalf("PutPolicySet failed: %v", err)
	}
	v, err := refresolve.ParseVersion("1.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ps, err := store.ResolvePolicySet(ctx, "set-a", v)
	if err != nil {
		t.Fatalf("ResolvePolicySet failed: %v", err)
	}
	if ps.ID != "set-a-doc" {
		t.Fatalf("expected decoded document content as ID, got %q", ps.ID)
	}
}
