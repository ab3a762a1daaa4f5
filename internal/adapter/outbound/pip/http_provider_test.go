package pip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

func TestHTTPProviderReturnsDecodedValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.AttributeID != "role" {
			t.Fatalf("expected attributeId role, got %q", req.AttributeID)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(providerResponse{Values: []string{"admin", "operator"}})
	}))
	defer srv.Close()

	p := NewHTTPProvider("roles", srv.URL, nil, nil)
	b, found, err := p.Provide(context.Background(), "subject", "role", value.TypeString, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected found=true")
	}
	if b.Size() != 2 || !b.Contains(value.StringValue("admin")) || !b.Contains(value.StringValue("operator")) {
		t.Fatalf("unexpected bag: %v", b)
	}
}

func TestHTTPProviderNotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProvider("roles", srv.URL, nil, nil)
	_, found, err := p.Provide(context.Background(), "subject", "role", value.TypeString, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}

func TestHTTPProviderUpstreamErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider("roles", srv.URL, nil, nil)
	if _, _, err := p.Provide(context.Background(), "subject", "role", value.TypeString, ""); err == nil {
		t.Fatalf("expected error for upstream 500")
	}
}

func TestHTTPProviderSuppliesAndRequires(t *testing.T) {
	supplies := []pdp.AttributeRef{{Category: "subject", AttributeID: "role"}}
	requires := []pdp.AttributeRef{{Category: "subject", AttributeID: "id"}}
	p := NewHTTPProvider("roles", "http://example.invalid", supplies, requires)
	if len(p.Supplies()) != 1 || p.Supplies()[0].AttributeID != "role" {
		t.Fatalf("unexpected Supplies: %v", p.Supplies())
	}
	if len(p.Requires()) != 1 || p.Requires()[0].AttributeID != "id" {
		t.Fatalf("unexpected Requires: %v", p.Requires())
	}
	if p.Name() != "roles" {
		t.Fatalf("unexpected Name: %v", p.Name())
	}
}
