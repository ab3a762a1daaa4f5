// Package pip implements pdp.AttributeProvider: Policy Information Points
// consulted when a Designator misses against a request's own attribute
// store (spec §2, §4.5 C5).
package pip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// HTTPProvider is an AttributeProvider backed by a remote attribute
// service: one POST per miss, carrying the (category, attributeID, issuer)
// the engine is looking for and expecting a JSON array of lexical values
// back (an empty array means "found nothing for this attribute", not an
// error -- spec §4.5: providers are simply skipped when they have nothing).
type HTTPProvider struct {
	name       string
	endpoint   string
	httpClient *http.Client
	supplies   []pdp.AttributeRef
	requires   []pdp.AttributeRef
}

// Option configures an HTTPProvider.
type Option func(*HTTPProvider)

func WithHTTPClient(client *http.Client) Option {
	return func(p *HTTPProvider) { p.httpClient = client }
}

func WithTimeout(d time.Duration) Option {
	return func(p *HTTPProvider) {
		if p.httpClient != nil {
			p.httpClient.Timeout = d
		}
	}
}

// NewHTTPProvider constructs a provider named name, reachable at endpoint,
// declaring it supplies the attributes in supplies and requires the
// attributes in requires (used to build the static provider dependency
// graph at startup via pdp.ValidateProviderGraph).
func NewHTTPProvider(name, endpoint string, supplies, requires []pdp.AttributeRef, opts ...Option) *HTTPProvider {
	p := &HTTPProvider{
		name:       name,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		supplies:   supplies,
		requires:   requires,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPProvider) Name() string                  { return p.name }
func (p *HTTPProvider) Supplies() []pdp.AttributeRef { return p.supplies }
func (p *HTTPProvider) Requires() []pdp.AttributeRef { return p.requires }

type providerRequest struct {
	Category    string `json:"category"`
	AttributeID string `json:"attributeId"`
	Datatype    string `json:"datatype"`
	Issuer      string `json:"issuer,omitempty"`
}

type providerResponse struct {
	Values []string `json:"values"`
}

// Provide implements pdp.AttributeProvider.
func (p *HTTPProvider) Provide(ctx context.Context, category, attributeID string, datatype value.Type, issuer string) (value.Bag, bool, error) {
	body, err := json.Marshal(providerRequest{
		Category:    category,
		AttributeID: attributeID,
		Datatype:    string(datatype),
		Issuer:      issuer,
	})
	if err != nil {
		return value.Bag{}, false, fmt.Errorf("pip: encoding request for %s: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return value.Bag{}, false, fmt.Errorf("pip: building request for %s: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return value.Bag{}, false, fmt.Errorf("pip: %s request failed: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return value.Bag{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return value.Bag{}, false, fmt.Errorf("pip: %s responded with status %d", p.name, resp.StatusCode)
	}

	var decoded providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return value.Bag{}, false, fmt.Errorf("pip: decoding %s response: %w", p.name, err)
	}
	if len(decoded.Values) == 0 {
		return value.Bag{}, false, nil
	}

	values := make([]value.Value, len(decoded.Values))
	for i, lexical := range decoded.Values {
		v, err := value.Parse(datatype, lexical)
		if err != nil {
			return value.Bag{}, false, fmt.Errorf("pip: %s returned invalid %s value %q: %w", p.name, datatype, lexical, err)
		}
		values[i] = v
	}
	return value.NewBag(datatype, values), true, nil
}
