package service

import "fmt"

// RequestFilter splits one incoming Request into the individual decision
// requests the evaluation pipeline actually runs (spec §4.9 step 2): "one,
// or many for the Multiple Decision Profile." The Multiple Decision
// Profile's repeated-category splitting itself is out of scope (see
// DESIGN.md); LaxRequestFilter and StrictRequestFilter both always
// produce exactly one individual request, differing only in how strictly
// they validate the incoming shape before doing so.
type RequestFilter interface {
	ID() string
	Split(Request) ([]Request, error)
}

const (
	RequestFilterLax    = "lax"
	RequestFilterStrict = "strict"
)

// LaxRequestFilter passes the request through unchanged: one individual
// request out for one request in, no validation beyond what evaluation
// itself would catch.
type LaxRequestFilter struct{}

func (LaxRequestFilter) ID() string { return RequestFilterLax }

func (LaxRequestFilter) Split(r Request) ([]Request, error) {
	return []Request{r}, nil
}

// StrictRequestFilter rejects a request containing more than one attribute
// value set for the same (category, attributeID, issuer, datatype) up
// front, rather than silently evaluating against whichever bag the
// EvaluationContext happens to have accumulated.
type StrictRequestFilter struct{}

func (StrictRequestFilter) ID() string { return RequestFilterStrict }

func (StrictRequestFilter) Split(r Request) ([]Request, error) {
	seen := map[string]bool{}
	for _, cat := range r.Categories {
		for _, attr := range cat.Attributes {
			key := fmt.Sprintf("%s|%s|%s|%s", cat.Category, attr.AttributeID, attr.Issuer, attr.Datatype)
			if seen[key] {
				return nil, fmt.Errorf("service: duplicate attribute %s in category %s under strict request filter", attr.AttributeID, cat.Category)
			}
			seen[key] = true
		}
	}
	return []Request{r}, nil
}
