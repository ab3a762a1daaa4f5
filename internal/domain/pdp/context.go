package pdp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// storedAttribute is one value supplied for an attribute, together with the
// issuer that supplied it (spec §7.3.5: a single category/id/datatype may
// carry values from multiple issuers; designator matching narrows by issuer
// only when the designator itself names one).
type storedAttribute struct {
	Value  value.Value
	Issuer string
}

// XPathEvaluator is the injected capability an EvaluationContext delegates
// AttributeSelector resolution to (spec: XPath support is explicitly out of
// scope for the core engine and must be supplied by the embedder). A nil
// XPathEvaluator means enableXPath=false: every Selector reference fails
// with a plain error if MustBePresent (reported by policytree as
// Indeterminate with a processing-error status), an empty bag otherwise.
type XPathEvaluator interface {
	Evaluate(content []byte, contentType, path string, datatype value.Type) (value.Bag, error)
}

// varEntry memoizes one VariableDefinition's evaluation: evaluated exactly
// once per request regardless of how many VariableReferences name it (spec
// §8 property, §4.4).
type varEntry struct {
	once   sync.Once
	result expr.Result
	err    error
}

// EvaluationContext is the per-request evaluation environment (spec §4.1
// C4): the request's own attribute values, optional category content for
// AttributeSelector, registered VariableDefinitions, and PIP-backed
// AttributeProviders consulted when the request itself is missing a value.
// It implements expr.Context so expr.Node.Evaluate can resolve leaf
// references directly against it. Not safe for concurrent Variable
// evaluation from outside this type's own locking -- callers evaluate a
// single request's tree through a single EvaluationContext sequentially or
// let the varEntry sync.Once arbitrate concurrent Apply branches.
type EvaluationContext struct {
	attributes map[lookupKey][]storedAttribute
	content    map[string][]byte // category -> raw content, for Selector
	contentType string

	variableDefs map[string]expr.Node
	variableMemo map[string]*varEntry
	variableMu   sync.Mutex

	providers []AttributeProvider
	xpath     XPathEvaluator

	strictIssuerMatch bool

	// now is sampled once per request so every current-dateTime/current-date
	// /current-time designator within the same evaluation observes the same
	// instant (spec §8 property 8: clock reads are coherent within a
	// request).
	now time.Time
}

// NewEvaluationContext constructs an EvaluationContext for one request.
// strictIssuerMatch controls what happens when a Designator names an issuer
// that does not match any stored value's issuer: true means no fallback to
// issuer-less matching is attempted (spec §7.3.5's optional stricter mode);
// the PDP-wide default is documented at the call site, not defaulted here,
// per the explicit requirement not to silently pick strict.
func NewEvaluationContext(providers []AttributeProvider, xpath XPathEvaluator, strictIssuerMatch bool, now time.Time) *EvaluationContext {
	return &EvaluationContext{
		attributes:   map[lookupKey][]storedAttribute{},
		content:      map[string][]byte{},
		variableDefs: map[string]expr.Node{},
		variableMemo: map[string]*varEntry{},
		providers:    providers,
		xpath:        xpath,
		strictIssuerMatch: strictIssuerMatch,
		now:          now,
	}
}

// SetAttribute adds one value for the given key to the context's attribute
// store (multiple calls with the same key accumulate a bag, matching a
// request's AttributeValue's own bag-valued semantics).
func (ec *EvaluationContext) SetAttribute(key AttributeKey, v value.Value) {
	lk := key.lookupKey()
	ec.attributes[lk] = append(ec.attributes[lk], storedAttribute{Value: v, Issuer: key.Issuer})
}

// SetContent registers the raw content (e.g. serialized request XML/JSON)
// for category, used only by AttributeSelector when an XPathEvaluator is
// configured.
func (ec *EvaluationContext) SetContent(category string, content []byte, contentType string) {
	ec.content[category] = content
	ec.contentType = contentType
}

// DefineVariable registers a VariableDefinition's expression under id, to be
// evaluated at most once, lazily, the first time a VariableReference for id
// is evaluated.
func (ec *EvaluationContext) DefineVariable(id string, n expr.Node) {
	ec.variableDefs[id] = n
}

// Now returns the single clock sample taken for this request.
func (ec *EvaluationContext) Now() time.Time { return ec.now }

// Designator implements expr.Context.
func (ec *EvaluationContext) Designator(category, attributeID string, datatype value.Type, issuer string, mustBePresent bool) (value.Bag, error) {
	lk := lookupKey{Category: category, AttributeID: attributeID, Datatype: datatype}
	stored := ec.attributes[lk]

	vals := matchIssuer(stored, issuer, ec.strictIssuerMatch)
	if len(vals) == 0 && len(ec.providers) > 0 {
		b, found, err := ec.queryProviders(category, attributeID, datatype, issuer)
		if err != nil {
			return value.Bag{}, err
		}
		if found {
			return b, nil
		}
	}
	if len(vals) == 0 {
		if mustBePresent {
			return value.Bag{}, missingAttributeError(category, attributeID, datatype, issuer)
		}
		return value.EmptyBag(datatype), nil
	}
	return value.NewBag(datatype, vals), nil
}

func (ec *EvaluationContext) queryProviders(category, attributeID string, datatype value.Type, issuer string) (value.Bag, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var merged []value.Value
	found := false
	for _, p := range ec.providers {
		b, ok, err := p.Provide(ctx, category, attributeID, datatype, issuer)
		if err != nil {
			return value.Bag{}, false, fmt.Errorf("pdp: attribute provider %s: %w", p.Name(), err)
		}
		if ok {
			found = true
			merged = append(merged, b.Values()...)
		}
	}
	if !found {
		return value.Bag{}, false, nil
	}
	return value.NewBag(datatype, merged), true, nil
}

func matchIssuer(stored []storedAttribute, issuer string, strict bool) []value.Value {
	if issuer == "" {
		out := make([]value.Value, len(stored))
		for i, s := range stored {
			out[i] = s.Value
		}
		return out
	}
	var exact []value.Value
	for _, s := range stored {
		if s.Issuer == issuer {
			exact = append(exact, s.Value)
		}
	}
	if len(exact) > 0 || strict {
		return exact
	}
	// Not strict and no exact-issuer match: fall back to every value
	// regardless of issuer (spec §7.3.5 default behavior).
	out := make([]value.Value, len(stored))
	for i, s := range stored {
		out[i] = s.Value
	}
	return out
}

func missingAttributeError(category, attributeID string, datatype value.Type, issuer string) error {
	return &MissingAttributeError{
		Detail: MissingAttributeDetail{
			Category:    category,
			AttributeID: attributeID,
			Datatype:    string(datatype),
			Issuer:      issuer,
		},
	}
}

// MissingAttributeError is returned by Designator/Selector when
// MustBePresent is set and nothing resolves; the pdp evaluation layers
// convert it into Indeterminate{MissingAttribute} with the carried detail.
type MissingAttributeError struct {
	Detail MissingAttributeDetail
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing required attribute %s/%s (%s)", e.Detail.Category, e.Detail.AttributeID, e.Detail.Datatype)
}

// Selector implements expr.Context. Without a configured XPathEvaluator,
// AttributeSelector resolution is unsupported (spec: XPath is an injected
// capability, never implemented by the core engine itself).
func (ec *EvaluationContext) Selector(contextSelectorID, path string, datatype value.Type, mustBePresent bool) (value.Bag, error) {
	if ec.xpath == nil {
		if mustBePresent {
			return value.Bag{}, fmt.Errorf("pdp: AttributeSelector requires an XPath evaluator, none configured")
		}
		return value.EmptyBag(datatype), nil
	}
	content, ok := ec.content[contextSelectorID]
	if !ok {
		if mustBePresent {
			return value.Bag{}, missingAttributeError(contextSelectorID, path, datatype, "")
		}
		return value.EmptyBag(datatype), nil
	}
	b, err := ec.xpath.Evaluate(content, ec.contentType, path, datatype)
	if err != nil {
		return value.Bag{}, fmt.Errorf("pdp: AttributeSelector %q: %w", path, err)
	}
	return b, nil
}

// Variable implements expr.Context, evaluating and memoizing the named
// VariableDefinition exactly once.
func (ec *EvaluationContext) Variable(id string) (expr.Result, error) {
	ec.variableMu.Lock()
	entry, ok := ec.variableMemo[id]
	if !ok {
		entry = &varEntry{}
		ec.variableMemo[id] = entry
	}
	ec.variableMu.Unlock()

	entry.once.Do(func() {
		n, ok := ec.variableDefs[id]
		if !ok {
			entry.err = fmt.Errorf("pdp: undefined VariableReference %q", id)
			return
		}
		entry.result, entry.err = n.Evaluate(context.Background(), ec)
	})
	return entry.result, entry.err
}
