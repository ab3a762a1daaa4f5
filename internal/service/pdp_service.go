package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// Environment category and PDP-issued clock attribute identifiers (spec
// §2, §4.9 step 3): seeded into every individual request's context from the
// single clock sample taken for that Evaluate call, so all three agree.
const (
	environmentCategory   = "urn:oasis:names:tc:xacml:3.0:attribute-category:environment"
	currentDateTimeAttrID = "urn:oasis:names:tc:xacml:1.0:environment:current-dateTime"
	currentDateAttrID     = "urn:oasis:names:tc:xacml:1.0:environment:current-date"
	currentTimeAttrID     = "urn:oasis:names:tc:xacml:1.0:environment:current-time"
)

// Service is the PDP façade: one Evaluate call per incoming Request,
// wiring request filtering, per-individual-request attribute context
// construction, policy evaluation against the current root, decision
// caching, and result filtering (spec §4.9 C9 steps 1-6).
//
// The root policy is held in an atomic.Value so a reload (see SetRoot) never
// blocks an in-flight Evaluate call and never races it, mirroring the
// teacher's CompiledRulesSnapshot hot-swap in policy_service.go.
type Service struct {
	root atomic.Value // holds policytree.Child

	providers         []pdp.AttributeProvider
	xpath             pdp.XPathEvaluator
	strictIssuerMatch bool
	limits            expr.Limits

	cache     DecisionCache
	reqFilter RequestFilter
	resFilter ResultFilter
	clock     Clock
	tracer    trace.Tracer

	logger  *slog.Logger
	history *decisionHistory
}

// Option configures a Service at construction time.
type Option func(*Service)

func WithProviders(providers []pdp.AttributeProvider) Option {
	return func(s *Service) { s.providers = providers }
}

func WithXPath(xpath pdp.XPathEvaluator) Option {
	return func(s *Service) { s.xpath = xpath }
}

func WithLimits(limits expr.Limits) Option {
	return func(s *Service) { s.limits = limits }
}

func WithCache(cache DecisionCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithRequestFilter(f RequestFilter) Option {
	return func(s *Service) { s.reqFilter = f }
}

func WithResultFilter(f ResultFilter) Option {
	return func(s *Service) { s.resFilter = f }
}

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer attaches an OpenTelemetry tracer; each individual decision
// request gets one "pdp.evaluate" span (spec §4.9 step 4's per-request
// evaluation loop). Defaults to a no-op tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService constructs a Service evaluating against root. strictIssuerMatch
// is a mandatory argument, not an Option with a silent default: every
// EvaluationContext this Service builds inherits it, and the configuration
// table (spec §6) requires an operator to choose it explicitly rather than
// inherit whatever this package happened to default to.
func NewService(root policytree.Child, strictIssuerMatch bool, opts ...Option) *Service {
	s := &Service{
		strictIssuerMatch: strictIssuerMatch,
		limits:            expr.DefaultLimits,
		cache:             NoCache{},
		reqFilter:         LaxRequestFilter{},
		resFilter:         DefaultResultFilter{},
		clock:             SystemClock{},
		tracer:            trace.NewNoopTracerProvider().Tracer("xacml-pdp"),
		logger:            slog.Default(),
		history:           newDecisionHistory(),
	}
	if root == nil {
		// No rootPolicyProvider configured: fail closed rather than panic
		// on the first Evaluate call (spec §6).
		root = policytree.BuiltinDenyAllPolicySet()
	}
	s.root.Store(root)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRoot hot-swaps the evaluated policy tree. Safe to call concurrently
// with Evaluate.
func (s *Service) SetRoot(root policytree.Child) {
	if root == nil {
		root = policytree.BuiltinDenyAllPolicySet()
	}
	s.root.Store(root)
}

// Evaluate runs the façade algorithm (spec §4.9 step 1-6) for one incoming
// Request and returns the filtered Response.
func (s *Service) Evaluate(ctx context.Context, req Request) (Response, error) {
	if req.CombinedDecision && !s.resFilter.SupportsCombinedDecision() {
		return Response{Results: []Result{{
			Decision: pdp.Indeterminate,
			Status:   pdp.SyntaxErrorStatus(fmt.Sprintf("result filter %q does not support CombinedDecision", s.resFilter.ID())),
		}}}, nil
	}

	individual, err := s.reqFilter.Split(req)
	if err != nil {
		return Response{Results: []Result{{
			Decision: pdp.Indeterminate,
			Status:   pdp.SyntaxErrorStatus(err.Error()),
		}}}, nil
	}

	now := s.clock.Now()

	keys := make([]string, len(individual))
	for i, r := range individual {
		keys[i] = cacheKey(r)
	}
	cached, err := s.cache.GetAll(ctx, keys)
	if err != nil {
		s.logger.Warn("decision cache GetAll failed, evaluating uncached", slog.String("error", err.Error()))
		cached = nil
	}

	results := make([]Result, len(individual))
	toWrite := map[string]Result{}
	for i, r := range individual {
		if hit, ok := cached[keys[i]]; ok {
			hit.RequestID = uuid.NewString()
			results[i] = hit
			s.history.record(hit)
			continue
		}
		res := s.evaluateOne(ctx, r, now)
		results[i] = res
		toWrite[keys[i]] = res
		s.history.record(res)
	}
	if len(toWrite) > 0 {
		if err := s.cache.PutAll(ctx, toWrite); err != nil {
			s.logger.Warn("decision cache PutAll failed", slog.String("error", err.Error()))
		}
	}

	return Response{Results: s.resFilter.Filter(results)}, nil
}

// evaluateOne builds a fresh EvaluationContext from one individual request's
// attributes, evaluates it against the current root, and assembles the
// Result including any attributes the caller asked to have echoed back.
func (s *Service) evaluateOne(ctx context.Context, r Request, now time.Time) Result {
	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "pdp.evaluate", trace.WithAttributes(
		attribute.String("xacml.request_id", requestID),
	))
	defer span.End()

	ec := pdp.NewEvaluationContext(s.providers, s.xpath, s.strictIssuerMatch, now)
	seedEnvironmentAttributes(ec, now)

	var echoed []EchoedAttribute
	for _, cat := range r.Categories {
		if cat.Content != nil {
			ec.SetContent(cat.Category, cat.Content, cat.ContentType)
		}
		for _, attr := range cat.Attributes {
			for _, lexical := range attr.Values {
				v, err := value.Parse(attr.Datatype, lexical)
				if err != nil {
					return Result{
						RequestID: requestID,
						Decision:  pdp.Indeterminate,
						Status:    pdp.SyntaxErrorStatus(err.Error()),
					}
				}
				ec.SetAttribute(pdp.AttributeKey{
					Category:    cat.Category,
					AttributeID: attr.AttributeID,
					Datatype:    attr.Datatype,
					Issuer:      attr.Issuer,
				}, v)
			}
			if attr.IncludeInResult {
				echoed = append(echoed, EchoedAttribute{
					Category:    cat.Category,
					AttributeID: attr.AttributeID,
					Issuer:      attr.Issuer,
					Datatype:    attr.Datatype,
					Values:      attr.Values,
				})
			}
		}
	}

	root, _ := s.root.Load().(policytree.Child)
	if root == nil {
		return Result{
			RequestID: requestID,
			Decision:  pdp.Indeterminate,
			Status:    pdp.ProcessingErrorStatus("no root policy configured"),
		}
	}

	res := root.Evaluate(ctx, ec)

	out := Result{
		RequestID:   requestID,
		Decision:    res.Decision,
		Status:      res.Status,
		Obligations: res.Obligations,
		Advice:      res.Advice,
		Echoed:      echoed,
	}
	if r.ReturnPolicyIdList {
		out.PolicyIdentifierList = policyIDList(root)
	}
	return out
}

// seedEnvironmentAttributes installs the PDP-issued current-dateTime/
// current-date/current-time attributes (spec §2, §4.9 step 3), all three
// derived from the single now sample so a Condition comparing any of them
// sees one internally consistent instant (testable property 8, "Clock
// coherence").
func seedEnvironmentAttributes(ec *pdp.EvaluationContext, now time.Time) {
	now = now.UTC()
	seedEnvironmentAttribute(ec, currentDateTimeAttrID, value.TypeDateTime, now.Format("2006-01-02T15:04:05Z"))
	seedEnvironmentAttribute(ec, currentDateAttrID, value.TypeDate, now.Format("2006-01-02Z"))
	seedEnvironmentAttribute(ec, currentTimeAttrID, value.TypeTime, now.Format("15:04:05Z"))
}

func seedEnvironmentAttribute(ec *pdp.EvaluationContext, attributeID string, datatype value.Type, lexical string) {
	v, err := value.Parse(datatype, lexical)
	if err != nil {
		// now is always formatted in a valid lexical form for datatype; a
		// parse failure here would be a bug in this function, not in caller
		// input.
		panic(fmt.Sprintf("service: invalid environment attribute seed %q: %v", lexical, err))
	}
	ec.SetAttribute(pdp.AttributeKey{
		Category:    environmentCategory,
		AttributeID: attributeID,
		Datatype:    datatype,
	}, v)
}

// cacheKey derives an opaque, deterministic key from an individual Request's
// attribute content, grounded on the teacher's computeCacheKey: a running
// xxhash over every (category, id, issuer, datatype, sorted values) tuple,
// sorted so key order never affects the hash.
func cacheKey(r Request) string {
	type entry struct {
		category, id, issuer, datatype string
		values                         []string
	}
	var entries []entry
	for _, cat := range r.Categories {
		for _, attr := range cat.Attributes {
			values := append([]string{}, attr.Values...)
			sort.Strings(values)
			entries = append(entries, entry{cat.Category, attr.AttributeID, attr.Issuer, string(attr.Datatype), values})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].category != entries[j].category {
			return entries[i].category < entries[j].category
		}
		if entries[i].id != entries[j].id {
			return entries[i].id < entries[j].id
		}
		if entries[i].issuer != entries[j].issuer {
			return entries[i].issuer < entries[j].issuer
		}
		return entries[i].datatype < entries[j].datatype
	})

	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e.category)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(e.id)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(e.issuer)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(e.datatype)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(strings.Join(e.values, ","))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{1, byte(boolToInt(r.CombinedDecision)), byte(boolToInt(r.ReturnPolicyIdList))})

	b, _ := json.Marshal(h.Sum64())
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// policyIDList returns the identifier of root and, where root is a
// PolicySet, every descendant Policy/PolicySet identifier in tree order
// (spec §6: ReturnPolicyIdList echoes every policy that contributed to the
// decision; this conservative approximation lists every policy reachable
// from root rather than tracking which Target actually matched).
func policyIDList(root policytree.Child) []string {
	switch n := root.(type) {
	case policytree.Policy:
		return []string{n.ID}
	case policytree.PolicySet:
		ids := []string{n.ID}
		for _, c := range n.Children {
			ids = append(ids, policyIDList(c)...)
		}
		return ids
	default:
		return nil
	}
}
