package policystore

import (
	"encoding/json"
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/expr"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// JSONDecoder decodes policy/policy-set documents from a small JSON DSL, the
// "convenience decoder for local testing only" spec.md §1 carves out: the
// real XACML XML/JSON profile document formats stay external to this
// module. JSONDecoder exists so `xacml-pdp evaluate`/`validate` and this
// package's own tests have something concrete to point a "file" root policy
// provider at.
type JSONDecoder struct{}

func NewJSONDecoder() JSONDecoder { return JSONDecoder{} }

type jsonPolicy struct {
	ID            string                `json:"id"`
	Target        *jsonTarget           `json:"target"`
	CombineAlg    string                `json:"combining_algorithm"`
	Rules         []jsonRule            `json:"rules"`
	Obligations   []jsonObligation      `json:"obligations"`
	Advice        []jsonObligation      `json:"advice"`
	VariableDefs  map[string]jsonNode   `json:"variable_definitions"`
}

type jsonPolicySet struct {
	ID          string           `json:"id"`
	Target      *jsonTarget      `json:"target"`
	CombineAlg  string           `json:"combining_algorithm"`
	Policies    []jsonPolicy     `json:"policies"`
	PolicySets  []jsonPolicySet  `json:"policy_sets"`
	Obligations []jsonObligation `json:"obligations"`
	Advice      []jsonObligation `json:"advice"`
}

type jsonTarget struct {
	AnyOf []jsonAnyOf `json:"any_of"`
}

type jsonAnyOf struct {
	AllOf []jsonAllOf `json:"all_of"`
}

type jsonAllOf struct {
	Match []jsonMatch `json:"match"`
}

type jsonMatch struct {
	Function   string     `json:"function"`
	Value      jsonValue  `json:"value"`
	Designator *jsonRef   `json:"designator"`
	Selector   *jsonRef   `json:"selector"`
}

type jsonRef struct {
	Category          string `json:"category"`
	AttributeID       string `json:"attribute_id"`
	Datatype          string `json:"datatype"`
	Issuer            string `json:"issuer"`
	ContextSelectorID string `json:"context_selector_id"`
	Path              string `json:"path"`
	MustBePresent     bool   `json:"must_be_present"`
}

type jsonValue struct {
	Datatype string `json:"datatype"`
	Value    string `json:"value"`
}

type jsonRule struct {
	ID          string           `json:"id"`
	Effect      string           `json:"effect"`
	Target      *jsonTarget      `json:"target"`
	Condition   *jsonNode        `json:"condition"`
	Obligations []jsonObligation `json:"obligations"`
	Advice      []jsonObligation `json:"advice"`
}

type jsonObligation struct {
	ID          string           `json:"id"`
	FulfillOn   string           `json:"fulfill_on"`
	Assignments []jsonAssignment `json:"assignments"`
}

type jsonAssignment struct {
	AttributeID string   `json:"attribute_id"`
	Expression  jsonNode `json:"expression"`
}

// jsonNode is a tagged union over every expr.Node kind: exactly one field is
// set, matching how the teacher's own DTOs use a flat struct of optional
// fields rather than a custom UnmarshalJSON per variant.
type jsonNode struct {
	Literal      *jsonValue  `json:"literal"`
	Designator   *jsonRef    `json:"designator"`
	Selector     *jsonRef    `json:"selector"`
	VariableRef  string      `json:"variable_ref"`
	FunctionRef  string      `json:"function_ref"`
	Apply        *jsonApply  `json:"apply"`
}

type jsonApply struct {
	Function string     `json:"function"`
	Args     []jsonNode `json:"args"`
}

// DecodePolicy decodes a standalone Policy document.
func (JSONDecoder) DecodePolicy(doc []byte) (policytree.Policy, error) {
	var jp jsonPolicy
	if err := json.Unmarshal(doc, &jp); err != nil {
		return policytree.Policy{}, fmt.Errorf("policystore: decode policy: %w", err)
	}
	return decodePolicy(jp)
}

// DecodePolicySet decodes a standalone PolicySet document.
func (JSONDecoder) DecodePolicySet(doc []byte) (policytree.PolicySet, error) {
	var jps jsonPolicySet
	if err := json.Unmarshal(doc, &jps); err != nil {
		return policytree.PolicySet{}, fmt.Errorf("policystore: decode policy set: %w", err)
	}
	return decodePolicySet(jps)
}

func decodePolicy(jp jsonPolicy) (policytree.Policy, error) {
	alg, ok := combine.Lookup(jp.CombineAlg)
	if !ok {
		return policytree.Policy{}, fmt.Errorf("policystore: unknown combining algorithm %q", jp.CombineAlg)
	}
	target, err := decodeTarget(jp.Target)
	if err != nil {
		return policytree.Policy{}, err
	}
	rules := make([]policytree.Rule, len(jp.Rules))
	for i, jr := range jp.Rules {
		r, err := decodeRule(jr)
		if err != nil {
			return policytree.Policy{}, err
		}
		rules[i] = r
	}
	obligations, err := decodeObligations(jp.Obligations)
	if err != nil {
		return policytree.Policy{}, err
	}
	advice, err := decodeObligations(jp.Advice)
	if err != nil {
		return policytree.Policy{}, err
	}
	variables := make(map[string]expr.Node, len(jp.VariableDefs))
	for id, jn := range jp.VariableDefs {
		n, err := decodeNode(jn)
		if err != nil {
			return policytree.Policy{}, err
		}
		variables[id] = n
	}
	return policytree.Policy{
		ID:          jp.ID,
		Target:      target,
		Rules:       rules,
		CombineAlg:  alg,
		Variables:   variables,
		Obligations: obligations,
		Advice:      advice,
	}, nil
}

func decodePolicySet(jps jsonPolicySet) (policytree.PolicySet, error) {
	alg, ok := combine.Lookup(jps.CombineAlg)
	if !ok {
		return policytree.PolicySet{}, fmt.Errorf("policystore: unknown combining algorithm %q", jps.CombineAlg)
	}
	target, err := decodeTarget(jps.Target)
	if err != nil {
		return policytree.PolicySet{}, err
	}
	var children []policytree.Child
	for _, jp := range jps.Policies {
		p, err := decodePolicy(jp)
		if err != nil {
			return policytree.PolicySet{}, err
		}
		children = append(children, p)
	}
	for _, child := range jps.PolicySets {
		cps, err := decodePolicySet(child)
		if err != nil {
			return policytree.PolicySet{}, err
		}
		children = append(children, cps)
	}
	obligations, err := decodeObligations(jps.Obligations)
	if err != nil {
		return policytree.PolicySet{}, err
	}
	advice, err := decodeObligations(jps.Advice)
	if err != nil {
		return policytree.PolicySet{}, err
	}
	return policytree.PolicySet{
		ID:          jps.ID,
		Target:      target,
		Children:    children,
		CombineAlg:  alg,
		Obligations: obligations,
		Advice:      advice,
	}, nil
}

func decodeRule(jr jsonRule) (policytree.Rule, error) {
	var effect pdp.Decision
	switch jr.Effect {
	case "Permit":
		effect = pdp.Permit
	case "Deny":
		effect = pdp.Deny
	default:
		return policytree.Rule{}, fmt.Errorf("policystore: rule %q has invalid effect %q", jr.ID, jr.Effect)
	}
	target, err := decodeTarget(jr.Target)
	if err != nil {
		return policytree.Rule{}, err
	}
	var condition expr.Node
	if jr.Condition != nil {
		condition, err = decodeNode(*jr.Condition)
		if err != nil {
			return policytree.Rule{}, err
		}
	}
	obligations, err := decodeObligations(jr.Obligations)
	if err != nil {
		return policytree.Rule{}, err
	}
	advice, err := decodeObligations(jr.Advice)
	if err != nil {
		return policytree.Rule{}, err
	}
	return policytree.Rule{
		ID:          jr.ID,
		Effect:      effect,
		Target:      target,
		Condition:   condition,
		Obligations: obligations,
		Advice:      advice,
	}, nil
}

func decodeTarget(jt *jsonTarget) (*policytree.Target, error) {
	if jt == nil {
		return nil, nil
	}
	anyOfs := make([]policytree.AnyOf, len(jt.AnyOf))
	for i, ja := range jt.AnyOf {
		allOfs := make([]policytree.AllOf, len(ja.AllOf))
		for j, jall := range ja.AllOf {
			matches := make([]policytree.Match, len(jall.Match))
			for k, jm := range jall.Match {
				m, err := decodeMatch(jm)
				if err != nil {
					return nil, err
				}
				matches[k] = m
			}
			allOfs[j] = policytree.AllOf{Matches: matches}
		}
		anyOfs[i] = policytree.AnyOf{AllOfs: allOfs}
	}
	return &policytree.Target{AnyOfs: anyOfs}, nil
}

func decodeMatch(jm jsonMatch) (policytree.Match, error) {
	v, err := value.Parse(value.Type(jm.Value.Datatype), jm.Value.Value)
	if err != nil {
		return policytree.Match{}, fmt.Errorf("policystore: match literal: %w", err)
	}
	m := policytree.Match{FunctionID: jm.Function, AttributeValue: v}
	switch {
	case jm.Designator != nil:
		d := jm.Designator
		m.Designator = &expr.Designator{
			Category:      d.Category,
			AttributeID:   d.AttributeID,
			Datatype:      value.Type(d.Datatype),
			Issuer:        d.Issuer,
			MustBePresent: d.MustBePresent,
		}
	case jm.Selector != nil:
		s := jm.Selector
		m.Selector = &expr.Selector{
			ContextSelectorID: s.ContextSelectorID,
			Path:              s.Path,
			Datatype:          value.Type(s.Datatype),
			MustBePresent:     s.MustBePresent,
		}
	default:
		return policytree.Match{}, fmt.Errorf("policystore: match has neither designator nor selector")
	}
	return m, nil
}

func decodeObligations(js []jsonObligation) ([]policytree.ObligationExpression, error) {
	if js == nil {
		return nil, nil
	}
	out := make([]policytree.ObligationExpression, len(js))
	for i, jo := range js {
		var fulfillOn pdp.Decision
		switch jo.FulfillOn {
		case "Permit":
			fulfillOn = pdp.Permit
		case "Deny":
			fulfillOn = pdp.Deny
		default:
			return nil, fmt.Errorf("policystore: obligation %q has invalid fulfill_on %q", jo.ID, jo.FulfillOn)
		}
		assignments := make([]policytree.AttributeAssignmentExpression, len(jo.Assignments))
		for j, ja := range jo.Assignments {
			n, err := decodeNode(ja.Expression)
			if err != nil {
				return nil, err
			}
			assignments[j] = policytree.AttributeAssignmentExpression{AttributeID: ja.AttributeID, Expression: n}
		}
		out[i] = policytree.ObligationExpression{ID: jo.ID, FulfillOn: fulfillOn, Assignments: assignments}
	}
	return out, nil
}

func decodeNode(jn jsonNode) (expr.Node, error) {
	switch {
	case jn.Literal != nil:
		v, err := value.Parse(value.Type(jn.Literal.Datatype), jn.Literal.Value)
		if err != nil {
			return nil, fmt.Errorf("policystore: literal: %w", err)
		}
		return &expr.Literal{Value: v}, nil
	case jn.Designator != nil:
		d := jn.Designator
		return &expr.Designator{
			Category:      d.Category,
			AttributeID:   d.AttributeID,
			Datatype:      value.Type(d.Datatype),
			Issuer:        d.Issuer,
			MustBePresent: d.MustBePresent,
		}, nil
	case jn.Selector != nil:
		s := jn.Selector
		return &expr.Selector{
			ContextSelectorID: s.ContextSelectorID,
			Path:              s.Path,
			Datatype:          value.Type(s.Datatype),
			MustBePresent:     s.MustBePresent,
		}, nil
	case jn.VariableRef != "":
		return &expr.VariableReference{VariableID: jn.VariableRef}, nil
	case jn.FunctionRef != "":
		return &expr.FunctionRef{FunctionID: jn.FunctionRef}, nil
	case jn.Apply != nil:
		args := make([]expr.Node, len(jn.Apply.Args))
		for i, a := range jn.Apply.Args {
			n, err := decodeNode(a)
			if err != nil {
				return nil, err
			}
			args[i] = n
		}
		return &expr.Apply{FunctionID: jn.Apply.Function, Args: args}, nil
	default:
		return nil, fmt.Errorf("policystore: node has no recognized variant")
	}
}
