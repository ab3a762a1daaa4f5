package policystore

import (
	"context"
	"testing"
	"time"

	"github.com/latticeauth/xacml-pdp/internal/domain/combine"
	"github.com/latticeauth/xacml-pdp/internal/domain/pdp"
	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

const allowAdminDoc = `{
  "id": "allow-admin-policy",
  "combining_algorithm": "` + combine.DenyOverridesRuleID + `",
  "target": {
    "any_of": [
      { "all_of": [
        { "match": [ {
          "function": "urn:oasis:names:tc:xacml:1.0:function:string-equal",
          "value": {"datatype": "http://www.w3.org/2001/XMLSchema#string", "value": "admin"},
          "designator": {
            "category": "urn:oasis:names:tc:xacml:1.0:subject-category:access-subject",
            "attribute_id": "role",
            "datatype": "http://www.w3.org/2001/XMLSchema#string"
          }
        } ] }
      ] }
    ]
  },
  "rules": [
    { "id": "permit-admin", "effect": "Permit" }
  ]
}`

func TestJSONDecoderDecodePolicyPermitsMatchingRole(t *testing.T) {
	t.Parallel()

	d := NewJSONDecoder()
	p, err := d.DecodePolicy([]byte(allowAdminDoc))
	if err != nil {
		t.Fatalf("DecodePolicy: %v", err)
	}
	if p.ID != "allow-admin-policy" {
		t.Fatalf("ID = %q", p.ID)
	}

	ec := pdp.NewEvaluationContext(nil, nil, false, time.Now())
	ec.SetAttribute(pdp.AttributeKey{
		Category:    "urn:oasis:names:tc:xacml:1.0:subject-category:access-subject",
		AttributeID: "role",
		Datatype:    value.TypeString,
	}, value.StringValue("admin"))

	res := p.Evaluate(context.Background(), ec)
	if res.Decision != pdp.Permit {
		t.Fatalf("Decision = %v, want Permit", res.Decision)
	}
}

func TestJSONDecoderDecodePolicySetCombinesChildren(t *testing.T) {
	t.Parallel()

	doc := `{
		"id": "root",
		"combining_algorithm": "` + combine.FirstApplicablePolicyID + `",
		"policies": [` + allowAdminDoc + `]
	}`
	d := NewJSONDecoder()
	ps, err := d.DecodePolicySet([]byte(doc))
	if err != nil {
		t.Fatalf("DecodePolicySet: %v", err)
	}
	if len(ps.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(ps.Children))
	}
}
