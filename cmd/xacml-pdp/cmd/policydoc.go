package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/latticeauth/xacml-pdp/internal/adapter/outbound/policystore"
	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
)

// loadRootChild reads the JSON policy document at path and decodes it as
// either a PolicySet (if it names nested "policies"/"policy_sets") or a
// standalone Policy, so a single --policy flag works for either document
// shape (spec.md §6 "rootPolicyProvider", kind "file").
func loadRootChild(path string) (policytree.Child, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}

	var sniff struct {
		Policies   json.RawMessage `json:"policies"`
		PolicySets json.RawMessage `json:"policy_sets"`
		Rules      json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(doc, &sniff); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}

	decoder := policystore.NewJSONDecoder()
	if sniff.Policies != nil || sniff.PolicySets != nil {
		ps, err := decoder.DecodePolicySet(doc)
		if err != nil {
			return nil, err
		}
		return ps, nil
	}
	p, err := decoder.DecodePolicy(doc)
	if err != nil {
		return nil, err
	}
	return p, nil
}
