package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
	"github.com/latticeauth/xacml-pdp/internal/service"
)

var (
	evaluatePolicyPath  string
	evaluateRequestPath string
	evaluateStrictIssuer bool
)

// cliRequest is the JSON convenience shape this CLI accepts for local
// testing (spec.md §1 excludes the wire-format parsers this stands in
// for): it maps 1:1 onto service.Request/CategoryAttributes/
// RequestAttribute.
type cliRequest struct {
	Categories []struct {
		Category    string `json:"category"`
		Content     string `json:"content"`
		ContentType string `json:"content_type"`
		Attributes  []struct {
			AttributeID     string   `json:"attribute_id"`
			Issuer          string   `json:"issuer"`
			Datatype        string   `json:"datatype"`
			Values          []string `json:"values"`
			MustBePresent   bool     `json:"must_be_present"`
			IncludeInResult bool     `json:"include_in_result"`
		} `json:"attributes"`
	} `json:"categories"`
	CombinedDecision   bool `json:"combined_decision"`
	ReturnPolicyIdList bool `json:"return_policy_id_list"`
}

func (r cliRequest) toServiceRequest() service.Request {
	req := service.Request{
		CombinedDecision:   r.CombinedDecision,
		ReturnPolicyIdList: r.ReturnPolicyIdList,
	}
	for _, c := range r.Categories {
		cat := service.CategoryAttributes{
			Category:    c.Category,
			ContentType: c.ContentType,
		}
		if c.Content != "" {
			cat.Content = []byte(c.Content)
		}
		for _, a := range c.Attributes {
			cat.Attributes = append(cat.Attributes, service.RequestAttribute{
				AttributeID:     a.AttributeID,
				Issuer:          a.Issuer,
				Datatype:        value.Type(a.Datatype),
				Values:          a.Values,
				MustBePresent:   a.MustBePresent,
				IncludeInResult: a.IncludeInResult,
			})
		}
		req.Categories = append(req.Categories, cat)
	}
	return req
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one request document against a policy file",
	Long: `evaluate loads a policy (or policy set) document and a single request
document, runs the request through the PDP façade, and prints the response
as JSON. Both documents use this CLI's own JSON convenience encoding --
see the cliRequest type in evaluate.go for its shape.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluatePolicyPath, "policy", "", "path to a policy or policy-set JSON document (required)")
	evaluateCmd.Flags().StringVar(&evaluateRequestPath, "request", "", "path to a request JSON document (required)")
	evaluateCmd.Flags().BoolVar(&evaluateStrictIssuer, "strict-issuer", false, "require an exact issuer match for issuer-qualified designators (spec §4.4)")
	_ = evaluateCmd.MarkFlagRequired("policy")
	_ = evaluateCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	root, err := loadRootChild(evaluatePolicyPath)
	if err != nil {
		return err
	}

	reqDoc, err := os.ReadFile(evaluateRequestPath)
	if err != nil {
		return fmt.Errorf("reading request file %s: %w", evaluateRequestPath, err)
	}
	var cliReq cliRequest
	if err := json.Unmarshal(reqDoc, &cliReq); err != nil {
		return fmt.Errorf("parsing request file %s: %w", evaluateRequestPath, err)
	}

	svc := service.NewService(root, evaluateStrictIssuer)
	resp, err := svc.Evaluate(context.Background(), cliReq.toServiceRequest())
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Println(string(out))

	for _, r := range resp.Results {
		fmt.Fprintln(cmd.OutOrStderr(), service.Explain(r))
	}
	return nil
}
