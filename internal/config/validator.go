package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators is the hook Validate calls before checking
// struct tags. It currently registers no custom rules and always returns
// nil; PDPConfig's checks are its struct tags plus the cross-field
// validate* methods below.
func RegisterCustomValidators(v *validator.Validate) error {
	return nil
}

// Validate validates the PDPConfig using struct tags and custom
// cross-field rules. Returns an error if validation fails, with actionable
// error messages.
func (c *PDPConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateRootPolicyProvider(); err != nil {
		return err
	}
	if err := c.validateRefPolicyProvider(); err != nil {
		return err
	}
	if err := c.validateDecisionCache(); err != nil {
		return err
	}
	if err := c.validateAttributeProviderNames(); err != nil {
		return err
	}

	return nil
}

// validateRootPolicyProvider checks the fields required by each Kind.
func (c *PDPConfig) validateRootPolicyProvider() error {
	p := c.RootPolicyProvider
	switch p.Kind {
	case "file", "composite":
		if len(p.Paths) == 0 {
			return fmt.Errorf("root_policy_provider: kind %q requires at least one path", p.Kind)
		}
	case "dynamic":
		if p.RootID == "" {
			return errors.New("root_policy_provider: kind \"dynamic\" requires root_id")
		}
	}
	return nil
}

// validateRefPolicyProvider checks that a dynamic reference-resolution
// mode names a backing store.
func (c *PDPConfig) validateRefPolicyProvider() error {
	p := c.RefPolicyProvider
	if p.Mode == "dynamic" && p.Store == "" {
		return errors.New("ref_policy_provider: mode \"dynamic\" requires store")
	}
	return nil
}

// validateDecisionCache checks that a redis decision cache names an
// address.
func (c *PDPConfig) validateDecisionCache() error {
	dc := c.DecisionCache
	if dc.Kind == "redis" && dc.RedisAddr == "" {
		return errors.New("decision_cache: kind \"redis\" requires redis_addr")
	}
	return nil
}

// validateAttributeProviderNames ensures no two configured providers share
// a name (spec §4.5: the provider dependency graph is keyed by name).
func (c *PDPConfig) validateAttributeProviderNames() error {
	seen := make(map[string]struct{}, len(c.AttributeProviders))
	for _, p := range c.AttributeProviders {
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("attribute_providers: duplicate name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
