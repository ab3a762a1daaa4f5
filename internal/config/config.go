// Package config provides configuration types for the XACML PDP.
//
// PDPConfig maps spec §6's configuration table 1:1 onto struct fields:
// where the policy tree is loaded from, how references and variables are
// bounded, whether XPath is enabled, how strictly attribute issuers are
// matched, which request/result filters are active, and the optional
// decision cache and attribute provider set.
package config

import (
	"github.com/spf13/viper"
)

// PDPConfig is the top-level configuration for the XACML PDP.
type PDPConfig struct {
	// Server configures the HTTP server listener the façade is exposed on.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// RootPolicyProvider names the source of the root policy (spec §6):
	// a static file, a composite of several, or a dynamic provider.
	RootPolicyProvider RootPolicyProviderConfig `yaml:"root_policy_provider" mapstructure:"root_policy_provider"`

	// RefPolicyProvider configures Policy(Set)IdReference resolution
	// (spec §4.8 C8).
	RefPolicyProvider RefPolicyProviderConfig `yaml:"ref_policy_provider" mapstructure:"ref_policy_provider"`

	// MaxPolicySetRefDepth bounds policy-reference chain length (spec §4.8,
	// invariant 4). Required, no zero default: an operator must choose a
	// bound rather than inherit an implicit "no limit."
	MaxPolicySetRefDepth int `yaml:"max_policy_set_ref_depth" mapstructure:"max_policy_set_ref_depth" validate:"required,min=1"`

	// MaxVariableReferenceDepth bounds VariableReference recursion (spec
	// invariant 3).
	MaxVariableReferenceDepth int `yaml:"max_variable_reference_depth" mapstructure:"max_variable_reference_depth" validate:"required,min=1"`

	// EnableXPath turns on AttributeSelector/xpath-* function support.
	// When false, any policy referencing them is rejected at load time
	// (spec §6).
	EnableXPath bool `yaml:"enable_xpath" mapstructure:"enable_xpath"`

	// StrictAttributeIssuerMatch controls whether a Designator naming an
	// issuer falls back to issuer-less matching when no exact-issuer value
	// is stored (spec §4.4). No default is applied here: see
	// SetDevDefaults's doc comment for why this field is validated as
	// explicitly required rather than silently defaulted to either value.
	StrictAttributeIssuerMatch *bool `yaml:"strict_attribute_issuer_match" mapstructure:"strict_attribute_issuer_match" validate:"required"`

	// RequestFilter selects the request-splitting policy (spec §6):
	// "lax" or "strict".
	RequestFilter string `yaml:"request_filter" mapstructure:"request_filter" validate:"omitempty,oneof=lax strict"`

	// ResultFilter selects the post-evaluation result filter (spec §6):
	// "default" or "combined-decision".
	ResultFilter string `yaml:"result_filter" mapstructure:"result_filter" validate:"omitempty,oneof=default combined-decision"`

	// DecisionCache configures the optional external decision cache.
	DecisionCache DecisionCacheConfig `yaml:"decision_cache" mapstructure:"decision_cache"`

	// AttributeProviders is the ordered set of Policy Information Point
	// definitions consulted when a request itself misses an attribute
	// (spec §6 "attributeProviders[]").
	AttributeProviders []AttributeProviderConfig `yaml:"attribute_providers" mapstructure:"attribute_providers" validate:"omitempty,dive"`

	// Observability configures metrics/tracing export.
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`

	// DevMode enables permissive defaults for local experimentation
	// (verbose logging, an in-memory decision cache, a relaxed request
	// filter). Never applies to StrictAttributeIssuerMatch, which must
	// still be set explicitly even in dev mode.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server exposing the façade.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g. "127.0.0.1:8443").
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// RootPolicyProviderConfig names the source of the evaluated root policy.
type RootPolicyProviderConfig struct {
	// Kind is "file" (a single policy/policy-set document), "composite"
	// (several documents combined under a synthetic root PolicySet), or
	// "dynamic" (delegates to RefPolicyProvider for the root itself).
	Kind string `yaml:"kind" mapstructure:"kind" validate:"required,oneof=file composite dynamic"`
	// Paths lists the document(s) to load for "file"/"composite" kinds.
	Paths []string `yaml:"paths" mapstructure:"paths" validate:"omitempty,dive,required"`
	// RootID names the policy/policy-set id to resolve as root when
	// Kind is "dynamic".
	RootID string `yaml:"root_id" mapstructure:"root_id"`
}

// RefPolicyProviderConfig configures how PolicyIdReference/
// PolicySetIdReference targets are resolved.
type RefPolicyProviderConfig struct {
	// Mode is "static" (resolved once at load time) or "dynamic"
	// (resolved per request against Store).
	Mode string `yaml:"mode" mapstructure:"mode" validate:"required,oneof=static dynamic"`
	// Store is "sqlite" or "file", naming the backing RefPolicyProvider
	// implementation.
	Store string `yaml:"store" mapstructure:"store" validate:"omitempty,oneof=sqlite file"`
	// DSN is the store-specific connection string (e.g. a sqlite file path).
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// DecisionCacheConfig configures the optional external decision cache
// (spec §9 "Decision cache" design note).
type DecisionCacheConfig struct {
	// Kind is "none", "memory", or "redis".
	Kind string `yaml:"kind" mapstructure:"kind" validate:"omitempty,oneof=none memory redis"`
	// MaxEntries bounds the in-process "memory" cache.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries" validate:"omitempty,min=1"`
	// RedisAddr is the Redis endpoint for the "redis" kind.
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	// TTL bounds how long a cached decision is considered fresh
	// (e.g. "30s", "5m"). Empty means no expiry.
	TTL string `yaml:"ttl" mapstructure:"ttl" validate:"omitempty"`
}

// AttributeProviderConfig configures one Policy Information Point.
type AttributeProviderConfig struct {
	// Name uniquely identifies the provider.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// Endpoint is the remote attribute service's base URL.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	// Timeout bounds each lookup (e.g. "5s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
	// Supplies lists the (category, attributeId) pairs this provider can
	// produce, used to build the static dependency graph at startup.
	Supplies []AttributeRefConfig `yaml:"supplies" mapstructure:"supplies" validate:"required,min=1,dive"`
	// Requires lists the (category, attributeId) pairs this provider
	// itself needs as input.
	Requires []AttributeRefConfig `yaml:"requires" mapstructure:"requires" validate:"omitempty,dive"`
}

// AttributeRefConfig names one attribute by category and id.
type AttributeRefConfig struct {
	Category    string `yaml:"category" mapstructure:"category" validate:"required"`
	AttributeID string `yaml:"attribute_id" mapstructure:"attribute_id" validate:"required"`
}

// ObservabilityConfig configures metrics/tracing export.
type ObservabilityConfig struct {
	MetricsEnabled bool    `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
	TracingEnabled bool    `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	SamplingRatio  float64 `yaml:"sampling_ratio" mapstructure:"sampling_ratio" validate:"omitempty,min=0,max=1"`
}

// SetDevDefaults applies permissive defaults for local experimentation.
// Applied BEFORE validation so required fields are satisfied; never
// touches StrictAttributeIssuerMatch, which a dev-mode run must still set
// explicitly (the one field this package refuses to default).
func (c *PDPConfig) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.RootPolicyProvider.Kind == "" {
		c.RootPolicyProvider.Kind = "file"
	}
	if c.RequestFilter == "" {
		c.RequestFilter = "lax"
	}
	if c.ResultFilter == "" {
		c.ResultFilter = "default"
	}
	if c.DecisionCache.Kind == "" {
		c.DecisionCache.Kind = "memory"
	}
	if c.DecisionCache.MaxEntries == 0 {
		c.DecisionCache.MaxEntries = 1000
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "debug"
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *PDPConfig) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8443"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.MaxPolicySetRefDepth == 0 {
		c.MaxPolicySetRefDepth = 10
	}
	if c.MaxVariableReferenceDepth == 0 {
		c.MaxVariableReferenceDepth = 10
	}

	if c.RequestFilter == "" {
		c.RequestFilter = "lax"
	}
	if c.ResultFilter == "" {
		c.ResultFilter = "default"
	}

	if c.RefPolicyProvider.Mode == "" {
		c.RefPolicyProvider.Mode = "static"
	}

	// DecisionCache.Kind defaults to "none" unless the user set it --
	// viper.IsSet distinguishes "not set" (zero value) from "explicitly
	// none", matching the teacher's own use of viper.IsSet for booleans
	// that default to non-zero.
	if c.DecisionCache.Kind == "" && !viper.IsSet("decision_cache.kind") {
		c.DecisionCache.Kind = "none"
	}
	if c.DecisionCache.Kind == "memory" && c.DecisionCache.MaxEntries == 0 {
		c.DecisionCache.MaxEntries = 1000
	}
}
