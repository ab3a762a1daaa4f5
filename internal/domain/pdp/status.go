// Package pdp implements the XACML 3.0 core evaluation context and request
// status/decision model (spec §4.1 C4, §7): per-request attribute/content
// stores, variable memoization, attribute provider fallback, and the
// Decision/Status/ExtendedIndeterminate types every higher layer (policytree,
// combine, refresolve) builds results from.
package pdp

import "fmt"

// StatusCode is one of the XACML status-code values (spec §7, Annex B.9).
type StatusCode string

const (
	StatusOK                StatusCode = "urn:oasis:names:tc:xacml:1.0:status:ok"
	StatusMissingAttribute  StatusCode = "urn:oasis:names:tc:xacml:1.0:status:missing-attribute"
	StatusSyntaxError       StatusCode = "urn:oasis:names:tc:xacml:1.0:status:syntax-error"
	StatusProcessingError   StatusCode = "urn:oasis:names:tc:xacml:1.0:status:processing-error"
)

// MissingAttributeDetail identifies one attribute a MustBePresent reference
// failed to find, carried on a StatusMissingAttribute status so a PEP can
// retry with the attribute supplied (spec §7).
type MissingAttributeDetail struct {
	Category    string
	AttributeID string
	Datatype    string
	Issuer      string
}

// Status is the XACML <Status> element: a code, a human-readable message,
// and (for StatusMissingAttribute) the attributes that were missing.
type Status struct {
	Code              StatusCode
	Message           string
	MissingAttributes []MissingAttributeDetail
}

func OKStatus() Status { return Status{Code: StatusOK} }

func SyntaxErrorStatus(msg string) Status {
	return Status{Code: StatusSyntaxError, Message: msg}
}

func ProcessingErrorStatus(msg string) Status {
	return Status{Code: StatusProcessingError, Message: msg}
}

func MissingAttributeStatus(msg string, details ...MissingAttributeDetail) Status {
	return Status{Code: StatusMissingAttribute, Message: msg, MissingAttributes: details}
}

func (s Status) String() string {
	if s.Message == "" {
		return string(s.Code)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// ExtendedIndeterminate narrows an Indeterminate decision to the effect it
// would have had if not for the error (spec §7.14/§7.18): a rule or policy
// that would have returned Permit but errored first is
// Indeterminate{P}; Deny is Indeterminate{D}; a Target/Condition failure
// where either effect was still possible is Indeterminate{DP}. Combining
// algorithms depend on this distinction to decide whether a sibling's
// Indeterminate still forces their own outcome.
type ExtendedIndeterminate string

const (
	ExtNone ExtendedIndeterminate = ""
	ExtP    ExtendedIndeterminate = "P"
	ExtD    ExtendedIndeterminate = "D"
	ExtDP   ExtendedIndeterminate = "DP"
)
