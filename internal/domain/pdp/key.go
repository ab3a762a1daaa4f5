package pdp

import (
	"fmt"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// AttributeKey identifies one attribute within a request's attribute store:
// a (category, id, datatype) triple plus an optional issuer (spec §4.1,
// §7.3.5: two attributes are the "same" designator target only when category,
// id, and datatype all agree; issuer further restricts which values match).
type AttributeKey struct {
	Category    string
	AttributeID string
	Datatype    value.Type
	Issuer      string
}

// lookupKey drops Issuer: the attribute store is keyed by (category, id,
// datatype) only, and issuer filtering happens against the stored values'
// own per-value issuer, since a single category/id/datatype combination may
// legally carry values from several issuers (spec §7.3.5).
type lookupKey struct {
	Category    string
	AttributeID string
	Datatype    value.Type
}

func (k AttributeKey) lookupKey() lookupKey {
	return lookupKey{Category: k.Category, AttributeID: k.AttributeID, Datatype: k.Datatype}
}

func (k AttributeKey) String() string {
	if k.Issuer == "" {
		return fmt.Sprintf("%s|%s|%s", k.Category, k.AttributeID, k.Datatype)
	}
	return fmt.Sprintf("%s|%s|%s|%s", k.Category, k.AttributeID, k.Datatype, k.Issuer)
}
