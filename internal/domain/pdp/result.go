package pdp

// Decision is the outcome of evaluating a Rule, Policy, or PolicySet (spec
// §4.1, §7).
type Decision string

const (
	Permit        Decision = "Permit"
	Deny          Decision = "Deny"
	NotApplicable Decision = "NotApplicable"
	Indeterminate Decision = "Indeterminate"
)

// ObligationOrAdvice is one <Obligation> or <Advice> element: an identifier
// plus zero or more attribute assignments, carried opaquely by this layer
// (spec §4.1, §5.1 invariant: obligations/advice are collected, combined in
// request order, and passed through unevaluated).
type ObligationOrAdvice struct {
	ID          string
	AttributeAssignments map[string]string
	// FulfillOn records the Effect (Permit/Deny) the element is attached to;
	// combining algorithms only surface elements whose FulfillOn matches the
	// decision actually reached.
	FulfillOn Decision
}

// Result is the outcome of evaluating any evaluatable XACML element (Rule,
// Policy, PolicySet): a Decision plus its Status and -- when Decision is
// Indeterminate -- the ExtendedIndeterminate that combining algorithms need.
type Result struct {
	Decision    Decision
	Status      Status
	Extended    ExtendedIndeterminate
	Obligations []ObligationOrAdvice
	Advice      []ObligationOrAdvice
}

// IndeterminateResult builds a Result for an evaluation failure, tagging it
// with the ExtendedIndeterminate effect combining algorithms need.
func IndeterminateResult(status Status, ext ExtendedIndeterminate) Result {
	return Result{Decision: Indeterminate, Status: status, Extended: ext}
}

func NotApplicableResult() Result {
	return Result{Decision: NotApplicable, Status: OKStatus()}
}

func PermitResult(obligations, advice []ObligationOrAdvice) Result {
	return Result{Decision: Permit, Status: OKStatus(), Obligations: obligations, Advice: advice}
}

func DenyResult(obligations, advice []ObligationOrAdvice) Result {
	return Result{Decision: Deny, Status: OKStatus(), Obligations: obligations, Advice: advice}
}
