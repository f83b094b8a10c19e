package policy

// Conclusion is the outcome of evaluating one action's statements.
type Conclusion int

const (
	UNSET Conclusion = iota
	ALLOW
	DENY
)

func ParseConclusion(s string) Conclusion {
	switch s {
	case "allow":
		return ALLOW
	case "deny":
		return DENY
	default:
		return UNSET
	}
}

// Or combines two conclusions. Deny is sticky: once a statement denies,
// a later allow cannot lift it.
func (c Conclusion) Or(other Conclusion) Conclusion {
	if c == DENY || other == DENY {
		return DENY
	}
	if c == ALLOW || other == ALLOW {
		return ALLOW
	}
	return UNSET
}

// RequestContext carries the facts a statement condition can load:
// who the operator is and what the request targets.
type RequestContext struct {
	Operator string         `json:"operator"`
	Role     string         `json:"role"`
	Params   map[string]any `json:"params"`
}

// Policy maps console actions to their permission statements. Actions
// without statements fall back to the action default, then to the
// policy-wide default.
type Policy struct {
	Statements map[string][]Stmt `json:"statements"`
	Defaults   map[string]bool   `json:"defaults"`
}

type Stmt struct {
	Emit      string `json:"emit"`
	Condition Expr   `json:"condition"`
}

// Expr is one node of a condition tree. Leaves carry Const; inner nodes
// name an operator applied to the evaluated Args.
type Expr struct {
	Operator string `json:"op"`
	Args     []Expr `json:"args"`
	Const    any    `json:"const,omitempty"`
}

type EvalResult struct {
	Operator string       `json:"op"`
	Args     []EvalResult `json:"args"`
	Result   any          `json:"result"`
	Error    string       `json:"error"`
}
