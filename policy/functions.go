package policy

import "fmt"

// Evaluate resolves whether the context may perform an action. Statements
// for the action are combined with Conclusion.Or; UNSET falls back to the
// per-action default, then to defaultAllow.
func Evaluate(p Policy, ctx RequestContext, action string, defaultAllow bool) bool {
	conclusion := UNSET

	for _, stmt := range p.Statements[action] {
		result, err := Eval(ctx, stmt.Condition)
		if err != nil {
			continue
		}
		if result.Result == true {
			conclusion = conclusion.Or(ParseConclusion(stmt.Emit))
		}
	}

	if conclusion == UNSET {
		if d, ok := p.Defaults[action]; ok {
			return d
		}
		return defaultAllow
	}
	return conclusion == ALLOW
}

// Eval walks an expression tree bottom-up.
func Eval(ctx RequestContext, expr Expr) (EvalResult, error) {
	if expr.Const != nil {
		return EvalResult{Operator: "Const", Result: expr.Const}, nil
	}

	args := make([]any, 0, len(expr.Args))
	for _, arg := range expr.Args {
		result, err := Eval(ctx, arg)
		if err != nil {
			return EvalResult{Operator: expr.Operator, Error: err.Error()}, err
		}
		args = append(args, result.Result)
	}

	if operatorFunc, exists := operators[expr.Operator]; exists {
		return operatorFunc(ctx, args)
	}

	err := fmt.Errorf("unknown operator: %s", expr.Operator)
	return EvalResult{Operator: expr.Operator, Error: err.Error()}, err
}

// Console actions gated by policy.
const (
	ActionApprove      = "accreditation.approve"
	ActionReject       = "accreditation.reject"
	ActionDelete       = "accreditation.delete"
	ActionManageEvents = "events.manage"
	ActionExport       = "exports.run"
)

func roleIs(roles ...string) Expr {
	list := make([]any, len(roles))
	for i, r := range roles {
		list[i] = r
	}
	return Expr{
		Operator: "In",
		Args: []Expr{
			{Operator: "Load", Args: []Expr{{Const: "role"}}},
			{Const: list},
		},
	}
}

// ConsoleDefault is the built-in permission policy: workflow transitions
// and event administration are reserved for admins, exports are open to
// every authenticated operator.
func ConsoleDefault() Policy {
	adminOnly := []Stmt{{Emit: "allow", Condition: roleIs("admin")}}
	return Policy{
		Statements: map[string][]Stmt{
			ActionApprove:      adminOnly,
			ActionReject:       adminOnly,
			ActionDelete:       adminOnly,
			ActionManageEvents: adminOnly,
			ActionExport:       {{Emit: "allow", Condition: roleIs("admin", "steward")}},
		},
		Defaults: map[string]bool{
			ActionApprove:      false,
			ActionReject:       false,
			ActionDelete:       false,
			ActionManageEvents: false,
			ActionExport:       false,
		},
	}
}
