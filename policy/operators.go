package policy

import (
	"fmt"
	"reflect"
	"slices"
)

type Operator func(ctx RequestContext, args []any) (EvalResult, error)

var operators = make(map[string]Operator)

func init() {
	operators["And"] = opAnd
	operators["Or"] = opOr
	operators["Not"] = opNot
	operators["Eq"] = opEq
	operators["In"] = opIn
	operators["Load"] = opLoad
}

func boolArgs(op string, args []any) ([]bool, error) {
	out := make([]bool, len(args))
	for i, arg := range args {
		b, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("bad argument type for %s at index %d: expected bool but got %s", op, i, reflect.TypeOf(arg))
		}
		out[i] = b
	}
	return out, nil
}

func opAnd(ctx RequestContext, args []any) (EvalResult, error) {
	bools, err := boolArgs("And", args)
	if err != nil {
		return EvalResult{Operator: "And", Error: err.Error()}, err
	}
	for _, b := range bools {
		if !b {
			return EvalResult{Operator: "And", Result: false}, nil
		}
	}
	return EvalResult{Operator: "And", Result: true}, nil
}

func opOr(ctx RequestContext, args []any) (EvalResult, error) {
	bools, err := boolArgs("Or", args)
	if err != nil {
		return EvalResult{Operator: "Or", Error: err.Error()}, err
	}
	for _, b := range bools {
		if b {
			return EvalResult{Operator: "Or", Result: true}, nil
		}
	}
	return EvalResult{Operator: "Or", Result: false}, nil
}

func opNot(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		err := fmt.Errorf("bad argument length for Not: expected 1 but got %d", len(args))
		return EvalResult{Operator: "Not", Error: err.Error()}, err
	}
	bools, err := boolArgs("Not", args)
	if err != nil {
		return EvalResult{Operator: "Not", Error: err.Error()}, err
	}
	return EvalResult{Operator: "Not", Result: !bools[0]}, nil
}

func opEq(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		err := fmt.Errorf("bad argument length for Eq: expected 2 but got %d", len(args))
		return EvalResult{Operator: "Eq", Error: err.Error()}, err
	}
	return EvalResult{Operator: "Eq", Result: args[0] == args[1]}, nil
}

// opIn tests membership of a scalar in a constant list, e.g. whether the
// operator role is one of the privileged roles.
func opIn(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		err := fmt.Errorf("bad argument length for In: expected 2 but got %d", len(args))
		return EvalResult{Operator: "In", Error: err.Error()}, err
	}
	list, ok := args[1].([]any)
	if !ok {
		err := fmt.Errorf("bad argument type for In: expected []any but got %s", reflect.TypeOf(args[1]))
		return EvalResult{Operator: "In", Error: err.Error()}, err
	}
	return EvalResult{Operator: "In", Result: slices.Contains(list, args[0])}, nil
}

func opLoad(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		err := fmt.Errorf("bad argument length for Load: expected 1 but got %d", len(args))
		return EvalResult{Operator: "Load", Error: err.Error()}, err
	}
	key, ok := args[0].(string)
	if !ok {
		err := fmt.Errorf("bad argument type for Load: expected string but got %s", reflect.TypeOf(args[0]))
		return EvalResult{Operator: "Load", Error: err.Error()}, err
	}

	value, ok := resolveDotNotation(structToMap(ctx), key)
	if !ok {
		err := fmt.Errorf("key not found: %s", key)
		return EvalResult{Operator: "Load", Error: err.Error()}, err
	}
	return EvalResult{Operator: "Load", Result: value}, nil
}
