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
	operators["Contains"] = opContains
	operators["Load"] = opLoad
}

func fail(op string, format string, a ...any) (EvalResult, error) {
	err := fmt.Errorf(format, a...)
	return EvalResult{
		Operator: op,
		Error:    err.Error(),
	}, err
}

func opAnd(ctx RequestContext, args []any) (EvalResult, error) {
	for i, arg := range args {
		evaluated, ok := arg.(bool)
		if !ok {
			return fail("And", "bad argument type for AND at index %d. Expected bool but got %s", i, reflect.TypeOf(arg))
		}
		if !evaluated {
			return EvalResult{Operator: "And", Result: false}, nil
		}
	}
	return EvalResult{Operator: "And", Result: true}, nil
}

func opOr(ctx RequestContext, args []any) (EvalResult, error) {
	for i, arg := range args {
		evaluated, ok := arg.(bool)
		if !ok {
			return fail("Or", "bad argument type for OR at index %d. Expected bool but got %s", i, reflect.TypeOf(arg))
		}
		if evaluated {
			return EvalResult{Operator: "Or", Result: true}, nil
		}
	}
	return EvalResult{Operator: "Or", Result: false}, nil
}

func opNot(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return fail("Not", "bad argument length for NOT. Expected 1 but got %d", len(args))
	}
	evaluated, ok := args[0].(bool)
	if !ok {
		return fail("Not", "bad argument type for NOT. Expected bool but got %s", reflect.TypeOf(args[0]))
	}
	return EvalResult{Operator: "Not", Result: !evaluated}, nil
}

// opEq compares with DeepEqual so that loaded maps or slices never panic.
func opEq(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return fail("Eq", "bad argument length for EQ. Expected 2 but got %d", len(args))
	}
	return EvalResult{Operator: "Eq", Result: reflect.DeepEqual(args[0], args[1])}, nil
}

func opContains(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return fail("Contains", "bad argument length for CONTAINS. Expected 2 but got %d", len(args))
	}

	switch haystack := args[0].(type) {
	case []any:
		return EvalResult{Operator: "Contains", Result: slices.Contains(haystack, args[1])}, nil
	case []string:
		needle, ok := args[1].(string)
		return EvalResult{Operator: "Contains", Result: ok && slices.Contains(haystack, needle)}, nil
	default:
		return fail("Contains", "bad argument type for CONTAINS. Expected list but got %s", reflect.TypeOf(args[0]))
	}
}

func opLoad(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return fail("Load", "bad argument length for Load. Expected 1 but got %d", len(args))
	}

	key, ok := args[0].(string)
	if !ok {
		return fail("Load", "bad argument type for Load. Expected string but got %s", reflect.TypeOf(args[0]))
	}

	mappedCtx := structToMap(ctx)
	value, ok := resolveDotNotation(mappedCtx, key)
	if !ok {
		return fail("Load", "key not found: %s", key)
	}

	return EvalResult{Operator: "Load", Result: value}, nil
}
