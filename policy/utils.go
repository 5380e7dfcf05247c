package policy

import (
	"reflect"
	"strings"
)

func resolveDotNotation(obj map[string]any, key string) (any, bool) {
	keys := strings.Split(key, ".")
	current := obj
	for i, k := range keys {
		if i == len(keys)-1 {
			value, ok := current[k]
			return value, ok
		}
		next, ok := current[k].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// structToMap exposes the json-tagged fields of a struct as a map.
func structToMap(obj any) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		result[tag] = v.Field(i).Interface()
	}
	return result
}

// Helpers for building expressions in Go.

func Const(v any) Expr { return Expr{Const: v} }

func Load(key string) Expr { return Expr{Operator: "Load", Args: []Expr{Const(key)}} }

func Eq(a, b Expr) Expr { return Expr{Operator: "Eq", Args: []Expr{a, b}} }

func Or(args ...Expr) Expr { return Expr{Operator: "Or", Args: args} }

func And(args ...Expr) Expr { return Expr{Operator: "And", Args: args} }

func Not(arg Expr) Expr { return Expr{Operator: "Not", Args: []Expr{arg}} }
