package policy

import (
	"fmt"
)

// Summarize folds conclusions into a single decision, falling back to
// defaultAllow when nothing was emitted.
func Summarize(conclusions []Conclusion, defaultAllow bool) Conclusion {
	result := UNSET
	for _, c := range conclusions {
		result = result.Or(c)
	}
	if result == UNSET {
		if defaultAllow {
			return ALLOW
		}
		return DENY
	}
	return result
}

// EvaluatePolicy runs every statement registered for action and collects what they emit.
// Statements whose condition fails to evaluate emit nothing.
func EvaluatePolicy(policy Policy, ctx RequestContext, action Action) []Conclusion {
	statements, ok := policy.Statements[action]
	if !ok {
		return nil
	}

	conclusions := make([]Conclusion, 0, len(statements))
	for _, stmt := range statements {
		evalResult, err := Eval(ctx, stmt.Condition)
		if err != nil {
			continue
		}

		if evalResult.Result == true {
			conclusions = append(conclusions, ParseConclusion(stmt.Emit))
		}
	}
	return conclusions
}

func Eval(ctx RequestContext, expr Expr) (EvalResult, error) {

	if expr.Const != nil {
		return EvalResult{
			Operator: "Const",
			Result:   expr.Const,
		}, nil
	}

	args := make([]any, 0, len(expr.Args))
	results := make([]EvalResult, 0, len(expr.Args))
	for _, arg := range expr.Args {
		result, err := Eval(ctx, arg)
		if err != nil {
			return EvalResult{
				Operator: expr.Operator,
				Error:    err.Error(),
			}, err
		}
		args = append(args, result.Result)
		results = append(results, result)
	}

	if operatorFunc, exists := operators[expr.Operator]; exists {
		result, err := operatorFunc(ctx, args)
		result.Args = results
		return result, err
	}

	err := fmt.Errorf("unknown operator: %s", expr.Operator)
	return EvalResult{
		Operator: expr.Operator,
		Error:    err.Error(),
	}, err
}
