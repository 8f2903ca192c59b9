package expr

import (
	"errors"
	"fmt"
)

// ErrNilEvaluator is returned when no evaluator is configured.
var ErrNilEvaluator = errors.New("expr: no expression evaluator configured")

// ExpressionTypeError reports a loop source that evaluated to something other
// than a collection.
type ExpressionTypeError struct {
	Expr string
	Bean any
	// Got is the offending value.
	Got any
}

func (e *ExpressionTypeError) Error() string {
	return fmt.Sprintf("%s in %v is not an expression of a collection", e.Expr, e.Bean)
}

// EvaluationError wraps a failure to compile or run an expression.
type EvaluationError struct {
	Expr  string
	Phase string // "compile", "program" or "eval"
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s expression %q: %v", e.Phase, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
