// Package expr evaluates template expressions against a run's execution
// context.
package expr

import (
	"iter"
	"reflect"

	"github.com/Konsultn-Engineering/eql/execctx"
)

// Scope is the run state an expression is evaluated against.
type Scope interface {
	ExecContext() execctx.Context
	ParamBean() any
}

// Evaluator evaluates an expression and returns a plain Go value (nil,
// scalars, []any, map[string]any, or whatever the implementation produces).
type Evaluator interface {
	Eval(expression string, scope Scope) (any, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(expression string, scope Scope) (any, error)

// Eval calls f.
func (f EvaluatorFunc) Eval(expression string, scope Scope) (any, error) { return f(expression, scope) }

// Iterable is implemented by values that can be ranged over directly.
type Iterable interface {
	All() iter.Seq[any]
}

// EvalCollection evaluates a loop source expression. The result is one of:
//
//   - nil, nil: the expression evaluated to nil; iterate nothing.
//   - seq, nil: an iter.Seq[any] (or Iterable) returned unchanged, or a slice
//     or array copied into a fresh sequence in element order.
//   - nil, *ExpressionTypeError: any other value.
//
// Evaluator errors are returned unchanged.
func EvalCollection(ev Evaluator, expression string, scope Scope) (iter.Seq[any], error) {
	if ev == nil {
		return nil, ErrNilEvaluator
	}
	value, err := ev.Eval(expression, scope)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case iter.Seq[any]:
		return v, nil
	case func(func(any) bool):
		return v, nil
	case Iterable:
		return v.All(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		return sliceSeq(materialize(rv)), nil
	case reflect.Array:
		return sliceSeq(materialize(rv)), nil
	}

	var bean any
	if scope != nil {
		bean = scope.ParamBean()
	}
	return nil, &ExpressionTypeError{Expr: expression, Bean: bean, Got: value}
}

func materialize(rv reflect.Value) []any {
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

func sliceSeq(items []any) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}
