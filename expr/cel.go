package expr

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/Konsultn-Engineering/eql/execctx"
	"github.com/Konsultn-Engineering/eql/utils"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	lru "github.com/hashicorp/golang-lru/v2"
)

// BeanVar is the variable the parameter bean is bound to.
const BeanVar = "bean"

// DefaultProgramCacheSize bounds the compiled program cache.
const DefaultProgramCacheSize = 256

// CELEvaluator evaluates Common Expression Language expressions. Every
// execution-context key is a variable (_1, _params, _time, ...), the
// parameter bean is bound to "bean", and when the bean is a map or struct its
// entries are also top-level variables. Struct fields are visible under their
// Go name, their property name (UserID as userID) and their eql tag. Context
// keys win over bean entries.
//
// Compiled programs are cached by expression and variable set, so the
// evaluator is safe for concurrent use and cheap on repeated calls.
type CELEvaluator struct {
	programs *lru.Cache[uint64, cel.Program]
	opts     []cel.EnvOption
}

// NewCELEvaluator creates an evaluator. size <= 0 uses
// DefaultProgramCacheSize. opts are added to every environment, e.g. custom
// functions.
func NewCELEvaluator(size int, opts ...cel.EnvOption) (*CELEvaluator, error) {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	programs, err := lru.New[uint64, cel.Program](size)
	if err != nil {
		return nil, fmt.Errorf("create program cache: %w", err)
	}
	return &CELEvaluator{programs: programs, opts: opts}, nil
}

// Eval implements Evaluator.
func (e *CELEvaluator) Eval(expression string, scope Scope) (any, error) {
	vars := activation(scope)
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	program, err := e.program(expression, names)
	if err != nil {
		return nil, err
	}

	out, _, err := program.Eval(vars)
	if err != nil {
		return nil, &EvaluationError{Expr: expression, Phase: "eval", Err: err}
	}
	return toNative(out), nil
}

// CachedPrograms returns the number of compiled programs held.
func (e *CELEvaluator) CachedPrograms() int { return e.programs.Len() }

func (e *CELEvaluator) program(expression string, names []string) (cel.Program, error) {
	key := utils.Mix64(utils.FingerprintString(expression), utils.FingerprintStrings(names...))
	if p, ok := e.programs.Get(key); ok {
		return p, nil
	}

	opts := make([]cel.EnvOption, 0, len(e.opts)+len(names))
	opts = append(opts, e.opts...)
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, &EvaluationError{Expr: expression, Phase: "compile", Err: err}
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, &EvaluationError{Expr: expression, Phase: "compile", Err: issues.Err()}
	}
	p, err := env.Program(ast)
	if err != nil {
		return nil, &EvaluationError{Expr: expression, Phase: "program", Err: err}
	}

	e.programs.Add(key, p)
	return p, nil
}

// activation flattens the scope into CEL variables.
func activation(scope Scope) map[string]any {
	vars := map[string]any{}
	if scope == nil {
		return vars
	}

	bean := scope.ParamBean()
	fields := beanFields(bean)
	for k, v := range fields {
		if isIdent(k) {
			vars[k] = v
		}
	}
	if fields != nil {
		vars[BeanVar] = fields
	} else {
		vars[BeanVar] = bean
	}

	for k, v := range scope.ExecContext() {
		if !isIdent(k) {
			continue
		}
		if r, ok := v.(*execctx.Results); ok {
			items := make([]any, 0, r.Len())
			for item := range r.All() {
				items = append(items, item)
			}
			v = items
		}
		vars[k] = v
	}
	return vars
}

// beanFields exposes a map or struct bean as named fields, nil otherwise.
func beanFields(bean any) map[string]any {
	switch b := bean.(type) {
	case nil:
		return nil
	case map[string]any:
		return b
	case map[string]string:
		out := make(map[string]any, len(b))
		for k, v := range b {
			out[k] = v
		}
		return out
	}

	rv := reflect.ValueOf(bean)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	layout := layoutOf(rv.Type())
	out := make(map[string]any, len(layout)*2)
	for _, f := range layout {
		v := rv.Field(f.index).Interface()
		for _, name := range f.names {
			out[name] = v
		}
	}
	return out
}

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

func isIdent(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// toNative converts a CEL value into plain Go values.
func toNative(v ref.Val) any {
	switch val := v.(type) {
	case nil:
		return nil
	case types.Null:
		return nil
	case traits.Lister:
		items := []any{}
		for it := val.Iterator(); it.HasNext() == types.True; {
			items = append(items, toNative(it.Next()))
		}
		return items
	case traits.Mapper:
		out := map[string]any{}
		for it := val.Iterator(); it.HasNext() == types.True; {
			k := it.Next()
			out[fmt.Sprint(toNative(k))] = toNative(val.Get(k))
		}
		return out
	}
	return v.Value()
}
