// Package execctx builds the variable context a templated SQL statement is
// evaluated against.
//
// A Context is created once per statement execution and is owned by that
// execution only. It is a plain map so any evaluator can read it, with typed
// accessors for the well-known keys.
package execctx

import (
	"iter"
	"strconv"
	"time"

	"github.com/Konsultn-Engineering/eql/hostinfo"
)

// Well-known keys.
const (
	KeyTime          = "_time"
	KeyDate          = "_date"
	KeyHost          = "_host"
	KeyIP            = "_ip"
	KeyResults       = "_results"
	KeyLastResult    = "_lastResult"
	KeyParams        = "_params"
	KeyParamsCount   = "_paramsCount"
	KeyDynamics      = "_dynamics"
	KeyDynamicsCount = "_dynamicsCount"
)

// Context maps names to runtime values. Not safe for concurrent use.
type Context map[string]any

// Results accumulates statement results in execution order.
type Results struct {
	items []any
}

// Append adds a result.
func (r *Results) Append(v any) { r.items = append(r.items, v) }

// Len returns the number of accumulated results.
func (r *Results) Len() int { return len(r.items) }

// At returns the i-th result (0-based).
func (r *Results) At(i int) any { return r.items[i] }

// All iterates results in the order they were appended.
func (r *Results) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range r.items {
			if !yield(v) {
				return
			}
		}
	}
}

// New creates a fresh context for one execution.
func New(params, dynamics []any) Context {
	return newAt(time.Now(), hostinfo.Get(), params, dynamics)
}

func newAt(now time.Time, host hostinfo.Info, params, dynamics []any) Context {
	size := 8
	if params != nil {
		size += len(params) + 1
	}
	if dynamics != nil {
		size++
	}

	ctx := make(Context, size)
	ctx[KeyTime] = now
	ctx[KeyDate] = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ctx[KeyHost] = host.Host
	ctx[KeyIP] = host.IP
	ctx[KeyResults] = &Results{}
	ctx[KeyLastResult] = ""

	ctx[KeyParams] = params
	if params != nil {
		ctx[KeyParamsCount] = len(params)
		for i, p := range params {
			ctx[ParamKey(i+1)] = p
		}
	}

	ctx[KeyDynamics] = dynamics
	if dynamics != nil {
		ctx[KeyDynamicsCount] = len(dynamics)
	}

	return ctx
}

// ParamKey returns the key of the n-th positional parameter (1-based).
func ParamKey(n int) string {
	return "_" + strconv.Itoa(n)
}

// Time returns the instant the context was built.
func (c Context) Time() time.Time {
	t, _ := c[KeyTime].(time.Time)
	return t
}

// Params returns the raw positional parameters.
func (c Context) Params() []any {
	p, _ := c[KeyParams].([]any)
	return p
}

// Dynamics returns the raw dynamic parameters.
func (c Context) Dynamics() []any {
	d, _ := c[KeyDynamics].([]any)
	return d
}

// Results returns the accumulator, creating it if a caller removed it.
func (c Context) Results() *Results {
	r, ok := c[KeyResults].(*Results)
	if !ok {
		r = &Results{}
		c[KeyResults] = r
	}
	return r
}

// LastResult returns the most recent statement result, "" before the first.
func (c Context) LastResult() any {
	return c[KeyLastResult]
}

// SetLastResult records v as the latest result and appends it to the
// accumulator.
func (c Context) SetLastResult(v any) {
	c[KeyLastResult] = v
	c.Results().Append(v)
}
