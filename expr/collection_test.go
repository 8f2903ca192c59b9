package expr

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/Konsultn-Engineering/eql/execctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScope struct {
	ctx  execctx.Context
	bean any
}

func (s testScope) ExecContext() execctx.Context { return s.ctx }
func (s testScope) ParamBean() any               { return s.bean }

func returning(v any) Evaluator {
	return EvaluatorFunc(func(string, Scope) (any, error) { return v, nil })
}

type counter struct{ n int }

func (c counter) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := 0; i < c.n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func TestEvalCollection(t *testing.T) {
	scope := testScope{ctx: execctx.New(nil, nil), bean: map[string]any{"ids": []int{1}}}

	var seqFunc iter.Seq[any] = slices.Values([]any{"a", "b"})

	tests := []struct {
		name     string
		value    any
		expected []any
		isNil    bool
	}{
		{name: "Nil", value: nil, isNil: true},
		{name: "NilSlice", value: []string(nil), isNil: true},
		{name: "AnySlice", value: []any{1, 2, 3}, expected: []any{1, 2, 3}},
		{name: "TypedSlice", value: []string{"x", "y"}, expected: []any{"x", "y"}},
		{name: "EmptySlice", value: []int{}, expected: []any{}},
		{name: "Array", value: [3]int{3, 2, 1}, expected: []any{3, 2, 1}},
		{name: "Seq", value: seqFunc, expected: []any{"a", "b"}},
		{name: "PlainFunc", value: func(yield func(any) bool) { yield(7) }, expected: []any{7}},
		{name: "Iterable", value: counter{n: 3}, expected: []any{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := EvalCollection(returning(tt.value), "items", scope)
			require.NoError(t, err)
			if tt.isNil {
				assert.Nil(t, seq)
				return
			}
			require.NotNil(t, seq)
			got := slices.Collect(seq)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvalCollectionCopiesSlices(t *testing.T) {
	src := []any{1, 2, 3}
	seq, err := EvalCollection(returning(src), "items", nil)
	require.NoError(t, err)

	src[0] = 99
	assert.Equal(t, []any{1, 2, 3}, slices.Collect(seq))
	// sequences over materialized slices can be replayed
	assert.Equal(t, []any{1, 2, 3}, slices.Collect(seq))
}

func TestEvalCollectionEarlyStop(t *testing.T) {
	seq, err := EvalCollection(returning([]int{1, 2, 3, 4}), "items", nil)
	require.NoError(t, err)

	var got []any
	for v := range seq {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []any{1, 2}, got)
}

func TestEvalCollectionTypeMismatch(t *testing.T) {
	bean := map[string]any{"name": "alice"}
	scope := testScope{ctx: execctx.New(nil, nil), bean: bean}

	for _, value := range []any{42, "abc", map[string]any{"a": 1}, struct{}{}} {
		seq, err := EvalCollection(returning(value), "user.name", scope)
		assert.Nil(t, seq)

		var typeErr *ExpressionTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, "user.name", typeErr.Expr)
		assert.Equal(t, bean, typeErr.Bean)
		assert.Equal(t, value, typeErr.Got)
		assert.Contains(t, err.Error(), "user.name in map[name:alice]")
		assert.Contains(t, err.Error(), "is not an expression of a collection")
	}
}

func TestEvalCollectionPropagatesEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	ev := EvaluatorFunc(func(string, Scope) (any, error) { return nil, boom })

	seq, err := EvalCollection(ev, "x", nil)
	assert.Nil(t, seq)
	assert.Same(t, boom, err)
}

func TestEvalCollectionNilEvaluator(t *testing.T) {
	_, err := EvalCollection(nil, "x", nil)
	assert.ErrorIs(t, err, ErrNilEvaluator)
}
