package dialect

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	assert.Equal(t, "postgres", ByName("pgx").Name())
	assert.Equal(t, "postgres", ByName("PostgreSQL").Name())
	assert.Equal(t, "mysql", ByName("mysql").Name())
	assert.Equal(t, "tidb", ByName("tidb").Name())
	assert.Nil(t, ByName("oracle"))
}

func TestPlaceholdersAndQuoting(t *testing.T) {
	pg := NewPostgresDialect()
	my := NewMySQLDialect()
	ti := NewTiDBDialect()

	assert.Equal(t, "$3", pg.Placeholder(3))
	assert.Equal(t, "?", my.Placeholder(3))
	assert.Equal(t, "?", ti.Placeholder(3))
	assert.Equal(t, `"users"`, pg.QuoteIdentifier("users"))
	assert.Equal(t, "`users`", ti.QuoteIdentifier("users"))
}

func TestBind(t *testing.T) {
	sql := "SELECT * FROM t WHERE a = ? AND b = '?' AND c = ?"

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = '?' AND c = $2", Bind(NewPostgresDialect(), sql))
	assert.Equal(t, sql, Bind(NewMySQLDialect(), sql))
	assert.Equal(t, sql, Bind(nil, sql))

	jsonb := "SELECT $$?$$, doc ??& ? FROM t"
	assert.Equal(t, "SELECT $$?$$, doc ?& $1 FROM t", Bind(NewPostgresDialect(), jsonb))
}

func TestRenderValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		dialect  Dialect
		value    any
		expected string
	}{
		{name: "Nil", dialect: NewPostgresDialect(), value: nil, expected: "NULL"},
		{name: "String", dialect: NewPostgresDialect(), value: "O'Brien", expected: "'O''Brien'"},
		{name: "BoolTrue", dialect: NewMySQLDialect(), value: true, expected: "TRUE"},
		{name: "Int", dialect: NewMySQLDialect(), value: int32(-4), expected: "-4"},
		{name: "Uint", dialect: NewMySQLDialect(), value: uint8(200), expected: "200"},
		{name: "Float", dialect: NewPostgresDialect(), value: 1.25, expected: "1.25"},
		{name: "Time", dialect: NewPostgresDialect(), value: ts, expected: "'2024-01-02 03:04:05.000006'"},
		{name: "PgBytes", dialect: NewPostgresDialect(), value: []byte{0xde, 0xad}, expected: `'\xdead'`},
		{name: "MySQLBytes", dialect: NewMySQLDialect(), value: []byte{0xde, 0xad}, expected: "X'dead'"},
		{name: "UUID", dialect: NewPostgresDialect(), value: id, expected: "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{name: "Fallback", dialect: NewTiDBDialect(), value: []int{1, 2}, expected: "'[1 2]'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.RenderValue(tt.value))
		})
	}
}

func TestPrintSQL(t *testing.T) {
	sql := "SELECT * FROM users WHERE name = ? AND age > ? AND x = ?"

	got := PrintSQL(NewPostgresDialect(), sql, []any{"bob", 30})
	assert.Equal(t, "SELECT * FROM users WHERE name = 'bob' AND age > 30 AND x = ?", got)

	assert.Equal(t, "SELECT 'a'", PrintSQL(nil, "SELECT ?", []any{"a"}))
}
