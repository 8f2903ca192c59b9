package sqltext

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected Type
	}{
		{name: "Empty", sql: "  ", expected: TypeOther},
		{name: "Select", sql: "SELECT id FROM users WHERE id = ?", expected: TypeSelect},
		{name: "Union", sql: "SELECT 1 UNION SELECT 2", expected: TypeSelect},
		{name: "Insert", sql: "INSERT INTO users (id) VALUES (?)", expected: TypeInsert},
		{name: "Update", sql: "update users set name = ? where id = ?", expected: TypeUpdate},
		{name: "Delete", sql: "DELETE FROM users WHERE id = ?", expected: TypeDelete},
		{name: "Call", sql: "CALL refresh_stats(?)", expected: TypeProcedure},
		{name: "CallEscape", sql: "{call refresh_stats(?)}", expected: TypeProcedure},
		{name: "CreateTable", sql: "CREATE TABLE t (id INT)", expected: TypeDDL},
		{name: "PostgresPlaceholders", sql: "SELECT * FROM users WHERE id = $1", expected: TypeSelect},
		{name: "PlpgsqlBlock", sql: "DO $$ BEGIN PERFORM 1; END $$", expected: TypeProcedure},
		{name: "OracleBlock", sql: "BEGIN proc(:a); END;", expected: TypeProcedure},
		{name: "Merge", sql: "MERGE INTO t USING s ON t.id = s.id", expected: TypeMerge},
		{name: "Unknown", sql: "VACUUM", expected: TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectType(tt.sql)
			assert.Equal(t, tt.expected, got, "got %s", got)
		})
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, TypeProcedure.IsProcedure())
	assert.False(t, TypeSelect.IsProcedure())
	assert.True(t, TypeSelect.IsQuery())
	assert.Equal(t, "procedure", TypeProcedure.String())
	assert.Equal(t, "unknown", Type(99).String())
}

func TestCallableSQL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "{call refresh(?, ?)}", expected: "CALL refresh(?, ?)"},
		{input: " { CALL refresh() } ", expected: "CALL refresh()"},
		{input: "{? = call next_id(?)}", expected: "SELECT next_id(?)"},
		{input: "CALL refresh(?)", expected: "CALL refresh(?)"},
		{input: "SELECT 1", expected: "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CallableSQL(tt.input))
		})
	}
}

func TestRewritePlaceholders(t *testing.T) {
	dollar := func(n int) string { return "$" + strconv.Itoa(n) }

	tests := []struct {
		name          string
		input         string
		expected      string
		expectedCount int
	}{
		{name: "None", input: "SELECT 1", expected: "SELECT 1"},
		{name: "Simple", input: "SELECT * FROM t WHERE a = ? AND b = ?", expected: "SELECT * FROM t WHERE a = $1 AND b = $2", expectedCount: 2},
		{name: "InsideString", input: "SELECT '?' , ? FROM t", expected: "SELECT '?' , $1 FROM t", expectedCount: 1},
		{name: "EscapedQuote", input: "SELECT 'it''s ?' WHERE x = ?", expected: "SELECT 'it''s ?' WHERE x = $1", expectedCount: 1},
		{name: "QuotedIdent", input: `SELECT "a?" FROM t WHERE x = ?`, expected: `SELECT "a?" FROM t WHERE x = $1`, expectedCount: 1},
		{name: "LineComment", input: "SELECT ? -- why?\nFROM t", expected: "SELECT $1 -- why?\nFROM t", expectedCount: 1},
		{name: "BlockComment", input: "SELECT /* ? */ ?", expected: "SELECT /* ? */ $1", expectedCount: 1},
		{name: "UnterminatedComment", input: "SELECT ? /* ?", expected: "SELECT $1 /* ?", expectedCount: 1},
		{name: "UnterminatedString", input: "SELECT ?, 'abc?", expected: "SELECT $1, 'abc?", expectedCount: 1},
		{name: "EscapedMarker", input: "SELECT doc ??| ? FROM t WHERE doc ?? 'k'", expected: "SELECT doc ?| $1 FROM t WHERE doc ? 'k'", expectedCount: 1},
		{name: "DollarQuoted", input: "DO $$ BEGIN PERFORM '?'; END $$; SELECT ?", expected: "DO $$ BEGIN PERFORM '?'; END $$; SELECT $1", expectedCount: 1},
		{name: "TaggedDollarQuoted", input: "SELECT $fn$ a ? $x$ ? $fn$, ?", expected: "SELECT $fn$ a ? $x$ ? $fn$, $1", expectedCount: 1},
		{name: "UnterminatedDollarQuoted", input: "SELECT ?, $$ ?", expected: "SELECT $1, $$ ?", expectedCount: 1},
		{name: "PositionalNotDollarQuote", input: "SELECT $1, ?", expected: "SELECT $1, $1", expectedCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := RewritePlaceholders(tt.input, dollar)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expectedCount, count)
		})
	}
}
