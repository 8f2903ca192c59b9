// Package dialect knows how each database spells placeholders, quoted
// identifiers and literal values.
package dialect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/eql/sqltext"
	"github.com/google/uuid"
)

type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// Placeholder returns the n-th (1-based) bind marker.
	Placeholder(n int) string
	// RenderValue renders v as an SQL literal, for logs only.
	RenderValue(v any) string
}

// ByName returns the dialect registered under name ("postgres", "pgx",
// "mysql", "tidb"), or nil.
func ByName(name string) Dialect {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect()
	case "mysql":
		return NewMySQLDialect()
	case "tidb":
		return NewTiDBDialect()
	}
	return nil
}

// Bind rewrites '?' markers in sql into the dialect's placeholders. Dialects
// that use '?' natively get sql back unchanged.
func Bind(d Dialect, sql string) string {
	if d == nil || d.Placeholder(1) == "?" {
		return sql
	}
	out, _ := sqltext.RewritePlaceholders(sql, d.Placeholder)
	return out
}

// PrintSQL inlines args into the '?' markers of sql for debug output. Markers
// without a matching arg are left as '?'.
func PrintSQL(d Dialect, sql string, args []any) string {
	if d == nil {
		d = NewMySQLDialect()
	}
	out, _ := sqltext.RewritePlaceholders(sql, func(n int) string {
		if n > len(args) {
			return "?"
		}
		return d.RenderValue(args[n-1])
	})
	return out
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// renderCommon handles the literals every dialect spells the same way.
func renderCommon(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "NULL", true
	case string:
		return quoteString(val), true
	case bool:
		if val {
			return "TRUE", true
		}
		return "FALSE", true
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), true
	case uuid.UUID:
		return quoteString(val.String()), true
	case fmt.Stringer:
		return quoteString(val.String()), true
	}
	return "", false
}

func renderTime(t time.Time) string {
	return "'" + t.Format("2006-01-02 15:04:05.000000") + "'"
}
