package dialect

import (
	"fmt"
	"strconv"
	"time"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string { return "postgres" }

func (Postgres) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (Postgres) RenderValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return renderTime(val)
	case []byte:
		return fmt.Sprintf("'\\x%x'", val) // bytea hex literal
	}
	if s, ok := renderCommon(v); ok {
		return s
	}
	return quoteString(fmt.Sprint(v))
}
