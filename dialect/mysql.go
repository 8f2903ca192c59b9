package dialect

import (
	"fmt"
	"time"
)

type MySQL struct{}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (MySQL) Name() string { return "mysql" }

func (MySQL) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (MySQL) Placeholder(int) string {
	return "?"
}

func (MySQL) RenderValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return renderTime(val)
	case []byte:
		return fmt.Sprintf("X'%x'", val)
	}
	if s, ok := renderCommon(v); ok {
		return s
	}
	return quoteString(fmt.Sprint(v))
}

// TiDB speaks the MySQL protocol and syntax.
type TiDB struct {
	*MySQL
}

func NewTiDBDialect() Dialect {
	return &TiDB{
		MySQL: NewMySQLDialect().(*MySQL),
	}
}

func (*TiDB) Name() string { return "tidb" }
