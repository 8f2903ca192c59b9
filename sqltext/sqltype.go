package sqltext

import (
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Type classifies a rendered statement.
type Type int

const (
	TypeOther Type = iota
	TypeSelect
	TypeInsert
	TypeUpdate
	TypeDelete
	TypeMerge
	TypeProcedure
	TypeDDL
)

var typeNames = map[Type]string{
	TypeOther:     "other",
	TypeSelect:    "select",
	TypeInsert:    "insert",
	TypeUpdate:    "update",
	TypeDelete:    "delete",
	TypeMerge:     "merge",
	TypeProcedure: "procedure",
	TypeDDL:       "ddl",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsProcedure reports whether the statement invokes a stored procedure or
// runs a procedural block.
func (t Type) IsProcedure() bool { return t == TypeProcedure }

// IsQuery reports whether the statement returns rows.
func (t Type) IsQuery() bool { return t == TypeSelect }

// parsers are not safe for concurrent use
var parserPool = sync.Pool{
	New: func() any { return parser.New() },
}

// DetectType classifies sql. Statements the MySQL-family parser understands
// are classified from their AST; everything else (Postgres placeholders,
// procedural blocks, vendor syntax) falls back to the leading keyword.
func DetectType(sql string) Type {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return TypeOther
	}
	if strings.HasPrefix(trimmed, "{") {
		return TypeProcedure
	}

	p := parserPool.Get().(*parser.Parser)
	stmt, err := p.ParseOneStmt(trimmed, "", "")
	parserPool.Put(p)
	if err == nil {
		if t, ok := typeOfStmt(stmt); ok {
			return t
		}
	}

	return typeOfKeyword(firstWord(trimmed))
}

func typeOfStmt(stmt ast.StmtNode) (Type, bool) {
	switch stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return TypeSelect, true
	case *ast.InsertStmt:
		return TypeInsert, true
	case *ast.UpdateStmt:
		return TypeUpdate, true
	case *ast.DeleteStmt:
		return TypeDelete, true
	case *ast.CallStmt:
		return TypeProcedure, true
	case ast.DDLNode:
		return TypeDDL, true
	}
	return TypeOther, false
}

func typeOfKeyword(word string) Type {
	switch strings.ToUpper(word) {
	case "SELECT", "WITH", "VALUES", "SHOW", "EXPLAIN":
		return TypeSelect
	case "INSERT", "REPLACE":
		return TypeInsert
	case "UPDATE":
		return TypeUpdate
	case "DELETE":
		return TypeDelete
	case "MERGE", "UPSERT":
		return TypeMerge
	case "CALL", "EXEC", "EXECUTE", "BEGIN", "DECLARE", "DO":
		return TypeProcedure
	case "CREATE", "ALTER", "DROP", "TRUNCATE", "RENAME", "COMMENT":
		return TypeDDL
	}
	return TypeOther
}

func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'))
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

// CallableSQL turns ODBC call escape syntax into a plain statement:
//
//	{call proc(?, ?)}   -> CALL proc(?, ?)
//	{? = call fn(?)}    -> SELECT fn(?)
//
// Any other text is returned trimmed and otherwise unchanged.
func CallableSQL(sql string) string {
	s := strings.TrimSpace(sql)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return s
	}
	body := strings.TrimSpace(s[1 : len(s)-1])

	if strings.HasPrefix(body, "?") {
		rest := strings.TrimSpace(body[1:])
		if strings.HasPrefix(rest, "=") {
			rest = strings.TrimSpace(rest[1:])
			if hasPrefixFold(rest, "call ") {
				return "SELECT " + strings.TrimSpace(rest[len("call "):])
			}
		}
		return body
	}

	if hasPrefixFold(body, "call ") {
		return "CALL " + strings.TrimSpace(body[len("call "):])
	}
	return body
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
