// Package engine holds the per-execution run state of a templated statement
// and turns its rendered SQL into prepared statements.
package engine

import (
	"context"
	"database/sql"
	"iter"
	"log/slog"

	"github.com/Konsultn-Engineering/eql/cache"
	"github.com/Konsultn-Engineering/eql/connector"
	"github.com/Konsultn-Engineering/eql/dialect"
	"github.com/Konsultn-Engineering/eql/execctx"
	"github.com/Konsultn-Engineering/eql/expr"
	"github.com/Konsultn-Engineering/eql/sqltext"
	"github.com/oklog/ulid/v2"
)

// Conn prepares statements. *sql.DB, *sql.Conn and *sql.Tx satisfy it.
type Conn interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Run is the state of one statement execution. It is owned by a single
// goroutine from creation until the statement completes.
type Run struct {
	ID     ulid.ULID
	Config Config

	Conn    Conn
	Dialect dialect.Dialect
	// Cache, when set, reuses prepared statements across runs. Only set it
	// when Conn is long-lived (a *sql.DB).
	Cache *cache.StatementCache

	SQLClassPath string
	SQLID        string
	TagSQLID     string

	paramBean   any
	execContext execctx.Context

	runSQL  string
	args    []any
	sqlType sqltext.Type
}

// NewRun starts a run: it builds a fresh execution context from params and
// dynamics. paramBean is the object named parameters are read from.
func NewRun(cfg Config, paramBean any, params, dynamics []any) *Run {
	return &Run{
		ID:          ulid.Make(),
		Config:      cfg,
		paramBean:   paramBean,
		execContext: execctx.New(params, dynamics),
	}
}

// UseConnection points the run at conn and adopts its dialect.
func (r *Run) UseConnection(conn connector.Connection) *Run {
	r.Conn = conn.DB()
	r.Dialect = conn.Dialect()
	return r
}

// ExecContext returns the run's execution context.
func (r *Run) ExecContext() execctx.Context { return r.execContext }

// ParamBean returns the parameter bean.
func (r *Run) ParamBean() any { return r.paramBean }

// EvalCollection evaluates a loop source against this run. See
// expr.EvalCollection for the result contract.
func (r *Run) EvalCollection(expression string) (iter.Seq[any], error) {
	var ev expr.Evaluator
	if r.Config != nil {
		ev = r.Config.ExpressionEvaluator()
	}
	return expr.EvalCollection(ev, expression, r)
}

// SetRunSQL records the fully rendered SQL and its bind arguments. Dangling
// WHERE/AND/OR keywords are trimmed and the statement type is detected.
func (r *Run) SetRunSQL(sql string, args ...any) {
	r.runSQL = sqltext.TrimLastUnusedPart(sql)
	r.args = args
	r.sqlType = sqltext.DetectType(r.runSQL)
}

// RunSQL returns the SQL that will be prepared, with '?' markers.
func (r *Run) RunSQL() string { return r.runSQL }

// Args returns the bind arguments.
func (r *Run) Args() []any { return r.args }

// SQLType returns the detected statement type.
func (r *Run) SQLType() sqltext.Type { return r.sqlType }

// PrintSQL returns RunSQL with the bind arguments inlined, for logs.
func (r *Run) PrintSQL() string {
	return dialect.PrintSQL(r.Dialect, r.runSQL, r.args)
}

func (r *Run) logger(phase string) *slog.Logger {
	var base *slog.Logger
	if r.Config != nil {
		base = baseLogger(r.Config)
	} else {
		base = slog.Default()
	}
	return base.With(
		slog.String("run_id", r.ID.String()),
		slog.String("sql_class_path", r.SQLClassPath),
		slog.String("sql_id", r.SQLID),
		slog.String("tag_sql_id", r.TagSQLID),
		slog.String("phase", phase),
	)
}

var _ expr.Scope = (*Run)(nil)
