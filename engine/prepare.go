package engine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Konsultn-Engineering/eql/dialect"
	"github.com/Konsultn-Engineering/eql/sqltext"
)

// ErrNoConnection is returned when a run has nothing to prepare on.
var ErrNoConnection = errors.New("engine: run has no connection")

// Statement is a prepared statement bound to a query timeout. Every call
// through it runs under a context that expires after Timeout.
type Statement struct {
	Stmt     *sql.Stmt
	SQL      string
	Timeout  time.Duration
	Callable bool

	cached bool
}

// PrepareSQL prepares the run's SQL on its connection. Stored procedure calls
// in escape syntax are rewritten to plain CALL statements; '?' markers are
// rewritten for the run's dialect. Driver errors are returned unchanged.
func PrepareSQL(ctx context.Context, run *Run) (*Statement, error) {
	if run == nil || run.Conn == nil {
		return nil, ErrNoConnection
	}

	log := run.logger("prepare")
	log.DebugContext(ctx, run.PrintSQL())

	query := run.RunSQL()
	callable := run.SQLType().IsProcedure()
	if callable {
		query = sqltext.CallableSQL(query)
	}
	query = dialect.Bind(run.Dialect, query)

	var (
		stmt   *sql.Stmt
		err    error
		cached = run.Cache != nil
	)
	if cached {
		stmt, err = run.Cache.GetOrPrepare(ctx, run.Conn, query)
	} else {
		stmt, err = run.Conn.PrepareContext(ctx, query)
	}
	if err != nil {
		log.DebugContext(ctx, "prepare failed", "error", err)
		return nil, err
	}

	return &Statement{
		Stmt:     stmt,
		SQL:      query,
		Timeout:  QueryTimeout(run.Config),
		Callable: callable,
		cached:   cached,
	}, nil
}

func (s *Statement) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// ExecContext executes the statement under the query timeout.
func (s *Statement) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Stmt.ExecContext(ctx, args...)
}

// Rows releases the statement's timeout when closed.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

func (r *Rows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}

// QueryContext runs the query under the query timeout. The timeout covers
// the whole scan; callers must Close the returned Rows.
func (s *Statement) QueryContext(ctx context.Context, args ...any) (*Rows, error) {
	ctx, cancel := s.withTimeout(ctx)
	rows, err := s.Stmt.QueryContext(ctx, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRowContext runs a single-row query and scans it into dest.
func (s *Statement) QueryRowContext(ctx context.Context, args []any, dest ...any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Stmt.QueryRowContext(ctx, args...).Scan(dest...)
}

// Close releases the statement unless it belongs to a StatementCache.
func (s *Statement) Close() error {
	if s.cached || s.Stmt == nil {
		return nil
	}
	return s.Stmt.Close()
}
