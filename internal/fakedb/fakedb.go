// Package fakedb is a database/sql driver that records what it is asked to
// do. Tests use it in place of a live database.
package fakedb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DriverName is the name the driver is registered under.
const DriverName = "eql-fakedb"

// ErrPrepare is returned when a query contains FailMarker.
var ErrPrepare = errors.New("fakedb: prepare failed")

// FailMarker makes PrepareContext fail when present in the query.
const FailMarker = "/*fail*/"

// Recorder captures driver calls for one DSN.
type Recorder struct {
	mu        sync.Mutex
	prepared  []string
	closed    int
	deadlines []time.Duration

	response *response
}

type response struct {
	columns []string
	rows    [][]driver.Value
}

// Respond makes every later query answer with columns and rows instead of
// echoing the query text. Passing no rows yields an empty result set.
func (r *Recorder) Respond(columns []string, rows ...[]any) {
	resp := &response{columns: columns, rows: make([][]driver.Value, 0, len(rows))}
	for _, row := range rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		resp.rows = append(resp.rows, values)
	}
	r.mu.Lock()
	r.response = resp
	r.mu.Unlock()
}

// Prepared returns the prepared queries in order.
func (r *Recorder) Prepared() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prepared...)
}

// ClosedStatements returns how many statements were closed.
func (r *Recorder) ClosedStatements() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Deadlines returns, per Exec/Query call, the time left until the context
// deadline when the call arrived (0 when the context had none).
func (r *Recorder) Deadlines() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.deadlines...)
}

func (r *Recorder) recordDeadline(ctx context.Context) {
	var left time.Duration
	if d, ok := ctx.Deadline(); ok {
		left = time.Until(d)
	}
	r.mu.Lock()
	r.deadlines = append(r.deadlines, left)
	r.mu.Unlock()
}

var (
	registry sync.Map // dsn -> *Recorder
	seq      atomic.Int64
)

func init() {
	sql.Register(DriverName, fakeDriver{})
}

// Open returns a fresh *sql.DB and its recorder.
func Open() (*sql.DB, *Recorder, error) {
	dsn := fmt.Sprintf("fake-%d", seq.Add(1))
	rec := &Recorder{}
	registry.Store(dsn, rec)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, rec, nil
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	v, ok := registry.Load(dsn)
	if !ok {
		return nil, fmt.Errorf("fakedb: unknown dsn %q", dsn)
	}
	return &conn{rec: v.(*Recorder)}, nil
}

type conn struct {
	rec *Recorder
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	if strings.Contains(query, FailMarker) {
		return nil, ErrPrepare
	}
	c.rec.mu.Lock()
	c.rec.prepared = append(c.rec.prepared, query)
	c.rec.mu.Unlock()
	return &stmt{rec: c.rec, query: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) { return tx{}, nil }

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

type stmt struct {
	rec   *Recorder
	query string
}

func (s *stmt) Close() error {
	s.rec.mu.Lock()
	s.rec.closed++
	s.rec.mu.Unlock()
	return nil
}

// NumInput returns -1 so database/sql skips argument count checks.
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}

func (s *stmt) ExecContext(ctx context.Context, _ []driver.NamedValue) (driver.Result, error) {
	s.rec.recordDeadline(ctx)
	return driver.RowsAffected(1), nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return &rows{}, nil
}

// QueryContext answers with the response set through Respond, or else with
// one row holding the query text.
func (s *stmt) QueryContext(ctx context.Context, _ []driver.NamedValue) (driver.Rows, error) {
	s.rec.recordDeadline(ctx)

	s.rec.mu.Lock()
	resp := s.rec.response
	s.rec.mu.Unlock()
	if resp != nil {
		return &rows{columns: resp.columns, values: resp.rows}, nil
	}
	return &rows{columns: []string{"query"}, values: [][]driver.Value{{s.query}}}, nil
}

type rows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *rows) Columns() []string { return r.columns }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
