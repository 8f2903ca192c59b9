package engine

import (
	"context"
	"fmt"
)

// Execute prepares and runs the statement with the run's arguments. Queries
// and procedure calls return the first column of the first row, or nil when
// no row comes back; other statements return the number of affected rows.
// The outcome becomes the run's last result.
func Execute(ctx context.Context, run *Run) (any, error) {
	stmt, err := PrepareSQL(ctx, run)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	log := run.logger("execute")

	var result any
	if run.SQLType().IsQuery() || stmt.Callable {
		v, err := firstValue(ctx, stmt, run.Args())
		if err != nil {
			log.DebugContext(ctx, "query failed", "error", err)
			return nil, err
		}
		result = v
	} else {
		res, err := stmt.ExecContext(ctx, run.Args()...)
		if err != nil {
			log.DebugContext(ctx, "exec failed", "error", err)
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		result = n
	}

	run.execContext.SetLastResult(result)
	log.DebugContext(ctx, "executed", "result", result)
	return result, nil
}

// firstValue reads the first column of the first row, whatever the width of
// the result. An empty result set yields nil.
func firstValue(ctx context.Context, stmt *Statement, args []any) (any, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if len(columns) == 0 || !rows.Next() {
		return nil, rows.Err()
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values[0], rows.Err()
}
