// Package connector opens database connections through registered
// providers and supplies the *sql.DB statements are prepared on.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/eql/dialect"
)

type Connection interface {
	DB() *sql.DB
	Dialect() dialect.Dialect
	// URL is the connection URL the connection was opened with, password
	// masked.
	URL() string
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error)
	Close() error
}

type Provider interface {
	Connect(ctx context.Context, config Config) (Connection, error)
	Dialect() dialect.Dialect
	HealthCheck(ctx context.Context, conn Connection) error
}

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

// DriverName returns the Go type name of the driver behind db, e.g.
// "*stdlib.Driver" for pgx.
func DriverName(db *sql.DB) string {
	if db == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", db.Driver()), "*")
}
