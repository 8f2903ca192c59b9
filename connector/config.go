package connector

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Konsultn-Engineering/eql/config"
)

// Config represents database connection configuration.
type Config struct {
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	// QueryTimeout, when set, is also enforced server side where the
	// provider supports it. Statements always carry their own timeout.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`
	Retry        *RetryConfig  `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// Validate checks the fields every provider needs.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// CompatibleUserToUsername copies "user" into "username" when only the
// former is present, so both spellings work in connection settings.
func CompatibleUserToUsername(params map[string]string) {
	if _, ok := params["username"]; ok {
		return
	}
	if user, ok := params["user"]; ok {
		params["username"] = user
	}
}

// ConfigFromStore reads connection settings from a config store using the
// keys host, port, database, username (or user), password, sslmode,
// connect.timeout.seconds and query.timeout.seconds.
func ConfigFromStore(store config.Store) Config {
	params := map[string]string{
		"user":     store.Str("user"),
		"username": store.Str("username"),
	}
	if params["username"] == "" {
		delete(params, "username")
	}
	CompatibleUserToUsername(params)

	cfg := Config{
		Host:     config.Str(store, "host", "localhost"),
		Port:     config.Int(store, "port", 0),
		Database: store.Str("database"),
		Username: params["username"],
		Password: store.Str("password"),
		SSLMode:  store.Str("sslmode"),
		Pool: PoolConfig{
			MaxOpen: config.Int(store, "pool.max_open", 0),
			MaxIdle: config.Int(store, "pool.max_idle", 0),
		},
	}
	if s := config.Int(store, "connect.timeout.seconds", 0); s > 0 {
		cfg.ConnectTimeout = time.Duration(s) * time.Second
	}
	if s := config.Int(store, config.KeyQueryTimeoutSeconds, 0); s > 0 {
		cfg.QueryTimeout = time.Duration(s) * time.Second
	}
	return cfg
}

// StatementTimeoutMillis renders QueryTimeout for a server-side
// statement_timeout setting, "" when unset.
func (c Config) StatementTimeoutMillis() string {
	if c.QueryTimeout <= 0 {
		return ""
	}
	return strconv.FormatInt(c.QueryTimeout.Milliseconds(), 10)
}
