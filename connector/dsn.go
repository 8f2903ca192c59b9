package connector

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DSNBuilder provides a fluent interface for building database connection strings
type DSNBuilder struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	database string
	params   map[string]string
}

// NewDSNBuilder creates a new DSN builder
func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		scheme: scheme,
		params: make(map[string]string),
	}
}

// FromConfig fills the builder from cfg.
func (b *DSNBuilder) FromConfig(cfg Config) *DSNBuilder {
	return b.Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, cfg.Port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params)
}

func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	b.username = username
	b.password = password
	return b
}

func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.database = name
	return b
}

// Param adds a single parameter; empty values are skipped.
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params[key] = value
	}
	return b
}

func (b *DSNBuilder) Params(params map[string]string) *DSNBuilder {
	for k, v := range params {
		b.Param(k, v)
	}
	return b
}

func (b *DSNBuilder) Validate() error {
	if b.host == "" {
		return fmt.Errorf("host is required")
	}
	if b.port < 0 || b.port > 65535 {
		return fmt.Errorf("invalid port: %d", b.port)
	}
	return nil
}

// Build constructs the final DSN string. Parameters are sorted by key so the
// output is stable.
func (b *DSNBuilder) Build() string {
	return b.build(b.password)
}

// Redacted is Build with the password masked, for logs.
func (b *DSNBuilder) Redacted() string {
	if b.password == "" {
		return b.build("")
	}
	return b.build("xxxxx")
}

func (b *DSNBuilder) build(password string) string {
	var dsn strings.Builder

	dsn.WriteString(b.scheme)
	dsn.WriteString("://")

	if b.username != "" {
		dsn.WriteString(url.QueryEscape(b.username))
		if password != "" {
			dsn.WriteString(":")
			dsn.WriteString(url.QueryEscape(password))
		}
		dsn.WriteString("@")
	}

	dsn.WriteString(b.host)
	if b.port > 0 {
		dsn.WriteString(":")
		dsn.WriteString(strconv.Itoa(b.port))
	}

	if b.database != "" {
		dsn.WriteString("/")
		dsn.WriteString(url.PathEscape(b.database))
	}

	if len(b.params) > 0 {
		keys := make([]string, 0, len(b.params))
		for k := range b.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dsn.WriteString("?")
		for i, key := range keys {
			if i > 0 {
				dsn.WriteString("&")
			}
			dsn.WriteString(url.QueryEscape(key))
			dsn.WriteString("=")
			dsn.WriteString(url.QueryEscape(b.params[key]))
		}
	}

	return dsn.String()
}
