// Package cache keeps prepared statements alive across executions.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/Konsultn-Engineering/eql/utils"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds a StatementCache when no size is configured.
const DefaultSize = 128

// Preparer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// StatementCache is an LRU of prepared statements keyed by SQL text.
// Evicted statements are closed. Statements handed out stay owned by the
// cache: callers must not Close them.
type StatementCache struct {
	cache *lru.Cache[uint64, *sql.Stmt]
	mu    sync.Mutex
}

func NewStatementCache(size int) (*StatementCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.NewWithEvict(size, func(_ uint64, stmt *sql.Stmt) {
		_ = stmt.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create statement cache: %w", err)
	}
	return &StatementCache{cache: cache}, nil
}

// Get returns the cached statement for query.
func (s *StatementCache) Get(query string) (*sql.Stmt, bool) {
	return s.cache.Get(utils.FingerprintString(query))
}

// GetOrPrepare returns the cached statement for query, preparing it on p
// when missing. A statement prepared on a *sql.DB may be used with any
// connection of that pool; one prepared on a Tx dies with it, so only cache
// statements from long-lived preparers.
func (s *StatementCache) GetOrPrepare(ctx context.Context, p Preparer, query string) (*sql.Stmt, error) {
	key := utils.FingerprintString(query)

	if stmt, ok := s.cache.Get(key); ok {
		return stmt, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// double-check after taking the lock
	if stmt, ok := s.cache.Get(key); ok {
		return stmt, nil
	}

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, stmt)
	return stmt, nil
}

// Len returns the number of cached statements.
func (s *StatementCache) Len() int { return s.cache.Len() }

// Close closes and drops every cached statement.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	return nil
}
