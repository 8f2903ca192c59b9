// Package config reads string settings from pluggable stores and converts
// them to typed values with silent fallbacks.
package config

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Well-known keys.
const (
	KeyQueryTimeoutSeconds = "query.timeout.seconds"
	KeyExpressionCacheSize = "expression.cache.size"
	KeyStatementCacheSize  = "statement.cache.size"
)

// DefaultQueryTimeoutSeconds applies when no positive timeout is configured.
const DefaultQueryTimeoutSeconds = 60

// Store returns raw string settings. Missing keys yield "".
type Store interface {
	Str(key string) string
}

var digits = regexp.MustCompile(`^\d+$`)

// Int reads key as a non-negative decimal integer. Blank values, anything
// that is not all digits, and values too large for int resolve to def.
func Int(store Store, key string, def int) int {
	if store == nil {
		return def
	}
	v := store.Str(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	if !digits.MatchString(v) {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool reads key as a boolean; unparsable values resolve to def.
func Bool(store Store, key string, def bool) bool {
	if store == nil {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(store.Str(key)))
	if err != nil {
		return def
	}
	return b
}

// Str reads key and falls back to def when blank.
func Str(store Store, key, def string) string {
	if store == nil {
		return def
	}
	if v := store.Str(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// MapStore is an in-memory Store safe for concurrent use.
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapStore copies values into a new store.
func NewMapStore(values map[string]string) *MapStore {
	s := &MapStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Str returns the value for key.
func (s *MapStore) Str(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key.
func (s *MapStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Snapshot returns a copy of all values.
func (s *MapStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *MapStore) replace(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
}

var _ Store = (*MapStore)(nil)
