package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Konsultn-Engineering/eql/config"
	"github.com/Konsultn-Engineering/eql/expr"
)

// Config is what a run needs from its configuration: raw settings and the
// expression evaluator.
type Config interface {
	config.Store
	ExpressionEvaluator() expr.Evaluator
}

// Settings is the default Config.
type Settings struct {
	store     config.Store
	evaluator expr.Evaluator
	logger    *slog.Logger
}

// NewSettings wraps store and creates a CEL evaluator whose program cache is
// sized by expression.cache.size.
func NewSettings(store config.Store) (*Settings, error) {
	if store == nil {
		store = config.NewMapStore(nil)
	}
	ev, err := expr.NewCELEvaluator(config.Int(store, config.KeyExpressionCacheSize, expr.DefaultProgramCacheSize))
	if err != nil {
		return nil, fmt.Errorf("create expression evaluator: %w", err)
	}
	return &Settings{store: store, evaluator: ev, logger: slog.Default()}, nil
}

// WithEvaluator replaces the expression evaluator.
func (s *Settings) WithEvaluator(ev expr.Evaluator) *Settings {
	s.evaluator = ev
	return s
}

// WithLogger replaces the base logger.
func (s *Settings) WithLogger(l *slog.Logger) *Settings {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Settings) Str(key string) string { return s.store.Str(key) }

func (s *Settings) ExpressionEvaluator() expr.Evaluator { return s.evaluator }

func (s *Settings) Logger() *slog.Logger { return s.logger }

// QueryTimeout resolves query.timeout.seconds. Non-positive values fall back
// to the 60 second default; a zero timeout is never handed to a statement.
func QueryTimeout(store config.Store) time.Duration {
	seconds := config.Int(store, config.KeyQueryTimeoutSeconds, config.DefaultQueryTimeoutSeconds)
	if seconds <= 0 {
		seconds = config.DefaultQueryTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

func baseLogger(cfg Config) *slog.Logger {
	if l, ok := cfg.(interface{ Logger() *slog.Logger }); ok {
		if logger := l.Logger(); logger != nil {
			return logger
		}
	}
	return slog.Default()
}

var _ Config = (*Settings)(nil)
