package connector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownProvider is returned by New for unregistered provider names.
var ErrUnknownProvider = errors.New("connector: provider not registered")

type standardConnector struct {
	provider Provider
	config   Config
}

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Providers lists registered provider names, sorted.
func Providers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(name string, config Config) (Connector, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return &standardConnector{provider: provider, config: config}, nil
}

func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}
	return c.provider.Connect(ctx, c.config)
}

func (c *standardConnector) ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error) {
	return retryConnect(ctx, opts, c.Connect)
}

func (c *standardConnector) Close() error {
	return nil
}
