package connector

import (
	"context"
	"time"
)

func retryConnect(ctx context.Context, opts RetryConfig, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	attempts := opts.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	delay := opts.BaseDelay
	if delay == 0 {
		delay = time.Second // default
	}
	backoff := opts.Backoff
	if backoff < 1 {
		backoff = 2
	}

	var err error
	for i := 0; i < attempts; i++ {
		var conn Connection
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * backoff)
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}
	return nil, err
}
