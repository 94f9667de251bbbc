package orderbook

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BackoffConfig holds the exponential backoff parameters for stream
// reconnection.
type BackoffConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64 // 0.2 = up to 20% extra delay
}

// backoff retries a connect function with exponential delay and jitter,
// resetting after a successful attempt.
type backoff struct {
	config  BackoffConfig
	logger  *zap.Logger
	current time.Duration
	mu      sync.Mutex
}

func newBackoff(cfg BackoffConfig, logger *zap.Logger) *backoff {
	return &backoff{
		config:  cfg,
		logger:  logger,
		current: cfg.InitialDelay,
	}
}

// retry runs connect until it succeeds or the context ends.
func (b *backoff) retry(ctx context.Context, connect func(context.Context) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delay := b.next()

		b.logger.Info("stream-reconnect-attempt", zap.Duration("delay", delay))
		ReconnectAttemptsTotal.Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		err := connect(ctx)
		if err == nil {
			b.reset()
			b.logger.Info("stream-reconnected")
			return nil
		}

		b.logger.Warn("stream-reconnect-failed", zap.Error(err))
		ReconnectFailuresTotal.Inc()
		b.grow()
	}
}

func (b *backoff) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = b.config.InitialDelay
}

func (b *backoff) next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	jitter := rand.Float64() * b.config.Jitter

	return time.Duration(float64(b.current) * (1.0 + jitter))
}

func (b *backoff) grow() {
	b.mu.Lock()
	defer b.mu.Unlock()

	grown := time.Duration(float64(b.current) * b.config.Multiplier)
	if grown > b.config.MaxDelay {
		grown = b.config.MaxDelay
	}

	b.current = grown
}
