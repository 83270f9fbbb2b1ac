package data

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/marketlens/marketlens/internal/domain"
)

// RetryConfig bounds the retry and pacing behavior of the provider stack.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	BaseDelay      time.Duration `yaml:"base_delay"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Burst          int           `yaml:"burst"`
}

// DefaultRetryConfig matches the vendor's tolerated request profile.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		RequestsPerSec: 5,
		Burst:          10,
	}
}

// RetryProvider wraps an upstream provider with exponential backoff,
// request pacing, and a circuit breaker. Only transport-class failures
// are retried; INVALID_SYMBOL surfaces immediately.
type RetryProvider struct {
	upstream Provider
	cfg      RetryConfig
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

// NewRetryProvider builds the resilience layer around upstream.
func NewRetryProvider(upstream Provider, cfg RetryConfig) *RetryProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "market-data",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Validation failures are the caller's problem, not the
		// vendor's; only transport-class errors count against the
		// breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("data provider circuit breaker state change")
		},
	})

	return &RetryProvider{
		upstream: upstream,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker:  breaker,
	}
}

// Fetch retries transport failures with exponential backoff and jitter.
func (p *RetryProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.cfg.BaseDelay << uint(attempt-1)
			delay += time.Duration(rand.Int63n(int64(delay) / 2))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch,
					"fetch cancelled during backoff", ctx.Err())
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch,
				"fetch cancelled while pacing", err)
		}

		result, err := p.breaker.Execute(func() (interface{}, error) {
			return p.upstream.Fetch(ctx, symbol, period)
		})
		if err == nil {
			return result.(domain.BarSeries), nil
		}
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			lastErr = domain.WrapError(domain.ErrDataFetch, "data provider circuit open", err)
			continue
		}
		if !domain.IsRetryable(err) {
			return domain.BarSeries{}, err
		}
		lastErr = err
		log.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempt+1).
			Msg("retrying data fetch")
	}
	return domain.BarSeries{}, lastErr
}
