// Package tonledger talks to the TON chain: toncenter for inbound transfers and
// the wallet service for outbound payments. Both sit behind circuit breakers.
package tonledger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes when a breaker opens and how long it stays open.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	MinRequests         uint32
	FailureRatio        float64
	Timeout             time.Duration
	Interval            time.Duration
}

// DefaultBreakerConfig opens after 5 straight failures or a 60% failure rate over 10 calls.
var DefaultBreakerConfig = BreakerConfig{
	ConsecutiveFailures: 5,
	MinRequests:         10,
	FailureRatio:        0.6,
	Timeout:             30 * time.Second,
	Interval:            time.Minute,
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// execute runs fn through breaker and maps every failure to ErrExternalUnavailable.
func execute[T any](breaker *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s circuit open: %v", apperrors.ErrExternalUnavailable, breaker.Name(), err)
		}
		if errors.Is(err, apperrors.ErrExternalUnavailable) {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %v", apperrors.ErrExternalUnavailable, err)
	}
	return result.(T), nil
}
