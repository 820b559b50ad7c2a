// Package breaker wraps calls to flaky external services with gobreaker.
package breaker

import (
	"github.com/sony/gobreaker/v2"

	"wazivo/internal/config"
	"wazivo/internal/errors"
)

// Breaker guards calls returning T. A nil *Breaker is valid and simply runs
// the wrapped function, which is what a disabled breaker looks like.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// Option adjusts breaker settings
type Option func(*gobreaker.Settings)

// WithSuccessFilter marks errors for which isSuccessful returns true as
// non-failures, so caller mistakes do not trip the breaker.
func WithSuccessFilter(isSuccessful func(err error) bool) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = isSuccessful
	}
}

// New creates a circuit breaker for the named dependency, or nil when the
// configuration disables it.
func New[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger, opts ...Option) *Breaker[T] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn under circuit breaker protection
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// IsOpenError reports whether err was produced by an open or saturated breaker
func IsOpenError(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}

// GetStats returns circuit breaker statistics
func (b *Breaker[T]) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *Breaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
