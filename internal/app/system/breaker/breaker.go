// Package breaker builds the circuit breakers that guard outbound calls
// (SMTP, FCM) so a failing provider is skipped quickly instead of stalling
// every workflow that sends.
package breaker

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Config tunes a breaker. Zero values take the defaults below.
type Config struct {
	Name             string
	MaxRequests      uint32        // allowed in half-open state (default 1)
	Interval         time.Duration // closed-state count reset (default 1m)
	Timeout          time.Duration // open -> half-open (default 30s)
	FailureThreshold uint32        // consecutive failures that open the circuit (default 5)
	// IsSuccessful classifies errors that should not count as provider
	// failures, such as a single bad device token.
	IsSuccessful func(err error) bool
}

// New returns a breaker that logs its state transitions.
func New(cfg Config, log *zap.Logger) *gobreaker.CircuitBreaker[struct{}] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: cfg.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Do runs fn through cb.
func Do(cb *gobreaker.CircuitBreaker[struct{}], fn func() error) error {
	_, err := cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
