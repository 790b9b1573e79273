// Package circuitbreaker wraps github.com/sony/gobreaker for the service's
// two failure-prone dependencies: the model APIs the summarization engines
// call and the accounts database. A tripped breaker sheds load immediately
// instead of letting every request ride out its timeout.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes one breaker.
type Config struct {
	// Name appears in logs when the breaker changes state.
	Name string

	// MaxRequests is how many probe requests may pass in half-open state.
	MaxRequests uint32

	// Interval resets the closed-state failure counts.
	Interval time.Duration

	// Timeout is how long an open breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker,
	// e.g. 0.6 for 60%.
	FailureThreshold float64

	// MinRequests is the minimum sample size before the ratio is applied.
	MinRequests uint32
}

// DefaultConfig is the baseline used by breakers without special tuning.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClaudeAPIConfig guards the Anthropic backend.
func ClaudeAPIConfig() Config {
	return DefaultConfig("claude-api")
}

// OpenAIAPIConfig guards the OpenAI backend.
func OpenAIAPIConfig() Config {
	return DefaultConfig("openai-api")
}

// CircuitBreaker wraps a gobreaker instance.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State transitions are logged at warn level
// so an opened breaker is visible without metrics.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the breaker. With the circuit open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is rejecting calls.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
