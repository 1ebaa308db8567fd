// Package llm holds the text generation backends and the circuit breaker
// placed in front of them.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// BreakerConfig tunes the breaker. Zero values take the defaults.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Guarded wraps a Generator with a circuit breaker and records metrics
// under the backend label.
type Guarded struct {
	backend string
	next    textgen.Generator
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewGuarded wraps next.
func NewGuarded(backend string, next textgen.Generator, cfg BreakerConfig, logger *slog.Logger) *Guarded {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 5
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	log := logger.With("component", "llm.breaker", "backend", backend)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        backend,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// A caller giving up says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("generation breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return &Guarded{backend: backend, next: next, cb: cb, logger: log}
}

// Generate implements textgen.Generator.
func (g *Guarded) Generate(ctx context.Context, req textgen.Request) (textgen.Response, error) {
	start := time.Now()
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Generate(ctx, req)
	})
	metrics.GenerationDuration.WithLabelValues(g.backend).Observe(time.Since(start).Seconds())
	metrics.GenerationRequests.WithLabelValues(g.backend, outcome(err)).Inc()
	if err != nil {
		return textgen.Response{}, err
	}
	return out.(textgen.Response), nil
}

// State reports the breaker state, e.g. for health checks.
func (g *Guarded) State() string {
	return g.cb.State().String()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

var _ textgen.Generator = (*Guarded)(nil)
