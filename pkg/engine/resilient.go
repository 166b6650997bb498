package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/hcc-raf-server/internal/domain"
)

// BreakerConfig represents circuit breaker configuration
type BreakerConfig struct {
	MaxRequests  uint32        `json:"max_requests"`
	Interval     time.Duration `json:"interval"`
	Timeout      time.Duration `json:"timeout"`
	MinRequests  uint32        `json:"min_requests"`
	FailureRatio float64       `json:"failure_ratio"`
}

// ResilientClient wraps an engine with a circuit breaker. Inputs the engine rejects
// do not count as failures, so a burst of bad requests cannot open the circuit.
type ResilientClient struct {
	engine  domain.RiskEngine
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientClient creates a circuit-breaking engine wrapper
func NewResilientClient(engine domain.RiskEngine, config BreakerConfig, logger *logrus.Logger) *ResilientClient {
	if config.MaxRequests == 0 {
		config.MaxRequests = 5
	}
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MinRequests == 0 {
		config.MinRequests = 3
	}
	if config.FailureRatio == 0 {
		config.FailureRatio = 0.6
	}

	r := &ResilientClient{engine: engine, logger: logger}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "risk-engine",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= config.MinRequests && failureRatio >= config.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker changed state")
		},
		IsSuccessful: isSuccessful,
	})
	return r
}

func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	// A caller that went away says nothing about the engine's health
	if errors.Is(err, context.Canceled) {
		return true
	}
	var engineErr *Error
	return errors.As(err, &engineErr) && engineErr.IsClientError()
}

// Calculate calls the engine through the circuit breaker
func (r *ResilientClient) Calculate(ctx context.Context, req *domain.EngineRequest) (*domain.RawModelResult, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.engine.Calculate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker %s", domain.ErrEngineUnavailable, r.breaker.State())
		}
		return nil, err
	}
	return result.(*domain.RawModelResult), nil
}

// State returns the current breaker state
func (r *ResilientClient) State() gobreaker.State {
	return r.breaker.State()
}

// Counts returns the breaker's counters for the current interval
func (r *ResilientClient) Counts() gobreaker.Counts {
	return r.breaker.Counts()
}
