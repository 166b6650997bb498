// Package health runs readiness checks against the components a calculation depends on.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// State is the health of one component or of the whole service
type State string

const (
	StateHealthy   State = "healthy"
	StateDegraded  State = "degraded"
	StateUnhealthy State = "unhealthy"
)

// CheckFunc checks one component. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Component is the result of one check
type Component struct {
	Name       string `json:"name"`
	Status     State  `json:"status"`
	Critical   bool   `json:"critical"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Report is the result of a full check run. Components are sorted by name.
type Report struct {
	Status     State       `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Components []Component `json:"components"`
}

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Checker runs registered checks concurrently, each bounded by the timeout.
// A failed critical check makes the service unhealthy; any other failure degrades it.
type Checker struct {
	timeout time.Duration
	logger  *logrus.Logger

	mu     sync.RWMutex
	checks []check
}

// NewChecker creates a checker. A zero timeout defaults to 5s.
func NewChecker(timeout time.Duration, logger *logrus.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{timeout: timeout, logger: logger}
}

// Register adds a check
func (c *Checker) Register(name string, critical bool, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check{name: name, critical: critical, fn: fn})
}

// Check runs every registered check and aggregates the result
func (c *Checker) Check(ctx context.Context) *Report {
	c.mu.RLock()
	checks := append([]check(nil), c.checks...)
	c.mu.RUnlock()

	components := make([]Component, len(checks))
	var wg sync.WaitGroup
	for i, chk := range checks {
		wg.Add(1)
		go func(i int, chk check) {
			defer wg.Done()
			components[i] = c.run(ctx, chk)
		}(i, chk)
	}
	wg.Wait()

	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	report := &Report{Status: StateHealthy, Timestamp: time.Now().UTC(), Components: components}
	for _, comp := range components {
		if comp.Status == StateHealthy {
			continue
		}
		if comp.Critical {
			report.Status = StateUnhealthy
		} else if report.Status == StateHealthy {
			report.Status = StateDegraded
		}
	}
	return report
}

func (c *Checker) run(ctx context.Context, chk check) Component {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := chk.fn(ctx)
	comp := Component{
		Name:       chk.name,
		Status:     StateHealthy,
		Critical:   chk.critical,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		comp.Status = StateUnhealthy
		comp.Error = err.Error()
		c.logger.WithFields(logrus.Fields{
			"component": chk.name,
			"critical":  chk.critical,
			"error":     err.Error(),
		}).Warn("Health check failed")
	}
	return comp
}

// BreakerCheck fails while the circuit breaker is open
func BreakerCheck(state func() gobreaker.State) CheckFunc {
	return func(context.Context) error {
		if s := state(); s == gobreaker.StateOpen {
			return gobreaker.ErrOpenState
		}
		return nil
	}
}
