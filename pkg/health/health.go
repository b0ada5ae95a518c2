// Package health serves liveness and readiness probes for long-running
// simulator processes. Readiness aggregates named checks: the step loop is
// advancing, memory is under a ceiling, and config reloads are not being
// rejected by an open circuit breaker.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-physim/pkg/logging"
)

// DefaultCheckTimeout bounds a readiness probe.
const DefaultCheckTimeout = 5 * time.Second

// Status values reported in probe bodies.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is one named readiness condition.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// Status is the aggregated readiness result.
type Status struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentStatus `json:"checks"`
}

// ComponentStatus is the result of a single check.
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker holds the registered checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]Check),
		timeout: DefaultCheckTimeout,
	}
}

// AddCheck registers check, replacing any check with the same name.
func (c *Checker) AddCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name()] = check
}

// RemoveCheck removes a check by name.
func (c *Checker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check. The result is healthy only if all pass.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentStatus, len(c.checks)),
	}
	for name, check := range c.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentStatus{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentStatus{Status: StatusHealthy}
	}
	return status
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 200 or 503.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	status := c.Run(ctx)
	code := http.StatusOK
	if status.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Handler mounts /health (liveness) and /ready (readiness).
func (c *Checker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", c.LivenessHandler)
	mux.HandleFunc("/ready", c.ReadinessHandler)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Serve runs the probe server on addr until ctx is cancelled, then shuts
// it down gracefully.
func Serve(ctx context.Context, addr string, c *Checker, logger *logging.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting health server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultCheckTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health server shutdown failed: %w", err)
	}
	return nil
}

// StepCheck fails when the simulation frame counter stops advancing for
// longer than maxStall.
type StepCheck struct {
	frames   func() uint64
	maxStall time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastFrame  uint64
	lastChange time.Time
}

// NewStepCheck creates a stall detector over frames. A nil now uses time.Now.
func NewStepCheck(frames func() uint64, maxStall time.Duration, now func() time.Time) *StepCheck {
	if now == nil {
		now = time.Now
	}
	return &StepCheck{
		frames:     frames,
		maxStall:   maxStall,
		now:        now,
		lastFrame:  frames(),
		lastChange: now(),
	}
}

// Name returns the name of this health check.
func (s *StepCheck) Name() string { return "simulation" }

// Check reports a stall if the frame has not moved within maxStall.
func (s *StepCheck) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, now := s.frames(), s.now()
	if frame != s.lastFrame {
		s.lastFrame, s.lastChange = frame, now
		return nil
	}
	if stalled := now.Sub(s.lastChange); stalled > s.maxStall {
		return fmt.Errorf("simulation stalled at frame %d for %s", frame, stalled.Round(time.Millisecond))
	}
	return nil
}

// MemoryCheck fails when heap usage exceeds a ceiling.
type MemoryCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryCheck creates a memory ceiling check. usage reports megabytes.
func NewMemoryCheck(maxMemoryMB int64, usage func() int64) *MemoryCheck {
	return &MemoryCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: usage,
	}
}

// Name returns the name of this health check.
func (m *MemoryCheck) Name() string { return "memory" }

// Check verifies that memory usage is within the ceiling.
func (m *MemoryCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// BreakerCheck fails while a circuit breaker is open.
type BreakerCheck struct {
	name  string
	state func() gobreaker.State
}

// NewBreakerCheck reports on the breaker whose state is returned by state.
func NewBreakerCheck(name string, state func() gobreaker.State) *BreakerCheck {
	return &BreakerCheck{name: name, state: state}
}

// Name returns the name of this health check.
func (b *BreakerCheck) Name() string { return b.name }

// Check verifies the breaker is not open.
func (b *BreakerCheck) Check(ctx context.Context) error {
	if st := b.state(); st == gobreaker.StateOpen {
		return fmt.Errorf("circuit breaker %s is %s", b.name, st)
	}
	return nil
}
