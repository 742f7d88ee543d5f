// Package health serves the terminal's liveness and readiness probes.
//
// Each registered check runs in its own goroutine at a fixed interval. A check
// must fail failureThreshold times in a row before it is reported unhealthy,
// and succeed successThreshold times in a row before it recovers.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc reports nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Default thresholds of a check.
const (
	DefaultFailureThreshold = 3
	DefaultSuccessThreshold = 1
)

// Check describes one probe.
type Check struct {
	Name    string
	Timeout time.Duration
	Func    CheckFunc

	// Zero means the defaults.
	FailureThreshold int
	SuccessThreshold int
}

// probe is a registered Check. run is called from a single goroutine, so the
// counters need no locking. healthy and lastErr are read by HTTP handlers.
type probe struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

func newProbe(c Check) *probe {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = DefaultSuccessThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	p := &probe{Check: c}
	// Healthy until proven otherwise.
	p.healthy.Store(true)
	return p
}

func (p *probe) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := p.Func(ctx)
	p.lastErr.Store(&err)

	if err != nil {
		p.consecutiveOK = 0
		p.consecutiveFails++
		if p.consecutiveFails >= p.FailureThreshold {
			p.healthy.Store(false)
		}
		return
	}
	p.consecutiveFails = 0
	p.consecutiveOK++
	if p.consecutiveOK >= p.SuccessThreshold {
		p.healthy.Store(true)
	}
}

func (p *probe) failure() string {
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error()
	}
	return "check is unhealthy"
}

// Health tracks liveness and readiness checks.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that tells whether the process works at
// all.
func (h *Health) AddLivenessCheck(c Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(c))
}

// AddReadinessCheck registers a check that tells whether the terminal can
// serve the presentation layer, such as backend or database reachability.
func (h *Health) AddReadinessCheck(c Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(c))
}

// Start runs every registered check once immediately and then every
// interval, until Stop or ctx is done. Register checks before Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go loop(ctx, p, interval)
	}
}

func loop(ctx context.Context, p *probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady marks the terminal ready after startup, or not ready during
// shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the terminal is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.readiness {
		if !p.healthy.Load() {
			return false
		}
	}
	return true
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} or 503 with the failing
// checks.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := collectFailures(h.liveness)
	h.mu.RUnlock()
	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz. It fails while the terminal is not marked
// ready.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := collectFailures(h.readiness)
	h.mu.RUnlock()
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func collectFailures(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if !p.healthy.Load() {
			failures[p.Name] = p.failure()
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(failures[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
