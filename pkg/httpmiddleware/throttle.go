package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ThrottleConfig limits how often matching requests are accepted per client.
type ThrottleConfig struct {
	// Max requests per sliding Window.
	Max    int
	Window time.Duration
	// Match selects the throttled requests. Nil throttles every request.
	Match func(*http.Request) bool
	// Key identifies the client. Nil uses the remote IP.
	Key func(*http.Request) string
	// Message is the 429 body text.
	Message string
}

// window counts requests in the current and previous fixed windows. The
// previous count is weighted by its overlap with the sliding window.
type window struct {
	prevCount float64
	currCount float64
	currStart time.Time
}

type throttle struct {
	cfg ThrottleConfig

	mu      sync.Mutex
	clients map[string]*window
}

func newThrottle(cfg ThrottleConfig) *throttle {
	if cfg.Key == nil {
		cfg.Key = remoteIP
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests. Please wait and try again."
	}
	return &throttle{cfg: cfg, clients: make(map[string]*window)}
}

// allow records a request for key and reports whether it is within the
// limit, along with when the current window resets.
func (t *throttle) allow(key string, now time.Time) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := t.cfg.Window
	w, ok := t.clients[key]
	if !ok {
		w = &window{currStart: now.Truncate(size)}
		t.clients[key] = w
	}
	if elapsed := now.Sub(w.currStart); elapsed >= size {
		if elapsed >= 2*size {
			w.prevCount = 0
		} else {
			w.prevCount = w.currCount
		}
		w.currCount = 0
		w.currStart = now.Truncate(size)
	}

	overlap := 1 - now.Sub(w.currStart).Seconds()/size.Seconds()
	effective := w.prevCount*math.Max(overlap, 0) + w.currCount
	resetAt := w.currStart.Add(size)
	if effective >= float64(t.cfg.Max) {
		return resetAt, false
	}
	w.currCount++
	return resetAt, true
}

// sweep drops clients idle for two windows.
func (t *throttle) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, w := range t.clients {
		if now.Sub(w.currStart) >= 2*t.cfg.Window {
			delete(t.clients, key)
		}
	}
}

// Throttle rejects matching requests over the limit with 429 and a
// Retry-After header. Idle clients are swept until ctx is done.
func Throttle(ctx context.Context, cfg ThrottleConfig) Middleware {
	t := newThrottle(cfg)
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.sweep(now)
			}
		}
	}()
	return t.middleware(time.Now)
}

func (t *throttle) middleware(now func() time.Time) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t.cfg.Match != nil && !t.cfg.Match(r) {
				next.ServeHTTP(w, r)
				return
			}
			at := now()
			resetAt, ok := t.allow(t.cfg.Key(r), at)
			if !ok {
				wait := math.Ceil(math.Max(resetAt.Sub(at).Seconds(), 0))
				w.Header().Set("Retry-After", strconv.Itoa(int(wait)))
				writeMessage(w, http.StatusTooManyRequests, t.cfg.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
