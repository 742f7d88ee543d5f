// Package notify holds short-lived messages shown to the terminal operator.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Level is the kind of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Notification is a message with its expiry.
type Notification struct {
	ID        string
	Level     Level
	Text      string
	PostedAt  time.Time
	ExpiresAt time.Time
}

// Center stores notifications until they expire. It is safe for concurrent
// use.
type Center struct {
	lg  *zap.Logger
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items []Notification
}

// Option configures a Center.
type Option func(*Center)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// New creates a Center logging every post to lg.
func New(lg *zap.Logger, opts ...Option) *Center {
	c := &Center{lg: lg, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Post records a notification and returns it.
func (c *Center) Post(level Level, text string) Notification {
	at := c.now()
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Text:      text,
		PostedAt:  at,
		ExpiresAt: at.Add(c.ttl),
	}

	c.mu.Lock()
	c.items = append(prune(c.items, at), n)
	c.mu.Unlock()

	if ce := c.lg.Check(level.zapLevel(), "notification"); ce != nil {
		ce.Write(zap.String("level", string(level)), zap.String("text", text))
	}
	return n
}

func (c *Center) Info(text string) Notification    { return c.Post(LevelInfo, text) }
func (c *Center) Success(text string) Notification { return c.Post(LevelSuccess, text) }
func (c *Center) Warning(text string) Notification { return c.Post(LevelWarning, text) }
func (c *Center) Error(text string) Notification   { return c.Post(LevelError, text) }

// Active returns the unexpired notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = prune(c.items, c.now())
	return append([]Notification(nil), c.items...)
}

// Dismiss removes a notification before it expires.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func prune(items []Notification, at time.Time) []Notification {
	live := items[:0]
	for _, n := range items {
		if at.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	return live
}
