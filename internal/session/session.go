package session

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
)

// Manager tracks the current user, logging in through an Authenticator and
// persisting the result in a Store.
type Manager struct {
	auth  auth.Authenticator
	store Store
	lg    *zap.Logger

	mu      sync.RWMutex
	current *auth.User
}

// NewManager creates a Manager.
func NewManager(a auth.Authenticator, store Store, lg *zap.Logger) *Manager {
	return &Manager{auth: a, store: store, lg: lg}
}

// Restore loads the persisted user, if any. A corrupt record is removed.
func (m *Manager) Restore() (*auth.User, error) {
	u, err := m.store.Load()
	if err != nil {
		m.lg.Warn("discarding stored session", zap.Error(err))
		if cerr := m.store.Clear(); cerr != nil {
			return nil, errors.Wrap(cerr, "clear session")
		}
		return nil, nil
	}

	m.mu.Lock()
	m.current = u
	m.mu.Unlock()
	if u != nil {
		m.lg.Info("session restored", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	}
	return u, nil
}

// Login verifies credentials and makes the user current.
func (m *Manager) Login(ctx context.Context, username, pin string) (*auth.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || pin == "" {
		return nil, auth.ErrInvalidCredentials
	}

	u, err := m.auth.Login(ctx, username, pin)
	if err != nil {
		return nil, errors.Wrap(err, "login")
	}
	if err := m.store.Save(u); err != nil {
		return nil, errors.Wrap(err, "save session")
	}

	m.mu.Lock()
	m.current = u
	m.mu.Unlock()
	m.lg.Info("logged in", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// Logout forgets the current user.
func (m *Manager) Logout() error {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return errors.Wrap(err, "clear session")
	}
	if prev != nil {
		m.lg.Info("logged out", zap.String("username", prev.Username))
	}
	return nil
}

// Current returns the logged-in user or nil.
func (m *Manager) Current() *auth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
