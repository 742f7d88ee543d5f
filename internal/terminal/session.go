package terminal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/floor"
)

// State is a read-only view of the terminal.
type State struct {
	User              *auth.User
	HomeView          string
	Lines             []cart.Line
	Subtotal          decimal.Decimal
	Floor             *floor.Floor
	Table             *floor.Table
	WalkIn            bool
	Label             string
	ProcessingOrderID string
	Confirmation      *Confirmation
}

// State returns the current terminal state.
func (t *Terminal) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Terminal) stateLocked() State {
	s := State{
		User:              t.sessions.Current(),
		Lines:             t.cart.Lines(),
		Subtotal:          t.cart.Total(),
		WalkIn:            t.sel.WalkIn(),
		Label:             t.sel.Label(),
		ProcessingOrderID: t.processing,
		Confirmation:      t.confirmation,
	}
	if s.User != nil {
		s.HomeView = s.User.Role.HomeView()
	}
	if f, ok := t.sel.Floor(); ok {
		s.Floor = &f
	}
	if tb, ok := t.sel.Table(); ok {
		s.Table = &tb
	}
	return s
}

// Login signs a user in. A chef starts the kitchen tracker.
func (t *Terminal) Login(ctx context.Context, username, pin string) (*auth.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.sessions.Login(ctx, username, pin)
	if err != nil {
		return nil, t.fail(err)
	}
	t.stopKitchenLocked()
	t.resetOrder()
	t.startKitchen(u)
	t.notify.Success(fmt.Sprintf("Welcome, %s!", u.Username))
	return u, nil
}

// Logout signs the user out and drops the in-progress order.
func (t *Terminal) Logout() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopKitchenLocked()
	t.resetOrder()
	t.lastReceipt = nil
	if err := t.sessions.Logout(); err != nil {
		return t.fail(err)
	}
	t.notify.Info("Logged out.")
	return nil
}

// startKitchen runs the kitchen tracker for a chef until logout or until the
// terminal stops.
func (t *Terminal) startKitchen(u *auth.User) {
	if t.kitchen == nil || t.stopKitchen != nil || !u.Role.Can(auth.PermKitchen) {
		return
	}
	ctx, cancel := context.WithCancel(t.base)
	t.stopKitchen = cancel
	go t.kitchen.Run(ctx)
}

func (t *Terminal) stopKitchenLocked() {
	if t.stopKitchen != nil {
		t.stopKitchen()
		t.stopKitchen = nil
	}
}
