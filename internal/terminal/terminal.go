// Package terminal holds the state of one POS device: the signed-in user,
// the cart being built, the floor and table it is for, and the order being
// completed. Every operation runs under a single lock, so the terminal
// behaves like one event loop regardless of how many HTTP requests arrive.
package terminal

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/catalog"
	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/seating"
	"github.com/xenking/pos-terminal/internal/notify"
)

// Sessions signs users in and out.
type Sessions interface {
	Restore() (*auth.User, error)
	Login(ctx context.Context, username, pin string) (*auth.User, error)
	Logout() error
	Current() *auth.User
}

// Catalog serves the cached backend lists.
type Catalog interface {
	Snapshot() *catalog.Snapshot
	Refresh(ctx context.Context) error
	PollPending(ctx context.Context, interval time.Duration)
}

// Orders drives orders through their lifecycle.
type Orders interface {
	Submit(ctx context.Context, u *auth.User, d order.Draft) (*order.Created, error)
	Complete(ctx context.Context, u *auth.User, o *order.Order, f checkout.Figures) (*order.Receipt, error)
	MarkServed(ctx context.Context, u *auth.User, o *order.Order) error
	Cancel(ctx context.Context, u *auth.User, o *order.Order) error
}

// Tables flips table occupancy.
type Tables interface {
	UpdateTableStatus(ctx context.Context, tableID string, status floor.TableStatus) error
}

// Kitchen tracks pending kitchen items.
type Kitchen interface {
	Run(ctx context.Context)
	Tickets() []kitchen.Ticket
	Status() (time.Time, error)
	Advance(ctx context.Context, u *auth.User, itemID string, status order.ItemStatus) error
}

// Receipts looks up archived receipts.
type Receipts interface {
	Get(ctx context.Context, transactionID string) (*order.Receipt, error)
}

// Compile-time checks ensuring the concrete collaborators fit.
var (
	_ Catalog = (*catalog.Cache)(nil)
	_ Orders  = (*order.Service)(nil)
	_ Kitchen = (*kitchen.Tracker)(nil)
)

// Options are the collaborators of a Terminal. Receipts and MeterProvider
// may be nil.
type Options struct {
	Sessions        Sessions
	Catalog         Catalog
	Orders          Orders
	Tables          Tables
	Kitchen         Kitchen
	Receipts        Receipts
	Notify          *notify.Center
	Logger          *zap.Logger
	MeterProvider   metric.MeterProvider
	PendingInterval time.Duration
}

// Confirmation is a submitted order the user has not acknowledged yet. The
// cart is kept until it is confirmed.
type Confirmation struct {
	OrderID   string
	Message   string
	Lines     []cart.Line
	FloorName string
	TableName string
}

// Terminal is the application state of one POS device.
type Terminal struct {
	sessions Sessions
	catalog  Catalog
	orders   Orders
	tables   Tables
	kitchen  Kitchen
	receipts Receipts
	notify   *notify.Center
	lg       *zap.Logger
	interval time.Duration
	now      func() time.Time

	submitted metric.Int64Counter
	completed metric.Int64Counter
	rejected  metric.Int64Counter

	mu           sync.Mutex
	base         context.Context
	stopKitchen  context.CancelFunc
	cart         *cart.Cart
	sel          seating.Selection
	processing   string
	confirmation *Confirmation
	lastReceipt  *order.Receipt
}

// New creates a Terminal.
func New(opts Options) (*Terminal, error) {
	t := &Terminal{
		sessions: opts.Sessions,
		catalog:  opts.Catalog,
		orders:   opts.Orders,
		tables:   opts.Tables,
		kitchen:  opts.Kitchen,
		receipts: opts.Receipts,
		notify:   opts.Notify,
		lg:       opts.Logger,
		interval: opts.PendingInterval,
		now:      time.Now,
		base:     context.Background(),
		cart:     cart.New(),
	}
	if t.lg == nil {
		t.lg = zap.NewNop()
	}
	if t.notify == nil {
		t.notify = notify.New(t.lg)
	}
	if t.interval <= 0 {
		t.interval = catalog.DefaultPendingInterval
	}
	if err := t.initMetrics(opts.MeterProvider); err != nil {
		return nil, errors.Wrap(err, "init metrics")
	}
	return t, nil
}

// Run restores the saved session, loads the catalog and polls pending orders
// until ctx is done. The kitchen tracker of a chef session is bound to ctx.
func (t *Terminal) Run(ctx context.Context) error {
	t.mu.Lock()
	t.base = ctx
	u, err := t.sessions.Restore()
	if err != nil {
		t.lg.Warn("restore session", zap.Error(err))
	}
	if u != nil {
		t.startKitchen(u)
	}
	if err := t.catalog.Refresh(ctx); err != nil && ctx.Err() == nil {
		t.lg.Warn("initial catalog load failed", zap.Error(err))
		t.notify.Error("Failed to load data from the backend.")
	}
	t.mu.Unlock()

	t.catalog.PollPending(ctx, t.interval)

	t.mu.Lock()
	t.stopKitchenLocked()
	t.mu.Unlock()
	return nil
}

// Notifications lists the live notifications.
func (t *Terminal) Notifications() []notify.Notification {
	return t.notify.Active()
}

// Dismiss removes a notification.
func (t *Terminal) Dismiss(id string) bool {
	return t.notify.Dismiss(id)
}

// fail posts the notification matching err and returns err.
func (t *Terminal) fail(err error) error {
	msg := Message(err)
	switch Classify(err) {
	case KindValidation, KindForbidden:
		t.notify.Warning(msg)
	case KindBackend:
		t.notify.Error(msg)
	default:
		t.lg.Error("terminal operation failed", zap.Error(err))
		t.notify.Error(msg)
	}
	return err
}

// resync re-fetches every backend list after a mutation. A failure keeps the
// previous snapshot.
func (t *Terminal) resync(ctx context.Context) {
	if err := t.catalog.Refresh(ctx); err != nil {
		t.lg.Warn("catalog resync failed", zap.Error(err))
	}
}

// user returns the signed-in user or ErrNotAuthenticated.
func (t *Terminal) user() (*auth.User, error) {
	u := t.sessions.Current()
	if u == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return u, nil
}

// resetOrder clears the cart, the selection and every order marker.
func (t *Terminal) resetOrder() {
	t.cart.Reset()
	t.sel.Reset()
	t.processing = ""
	t.confirmation = nil
}
