package kitchen

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/order"
)

// DefaultInterval is how often the kitchen display refreshes.
const DefaultInterval = 15 * time.Second

// ErrItemNotFound is returned when advancing an item that is not in the
// current snapshot.
var ErrItemNotFound = errors.New("kitchen item not found")

// Tracker keeps the latest snapshot of pending kitchen items. Results of a
// fetch that finishes after its context was cancelled, or after a newer
// fetch was applied, are discarded.
type Tracker struct {
	src      Source
	lg       *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	seq     uint64
	applied uint64
	items   []Item
	tickets []Ticket
	updated time.Time
	lastErr error
}

// NewTracker creates a Tracker polling src every interval. A non-positive
// interval uses DefaultInterval.
func NewTracker(src Source, lg *zap.Logger, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{src: src, lg: lg, interval: interval}
}

// Run refreshes immediately and then on every tick until ctx is done.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		if err := t.Refresh(ctx); err != nil && ctx.Err() == nil {
			t.lg.Warn("kitchen refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh fetches pending items and replaces the snapshot.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	items, err := t.src.PendingItems(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if seq < t.applied {
		return nil
	}
	if err != nil {
		t.lastErr = err
		return errors.Wrap(err, "fetch kitchen items")
	}
	t.applied = seq
	t.items = items
	t.tickets = Group(items)
	t.updated = time.Now()
	t.lastErr = nil
	return nil
}

// Tickets returns the current tickets.
func (t *Tracker) Tickets() []Ticket {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Ticket(nil), t.tickets...)
}

// Status reports when the snapshot was last replaced and the error of the
// latest failed fetch, if any.
func (t *Tracker) Status() (time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updated, t.lastErr
}

// Advance moves an item to status after checking the transition against the
// snapshot, then refreshes.
func (t *Tracker) Advance(ctx context.Context, u *auth.User, itemID string, status order.ItemStatus) error {
	if err := auth.Require(u, auth.PermKitchen); err != nil {
		return err
	}

	current, ok := t.find(itemID)
	if !ok {
		return errors.Wrapf(ErrItemNotFound, "item %s", itemID)
	}
	if err := order.CheckItemTransition(current.Status, status); err != nil {
		return err
	}
	if err := t.src.UpdateItemStatus(ctx, itemID, status); err != nil {
		return errors.Wrapf(err, "update item %s", itemID)
	}
	t.lg.Info("kitchen item updated",
		zap.String("item_id", itemID),
		zap.String("order_id", current.OrderID),
		zap.String("status", string(status)),
	)
	return t.Refresh(ctx)
}

func (t *Tracker) find(itemID string) (Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, it := range t.items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return Item{}, false
}
