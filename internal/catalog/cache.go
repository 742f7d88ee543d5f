// Package catalog caches the backend data the terminal reads: products,
// floors, tables, pending orders and transactions. Every refresh re-fetches
// whole lists and replaces the snapshot.
package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
)

// DefaultPendingInterval is how often pending orders are polled.
const DefaultPendingInterval = 5 * time.Second

// Backend is the read side of the REST API.
type Backend interface {
	Products(ctx context.Context) ([]product.Product, error)
	Floors(ctx context.Context) ([]floor.Floor, error)
	Tables(ctx context.Context) ([]floor.Table, error)
	PendingOrders(ctx context.Context) ([]order.Order, error)
	Transactions(ctx context.Context) ([]order.Transaction, error)
}

// Snapshot is an immutable view of backend data. Callers must not modify
// its slices.
type Snapshot struct {
	Catalog       *product.Catalog
	Floors        []floor.Floor
	Tables        []floor.Table
	PendingOrders []order.Order
	Transactions  []order.Transaction
	FetchedAt     time.Time
}

// PendingOrder finds a pending order by ID.
func (s *Snapshot) PendingOrder(id string) (order.Order, bool) {
	for _, o := range s.PendingOrders {
		if o.ID == id {
			return o, true
		}
	}
	return order.Order{}, false
}

// Cache holds the latest Snapshot. A full refresh started before the last
// applied one is discarded. A pending-orders list fetched before the newest
// applied one is discarded, and an otherwise current full refresh keeps the
// newer list.
type Cache struct {
	src Backend
	lg  *zap.Logger

	snap atomic.Pointer[Snapshot]

	mu         sync.Mutex
	seq        uint64
	fullSeq    uint64 // last applied full refresh
	pendingSeq uint64 // fetch that produced the installed pending orders
}

// New creates a Cache with an empty snapshot.
func New(src Backend, lg *zap.Logger) *Cache {
	c := &Cache{src: src, lg: lg}
	c.snap.Store(&Snapshot{Catalog: product.NewCatalog(nil)})
	return c
}

// Snapshot returns the current snapshot. It is never nil.
func (c *Cache) Snapshot() *Snapshot {
	return c.snap.Load()
}

func (c *Cache) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// applyFull installs next unless a later full refresh was already applied.
// The installed pending orders survive when they came from a later fetch.
func (c *Cache) applyFull(ctx context.Context, seq uint64, next *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || seq < c.fullSeq {
		return false
	}
	c.fullSeq = seq
	if seq < c.pendingSeq {
		next.PendingOrders = c.snap.Load().PendingOrders
	} else {
		c.pendingSeq = seq
	}
	c.snap.Store(next)
	return true
}

// applyPending replaces the pending orders unless a later fetch already
// installed them.
func (c *Cache) applyPending(ctx context.Context, seq uint64, pending []order.Order) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || seq < c.pendingSeq {
		return false
	}
	c.pendingSeq = seq
	next := *c.snap.Load()
	next.PendingOrders = pending
	next.FetchedAt = time.Now()
	c.snap.Store(&next)
	return true
}

// Refresh re-fetches all lists concurrently. The snapshot is replaced only if
// every fetch succeeds.
func (c *Cache) Refresh(ctx context.Context) error {
	seq := c.begin()

	var (
		products     []product.Product
		floors       []floor.Floor
		tables       []floor.Table
		pending      []order.Order
		transactions []order.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = c.src.Products(gctx)
		if err != nil {
			return errors.Wrap(err, "products")
		}
		return nil
	})
	g.Go(func() (err error) {
		floors, err = c.src.Floors(gctx)
		if err != nil {
			return errors.Wrap(err, "floors")
		}
		return nil
	})
	g.Go(func() (err error) {
		tables, err = c.src.Tables(gctx)
		if err != nil {
			return errors.Wrap(err, "tables")
		}
		return nil
	})
	g.Go(func() (err error) {
		pending, err = c.src.PendingOrders(gctx)
		if err != nil {
			return errors.Wrap(err, "pending orders")
		}
		return nil
	})
	g.Go(func() (err error) {
		transactions, err = c.src.Transactions(gctx)
		if err != nil {
			return errors.Wrap(err, "transactions")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "refresh catalog")
	}

	next := &Snapshot{
		Catalog:       product.NewCatalog(products),
		Floors:        floors,
		Tables:        tables,
		PendingOrders: pending,
		Transactions:  transactions,
		FetchedAt:     time.Now(),
	}
	if !c.applyFull(ctx, seq, next) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.lg.Debug("stale catalog refresh discarded", zap.Uint64("seq", seq))
		return nil
	}
	c.lg.Debug("catalog refreshed",
		zap.Int("products", len(products)),
		zap.Int("tables", len(tables)),
		zap.Int("pending_orders", len(pending)),
	)
	return nil
}

// RefreshPending re-fetches only the pending orders.
func (c *Cache) RefreshPending(ctx context.Context) error {
	seq := c.begin()

	pending, err := c.src.PendingOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "refresh pending orders")
	}
	if !c.applyPending(ctx, seq, pending) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.lg.Debug("stale pending orders discarded", zap.Uint64("seq", seq))
	}
	return nil
}

// PollPending refreshes pending orders on every tick until ctx is done.
func (c *Cache) PollPending(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPendingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RefreshPending(ctx); err != nil && ctx.Err() == nil {
				c.lg.Warn("pending orders refresh failed", zap.Error(err))
			}
		}
	}
}
