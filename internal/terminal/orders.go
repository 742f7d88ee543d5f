package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/seating"
	"github.com/xenking/pos-terminal/internal/domain/transaction"
)

// PendingOrders lists the orders awaiting completion.
func (t *Terminal) PendingOrders() []order.Order {
	return t.catalog.Snapshot().PendingOrders
}

// LoadPendingOrder puts a pending order into the cart so it can be paid.
// Its lines, floor and table replace the order in progress.
func (t *Terminal) LoadPendingOrder(orderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	snap := t.catalog.Snapshot()
	o, ok := snap.PendingOrder(orderID)
	if !ok {
		return t.fail(errors.Wrapf(ErrOrderNotFound, "order %s", orderID))
	}

	lines := make([]cart.Line, 0, len(o.Items))
	for _, it := range o.Items {
		p := product.Product{
			ID:            it.ProductID,
			Name:          it.ProductName,
			Price:         it.UnitPrice(),
			StockQuantity: it.Quantity,
		}
		if live, err := snap.Catalog.Get(it.ProductID); err == nil {
			p.Category = live.Category
			p.StockQuantity = max(live.StockQuantity, it.Quantity)
		}
		lines = append(lines, cart.Line{Product: p, Quantity: it.Quantity})
	}
	t.cart.Replace(lines)

	if o.WalkIn() {
		t.sel.Restore(nil, nil)
	} else {
		f, ok := floor.FindFloor(snap.Floors, o.FloorID)
		if !ok {
			f = floor.Floor{ID: o.FloorID, Name: o.FloorName}
		}
		tb, ok := floor.FindTable(snap.Tables, o.TableID)
		if !ok {
			tb = floor.Table{ID: o.TableID, Name: o.TableName, FloorID: o.FloorID}
		}
		t.sel.Restore(&f, &tb)
	}
	t.processing = o.ID

	t.notify.Info(fmt.Sprintf("Loaded order for %s / %s. Please process payment.",
		orLabel(o.FloorName), orLabel(o.TableName)))
	return nil
}

// MarkServed moves a pending order to served.
func (t *Terminal) MarkServed(ctx context.Context, orderID string) error {
	return t.changeStatus(ctx, orderID, t.orders.MarkServed, "Order %s marked as served.")
}

// CancelOrder cancels a pending or served order.
func (t *Terminal) CancelOrder(ctx context.Context, orderID string) error {
	return t.changeStatus(ctx, orderID, t.orders.Cancel, "Order %s cancelled.")
}

func (t *Terminal) changeStatus(
	ctx context.Context,
	orderID string,
	change func(context.Context, *auth.User, *order.Order) error,
	done string,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user()
	if err != nil {
		return t.fail(err)
	}
	o, ok := t.catalog.Snapshot().PendingOrder(orderID)
	if !ok {
		return t.fail(errors.Wrapf(ErrOrderNotFound, "order %s", orderID))
	}
	if err := change(ctx, u, &o); err != nil {
		return t.fail(err)
	}
	t.notify.Success(fmt.Sprintf(done, orderID))
	t.resync(ctx)
	if t.processing == orderID {
		if _, still := t.catalog.Snapshot().PendingOrder(orderID); !still {
			t.resetOrder()
		}
	}
	return nil
}

// CompleteOrder takes payment for a pending order straight from the pending
// list, without loading it into the cart.
func (t *Terminal) CompleteOrder(ctx context.Context, orderID string, in PaymentInput) (*order.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user()
	if err != nil {
		return nil, t.fail(err)
	}
	o, ok := t.catalog.Snapshot().PendingOrder(orderID)
	if !ok {
		return nil, t.fail(errors.Wrapf(ErrOrderNotFound, "order %s", orderID))
	}
	pt, err := checkout.ParsePaymentType(in.PaymentType)
	if err != nil {
		return nil, t.fail(err)
	}
	f, err := order.Quote(&o, in.DiscountPercentage, pt, in.AmountPaid)
	if err != nil {
		return nil, t.fail(err)
	}
	if f.Underpaid() {
		return nil, t.fail(order.ErrUnderpaid)
	}
	r, err := t.orders.Complete(ctx, u, &o, f)
	if err != nil {
		return nil, t.fail(err)
	}
	t.completed.Add(ctx, 1)
	t.lastReceipt = r
	if t.processing == orderID {
		t.resetOrder()
	}
	t.notify.Success(fmt.Sprintf("Order %s completed.", orderID))
	t.resync(ctx)
	return r, nil
}

// UpdateTableStatus flips a table between available, occupied and reserved.
func (t *Terminal) UpdateTableStatus(ctx context.Context, tableID, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user()
	if err != nil {
		return t.fail(err)
	}
	if err := auth.Require(u, auth.PermManageTables); err != nil {
		return t.fail(err)
	}
	st, err := floor.ParseTableStatus(status)
	if err != nil {
		return t.fail(err)
	}
	if _, ok := floor.FindTable(t.catalog.Snapshot().Tables, tableID); !ok {
		return t.fail(errors.Wrapf(ErrTableNotFound, "table %s", tableID))
	}
	if err := t.tables.UpdateTableStatus(ctx, tableID, st); err != nil {
		return t.fail(errors.Wrapf(err, "update table %s", tableID))
	}
	t.notify.Success(fmt.Sprintf("Table %s status updated to %s.", tableID, st))
	t.resync(ctx)
	return nil
}

// Report is the filtered transaction history and its totals.
type Report struct {
	Transactions []order.Transaction
	Summary      transaction.Summary
}

// Transactions filters the transaction history.
func (t *Terminal) Transactions(f transaction.Filter) (Report, error) {
	u, err := t.currentUser()
	if err != nil {
		return Report{}, err
	}
	if err := auth.Require(u, auth.PermViewHistory); err != nil {
		return Report{}, err
	}
	txs := transaction.Apply(t.catalog.Snapshot().Transactions, f, t.now())
	return Report{Transactions: txs, Summary: transaction.Summarize(txs)}, nil
}

// Receipt finds a receipt by transaction or order ID: the last one issued by
// this terminal first, then the journal.
func (t *Terminal) Receipt(ctx context.Context, id string) (*order.Receipt, error) {
	t.mu.Lock()
	last := t.lastReceipt
	t.mu.Unlock()

	if last != nil && (last.TransactionID == id || last.OrderID == id) {
		return last, nil
	}
	if t.receipts == nil {
		return nil, errors.Wrapf(order.ErrReceiptNotFound, "receipt %s", id)
	}
	return t.receipts.Get(ctx, id)
}

// KitchenView is the kitchen display: tickets and the state of the last poll.
type KitchenView struct {
	Tickets   []kitchen.Ticket
	UpdatedAt time.Time
	LastError error
}

// Kitchen returns the current kitchen tickets.
func (t *Terminal) Kitchen() (KitchenView, error) {
	u, err := t.currentUser()
	if err != nil {
		return KitchenView{}, err
	}
	if err := auth.Require(u, auth.PermKitchen); err != nil {
		return KitchenView{}, err
	}
	updated, lastErr := t.kitchen.Status()
	return KitchenView{Tickets: t.kitchen.Tickets(), UpdatedAt: updated, LastError: lastErr}, nil
}

// AdvanceItem moves a kitchen item to status.
func (t *Terminal) AdvanceItem(ctx context.Context, itemID, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user()
	if err != nil {
		return t.fail(err)
	}
	st, err := order.ParseItemStatus(status)
	if err != nil {
		return t.fail(err)
	}
	if err := t.kitchen.Advance(ctx, u, itemID, st); err != nil {
		return t.fail(err)
	}
	t.notify.Success(fmt.Sprintf("Item status updated to %s.", st))
	return nil
}

func (t *Terminal) currentUser() (*auth.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.user()
}

func orLabel(name string) string {
	if name == "" {
		return seating.WalkInLabel
	}
	return name
}
