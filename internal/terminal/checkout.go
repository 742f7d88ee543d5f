package terminal

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/order"
)

// PaymentInput is what the user enters in the checkout form. The discount
// percentage is clamped to [0, 100].
type PaymentInput struct {
	DiscountPercentage decimal.Decimal
	PaymentType        string
	AmountPaid         decimal.Decimal
}

// Quote is the checkout figures and every reason checkout is disabled.
type Quote struct {
	Figures checkout.Figures
	Reasons []checkout.Reason
}

// Enabled reports whether checkout may proceed.
func (q Quote) Enabled() bool { return len(q.Reasons) == 0 }

// Outcome is the result of a checkout: a receipt when a loaded order was
// completed, or a confirmation when a new order was submitted.
type Outcome struct {
	Receipt      *order.Receipt
	Confirmation *Confirmation
}

// Quote computes the checkout figures for the current cart, or for the
// loaded pending order.
func (t *Terminal) Quote(in PaymentInput) (Quote, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, err := t.user()
	if err != nil {
		return Quote{}, err
	}
	f, _, err := t.figures(in)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Figures: f, Reasons: checkout.Evaluate(f, t.conditions(u))}, nil
}

// Checkout completes the loaded pending order, or submits the cart as a new
// pending order and opens a confirmation.
func (t *Terminal) Checkout(ctx context.Context, in PaymentInput) (*Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return nil, t.fail(err)
	}
	u, _ := t.user()
	f, loaded, err := t.figures(in)
	if err != nil {
		return nil, t.fail(err)
	}
	if reasons := checkout.Evaluate(f, t.conditions(u)); len(reasons) > 0 {
		t.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reasons[0]))))
		return nil, t.fail(&checkout.DisabledError{Reasons: reasons})
	}

	if loaded != nil {
		r, err := t.orders.Complete(ctx, u, loaded, f)
		if err != nil {
			return nil, t.fail(err)
		}
		t.completed.Add(ctx, 1)
		t.lastReceipt = r
		t.resetOrder()
		t.notify.Success("Order completed successfully!")
		t.resync(ctx)
		return &Outcome{Receipt: r}, nil
	}

	d, err := order.NewDraft(t.cart.Lines(), f, &t.sel, u, t.now())
	if err != nil {
		return nil, t.fail(err)
	}
	created, err := t.orders.Submit(ctx, u, d)
	if err != nil {
		return nil, t.fail(err)
	}
	t.submitted.Add(ctx, 1)
	msg := created.Message
	if msg == "" {
		msg = "Order submitted as pending!"
	}
	t.notify.Success(msg)
	t.confirmation = &Confirmation{
		OrderID:   created.OrderID,
		Message:   msg,
		Lines:     t.cart.Lines(),
		FloorName: d.FloorName,
		TableName: d.TableName,
	}
	t.resync(ctx)
	return &Outcome{Confirmation: t.confirmation}, nil
}

// ConfirmOrder acknowledges a submitted order and clears the cart.
func (t *Terminal) ConfirmOrder() (*Confirmation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.confirmation
	if c == nil {
		return nil, t.fail(ErrNoConfirmation)
	}
	t.resetOrder()
	t.lg.Debug("order confirmed", zap.String("order_id", c.OrderID))
	return c, nil
}

// DismissConfirmation closes the confirmation and keeps the cart.
func (t *Terminal) DismissConfirmation() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.confirmation == nil {
		return t.fail(ErrNoConfirmation)
	}
	t.confirmation = nil
	return nil
}

// figures computes checkout figures from the cart. The cart of a loaded
// order holds its lines at sale prices and may have been edited since, so
// the order's stored initial total is not used. The loaded order is
// returned too.
func (t *Terminal) figures(in PaymentInput) (checkout.Figures, *order.Order, error) {
	pt, err := checkout.ParsePaymentType(in.PaymentType)
	if err != nil {
		return checkout.Figures{}, nil, err
	}
	var loaded *order.Order
	if t.processing != "" {
		o, ok := t.catalog.Snapshot().PendingOrder(t.processing)
		if !ok {
			return checkout.Figures{}, nil, ErrOrderNotFound
		}
		loaded = &o
	}
	f, err := checkout.Calculate(checkout.Input{
		Subtotal:           t.cart.Total(),
		DiscountPercentage: checkout.ClampDiscount(in.DiscountPercentage),
		PaymentType:        pt,
		AmountPaid:         in.AmountPaid,
	})
	if err != nil {
		return checkout.Figures{}, nil, err
	}
	return f, loaded, nil
}

func (t *Terminal) conditions(u *auth.User) checkout.Conditions {
	return checkout.Conditions{
		CartEmpty:      t.cart.IsEmpty(),
		SelectionReady: t.sel.Ready(),
		Role:           u.Role,
	}
}
