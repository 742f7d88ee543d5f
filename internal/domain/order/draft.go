package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/seating"
)

// ErrEmptyDraft is returned when an order is drafted from an empty cart.
var ErrEmptyDraft = errors.New("cart is empty")

// Draft is a new order ready to be submitted. Drafts are always submitted
// as pending.
type Draft struct {
	Items     []Item
	Figures   checkout.Figures
	FloorID   string
	TableID   string
	FloorName string
	TableName string
	CashierID string
	WaiterID  string
	OrderDate time.Time
}

// NewDraft captures the cart, figures and selection into a Draft attributed
// to u. Waiters are recorded as the waiter, every other order-taking role as
// the cashier.
func NewDraft(lines []cart.Line, f checkout.Figures, sel *seating.Selection, u *auth.User, at time.Time) (Draft, error) {
	if len(lines) == 0 {
		return Draft{}, ErrEmptyDraft
	}
	if err := sel.Check(); err != nil {
		return Draft{}, err
	}
	if u == nil {
		return Draft{}, auth.ErrNotAuthenticated
	}

	d := Draft{
		Items:     make([]Item, 0, len(lines)),
		Figures:   f,
		OrderDate: at.UTC(),
	}
	for _, l := range lines {
		d.Items = append(d.Items, Item{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Price:       l.Product.Price,
			PriceAtSale: l.Product.Price,
			Quantity:    l.Quantity,
			Status:      ItemPending,
		})
	}

	if sel.WalkIn() {
		d.FloorName, d.TableName = seating.WalkInLabel, seating.WalkInLabel
	} else {
		fl, _ := sel.Floor()
		tb, _ := sel.Table()
		d.FloorID, d.FloorName = fl.ID, fl.Name
		d.TableID, d.TableName = tb.ID, tb.Name
	}

	switch u.Role {
	case auth.RoleWaiter:
		d.WaiterID = u.ID
	case auth.RoleCashier, auth.RoleAdmin, auth.RoleManager:
		d.CashierID = u.ID
	}
	return d, nil
}

// Payment is what the backend records when an order is completed.
type Payment struct {
	checkout.Figures
	CashierID string
}

// Created is the backend's answer to a submitted draft.
type Created struct {
	OrderID string
	Message string
}

// Completion is the backend's answer to a completed order. Transaction may
// be nil when the backend returns only the ID.
type Completion struct {
	Message       string
	TransactionID string
	Transaction   *Transaction
}

// Quote computes checkout figures for an existing order, starting from its
// initial total.
func Quote(o *Order, pct decimal.Decimal, pt checkout.PaymentType, amountPaid decimal.Decimal) (checkout.Figures, error) {
	return checkout.Calculate(checkout.Input{
		Subtotal:           o.InitialTotal,
		DiscountPercentage: checkout.ClampDiscount(pct),
		PaymentType:        pt,
		AmountPaid:         amountPaid,
	})
}
