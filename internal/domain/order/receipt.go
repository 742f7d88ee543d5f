package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
)

// ErrReceiptNotFound is returned when no receipt matches a lookup.
var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt is the printable record of a completed order.
type Receipt struct {
	TransactionID   string
	OrderID         string
	OrderDate       time.Time
	PaymentType     checkout.PaymentType
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalTotal      decimal.Decimal
	AmountPaid      decimal.Decimal
	ChangeDue       decimal.Decimal
	CashierUsername string
	WaiterUsername  string
	TableName       string
	FloorName       string
	Items           []Item
}

// BuildReceipt combines the original order, the payment taken and the
// backend's completion answer. Items always come from the original order.
// The date prefers the transaction, then the order, then now.
func BuildReceipt(o *Order, p Payment, c *Completion, cashier string, now time.Time) *Receipt {
	r := &Receipt{
		OrderID:         o.ID,
		PaymentType:     p.PaymentType,
		Subtotal:        p.Subtotal,
		DiscountAmount:  p.DiscountAmount,
		FinalTotal:      p.FinalTotal,
		AmountPaid:      p.AmountPaid,
		ChangeDue:       p.ChangeDue,
		CashierUsername: cashier,
		WaiterUsername:  orDefault(o.WaiterUsername, "N/A"),
		TableName:       orDefault(o.TableName, "Walk-in"),
		FloorName:       orDefault(o.FloorName, "N/A"),
		Items:           append([]Item(nil), o.Items...),
	}

	if c != nil {
		r.TransactionID = c.TransactionID
		if c.Transaction != nil {
			if c.Transaction.TransactionID != "" {
				r.TransactionID = c.Transaction.TransactionID
			}
			r.OrderDate = c.Transaction.OrderDate
		}
	}
	switch {
	case !r.OrderDate.IsZero():
	case !o.OrderDate.IsZero():
		r.OrderDate = o.OrderDate
	default:
		r.OrderDate = now
	}
	return r
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
