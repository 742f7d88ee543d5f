package order

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ItemStatus is the kitchen state of a single ordered item.
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemCooked  ItemStatus = "cooked"
	ItemReady   ItemStatus = "ready"
)

var (
	// ErrInvalidTransition is wrapped by every *TransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownStatus is returned when parsing an unrecognized status.
	ErrUnknownStatus = errors.New("unknown status")
)

// ParseStatus parses an order status case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusServed, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", errors.Wrapf(ErrUnknownStatus, "order status %q", s)
}

// ParseItemStatus parses an item status case-insensitively.
func ParseItemStatus(s string) (ItemStatus, error) {
	st := ItemStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ItemPending, ItemCooked, ItemReady:
		return st, nil
	}
	return "", errors.Wrapf(ErrUnknownStatus, "item status %q", s)
}

// Final reports whether no further transition is possible.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// orderTransitions maps a status to the statuses it may move to. A pending
// order may be completed directly without being marked served.
var orderTransitions = map[Status][]Status{
	StatusPending: {StatusServed, StatusCompleted, StatusCancelled},
	StatusServed:  {StatusCompleted, StatusCancelled},
}

// itemTransitions maps an item status to the statuses it may move to.
// Ready items may be reset to pending.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending: {ItemCooked, ItemReady},
	ItemCooked:  {ItemReady},
	ItemReady:   {ItemPending},
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	Subject string
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Subject, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// CheckTransition validates an order status change.
func CheckTransition(from, to Status) error {
	if !slices.Contains(orderTransitions[from], to) {
		return &TransitionError{Subject: "order", From: string(from), To: string(to)}
	}
	return nil
}

// CheckItemTransition validates an item status change.
func CheckItemTransition(from, to ItemStatus) error {
	if !slices.Contains(itemTransitions[from], to) {
		return &TransitionError{Subject: "item", From: string(from), To: string(to)}
	}
	return nil
}

// NextItemStatuses lists the statuses an item in s may move to.
func NextItemStatuses(s ItemStatus) []ItemStatus {
	return slices.Clone(itemTransitions[s])
}

// Item is a line of a submitted order.
type Item struct {
	ItemID      string
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	PriceAtSale decimal.Decimal
	Quantity    int
	Status      ItemStatus
}

// UnitPrice is the price charged, falling back to the product price for
// items recorded without a sale price.
func (i Item) UnitPrice() decimal.Decimal {
	if i.PriceAtSale.IsZero() {
		return i.Price
	}
	return i.PriceAtSale
}

// Subtotal is unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an order as the backend reports it.
type Order struct {
	ID                 string
	TransactionID      string
	FloorID            string
	TableID            string
	FloorName          string
	TableName          string
	WaiterUsername     string
	Items              []Item
	InitialTotal       decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	FinalTotal         decimal.Decimal
	Status             Status
	OrderDate          time.Time
}

// WalkIn reports an order placed without a floor or table.
func (o *Order) WalkIn() bool {
	return o.FloorID == "" && o.TableID == ""
}

// Location renders "Floor - Table" or "Walk-in".
func (o *Order) Location() string {
	if o.TableName == "" || o.WalkIn() {
		return "Walk-in"
	}
	return o.FloorName + " - " + o.TableName
}

// Transaction is a completed, read-only sale.
type Transaction struct {
	TransactionID   string
	OrderID         string
	OrderDate       time.Time
	PaymentType     string
	FinalTotal      decimal.Decimal
	AmountPaid      decimal.Decimal
	ChangeDue       decimal.Decimal
	CashierUsername string
	WaiterUsername  string
	TableName       string
	FloorName       string
	Items           []Item
}
