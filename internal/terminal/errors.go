package terminal

import (
	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/backend"
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

var (
	// ErrFloorNotFound is returned when a floor is not in the catalog.
	ErrFloorNotFound = errors.New("floor not found")
	// ErrTableNotFound is returned when a table is not in the catalog.
	ErrTableNotFound = errors.New("table not found")
	// ErrOrderNotFound is returned when an order is not among the pending orders.
	ErrOrderNotFound = errors.New("pending order not found")
	// ErrNoConfirmation is returned when there is no submitted order to confirm.
	ErrNoConfirmation = errors.New("no order awaiting confirmation")
	// ErrConfirmationOpen is returned when the cart is changed while a
	// submitted order awaits confirmation.
	ErrConfirmationOpen = errors.New("confirm or dismiss the submitted order first")
)

// genericFailure is shown for errors that carry no user-facing message.
const genericFailure = "Something went wrong. Please try again."

// Kind classifies an error for presentation.
type Kind int

const (
	// KindInternal is an unexpected failure such as an unreadable response.
	KindInternal Kind = iota
	// KindValidation is rejected input. No backend call was made.
	KindValidation
	// KindForbidden is a missing login or permission.
	KindForbidden
	// KindBackend is a non-2xx backend response.
	KindBackend
)

var validationErrors = []error{
	ErrFloorNotFound,
	ErrTableNotFound,
	ErrOrderNotFound,
	ErrNoConfirmation,
	ErrConfirmationOpen,
	auth.ErrInvalidCredentials,
	cart.ErrOutOfStock,
	cart.ErrStockExceeded,
	cart.ErrLineNotFound,
	checkout.ErrDiscountOutOfRange,
	checkout.ErrNegativeAmount,
	checkout.ErrUnknownPaymentType,
	floor.ErrInvalidTableStatus,
	kitchen.ErrItemNotFound,
	order.ErrInvalidTransition,
	order.ErrUnknownStatus,
	order.ErrUnderpaid,
	order.ErrEmptyOrderID,
	order.ErrEmptyDraft,
	order.ErrReceiptNotFound,
	product.ErrNotFound,
	seating.ErrSelectionRequired,
	seating.ErrNoFloor,
	seating.ErrTableNotOnFloor,
	transaction.ErrUnknownRange,
	transaction.ErrUnknownSource,
}

// Classify reports the Kind of err.
func Classify(err error) Kind {
	var (
		apiErr   *backend.APIError
		disabled *checkout.DisabledError
	)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, auth.ErrForbidden):
		return KindForbidden
	case errors.As(err, &disabled):
		return KindValidation
	case errors.As(err, &apiErr):
		return KindBackend
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	return KindInternal
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	var (
		apiErr   *backend.APIError
		stockErr *cart.StockError
		disabled *checkout.DisabledError
	)
	switch {
	case errors.As(err, &disabled):
		return disabled.Error()
	case errors.As(err, &stockErr):
		return stockErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	}
	switch Classify(err) {
	case KindValidation, KindForbidden:
		return err.Error()
	default:
		return genericFailure
	}
}
