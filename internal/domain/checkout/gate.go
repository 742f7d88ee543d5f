package checkout

import (
	"strings"

	"github.com/xenking/pos-terminal/internal/domain/auth"
)

// Reason explains why checkout is disabled.
type Reason string

const (
	ReasonEmptyCart           Reason = "empty_cart"
	ReasonNonPositiveTotal    Reason = "non_positive_total"
	ReasonSelectionRequired   Reason = "selection_required"
	ReasonInsufficientPayment Reason = "insufficient_payment"
)

// Message is the warning shown for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonEmptyCart:
		return "Cart is empty. Cannot proceed."
	case ReasonNonPositiveTotal:
		return "Final total must be greater than zero."
	case ReasonSelectionRequired:
		return "Please select a Floor and Table, or enable 'Walk-in Order'."
	case ReasonInsufficientPayment:
		return "Amount paid is less than final total for cash payment."
	default:
		return string(r)
	}
}

// Conditions is the terminal state checkout depends on besides the figures.
type Conditions struct {
	CartEmpty      bool
	SelectionReady bool
	Role           auth.Role
}

// Evaluate lists every reason checkout is disabled, in display priority
// order. An empty result means checkout may proceed. Waiters take orders
// without payment, so an unpaid cash total does not block them.
func Evaluate(f Figures, c Conditions) []Reason {
	var reasons []Reason
	if c.CartEmpty {
		reasons = append(reasons, ReasonEmptyCart)
	}
	if !f.FinalTotal.IsPositive() {
		reasons = append(reasons, ReasonNonPositiveTotal)
	}
	if !c.SelectionReady {
		reasons = append(reasons, ReasonSelectionRequired)
	}
	if f.Underpaid() && c.Role != auth.RoleWaiter {
		reasons = append(reasons, ReasonInsufficientPayment)
	}
	return reasons
}

// DisabledError is returned when checkout is attempted while disabled. Its
// message is the first reason's warning.
type DisabledError struct {
	Reasons []Reason
}

func (e *DisabledError) Error() string {
	if len(e.Reasons) == 0 {
		return "checkout disabled"
	}
	return e.Reasons[0].Message()
}

// Has reports whether r is among the reasons.
func (e *DisabledError) Has(r Reason) bool {
	for _, got := range e.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// Detail joins every reason's message.
func (e *DisabledError) Detail() string {
	msgs := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		msgs[i] = r.Message()
	}
	return strings.Join(msgs, " ")
}
