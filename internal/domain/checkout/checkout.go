package checkout

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

var (
	// ErrDiscountOutOfRange is returned when the discount percentage is
	// outside [0, 100]. Inputs are clamped before they reach Calculate.
	ErrDiscountOutOfRange = errors.New("discount percentage must be between 0 and 100")
	// ErrNegativeAmount is returned for a negative subtotal or amount paid.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrUnknownPaymentType is returned by ParsePaymentType.
	ErrUnknownPaymentType = errors.New("unknown payment type")
)

// PaymentType is how the customer pays.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCard   PaymentType = "card"
	PaymentMobile PaymentType = "mobile"
)

// ParsePaymentType accepts the canonical names case-insensitively, along with
// the labels the payment forms show.
func ParsePaymentType(s string) (PaymentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash":
		return PaymentCash, nil
	case "card", "credit card":
		return PaymentCard, nil
	case "mobile", "mobile pay":
		return PaymentMobile, nil
	default:
		return "", errors.Wrapf(ErrUnknownPaymentType, "%q", s)
	}
}

// ClampDiscount limits a user-entered discount percentage to [0, 100].
func ClampDiscount(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// Input is what the payment form collects. AmountPaid is ignored for non-cash
// payments.
type Input struct {
	Subtotal           decimal.Decimal
	DiscountPercentage decimal.Decimal
	PaymentType        PaymentType
	AmountPaid         decimal.Decimal
}

// Figures are the reconciled checkout amounts, rounded to cents.
type Figures struct {
	Subtotal           decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	FinalTotal         decimal.Decimal
	PaymentType        PaymentType
	AmountPaid         decimal.Decimal
	ChangeDue          decimal.Decimal
}

// Calculate derives discount, final total and change from in.
// Non-cash payments are taken as exact: amount paid equals the final total
// and no change is due.
func Calculate(in Input) (Figures, error) {
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) {
		return Figures{}, errors.Wrapf(ErrDiscountOutOfRange, "got %s", in.DiscountPercentage)
	}
	if in.Subtotal.IsNegative() {
		return Figures{}, errors.Wrap(ErrNegativeAmount, "subtotal")
	}
	pt := in.PaymentType
	if pt == "" {
		pt = PaymentCash
	}

	discount := in.Subtotal.Mul(in.DiscountPercentage).Div(hundred).Round(2)
	final := in.Subtotal.Sub(discount).Round(2)

	f := Figures{
		Subtotal:           in.Subtotal.Round(2),
		DiscountPercentage: in.DiscountPercentage,
		DiscountAmount:     discount,
		FinalTotal:         final,
		PaymentType:        pt,
	}

	if pt != PaymentCash {
		f.AmountPaid = final
		f.ChangeDue = zero
		return f, nil
	}

	if in.AmountPaid.IsNegative() {
		return Figures{}, errors.Wrap(ErrNegativeAmount, "amount paid")
	}
	f.AmountPaid = in.AmountPaid.Round(2)
	f.ChangeDue = floorAtZero(f.AmountPaid.Sub(final))
	return f, nil
}

// Underpaid reports a cash payment that does not cover the final total.
func (f Figures) Underpaid() bool {
	return f.PaymentType == PaymentCash && f.AmountPaid.LessThan(f.FinalTotal)
}

func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
