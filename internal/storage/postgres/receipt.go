package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/order"
)

var _ order.ReceiptJournal = (*ReceiptRepository)(nil)

const upsertReceipt = `
INSERT INTO receipts (
    order_id, transaction_id, order_date, payment_type,
    subtotal, discount_amount, final_total, amount_paid, change_due,
    cashier_username, waiter_username, table_name, floor_name, items
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (order_id) DO UPDATE SET
    transaction_id   = EXCLUDED.transaction_id,
    order_date       = EXCLUDED.order_date,
    payment_type     = EXCLUDED.payment_type,
    subtotal         = EXCLUDED.subtotal,
    discount_amount  = EXCLUDED.discount_amount,
    final_total      = EXCLUDED.final_total,
    amount_paid      = EXCLUDED.amount_paid,
    change_due       = EXCLUDED.change_due,
    cashier_username = EXCLUDED.cashier_username,
    waiter_username  = EXCLUDED.waiter_username,
    table_name       = EXCLUDED.table_name,
    floor_name       = EXCLUDED.floor_name,
    items            = EXCLUDED.items`

// A transaction ID match wins over an order ID match.
const selectReceipt = `
SELECT order_id, transaction_id, order_date, payment_type,
       subtotal, discount_amount, final_total, amount_paid, change_due,
       cashier_username, waiter_username, table_name, floor_name, items
FROM receipts
WHERE transaction_id = $1 OR order_id = $1
ORDER BY (transaction_id = $1) DESC, created_at DESC
LIMIT 1`

// ReceiptRepository implements order.ReceiptJournal backed by PostgreSQL.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository returns a ReceiptRepository that uses the given pool.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

// Save stores r, replacing any earlier receipt for the same order. Items are
// serialized to JSON for the JSONB column.
func (r *ReceiptRepository) Save(ctx context.Context, rc *order.Receipt) error {
	_, err := r.pool.Exec(ctx, upsertReceipt,
		rc.OrderID,
		rc.TransactionID,
		rc.OrderDate,
		string(rc.PaymentType),
		rc.Subtotal,
		rc.DiscountAmount,
		rc.FinalTotal,
		rc.AmountPaid,
		rc.ChangeDue,
		rc.CashierUsername,
		rc.WaiterUsername,
		rc.TableName,
		rc.FloorName,
		encodeItems(rc.Items),
	)
	if err != nil {
		return fmt.Errorf("saving receipt for order %q: %w", rc.OrderID, err)
	}
	return nil
}

// Get returns the receipt with the given transaction or order ID.
// Returns order.ErrReceiptNotFound when none matches.
func (r *ReceiptRepository) Get(ctx context.Context, id string) (*order.Receipt, error) {
	var (
		rc          order.Receipt
		paymentType string
		items       []byte
	)
	err := r.pool.QueryRow(ctx, selectReceipt, id).Scan(
		&rc.OrderID,
		&rc.TransactionID,
		&rc.OrderDate,
		&paymentType,
		&rc.Subtotal,
		&rc.DiscountAmount,
		&rc.FinalTotal,
		&rc.AmountPaid,
		&rc.ChangeDue,
		&rc.CashierUsername,
		&rc.WaiterUsername,
		&rc.TableName,
		&rc.FloorName,
		&items,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(order.ErrReceiptNotFound, "receipt %s", id)
		}
		return nil, fmt.Errorf("getting receipt %q: %w", id, err)
	}

	if rc.PaymentType, err = checkout.ParsePaymentType(paymentType); err != nil {
		return nil, fmt.Errorf("receipt %q: %w", id, err)
	}
	if rc.Items, err = decodeItems(items); err != nil {
		return nil, fmt.Errorf("receipt %q items: %w", id, err)
	}
	rc.OrderDate = rc.OrderDate.UTC()
	return &rc, nil
}
