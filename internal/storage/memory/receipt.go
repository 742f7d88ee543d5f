// Package memory keeps issued receipts in process memory. It is the journal
// used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/domain/order"
)

var _ order.ReceiptJournal = (*Journal)(nil)

// DefaultCapacity is the number of receipts kept by a Journal created with a
// non-positive capacity.
const DefaultCapacity = 200

// Journal holds the most recent receipts, oldest evicted first.
type Journal struct {
	mu       sync.Mutex
	capacity int
	receipts []*order.Receipt
}

// NewJournal creates a Journal keeping up to capacity receipts.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{capacity: capacity}
}

// Save stores r, replacing an earlier receipt for the same order.
func (j *Journal) Save(_ context.Context, r *order.Receipt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i, old := range j.receipts {
		if old.OrderID == r.OrderID {
			j.receipts = append(j.receipts[:i], j.receipts[i+1:]...)
			break
		}
	}
	j.receipts = append(j.receipts, r)
	if over := len(j.receipts) - j.capacity; over > 0 {
		j.receipts = j.receipts[over:]
	}
	return nil
}

// Get returns the newest receipt with the given transaction or order ID.
func (j *Journal) Get(_ context.Context, id string) (*order.Receipt, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var byOrder *order.Receipt
	for i := len(j.receipts) - 1; i >= 0; i-- {
		r := j.receipts[i]
		if r.TransactionID != "" && r.TransactionID == id {
			return r, nil
		}
		if byOrder == nil && r.OrderID == id {
			byOrder = r
		}
	}
	if byOrder == nil {
		return nil, errors.Wrapf(order.ErrReceiptNotFound, "receipt %s", id)
	}
	return byOrder, nil
}
