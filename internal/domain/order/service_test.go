package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
)

// --- Mock implementations ---

type mockBackend struct {
	created    *Created
	completion *Completion
	err        error

	calls      int
	lastDraft  Draft
	lastID     string
	lastPay    Payment
	lastStatus Status
}

func (m *mockBackend) CreateOrder(_ context.Context, d Draft) (*Created, error) {
	m.calls++
	m.lastDraft = d
	return m.created, m.err
}

func (m *mockBackend) CompleteOrder(_ context.Context, id string, p Payment) (*Completion, error) {
	m.calls++
	m.lastID, m.lastPay = id, p
	return m.completion, m.err
}

func (m *mockBackend) UpdateOrderStatus(_ context.Context, id string, s Status) error {
	m.calls++
	m.lastID, m.lastStatus = id, s
	return m.err
}

type mockJournal struct {
	saved []*Receipt
	err   error
}

func (m *mockJournal) Save(_ context.Context, r *Receipt) error {
	m.saved = append(m.saved, r)
	return m.err
}

// --- Helpers ---

var (
	cashier = &auth.User{ID: "7", Username: "cashier1", Role: auth.RoleCashier}
	waiter  = &auth.User{ID: "8", Username: "waiter1", Role: auth.RoleWaiter}
	admin   = &auth.User{ID: "1", Username: "admin", Role: auth.RoleAdmin}
)

func newTestService(b Backend, j ReceiptJournal) *Service {
	s := NewService(b, j, zap.NewNop(), noop.NewTracerProvider())
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func newPendingOrder() *Order {
	return &Order{
		ID:             "42",
		FloorName:      "Ground",
		TableName:      "T1",
		FloorID:        "1",
		TableID:        "10",
		WaiterUsername: "waiter1",
		Status:         StatusPending,
		InitialTotal:   decimal.RequireFromString("20.00"),
		OrderDate:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Items: []Item{
			{ItemID: "100", ProductID: "p1", ProductName: "Soup", Price: decimal.RequireFromString("5.00"), Quantity: 2, Status: ItemPending},
			{ItemID: "101", ProductID: "p2", ProductName: "Tea", Price: decimal.RequireFromString("10.00"), Quantity: 1, Status: ItemReady},
		},
	}
}

func quote(t *testing.T, o *Order, pct, paid string, pt checkout.PaymentType) checkout.Figures {
	t.Helper()
	f, err := Quote(o, decimal.RequireFromString(pct), pt, decimal.RequireFromString(paid))
	require.NoError(t, err)
	return f
}

// --- Tests ---

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusServed, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusServed, StatusCompleted, true},
		{StatusServed, StatusCancelled, true},
		{StatusServed, StatusPending, false},
		{StatusCompleted, StatusServed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidTransition)
			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "order", te.Subject)
		})
	}
}

func TestCheckItemTransition(t *testing.T) {
	require.NoError(t, CheckItemTransition(ItemPending, ItemCooked))
	require.NoError(t, CheckItemTransition(ItemPending, ItemReady))
	require.NoError(t, CheckItemTransition(ItemCooked, ItemReady))
	require.NoError(t, CheckItemTransition(ItemReady, ItemPending))
	require.ErrorIs(t, CheckItemTransition(ItemCooked, ItemPending), ErrInvalidTransition)
	require.ErrorIs(t, CheckItemTransition(ItemReady, ItemCooked), ErrInvalidTransition)

	assert.Equal(t, []ItemStatus{ItemCooked, ItemReady}, NextItemStatuses(ItemPending))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Served ")
	require.NoError(t, err)
	assert.Equal(t, StatusServed, s)

	_, err = ParseStatus("prepared")
	require.ErrorIs(t, err, ErrUnknownStatus)

	is, err := ParseItemStatus("COOKED")
	require.NoError(t, err)
	assert.Equal(t, ItemCooked, is)
}

func TestSubmit(t *testing.T) {
	b := &mockBackend{created: &Created{OrderID: "55", Message: "Order submitted"}}
	svc := newTestService(b, nil)

	d := Draft{Items: []Item{{ProductID: "p1", Quantity: 1}}}
	created, err := svc.Submit(context.Background(), waiter, d)

	require.NoError(t, err)
	assert.Equal(t, "55", created.OrderID)
	assert.Equal(t, 1, b.calls)
}

func TestSubmit_Rejections(t *testing.T) {
	chef := &auth.User{ID: "3", Role: auth.RoleChef}
	d := Draft{Items: []Item{{ProductID: "p1", Quantity: 1}}}

	tests := []struct {
		name    string
		user    *auth.User
		draft   Draft
		wantErr error
	}{
		{name: "anonymous", draft: d, wantErr: auth.ErrNotAuthenticated},
		{name: "chef", user: chef, draft: d, wantErr: auth.ErrForbidden},
		{name: "empty", user: cashier, wantErr: ErrEmptyDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			_, err := newTestService(b, nil).Submit(context.Background(), tt.user, tt.draft)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, b.calls, "no request on validation failure")
		})
	}
}

func TestSubmit_BackendError(t *testing.T) {
	backendErr := errors.New("boom")
	b := &mockBackend{err: backendErr}

	_, err := newTestService(b, nil).Submit(context.Background(), cashier, Draft{Items: []Item{{Quantity: 1}}})

	require.ErrorIs(t, err, backendErr)
}

func TestComplete_BuildsReceipt(t *testing.T) {
	b := &mockBackend{completion: &Completion{
		Message: "Order completed",
		Transaction: &Transaction{
			TransactionID: "TXN-1",
			OrderDate:     time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC),
		},
	}}
	j := &mockJournal{}
	svc := newTestService(b, j)
	o := newPendingOrder()
	f := quote(t, o, "10", "20.00", checkout.PaymentCash)

	r, err := svc.Complete(context.Background(), cashier, o, f)
	require.NoError(t, err)

	assert.Equal(t, "42", b.lastID)
	assert.Equal(t, "7", b.lastPay.CashierID)
	assert.True(t, decimal.RequireFromString("2.00").Equal(b.lastPay.DiscountAmount))

	assert.Equal(t, "TXN-1", r.TransactionID)
	assert.Equal(t, time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC), r.OrderDate)
	assert.True(t, decimal.RequireFromString("18.00").Equal(r.FinalTotal))
	assert.True(t, decimal.RequireFromString("2.00").Equal(r.ChangeDue))
	assert.Equal(t, "cashier1", r.CashierUsername)
	assert.Equal(t, "waiter1", r.WaiterUsername)
	assert.Equal(t, "T1", r.TableName)
	assert.Equal(t, "Ground", r.FloorName)
	assert.Equal(t, o.Items, r.Items)
	require.Len(t, j.saved, 1)
}

func TestComplete_AdminDirectlyFromPending(t *testing.T) {
	b := &mockBackend{completion: &Completion{TransactionID: "TXN-9"}}
	o := newPendingOrder()

	r, err := newTestService(b, nil).Complete(context.Background(), admin, o, quote(t, o, "0", "0", checkout.PaymentCard))

	require.NoError(t, err)
	assert.Equal(t, "TXN-9", r.TransactionID)
	assert.Equal(t, o.OrderDate, r.OrderDate, "falls back to order date")
}

func TestComplete_Rejections(t *testing.T) {
	completed := newPendingOrder()
	completed.Status = StatusCompleted
	noID := newPendingOrder()
	noID.ID = ""

	tests := []struct {
		name    string
		user    *auth.User
		order   *Order
		paid    string
		wantErr error
	}{
		{name: "waiter cannot complete", user: waiter, order: newPendingOrder(), paid: "20", wantErr: auth.ErrForbidden},
		{name: "already completed", user: cashier, order: completed, paid: "20", wantErr: ErrInvalidTransition},
		{name: "underpaid cash", user: cashier, order: newPendingOrder(), paid: "5", wantErr: ErrUnderpaid},
		{name: "missing id", user: cashier, order: noID, paid: "20", wantErr: ErrEmptyOrderID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			f := quote(t, tt.order, "0", tt.paid, checkout.PaymentCash)
			_, err := newTestService(b, nil).Complete(context.Background(), tt.user, tt.order, f)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, b.calls)
		})
	}
}

func TestComplete_JournalFailureDoesNotFail(t *testing.T) {
	b := &mockBackend{completion: &Completion{TransactionID: "TXN-2"}}
	j := &mockJournal{err: errors.New("db down")}
	o := newPendingOrder()

	r, err := newTestService(b, j).Complete(context.Background(), cashier, o, quote(t, o, "0", "20", checkout.PaymentCash))

	require.NoError(t, err)
	assert.Equal(t, "TXN-2", r.TransactionID)
}

func TestMarkServed(t *testing.T) {
	b := &mockBackend{}
	svc := newTestService(b, nil)

	require.NoError(t, svc.MarkServed(context.Background(), waiter, newPendingOrder()))
	assert.Equal(t, StatusServed, b.lastStatus)

	served := newPendingOrder()
	served.Status = StatusServed
	b.calls = 0
	require.ErrorIs(t, svc.MarkServed(context.Background(), waiter, served), ErrInvalidTransition)
	require.ErrorIs(t, svc.MarkServed(context.Background(), cashier, newPendingOrder()), auth.ErrForbidden)
	assert.Zero(t, b.calls)
}

func TestCancel(t *testing.T) {
	b := &mockBackend{}
	svc := newTestService(b, nil)

	require.ErrorIs(t, svc.Cancel(context.Background(), waiter, newPendingOrder()), auth.ErrForbidden)
	require.NoError(t, svc.Cancel(context.Background(), admin, newPendingOrder()))
	assert.Equal(t, StatusCancelled, b.lastStatus)
}
