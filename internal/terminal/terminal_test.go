package terminal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/backend"
	"github.com/xenking/pos-terminal/internal/catalog"
	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/seating"
	"github.com/xenking/pos-terminal/internal/domain/transaction"
	"github.com/xenking/pos-terminal/internal/notify"
)

// --- Mock implementations ---

type mockSessions struct {
	user     *auth.User
	restored *auth.User
	loginErr error
}

func (m *mockSessions) Restore() (*auth.User, error) {
	m.user = m.restored
	return m.restored, nil
}

func (m *mockSessions) Login(_ context.Context, username, _ string) (*auth.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	role := auth.Role(username)
	m.user = &auth.User{ID: "u-" + username, Username: username, Role: role}
	return m.user, nil
}

func (m *mockSessions) Logout() error {
	m.user = nil
	return nil
}

func (m *mockSessions) Current() *auth.User { return m.user }

type mockCatalog struct {
	snap      *catalog.Snapshot
	next      *catalog.Snapshot
	refreshes int
}

func (m *mockCatalog) Snapshot() *catalog.Snapshot { return m.snap }

func (m *mockCatalog) Refresh(context.Context) error {
	m.refreshes++
	if m.next != nil {
		m.snap, m.next = m.next, nil
	}
	return nil
}

func (m *mockCatalog) PollPending(ctx context.Context, _ time.Duration) { <-ctx.Done() }

type mockOrders struct {
	drafts    []order.Draft
	completed []checkout.Figures
	statuses  []order.Status
	err       error
}

func (m *mockOrders) Submit(_ context.Context, u *auth.User, d order.Draft) (*order.Created, error) {
	if err := auth.Require(u, auth.PermTakeOrders); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	m.drafts = append(m.drafts, d)
	return &order.Created{OrderID: "101", Message: "Order created"}, nil
}

func (m *mockOrders) Complete(_ context.Context, u *auth.User, o *order.Order, f checkout.Figures) (*order.Receipt, error) {
	if err := auth.Require(u, auth.PermCompleteOrder); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	m.completed = append(m.completed, f)
	return &order.Receipt{TransactionID: "tx-" + o.ID, OrderID: o.ID, FinalTotal: f.FinalTotal, Items: o.Items}, nil
}

func (m *mockOrders) MarkServed(_ context.Context, _ *auth.User, o *order.Order) error {
	return m.setStatus(o, order.StatusServed)
}

func (m *mockOrders) Cancel(_ context.Context, _ *auth.User, o *order.Order) error {
	return m.setStatus(o, order.StatusCancelled)
}

func (m *mockOrders) setStatus(o *order.Order, s order.Status) error {
	if err := order.CheckTransition(o.Status, s); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.statuses = append(m.statuses, s)
	return nil
}

type mockTables struct {
	updated map[string]floor.TableStatus
}

func (m *mockTables) UpdateTableStatus(_ context.Context, id string, s floor.TableStatus) error {
	if m.updated == nil {
		m.updated = map[string]floor.TableStatus{}
	}
	m.updated[id] = s
	return nil
}

type mockKitchen struct {
	mu      sync.Mutex
	running int
	stopped chan struct{}
	advance []order.ItemStatus
}

func (m *mockKitchen) Run(ctx context.Context) {
	m.mu.Lock()
	m.running++
	m.mu.Unlock()
	<-ctx.Done()
	m.mu.Lock()
	m.running--
	m.mu.Unlock()
	m.stopped <- struct{}{}
}

func (m *mockKitchen) runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *mockKitchen) Tickets() []kitchen.Ticket {
	return []kitchen.Ticket{{OrderID: "7", TableName: "T1"}}
}

func (m *mockKitchen) Status() (time.Time, error) { return time.Time{}, nil }

func (m *mockKitchen) Advance(_ context.Context, u *auth.User, _ string, s order.ItemStatus) error {
	if err := auth.Require(u, auth.PermKitchen); err != nil {
		return err
	}
	m.advance = append(m.advance, s)
	return nil
}

type mockReceipts struct {
	receipts map[string]*order.Receipt
}

func (m *mockReceipts) Get(_ context.Context, id string) (*order.Receipt, error) {
	if r, ok := m.receipts[id]; ok {
		return r, nil
	}
	return nil, order.ErrReceiptNotFound
}

// --- Helpers ---

type fixture struct {
	term     *Terminal
	sessions *mockSessions
	catalog  *mockCatalog
	orders   *mockOrders
	tables   *mockTables
	kitchen  *mockKitchen
	notify   *notify.Center
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Catalog: product.NewCatalog([]product.Product{
			{ID: "p1", Name: "Pasta", Price: price("10.00"), Category: "Mains", StockQuantity: 5},
			{ID: "p2", Name: "Last Cake", Price: price("6.00"), Category: "Desserts", StockQuantity: 1},
			{ID: "p3", Name: "Gone Soup", Price: price("4.00"), Category: "Starters"},
		}),
		Floors: []floor.Floor{{ID: "1", Name: "Ground"}, {ID: "2", Name: "Roof"}},
		Tables: []floor.Table{
			{ID: "10", Name: "T1", FloorID: "1", Status: floor.TableAvailable},
			{ID: "20", Name: "R1", FloorID: "2", Status: floor.TableAvailable},
		},
		PendingOrders: []order.Order{
			{
				ID: "55", FloorID: "1", TableID: "10", FloorName: "Ground", TableName: "T1",
				Items: []order.Item{
					{ItemID: "i1", ProductID: "p1", ProductName: "Pasta", Price: price("10.00"), PriceAtSale: price("9.00"), Quantity: 2},
				},
				InitialTotal: price("18.00"),
				Status:       order.StatusPending,
			},
			{ID: "56", Status: order.StatusServed, InitialTotal: price("5.00"),
				Items: []order.Item{{ItemID: "i2", ProductID: "gone", ProductName: "Old Tea", Price: price("5.00"), Quantity: 1}}},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: &mockSessions{},
		catalog:  &mockCatalog{snap: testSnapshot()},
		orders:   &mockOrders{},
		tables:   &mockTables{},
		kitchen:  &mockKitchen{stopped: make(chan struct{}, 4)},
		notify:   notify.New(zap.NewNop()),
	}
	term, err := New(Options{
		Sessions: f.sessions,
		Catalog:  f.catalog,
		Orders:   f.orders,
		Tables:   f.tables,
		Kitchen:  f.kitchen,
		Receipts: &mockReceipts{receipts: map[string]*order.Receipt{"tx-old": {TransactionID: "tx-old"}}},
		Notify:   f.notify,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	f.term = term
	return f
}

func (f *fixture) login(t *testing.T, role auth.Role) {
	t.Helper()
	_, err := f.term.Login(context.Background(), string(role), "1234")
	require.NoError(t, err)
}

func (f *fixture) lastNotification(t *testing.T) notify.Notification {
	t.Helper()
	active := f.notify.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func transactionFilter() transaction.Filter {
	return transaction.Filter{Range: transaction.RangeAllTime}
}

func cash(pct, paid string) PaymentInput {
	return PaymentInput{DiscountPercentage: price(pct), PaymentType: "cash", AmountPaid: price(paid)}
}

// --- Tests ---

func TestTerminal_RequiresLogin(t *testing.T) {
	f := newFixture(t)

	err := f.term.AddToCart("p1")

	require.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Equal(t, KindForbidden, Classify(err))
}

func TestTerminal_AddToCartStockBound(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	require.NoError(t, f.term.AddToCart("p2"))
	err := f.term.AddToCart("p2")

	var stockErr *cart.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, cart.ErrStockExceeded)
	lines := f.term.State().Lines
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	n := f.lastNotification(t)
	assert.Equal(t, notify.LevelWarning, n.Level)
	assert.Contains(t, n.Text, "only 1 in stock")
}

func TestTerminal_AddOutOfStock(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	err := f.term.AddToCart("p3")

	require.ErrorIs(t, err, cart.ErrOutOfStock)
	assert.Empty(t, f.term.State().Lines)
}

func TestTerminal_SetQuantity(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleWaiter)
	require.NoError(t, f.term.AddToCart("p1"))

	require.NoError(t, f.term.SetQuantity("p1", 3))
	require.NoError(t, f.term.SetQuantity("p1", 3))
	assert.True(t, f.term.State().Subtotal.Equal(price("30.00")))

	require.ErrorIs(t, f.term.SetQuantity("p1", 6), cart.ErrStockExceeded)
	assert.Equal(t, 3, f.term.State().Lines[0].Quantity)

	require.NoError(t, f.term.SetQuantity("p1", 0))
	assert.Empty(t, f.term.State().Lines)

	require.ErrorIs(t, f.term.SetQuantity("missing", 1), product.ErrNotFound)
}

func TestTerminal_Selection(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	require.ErrorIs(t, f.term.SelectTable("10"), seating.ErrNoFloor)
	require.NoError(t, f.term.SelectFloor("1"))
	require.ErrorIs(t, f.term.SelectTable("20"), seating.ErrTableNotOnFloor)
	require.ErrorIs(t, f.term.SelectTable("99"), ErrTableNotFound)
	require.ErrorIs(t, f.term.SelectFloor("9"), ErrFloorNotFound)
	require.NoError(t, f.term.SelectTable("10"))

	s := f.term.State()
	require.NotNil(t, s.Table)
	assert.Equal(t, "T1", s.Label)

	require.NoError(t, f.term.SetWalkIn(true))
	s = f.term.State()
	assert.True(t, s.WalkIn)
	assert.Nil(t, s.Floor)
	assert.Nil(t, s.Table)
}

func TestTerminal_CheckoutDisabledWithoutSelection(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)
	require.NoError(t, f.term.AddToCart("p1"))

	_, err := f.term.Checkout(context.Background(), cash("0", "50"))

	var disabled *checkout.DisabledError
	require.ErrorAs(t, err, &disabled)
	assert.Equal(t, []checkout.Reason{checkout.ReasonSelectionRequired}, disabled.Reasons)
	assert.Empty(t, f.orders.drafts)
	assert.Equal(t, checkout.ReasonSelectionRequired.Message(), f.lastNotification(t).Text)
}

func TestTerminal_QuoteReasons(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	q, err := f.term.Quote(cash("0", "0"))
	require.NoError(t, err)
	assert.False(t, q.Enabled())
	assert.Equal(t, []checkout.Reason{
		checkout.ReasonEmptyCart,
		checkout.ReasonNonPositiveTotal,
		checkout.ReasonSelectionRequired,
	}, q.Reasons)

	_, err = f.term.Quote(PaymentInput{PaymentType: "bitcoin"})
	require.ErrorIs(t, err, checkout.ErrUnknownPaymentType)
}

func TestTerminal_SubmitAndConfirm(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)
	require.NoError(t, f.term.AddToCart("p1"))
	require.NoError(t, f.term.AddToCart("p1"))
	require.NoError(t, f.term.SetWalkIn(true))

	q, err := f.term.Quote(cash("10", "20"))
	require.NoError(t, err)
	require.True(t, q.Enabled())
	assert.True(t, q.Figures.DiscountAmount.Equal(price("2.00")))
	assert.True(t, q.Figures.FinalTotal.Equal(price("18.00")))
	assert.True(t, q.Figures.ChangeDue.Equal(price("2.00")))

	out, err := f.term.Checkout(context.Background(), cash("10", "20"))
	require.NoError(t, err)
	require.NotNil(t, out.Confirmation)
	assert.Nil(t, out.Receipt)
	assert.Equal(t, "101", out.Confirmation.OrderID)
	assert.Equal(t, seating.WalkInLabel, out.Confirmation.TableName)
	assert.Equal(t, 1, f.catalog.refreshes)

	require.Len(t, f.orders.drafts, 1)
	d := f.orders.drafts[0]
	assert.Equal(t, "u-cashier", d.CashierID)
	assert.True(t, d.Figures.FinalTotal.Equal(price("18.00")))

	// The cart stays until the confirmation is acknowledged.
	assert.Len(t, f.term.State().Lines, 1)
	require.ErrorIs(t, f.term.AddToCart("p1"), ErrConfirmationOpen)

	c, err := f.term.ConfirmOrder()
	require.NoError(t, err)
	assert.Equal(t, "101", c.OrderID)
	s := f.term.State()
	assert.Empty(t, s.Lines)
	assert.False(t, s.WalkIn)
	assert.Nil(t, s.Confirmation)

	_, err = f.term.ConfirmOrder()
	require.ErrorIs(t, err, ErrNoConfirmation)
}

func TestTerminal_DismissConfirmationKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)
	require.NoError(t, f.term.AddToCart("p1"))
	require.NoError(t, f.term.SetWalkIn(true))
	_, err := f.term.Checkout(context.Background(), cash("0", "10"))
	require.NoError(t, err)

	require.NoError(t, f.term.DismissConfirmation())

	s := f.term.State()
	assert.Nil(t, s.Confirmation)
	assert.Len(t, s.Lines, 1)
	assert.True(t, s.WalkIn)
	require.ErrorIs(t, f.term.DismissConfirmation(), ErrNoConfirmation)
}

func TestTerminal_WaiterSubmitsWithoutPayment(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleWaiter)
	require.NoError(t, f.term.AddToCart("p1"))
	require.NoError(t, f.term.SelectFloor("1"))
	require.NoError(t, f.term.SelectTable("10"))

	out, err := f.term.Checkout(context.Background(), cash("0", "0"))

	require.NoError(t, err)
	require.NotNil(t, out.Confirmation)
	d := f.orders.drafts[0]
	assert.Equal(t, "u-waiter", d.WaiterID)
	assert.Empty(t, d.CashierID)
	assert.Equal(t, "10", d.TableID)
}

func TestTerminal_BackendFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)
	require.NoError(t, f.term.AddToCart("p1"))
	require.NoError(t, f.term.SetWalkIn(true))
	f.orders.err = &backend.APIError{StatusCode: 500, Message: "database down"}

	_, err := f.term.Checkout(context.Background(), cash("0", "10"))

	require.Error(t, err)
	assert.Equal(t, KindBackend, Classify(err))
	assert.Len(t, f.term.State().Lines, 1)
	assert.Zero(t, f.catalog.refreshes)
	n := f.lastNotification(t)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Equal(t, "database down", n.Text)
}

func TestTerminal_LoadAndCompletePendingOrder(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	require.NoError(t, f.term.LoadPendingOrder("55"))
	s := f.term.State()
	assert.Equal(t, "55", s.ProcessingOrderID)
	require.Len(t, s.Lines, 1)
	assert.True(t, s.Lines[0].Product.Price.Equal(price("9.00")))
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, 5, s.Lines[0].Product.StockQuantity)
	require.NotNil(t, s.Table)
	assert.Equal(t, "T1", s.Table.Name)
	assert.Contains(t, f.lastNotification(t).Text, "Loaded order for Ground / T1")

	next := testSnapshot()
	next.PendingOrders = next.PendingOrders[1:]
	f.catalog.next = next

	out, err := f.term.Checkout(context.Background(), PaymentInput{DiscountPercentage: price("-5"), PaymentType: "Credit Card"})
	require.NoError(t, err)
	require.NotNil(t, out.Receipt)
	assert.Equal(t, "tx-55", out.Receipt.TransactionID)
	assert.Len(t, out.Receipt.Items, 1)

	// A negative discount clamps to zero, card pays the final total exactly.
	require.Len(t, f.orders.completed, 1)
	got := f.orders.completed[0]
	assert.True(t, got.DiscountPercentage.IsZero())
	assert.Equal(t, checkout.PaymentCard, got.PaymentType)
	assert.True(t, got.AmountPaid.Equal(price("18.00")))
	assert.True(t, got.ChangeDue.IsZero())

	s = f.term.State()
	assert.Empty(t, s.ProcessingOrderID)
	assert.Empty(t, s.Lines)
	assert.Equal(t, 1, f.catalog.refreshes)

	r, err := f.term.Receipt(context.Background(), "tx-55")
	require.NoError(t, err)
	assert.Equal(t, "55", r.OrderID)
}

func TestTerminal_EditedLoadedOrderChargesCart(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	require.NoError(t, f.term.LoadPendingOrder("55"))
	require.NoError(t, f.term.SetQuantity("p1", 1))

	q, err := f.term.Quote(cash("0", "9.00"))
	require.NoError(t, err)
	assert.True(t, q.Figures.FinalTotal.Equal(price("9.00")), q.Figures.FinalTotal.String())
	assert.True(t, q.Enabled(), "%v", q.Reasons)

	_, err = f.term.Checkout(context.Background(), cash("0", "9.00"))
	require.NoError(t, err)
	require.Len(t, f.orders.completed, 1)
	assert.True(t, f.orders.completed[0].FinalTotal.Equal(price("9.00")))
	assert.True(t, f.orders.completed[0].ChangeDue.IsZero())
}

func TestTerminal_EmptiedLoadedOrderCannotCheckout(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	require.NoError(t, f.term.LoadPendingOrder("55"))
	require.NoError(t, f.term.RemoveFromCart("p1"))

	q, err := f.term.Quote(cash("0", "20"))
	require.NoError(t, err)
	assert.False(t, q.Enabled())
	assert.True(t, q.Figures.FinalTotal.IsZero())

	_, err = f.term.Checkout(context.Background(), cash("0", "20"))
	var de *checkout.DisabledError
	require.ErrorAs(t, err, &de)
	assert.Empty(t, f.orders.completed)
}

func TestTerminal_LoadWalkInOrderWithRetiredProduct(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleManager)

	require.NoError(t, f.term.LoadPendingOrder("56"))

	s := f.term.State()
	assert.True(t, s.WalkIn)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Product.StockQuantity)
	require.NoError(t, f.term.SetQuantity("gone", 1))
	require.ErrorIs(t, f.term.SetQuantity("gone", 2), cart.ErrStockExceeded)
}

func TestTerminal_CompleteOrderFromList(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	r, err := f.term.CompleteOrder(context.Background(), "55", cash("0", "10"))
	require.ErrorIs(t, err, order.ErrUnderpaid)
	assert.Nil(t, r)
	assert.Empty(t, f.orders.completed)

	r, err = f.term.CompleteOrder(context.Background(), "55", cash("0", "20"))
	require.NoError(t, err)
	assert.True(t, r.FinalTotal.Equal(price("18.00")))
	assert.True(t, f.orders.completed[0].ChangeDue.Equal(price("2.00")))

	_, err = f.term.CompleteOrder(context.Background(), "nope", cash("0", "20"))
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTerminal_WaiterCannotComplete(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleWaiter)

	_, err := f.term.CompleteOrder(context.Background(), "55", cash("0", "20"))

	require.ErrorIs(t, err, auth.ErrForbidden)
	assert.Equal(t, KindForbidden, Classify(err))
}

func TestTerminal_StatusChanges(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleManager)

	require.NoError(t, f.term.MarkServed(context.Background(), "55"))
	require.ErrorIs(t, f.term.MarkServed(context.Background(), "56"), order.ErrInvalidTransition)
	require.NoError(t, f.term.CancelOrder(context.Background(), "56"))
	require.ErrorIs(t, f.term.CancelOrder(context.Background(), "99"), ErrOrderNotFound)

	assert.Equal(t, []order.Status{order.StatusServed, order.StatusCancelled}, f.orders.statuses)
	assert.Equal(t, 2, f.catalog.refreshes)
}

func TestTerminal_UpdateTableStatus(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)
	require.ErrorIs(t, f.term.UpdateTableStatus(context.Background(), "10", "occupied"), auth.ErrForbidden)

	f.login(t, auth.RoleAdmin)
	require.ErrorIs(t, f.term.UpdateTableStatus(context.Background(), "10", "broken"), floor.ErrInvalidTableStatus)
	require.ErrorIs(t, f.term.UpdateTableStatus(context.Background(), "77", "occupied"), ErrTableNotFound)
	require.NoError(t, f.term.UpdateTableStatus(context.Background(), "10", "occupied"))

	assert.Equal(t, floor.TableOccupied, f.tables.updated["10"])
	assert.Equal(t, "Table 10 status updated to occupied.", f.lastNotification(t).Text)
}

func TestTerminal_ChefKitchenLifecycle(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleChef)
	require.Eventually(t, func() bool { return f.kitchen.runs() == 1 }, time.Second, time.Millisecond)

	view, err := f.term.Kitchen()
	require.NoError(t, err)
	assert.Len(t, view.Tickets, 1)

	require.NoError(t, f.term.AdvanceItem(context.Background(), "i1", "cooked"))
	require.ErrorIs(t, f.term.AdvanceItem(context.Background(), "i1", "burnt"), order.ErrUnknownStatus)
	assert.Equal(t, []order.ItemStatus{order.ItemCooked}, f.kitchen.advance)

	require.NoError(t, f.term.Logout())
	select {
	case <-f.kitchen.stopped:
	case <-time.After(time.Second):
		t.Fatal("kitchen tracker was not stopped on logout")
	}
	_, err = f.term.Kitchen()
	require.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestTerminal_CashierHasNoKitchen(t *testing.T) {
	f := newFixture(t)
	f.login(t, auth.RoleCashier)

	_, err := f.term.Kitchen()

	require.ErrorIs(t, err, auth.ErrForbidden)
	assert.Zero(t, f.kitchen.runs())
}

func TestTerminal_RunRestoresChefSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.restored = &auth.User{ID: "9", Username: "chef", Role: auth.RoleChef}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.term.Run(ctx) }()
	require.Eventually(t, func() bool { return f.kitchen.runs() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	<-f.kitchen.stopped
	assert.Equal(t, 1, f.catalog.refreshes)
}

func TestTerminal_Transactions(t *testing.T) {
	f := newFixture(t)
	f.catalog.snap.Transactions = []order.Transaction{
		{TransactionID: "1", FinalTotal: price("10.00"), TableName: "T1", PaymentType: "cash"},
		{TransactionID: "2", FinalTotal: price("5.50"), TableName: seating.WalkInLabel, PaymentType: "card"},
	}
	f.login(t, auth.RoleWaiter)
	_, err := f.term.Transactions(transactionFilter())
	require.ErrorIs(t, err, auth.ErrForbidden)

	f.login(t, auth.RoleManager)
	rep, err := f.term.Transactions(transactionFilter())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Summary.Count)
	assert.True(t, rep.Summary.TotalSales.Equal(price("15.50")))
	assert.Equal(t, 1, rep.Summary.WalkIns)
}

func TestTerminal_ReceiptFallsBackToJournal(t *testing.T) {
	f := newFixture(t)

	r, err := f.term.Receipt(context.Background(), "tx-old")
	require.NoError(t, err)
	assert.Equal(t, "tx-old", r.TransactionID)

	_, err = f.term.Receipt(context.Background(), "tx-none")
	require.ErrorIs(t, err, order.ErrReceiptNotFound)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		msg  string
	}{
		{name: "Stock", err: &cart.StockError{ProductName: "Tea", Available: 2, Err: cart.ErrStockExceeded}, kind: KindValidation, msg: "cannot add more than available stock for Tea: only 2 in stock"},
		{name: "Disabled", err: &checkout.DisabledError{Reasons: []checkout.Reason{checkout.ReasonEmptyCart}}, kind: KindValidation, msg: "Cart is empty. Cannot proceed."},
		{name: "Selection", err: errors.Wrap(seating.ErrSelectionRequired, "checkout"), kind: KindValidation},
		{name: "Forbidden", err: auth.Require(&auth.User{Role: auth.RoleChef}, auth.PermTakeOrders), kind: KindForbidden},
		{name: "Backend", err: errors.Wrap(&backend.APIError{StatusCode: 404, Message: "Order not found"}, "complete"), kind: KindBackend, msg: "Order not found"},
		{name: "Decode", err: &backend.DecodeError{Op: "GET /products", Err: errors.New("bad json")}, kind: KindInternal, msg: genericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.err))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, Message(tt.err))
			}
		})
	}
}
