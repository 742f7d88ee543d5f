package kitchen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/order"
)

// --- Mock implementations ---

type mockSource struct {
	mu      sync.Mutex
	items   []Item
	err     error
	fetches int
	updates map[string]order.ItemStatus
	// hook runs inside PendingItems before it returns.
	hook func()
}

func (m *mockSource) PendingItems(_ context.Context) ([]Item, error) {
	m.mu.Lock()
	m.fetches++
	items, err, hook := append([]Item(nil), m.items...), m.err, m.hook
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return items, err
}

func (m *mockSource) UpdateItemStatus(_ context.Context, id string, s order.ItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updates == nil {
		m.updates = make(map[string]order.ItemStatus)
	}
	m.updates[id] = s
	for i := range m.items {
		if m.items[i].ItemID == id {
			m.items[i].Status = s
		}
	}
	return nil
}

func (m *mockSource) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// --- Helpers ---

var (
	t0   = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	chef = &auth.User{ID: "5", Username: "chef", Role: auth.RoleChef}
)

func testItems() []Item {
	return []Item{
		{ItemID: "1", OrderID: "A", FloorName: "G", TableName: "T2", OrderDate: t0.Add(time.Minute), Status: order.ItemPending},
		{ItemID: "2", OrderID: "B", FloorName: "G", TableName: "T9", OrderDate: t0, Status: order.ItemCooked},
		{ItemID: "3", OrderID: "A", FloorName: "G", TableName: "T2", OrderDate: t0.Add(time.Minute), Status: order.ItemReady},
		{ItemID: "4", OrderID: "C", FloorName: "G", TableName: "T1", OrderDate: t0, Status: order.ItemPending},
	}
}

// --- Tests ---

func TestGroup(t *testing.T) {
	tickets := Group(testItems())

	require.Len(t, tickets, 3)
	// Same date: T1 sorts before T9.
	assert.Equal(t, "C", tickets[0].OrderID)
	assert.Equal(t, "B", tickets[1].OrderID)
	assert.Equal(t, "A", tickets[2].OrderID)
	require.Len(t, tickets[2].Items, 2)
	assert.Equal(t, "1", tickets[2].Items[0].ItemID)
	assert.Equal(t, "3", tickets[2].Items[1].ItemID)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
}

func TestTracker_Refresh(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), time.Hour)

	require.NoError(t, tr.Refresh(context.Background()))
	assert.Len(t, tr.Tickets(), 3)

	updated, lastErr := tr.Status()
	assert.False(t, updated.IsZero())
	require.NoError(t, lastErr)
}

func TestTracker_FailedRefreshKeepsSnapshot(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), time.Hour)
	require.NoError(t, tr.Refresh(context.Background()))

	src.err = errors.New("offline")
	require.Error(t, tr.Refresh(context.Background()))

	assert.Len(t, tr.Tickets(), 3)
	_, lastErr := tr.Status()
	require.Error(t, lastErr)
}

func TestTracker_DiscardsResultAfterCancel(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	src.hook = cancel

	err := tr.Refresh(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tr.Tickets())
}

func TestTracker_RunStopsOnCancel(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.fetchCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
	stopped := src.fetchCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, src.fetchCount())
}

func TestTracker_Advance(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), time.Hour)
	ctx := context.Background()
	require.NoError(t, tr.Refresh(ctx))

	require.NoError(t, tr.Advance(ctx, chef, "1", order.ItemCooked))
	assert.Equal(t, order.ItemCooked, src.updates["1"])
	assert.Equal(t, 2, src.fetchCount(), "advance re-fetches")

	require.NoError(t, tr.Advance(ctx, chef, "3", order.ItemPending), "ready resets to pending")
}

func TestTracker_AdvanceRejections(t *testing.T) {
	src := &mockSource{items: testItems()}
	tr := NewTracker(src, zap.NewNop(), time.Hour)
	ctx := context.Background()
	require.NoError(t, tr.Refresh(ctx))

	waiter := &auth.User{ID: "8", Role: auth.RoleWaiter}
	require.ErrorIs(t, tr.Advance(ctx, waiter, "1", order.ItemCooked), auth.ErrForbidden)
	require.ErrorIs(t, tr.Advance(ctx, chef, "missing", order.ItemCooked), ErrItemNotFound)
	require.ErrorIs(t, tr.Advance(ctx, chef, "2", order.ItemPending), order.ErrInvalidTransition)
	assert.Empty(t, src.updates)
}
