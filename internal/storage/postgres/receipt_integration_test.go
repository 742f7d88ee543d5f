//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/order"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "pos",
				"POSTGRES_PASSWORD": "pos",
				"POSTGRES_DB":       "pos",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, c)
	require.NoError(t, err)

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://pos:pos@%s:%s/pos?sslmode=disable", host, port.Port())
}

func TestReceiptRepository(t *testing.T) {
	ctx := context.Background()
	pool, err := NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))

	repo := NewReceiptRepository(pool)
	rc := &order.Receipt{
		TransactionID:   "900",
		OrderID:         "55",
		OrderDate:       time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
		PaymentType:     checkout.PaymentCash,
		Subtotal:        decimal.RequireFromString("20.00"),
		DiscountAmount:  decimal.RequireFromString("2.00"),
		FinalTotal:      decimal.RequireFromString("18.00"),
		AmountPaid:      decimal.RequireFromString("20.00"),
		ChangeDue:       decimal.RequireFromString("2.00"),
		CashierUsername: "ann",
		WaiterUsername:  "N/A",
		TableName:       "T1",
		FloorName:       "Ground",
		Items: []order.Item{{
			ItemID:      "1",
			ProductID:   "1",
			ProductName: "Pasta",
			PriceAtSale: decimal.RequireFromString("10.00"),
			Quantity:    2,
			Status:      order.ItemPending,
		}},
	}
	require.NoError(t, repo.Save(ctx, rc))

	t.Run("ByTransaction", func(t *testing.T) {
		got, err := repo.Get(ctx, "900")
		require.NoError(t, err)
		assert.Equal(t, "55", got.OrderID)
		assert.True(t, got.FinalTotal.Equal(rc.FinalTotal))
		assert.True(t, got.OrderDate.Equal(rc.OrderDate))
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Pasta", got.Items[0].ProductName)
	})

	t.Run("ByOrder", func(t *testing.T) {
		got, err := repo.Get(ctx, "55")
		require.NoError(t, err)
		assert.Equal(t, "900", got.TransactionID)
		assert.Equal(t, checkout.PaymentCash, got.PaymentType)
	})

	t.Run("Upsert", func(t *testing.T) {
		again := *rc
		again.CashierUsername = "bob"
		require.NoError(t, repo.Save(ctx, &again))

		got, err := repo.Get(ctx, "55")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.CashierUsername)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, "404")
		assert.ErrorIs(t, err, order.ErrReceiptNotFound)
	})
}
