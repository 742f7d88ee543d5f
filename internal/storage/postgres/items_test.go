package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-terminal/internal/domain/order"
)

func TestItems(t *testing.T) {
	items := []order.Item{
		{
			ItemID:      "1",
			ProductID:   "p1",
			ProductName: "Pasta",
			Price:       decimal.RequireFromString("10"),
			PriceAtSale: decimal.RequireFromString("9.5"),
			Quantity:    2,
			Status:      order.ItemReady,
		},
	}

	got, err := decodeItems(encodeItems(items))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pasta", got[0].ProductName)
	assert.True(t, got[0].PriceAtSale.Equal(items[0].PriceAtSale))
	assert.Equal(t, order.ItemReady, got[0].Status)
}

func TestDecodeItems(t *testing.T) {
	for _, tt := range []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{name: "Empty", input: `[]`},
		{name: "DefaultStatus", input: `[{"product_id":3,"quantity":"1"}]`, wantLen: 1},
		{name: "UnknownStatus", input: `[{"status":"burnt"}]`, wantErr: true},
		{name: "NotArray", input: `{}`, wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeItems([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			for _, it := range got {
				assert.Equal(t, order.ItemPending, it.Status)
			}
		})
	}
}
