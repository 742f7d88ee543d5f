package postgres

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/wire"
)

func encodeItems(items []order.Item) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			e.Obj(func(e *jx.Encoder) {
				e.Field("item_id", func(e *jx.Encoder) { e.Str(it.ItemID) })
				e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
				e.Field("product_name", func(e *jx.Encoder) { e.Str(it.ProductName) })
				e.Field("price", func(e *jx.Encoder) { wire.EncodeDecimal(e, it.Price) })
				e.Field("price_at_sale", func(e *jx.Encoder) { wire.EncodeDecimal(e, it.PriceAtSale) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
				e.Field("status", func(e *jx.Encoder) { e.Str(string(it.Status)) })
			})
		}
	})
	return e.Bytes()
}

func decodeItems(data []byte) ([]order.Item, error) {
	var items []order.Item
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var (
			it     order.Item
			status string
		)
		if err := d.Obj(func(d *jx.Decoder, key string) (err error) {
			switch key {
			case "item_id":
				it.ItemID, err = wire.DecodeID(d)
			case "product_id":
				it.ProductID, err = wire.DecodeID(d)
			case "product_name":
				it.ProductName, err = wire.DecodeString(d)
			case "price":
				it.Price, err = wire.DecodeDecimal(d)
			case "price_at_sale":
				it.PriceAtSale, err = wire.DecodeDecimal(d)
			case "quantity":
				it.Quantity, err = wire.DecodeInt(d)
			case "status":
				status, err = wire.DecodeString(d)
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "[%d]", len(items))
		}
		it.Status = order.ItemPending
		if status != "" {
			s, err := order.ParseItemStatus(status)
			if err != nil {
				return err
			}
			it.Status = s
		}
		items = append(items, it)
		return nil
	})
	return items, err
}
