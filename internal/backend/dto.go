package backend

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/wire"
)

// MissingFieldError is returned when a required field is absent.
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return e.Object + ": missing " + e.Field
}

func decodeList[T any](d *jx.Decoder, item func(*jx.Decoder) (T, error)) ([]T, error) {
	out := []T{}
	if d.Next() == jx.Null {
		return out, d.Null()
	}
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := item(d)
		if err != nil {
			return errors.Wrapf(err, "[%d]", len(out))
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			p.ID, err = wire.DecodeID(d)
		case "name":
			p.Name, err = wire.DecodeString(d)
		case "price":
			p.Price, err = wire.DecodeDecimal(d)
		case "category":
			p.Category, err = wire.DecodeString(d)
		case "stock_quantity":
			p.StockQuantity, err = wire.DecodeInt(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return p, err
	}
	if p.ID == "" {
		return p, &MissingFieldError{Object: "product", Field: "id"}
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	return p, nil
}

func decodeFloor(d *jx.Decoder) (floor.Floor, error) {
	var f floor.Floor
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			f.ID, err = wire.DecodeID(d)
		case "name":
			f.Name, err = wire.DecodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err == nil && f.ID == "" {
		err = &MissingFieldError{Object: "floor", Field: "id"}
	}
	return f, err
}

func decodeTable(d *jx.Decoder) (floor.Table, error) {
	var (
		t      floor.Table
		status string
	)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			t.ID, err = wire.DecodeID(d)
		case "name":
			t.Name, err = wire.DecodeString(d)
		case "floor_id":
			t.FloorID, err = wire.DecodeID(d)
		case "status":
			status, err = wire.DecodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return t, err
	}
	if t.ID == "" {
		return t, &MissingFieldError{Object: "table", Field: "id"}
	}
	t.Status = floor.TableAvailable
	if status != "" {
		if t.Status, err = floor.ParseTableStatus(status); err != nil {
			return t, err
		}
	}
	return t, nil
}

// decodeItemProduct reads the nested {"id","name","price"} of an order item.
func decodeItemProduct(d *jx.Decoder, it *order.Item) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			it.ProductID, err = wire.DecodeID(d)
		case "name":
			it.ProductName, err = wire.DecodeString(d)
		case "price":
			it.Price, err = wire.DecodeDecimal(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
}

func decodeOrderItem(d *jx.Decoder) (order.Item, error) {
	var (
		it     order.Item
		status string
	)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "item_id":
			it.ItemID, err = wire.DecodeID(d)
		case "product":
			err = decodeItemProduct(d, &it)
		case "product_id":
			it.ProductID, err = wire.DecodeID(d)
		case "product_name":
			it.ProductName, err = wire.DecodeString(d)
		case "quantity":
			it.Quantity, err = wire.DecodeInt(d)
		case "price_at_sale", "priceAtSale":
			it.PriceAtSale, err = wire.DecodeDecimal(d)
		case "item_status":
			status, err = wire.DecodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return it, err
	}
	it.Status = order.ItemPending
	if status != "" {
		if it.Status, err = order.ParseItemStatus(status); err != nil {
			return it, err
		}
	}
	return it, nil
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			o.ID, err = wire.DecodeID(d)
		case "transaction_id":
			o.TransactionID, err = wire.DecodeString(d)
		case "floor_id":
			o.FloorID, err = wire.DecodeID(d)
		case "table_id":
			o.TableID, err = wire.DecodeID(d)
		case "floor_name":
			o.FloorName, err = wire.DecodeString(d)
		case "table_name":
			o.TableName, err = wire.DecodeString(d)
		case "waiter_username":
			o.WaiterUsername, err = wire.DecodeString(d)
		case "items":
			o.Items, err = decodeList(d, decodeOrderItem)
		case "initial_total":
			o.InitialTotal, err = wire.DecodeDecimal(d)
		case "discount_percentage":
			o.DiscountPercentage, err = wire.DecodeDecimal(d)
		case "discount_amount":
			o.DiscountAmount, err = wire.DecodeDecimal(d)
		case "final_total":
			o.FinalTotal, err = wire.DecodeDecimal(d)
		case "status":
			status, err = wire.DecodeString(d)
		case "order_date":
			o.OrderDate, err = wire.DecodeTime(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return o, err
	}
	if o.ID == "" {
		return o, &MissingFieldError{Object: "order", Field: "id"}
	}
	o.Status = order.StatusPending
	if status != "" {
		if o.Status, err = order.ParseStatus(status); err != nil {
			return o, err
		}
	}
	if o.InitialTotal.IsZero() {
		for _, it := range o.Items {
			o.InitialTotal = o.InitialTotal.Add(it.Subtotal())
		}
	}
	return o, nil
}

func decodeTransaction(d *jx.Decoder) (order.Transaction, error) {
	var t order.Transaction
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "transaction_id":
			t.TransactionID, err = wire.DecodeID(d)
		case "order_id":
			t.OrderID, err = wire.DecodeID(d)
		case "order_date":
			t.OrderDate, err = wire.DecodeTime(d)
		case "payment_type":
			t.PaymentType, err = wire.DecodeString(d)
		case "final_total":
			t.FinalTotal, err = wire.DecodeDecimal(d)
		case "amount_paid":
			t.AmountPaid, err = wire.DecodeDecimal(d)
		case "change_due":
			t.ChangeDue, err = wire.DecodeDecimal(d)
		case "cashier_username":
			t.CashierUsername, err = wire.DecodeString(d)
		case "waiter_username":
			t.WaiterUsername, err = wire.DecodeString(d)
		case "table_name":
			t.TableName, err = wire.DecodeString(d)
		case "floor_name":
			t.FloorName, err = wire.DecodeString(d)
		case "items":
			t.Items, err = decodeList(d, decodeOrderItem)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err == nil && t.TransactionID == "" {
		err = &MissingFieldError{Object: "transaction", Field: "transaction_id"}
	}
	return t, err
}

func decodeKitchenItem(d *jx.Decoder) (kitchen.Item, error) {
	var (
		it     kitchen.Item
		status string
	)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "item_id":
			it.ItemID, err = wire.DecodeID(d)
		case "order_id":
			it.OrderID, err = wire.DecodeID(d)
		case "transaction_id":
			it.TransactionID, err = wire.DecodeString(d)
		case "product_name":
			it.ProductName, err = wire.DecodeString(d)
		case "quantity":
			it.Quantity, err = wire.DecodeInt(d)
		case "item_status":
			status, err = wire.DecodeString(d)
		case "floor_name":
			it.FloorName, err = wire.DecodeString(d)
		case "table_name":
			it.TableName, err = wire.DecodeString(d)
		case "order_date":
			it.OrderDate, err = wire.DecodeTime(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return it, err
	}
	if it.ItemID == "" {
		return it, &MissingFieldError{Object: "kitchen item", Field: "item_id"}
	}
	it.Status = order.ItemPending
	if status != "" {
		if it.Status, err = order.ParseItemStatus(status); err != nil {
			return it, err
		}
	}
	return it, nil
}

func decodeUser(d *jx.Decoder) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			u.ID, err = wire.DecodeID(d)
		case "username":
			u.Username, err = wire.DecodeString(d)
		case "role":
			role, err = wire.DecodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	if u.ID == "" {
		return nil, &MissingFieldError{Object: "user", Field: "id"}
	}
	if !u.Role.Valid() {
		return nil, errors.Errorf("user: unknown role %q", role)
	}
	return &u, nil
}

func encodeDraft(d order.Draft) []byte {
	f := d.Figures
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range d.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product", func(e *jx.Encoder) {
							e.Obj(func(e *jx.Encoder) {
								e.Field("id", func(e *jx.Encoder) { wire.EncodeID(e, it.ProductID) })
								e.Field("name", func(e *jx.Encoder) { e.Str(it.ProductName) })
								e.Field("price", func(e *jx.Encoder) { wire.EncodeDecimal(e, it.Price) })
							})
						})
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("priceAtSale", func(e *jx.Encoder) { wire.EncodeDecimal(e, it.UnitPrice()) })
					})
				}
			})
		})
		e.Field("initialTotal", func(e *jx.Encoder) { wire.EncodeMoney(e, f.Subtotal) })
		e.Field("discountPercentage", func(e *jx.Encoder) { wire.EncodeDecimal(e, f.DiscountPercentage) })
		e.Field("discountAmount", func(e *jx.Encoder) { wire.EncodeMoney(e, f.DiscountAmount) })
		e.Field("finalTotal", func(e *jx.Encoder) { wire.EncodeMoney(e, f.FinalTotal) })
		e.Field("orderDate", func(e *jx.Encoder) { wire.EncodeTime(e, d.OrderDate) })
		e.Field("floorId", func(e *jx.Encoder) { wire.EncodeID(e, d.FloorID) })
		e.Field("tableId", func(e *jx.Encoder) { wire.EncodeID(e, d.TableID) })
		e.Field("floor_name", func(e *jx.Encoder) { e.Str(d.FloorName) })
		e.Field("table_name", func(e *jx.Encoder) { e.Str(d.TableName) })
		e.Field("cashierId", func(e *jx.Encoder) { wire.EncodeID(e, d.CashierID) })
		e.Field("waiterId", func(e *jx.Encoder) { wire.EncodeID(e, d.WaiterID) })
		e.Field("paymentType", func(e *jx.Encoder) { e.Str(string(f.PaymentType)) })
		e.Field("amountPaid", func(e *jx.Encoder) { wire.EncodeMoney(e, f.AmountPaid) })
		e.Field("changeDue", func(e *jx.Encoder) { wire.EncodeMoney(e, f.ChangeDue) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(order.StatusPending)) })
	})
	return e.Bytes()
}

func encodePayment(p order.Payment) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("paymentType", func(e *jx.Encoder) { e.Str(string(p.PaymentType)) })
		e.Field("amountPaid", func(e *jx.Encoder) { wire.EncodeMoney(e, p.AmountPaid) })
		e.Field("discountPercentage", func(e *jx.Encoder) { wire.EncodeDecimal(e, p.DiscountPercentage) })
		e.Field("discountAmount", func(e *jx.Encoder) { wire.EncodeMoney(e, p.DiscountAmount) })
		e.Field("changeDue", func(e *jx.Encoder) { wire.EncodeMoney(e, p.ChangeDue) })
		e.Field("finalTotal", func(e *jx.Encoder) { wire.EncodeMoney(e, p.FinalTotal) })
		e.Field("cashierId", func(e *jx.Encoder) { wire.EncodeID(e, p.CashierID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(order.StatusCompleted)) })
	})
	return e.Bytes()
}

func encodeStatus(status string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(status) })
	})
	return e.Bytes()
}

func encodeLogin(username, pin string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("username", func(e *jx.Encoder) { e.Str(username) })
		e.Field("pin", func(e *jx.Encoder) { e.Str(pin) })
	})
	return e.Bytes()
}
