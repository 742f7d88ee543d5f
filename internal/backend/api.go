package backend

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/wire"
)

// Compile-time checks ensuring Client satisfies the domain interfaces.
var (
	_ auth.Authenticator = (*Client)(nil)
	_ product.Source     = (*Client)(nil)
	_ floor.Source       = (*Client)(nil)
	_ order.Backend      = (*Client)(nil)
	_ kitchen.Source     = (*Client)(nil)
)

// Login verifies a username and PIN. The backend answers {"user": {...}}.
func (c *Client) Login(ctx context.Context, username, pin string) (*auth.User, error) {
	var u *auth.User
	err := c.do(ctx, http.MethodPost, "/login", encodeLogin(username, pin), func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) (err error) {
			if key != "user" {
				return d.Skip()
			}
			u, err = decodeUser(d)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &DecodeError{Op: "POST /login", Err: &MissingFieldError{Object: "login", Field: "user"}}
	}
	return u, nil
}

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeProduct)
		return err
	})
	return out, err
}

// Floors lists dining areas.
func (c *Client) Floors(ctx context.Context) ([]floor.Floor, error) {
	var out []floor.Floor
	err := c.do(ctx, http.MethodGet, "/floors", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeFloor)
		return err
	})
	return out, err
}

// Tables lists all tables.
func (c *Client) Tables(ctx context.Context) ([]floor.Table, error) {
	var out []floor.Table
	err := c.do(ctx, http.MethodGet, "/tables", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeTable)
		return err
	})
	return out, err
}

// UpdateTableStatus flips a table between available, occupied and reserved.
func (c *Client) UpdateTableStatus(ctx context.Context, tableID string, status floor.TableStatus) error {
	if tableID == "" {
		return errors.New("table id required")
	}
	return c.do(ctx, http.MethodPatch, itemPath("/tables/%s/status", tableID), encodeStatus(string(status)), nil)
}

// PendingOrders lists orders that are not completed or cancelled.
func (c *Client) PendingOrders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	err := c.do(ctx, http.MethodGet, "/pending-orders", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeOrder)
		return err
	})
	return out, err
}

// Transactions lists completed sales.
func (c *Client) Transactions(ctx context.Context) ([]order.Transaction, error) {
	var out []order.Transaction
	err := c.do(ctx, http.MethodGet, "/transactions", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeTransaction)
		return err
	})
	return out, err
}

// CreateOrder submits a pending order. The backend answers
// {"message", "orderId"}.
func (c *Client) CreateOrder(ctx context.Context, dr order.Draft) (*order.Created, error) {
	var out order.Created
	err := c.do(ctx, http.MethodPost, "/orders", encodeDraft(dr), func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) (err error) {
			switch key {
			case "message":
				out.Message, err = wire.DecodeString(d)
			case "orderId", "order_id", "id":
				out.OrderID, err = wire.DecodeID(d)
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if out.OrderID == "" {
		return nil, &DecodeError{Op: "POST /orders", Err: &MissingFieldError{Object: "order", Field: "orderId"}}
	}
	return &out, nil
}

// CompleteOrder records payment. The backend answers
// {"message", "transaction", "transactionId"}.
func (c *Client) CompleteOrder(ctx context.Context, orderID string, p order.Payment) (*order.Completion, error) {
	var out order.Completion
	err := c.do(ctx, http.MethodPatch, itemPath("/orders/%s/complete", orderID), encodePayment(p), func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) (err error) {
			switch key {
			case "message":
				out.Message, err = wire.DecodeString(d)
			case "transactionId", "transaction_id":
				out.TransactionID, err = wire.DecodeID(d)
			case "transaction":
				if d.Next() == jx.Null {
					return d.Null()
				}
				var tx order.Transaction
				tx, err = decodeTransaction(d)
				out.Transaction = &tx
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus sets an order's lifecycle status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) error {
	return c.do(ctx, http.MethodPatch, itemPath("/orders/%s/status", orderID), encodeStatus(string(status)), nil)
}

// PendingItems lists items awaiting preparation.
func (c *Client) PendingItems(ctx context.Context) ([]kitchen.Item, error) {
	var out []kitchen.Item
	err := c.do(ctx, http.MethodGet, "/kitchen/pending-items", nil, func(d *jx.Decoder) (err error) {
		out, err = decodeList(d, decodeKitchenItem)
		return err
	})
	return out, err
}

// UpdateItemStatus sets an ordered item's kitchen status.
func (c *Client) UpdateItemStatus(ctx context.Context, itemID string, status order.ItemStatus) error {
	return c.do(ctx, http.MethodPatch, itemPath("/kitchen/order-items/%s/status", itemID), encodeStatus(string(status)), nil)
}
