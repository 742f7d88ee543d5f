package handler

import (
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/cart"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/product"
	"github.com/xenking/pos-terminal/internal/domain/transaction"
	"github.com/xenking/pos-terminal/internal/notify"
	"github.com/xenking/pos-terminal/internal/terminal"
	"github.com/xenking/pos-terminal/internal/wire"
)

func str(e *jx.Encoder, name, v string) {
	e.Field(name, func(e *jx.Encoder) { e.Str(v) })
}

func optStr(e *jx.Encoder, name, v string) {
	e.Field(name, func(e *jx.Encoder) {
		if v == "" {
			e.Null()
			return
		}
		e.Str(v)
	})
}

func list[T any](e *jx.Encoder, items []T, item func(*jx.Encoder, T)) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			item(e, it)
		}
	})
}

func encodeUser(e *jx.Encoder, u *auth.User) {
	if u == nil {
		e.Null()
		return
	}
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", u.ID)
		str(e, "username", u.Username)
		str(e, "role", string(u.Role))
		str(e, "home_view", u.Role.HomeView())
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", p.ID)
		str(e, "name", p.Name)
		e.Field("price", func(e *jx.Encoder) { wire.EncodeMoney(e, p.Price) })
		str(e, "category", p.Category)
		e.Field("stock_quantity", func(e *jx.Encoder) { e.Int(p.StockQuantity) })
		e.Field("in_stock", func(e *jx.Encoder) { e.Bool(p.InStock()) })
	})
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product", func(e *jx.Encoder) { encodeProduct(e, l.Product) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { wire.EncodeMoney(e, l.Subtotal()) })
	})
}

func encodeFloor(e *jx.Encoder, f floor.Floor) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", f.ID)
		str(e, "name", f.Name)
	})
}

func encodeTable(e *jx.Encoder, t floor.Table) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", t.ID)
		str(e, "name", t.Name)
		str(e, "floor_id", t.FloorID)
		str(e, "status", string(t.Status))
	})
}

func encodeConfirmation(e *jx.Encoder, c *terminal.Confirmation) {
	if c == nil {
		e.Null()
		return
	}
	e.Obj(func(e *jx.Encoder) {
		str(e, "order_id", c.OrderID)
		str(e, "message", c.Message)
		str(e, "floor_name", c.FloorName)
		str(e, "table_name", c.TableName)
		e.Field("items", func(e *jx.Encoder) { list(e, c.Lines, encodeLine) })
	})
}

func encodeState(e *jx.Encoder, s terminal.State) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("user", func(e *jx.Encoder) { encodeUser(e, s.User) })
		e.Field("cart", func(e *jx.Encoder) { list(e, s.Lines, encodeLine) })
		e.Field("subtotal", func(e *jx.Encoder) { wire.EncodeMoney(e, s.Subtotal) })
		e.Field("floor", func(e *jx.Encoder) {
			if s.Floor == nil {
				e.Null()
				return
			}
			encodeFloor(e, *s.Floor)
		})
		e.Field("table", func(e *jx.Encoder) {
			if s.Table == nil {
				e.Null()
				return
			}
			encodeTable(e, *s.Table)
		})
		e.Field("walk_in", func(e *jx.Encoder) { e.Bool(s.WalkIn) })
		str(e, "label", s.Label)
		optStr(e, "processing_order_id", s.ProcessingOrderID)
		e.Field("confirmation", func(e *jx.Encoder) { encodeConfirmation(e, s.Confirmation) })
	})
}

func encodeFigures(e *jx.Encoder, f checkout.Figures) {
	e.Field("subtotal", func(e *jx.Encoder) { wire.EncodeMoney(e, f.Subtotal) })
	e.Field("discount_percentage", func(e *jx.Encoder) { wire.EncodeDecimal(e, f.DiscountPercentage) })
	e.Field("discount_amount", func(e *jx.Encoder) { wire.EncodeMoney(e, f.DiscountAmount) })
	e.Field("final_total", func(e *jx.Encoder) { wire.EncodeMoney(e, f.FinalTotal) })
	str(e, "payment_type", string(f.PaymentType))
	e.Field("amount_paid", func(e *jx.Encoder) { wire.EncodeMoney(e, f.AmountPaid) })
	e.Field("change_due", func(e *jx.Encoder) { wire.EncodeMoney(e, f.ChangeDue) })
}

func encodeQuote(e *jx.Encoder, q terminal.Quote) {
	e.Obj(func(e *jx.Encoder) {
		encodeFigures(e, q.Figures)
		e.Field("enabled", func(e *jx.Encoder) { e.Bool(q.Enabled()) })
		e.Field("reasons", func(e *jx.Encoder) {
			list(e, q.Reasons, func(e *jx.Encoder, r checkout.Reason) {
				e.Obj(func(e *jx.Encoder) {
					str(e, "code", string(r))
					str(e, "message", r.Message())
				})
			})
		})
	})
}

func encodeItem(e *jx.Encoder, it order.Item) {
	e.Obj(func(e *jx.Encoder) {
		optStr(e, "item_id", it.ItemID)
		str(e, "product_id", it.ProductID)
		str(e, "product_name", it.ProductName)
		e.Field("price_at_sale", func(e *jx.Encoder) { wire.EncodeMoney(e, it.UnitPrice()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { wire.EncodeMoney(e, it.Subtotal()) })
		str(e, "status", string(it.Status))
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", o.ID)
		optStr(e, "transaction_id", o.TransactionID)
		optStr(e, "floor_id", o.FloorID)
		optStr(e, "table_id", o.TableID)
		str(e, "location", o.Location())
		str(e, "floor_name", o.FloorName)
		str(e, "table_name", o.TableName)
		optStr(e, "waiter_username", o.WaiterUsername)
		e.Field("items", func(e *jx.Encoder) { list(e, o.Items, encodeItem) })
		e.Field("initial_total", func(e *jx.Encoder) { wire.EncodeMoney(e, o.InitialTotal) })
		e.Field("discount_percentage", func(e *jx.Encoder) { wire.EncodeDecimal(e, o.DiscountPercentage) })
		e.Field("discount_amount", func(e *jx.Encoder) { wire.EncodeMoney(e, o.DiscountAmount) })
		e.Field("final_total", func(e *jx.Encoder) { wire.EncodeMoney(e, o.FinalTotal) })
		str(e, "status", string(o.Status))
		e.Field("order_date", func(e *jx.Encoder) { wire.EncodeTime(e, o.OrderDate) })
	})
}

func encodeReceipt(e *jx.Encoder, r *order.Receipt) {
	e.Obj(func(e *jx.Encoder) {
		optStr(e, "transaction_id", r.TransactionID)
		str(e, "order_id", r.OrderID)
		e.Field("order_date", func(e *jx.Encoder) { wire.EncodeTime(e, r.OrderDate) })
		str(e, "payment_type", string(r.PaymentType))
		e.Field("subtotal", func(e *jx.Encoder) { wire.EncodeMoney(e, r.Subtotal) })
		e.Field("discount_amount", func(e *jx.Encoder) { wire.EncodeMoney(e, r.DiscountAmount) })
		e.Field("final_total", func(e *jx.Encoder) { wire.EncodeMoney(e, r.FinalTotal) })
		e.Field("amount_paid", func(e *jx.Encoder) { wire.EncodeMoney(e, r.AmountPaid) })
		e.Field("change_due", func(e *jx.Encoder) { wire.EncodeMoney(e, r.ChangeDue) })
		str(e, "cashier_username", r.CashierUsername)
		str(e, "waiter_username", r.WaiterUsername)
		str(e, "table_name", r.TableName)
		str(e, "floor_name", r.FloorName)
		e.Field("items", func(e *jx.Encoder) { list(e, r.Items, encodeItem) })
	})
}

func encodeOutcome(e *jx.Encoder, out *terminal.Outcome) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("receipt", func(e *jx.Encoder) {
			if out.Receipt == nil {
				e.Null()
				return
			}
			encodeReceipt(e, out.Receipt)
		})
		e.Field("confirmation", func(e *jx.Encoder) { encodeConfirmation(e, out.Confirmation) })
	})
}

func encodeTransaction(e *jx.Encoder, t order.Transaction) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "transaction_id", t.TransactionID)
		str(e, "order_id", t.OrderID)
		e.Field("order_date", func(e *jx.Encoder) { wire.EncodeTime(e, t.OrderDate) })
		str(e, "payment_type", t.PaymentType)
		e.Field("final_total", func(e *jx.Encoder) { wire.EncodeMoney(e, t.FinalTotal) })
		e.Field("amount_paid", func(e *jx.Encoder) { wire.EncodeMoney(e, t.AmountPaid) })
		e.Field("change_due", func(e *jx.Encoder) { wire.EncodeMoney(e, t.ChangeDue) })
		str(e, "cashier_username", t.CashierUsername)
		str(e, "waiter_username", t.WaiterUsername)
		str(e, "table_name", t.TableName)
		str(e, "floor_name", t.FloorName)
		e.Field("walk_in", func(e *jx.Encoder) { e.Bool(transaction.IsWalkIn(t)) })
		e.Field("items", func(e *jx.Encoder) { list(e, t.Items, encodeItem) })
	})
}

func encodeReport(e *jx.Encoder, r terminal.Report) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("summary", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("total_sales", func(e *jx.Encoder) { wire.EncodeMoney(e, r.Summary.TotalSales) })
				e.Field("count", func(e *jx.Encoder) { e.Int(r.Summary.Count) })
				e.Field("table_orders", func(e *jx.Encoder) { e.Int(r.Summary.TableOrders) })
				e.Field("walk_ins", func(e *jx.Encoder) { e.Int(r.Summary.WalkIns) })
			})
		})
		e.Field("transactions", func(e *jx.Encoder) { list(e, r.Transactions, encodeTransaction) })
	})
}

func encodeTicket(e *jx.Encoder, t kitchen.Ticket) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "order_id", t.OrderID)
		optStr(e, "transaction_id", t.TransactionID)
		str(e, "floor_name", t.FloorName)
		str(e, "table_name", t.TableName)
		e.Field("order_date", func(e *jx.Encoder) { wire.EncodeTime(e, t.OrderDate) })
		e.Field("items", func(e *jx.Encoder) {
			list(e, t.Items, func(e *jx.Encoder, it kitchen.Item) {
				e.Obj(func(e *jx.Encoder) {
					str(e, "item_id", it.ItemID)
					str(e, "product_name", it.ProductName)
					e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
					str(e, "status", string(it.Status))
					e.Field("next", func(e *jx.Encoder) {
						list(e, order.NextItemStatuses(it.Status), func(e *jx.Encoder, s order.ItemStatus) {
							e.Str(string(s))
						})
					})
				})
			})
		})
	})
}

func encodeKitchen(e *jx.Encoder, v terminal.KitchenView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("updated_at", func(e *jx.Encoder) { wire.EncodeTime(e, v.UpdatedAt) })
		e.Field("error", func(e *jx.Encoder) {
			if v.LastError == nil {
				e.Null()
				return
			}
			e.Str(terminal.Message(v.LastError))
		})
		e.Field("tickets", func(e *jx.Encoder) { list(e, v.Tickets, encodeTicket) })
	})
}

func encodeNotification(e *jx.Encoder, n notify.Notification) {
	e.Obj(func(e *jx.Encoder) {
		str(e, "id", n.ID)
		str(e, "level", string(n.Level))
		str(e, "text", n.Text)
		e.Field("expires_at", func(e *jx.Encoder) { wire.EncodeTime(e, n.ExpiresAt) })
	})
}
