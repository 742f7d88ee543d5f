package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/terminal"
	"github.com/xenking/pos-terminal/internal/wire"
)

func (h *Handler) getSession(w http.ResponseWriter, _ *http.Request) {
	u := h.term.State().User
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var username, pin string
	if err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "username":
			username, err = wire.DecodeString(d)
		case "pin", "password":
			pin, err = wire.DecodeString(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeBadRequest(w, err)
		return
	}
	u, err := h.term.Login(r.Context(), username, pin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.term.Logout(); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) getState(w http.ResponseWriter, _ *http.Request) {
	h.writeState(w)
}

func (h *Handler) writeState(w http.ResponseWriter) {
	s := h.term.State()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeState(e, s) })
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := h.term.Menu(q.Get("category"), q.Get("search"))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("categories", func(e *jx.Encoder) {
				list(e, m.Categories, func(e *jx.Encoder, c string) { e.Str(c) })
			})
			str(e, "category", m.Category)
			e.Field("products", func(e *jx.Encoder) { list(e, m.Products, encodeProduct) })
		})
	})
}

func (h *Handler) getFloors(w http.ResponseWriter, _ *http.Request) {
	floors := h.term.Floors()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { list(e, floors, encodeFloor) })
}

func (h *Handler) getTables(w http.ResponseWriter, r *http.Request) {
	tables := h.term.Tables(r.URL.Query().Get("floor_id"))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { list(e, tables, encodeTable) })
}

func (h *Handler) updateTableStatus(w http.ResponseWriter, r *http.Request) {
	status, err := readStatus(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.term.UpdateTableStatus(r.Context(), r.PathValue("id"), status); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var productID string
	if err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		if key != "productId" && key != "product_id" {
			return d.Skip()
		}
		productID, err = wire.DecodeID(d)
		return err
	}); err != nil {
		writeBadRequest(w, err)
		return
	}
	if productID == "" {
		writeBadRequest(w, errors.Wrap(errBadRequest, "productId required"))
		return
	}
	if err := h.term.AddToCart(productID); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var (
		quantity int
		seen     bool
	)
	if err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		if key != "quantity" {
			return d.Skip()
		}
		seen = true
		quantity, err = wire.DecodeInt(d)
		return err
	}); err != nil {
		writeBadRequest(w, err)
		return
	}
	if !seen {
		writeBadRequest(w, errors.Wrap(errBadRequest, "quantity required"))
		return
	}
	if err := h.term.SetQuantity(r.PathValue("productID"), quantity); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.term.RemoveFromCart(r.PathValue("productID")); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) resetOrder(w http.ResponseWriter, _ *http.Request) {
	h.term.ResetOrder()
	h.writeState(w)
}

func (h *Handler) selectFloor(w http.ResponseWriter, r *http.Request) {
	id, err := readID(r, "floorId", "floor_id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.term.SelectFloor(id); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) selectTable(w http.ResponseWriter, r *http.Request) {
	id, err := readID(r, "tableId", "table_id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.term.SelectTable(id); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) setWalkIn(w http.ResponseWriter, r *http.Request) {
	var on bool
	if err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		if key != "enabled" && key != "walkIn" {
			return d.Skip()
		}
		on, err = d.Bool()
		return err
	}); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.term.SetWalkIn(on); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	in, err := readPayment(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := h.term.Quote(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeQuote(e, q) })
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	in, err := readPayment(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	out, err := h.term.Checkout(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if out.Receipt != nil {
		status = http.StatusOK
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeOutcome(e, out) })
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	c, err := h.term.ConfirmOrder()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeConfirmation(e, c) })
}

func (h *Handler) dismissConfirmation(w http.ResponseWriter, r *http.Request) {
	if err := h.term.DismissConfirmation(); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

// readPayment decodes the checkout form. Every field is optional; missing
// means cash with nothing paid and no discount.
func readPayment(r *http.Request) (terminal.PaymentInput, error) {
	var in terminal.PaymentInput
	err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "discountPercentage", "discount_percentage":
			in.DiscountPercentage, err = wire.DecodeDecimal(d)
		case "paymentType", "payment_type":
			in.PaymentType, err = wire.DecodeString(d)
		case "amountPaid", "amount_paid":
			in.AmountPaid, err = wire.DecodeDecimal(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return in, err
}

func readID(r *http.Request, keys ...string) (string, error) {
	var id string
	err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		for _, k := range keys {
			if key == k {
				id, err = wire.DecodeID(d)
				return err
			}
		}
		return d.Skip()
	})
	if err == nil && id == "" {
		err = errors.Wrapf(errBadRequest, "%s required", keys[0])
	}
	return id, err
}

func readStatus(r *http.Request) (string, error) {
	var status string
	err := readJSON(r, func(d *jx.Decoder, key string) (err error) {
		if key != "status" {
			return d.Skip()
		}
		status, err = wire.DecodeString(d)
		return err
	})
	return status, err
}
