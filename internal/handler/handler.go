// Package handler serves the terminal over a local JSON API for the
// presentation layer.
package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/terminal"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

// Handler maps HTTP requests onto terminal operations.
type Handler struct {
	term *terminal.Terminal
}

// NewHandler creates a Handler for term.
func NewHandler(term *terminal.Terminal) *Handler {
	return &Handler{term: term}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", h.getSession)
	mux.HandleFunc("POST /api/session/login", h.login)
	mux.HandleFunc("POST /api/session/logout", h.logout)
	mux.HandleFunc("GET /api/state", h.getState)

	mux.HandleFunc("GET /api/menu", h.getMenu)
	mux.HandleFunc("GET /api/floors", h.getFloors)
	mux.HandleFunc("GET /api/tables", h.getTables)
	mux.HandleFunc("PATCH /api/tables/{id}/status", h.updateTableStatus)

	mux.HandleFunc("POST /api/cart/items", h.addToCart)
	mux.HandleFunc("PATCH /api/cart/items/{productID}", h.setQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.removeFromCart)
	mux.HandleFunc("DELETE /api/cart", h.resetOrder)
	mux.HandleFunc("PUT /api/selection/floor", h.selectFloor)
	mux.HandleFunc("PUT /api/selection/table", h.selectTable)
	mux.HandleFunc("PUT /api/selection/walk-in", h.setWalkIn)

	mux.HandleFunc("POST /api/checkout/quote", h.quote)
	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("POST /api/checkout/confirm", h.confirmOrder)
	mux.HandleFunc("POST /api/checkout/dismiss", h.dismissConfirmation)

	mux.HandleFunc("GET /api/pending-orders", h.getPendingOrders)
	mux.HandleFunc("POST /api/pending-orders/{id}/load", h.loadPendingOrder)
	mux.HandleFunc("POST /api/pending-orders/{id}/served", h.markServed)
	mux.HandleFunc("POST /api/pending-orders/{id}/complete", h.completeOrder)
	mux.HandleFunc("POST /api/pending-orders/{id}/cancel", h.cancelOrder)

	mux.HandleFunc("GET /api/kitchen", h.getKitchen)
	mux.HandleFunc("PATCH /api/kitchen/items/{id}/status", h.advanceItem)

	mux.HandleFunc("GET /api/transactions", h.getTransactions)
	mux.HandleFunc("GET /api/receipts/{id}", h.getReceipt)
	mux.HandleFunc("GET /api/notifications", h.getNotifications)
	mux.HandleFunc("DELETE /api/notifications/{id}", h.dismissNotification)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch terminal.Classify(err) {
	case terminal.KindValidation:
		return http.StatusUnprocessableEntity
	case terminal.KindForbidden:
		return http.StatusForbidden
	case terminal.KindBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(terminal.Message(err)) })
		})
	})
}

// errBadRequest marks a body that is not the expected JSON.
var errBadRequest = errors.New("malformed request body")

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(err.Error()) })
		})
	})
}

// readJSON decodes the request body as one object, calling field for every
// key. An empty body is an empty object.
func readJSON(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := jx.DecodeBytes(data).Obj(field); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	return nil
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
