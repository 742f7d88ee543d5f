package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/pos-terminal/internal/domain/transaction"
	"github.com/xenking/pos-terminal/internal/notify"
)

func (h *Handler) getPendingOrders(w http.ResponseWriter, _ *http.Request) {
	orders := h.term.PendingOrders()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { list(e, orders, encodeOrder) })
}

func (h *Handler) loadPendingOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.term.LoadPendingOrder(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) markServed(w http.ResponseWriter, r *http.Request) {
	if err := h.term.MarkServed(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.term.CancelOrder(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	in, err := readPayment(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	receipt, err := h.term.CompleteOrder(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeReceipt(e, receipt) })
}

func (h *Handler) getKitchen(w http.ResponseWriter, r *http.Request) {
	v, err := h.term.Kitchen()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeKitchen(e, v) })
}

func (h *Handler) advanceItem(w http.ResponseWriter, r *http.Request) {
	status, err := readStatus(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.term.AdvanceItem(r.Context(), r.PathValue("id"), status); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

// getTransactions filters the history by the range, payment, source and
// search query parameters. The range defaults to today.
func (h *Handler) getTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := transaction.ParseRange(q.Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	src, err := transaction.ParseSource(q.Get("source"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.term.Transactions(transaction.Filter{
		Range:         rng,
		PaymentMethod: q.Get("payment"),
		Source:        src,
		Search:        q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeReport(e, report) })
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.term.Receipt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeReceipt(e, receipt) })
}

func (h *Handler) getNotifications(w http.ResponseWriter, _ *http.Request) {
	active := h.term.Notifications()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		list(e, active, func(e *jx.Encoder, n notify.Notification) { encodeNotification(e, n) })
	})
}

func (h *Handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	if !h.term.Dismiss(r.PathValue("id")) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	noContent(w)
}
