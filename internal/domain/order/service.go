package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/checkout"
)

// Sentinel errors for order validation.
var (
	ErrUnderpaid    = errors.New("amount paid cannot be less than the final total after discount")
	ErrEmptyOrderID = errors.New("order id required")
)

// Backend persists orders. Implemented by the REST client.
type Backend interface {
	CreateOrder(ctx context.Context, d Draft) (*Created, error)
	CompleteOrder(ctx context.Context, orderID string, p Payment) (*Completion, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status Status) error
}

// ReceiptJournal archives issued receipts for reprint.
type ReceiptJournal interface {
	Save(ctx context.Context, r *Receipt) error
}

// Service drives orders through their lifecycle. Every transition is checked
// against the order's last known status before the backend is called.
type Service struct {
	backend Backend
	journal ReceiptJournal
	lg      *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates an order Service. A nil journal disables archiving.
func NewService(
	backend Backend,
	journal ReceiptJournal,
	lg *zap.Logger,
	tp trace.TracerProvider,
) *Service {
	return &Service{
		backend: backend,
		journal: journal,
		lg:      lg,
		tracer:  tp.Tracer("pos-terminal/order"),
		now:     time.Now,
	}
}

// Submit sends a new pending order and returns the backend's answer.
func (s *Service) Submit(ctx context.Context, u *auth.User, d Draft) (_ *Created, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit",
		trace.WithAttributes(attribute.Int("order.items", len(d.Items))),
	)
	defer func() { endSpan(span, rerr) }()

	if err := auth.Require(u, auth.PermTakeOrders); err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		return nil, ErrEmptyDraft
	}

	created, err := s.backend.CreateOrder(ctx, d)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	span.SetAttributes(attribute.String("order.id", created.OrderID))
	s.lg.Info("order submitted",
		zap.String("order_id", created.OrderID),
		zap.String("table", d.TableName),
		zap.Stringer("final_total", d.Figures.FinalTotal),
	)
	return created, nil
}

// Complete records payment for o and returns its receipt. The backend state
// is unchanged if the call fails. A receipt that cannot be archived is
// logged and still returned.
func (s *Service) Complete(ctx context.Context, u *auth.User, o *Order, f checkout.Figures) (_ *Receipt, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Complete",
		trace.WithAttributes(attribute.String("order.id", o.ID)),
	)
	defer func() { endSpan(span, rerr) }()

	if err := auth.Require(u, auth.PermCompleteOrder); err != nil {
		return nil, err
	}
	if o.ID == "" {
		return nil, ErrEmptyOrderID
	}
	if err := CheckTransition(o.Status, StatusCompleted); err != nil {
		return nil, err
	}
	if f.Underpaid() {
		return nil, ErrUnderpaid
	}

	p := Payment{Figures: f, CashierID: u.ID}
	c, err := s.backend.CompleteOrder(ctx, o.ID, p)
	if err != nil {
		return nil, errors.Wrapf(err, "complete order %s", o.ID)
	}

	r := BuildReceipt(o, p, c, u.Username, s.now())
	if r.TransactionID == "" {
		s.lg.Warn("completed order has no transaction id", zap.String("order_id", o.ID))
	}
	if s.journal != nil {
		if err := s.journal.Save(ctx, r); err != nil {
			s.lg.Error("archive receipt", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	s.lg.Info("order completed",
		zap.String("order_id", o.ID),
		zap.String("transaction_id", r.TransactionID),
		zap.String("payment_type", string(f.PaymentType)),
	)
	return r, nil
}

// MarkServed moves o to served.
func (s *Service) MarkServed(ctx context.Context, u *auth.User, o *Order) error {
	return s.setStatus(ctx, u, o, StatusServed, auth.PermMarkServed)
}

// Cancel moves o to cancelled.
func (s *Service) Cancel(ctx context.Context, u *auth.User, o *Order) error {
	return s.setStatus(ctx, u, o, StatusCancelled, auth.PermCancelOrder)
}

func (s *Service) setStatus(ctx context.Context, u *auth.User, o *Order, to Status, perm auth.Permission) (rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.SetStatus",
		trace.WithAttributes(
			attribute.String("order.id", o.ID),
			attribute.String("order.status", string(to)),
		),
	)
	defer func() { endSpan(span, rerr) }()

	if err := auth.Require(u, perm); err != nil {
		return err
	}
	if o.ID == "" {
		return ErrEmptyOrderID
	}
	if err := CheckTransition(o.Status, to); err != nil {
		return err
	}
	if err := s.backend.UpdateOrderStatus(ctx, o.ID, to); err != nil {
		return errors.Wrapf(err, "set order %s %s", o.ID, to)
	}
	s.lg.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(to)),
	)
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
