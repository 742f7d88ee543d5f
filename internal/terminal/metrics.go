package terminal

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func (t *Terminal) initMetrics(mp metric.MeterProvider) error {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("pos-terminal/terminal")

	var err error
	if t.submitted, err = meter.Int64Counter("pos.orders.submitted",
		metric.WithDescription("Orders submitted as pending"),
	); err != nil {
		return errors.Wrap(err, "submitted counter")
	}
	if t.completed, err = meter.Int64Counter("pos.orders.completed",
		metric.WithDescription("Orders completed with payment"),
	); err != nil {
		return errors.Wrap(err, "completed counter")
	}
	if t.rejected, err = meter.Int64Counter("pos.checkout.rejected",
		metric.WithDescription("Checkout attempts blocked by validation"),
	); err != nil {
		return errors.Wrap(err, "rejected counter")
	}
	return nil
}
