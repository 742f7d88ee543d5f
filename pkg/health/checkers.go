package health

import (
	"context"
	"runtime"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than threshold goroutines run, which
// points at leaked pollers.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// FreshnessCheck fails until loadedAt reports a non-zero time, and when it is
// older than maxAge. A zero maxAge only requires the first load.
func FreshnessCheck(loadedAt func() time.Time, maxAge time.Duration, now func() time.Time) CheckFunc {
	if now == nil {
		now = time.Now
	}
	return func(_ context.Context) error {
		at := loadedAt()
		if at.IsZero() {
			return errors.New("not loaded yet")
		}
		if age := now().Sub(at); maxAge > 0 && age > maxAge {
			return errors.Errorf("last refresh %s ago exceeds %s", age.Truncate(time.Second), maxAge)
		}
		return nil
	}
}
