// Package transaction filters and summarizes completed sales for the
// history report.
package transaction

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/domain/seating"
)

// Range limits transactions by order date.
type Range string

const (
	RangeToday      Range = "Today"
	RangeLast7Days  Range = "Last 7 Days"
	RangeLast30Days Range = "Last 30 Days"
	RangeAllTime    Range = "All Time"
)

// Source splits transactions into table orders and walk-ins.
type Source string

const (
	SourceAll   Source = "All"
	SourceTable Source = "Table Orders"
	SourceWalk  Source = "Walk-in"
)

// PaymentAll disables the payment method filter.
const PaymentAll = "All"

var (
	// ErrUnknownRange is returned by ParseRange.
	ErrUnknownRange = errors.New("unknown date range")
	// ErrUnknownSource is returned by ParseSource.
	ErrUnknownSource = errors.New("unknown order source")
)

const day = 24 * time.Hour

// ParseRange parses a range label case-insensitively. Empty means Today.
func ParseRange(s string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return RangeToday, nil
	case "last 7 days", "7d":
		return RangeLast7Days, nil
	case "last 30 days", "30d":
		return RangeLast30Days, nil
	case "all time", "all":
		return RangeAllTime, nil
	}
	return "", errors.Wrapf(ErrUnknownRange, "%q", s)
}

// ParseSource parses an order source label case-insensitively. Empty means
// All.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return SourceAll, nil
	case "table orders", "table":
		return SourceTable, nil
	case "walk-in", "walkin", "walk":
		return SourceWalk, nil
	}
	return "", errors.Wrapf(ErrUnknownSource, "%q", s)
}

// Filter selects transactions for the report.
type Filter struct {
	Range         Range
	PaymentMethod string
	Source        Source
	Search        string
}

// IsWalkIn reports a transaction that was not served at a table.
func IsWalkIn(t order.Transaction) bool {
	return t.TableName == "" || t.TableName == seating.WalkInLabel
}

// Apply returns the transactions matching f, in input order. Today compares
// calendar days in now's location, the rolling ranges compare elapsed time.
func Apply(txs []order.Transaction, f Filter, now time.Time) []order.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []order.Transaction
	for _, t := range txs {
		if !inRange(t.OrderDate, f.Range, now) {
			continue
		}
		if f.PaymentMethod != "" && f.PaymentMethod != PaymentAll &&
			!strings.EqualFold(t.PaymentType, f.PaymentMethod) {
			continue
		}
		switch f.Source {
		case SourceTable:
			if IsWalkIn(t) {
				continue
			}
		case SourceWalk:
			if !IsWalkIn(t) {
				continue
			}
		}
		if search != "" && !matches(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func inRange(at time.Time, r Range, now time.Time) bool {
	switch r {
	case RangeAllTime:
		return true
	case RangeLast7Days:
		return now.Sub(at) < 7*day
	case RangeLast30Days:
		return now.Sub(at) < 30*day
	default:
		a, b := at.In(now.Location()), now
		return a.Year() == b.Year() && a.YearDay() == b.YearDay()
	}
}

func matches(t order.Transaction, search string) bool {
	for _, field := range []string{
		t.TransactionID,
		t.OrderID,
		t.CashierUsername,
		t.WaiterUsername,
		t.TableName,
		t.PaymentType,
	} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Summary aggregates a set of transactions.
type Summary struct {
	TotalSales  decimal.Decimal
	Count       int
	TableOrders int
	WalkIns     int
}

// Summarize totals final amounts and counts table orders against walk-ins.
func Summarize(txs []order.Transaction) Summary {
	s := Summary{TotalSales: decimal.Zero, Count: len(txs)}
	for _, t := range txs {
		s.TotalSales = s.TotalSales.Add(t.FinalTotal)
		if IsWalkIn(t) {
			s.WalkIns++
		} else {
			s.TableOrders++
		}
	}
	s.TotalSales = s.TotalSales.Round(2)
	return s
}
