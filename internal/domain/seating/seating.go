// Package seating tracks where an order is served: a table on a floor, or a
// walk-in with no table at all.
package seating

import (
	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/domain/floor"
)

// WalkInLabel is the floor and table name used for walk-in orders.
const WalkInLabel = "Walk-in"

var (
	// ErrSelectionRequired is returned when checkout is attempted without a
	// floor and table and without walk-in.
	ErrSelectionRequired = errors.New("select a floor and table, or enable walk-in order")
	// ErrNoFloor is returned when a table is selected before a floor.
	ErrNoFloor = errors.New("select a floor first")
	// ErrTableNotOnFloor is returned when the table is not on the selected floor.
	ErrTableNotOnFloor = errors.New("table is not on the selected floor")
)

// Selection holds the floor/table/walk-in choice. The zero value has nothing
// selected.
type Selection struct {
	floor  *floor.Floor
	table  *floor.Table
	walkIn bool
}

// SelectFloor chooses a floor and clears the table and walk-in flag.
func (s *Selection) SelectFloor(f floor.Floor) {
	s.floor = &f
	s.table = nil
	s.walkIn = false
}

// SelectTable chooses a table on the selected floor.
func (s *Selection) SelectTable(t floor.Table) error {
	if s.floor == nil {
		return ErrNoFloor
	}
	if t.FloorID != s.floor.ID {
		return errors.Wrapf(ErrTableNotOnFloor, "table %s on floor %s", t.ID, s.floor.ID)
	}
	s.table = &t
	return nil
}

// SetWalkIn toggles walk-in mode. Enabling it clears floor and table.
func (s *Selection) SetWalkIn(on bool) {
	s.walkIn = on
	if on {
		s.floor = nil
		s.table = nil
	}
}

// Restore installs a selection loaded from a previously submitted order.
// Empty floor and table IDs mean walk-in.
func (s *Selection) Restore(f *floor.Floor, t *floor.Table) {
	s.floor, s.table = f, t
	s.walkIn = f == nil && t == nil
}

// Reset clears everything.
func (s *Selection) Reset() {
	*s = Selection{}
}

// Floor returns the selected floor, if any.
func (s *Selection) Floor() (floor.Floor, bool) {
	if s.floor == nil {
		return floor.Floor{}, false
	}
	return *s.floor, true
}

// Table returns the selected table, if any.
func (s *Selection) Table() (floor.Table, bool) {
	if s.table == nil {
		return floor.Table{}, false
	}
	return *s.table, true
}

// WalkIn reports whether walk-in mode is on.
func (s *Selection) WalkIn() bool {
	return s.walkIn
}

// Ready reports whether checkout may proceed: walk-in, or both a floor and a
// table are selected.
func (s *Selection) Ready() bool {
	return s.walkIn || (s.floor != nil && s.table != nil)
}

// Check returns ErrSelectionRequired unless Ready.
func (s *Selection) Check() error {
	if !s.Ready() {
		return ErrSelectionRequired
	}
	return nil
}

// FloorName returns the name to print for the floor.
func (s *Selection) FloorName() string {
	switch {
	case s.walkIn:
		return WalkInLabel
	case s.floor != nil:
		return s.floor.Name
	default:
		return "N/A"
	}
}

// Label returns the table name shown for the current order.
func (s *Selection) Label() string {
	switch {
	case s.table != nil:
		return s.table.Name
	case s.walkIn:
		return WalkInLabel
	default:
		return "No Table Selected"
	}
}
