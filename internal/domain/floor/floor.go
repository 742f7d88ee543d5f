package floor

import (
	"context"

	"github.com/go-faster/errors"
)

// TableStatus is the occupancy state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// ErrInvalidTableStatus is returned for a status outside the known set.
var ErrInvalidTableStatus = errors.New("invalid table status")

// ParseTableStatus validates a raw status value.
func ParseTableStatus(s string) (TableStatus, error) {
	switch st := TableStatus(s); st {
	case TableAvailable, TableOccupied, TableReserved:
		return st, nil
	default:
		return "", errors.Wrapf(ErrInvalidTableStatus, "%q", s)
	}
}

// Floor is a dining area.
type Floor struct {
	ID   string
	Name string
}

// Table is a table on a floor.
type Table struct {
	ID      string
	Name    string
	FloorID string
	Status  TableStatus
}

// Source lists floors and tables and flips table occupancy.
type Source interface {
	Floors(ctx context.Context) ([]Floor, error)
	Tables(ctx context.Context) ([]Table, error)
	UpdateTableStatus(ctx context.Context, tableID string, status TableStatus) error
}

// TablesOn returns the tables that belong to floorID, in input order.
func TablesOn(tables []Table, floorID string) []Table {
	if floorID == "" {
		return nil
	}
	var out []Table
	for _, t := range tables {
		if t.FloorID == floorID {
			out = append(out, t)
		}
	}
	return out
}

// FindFloor looks up a floor by ID.
func FindFloor(floors []Floor, id string) (Floor, bool) {
	for _, f := range floors {
		if f.ID == id {
			return f, true
		}
	}
	return Floor{}, false
}

// FindTable looks up a table by ID.
func FindTable(tables []Table, id string) (Table, bool) {
	for _, t := range tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}
