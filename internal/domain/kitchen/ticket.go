// Package kitchen tracks ordered items through preparation for the kitchen
// display.
package kitchen

import (
	"context"
	"sort"
	"time"

	"github.com/xenking/pos-terminal/internal/domain/order"
)

// Item is an ordered item awaiting preparation, with its order context.
type Item struct {
	ItemID        string
	OrderID       string
	TransactionID string
	ProductName   string
	Quantity      int
	Status        order.ItemStatus
	FloorName     string
	TableName     string
	OrderDate     time.Time
}

// Ticket is the items of one order at one table, shown as a single card.
type Ticket struct {
	OrderID       string
	TransactionID string
	FloorName     string
	TableName     string
	OrderDate     time.Time
	Items         []Item
}

// Source lists pending kitchen items and updates their status.
type Source interface {
	PendingItems(ctx context.Context) ([]Item, error)
	UpdateItemStatus(ctx context.Context, itemID string, status order.ItemStatus) error
}

type ticketKey struct {
	orderID, floor, table string
}

// Group collects items into tickets keyed by order, floor and table, sorted
// by order date and then table name. Items keep their input order within a
// ticket.
func Group(items []Item) []Ticket {
	idx := make(map[ticketKey]int)
	var tickets []Ticket
	for _, it := range items {
		k := ticketKey{it.OrderID, it.FloorName, it.TableName}
		i, ok := idx[k]
		if !ok {
			i = len(tickets)
			idx[k] = i
			tickets = append(tickets, Ticket{
				OrderID:       it.OrderID,
				TransactionID: it.TransactionID,
				FloorName:     it.FloorName,
				TableName:     it.TableName,
				OrderDate:     it.OrderDate,
			})
		}
		tickets[i].Items = append(tickets[i].Items, it)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.Before(b.OrderDate)
		}
		return a.TableName < b.TableName
	})
	return tickets
}
