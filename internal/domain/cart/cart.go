// Package cart holds the in-progress order lines of a terminal session.
//
// A Cart is not safe for concurrent use; the owning terminal serializes
// access to it.
package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-terminal/internal/domain/product"
)

var (
	// ErrOutOfStock is returned when adding a product with no stock.
	ErrOutOfStock = errors.New("out of stock")
	// ErrStockExceeded is returned when a quantity would exceed stock.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrLineNotFound is returned when changing a line that is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
)

// StockError describes a rejected cart change. It unwraps to ErrOutOfStock
// or ErrStockExceeded.
type StockError struct {
	ProductName string
	Available   int
	Err         error
}

func (e *StockError) Error() string {
	if errors.Is(e.Err, ErrOutOfStock) {
		return fmt.Sprintf("%q is out of stock", e.ProductName)
	}
	return fmt.Sprintf("cannot add more than available stock for %s: only %d in stock", e.ProductName, e.Available)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// Line is a product snapshot and its quantity. The snapshot price is used for
// totals so a submitted order keeps its price if the catalog changes.
type Line struct {
	Product  product.Product
	Quantity int
}

// Subtotal returns price * quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines, at most one per product.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart. An existing line is incremented only
// while the new quantity stays within p.StockQuantity.
func (c *Cart) Add(p product.Product) error {
	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Quantity+1 > p.StockQuantity {
			return &StockError{ProductName: p.Name, Available: p.StockQuantity, Err: ErrStockExceeded}
		}
		c.lines[i].Quantity++
		return nil
	}
	if !p.InStock() {
		return &StockError{ProductName: p.Name, Available: p.StockQuantity, Err: ErrOutOfStock}
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: 1})
	return nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes the line; a quantity above p's stock is rejected.
func (c *Cart) SetQuantity(p product.Product, quantity int) error {
	i := c.index(p.ID)
	if quantity <= 0 {
		if i >= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return nil
	}
	if quantity > p.StockQuantity {
		return &StockError{ProductName: p.Name, Available: p.StockQuantity, Err: ErrStockExceeded}
	}
	if i < 0 {
		return errors.Wrapf(ErrLineNotFound, "product %s", p.ID)
	}
	c.lines[i].Quantity = quantity
	return nil
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Replace discards the current lines and installs lines, skipping any with a
// non-positive quantity.
func (c *Cart) Replace(lines []Line) {
	c.lines = c.lines[:0]
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
}

// Reset empties the cart.
func (c *Cart) Reset() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total returns the sum of line subtotals.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
