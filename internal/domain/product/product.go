package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product is not in the catalog.
var ErrNotFound = errors.New("product not found")

// Uncategorized is the category assigned to products the backend sends
// without one.
const Uncategorized = "Uncategorized"

// AllCategories selects every category in Catalog.Filter.
const AllCategories = "All"

// Product is a menu item as the backend sends it. Price is captured at fetch
// time and travels with cart lines as a snapshot.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	Category      string
	StockQuantity int
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Source lists the full product catalog.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
}

// Catalog is a read-only view of products grouped by category.
type Catalog struct {
	categories []string
	byCategory map[string][]Product
	byID       map[string]Product
}

// NewCatalog groups products by category, keeping the order in which
// categories and products first appear.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		byCategory: make(map[string][]Product),
		byID:       make(map[string]Product, len(products)),
	}
	for _, p := range products {
		if p.Category == "" {
			p.Category = Uncategorized
		}
		if _, ok := c.byCategory[p.Category]; !ok {
			c.categories = append(c.categories, p.Category)
		}
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
		c.byID[p.ID] = p
	}
	return c
}

// Get returns the product with the given ID.
func (c *Catalog) Get(id string) (Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Categories returns AllCategories followed by every category in catalog order.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.categories)+1)
	out = append(out, AllCategories)
	return append(out, c.categories...)
}

// Group returns the products of a single category.
func (c *Catalog) Group(category string) []Product {
	return append([]Product(nil), c.byCategory[category]...)
}

// Len returns the number of distinct products.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Filter returns products of the category (or all of them for AllCategories)
// whose name contains search, case-insensitively. An empty search matches
// everything.
func (c *Catalog) Filter(category, search string) []Product {
	var candidates []Product
	if category == "" || category == AllCategories {
		for _, name := range c.categories {
			candidates = append(candidates, c.byCategory[name]...)
		}
	} else {
		candidates = c.byCategory[category]
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Product, 0, len(candidates))
	for _, p := range candidates {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
