package terminal

import (
	"github.com/go-faster/errors"

	"github.com/xenking/pos-terminal/internal/domain/auth"
	"github.com/xenking/pos-terminal/internal/domain/floor"
	"github.com/xenking/pos-terminal/internal/domain/product"
)

// Menu is the product listing for one category and search term.
type Menu struct {
	Categories []string
	Category   string
	Products   []product.Product
}

// Menu lists products in category matching search. An empty category means
// all of them.
func (t *Terminal) Menu(category, search string) Menu {
	if category == "" {
		category = product.AllCategories
	}
	c := t.catalog.Snapshot().Catalog
	return Menu{
		Categories: c.Categories(),
		Category:   category,
		Products:   c.Filter(category, search),
	}
}

// Floors lists the dining areas.
func (t *Terminal) Floors() []floor.Floor {
	return t.catalog.Snapshot().Floors
}

// Tables lists the tables on floorID, or every table when floorID is empty.
func (t *Terminal) Tables(floorID string) []floor.Table {
	tables := t.catalog.Snapshot().Tables
	if floorID == "" {
		return tables
	}
	return floor.TablesOn(tables, floorID)
}

// AddToCart adds one unit of a catalog product.
func (t *Terminal) AddToCart(productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	p, err := t.catalog.Snapshot().Catalog.Get(productID)
	if err != nil {
		return t.fail(errors.Wrapf(err, "product %s", productID))
	}
	if err := t.cart.Add(p); err != nil {
		return t.fail(err)
	}
	return nil
}

// SetQuantity replaces a line's quantity. Zero or less removes it. Stock is
// checked against the catalog, or against the line's snapshot for products
// the catalog no longer lists.
func (t *Terminal) SetQuantity(productID string, quantity int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	p, err := t.catalog.Snapshot().Catalog.Get(productID)
	if err != nil {
		found := false
		for _, l := range t.cart.Lines() {
			if l.Product.ID == productID {
				p, found = l.Product, true
				break
			}
		}
		if !found {
			return t.fail(errors.Wrapf(err, "product %s", productID))
		}
	}
	if err := t.cart.SetQuantity(p, quantity); err != nil {
		return t.fail(err)
	}
	return nil
}

// RemoveFromCart drops a line.
func (t *Terminal) RemoveFromCart(productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	t.cart.Remove(productID)
	return nil
}

// ResetOrder discards the cart, the selection and any loaded order.
func (t *Terminal) ResetOrder() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetOrder()
}

// SelectFloor chooses a floor and clears the table.
func (t *Terminal) SelectFloor(floorID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	f, ok := floor.FindFloor(t.catalog.Snapshot().Floors, floorID)
	if !ok {
		return t.fail(errors.Wrapf(ErrFloorNotFound, "floor %s", floorID))
	}
	t.sel.SelectFloor(f)
	return nil
}

// SelectTable chooses a table on the selected floor.
func (t *Terminal) SelectTable(tableID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	tb, ok := floor.FindTable(t.catalog.Snapshot().Tables, tableID)
	if !ok {
		return t.fail(errors.Wrapf(ErrTableNotFound, "table %s", tableID))
	}
	if err := t.sel.SelectTable(tb); err != nil {
		return t.fail(err)
	}
	return nil
}

// SetWalkIn toggles walk-in mode.
func (t *Terminal) SetWalkIn(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.editable(); err != nil {
		return t.fail(err)
	}
	t.sel.SetWalkIn(on)
	return nil
}

// editable reports whether the current user may change the order in
// progress.
func (t *Terminal) editable() error {
	u, err := t.user()
	if err != nil {
		return err
	}
	if err := auth.Require(u, auth.PermTakeOrders); err != nil {
		return err
	}
	if t.confirmation != nil {
		return ErrConfirmationOpen
	}
	return nil
}
