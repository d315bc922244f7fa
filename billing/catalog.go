/*
catalog.go - Medicine and procedure price lists

PURPOSE:
  Holds the two read-mostly price lists the front desk picks from.
  Medicines carry stock; procedures only carry a price.

CRITICAL INVARIANTS:
  1. Stock is never negative, not even transiently.
  2. Names are unique within each list.
  3. Consume is all-or-nothing: every name is validated before any stock
     moves, and a failed commit restores every decrement.

CONCURRENCY:
  One RWMutex guards both lists. Consume holds the write lock for the
  whole validate, apply, commit sequence, so two checkouts touching the
  same medicine are serialized and cannot both take the last unit.

SEE ALSO:
  - checkout.go: the only caller of Consume
  - factory/catalog.go: builds a Catalog from JSON
*/
package billing

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// CATALOG
// =============================================================================

type Catalog struct {
	mu         sync.RWMutex
	medicines  []MedicineItem
	procedures []ProcedureItem
	medIndex   map[string]int
	procIndex  map[string]int
}

// NewCatalog builds a catalog, keeping the given order for listings.
func NewCatalog(medicines []MedicineItem, procedures []ProcedureItem) (*Catalog, error) {
	c := &Catalog{
		medIndex:  make(map[string]int),
		procIndex: make(map[string]int),
	}
	for _, m := range medicines {
		if err := c.AddMedicine(m); err != nil {
			return nil, err
		}
	}
	for _, p := range procedures {
		if err := c.AddProcedure(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddMedicine registers a new medicine. The item is re-validated.
func (c *Catalog) AddMedicine(m MedicineItem) error {
	item, err := NewMedicineItem(m.Name, m.Stock, m.UnitPrice)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.medIndex[item.Name]; exists {
		return fmt.Errorf("%w: medicine %q", ErrDuplicateItem, item.Name)
	}
	c.medIndex[item.Name] = len(c.medicines)
	c.medicines = append(c.medicines, item)
	return nil
}

// AddProcedure registers a new procedure.
func (c *Catalog) AddProcedure(p ProcedureItem) error {
	item, err := NewProcedureItem(p.Name, p.Price)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.procIndex[item.Name]; exists {
		return fmt.Errorf("%w: procedure %q", ErrDuplicateItem, item.Name)
	}
	c.procIndex[item.Name] = len(c.procedures)
	c.procedures = append(c.procedures, item)
	return nil
}

// SetProcedurePrice edits a procedure's price. Recorded transactions keep
// the total they were billed at.
func (c *Catalog) SetProcedurePrice(name string, price Money) (ProcedureItem, error) {
	if price < 0 {
		return ProcedureItem{}, fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.procIndex[name]
	if !ok {
		return ProcedureItem{}, &NotFoundError{Kind: "procedure", Key: name}
	}
	c.procedures[i].Price = price
	return c.procedures[i], nil
}

// =============================================================================
// READS
// =============================================================================

// ListMedicines returns a copy of the medicine list in catalog order.
func (c *Catalog) ListMedicines() []MedicineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]MedicineItem(nil), c.medicines...)
}

// ListProcedures returns a copy of the procedure list in catalog order.
func (c *Catalog) ListProcedures() []ProcedureItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ProcedureItem(nil), c.procedures...)
}

func (c *Catalog) Medicine(name string) (MedicineItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.medIndex[name]
	if !ok {
		return MedicineItem{}, &NotFoundError{Kind: "medicine", Key: name}
	}
	return c.medicines[i], nil
}

func (c *Catalog) Procedure(name string) (ProcedureItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.procIndex[name]
	if !ok {
		return ProcedureItem{}, &NotFoundError{Kind: "procedure", Key: name}
	}
	return c.procedures[i], nil
}

// StockOf returns the current stock of a medicine.
func (c *Catalog) StockOf(name string) (int, error) {
	m, err := c.Medicine(name)
	if err != nil {
		return 0, err
	}
	return m.Stock, nil
}

// PriceOfProcedures sums the prices of the named procedures.
// Unknown names contribute 0 and each name is counted once.
func (c *Catalog) PriceOfProcedures(names []string) Money {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total Money
	for _, name := range UniqueNames(names) {
		if i, ok := c.procIndex[name]; ok {
			total += c.procedures[i].Price
		}
	}
	return total
}

// PriceOfMedicines sums the unit prices of the named medicines.
// Unknown names contribute 0 and each name is counted once.
func (c *Catalog) PriceOfMedicines(names []string) Money {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total Money
	for _, name := range UniqueNames(names) {
		if i, ok := c.medIndex[name]; ok {
			total += c.medicines[i].UnitPrice
		}
	}
	return total
}

// LowStock returns medicines whose stock is at or below threshold.
func (c *Catalog) LowStock(threshold int) []MedicineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var low []MedicineItem
	for _, m := range c.medicines {
		if m.Stock <= threshold {
			low = append(low, m)
		}
	}
	return low
}

// =============================================================================
// STOCK MOVEMENTS
// =============================================================================

// DecrementStock removes quantity units of a medicine.
func (c *Catalog) DecrementStock(name string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.medIndex[name]
	if !ok {
		return &NotFoundError{Kind: "medicine", Key: name}
	}
	if c.medicines[i].Stock < quantity {
		return &InsufficientStockError{Name: name, Available: c.medicines[i].Stock, Requested: quantity}
	}
	c.medicines[i].Stock -= quantity
	return nil
}

// Restock adds quantity units of a medicine and returns the new stock.
func (c *Catalog) Restock(name string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.medIndex[name]
	if !ok {
		return 0, &NotFoundError{Kind: "medicine", Key: name}
	}
	c.medicines[i].Stock += quantity
	return c.medicines[i].Stock, nil
}

// Consume takes one unit of every named medicine and then runs commit,
// all under the catalog write lock.
//
// Validation runs over every name before any stock moves; the first
// unknown or exhausted medicine aborts with nothing changed. If commit
// returns an error the decrements are undone and the error is returned.
func (c *Catalog) Consume(names []string, commit func() error) error {
	names = UniqueNames(names)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Validate all
	indexes := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := c.medIndex[name]
		if !ok {
			return &NotFoundError{Kind: "medicine", Key: name}
		}
		if c.medicines[i].Stock < 1 {
			return &InsufficientStockError{Name: name, Available: c.medicines[i].Stock, Requested: 1}
		}
		indexes = append(indexes, i)
	}

	// Apply all
	for _, i := range indexes {
		c.medicines[i].Stock--
	}

	if commit == nil {
		return nil
	}
	if err := commit(); err != nil {
		// Rollback
		for _, i := range indexes {
			c.medicines[i].Stock++
		}
		return err
	}
	return nil
}

// =============================================================================
// SELECTION HELPERS
// =============================================================================

// UniqueNames trims names, drops blanks and duplicates, and keeps the
// order of first appearance. A selection is a set: each name means one unit.
func UniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
