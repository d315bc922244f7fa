/*
Package billing provides the clinic's checkout and inventory-consistency engine.

PURPOSE:
  Prices a selection of procedures and medicines, decrements medicine stock,
  records the completed transaction in an append-only ledger and renders a
  plain-text invoice. Stock and ledger change together or not at all.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: integer count of the smallest currency unit
  - MedicineItem / ProcedureItem: catalog entries
  - Category: procedure-only, medicine-only or mixed transaction
  - TransactionRecord: immutable ledger entry, identified by its position

DESIGN PRINCIPLES:
  1. Immutability: records are never edited after they are appended
  2. Precision: money is an integer, no rounding anywhere
  3. Snapshots: records copy item names by value, later catalog edits
     never rewrite history

SEE ALSO:
  - catalog.go: price lists and stock
  - checkout.go: the checkout engine
  - ledger.go: transaction log
*/
package billing

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// MONEY
// =============================================================================

// Money is a count of the smallest currency unit (one rupiah).
type Money int64

var moneyPrinter = message.NewPrinter(language.English)

// String formats the amount with thousands separators, e.g. 75,000.
func (m Money) String() string {
	return moneyPrinter.Sprintf("%d", int64(m))
}

// =============================================================================
// CATALOG ITEMS
// =============================================================================

// MedicineItem is a stocked medicine. Stock is never negative.
type MedicineItem struct {
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	UnitPrice Money  `json:"unit_price"`
}

// NewMedicineItem validates and builds a medicine entry.
func NewMedicineItem(name string, stock int, unitPrice Money) (MedicineItem, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return MedicineItem{}, fmt.Errorf("%w: medicine name is required", ErrInvalidItem)
	case stock < 0:
		return MedicineItem{}, fmt.Errorf("%w: stock of %q must not be negative", ErrInvalidItem, name)
	case unitPrice < 0:
		return MedicineItem{}, fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, name)
	}
	return MedicineItem{Name: name, Stock: stock, UnitPrice: unitPrice}, nil
}

// ProcedureItem is a billable procedure. Procedures have no stock.
type ProcedureItem struct {
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// NewProcedureItem validates and builds a procedure entry.
func NewProcedureItem(name string, price Money) (ProcedureItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProcedureItem{}, fmt.Errorf("%w: procedure name is required", ErrInvalidItem)
	}
	if price < 0 {
		return ProcedureItem{}, fmt.Errorf("%w: price of %q must not be negative", ErrInvalidItem, name)
	}
	return ProcedureItem{Name: name, Price: price}, nil
}

// =============================================================================
// CATEGORY
// =============================================================================

type Category string

const (
	CategoryProcedure Category = "procedure"
	CategoryMedicine  Category = "medicine"
	CategoryMixed     Category = "mixed"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryProcedure, CategoryMedicine, CategoryMixed}

// ParseCategory accepts the canonical names, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CategoryOf classifies a selection. Both lists empty is an error:
// a transaction with nothing in it is never recorded.
func CategoryOf(procedures, medicines []string) (Category, error) {
	switch {
	case len(procedures) == 0 && len(medicines) == 0:
		return "", ErrEmptySelection
	case len(procedures) == 0:
		return CategoryMedicine, nil
	case len(medicines) == 0:
		return CategoryProcedure, nil
	default:
		return CategoryMixed, nil
	}
}

// =============================================================================
// TRANSACTION RECORD
// =============================================================================

// TransactionRecord is one completed checkout.
// Position is assigned by the ledger on append and is the record's identity.
type TransactionRecord struct {
	Position       int       `json:"position"`
	Date           string    `json:"date"`  // YYYY-MM-DD
	Month          string    `json:"month"` // YYYY-MM
	PatientLabel   string    `json:"patient_label"`
	Procedures     []string  `json:"procedures"`
	Medicines      []string  `json:"medicines"`
	Total          Money     `json:"total"`
	Category       Category  `json:"category"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// clone returns a copy that shares no slices with r.
func (r TransactionRecord) clone() TransactionRecord {
	r.Procedures = append([]string(nil), r.Procedures...)
	r.Medicines = append([]string(nil), r.Medicines...)
	return r
}
