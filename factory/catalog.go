/*
Package factory provides JSON to Go catalog conversion.

PURPOSE:
  Converts a JSON price list into a billing.Catalog so the clinic can
  change medicines, stock and procedure prices without a rebuild.

JSON SCHEMA:
  {
    "medicines": [
      {"name": "Vaksin Rabies", "stock": 50, "unit_price": 150000}
    ],
    "procedures": [
      {"name": "Konsultasi Umum", "price": 50000}
    ]
  }

KEY FEATURES:
  - Rejects unknown fields and trailing data
  - Validates every item (non-empty name, stock >= 0, price >= 0)
  - Rejects duplicate names
  - Ships the clinic's default list (DefaultCatalogJSON)

USAGE:
  f := factory.NewCatalogFactory()
  catalog, err := f.ParseCatalog(factory.DefaultCatalogJSON)

SEE ALSO:
  - billing/catalog.go: Catalog type definition
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vetcare/clinic-engine/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of a catalog.
type CatalogJSON struct {
	Medicines  []MedicineJSON  `json:"medicines"`
	Procedures []ProcedureJSON `json:"procedures"`
}

type MedicineJSON struct {
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	UnitPrice int64  `json:"unit_price"`
}

type ProcedureJSON struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// DefaultCatalogJSON is the list the clinic opened with.
const DefaultCatalogJSON = `{
  "medicines": [
    {"name": "Vaksin Rabies", "stock": 50, "unit_price": 150000},
    {"name": "Obat Cacing", "stock": 100, "unit_price": 25000}
  ],
  "procedures": [
    {"name": "Konsultasi Umum", "price": 50000},
    {"name": "Operasi Steril", "price": 750000}
  ]
}`

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts JSON catalogs to billing.Catalog.
type CatalogFactory struct{}

func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// ParseCatalog parses and validates a JSON catalog definition.
func (f *CatalogFactory) ParseCatalog(jsonStr string) (*billing.Catalog, error) {
	return f.Decode(bytes.NewReader([]byte(jsonStr)))
}

// LoadFile reads a catalog definition from disk.
func (f *CatalogFactory) LoadFile(path string) (*billing.Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()
	return f.Decode(file)
}

// Decode reads exactly one JSON catalog from r.
func (f *CatalogFactory) Decode(r io.Reader) (*billing.Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cj CatalogJSON
	if err := dec.Decode(&cj); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid catalog JSON: trailing data after catalog object")
	}
	return f.Build(cj)
}

// Build converts a decoded definition into a catalog.
func (f *CatalogFactory) Build(cj CatalogJSON) (*billing.Catalog, error) {
	medicines := make([]billing.MedicineItem, 0, len(cj.Medicines))
	for i, m := range cj.Medicines {
		item, err := billing.NewMedicineItem(m.Name, m.Stock, billing.Money(m.UnitPrice))
		if err != nil {
			return nil, fmt.Errorf("medicines[%d]: %w", i, err)
		}
		medicines = append(medicines, item)
	}

	procedures := make([]billing.ProcedureItem, 0, len(cj.Procedures))
	for i, p := range cj.Procedures {
		item, err := billing.NewProcedureItem(p.Name, billing.Money(p.Price))
		if err != nil {
			return nil, fmt.Errorf("procedures[%d]: %w", i, err)
		}
		procedures = append(procedures, item)
	}

	return billing.NewCatalog(medicines, procedures)
}

// Export converts a catalog back to its JSON definition.
func (f *CatalogFactory) Export(c *billing.Catalog) CatalogJSON {
	var cj CatalogJSON
	for _, m := range c.ListMedicines() {
		cj.Medicines = append(cj.Medicines, MedicineJSON{Name: m.Name, Stock: m.Stock, UnitPrice: int64(m.UnitPrice)})
	}
	for _, p := range c.ListProcedures() {
		cj.Procedures = append(cj.Procedures, ProcedureJSON{Name: p.Name, Price: int64(p.Price)})
	}
	return cj
}
