/*
checkout.go - Checkout engine

PURPOSE:
  Turns a front-desk selection into a recorded transaction:
  price it, take the medicines out of stock, append the ledger entry.

ALGORITHM:
  1. Normalize both selections to sets (one unit per medicine name)
  2. Derive the category; nothing selected -> ErrEmptySelection
  3. Reject unknown procedure names
  4. Total = procedure prices + medicine unit prices
  5. Catalog.Consume: validate every medicine has stock, decrement all,
     then append the record to the ledger inside the same critical section.
     A ledger failure rolls the decrements back.

ATOMICITY:
  Either stock moves AND the ledger grows by one record, or neither
  changes. A multi-item cart that fails on its third medicine leaves the
  first two untouched.

RETRIES:
  None. InsufficientStockError goes back to the caller, who re-prompts.

SEE ALSO:
  - catalog.go: Consume
  - ledger.go: Append
  - invoice.go: renders the returned record
*/
package billing

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CheckoutRequest is one confirmed cart.
type CheckoutRequest struct {
	PatientLabel string
	Procedures   []string
	Medicines    []string

	// IdempotencyKey, when set, makes a resubmitted form a no-op
	// that fails with ErrDuplicateCheckout.
	IdempotencyKey string
}

// Quote is a priced selection that has not been recorded.
type Quote struct {
	Procedures     []string `json:"procedures"`
	Medicines      []string `json:"medicines"`
	ProcedureTotal Money    `json:"procedure_total"`
	MedicineTotal  Money    `json:"medicine_total"`
	Total          Money    `json:"total"`
	Category       Category `json:"category"`
}

// Engine runs checkouts against one catalog and one ledger.
type Engine struct {
	catalog *Catalog
	ledger  Ledger
	now     Clock
	logger  *zap.Logger
}

type EngineOption func(*Engine)

// WithClock overrides time.Now for date bucketing.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) { e.now = clock }
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(catalog *Catalog, ledger Ledger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		ledger:  ledger,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *Catalog { return e.catalog }
func (e *Engine) Ledger() Ledger    { return e.ledger }

// Quote prices a selection without touching stock or the ledger.
// Stock is not checked: it can change before the cart is confirmed.
func (e *Engine) Quote(procedures, medicines []string) (Quote, error) {
	procedures = UniqueNames(procedures)
	medicines = UniqueNames(medicines)

	category, err := CategoryOf(procedures, medicines)
	if err != nil {
		return Quote{}, err
	}
	for _, name := range procedures {
		if _, err := e.catalog.Procedure(name); err != nil {
			return Quote{}, err
		}
	}
	for _, name := range medicines {
		if _, err := e.catalog.Medicine(name); err != nil {
			return Quote{}, err
		}
	}

	q := Quote{
		Procedures:     procedures,
		Medicines:      medicines,
		ProcedureTotal: e.catalog.PriceOfProcedures(procedures),
		MedicineTotal:  e.catalog.PriceOfMedicines(medicines),
		Category:       category,
	}
	q.Total = q.ProcedureTotal + q.MedicineTotal
	return q, nil
}

// Checkout prices, applies and records one cart as a single unit.
func (e *Engine) Checkout(ctx context.Context, req CheckoutRequest) (TransactionRecord, error) {
	q, err := e.Quote(req.Procedures, req.Medicines)
	if err != nil {
		return TransactionRecord{}, err
	}

	now := e.now()
	rec := TransactionRecord{
		Date:           DateKey(now),
		Month:          MonthKey(now),
		PatientLabel:   strings.TrimSpace(req.PatientLabel),
		Procedures:     q.Procedures,
		Medicines:      q.Medicines,
		Total:          q.Total,
		Category:       q.Category,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
		CreatedAt:      now,
	}

	var stored TransactionRecord
	err = e.catalog.Consume(q.Medicines, func() error {
		var err error
		stored, err = e.ledger.Append(ctx, rec)
		return err
	})
	if err != nil {
		e.logger.Info("checkout rejected",
			zap.String("patient", rec.PatientLabel),
			zap.Strings("medicines", rec.Medicines),
			zap.Error(err))
		return TransactionRecord{}, err
	}

	e.logger.Info("checkout recorded",
		zap.Int("position", stored.Position),
		zap.String("patient", stored.PatientLabel),
		zap.String("category", string(stored.Category)),
		zap.Int64("total", int64(stored.Total)))
	return stored, nil
}
