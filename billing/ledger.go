/*
ledger.go - Append-only transaction log

PURPOSE:
  The Ledger is the record of every completed checkout. Reporting reads it,
  nothing ever rewrites it.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete.
  2. ORDERED: Position is 1-based append order and is the record's identity.
  3. IDEMPOTENT: A non-empty idempotency key is recorded at most once.

AGGREGATES:
  Aggregate is a linear scan with conjunctive filters. A clinic records a
  few dozen transactions a day; no index is needed.

SEE ALSO:
  - store/memory.go: in-memory Store
  - store/sqlite/sqlite.go: SQLite Store
*/
package billing

import (
	"context"
	"strconv"
)

// =============================================================================
// STORE - Persistence interface (append-only)
// =============================================================================

// Store persists transaction records.
// IMPORTANT: Store is APPEND-ONLY. There is no Update and no Delete.
type Store interface {
	// Append persists rec, assigns its Position and returns the stored copy.
	// Returns ErrDuplicateCheckout if the idempotency key exists.
	Append(ctx context.Context, rec TransactionRecord) (TransactionRecord, error)

	// Load returns every record in append order.
	Load(ctx context.Context) ([]TransactionRecord, error)

	// Get returns the record at position, or nil if there is none.
	Get(ctx context.Context, position int) (*TransactionRecord, error)

	// Exists checks if an idempotency key was already recorded.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}

// =============================================================================
// LEDGER
// =============================================================================

// LedgerFilter selects records for Aggregate. Nil fields match everything.
type LedgerFilter struct {
	Date     *string
	Month    *string
	Category *Category
}

func (f LedgerFilter) matches(r TransactionRecord) bool {
	if f.Date != nil && r.Date != *f.Date {
		return false
	}
	if f.Month != nil && r.Month != *f.Month {
		return false
	}
	if f.Category != nil && r.Category != *f.Category {
		return false
	}
	return true
}

// Aggregate is the result of a filtered scan.
type Aggregate struct {
	Count int   `json:"count"`
	Sum   Money `json:"sum_total"`
}

type Ledger interface {
	Append(ctx context.Context, rec TransactionRecord) (TransactionRecord, error)
	All(ctx context.Context) ([]TransactionRecord, error)
	Get(ctx context.Context, position int) (TransactionRecord, error)
	Aggregate(ctx context.Context, filter LedgerFilter) (Aggregate, error)
}

// DefaultLedger implements Ledger on top of a Store.
type DefaultLedger struct {
	Store Store
}

func NewLedger(store Store) *DefaultLedger {
	return &DefaultLedger{Store: store}
}

func (l *DefaultLedger) Append(ctx context.Context, rec TransactionRecord) (TransactionRecord, error) {
	if rec.IdempotencyKey != "" {
		exists, err := l.Store.Exists(ctx, rec.IdempotencyKey)
		if err != nil {
			return TransactionRecord{}, err
		}
		if exists {
			return TransactionRecord{}, ErrDuplicateCheckout
		}
	}
	return l.Store.Append(ctx, rec.clone())
}

func (l *DefaultLedger) All(ctx context.Context) ([]TransactionRecord, error) {
	return l.Store.Load(ctx)
}

func (l *DefaultLedger) Get(ctx context.Context, position int) (TransactionRecord, error) {
	rec, err := l.Store.Get(ctx, position)
	if err != nil {
		return TransactionRecord{}, err
	}
	if rec == nil {
		return TransactionRecord{}, &NotFoundError{Kind: "transaction", Key: strconv.Itoa(position)}
	}
	return *rec, nil
}

func (l *DefaultLedger) Aggregate(ctx context.Context, filter LedgerFilter) (Aggregate, error) {
	recs, err := l.Store.Load(ctx)
	if err != nil {
		return Aggregate{}, err
	}

	var agg Aggregate
	for _, r := range recs {
		if !filter.matches(r) {
			continue
		}
		agg.Count++
		agg.Sum += r.Total
	}
	return agg, nil
}
