// Package store provides in-process billing.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/vetcare/clinic-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory ledger (default for a single clinic session)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	records     []billing.TransactionRecord
	idempotency map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		idempotency: make(map[string]int),
	}
}

// Append adds a record at the tail. Append-only.
func (m *Memory) Append(_ context.Context, rec billing.TransactionRecord) (billing.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Checked again under the lock; Ledger.Exists runs before it.
	if rec.IdempotencyKey != "" {
		if _, ok := m.idempotency[rec.IdempotencyKey]; ok {
			return billing.TransactionRecord{}, billing.ErrDuplicateCheckout
		}
	}

	rec.Position = len(m.records) + 1
	m.records = append(m.records, copyRecord(rec))
	if rec.IdempotencyKey != "" {
		m.idempotency[rec.IdempotencyKey] = rec.Position
	}
	return copyRecord(rec), nil
}

func (m *Memory) Load(_ context.Context) ([]billing.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]billing.TransactionRecord, len(m.records))
	for i, r := range m.records {
		result[i] = copyRecord(r)
	}
	return result, nil
}

func (m *Memory) Get(_ context.Context, position int) (*billing.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if position < 1 || position > len(m.records) {
		return nil, nil
	}
	rec := copyRecord(m.records[position-1])
	return &rec, nil
}

func (m *Memory) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.idempotency[idempotencyKey]
	return ok, nil
}

// Len is the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func copyRecord(r billing.TransactionRecord) billing.TransactionRecord {
	r.Procedures = append([]string(nil), r.Procedures...)
	r.Medicines = append([]string(nil), r.Medicines...)
	return r
}
