/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists the transaction ledger and the patient directory. With the
  default ":memory:" path nothing survives a restart, which is how the
  clinic runs today; a file path turns the same code into a durable
  save/load boundary.

INTERFACES IMPLEMENTED:
  billing.Store:           Transaction ledger (append-only)
  frontdesk.PatientStore:  Patient registry

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on transactions table
  - No DELETE statements on transactions table
  - position is an AUTOINCREMENT key, so it is never reused

KEY TABLES:
  transactions: Immutable ledger of completed checkouts
  patients:     Owner/animal records

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  ":memory:" databases are per-connection, so the pool is pinned to a
  single connection.

USAGE:
  store, err := sqlite.New("./data/vetcare.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := billing.NewLedger(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/frontdesk"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_date TEXT NOT NULL,
		tx_month TEXT NOT NULL,
		patient_label TEXT NOT NULL,
		procedures_json TEXT NOT NULL,
		medicines_json TEXT NOT NULL,
		total INTEGER NOT NULL CHECK (total >= 0),
		category TEXT NOT NULL,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(tx_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_month_category
		ON transactions(tx_month, category);

	-- Patients
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		owner_name TEXT NOT NULL,
		animal_name TEXT NOT NULL,
		medical_notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_patients_created
		ON patients(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (billing.Store interface)
// =============================================================================

// Append adds a record to the ledger and returns it with its position.
func (s *Store) Append(ctx context.Context, rec billing.TransactionRecord) (billing.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proceduresJSON, err := json.Marshal(nonNil(rec.Procedures))
	if err != nil {
		return billing.TransactionRecord{}, fmt.Errorf("failed to encode procedures: %w", err)
	}
	medicinesJSON, err := json.Marshal(nonNil(rec.Medicines))
	if err != nil {
		return billing.TransactionRecord{}, fmt.Errorf("failed to encode medicines: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transactions
		(tx_date, tx_month, patient_label, procedures_json, medicines_json,
		 total, category, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		rec.Date,
		rec.Month,
		rec.PatientLabel,
		string(proceduresJSON),
		string(medicinesJSON),
		int64(rec.Total),
		string(rec.Category),
		nullString(rec.IdempotencyKey),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return billing.TransactionRecord{}, billing.ErrDuplicateCheckout
		}
		return billing.TransactionRecord{}, fmt.Errorf("failed to append transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return billing.TransactionRecord{}, fmt.Errorf("failed to read transaction position: %w", err)
	}
	rec.Position = int(id)
	return rec, nil
}

// Load returns every record in append order.
func (s *Store) Load(ctx context.Context) ([]billing.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT position, tx_date, tx_month, patient_label, procedures_json, medicines_json,
		       total, category, idempotency_key, created_at
		FROM transactions
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := []billing.TransactionRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Get returns the record at position, or nil.
func (s *Store) Get(ctx context.Context, position int) (*billing.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT position, tx_date, tx_month, patient_label, procedures_json, medicines_json,
		       total, category, idempotency_key, created_at
		FROM transactions
		WHERE position = ?
	`

	rows, err := s.db.QueryContext(ctx, query, position)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists checks if an idempotency key was already recorded.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return count > 0, nil
}

func scanRecord(rows *sql.Rows) (billing.TransactionRecord, error) {
	var (
		rec            billing.TransactionRecord
		proceduresJSON string
		medicinesJSON  string
		total          int64
		category       string
		idempotencyKey sql.NullString
		createdAt      string
	)

	err := rows.Scan(
		&rec.Position, &rec.Date, &rec.Month, &rec.PatientLabel,
		&proceduresJSON, &medicinesJSON, &total, &category,
		&idempotencyKey, &createdAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if err := json.Unmarshal([]byte(proceduresJSON), &rec.Procedures); err != nil {
		return rec, fmt.Errorf("failed to decode procedures of transaction %d: %w", rec.Position, err)
	}
	if err := json.Unmarshal([]byte(medicinesJSON), &rec.Medicines); err != nil {
		return rec, fmt.Errorf("failed to decode medicines of transaction %d: %w", rec.Position, err)
	}
	rec.Total = billing.Money(total)
	rec.Category = billing.Category(category)
	rec.IdempotencyKey = idempotencyKey.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return rec, nil
}

// =============================================================================
// PATIENT STORE (frontdesk.PatientStore interface)
// =============================================================================

// SavePatient inserts a patient. IDs are never overwritten.
func (s *Store) SavePatient(ctx context.Context, p frontdesk.PatientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO patients (id, owner_name, animal_name, medical_notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.OwnerName, p.AnimalName, p.MedicalNotes,
		p.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", frontdesk.ErrDuplicatePatient, p.ID)
		}
		return fmt.Errorf("failed to save patient: %w", err)
	}
	return nil
}

// GetPatient returns a patient by ID, or nil.
func (s *Store) GetPatient(ctx context.Context, id string) (*frontdesk.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, owner_name, animal_name, medical_notes, created_at
		FROM patients WHERE id = ?
	`

	p, err := scanPatient(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPatients returns patients in registration order.
func (s *Store) ListPatients(ctx context.Context) ([]frontdesk.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, owner_name, animal_name, medical_notes, created_at
		FROM patients ORDER BY rowid ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := []frontdesk.PatientRecord{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (frontdesk.PatientRecord, error) {
	var (
		p         frontdesk.PatientRecord
		notes     sql.NullString
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.OwnerName, &p.AnimalName, &notes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan patient: %w", err)
	}
	p.MedicalNotes = notes.String
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
