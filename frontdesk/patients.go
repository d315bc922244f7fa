package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicatePatient = errors.New("patient already registered")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrInvalidPatient   = errors.New("invalid patient record")
)

// =============================================================================
// PATIENT RECORD
// =============================================================================

type PatientRecord struct {
	ID           string    `json:"id"`
	OwnerName    string    `json:"owner_name"`
	AnimalName   string    `json:"animal_name"`
	MedicalNotes string    `json:"medical_notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Label is how the cashier picks the patient: "<animal> - <owner>".
func (p PatientRecord) Label() string {
	return p.AnimalName + " - " + p.OwnerName
}

// =============================================================================
// PATIENT STORE
// =============================================================================

// PatientStore persists patient records. Implemented by MemoryPatients
// and store/sqlite.
type PatientStore interface {
	// SavePatient inserts p. Returns ErrDuplicatePatient if the ID exists.
	SavePatient(ctx context.Context, p PatientRecord) error

	// GetPatient returns nil when the ID is unknown.
	GetPatient(ctx context.Context, id string) (*PatientRecord, error)

	// ListPatients returns patients in registration order.
	ListPatients(ctx context.Context) ([]PatientRecord, error)
}

type MemoryPatients struct {
	mu       sync.RWMutex
	order    []string
	patients map[string]PatientRecord
}

func NewMemoryPatients() *MemoryPatients {
	return &MemoryPatients{patients: make(map[string]PatientRecord)}
}

func (m *MemoryPatients) SavePatient(_ context.Context, p PatientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.patients[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePatient, p.ID)
	}
	m.patients[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MemoryPatients) GetPatient(_ context.Context, id string) (*PatientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryPatients) ListPatients(_ context.Context) ([]PatientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PatientRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.patients[id])
	}
	return out, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

// Directory validates and registers patients on top of a PatientStore.
type Directory struct {
	store PatientStore
	now   func() time.Time
}

func NewDirectory(store PatientStore) *Directory {
	return &Directory{store: store, now: time.Now}
}

// Register stores a new patient. A blank ID gets a generated one.
func (d *Directory) Register(ctx context.Context, p PatientRecord) (PatientRecord, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.OwnerName = strings.TrimSpace(p.OwnerName)
	p.AnimalName = strings.TrimSpace(p.AnimalName)

	if p.OwnerName == "" || p.AnimalName == "" {
		return PatientRecord{}, fmt.Errorf("%w: owner and animal name are required", ErrInvalidPatient)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = d.now()

	if err := d.store.SavePatient(ctx, p); err != nil {
		return PatientRecord{}, err
	}
	return p, nil
}

func (d *Directory) Get(ctx context.Context, id string) (PatientRecord, error) {
	p, err := d.store.GetPatient(ctx, id)
	if err != nil {
		return PatientRecord{}, err
	}
	if p == nil {
		return PatientRecord{}, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return *p, nil
}

func (d *Directory) List(ctx context.Context) ([]PatientRecord, error) {
	return d.store.ListPatients(ctx)
}

// Labels returns the checkout selection labels in registration order.
func (d *Directory) Labels(ctx context.Context) ([]string, error) {
	patients, err := d.store.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(patients))
	for i, p := range patients {
		labels[i] = p.Label()
	}
	return labels, nil
}
