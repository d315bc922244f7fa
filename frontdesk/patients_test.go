package frontdesk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory() *Directory {
	d := NewDirectory(NewMemoryPatients())
	d.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestDirectory_Register(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()

	p, err := d.Register(ctx, PatientRecord{OwnerName: " Budi ", AnimalName: "Milo", MedicalNotes: "alergi ayam"})

	require.NoError(t, err)
	_, parseErr := uuid.Parse(p.ID)
	assert.NoError(t, parseErr, "generated ID should be a UUID")
	assert.Equal(t, "Budi", p.OwnerName)
	assert.Equal(t, "Milo - Budi", p.Label())
	assert.Equal(t, 2026, p.CreatedAt.Year())

	got, err := d.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDirectory_RegisterKeepsGivenID(t *testing.T) {
	d := newTestDirectory()

	p, err := d.Register(context.Background(), PatientRecord{ID: "P-001", OwnerName: "Sari", AnimalName: "Luna"})

	require.NoError(t, err)
	assert.Equal(t, "P-001", p.ID)
}

func TestDirectory_Validation(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()

	_, err := d.Register(ctx, PatientRecord{OwnerName: "Budi"})
	assert.ErrorIs(t, err, ErrInvalidPatient)

	_, err = d.Register(ctx, PatientRecord{AnimalName: "Milo"})
	assert.ErrorIs(t, err, ErrInvalidPatient)
}

func TestDirectory_Duplicate(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()

	_, err := d.Register(ctx, PatientRecord{ID: "P-001", OwnerName: "Sari", AnimalName: "Luna"})
	require.NoError(t, err)

	_, err = d.Register(ctx, PatientRecord{ID: "P-001", OwnerName: "Budi", AnimalName: "Milo"})
	assert.ErrorIs(t, err, ErrDuplicatePatient)
}

func TestDirectory_GetUnknown(t *testing.T) {
	d := newTestDirectory()

	_, err := d.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDirectory_ListAndLabels(t *testing.T) {
	d := newTestDirectory()
	ctx := context.Background()
	_, err := d.Register(ctx, PatientRecord{OwnerName: "Budi", AnimalName: "Milo"})
	require.NoError(t, err)
	_, err = d.Register(ctx, PatientRecord{OwnerName: "Sari", AnimalName: "Luna"})
	require.NoError(t, err)

	list, err := d.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	labels, err := d.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Milo - Budi", "Luna - Sari"}, labels)
}
