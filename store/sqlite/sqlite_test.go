package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/frontdesk"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecord() billing.TransactionRecord {
	return billing.TransactionRecord{
		Date:         "2026-10-19",
		Month:        "2026-10",
		PatientLabel: "Milo - Budi",
		Procedures:   []string{"Konsultasi Umum"},
		Medicines:    []string{"Obat Cacing"},
		Total:        75000,
		Category:     billing.CategoryMixed,
		CreatedAt:    time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC),
	}
}

func TestStore_AppendAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, sampleRecord())
	require.NoError(t, err)
	second, err := store.Append(ctx, sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	got := recs[0]
	want := sampleRecord()
	assert.Equal(t, 1, got.Position)
	assert.Equal(t, want.Date, got.Date)
	assert.Equal(t, want.Month, got.Month)
	assert.Equal(t, want.PatientLabel, got.PatientLabel)
	assert.Equal(t, want.Procedures, got.Procedures)
	assert.Equal(t, want.Medicines, got.Medicines)
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, want.Category, got.Category)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_EmptyLists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord()
	rec.Medicines = nil
	rec.Category = billing.CategoryProcedure

	_, err := store.Append(ctx, rec)
	require.NoError(t, err)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.Medicines)
	assert.Empty(t, got.Medicines)
}

func TestStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)

	recs, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStore_IdempotencyKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord()
	rec.IdempotencyKey = "form-1"

	_, err := store.Append(ctx, rec)
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "form-1")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.Append(ctx, rec)
	assert.ErrorIs(t, err, billing.ErrDuplicateCheckout)

	// Records without a key never collide
	rec.IdempotencyKey = ""
	_, err = store.Append(ctx, rec)
	require.NoError(t, err)
	_, err = store.Append(ctx, rec)
	require.NoError(t, err)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestStore_RejectsNegativeTotal(t *testing.T) {
	store := newTestStore(t)
	rec := sampleRecord()
	rec.Total = -1

	_, err := store.Append(context.Background(), rec)

	assert.Error(t, err)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vetcare.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	_, err = store.Append(ctx, sampleRecord())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	recs, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, billing.Money(75000), recs[0].Total)
}

// =============================================================================
// LEDGER + ENGINE ON SQLITE
// =============================================================================

func TestEngineOnSQLite_CheckoutAndAggregate(t *testing.T) {
	// GIVEN: The engine wired to a SQLite ledger
	store := newTestStore(t)
	catalog, err := billing.NewCatalog(
		[]billing.MedicineItem{{Name: "Obat Cacing", Stock: 100, UnitPrice: 25000}},
		[]billing.ProcedureItem{{Name: "Konsultasi Umum", Price: 50000}},
	)
	require.NoError(t, err)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	engine := billing.NewEngine(catalog, billing.NewLedger(store), billing.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	// WHEN: Two checkouts, one resubmitted
	req := billing.CheckoutRequest{
		PatientLabel:   "Milo - Budi",
		Procedures:     []string{"Konsultasi Umum"},
		Medicines:      []string{"Obat Cacing"},
		IdempotencyKey: "form-1",
	}
	rec, err := engine.Checkout(ctx, req)
	require.NoError(t, err)
	_, err = engine.Checkout(ctx, req)
	require.ErrorIs(t, err, billing.ErrDuplicateCheckout)

	// THEN: One record, one unit taken
	assert.Equal(t, 1, rec.Position)
	stock, _ := catalog.StockOf("Obat Cacing")
	assert.Equal(t, 99, stock)

	date := "2026-10-19"
	agg, err := engine.Ledger().Aggregate(ctx, billing.LedgerFilter{Date: &date})
	require.NoError(t, err)
	assert.Equal(t, billing.Aggregate{Count: 1, Sum: 75000}, agg)
}

// =============================================================================
// PATIENTS
// =============================================================================

func TestStore_Patients(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dir := frontdesk.NewDirectory(store)

	milo, err := dir.Register(ctx, frontdesk.PatientRecord{OwnerName: "Budi", AnimalName: "Milo", MedicalNotes: "alergi ayam"})
	require.NoError(t, err)
	_, err = dir.Register(ctx, frontdesk.PatientRecord{ID: "P-002", OwnerName: "Sari", AnimalName: "Luna"})
	require.NoError(t, err)

	got, err := dir.Get(ctx, milo.ID)
	require.NoError(t, err)
	assert.Equal(t, "alergi ayam", got.MedicalNotes)
	assert.Equal(t, "Milo - Budi", got.Label())
	assert.True(t, milo.CreatedAt.Equal(got.CreatedAt))

	labels, err := dir.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Milo - Budi", "Luna - Sari"}, labels)

	_, err = dir.Register(ctx, frontdesk.PatientRecord{ID: "P-002", OwnerName: "X", AnimalName: "Y"})
	assert.ErrorIs(t, err, frontdesk.ErrDuplicatePatient)

	_, err = dir.Get(ctx, "missing")
	assert.ErrorIs(t, err, frontdesk.ErrPatientNotFound)

	missing, err := store.GetPatient(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
