package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/billing/store"
)

func appendRecord(t *testing.T, l billing.Ledger, date string, total billing.Money, cat billing.Category) billing.TransactionRecord {
	t.Helper()
	rec, err := l.Append(context.Background(), billing.TransactionRecord{
		Date:         date,
		Month:        date[:7],
		PatientLabel: "Milo - Budi",
		Procedures:   []string{"Konsultasi Umum"},
		Total:        total,
		Category:     cat,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return rec
}

func ptr[T any](v T) *T { return &v }

func TestLedger_AppendAssignsPositions(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())

	first := appendRecord(t, ledger, "2026-10-19", 100, billing.CategoryProcedure)
	second := appendRecord(t, ledger, "2026-10-19", 200, billing.CategoryProcedure)

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	all, err := ledger.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, billing.Money(100), all[0].Total)
	assert.Equal(t, billing.Money(200), all[1].Total)
}

func TestLedger_Aggregate(t *testing.T) {
	// GIVEN: Three transactions today and one last month
	ledger := billing.NewLedger(store.NewMemory())
	appendRecord(t, ledger, "2026-10-19", 100, billing.CategoryProcedure)
	appendRecord(t, ledger, "2026-10-19", 200, billing.CategoryMedicine)
	appendRecord(t, ledger, "2026-10-19", 300, billing.CategoryMixed)
	appendRecord(t, ledger, "2026-09-30", 1000, billing.CategoryMedicine)
	ctx := context.Background()

	// WHEN/THEN: Filtering by date
	agg, err := ledger.Aggregate(ctx, billing.LedgerFilter{Date: ptr("2026-10-19")})
	require.NoError(t, err)
	assert.Equal(t, billing.Aggregate{Count: 3, Sum: 600}, agg)

	// Month and category combine conjunctively
	agg, err = ledger.Aggregate(ctx, billing.LedgerFilter{Month: ptr("2026-10"), Category: ptr(billing.CategoryMedicine)})
	require.NoError(t, err)
	assert.Equal(t, billing.Aggregate{Count: 1, Sum: 200}, agg)

	// No filter matches everything
	agg, err = ledger.Aggregate(ctx, billing.LedgerFilter{})
	require.NoError(t, err)
	assert.Equal(t, billing.Aggregate{Count: 4, Sum: 1600}, agg)

	// A date with nothing recorded
	agg, err = ledger.Aggregate(ctx, billing.LedgerFilter{Date: ptr("2026-01-01")})
	require.NoError(t, err)
	assert.Equal(t, billing.Aggregate{}, agg)
}

func TestLedger_ReadsAreIdempotent(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())
	appendRecord(t, ledger, "2026-10-19", 100, billing.CategoryProcedure)
	filter := billing.LedgerFilter{Date: ptr("2026-10-19")}
	ctx := context.Background()

	first, err := ledger.Aggregate(ctx, filter)
	require.NoError(t, err)
	second, err := ledger.Aggregate(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	all1, err := ledger.All(ctx)
	require.NoError(t, err)
	all2, err := ledger.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, all1, all2)
}

func TestLedger_Get(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())
	appendRecord(t, ledger, "2026-10-19", 100, billing.CategoryProcedure)

	rec, err := ledger.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, billing.Money(100), rec.Total)

	_, err = ledger.Get(context.Background(), 2)
	var nf *billing.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "transaction", nf.Kind)
	assert.Equal(t, "2", nf.Key)

	_, err = ledger.Get(context.Background(), 0)
	assert.True(t, billing.IsNotFound(err))
}

func TestLedger_RecordsAreSnapshots(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())
	procedures := []string{"Konsultasi Umum"}

	_, err := ledger.Append(context.Background(), billing.TransactionRecord{
		Date: "2026-10-19", Month: "2026-10", Procedures: procedures, Total: 50000, Category: billing.CategoryProcedure,
	})
	require.NoError(t, err)

	// The caller's slice is not shared with the ledger
	procedures[0] = "Operasi Steril"
	rec, err := ledger.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Konsultasi Umum"}, rec.Procedures)

	// Neither is the returned copy
	rec.Procedures[0] = "Grooming"
	again, err := ledger.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Konsultasi Umum"}, again.Procedures)
}

func TestLedger_DuplicateIdempotencyKey(t *testing.T) {
	ledger := billing.NewLedger(store.NewMemory())
	rec := billing.TransactionRecord{Date: "2026-10-19", Month: "2026-10", Total: 1, Category: billing.CategoryMedicine, IdempotencyKey: "k1"}

	_, err := ledger.Append(context.Background(), rec)
	require.NoError(t, err)

	_, err = ledger.Append(context.Background(), rec)
	assert.ErrorIs(t, err, billing.ErrDuplicateCheckout)
	assert.True(t, billing.IsConflict(err))
}

func TestDateKeys(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 18:30 UTC on the 31st is already the 1st in Jakarta
	ts := time.Date(2026, time.October, 31, 18, 30, 0, 0, time.UTC).In(jakarta)

	assert.Equal(t, "2026-11-01", billing.DateKey(ts))
	assert.Equal(t, "2026-11", billing.MonthKey(ts))

	d, err := billing.ParseDateKey("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", d)

	_, err = billing.ParseDateKey("19/10/2026")
	assert.Error(t, err)

	m, err := billing.ParseMonthKey("2026-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-10", m)

	_, err = billing.ParseMonthKey("2026-13")
	assert.Error(t, err)
}
