package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vetcare/clinic-engine/billing"
)

func TestRenderInvoice(t *testing.T) {
	rec := billing.TransactionRecord{
		PatientLabel: "Milo - Budi",
		Procedures:   []string{"Konsultasi Umum"},
		Medicines:    []string{"Obat Cacing"},
		Total:        75000,
		Category:     billing.CategoryMixed,
	}

	got := billing.RenderInvoice(rec, billing.DefaultInvoiceLayout())

	want := "KLINIK HEWAN VETCARE\n" +
		"---------------------------\n" +
		"Pasien: Milo - Budi\n" +
		"Tindakan: Konsultasi Umum\n" +
		"Obat: Obat Cacing\n" +
		"---------------------------\n" +
		"TOTAL: Rp 75,000\n" +
		"Terima Kasih!\n"
	assert.Equal(t, want, got)
}

func TestRenderInvoice_EmptyListsAndCustomLayout(t *testing.T) {
	rec := billing.TransactionRecord{
		PatientLabel: "Luna - Sari",
		Procedures:   []string{"Konsultasi Umum", "Operasi Steril"},
		Total:        800000,
	}
	layout := billing.DefaultInvoiceLayout()
	layout.ClinicName = "VETCARE CABANG 2"
	layout.RuleWidth = 5

	got := billing.RenderInvoice(rec, layout)

	assert.Contains(t, got, "VETCARE CABANG 2\n-----\n")
	assert.Contains(t, got, "Tindakan: Konsultasi Umum, Operasi Steril\n")
	assert.Contains(t, got, "Obat: -\n")
	assert.Contains(t, got, "TOTAL: Rp 800,000\n")
}
