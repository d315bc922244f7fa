package billing

import (
	"strings"
)

// =============================================================================
// INVOICE - Plain-text receipt
// =============================================================================

// InvoiceLayout holds the fixed text of a receipt.
type InvoiceLayout struct {
	ClinicName     string
	PatientLabel   string
	ProcedureLabel string
	MedicineLabel  string
	CurrencyPrefix string
	ClosingLine    string
	RuleWidth      int
}

// DefaultInvoiceLayout is the receipt the clinic prints today.
func DefaultInvoiceLayout() InvoiceLayout {
	return InvoiceLayout{
		ClinicName:     "KLINIK HEWAN VETCARE",
		PatientLabel:   "Pasien",
		ProcedureLabel: "Tindakan",
		MedicineLabel:  "Obat",
		CurrencyPrefix: "Rp",
		ClosingLine:    "Terima Kasih!",
		RuleWidth:      27,
	}
}

// RenderInvoice produces the receipt for rec. Printing is left to the host.
//
//	KLINIK HEWAN VETCARE
//	---------------------------
//	Pasien: Milo - Budi
//	Tindakan: Konsultasi Umum
//	Obat: Obat Cacing
//	---------------------------
//	TOTAL: Rp 75,000
//	Terima Kasih!
func RenderInvoice(rec TransactionRecord, layout InvoiceLayout) string {
	rule := strings.Repeat("-", max(layout.RuleWidth, 1))

	var b strings.Builder
	b.WriteString(layout.ClinicName + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(layout.PatientLabel + ": " + rec.PatientLabel + "\n")
	b.WriteString(layout.ProcedureLabel + ": " + joinItems(rec.Procedures) + "\n")
	b.WriteString(layout.MedicineLabel + ": " + joinItems(rec.Medicines) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("TOTAL: " + layout.CurrencyPrefix + " " + rec.Total.String() + "\n")
	b.WriteString(layout.ClosingLine + "\n")
	return b.String()
}

func joinItems(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
