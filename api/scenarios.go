/*
scenarios.go - Demo scenario loaders for training and demonstrations

PURPOSE:

	Populates a running clinic with realistic front-desk activity so new
	staff can practise on the UI. Each scenario registers patients, puts
	walk-ins in the queue and records checkouts through the normal engine.

AVAILABLE SCENARIOS:

	morning-queue:  Three patients registered and waiting, no sales yet
	busy-day:       Patients plus a mixed, a procedure-only and a
	                medicine-only checkout
	low-stock:      A nearly sold-out medicine that shows up in the
	                end-of-day low-stock report

HOW SCENARIOS WORK:
 1. Register patients through the directory
 2. Enqueue walk-ins
 3. Record checkouts through Engine.Checkout (stock + ledger)

NOTE:

	The ledger is append-only, so scenarios never reset anything. Loading
	a scenario twice adds its checkouts twice; patients with fixed IDs are
	skipped when already registered.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-day"}

SEE ALSO:
  - handlers.go: Checkout, Enqueue, CreatePatient
  - factory/catalog.go: DefaultCatalogJSON, the items scenarios sell
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/frontdesk"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "morning-queue",
		Name:        "Morning Queue",
		Description: "Three registered patients waiting at the front desk",
	},
	{
		ID:          "busy-day",
		Name:        "Busy Day",
		Description: "One checkout of each category with invoices",
	},
	{
		ID:          "low-stock",
		Name:        "Low Stock",
		Description: "A medicine down to its last unit",
	},
}

var demoPatients = []frontdesk.PatientRecord{
	{ID: "demo-milo", OwnerName: "Budi", AnimalName: "Milo", MedicalNotes: "Kucing domestik, 3 tahun"},
	{ID: "demo-luna", OwnerName: "Sari", AnimalName: "Luna", MedicalNotes: "Anjing golden, alergi ayam"},
	{ID: "demo-coco", OwnerName: "Andi", AnimalName: "Coco", MedicalNotes: "Kelinci, kontrol gigi"},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	var err error
	switch req.ScenarioID {
	case "morning-queue":
		err = h.loadMorningQueueScenario(ctx)
	case "busy-day":
		err = h.loadBusyDayScenario(ctx)
	case "low-stock":
		err = h.loadLowStockScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	if err != nil {
		h.writeDomainError(w, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadMorningQueueScenario(ctx context.Context) error {
	patients, err := h.registerDemoPatients(ctx)
	if err != nil {
		return err
	}
	for _, p := range patients {
		if err := h.Queue.Enqueue(p.Label()); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadBusyDayScenario(ctx context.Context) error {
	patients, err := h.registerDemoPatients(ctx)
	if err != nil {
		return err
	}

	carts := []billing.CheckoutRequest{
		{Procedures: []string{"Konsultasi Umum"}, Medicines: []string{"Obat Cacing"}},
		{Procedures: []string{"Operasi Steril"}},
		{Medicines: []string{"Vaksin Rabies"}},
	}
	for i, cart := range carts {
		cart.PatientLabel = patients[i%len(patients)].Label()
		if _, err := h.Engine.Checkout(ctx, cart); err != nil {
			return fmt.Errorf("checkout for %s: %w", cart.PatientLabel, err)
		}
	}
	return nil
}

func (h *Handler) loadLowStockScenario(ctx context.Context) error {
	err := h.Engine.Catalog().AddMedicine(billing.MedicineItem{Name: "Obat Kutu", Stock: 2, UnitPrice: 40000})
	if err != nil && !errors.Is(err, billing.ErrDuplicateItem) {
		return err
	}

	patients, err := h.registerDemoPatients(ctx)
	if err != nil {
		return err
	}
	// Leave exactly one unit unless a previous load already sold them.
	for h.stockOf("Obat Kutu") > 1 {
		if _, err := h.Engine.Checkout(ctx, billing.CheckoutRequest{
			PatientLabel: patients[0].Label(),
			Medicines:    []string{"Obat Kutu"},
		}); err != nil {
			return err
		}
	}
	return nil
}

// registerDemoPatients registers the demo patients, reusing the ones a
// previous load already created.
func (h *Handler) registerDemoPatients(ctx context.Context) ([]frontdesk.PatientRecord, error) {
	out := make([]frontdesk.PatientRecord, 0, len(demoPatients))
	for _, p := range demoPatients {
		registered, err := h.Patients.Register(ctx, p)
		if errors.Is(err, frontdesk.ErrDuplicatePatient) {
			registered, err = h.Patients.Get(ctx, p.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", p.ID, err)
		}
		out = append(out, registered)
	}
	return out, nil
}

func (h *Handler) stockOf(name string) int {
	stock, err := h.Engine.Catalog().StockOf(name)
	if err != nil {
		return 0
	}
	return stock
}
