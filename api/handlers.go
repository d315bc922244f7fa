/*
handlers.go - HTTP API handlers for the clinic engine

PURPOSE:
  Exposes checkout, catalog, ledger, queue, patients and the dashboard as
  a JSON API for the front-desk UI. Handlers parse and serialize; all
  rules live in the billing, frontdesk and reporting packages.

ENDPOINTS:
  Catalog:
    GET    /api/catalog                      Export catalog as JSON definition
    GET    /api/medicines                    List medicines with stock
    POST   /api/medicines                    Add a medicine
    POST   /api/medicines/{name}/restock     Add stock
    GET    /api/procedures                   List procedures
    POST   /api/procedures                   Add a procedure
    PUT    /api/procedures/{name}/price      Edit a procedure price

  Checkout:
    POST   /api/checkout/quote               Price a cart, no side effects
    POST   /api/checkout                     Record a cart (stock + ledger)

  Ledger:
    GET    /api/transactions                 All transactions, append order
    GET    /api/transactions/summary         Aggregate (?date=&month=&category=)
    GET    /api/transactions/{position}      One transaction
    GET    /api/transactions/{position}/invoice  Plain-text receipt

  Front desk:
    GET    /api/queue                        Waiting patients
    POST   /api/queue                        Add a walk-in
    POST   /api/queue/next                   Call the next patient
    GET    /api/patients                     Patient directory
    POST   /api/patients                     Register a patient
    GET    /api/patients/{id}                One patient

  Reporting:
    GET    /api/dashboard                    Dashboard metrics

  Scenarios (demo):
    GET    /api/scenarios                    Available scenarios
    GET    /api/scenarios/current            Last loaded scenario
    POST   /api/scenarios/load               Load a scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, empty selection
  - 404: Unknown medicine, procedure, transaction or patient
  - 409: Insufficient stock, duplicate item/checkout/patient, empty queue
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The server runs on the clinic's front-desk machine.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/factory"
	"github.com/vetcare/clinic-engine/frontdesk"
	"github.com/vetcare/clinic-engine/reporting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine    *billing.Engine
	Queue     *frontdesk.Queue
	Patients  *frontdesk.Directory
	Reporting *reporting.Service
	Factory   *factory.CatalogFactory
	Layout    billing.InvoiceLayout

	now    func() time.Time
	logger *zap.Logger

	scenarioMu      sync.Mutex
	currentScenario string
}

// Deps groups the collaborators a Handler is built from.
type Deps struct {
	Engine    *billing.Engine
	Queue     *frontdesk.Queue
	Patients  *frontdesk.Directory
	Reporting *reporting.Service
	Layout    billing.InvoiceLayout
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		Engine:    d.Engine,
		Queue:     d.Queue,
		Patients:  d.Patients,
		Reporting: d.Reporting,
		Factory:   factory.NewCatalogFactory(),
		Layout:    d.Layout,
		now:       d.Now,
		logger:    d.Logger,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.Layout.ClinicName == "" {
		h.Layout = billing.DefaultInvoiceLayout()
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// GetCatalog returns the catalog in its JSON definition format.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Factory.Export(h.Engine.Catalog()))
}

func (h *Handler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNilSlice(h.Engine.Catalog().ListMedicines()))
}

func (h *Handler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := billing.MedicineItem{Name: req.Name, Stock: req.Stock, UnitPrice: billing.Money(req.UnitPrice)}
	if err := h.Engine.Catalog().AddMedicine(item); err != nil {
		h.writeDomainError(w, "Failed to add medicine", err)
		return
	}

	created, _ := h.Engine.Catalog().Medicine(strings.TrimSpace(req.Name))
	writeJSON(w, http.StatusCreated, created)
}

// RestockMedicine adds units to a medicine.
// POST /api/medicines/{name}/restock
func (h *Handler) RestockMedicine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req RestockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stock, err := h.Engine.Catalog().Restock(name, req.Quantity)
	if err != nil {
		h.writeDomainError(w, "Failed to restock medicine", err)
		return
	}

	h.logger.Info("medicine restocked", zap.String("medicine", name), zap.Int("quantity", req.Quantity), zap.Int("stock", stock))
	writeJSON(w, http.StatusOK, RestockResponse{Name: name, Stock: stock})
}

func (h *Handler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNilSlice(h.Engine.Catalog().ListProcedures()))
}

func (h *Handler) CreateProcedure(w http.ResponseWriter, r *http.Request) {
	var req CreateProcedureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := billing.ProcedureItem{Name: req.Name, Price: billing.Money(req.Price)}
	if err := h.Engine.Catalog().AddProcedure(item); err != nil {
		h.writeDomainError(w, "Failed to add procedure", err)
		return
	}

	created, _ := h.Engine.Catalog().Procedure(strings.TrimSpace(req.Name))
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProcedurePrice edits a procedure price. Past transactions keep
// the total they were billed at.
// PUT /api/procedures/{name}/price
func (h *Handler) UpdateProcedurePrice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdatePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Engine.Catalog().SetProcedurePrice(name, billing.Money(req.Price))
	if err != nil {
		h.writeDomainError(w, "Failed to update price", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// =============================================================================
// CHECKOUT HANDLERS
// =============================================================================

// Quote prices a cart without recording it.
// POST /api/checkout/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	q, err := h.Engine.Quote(req.Procedures, req.Medicines)
	if err != nil {
		h.writeDomainError(w, "Failed to price selection", err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{Quote: q, TotalFormatted: h.Layout.CurrencyPrefix + " " + q.Total.String()})
}

// Checkout records a cart: stock is decremented and the ledger appended
// as one unit. The Idempotency-Key header is used when the body has none.
// POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	label := req.PatientLabel
	if req.PatientID != "" {
		patient, err := h.Patients.Get(ctx, req.PatientID)
		if err != nil {
			h.writeDomainError(w, "Unknown patient", err)
			return
		}
		label = patient.Label()
	}

	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get("Idempotency-Key")
	}

	rec, err := h.Engine.Checkout(ctx, billing.CheckoutRequest{
		PatientLabel:   label,
		Procedures:     req.Procedures,
		Medicines:      req.Medicines,
		IdempotencyKey: key,
	})
	if err != nil {
		h.writeDomainError(w, "Checkout failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Transaction: rec,
		Invoice:     billing.RenderInvoice(rec, h.Layout),
	})
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Engine.Ledger().All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilSlice(recs))
}

// GetSummary aggregates the ledger.
// GET /api/transactions/summary?date=2026-10-19&month=2026-10&category=medicine
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		filter billing.LedgerFilter
		resp   SummaryResponse
	)

	if v := q.Get("date"); v != "" {
		date, err := billing.ParseDateKey(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		filter.Date = &date
		resp.Date = date
	}
	if v := q.Get("month"); v != "" {
		month, err := billing.ParseMonthKey(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
		filter.Month = &month
		resp.Month = month
	}
	if v := q.Get("category"); v != "" {
		category, err := billing.ParseCategory(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category", err)
			return
		}
		filter.Category = &category
		resp.Category = string(category)
	}

	agg, err := h.Engine.Ledger().Aggregate(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate transactions", err)
		return
	}
	resp.Count = agg.Count
	resp.SumTotal = agg.Sum
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadTransaction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetInvoice renders the receipt of a recorded transaction as text/plain.
// GET /api/transactions/{position}/invoice
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadTransaction(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(billing.RenderInvoice(rec, h.Layout)))
}

func (h *Handler) loadTransaction(w http.ResponseWriter, r *http.Request) (billing.TransactionRecord, bool) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil || position < 1 {
		writeError(w, http.StatusBadRequest, "Invalid transaction position", err)
		return billing.TransactionRecord{}, false
	}

	rec, err := h.Engine.Ledger().Get(r.Context(), position)
	if err != nil {
		h.writeDomainError(w, "Failed to get transaction", err)
		return billing.TransactionRecord{}, false
	}
	return rec, true
}

// =============================================================================
// QUEUE HANDLERS
// =============================================================================

func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Queue.PeekAll())
}

func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Queue.Enqueue(req.Label); err != nil {
		h.writeDomainError(w, "Failed to enqueue", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Queue.PeekAll())
}

// CallNext pops the head of the queue.
// POST /api/queue/next
func (h *Handler) CallNext(w http.ResponseWriter, r *http.Request) {
	label, err := h.Queue.DequeueFront()
	if err != nil {
		h.writeDomainError(w, "No patient waiting", err)
		return
	}
	h.logger.Info("patient called", zap.String("label", label))
	writeJSON(w, http.StatusOK, DequeueResponse{Label: label, Remaining: h.Queue.Len()})
}

// =============================================================================
// PATIENT HANDLERS
// =============================================================================

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.Patients.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list patients", err)
		return
	}

	dtos := make([]PatientResponse, len(patients))
	for i, p := range patients {
		dtos[i] = toPatientResponse(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Patients.Register(r.Context(), frontdesk.PatientRecord{
		ID:           req.ID,
		OwnerName:    req.OwnerName,
		AnimalName:   req.AnimalName,
		MedicalNotes: req.MedicalNotes,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to register patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientResponse(p))
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.Patients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to get patient", err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func toPatientResponse(p frontdesk.PatientRecord) PatientResponse {
	return PatientResponse{
		ID:           p.ID,
		OwnerName:    p.OwnerName,
		AnimalName:   p.AnimalName,
		MedicalNotes: p.MedicalNotes,
		Label:        p.Label(),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Reporting.Dashboard(r.Context(), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// =============================================================================
// HELPERS
// =============================================================================

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case billing.IsClientError(err),
		errors.Is(err, frontdesk.ErrInvalidLabel),
		errors.Is(err, frontdesk.ErrInvalidPatient):
		return http.StatusBadRequest
	case billing.IsNotFound(err),
		errors.Is(err, frontdesk.ErrPatientNotFound):
		return http.StatusNotFound
	case billing.IsConflict(err),
		errors.Is(err, frontdesk.ErrEmptyQueue),
		errors.Is(err, frontdesk.ErrDuplicatePatient):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
