/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers
  Domain types that already carry JSON tags (billing.TransactionRecord,
  billing.MedicineItem, frontdesk.QueueEntry, reporting.Dashboard) are
  returned as-is.

VALIDATION:
  Validation is done by the domain packages, not in DTOs. DTOs are pure
  data carriers.
*/
package api

import (
	"github.com/vetcare/clinic-engine/billing"
)

// =============================================================================
// CATALOG
// =============================================================================

type CreateMedicineRequest struct {
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	UnitPrice int64  `json:"unit_price"`
}

type CreateProcedureRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type RestockResponse struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type UpdatePriceRequest struct {
	Price int64 `json:"price"`
}

// =============================================================================
// CHECKOUT
// =============================================================================

// CheckoutRequest is a cart. PatientID, when set, is resolved through the
// patient directory and wins over PatientLabel.
type CheckoutRequest struct {
	PatientID      string   `json:"patient_id,omitempty"`
	PatientLabel   string   `json:"patient_label,omitempty"`
	Procedures     []string `json:"procedures"`
	Medicines      []string `json:"medicines"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

type QuoteRequest struct {
	Procedures []string `json:"procedures"`
	Medicines  []string `json:"medicines"`
}

// QuoteResponse adds the display total to billing.Quote.
type QuoteResponse struct {
	billing.Quote
	TotalFormatted string `json:"total_formatted"`
}

type CheckoutResponse struct {
	Transaction billing.TransactionRecord `json:"transaction"`
	Invoice     string                    `json:"invoice"`
}

// SummaryResponse is a ledger aggregate together with the filter used.
type SummaryResponse struct {
	Date     string        `json:"date,omitempty"`
	Month    string        `json:"month,omitempty"`
	Category string        `json:"category,omitempty"`
	Count    int           `json:"count"`
	SumTotal billing.Money `json:"sum_total"`
}

// =============================================================================
// FRONT DESK
// =============================================================================

type EnqueueRequest struct {
	Label string `json:"label"`
}

type DequeueResponse struct {
	Label     string `json:"label"`
	Remaining int    `json:"remaining"`
}

type CreatePatientRequest struct {
	ID           string `json:"id"`
	OwnerName    string `json:"owner_name"`
	AnimalName   string `json:"animal_name"`
	MedicalNotes string `json:"medical_notes"`
}

// PatientResponse adds the checkout label to a patient record.
type PatientResponse struct {
	ID           string `json:"id"`
	OwnerName    string `json:"owner_name"`
	AnimalName   string `json:"animal_name"`
	MedicalNotes string `json:"medical_notes"`
	Label        string `json:"label"`
	CreatedAt    string `json:"created_at"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
