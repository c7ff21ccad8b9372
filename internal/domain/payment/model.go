// Package payment is the clinic's payment ledger. Payments always belong to
// a patient and may optionally be linked to one of their visits.
package payment

import (
	"time"

	"github.com/dencare/dencare/internal/domain/visit"
)

// Payment amounts are whole rupees.
type Payment struct {
	ID        int64           `json:"id"`
	PatientID int64           `json:"patientId"`
	VisitID   *int64          `json:"visitId,omitempty"`
	Amount    int64           `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    *string         `json:"method,omitempty"`
	Note      *string         `json:"note,omitempty"`
	Visit     *visit.VisitRef `json:"visit,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreatePaymentInput struct {
	PatientID int64   `json:"patientId"`
	VisitID   *int64  `json:"visitId"`
	Amount    int64   `json:"amount"`
	Date      string  `json:"date"`
	Method    *string `json:"method"`
	Note      *string `json:"note"`
}
