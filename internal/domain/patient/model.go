// Package patient implements the patient registry with its dense,
// gap-free display-number sequence and the history selection sets.
package patient

import "time"

// Patient maps to the patients table. DisplayNumber is the user-facing
// chart number: always a contiguous 1..N permutation over all patients.
type Patient struct {
	ID            int64     `json:"id"`
	DisplayNumber int       `json:"displayNumber"`
	Name          string    `json:"name"`
	Age           *int      `json:"age,omitempty"`
	Sex           string    `json:"sex"`
	Address       *string   `json:"address,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Whatsapp      bool      `json:"whatsapp"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

var validSexes = map[string]bool{"M": true, "F": true, "Other": true}

type CreatePatientInput struct {
	Name                  string  `json:"name"`
	Age                   *int    `json:"age"`
	Sex                   string  `json:"sex"`
	Address               *string `json:"address"`
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Whatsapp              bool    `json:"whatsapp"`
	DisplayNumberOverride int     `json:"displayNumberOverride"`
}

// HistorySet names one of the three patient history selection tables.
type HistorySet string

const (
	DentalHistory  HistorySet = "dental"
	MedicalHistory HistorySet = "medical"
	Allergies      HistorySet = "allergy"
)

// HistoryOption is the resolved option a selection points at.
type HistoryOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// HistoryItem is one row of a patient history selection set.
type HistoryItem struct {
	ID     int64         `json:"id"`
	Option HistoryOption `json:"option"`
}

// UpdateHistoryInput replaces each selection set that is present; a nil
// slice leaves the stored set alone, an empty one clears it.
type UpdateHistoryInput struct {
	DentalHistoryIDs  *[]int64 `json:"dentalHistoryIds"`
	MedicalHistoryIDs *[]int64 `json:"medicalHistoryIds"`
	AllergyIDs        *[]int64 `json:"allergyIds"`
}
