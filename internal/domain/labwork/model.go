// Package labwork tracks items sent to an external dental lab (crowns,
// dentures, aligners) until they are delivered back to the clinic.
package labwork

import "time"

type LabWork struct {
	ID                   int64      `json:"id"`
	PatientID            int64      `json:"patientId"`
	LabName              string     `json:"labName"`
	WorkType             string     `json:"workType"`
	Notes                *string    `json:"notes,omitempty"`
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate"`
	Delivered            bool       `json:"delivered"`
	CreatedAt            time.Time  `json:"createdAt"`
}

type CreateLabWorkInput struct {
	PatientID            int64   `json:"patientId"`
	LabName              string  `json:"labName"`
	WorkType             string  `json:"workType"`
	Notes                *string `json:"notes"`
	ExpectedDeliveryDate string  `json:"expectedDeliveryDate"`
}
