package patient

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Delete(ctx context.Context, id int64) error

	MaxDisplayNumber(ctx context.Context) (int, error)
	// ShiftDisplayFrom increments every display number >= from by one.
	ShiftDisplayFrom(ctx context.Context, from int) error
	// ShiftDisplayRange adds delta to every display number in [lo, hi].
	ShiftDisplayRange(ctx context.Context, lo, hi, delta int) error
	SetDisplayNumber(ctx context.Context, id int64, displayNumber int) error
	// IDsByCreation returns all patient ids ordered by (created_at, id).
	IDsByCreation(ctx context.Context) ([]int64, error)

	History(ctx context.Context, patientID int64, set HistorySet) ([]HistoryItem, error)
	// ReplaceHistory removes the patient's current selection for the set
	// and inserts the given option ids.
	ReplaceHistory(ctx context.Context, patientID int64, set HistorySet, optionIDs []int64) error
}
