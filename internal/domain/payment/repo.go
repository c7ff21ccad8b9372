package payment

import "context"

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Delete(ctx context.Context, id int64) error
	// Unlink detaches the payment from its visit, keeping the row.
	Unlink(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64) ([]*Payment, error)
	SumByPatient(ctx context.Context, patientID int64) (int64, error)
	VisitExists(ctx context.Context, visitID int64) (bool, error)
}
