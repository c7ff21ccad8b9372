package labwork

import "context"

type LabWorkRepository interface {
	Create(ctx context.Context, w *LabWork) error
	List(ctx context.Context, pendingOnly bool) ([]*LabWork, error)
	MarkDelivered(ctx context.Context, id int64) (*LabWork, error)
	Delete(ctx context.Context, id int64) error
	CountPending(ctx context.Context) (int, error)
}
