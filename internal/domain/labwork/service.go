package labwork

import (
	"context"

	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/pkg/dateutil"
)

type Service struct {
	repo LabWorkRepository
}

func NewService(repo LabWorkRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateLabWorkInput) (*LabWork, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	if input.LabName == "" {
		return nil, apperr.Validation("labName is required")
	}
	if input.WorkType == "" {
		return nil, apperr.Validation("workType is required")
	}
	expected, err := dateutil.ParseOptional(input.ExpectedDeliveryDate)
	if err != nil {
		return nil, apperr.Validation("invalid expected delivery date")
	}

	w := &LabWork{
		PatientID:            input.PatientID,
		LabName:              input.LabName,
		WorkType:             input.WorkType,
		Notes:                input.Notes,
		ExpectedDeliveryDate: expected,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) List(ctx context.Context, pendingOnly bool) ([]*LabWork, error) {
	return s.repo.List(ctx, pendingOnly)
}

func (s *Service) MarkDelivered(ctx context.Context, id int64) (*LabWork, error) {
	return s.repo.MarkDelivered(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
