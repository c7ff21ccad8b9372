package payment

import (
	"context"
	"time"

	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/pkg/dateutil"
)

type Service struct {
	repo PaymentRepository
}

func NewService(repo PaymentRepository) *Service {
	return &Service{repo: repo}
}

// Create records a payment. The visit link is validated for existence only;
// whether the visit belongs to the same patient is the caller's concern.
func (s *Service) Create(ctx context.Context, input CreatePaymentInput) (*Payment, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	if input.Amount <= 0 {
		return nil, apperr.Validation("amount must be a positive integer")
	}
	date := time.Now()
	if input.Date != "" {
		d, err := dateutil.Parse(input.Date)
		if err != nil {
			return nil, apperr.Validation("invalid date")
		}
		date = d
	}
	if input.VisitID != nil {
		if *input.VisitID <= 0 {
			return nil, apperr.Validation("visitId must be positive")
		}
		exists, err := s.repo.VisitExists(ctx, *input.VisitID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("visit %d not found", *input.VisitID)
		}
	}

	p := &Payment{
		PatientID: input.PatientID,
		VisitID:   input.VisitID,
		Amount:    input.Amount,
		Date:      date,
		Method:    input.Method,
		Note:      input.Note,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Unlink clears the payment's visit link so the visit becomes deletable.
func (s *Service) Unlink(ctx context.Context, id int64) (*Payment, error) {
	if err := s.repo.Unlink(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*Payment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) SumByPatient(ctx context.Context, patientID int64) (int64, error) {
	return s.repo.SumByPatient(ctx, patientID)
}
