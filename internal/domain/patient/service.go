package patient

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/internal/platform/db"
)

type Service struct {
	repo PatientRepository
	tx   db.TxRunner
}

func NewService(repo PatientRepository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

// CreatePatient assigns the display number inside one transaction. An
// override opens a slot by shifting every patient at or above it up by one;
// otherwise the next free number is max+1.
func (s *Service) CreatePatient(ctx context.Context, input CreatePatientInput) (*Patient, error) {
	if input.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !validSexes[input.Sex] {
		return nil, apperr.Validation("sex must be M, F or Other")
	}
	if input.Age != nil && *input.Age <= 0 {
		return nil, apperr.Validation("age must be positive")
	}
	if input.DisplayNumberOverride < 0 {
		return nil, apperr.Validation("displayNumberOverride must be positive")
	}

	p := &Patient{
		Name:     input.Name,
		Age:      input.Age,
		Sex:      input.Sex,
		Address:  input.Address,
		Phone:    input.Phone,
		Email:    input.Email,
		Whatsapp: input.Whatsapp,
	}
	err := s.tx(ctx, func(ctx context.Context) error {
		if input.DisplayNumberOverride > 0 {
			if err := s.repo.ShiftDisplayFrom(ctx, input.DisplayNumberOverride); err != nil {
				return err
			}
			p.DisplayNumber = input.DisplayNumberOverride
		} else {
			max, err := s.repo.MaxDisplayNumber(ctx)
			if err != nil {
				return err
			}
			p.DisplayNumber = max + 1
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateDisplayNumber moves a patient to a new display number and closes the
// gap by shifting the affected range, all in one transaction so no duplicate
// or missing number is ever visible outside it.
func (s *Service) UpdateDisplayNumber(ctx context.Context, id int64, newDisplay int) (*Patient, error) {
	if newDisplay <= 0 {
		return nil, apperr.Validation("newDisplay must be positive")
	}
	var updated *Patient
	err := s.tx(ctx, func(ctx context.Context) error {
		target, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		old := target.DisplayNumber
		if old == newDisplay {
			updated = target
			return nil
		}
		if newDisplay < old {
			err = s.repo.ShiftDisplayRange(ctx, newDisplay, old-1, 1)
		} else {
			err = s.repo.ShiftDisplayRange(ctx, old+1, newDisplay, -1)
		}
		if err != nil {
			return err
		}
		if err := s.repo.SetDisplayNumber(ctx, id, newDisplay); err != nil {
			return err
		}
		target.DisplayNumber = newDisplay
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePatient removes the patient and renumbers the survivors, both inside
// the same transaction.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.resequence(ctx)
	})
}

// Resequence reassigns display numbers 1..N in (created_at, id) order.
func (s *Service) Resequence(ctx context.Context) error {
	return s.tx(ctx, s.resequence)
}

func (s *Service) resequence(ctx context.Context) error {
	ids, err := s.repo.IDsByCreation(ctx)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if err := s.repo.SetDisplayNumber(ctx, id, i+1); err != nil {
			return err
		}
	}
	return nil
}

// UpdateHistory replaces each selection set present in the input. The whole
// update is one transaction.
func (s *Service) UpdateHistory(ctx context.Context, id int64, input UpdateHistoryInput) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if input.DentalHistoryIDs != nil {
			if err := s.repo.ReplaceHistory(ctx, id, DentalHistory, *input.DentalHistoryIDs); err != nil {
				return err
			}
		}
		if input.MedicalHistoryIDs != nil {
			if err := s.repo.ReplaceHistory(ctx, id, MedicalHistory, *input.MedicalHistoryIDs); err != nil {
				return err
			}
		}
		if input.AllergyIDs != nil {
			if err := s.repo.ReplaceHistory(ctx, id, Allergies, *input.AllergyIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) History(ctx context.Context, id int64, set HistorySet) ([]HistoryItem, error) {
	return s.repo.History(ctx, id, set)
}

var exportHeader = []string{"No", "Name", "Age", "Sex", "Address", "Phone", "Email", "WhatsApp"}

// ExportXLSX renders the full registry as a workbook, one row per patient in
// display-number order.
func (s *Service) ExportXLSX(ctx context.Context) (*excelize.File, error) {
	patients, _, err := s.repo.List(ctx, 1<<30, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Patients"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for row, p := range patients {
		values := []any{
			p.DisplayNumber, p.Name, deref(p.Age), p.Sex,
			derefStr(p.Address), derefStr(p.Phone), derefStr(p.Email), p.Whatsapp,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}
	return f, nil
}

func deref(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
