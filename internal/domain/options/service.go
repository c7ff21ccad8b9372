package options

import (
	"context"

	"github.com/dencare/dencare/internal/platform/apperr"
)

const maxLabelLength = 120

type Service struct {
	repo OptionRepository
}

func NewService(repo OptionRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, kind Kind) ([]Option, error) {
	if !kind.valid() {
		return nil, apperr.NotFound("unknown option type %q", kind)
	}
	return s.repo.List(ctx, kind)
}

func (s *Service) Create(ctx context.Context, kind Kind, label string, category *string) (*Option, error) {
	if !kind.valid() || kind.ReadOnly() {
		return nil, apperr.NotFound("unknown option type %q", kind)
	}
	if label == "" {
		return nil, apperr.Validation("label is required")
	}
	if len(label) > maxLabelLength {
		return nil, apperr.Validation("label exceeds %d characters", maxLabelLength)
	}
	if !tables[kind].hasCategory {
		category = nil
	}
	return s.repo.Create(ctx, kind, label, category)
}

// Defaults are the rows installed by the seed command.
var Defaults = map[Kind][]string{
	KindComplaints: {"Pain", "Stains", "Swelling", "Sensitivity", "Mobile tooth", "Decayed Tooth", "Broken Tooth"},
	KindQuadrants:  {"U/L", "U/R", "U/F", "L/R", "L/L", "L/F", "All"},
	KindOralFindings: {
		"DDC", "DC", "PI", "Generalized Stains and Deposits", "ECC",
		"Initial Carious Lesion", "Severe Black stains", "Grade 1 mobile",
	},
	KindTreatments:         {"Root Canal", "Oral Prophylaxis", "Extraction", "Filling", "Alignment Review"},
	KindMedicines:          {"Amoxicillin 500mg", "Ibuprofen 400mg", "Paracetamol 500mg", "Chlorhexidine Mouthwash"},
	KindInvestigationTypes: {"IOPAR", "OPG", "CBCT"},
}

// SeedDefaults installs the default option rows, leaving existing rows alone.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, kind := range Kinds {
		labels, ok := Defaults[kind]
		if !ok {
			continue
		}
		if err := s.repo.Seed(ctx, kind, labels); err != nil {
			return err
		}
	}
	return nil
}
