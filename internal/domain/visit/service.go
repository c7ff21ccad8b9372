package visit

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/internal/platform/db"
	"github.com/dencare/dencare/internal/platform/storage"
	"github.com/dencare/dencare/pkg/dateutil"
)

const (
	MaxUploadFiles    = 10
	MaxUploadFileSize = 10 << 20
)

var allowedUploadTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type Service struct {
	repo   VisitRepository
	tx     db.TxRunner
	store  storage.Store
	logger zerolog.Logger
}

func NewService(repo VisitRepository, tx db.TxRunner, store storage.Store, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tx: tx, store: store, logger: logger}
}

func parseVisitDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return dateutil.Parse(s)
}

func validateNestedInputs(oralFindings []OralFindingInput, investigations []InvestigationInput,
	treatmentPlan []TreatmentPlanInput, treatmentDone []TreatmentDoneInput,
	prescriptions []PrescriptionInput) error {
	for _, f := range oralFindings {
		if f.ToothNumber == "" {
			return apperr.Validation("oral finding tooth number is required")
		}
		if f.FindingOptionID <= 0 {
			return apperr.Validation("oral finding option id must be positive")
		}
	}
	for _, i := range investigations {
		if i.TypeOptionID <= 0 {
			return apperr.Validation("investigation type option id must be positive")
		}
	}
	for _, t := range treatmentPlan {
		if t.TreatmentOptionID <= 0 {
			return apperr.Validation("treatment option id must be positive")
		}
	}
	for _, t := range treatmentDone {
		if t.TreatmentOptionID <= 0 {
			return apperr.Validation("treatment option id must be positive")
		}
	}
	for _, p := range prescriptions {
		if p.MedicineID <= 0 {
			return apperr.Validation("medicine id must be positive")
		}
		if p.Quantity != nil && *p.Quantity <= 0 {
			return apperr.Validation("prescription quantity must be positive")
		}
		if p.Days != nil && *p.Days <= 0 {
			return apperr.Validation("prescription days must be positive")
		}
	}
	return nil
}

// CreateGeneral creates a GENERAL visit with its details and every nested
// collection in one transaction.
func (s *Service) CreateGeneral(ctx context.Context, input GeneralVisitInput) (*Visit, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	for _, c := range input.Complaints {
		if c.ComplaintOptionID <= 0 || c.QuadrantOptionID <= 0 {
			return nil, apperr.Validation("complaint and quadrant option ids must be positive")
		}
	}
	if err := validateNestedInputs(input.OralFindings, input.Investigations,
		input.TreatmentPlan, input.TreatmentDone, input.Prescriptions); err != nil {
		return nil, err
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}
	nextAppointment, err := dateutil.ParseOptional(input.NextAppointmentDate)
	if err != nil {
		return nil, apperr.Validation("invalid next appointment date")
	}

	v := &Visit{PatientID: input.PatientID, Type: TypeGeneral, Date: date}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateVisit(ctx, v); err != nil {
			return err
		}
		detailID, err := s.repo.CreateGeneralDetails(ctx, v.ID, input.Notes, nextAppointment)
		if err != nil {
			return err
		}
		if err := s.repo.InsertComplaints(ctx, detailID, input.Complaints); err != nil {
			return err
		}
		return s.insertSharedCollections(ctx, v.ID, detailID, input.OralFindings,
			input.Investigations, input.TreatmentPlan, input.TreatmentDone, input.Prescriptions)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetVisit(ctx, v.ID)
}

func (s *Service) insertSharedCollections(ctx context.Context, visitID, detailID int64,
	oralFindings []OralFindingInput, investigations []InvestigationInput,
	treatmentPlan []TreatmentPlanInput, treatmentDone []TreatmentDoneInput,
	prescriptions []PrescriptionInput) error {
	if err := s.repo.InsertOralFindings(ctx, detailID, oralFindings); err != nil {
		return err
	}
	if err := s.repo.InsertInvestigations(ctx, detailID, investigations); err != nil {
		return err
	}
	if err := s.repo.InsertTreatmentPlans(ctx, detailID, treatmentPlan); err != nil {
		return err
	}
	if err := s.repo.InsertTreatmentsDone(ctx, detailID, treatmentDone); err != nil {
		return err
	}
	return s.repo.InsertPrescriptions(ctx, visitID, prescriptions)
}

// CreateFollowUp chains a FOLLOW_UP visit off a base visit of the same
// patient. Follow-ups never carry complaints.
func (s *Service) CreateFollowUp(ctx context.Context, input FollowUpVisitInput) (*Visit, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	if input.BaseVisitID <= 0 {
		return nil, apperr.Validation("baseVisitId must be positive")
	}
	if err := validateNestedInputs(input.OralFindings, input.Investigations,
		input.TreatmentPlan, input.TreatmentDone, input.Prescriptions); err != nil {
		return nil, err
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}
	nextAppointment, err := dateutil.ParseOptional(input.NextAppointmentDate)
	if err != nil {
		return nil, apperr.Validation("invalid next appointment date")
	}

	base, err := s.repo.GetMeta(ctx, input.BaseVisitID)
	if err != nil {
		return nil, err
	}
	if base.PatientID != input.PatientID {
		return nil, apperr.NotFound("base visit not found for patient")
	}
	if base.Type == TypeFollowUp {
		return nil, apperr.Validation("a follow-up visit cannot be a base visit")
	}

	v := &Visit{
		PatientID:    input.PatientID,
		Type:         TypeFollowUp,
		Date:         date,
		FollowUpOfID: &input.BaseVisitID,
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateVisit(ctx, v); err != nil {
			return err
		}
		detailID, err := s.repo.CreateGeneralDetails(ctx, v.ID, input.Notes, nextAppointment)
		if err != nil {
			return err
		}
		return s.insertSharedCollections(ctx, v.ID, detailID, input.OralFindings,
			input.Investigations, input.TreatmentPlan, input.TreatmentDone, input.Prescriptions)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetVisit(ctx, v.ID)
}

func (s *Service) CreateOrthodonticPlan(ctx context.Context, input OrthodonticPlanInput) (*Visit, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	if input.BracketType != BracketMetalRegular && input.BracketType != BracketMetalPremium {
		return nil, apperr.Validation("bracketType must be METAL_REGULAR or METAL_PREMIUM")
	}
	if input.TotalAmount <= 0 {
		return nil, apperr.Validation("totalAmount must be positive")
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}

	v := &Visit{PatientID: input.PatientID, Type: TypeOrtho, Date: date}
	plan := &OrthodonticPlan{
		BracketType: input.BracketType,
		TotalAmount: input.TotalAmount,
		DoctorName:  input.DoctorName,
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateVisit(ctx, v); err != nil {
			return err
		}
		return s.repo.CreateOrthodonticPlan(ctx, v.ID, plan)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetVisit(ctx, v.ID)
}

func (s *Service) AddOrthodonticTreatment(ctx context.Context, input OrthodonticTreatmentInput) (*OrthodonticTreatment, error) {
	if input.PlanID <= 0 {
		return nil, apperr.Validation("planId must be positive")
	}
	if input.TreatmentLabel == "" {
		return nil, apperr.Validation("treatmentLabel is required")
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}
	exists, err := s.repo.OrthodonticPlanExists(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("plan %d not found", input.PlanID)
	}

	t := &OrthodonticTreatment{PlanID: input.PlanID, Date: date, TreatmentLabel: input.TreatmentLabel}
	if err := s.repo.AddOrthodonticTreatment(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) CreateRootCanalPlan(ctx context.Context, input RootCanalPlanInput) (*Visit, error) {
	if input.PatientID <= 0 {
		return nil, apperr.Validation("patientId must be positive")
	}
	if input.TotalAmount <= 0 {
		return nil, apperr.Validation("totalAmount must be positive")
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}

	v := &Visit{PatientID: input.PatientID, Type: TypeRootCanal, Date: date}
	plan := &RootCanalPlan{TotalAmount: input.TotalAmount}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateVisit(ctx, v); err != nil {
			return err
		}
		return s.repo.CreateRootCanalPlan(ctx, v.ID, plan)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetVisit(ctx, v.ID)
}

func (s *Service) AddRootCanalProcedure(ctx context.Context, input RootCanalProcedureInput) (*RootCanalProcedure, error) {
	if input.PlanID <= 0 {
		return nil, apperr.Validation("planId must be positive")
	}
	if input.ProcedureLabel == "" {
		return nil, apperr.Validation("procedureLabel is required")
	}
	date, err := parseVisitDate(input.Date)
	if err != nil {
		return nil, apperr.Validation("invalid date")
	}
	exists, err := s.repo.RootCanalPlanExists(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("plan %d not found", input.PlanID)
	}

	p := &RootCanalProcedure{PlanID: input.PlanID, Date: date, ProcedureLabel: input.ProcedureLabel}
	if err := s.repo.AddRootCanalProcedure(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetVisit(ctx context.Context, id int64) (*Visit, error) {
	return s.repo.GetVisit(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]*Visit, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// Replace is the full-replacement update for GENERAL and FOLLOW_UP visits.
// Each collection present in the input, even empty, replaces the stored rows
// wholesale; collections absent from the payload are left untouched. The
// whole update runs inside one transaction.
func (s *Service) Replace(ctx context.Context, id int64, visitType string, input ReplaceInput) (*Visit, error) {
	if visitType == TypeFollowUp {
		input.Complaints = nil
	}
	meta, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta.Type != visitType || meta.DetailID == nil {
		return nil, apperr.NotFound("visit %d not found", id)
	}
	detailID := *meta.DetailID

	current, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, err
	}

	var date *time.Time
	if input.Date != "" {
		d, err := dateutil.Parse(input.Date)
		if err != nil {
			return nil, apperr.Validation("invalid date")
		}
		date = &d
	}
	notes := current.GeneralDetails.Notes
	if input.Notes != nil {
		notes = input.Notes
	}
	nextAppointment := current.GeneralDetails.NextAppointmentDate
	if input.NextAppointmentDate != nil {
		nextAppointment, err = dateutil.ParseOptional(*input.NextAppointmentDate)
		if err != nil {
			return nil, apperr.Validation("invalid next appointment date")
		}
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if date != nil {
			if err := s.repo.UpdateVisitDate(ctx, id, *date); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateDetailScalars(ctx, detailID, notes, nextAppointment); err != nil {
			return err
		}
		if input.Complaints != nil {
			if err := s.repo.DeleteComplaints(ctx, detailID); err != nil {
				return err
			}
			if err := s.repo.InsertComplaints(ctx, detailID, *input.Complaints); err != nil {
				return err
			}
		}
		if input.OralFindings != nil {
			if err := s.repo.DeleteOralFindings(ctx, detailID); err != nil {
				return err
			}
			if err := s.repo.InsertOralFindings(ctx, detailID, *input.OralFindings); err != nil {
				return err
			}
		}
		if input.Investigations != nil {
			if err := s.repo.DeleteInvestigations(ctx, detailID); err != nil {
				return err
			}
			if err := s.repo.InsertInvestigations(ctx, detailID, *input.Investigations); err != nil {
				return err
			}
		}
		if input.TreatmentPlan != nil {
			if err := s.repo.DeleteTreatmentPlans(ctx, detailID); err != nil {
				return err
			}
			if err := s.repo.InsertTreatmentPlans(ctx, detailID, *input.TreatmentPlan); err != nil {
				return err
			}
		}
		if input.TreatmentDone != nil {
			if err := s.repo.DeleteTreatmentsDone(ctx, detailID); err != nil {
				return err
			}
			if err := s.repo.InsertTreatmentsDone(ctx, detailID, *input.TreatmentDone); err != nil {
				return err
			}
		}
		if input.Prescriptions != nil {
			if err := s.repo.DeletePrescriptions(ctx, id); err != nil {
				return err
			}
			if err := s.repo.InsertPrescriptions(ctx, id, *input.Prescriptions); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetVisit(ctx, id)
}

// Patch applies the scalar-only edit: date, notes, next appointment date.
func (s *Service) Patch(ctx context.Context, id int64, visitType string, patch ScalarPatch) (*Visit, error) {
	meta, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta.Type != visitType {
		return nil, apperr.NotFound("visit %d not found", id)
	}

	current, err := s.repo.GetVisit(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Date != "" {
		d, err := dateutil.Parse(patch.Date)
		if err != nil {
			return nil, apperr.Validation("invalid date")
		}
		if err := s.repo.UpdateVisitDate(ctx, id, d); err != nil {
			return nil, err
		}
	}
	if meta.DetailID != nil && (patch.Notes != nil || patch.NextAppointmentDate != nil) {
		notes := current.GeneralDetails.Notes
		if patch.Notes != nil {
			notes = patch.Notes
		}
		nextAppointment := current.GeneralDetails.NextAppointmentDate
		if patch.NextAppointmentDate != nil {
			nextAppointment, err = dateutil.ParseOptional(*patch.NextAppointmentDate)
			if err != nil {
				return nil, apperr.Validation("invalid next appointment date")
			}
		}
		if err := s.repo.UpdateDetailScalars(ctx, *meta.DetailID, notes, nextAppointment); err != nil {
			return nil, err
		}
	}
	return s.repo.GetVisit(ctx, id)
}

// Delete removes a visit together with all of its follow-ups and their
// nested children, bottom-up, inside a single transaction. A payment on the
// visit or on any of its follow-ups blocks the whole delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	meta, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountPaymentsForTree(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("cannot delete visit that has payments (including its follow-ups)")
	}

	followUps, err := s.repo.ListFollowUpMeta(ctx, id)
	if err != nil {
		return err
	}

	return s.tx(ctx, func(ctx context.Context) error {
		for _, fu := range followUps {
			if err := s.deleteVisitTreeLeaf(ctx, fu); err != nil {
				return err
			}
		}
		return s.deleteVisitTreeLeaf(ctx, *meta)
	})
}

// deleteVisitTreeLeaf removes one visit's children then the visit row,
// respecting foreign-key direction.
func (s *Service) deleteVisitTreeLeaf(ctx context.Context, meta VisitMeta) error {
	if err := s.repo.DeleteMediaForVisit(ctx, meta.ID); err != nil {
		return err
	}
	if err := s.repo.DeletePrescriptions(ctx, meta.ID); err != nil {
		return err
	}
	if meta.DetailID != nil {
		detailID := *meta.DetailID
		if err := s.repo.DeleteComplaints(ctx, detailID); err != nil {
			return err
		}
		if err := s.repo.DeleteOralFindings(ctx, detailID); err != nil {
			return err
		}
		if err := s.repo.DeleteInvestigations(ctx, detailID); err != nil {
			return err
		}
		if err := s.repo.DeleteTreatmentPlans(ctx, detailID); err != nil {
			return err
		}
		if err := s.repo.DeleteTreatmentsDone(ctx, detailID); err != nil {
			return err
		}
		if err := s.repo.DeleteGeneralDetails(ctx, detailID); err != nil {
			return err
		}
	}
	return s.repo.DeleteVisitRow(ctx, meta.ID)
}

// UploadFile is one part of a multipart media upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// InferAttachmentType classifies an upload: images and PDFs by content type,
// x-rays by filename, everything else is a plain file.
func InferAttachmentType(contentType, name string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case contentType == "application/pdf":
		return "pdf"
	case strings.Contains(strings.ToLower(name), "xray"):
		return "xray"
	default:
		return "file"
	}
}

// UploadMedia stores the files and records one attachment row per file in a
// single transaction. Returns the inserted count and the visit's full
// attachment list, newest first.
func (s *Service) UploadMedia(ctx context.Context, visitID int64, files []UploadFile) (int, []MediaAttachment, error) {
	if _, err := s.repo.GetMeta(ctx, visitID); err != nil {
		return 0, nil, err
	}
	if len(files) == 0 {
		return 0, nil, apperr.Validation("no files uploaded")
	}
	if len(files) > MaxUploadFiles {
		return 0, nil, apperr.Validation("at most %d files per upload", MaxUploadFiles)
	}
	for _, f := range files {
		if !allowedUploadTypes[f.ContentType] {
			return 0, nil, apperr.Unsupported("unsupported file type %q", f.ContentType)
		}
		if f.Size > MaxUploadFileSize {
			return 0, nil, apperr.Validation("file %q exceeds the 10MB limit", f.Name)
		}
	}

	// Store all files first, then insert the rows in one transaction. If
	// either phase fails, the stored files are removed again so nothing is
	// left behind without a matching row.
	stored := make([]string, 0, len(files))
	cleanup := func() {
		for _, name := range stored {
			if err := s.store.Delete(name); err != nil {
				s.logger.Warn().Err(err).Str("file", name).Msg("failed to remove attachment file")
			}
		}
	}

	for _, f := range files {
		storedName, err := s.store.Save(f.Name, f.Content)
		if err != nil {
			cleanup()
			return 0, nil, apperr.Internal("store file", err)
		}
		stored = append(stored, storedName)
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		for i, f := range files {
			m := &MediaAttachment{
				VisitID:      visitID,
				Path:         "uploads/" + stored[i],
				OriginalName: f.Name,
				MimeType:     f.ContentType,
				Size:         f.Size,
				Type:         InferAttachmentType(f.ContentType, f.Name),
			}
			if err := s.repo.CreateMedia(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return 0, nil, err
	}

	all, err := s.repo.ListMedia(ctx, visitID)
	if err != nil {
		return len(files), nil, err
	}
	return len(files), all, nil
}

// DeleteMedia removes the attachment row, then removes the stored file best
// effort: a failed file delete is logged and never surfaces to the caller.
func (s *Service) DeleteMedia(ctx context.Context, visitID, mediaID int64) error {
	m, err := s.repo.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if m.VisitID != visitID {
		return apperr.NotFound("attachment %d not found", mediaID)
	}
	if err := s.repo.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}
	storedName := strings.TrimPrefix(m.Path, "uploads/")
	if err := s.store.Delete(storedName); err != nil {
		s.logger.Warn().Err(err).Str("path", m.Path).Msg("failed to remove attachment file")
	}
	return nil
}
