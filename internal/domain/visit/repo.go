package visit

import (
	"context"
	"time"
)

// VisitMeta is the shallow shape used by update and delete paths: the visit
// row plus its general-details id, without any nested collections.
type VisitMeta struct {
	ID           int64
	PatientID    int64
	Type         string
	FollowUpOfID *int64
	DetailID     *int64
}

type VisitRepository interface {
	CreateVisit(ctx context.Context, v *Visit) error
	CreateGeneralDetails(ctx context.Context, visitID int64, notes *string, nextAppointment *time.Time) (int64, error)

	InsertComplaints(ctx context.Context, detailID int64, items []ComplaintInput) error
	InsertOralFindings(ctx context.Context, detailID int64, items []OralFindingInput) error
	InsertInvestigations(ctx context.Context, detailID int64, items []InvestigationInput) error
	InsertTreatmentPlans(ctx context.Context, detailID int64, items []TreatmentPlanInput) error
	InsertTreatmentsDone(ctx context.Context, detailID int64, items []TreatmentDoneInput) error
	// InsertPrescriptions assigns slNo 1..len(items) in input order.
	InsertPrescriptions(ctx context.Context, visitID int64, items []PrescriptionInput) error

	DeleteComplaints(ctx context.Context, detailID int64) error
	DeleteOralFindings(ctx context.Context, detailID int64) error
	DeleteInvestigations(ctx context.Context, detailID int64) error
	DeleteTreatmentPlans(ctx context.Context, detailID int64) error
	DeleteTreatmentsDone(ctx context.Context, detailID int64) error
	DeletePrescriptions(ctx context.Context, visitID int64) error
	DeleteMediaForVisit(ctx context.Context, visitID int64) error
	DeleteGeneralDetails(ctx context.Context, detailID int64) error
	DeleteVisitRow(ctx context.Context, id int64) error

	GetVisit(ctx context.Context, id int64) (*Visit, error)
	GetMeta(ctx context.Context, id int64) (*VisitMeta, error)
	ListFollowUpMeta(ctx context.Context, baseVisitID int64) ([]VisitMeta, error)
	ListForPatient(ctx context.Context, patientID int64) ([]*Visit, error)

	UpdateVisitDate(ctx context.Context, id int64, date time.Time) error
	UpdateDetailScalars(ctx context.Context, detailID int64, notes *string, nextAppointment *time.Time) error

	// CountPaymentsForTree counts payments on the visit itself or on any of
	// its follow-ups.
	CountPaymentsForTree(ctx context.Context, visitID int64) (int, error)

	CreateOrthodonticPlan(ctx context.Context, visitID int64, plan *OrthodonticPlan) error
	OrthodonticPlanExists(ctx context.Context, planID int64) (bool, error)
	AddOrthodonticTreatment(ctx context.Context, t *OrthodonticTreatment) error
	CreateRootCanalPlan(ctx context.Context, visitID int64, plan *RootCanalPlan) error
	RootCanalPlanExists(ctx context.Context, planID int64) (bool, error)
	AddRootCanalProcedure(ctx context.Context, p *RootCanalProcedure) error

	CreateMedia(ctx context.Context, m *MediaAttachment) error
	ListMedia(ctx context.Context, visitID int64) ([]MediaAttachment, error)
	GetMedia(ctx context.Context, mediaID int64) (*MediaAttachment, error)
	DeleteMedia(ctx context.Context, mediaID int64) error
}
