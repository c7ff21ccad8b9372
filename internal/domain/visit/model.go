// Package visit implements the clinical visit aggregate: general exams with
// their nested documentation, follow-up chains, orthodontic and root-canal
// plans, prescriptions and media attachments.
package visit

import "time"

// Visit types.
const (
	TypeGeneral   = "GENERAL"
	TypeFollowUp  = "FOLLOW_UP"
	TypeOrtho     = "ORTHODONTIC"
	TypeRootCanal = "ROOT_CANAL"
)

// Bracket types for orthodontic plans.
const (
	BracketMetalRegular = "METAL_REGULAR"
	BracketMetalPremium = "METAL_PREMIUM"
)

// OptionRef is a resolved reference-option (label carries the quadrant code
// and medicine name for those kinds).
type OptionRef struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Visit is the aggregate root. Exactly one of GeneralDetails,
// OrthodonticPlan and RootCanalPlan is set, matching Type.
type Visit struct {
	ID              int64             `json:"id"`
	PatientID       int64             `json:"patientId"`
	Type            string            `json:"type"`
	Date            time.Time         `json:"date"`
	FollowUpOfID    *int64            `json:"followUpOfId,omitempty"`
	GeneralDetails  *GeneralDetails   `json:"generalDetails,omitempty"`
	Prescriptions   []Prescription    `json:"prescriptions"`
	Media           []MediaAttachment `json:"media"`
	FollowUpOf      *VisitRef         `json:"followUpOf,omitempty"`
	FollowUps       []*Visit          `json:"followUps,omitempty"`
	OrthodonticPlan *OrthodonticPlan  `json:"orthodonticPlan,omitempty"`
	RootCanalPlan   *RootCanalPlan    `json:"rootCanalPlan,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// VisitRef is the minimal shape used when a visit is referenced from
// another record.
type VisitRef struct {
	ID   int64     `json:"id"`
	Date time.Time `json:"date"`
	Type string    `json:"type"`
}

// GeneralDetails is the 1:1 documentation child of GENERAL and FOLLOW_UP
// visits, owning the nested collections.
type GeneralDetails struct {
	ID                  int64               `json:"id"`
	Notes               *string             `json:"notes,omitempty"`
	NextAppointmentDate *time.Time          `json:"nextAppointmentDate"`
	Complaints          []ComplaintItem     `json:"complaints"`
	OralFindings        []OralFindingItem   `json:"oralFindings"`
	Investigations      []InvestigationItem `json:"investigations"`
	TreatmentPlans      []TreatmentPlanItem `json:"treatmentPlans"`
	TreatmentsDone      []TreatmentDoneItem `json:"treatmentsDone"`
}

type ComplaintItem struct {
	ID          int64      `json:"id"`
	ComplaintID int64      `json:"complaintId"`
	QuadrantID  int64      `json:"quadrantId"`
	Complaint   *OptionRef `json:"complaint,omitempty"`
	Quadrant    *OptionRef `json:"quadrant,omitempty"`
}

type OralFindingItem struct {
	ID          int64      `json:"id"`
	ToothNumber string     `json:"toothNumber"`
	FindingID   int64      `json:"findingId"`
	Finding     *OptionRef `json:"finding,omitempty"`
}

type InvestigationItem struct {
	ID           int64      `json:"id"`
	TypeOptionID int64      `json:"typeOptionId"`
	TypeOption   *OptionRef `json:"typeOption,omitempty"`
	Findings     *string    `json:"findings,omitempty"`
	ToothNumber  *string    `json:"toothNumber,omitempty"`
	ImagePath    *string    `json:"imagePath,omitempty"`
}

type TreatmentPlanItem struct {
	ID          int64      `json:"id"`
	TreatmentID int64      `json:"treatmentId"`
	ToothNumber *string    `json:"toothNumber,omitempty"`
	Treatment   *OptionRef `json:"treatment,omitempty"`
}

type TreatmentDoneItem struct {
	ID          int64      `json:"id"`
	TreatmentID int64      `json:"treatmentId"`
	ToothNumber *string    `json:"toothNumber,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Treatment   *OptionRef `json:"treatment,omitempty"`
}

// Prescription rows are ordered by SlNo, a dense 1-based sequence per visit
// reassigned on every full replace.
type Prescription struct {
	ID         int64      `json:"id"`
	SlNo       int        `json:"slNo"`
	MedicineID int64      `json:"medicineId"`
	Medicine   *OptionRef `json:"medicine,omitempty"`
	Timing     *string    `json:"timing,omitempty"`
	Quantity   *int       `json:"quantity,omitempty"`
	Days       *int       `json:"days,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// MediaAttachment is a stored upload belonging to a visit.
type MediaAttachment struct {
	ID           int64     `json:"id"`
	VisitID      int64     `json:"-"`
	Path         string    `json:"path"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"createdAt"`
}

type OrthodonticPlan struct {
	ID          int64                  `json:"id"`
	BracketType string                 `json:"bracketType"`
	TotalAmount int64                  `json:"totalAmount"`
	DoctorName  *string                `json:"doctorName,omitempty"`
	Treatments  []OrthodonticTreatment `json:"treatments"`
}

type OrthodonticTreatment struct {
	ID             int64     `json:"id"`
	PlanID         int64     `json:"orthodonticPlanId"`
	Date           time.Time `json:"date"`
	TreatmentLabel string    `json:"treatmentLabel"`
}

type RootCanalPlan struct {
	ID          int64                `json:"id"`
	TotalAmount int64                `json:"totalAmount"`
	Procedures  []RootCanalProcedure `json:"procedures"`
}

type RootCanalProcedure struct {
	ID             int64     `json:"id"`
	PlanID         int64     `json:"planId"`
	Date           time.Time `json:"date"`
	ProcedureLabel string    `json:"procedureLabel"`
}

// -- Inputs --

type ComplaintInput struct {
	ComplaintOptionID int64 `json:"complaintOptionId"`
	QuadrantOptionID  int64 `json:"quadrantOptionId"`
}

type OralFindingInput struct {
	ToothNumber     string `json:"toothNumber"`
	FindingOptionID int64  `json:"findingOptionId"`
}

type InvestigationInput struct {
	TypeOptionID int64   `json:"typeOptionId"`
	Findings     *string `json:"findings"`
	ToothNumber  *string `json:"toothNumber"`
	ImagePath    *string `json:"imagePath"`
}

type TreatmentPlanInput struct {
	TreatmentOptionID int64   `json:"treatmentOptionId"`
	ToothNumber       *string `json:"toothNumber"`
}

type TreatmentDoneInput struct {
	TreatmentOptionID int64   `json:"treatmentOptionId"`
	ToothNumber       *string `json:"toothNumber"`
	Notes             *string `json:"notes"`
}

type PrescriptionInput struct {
	MedicineID int64   `json:"medicineId"`
	Timing     *string `json:"timing"`
	Quantity   *int    `json:"quantity"`
	Days       *int    `json:"days"`
	Notes      *string `json:"notes"`
}

type GeneralVisitInput struct {
	PatientID           int64                `json:"patientId"`
	Date                string               `json:"date"`
	Notes               *string              `json:"notes"`
	NextAppointmentDate string               `json:"nextAppointmentDate"`
	Complaints          []ComplaintInput     `json:"complaints"`
	OralFindings        []OralFindingInput   `json:"oralFindings"`
	Investigations      []InvestigationInput `json:"investigations"`
	TreatmentPlan       []TreatmentPlanInput `json:"treatmentPlan"`
	TreatmentDone       []TreatmentDoneInput `json:"treatmentDone"`
	Prescriptions       []PrescriptionInput  `json:"prescriptions"`
}

// FollowUpVisitInput mirrors GeneralVisitInput minus complaints; stray
// complaint keys in a payload are simply dropped by decoding.
type FollowUpVisitInput struct {
	PatientID           int64                `json:"patientId"`
	BaseVisitID         int64                `json:"baseVisitId"`
	Date                string               `json:"date"`
	Notes               *string              `json:"notes"`
	NextAppointmentDate string               `json:"nextAppointmentDate"`
	OralFindings        []OralFindingInput   `json:"oralFindings"`
	Investigations      []InvestigationInput `json:"investigations"`
	TreatmentPlan       []TreatmentPlanInput `json:"treatmentPlan"`
	TreatmentDone       []TreatmentDoneInput `json:"treatmentDone"`
	Prescriptions       []PrescriptionInput  `json:"prescriptions"`
}

// ReplaceInput drives the full-replacement update. A nil collection leaves
// the stored rows alone; a present collection, even empty, replaces them
// wholesale.
type ReplaceInput struct {
	Date                string                `json:"date"`
	Notes               *string               `json:"notes"`
	NextAppointmentDate *string               `json:"nextAppointmentDate"`
	Complaints          *[]ComplaintInput     `json:"complaints"`
	OralFindings        *[]OralFindingInput   `json:"oralFindings"`
	Investigations      *[]InvestigationInput `json:"investigations"`
	TreatmentPlan       *[]TreatmentPlanInput `json:"treatmentPlan"`
	TreatmentDone       *[]TreatmentDoneInput `json:"treatmentDone"`
	Prescriptions       *[]PrescriptionInput  `json:"prescriptions"`
}

// ScalarPatch is the lightweight edit: only the scalar fields, each applied
// when present.
type ScalarPatch struct {
	Date                string  `json:"date"`
	Notes               *string `json:"notes"`
	NextAppointmentDate *string `json:"nextAppointmentDate"`
}

type OrthodonticPlanInput struct {
	PatientID   int64   `json:"patientId"`
	BracketType string  `json:"bracketType"`
	TotalAmount int64   `json:"totalAmount"`
	DoctorName  *string `json:"doctorName"`
	Date        string  `json:"date"`
}

type OrthodonticTreatmentInput struct {
	PlanID         int64  `json:"planId"`
	TreatmentLabel string `json:"treatmentLabel"`
	Date           string `json:"date"`
}

type RootCanalPlanInput struct {
	PatientID   int64  `json:"patientId"`
	TotalAmount int64  `json:"totalAmount"`
	Date        string `json:"date"`
}

type RootCanalProcedureInput struct {
	PlanID         int64  `json:"planId"`
	ProcedureLabel string `json:"procedureLabel"`
	Date           string `json:"date"`
}
