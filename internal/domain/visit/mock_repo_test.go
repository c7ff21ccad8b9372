package visit

import (
	"context"
	"errors"
	"time"

	"github.com/dencare/dencare/internal/platform/apperr"
)

// mockVisitRepo keeps row-level state per table so replace and cascade
// semantics behave like the real store.
type mockVisitRepo struct {
	nextID int64

	visits  map[int64]*Visit
	details map[int64]*mockDetail

	complaints     map[int64][]ComplaintItem     // by detail id
	oralFindings   map[int64][]OralFindingItem   // by detail id
	investigations map[int64][]InvestigationItem // by detail id
	treatmentPlans map[int64][]TreatmentPlanItem // by detail id
	treatmentsDone map[int64][]TreatmentDoneItem // by detail id
	prescriptions  map[int64][]Prescription      // by visit id
	media          map[int64]*MediaAttachment    // by media id

	orthoPlans map[int64]*OrthodonticPlan // by plan id
	orthoVisit map[int64]int64            // visit id -> plan id
	rcPlans    map[int64]*RootCanalPlan   // by plan id
	rcVisit    map[int64]int64            // visit id -> plan id

	// visit ids that have a payment attached
	paymentVisits []int64

	// when set, GetMeta fails with this error
	metaErr error

	// when > 0, CreateMedia fails on the nth call (1-based)
	mediaFailOn int
	mediaCalls  int
}

type mockDetail struct {
	ID              int64
	VisitID         int64
	Notes           *string
	NextAppointment *time.Time
}

func newMockVisitRepo() *mockVisitRepo {
	return &mockVisitRepo{
		visits:         make(map[int64]*Visit),
		details:        make(map[int64]*mockDetail),
		complaints:     make(map[int64][]ComplaintItem),
		oralFindings:   make(map[int64][]OralFindingItem),
		investigations: make(map[int64][]InvestigationItem),
		treatmentPlans: make(map[int64][]TreatmentPlanItem),
		treatmentsDone: make(map[int64][]TreatmentDoneItem),
		prescriptions:  make(map[int64][]Prescription),
		media:          make(map[int64]*MediaAttachment),
		orthoPlans:     make(map[int64]*OrthodonticPlan),
		orthoVisit:     make(map[int64]int64),
		rcPlans:        make(map[int64]*RootCanalPlan),
		rcVisit:        make(map[int64]int64),
	}
}

func (m *mockVisitRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockVisitRepo) CreateVisit(_ context.Context, v *Visit) error {
	v.ID = m.id()
	v.CreatedAt = time.Now()
	clone := *v
	m.visits[v.ID] = &clone
	return nil
}

func (m *mockVisitRepo) CreateGeneralDetails(_ context.Context, visitID int64, notes *string, next *time.Time) (int64, error) {
	d := &mockDetail{ID: m.id(), VisitID: visitID, Notes: notes, NextAppointment: next}
	m.details[d.ID] = d
	return d.ID, nil
}

func (m *mockVisitRepo) InsertComplaints(_ context.Context, detailID int64, items []ComplaintInput) error {
	for _, it := range items {
		m.complaints[detailID] = append(m.complaints[detailID], ComplaintItem{
			ID: m.id(), ComplaintID: it.ComplaintOptionID, QuadrantID: it.QuadrantOptionID,
		})
	}
	return nil
}

func (m *mockVisitRepo) InsertOralFindings(_ context.Context, detailID int64, items []OralFindingInput) error {
	for _, it := range items {
		m.oralFindings[detailID] = append(m.oralFindings[detailID], OralFindingItem{
			ID: m.id(), ToothNumber: it.ToothNumber, FindingID: it.FindingOptionID,
		})
	}
	return nil
}

func (m *mockVisitRepo) InsertInvestigations(_ context.Context, detailID int64, items []InvestigationInput) error {
	for _, it := range items {
		m.investigations[detailID] = append(m.investigations[detailID], InvestigationItem{
			ID: m.id(), TypeOptionID: it.TypeOptionID, Findings: it.Findings,
			ToothNumber: it.ToothNumber, ImagePath: it.ImagePath,
		})
	}
	return nil
}

func (m *mockVisitRepo) InsertTreatmentPlans(_ context.Context, detailID int64, items []TreatmentPlanInput) error {
	for _, it := range items {
		m.treatmentPlans[detailID] = append(m.treatmentPlans[detailID], TreatmentPlanItem{
			ID: m.id(), TreatmentID: it.TreatmentOptionID, ToothNumber: it.ToothNumber,
		})
	}
	return nil
}

func (m *mockVisitRepo) InsertTreatmentsDone(_ context.Context, detailID int64, items []TreatmentDoneInput) error {
	for _, it := range items {
		m.treatmentsDone[detailID] = append(m.treatmentsDone[detailID], TreatmentDoneItem{
			ID: m.id(), TreatmentID: it.TreatmentOptionID, ToothNumber: it.ToothNumber, Notes: it.Notes,
		})
	}
	return nil
}

func (m *mockVisitRepo) InsertPrescriptions(_ context.Context, visitID int64, items []PrescriptionInput) error {
	for i, it := range items {
		m.prescriptions[visitID] = append(m.prescriptions[visitID], Prescription{
			ID: m.id(), SlNo: i + 1, MedicineID: it.MedicineID,
			Timing: it.Timing, Quantity: it.Quantity, Days: it.Days, Notes: it.Notes,
		})
	}
	return nil
}

func (m *mockVisitRepo) DeleteComplaints(_ context.Context, detailID int64) error {
	delete(m.complaints, detailID)
	return nil
}

func (m *mockVisitRepo) DeleteOralFindings(_ context.Context, detailID int64) error {
	delete(m.oralFindings, detailID)
	return nil
}

func (m *mockVisitRepo) DeleteInvestigations(_ context.Context, detailID int64) error {
	delete(m.investigations, detailID)
	return nil
}

func (m *mockVisitRepo) DeleteTreatmentPlans(_ context.Context, detailID int64) error {
	delete(m.treatmentPlans, detailID)
	return nil
}

func (m *mockVisitRepo) DeleteTreatmentsDone(_ context.Context, detailID int64) error {
	delete(m.treatmentsDone, detailID)
	return nil
}

func (m *mockVisitRepo) DeletePrescriptions(_ context.Context, visitID int64) error {
	delete(m.prescriptions, visitID)
	return nil
}

func (m *mockVisitRepo) DeleteMediaForVisit(_ context.Context, visitID int64) error {
	for id, att := range m.media {
		if att.VisitID == visitID {
			delete(m.media, id)
		}
	}
	return nil
}

func (m *mockVisitRepo) DeleteGeneralDetails(_ context.Context, detailID int64) error {
	delete(m.details, detailID)
	return nil
}

func (m *mockVisitRepo) DeleteVisitRow(_ context.Context, id int64) error {
	delete(m.visits, id)
	return nil
}

func (m *mockVisitRepo) detailFor(visitID int64) *mockDetail {
	for _, d := range m.details {
		if d.VisitID == visitID {
			return d
		}
	}
	return nil
}

func (m *mockVisitRepo) GetMeta(_ context.Context, id int64) (*VisitMeta, error) {
	if m.metaErr != nil {
		return nil, m.metaErr
	}
	v, ok := m.visits[id]
	if !ok {
		return nil, apperr.NotFound("visit %d not found", id)
	}
	meta := &VisitMeta{ID: v.ID, PatientID: v.PatientID, Type: v.Type, FollowUpOfID: v.FollowUpOfID}
	if d := m.detailFor(id); d != nil {
		meta.DetailID = &d.ID
	}
	return meta, nil
}

func (m *mockVisitRepo) ListFollowUpMeta(ctx context.Context, baseVisitID int64) ([]VisitMeta, error) {
	var metas []VisitMeta
	for _, v := range m.visits {
		if v.FollowUpOfID != nil && *v.FollowUpOfID == baseVisitID {
			meta, _ := m.GetMeta(ctx, v.ID)
			metas = append(metas, *meta)
		}
	}
	return metas, nil
}

func (m *mockVisitRepo) GetVisit(ctx context.Context, id int64) (*Visit, error) {
	return m.assemble(ctx, id, true)
}

func (m *mockVisitRepo) assemble(ctx context.Context, id int64, withFollowUps bool) (*Visit, error) {
	stored, ok := m.visits[id]
	if !ok {
		return nil, apperr.NotFound("visit %d not found", id)
	}
	v := *stored
	if d := m.detailFor(id); d != nil {
		v.GeneralDetails = &GeneralDetails{
			ID:                  d.ID,
			Notes:               d.Notes,
			NextAppointmentDate: d.NextAppointment,
			Complaints:          append([]ComplaintItem{}, m.complaints[d.ID]...),
			OralFindings:        append([]OralFindingItem{}, m.oralFindings[d.ID]...),
			Investigations:      append([]InvestigationItem{}, m.investigations[d.ID]...),
			TreatmentPlans:      append([]TreatmentPlanItem{}, m.treatmentPlans[d.ID]...),
			TreatmentsDone:      append([]TreatmentDoneItem{}, m.treatmentsDone[d.ID]...),
		}
	}
	v.Prescriptions = append([]Prescription{}, m.prescriptions[id]...)
	media, _ := m.ListMedia(ctx, id)
	v.Media = media
	if planID, ok := m.orthoVisit[id]; ok {
		plan := *m.orthoPlans[planID]
		v.OrthodonticPlan = &plan
	}
	if planID, ok := m.rcVisit[id]; ok {
		plan := *m.rcPlans[planID]
		v.RootCanalPlan = &plan
	}
	if v.FollowUpOfID != nil {
		if base, ok := m.visits[*v.FollowUpOfID]; ok {
			v.FollowUpOf = &VisitRef{ID: base.ID, Date: base.Date, Type: base.Type}
		}
	}
	if withFollowUps && v.Type != TypeFollowUp {
		metas, _ := m.ListFollowUpMeta(ctx, id)
		for _, meta := range metas {
			fu, err := m.assemble(ctx, meta.ID, false)
			if err != nil {
				return nil, err
			}
			v.FollowUps = append(v.FollowUps, fu)
		}
	}
	return &v, nil
}

func (m *mockVisitRepo) ListForPatient(ctx context.Context, patientID int64) ([]*Visit, error) {
	var visits []*Visit
	for id, v := range m.visits {
		if v.PatientID == patientID {
			full, err := m.assemble(ctx, id, true)
			if err != nil {
				return nil, err
			}
			visits = append(visits, full)
		}
	}
	return visits, nil
}

func (m *mockVisitRepo) UpdateVisitDate(_ context.Context, id int64, date time.Time) error {
	if v, ok := m.visits[id]; ok {
		v.Date = date
	}
	return nil
}

func (m *mockVisitRepo) UpdateDetailScalars(_ context.Context, detailID int64, notes *string, next *time.Time) error {
	if d, ok := m.details[detailID]; ok {
		d.Notes = notes
		d.NextAppointment = next
	}
	return nil
}

func (m *mockVisitRepo) CountPaymentsForTree(_ context.Context, visitID int64) (int, error) {
	count := 0
	for _, pv := range m.paymentVisits {
		if pv == visitID {
			count++
			continue
		}
		if v, ok := m.visits[pv]; ok && v.FollowUpOfID != nil && *v.FollowUpOfID == visitID {
			count++
		}
	}
	return count, nil
}

func (m *mockVisitRepo) CreateOrthodonticPlan(_ context.Context, visitID int64, plan *OrthodonticPlan) error {
	plan.ID = m.id()
	clone := *plan
	m.orthoPlans[plan.ID] = &clone
	m.orthoVisit[visitID] = plan.ID
	return nil
}

func (m *mockVisitRepo) OrthodonticPlanExists(_ context.Context, planID int64) (bool, error) {
	_, ok := m.orthoPlans[planID]
	return ok, nil
}

func (m *mockVisitRepo) AddOrthodonticTreatment(_ context.Context, t *OrthodonticTreatment) error {
	t.ID = m.id()
	plan := m.orthoPlans[t.PlanID]
	plan.Treatments = append(plan.Treatments, *t)
	return nil
}

func (m *mockVisitRepo) CreateRootCanalPlan(_ context.Context, visitID int64, plan *RootCanalPlan) error {
	plan.ID = m.id()
	clone := *plan
	m.rcPlans[plan.ID] = &clone
	m.rcVisit[visitID] = plan.ID
	return nil
}

func (m *mockVisitRepo) RootCanalPlanExists(_ context.Context, planID int64) (bool, error) {
	_, ok := m.rcPlans[planID]
	return ok, nil
}

func (m *mockVisitRepo) AddRootCanalProcedure(_ context.Context, p *RootCanalProcedure) error {
	p.ID = m.id()
	plan := m.rcPlans[p.PlanID]
	plan.Procedures = append(plan.Procedures, *p)
	return nil
}

func (m *mockVisitRepo) CreateMedia(_ context.Context, att *MediaAttachment) error {
	m.mediaCalls++
	if m.mediaFailOn > 0 && m.mediaCalls == m.mediaFailOn {
		return apperr.Internal("insert attachment", errors.New("write failed"))
	}
	att.ID = m.id()
	att.CreatedAt = time.Now()
	clone := *att
	m.media[att.ID] = &clone
	return nil
}

func (m *mockVisitRepo) ListMedia(_ context.Context, visitID int64) ([]MediaAttachment, error) {
	items := []MediaAttachment{}
	for _, att := range m.media {
		if att.VisitID == visitID {
			items = append(items, *att)
		}
	}
	// newest first
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[j].ID > items[i].ID {
				items[i], items[j] = items[j], items[i]
			}
		}
	}
	return items, nil
}

func (m *mockVisitRepo) GetMedia(_ context.Context, mediaID int64) (*MediaAttachment, error) {
	att, ok := m.media[mediaID]
	if !ok {
		return nil, apperr.NotFound("attachment %d not found", mediaID)
	}
	clone := *att
	return &clone, nil
}

func (m *mockVisitRepo) DeleteMedia(_ context.Context, mediaID int64) error {
	delete(m.media, mediaID)
	return nil
}
