package visit

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *visitRepoPG) CreateVisit(ctx context.Context, v *Visit) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO visits (patient_id, type, date, follow_up_of_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		v.PatientID, v.Type, v.Date, v.FollowUpOfID).Scan(&v.ID, &v.CreatedAt)
}

func (r *visitRepoPG) CreateGeneralDetails(ctx context.Context, visitID int64, notes *string, nextAppointment *time.Time) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO general_visit_details (visit_id, notes, next_appointment_date)
		VALUES ($1, $2, $3)
		RETURNING id`,
		visitID, notes, nextAppointment).Scan(&id)
	return id, err
}

func (r *visitRepoPG) InsertComplaints(ctx context.Context, detailID int64, items []ComplaintInput) error {
	for _, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO visit_complaints (general_visit_id, complaint_id, quadrant_id)
			VALUES ($1, $2, $3)`,
			detailID, it.ComplaintOptionID, it.QuadrantOptionID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) InsertOralFindings(ctx context.Context, detailID int64, items []OralFindingInput) error {
	for _, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO visit_oral_findings (general_visit_id, tooth_number, finding_id)
			VALUES ($1, $2, $3)`,
			detailID, it.ToothNumber, it.FindingOptionID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) InsertInvestigations(ctx context.Context, detailID int64, items []InvestigationInput) error {
	for _, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO investigations (general_visit_id, type_option_id, findings, tooth_number, image_path)
			VALUES ($1, $2, $3, $4, $5)`,
			detailID, it.TypeOptionID, it.Findings, it.ToothNumber, it.ImagePath)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) InsertTreatmentPlans(ctx context.Context, detailID int64, items []TreatmentPlanInput) error {
	for _, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO treatment_plan_items (general_visit_id, treatment_id, tooth_number)
			VALUES ($1, $2, $3)`,
			detailID, it.TreatmentOptionID, it.ToothNumber)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) InsertTreatmentsDone(ctx context.Context, detailID int64, items []TreatmentDoneInput) error {
	for _, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO treatment_done_items (general_visit_id, treatment_id, tooth_number, notes)
			VALUES ($1, $2, $3, $4)`,
			detailID, it.TreatmentOptionID, it.ToothNumber, it.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) InsertPrescriptions(ctx context.Context, visitID int64, items []PrescriptionInput) error {
	for i, it := range items {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescriptions (visit_id, sl_no, medicine_id, timing, quantity, days, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			visitID, i+1, it.MedicineID, it.Timing, it.Quantity, it.Days, it.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *visitRepoPG) deleteByDetail(ctx context.Context, table string, detailID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM `+table+` WHERE general_visit_id = $1`, detailID)
	return err
}

func (r *visitRepoPG) DeleteComplaints(ctx context.Context, detailID int64) error {
	return r.deleteByDetail(ctx, "visit_complaints", detailID)
}

func (r *visitRepoPG) DeleteOralFindings(ctx context.Context, detailID int64) error {
	return r.deleteByDetail(ctx, "visit_oral_findings", detailID)
}

func (r *visitRepoPG) DeleteInvestigations(ctx context.Context, detailID int64) error {
	return r.deleteByDetail(ctx, "investigations", detailID)
}

func (r *visitRepoPG) DeleteTreatmentPlans(ctx context.Context, detailID int64) error {
	return r.deleteByDetail(ctx, "treatment_plan_items", detailID)
}

func (r *visitRepoPG) DeleteTreatmentsDone(ctx context.Context, detailID int64) error {
	return r.deleteByDetail(ctx, "treatment_done_items", detailID)
}

func (r *visitRepoPG) DeletePrescriptions(ctx context.Context, visitID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE visit_id = $1`, visitID)
	return err
}

func (r *visitRepoPG) DeleteMediaForVisit(ctx context.Context, visitID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM media_attachments WHERE visit_id = $1`, visitID)
	return err
}

func (r *visitRepoPG) DeleteGeneralDetails(ctx context.Context, detailID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM general_visit_details WHERE id = $1`, detailID)
	return err
}

func (r *visitRepoPG) DeleteVisitRow(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	return err
}

func (r *visitRepoPG) GetMeta(ctx context.Context, id int64) (*VisitMeta, error) {
	var m VisitMeta
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT v.id, v.patient_id, v.type, v.follow_up_of_id, d.id
		FROM visits v
		LEFT JOIN general_visit_details d ON d.visit_id = v.id
		WHERE v.id = $1`, id).
		Scan(&m.ID, &m.PatientID, &m.Type, &m.FollowUpOfID, &m.DetailID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visit %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *visitRepoPG) ListFollowUpMeta(ctx context.Context, baseVisitID int64) ([]VisitMeta, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT v.id, v.patient_id, v.type, v.follow_up_of_id, d.id
		FROM visits v
		LEFT JOIN general_visit_details d ON d.visit_id = v.id
		WHERE v.follow_up_of_id = $1
		ORDER BY v.id ASC`, baseVisitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var metas []VisitMeta
	for rows.Next() {
		var m VisitMeta
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Type, &m.FollowUpOfID, &m.DetailID); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (r *visitRepoPG) GetVisit(ctx context.Context, id int64) (*Visit, error) {
	return r.loadVisit(ctx, id, true)
}

func (r *visitRepoPG) loadVisit(ctx context.Context, id int64, withFollowUps bool) (*Visit, error) {
	var v Visit
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, type, date, follow_up_of_id, created_at
		FROM visits WHERE id = $1`, id).
		Scan(&v.ID, &v.PatientID, &v.Type, &v.Date, &v.FollowUpOfID, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("visit %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, &v); err != nil {
		return nil, err
	}
	if v.FollowUpOfID != nil {
		ref, err := r.visitRef(ctx, *v.FollowUpOfID)
		if err != nil {
			return nil, err
		}
		v.FollowUpOf = ref
	}
	if withFollowUps && v.Type != TypeFollowUp {
		metas, err := r.ListFollowUpMeta(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range metas {
			fu, err := r.loadVisit(ctx, m.ID, false)
			if err != nil {
				return nil, err
			}
			v.FollowUps = append(v.FollowUps, fu)
		}
	}
	return &v, nil
}

func (r *visitRepoPG) visitRef(ctx context.Context, id int64) (*VisitRef, error) {
	var ref VisitRef
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, date, type FROM visits WHERE id = $1`, id).
		Scan(&ref.ID, &ref.Date, &ref.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *visitRepoPG) loadChildren(ctx context.Context, v *Visit) error {
	switch v.Type {
	case TypeGeneral, TypeFollowUp:
		gd, err := r.loadGeneralDetails(ctx, v.ID)
		if err != nil {
			return err
		}
		v.GeneralDetails = gd
	case TypeOrtho:
		plan, err := r.loadOrthodonticPlan(ctx, v.ID)
		if err != nil {
			return err
		}
		v.OrthodonticPlan = plan
	case TypeRootCanal:
		plan, err := r.loadRootCanalPlan(ctx, v.ID)
		if err != nil {
			return err
		}
		v.RootCanalPlan = plan
	}

	prescriptions, err := r.loadPrescriptions(ctx, v.ID)
	if err != nil {
		return err
	}
	v.Prescriptions = prescriptions

	media, err := r.ListMedia(ctx, v.ID)
	if err != nil {
		return err
	}
	v.Media = media
	return nil
}

func (r *visitRepoPG) loadGeneralDetails(ctx context.Context, visitID int64) (*GeneralDetails, error) {
	var gd GeneralDetails
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, notes, next_appointment_date
		FROM general_visit_details WHERE visit_id = $1`, visitID).
		Scan(&gd.ID, &gd.Notes, &gd.NextAppointmentDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT vc.id, vc.complaint_id, vc.quadrant_id, c.label, q.code
		FROM visit_complaints vc
		JOIN complaint_options c ON c.id = vc.complaint_id
		JOIN quadrant_options q ON q.id = vc.quadrant_id
		WHERE vc.general_visit_id = $1
		ORDER BY vc.id ASC`, gd.ID)
	if err != nil {
		return nil, err
	}
	gd.Complaints = []ComplaintItem{}
	for rows.Next() {
		var it ComplaintItem
		var complaintLabel, quadrantCode string
		if err := rows.Scan(&it.ID, &it.ComplaintID, &it.QuadrantID, &complaintLabel, &quadrantCode); err != nil {
			rows.Close()
			return nil, err
		}
		it.Complaint = &OptionRef{ID: it.ComplaintID, Label: complaintLabel}
		it.Quadrant = &OptionRef{ID: it.QuadrantID, Label: quadrantCode}
		gd.Complaints = append(gd.Complaints, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT f.id, f.tooth_number, f.finding_id, o.label
		FROM visit_oral_findings f
		JOIN oral_finding_options o ON o.id = f.finding_id
		WHERE f.general_visit_id = $1
		ORDER BY f.id ASC`, gd.ID)
	if err != nil {
		return nil, err
	}
	gd.OralFindings = []OralFindingItem{}
	for rows.Next() {
		var it OralFindingItem
		var label string
		if err := rows.Scan(&it.ID, &it.ToothNumber, &it.FindingID, &label); err != nil {
			rows.Close()
			return nil, err
		}
		it.Finding = &OptionRef{ID: it.FindingID, Label: label}
		gd.OralFindings = append(gd.OralFindings, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT i.id, i.type_option_id, i.findings, i.tooth_number, i.image_path, o.label
		FROM investigations i
		JOIN investigation_type_options o ON o.id = i.type_option_id
		WHERE i.general_visit_id = $1
		ORDER BY i.id ASC`, gd.ID)
	if err != nil {
		return nil, err
	}
	gd.Investigations = []InvestigationItem{}
	for rows.Next() {
		var it InvestigationItem
		var label string
		if err := rows.Scan(&it.ID, &it.TypeOptionID, &it.Findings, &it.ToothNumber, &it.ImagePath, &label); err != nil {
			rows.Close()
			return nil, err
		}
		it.TypeOption = &OptionRef{ID: it.TypeOptionID, Label: label}
		gd.Investigations = append(gd.Investigations, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT t.id, t.treatment_id, t.tooth_number, o.label
		FROM treatment_plan_items t
		JOIN treatment_options o ON o.id = t.treatment_id
		WHERE t.general_visit_id = $1
		ORDER BY t.id ASC`, gd.ID)
	if err != nil {
		return nil, err
	}
	gd.TreatmentPlans = []TreatmentPlanItem{}
	for rows.Next() {
		var it TreatmentPlanItem
		var label string
		if err := rows.Scan(&it.ID, &it.TreatmentID, &it.ToothNumber, &label); err != nil {
			rows.Close()
			return nil, err
		}
		it.Treatment = &OptionRef{ID: it.TreatmentID, Label: label}
		gd.TreatmentPlans = append(gd.TreatmentPlans, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT t.id, t.treatment_id, t.tooth_number, t.notes, o.label
		FROM treatment_done_items t
		JOIN treatment_options o ON o.id = t.treatment_id
		WHERE t.general_visit_id = $1
		ORDER BY t.id ASC`, gd.ID)
	if err != nil {
		return nil, err
	}
	gd.TreatmentsDone = []TreatmentDoneItem{}
	for rows.Next() {
		var it TreatmentDoneItem
		var label string
		if err := rows.Scan(&it.ID, &it.TreatmentID, &it.ToothNumber, &it.Notes, &label); err != nil {
			rows.Close()
			return nil, err
		}
		it.Treatment = &OptionRef{ID: it.TreatmentID, Label: label}
		gd.TreatmentsDone = append(gd.TreatmentsDone, it)
	}
	rows.Close()
	return &gd, rows.Err()
}

func (r *visitRepoPG) loadPrescriptions(ctx context.Context, visitID int64) ([]Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.sl_no, p.medicine_id, p.timing, p.quantity, p.days, p.notes, m.name
		FROM prescriptions p
		JOIN medicines m ON m.id = p.medicine_id
		WHERE p.visit_id = $1
		ORDER BY p.sl_no ASC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Prescription{}
	for rows.Next() {
		var p Prescription
		var name string
		if err := rows.Scan(&p.ID, &p.SlNo, &p.MedicineID, &p.Timing, &p.Quantity, &p.Days, &p.Notes, &name); err != nil {
			return nil, err
		}
		p.Medicine = &OptionRef{ID: p.MedicineID, Label: name}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *visitRepoPG) loadOrthodonticPlan(ctx context.Context, visitID int64) (*OrthodonticPlan, error) {
	var plan OrthodonticPlan
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, bracket_type, total_amount, doctor_name
		FROM orthodontic_plans WHERE visit_id = $1`, visitID).
		Scan(&plan.ID, &plan.BracketType, &plan.TotalAmount, &plan.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, plan_id, date, treatment_label
		FROM orthodontic_treatments WHERE plan_id = $1 ORDER BY date ASC, id ASC`, plan.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plan.Treatments = []OrthodonticTreatment{}
	for rows.Next() {
		var t OrthodonticTreatment
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Date, &t.TreatmentLabel); err != nil {
			return nil, err
		}
		plan.Treatments = append(plan.Treatments, t)
	}
	return &plan, rows.Err()
}

func (r *visitRepoPG) loadRootCanalPlan(ctx context.Context, visitID int64) (*RootCanalPlan, error) {
	var plan RootCanalPlan
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, total_amount FROM root_canal_plans WHERE visit_id = $1`, visitID).
		Scan(&plan.ID, &plan.TotalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, plan_id, date, procedure_label
		FROM root_canal_procedures WHERE plan_id = $1 ORDER BY date ASC, id ASC`, plan.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plan.Procedures = []RootCanalProcedure{}
	for rows.Next() {
		var p RootCanalProcedure
		if err := rows.Scan(&p.ID, &p.PlanID, &p.Date, &p.ProcedureLabel); err != nil {
			return nil, err
		}
		plan.Procedures = append(plan.Procedures, p)
	}
	return &plan, rows.Err()
}

func (r *visitRepoPG) ListForPatient(ctx context.Context, patientID int64) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id FROM visits WHERE patient_id = $1 ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	visits := make([]*Visit, 0, len(ids))
	for _, id := range ids {
		v, err := r.loadVisit(ctx, id, true)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, nil
}

func (r *visitRepoPG) UpdateVisitDate(ctx context.Context, id int64, date time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE visits SET date = $2 WHERE id = $1`, id, date)
	return err
}

func (r *visitRepoPG) UpdateDetailScalars(ctx context.Context, detailID int64, notes *string, nextAppointment *time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE general_visit_details SET notes = $2, next_appointment_date = $3 WHERE id = $1`,
		detailID, notes, nextAppointment)
	return err
}

func (r *visitRepoPG) CountPaymentsForTree(ctx context.Context, visitID int64) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM payments p
		LEFT JOIN visits v ON v.id = p.visit_id
		WHERE p.visit_id = $1 OR v.follow_up_of_id = $1`, visitID).Scan(&count)
	return count, err
}

func (r *visitRepoPG) CreateOrthodonticPlan(ctx context.Context, visitID int64, plan *OrthodonticPlan) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO orthodontic_plans (visit_id, bracket_type, total_amount, doctor_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		visitID, plan.BracketType, plan.TotalAmount, plan.DoctorName).Scan(&plan.ID)
}

func (r *visitRepoPG) OrthodonticPlanExists(ctx context.Context, planID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orthodontic_plans WHERE id = $1)`, planID).Scan(&exists)
	return exists, err
}

func (r *visitRepoPG) AddOrthodonticTreatment(ctx context.Context, t *OrthodonticTreatment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO orthodontic_treatments (plan_id, date, treatment_label)
		VALUES ($1, $2, $3)
		RETURNING id`,
		t.PlanID, t.Date, t.TreatmentLabel).Scan(&t.ID)
}

func (r *visitRepoPG) CreateRootCanalPlan(ctx context.Context, visitID int64, plan *RootCanalPlan) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO root_canal_plans (visit_id, total_amount)
		VALUES ($1, $2)
		RETURNING id`,
		visitID, plan.TotalAmount).Scan(&plan.ID)
}

func (r *visitRepoPG) RootCanalPlanExists(ctx context.Context, planID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM root_canal_plans WHERE id = $1)`, planID).Scan(&exists)
	return exists, err
}

func (r *visitRepoPG) AddRootCanalProcedure(ctx context.Context, p *RootCanalProcedure) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO root_canal_procedures (plan_id, date, procedure_label)
		VALUES ($1, $2, $3)
		RETURNING id`,
		p.PlanID, p.Date, p.ProcedureLabel).Scan(&p.ID)
}

func (r *visitRepoPG) CreateMedia(ctx context.Context, m *MediaAttachment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO media_attachments (visit_id, path, original_name, mime_type, size, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		m.VisitID, m.Path, m.OriginalName, m.MimeType, m.Size, m.Type).Scan(&m.ID, &m.CreatedAt)
}

func (r *visitRepoPG) ListMedia(ctx context.Context, visitID int64) ([]MediaAttachment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, visit_id, path, original_name, mime_type, size, type, created_at
		FROM media_attachments WHERE visit_id = $1 ORDER BY id DESC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MediaAttachment{}
	for rows.Next() {
		var m MediaAttachment
		if err := rows.Scan(&m.ID, &m.VisitID, &m.Path, &m.OriginalName, &m.MimeType, &m.Size, &m.Type, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *visitRepoPG) GetMedia(ctx context.Context, mediaID int64) (*MediaAttachment, error) {
	var m MediaAttachment
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, visit_id, path, original_name, mime_type, size, type, created_at
		FROM media_attachments WHERE id = $1`, mediaID).
		Scan(&m.ID, &m.VisitID, &m.Path, &m.OriginalName, &m.MimeType, &m.Size, &m.Type, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("attachment %d not found", mediaID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *visitRepoPG) DeleteMedia(ctx context.Context, mediaID int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM media_attachments WHERE id = $1`, mediaID)
	return err
}
