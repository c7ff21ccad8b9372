package patient

import (
	"context"
	"errors"
	"fmt"

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, display_number, name, age, sex, address, phone, email, whatsapp, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.DisplayNumber, &p.Name, &p.Age, &p.Sex,
		&p.Address, &p.Phone, &p.Email, &p.Whatsapp, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (display_number, name, age, sex, address, phone, email, whatsapp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		p.DisplayNumber, p.Name, p.Age, p.Sex, p.Address, p.Phone, p.Email, p.Whatsapp).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient %d not found", id)
	}
	return p, err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY display_number ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient %d not found", id)
	}
	return nil
}

func (r *patientRepoPG) MaxDisplayNumber(ctx context.Context) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(display_number), 0) FROM patients`).Scan(&max)
	return max, err
}

func (r *patientRepoPG) ShiftDisplayFrom(ctx context.Context, from int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET display_number = display_number + 1 WHERE display_number >= $1`, from)
	return err
}

func (r *patientRepoPG) ShiftDisplayRange(ctx context.Context, lo, hi, delta int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET display_number = display_number + $3
		 WHERE display_number >= $1 AND display_number <= $2`, lo, hi, delta)
	return err
}

func (r *patientRepoPG) SetDisplayNumber(ctx context.Context, id int64, displayNumber int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET display_number = $2, updated_at = NOW() WHERE id = $1`, id, displayNumber)
	return err
}

func (r *patientRepoPG) IDsByCreation(ctx context.Context) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id FROM patients ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type historyTables struct {
	join, options string
}

var historySets = map[HistorySet]historyTables{
	DentalHistory:  {join: "patient_dental_history", options: "dental_history_options"},
	MedicalHistory: {join: "patient_medical_history", options: "medical_history_options"},
	Allergies:      {join: "patient_allergies", options: "allergy_options"},
}

func (r *patientRepoPG) History(ctx context.Context, patientID int64, set HistorySet) ([]HistoryItem, error) {
	t, ok := historySets[set]
	if !ok {
		return nil, fmt.Errorf("unknown history set %q", set)
	}
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT j.id, o.id, o.label
		FROM %s j JOIN %s o ON o.id = j.option_id
		WHERE j.patient_id = $1
		ORDER BY o.label ASC`, t.join, t.options), patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []HistoryItem
	for rows.Next() {
		var it HistoryItem
		if err := rows.Scan(&it.ID, &it.Option.ID, &it.Option.Label); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) ReplaceHistory(ctx context.Context, patientID int64, set HistorySet, optionIDs []int64) error {
	t, ok := historySets[set]
	if !ok {
		return fmt.Errorf("unknown history set %q", set)
	}
	if _, err := r.conn(ctx).Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE patient_id = $1`, t.join), patientID); err != nil {
		return err
	}
	for _, optionID := range optionIDs {
		if _, err := r.conn(ctx).Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (patient_id, option_id) VALUES ($1, $2)`, t.join),
			patientID, optionID); err != nil {
			return err
		}
	}
	return nil
}
