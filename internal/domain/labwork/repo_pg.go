package labwork

import (
	"context"
	"errors"

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

type labWorkRepoPG struct{ pool *pgxpool.Pool }

func NewLabWorkRepoPG(pool *pgxpool.Pool) LabWorkRepository {
	return &labWorkRepoPG{pool: pool}
}

func (r *labWorkRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labWorkCols = `id, patient_id, lab_name, work_type, notes, expected_delivery_date, delivered, created_at`

func scanLabWork(row pgx.Row) (*LabWork, error) {
	var w LabWork
	err := row.Scan(&w.ID, &w.PatientID, &w.LabName, &w.WorkType,
		&w.Notes, &w.ExpectedDeliveryDate, &w.Delivered, &w.CreatedAt)
	return &w, err
}

func (r *labWorkRepoPG) Create(ctx context.Context, w *LabWork) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_works (patient_id, lab_name, work_type, notes, expected_delivery_date)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, delivered, created_at`,
		w.PatientID, w.LabName, w.WorkType, w.Notes, w.ExpectedDeliveryDate).
		Scan(&w.ID, &w.Delivered, &w.CreatedAt)
}

func (r *labWorkRepoPG) List(ctx context.Context, pendingOnly bool) ([]*LabWork, error) {
	q := `SELECT ` + labWorkCols + ` FROM lab_works`
	if pendingOnly {
		q += ` WHERE delivered = FALSE`
	}
	q += ` ORDER BY expected_delivery_date ASC NULLS LAST, id ASC`
	rows, err := r.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabWork
	for rows.Next() {
		w, err := scanLabWork(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *labWorkRepoPG) MarkDelivered(ctx context.Context, id int64) (*LabWork, error) {
	w, err := scanLabWork(r.conn(ctx).QueryRow(ctx, `
		UPDATE lab_works SET delivered = TRUE WHERE id = $1
		RETURNING `+labWorkCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("lab work %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *labWorkRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_works WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lab work %d not found", id)
	}
	return nil
}

func (r *labWorkRepoPG) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_works WHERE delivered = FALSE`).Scan(&count)
	return count, err
}
