package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dencare/dencare/internal/domain/visit"
	"github.com/dencare/dencare/internal/platform/apperr"
	"github.com/dencare/dencare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepoPG{pool: pool}
}

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO payments (patient_id, visit_id, amount, date, method, note)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		p.PatientID, p.VisitID, p.Amount, p.Date, p.Method, p.Note).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, visit_id, amount, date, method, note, created_at
		FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.PatientID, &p.VisitID, &p.Amount, &p.Date, &p.Method, &p.Note, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("payment %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("payment %d not found", id)
	}
	return nil
}

func (r *paymentRepoPG) Unlink(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE payments SET visit_id = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("payment %d not found", id)
	}
	return nil
}

func (r *paymentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.patient_id, p.visit_id, p.amount, p.date, p.method, p.note, p.created_at,
		       v.id, v.date, v.type
		FROM payments p
		LEFT JOIN visits v ON v.id = p.visit_id
		WHERE p.patient_id = $1
		ORDER BY p.date DESC, p.id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		var p Payment
		var ref visit.VisitRef
		var refID *int64
		var refDate *time.Time
		var refType *string
		if err := rows.Scan(&p.ID, &p.PatientID, &p.VisitID, &p.Amount, &p.Date,
			&p.Method, &p.Note, &p.CreatedAt, &refID, &refDate, &refType); err != nil {
			return nil, err
		}
		if refID != nil {
			ref = visit.VisitRef{ID: *refID, Date: *refDate, Type: *refType}
			p.Visit = &ref
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *paymentRepoPG) SumByPatient(ctx context.Context, patientID int64) (int64, error) {
	var total int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE patient_id = $1`, patientID).
		Scan(&total)
	return total, err
}

func (r *paymentRepoPG) VisitExists(ctx context.Context, visitID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM visits WHERE id = $1)`, visitID).Scan(&exists)
	return exists, err
}
