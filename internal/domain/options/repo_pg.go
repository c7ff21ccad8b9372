package options

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

type optionRepoPG struct{ pool *pgxpool.Pool }

func NewOptionRepoPG(pool *pgxpool.Pool) OptionRepository {
	return &optionRepoPG{pool: pool}
}

func (r *optionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *optionRepoPG) List(ctx context.Context, kind Kind) ([]Option, error) {
	info := tables[kind]

	cols := fmt.Sprintf("id, %s", info.labelCol)
	if info.hasCategory {
		cols += ", category"
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, info.table)
	if info.hasActive {
		query += " WHERE active"
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", info.labelCol)

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Option
	for rows.Next() {
		var o Option
		dest := []any{&o.ID, &o.Label}
		if info.hasCategory {
			dest = append(dest, &o.Category)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		o.Active = true
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *optionRepoPG) Create(ctx context.Context, kind Kind, label string, category *string) (*Option, error) {
	info := tables[kind]

	var (
		row pgx.Row
		o   Option
	)
	if info.hasCategory {
		row = r.conn(ctx).QueryRow(ctx,
			fmt.Sprintf("INSERT INTO %s (%s, category) VALUES ($1, $2) RETURNING id", info.table, info.labelCol),
			label, category)
		o.Category = category
	} else {
		row = r.conn(ctx).QueryRow(ctx,
			fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1) RETURNING id", info.table, info.labelCol),
			label)
	}
	if err := row.Scan(&o.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("%s %q already exists", info.labelCol, label)
		}
		return nil, err
	}
	o.Label = label
	o.Active = true
	return &o, nil
}

func (r *optionRepoPG) Seed(ctx context.Context, kind Kind, labels []string) error {
	info := tables[kind]
	for _, label := range labels {
		_, err := r.conn(ctx).Exec(ctx,
			fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1) ON CONFLICT (%s) DO NOTHING",
				info.table, info.labelCol, info.labelCol),
			label)
		if err != nil {
			return fmt.Errorf("seed %s: %w", info.table, err)
		}
	}
	return nil
}
