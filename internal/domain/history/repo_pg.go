package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/carelog/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, description, professional_id, patient_name, recorded_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO history_entry (id, description, professional_id, patient_name, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Description, e.ProfessionalID, e.PatientName, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM history_entry`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history entries: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM history_entry
		ORDER BY recorded_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history entries: %w", err)
	}
	entries, err := scanEntries(rows)
	return entries, total, err
}

func (r *repoPG) ListByProfessional(ctx context.Context, professionalID string, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM history_entry WHERE professional_id = $1`, professionalID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history entries: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM history_entry
		WHERE professional_id = $1
		ORDER BY recorded_at DESC, id LIMIT $2 OFFSET $3`, professionalID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history entries: %w", err)
	}
	entries, err := scanEntries(rows)
	return entries, total, err
}

func scanEntries(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()
	out := []*Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Description, &e.ProfessionalID, &e.PatientName, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
