package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/carelog/internal/platform/db"
)

const uniqueViolation = "23505"

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type professionalRepoPG struct {
	pool *pgxpool.Pool
}

func NewProfessionalRepo(pool *pgxpool.Pool) ProfessionalRepository {
	return &professionalRepoPG{pool: pool}
}

func (r *professionalRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const professionalCols = `id, name, license_number, email, password_hash, created_at`

func (r *professionalRepoPG) Create(ctx context.Context, p *Professional) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO professional (id, name, license_number, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		p.ID, p.Name, p.LicenseNumber, p.Email, p.PasswordHash,
	).Scan(&p.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create professional: %w", err)
	}
	return nil
}

func (r *professionalRepoPG) GetByLicenseNumber(ctx context.Context, licenseNumber string) (*Professional, error) {
	var p Professional
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+professionalCols+` FROM professional WHERE license_number = $1`, licenseNumber,
	).Scan(&p.ID, &p.Name, &p.LicenseNumber, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get professional: %w", err)
	}
	return &p, nil
}
