// Package accesslog persists the access trail produced by the audit
// middleware so record reads and writes can be reviewed later.
package accesslog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/carelog/internal/platform/middleware"
)

const writeTimeout = 2 * time.Second

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Store writes audit entries to the record_access_log table. It satisfies
// middleware.AuditRecorder.
type Store struct {
	db execer
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func (s *Store) RecordAccess(entry middleware.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var nationalID *string
	if entry.NationalID != "" {
		nationalID = &entry.NationalID
	}
	roles := entry.UserRoles
	if roles == nil {
		roles = []string{}
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO record_access_log (
			accessed_at, user_id, user_roles, resource, national_id, action,
			method, path, status, ip_address, user_agent, request_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.Timestamp, entry.UserID, roles, entry.Resource, nationalID, entry.Action,
		entry.Method, entry.Path, entry.StatusCode, entry.IPAddress, entry.UserAgent, entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	return nil
}
