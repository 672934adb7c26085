package repository

import (
	"context"
	"database/sql"
	"errors"

	"workeye/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a punch session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id within the tenant, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.PunchSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, member_id, device_id, started_at, ended_at, duration_seconds, created_at
		FROM punch_sessions
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return scanSession(row)
}

// GetOpenByMember returns the member's open session, or nil if the member is
// not punched in. The partial unique index guarantees at most one row.
func (r *PostgresRepository) GetOpenByMember(ctx context.Context, tenantID, memberID string) (*domain.PunchSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, member_id, device_id, started_at, ended_at, duration_seconds, created_at
		FROM punch_sessions
		WHERE tenant_id = $1 AND member_id = $2 AND ended_at IS NULL`, tenantID, memberID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*domain.PunchSession, error) {
	var s domain.PunchSession
	var ended sql.NullTime
	err := row.Scan(&s.ID, &s.TenantID, &s.MemberID, &s.DeviceID, &s.StartedAt, &ended, &s.DurationSeconds, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return &s, nil
}
