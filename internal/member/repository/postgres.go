package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"workeye/backend/internal/member/domain"
)

const memberColumns = `id, tenant_id, email, name, status, is_punched_in,
	last_activity_at, last_heartbeat_at, last_punch_in_at, last_punch_out_at, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a member repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the member for id within the tenant, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return scanMember(row)
}

// GetByEmail returns the member for email within the tenant, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, tenantID, email string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE tenant_id = $1 AND email = $2`, tenantID, email)
	return scanMember(row)
}

// ListByTenant returns all members of the tenant ordered by name. Returns
// (nil, error) only on database errors.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE tenant_id = $1
		ORDER BY name, email`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create persists the member. The member must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, tenant_id, email, name, status, is_punched_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.TenantID, m.Email, m.Name, m.Status, m.IsPunchedIn, m.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var m domain.Member
	var lastActivity, lastHeartbeat, lastPunchIn, lastPunchOut sql.NullTime
	err := row.Scan(
		&m.ID, &m.TenantID, &m.Email, &m.Name, &m.Status, &m.IsPunchedIn,
		&lastActivity, &lastHeartbeat, &lastPunchIn, &lastPunchOut, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.LastActivityAt = nullTimeToPtr(lastActivity)
	m.LastHeartbeatAt = nullTimeToPtr(lastHeartbeat)
	m.LastPunchInAt = nullTimeToPtr(lastPunchIn)
	m.LastPunchOutAt = nullTimeToPtr(lastPunchOut)
	return &m, nil
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
