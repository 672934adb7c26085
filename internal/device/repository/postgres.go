package repository

import (
	"context"
	"database/sql"
	"errors"

	"workeye/backend/internal/device/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a device repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByFingerprint returns the device registered for the member with the
// given fingerprint, or nil if not found. It returns an error only for
// database failures, not for missing rows.
func (r *PostgresRepository) GetByFingerprint(ctx context.Context, tenantID, memberID, fingerprint string) (*domain.Device, error) {
	var d domain.Device
	var lastSeen sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, member_id, fingerprint, status, last_seen_at, created_at
		FROM devices
		WHERE tenant_id = $1 AND member_id = $2 AND fingerprint = $3`,
		tenantID, memberID, fingerprint,
	).Scan(&d.ID, &d.TenantID, &d.MemberID, &d.Fingerprint, &d.Status, &lastSeen, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastSeen.Valid {
		d.LastSeenAt = &lastSeen.Time
	}
	return &d, nil
}

// Create persists the device. The device must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, d *domain.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, tenant_id, member_id, fingerprint, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.TenantID, d.MemberID, d.Fingerprint, d.Status, d.CreatedAt,
	)
	return err
}
