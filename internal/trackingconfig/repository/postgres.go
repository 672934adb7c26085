package repository

import (
	"context"
	"database/sql"
	"errors"

	"workeye/backend/internal/trackingconfig/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tracking config repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTenant returns the config for the tenant, or nil if none is stored.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTenant(ctx context.Context, tenantID string) (*domain.TrackingConfig, error) {
	var c domain.TrackingConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT tenant_id, idle_timeout_minutes, screenshot_interval_minutes, updated_at
		FROM tracking_configs
		WHERE tenant_id = $1`, tenantID,
	).Scan(&c.TenantID, &c.IdleTimeoutMinutes, &c.ScreenshotIntervalMinutes, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Upsert inserts or replaces the tenant's config.
func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.TrackingConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracking_configs (tenant_id, idle_timeout_minutes, screenshot_interval_minutes, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id) DO UPDATE
		SET idle_timeout_minutes = EXCLUDED.idle_timeout_minutes,
		    screenshot_interval_minutes = EXCLUDED.screenshot_interval_minutes,
		    updated_at = now()`,
		c.TenantID, c.IdleTimeoutMinutes, c.ScreenshotIntervalMinutes,
	)
	return err
}
