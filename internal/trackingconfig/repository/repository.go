package repository

import (
	"context"

	"workeye/backend/internal/trackingconfig/domain"
)

// Repository defines persistence for per-tenant tracking configuration.
type Repository interface {
	// GetByTenant returns the tenant's config, or nil when none is stored;
	// callers fall back to domain.Default.
	GetByTenant(ctx context.Context, tenantID string) (*domain.TrackingConfig, error)
	Upsert(ctx context.Context, c *domain.TrackingConfig) error
}
