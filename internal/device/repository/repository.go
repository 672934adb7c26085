package repository

import (
	"context"

	"workeye/backend/internal/device/domain"
)

// Repository defines persistence for devices. Heartbeat-driven last_seen
// updates are owned by the ledger store, which fences them on the member's
// punch state.
type Repository interface {
	GetByFingerprint(ctx context.Context, tenantID, memberID, fingerprint string) (*domain.Device, error)
	Create(ctx context.Context, d *domain.Device) error
}
