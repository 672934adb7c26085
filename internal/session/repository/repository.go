package repository

import (
	"context"

	"workeye/backend/internal/session/domain"
)

// Repository defines read access to punch sessions. Creation and closing go
// through the ledger store, which owns the transaction with the member row.
type Repository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.PunchSession, error)
	GetOpenByMember(ctx context.Context, tenantID, memberID string) (*domain.PunchSession, error)
}
