package repository

import (
	"context"

	"workeye/backend/internal/member/domain"
)

// Repository defines persistence for members. Status mutations do not go
// through here; they are owned by the ledger store so the punch flag and the
// session row commit together.
type Repository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Member, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.Member, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Member, error)
	Create(ctx context.Context, m *domain.Member) error
}
