package repository

import (
	"context"
	"database/sql"
	"errors"

	"workeye/backend/internal/tenant/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tenant repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the tenant for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, tracker_token_hash, created_at
		FROM tenants
		WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.TrackerTokenHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create persists the tenant. The tenant must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, tracker_token_hash, created_at)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.TrackerTokenHash, t.CreatedAt,
	)
	return err
}
