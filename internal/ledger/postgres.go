package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"workeye/backend/internal/presence"
	sessiondomain "workeye/backend/internal/session/domain"
)

// uniqueViolation is the Postgres error code raised when two concurrent
// punch-in transactions race past the open-session check; the partial unique
// index on punch_sessions(member_id) WHERE ended_at IS NULL lets exactly one win.
const uniqueViolation = "23505"

// PostgresStore implements Store over database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a ledger store that uses the given db for persistence.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PunchIn(ctx context.Context, tenantID, email, fingerprint string, now time.Time) (*sessiondomain.PunchSession, bool, error) {
	ses, alreadyOpen, err := s.punchInTx(ctx, tenantID, email, fingerprint, now)
	if err == nil {
		return ses, alreadyOpen, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		// Lost the race: another punch-in committed first. Return the
		// winner's session; the call is idempotent either way.
		existing, lookupErr := s.openSession(ctx, tenantID, email)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		if existing != nil {
			return existing, true, nil
		}
	}
	return nil, false, err
}

func (s *PostgresStore) punchInTx(ctx context.Context, tenantID, email, fingerprint string, now time.Time) (*sessiondomain.PunchSession, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var memberID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM members WHERE tenant_id = $1 AND email = $2`,
		tenantID, email,
	).Scan(&memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrMemberNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}

	var deviceID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM devices WHERE tenant_id = $1 AND member_id = $2 AND fingerprint = $3`,
		tenantID, memberID, fingerprint,
	).Scan(&deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrDeviceNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}

	existing := &sessiondomain.PunchSession{TenantID: tenantID, MemberID: memberID}
	err = tx.QueryRowContext(ctx, `
		SELECT id, device_id, started_at, created_at
		FROM punch_sessions
		WHERE member_id = $1 AND ended_at IS NULL`, memberID,
	).Scan(&existing.ID, &existing.DeviceID, &existing.StartedAt, &existing.CreatedAt)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("punch in: %w", err)
		}
		return existing, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}

	ses := &sessiondomain.PunchSession{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		MemberID:  memberID,
		DeviceID:  deviceID,
		StartedAt: now,
		CreatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO punch_sessions (id, tenant_id, member_id, device_id, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ses.ID, ses.TenantID, ses.MemberID, ses.DeviceID, ses.StartedAt, ses.CreatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE members
		SET is_punched_in = TRUE, status = $2, last_punch_in_at = $3
		WHERE id = $1`,
		memberID, presence.StatusActive, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("punch in: %w", err)
	}
	return ses, false, nil
}

func (s *PostgresStore) PunchOut(ctx context.Context, tenantID, email string, now time.Time) (*sessiondomain.PunchSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("punch out: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var memberID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM members WHERE tenant_id = $1 AND email = $2`,
		tenantID, email,
	).Scan(&memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("punch out: %w", err)
	}

	// Close the open session and compute its duration in one statement; the
	// ended_at IS NULL predicate makes a double punch-out a no-op.
	ses := &sessiondomain.PunchSession{TenantID: tenantID, MemberID: memberID}
	var ended time.Time
	err = tx.QueryRowContext(ctx, `
		UPDATE punch_sessions
		SET ended_at = $2,
		    duration_seconds = CAST(EXTRACT(EPOCH FROM ($2 - started_at)) AS BIGINT)
		WHERE member_id = $1 AND ended_at IS NULL
		RETURNING id, device_id, started_at, ended_at, duration_seconds, created_at`,
		memberID, now,
	).Scan(&ses.ID, &ses.DeviceID, &ses.StartedAt, &ended, &ses.DurationSeconds, &ses.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("punch out: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("punch out: %w", err)
	}
	ses.EndedAt = &ended

	// The fence: any in-flight upload that re-checks is_punched_in after this
	// commit will be rejected, no matter what its timestamps claim.
	_, err = tx.ExecContext(ctx, `
		UPDATE members
		SET is_punched_in = FALSE, status = $2, last_punch_out_at = $3
		WHERE id = $1`,
		memberID, presence.StatusOffline, now,
	)
	if err != nil {
		return nil, fmt.Errorf("punch out: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("punch out: %w", err)
	}
	return ses, nil
}

func (s *PostgresStore) ApplySample(ctx context.Context, memberID string, status presence.Status, at time.Time) (bool, error) {
	// The fencing re-check and the apply are the same atomic statement: the
	// row only changes if is_punched_in is still true at commit time.
	res, err := s.db.ExecContext(ctx, `
		UPDATE members
		SET status = $2, last_activity_at = $3, last_heartbeat_at = $3
		WHERE id = $1 AND is_punched_in`,
		memberID, status, at,
	)
	if err != nil {
		return false, fmt.Errorf("apply sample: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply sample: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) ApplyHeartbeat(ctx context.Context, memberID, deviceID string, at time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("apply heartbeat: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE members
		SET last_heartbeat_at = $2
		WHERE id = $1 AND is_punched_in`,
		memberID, at,
	)
	if err != nil {
		return false, fmt.Errorf("apply heartbeat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply heartbeat: %w", err)
	}
	if n == 0 {
		// Fenced: a heartbeat for a member with no open session must not
		// touch member or device state.
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("apply heartbeat: %w", err)
		}
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE devices
		SET last_seen_at = $2, status = 'online'
		WHERE id = $1`,
		deviceID, at,
	)
	if err != nil {
		return false, fmt.Errorf("apply heartbeat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("apply heartbeat: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) openSession(ctx context.Context, tenantID, email string) (*sessiondomain.PunchSession, error) {
	ses := &sessiondomain.PunchSession{TenantID: tenantID}
	err := s.db.QueryRowContext(ctx, `
		SELECT ps.id, ps.member_id, ps.device_id, ps.started_at, ps.created_at
		FROM punch_sessions ps
		JOIN members m ON m.id = ps.member_id
		WHERE m.tenant_id = $1 AND m.email = $2 AND ps.ended_at IS NULL`,
		tenantID, email,
	).Scan(&ses.ID, &ses.MemberID, &ses.DeviceID, &ses.StartedAt, &ses.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ses, nil
}
