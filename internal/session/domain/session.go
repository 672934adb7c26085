package domain

import "time"

// PunchSession represents one continuous work period for a member on a
// device. A session is open while EndedAt is nil; for any member at most one
// open session exists at a time, enforced by a partial unique index on
// punch_sessions(member_id) WHERE ended_at IS NULL. Closed sessions are
// immutable.
type PunchSession struct {
	ID        string
	TenantID  string
	MemberID  string
	DeviceID  string
	StartedAt time.Time
	EndedAt   *time.Time // nil while open
	// DurationSeconds is computed once at close, never before.
	DurationSeconds int64
	CreatedAt       time.Time
}

// Open reports whether the session has not been closed yet.
func (s *PunchSession) Open() bool {
	return s.EndedAt == nil
}

// Close marks the session ended at the given time and computes the duration.
// Calling Close on an already-closed session is a no-op.
func (s *PunchSession) Close(at time.Time) {
	if s.EndedAt != nil {
		return
	}
	ended := at
	s.EndedAt = &ended
	s.DurationSeconds = int64(at.Sub(s.StartedAt).Seconds())
}
