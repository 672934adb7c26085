package ledger

import (
	"context"
	"errors"
	"time"

	"workeye/backend/internal/presence"
	sessiondomain "workeye/backend/internal/session/domain"
)

var (
	// ErrMemberNotFound is returned when the member is unknown to the tenant.
	ErrMemberNotFound = errors.New("member not found")
	// ErrDeviceNotFound is returned when the device is not registered for the member.
	ErrDeviceNotFound = errors.New("device not registered")
)

// Store is the transactional persistence boundary of the presence core. Every
// method that mutates member state does so in a single transaction with the
// session row it depends on, so the is_punched_in flag and the set of open
// sessions can never disagree.
type Store interface {
	// PunchIn opens a session for the member, or returns the existing open
	// one with alreadyOpen=true. The session insert and the member-row update
	// (is_punched_in, status=active) commit together.
	PunchIn(ctx context.Context, tenantID, email, fingerprint string, now time.Time) (s *sessiondomain.PunchSession, alreadyOpen bool, err error)

	// PunchOut closes the member's open session, computing its duration, and
	// flips the member to offline with is_punched_in=false in the same
	// transaction. Returns (nil, nil) when no session is open.
	PunchOut(ctx context.Context, tenantID, email string, now time.Time) (*sessiondomain.PunchSession, error)

	// ApplySample writes the derived status and activity/heartbeat timestamps
	// to the member row only if the member is still punched in, as one
	// conditional statement. Returns false when the write was fenced out.
	ApplySample(ctx context.Context, memberID string, status presence.Status, at time.Time) (applied bool, err error)

	// ApplyHeartbeat refreshes the member's heartbeat timestamp and the
	// device's last-seen state, fenced on is_punched_in the same way.
	ApplyHeartbeat(ctx context.Context, memberID, deviceID string, at time.Time) (applied bool, err error)
}
