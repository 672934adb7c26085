// Package presence holds the pure status model: the tri-state member status,
// the sample-driven derivation used on ingest, and the recency-driven
// derivation used on dashboard reads. Nothing here touches I/O.
package presence

import "time"

// Status is the live presence classification of a member.
type Status string

const (
	StatusActive  Status = "active"
	StatusIdle    Status = "idle"
	StatusOffline Status = "offline"
)

const (
	// ActiveWindow is how long after the last heartbeat a member still reads
	// as active on the dashboard.
	ActiveWindow = 120 * time.Second
	// OfflineAfter is the staleness past which a member reads as offline even
	// if the ledger still shows an open session (agent crashed without
	// punching out).
	OfflineAfter = 600 * time.Second
)

// Event is a single status change, published to tenant-scoped subscribers.
// At is the server timestamp at acceptance, never the agent's clock.
type Event struct {
	TenantID string    `json:"tenant_id"`
	MemberID string    `json:"member_id"`
	Status   Status    `json:"status"`
	At       time.Time `json:"at"`
}

// Derive maps an accepted sample's signals to a status. A locked screen
// pre-empts the idle calculation entirely; the idle threshold comes from the
// member's tenant configuration, not a constant.
//
// Same inputs always yield the same status.
func Derive(isLocked bool, idleFor, idleThreshold time.Duration) Status {
	if isLocked {
		return StatusOffline
	}
	if idleThreshold > 0 && idleFor >= idleThreshold {
		return StatusIdle
	}
	return StatusActive
}

// FromRecency buckets a member's status by elapsed time since the last
// heartbeat. This is the staleness fallback for the read path, where no fresh
// sample is available: < 120s active, 120s–600s idle, beyond that (or no
// heartbeat ever) offline.
func FromRecency(lastHeartbeatAt *time.Time, now time.Time) Status {
	if lastHeartbeatAt == nil {
		return StatusOffline
	}
	elapsed := now.Sub(*lastHeartbeatAt)
	switch {
	case elapsed < ActiveWindow:
		return StatusActive
	case elapsed < OfflineAfter:
		return StatusIdle
	default:
		return StatusOffline
	}
}

// Effective combines the stored sample-derived status with the recency rule
// for dashboard reads. While the heartbeat is fresh the stored status wins, so
// a member the ingest path just marked idle does not flip back to active; once
// the heartbeat goes stale the recency buckets take over and the status decays
// toward offline.
func Effective(stored Status, lastHeartbeatAt *time.Time, now time.Time) Status {
	recency := FromRecency(lastHeartbeatAt, now)
	if recency == StatusActive && stored != "" {
		return stored
	}
	return recency
}
