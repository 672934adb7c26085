// Package archive fans accepted activity records out to external sinks
// (Kafka, OTel logs). The database write that already committed stays
// authoritative; everything here is best-effort and never blocks the
// request that produced the record.
package archive

import (
	"context"
	"time"
)

// Event types carried by archived records.
const (
	EventPunchIn        = "punch_in"
	EventPunchOut       = "punch_out"
	EventActivitySample = "activity_sample"
	EventHeartbeat      = "heartbeat"
)

// Record is one archived activity event. CreatedAt is server time at
// acceptance; ObservedAt is the agent's own clock, carried for analysis but
// never trusted for state decisions.
type Record struct {
	TenantID       string     `json:"tenant_id"`
	MemberID       string     `json:"member_id,omitempty"`
	DeviceID       string     `json:"device_id,omitempty"`
	SessionID      string     `json:"session_id,omitempty"`
	EventType      string     `json:"event_type"`
	Status         string     `json:"status,omitempty"`
	IsIdle         bool       `json:"is_idle,omitempty"`
	IsLocked       bool       `json:"is_locked,omitempty"`
	IdleForSeconds float64    `json:"idle_for_seconds,omitempty"`
	ObservedAt     *time.Time `json:"observed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Emitter emits archive records. Callers use it best-effort: log and ignore errors.
type Emitter interface {
	// Emit sends a single record. Implementations may block briefly; call
	// from a goroutine if needed.
	Emit(ctx context.Context, rec *Record) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
