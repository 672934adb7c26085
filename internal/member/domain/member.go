package domain

import (
	"errors"
	"time"

	"workeye/backend/internal/presence"
)

// Member is a tracked worker. IsPunchedIn and the existence of an open punch
// session must always agree; the ledger updates both under one transaction,
// and the ingest path only mutates status through a conditional update that
// checks IsPunchedIn on the same row.
type Member struct {
	ID          string
	TenantID    string
	Email       string
	Name        string
	Status      presence.Status
	IsPunchedIn bool
	// LastActivityAt is set on accepted activity samples only.
	LastActivityAt *time.Time
	// LastHeartbeatAt is set on accepted samples and heartbeats; the
	// dashboard recency rule reads it.
	LastHeartbeatAt *time.Time
	LastPunchInAt   *time.Time
	LastPunchOutAt  *time.Time
	CreatedAt       time.Time
}

// Validate validates the member for persistence. Returns an error describing
// the first validation failure.
func (m *Member) Validate() error {
	if m.TenantID == "" {
		return errors.New("tenant_id is required")
	}
	if m.Email == "" {
		return errors.New("email is required")
	}
	if m.Status == "" {
		m.Status = presence.StatusOffline
	}
	return nil
}
