package domain

import "time"

// Device represents a registered agent installation for a member.
type Device struct {
	ID       string
	TenantID string
	MemberID string
	// Fingerprint is the agent-generated device identifier sent with every
	// tracker request.
	Fingerprint string
	Status      string
	LastSeenAt  *time.Time
	CreatedAt   time.Time
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)
