// Package ingest accepts telemetry from tracker agents and fences it against
// the session ledger: nothing an agent reports may mutate presence state for
// a member who is not punched in, no matter what the payload's own
// timestamps claim.
package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"workeye/backend/internal/archive"
	"workeye/backend/internal/broadcast"
	devicerepo "workeye/backend/internal/device/repository"
	"workeye/backend/internal/ledger"
	memberrepo "workeye/backend/internal/member/repository"
	"workeye/backend/internal/presence"
	configdomain "workeye/backend/internal/trackingconfig/domain"
	configrepo "workeye/backend/internal/trackingconfig/repository"
)

// ReasonNotPunchedIn is the rejection code returned to agents whose telemetry
// arrived after punch-out. The response still reads as success-shaped so the
// agent drops the sample instead of retrying it.
const ReasonNotPunchedIn = "NOT_PUNCHED_IN"

var (
	// ErrUnknownMember is returned when the sample names a member the tenant
	// does not have.
	ErrUnknownMember = errors.New("unknown member")
	// ErrUnknownDevice is returned when the sample's device fingerprint is
	// not registered for the member.
	ErrUnknownDevice = errors.New("unknown device")
)

// Sample is one activity report from an agent. ObservedAt is the agent's
// clock; it is archived for analysis but plays no part in acceptance.
type Sample struct {
	TenantID    string
	Email       string
	Fingerprint string
	IsIdle      bool
	IsLocked    bool
	IdleFor     time.Duration
	ObservedAt  *time.Time
}

// Result is the outcome of a sample or heartbeat. A rejected result is not an
// error: the request was well-formed, the ledger just fenced it out.
type Result struct {
	Accepted bool
	Reason   string
	Status   presence.Status
}

// Guard validates incoming telemetry against the ledger and applies what
// survives. The authoritative fence is the store's conditional write; the
// repository pre-checks only exist to give fast, specific rejections.
type Guard struct {
	members memberrepo.Repository
	devices devicerepo.Repository
	configs configrepo.Repository
	store   ledger.Store
	hub     *broadcast.Hub
	emitter archive.Emitter
	log     *zap.Logger

	now func() time.Time
}

// NewGuard returns an ingest guard. hub and emitter may be nil.
func NewGuard(members memberrepo.Repository, devices devicerepo.Repository, configs configrepo.Repository, store ledger.Store, hub *broadcast.Hub, emitter archive.Emitter, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		members: members,
		devices: devices,
		configs: configs,
		store:   store,
		hub:     hub,
		emitter: emitter,
		log:     log,
		now:     time.Now,
	}
}

// Upload processes one activity sample. The status is derived from the
// sample's signals and the tenant's idle threshold, then written with the
// fencing condition; if the member punched out while the sample was in
// flight, the write applies to zero rows and the sample is rejected.
func (g *Guard) Upload(ctx context.Context, sample Sample) (*Result, error) {
	member, err := g.members.GetByEmail(ctx, sample.TenantID, sample.Email)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrUnknownMember
	}

	device, err := g.devices.GetByFingerprint(ctx, sample.TenantID, member.ID, sample.Fingerprint)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrUnknownDevice
	}

	// Fast path: already visibly punched out, skip the derivation and write.
	if !member.IsPunchedIn {
		return &Result{Accepted: false, Reason: ReasonNotPunchedIn}, nil
	}

	cfg, err := g.configs.GetByTenant(ctx, sample.TenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = configdomain.Default(sample.TenantID)
	}

	now := g.now().UTC()
	status := presence.Derive(sample.IsLocked, sample.IdleFor, cfg.IdleThreshold())

	applied, err := g.store.ApplySample(ctx, member.ID, status, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The member punched out between the pre-check and the write; the
		// conditional update is what actually decides.
		g.log.Debug("activity sample fenced out",
			zap.String("tenant_id", sample.TenantID),
			zap.String("member_id", member.ID))
		return &Result{Accepted: false, Reason: ReasonNotPunchedIn}, nil
	}

	if g.hub != nil && status != member.Status {
		g.hub.Publish(sample.TenantID, presence.Event{
			TenantID: sample.TenantID,
			MemberID: member.ID,
			Status:   status,
			At:       now,
		})
	}
	archive.EmitAsync(g.emitter, g.log, &archive.Record{
		TenantID:       sample.TenantID,
		MemberID:       member.ID,
		DeviceID:       device.ID,
		EventType:      archive.EventActivitySample,
		Status:         string(status),
		IsIdle:         sample.IsIdle,
		IsLocked:       sample.IsLocked,
		IdleForSeconds: sample.IdleFor.Seconds(),
		ObservedAt:     sample.ObservedAt,
		CreatedAt:      now,
	})
	return &Result{Accepted: true, Status: status}, nil
}

// Heartbeat refreshes liveness for a punched-in member. It never changes the
// member's status, only the heartbeat timestamp and the device's last-seen
// state, and it is fenced exactly like a sample.
func (g *Guard) Heartbeat(ctx context.Context, tenantID, email, fingerprint string) (*Result, error) {
	member, err := g.members.GetByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrUnknownMember
	}

	device, err := g.devices.GetByFingerprint(ctx, tenantID, member.ID, fingerprint)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrUnknownDevice
	}

	if !member.IsPunchedIn {
		return &Result{Accepted: false, Reason: ReasonNotPunchedIn}, nil
	}

	now := g.now().UTC()
	applied, err := g.store.ApplyHeartbeat(ctx, member.ID, device.ID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return &Result{Accepted: false, Reason: ReasonNotPunchedIn}, nil
	}

	archive.EmitAsync(g.emitter, g.log, &archive.Record{
		TenantID:  tenantID,
		MemberID:  member.ID,
		DeviceID:  device.ID,
		EventType: archive.EventHeartbeat,
		CreatedAt: now,
	})
	return &Result{Accepted: true, Status: member.Status}, nil
}
