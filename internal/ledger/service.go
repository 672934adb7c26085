// Package ledger owns the punch session lifecycle: who is punched in, which
// session is open, and the transactional writes that keep the member row and
// the session rows consistent.
package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"workeye/backend/internal/archive"
	"workeye/backend/internal/broadcast"
	"workeye/backend/internal/presence"
	sessiondomain "workeye/backend/internal/session/domain"
)

// Service coordinates session lifecycle writes with the presence broadcast
// and the archive stream. The store commit is the authoritative step; the
// fan-out afterward is best-effort.
type Service struct {
	store   Store
	hub     *broadcast.Hub
	emitter archive.Emitter
	log     *zap.Logger

	now func() time.Time
}

// NewService returns a ledger service. hub and emitter may be nil; the
// corresponding fan-out is skipped.
func NewService(store Store, hub *broadcast.Hub, emitter archive.Emitter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		hub:     hub,
		emitter: emitter,
		log:     log,
		now:     time.Now,
	}
}

// PunchIn opens a session for the member, or returns the one already open.
// A presence event and an archive record are emitted only when a new session
// actually opened; the idempotent replay changes nothing, so it announces
// nothing.
func (s *Service) PunchIn(ctx context.Context, tenantID, email, fingerprint string) (*sessiondomain.PunchSession, bool, error) {
	now := s.now().UTC()
	ses, alreadyOpen, err := s.store.PunchIn(ctx, tenantID, email, fingerprint, now)
	if err != nil {
		return nil, false, err
	}
	if alreadyOpen {
		return ses, true, nil
	}

	s.log.Info("session opened",
		zap.String("tenant_id", tenantID),
		zap.String("member_id", ses.MemberID),
		zap.String("session_id", ses.ID))

	if s.hub != nil {
		s.hub.Publish(tenantID, presence.Event{
			TenantID: tenantID,
			MemberID: ses.MemberID,
			Status:   presence.StatusActive,
			At:       now,
		})
	}
	archive.EmitAsync(s.emitter, s.log, &archive.Record{
		TenantID:  tenantID,
		MemberID:  ses.MemberID,
		DeviceID:  ses.DeviceID,
		SessionID: ses.ID,
		EventType: archive.EventPunchIn,
		Status:    string(presence.StatusActive),
		CreatedAt: now,
	})
	return ses, false, nil
}

// PunchOut closes the member's open session and flips them offline. When no
// session is open it returns (nil, nil) and emits nothing: closing nothing is
// not an event.
func (s *Service) PunchOut(ctx context.Context, tenantID, email string) (*sessiondomain.PunchSession, error) {
	now := s.now().UTC()
	ses, err := s.store.PunchOut(ctx, tenantID, email, now)
	if err != nil {
		return nil, err
	}
	if ses == nil {
		return nil, nil
	}

	s.log.Info("session closed",
		zap.String("tenant_id", tenantID),
		zap.String("member_id", ses.MemberID),
		zap.String("session_id", ses.ID),
		zap.Int64("duration_seconds", ses.DurationSeconds))

	if s.hub != nil {
		s.hub.Publish(tenantID, presence.Event{
			TenantID: tenantID,
			MemberID: ses.MemberID,
			Status:   presence.StatusOffline,
			At:       now,
		})
	}
	archive.EmitAsync(s.emitter, s.log, &archive.Record{
		TenantID:  tenantID,
		MemberID:  ses.MemberID,
		DeviceID:  ses.DeviceID,
		SessionID: ses.ID,
		EventType: archive.EventPunchOut,
		Status:    string(presence.StatusOffline),
		CreatedAt: now,
	})
	return ses, nil
}
