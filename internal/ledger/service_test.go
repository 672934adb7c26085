package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"workeye/backend/internal/broadcast"
	"workeye/backend/internal/presence"
	sessiondomain "workeye/backend/internal/session/domain"
)

type mockStore struct {
	punchInSession  *sessiondomain.PunchSession
	punchInOpen     bool
	punchInErr      error
	punchOutSession *sessiondomain.PunchSession
	punchOutErr     error

	punchInCalls  int
	punchOutCalls int
}

func (m *mockStore) PunchIn(ctx context.Context, tenantID, email, fingerprint string, now time.Time) (*sessiondomain.PunchSession, bool, error) {
	m.punchInCalls++
	return m.punchInSession, m.punchInOpen, m.punchInErr
}

func (m *mockStore) PunchOut(ctx context.Context, tenantID, email string, now time.Time) (*sessiondomain.PunchSession, error) {
	m.punchOutCalls++
	return m.punchOutSession, m.punchOutErr
}

func (m *mockStore) ApplySample(ctx context.Context, memberID string, status presence.Status, at time.Time) (bool, error) {
	return false, nil
}

func (m *mockStore) ApplyHeartbeat(ctx context.Context, memberID, deviceID string, at time.Time) (bool, error) {
	return false, nil
}

func TestPunchInPublishesOnNewSession(t *testing.T) {
	store := &mockStore{
		punchInSession: &sessiondomain.PunchSession{
			ID:       "ses-1",
			TenantID: "t1",
			MemberID: "m1",
			DeviceID: "d1",
		},
	}
	hub := broadcast.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("t1")

	svc := NewService(store, hub, nil, nil)
	ses, alreadyOpen, err := svc.PunchIn(context.Background(), "t1", "a@b.com", "fp-1")
	if err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	if alreadyOpen {
		t.Fatal("expected a new session, got alreadyOpen")
	}
	if ses.ID != "ses-1" {
		t.Fatalf("unexpected session %q", ses.ID)
	}

	select {
	case ev := <-sub.C:
		if ev.MemberID != "m1" || ev.Status != presence.StatusActive {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a presence event for the new session")
	}
}

func TestPunchInIdempotentReplayStaysQuiet(t *testing.T) {
	store := &mockStore{
		punchInSession: &sessiondomain.PunchSession{ID: "ses-1", TenantID: "t1", MemberID: "m1"},
		punchInOpen:    true,
	}
	hub := broadcast.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("t1")

	svc := NewService(store, hub, nil, nil)
	ses, alreadyOpen, err := svc.PunchIn(context.Background(), "t1", "a@b.com", "fp-1")
	if err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	if !alreadyOpen {
		t.Fatal("expected alreadyOpen")
	}
	if ses.ID != "ses-1" {
		t.Fatalf("expected the existing session, got %q", ses.ID)
	}

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v for an idempotent replay", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPunchInStoreErrorPropagates(t *testing.T) {
	store := &mockStore{punchInErr: ErrMemberNotFound}
	svc := NewService(store, nil, nil, nil)
	_, _, err := svc.PunchIn(context.Background(), "t1", "nobody@b.com", "fp-1")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestPunchOutClosesAndPublishesOffline(t *testing.T) {
	ended := time.Now().UTC()
	store := &mockStore{
		punchOutSession: &sessiondomain.PunchSession{
			ID:              "ses-1",
			TenantID:        "t1",
			MemberID:        "m1",
			EndedAt:         &ended,
			DurationSeconds: 3600,
		},
	}
	hub := broadcast.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("t1")

	svc := NewService(store, hub, nil, nil)
	ses, err := svc.PunchOut(context.Background(), "t1", "a@b.com")
	if err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if ses == nil || ses.DurationSeconds != 3600 {
		t.Fatalf("unexpected session %+v", ses)
	}

	select {
	case ev := <-sub.C:
		if ev.Status != presence.StatusOffline {
			t.Fatalf("expected offline event, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an offline presence event")
	}
}

func TestPunchOutWithNothingOpenIsQuietNoOp(t *testing.T) {
	store := &mockStore{}
	hub := broadcast.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("t1")

	svc := NewService(store, hub, nil, nil)
	ses, err := svc.PunchOut(context.Background(), "t1", "a@b.com")
	if err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if ses != nil {
		t.Fatalf("expected nil session, got %+v", ses)
	}

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v when nothing was open", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
