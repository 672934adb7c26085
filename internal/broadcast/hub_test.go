package broadcast

import (
	"sync"
	"testing"
	"time"

	"workeye/backend/internal/presence"
)

func event(tenantID, memberID string, status presence.Status) presence.Event {
	return presence.Event{
		TenantID: tenantID,
		MemberID: memberID,
		Status:   status,
		At:       time.Now().UTC(),
	}
}

func TestHub_PublishReachesTenantSubscribers(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	s1 := h.Subscribe("tenant-1")
	s2 := h.Subscribe("tenant-1")

	h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusActive))

	for _, s := range []*Subscriber{s1, s2} {
		select {
		case ev := <-s.C:
			if ev.MemberID != "m1" || ev.Status != presence.StatusActive {
				t.Errorf("event = %+v", ev)
			}
		default:
			t.Error("subscriber did not receive event")
		}
	}
}

func TestHub_TenantIsolation(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	other := h.Subscribe("tenant-2")

	h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusIdle))

	select {
	case ev := <-other.C:
		t.Errorf("tenant-2 subscriber received tenant-1 event: %+v", ev)
	default:
	}
}

func TestHub_PublishWithNoSubscribersIsNoOp(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	// Must not block or panic.
	h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusOffline))
}

func TestHub_PublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	s := h.Subscribe("tenant-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Nobody drains s.C; publishes beyond the buffer must drop, not block.
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusActive))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if got := len(s.C); got != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	s := h.Subscribe("tenant-1")
	h.Unsubscribe(s)

	if _, open := <-s.C; open {
		t.Error("channel should be closed after Unsubscribe")
	}

	// Double unsubscribe must not panic.
	h.Unsubscribe(s)

	// Publishing after the last subscriber left is a no-op.
	h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusActive))
}

func TestHub_CloseStopsEverything(t *testing.T) {
	h := NewHub(nil)
	s := h.Subscribe("tenant-1")

	h.Close()

	if _, open := <-s.C; open {
		t.Error("channel should be closed after hub Close")
	}
	if got := h.Subscribe("tenant-1"); got != nil {
		t.Error("Subscribe after Close should return nil")
	}
	// No panic on publish after close.
	h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusActive))
}

func TestHub_ConcurrentAccess(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := h.Subscribe("tenant-1")
				h.Publish("tenant-1", event("tenant-1", "m1", presence.StatusActive))
				h.Unsubscribe(s)
			}
		}()
	}
	wg.Wait()
}
