// Package broadcast fans presence events out to live dashboard subscribers,
// grouped by tenant. Delivery is best-effort: subscribers also poll, so a
// missed event self-heals on the next status query.
package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"workeye/backend/internal/presence"
)

// subscriberBuffer is each subscriber's channel capacity. A subscriber that
// falls this far behind starts losing events rather than blocking publishers.
const subscriberBuffer = 16

// Subscriber is one registered listener for a single tenant's events. Events
// arrive on C until Unsubscribe closes it.
type Subscriber struct {
	C        chan presence.Event
	tenantID string
}

// TenantID returns the tenant the subscription is scoped to.
func (s *Subscriber) TenantID() string {
	return s.tenantID
}

// Hub is the tenant-scoped subscriber registry. It is owned by the server
// process and passed by reference to whoever publishes or subscribes; there
// is no package-level registry.
type Hub struct {
	log *zap.Logger

	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:  log,
		subs: make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a listener for the tenant's events. The caller must
// Unsubscribe when done. Returns nil after Close.
func (h *Hub) Subscribe(tenantID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	s := &Subscriber{
		C:        make(chan presence.Event, subscriberBuffer),
		tenantID: tenantID,
	}
	if h.subs[tenantID] == nil {
		h.subs[tenantID] = make(map[*Subscriber]struct{})
	}
	h.subs[tenantID][s] = struct{}{}
	return s
}

// Unsubscribe removes the listener and closes its channel. Safe to call with
// a subscriber that was already removed.
func (h *Hub) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.tenantID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.tenantID)
	}
	close(s.C)
}

// Publish fans the event out to the tenant's current subscribers. It never
// blocks the caller: a subscriber whose buffer is full loses the event, and
// no subscribers at all is a no-op. The committed database state stays
// authoritative either way.
func (h *Hub) Publish(tenantID string, ev presence.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for s := range h.subs[tenantID] {
		select {
		case s.C <- ev:
		default:
			h.log.Debug("presence event dropped, subscriber behind",
				zap.String("tenant_id", tenantID),
				zap.String("member_id", ev.MemberID))
		}
	}
}

// Close shuts the hub down and closes every subscriber channel. Publish and
// Subscribe become no-ops afterward.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for tenantID, set := range h.subs {
		for s := range set {
			close(s.C)
		}
		delete(h.subs, tenantID)
	}
}
