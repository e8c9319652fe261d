package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// LeadEvent is published whenever the backend accepts a new lead.
type LeadEvent struct {
	LeadID    int       `json:"lead_id"`
	Client    string    `json:"client"`
	LeadScore float64   `json:"lead_score"`
	Urgency   Urgency   `json:"urgency"`
	At        time.Time `json:"at"`
}

// LeadEventHook receives lead creations from the Service.
type LeadEventHook interface {
	LeadCreated(ctx context.Context, event LeadEvent) error
}

const defaultHubHistory = 20

// LeadActivityHub keeps the latest lead events in front of a base feed and
// fans them out to in-process subscribers.
type LeadActivityHub struct {
	mu      sync.RWMutex
	base    ActivityFeed
	history []LeadEvent
	subs    map[int]chan LeadEvent
	next    int
	clock   func() time.Time
}

// NewLeadActivityHub wraps base, which may be nil.
func NewLeadActivityHub(base ActivityFeed) *LeadActivityHub {
	return &LeadActivityHub{
		base:  base,
		subs:  make(map[int]chan LeadEvent),
		clock: time.Now,
	}
}

// LeadCreated records the event and delivers it to every subscriber that has room.
func (h *LeadActivityHub) LeadCreated(_ context.Context, event LeadEvent) error {
	if event.At.IsZero() {
		event.At = h.clock()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append([]LeadEvent{event}, h.history...)
	if len(h.history) > defaultHubHistory {
		h.history = h.history[:defaultHubHistory]
	}
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Recent lists recorded lead events newest first, then the base feed.
func (h *LeadActivityHub) Recent(ctx context.Context, limit int) ([]ActivityItem, error) {
	now := h.clock()
	h.mu.RLock()
	items := make([]ActivityItem, 0, len(h.history))
	for _, event := range h.history {
		items = append(items, event.activity(now))
	}
	h.mu.RUnlock()

	if h.base != nil && (limit <= 0 || len(items) < limit) {
		rest, err := h.base.Recent(ctx, 0)
		if err != nil {
			return nil, err
		}
		items = append(items, rest...)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (e LeadEvent) activity(now time.Time) ActivityItem {
	item := ActivityItem{Action: "New application", Client: e.Client, Status: ActivityInfo}
	if e.Urgency == UrgencyHigh {
		item.Action = "Lead scored high"
		item.Status = ActivityWarning
	}
	if ago := now.Sub(e.At); ago > 0 {
		item.Ago = ago
	}
	return item
}

// Subscribe returns a channel of lead events and a cancel func.
func (h *LeadActivityHub) Subscribe() (<-chan LeadEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan LeadEvent, 8)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades a net/http request and streams lead events as JSON.
func (h *LeadActivityHub) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
