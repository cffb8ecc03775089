package broadcast

import "sync"

// Event types announced on the sync channel. Payload is the full new
// collection snapshot.
const (
	EventEmployees   = "SYNC_EMPLOYEES"
	EventEvaluations = "SYNC_EVALUATIONS"
	EventUsers       = "SYNC_USERS"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const subscriberBuffer = 16

// Hub fans sync events out to currently-subscribed sessions. Delivery is
// fire-and-forget and at-most-once: a subscriber that is not keeping up
// loses events, and nothing is queued or replayed for late subscribers.
// Consumers must treat events as cache-invalidation hints, not as a source
// of truth.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

type Subscription struct {
	hub *Hub
	ch  chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a listener. On a closed hub it degrades to an inert
// subscription whose channel never delivers; Cancel stays safe to call.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.subs[sub] = struct{}{}
	}
	return sub
}

// Publish delivers the event to every subscriber except the sender (which
// may be nil for publishers without a subscription of their own).
func (h *Hub) Publish(event Event, sender *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		if sub == sender {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Subscriber is not draining; drop rather than block.
		}
	}
}

// Close tears the hub down; used by tests and shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}

// Events exposes the subscription's delivery channel. It is closed when
// the subscription is cancelled or the hub shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s]; !ok {
		return
	}
	delete(s.hub.subs, s)
	close(s.ch)
}
