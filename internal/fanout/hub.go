package fanout

import (
	"context"
	"log/slog"
	"sync"
)

// defaultSubscriberBuffer is how many events a subscriber can lag behind
// before deliveries to it are dropped.
const defaultSubscriberBuffer = 32

// Hub is the in-process Publisher backing the SSE stream. Each subscriber
// owns a buffered channel; publishing to a full channel drops the event for
// that subscriber rather than stalling dispatch. Events published to one
// audience arrive at its subscribers in publish order.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Audience]map[*Subscriber]struct{}
	buffer int
	logger *slog.Logger
}

// Subscriber receives events for the audiences it was subscribed with.
type Subscriber struct {
	ch        chan Event
	audiences []Audience
}

// Events is the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[Audience]map[*Subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber on the given audiences.
func (h *Hub) Subscribe(audiences ...Audience) *Subscriber {
	sub := &Subscriber{
		ch:        make(chan Event, h.buffer),
		audiences: audiences,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, a := range audiences {
		if h.subs[a] == nil {
			h.subs[a] = make(map[*Subscriber]struct{})
		}
		h.subs[a][sub] = struct{}{}
	}
	return sub
}

// Unsubscribe detaches the subscriber and closes its channel. Safe to call
// once per subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := false
	for _, a := range sub.audiences {
		if set, ok := h.subs[a]; ok {
			if _, member := set[sub]; member {
				delete(set, sub)
				removed = true
			}
			if len(set) == 0 {
				delete(h.subs, a)
			}
		}
	}
	if removed {
		close(sub.ch)
	}
}

func (h *Hub) Publish(_ context.Context, ev Event, audiences ...Audience) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// A subscriber listening on several of the target audiences gets the
	// event once.
	seen := make(map[*Subscriber]struct{})
	for _, a := range audiences {
		for sub := range h.subs[a] {
			if _, dup := seen[sub]; dup {
				continue
			}
			seen[sub] = struct{}{}
			select {
			case sub.ch <- ev:
			default:
				h.logger.Warn("fanout: dropping event for slow subscriber",
					"event", string(ev.Kind), "audience", string(a))
			}
		}
	}
	return nil
}
