package broadcast

import (
	"sync"

	"github.com/trezcool/tathmini/core/exam"
)

// subscriberBuffer bounds the per-subscriber event queue; events to a
// subscriber that lags behind are dropped rather than blocking the room.
const subscriberBuffer = 16

// Hub is an in-process room fan-out implementing exam.Broadcaster. Rooms are
// created on first join and removed when their last member leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]bool
}

var _ exam.Broadcaster = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*subscriber]bool)}
}

type subscriber struct {
	hub    *Hub
	room   string
	events chan exam.Event
	once   sync.Once
}

var _ exam.Subscription = (*subscriber)(nil)

func (h *Hub) Join(examID string) exam.Subscription {
	sub := &subscriber{
		hub:    h,
		room:   exam.Room(examID),
		events: make(chan exam.Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sub.room] == nil {
		h.rooms[sub.room] = make(map[*subscriber]bool)
	}
	h.rooms[sub.room][sub] = true
	return sub
}

func (h *Hub) Publish(examID string, evt exam.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[exam.Room(examID)] {
		select {
		case sub.events <- evt:
		default: // slow consumer, drop
		}
	}
}

func (s *subscriber) Events() <-chan exam.Event {
	return s.events
}

func (s *subscriber) Leave() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		if room, ok := h.rooms[s.room]; ok {
			delete(room, s)
			if len(room) == 0 {
				delete(h.rooms, s.room)
			}
		}
		// closing under the lock keeps Publish from racing a send
		close(s.events)
	})
}
