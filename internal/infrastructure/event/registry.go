package event

import (
	"slices"
	"sync"

	"github.com/tutorcenter/backend/internal/domain/shared"
)

// allEvents is the subscription key for handlers that receive every event
const allEvents = "*"

// subscriptions maps event types to the handlers interested in them
type subscriptions struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{byType: make(map[string][]shared.EventHandler)}
}

// add subscribes h to eventTypes, or to every event when none are given.
// Subscribing the same handler twice to one type is a no-op.
func (s *subscriptions) add(h shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{allEvents}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range eventTypes {
		if !slices.Contains(s.byType[t], h) {
			s.byType[t] = append(s.byType[t], h)
		}
	}
}

// remove drops h from every event type it was subscribed to
func (s *subscriptions) remove(h shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t, hs := range s.byType {
		hs = slices.DeleteFunc(hs, func(x shared.EventHandler) bool { return x == h })
		if len(hs) == 0 {
			delete(s.byType, t)
			continue
		}
		s.byType[t] = hs
	}
}

// forType returns the handlers for eventType followed by the catch-all
// handlers, each handler at most once
func (s *subscriptions) forType(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.byType[eventType])
	for _, h := range s.byType[allEvents] {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}
