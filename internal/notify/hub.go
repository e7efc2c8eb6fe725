// Package notify delivers push events from the daemon to bridge subscribers.
// Subscribers are keyed by a stable id chosen by the caller.
package notify

import (
	"errors"
	"sync"
	"time"
)

// ChannelBackupReminder is the push channel asking the UI to remind the user to back up.
const ChannelBackupReminder = "show-backup-reminder"

// ErrEmptySubscriberID is returned when subscribing without an id.
var ErrEmptySubscriberID = errors.New("subscriber id can not be empty")

// Event is one push notification.
type Event struct {
	Channel string    `json:"channel"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Handler receives events. It runs on the publisher's goroutine and must not call Unsubscribe for its own id.
type Handler func(Event)

type subscription struct {
	mu      sync.Mutex
	handler Handler
	closed  bool
}

func (s *subscription) deliver(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.handler(e)

	return true
}

func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Hub fans events out to subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscription
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*subscription)}
}

// Subscribe registers handler under id. An existing subscription with the same id is replaced.
func (h *Hub) Subscribe(id string, handler Handler) error {
	_, err := h.Attach(id, handler)

	return err
}

// Attach works like Subscribe and returns a detach func for the owner of the subscription.
// Detach only removes the subscription it created, never a later one under the same id.
func (h *Hub) Attach(id string, handler Handler) (func(), error) {
	if id == "" {
		return nil, ErrEmptySubscriberID
	}

	sub := &subscription{handler: handler}

	h.mu.Lock()
	old := h.subs[id]
	h.subs[id] = sub
	h.mu.Unlock()

	if old != nil {
		old.close()
	}

	detach := func() {
		h.mu.Lock()
		if h.subs[id] == sub {
			delete(h.subs, id)
		}
		h.mu.Unlock()

		sub.close()
	}

	return detach, nil
}

// Unsubscribe removes the subscription. Once it returns the handler is never called again.
// It reports whether id was subscribed.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		sub.close()
	}

	return ok
}

// Publish delivers e to every subscriber and returns how many received it.
func (h *Hub) Publish(e Event) int {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	subs := make([]*subscription, 0, len(h.subs))

	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	delivered := 0

	for _, s := range subs {
		if s.deliver(e) {
			delivered++
		}
	}

	return delivered
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}
