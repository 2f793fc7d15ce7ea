package realtime

import (
	"context"
	"log"
	"sync"
)

// SnapshotFunc builds the complete marshaled state of one user's day:
// profile, targets, today's meals with totals, and water. Injected by the
// server so the hub stays free of service imports.
type SnapshotFunc func(ctx context.Context, userID string) ([]byte, error)

// Hub fans full-state snapshots out to per-user subscribers. Every data
// change publishes the whole snapshot rather than a delta, so subscribers
// never need to merge and a dropped message is repaired by the next one.
type Hub struct {
	snapshot SnapshotFunc

	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{}
}

func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		snapshot:    snapshot,
		subscribers: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe registers a snapshot channel for the user. The returned cancel
// removes the subscription and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(userID string) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan []byte]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set := h.subscribers[userID]; set != nil {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subscribers, userID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish rebuilds the user's snapshot and sends it to every subscriber.
// Sends are non-blocking: a subscriber that cannot keep up misses this
// emission and catches up on the next full snapshot. Safe on a nil hub.
func (h *Hub) Publish(ctx context.Context, userID string) {
	if h == nil || h.snapshot == nil {
		return
	}

	h.mu.RLock()
	active := len(h.subscribers[userID]) > 0
	h.mu.RUnlock()
	if !active {
		return
	}

	data, err := h.snapshot(ctx, userID)
	if err != nil {
		log.Printf("WARN realtime: snapshot build failed for user=%s: %v", userID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[userID] {
		select {
		case ch <- data:
		default:
		}
	}
}

// SubscriberCount reports the number of open subscriptions for the user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
