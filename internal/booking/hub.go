package booking

import (
	"sync"

	"github.com/google/uuid"
)

// Hub relays scheduling signals to the feeds open for a browser session.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[string]chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[string]chan struct{}{}}
}

// Subscribe registers a listener for key. The returned func removes it.
func (h *Hub) Subscribe(key string) (<-chan struct{}, func()) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = map[string]chan struct{}{}
	}
	h.subs[key][id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[key], id)
		if len(h.subs[key]) == 0 {
			delete(h.subs, key)
		}
	}
}

// Notify signals every listener of key and returns how many there were.
// A listener that has not drained its last signal is not signalled twice.
func (h *Hub) Notify(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return len(h.subs[key])
}
