package notify

import "sync"

// Change announces that a slot was overwritten.
type Change struct {
	// Key is the slot key that changed.
	Key string
	// Value is the new serialized value. Empty when the producer could not
	// observe it (e.g. FileWatcher).
	Value string
	// Revision is the slot revision after the write, 0 when unknown.
	Revision int64
	// Origin identifies the publishing context. Subscribers registered with
	// the same origin do not receive the change.
	Origin string
}

// Broadcaster delivers changes to every other interested context.
type Broadcaster interface {
	Publish(c Change)
	Subscribe(key, origin string) *Subscription
}

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Subscription receives changes for one key.
type Subscription struct {
	C <-chan Change

	key    string
	origin string
	ch     chan Change
	once   sync.Once
	cancel func(*Subscription)
}

// Close stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel(s)
	})
}

// Hub is an in-process Broadcaster.
//
// Thread-safety: all methods are safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: DefaultBuffer,
	}
}

// Subscribe registers interest in key. An empty key receives every change.
// Changes published with the same non-empty origin are not delivered back.
func (h *Hub) Subscribe(key, origin string) *Subscription {
	ch := make(chan Change, h.buffer)
	s := &Subscription{
		C:      ch,
		key:    key,
		origin: origin,
		ch:     ch,
		cancel: h.remove,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish delivers c to every matching subscriber without blocking.
// A subscriber whose buffer is full misses the change; it already has a
// pending change for the same key, which triggers the same reload.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		if s.key != "" && s.key != c.Key {
			continue
		}
		if c.Origin != "" && s.origin == c.Origin {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}
