package service

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	EventSyncStarted   = "started"
	EventDrawSynced    = "draw_synced"
	EventDrawFailed    = "draw_failed"
	EventSyncCompleted = "completed"
)

type SyncEvent struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	DrawNo    int       `json:"draw_no,omitempty"`
	From      int       `json:"from,omitempty"`
	To        int       `json:"to,omitempty"`
	Synced    int       `json:"synced"`
	Failed    int       `json:"failed"`
	Cancelled bool      `json:"cancelled,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// EventHub fans sync events out to subscribers. Publish never blocks; a slow
// subscriber loses events.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[int]chan SyncEvent
	nextID  int
	dropped uint64
}

func NewEventHub() *EventHub {
	return &EventHub{subs: map[int]chan SyncEvent{}}
}

// Subscribe returns the event channel and a func that detaches and closes it.
func (h *EventHub) Subscribe(buf int) (<-chan SyncEvent, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan SyncEvent, buf)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *EventHub) Publish(ev SyncEvent) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

func (h *EventHub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return atomic.LoadUint64(&h.dropped)
}

func (h *EventHub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
