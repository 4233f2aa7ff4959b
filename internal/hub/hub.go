// Package hub fans game state changes out to everyone watching a game session.
package hub

import (
	"context"
	"sync"

	"ctchen222/Tikki-Tacca/internal/game"

	"go.opentelemetry.io/otel"
)

// subscriberBuffer is how many states a slow watcher may lag behind before the oldest is dropped.
const subscriberBuffer = 16

var tracer = otel.Tracer("hub")

// Hub delivers snapshots published for a game to the subscribers of that game.
type Hub interface {
	Publish(ctx context.Context, gameID string, state game.Snapshot) error
	// Subscribe returns a stream of states for gameID and a func that ends the subscription.
	// The stream is closed when the func is called or ctx is done.
	Subscribe(ctx context.Context, gameID string) (<-chan game.Snapshot, func(), error)
}

// MemoryHub is an in-process Hub.
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan game.Snapshot]struct{}
}

// NewMemoryHub creates an empty in-process hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[chan game.Snapshot]struct{})}
}

func (h *MemoryHub) Publish(ctx context.Context, gameID string, state game.Snapshot) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[gameID] {
		offer(ch, state)
	}
	return nil
}

func (h *MemoryHub) Subscribe(ctx context.Context, gameID string) (<-chan game.Snapshot, func(), error) {
	ch := make(chan game.Snapshot, subscriberBuffer)

	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan game.Snapshot]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			h.mu.Lock()
			delete(h.subs[gameID], ch)
			if len(h.subs[gameID]) == 0 {
				delete(h.subs, gameID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}

// subscribers reports how many watchers gameID has.
func (h *MemoryHub) subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// offer enqueues state without blocking, dropping the oldest queued state when ch is full.
func offer(ch chan game.Snapshot, state game.Snapshot) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
