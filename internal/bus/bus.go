// internal/bus/bus.go
package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/macro-cli/api/schemas"
)

// ErrShutdown is returned by Post once Shutdown has started.
var ErrShutdown = errors.New("event bus is shut down")

// Bus fans run events out to subscribers. Each subscriber gets its own
// buffered channel; a full buffer makes the publisher wait, so a subscriber
// that stops reading must unsubscribe.
type Bus struct {
	logger *zap.Logger

	// Map of event kind to subscriber channels.
	subscribers map[schemas.EventKind][]chan schemas.Event
	mu          sync.RWMutex
	bufferSize  int

	// Tracks Post calls that are attempting delivery.
	activePostsWg sync.WaitGroup

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	isShutdown   bool
	shutdownMu   sync.Mutex
}

// New creates a bus whose subscriber channels hold bufferSize events.
func New(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize < 0 {
		bufferSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger:       logger.Named("bus"),
		subscribers:  make(map[schemas.EventKind][]chan schemas.Event),
		bufferSize:   bufferSize,
		shutdownChan: make(chan struct{}),
	}
}

// Notify implements macro.Notifier. Events published after shutdown, or
// while a delivery is interrupted by shutdown, are dropped.
func (b *Bus) Notify(ev schemas.Event) {
	if err := b.Post(context.Background(), ev); err != nil {
		b.logger.Debug("Dropped event", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

// Post delivers ev to every subscriber of its kind. It blocks while a
// subscriber buffer is full, until ctx is done or the bus shuts down.
func (b *Bus) Post(ctx context.Context, ev schemas.Event) error {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return ErrShutdown
	}
	b.activePostsWg.Add(1)
	b.shutdownMu.Unlock()
	defer b.activePostsWg.Done()

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	subs := b.subscribers[ev.Kind]
	if len(subs) == 0 {
		b.mu.RUnlock()
		return nil
	}
	// Deliver from a copy so the lock is not held during sends.
	subsCopy := make([]chan schemas.Event, len(subs))
	copy(subsCopy, subs)
	b.mu.RUnlock()

	for _, ch := range subsCopy {
		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.shutdownChan:
			return ErrShutdown
		}
	}
	return nil
}

// Subscribe returns a channel receiving the given kinds, or every kind when
// none are named, and a function that removes the subscription. The channel
// is closed by Shutdown.
func (b *Bus) Subscribe(kinds ...schemas.EventKind) (<-chan schemas.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isShutdownLocked() {
		closed := make(chan schemas.Event)
		close(closed)
		return closed, func() {}
	}

	if len(kinds) == 0 {
		kinds = schemas.AllEventKinds
	}
	subscribed := make([]schemas.EventKind, len(kinds))
	copy(subscribed, kinds)

	ch := make(chan schemas.Event, b.bufferSize)
	for _, k := range subscribed {
		b.subscribers[k] = append(b.subscribers[k], ch)
	}

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, k := range subscribed {
			subs := b.subscribers[k]
			for i, c := range subs {
				if c == ch {
					b.subscribers[k] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.subscribers[k]) == 0 {
				delete(b.subscribers, k)
			}
		}
		// The channel stays open; a concurrent Post may still hold it.
	}
	return ch, unsubscribe
}

func (b *Bus) isShutdownLocked() bool {
	b.shutdownMu.Lock()
	defer b.shutdownMu.Unlock()
	return b.isShutdown
}

// Shutdown stops accepting events, waits for in-flight posts and closes
// every subscriber channel. Buffered events remain readable.
func (b *Bus) Shutdown() {
	b.shutdownOnce.Do(func() {
		b.logger.Debug("Shutting down event bus")

		b.shutdownMu.Lock()
		b.isShutdown = true
		b.shutdownMu.Unlock()

		close(b.shutdownChan)
		b.activePostsWg.Wait()

		b.mu.Lock()
		unique := make(map[chan schemas.Event]struct{})
		for _, subs := range b.subscribers {
			for _, ch := range subs {
				unique[ch] = struct{}{}
			}
		}
		// No Post is in flight any more, so closing cannot race a send.
		for ch := range unique {
			close(ch)
		}
		b.subscribers = make(map[schemas.EventKind][]chan schemas.Event)
		b.mu.Unlock()
	})
}
