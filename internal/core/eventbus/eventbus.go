// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within roost.
package eventbus

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Event names a bus topic.
type Event string

const (
	// EventScanProgress carries a scan progress snapshot on every
	// transition.
	EventScanProgress Event = "scan.progress"
	// EventScanCompleted fires once per finished scan run.
	EventScanCompleted Event = "scan.completed"
	// EventReposInvalidated signals that dependent views are stale after
	// a move batch.
	EventReposInvalidated Event = "repos.invalidated"
)

// StaleViews are the views named by a repos.invalidated event.
var StaleViews = []string{"repository-list", "triage-queue", "dashboard-stats"}

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers events to subscribers on a single dispatch goroutine.
// Publishing never blocks: events are dropped (and logged) when the
// buffer is full.
type EventBus struct {
	ch  chan envelope
	log zerolog.Logger

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates an EventBus with the given buffer size.
func New(buffer int, log zerolog.Logger) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		log:  log,
		subs: map[Event][]func(any){},
	}
}

// Start runs the dispatch loop until ctx is cancelled.
func (b *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.ch:
			b.dispatch(env)
		}
	}
}

func (b *EventBus) dispatch(env envelope) {
	b.mu.RLock()
	subs := make([]func(any), len(b.subs[env.event]))
	copy(subs, b.subs[env.event])
	b.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error().Str("event", string(env.event)).Interface("panic", r).Msg("event subscriber panicked")
				}
			}()
			fn(env.payload)
		}()
	}
}

func (b *EventBus) publish(event Event, payload any) {
	select {
	case b.ch <- envelope{event: event, payload: payload}:
	default:
		b.log.Warn().Str("event", string(event)).Msg("event dropped, bus buffer full")
	}
}

func (b *EventBus) subscribe(event Event, fn func(any)) {
	b.mu.Lock()
	b.subs[event] = append(b.subs[event], fn)
	b.mu.Unlock()
}
