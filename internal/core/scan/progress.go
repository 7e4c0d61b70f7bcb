package scan

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the lifecycle state of the process-wide scan.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusScanning  Status = "scanning"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Progress is a snapshot of the live scan. It is what observers receive
// and what the progress stream serializes, one complete object per event.
type Progress struct {
	Status       Status     `json:"status"`
	CurrentIndex int        `json:"currentIndex"`
	CurrentPath  string     `json:"currentPath"`
	ReposFound   int        `json:"reposFound"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

// Observer receives a snapshot on every transition.
type Observer func(Progress)

// Tracker owns the single mutable scan-progress state. It is constructed
// once at process start and only the Orchestrator transitions it; other
// components observe through Subscribe.
type Tracker struct {
	mu        sync.Mutex
	current   Progress
	observers map[int]Observer
	nextID    int
	log       zerolog.Logger
}

// NewTracker creates a Tracker in the idle state.
func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{
		current:   Progress{Status: StatusIdle},
		observers: map[int]Observer{},
		log:       log,
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Subscribe registers an observer and returns its unsubscribe function.
func (t *Tracker) Subscribe(fn Observer) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// set applies fn to the current state and notifies every observer with a
// copy. A panicking observer is logged and isolated; delivery to the
// remaining observers continues.
func (t *Tracker) set(fn func(*Progress)) {
	t.mu.Lock()
	fn(&t.current)
	snapshot := t.current
	observers := make([]Observer, 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.mu.Unlock()

	for _, o := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.log.Error().Interface("panic", r).Msg("scan progress observer panicked")
				}
			}()
			o(snapshot)
		}()
	}
}

func (t *Tracker) begin() {
	now := time.Now()
	t.set(func(p *Progress) {
		*p = Progress{Status: StatusScanning, StartedAt: &now}
	})
}

func (t *Tracker) update(index int, path string, found int) {
	t.set(func(p *Progress) {
		p.CurrentIndex = index
		p.CurrentPath = path
		p.ReposFound = found
	})
}

func (t *Tracker) finish(status Status, lastError string) {
	now := time.Now()
	t.set(func(p *Progress) {
		p.Status = status
		p.EndedAt = &now
		p.LastError = lastError
	})
}

// Reset returns the tracker to idle. Called between scans, never during
// one.
func (t *Tracker) Reset() {
	t.set(func(p *Progress) {
		*p = Progress{Status: StatusIdle}
	})
}
