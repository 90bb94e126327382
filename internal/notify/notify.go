// Package notify is the in-process notification channel between the
// coordination engines and their consumers (UI layers, logging, analytics).
// Publishing is synchronous: by the time a mutating call returns, every
// subscriber has seen the corresponding event exactly once.
package notify

import "sync"

// NavType tags which navigation operation produced a NavigationChanged event.
type NavType int

const (
	NavigateTo NavType = iota
	NavigateBack
	NavigateForward
	NavigateUp
)

func (n NavType) String() string {
	switch n {
	case NavigateTo:
		return "navigate"
	case NavigateBack:
		return "back"
	case NavigateForward:
		return "forward"
	case NavigateUp:
		return "up"
	}
	return "unknown"
}

// UndoRedoStateChanged announces the manager's capabilities after a mutation.
type UndoRedoStateChanged struct {
	CanUndo bool
	CanRedo bool
}

// NavigationChanged announces a successful navigation.
type NavigationChanged struct {
	TabID string
	Path  string
	Type  NavType
}

// RefreshCompleted announces the outcome of a coordinator dispatch.
type RefreshCompleted struct {
	Path         string
	Source       string
	Success      bool
	ErrorMessage string
	RequestID    string
}

// Event is any of the notification payloads above.
type Event any

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not call back into the publishing engine.
type Handler func(Event)

// Bus is a minimal synchronous publish/subscribe hub. The zero value is not
// usable; construct with NewBus.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler for all events and returns a function that
// removes it. Unsubscribing during a publish is safe; the handler may still
// receive the event currently being delivered.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers ev to every current subscriber, synchronously.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}
