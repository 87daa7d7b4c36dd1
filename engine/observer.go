package engine

import (
	"github.com/wippyai/gdbind/sys"
)

// EventType identifies an object lifecycle event.
type EventType uint8

const (
	EventConstructed EventType = iota
	EventDestroyed
	EventReferenced
	EventUnreferenced
)

func (t EventType) String() string {
	switch t {
	case EventConstructed:
		return "constructed"
	case EventDestroyed:
		return "destroyed"
	case EventReferenced:
		return "referenced"
	case EventUnreferenced:
		return "unreferenced"
	}
	return "unknown"
}

// Event represents an object lifecycle event.
type Event struct {
	Class    string
	Object   sys.ObjectPtr
	ID       sys.InstanceID
	RefCount int32
	Type     EventType
}

// Observer receives notifications about object lifecycle events.
type Observer interface {
	OnObjectEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnObjectEvent(e Event) { f(e) }

// Subscribe adds an observer for lifecycle events.
func (e *Engine) Subscribe(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

// Unsubscribe removes an observer. ObserverFunc values are not comparable
// and cannot be unsubscribed; wrap them in a pointer type if needed.
func (e *Engine) Unsubscribe(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, obs := range e.observers {
		if obs == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// eventLocked snapshots obj into an event. Caller holds e.mu.
func (e *Engine) eventLocked(t EventType, obj sys.ObjectPtr) Event {
	ev := Event{Type: t, Object: obj}
	if s, ok := e.resolve(obj); ok {
		ev.Class = s.class
		ev.ID = s.id
		ev.RefCount = s.refCount
	}
	return ev
}

func (e *Engine) emit(ev Event) {
	e.obsMu.RLock()
	obs := make([]Observer, len(e.observers))
	copy(obs, e.observers)
	e.obsMu.RUnlock()

	for _, o := range obs {
		o.OnObjectEvent(ev)
	}
}
