package engine

import (
	"go.uber.org/zap"

	"github.com/wippyai/gdbind/sys"
)

// RefInitRef takes the first reference of a floating object. On an object
// that already has references it behaves like RefReference.
func (e *Engine) RefInitRef(obj sys.ObjectPtr) bool {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	if !ok || !s.refCounted {
		e.mu.Unlock()
		return false
	}
	if s.refInit {
		s.refCount++
	} else {
		s.refInit = true
		s.refCount = 1
	}
	ev := e.eventLocked(EventReferenced, obj)
	e.mu.Unlock()

	e.emit(ev)
	return true
}

// RefReference adds a reference.
func (e *Engine) RefReference(obj sys.ObjectPtr) bool {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	if !ok || !s.refCounted {
		e.mu.Unlock()
		return false
	}
	s.refInit = true
	s.refCount++
	ev := e.eventLocked(EventReferenced, obj)
	e.mu.Unlock()

	e.emit(ev)
	return true
}

// RefUnreference drops a reference and reports whether it was the last.
// The object is not destroyed here; the caller must do that.
func (e *Engine) RefUnreference(obj sys.ObjectPtr) bool {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	if !ok || !s.refCounted {
		e.mu.Unlock()
		return false
	}
	if s.refCount <= 0 {
		className, id := s.class, s.id
		e.mu.Unlock()
		e.log.Warn("unreference of object with no references",
			zap.String("class", className),
			zap.Uint64("instance_id", uint64(id)))
		return false
	}
	s.refCount--
	last := s.refCount == 0
	ev := e.eventLocked(EventUnreferenced, obj)
	e.mu.Unlock()

	e.emit(ev)
	return last
}

// RefGetReferenceCount returns the current count, or 0 for dead or
// manually managed objects.
func (e *Engine) RefGetReferenceCount(obj sys.ObjectPtr) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.resolve(obj); ok && s.refCounted {
		return s.refCount
	}
	return 0
}

// ObjectIsRefCounted reports whether obj is a live reference-counted object.
func (e *Engine) ObjectIsRefCounted(obj sys.ObjectPtr) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.resolve(obj)
	return ok && s.refCounted
}
