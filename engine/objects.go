package engine

import (
	"go.uber.org/zap"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

type slot struct {
	binding    any
	props      map[string]variant.Variant
	class      string
	name       string
	children   []sys.ObjectPtr
	parent     sys.ObjectPtr
	id         sys.InstanceID
	refCount   int32
	gen        uint32
	refCounted bool
	refInit    bool
	valid      bool
}

// Pointers pack the generation into the upper 32 bits, so stale-pointer
// detection needs a 64-bit uintptr. On 32-bit targets the generation is lost
// and a reused slot is indistinguishable from its previous occupant.
func encodePtr(idx, gen uint32) sys.ObjectPtr {
	return sys.ObjectPtr(uint64(gen)<<32 | uint64(idx+1))
}

func decodePtr(p sys.ObjectPtr) (idx, gen uint32, ok bool) {
	low := uint32(uint64(p))
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(uint64(p) >> 32), true
}

// resolve returns the live slot behind p. Caller holds e.mu.
func (e *Engine) resolve(p sys.ObjectPtr) (*slot, bool) {
	idx, gen, ok := decodePtr(p)
	if !ok || int(idx) >= len(e.slots) {
		return nil, false
	}
	s := &e.slots[idx]
	if !s.valid || s.gen != gen {
		return nil, false
	}
	return s, true
}

// allocate takes a slot for a new object of className. Caller holds e.mu.
func (e *Engine) allocate(className string) sys.ObjectPtr {
	if e.cfg.MaxObjects > 0 && e.live >= e.cfg.MaxObjects {
		e.log.Warn("object limit reached",
			zap.String("class", className),
			zap.Int("max_objects", e.cfg.MaxObjects))
		return 0
	}

	var idx uint32
	if n := len(e.freeList); n > 0 {
		idx = e.freeList[n-1]
		e.freeList = e.freeList[:n-1]
	} else {
		idx = uint32(len(e.slots))
		e.slots = append(e.slots, slot{})
	}

	e.nextID++
	s := &e.slots[idx]
	gen := s.gen
	*s = slot{
		class:      className,
		id:         e.nextID,
		gen:        gen,
		refCounted: e.reg.IsRefCounted(className),
		valid:      true,
	}
	e.live++

	p := encodePtr(idx, gen)
	e.byID[s.id] = p
	return p
}

// release frees the slot behind p and returns what it owned. Caller holds
// e.mu and has resolved p.
func (e *Engine) release(p sys.ObjectPtr, s *slot) (props map[string]variant.Variant, children []sys.ObjectPtr) {
	props, children = s.props, s.children
	if parent, ok := e.resolve(s.parent); ok {
		parent.children = removePtr(parent.children, p)
	}
	for _, c := range children {
		if cs, ok := e.resolve(c); ok {
			cs.parent = 0
		}
	}

	delete(e.byID, s.id)
	idx, _, _ := decodePtr(p)
	gen := s.gen + 1
	e.slots[idx] = slot{gen: gen}
	e.freeList = append(e.freeList, idx)
	e.live--
	return props, children
}

// forget drops p from the table without running any callbacks.
func (e *Engine) forget(p sys.ObjectPtr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.resolve(p); ok {
		e.release(p, s)
	}
}

func removePtr(list []sys.ObjectPtr, p sys.ObjectPtr) []sys.ObjectPtr {
	for i, c := range list {
		if c == p {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// nativeBase walks up from className to the nearest class the engine
// itself implements. Caller holds e.mu.
func (e *Engine) nativeBase(className string) string {
	for _, name := range e.reg.Chain(className) {
		if _, ext := e.extensions[name]; !ext {
			return name
		}
	}
	return class.RootObject
}

// construct builds an engine-side object, ignoring instantiability.
func (e *Engine) construct(className string) sys.ObjectPtr {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0
	}
	p := e.allocate(className)
	var ev Event
	if !p.IsNull() {
		ev = e.eventLocked(EventConstructed, p)
	}
	e.mu.Unlock()

	if !p.IsNull() {
		e.emit(ev)
	}
	return p
}

// ClassdbConstructObject creates an object of className. Host classes get
// their nearest engine base constructed first, then their Create callback
// attaches the instance. Unknown or abstract classes yield null.
func (e *Engine) ClassdbConstructObject(className string) sys.ObjectPtr {
	d, ok := e.reg.Lookup(className)
	if !ok {
		e.log.Warn("construct of unknown class", zap.String("class", className))
		return 0
	}

	e.mu.Lock()
	info, isExt := e.extensions[className]
	base := className
	if isExt {
		base = e.nativeBase(className)
	}
	e.mu.Unlock()

	if !isExt && !d.Instantiable {
		e.log.Warn("construct of non-instantiable class", zap.String("class", className))
		return 0
	}
	if d.Domain == class.DomainHost && !isExt {
		e.log.Warn("host class has no extension registration", zap.String("class", className))
		return 0
	}

	p := e.construct(base)
	if p.IsNull() || !isExt {
		return p
	}

	binding := info.Create(p)
	if binding == nil {
		e.log.Warn("extension create returned no instance", zap.String("class", className))
		e.forget(p)
		return 0
	}
	if err := e.ObjectSetInstance(p, className, binding); err != nil {
		e.log.Warn("binding instance failed", zap.String("class", className), zap.Error(err))
		e.forget(p)
		return 0
	}
	if info.Notify != nil {
		if err := info.Notify(binding, NotificationPostInitialize); err != nil {
			e.log.Debug("postinitialize notification failed", zap.String("class", className), zap.Error(err))
		}
	}
	return p
}

// ObjectDestroy destroys obj. Host instances are asked through CanFree, then
// notified and freed; if any step refuses, the object stays alive and the
// error is returned. Owned
// properties are released and Node children are destroyed.
func (e *Engine) ObjectDestroy(obj sys.ObjectPtr) error {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	if !ok {
		e.mu.Unlock()
		return errors.New(errors.PhaseLifetime, errors.KindDeadObject).
			Detail("destroy of invalid object %s", obj).
			Build()
	}
	binding, className, id := s.binding, s.class, s.id
	info, isExt := e.extensions[className]
	e.mu.Unlock()

	if binding != nil && isExt {
		if info.CanFree != nil {
			if err := info.CanFree(binding); err != nil {
				return err
			}
		}
		if info.Notify != nil {
			if err := info.Notify(binding, NotificationPredelete); err != nil {
				return errors.New(errors.PhaseLifetime, errors.KindBound).
					Class(className).
					InstanceID(uint64(id)).
					Cause(err).
					Detail("predelete notification failed").
					Build()
			}
		}
		if info.Free != nil {
			if err := info.Free(obj, binding); err != nil {
				return err
			}
		}
	}

	e.mu.Lock()
	s, ok = e.resolve(obj)
	if !ok {
		// Destroyed re-entrantly by a callback.
		e.mu.Unlock()
		return nil
	}
	ev := e.eventLocked(EventDestroyed, obj)
	props, children := e.release(obj, s)
	e.mu.Unlock()

	for _, v := range props {
		if err := v.Destroy(); err != nil {
			e.log.Warn("releasing property failed", zap.String("class", className), zap.Error(err))
		}
	}
	for _, c := range children {
		if err := e.ObjectDestroy(c); err != nil {
			e.log.Warn("destroying child failed", zap.Stringer("child", c), zap.Error(err))
		}
	}

	e.log.Debug("object destroyed", zap.String("class", className), zap.Uint64("instance_id", uint64(id)))
	e.emit(ev)
	return nil
}

// ObjectIsValid reports whether obj points to a live object.
func (e *Engine) ObjectIsValid(obj sys.ObjectPtr) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.resolve(obj)
	return ok
}

// ObjectGetInstanceID returns obj's instance id, or 0 if obj is dead.
func (e *Engine) ObjectGetInstanceID(obj sys.ObjectPtr) sys.InstanceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.resolve(obj); ok {
		return s.id
	}
	return 0
}

// ObjectGetInstanceFromID returns the live object with id, or null.
func (e *Engine) ObjectGetInstanceFromID(id sys.InstanceID) sys.ObjectPtr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byID[id]
}

// ObjectGetClassName returns obj's dynamic class name.
func (e *Engine) ObjectGetClassName(obj sys.ObjectPtr) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.resolve(obj); ok {
		return s.class, true
	}
	return "", false
}

// ObjectCastTo returns obj if its dynamic class inherits className.
func (e *Engine) ObjectCastTo(obj sys.ObjectPtr, className string) sys.ObjectPtr {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	var dyn string
	if ok {
		dyn = s.class
	}
	e.mu.Unlock()

	if ok && e.reg.Inherits(dyn, className) {
		return obj
	}
	return 0
}

// ObjectSetInstance binds a host instance to obj and retags it as
// className, which must derive from obj's current class.
func (e *Engine) ObjectSetInstance(obj sys.ObjectPtr, className string, binding any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.resolve(obj)
	if !ok {
		return errors.DeadObject(className, 0)
	}
	if s.binding != nil {
		return errors.New(errors.PhaseRegistry, errors.KindDuplicate).
			Class(className).
			Dynamic(s.class).
			InstanceID(uint64(s.id)).
			Detail("object already has an instance").
			Build()
	}
	if !e.reg.Inherits(className, s.class) {
		return errors.TypeMismatch(errors.PhaseRegistry, className, s.class)
	}
	s.class = className
	s.binding = binding
	return nil
}

// ObjectGetInstance returns the host instance bound to obj.
func (e *Engine) ObjectGetInstance(obj sys.ObjectPtr) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.resolve(obj)
	if !ok || s.binding == nil {
		return nil, false
	}
	return s.binding, true
}

// ObjectNotification delivers what to obj's host instance. Objects with no
// host instance accept and ignore notifications.
func (e *Engine) ObjectNotification(obj sys.ObjectPtr, what int32) error {
	e.mu.Lock()
	s, ok := e.resolve(obj)
	if !ok {
		e.mu.Unlock()
		return errors.DeadObject("", 0)
	}
	binding := s.binding
	info, isExt := e.extensions[s.class]
	e.mu.Unlock()

	if binding == nil || !isExt || info.Notify == nil {
		return nil
	}
	return info.Notify(binding, what)
}
