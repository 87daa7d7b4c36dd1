package gd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
)

// Class is implemented by every type usable as a handle's class. The method
// is called on the zero value and must return the same descriptor every
// time.
type Class interface {
	ClassDescriptor() *class.Descriptor
}

// Gd is a handle to an engine object of class T.
type Gd[T Class] struct {
	raw sys.ObjectPtr
}

func descriptorOf[T Class]() *class.Descriptor {
	var zero T
	d := zero.ClassDescriptor()
	if d == nil {
		panic(errors.NilPointer(errors.PhaseRegistry, fmt.Sprintf("%T", zero)))
	}
	return d
}

// ClassName returns the static class name of T.
func ClassName[T Class]() string {
	return descriptorOf[T]().Name
}

// Ptr returns the raw object pointer.
func (g Gd[T]) Ptr() sys.ObjectPtr { return g.raw }

// IsNull reports whether g holds no object.
func (g Gd[T]) IsNull() bool { return g.raw.IsNull() }

// IsInstanceValid reports whether the object is still alive.
func (g Gd[T]) IsInstanceValid() bool {
	return !g.raw.IsNull() && sys.Get().ObjectIsValid(g.raw)
}

// InstanceID returns the engine's id of the object. It panics if the object
// has been destroyed.
func (g Gd[T]) InstanceID() sys.InstanceID {
	g.mustBeValid("instance_id")
	return sys.Get().ObjectGetInstanceID(g.raw)
}

// DynamicClass returns the object's runtime class, or "" if it is dead.
func (g Gd[T]) DynamicClass() string {
	if g.raw.IsNull() {
		return ""
	}
	name, _ := sys.Get().ObjectGetClassName(g.raw)
	return name
}

func (g Gd[T]) String() string {
	if !g.IsInstanceValid() {
		return "<Freed Object>"
	}
	return fmt.Sprintf("<%s#%d>", g.DynamicClass(), sys.Get().ObjectGetInstanceID(g.raw))
}

func (g Gd[T]) mustBeValid(op string) {
	if g.raw.IsNull() {
		panic(errors.New(errors.PhaseLifetime, errors.KindNilPointer).
			Class(ClassName[T]()).
			Detail("%s on a null handle", op).
			Build())
	}
	if !sys.Get().ObjectIsValid(g.raw) {
		panic(errors.New(errors.PhaseLifetime, errors.KindDeadObject).
			Class(ClassName[T]()).
			Detail("%s on a previously freed instance", op).
			Build())
	}
}

// isRefCounted resolves the memory category for this object.
func (g Gd[T]) isRefCounted() bool {
	d := descriptorOf[T]()
	switch d.Memory {
	case class.MemoryRefCounted:
		return true
	case class.MemoryManual:
		return false
	case class.MemoryDynamic:
		dyn, ok := sys.Get().ObjectGetClassName(g.raw)
		return ok && class.Default().Inherits(dyn, class.RootRefCounted)
	}
	panic(errors.NotInitialized(errors.PhaseRegistry, "class "+d.Name))
}

// Share returns a second handle to the same object. For reference-counted
// objects this takes a reference; for manually managed ones it is a plain
// copy with no ownership tracking.
func (g Gd[T]) Share() Gd[T] {
	if g.raw.IsNull() {
		return g
	}
	if g.isRefCounted() {
		g.mustBeValid("share")
		sys.Get().RefReference(g.raw)
	}
	return g
}

// Drop releases the handle. Reference-counted objects lose one reference
// and are destroyed when it was the last; for manually managed objects Drop
// does nothing. The handle must not be used afterwards.
func (g Gd[T]) Drop() {
	if g.raw.IsNull() {
		return
	}
	iface := sys.Get()
	if !iface.ObjectIsValid(g.raw) {
		// Manual objects may already be freed through another handle.
		if descriptorOf[T]().Memory == class.MemoryRefCounted {
			Logger().Warn("drop of a destroyed reference-counted object",
				zap.String("class", ClassName[T]()),
				zap.Stringer("ptr", g.raw))
		}
		return
	}
	if !g.isRefCounted() {
		return
	}
	if iface.RefUnreference(g.raw) {
		if err := iface.ObjectDestroy(g.raw); err != nil {
			// The object survives, so g keeps its reference.
			iface.RefReference(g.raw)
			panic(errors.New(errors.PhaseLifetime, errors.KindBound).
				Class(ClassName[T]()).
				Cause(err).
				Detail("last reference could not be dropped because the object cannot be destroyed").
				Build())
		}
	}
}

// Free destroys a manually managed object. It panics for reference-counted
// objects, for objects already destroyed, and while a host payload is bound.
func (g Gd[T]) Free() {
	name := ClassName[T]()
	if g.raw.IsNull() {
		panic(errors.NilPointer(errors.PhaseLifetime, name))
	}
	iface := sys.Get()
	if !iface.ObjectIsValid(g.raw) {
		panic(errors.AlreadyFreed(name))
	}
	if g.isRefCounted() {
		panic(errors.WrongCategory(name, fmt.Sprintf("called free() on reference-counted object of dynamic class %s", g.DynamicClass())))
	}
	if err := iface.ObjectDestroy(g.raw); err != nil {
		panic(err)
	}
	Logger().Debug("object freed", zap.String("class", name))
}

// Upcast reinterprets g as a handle to its ancestor class B. The result has
// the same bits and takes over g's ownership. It panics if B is not an
// ancestor of T.
func Upcast[B, T Class](g Gd[T]) Gd[B] {
	from, to := ClassName[T](), ClassName[B]()
	if !class.Default().Inherits(from, to) {
		panic(errors.New(errors.PhaseCast, errors.KindTypeMismatch).
			Class(from).
			Detail("%s does not inherit %s", from, to).
			Build())
	}
	return Gd[B]{raw: g.raw}
}

// TryCast checks that g's object is a D and returns it as Gd[D]. On success
// ownership moves to the result. On failure g keeps its ownership and the
// caller stays responsible for it.
func TryCast[D, T Class](g Gd[T]) (Gd[D], bool) {
	if !g.IsInstanceValid() {
		return Gd[D]{}, false
	}
	if sys.Get().ObjectCastTo(g.raw, ClassName[D]()).IsNull() {
		return Gd[D]{}, false
	}
	return Gd[D]{raw: g.raw}, true
}

// Cast is TryCast that panics on failure, naming both classes.
func Cast[D, T Class](g Gd[T]) Gd[D] {
	d, ok := TryCast[D](g)
	if !ok {
		g.mustBeValid("cast")
		panic(errors.New(errors.PhaseCast, errors.KindTypeMismatch).
			Class(ClassName[T]()).
			Dynamic(g.DynamicClass()).
			Detail("cannot cast Gd[%s] with dynamic class %s to %s", ClassName[T](), g.DynamicClass(), ClassName[D]()).
			Build())
	}
	return d
}

// FromInstanceID looks up a live object by id. It fails if there is none or
// if its class is not a T. The returned handle owns a reference.
func FromInstanceID[T Class](id sys.InstanceID) (Gd[T], bool) {
	return FromPtr[T](sys.Get().ObjectGetInstanceFromID(id))
}

// MustFromInstanceID is FromInstanceID that panics when the lookup fails.
func MustFromInstanceID[T Class](id sys.InstanceID) Gd[T] {
	g, ok := FromInstanceID[T](id)
	if !ok {
		panic(errors.New(errors.PhaseCast, errors.KindNotFound).
			Class(ClassName[T]()).
			InstanceID(uint64(id)).
			Detail("no compatible object with instance id %d", id).
			Build())
	}
	return g
}

// FromPtr wraps a pointer received from the engine, checking that the
// object is a T. The returned handle owns a reference.
func FromPtr[T Class](obj sys.ObjectPtr) (Gd[T], bool) {
	if obj.IsNull() || sys.Get().ObjectCastTo(obj, ClassName[T]()).IsNull() {
		return Gd[T]{}, false
	}
	return fromBorrowed[T](obj), true
}

// fromBorrowed wraps a pointer obtained from the engine that no handle owns
// yet, taking a reference if the object is reference-counted.
func fromBorrowed[T Class](obj sys.ObjectPtr) Gd[T] {
	g := Gd[T]{raw: obj}
	if g.isRefCounted() {
		sys.Get().RefReference(obj)
	}
	return g
}

// Singleton returns the engine's global instance of T. Singletons are
// manually managed and owned by the engine.
func Singleton[T Class]() Gd[T] {
	name := ClassName[T]()
	obj := sys.Get().GlobalGetSingleton(name)
	if obj.IsNull() {
		panic(errors.NotFound(errors.PhaseLifetime, "singleton", name))
	}
	return Gd[T]{raw: obj}
}
