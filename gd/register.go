package gd

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/storage"
	"github.com/wippyai/gdbind/sys"
)

// Base is a non-owning reference to an object's engine side, passed to
// payload constructors.
type Base = storage.Base

// Initializer is implemented by host payloads that set themselves up when
// the engine constructs them without an explicit value.
type Initializer interface {
	Init(base Base)
}

type hostClass[T any] struct {
	desc    *class.Descriptor
	pending func(Base) T
}

var (
	hostClasses   = make(map[string]any)
	hostClassesMu sync.Mutex
)

// Register declares the host class T to the class registry and the engine.
// Call it once per engine, after sys.Init.
func Register[T Class]() error {
	d := descriptorOf[T]()
	if d.Domain != class.DomainHost {
		return errors.Registration(d.Name, fmt.Errorf("%s is not a host class", d.Name))
	}
	if err := class.Default().Register(d); err != nil {
		return err
	}

	hc := &hostClass[T]{desc: d}
	info := sys.ExtensionClassInfo{
		Name:   d.Name,
		Parent: d.Base,
		Create: func(obj sys.ObjectPtr) any {
			return storage.New(obj, d.Name, hc.create(obj))
		},
		CanFree: func(b any) error {
			if b.(storage.Binding).IsBound() {
				return errors.Bound(d.Name)
			}
			return nil
		},
		Free: func(_ sys.ObjectPtr, b any) error {
			return b.(storage.Binding).Free()
		},
		Notify: func(b any, what int32) error {
			return b.(storage.Binding).Notify(what)
		},
	}
	if err := sys.Get().ClassdbRegisterExtensionClass(info); err != nil {
		return err
	}

	hostClassesMu.Lock()
	hostClasses[d.Name] = hc
	hostClassesMu.Unlock()

	Logger().Debug("host class registered",
		zap.String("class", d.Name),
		zap.String("base", d.Base),
		zap.Stringer("memory", d.Memory))
	return nil
}

// create builds the payload for a freshly constructed object. A pending
// constructor set by New or NewFunc wins; otherwise the zero value is used,
// initialized through Initializer if implemented.
func (hc *hostClass[T]) create(obj sys.ObjectPtr) T {
	init := hc.pending
	hc.pending = nil
	if init != nil {
		return init(storage.NewBase(obj))
	}
	var v T
	if i, ok := any(&v).(Initializer); ok {
		i.Init(storage.NewBase(obj))
	}
	return v
}

func lookupHost[T Class]() *hostClass[T] {
	name := ClassName[T]()
	hostClassesMu.Lock()
	hc, ok := hostClasses[name]
	hostClassesMu.Unlock()
	if !ok {
		panic(errors.NotInitialized(errors.PhaseRegistry, "host class "+name))
	}
	return hc.(*hostClass[T])
}

// New creates an object of host class T holding payload. It panics for
// engine classes and for classes whose payload needs its base at
// construction; use NewFunc for those.
func New[T Class](payload T) Gd[T] {
	d := descriptorOf[T]()
	if d.BaseField {
		panic(errors.Unsupported(errors.PhaseLifetime, d.Name+" needs its base at construction; use NewFunc"))
	}
	return NewFunc(func(Base) T { return payload })
}

// NewFunc creates an object of host class T whose payload is built by fn
// once the engine object exists.
func NewFunc[T Class](fn func(Base) T) Gd[T] {
	d := descriptorOf[T]()
	if d.Domain != class.DomainHost {
		panic(errors.Unsupported(errors.PhaseLifetime, "engine class "+d.Name+" has no host payload"))
	}
	hc := lookupHost[T]()
	hc.pending = fn
	obj := sys.Get().ClassdbConstructObject(d.Name)
	hc.pending = nil
	return adoptNew[T](obj)
}

// NewDefault creates an object of class T through the engine's no-argument
// constructor. Host payloads start as the zero value, passed through
// Initializer when implemented.
func NewDefault[T Class]() Gd[T] {
	d := descriptorOf[T]()
	if d.Domain == class.DomainHost {
		lookupHost[T]()
	}
	return adoptNew[T](sys.Get().ClassdbConstructObject(d.Name))
}

// adoptNew wraps a freshly constructed object, taking its first reference.
func adoptNew[T Class](obj sys.ObjectPtr) Gd[T] {
	name := ClassName[T]()
	if obj.IsNull() {
		panic(errors.New(errors.PhaseLifetime, errors.KindNilPointer).
			Class(name).
			Detail("engine failed to construct %s", name).
			Build())
	}
	g := Gd[T]{raw: obj}
	if g.isRefCounted() {
		sys.Get().RefInitRef(obj)
	}
	Logger().Debug("object constructed", zap.String("class", name), zap.Stringer("ptr", obj))
	return g
}

// FromBase returns an owning handle for the object behind b, taking a
// reference if it is reference-counted. It panics if the object is not a T.
func FromBase[T Class](b Base) Gd[T] {
	if !b.IsValid() {
		panic(errors.DeadObject(ClassName[T](), 0))
	}
	if sys.Get().ObjectCastTo(b.Ptr(), ClassName[T]()).IsNull() {
		panic(errors.TypeMismatch(errors.PhaseCast, ClassName[T](), b.ClassName()))
	}
	return fromBorrowed[T](b.Ptr())
}
