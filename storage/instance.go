package storage

import (
	stderrors "errors"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/cell"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
)

// Notifier is implemented by payloads that want engine notifications.
type Notifier interface {
	OnNotification(what int32)
}

// Dropper is implemented by payloads that release resources when their
// object is destroyed.
type Dropper interface {
	Drop()
}

// Binding is the type-erased view of an Instance the engine callbacks use.
type Binding interface {
	ClassName() string
	IsBound() bool
	Notify(what int32) error
	Free() error
}

// Instance is the binding between one engine object and its payload.
type Instance[T any] struct {
	cell  *cell.Cell[T]
	class string
	base  sys.ObjectPtr
	freed bool
}

var _ Binding = (*Instance[struct{}])(nil)

// New creates the binding for base holding value.
func New[T any](base sys.ObjectPtr, class string, value T) *Instance[T] {
	return &Instance[T]{
		cell:  cell.New(value),
		class: class,
		base:  base,
	}
}

// Get returns obj's binding, checking that it holds a T.
func Get[T any](obj sys.ObjectPtr) (*Instance[T], error) {
	iface := sys.Get()
	if !iface.ObjectIsValid(obj) {
		return nil, errors.New(errors.PhaseLifetime, errors.KindDeadObject).
			Detail("object %s is not alive", obj).
			Build()
	}
	binding, ok := iface.ObjectGetInstance(obj)
	dyn, _ := iface.ObjectGetClassName(obj)
	if !ok {
		return nil, errors.New(errors.PhaseCast, errors.KindNotFound).
			Dynamic(dyn).
			Detail("object has no host instance").
			Build()
	}
	inst, ok := binding.(*Instance[T])
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseCast, typeName[T](), dyn)
	}
	return inst, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Bind takes a shared borrow of the payload.
func (i *Instance[T]) Bind() (*cell.Ref[T], error) {
	if i.freed {
		return nil, errors.AlreadyFreed(i.class)
	}
	r, err := i.cell.Borrow()
	if err != nil {
		return nil, i.annotate(err)
	}
	return r, nil
}

// BindMut takes an exclusive borrow of the payload.
func (i *Instance[T]) BindMut() (*cell.Mut[T], error) {
	if i.freed {
		return nil, errors.AlreadyFreed(i.class)
	}
	m, err := i.cell.BorrowMut()
	if err != nil {
		return nil, i.annotate(err)
	}
	return m, nil
}

// annotate attaches the class name to a borrow error.
func (i *Instance[T]) annotate(err error) error {
	var gerr *errors.Error
	if !stderrors.As(err, &gerr) {
		return err
	}
	return errors.New(gerr.Phase, gerr.Kind).
		Class(i.class).
		InstanceID(uint64(sys.Get().ObjectGetInstanceID(i.base))).
		Cause(err).
		Detail("%s", gerr.Detail).
		Build()
}

// IsBound reports whether any borrow of the payload is alive.
func (i *Instance[T]) IsBound() bool {
	return i.cell.IsBorrowed()
}

// Base returns a non-owning reference to the engine object.
func (i *Instance[T]) Base() Base {
	return Base{obj: i.base}
}

// ClassName returns the host class name.
func (i *Instance[T]) ClassName() string {
	return i.class
}

// Notify delivers what to the payload if it implements Notifier. The call
// holds a mutable borrow; a payload already bound elsewhere fails unless
// that borrow was suspended.
func (i *Instance[T]) Notify(what int32) error {
	m, err := i.BindMut()
	if err != nil {
		return err
	}
	defer m.Release()
	if n, ok := any(m.Get()).(Notifier); ok {
		n.OnNotification(what)
	}
	return nil
}

// Free runs the payload's Drop. It refuses while the payload is bound.
func (i *Instance[T]) Free() error {
	if i.freed {
		return errors.AlreadyFreed(i.class)
	}
	if i.IsBound() {
		return errors.Bound(i.class)
	}
	i.freed = true
	m, err := i.cell.BorrowMut()
	if err != nil {
		return i.annotate(err)
	}
	defer m.Release()
	if d, ok := any(m.Get()).(Dropper); ok {
		d.Drop()
	}
	Logger().Debug("instance freed", zap.String("class", i.class))
	return nil
}
