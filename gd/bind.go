package gd

import (
	"github.com/wippyai/gdbind/cell"
	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/storage"
)

// GdRef is a shared borrow of a host payload.
type GdRef[T any] struct {
	ref *cell.Ref[T]
}

// Get returns the payload. Do not mutate through it.
func (r *GdRef[T]) Get() *T { return r.ref.Get() }

// Release ends the borrow.
func (r *GdRef[T]) Release() { r.ref.Release() }

// GdMut is an exclusive borrow of a host payload.
type GdMut[T any] struct {
	mut  *cell.Mut[T]
	base Base
}

// Get returns the payload.
func (m *GdMut[T]) Get() *T { return m.mut.Get() }

// Release ends the borrow. It panics while a BaseMut is outstanding.
func (m *GdMut[T]) Release() { m.mut.Release() }

// BaseMut suspends the borrow and returns access to the engine object, so
// calls that re-enter the same payload (notifications, virtual methods) can
// bind it again. Get panics until the BaseMut is restored.
func (m *GdMut[T]) BaseMut() *BaseMut {
	g, err := m.mut.Suspend()
	if err != nil {
		panic(err)
	}
	return &BaseMut{base: m.base, restore: g.Restore}
}

// BaseMut gives access to the engine side of an object while its payload
// borrow is suspended.
type BaseMut struct {
	restore func() error
	base    Base
}

// Base returns the object reference.
func (b *BaseMut) Base() Base { return b.base }

// Call invokes an engine method on the object.
func (b *BaseMut) Call(method string, args ...any) (any, error) {
	return b.base.Call(method, args...)
}

// Restore makes the suspended borrow usable again. It panics if borrows
// taken during the suspension are still alive.
func (b *BaseMut) Restore() {
	if err := b.restore(); err != nil {
		panic(err)
	}
}

func (g Gd[T]) instance() (*storage.Instance[T], error) {
	d := descriptorOf[T]()
	if d.Domain != class.DomainHost {
		return nil, errors.Unsupported(errors.PhaseBorrow, "engine class "+d.Name+" has no host payload")
	}
	if g.raw.IsNull() {
		return nil, errors.NilPointer(errors.PhaseBorrow, d.Name)
	}
	return storage.Get[T](g.raw)
}

// TryBind takes a shared borrow of the host payload.
func (g Gd[T]) TryBind() (*GdRef[T], error) {
	inst, err := g.instance()
	if err != nil {
		return nil, err
	}
	r, err := inst.Bind()
	if err != nil {
		return nil, err
	}
	return &GdRef[T]{ref: r}, nil
}

// TryBindMut takes an exclusive borrow of the host payload.
func (g Gd[T]) TryBindMut() (*GdMut[T], error) {
	inst, err := g.instance()
	if err != nil {
		return nil, err
	}
	m, err := inst.BindMut()
	if err != nil {
		return nil, err
	}
	return &GdMut[T]{mut: m, base: inst.Base()}, nil
}

// Bind is TryBind that panics on failure.
func (g Gd[T]) Bind() *GdRef[T] {
	r, err := g.TryBind()
	if err != nil {
		panic(err)
	}
	return r
}

// BindMut is TryBindMut that panics on failure.
func (g Gd[T]) BindMut() *GdMut[T] {
	m, err := g.TryBindMut()
	if err != nil {
		panic(err)
	}
	return m
}
