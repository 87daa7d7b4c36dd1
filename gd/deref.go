package gd

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
)

// Engine classes are declared as a struct whose only field is either a
// sys.ObjectPtr or the base class, so a handle's bits are a valid value of
// the class type. This file is the only place that relies on it.

var layoutChecked sync.Map // reflect.Type -> error

func checkLayout[T Class]() error {
	t := reflect.TypeFor[T]()
	if v, ok := layoutChecked.Load(t); ok {
		if v == nil {
			return nil
		}
		return v.(error)
	}

	var err error
	ptr := reflect.TypeFor[sys.ObjectPtr]()
	// Classes embed their base class, so unwrap down to the pointer.
	inner := t
	for inner.Kind() == reflect.Struct && inner.NumField() == 1 {
		inner = inner.Field(0).Type
	}
	switch {
	case inner != ptr:
		err = errors.Unsupported(errors.PhaseCast, t.String()+" does not wrap a single object pointer")
	case t.Size() != unsafe.Sizeof(sys.ObjectPtr(0)):
		err = errors.Unsupported(errors.PhaseCast, t.String()+" is not one word")
	}
	if err != nil {
		layoutChecked.Store(t, err)
		return err
	}
	layoutChecked.Store(t, nil)
	return nil
}

// Deref returns the engine class value for the object, through which its
// methods are called. Only engine-declared classes can be dereferenced.
// Liveness is not checked; calls on a destroyed object fail in the engine.
func (g Gd[T]) Deref() T {
	d := descriptorOf[T]()
	if d.Domain != class.DomainEngine {
		panic(errors.Unsupported(errors.PhaseCast, "host class "+d.Name+" cannot be dereferenced; use Bind"))
	}
	if err := checkLayout[T](); err != nil {
		panic(err)
	}
	return *(*T)(unsafe.Pointer(&g.raw))
}
