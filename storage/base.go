package storage

import (
	"fmt"

	"github.com/wippyai/gdbind/sys"
)

// Base is a non-owning reference to the engine side of a host object. It is
// handed to payload constructors so they can reach their own object. Holding
// a Base does not keep the object alive.
type Base struct {
	obj sys.ObjectPtr
}

// NewBase wraps obj.
func NewBase(obj sys.ObjectPtr) Base {
	return Base{obj: obj}
}

// Ptr returns the object pointer.
func (b Base) Ptr() sys.ObjectPtr { return b.obj }

// IsValid reports whether the object is still alive.
func (b Base) IsValid() bool {
	return !b.obj.IsNull() && sys.Get().ObjectIsValid(b.obj)
}

// InstanceID returns the object's id, or 0 if it is dead.
func (b Base) InstanceID() sys.InstanceID {
	return sys.Get().ObjectGetInstanceID(b.obj)
}

// ClassName returns the object's dynamic class.
func (b Base) ClassName() string {
	name, _ := sys.Get().ObjectGetClassName(b.obj)
	return name
}

// Call invokes an engine method on the object.
func (b Base) Call(method string, args ...any) (any, error) {
	return sys.Get().ObjectCall(b.obj, method, args...)
}

func (b Base) String() string {
	if !b.IsValid() {
		return "<Freed Object>"
	}
	return fmt.Sprintf("<%s#%d>", b.ClassName(), b.InstanceID())
}
