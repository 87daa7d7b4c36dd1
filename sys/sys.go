// Package sys declares the engine's C ABI surface as seen from Go and the
// process-wide slot holding the active implementation.
//
// Everything above this package (handles, storage, variants, generated
// classes) talks to the engine only through Get(). The in-process engine in
// package engine implements Interface; a cgo backend would implement the
// same methods over the native function table.
package sys

import (
	"fmt"
	"sync"

	"github.com/wippyai/gdbind/errors"
)

// ObjectPtr is the engine's native object pointer. 0 is null.
type ObjectPtr uintptr

// IsNull reports whether p is the null pointer.
func (p ObjectPtr) IsNull() bool { return p == 0 }

func (p ObjectPtr) String() string { return fmt.Sprintf("0x%x", uintptr(p)) }

// InstanceID is the engine's stable numeric identity of an object.
// Ids are never reused. 0 is invalid.
type InstanceID uint64

// ExtensionClassInfo describes a host-declared class to the engine.
type ExtensionClassInfo struct {
	Name   string
	Parent string

	// Create attaches a default instance to a freshly constructed object
	// and returns the instance binding.
	Create func(obj ObjectPtr) any
	// CanFree is asked before any destruction step. A non-nil error keeps
	// the object alive and untouched.
	CanFree func(binding any) error
	// Free is called with the binding right before the object is destroyed.
	Free func(obj ObjectPtr, binding any) error
	// Notify dispatches an engine notification to the binding.
	Notify func(binding any, what int32) error
}

// Interface is the subset of the engine ABI the binding uses.
type Interface interface {
	// ClassdbConstructObject creates an object of class. Reference-counted
	// objects start floating: their count is 0 until RefInitRef.
	ClassdbConstructObject(class string) ObjectPtr
	ClassdbRegisterExtensionClass(info ExtensionClassInfo) error

	ObjectDestroy(obj ObjectPtr) error
	ObjectIsValid(obj ObjectPtr) bool
	ObjectGetInstanceID(obj ObjectPtr) InstanceID
	ObjectGetInstanceFromID(id InstanceID) ObjectPtr
	ObjectGetClassName(obj ObjectPtr) (string, bool)
	// ObjectCastTo returns obj if its dynamic class inherits class, else null.
	ObjectCastTo(obj ObjectPtr, class string) ObjectPtr
	// ObjectSetInstance binds a host instance to obj and retags its class.
	ObjectSetInstance(obj ObjectPtr, class string, binding any) error
	ObjectGetInstance(obj ObjectPtr) (any, bool)
	ObjectNotification(obj ObjectPtr, what int32) error
	ObjectCall(obj ObjectPtr, method string, args ...any) (any, error)

	RefInitRef(obj ObjectPtr) bool
	RefReference(obj ObjectPtr) bool
	// RefUnreference reports true when the count reached zero; the caller
	// must then destroy the object.
	RefUnreference(obj ObjectPtr) bool
	RefGetReferenceCount(obj ObjectPtr) int32
	ObjectIsRefCounted(obj ObjectPtr) bool

	GlobalGetSingleton(name string) ObjectPtr
}

var (
	active   Interface
	activeMu sync.RWMutex
)

// Init installs the engine interface. Init panics if one is already
// installed; call Deinit first.
func Init(iface Interface) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if iface == nil {
		panic(errors.InvalidInput(errors.PhaseCall, "nil engine interface"))
	}
	if active != nil {
		panic(errors.InvalidInput(errors.PhaseCall, "engine interface already initialized"))
	}
	active = iface
}

// Deinit removes the installed interface.
func Deinit() {
	activeMu.Lock()
	defer activeMu.Unlock()
	active = nil
}

// IsInitialized reports whether an interface is installed.
func IsInitialized() bool {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return active != nil
}

// Get returns the installed interface and panics if there is none.
func Get() Interface {
	activeMu.RLock()
	iface := active
	activeMu.RUnlock()
	if iface == nil {
		panic(errors.NotInitialized(errors.PhaseCall, "engine interface"))
	}
	return iface
}
