// Package gd provides Gd, the handle to an engine object.
//
// A Gd[T] is a single object pointer typed by a class. T is either an
// engine-declared class (a one-word wrapper generated from the engine API,
// see package classes) or a host-declared class (a Go struct that is also
// the payload stored inside the object, registered with Register).
//
// # Memory Categories
//
// The class descriptor decides what sharing and dropping a handle does:
//
//	Category     Share              Drop                         Free
//	RefCounted   +1 reference       -1, destroy at zero          panics
//	Manual       copy, no effect    no effect                    destroys
//	Dynamic      decided per object from its dynamic class
//
// Only Object is Dynamic: a Gd[Object] may point at a reference-counted or
// a manually managed object and checks which on every share and drop.
//
// Go has no destructors, so Drop must be called explicitly for every handle
// that owns a reference. Share on a manually managed class copies the
// pointer with no ownership tracking at all: two handles now refer to one
// object, and freeing through one makes the other fail its liveness check.
//
//	g := gd.NewDefault[classes.Resource]()   // refcount 1
//	h := g.Share()                           // refcount 2
//	h.Drop()
//	g.Drop()                                 // destroyed
//
// # Casts
//
// Upcast reinterprets a handle as a base class and never fails for a real
// ancestor; the bits are unchanged. TryCast and Cast check the dynamic class
// through the engine. A successful cast moves ownership to the result; a
// failed TryCast leaves the original handle owning its reference.
//
// # Binding
//
// Bind and BindMut return guards over a host payload. Borrows are tracked
// by the object's cell; conflicting borrows panic with the class name.
// GdMut.BaseMut suspends a mutable borrow so the engine can call back into
// the same object while it runs.
//
// Handles are confined to the engine thread, like the engine objects they
// point at.
package gd
