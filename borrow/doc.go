// Package borrow implements the borrow-state machine that guards a host
// payload embedded in an engine object.
//
// A State counts shared borrows, mutable borrows and "inaccessible" mutable
// borrows. An inaccessible borrow is a mutable borrow that is still alive on
// the call stack but has been suspended so the engine can re-enter the same
// object (for example a notification dispatched while a method holds the
// payload mutably):
//
//	var s borrow.State
//	s.IncrementMut()      // method takes &mut payload
//	s.SetInaccessible()   // method calls into the engine
//	s.IncrementMut()      // engine re-enters, new borrow allowed
//	s.DecrementMut()
//	s.UnsetInaccessible() // back in the method
//	s.DecrementMut()
//
// Every transition either succeeds and updates the counters or fails and
// leaves them untouched. When a transition observes counters that no legal
// sequence can produce, the state is poisoned and every later operation
// fails. State performs no I/O and never panics; the cell package decides
// how failures surface.
package borrow
