// Package storage binds host payloads to engine objects.
//
// Every object of a host-declared class carries one Instance as its engine
// instance binding. The Instance owns the payload inside a cell.Cell, so all
// access to it goes through the borrow state machine:
//
//	inst, err := storage.Get[Player](obj)
//	ref, err := inst.Bind()       // shared
//	defer ref.Release()
//
// The engine reaches the payload through two callbacks. Notify delivers a
// notification to payloads implementing Notifier, holding a mutable borrow
// for the duration of the call. Free runs right before the object is
// destroyed and refuses while any borrow is alive.
package storage
