// Package engine provides an in-process implementation of the engine ABI.
//
// The binding layers above (handles, storage, variants) only ever talk to
// sys.Interface. This package answers those calls from a Go object table,
// which lets the whole binding run and be tested without a native engine.
//
// # Object Table
//
// Objects live in a slot slice with a free list. A pointer encodes the slot
// index and a generation counter:
//
//	bits 63..32   generation (bumped when the slot is freed)
//	bits 31..0    slot index + 1 (0 stays null)
//
// A pointer to a destroyed object therefore never validates again, even
// after its slot is reused. This needs a 64-bit uintptr; on 32-bit targets
// the generation bits are truncated. Instance ids are assigned from a counter and
// never reused.
//
// # Reference Counting
//
// Reference-counted objects are created floating with a count of 0.
// RefInitRef takes the first reference. RefUnreference reports when the
// count reaches zero; the caller then destroys the object:
//
//	obj := e.ClassdbConstructObject("Resource")
//	e.RefInitRef(obj)        // count 1
//	e.RefReference(obj)      // count 2
//	e.RefUnreference(obj)    // false, count 1
//	if e.RefUnreference(obj) {
//	    e.ObjectDestroy(obj)
//	}
//
// # Built-in Methods
//
// ObjectCall dispatches a small method table along the class chain:
//
//	Object      get_class, is_class, get_instance_id, get, set,
//	            get_property_list, notification
//	Node        set_name, get_name, add_child, remove_child,
//	            get_child_count, get_child, get_parent
//	Node2D      set_position, get_position
//	Resource    set_path, get_path
//	Engine      get_version, get_object_count
//
// Destroying a Node destroys its children. Properties set through "set"
// hold their own references to reference-counted values.
//
// # Observers
//
// Observers receive construct, destroy, reference and unreference events.
// Callbacks run without the engine lock held, so they may call back into
// the engine.
package engine
