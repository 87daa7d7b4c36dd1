// Package class holds the static metadata of engine and host classes.
//
// Every class is described by a Descriptor: its name, its base class, its
// memory category and the domain that declared it. Handles dispatch their
// share/drop/free behavior on the memory category:
//
//	MemoryRefCounted  - engine reference count; last drop destroys
//	MemoryManual      - lives until freed explicitly
//	MemoryDynamic     - root Object only; decided per instance at runtime
//
// # Registry
//
// A Registry answers hierarchy questions (Inherits, Chain, Children) and
// interns class names into stable ClassIDs. The process-wide registry is
// returned by Default; tests reset it with ResetDefault.
//
//	reg := class.NewRegistry()
//	reg.Register(&class.Descriptor{Name: "Object"})
//	reg.Register(&class.Descriptor{Name: "RefCounted", Base: "Object", Memory: class.MemoryRefCounted})
//	reg.Register(&class.Descriptor{Name: "Player", Base: "RefCounted", Domain: class.DomainHost})
//	reg.IsRefCounted("Player") // true, category inherited at registration
//
// # API description
//
// LoadAPI reads the engine's JSON API description and RegisterAPI feeds its
// classes into a registry in base-before-derived order.
package class
