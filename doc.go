// Package gdbind provides typed Go handles to objects owned by a game engine.
//
// Engine objects live in the engine's object table and are addressed by an
// opaque pointer. A Gd[T] handle wraps that pointer with the static class T
// and applies the memory rules of T's class: reference-counted classes are
// shared and dropped, manually managed classes are freed exactly once, and
// Object-typed handles decide at runtime.
//
// # Architecture Overview
//
//	gdbind/
//	├── errors/      Structured error types with phase and kind
//	├── borrow/      Shared/exclusive borrow accounting with poisoning
//	├── cell/        Guarded storage for host payloads built on borrow
//	├── class/       Class descriptors, registry and extension API loader
//	├── sys/         Engine interface and opaque pointer types
//	├── variant/     Dynamically typed engine values
//	├── engine/      In-process engine: object table, refcounts, methods
//	├── storage/     Per-instance payload storage for host classes
//	├── gd/          The Gd[T] handle, casts, construction and binding
//	├── classes/     Engine class bindings (Object, Node, Resource, ...)
//	└── cmd/gdinspect  CLI and TUI for browsing classes and running a demo
//
// # Quick Start
//
// Start an engine and register a host class:
//
//	class.ResetDefault()
//	classes.Register(class.Default())
//	eng := engine.New(class.Default())
//	sys.Init(eng)
//	defer sys.Deinit()
//
//	if err := gd.Register[Player](); err != nil {
//	    log.Fatal(err)
//	}
//
// Create, bind and free an instance:
//
//	p := gd.New(Player{HP: 100})
//	m := p.BindMut()
//	m.Get().HP -= 10
//	m.Release()
//	p.Free()
//
// Reference-counted objects are shared and dropped:
//
//	res := gd.NewDefault[classes.Resource]()
//	other := res.Share()
//	other.Drop()
//	res.Drop() // destroys the resource
package gdbind
