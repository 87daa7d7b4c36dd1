package main

import (
	"fmt"
	"io"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/classes"
	"github.com/wippyai/gdbind/engine"
	"github.com/wippyai/gdbind/gd"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

var counterDesc = &class.Descriptor{Name: "Counter", Base: "Node", Domain: class.DomainHost}

// Counter is the host class used by the demo.
type Counter struct {
	out   io.Writer
	Ticks int
}

func (Counter) ClassDescriptor() *class.Descriptor { return counterDesc }

func (c *Counter) OnNotification(what int32) {
	c.Ticks++
	if c.out != nil {
		fmt.Fprintf(c.out, "    Counter received notification %d\n", what)
	}
}

type eventPrinter struct {
	w io.Writer
}

func (p eventPrinter) OnObjectEvent(e engine.Event) {
	switch e.Type {
	case engine.EventReferenced, engine.EventUnreferenced:
		fmt.Fprintf(p.w, "  [%s] %s#%d refcount=%d\n", e.Type, e.Class, e.ID, e.RefCount)
	default:
		fmt.Fprintf(p.w, "  [%s] %s#%d\n", e.Type, e.Class, e.ID)
	}
}

func runDemo(w io.Writer) error {
	class.ResetDefault()
	reg := class.Default()
	if err := classes.Register(reg); err != nil {
		return err
	}
	eng := engine.NewWithConfig(reg, &engine.Config{FailOnLeak: true})
	sys.Init(eng)
	defer sys.Deinit()
	eng.Subscribe(eventPrinter{w: w})

	if err := gd.Register[Counter](); err != nil {
		return err
	}

	fmt.Fprintf(w, "Engine: %s\n", gd.Singleton[classes.Engine]().Deref().GetVersion())

	fmt.Fprintln(w, "\nReference-counted resource, shared three times:")
	res := gd.NewDefault[classes.Resource]()
	res.Deref().SetPath("res://demo.tres")
	shares := []gd.Gd[classes.Resource]{res, res.Share(), res.Share(), res.Share()}
	for _, h := range shares {
		h.Drop()
	}

	fmt.Fprintln(w, "\nFailed downcast keeps the reference:")
	obj := gd.Upcast[classes.Object](gd.NewDefault[classes.Resource]())
	if _, ok := gd.TryCast[classes.Node](obj); !ok {
		fmt.Fprintf(w, "  %s is not a Node\n", obj)
	}
	obj.Drop()

	fmt.Fprintln(w, "\nScene tree with a host node:")
	root := gd.NewDefault[classes.Node2D]()
	root.Deref().SetName("Root")
	root.Deref().SetPosition(variant.Vec2{X: 8, Y: 16})
	counter := gd.New(Counter{out: w})
	root.Deref().AddChild(gd.Upcast[classes.Node](counter))

	m := counter.BindMut()
	base := m.BaseMut()
	if _, err := base.Call("notification", int32(1000)); err != nil {
		return err
	}
	base.Restore()
	fmt.Fprintf(w, "  Counter ticks: %d\n", m.Get().Ticks)
	m.Release()

	for _, info := range eng.Objects() {
		fmt.Fprintf(w, "  live: %s\n", info)
	}
	root.Free()

	fmt.Fprintf(w, "\nLive objects before close: %d\n", eng.LiveObjects())
	return eng.Close()
}
