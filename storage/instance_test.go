package storage_test

import (
	"errors"
	"testing"

	"github.com/wippyai/gdbind/class"
	gderrors "github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/engine"
	"github.com/wippyai/gdbind/storage"
	"github.com/wippyai/gdbind/sys"
)

type counter struct {
	notes   []int32
	dropped bool
}

func (c *counter) OnNotification(what int32) { c.notes = append(c.notes, what) }
func (c *counter) Drop()                     { c.dropped = true }

type plain struct{ n int }

func setup(t *testing.T) *engine.Engine {
	t.Helper()
	reg := class.NewRegistry()
	for _, d := range []*class.Descriptor{
		{Name: class.RootObject, Instantiable: true},
		{Name: "Node", Base: class.RootObject, Instantiable: true},
		{Name: "Counter", Base: "Node", Domain: class.DomainHost},
	} {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register(%s): %v", d.Name, err)
		}
	}
	e := engine.New(reg)
	sys.Init(e)
	t.Cleanup(func() {
		e.Close()
		sys.Deinit()
	})
	return e
}

func bindNew[T any](t *testing.T, e *engine.Engine, value T) (sys.ObjectPtr, *storage.Instance[T]) {
	t.Helper()
	obj := e.ClassdbConstructObject("Node")
	inst := storage.New(obj, "Counter", value)
	if err := e.ObjectSetInstance(obj, "Counter", inst); err != nil {
		t.Fatalf("ObjectSetInstance: %v", err)
	}
	return obj, inst
}

func kindOf(err error) gderrors.Kind {
	var gerr *gderrors.Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

func TestGet(t *testing.T) {
	e := setup(t)
	obj, inst := bindNew(t, e, counter{})

	got, err := storage.Get[counter](obj)
	if err != nil || got != inst {
		t.Fatalf("Get = %p, %v", got, err)
	}
	if got.ClassName() != "Counter" || got.Base().Ptr() != obj {
		t.Fatal("identity mismatch")
	}

	if _, err := storage.Get[plain](obj); kindOf(err) != gderrors.KindTypeMismatch {
		t.Fatalf("wrong payload type: %v", err)
	}

	bare := e.ClassdbConstructObject("Node")
	if _, err := storage.Get[counter](bare); kindOf(err) != gderrors.KindNotFound {
		t.Fatalf("object without instance: %v", err)
	}
	e.ObjectDestroy(bare)
	if _, err := storage.Get[counter](bare); kindOf(err) != gderrors.KindDeadObject {
		t.Fatalf("dead object: %v", err)
	}
}

func TestBind(t *testing.T) {
	e := setup(t)
	_, inst := bindNew(t, e, plain{n: 1})

	r1, err := inst.Bind()
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	r2, err := inst.Bind()
	if err != nil {
		t.Fatalf("second Bind: %v", err)
	}
	if !inst.IsBound() {
		t.Fatal("IsBound should be true")
	}

	_, err = inst.BindMut()
	var gerr *gderrors.Error
	if !errors.As(err, &gerr) || gerr.Kind != gderrors.KindBorrowConflict || gerr.Class != "Counter" {
		t.Fatalf("BindMut while shared: %v", err)
	}

	r1.Release()
	r2.Release()
	m, err := inst.BindMut()
	if err != nil {
		t.Fatalf("BindMut: %v", err)
	}
	m.Get().n = 5
	m.Release()

	r, _ := inst.Bind()
	if r.Get().n != 5 {
		t.Fatalf("n = %d", r.Get().n)
	}
	r.Release()
}

func TestNotify(t *testing.T) {
	e := setup(t)
	obj, inst := bindNew(t, e, counter{})

	// Counter has no extension registration, so the engine ignores it.
	if err := e.ObjectNotification(obj, 9); err != nil {
		t.Fatalf("ObjectNotification: %v", err)
	}

	if err := inst.Notify(10); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	m, _ := inst.BindMut()
	if err := inst.Notify(11); kindOf(err) != gderrors.KindBorrowConflict {
		t.Fatalf("Notify while bound: %v", err)
	}

	susp, err := m.Suspend()
	if err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := inst.Notify(12); err != nil {
		t.Fatalf("Notify while suspended: %v", err)
	}
	if err := susp.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := m.Get().notes; len(got) != 2 || got[0] != 10 || got[1] != 12 {
		t.Fatalf("notes = %v", got)
	}
	m.Release()

	_, pinst := bindNew(t, e, plain{})
	if err := pinst.Notify(1); err != nil {
		t.Fatalf("payload without Notifier: %v", err)
	}
}

func TestFree(t *testing.T) {
	e := setup(t)
	_, inst := bindNew(t, e, counter{})

	r, _ := inst.Bind()
	if err := inst.Free(); kindOf(err) != gderrors.KindBound {
		t.Fatalf("Free while bound: %v", err)
	}
	r.Release()

	if err := inst.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	v, err := inst.BindMut()
	if kindOf(err) != gderrors.KindAlreadyFreed {
		t.Fatalf("BindMut after Free: %v, %v", v, err)
	}
	if err := inst.Free(); kindOf(err) != gderrors.KindAlreadyFreed {
		t.Fatalf("second Free: %v", err)
	}
}

func TestFreeRunsDrop(t *testing.T) {
	e := setup(t)
	_, inst := bindNew(t, e, counter{})
	m, _ := inst.BindMut()
	p := m.Get()
	m.Release()

	if err := inst.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if !p.dropped {
		t.Fatal("Drop not called")
	}
}

func TestBase(t *testing.T) {
	e := setup(t)
	obj, inst := bindNew(t, e, plain{})
	b := inst.Base()

	if !b.IsValid() || b.InstanceID() != e.ObjectGetInstanceID(obj) || b.ClassName() != "Counter" {
		t.Fatal("base identity mismatch")
	}
	if _, err := b.Call("set_name", "hero"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if name, _ := b.Call("get_name"); name != "hero" {
		t.Fatalf("get_name = %v", name)
	}

	inst.Free()
	e.ObjectDestroy(obj)
	if b.IsValid() || b.String() != "<Freed Object>" {
		t.Fatal("base should report freed")
	}
}
