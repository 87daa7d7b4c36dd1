package variant_test

import (
	"errors"
	"testing"

	"github.com/wippyai/gdbind/class"
	gderrors "github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/engine"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	reg := class.NewRegistry()
	for _, d := range []*class.Descriptor{
		{Name: class.RootObject, Instantiable: true},
		{Name: class.RootRefCounted, Base: class.RootObject, Instantiable: true},
		{Name: "Node", Base: class.RootObject, Instantiable: true},
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

func TestScalars(t *testing.T) {
	tests := []struct {
		name string
		v    variant.Variant
		typ  variant.Type
		str  string
	}{
		{"nil", variant.NilVariant(), variant.Nil, "<null>"},
		{"bool", variant.FromBool(true), variant.Bool, "true"},
		{"int", variant.FromInt(-7), variant.Int, "-7"},
		{"float", variant.FromFloat(1.5), variant.Float, "1.5"},
		{"string", variant.FromString("hi"), variant.String, "hi"},
		{"vector2", variant.FromVector2(1, 2), variant.Vector2, "(1, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Type() != tt.typ {
				t.Fatalf("Type = %s, want %s", tt.v.Type(), tt.typ)
			}
			if tt.v.String() != tt.str {
				t.Fatalf("String = %q, want %q", tt.v.String(), tt.str)
			}
			if !tt.v.Equal(tt.v.Clone()) {
				t.Fatal("clone should compare equal")
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	if b, err := variant.FromBool(true).AsBool(); err != nil || !b {
		t.Fatalf("AsBool = %v, %v", b, err)
	}
	if f, err := variant.FromInt(3).AsFloat(); err != nil || f != 3 {
		t.Fatalf("int should widen to float: %v, %v", f, err)
	}
	if v, err := variant.FromVector2(3, 4).AsVector2(); err != nil || v != (variant.Vec2{X: 3, Y: 4}) {
		t.Fatalf("AsVector2 = %v, %v", v, err)
	}

	_, err := variant.FromString("x").AsInt()
	var gerr *gderrors.Error
	if !errors.As(err, &gerr) || gerr.Kind != gderrors.KindTypeMismatch || gerr.Phase != gderrors.PhaseConvert {
		t.Fatalf("expected convert type mismatch, got %v", err)
	}
	if _, err := variant.FromFloat(1).AsInt(); err == nil {
		t.Fatal("float does not narrow to int")
	}
}

func TestObjectVariant_RefCounted(t *testing.T) {
	e := newEngine(t)
	obj := e.ClassdbConstructObject(class.RootRefCounted)
	e.RefInitRef(obj)

	v := variant.FromObject(obj)
	if v.Type() != variant.Object {
		t.Fatalf("Type = %s", v.Type())
	}
	c := v.Clone()
	if got := e.RefGetReferenceCount(obj); got != 2 {
		t.Fatalf("count after clone = %d, want 2", got)
	}

	v.Destroy()
	if !e.ObjectIsValid(obj) {
		t.Fatal("clone should keep the object alive")
	}
	if p, err := c.AsObject(); err != nil || p != obj {
		t.Fatalf("AsObject = %v, %v", p, err)
	}

	c.Destroy()
	if e.ObjectIsValid(obj) {
		t.Fatal("last variant should destroy the object")
	}
}

func TestObjectVariant_Manual(t *testing.T) {
	e := newEngine(t)
	obj := e.ClassdbConstructObject("Node")

	v := variant.FromObject(obj)
	v.Clone().Destroy()
	if !e.ObjectIsValid(obj) {
		t.Fatal("variants do not own manual objects")
	}

	e.ObjectDestroy(obj)
	_, err := v.AsObject()
	var gerr *gderrors.Error
	if !errors.As(err, &gerr) || gerr.Kind != gderrors.KindDeadObject {
		t.Fatalf("expected dead object error, got %v", err)
	}
	if v.String() != "<Freed Object>" {
		t.Fatalf("String = %q", v.String())
	}
}

func TestFromObjectNull(t *testing.T) {
	if v := variant.FromObject(0); !v.IsNil() {
		t.Fatal("null object should give the nil variant")
	}
}
