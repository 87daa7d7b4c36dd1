// Package variant implements the engine's generic value, the form every
// argument and property takes when it crosses the engine boundary.
//
// A Variant holding a reference-counted object owns one reference to it:
// Clone adds a reference and Destroy gives it back, destroying the object
// when it was the last one. Variants holding manually managed objects do
// not own them; reading one after the object was freed fails.
package variant

import (
	"fmt"
	"strconv"

	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
)

// Type is the variant's type tag.
type Type uint8

const (
	Nil Type = iota
	Bool
	Int
	Float
	String
	Vector2
	Object
)

var typeNames = [...]string{
	Nil:     "Nil",
	Bool:    "bool",
	Int:     "int",
	Float:   "float",
	String:  "String",
	Vector2: "Vector2",
	Object:  "Object",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Vec2 is a 2D vector value.
type Vec2 struct {
	X, Y float64
}

// Variant is a tagged engine value.
type Variant struct {
	s   string
	obj sys.ObjectPtr
	f   [2]float64
	i   int64
	typ Type
}

// NilVariant returns the nil variant.
func NilVariant() Variant { return Variant{} }

// FromBool wraps a bool.
func FromBool(b bool) Variant {
	v := Variant{typ: Bool}
	if b {
		v.i = 1
	}
	return v
}

// FromInt wraps an int.
func FromInt(i int64) Variant { return Variant{typ: Int, i: i} }

// FromFloat wraps a float.
func FromFloat(f float64) Variant { return Variant{typ: Float, f: [2]float64{f}} }

// FromString wraps a string.
func FromString(s string) Variant { return Variant{typ: String, s: s} }

// FromVector2 wraps a vector.
func FromVector2(x, y float64) Variant { return Variant{typ: Vector2, f: [2]float64{x, y}} }

// FromObject wraps an object pointer. For reference-counted objects the
// variant adopts one reference the caller already holds. A null pointer
// yields the nil variant.
func FromObject(obj sys.ObjectPtr) Variant {
	if obj.IsNull() {
		return Variant{}
	}
	return Variant{typ: Object, obj: obj}
}

// Type returns the type tag.
func (v Variant) Type() Type { return v.typ }

// IsNil reports whether v is the nil variant.
func (v Variant) IsNil() bool { return v.typ == Nil }

func (v Variant) mismatch(want Type) error {
	return errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		Detail("expected %s, variant holds %s", want, v.typ).
		Build()
}

// AsBool returns the bool payload.
func (v Variant) AsBool() (bool, error) {
	if v.typ != Bool {
		return false, v.mismatch(Bool)
	}
	return v.i != 0, nil
}

// AsInt returns the int payload.
func (v Variant) AsInt() (int64, error) {
	if v.typ != Int {
		return 0, v.mismatch(Int)
	}
	return v.i, nil
}

// AsFloat returns the float payload. Ints widen to float.
func (v Variant) AsFloat() (float64, error) {
	switch v.typ {
	case Float:
		return v.f[0], nil
	case Int:
		return float64(v.i), nil
	}
	return 0, v.mismatch(Float)
}

// AsString returns the string payload.
func (v Variant) AsString() (string, error) {
	if v.typ != String {
		return "", v.mismatch(String)
	}
	return v.s, nil
}

// AsVector2 returns the vector payload.
func (v Variant) AsVector2() (Vec2, error) {
	if v.typ != Vector2 {
		return Vec2{}, v.mismatch(Vector2)
	}
	return Vec2{X: v.f[0], Y: v.f[1]}, nil
}

// AsObject returns the object pointer without touching its reference
// count. It fails when the object has been freed.
func (v Variant) AsObject() (sys.ObjectPtr, error) {
	if v.typ != Object {
		return 0, v.mismatch(Object)
	}
	if !sys.Get().ObjectIsValid(v.obj) {
		return 0, errors.New(errors.PhaseConvert, errors.KindDeadObject).
			Detail("variant holds a previously freed object").
			Build()
	}
	return v.obj, nil
}

// Clone returns a copy of v. Object variants holding a reference-counted
// object take a new reference.
func (v Variant) Clone() Variant {
	if v.typ == Object {
		iface := sys.Get()
		if iface.ObjectIsValid(v.obj) && iface.ObjectIsRefCounted(v.obj) {
			iface.RefReference(v.obj)
		}
	}
	return v
}

// Destroy releases what v owns. For a reference-counted object this drops
// one reference and destroys the object when it was the last. If the object
// cannot be destroyed the reference is taken back, v still owns it, and the
// error is returned.
func (v Variant) Destroy() error {
	if v.typ != Object {
		return nil
	}
	iface := sys.Get()
	if !iface.ObjectIsValid(v.obj) || !iface.ObjectIsRefCounted(v.obj) {
		return nil
	}
	if iface.RefUnreference(v.obj) {
		if err := iface.ObjectDestroy(v.obj); err != nil {
			iface.RefReference(v.obj)
			return err
		}
	}
	return nil
}

// Equal compares two variants by type and payload. Objects compare by
// pointer.
func (v Variant) Equal(o Variant) bool {
	return v == o
}

func (v Variant) String() string {
	switch v.typ {
	case Nil:
		return "<null>"
	case Bool:
		return strconv.FormatBool(v.i != 0)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f[0], 'g', -1, 64)
	case String:
		return v.s
	case Vector2:
		return fmt.Sprintf("(%g, %g)", v.f[0], v.f[1])
	case Object:
		if !sys.IsInitialized() || !sys.Get().ObjectIsValid(v.obj) {
			return "<Freed Object>"
		}
		name, _ := sys.Get().ObjectGetClassName(v.obj)
		return fmt.Sprintf("<%s#%d>", name, sys.Get().ObjectGetInstanceID(v.obj))
	}
	return v.typ.String()
}
