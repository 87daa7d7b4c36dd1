package gd

import (
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

// ToVariant wraps the object in a variant. A reference-counted object gets
// a new reference owned by the variant; g keeps its own.
func (g Gd[T]) ToVariant() variant.Variant {
	if g.raw.IsNull() {
		return variant.NilVariant()
	}
	return variant.FromObject(g.Share().raw)
}

// FromVariant returns a handle to the object held by v, checking that it
// is a T. The variant keeps its own reference.
func FromVariant[T Class](v variant.Variant) (Gd[T], error) {
	if v.IsNil() {
		return Gd[T]{}, errors.NilPointer(errors.PhaseConvert, ClassName[T]())
	}
	obj, err := v.AsObject()
	if err != nil {
		return Gd[T]{}, err
	}
	if sys.Get().ObjectCastTo(obj, ClassName[T]()).IsNull() {
		dyn, _ := sys.Get().ObjectGetClassName(obj)
		return Gd[T]{}, errors.TypeMismatch(errors.PhaseConvert, ClassName[T](), dyn)
	}
	return fromBorrowed[T](obj), nil
}
