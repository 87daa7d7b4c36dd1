package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCast     Phase = "cast"     // upcast/downcast between classes
	PhaseLifetime Phase = "lifetime" // construct, share, drop, free
	PhaseBorrow   Phase = "borrow"   // payload borrow tracking
	PhaseRegistry Phase = "registry" // class registration and lookup
	PhaseConvert  Phase = "convert"  // variant conversions
	PhaseCall     Phase = "call"     // method calls into the engine
	PhaseLoad     Phase = "load"     // API description loading
	PhaseParse    Phase = "parse"    // API description parsing
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindDeadObject     Kind = "dead_object"
	KindAlreadyFreed   Kind = "already_freed"
	KindWrongCategory  Kind = "wrong_category"
	KindBorrowConflict Kind = "borrow_conflict"
	KindPoisoned       Kind = "poisoned"
	KindOverflow       Kind = "overflow"
	KindBound          Kind = "bound"
	KindNilPointer     Kind = "nil_pointer"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindDuplicate      Kind = "duplicate"
)

// Error is the structured error type used throughout the binding.
// Class is the static class involved; Dynamic is the runtime class of the
// object when it differs (casts).
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	Class      string
	Dynamic    string
	Detail     string
	InstanceID uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" || e.Dynamic != "" {
		b.WriteString(": ")
		if e.Class != "" && e.Dynamic != "" {
			b.WriteString("class ")
			b.WriteString(e.Class)
			b.WriteString(", dynamic class ")
			b.WriteString(e.Dynamic)
		} else if e.Class != "" {
			b.WriteString("class ")
			b.WriteString(e.Class)
		} else {
			b.WriteString("dynamic class ")
			b.WriteString(e.Dynamic)
		}
	}

	if e.InstanceID != 0 {
		fmt.Fprintf(&b, " (instance #%d)", e.InstanceID)
	}

	if e.Detail != "" {
		if e.Class != "" || e.Dynamic != "" || e.InstanceID != 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Class sets the static class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Dynamic sets the dynamic (runtime) class name
func (b *Builder) Dynamic(name string) *Builder {
	b.err.Dynamic = name
	return b
}

// InstanceID sets the engine instance id of the object involved
func (b *Builder) InstanceID(id uint64) *Builder {
	b.err.InstanceID = id
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error naming both classes
func TypeMismatch(phase Phase, static, dynamic string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Class:   static,
		Dynamic: dynamic,
	}
}

// CastFailed creates a downcast failure error
func CastFailed(target, dynamic string) *Error {
	return &Error{
		Phase:   PhaseCast,
		Kind:    KindTypeMismatch,
		Class:   target,
		Dynamic: dynamic,
		Detail:  fmt.Sprintf("object of class %s cannot be cast to %s", dynamic, target),
	}
}

// DeadObject creates an error for access to a destroyed object
func DeadObject(class string, id uint64) *Error {
	return &Error{
		Phase:      PhaseLifetime,
		Kind:       KindDeadObject,
		Class:      class,
		InstanceID: id,
		Detail:     "object is dead or was never valid",
	}
}

// AlreadyFreed creates an error for a second free of a manually managed object
func AlreadyFreed(class string) *Error {
	return &Error{
		Phase:  PhaseLifetime,
		Kind:   KindAlreadyFreed,
		Class:  class,
		Detail: "object was already freed",
	}
}

// WrongCategory creates an error for an operation that does not apply to the
// object's memory category
func WrongCategory(class, detail string) *Error {
	return &Error{
		Phase:  PhaseLifetime,
		Kind:   KindWrongCategory,
		Class:  class,
		Detail: detail,
	}
}

// BorrowConflict creates a borrow conflict error
func BorrowConflict(detail string) *Error {
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindBorrowConflict,
		Detail: detail,
	}
}

// Poisoned creates an error for a poisoned borrow state
func Poisoned(detail string) *Error {
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindPoisoned,
		Detail: detail,
	}
}

// Overflow creates a counter overflow error
func Overflow(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%s overflows", what),
	}
}

// Bound creates an error for destroying an object whose payload is borrowed
func Bound(class string) *Error {
	return &Error{
		Phase:  PhaseLifetime,
		Kind:   KindBound,
		Class:  class,
		Detail: "cannot destroy object while its payload is bound",
	}
}

// NilPointer creates a null object error
func NilPointer(phase Phase, class string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Class:  class,
		Detail: "null object",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a class registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistration,
		Class:  name,
		Detail: "register class",
		Cause:  cause,
	}
}

// Duplicate creates an error for a conflicting re-registration
func Duplicate(what, name string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// Load creates an API loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
