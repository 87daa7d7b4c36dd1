// Package errors provides structured error types for the gdbind library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: static and dynamic class names, the
// engine instance id, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCast, errors.KindTypeMismatch).
//		Class("Node2D").
//		Dynamic("Resource").
//		Detail("cannot downcast").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CastFailed("Node2D", "Resource")
//	err := errors.DeadObject("Node", 42)
//
// Operations that report misuse of a handle (freeing twice, casting to an
// unrelated class through the unchecked path) panic with an *Error value, so
// the message of a crash always names the classes involved.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
