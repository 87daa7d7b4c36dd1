package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseCast,
				Kind:       KindTypeMismatch,
				Class:      "Node2D",
				Dynamic:    "Resource",
				InstanceID: 7,
				Detail:     "cannot downcast",
			},
			contains: []string{"[cast]", "type_mismatch", "class Node2D", "dynamic class Resource", "#7", "cannot downcast"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBorrow,
				Kind:  KindPoisoned,
			},
			contains: []string{"[borrow]", "poisoned"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read api",
				Cause:  errors.New("unexpected EOF"),
			},
			contains: []string{"[load]", "invalid_data", "read api", "caused by", "unexpected EOF"},
		},
		{
			name: "dynamic only",
			err: &Error{
				Phase:   PhaseLifetime,
				Kind:    KindWrongCategory,
				Dynamic: "RefCounted",
			},
			contains: []string{"dynamic class RefCounted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseBorrow,
		Kind:  KindBorrowConflict,
		Class: "Player",
	}

	if !err.Is(&Error{Phase: PhaseBorrow, Kind: KindBorrowConflict}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCast, Kind: KindBorrowConflict}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseBorrow, Kind: KindPoisoned}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseBorrow, Kind: KindBorrowConflict}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCast, KindTypeMismatch).
		Class("Node").
		Dynamic("Resource").
		InstanceID(12).
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "Node", "Resource").
		Build()

	if err.Phase != PhaseCast {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCast)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if err.Class != "Node" || err.Dynamic != "Resource" {
		t.Errorf("Class=%v Dynamic=%v", err.Class, err.Dynamic)
	}
	if err.InstanceID != 12 {
		t.Errorf("InstanceID = %v, want 12", err.InstanceID)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected Node, got Resource" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("CastFailed", func(t *testing.T) {
		err := CastFailed("Node2D", "Resource")
		if err.Kind != KindTypeMismatch || err.Phase != PhaseCast {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		msg := err.Error()
		if !strings.Contains(msg, "Node2D") || !strings.Contains(msg, "Resource") {
			t.Errorf("message should name both classes: %s", msg)
		}
	})

	t.Run("DeadObject", func(t *testing.T) {
		err := DeadObject("Node", 99)
		if err.Kind != KindDeadObject {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDeadObject)
		}
		if err.InstanceID != 99 {
			t.Errorf("InstanceID = %v, want 99", err.InstanceID)
		}
	})

	t.Run("AlreadyFreed", func(t *testing.T) {
		err := AlreadyFreed("Node")
		if err.Kind != KindAlreadyFreed || err.Class != "Node" {
			t.Errorf("Kind=%v Class=%v", err.Kind, err.Class)
		}
	})

	t.Run("WrongCategory", func(t *testing.T) {
		err := WrongCategory("Object", "free() on a reference-counted object")
		if err.Kind != KindWrongCategory {
			t.Errorf("Kind = %v, want %v", err.Kind, KindWrongCategory)
		}
	})

	t.Run("BorrowConflict", func(t *testing.T) {
		err := BorrowConflict("already mutably borrowed")
		if err.Phase != PhaseBorrow || err.Kind != KindBorrowConflict {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("Poisoned", func(t *testing.T) {
		err := Poisoned("broken")
		if err.Kind != KindPoisoned {
			t.Errorf("Kind = %v, want %v", err.Kind, KindPoisoned)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseBorrow, "shared count")
		if err.Kind != KindOverflow || !strings.Contains(err.Detail, "shared count") {
			t.Errorf("Kind=%v Detail=%v", err.Kind, err.Detail)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate("class", "Node")
		if err.Phase != PhaseRegistry || err.Kind != KindDuplicate {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("Registration", func(t *testing.T) {
		cause := errors.New("no base")
		err := Registration("Player", cause)
		if !errors.Is(err, cause) {
			t.Error("Registration should wrap cause")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseRegistry, "class", "Missing")
		if !strings.Contains(err.Detail, `"Missing"`) {
			t.Errorf("Detail = %v", err.Detail)
		}
	})
}
