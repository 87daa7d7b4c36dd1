package borrow

import (
	"fmt"
	"math"

	"github.com/wippyai/gdbind/errors"
)

// State tracks the live borrows of one payload.
//
// The zero value is an unborrowed, unpoisoned state. State is not safe for
// concurrent use; it relies on the engine's single-thread rule like the rest
// of the binding.
type State struct {
	shared       uint
	mut          uint
	inaccessible uint
	poisoned     bool
}

// SharedCount returns the number of live shared borrows.
func (s *State) SharedCount() uint { return s.shared }

// MutCount returns the number of mutable borrows, including suspended ones.
func (s *State) MutCount() uint { return s.mut }

// InaccessibleCount returns the number of suspended mutable borrows.
func (s *State) InaccessibleCount() uint { return s.inaccessible }

// IsPoisoned reports whether an invariant violation was detected.
func (s *State) IsPoisoned() bool { return s.poisoned }

// HasShared reports whether a shared borrow is live.
func (s *State) HasShared() bool { return s.shared > 0 }

// HasAccessible reports whether the innermost mutable borrow is accessible.
func (s *State) HasAccessible() bool {
	return s.inaccessible < s.mut && s.mut-s.inaccessible == 1
}

// MayUnsetInaccessible reports whether UnsetInaccessible would succeed.
func (s *State) MayUnsetInaccessible() bool {
	return !s.poisoned && !s.HasAccessible() && s.shared == 0 && s.inaccessible > 0
}

// String renders the counters for diagnostics.
func (s *State) String() string {
	return fmt.Sprintf("shared=%d mut=%d inaccessible=%d poisoned=%t",
		s.shared, s.mut, s.inaccessible, s.poisoned)
}

// IncrementShared registers a new shared borrow.
func (s *State) IncrementShared() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.HasAccessible() {
		return 0, errors.BorrowConflict("cannot borrow while an accessible mutable borrow exists")
	}
	if s.shared == math.MaxUint {
		return 0, errors.Overflow(errors.PhaseBorrow, "shared borrow count")
	}
	s.shared++
	return s.shared, nil
}

// DecrementShared releases a shared borrow.
func (s *State) DecrementShared() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.shared == 0 {
		return 0, errors.BorrowConflict("cannot release a shared borrow when none exists")
	}
	if s.HasAccessible() {
		return 0, s.poison("shared borrow tracked while an accessible mutable borrow exists")
	}
	s.shared--
	return s.shared, nil
}

// IncrementMut registers a new mutable borrow.
func (s *State) IncrementMut() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.HasAccessible() {
		return 0, errors.BorrowConflict("cannot borrow mutably while an accessible mutable borrow exists")
	}
	if s.shared != 0 {
		return 0, errors.BorrowConflict("cannot borrow mutably while a shared borrow exists")
	}
	if s.mut == math.MaxUint {
		return 0, errors.Overflow(errors.PhaseBorrow, "mutable borrow count")
	}
	s.mut++
	return s.mut, nil
}

// DecrementMut releases the accessible mutable borrow.
func (s *State) DecrementMut() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.mut == 0 {
		return 0, errors.BorrowConflict("cannot release a mutable borrow when none exists")
	}
	if !s.HasAccessible() {
		return 0, errors.BorrowConflict("cannot release a mutable borrow while it is inaccessible")
	}
	s.mut--
	if s.mut != s.inaccessible {
		return 0, s.poison("mutable borrow count diverged from inaccessible count")
	}
	return s.mut, nil
}

// SetInaccessible suspends the accessible mutable borrow so that a
// re-entrant call may take new borrows.
func (s *State) SetInaccessible() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if !s.HasAccessible() {
		return 0, errors.BorrowConflict("cannot suspend a borrow when no accessible mutable borrow exists")
	}
	s.inaccessible++
	return s.inaccessible, nil
}

// UnsetInaccessible resumes the innermost suspended mutable borrow.
func (s *State) UnsetInaccessible() (uint, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if s.HasAccessible() {
		return 0, errors.BorrowConflict("cannot resume a borrow while an accessible mutable borrow exists")
	}
	if s.shared != 0 {
		return 0, errors.BorrowConflict("cannot resume a borrow while a shared borrow exists")
	}
	if s.inaccessible == 0 {
		return 0, errors.BorrowConflict("cannot resume a borrow when none is suspended")
	}
	s.inaccessible--
	return s.inaccessible, nil
}

// check fails on a poisoned state and poisons on a broken counter invariant.
func (s *State) check() error {
	if s.poisoned {
		return errors.Poisoned("borrow state is poisoned")
	}
	if s.inaccessible > s.mut || s.mut-s.inaccessible > 1 {
		return s.poison(fmt.Sprintf("more than one accessible mutable borrow (mut=%d, inaccessible=%d)",
			s.mut, s.inaccessible))
	}
	return nil
}

func (s *State) poison(detail string) error {
	s.poisoned = true
	return errors.Poisoned(detail)
}
