package borrow

import (
	"errors"
	"math/rand/v2"
	"testing"

	gderrors "github.com/wippyai/gdbind/errors"
)

func mustOK(t *testing.T, name string, got uint, err error, want uint) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	if got != want {
		t.Fatalf("%s = %d, want %d", name, got, want)
	}
}

func TestState_ReentrantScenario(t *testing.T) {
	var s State

	n, err := s.IncrementMut()
	mustOK(t, "IncrementMut", n, err, 1)

	n, err = s.SetInaccessible()
	mustOK(t, "SetInaccessible", n, err, 1)

	n, err = s.IncrementShared()
	mustOK(t, "IncrementShared", n, err, 1)

	if _, err := s.UnsetInaccessible(); err == nil {
		t.Fatal("UnsetInaccessible should fail while a shared borrow exists")
	}

	n, err = s.DecrementShared()
	mustOK(t, "DecrementShared", n, err, 0)

	n, err = s.UnsetInaccessible()
	mustOK(t, "UnsetInaccessible", n, err, 0)

	n, err = s.DecrementMut()
	mustOK(t, "DecrementMut", n, err, 0)

	if s.IsPoisoned() {
		t.Fatal("state should not be poisoned")
	}
}

func TestState_NestedReentrantMut(t *testing.T) {
	var s State

	s.IncrementMut()
	s.SetInaccessible()

	n, err := s.IncrementMut()
	mustOK(t, "inner IncrementMut", n, err, 2)

	if _, err := s.UnsetInaccessible(); err == nil {
		t.Fatal("UnsetInaccessible should fail while the inner borrow is accessible")
	}
	if _, err := s.IncrementShared(); err == nil {
		t.Fatal("IncrementShared should fail while the inner borrow is accessible")
	}

	n, err = s.DecrementMut()
	mustOK(t, "inner DecrementMut", n, err, 1)

	n, err = s.UnsetInaccessible()
	mustOK(t, "UnsetInaccessible", n, err, 0)

	n, err = s.DecrementMut()
	mustOK(t, "outer DecrementMut", n, err, 0)
}

func TestState_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*State)
		op    func(*State) (uint, error)
	}{
		{"shared while mut", func(s *State) { s.IncrementMut() }, (*State).IncrementShared},
		{"mut while mut", func(s *State) { s.IncrementMut() }, (*State).IncrementMut},
		{"mut while shared", func(s *State) { s.IncrementShared() }, (*State).IncrementMut},
		{"suspend without mut", func(s *State) {}, (*State).SetInaccessible},
		{"suspend twice", func(s *State) { s.IncrementMut(); s.SetInaccessible() }, (*State).SetInaccessible},
		{"release suspended mut", func(s *State) { s.IncrementMut(); s.SetInaccessible() }, (*State).DecrementMut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			tt.setup(&s)
			before := s

			_, err := tt.op(&s)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, &gderrors.Error{Phase: gderrors.PhaseBorrow, Kind: gderrors.KindBorrowConflict}) {
				t.Fatalf("expected borrow conflict, got %v", err)
			}
			if s != before {
				t.Fatalf("state changed on failure: %s -> %s", before.String(), s.String())
			}
		})
	}
}

func TestState_NoOpsFailCleanly(t *testing.T) {
	ops := map[string]func(*State) (uint, error){
		"DecrementShared":   (*State).DecrementShared,
		"UnsetInaccessible": (*State).UnsetInaccessible,
		"DecrementMut":      (*State).DecrementMut,
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			var s State
			before := s
			if _, err := op(&s); err == nil {
				t.Fatalf("%s on empty state should fail", name)
			}
			if s != before {
				t.Fatalf("%s changed state: %s", name, s.String())
			}
			if s.IsPoisoned() {
				t.Fatalf("%s poisoned the state", name)
			}
		})
	}
}

func TestState_PoisonOnSharedReleaseWithAccessibleMut(t *testing.T) {
	// Unreachable through the public operations; forge the counters.
	s := State{shared: 1, mut: 1}

	_, err := s.DecrementShared()
	if !errors.Is(err, &gderrors.Error{Phase: gderrors.PhaseBorrow, Kind: gderrors.KindPoisoned}) {
		t.Fatalf("expected poisoned error, got %v", err)
	}
	if !s.IsPoisoned() {
		t.Fatal("state should be poisoned")
	}

	for name, op := range map[string]func(*State) (uint, error){
		"IncrementShared":   (*State).IncrementShared,
		"DecrementShared":   (*State).DecrementShared,
		"IncrementMut":      (*State).IncrementMut,
		"DecrementMut":      (*State).DecrementMut,
		"SetInaccessible":   (*State).SetInaccessible,
		"UnsetInaccessible": (*State).UnsetInaccessible,
	} {
		if _, err := op(&s); err == nil {
			t.Errorf("%s should fail on a poisoned state", name)
		}
	}
}

func TestState_PoisonOnBrokenMutInvariant(t *testing.T) {
	tests := []State{
		{mut: 2},
		{mut: 1, inaccessible: 2},
	}
	for _, s := range tests {
		if _, err := s.IncrementShared(); err == nil {
			t.Fatalf("expected failure for %s", s.String())
		}
		if !s.IsPoisoned() {
			t.Fatalf("expected poisoned state for %s", s.String())
		}
	}
}

func TestState_MayUnsetInaccessible(t *testing.T) {
	var s State
	if s.MayUnsetInaccessible() {
		t.Fatal("nothing to resume")
	}
	s.IncrementMut()
	s.SetInaccessible()
	if !s.MayUnsetInaccessible() {
		t.Fatal("suspended borrow should be resumable")
	}
	s.IncrementShared()
	if s.MayUnsetInaccessible() {
		t.Fatal("not resumable while shared borrow is live")
	}
}

type opKind int

const (
	opIncShared opKind = iota
	opDecShared
	opIncMut
	opDecMut
	opSetInacc
	opUnsetInacc
	opCount
)

func apply(s *State, op opKind) error {
	var err error
	switch op {
	case opIncShared:
		_, err = s.IncrementShared()
	case opDecShared:
		_, err = s.DecrementShared()
	case opIncMut:
		_, err = s.IncrementMut()
	case opDecMut:
		_, err = s.DecrementMut()
	case opSetInacc:
		_, err = s.SetInaccessible()
	case opUnsetInacc:
		_, err = s.UnsetInaccessible()
	}
	return err
}

func TestState_RandomSequencesKeepMutualExclusion(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for seq := 0; seq < 500; seq++ {
		var s State
		for step := 0; step < 200; step++ {
			before := s
			err := apply(&s, opKind(rng.IntN(int(opCount))))
			if err != nil && s != before {
				t.Fatalf("seq %d step %d: failed op changed state %s -> %s", seq, step, before.String(), s.String())
			}
			if s.SharedCount() > 0 && s.HasAccessible() {
				t.Fatalf("seq %d step %d: shared and accessible mutable borrow coexist: %s", seq, step, s.String())
			}
			if s.MutCount() < s.InaccessibleCount() || s.MutCount()-s.InaccessibleCount() > 1 {
				t.Fatalf("seq %d step %d: invariant broken: %s", seq, step, s.String())
			}
			if s.IsPoisoned() {
				t.Fatalf("seq %d step %d: public operations poisoned the state", seq, step)
			}
		}
	}
}

// wellNested drives the state with randomly nested but properly matched
// borrow pairs, only taking borrows whose preconditions hold.
func wellNested(t *testing.T, s *State, rng *rand.Rand, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}
	for i := rng.IntN(3); i >= 0; i-- {
		switch {
		case s.HasAccessible() && rng.IntN(2) == 0:
			if _, err := s.SetInaccessible(); err != nil {
				t.Fatalf("SetInaccessible: %v", err)
			}
			wellNested(t, s, rng, depth-1)
			if _, err := s.UnsetInaccessible(); err != nil {
				t.Fatalf("UnsetInaccessible: %v (%s)", err, s.String())
			}
		case !s.HasAccessible() && s.SharedCount() == 0 && rng.IntN(2) == 0:
			if _, err := s.IncrementMut(); err != nil {
				t.Fatalf("IncrementMut: %v", err)
			}
			wellNested(t, s, rng, depth-1)
			if _, err := s.DecrementMut(); err != nil {
				t.Fatalf("DecrementMut: %v (%s)", err, s.String())
			}
		case !s.HasAccessible():
			if _, err := s.IncrementShared(); err != nil {
				t.Fatalf("IncrementShared: %v", err)
			}
			wellNested(t, s, rng, depth-1)
			if _, err := s.DecrementShared(); err != nil {
				t.Fatalf("DecrementShared: %v (%s)", err, s.String())
			}
		}
		if s.IsPoisoned() {
			t.Fatalf("well-nested sequence poisoned the state: %s", s.String())
		}
	}
}

func TestState_WellNestedNeverPoisons(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		var s State
		wellNested(t, &s, rng, 6)
		if s != (State{}) {
			t.Fatalf("state not restored after matched sequence: %s", s.String())
		}
	}
}
