// Package cell provides an interior-mutability cell whose borrows are
// tracked by a borrow.State instead of a single flag, so a mutable borrow
// can be suspended while the engine re-enters the same payload.
//
// Borrow operations return errors; guards that find the bookkeeping broken
// on release panic, since nothing sensible can continue from there.
package cell

import (
	"github.com/wippyai/gdbind/borrow"
	"github.com/wippyai/gdbind/errors"
)

// Cell owns a payload and the borrow state that guards it.
type Cell[T any] struct {
	value T
	state borrow.State
}

// New wraps value in a cell.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Borrow takes a shared borrow of the payload.
func (c *Cell[T]) Borrow() (*Ref[T], error) {
	if _, err := c.state.IncrementShared(); err != nil {
		return nil, err
	}
	return &Ref[T]{cell: c}, nil
}

// BorrowMut takes an exclusive borrow of the payload.
func (c *Cell[T]) BorrowMut() (*Mut[T], error) {
	if _, err := c.state.IncrementMut(); err != nil {
		return nil, err
	}
	return &Mut[T]{cell: c}, nil
}

// IsBorrowed reports whether any borrow, suspended or not, is alive.
func (c *Cell[T]) IsBorrowed() bool {
	return c.state.SharedCount() > 0 || c.state.MutCount() > 0
}

// State returns a copy of the borrow counters.
func (c *Cell[T]) State() borrow.State {
	return c.state
}

// IntoInner returns the payload. It fails while the cell is borrowed.
func (c *Cell[T]) IntoInner() (T, error) {
	if c.IsBorrowed() {
		var zero T
		return zero, errors.BorrowConflict("cannot take the payload out of a borrowed cell")
	}
	return c.value, nil
}

// Ref is a shared borrow of a cell's payload.
type Ref[T any] struct {
	cell     *Cell[T]
	released bool
}

// Get returns the payload. Callers must not mutate through it.
func (r *Ref[T]) Get() *T {
	if r.released {
		panic(errors.BorrowConflict("use of a released shared borrow"))
	}
	return &r.cell.value
}

// Release ends the borrow. Releasing twice is a no-op.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	if _, err := r.cell.state.DecrementShared(); err != nil {
		panic(err)
	}
}

// Mut is an exclusive borrow of a cell's payload.
type Mut[T any] struct {
	cell      *Cell[T]
	suspended uint
	released  bool
}

// Get returns the payload for reading and writing.
func (m *Mut[T]) Get() *T {
	if m.released {
		panic(errors.BorrowConflict("use of a released mutable borrow"))
	}
	if m.suspended > 0 {
		panic(errors.BorrowConflict("use of a mutable borrow while it is inaccessible"))
	}
	return &m.cell.value
}

// Suspend marks the borrow inaccessible so re-entrant code can borrow the
// payload again. The borrow stays unusable until the returned guard is
// restored.
func (m *Mut[T]) Suspend() (*Inaccessible[T], error) {
	if m.released {
		return nil, errors.BorrowConflict("cannot suspend a released mutable borrow")
	}
	if m.suspended > 0 {
		return nil, errors.BorrowConflict("mutable borrow is already inaccessible")
	}
	if _, err := m.cell.state.SetInaccessible(); err != nil {
		return nil, err
	}
	m.suspended++
	return &Inaccessible[T]{mut: m}, nil
}

// Release ends the borrow. Releasing twice is a no-op; releasing while
// suspended panics.
func (m *Mut[T]) Release() {
	if m.released {
		return
	}
	if m.suspended > 0 {
		panic(errors.BorrowConflict("cannot release a mutable borrow while it is inaccessible"))
	}
	m.released = true
	if _, err := m.cell.state.DecrementMut(); err != nil {
		panic(err)
	}
}

// Inaccessible is the guard of a suspended mutable borrow.
type Inaccessible[T any] struct {
	mut      *Mut[T]
	restored bool
}

// Restore makes the suspended borrow accessible again. It fails while
// borrows taken during the suspension are still alive.
func (g *Inaccessible[T]) Restore() error {
	if g.restored {
		return nil
	}
	if _, err := g.mut.cell.state.UnsetInaccessible(); err != nil {
		return err
	}
	g.restored = true
	g.mut.suspended--
	return nil
}
