// Package arena provides the owned element storage behind every index backend.
//
// Elements are stored by value in one contiguous slice and addressed by their
// uint32 slot. Reset drops every element but keeps the backing array, so a
// backend that is cleared and refilled every frame stops allocating once it
// has seen its largest frame.
//
// # Safety
//
// Slots are only meaningful for the generation they were allocated in.
// Reset increments the generation; callers that hand slots to other code
// (query results) document that those slots expire on the next Reset.
package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrArenaFull is returned when an append would exceed the configured limit.
	ErrArenaFull = errors.New("arena is full")
)

// Stats tracks arena usage.
//
//   - Len: elements in the current generation
//   - Cap: slots reserved in the backing array
//   - HighWater: largest Len ever observed
//   - Generation: number of Resets so far
type Stats struct {
	Len        int
	Cap        int
	HighWater  int
	Generation uint64
}

// Arena is a growable (or bounded) slice of values addressed by slot.
// It is not safe for concurrent mutation; concurrent reads are fine.
type Arena[T any] struct {
	items      []T
	limit      int
	highWater  int
	generation uint64
}

// New creates an Arena. A limit of 0 means unbounded. When limit > 0 the full
// backing array is reserved up front.
func New[T any](limit int) *Arena[T] {
	a := &Arena[T]{limit: limit}
	if limit > 0 {
		a.items = make([]T, 0, limit)
	}
	return a
}

// Append stores v and returns its slot.
// It returns ErrArenaFull if the arena already holds limit elements.
func (a *Arena[T]) Append(v T) (uint32, error) {
	if a.limit > 0 && len(a.items) >= a.limit {
		return 0, ErrArenaFull
	}
	slot := uint32(len(a.items))
	a.items = append(a.items, v)
	if len(a.items) > a.highWater {
		a.highWater = len(a.items)
	}
	return slot, nil
}

// Truncate drops every element at or after slot n. Backends use it to roll
// back an Append whose element could not be placed.
func (a *Arena[T]) Truncate(n int) {
	if n < len(a.items) {
		clear(a.items[n:])
		a.items = a.items[:n]
	}
}

// At returns the element in slot i.
// WARNING: slots from a previous generation alias unrelated elements.
func (a *Arena[T]) At(i uint32) T {
	return a.items[i]
}

// Items returns the live elements. The slice aliases arena storage.
func (a *Arena[T]) Items() []T {
	return a.items
}

// Len returns the number of live elements.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Limit returns the configured limit (0 = unbounded).
func (a *Arena[T]) Limit() int {
	return a.limit
}

// Generation returns the number of Resets performed.
func (a *Arena[T]) Generation() uint64 {
	return a.generation
}

// Reset drops every element, keeps the backing array and starts a new generation.
func (a *Arena[T]) Reset() {
	clear(a.items)
	a.items = a.items[:0]
	a.generation++
}

// Stats returns a snapshot of usage counters.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Len:        len(a.items),
		Cap:        cap(a.items),
		HighWater:  a.highWater,
		Generation: a.generation,
	}
}

func (a *Arena[T]) String() string {
	s := a.Stats()
	return fmt.Sprintf("Arena{len: %d, cap: %d, high: %d, gen: %d}", s.Len, s.Cap, s.HighWater, s.Generation)
}
