// Package linkedset implements an ordered set of unique values.
//
// The set allows iterating over values in a stable order and inserting or
// removing values at arbitrary positions in O(1), backed by a doubly linked
// sequence plus a keyed index. Uniqueness follows Go equality of the value
// type: with pointer values, which is the intended use, the set is keyed by
// identity.
package linkedset

import (
	"errors"
	"iter"
)

// Sentinel errors for set operations.
var (
	// ErrDuplicateValue is returned when a value being added is already in
	// the set. The set is left unmodified.
	ErrDuplicateValue = errors.New("value is already in the set")
	// ErrNoSuchValue is returned when an operation refers to a value that
	// is not in the set. Distinct from the valid "no neighbor" result for a
	// present value at a boundary.
	ErrNoSuchValue = errors.New("no such value in the set")
)

type entry[T comparable] struct {
	value    T
	previous *entry[T]
	next     *entry[T]
}

// Set is an ordered set of unique values. The zero value is not usable;
// create instances with New. Not safe for concurrent use.
type Set[T comparable] struct {
	entries map[T]*entry[T]
	first   *entry[T]
	last    *entry[T]
}

// New creates an empty set.
func New[T comparable]() *Set[T] {
	return &Set[T]{
		entries: make(map[T]*entry[T]),
	}
}

// Len returns the number of values stored in the set.
func (s *Set[T]) Len() int {
	return len(s.entries)
}

// Contains reports whether the set contains the value.
func (s *Set[T]) Contains(value T) bool {
	_, ok := s.entries[value]

	return ok
}

// First returns the first value. The second result is false if the set is
// empty.
func (s *Set[T]) First() (T, bool) {
	if s.first == nil {
		var zero T

		return zero, false
	}

	return s.first.value, true
}

// Last returns the last value. The second result is false if the set is
// empty.
func (s *Set[T]) Last() (T, bool) {
	if s.last == nil {
		var zero T

		return zero, false
	}

	return s.last.value, true
}

// GetPrevious returns the value preceding the given value. The boolean
// result is false when the value is first (no previous; a valid result).
// Returns ErrNoSuchValue if the value itself is not in the set.
func (s *Set[T]) GetPrevious(value T) (T, bool, error) {
	var zero T

	curr, ok := s.entries[value]
	if !ok {
		return zero, false, ErrNoSuchValue
	}

	if curr.previous == nil {
		return zero, false, nil
	}

	return curr.previous.value, true, nil
}

// GetNext returns the value following the given value. The boolean result
// is false when the value is last (no next; a valid result). Returns
// ErrNoSuchValue if the value itself is not in the set.
func (s *Set[T]) GetNext(value T) (T, bool, error) {
	var zero T

	curr, ok := s.entries[value]
	if !ok {
		return zero, false, ErrNoSuchValue
	}

	if curr.next == nil {
		return zero, false, nil
	}

	return curr.next.value, true, nil
}

// AddFirst adds the value as the first element.
// Returns ErrDuplicateValue if the value is already in the set.
func (s *Set[T]) AddFirst(value T) error {
	return s.insert(value, nil, s.first)
}

// AddLast adds the value as the last element.
// Returns ErrDuplicateValue if the value is already in the set.
func (s *Set[T]) AddLast(value T) error {
	return s.insert(value, s.last, nil)
}

// AddBefore adds the value and places it before the specified next value.
// Returns ErrNoSuchValue if next is not in the set and ErrDuplicateValue if
// the value is already in the set.
func (s *Set[T]) AddBefore(value, next T) error {
	nextEntry, ok := s.entries[next]
	if !ok {
		return ErrNoSuchValue
	}

	return s.insert(value, nextEntry.previous, nextEntry)
}

// AddAfter adds the value and places it after the specified previous value.
// Returns ErrNoSuchValue if previous is not in the set and
// ErrDuplicateValue if the value is already in the set.
func (s *Set[T]) AddAfter(value, previous T) error {
	previousEntry, ok := s.entries[previous]
	if !ok {
		return ErrNoSuchValue
	}

	return s.insert(value, previousEntry, previousEntry.next)
}

// insert places the value between the given entries.
func (s *Set[T]) insert(value T, previous, next *entry[T]) error {
	if _, ok := s.entries[value]; ok {
		return ErrDuplicateValue
	}

	curr := &entry[T]{value: value, previous: previous, next: next}
	s.entries[value] = curr

	if previous != nil {
		previous.next = curr
	}

	if previous == s.last {
		s.last = curr
	}

	if next != nil {
		next.previous = curr
	}

	if next == s.first {
		s.first = curr
	}

	return nil
}

// Remove removes the value from the set. Returns false if the value is not
// in the set.
func (s *Set[T]) Remove(value T) bool {
	curr, ok := s.entries[value]
	if !ok {
		return false
	}

	delete(s.entries, value)
	s.unlink(curr)

	return true
}

func (s *Set[T]) unlink(curr *entry[T]) {
	if curr == s.first {
		s.first = curr.next
	} else {
		curr.previous.next = curr.next
	}

	if curr == s.last {
		s.last = curr.previous
	} else {
		curr.next.previous = curr.previous
	}
}

// Replace replaces an old value with a new one, preserving its position.
// Returns ErrNoSuchValue if the old value is not in the set and
// ErrDuplicateValue if the new value already is.
func (s *Set[T]) Replace(old, replacement T) error {
	oldEntry, ok := s.entries[old]
	if !ok {
		return ErrNoSuchValue
	}

	if old == replacement {
		return nil
	}

	if _, ok := s.entries[replacement]; ok {
		return ErrDuplicateValue
	}

	curr := &entry[T]{
		value:    replacement,
		previous: oldEntry.previous,
		next:     oldEntry.next,
	}

	delete(s.entries, old)
	s.entries[replacement] = curr

	if oldEntry == s.first {
		s.first = curr
	} else {
		oldEntry.previous.next = curr
	}

	if oldEntry == s.last {
		s.last = curr
	} else {
		oldEntry.next.previous = curr
	}

	return nil
}

// Values returns all values in their current order.
func (s *Set[T]) Values() []T {
	result := make([]T, 0, len(s.entries))

	for curr := s.first; curr != nil; curr = curr.next {
		result = append(result, curr.value)
	}

	return result
}

// All returns an iterator over all values in their current order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for curr := s.first; curr != nil; curr = curr.next {
			if !yield(curr.value) {
				return
			}
		}
	}
}
