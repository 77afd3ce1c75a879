// Package intern provides an ordered, deduplicated string table with
// bidirectional index/value lookup, used for source paths and symbol names.
package intern

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by IndexOf for a value that was never added.
	ErrNotFound = errors.New("value not in set")
	// ErrOutOfRange is returned by At for an index outside the stored sequence.
	ErrOutOfRange = errors.New("index out of range")
)

// Set is an append-only sequence of strings with a reverse mapping from value
// to the index of its first occurrence. Duplicate appends are allowed on
// request and extend the sequence without touching the reverse mapping, so a
// duplicated value stays reachable at its original index only.
type Set struct {
	values []string
	index  map[string]int
}

func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// FromSlice builds a Set containing every element of values in order. With
// allowDuplicates the sequence keeps positional alignment with the input even
// when values repeat.
func FromSlice(values []string, allowDuplicates bool) *Set {
	s := NewSet()
	for _, v := range values {
		s.Add(v, allowDuplicates)
	}
	return s
}

// Add appends value if it is new, or unconditionally when allowDuplicate is
// set. The reverse mapping always records the first occurrence.
func (s *Set) Add(value string, allowDuplicate bool) {
	_, seen := s.index[value]
	if seen && !allowDuplicate {
		return
	}
	if !seen {
		s.index[value] = len(s.values)
	}
	s.values = append(s.values, value)
}

// Has reports whether value was ever added.
func (s *Set) Has(value string) bool {
	_, ok := s.index[value]
	return ok
}

// IndexOf returns the index of the first occurrence of value.
func (s *Set) IndexOf(value string) (int, error) {
	i, ok := s.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, value)
	}
	return i, nil
}

// At returns the value stored at index i in the appended sequence.
func (s *Set) At(i int) (string, error) {
	if i < 0 || i >= len(s.values) {
		return "", fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, i, len(s.values))
	}
	return s.values[i], nil
}

// Size returns the number of distinct values, which may be smaller than the
// length of the appended sequence.
func (s *Set) Size() int {
	return len(s.index)
}

// ToSlice returns a copy of the appended sequence.
func (s *Set) ToSlice() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
