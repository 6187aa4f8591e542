// Package ordering implements the position-based reordering shared by
// folder siblings, prompts within a folder, the global project list and
// the pinned prompt list. The algorithm is pure: it works on an
// in-memory snapshot of one group and leaves persistence to the caller.
package ordering

import (
	"errors"
	"sort"
)

// ErrNotMember is returned when the reorder target is not part of the
// supplied group snapshot.
var ErrNotMember = errors.New("target is not a member of the group")

// Rule describes how one ordering group is ranked and renumbered.
// The zero Base is used for folders, prompts and projects; the pinned
// list uses Base 1.
type Rule[T any] struct {
	Base     int
	ID       func(T) string
	Order    func(T) *int
	SetOrder func(T, int)
	// TieBreak ranks members whose order values tie (both nil, or
	// equal). Creation time for most groups, title for the pinned list.
	TieBreak func(a, b T) bool
}

// Canonical returns the group sorted by order ascending with nil sorting
// after every non-nil value; ties fall through to TieBreak. The input
// slice is not modified.
func (r Rule[T]) Canonical(members []T) []T {
	sorted := make([]T, len(members))
	copy(sorted, members)

	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := r.Order(sorted[i]), r.Order(sorted[j])
		switch {
		case oi == nil && oj == nil:
			return r.TieBreak(sorted[i], sorted[j])
		case oi == nil:
			return false
		case oj == nil:
			return true
		case *oi != *oj:
			return *oi < *oj
		default:
			return r.TieBreak(sorted[i], sorted[j])
		}
	})

	return sorted
}

// Result holds the outcome of a reorder.
type Result[T any] struct {
	// Members is the whole group in its final canonical order.
	Members []T
	// Changed is true when order values were rewritten. False means
	// the move was a no-op and nothing needs persisting.
	Changed bool
}

// Reorder moves the member identified by targetID to newIndex within the
// group and renumbers every member sequentially from Base. Out-of-range
// indexes are clamped, not rejected. Moving a member to its current
// position is a no-op: no order value is touched.
func (r Rule[T]) Reorder(members []T, targetID string, newIndex int) (*Result[T], error) {
	if len(members) == 0 {
		return &Result[T]{Members: members}, nil
	}

	sorted := r.Canonical(members)

	current := -1
	for i, m := range sorted {
		if r.ID(m) == targetID {
			current = i
			break
		}
	}
	if current < 0 {
		return nil, ErrNotMember
	}

	// Clamp into [0, len-1]
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(sorted)-1 {
		newIndex = len(sorted) - 1
	}

	if newIndex == current {
		return &Result[T]{Members: sorted}, nil
	}

	// Splice: remove from current position, reinsert at the new one
	target := sorted[current]
	sorted = append(sorted[:current], sorted[current+1:]...)
	sorted = append(sorted[:newIndex], append([]T{target}, sorted[newIndex:]...)...)

	// Renumber the whole group, not just the displaced span
	for i, m := range sorted {
		r.SetOrder(m, r.Base+i)
	}

	return &Result[T]{Members: sorted, Changed: true}, nil
}
