// Package edit applies text edits expressed against an immutable original.
//
// Edits are collected into a List, each addressing the original text by
// byte offset: insertions have zero Length, removals an empty Replacement.
// Apply splices all of them in one pass, from the end of the text towards
// the start, so the offset of every edit stays valid however earlier edits
// change the length of the text.
package edit

import (
	"fmt"
	"sort"
)

// Edit replaces Length bytes at Offset with Replacement.
type Edit struct {
	Offset      int
	Length      int
	Replacement string
}

func (e Edit) end() int { return e.Offset + e.Length }

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)->%q", e.Offset, e.end(), e.Replacement)
}

// List is an ordered list of edits against one original text.
type List []Edit

// Insert adds an insertion of text at offset.
func (l *List) Insert(offset int, text string) {
	*l = append(*l, Edit{Offset: offset, Replacement: text})
}

// Remove adds a removal of length bytes at offset.
func (l *List) Remove(offset, length int) {
	*l = append(*l, Edit{Offset: offset, Length: length})
}

// Replace adds a replacement of length bytes at offset with text.
func (l *List) Replace(offset, length int, text string) {
	*l = append(*l, Edit{Offset: offset, Length: length, Replacement: text})
}

// OverlapError reports two edits touching the same bytes of the original.
type OverlapError struct {
	A, B Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("edit: overlapping edits %v and %v", e.A, e.B)
}

// Apply returns original with all edits applied.  Edits are applied in
// descending offset order.  At one offset, removals go first and
// insertions then appear in the order they were added, so a removal
// followed by an insertion at the same offset replaces the text.  An edit
// outside original, or two edits covering the same byte, fail the whole
// list and original is returned unchanged.
func (l List) Apply(original string) (string, error) {
	for i, e := range l {
		if e.Offset < 0 || e.Length < 0 || e.end() > len(original) {
			return original, fmt.Errorf("edit: %v out of range [0,%d]", e, len(original))
		}
		for _, other := range l[:i] {
			if overlaps(e, other) {
				return original, &OverlapError{other, e}
			}
		}
	}

	var sorted = make([]int, len(l))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		var a, b = l[sorted[i]], l[sorted[j]]
		if a.Offset != b.Offset {
			return a.Offset > b.Offset
		}
		if (a.Length > 0) != (b.Length > 0) {
			return a.Length > 0
		}
		return sorted[i] > sorted[j]
	})

	var text = original
	for _, i := range sorted {
		var e = l[i]
		text = text[:e.Offset] + e.Replacement + text[e.end():]
	}
	return text, nil
}

// overlaps reports whether a and b cover a common byte, or one inserts
// strictly inside the range of the other.
func overlaps(a, b Edit) bool {
	switch {
	case a.Length == 0 && b.Length == 0:
		return false
	case a.Length == 0:
		return a.Offset > b.Offset && a.Offset < b.end()
	case b.Length == 0:
		return b.Offset > a.Offset && b.Offset < a.end()
	}
	return a.Offset < b.end() && b.Offset < a.end()
}

// Shift returns the edits moved by delta bytes, for edits computed against
// a substring that starts delta bytes into the text they will be applied to.
func (l List) Shift(delta int) List {
	var out = make(List, len(l))
	for i, e := range l {
		e.Offset += delta
		out[i] = e
	}
	return out
}
