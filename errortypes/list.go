package errortypes

import (
	"sort"
	"strings"
)

// List is an ordered collection of errors reported for one unit of work.
type List []*Error

// Add appends a positioned error.
func (l *List) Add(kind Kind, file string, line, col int, format string, args ...interface{}) {
	*l = append(*l, Newf(kind, file, line, col, format, args...))
}

// Sort orders the list by file, line and column.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		var a, b = l[i], l[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.LineNum != b.LineNum {
			return a.LineNum < b.LineNum
		}
		return a.ColNum < b.ColNum
	})
}

// Err returns the list as an error, or nil if it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var lines = make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
