package ast

import (
	"sort"
	"unicode/utf8"
)

// Pos represents a byte position in the original input text from which this
// template was parsed.  It is useful to construct helpful error messages.
type Pos int

// Position returns this position.  It is implemented as a method so that Nodes
// may embed a Pos and fulfill this part of the Node interface for free.
func (p Pos) Position() Pos {
	return p
}

// Span is a half-open range [Start, End) of absolute byte offsets into the
// template text.
type Span struct {
	Start Pos
	End   Pos
}

// SourceSpan returns the span.  Nodes embed a Span to satisfy this part of
// the Node and Expr interfaces.
func (s Span) SourceSpan() Span { return s }

// Position returns the start of the span.
func (s Span) Position() Pos { return s.Start }

// Len returns the length of the span in bytes.
func (s Span) Len() int { return int(s.End - s.Start) }

// Contains reports whether p lies within the span.
func (s Span) Contains(p Pos) bool { return s.Start <= p && p < s.End }

// Offset returns the span shifted by n bytes.
func (s Span) Offset(n Pos) Span { return Span{s.Start + n, s.End + n} }

// LineIndex maps byte offsets in a text to 0-based line and column numbers.
// Columns count characters, not bytes.
type LineIndex struct {
	text       string
	lineStarts []Pos
}

// NewLineIndex builds the line table for text.
func NewLineIndex(text string) *LineIndex {
	var starts = []Pos{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, Pos(i+1))
		}
	}
	return &LineIndex{text, starts}
}

// Location returns the 0-based line and column of p.
func (li *LineIndex) Location(p Pos) (line, col int) {
	if p < 0 {
		p = 0
	}
	if int(p) > len(li.text) {
		p = Pos(len(li.text))
	}
	line = sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > p }) - 1
	col = utf8.RuneCountInString(li.text[li.lineStarts[line]:p])
	return line, col
}

// LineCount returns the number of lines in the text.
func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}
