package parse

import "unicode/utf8"

// preserveWhitespacesAttr keeps whitespace as written in an element's subtree.
const preserveWhitespacesAttr = "ngPreserveWhitespaces"

type textlexer struct {
	str     string
	pos     int
	lastpos int
}

func (l *textlexer) eof() bool {
	return l.pos >= len(l.str)
}

func (l *textlexer) next() rune {
	l.lastpos = l.pos
	var r, width = utf8.DecodeRuneInString(l.str[l.pos:])
	l.pos += width
	return r
}

// collapseWhitespace processes text when whitespace is not preserved:
// - each run of whitespace, including newlines, becomes a single space.
// - all other characters are kept verbatim.
func collapseWhitespace(s string) string {
	var lex = textlexer{s, 0, 0}
	var (
		inSpace   = false
		result    = make([]byte, 0, len(s))
		collapsed = false
	)
	for !lex.eof() {
		var r = lex.next()
		if isSpace(r) {
			if inSpace || r != ' ' {
				collapsed = true
			}
			if !inSpace {
				result = append(result, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		result = append(result, lex.str[lex.lastpos:lex.pos]...)
	}
	if !collapsed {
		return s
	}
	return string(result)
}

// allSpace reports whether s contains only whitespace.
func allSpace(s string) bool {
	for _, ch := range s {
		if !isSpace(ch) {
			return false
		}
	}
	return true
}
