package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robfig/ngc/ast"
)

// Lexer design from text/template, driven synchronously: the state machine
// runs until it has produced at least one item.

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The absolute starting position, in bytes, of this item.
	val string   // The value of this item, as written.
}

func (i item) end() ast.Pos {
	return i.pos + ast.Pos(len(i.val))
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "end of input"
	case i.typ == itemError:
		return i.val
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

const (
	itemError itemType = iota // error occurred; value is text of error
	itemEOF

	itemIdent   // name
	itemKeyword // true, false, null, undefined, this, let, as
	itemNumber  // 42, 1.5, .5, 1e3
	itemString  // 'hello' or "hello"

	itemOperator // + - * / % = == === != !== < > <= >= && || ! ?? |
	itemQuestion // ?
	itemSafeDot  // ?.
	itemDot      // .
	itemComma    // ,
	itemColon    // :
	itemSemi     // ;
	itemLeftParen
	itemRightParen
	itemLeftBracket
	itemRightBracket
	itemLeftBrace
	itemRightBrace
)

var keywords = map[string]bool{
	"true":      true,
	"false":     true,
	"null":      true,
	"undefined": true,
	"this":      true,
	"let":       true,
	"as":        true,
}

const eof = -1

// stateFn represents the state of the lexer as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the lexical scanning.
type lexer struct {
	input  string  // the string being scanned.
	offset ast.Pos // absolute position of input[0]
	state  stateFn // the next lexing function to enter.
	pos    int     // current position in the input.
	start  int     // start position of this item.
	width  int     // width of last rune read from input.
	items  []item  // scanned items not yet consumed.
}

// lex creates a new scanner for the input string.
func lex(input string, offset ast.Pos) *lexer {
	return &lexer{
		input:  input,
		offset: offset,
		state:  lexExpr,
	}
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	for len(l.items) == 0 {
		if l.state == nil {
			return item{itemEOF, l.offset + ast.Pos(len(l.input)), ""}
		}
		l.state = l.state(l)
	}
	var it = l.items[0]
	l.items = l.items[1:]
	return it
}

// all scans the whole input, ending with an EOF or error item.
func (l *lexer) all() []item {
	var items []item
	for {
		var it = l.nextItem()
		items = append(items, it)
		if it.typ == itemEOF || it.typ == itemError {
			return items
		}
	}
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) {
	l.items = append(l.items, item{t, l.offset + ast.Pos(l.start), l.input[l.start:l.pos]})
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// accept consumes the next rune if it's from the valid set.
func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

// errorf emits an error item and terminates the scan.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items = append(l.items, item{itemError, l.offset + ast.Pos(l.start), fmt.Sprintf(format, args...)})
	return nil
}

// lexExpr scans the elements of an expression.
func lexExpr(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		l.emit(itemEOF)
		return nil
	case isSpace(r):
		l.ignore()
	case isIdentStart(r):
		l.backup()
		return lexIdent
	case '0' <= r && r <= '9':
		l.backup()
		return lexNumber
	case r == '.':
		if p := l.peek(); '0' <= p && p <= '9' {
			l.backup()
			return lexNumber
		}
		l.emit(itemDot)
	case r == '\'' || r == '"':
		return lexQuote(r)
	case r == '?':
		switch l.peek() {
		case '.':
			l.next()
			l.emit(itemSafeDot)
		case '?':
			l.next()
			l.emit(itemOperator)
		default:
			l.emit(itemQuestion)
		}
	case r == '=' || r == '!':
		if l.accept("=") {
			l.accept("=")
		}
		l.emit(itemOperator)
	case r == '<' || r == '>':
		l.accept("=")
		l.emit(itemOperator)
	case r == '&':
		if !l.accept("&") {
			return l.errorf("unexpected character '&'")
		}
		l.emit(itemOperator)
	case r == '|':
		l.accept("|")
		l.emit(itemOperator)
	case strings.ContainsRune("+-*/%", r):
		l.emit(itemOperator)
	default:
		if t, ok := punctuation[r]; ok {
			l.emit(t)
			return lexExpr
		}
		return l.errorf("unexpected character %q", r)
	}
	return lexExpr
}

var punctuation = map[rune]itemType{
	',': itemComma,
	':': itemColon,
	';': itemSemi,
	'(': itemLeftParen,
	')': itemRightParen,
	'[': itemLeftBracket,
	']': itemRightBracket,
	'{': itemLeftBrace,
	'}': itemRightBrace,
}

// lexIdent scans an identifier or keyword.
func lexIdent(l *lexer) stateFn {
	for {
		r := l.next()
		if !isIdentPart(r) {
			l.backup()
			break
		}
	}
	if keywords[l.input[l.start:l.pos]] {
		l.emit(itemKeyword)
	} else {
		l.emit(itemIdent)
	}
	return lexExpr
}

// lexNumber scans a decimal number with optional fraction and exponent.
func lexNumber(l *lexer) stateFn {
	const digits = "0123456789"
	l.acceptRun(digits)
	if l.accept(".") {
		l.acceptRun(digits)
	}
	if l.accept("eE") {
		l.accept("+-")
		if !strings.ContainsRune(digits, l.peek()) {
			return l.errorf("invalid exponent in number %q", l.input[l.start:l.pos])
		}
		l.acceptRun(digits)
	}
	if isIdentStart(l.peek()) {
		l.next()
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos])
	}
	l.emit(itemNumber)
	return lexExpr
}

// lexQuote scans a quoted string.  The opening quote has been consumed.
func lexQuote(quote rune) stateFn {
	return func(l *lexer) stateFn {
		for {
			switch l.next() {
			case '\\':
				if r := l.next(); r != eof {
					break
				}
				fallthrough
			case eof:
				return l.errorf("unterminated quote")
			case quote:
				l.emit(itemString)
				return lexExpr
			}
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
