package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robfig/ngc/ast"
)

// Lexer design from text/template, driven synchronously: the parser pulls
// items and the state machine runs until it has produced one.

// Tokens ---------------------------------------------------------------------

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item.
}

func (i item) end() ast.Pos {
	return i.pos + ast.Pos(len(i.val))
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case len(i.val) > 20:
		return fmt.Sprintf("%.20q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

const (
	itemInvalid itemType = iota // not used
	itemEOF                     // EOF
	itemError                   // error occurred; value is text of error

	itemText    // text content, possibly with {{ }} interpolations
	itemRawText // content of <script> and <style>
	itemComment // <!-- ... -->

	itemTagOpen      // <name
	itemAttrName     // [prop], (event), *dir, #ref, name, ...
	itemAttrValue    // "value", 'value' or value
	itemTagEnd       // >
	itemTagSelfClose // />
	itemTagClose     // </name>

	itemBlockOpen   // {#name params}
	itemBlockBranch // {:name params}
	itemBlockClose  // {/name}

	itemIcuStart     // { opening an ICU expression
	itemIcuSwitch    // the switch expression
	itemIcuType      // plural, select
	itemIcuCase      // =0, other, male ...
	itemIcuCaseStart // { opening a case body
	itemIcuCaseEnd   // } closing a case body
	itemIcuEnd       // } closing the ICU expression
)

var itemNames = map[itemType]string{
	itemText:         "text",
	itemRawText:      "raw text",
	itemComment:      "comment",
	itemTagOpen:      "start tag",
	itemAttrName:     "attribute name",
	itemAttrValue:    "attribute value",
	itemTagEnd:       ">",
	itemTagSelfClose: "/>",
	itemTagClose:     "end tag",
	itemBlockOpen:    "block",
	itemBlockBranch:  "block branch",
	itemBlockClose:   "block end",
	itemIcuStart:     "ICU expression",
	itemIcuSwitch:    "ICU switch",
	itemIcuType:      "ICU type",
	itemIcuCase:      "ICU case",
	itemIcuCaseStart: "{",
	itemIcuCaseEnd:   "}",
	itemIcuEnd:       "}",
}

func (t itemType) String() string {
	if name, ok := itemNames[t]; ok {
		return name
	}
	return fmt.Sprintf("item(%d)", int(t))
}

const eof = -1

// rawTextElements have content that is not parsed as markup.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

// stateFn represents the state of the scanner as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner.
type lexer struct {
	name    string  // the name of the input; used only for error reports.
	input   string  // the string being scanned.
	state   stateFn // the next lexing function to enter
	pos     int     // current position in the input.
	start   int     // start position of this item.
	width   int     // width of last rune read from input.
	items   []item  // scanned items not yet returned to the parser.
	icu     int     // number of open ICU case bodies
	rawTag  string  // the element whose raw text content follows, if any
	lastTag string  // name of the most recent start tag
}

// lex creates a new scanner for the input string.
func lex(name, input string) *lexer {
	return &lexer{
		name:  name,
		input: input,
		state: lexText,
	}
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	for len(l.items) == 0 {
		if l.state == nil {
			return item{itemEOF, ast.Pos(len(l.input)), ""}
		}
		l.state = l.state(l)
	}
	var it = l.items[0]
	l.items = l.items[1:]
	return it
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
	l.items = append(l.items, item{t, ast.Pos(l.start), l.input[l.start:l.pos]})
	l.start = l.pos
}

// emitText emits the pending input as text, if there is any.
func (l *lexer) emitText() {
	if l.pos > l.start {
		l.emit(itemText)
	}
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// skipSpace consumes and ignores a run of whitespace.
func (l *lexer) skipSpace() {
	for isSpace(l.peek()) {
		l.next()
	}
	l.ignore()
}

// errorf returns an error token and terminates the scan by passing back a nil
// pointer that will be the next state.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items = append(l.items, item{itemError, ast.Pos(l.start), fmt.Sprintf(format, args...)})
	return nil
}

// lexText scans content until a tag, block, ICU expression or the end of an
// ICU case.
func lexText(l *lexer) stateFn {
	for {
		var rest = l.input[l.pos:]
		switch {
		case len(rest) == 0:
			l.emitText()
			if l.icu > 0 {
				return l.errorf("unterminated ICU expression")
			}
			l.emit(itemEOF)
			return nil
		case strings.HasPrefix(rest, "<!--"):
			l.emitText()
			return lexComment
		case strings.HasPrefix(rest, "</") && len(rest) > 2 && isNameStart(rune(rest[2])):
			l.emitText()
			return lexTagClose
		case rest[0] == '<' && len(rest) > 1 && isNameStart(rune(rest[1])):
			l.emitText()
			return lexTagOpen
		case strings.HasPrefix(rest, "{{"):
			if end := indexClose(rest, 2, "}}"); end >= 0 {
				l.pos += end + 2
				continue
			}
			// an unterminated interpolation is plain text
			l.pos += 2
			continue
		case strings.HasPrefix(rest, "{#"), strings.HasPrefix(rest, "{:"), strings.HasPrefix(rest, "{/"):
			l.emitText()
			return lexBlock
		case rest[0] == '{':
			l.emitText()
			return lexIcuStart
		case rest[0] == '}' && l.icu > 0:
			l.emitText()
			l.pos++
			l.emit(itemIcuCaseEnd)
			l.icu--
			return lexIcuCases
		}
		l.next()
	}
}

// lexComment scans a comment.  The left marker is known to be present.
func lexComment(l *lexer) stateFn {
	var end = strings.Index(l.input[l.pos+4:], "-->")
	if end < 0 {
		return l.errorf("unclosed comment")
	}
	l.pos += 4 + end + 3
	l.emit(itemComment)
	return lexText
}

// lexTagOpen scans "<name".
func lexTagOpen(l *lexer) stateFn {
	l.next() // <
	for isNameChar(l.peek()) {
		l.next()
	}
	l.lastTag = strings.ToLower(l.input[l.start+1 : l.pos])
	l.emit(itemTagOpen)
	return lexAttrs
}

// lexAttrs scans attributes inside a start tag, up to and including the ">"
// or "/>" that ends it.
func lexAttrs(l *lexer) stateFn {
	l.skipSpace()
	var rest = l.input[l.pos:]
	switch {
	case len(rest) == 0:
		return l.errorf("unterminated start tag <%s", l.lastTag)
	case rest[0] == '>':
		l.pos++
		l.emit(itemTagEnd)
		if rawTextElements[l.lastTag] {
			l.rawTag = l.lastTag
			return lexRawText
		}
		return lexText
	case strings.HasPrefix(rest, "/>"):
		l.pos += 2
		l.emit(itemTagSelfClose)
		return lexText
	}
	return lexAttrName
}

// lexAttrName scans an attribute name and its optional value.
func lexAttrName(l *lexer) stateFn {
	for {
		var r = l.peek()
		if r == eof || isSpace(r) || r == '=' || r == '>' || r == '"' || r == '\'' || r == '<' ||
			(r == '/' && strings.HasPrefix(l.input[l.pos:], "/>")) {
			break
		}
		l.next()
	}
	if l.pos == l.start {
		return l.errorf("unexpected character %q in start tag <%s", l.peek(), l.lastTag)
	}
	l.emit(itemAttrName)

	// A value is only present if the next non-space character is "=".
	var save = l.pos
	l.skipSpace()
	if l.peek() != '=' {
		l.pos, l.start = save, save
		return lexAttrs
	}
	l.next()
	l.skipSpace()
	switch q := l.peek(); q {
	case '"', '\'':
		l.next()
		var end = strings.IndexRune(l.input[l.pos:], q)
		if end < 0 {
			return l.errorf("unterminated attribute value")
		}
		l.pos += end + 1
	default:
		for r := l.peek(); r != eof && !isSpace(r) && r != '>' && !strings.HasPrefix(l.input[l.pos:], "/>"); r = l.peek() {
			l.next()
		}
	}
	l.emit(itemAttrValue)
	return lexAttrs
}

// lexTagClose scans "</name>".
func lexTagClose(l *lexer) stateFn {
	var end = strings.IndexByte(l.input[l.pos:], '>')
	if end < 0 {
		return l.errorf("unterminated end tag")
	}
	l.pos += end + 1
	l.emit(itemTagClose)
	return lexText
}

// lexRawText scans the content of a raw text element up to its end tag.
func lexRawText(l *lexer) stateFn {
	var closing = "</" + l.rawTag
	var end = strings.Index(strings.ToLower(l.input[l.pos:]), closing)
	l.rawTag = ""
	if end < 0 {
		return l.errorf("unclosed element <%s>", closing[2:])
	}
	l.pos += end
	if l.pos > l.start {
		l.emit(itemRawText)
	}
	return lexTagClose
}

// lexBlock scans a control flow block tag: {#name ...}, {:name ...} or
// {/name}.  Braces and quotes inside the parameters are balanced.
func lexBlock(l *lexer) stateFn {
	var typ = itemBlockOpen
	switch l.input[l.pos+1] {
	case ':':
		typ = itemBlockBranch
	case '/':
		typ = itemBlockClose
	}
	var end = indexClose(l.input[l.pos:], 2, "}")
	if end < 0 {
		return l.errorf("unclosed block %s", firstWord(l.input[l.pos:]))
	}
	l.pos += end + 1
	l.emit(typ)
	return lexText
}

// lexIcuStart scans "{switch, type," opening an ICU expression.
func lexIcuStart(l *lexer) stateFn {
	l.next()
	l.emit(itemIcuStart)
	var comma = indexClose(l.input[l.pos:], 0, ",")
	if comma < 0 || strings.ContainsAny(l.input[l.pos:l.pos+comma], "{}") {
		return l.errorf("invalid ICU message; missing ','")
	}
	l.pos += comma
	l.emit(itemIcuSwitch)
	l.next()
	l.skipSpace()
	for isNameChar(l.peek()) {
		l.next()
	}
	if l.pos == l.start {
		return l.errorf("invalid ICU message; missing type")
	}
	l.emit(itemIcuType)
	l.skipSpace()
	if l.next() != ',' {
		return l.errorf("invalid ICU message; expected ',' after type")
	}
	l.ignore()
	return lexIcuCases
}

// lexIcuCases scans case values and the opening brace of each case body, or
// the brace that closes the ICU expression.
func lexIcuCases(l *lexer) stateFn {
	l.skipSpace()
	switch r := l.peek(); {
	case r == eof:
		return l.errorf("unterminated ICU expression")
	case r == '}':
		l.next()
		l.emit(itemIcuEnd)
		return lexText
	}
	for r := l.peek(); r != eof && r != '{' && r != '}' && !isSpace(r); r = l.peek() {
		l.next()
	}
	if l.pos == l.start {
		return l.errorf("invalid ICU message; missing case value")
	}
	l.emit(itemIcuCase)
	l.skipSpace()
	if l.next() != '{' {
		return l.errorf("invalid ICU message; expected '{' after case value")
	}
	l.emit(itemIcuCaseStart)
	l.icu++
	return lexText
}

// Helpers --------------------------------------------------------------------

// indexClose returns the index in s of the closing delimiter, searching from
// from and skipping over quoted strings and balanced braces.  It returns -1
// if there is none.  The search is for delim only at brace depth zero.
func indexClose(s string, from int, delim string) int {
	var depth = 0
	var quote byte
	for i := from; i < len(s); i++ {
		var c = s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		case c == '\'' || c == '"' || c == '`':
			quote = c
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], delim) {
			return i
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}

func firstWord(s string) string {
	if i := strings.IndexFunc(s, func(r rune) bool { return isSpace(r) || r == '}' }); i >= 0 {
		return s[:i]
	}
	return s
}

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isNameChar reports whether r may appear in an element name.
func isNameChar(r rune) bool {
	return r == '-' || r == ':' || r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
