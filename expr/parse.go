// Package expr parses the binding expressions embedded in templates:
// property bindings, interpolations, event handlers and structural directive
// microsyntax.
//
// All spans produced are absolute: the caller passes the offset of the
// expression text within the template, and every node span is relative to
// the start of the template.
package expr

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/robfig/ngc/ast"
)

// Error is a syntax error in an expression.
type Error struct {
	Pos   ast.Pos // absolute position of the offending token
	Msg   string
	Input string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parser error: %s in [%s]", e.Msg, e.Input)
}

// parser holds the token stream of one expression.
type parser struct {
	input  string
	offset ast.Pos
	items  []item
	index  int
	action bool // event handler: assignments and chains are allowed, pipes are not
}

func newParser(input string, offset ast.Pos, action bool) *parser {
	return &parser{
		input:  input,
		offset: offset,
		items:  lex(input, offset).all(),
		action: action,
	}
}

// Parse parses a property binding value.  A value that is empty or all
// whitespace produces an *ast.EmptyExpr rather than an error.
func Parse(input string, offset ast.Pos) (node ast.Expr, err error) {
	if isBlank(input) {
		return emptyExpr(input, offset), nil
	}
	var p = newParser(input, offset, false)
	defer p.recover(&err)
	return p.parseChain(), nil
}

// ParseAction parses an event handler, which may assign to properties and
// chain several statements with ";".
func ParseAction(input string, offset ast.Pos) (node ast.Expr, err error) {
	if isBlank(input) {
		return emptyExpr(input, offset), nil
	}
	var p = newParser(input, offset, true)
	defer p.recover(&err)
	return p.parseChain(), nil
}

// ParseInterpolation splits text around {{ }} delimiters and parses each
// embedded expression.  It returns nil if the text contains no complete
// interpolation.
func ParseInterpolation(input string, offset ast.Pos) (*ast.Interpolation, error) {
	var (
		strs  []string
		exprs []ast.Expr
		i     = 0
	)
	for {
		var open = strings.Index(input[i:], "{{")
		if open < 0 {
			strs = append(strs, input[i:])
			break
		}
		open += i
		var close = indexInterpolationEnd(input, open+2)
		if close < 0 {
			// no closing delimiter: the rest is plain text
			strs = append(strs, input[i:])
			break
		}
		var body = input[open+2 : close]
		if isBlank(body) {
			return nil, &Error{offset + ast.Pos(open), "blank expressions are not allowed in interpolated strings", input}
		}
		var p = newParser(body, offset+ast.Pos(open+2), false)
		var e, err = p.parseSafely()
		if err != nil {
			return nil, err
		}
		strs = append(strs, input[i:open])
		exprs = append(exprs, e)
		i = close + 2
	}
	if len(exprs) == 0 {
		return nil, nil
	}
	return &ast.Interpolation{
		Span:        ast.Span{Start: offset, End: offset + ast.Pos(len(input))},
		Strings:     strs,
		Expressions: exprs,
	}, nil
}

// indexInterpolationEnd returns the index of the "}}" closing an
// interpolation body starting at from, ignoring delimiters inside quotes.
func indexInterpolationEnd(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			return i
		}
	}
	return -1
}

func (p *parser) parseSafely() (node ast.Expr, err error) {
	defer p.recover(&err)
	return p.parseChain(), nil
}

// Chain -> Pipe ( ";" Pipe )*
func (p *parser) parseChain() ast.Expr {
	var start = p.peek().pos
	var exprs []ast.Expr
	for p.peek().typ != itemEOF {
		exprs = append(exprs, p.parsePipe())
		switch tok := p.peek(); tok.typ {
		case itemSemi:
			if !p.action {
				p.errorf("binding expression cannot contain chained expression")
			}
			for p.peek().typ == itemSemi {
				p.next()
			}
		case itemEOF:
		default:
			p.unexpected(tok)
		}
	}
	switch len(exprs) {
	case 0:
		return emptyExpr(p.input, p.offset)
	case 1:
		return exprs[0]
	}
	return &ast.Chain{Span: p.spanFrom(start), Expressions: exprs}
}

// Pipe -> Expression ( "|" name ( ":" Expression )* )*
func (p *parser) parsePipe() ast.Expr {
	var start = p.peek().pos
	var result = p.parseExpression()
	for p.peekOp("|") {
		if p.action {
			p.errorf("cannot have a pipe in an action expression")
		}
		p.next()
		var name = p.next()
		if name.typ != itemIdent && name.typ != itemKeyword {
			p.errorf("expected identifier for pipe name, got %v", name)
		}
		var args []ast.Expr
		for p.peek().typ == itemColon {
			p.next()
			args = append(args, p.parseExpression())
		}
		result = &ast.PipeCall{
			Span:       p.spanFrom(start),
			NameSpan:   ast.Span{Start: name.pos, End: name.end()},
			Expression: result,
			Name:       name.val,
			Args:       args,
		}
	}
	return result
}

func (p *parser) parseExpression() ast.Expr {
	return p.parseConditional()
}

// Conditional -> Binary [ "?" Pipe ":" Pipe ]
func (p *parser) parseConditional() ast.Expr {
	var start = p.peek().pos
	var cond = p.parseBinary(0)
	if p.peek().typ != itemQuestion {
		return cond
	}
	p.next()
	var yes = p.parsePipe()
	p.expect(itemColon, "conditional expression")
	var no = p.parsePipe()
	return &ast.Conditional{Span: p.spanFrom(start), Condition: cond, TrueExp: yes, FalseExp: no}
}

var precedence = map[string]int{
	"||":  1,
	"&&":  2,
	"??":  3,
	"==":  4,
	"!=":  4,
	"===": 4,
	"!==": 4,
	"<":   5,
	">":   5,
	"<=":  5,
	">=":  5,
	"+":   6,
	"-":   6,
	"*":   7,
	"/":   7,
	"%":   7,
}

// parseBinary parses binary operators using the Precedence Climbing
// algorithm described in:
//   http://www.engr.mun.ca/~theo/Misc/exp_parsing.htm
func (p *parser) parseBinary(prec int) ast.Expr {
	var start = p.peek().pos
	var n = p.parsePrefix()
	for {
		var tok = p.peek()
		var q, ok = precedence[tok.val]
		if tok.typ != itemOperator || !ok || q < prec {
			return n
		}
		p.next()
		var right = p.parseBinary(q + 1)
		n = &ast.Binary{Span: p.spanFrom(start), Operation: tok.val, Left: n, Right: right}
	}
}

// Prefix -> ( "!" | "-" | "+" ) Prefix | CallChain
func (p *parser) parsePrefix() ast.Expr {
	var tok = p.peek()
	if tok.typ == itemOperator {
		switch tok.val {
		case "!":
			p.next()
			var operand = p.parsePrefix()
			return &ast.PrefixNot{Span: p.spanFrom(tok.pos), Expression: operand}
		case "-", "+":
			p.next()
			var operand = p.parsePrefix()
			return &ast.Unary{Span: p.spanFrom(tok.pos), Operator: tok.val, Expression: operand}
		}
	}
	return p.parseCallChain()
}

// CallChain -> Primary ( "." Member | "?." Member | "[" Pipe "]" | "(" Args ")" | "!" )*
func (p *parser) parseCallChain() ast.Expr {
	var start = p.peek().pos
	var result = p.parsePrimary()
	for {
		switch tok := p.peek(); {
		case tok.typ == itemDot:
			p.next()
			result = p.parseMember(start, result, false)
		case tok.typ == itemSafeDot:
			p.next()
			result = p.parseMember(start, result, true)
		case tok.typ == itemLeftBracket:
			p.next()
			var key = p.parsePipe()
			p.expect(itemRightBracket, "keyed read")
			if p.peekOp("=") {
				p.assignment()
				var value = p.parseConditional()
				result = &ast.KeyedWrite{Span: p.spanFrom(start), Receiver: result, Key: key, Value: value}
				continue
			}
			result = &ast.KeyedRead{Span: p.spanFrom(start), Receiver: result, Key: key}
		case tok.typ == itemLeftParen:
			p.next()
			var args = p.parseCallArgs()
			result = &ast.FunctionCall{Span: p.spanFrom(start), Target: result, Args: args}
		case tok.typ == itemOperator && tok.val == "!":
			p.next()
			result = &ast.NonNullAssert{Span: p.spanFrom(start), Expression: result}
		default:
			return result
		}
	}
}

// parseMember parses the name after "." or "?.", producing a read, call or
// write on receiver.
func (p *parser) parseMember(start ast.Pos, receiver ast.Expr, safe bool) ast.Expr {
	var name = p.next()
	if name.typ != itemIdent && name.typ != itemKeyword {
		p.errorf("expected identifier for property access, got %v", name)
	}
	var nameSpan = ast.Span{Start: name.pos, End: name.end()}

	if p.peek().typ == itemLeftParen {
		p.next()
		var args = p.parseCallArgs()
		if safe {
			return &ast.SafeMethodCall{Span: p.spanFrom(start), NameSpan: nameSpan, Receiver: receiver, Name: name.val, Args: args}
		}
		return &ast.MethodCall{Span: p.spanFrom(start), NameSpan: nameSpan, Receiver: receiver, Name: name.val, Args: args}
	}

	if safe {
		if p.peekOp("=") {
			p.errorf("the '?.' operator cannot be used in the assignment")
		}
		return &ast.SafePropertyRead{Span: p.spanFrom(start), NameSpan: nameSpan, Receiver: receiver, Name: name.val}
	}

	if p.peekOp("=") {
		p.assignment()
		var value = p.parseConditional()
		return &ast.PropertyWrite{Span: p.spanFrom(start), NameSpan: nameSpan, Receiver: receiver, Name: name.val, Value: value}
	}
	return &ast.PropertyRead{Span: p.spanFrom(start), NameSpan: nameSpan, Receiver: receiver, Name: name.val}
}

// assignment consumes "=" after checking that assignments are allowed.
func (p *parser) assignment() {
	if !p.action {
		p.errorf("bindings cannot contain assignments")
	}
	p.next()
}

// "(" has just been read.
func (p *parser) parseCallArgs() []ast.Expr {
	if p.peek().typ == itemRightParen {
		p.next()
		return nil
	}
	var args []ast.Expr
	for {
		args = append(args, p.parsePipe())
		switch tok := p.next(); tok.typ {
		case itemComma:
		case itemRightParen:
			return args
		default:
			p.unexpected(tok)
		}
	}
}

// Primary -> "(" Pipe ")" | literal | "[" list "]" | "{" map "}" | name
func (p *parser) parsePrimary() ast.Expr {
	var tok = p.next()
	var span = ast.Span{Start: tok.pos, End: tok.end()}
	switch tok.typ {
	case itemLeftParen:
		var result = p.parsePipe()
		p.expect(itemRightParen, "parenthesized expression")
		return result
	case itemKeyword:
		switch tok.val {
		case "null":
			return &ast.LiteralPrimitive{Span: span, Value: nil}
		case "undefined":
			return &ast.LiteralPrimitive{Span: span, Value: ast.Undefined{}}
		case "true", "false":
			return &ast.LiteralPrimitive{Span: span, Value: tok.val == "true"}
		case "this":
			return &ast.ImplicitReceiver{Span: span, This: true}
		}
	case itemLeftBracket:
		var elems = p.parseList(itemRightBracket)
		return &ast.LiteralArray{Span: p.spanFrom(tok.pos), Elements: elems}
	case itemLeftBrace:
		return p.parseLiteralMap(tok)
	case itemIdent:
		p.backup()
		return p.parseMember(tok.pos, &ast.ImplicitReceiver{Span: ast.Span{Start: tok.pos, End: tok.pos}}, false)
	case itemNumber:
		var value, err = strconv.ParseFloat(tok.val, 64)
		if err != nil {
			p.errorf("invalid number %q", tok.val)
		}
		return &ast.LiteralPrimitive{Span: span, Value: value}
	case itemString:
		var value, err = unquoteString(tok.val)
		if err != nil {
			p.errorf("error unquoting %s: %s", tok.val, err)
		}
		return &ast.LiteralPrimitive{Span: span, Value: value}
	}
	p.unexpected(tok)
	return nil
}

// parseList parses comma-separated expressions up to the closing token.  The
// opening token has been read.
func (p *parser) parseList(closing itemType) []ast.Expr {
	var list []ast.Expr
	if p.peek().typ == closing {
		p.next()
		return nil
	}
	for {
		list = append(list, p.parsePipe())
		switch tok := p.next(); tok.typ {
		case itemComma:
		case closing:
			return list
		default:
			p.unexpected(tok)
		}
	}
}

// "{" has just been read.
// LiteralMap -> "{" [ key ":" Pipe ( "," key ":" Pipe )* ] "}"
func (p *parser) parseLiteralMap(open item) ast.Expr {
	var m = &ast.LiteralMap{}
	if p.peek().typ == itemRightBrace {
		p.next()
		m.Span = p.spanFrom(open.pos)
		return m
	}
	for {
		var key = p.next()
		switch key.typ {
		case itemIdent, itemKeyword:
			m.Keys = append(m.Keys, ast.LiteralMapKey{Key: key.val})
		case itemString:
			var s, err = unquoteString(key.val)
			if err != nil {
				p.errorf("error unquoting %s: %s", key.val, err)
			}
			m.Keys = append(m.Keys, ast.LiteralMapKey{Key: s, Quoted: true})
		default:
			p.errorf("expected identifier or string as map key, got %v", key)
		}
		p.expect(itemColon, "map literal")
		m.Values = append(m.Values, p.parsePipe())
		switch tok := p.next(); tok.typ {
		case itemComma:
		case itemRightBrace:
			m.Span = p.spanFrom(open.pos)
			return m
		default:
			p.unexpected(tok)
		}
	}
}

// Helpers ----------

func isBlank(s string) bool {
	for _, r := range s {
		if !isSpace(r) {
			return false
		}
	}
	return true
}

func emptyExpr(input string, offset ast.Pos) *ast.EmptyExpr {
	return &ast.EmptyExpr{Span: ast.Span{Start: offset, End: offset + ast.Pos(len(input))}}
}

// next returns the next token.
func (p *parser) next() item {
	var it = p.items[p.index]
	if p.index < len(p.items)-1 {
		p.index++
	}
	return it
}

// backup backs the input stream up one token.
func (p *parser) backup() {
	if p.index > 0 {
		p.index--
	}
}

// peek returns but does not consume the next token.
func (p *parser) peek() item {
	return p.items[p.index]
}

func (p *parser) peekOp(op string) bool {
	var tok = p.peek()
	return tok.typ == itemOperator && tok.val == op
}

func (p *parser) peekKeyword(kw string) bool {
	var tok = p.peek()
	return tok.typ == itemKeyword && tok.val == kw
}

// lastEnd returns the end of the most recently consumed token.
func (p *parser) lastEnd() ast.Pos {
	if p.index == 0 {
		return p.offset
	}
	return p.items[p.index-1].end()
}

func (p *parser) spanFrom(start ast.Pos) ast.Span {
	return ast.Span{Start: start, End: p.lastEnd()}
}

// expect consumes the next token and guarantees it has the required type.
func (p *parser) expect(expected itemType, context string) item {
	var tok = p.next()
	if tok.typ != expected {
		p.errorf("unexpected %v in %s", tok, context)
	}
	return tok
}

// unexpected complains about the token and terminates processing.
func (p *parser) unexpected(tok item) {
	if tok.typ == itemError {
		p.errorAt(tok.pos, "lexer error: %s", tok.val)
	}
	if tok.typ == itemEOF {
		p.errorAt(tok.pos, "unexpected end of expression")
	}
	p.errorAt(tok.pos, "unexpected token %v", tok)
}

// errorf formats the error at the current token and terminates processing.
func (p *parser) errorf(format string, args ...interface{}) {
	var tok = p.items[p.index]
	if p.index > 0 {
		tok = p.items[p.index-1]
	}
	p.errorAt(tok.pos, format, args...)
}

func (p *parser) errorAt(pos ast.Pos, format string, args ...interface{}) {
	panic(&Error{pos, fmt.Sprintf(format, args...), p.input})
}

// recover is the handler that turns panics into returns from the top level
// of the parse functions.
func (p *parser) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	*errp = e.(*Error)
}
