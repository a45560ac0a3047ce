// Package parse converts a component template into its in-memory
// representation (AST).
package parse

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/net/html"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/expr"
)

// Options control how templates are parsed.
type Options struct {
	// PreserveWhitespaces keeps whitespace-only text and runs of whitespace as
	// written.  By default whitespace-only text is dropped and each run of
	// whitespace is collapsed to one space.
	PreserveWhitespaces bool
}

// tree is the parser state for a single template.
type tree struct {
	path      string
	text      string
	opts      Options
	lex       *lexer
	lines     *ast.LineIndex
	token     [1]item // one-token lookahead
	peekCount int     // how many tokens have we backed up?
	preserve  int     // depth of elements preserving whitespace
	errs      errortypes.List
}

// voidElements never have content or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Parse parses a template with the default options.  The error, if any, is
// an errortypes.List of ParseErrors.
func Parse(text, filePath string) (*ast.File, error) {
	return Options{}.Parse(text, filePath)
}

// ParseGracefully parses a template, returning nil instead of an error if it
// is malformed.
func ParseGracefully(text, filePath string) *ast.File {
	var file, err = Parse(text, filePath)
	if err != nil {
		return nil
	}
	return file
}

// Parse parses a template.  filePath is used only in error messages.
func (o Options) Parse(text, filePath string) (file *ast.File, err error) {
	var t = &tree{
		path:  filePath,
		text:  text,
		opts:  o,
		lex:   lex(filePath, text),
		lines: ast.NewLineIndex(text),
	}
	defer t.recover(&err)

	var nodes = t.nodeList()
	switch tok := t.next(); tok.typ {
	case itemEOF:
	case itemTagClose:
		t.errorAt(tok.pos, "unexpected closing tag </%s>", tagCloseName(tok))
	default:
		t.errorAt(tok.pos, "unexpected %s", tok.val)
	}
	if err := t.errs.Err(); err != nil {
		t.errs.Sort()
		return nil, err
	}
	return &ast.File{
		Path:  filePath,
		Text:  text,
		Nodes: nodes,
		Lines: t.lines,
	}, nil
}

// nodeList:
//	(text | element | block | icu)*
// Terminates at the end of input or at a token that closes the enclosing
// construct, which is left for the caller.
func (t *tree) nodeList() []ast.Node {
	var nodes []ast.Node
	for {
		var tok = t.next()
		switch tok.typ {
		case itemEOF, itemTagClose, itemBlockBranch, itemBlockClose, itemIcuCaseEnd:
			t.backup()
			return nodes
		case itemComment:
			// dropped
		case itemText:
			if n := t.textNode(tok); n != nil {
				nodes = append(nodes, n)
			}
		case itemRawText:
			nodes = append(nodes, &ast.Text{Span: span(tok), Value: tok.val})
		case itemTagOpen:
			nodes = append(nodes, t.element(tok))
		case itemBlockOpen:
			nodes = append(nodes, t.block(tok))
		case itemIcuStart:
			nodes = append(nodes, t.icu(tok))
		default:
			t.unexpected(tok, "template content")
		}
	}
}

// textNode returns a Text or BoundText for the given text, or nil if it is
// whitespace that is not preserved.
func (t *tree) textNode(tok item) ast.Node {
	var preserve = t.preserveWhitespace()
	if !preserve && allSpace(tok.val) {
		return nil
	}
	var interp, err = expr.ParseInterpolation(tok.val, tok.pos)
	if err != nil {
		t.exprError(err)
		return &ast.Text{Span: span(tok), Value: tok.val}
	}
	if interp == nil {
		return &ast.Text{Span: span(tok), Value: t.textValue(tok.val, preserve)}
	}
	for i, s := range interp.Strings {
		interp.Strings[i] = t.textValue(s, preserve)
	}
	return &ast.BoundText{Span: span(tok), Value: interp}
}

// textValue decodes character references and, unless preserve is set,
// collapses whitespace.
func (t *tree) textValue(s string, preserve bool) string {
	s = html.UnescapeString(s)
	if !preserve {
		s = collapseWhitespace(s)
	}
	return s
}

func (t *tree) preserveWhitespace() bool {
	return t.opts.PreserveWhitespaces || t.preserve > 0
}

// element:
//	"<" name attr* ( "/>" | ">" nodeList "</" name ">" )
func (t *tree) element(open item) ast.Node {
	var name = open.val[1:]
	var attrs []rawAttr
	var end item
loop:
	for {
		var tok = t.next()
		switch tok.typ {
		case itemAttrName:
			var a = rawAttr{name: tok}
			if t.peek().typ == itemAttrValue {
				var v = t.next()
				a.value = &v
			}
			attrs = append(attrs, a)
		case itemTagEnd, itemTagSelfClose:
			end = tok
			break loop
		default:
			t.unexpected(tok, "start tag <"+name+">")
		}
	}

	var set = t.classify(name, attrs)
	var (
		startSpan = ast.Span{Start: open.pos, End: end.end()}
		endSpan   *ast.Span
		body      []ast.Node
	)
	if end.typ == itemTagEnd && !voidElements[strings.ToLower(name)] {
		var preserve = strings.EqualFold(name, "pre") || set.hasAttr(preserveWhitespacesAttr)
		if preserve {
			t.preserve++
		}
		body = t.nodeList()
		if preserve {
			t.preserve--
		}
		var close = t.next()
		if close.typ != itemTagClose {
			t.errorAt(open.pos, "unclosed element <%s>", name)
		}
		if closeName := tagCloseName(close); !strings.EqualFold(closeName, name) {
			t.errorAt(close.pos, "unexpected closing tag </%s>; expected </%s>", closeName, name)
		}
		endSpan = &ast.Span{Start: close.pos, End: close.end()}
	}

	var whole = startSpan
	if endSpan != nil {
		whole.End = endSpan.End
	}

	var node ast.Node
	switch name {
	case "ng-template":
		node = &ast.Template{
			Span:       whole,
			TagName:    name,
			Attributes: set.attrs,
			Inputs:     set.inputs,
			Outputs:    set.outputs,
			Variables:  set.vars,
			References: set.refs,
			Body:       body,
		}
	case "ng-content":
		for _, child := range body {
			if text, ok := child.(*ast.Text); !ok || !allSpace(text.Value) {
				t.errorAt(open.pos, "<ng-content> element cannot have content")
			}
		}
		var selector = "*"
		for _, a := range set.attrs {
			if a.Name == "select" && strings.TrimSpace(a.Value) != "" {
				selector = strings.TrimSpace(a.Value)
			}
		}
		node = &ast.Content{Span: whole, Selector: selector, Attributes: set.attrs}
	default:
		if len(set.vars) > 0 {
			var v = set.vars[0]
			t.errorAt(v.Start, "\"let-\" is only supported on ng-template elements")
		}
		node = &ast.Element{
			Span:       whole,
			Name:       name,
			StartSpan:  startSpan,
			EndSpan:    endSpan,
			Attributes: set.attrs,
			Inputs:     set.inputs,
			Outputs:    set.outputs,
			References: set.refs,
			Body:       body,
		}
	}

	if !set.structural {
		return node
	}
	return &ast.Template{
		Span:          whole,
		TagName:       name,
		TemplateAttrs: set.templateAttrs,
		Variables:     set.templateVars,
		Body:          []ast.Node{node},
	}
}

// parseExpr parses a binding expression, recording any error and
// substituting an empty expression so that parsing can continue.
func (t *tree) parseExpr(text string, pos ast.Pos) ast.Expr {
	var e, err = expr.Parse(text, pos)
	if err != nil {
		t.exprError(err)
		return &ast.EmptyExpr{Span: ast.Span{Start: pos, End: pos + ast.Pos(len(text))}}
	}
	return e
}

// parseAction parses an event handler like parseExpr.
func (t *tree) parseAction(text string, pos ast.Pos) ast.Expr {
	var e, err = expr.ParseAction(text, pos)
	if err != nil {
		t.exprError(err)
		return &ast.EmptyExpr{Span: ast.Span{Start: pos, End: pos + ast.Pos(len(text))}}
	}
	return e
}

// exprError records an expression syntax error without terminating the parse.
func (t *tree) exprError(err error) {
	var pos ast.Pos
	if perr, ok := err.(*expr.Error); ok {
		pos = perr.Pos
	}
	var line, col = t.lines.Location(pos)
	t.errs.Add(errortypes.ParseError, t.path, line+1, col+1, "%s", err.Error())
}

// Helpers ----------

func span(tok item) ast.Span {
	return ast.Span{Start: tok.pos, End: tok.end()}
}

func tagCloseName(tok item) string {
	return strings.TrimSpace(tok.val[2 : len(tok.val)-1])
}

// next returns the next token.
func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	var tok = t.token[t.peekCount]
	if tok.typ == itemError {
		t.errorAt(tok.pos, "%s", tok.val)
	}
	return tok
}

// backup backs the input stream up one token.
func (t *tree) backup() {
	t.peekCount++
}

// peek returns but does not consume the next token.
func (t *tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

// expect consumes the next token and guarantees it has the required type.
func (t *tree) expect(expected itemType, context string) item {
	var tok = t.next()
	if tok.typ != expected {
		t.unexpected(tok, fmt.Sprintf("%s (expected %v)", context, expected))
	}
	return tok
}

// unexpected complains about the token and terminates processing.
func (t *tree) unexpected(tok item, context string) {
	t.errorAt(tok.pos, "unexpected %v %v in %s", tok.typ, tok, context)
}

// errorAt formats the error at the given position and terminates processing.
func (t *tree) errorAt(pos ast.Pos, format string, args ...interface{}) {
	var line, col = t.lines.Location(pos)
	panic(errortypes.Newf(errortypes.ParseError, t.path, line+1, col+1, format, args...))
}

// recover is the handler that turns panics into returns from the top level of Parse.
func (t *tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	t.lex = nil
	t.errs = append(t.errs, e.(*errortypes.Error))
	t.errs.Sort()
	*errp = t.errs
}
