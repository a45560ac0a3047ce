package expr

import (
	"strings"

	"github.com/robfig/ngc/ast"
)

// TemplateBinding is one binding of a structural directive's microsyntax.
//
// For *ngFor="let item of items; index as i; trackBy: byId" the bindings are
//
//	ngFor                       (expression binding, no value)
//	item      = $implicit       (variable binding)
//	ngForOf   = items           (expression binding)
//	i         = index           (variable binding)
//	ngForTrackBy = byId         (expression binding)
type TemplateBinding struct {
	Key        string
	KeySpan    ast.Span
	IsVariable bool
	Value      ast.Expr // expression bindings; nil when the key has no value
	VarValue   string   // variable bindings: the context property to read
	Span       ast.Span
	ValueSpan  *ast.Span
}

// ParseTemplateBindings parses the value of a *directive attribute.
// templateKey is the directive name without the "*" and keySpan its position.
func ParseTemplateBindings(templateKey string, keySpan ast.Span, input string, offset ast.Pos) (bindings []TemplateBinding, err error) {
	var p = newParser(input, offset, false)
	defer p.recover(&err)

	bindings = p.directiveKeywordBindings(templateKey, keySpan)
	for p.peek().typ != itemEOF {
		if b, ok := p.letBinding(); ok {
			bindings = append(bindings, b)
		} else {
			var key = p.bindingKey()
			var keySpan = ast.Span{Start: key.pos, End: key.end()}
			if b, ok := p.asBinding(key.val, keySpan); ok {
				bindings = append(bindings, b)
			} else {
				bindings = append(bindings,
					p.directiveKeywordBindings(templateKey+capitalize(key.val), keySpan)...)
			}
		}
		p.statementTerminator()
	}
	return bindings, nil
}

// directiveKeywordBindings parses `key [:] expression [as alias]`.  The key
// has already been consumed.
func (p *parser) directiveKeywordBindings(key string, keySpan ast.Span) []TemplateBinding {
	if p.peek().typ == itemColon {
		p.next()
	}
	var binding = TemplateBinding{Key: key, KeySpan: keySpan, Span: keySpan}
	switch tok := p.peek(); {
	case tok.typ == itemEOF, tok.typ == itemSemi, tok.typ == itemComma, p.peekKeyword("let"):
		// no value
	default:
		binding.Value = p.parsePipe()
		var valueSpan = p.spanFrom(tok.pos)
		binding.ValueSpan = &valueSpan
		binding.Span.End = valueSpan.End
	}
	var bindings = []TemplateBinding{binding}
	if as, ok := p.asBinding(key, keySpan); ok {
		bindings = append(bindings, as)
	}
	p.statementTerminator()
	return bindings
}

// letBinding parses `let name [= key]`.
func (p *parser) letBinding() (TemplateBinding, bool) {
	if !p.peekKeyword("let") {
		return TemplateBinding{}, false
	}
	var let = p.next()
	var name = p.bindingKey()
	var binding = TemplateBinding{
		Key:        name.val,
		KeySpan:    ast.Span{Start: name.pos, End: name.end()},
		IsVariable: true,
		VarValue:   "$implicit",
	}
	if p.peekOp("=") {
		p.next()
		var value = p.bindingKey()
		binding.VarValue = value.val
		binding.ValueSpan = &ast.Span{Start: value.pos, End: value.end()}
	}
	binding.Span = p.spanFrom(let.pos)
	return binding, true
}

// asBinding parses `as alias`, binding alias to the context property value.
func (p *parser) asBinding(value string, valueSpan ast.Span) (TemplateBinding, bool) {
	if !p.peekKeyword("as") {
		return TemplateBinding{}, false
	}
	p.next()
	var alias = p.bindingKey()
	return TemplateBinding{
		Key:        alias.val,
		KeySpan:    ast.Span{Start: alias.pos, End: alias.end()},
		IsVariable: true,
		VarValue:   value,
		Span:       ast.Span{Start: valueSpan.Start, End: alias.end()},
		ValueSpan:  &valueSpan,
	}, true
}

// bindingKey consumes an identifier used as a binding key.
func (p *parser) bindingKey() item {
	var tok = p.next()
	if tok.typ != itemIdent && tok.typ != itemKeyword {
		p.errorf("expected identifier in template bindings, got %v", tok)
	}
	return tok
}

func (p *parser) statementTerminator() {
	if tok := p.peek(); tok.typ == itemSemi || tok.typ == itemComma {
		p.next()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
