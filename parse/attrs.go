package parse

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/expr"
)

// rawAttr is an attribute as lexed: its name and optional value token.
type rawAttr struct {
	name  item
	value *item
}

func (a rawAttr) keySpan() ast.Span {
	return span(a.name)
}

// span covers the name and, if present, the value including its quotes.
func (a rawAttr) span() ast.Span {
	var s = span(a.name)
	if a.value != nil {
		s.End = a.value.end()
	}
	return s
}

// valueText returns the value without quotes and its absolute position.
// valueSpan is nil if the attribute has no value.
func (a rawAttr) valueText() (value string, pos ast.Pos, valueSpan *ast.Span) {
	if a.value == nil {
		return "", a.name.end(), nil
	}
	value, pos = a.value.val, a.value.pos
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value, pos = value[1:n-1], pos+1
	}
	return value, pos, &ast.Span{Start: pos, End: pos + ast.Pos(len(value))}
}

// attrSet holds the classified attributes of one element.
type attrSet struct {
	attrs   []*ast.TextAttribute
	inputs  []*ast.BoundAttribute
	outputs []*ast.BoundEvent
	refs    []*ast.Reference
	vars    []*ast.Variable

	// structural directive (*dir) bindings
	structural    bool
	templateAttrs []ast.Node
	templateVars  []*ast.Variable
}

func (s *attrSet) hasAttr(name string) bool {
	for _, a := range s.attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Attribute name prefixes, in the order they are tried.
var bindingPrefixes = []struct {
	prefix string
	kind   bindingKind
}{
	{"bind-", bindProperty},
	{"let-", bindVariable},
	{"ref-", bindReference},
	{"on-", bindEvent},
	{"bindon-", bindTwoWay},
}

type bindingKind int

const (
	bindNone bindingKind = iota
	bindProperty
	bindVariable
	bindReference
	bindEvent
	bindTwoWay
	bindAnimation
)

// bindingName classifies an attribute name, returning the kind of binding
// and the bare target name.
func bindingName(name string) (bindingKind, string) {
	for _, p := range bindingPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.kind, name[len(p.prefix):]
		}
	}
	switch {
	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]"):
		return bindTwoWay, name[2 : len(name)-2]
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		return bindProperty, name[1 : len(name)-1]
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		return bindEvent, name[1 : len(name)-1]
	case strings.HasPrefix(name, "#"):
		return bindReference, name[1:]
	case strings.HasPrefix(name, "@"):
		return bindAnimation, name[1:]
	}
	return bindNone, name
}

// classify sorts the attributes of an element into static attributes,
// bindings, references, variables and structural directive bindings.
func (t *tree) classify(tag string, attrs []rawAttr) *attrSet {
	var set = &attrSet{}
	for _, a := range attrs {
		var name = a.name.val
		if strings.HasPrefix(name, "*") {
			if set.structural {
				t.errorAt(a.name.pos, "can't have multiple template bindings on one element; use only one attribute prefixed with *")
			}
			set.structural = true
			t.templateBindings(set, a)
			continue
		}

		var value, pos, valueSpan = a.valueText()
		var kind, target = bindingName(name)
		if kind != bindNone && target == "" {
			t.errorAt(a.name.pos, "binding name is missing in %q", name)
		}
		switch kind {
		case bindProperty:
			set.inputs = append(set.inputs, t.boundAttribute(a, target, t.parseExpr(value, pos)))
		case bindAnimation:
			var literal = &ast.LiteralPrimitive{Span: ast.Span{Start: pos, End: pos + ast.Pos(len(value))}, Value: value}
			set.inputs = append(set.inputs, t.boundAttribute(a, "@"+target, literal))
		case bindEvent:
			set.outputs = append(set.outputs, t.boundEvent(a, target, t.parseAction(value, pos), valueSpan))
		case bindTwoWay:
			var bound = t.parseExpr(value, pos)
			set.inputs = append(set.inputs, t.boundAttribute(a, target, bound))
			var handler, ok = twoWayHandler(bound)
			if !ok {
				t.errorAt(a.name.pos, "unsupported expression in a two-way binding %q", name)
			}
			set.outputs = append(set.outputs, t.boundEvent(a, target+"Change", handler, valueSpan))
		case bindReference:
			if strings.Contains(target, "-") {
				t.errorAt(a.name.pos, "\"-\" is not allowed in reference names")
			}
			set.refs = append(set.refs, &ast.Reference{
				Span:      a.span(),
				Name:      target,
				Value:     value,
				KeySpan:   a.keySpan(),
				ValueSpan: valueSpan,
			})
		case bindVariable:
			if tag != "ng-template" {
				set.vars = append(set.vars, &ast.Variable{Span: a.span(), Name: target})
				continue
			}
			set.vars = append(set.vars, &ast.Variable{
				Span:      a.span(),
				Name:      target,
				Value:     value,
				KeySpan:   a.keySpan(),
				ValueSpan: valueSpan,
			})
		default:
			var interp, err = expr.ParseInterpolation(value, pos)
			if err != nil {
				t.exprError(err)
			}
			if interp != nil {
				set.inputs = append(set.inputs, &ast.BoundAttribute{
					Span:      a.span(),
					Name:      name,
					Type:      ast.BindingProperty,
					Value:     interp,
					KeySpan:   a.keySpan(),
					ValueSpan: valueSpan,
					RawName:   name,
				})
				continue
			}
			set.attrs = append(set.attrs, &ast.TextAttribute{
				Span:      a.span(),
				Name:      name,
				Value:     html.UnescapeString(value),
				KeySpan:   a.keySpan(),
				ValueSpan: valueSpan,
			})
		}
	}
	return set
}

// boundAttribute creates a property, attribute, class, style or animation
// binding for target, e.g. "attr.role" or "style.width.px".
func (t *tree) boundAttribute(a rawAttr, target string, value ast.Expr) *ast.BoundAttribute {
	var _, _, valueSpan = a.valueText()
	var b = &ast.BoundAttribute{
		Span:      a.span(),
		Name:      target,
		Type:      ast.BindingProperty,
		Value:     value,
		KeySpan:   a.keySpan(),
		ValueSpan: valueSpan,
		RawName:   a.name.val,
	}
	switch {
	case strings.HasPrefix(target, "attr."):
		b.Type, b.Name = ast.BindingAttribute, target[len("attr."):]
	case strings.HasPrefix(target, "class."):
		b.Type, b.Name = ast.BindingClass, target[len("class."):]
	case strings.HasPrefix(target, "style."):
		b.Type, b.Name = ast.BindingStyle, target[len("style."):]
		if i := strings.IndexByte(b.Name, '.'); i >= 0 {
			b.Name, b.Unit = b.Name[:i], b.Name[i+1:]
		}
	case strings.HasPrefix(target, "@"):
		b.Type, b.Name = ast.BindingAnimation, target[1:]
	}
	if b.Name == "" {
		t.errorAt(a.name.pos, "binding name is missing in %q", a.name.val)
	}
	return b
}

// boundEvent creates a listener for target, e.g. "click", "window:resize"
// or "@open.done".
func (t *tree) boundEvent(a rawAttr, target string, handler ast.Expr, handlerSpan *ast.Span) *ast.BoundEvent {
	var e = &ast.BoundEvent{
		Span:        a.span(),
		Name:        target,
		Type:        ast.EventRegular,
		Handler:     handler,
		KeySpan:     a.keySpan(),
		HandlerSpan: handlerSpan,
	}
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		e.Target, e.Name = e.Name[:i], e.Name[i+1:]
	}
	if strings.HasPrefix(e.Name, "@") {
		e.Type, e.Name = ast.EventAnimation, e.Name[1:]
		if i := strings.IndexByte(e.Name, '.'); i >= 0 {
			e.Name, e.Phase = e.Name[:i], strings.ToLower(e.Name[i+1:])
		}
		if e.Phase != "" && e.Phase != "start" && e.Phase != "done" {
			t.errorAt(a.name.pos, "the provided animation output phase value %q for %q is not supported (use start or done)", e.Phase, e.Name)
		}
	}
	return e
}

// twoWayHandler builds the `target = $event` handler for a two-way binding.
func twoWayHandler(value ast.Expr) (ast.Expr, bool) {
	var span = value.SourceSpan()
	var event = &ast.PropertyRead{
		Span:     span,
		NameSpan: span,
		Receiver: &ast.ImplicitReceiver{Span: ast.Span{Start: span.Start, End: span.Start}},
		Name:     "$event",
	}
	switch v := value.(type) {
	case *ast.PropertyRead:
		return &ast.PropertyWrite{Span: v.Span, NameSpan: v.NameSpan, Receiver: v.Receiver, Name: v.Name, Value: event}, true
	case *ast.KeyedRead:
		return &ast.KeyedWrite{Span: v.Span, Receiver: v.Receiver, Key: v.Key, Value: event}, true
	}
	return nil, false
}

// templateBindings parses the microsyntax of a *dir attribute into the
// attributes and variables of the implicit template.
func (t *tree) templateBindings(set *attrSet, a rawAttr) {
	var value, pos, _ = a.valueText()
	var keySpan = a.keySpan()
	keySpan.Start++ // skip *
	var bindings, err = expr.ParseTemplateBindings(a.name.val[1:], keySpan, value, pos)
	if err != nil {
		t.exprError(err)
		return
	}
	for _, b := range bindings {
		switch {
		case b.IsVariable:
			set.templateVars = append(set.templateVars, &ast.Variable{
				Span:      b.Span,
				Name:      b.Key,
				Value:     b.VarValue,
				KeySpan:   b.KeySpan,
				ValueSpan: b.ValueSpan,
			})
		case b.Value == nil:
			set.templateAttrs = append(set.templateAttrs, &ast.TextAttribute{
				Span:    b.Span,
				Name:    b.Key,
				KeySpan: b.KeySpan,
			})
		default:
			set.templateAttrs = append(set.templateAttrs, &ast.BoundAttribute{
				Span:      b.Span,
				Name:      b.Key,
				Type:      ast.BindingProperty,
				Value:     b.Value,
				KeySpan:   b.KeySpan,
				ValueSpan: b.ValueSpan,
				RawName:   b.Key,
			})
		}
	}
}
