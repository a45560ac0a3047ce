package ngjs

import (
	"strconv"
	"strings"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/i18n"
	"github.com/robfig/ngc/output"
)

// Markers separating the sections of an attribute constant.
const (
	markerClasses  = 1
	markerStyles   = 2
	markerBindings = 3
	markerTemplate = 4
)

// attrSet builds the attribute array of one element or template, used by
// the runtime for directive matching and content projection.
type attrSet struct {
	static   []output.Expr
	classes  []string
	styles   []string
	bindings []string
	seen     map[string]bool
}

func isI18nAttr(name string) bool {
	return name == "i18n" || strings.HasPrefix(name, "i18n-")
}

func (s *attrSet) attribute(a *ast.TextAttribute) {
	switch {
	case isI18nAttr(a.Name):
	case a.Name == "class":
		s.classes = append(s.classes, strings.Fields(a.Value)...)
	case a.Name == "style":
		s.styles = append(s.styles, parseStyle(a.Value)...)
	default:
		s.static = append(s.static, output.Lit(a.Name), output.Lit(a.Value))
	}
}

// binding records a name matched against directive inputs and outputs.
func (s *attrSet) binding(name string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[name] {
		s.seen[name] = true
		s.bindings = append(s.bindings, name)
	}
}

func (s *attrSet) expr(templateAttrs []string) []output.Expr {
	var out = s.static
	if len(s.classes) > 0 {
		out = append(out, output.Lit(markerClasses))
		for _, c := range s.classes {
			out = append(out, output.Lit(c))
		}
	}
	if len(s.styles) > 0 {
		out = append(out, output.Lit(markerStyles))
		for _, st := range s.styles {
			out = append(out, output.Lit(st))
		}
	}
	if len(s.bindings) > 0 {
		out = append(out, output.Lit(markerBindings))
		for _, b := range s.bindings {
			out = append(out, output.Lit(b))
		}
	}
	if len(templateAttrs) > 0 {
		out = append(out, output.Lit(markerTemplate))
		for _, name := range templateAttrs {
			out = append(out, output.Lit(name))
		}
	}
	return out
}

// parseStyle splits a static style attribute into property, value pairs.
func parseStyle(value string) []string {
	var out []string
	for _, decl := range strings.Split(value, ";") {
		var colon = strings.Index(decl, ":")
		if colon < 0 {
			continue
		}
		var prop = strings.TrimSpace(decl[:colon])
		var val = strings.TrimSpace(decl[colon+1:])
		if prop != "" {
			out = append(out, prop, val)
		}
	}
	return out
}

// constRef adds the attribute array to the consts and returns its index,
// or nil when it is empty.
func (c *componentCompiler) constRef(entries []output.Expr) output.Expr {
	if len(entries) == 0 {
		return nil
	}
	return output.Lit(c.addConst(output.Arr(entries...)))
}

func (c *componentCompiler) elementAttrs(n *ast.Element) output.Expr {
	var s attrSet
	for _, a := range n.Attributes {
		s.attribute(a)
	}
	for _, in := range n.Inputs {
		if in.Type == ast.BindingProperty && in.Name != "class" && in.Name != "style" {
			s.binding(in.Name)
		}
	}
	for _, out := range n.Outputs {
		if out.Type == ast.EventRegular {
			s.binding(out.Name)
		}
	}
	return c.constRef(s.expr(nil))
}

func (c *componentCompiler) templateAttrs(n *ast.Template) output.Expr {
	var s attrSet
	for _, a := range n.Attributes {
		s.attribute(a)
	}
	for _, in := range n.Inputs {
		if in.Type == ast.BindingProperty {
			s.binding(in.Name)
		}
	}
	for _, out := range n.Outputs {
		if out.Type == ast.EventRegular {
			s.binding(out.Name)
		}
	}
	var names []string
	for _, attr := range n.TemplateAttrs {
		switch attr := attr.(type) {
		case *ast.TextAttribute:
			names = append(names, attr.Name)
		case *ast.BoundAttribute:
			names = append(names, attr.Name)
		}
	}
	return c.constRef(s.expr(names))
}

// translate returns the children of an element, replaced by their
// translation when the element is marked for i18n, holds only text and a
// translation exists.
func (v *viewCompiler) translate(n *ast.Element) []ast.Node {
	var messages = v.comp.meta.Messages
	if messages == nil {
		return n.Body
	}
	var marker *ast.TextAttribute
	for _, a := range n.Attributes {
		if a.Name == "i18n" {
			marker = a
		}
	}
	if marker == nil || len(n.Body) == 0 {
		return n.Body
	}
	var content strings.Builder
	for _, child := range n.Body {
		var t, ok = child.(*ast.Text)
		if !ok {
			return n.Body
		}
		content.WriteString(t.Value)
	}
	var meta = i18n.ParseMeta(marker.Value)
	var id = meta.ID
	if id == "" {
		id = i18n.MessageID(i18n.NormalizeText(content.String()), meta.Meaning)
	}
	var translated, ok = messages.Translate(id)
	if !ok {
		return n.Body
	}
	return []ast.Node{&ast.Text{Span: n.Body[0].SourceSpan(), Value: translated}}
}

// icu emits an ICU message: the message with �N� placeholders as a
// constant, and one ɵɵi18nExp per placeholder value.
func (v *viewCompiler) icu(n *ast.Icu) {
	var slot = v.allocSlot()
	var exprs []ast.Expr
	var b strings.Builder
	v.icuMessage(&b, n, &exprs)
	v.create(i18nStart, output.Lit(slot), output.Lit(v.comp.addConst(output.Lit(b.String()))))

	var conv = v.converter(v.scope, &v.temps, false)
	var stmts []output.Stmt
	for _, e := range exprs {
		stmts = append(stmts, v.instruction(i18nExp, conv.convert(e)))
		v.bindingSlots++
	}
	stmts = append(stmts, v.instruction(i18nApply, output.Lit(slot)))
	v.updateAt(slot, stmts...)
}

func placeholder(i int) string {
	return "�" + strconv.Itoa(i) + "�"
}

func (v *viewCompiler) icuMessage(b *strings.Builder, n *ast.Icu, exprs *[]ast.Expr) {
	*exprs = append(*exprs, n.Switch)
	b.WriteString("{" + placeholder(len(*exprs)-1) + ", " + n.Type + ",")
	for _, c := range n.Cases {
		b.WriteString(" " + c.Value + " {")
		for _, child := range c.Body {
			switch child := child.(type) {
			case *ast.Text:
				b.WriteString(child.Value)
			case *ast.BoundText:
				var interp, ok = child.Value.(*ast.Interpolation)
				if !ok {
					continue
				}
				for i, s := range interp.Strings {
					b.WriteString(s)
					if i < len(interp.Expressions) {
						*exprs = append(*exprs, interp.Expressions[i])
						b.WriteString(placeholder(len(*exprs) - 1))
					}
				}
			case *ast.Icu:
				v.icuMessage(b, child, exprs)
			default:
				v.comp.errorf(errortypes.ParseError, child.SourceSpan(),
					"%s is not supported inside an ICU expression", strings.ToLower(child.Kind().String()))
			}
		}
		b.WriteString("}")
	}
	b.WriteString("}")
}
