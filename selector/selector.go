// Package selector parses the CSS-like selectors that directives and
// projection slots are declared with, and matches them against elements.
//
// The supported grammar is a comma separated list of compound selectors:
//
//	selector:
//		[element | "*"] { "." class | "#" id | "[" name ["=" value] "]" | ":not(" simple ")" }
//
// Descendant and sibling combinators are not supported.
package selector

import (
	"fmt"
	"strings"
)

// Selector is one compound selector, such as `button[mat-button]:not(.x)`.
type Selector struct {
	Element string   // "" or "*" match any element
	Classes []string // lowercased
	Attrs   []Attr
	Not     []*Selector
}

// Attr is an attribute constraint.  An empty Value matches any value.
type Attr struct {
	Name  string
	Value string // lowercased
}

// Flags used in the runtime encoding of a selector.
const (
	FlagNot       = 1
	FlagAttribute = 2
	FlagElement   = 4
	FlagClass     = 8
)

// Parse parses a selector list.
func Parse(s string) ([]*Selector, error) {
	var p = parser{input: s}
	var list []*Selector
	for {
		p.skipSpace()
		var sel, err = p.compound(false)
		if err != nil {
			return nil, err
		}
		if p.pos < len(p.input) && p.input[p.pos] == ')' {
			return nil, p.errorf("unexpected )")
		}
		list = append(list, sel)
		p.skipSpace()
		if p.pos == len(p.input) {
			return list, nil
		}
		if p.input[p.pos] != ',' {
			return nil, p.errorf("combinators are not supported")
		}
		p.pos++
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) []*Selector {
	var list, err = Parse(s)
	if err != nil {
		panic(err)
	}
	return list
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("selector %q at %d: %s", p.input, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && strings.IndexByte(" \t\r\n", p.input[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) name() string {
	var start = p.pos
	for p.pos < len(p.input) {
		var ch = p.input[p.pos]
		if ch == '-' || ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

// compound parses one compound selector, stopping at a space, comma, closing
// paren or the end of input.
func (p *parser) compound(inNot bool) (*Selector, error) {
	var sel = &Selector{}
	var start = p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '*' {
		p.pos++
		sel.Element = "*"
	} else if el := p.name(); el != "" {
		sel.Element = el
	}
	for p.pos < len(p.input) {
		switch ch := p.input[p.pos]; {
		case ch == '.' || ch == '#':
			p.pos++
			var n = p.name()
			if n == "" {
				return nil, p.errorf("expected name after %q", ch)
			}
			if ch == '.' {
				sel.Classes = append(sel.Classes, strings.ToLower(n))
			} else {
				sel.Attrs = append(sel.Attrs, Attr{"id", strings.ToLower(n)})
			}
		case ch == '[':
			var attr, err = p.attr()
			if err != nil {
				return nil, err
			}
			sel.Attrs = append(sel.Attrs, attr)
		case strings.HasPrefix(p.input[p.pos:], ":not("):
			if inNot {
				return nil, p.errorf("nesting :not in a selector is not allowed")
			}
			p.pos += len(":not(")
			p.skipSpace()
			var not, err = p.compound(true)
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if p.pos < len(p.input) && p.input[p.pos] == ',' {
				return nil, p.errorf("multiple selectors in :not are not supported")
			}
			if p.pos == len(p.input) || p.input[p.pos] != ')' {
				return nil, p.errorf("unclosed :not(")
			}
			p.pos++
			sel.Not = append(sel.Not, not)
		case ch == ',' || ch == ')' || ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			if p.pos == start {
				return nil, p.errorf("empty selector")
			}
			return sel.normalize(), nil
		default:
			return nil, p.errorf("unexpected %q", ch)
		}
	}
	if p.pos == start {
		return nil, p.errorf("empty selector")
	}
	return sel.normalize(), nil
}

// attr parses [name], [name=value], [name="value"] or [name='value'].
func (p *parser) attr() (Attr, error) {
	p.pos++ // [
	var start = p.pos
	for p.pos < len(p.input) && strings.IndexByte("=]", p.input[p.pos]) < 0 {
		if p.input[p.pos] == '\\' {
			p.pos++
		} else if p.input[p.pos] == '$' {
			return Attr{}, p.errorf(`unescaped "$" is not supported; escape it with "\$"`)
		}
		p.pos++
	}
	if p.pos >= len(p.input) {
		return Attr{}, p.errorf("unclosed [")
	}
	var attr = Attr{Name: unescape(p.input[start:p.pos])}
	if attr.Name == "" {
		return Attr{}, p.errorf("empty attribute name")
	}
	if p.input[p.pos] == '=' {
		p.pos++
		var value string
		if p.pos < len(p.input) && (p.input[p.pos] == '"' || p.input[p.pos] == '\'') {
			var quote = p.input[p.pos]
			var end = strings.IndexByte(p.input[p.pos+1:], quote)
			if end < 0 {
				return Attr{}, p.errorf("unterminated attribute value")
			}
			value = p.input[p.pos+1 : p.pos+1+end]
			p.pos += end + 2
		} else {
			var end = strings.IndexByte(p.input[p.pos:], ']')
			if end < 0 {
				return Attr{}, p.errorf("unclosed [")
			}
			value = p.input[p.pos : p.pos+end]
			p.pos += end
		}
		attr.Value = strings.ToLower(value)
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return Attr{}, p.errorf("unclosed [")
	}
	p.pos++
	return attr, nil
}

func unescape(s string) string {
	return strings.Replace(s, `\`, "", -1)
}

// normalize gives a selector consisting only of :not() parts the "*" element.
func (s *Selector) normalize() *Selector {
	if len(s.Not) > 0 && s.Element == "" && len(s.Classes) == 0 && len(s.Attrs) == 0 {
		s.Element = "*"
	}
	return s
}

func (s *Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Element)
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	for _, a := range s.Attrs {
		var name = strings.Replace(a.Name, "$", `\$`, -1)
		if a.Value != "" {
			b.WriteString("[" + name + "=" + a.Value + "]")
		} else {
			b.WriteString("[" + name + "]")
		}
	}
	for _, n := range s.Not {
		b.WriteString(":not(" + n.String() + ")")
	}
	return b.String()
}

// ListString formats a selector list the way Parse accepts it.
func ListString(list []*Selector) string {
	var parts = make([]string, len(list))
	for i, s := range list {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// R3 returns the flat runtime encoding of the selector: the element name
// ("" for any), attribute name/value pairs, then FlagClass and the class
// names, followed by one negative group per :not().  Entries are strings or
// ints.
func (s *Selector) R3() []interface{} {
	var out = []interface{}{}
	if s.Element != "*" {
		out = append(out, s.Element)
	} else {
		out = append(out, "")
	}
	out = appendAttrs(out, s.Attrs)
	out = appendClasses(out, s.Classes)
	for _, n := range s.Not {
		switch {
		case n.Element != "":
			out = append(out, FlagNot|FlagElement, n.Element)
			out = appendAttrs(out, n.Attrs)
			out = appendClasses(out, n.Classes)
		case len(n.Attrs) > 0:
			out = append(out, FlagNot|FlagAttribute)
			out = appendAttrs(out, n.Attrs)
			out = appendClasses(out, n.Classes)
		case len(n.Classes) > 0:
			out = append(out, FlagNot|FlagClass)
			for _, c := range n.Classes {
				out = append(out, c)
			}
		}
	}
	return out
}

func appendAttrs(out []interface{}, attrs []Attr) []interface{} {
	for _, a := range attrs {
		out = append(out, a.Name, a.Value)
	}
	return out
}

func appendClasses(out []interface{}, classes []string) []interface{} {
	if len(classes) == 0 {
		return out
	}
	out = append(out, FlagClass)
	for _, c := range classes {
		out = append(out, c)
	}
	return out
}
