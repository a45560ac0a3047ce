package scan

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ValueKind classifies a literal in decorator arguments.
type ValueKind int

const (
	ValueOther ValueKind = iota // any other expression, kept as source text
	ValueString
	ValueNumber
	ValueBool
	ValueNull
	ValueIdent
	ValueArray
	ValueObject
	// ValueForwardRef is forwardRef(() => X); Elements holds X.
	ValueForwardRef
)

var valueKindNames = []string{
	ValueOther:      "other",
	ValueString:     "string",
	ValueNumber:     "number",
	ValueBool:       "bool",
	ValueNull:       "null",
	ValueIdent:      "identifier",
	ValueArray:      "array",
	ValueObject:     "object",
	ValueForwardRef: "forwardRef",
}

func (k ValueKind) String() string {
	return valueKindNames[k]
}

// Value is an expression in decorator arguments.
type Value struct {
	Kind ValueKind
	Text string // source text
	// Str is the decoded value of a string, or the name of an identifier.
	Str string
	// Quote is the delimiter of a string: ', " or `.
	Quote byte
	// Start and End are the byte offsets of the expression in the file.
	// For strings, ContentStart and ContentEnd delimit the text between the
	// quotes.
	Start, End               int
	ContentStart, ContentEnd int
	Elements                 []*Value
	Entries                  []*Entry
	// Multiline reports whether an object or array spans several lines.
	Multiline bool
}

// Entry is one property of an object literal.
type Entry struct {
	Key    string
	Quoted bool
	Value  *Value
}

// Get returns the value of the property key of an object, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != ValueObject {
		return nil
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// String returns the decoded string, or "" if v is not a string.
func (v *Value) String() string {
	if v == nil || v.Kind != ValueString {
		return ""
	}
	return v.Str
}

// Strings returns the strings of an array, or a single string as a list.
func (v *Value) Strings() []string {
	switch {
	case v == nil:
		return nil
	case v.Kind == ValueString:
		return []string{v.Str}
	case v.Kind == ValueArray:
		var out []string
		for _, e := range v.Elements {
			if e.Kind == ValueString {
				out = append(out, e.Str)
			}
		}
		return out
	}
	return nil
}

// Bool returns the value of a boolean literal, or def.
func (v *Value) Bool(def bool) bool {
	if v == nil || v.Kind != ValueBool {
		return def
	}
	return v.Text == "true"
}

// Unwrap returns the target of a forwardRef, or v itself.
func (v *Value) Unwrap() (*Value, bool) {
	if v != nil && v.Kind == ValueForwardRef && len(v.Elements) == 1 {
		return v.Elements[0], true
	}
	return v, false
}

func (s *scanner) value(n *sitter.Node) *Value {
	var v = &Value{
		Kind:  ValueOther,
		Text:  s.text(n),
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}
	v.Multiline = n.StartPoint().Row != n.EndPoint().Row
	switch n.Type() {
	case "string":
		s.stringValue(n, v)
	case "template_string":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == "template_substitution" {
				return v
			}
		}
		s.stringValue(n, v)
	case "number":
		v.Kind = ValueNumber
	case "true", "false":
		v.Kind = ValueBool
	case "null", "undefined":
		v.Kind = ValueNull
	case "identifier", "member_expression":
		v.Kind, v.Str = ValueIdent, v.Text
	case "array":
		v.Kind = ValueArray
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child.Type() != "comment" {
				v.Elements = append(v.Elements, s.value(child))
			}
		}
	case "object":
		v.Kind = ValueObject
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if e := s.entry(n.NamedChild(i)); e != nil {
				v.Entries = append(v.Entries, e)
			}
		}
	case "call_expression":
		if target := s.forwardRefTarget(n); target != nil {
			v.Kind = ValueForwardRef
			v.Elements = []*Value{s.value(target)}
		}
	case "parenthesized_expression", "as_expression":
		if n.NamedChildCount() > 0 {
			return s.value(n.NamedChild(0))
		}
	}
	return v
}

func (s *scanner) entry(n *sitter.Node) *Entry {
	switch n.Type() {
	case "pair":
		var key, value = n.ChildByFieldName("key"), n.ChildByFieldName("value")
		if key == nil || value == nil {
			return nil
		}
		var e = &Entry{Key: s.text(key), Value: s.value(value)}
		if key.Type() == "string" {
			e.Key, e.Quoted = s.value(key).Str, true
		}
		return e
	case "shorthand_property_identifier":
		var name = s.text(n)
		return &Entry{Key: name, Value: &Value{
			Kind:  ValueIdent,
			Text:  name,
			Str:   name,
			Start: int(n.StartByte()),
			End:   int(n.EndByte()),
		}}
	}
	return nil
}

// forwardRefTarget returns X of forwardRef(() => X), or nil.
func (s *scanner) forwardRefTarget(n *sitter.Node) *sitter.Node {
	var fn, args = n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
	if fn == nil || args == nil || lastName(s.text(fn)) != "forwardRef" || args.NamedChildCount() != 1 {
		return nil
	}
	var arrow = args.NamedChild(0)
	if arrow.Type() != "arrow_function" {
		return nil
	}
	var body = arrow.ChildByFieldName("body")
	if body == nil || body.Type() == "statement_block" {
		return nil
	}
	return body
}

func (s *scanner) stringValue(n *sitter.Node, v *Value) {
	v.Kind = ValueString
	var raw = v.Text
	if len(raw) < 2 {
		return
	}
	v.Quote = raw[0]
	v.ContentStart, v.ContentEnd = v.Start+1, v.End-1
	v.Str = unescape(raw[1 : len(raw)-1])
}

// unescape decodes the escape sequences of a JavaScript string literal.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		var c = s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'u':
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteByte(c)
		case 'x':
			if i+2 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(r))
					i += 2
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
