// Package ast contains definitions for the in-memory representation of a
// component template: markup nodes and the binding expressions embedded in
// them.
//
// Both node families are closed variants.  Only the types in this package
// implement Node and Expr, and every consumer switches over the concrete
// types exhaustively.
package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Node represents any singular piece of a template.  For example, an element,
// a run of text or a for-loop block.
type Node interface {
	Kind() Kind       // Kind identifies the concrete node type.
	SourceSpan() Span // absolute byte range of the node in the template text
	String() string   // String returns the template source representation of this node.
	node()
}

// ParentNode is any Node that owns other nodes, such as the attributes and
// children of an element.
type ParentNode interface {
	Node
	Children() []Node
}

// Kind identifies the type of a template node.
type Kind int

const (
	KindElement Kind = iota + 1
	KindText
	KindBoundText
	KindTextAttribute
	KindBoundAttribute
	KindBoundEvent
	KindReference
	KindVariable
	KindTemplate
	KindForLoopBlock
	KindForLoopEmpty
	KindIfBlock
	KindIfBlockBranch
	KindSwitchBlock
	KindSwitchCase
	KindIcu
	KindIcuCase
	KindContent

	numKinds
)

var kindNames = [...]string{
	KindElement:        "Element",
	KindText:           "Text",
	KindBoundText:      "BoundText",
	KindTextAttribute:  "TextAttribute",
	KindBoundAttribute: "BoundAttribute",
	KindBoundEvent:     "BoundEvent",
	KindReference:      "Reference",
	KindVariable:       "Variable",
	KindTemplate:       "Template",
	KindForLoopBlock:   "ForLoopBlock",
	KindForLoopEmpty:   "ForLoopEmpty",
	KindIfBlock:        "IfBlock",
	KindIfBlockBranch:  "IfBlockBranch",
	KindSwitchBlock:    "SwitchBlock",
	KindSwitchCase:     "SwitchCase",
	KindIcu:            "Icu",
	KindIcuCase:        "IcuCase",
	KindContent:        "Content",
}

func (k Kind) String() string {
	if k > 0 && k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// File is the parsed representation of one template.
type File struct {
	Path  string
	Text  string
	Nodes []Node
	Lines *LineIndex
}

// Location returns the 0-based line and column of p within the template.
func (f *File) Location(p Pos) (line, col int) {
	if f.Lines == nil {
		f.Lines = NewLineIndex(f.Text)
	}
	return f.Lines.Location(p)
}

func (f *File) String() string {
	return nodesString(f.Nodes)
}

// Element is an HTML element, component host or other markup tag.
type Element struct {
	Span
	Name       string
	StartSpan  Span  // the opening tag
	EndSpan    *Span // the closing tag; nil for void and self-closing elements
	Attributes []*TextAttribute
	Inputs     []*BoundAttribute
	Outputs    []*BoundEvent
	References []*Reference
	Body       []Node
}

func (n *Element) Kind() Kind { return KindElement }

func (n *Element) Children() []Node {
	return appendOwned(nil, n.Attributes, n.Inputs, n.Outputs, n.References, nil, n.Body)
}

func (n *Element) String() string {
	var b bytes.Buffer
	b.WriteString("<" + n.Name)
	writeAttrs(&b, n.Attributes, n.Inputs, n.Outputs, n.References, nil)
	if n.EndSpan == nil && len(n.Body) == 0 {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteString(">")
	b.WriteString(nodesString(n.Body))
	b.WriteString("</" + n.Name + ">")
	return b.String()
}

// Text is static text content.
type Text struct {
	Span
	Value string
}

func (n *Text) Kind() Kind     { return KindText }
func (n *Text) String() string { return n.Value }

// BoundText is text content containing interpolations.  Value is always an
// *Interpolation.
type BoundText struct {
	Span
	Value Expr
}

func (n *BoundText) Kind() Kind     { return KindBoundText }
func (n *BoundText) String() string { return n.Value.String() }

// TextAttribute is a static attribute, name="value".
type TextAttribute struct {
	Span
	Name      string
	Value     string
	KeySpan   Span
	ValueSpan *Span // nil when the attribute has no value at all
}

func (n *TextAttribute) Kind() Kind { return KindTextAttribute }

func (n *TextAttribute) String() string {
	if n.ValueSpan == nil {
		return n.Name
	}
	return n.Name + "=" + strconv.Quote(n.Value)
}

// BindingType distinguishes the targets a bound attribute may write to.
type BindingType int

const (
	BindingProperty  BindingType = iota // [prop]
	BindingAttribute                    // [attr.name]
	BindingClass                        // [class.name]
	BindingStyle                        // [style.name]
	BindingAnimation                    // [@trigger]
)

var bindingPrefixes = map[BindingType]string{
	BindingAttribute: "attr.",
	BindingClass:     "class.",
	BindingStyle:     "style.",
	BindingAnimation: "@",
}

// BoundAttribute is a one-way binding from an expression to a property,
// attribute, class, style or animation trigger.
type BoundAttribute struct {
	Span
	Name      string // target name without prefix, e.g. "title" for [attr.title]
	Type      BindingType
	Unit      string // style unit, e.g. "px" for [style.width.px]
	Value     Expr
	KeySpan   Span
	ValueSpan *Span // nil when the attribute has no value at all
	RawName   string // the attribute name as written, e.g. "[routerLink]"
}

func (n *BoundAttribute) Kind() Kind { return KindBoundAttribute }

func (n *BoundAttribute) String() string {
	var name = n.RawName
	if name == "" {
		name = "[" + bindingPrefixes[n.Type] + n.Name + "]"
	}
	if n.ValueSpan == nil {
		return name
	}
	return name + "=" + strconv.Quote(n.Value.String())
}

// EventType distinguishes DOM events from animation callbacks.
type EventType int

const (
	EventRegular   EventType = iota // (click)
	EventAnimation                  // (@trigger.done)
)

// BoundEvent is an event listener, (name)="handler".
type BoundEvent struct {
	Span
	Name        string
	Type        EventType
	Target      string // "window", "document" or "body" for (window:resize)
	Phase       string // animation phase, e.g. "done"
	Handler     Expr
	KeySpan     Span
	HandlerSpan *Span
}

func (n *BoundEvent) Kind() Kind { return KindBoundEvent }

// FullName returns the event name including target and phase qualifiers.
func (n *BoundEvent) FullName() string {
	var name = n.Name
	if n.Type == EventAnimation {
		name = "@" + name
		if n.Phase != "" {
			name += "." + n.Phase
		}
	}
	if n.Target != "" {
		name = n.Target + ":" + name
	}
	return name
}

func (n *BoundEvent) String() string {
	return "(" + n.FullName() + ")=" + strconv.Quote(n.Handler.String())
}

// Reference is a local reference, #name or #name="exportAs".
type Reference struct {
	Span
	Name      string
	Value     string
	KeySpan   Span
	ValueSpan *Span
}

func (n *Reference) Kind() Kind { return KindReference }

func (n *Reference) String() string {
	if n.Value == "" {
		return "#" + n.Name
	}
	return "#" + n.Name + "=" + strconv.Quote(n.Value)
}

// Variable is a template variable: let-name="value" on ng-template, a
// microsyntax `let` binding, a loop item or an implicit loop variable.
type Variable struct {
	Span
	Name      string
	Value     string // context property the variable reads; "$implicit" if empty
	KeySpan   Span
	ValueSpan *Span
}

func (n *Variable) Kind() Kind { return KindVariable }

func (n *Variable) String() string {
	if n.Value == "" {
		return "let-" + n.Name
	}
	return "let-" + n.Name + "=" + strconv.Quote(n.Value)
}

// Template is an embedded view: an explicit <ng-template> element, or the
// implicit template created by a structural directive such as *ngIf.
type Template struct {
	Span
	TagName       string // "ng-template", or the host element name for *dir
	Attributes    []*TextAttribute
	Inputs        []*BoundAttribute
	Outputs       []*BoundEvent
	TemplateAttrs []Node // *dir microsyntax bindings: TextAttribute or BoundAttribute
	Variables     []*Variable
	References    []*Reference
	Body          []Node
}

func (n *Template) Kind() Kind { return KindTemplate }

func (n *Template) Children() []Node {
	var nodes = appendOwned(nil, n.Attributes, n.Inputs, n.Outputs, n.References, n.Variables, nil)
	nodes = append(nodes, n.TemplateAttrs...)
	return append(nodes, n.Body...)
}

func (n *Template) String() string {
	var b bytes.Buffer
	b.WriteString("<ng-template")
	writeAttrs(&b, n.Attributes, n.Inputs, n.Outputs, n.References, n.Variables)
	b.WriteString(">")
	b.WriteString(nodesString(n.Body))
	b.WriteString("</ng-template>")
	return b.String()
}

// ForLoopBlock is {#for item of items; track expr}...{/for}.
type ForLoopBlock struct {
	Span
	Item             *Variable
	Expression       Expr // the iterable
	TrackBy          Expr
	ContextVariables []*Variable // $index, $first, ... in declaration order
	Body             []Node
	Empty            *ForLoopEmpty
}

func (n *ForLoopBlock) Kind() Kind { return KindForLoopBlock }

func (n *ForLoopBlock) Children() []Node {
	var nodes = []Node{n.Item}
	for _, v := range n.ContextVariables {
		nodes = append(nodes, v)
	}
	nodes = append(nodes, n.Body...)
	if n.Empty != nil {
		nodes = append(nodes, n.Empty)
	}
	return nodes
}

func (n *ForLoopBlock) String() string {
	var s = fmt.Sprintf("{#for %s of %s; track %s}%s", n.Item.Name, n.Expression, n.TrackBy, nodesString(n.Body))
	if n.Empty != nil {
		s += n.Empty.String()
	}
	return s + "{/for}"
}

// ForLoopEmpty is the {:empty} branch of a for loop.
type ForLoopEmpty struct {
	Span
	Body []Node
}

func (n *ForLoopEmpty) Kind() Kind       { return KindForLoopEmpty }
func (n *ForLoopEmpty) Children() []Node { return n.Body }
func (n *ForLoopEmpty) String() string   { return "{:empty}" + nodesString(n.Body) }

// IfBlock is {#if cond}...{:else if cond}...{:else}...{/if}.
type IfBlock struct {
	Span
	Branches []*IfBlockBranch
}

func (n *IfBlock) Kind() Kind { return KindIfBlock }

func (n *IfBlock) Children() []Node {
	var nodes = make([]Node, len(n.Branches))
	for i, b := range n.Branches {
		nodes[i] = b
	}
	return nodes
}

func (n *IfBlock) String() string {
	var b bytes.Buffer
	for i, branch := range n.Branches {
		switch {
		case i == 0:
			b.WriteString("{#if ")
			b.WriteString(branch.Condition.String())
			if branch.Alias != nil {
				b.WriteString("; as " + branch.Alias.Name)
			}
			b.WriteString("}")
		case branch.Condition != nil:
			b.WriteString("{:else if " + branch.Condition.String() + "}")
		default:
			b.WriteString("{:else}")
		}
		b.WriteString(nodesString(branch.Body))
	}
	b.WriteString("{/if}")
	return b.String()
}

// IfBlockBranch is one branch of an if block.  Condition is nil for {:else}.
type IfBlockBranch struct {
	Span
	Condition Expr
	Alias     *Variable // {#if expr; as alias}, first branch only
	Body      []Node
}

func (n *IfBlockBranch) Kind() Kind { return KindIfBlockBranch }

func (n *IfBlockBranch) Children() []Node {
	if n.Alias == nil {
		return n.Body
	}
	return append([]Node{n.Alias}, n.Body...)
}

func (n *IfBlockBranch) String() string { return nodesString(n.Body) }

// SwitchBlock is {#switch expr}{:case value}...{:default}...{/switch}.
type SwitchBlock struct {
	Span
	Expression Expr
	Cases      []*SwitchCase
}

func (n *SwitchBlock) Kind() Kind { return KindSwitchBlock }

func (n *SwitchBlock) Children() []Node {
	var nodes = make([]Node, len(n.Cases))
	for i, c := range n.Cases {
		nodes[i] = c
	}
	return nodes
}

func (n *SwitchBlock) String() string {
	var b bytes.Buffer
	b.WriteString("{#switch " + n.Expression.String() + "}")
	for _, c := range n.Cases {
		b.WriteString(c.String())
	}
	b.WriteString("{/switch}")
	return b.String()
}

// SwitchCase is one case of a switch block.  Expression is nil for {:default}.
type SwitchCase struct {
	Span
	Expression Expr
	Body       []Node
}

func (n *SwitchCase) Kind() Kind       { return KindSwitchCase }
func (n *SwitchCase) Children() []Node { return n.Body }

func (n *SwitchCase) String() string {
	if n.Expression == nil {
		return "{:default}" + nodesString(n.Body)
	}
	return "{:case " + n.Expression.String() + "}" + nodesString(n.Body)
}

// Icu is an ICU message expression, {count, plural, =0 {none} other {many}}.
type Icu struct {
	Span
	Switch Expr
	Type   string // "plural" or "select"
	Cases  []*IcuCase
}

func (n *Icu) Kind() Kind { return KindIcu }

func (n *Icu) Children() []Node {
	var nodes = make([]Node, len(n.Cases))
	for i, c := range n.Cases {
		nodes[i] = c
	}
	return nodes
}

func (n *Icu) String() string {
	var b bytes.Buffer
	b.WriteString("{" + n.Switch.String() + ", " + n.Type + ",")
	for _, c := range n.Cases {
		b.WriteString(" " + c.String())
	}
	b.WriteString("}")
	return b.String()
}

// IcuCase is one case of an ICU expression.
type IcuCase struct {
	Span
	Value string // e.g. "=0", "other", "male"
	Body  []Node
}

func (n *IcuCase) Kind() Kind       { return KindIcuCase }
func (n *IcuCase) Children() []Node { return n.Body }
func (n *IcuCase) String() string   { return n.Value + " {" + nodesString(n.Body) + "}" }

// Content is a content projection slot, <ng-content select="...">.
type Content struct {
	Span
	Selector   string // "*" when no select attribute is given
	Attributes []*TextAttribute
}

func (n *Content) Kind() Kind { return KindContent }

func (n *Content) Children() []Node {
	return appendOwned(nil, n.Attributes, nil, nil, nil, nil, nil)
}

func (n *Content) String() string {
	var b bytes.Buffer
	b.WriteString("<ng-content")
	writeAttrs(&b, n.Attributes, nil, nil, nil, nil)
	b.WriteString("></ng-content>")
	return b.String()
}

func (*Element) node()        {}
func (*Text) node()           {}
func (*BoundText) node()      {}
func (*TextAttribute) node()  {}
func (*BoundAttribute) node() {}
func (*BoundEvent) node()     {}
func (*Reference) node()      {}
func (*Variable) node()       {}
func (*Template) node()       {}
func (*ForLoopBlock) node()   {}
func (*ForLoopEmpty) node()   {}
func (*IfBlock) node()        {}
func (*IfBlockBranch) node()  {}
func (*SwitchBlock) node()    {}
func (*SwitchCase) node()     {}
func (*Icu) node()            {}
func (*IcuCase) node()        {}
func (*Content) node()        {}

func appendOwned(nodes []Node, attrs []*TextAttribute, inputs []*BoundAttribute,
	outputs []*BoundEvent, refs []*Reference, vars []*Variable, body []Node) []Node {
	for _, n := range attrs {
		nodes = append(nodes, n)
	}
	for _, n := range inputs {
		nodes = append(nodes, n)
	}
	for _, n := range outputs {
		nodes = append(nodes, n)
	}
	for _, n := range refs {
		nodes = append(nodes, n)
	}
	for _, n := range vars {
		nodes = append(nodes, n)
	}
	return append(nodes, body...)
}

func writeAttrs(b *bytes.Buffer, attrs []*TextAttribute, inputs []*BoundAttribute,
	outputs []*BoundEvent, refs []*Reference, vars []*Variable) {
	for _, n := range appendOwned(nil, attrs, inputs, outputs, refs, vars, nil) {
		b.WriteString(" ")
		b.WriteString(n.String())
	}
}

func nodesString(nodes []Node) string {
	var parts = make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, "")
}
