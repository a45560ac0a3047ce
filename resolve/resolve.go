// Package resolve binds a parsed template to the directives and pipes in
// scope: which directives match each element, which directive consumes each
// binding, what each #reference points at, and which local symbol (if any)
// every unqualified name in an expression reads.
package resolve

import (
	"fmt"
	"strings"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/selector"
	"golang.org/x/net/html/atom"
)

// Bound is the result of resolving a template.
type Bound struct {
	File *ast.File

	directives     map[ast.Node][]*Directive
	consumers      map[ast.Node][]*Directive
	references     map[*ast.Reference]ReferenceTarget
	targets        map[ast.Expr]ast.Node
	views          map[ast.Node]ast.Node
	levels         map[ast.Node]int
	usedPipes      []*Pipe
	usedDirectives []*Directive
}

// ReferenceTarget is what a #reference points at: a directive, or the
// element or template it is declared on when Directive is nil.
type ReferenceTarget struct {
	Directive *Directive
	Node      ast.Node
}

// Directives returns the directives matched on an element or template, the
// component (if any) first.
func (b *Bound) Directives(n ast.Node) []*Directive {
	return b.directives[n]
}

// Component returns the component matched on an element, or nil.
func (b *Bound) Component(n ast.Node) *Directive {
	var dirs = b.directives[n]
	if len(dirs) > 0 && dirs[0].IsComponent {
		return dirs[0]
	}
	return nil
}

// Consumers returns the directives whose input or output receives the given
// attribute, bound attribute or event.  An empty result means the binding
// targets the DOM node.
func (b *Bound) Consumers(n ast.Node) []*Directive {
	return b.consumers[n]
}

// Reference returns the target of a reference.
func (b *Bound) Reference(ref *ast.Reference) (ReferenceTarget, bool) {
	var t, ok = b.references[ref]
	return t, ok
}

// Target returns the local symbol read or called by an expression with an
// implicit receiver: an *ast.Reference or *ast.Variable.  It returns nil for
// names that read the component context.
func (b *Bound) Target(e ast.Expr) ast.Node {
	return b.targets[e]
}

// ViewOf returns the node whose embedded view declares the given reference or
// variable: a Template, ForLoopBlock, ForLoopEmpty, IfBlockBranch or
// SwitchCase.  It returns nil for symbols of the root view.
func (b *Bound) ViewOf(symbol ast.Node) ast.Node {
	return b.views[symbol]
}

// Level returns the nesting depth of a view, 0 for the root view (a nil node).
func (b *Bound) Level(view ast.Node) int {
	return b.levels[view]
}

// UsedPipes returns the pipes referenced by the template in first-use order.
func (b *Bound) UsedPipes() []*Pipe {
	return b.usedPipes
}

// UsedDirectives returns the matched directives in first-use order.  On one
// element the component comes before the other directives.
func (b *Bound) UsedDirectives() []*Directive {
	return b.usedDirectives
}

// Pipe returns the used pipe with the given template name.
func (b *Bound) Pipe(name string) *Pipe {
	for _, p := range b.usedPipes {
		if p.Name == name {
			return p
		}
	}
	return nil
}

type resolver struct {
	file   *ast.File
	scope  *Scope
	bound  *Bound
	scopes map[ast.Node]*symbolScope
	errs   errortypes.List
}

// Resolve binds the template to the directives and pipes of scope.  The
// returned Bound is usable even when resolution errors are reported; the
// error is an errortypes.List of ResolutionErrors.
func Resolve(file *ast.File, scope *Scope) (*Bound, error) {
	if scope == nil {
		scope = &Scope{}
	}
	var r = &resolver{
		file:  file,
		scope: scope,
		bound: &Bound{
			File:       file,
			directives: make(map[ast.Node][]*Directive),
			consumers:  make(map[ast.Node][]*Directive),
			references: make(map[*ast.Reference]ReferenceTarget),
			targets:    make(map[ast.Expr]ast.Node),
			views:      make(map[ast.Node]ast.Node),
			levels:     make(map[ast.Node]int),
		},
		scopes: make(map[ast.Node]*symbolScope),
	}
	for _, d := range scope.Directives {
		if d.selectors != nil {
			continue
		}
		var list, err = selector.Parse(d.Selector)
		if err != nil {
			r.errs = append(r.errs, errortypes.Wrap(errortypes.ParseError, file.Path,
				fmt.Errorf("directive %s: %w", d.Name, err)))
			continue
		}
		d.selectors = list
	}
	var root = r.buildScope(nil, nil, nil, file.Nodes)
	r.bindNodes(root, file.Nodes)
	r.errs.Sort()
	return r.bound, r.errs.Err()
}

func (r *resolver) errorf(span ast.Span, format string, args ...interface{}) {
	var line, col = r.file.Location(span.Start)
	r.errs.Add(errortypes.ResolutionError, r.file.Path, line+1, col+1, format, args...)
}

// symbolScope holds the references and variables declared by one view.
type symbolScope struct {
	parent  *symbolScope
	view    ast.Node
	level   int
	symbols map[string]ast.Node
}

func (s *symbolScope) lookup(name string) ast.Node {
	for ; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

func (r *resolver) declare(s *symbolScope, name string, symbol ast.Node, span ast.Span) {
	if _, ok := s.symbols[name]; ok {
		r.errorf(span, "%q is declared more than once in the same view", name)
		return
	}
	s.symbols[name] = symbol
	r.bound.views[symbol] = s.view
}

// buildScope creates the scope of a view and of every view nested in it.
// References are declared before any expression is bound, so they are
// visible throughout their view.
func (r *resolver) buildScope(parent *symbolScope, view ast.Node, vars []*ast.Variable, body []ast.Node) *symbolScope {
	var s = &symbolScope{parent: parent, view: view, symbols: make(map[string]ast.Node)}
	if parent != nil {
		s.level = parent.level + 1
	}
	r.scopes[view] = s
	r.bound.levels[view] = s.level
	for _, v := range vars {
		r.declare(s, v.Name, v, v.KeySpan)
	}
	r.collect(s, body)
	return s
}

func (r *resolver) collect(s *symbolScope, nodes []ast.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Element:
			for _, ref := range n.References {
				r.declare(s, ref.Name, ref, ref.KeySpan)
			}
			r.collect(s, n.Body)
		case *ast.Template:
			for _, ref := range n.References {
				r.declare(s, ref.Name, ref, ref.KeySpan)
			}
			r.buildScope(s, n, n.Variables, n.Body)
		case *ast.ForLoopBlock:
			var vars = append([]*ast.Variable{n.Item}, n.ContextVariables...)
			r.buildScope(s, n, vars, n.Body)
			if n.Empty != nil {
				r.buildScope(s, n.Empty, nil, n.Empty.Body)
			}
		case *ast.IfBlock:
			for _, branch := range n.Branches {
				var vars []*ast.Variable
				if branch.Alias != nil {
					vars = []*ast.Variable{branch.Alias}
				}
				r.buildScope(s, branch, vars, branch.Body)
			}
		case *ast.SwitchBlock:
			for _, c := range n.Cases {
				r.buildScope(s, c, nil, c.Body)
			}
		case *ast.Icu:
			for _, c := range n.Cases {
				r.collect(s, c.Body)
			}
		case *ast.Text, *ast.BoundText, *ast.Content:
		default:
			panic(fmt.Sprintf("resolve: unexpected %v in template body", n.Kind()))
		}
	}
}

func (r *resolver) bindNodes(s *symbolScope, nodes []ast.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Element:
			r.matchElement(n)
			r.bindReferences(n, n.References)
			r.bindAttrs(s, n, n.Attributes, n.Inputs, n.Outputs)
			r.bindNodes(s, n.Body)
		case *ast.Template:
			r.matchTemplate(n)
			r.bindReferences(n, n.References)
			r.bindAttrs(s, n, n.Attributes, n.Inputs, n.Outputs)
			for _, attr := range n.TemplateAttrs {
				switch attr := attr.(type) {
				case *ast.TextAttribute:
					r.bindConsumers(n, attr, attr.Name, true)
				case *ast.BoundAttribute:
					r.bindConsumers(n, attr, attr.Name, true)
					r.bindExpr(s, attr.Value)
				}
			}
			r.bindNodes(r.scopes[n], n.Body)
		case *ast.ForLoopBlock:
			r.bindExpr(s, n.Expression)
			var inner = r.scopes[n]
			r.bindExpr(inner, n.TrackBy)
			r.bindNodes(inner, n.Body)
			if n.Empty != nil {
				r.bindNodes(r.scopes[n.Empty], n.Empty.Body)
			}
		case *ast.IfBlock:
			for _, branch := range n.Branches {
				r.bindExpr(s, branch.Condition)
				r.bindNodes(r.scopes[branch], branch.Body)
			}
		case *ast.SwitchBlock:
			r.bindExpr(s, n.Expression)
			for _, c := range n.Cases {
				r.bindExpr(s, c.Expression)
				r.bindNodes(r.scopes[c], c.Body)
			}
		case *ast.Icu:
			r.bindExpr(s, n.Switch)
			for _, c := range n.Cases {
				r.bindNodes(s, c.Body)
			}
		case *ast.BoundText:
			r.bindExpr(s, n.Value)
		case *ast.Text, *ast.Content:
		default:
			panic(fmt.Sprintf("resolve: unexpected %v in template body", n.Kind()))
		}
	}
}

func (r *resolver) bindAttrs(s *symbolScope, owner ast.Node, attrs []*ast.TextAttribute,
	inputs []*ast.BoundAttribute, outputs []*ast.BoundEvent) {
	for _, attr := range attrs {
		r.bindConsumers(owner, attr, attr.Name, true)
	}
	for _, in := range inputs {
		if in.Type == ast.BindingProperty {
			r.bindConsumers(owner, in, in.Name, true)
		}
		r.bindExpr(s, in.Value)
	}
	for _, out := range outputs {
		if out.Type == ast.EventRegular && out.Target == "" {
			r.bindConsumers(owner, out, out.Name, false)
		}
		r.bindExpr(s, out.Handler)
	}
}

func (r *resolver) bindConsumers(owner, binding ast.Node, name string, input bool) {
	for _, d := range r.bound.directives[owner] {
		var ok bool
		if input {
			_, ok = d.Input(name)
		} else {
			_, ok = d.Output(name)
		}
		if ok {
			r.bound.consumers[binding] = append(r.bound.consumers[binding], d)
		}
	}
}

func (r *resolver) bindReferences(owner ast.Node, refs []*ast.Reference) {
	for _, ref := range refs {
		if ref.Value == "" {
			var target = ReferenceTarget{Node: owner}
			if c := r.bound.Component(owner); c != nil {
				target.Directive = c
			}
			r.bound.references[ref] = target
			continue
		}
		var found bool
		for _, d := range r.bound.directives[owner] {
			if d.exports(ref.Value) {
				r.bound.references[ref] = ReferenceTarget{Directive: d, Node: owner}
				found = true
				break
			}
		}
		if !found {
			var span = ref.KeySpan
			if ref.ValueSpan != nil {
				span = *ref.ValueSpan
			}
			r.errorf(span, "no directive found with exportAs %q", ref.Value)
		}
	}
}

// bindExpr resolves every name read, called or written on the implicit
// receiver and records the pipes the expression uses.
func (r *resolver) bindExpr(s *symbolScope, e ast.Expr) {
	ast.InspectExpr(e, func(e ast.Expr) bool {
		switch e := e.(type) {
		case *ast.PropertyRead:
			if isImplicit(e.Receiver) {
				r.resolveName(s, e, e.Name)
			}
		case *ast.MethodCall:
			if isImplicit(e.Receiver) {
				r.resolveName(s, e, e.Name)
			}
		case *ast.PropertyWrite:
			if isImplicit(e.Receiver) {
				if sym := s.lookup(e.Name); sym != nil {
					r.errorf(e.NameSpan, "cannot assign to %s %q", symbolKind(sym), e.Name)
				}
			}
		case *ast.PipeCall:
			r.usePipe(e)
		}
		return true
	})
}

func (r *resolver) resolveName(s *symbolScope, e ast.Expr, name string) {
	if sym := s.lookup(name); sym != nil {
		r.bound.targets[e] = sym
	}
}

func (r *resolver) usePipe(e *ast.PipeCall) {
	var p = r.scope.pipe(e.Name)
	if p == nil {
		r.errorf(e.NameSpan, "the pipe %q could not be found", e.Name)
		return
	}
	for _, used := range r.bound.usedPipes {
		if used == p {
			return
		}
	}
	r.bound.usedPipes = append(r.bound.usedPipes, p)
}

func isImplicit(e ast.Expr) bool {
	var r, ok = e.(*ast.ImplicitReceiver)
	return ok && !r.This
}

func symbolKind(sym ast.Node) string {
	if _, ok := sym.(*ast.Reference); ok {
		return "reference"
	}
	return "template variable"
}

func (r *resolver) matchElement(n *ast.Element) {
	var target = matchTarget(n.Name, n.Attributes, n.Inputs, n.Outputs, nil)
	r.matchNode(n, n.Name, n.StartSpan, target)
	if r.scope.Strict && r.bound.Component(n) == nil && !knownElement(n.Name) {
		r.errorf(n.StartSpan, "%q is not a known element", n.Name)
	}
}

func (r *resolver) matchTemplate(n *ast.Template) {
	var target = matchTarget("ng-template", n.Attributes, n.Inputs, n.Outputs, n.TemplateAttrs)
	r.matchNode(n, n.TagName, n.Span, target)
}

func (r *resolver) matchNode(n ast.Node, tagName string, span ast.Span, target selector.Target) {
	var components, others []*Directive
	for _, d := range r.scope.Directives {
		if d.selectors == nil || !selector.MatchesAny(d.selectors, target) {
			continue
		}
		if d.IsComponent {
			components = append(components, d)
		} else {
			others = append(others, d)
		}
	}
	if len(components) > 1 {
		var names = make([]string, len(components))
		for i, c := range components {
			names[i] = c.Name
		}
		r.errorf(span, "multiple components match node with tagname %s: %s", tagName, strings.Join(names, ", "))
		components = components[:1]
	}
	var matched = append(components, others...)
	if len(matched) == 0 {
		return
	}
	r.bound.directives[n] = matched
	for _, d := range matched {
		r.useDirective(d)
	}
}

func (r *resolver) useDirective(d *Directive) {
	for _, used := range r.bound.usedDirectives {
		if used == d {
			return
		}
	}
	r.bound.usedDirectives = append(r.bound.usedDirectives, d)
}

// matchTarget builds the attributes visible to selector matching: static
// attributes with their values, and the names of property bindings, events
// and structural template attributes.
func matchTarget(name string, attrs []*ast.TextAttribute, inputs []*ast.BoundAttribute,
	outputs []*ast.BoundEvent, templateAttrs []ast.Node) selector.Target {
	var list []selector.Attr
	for _, a := range attrs {
		list = append(list, selector.Attr{Name: a.Name, Value: a.Value})
	}
	for _, in := range inputs {
		if in.Type == ast.BindingProperty {
			list = append(list, selector.Attr{Name: in.Name})
		}
	}
	for _, out := range outputs {
		if out.Type == ast.EventRegular {
			list = append(list, selector.Attr{Name: out.Name})
		}
	}
	for _, n := range templateAttrs {
		switch n := n.(type) {
		case *ast.TextAttribute:
			list = append(list, selector.Attr{Name: n.Name, Value: n.Value})
		case *ast.BoundAttribute:
			list = append(list, selector.Attr{Name: n.Name})
		}
	}
	return selector.NewTarget(name, list...)
}

// knownElement reports whether name is an HTML, SVG or MathML element, or
// a custom element.  Elements in the svg and math namespaces are always
// known.
func knownElement(name string) bool {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		var ns = strings.TrimPrefix(name[:i], ":")
		if ns == "svg" || ns == "math" {
			return true
		}
		name = name[i+1:]
	}
	if strings.Contains(name, "-") {
		return true
	}
	var lower = strings.ToLower(name)
	return atom.Lookup([]byte(lower)) != 0 || foreignElements[lower]
}

// SVG and MathML element names, lowercased, that are not also HTML atoms
var foreignElements = map[string]bool{}

func init() {
	for _, name := range strings.Fields(`
		circle clippath defs desc ellipse feblend fecolormatrix
		fecomponenttransfer fecomposite feconvolvematrix fediffuselighting
		fedisplacementmap fedistantlight fedropshadow feflood fefunca fefuncb
		fefuncg fefuncr fegaussianblur feimage femerge femergenode
		femorphology feoffset fepointlight fespecularlighting fespotlight
		fetile feturbulence filter foreignobject g image line lineargradient
		marker mask metadata mpath path pattern polygon polyline
		radialgradient rect set stop switch symbol text textpath tspan use
		view animate animatemotion animatetransform
		maction maligngroup malignmark menclose merror mfenced mfrac
		mglyph mi mlabeledtr mlongdiv mmultiscripts mn mo mover mpadded
		mphantom mroot mrow ms mscarries mscarry msgroup msline mspace
		msqrt msrow mstack mstyle msub msup msubsup mtable mtd mtext mtr
		munder munderover semantics annotation annotation-xml`) {
		foreignElements[name] = true
	}
}
