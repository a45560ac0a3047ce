package ngjs

import (
	"regexp"
	"strconv"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/resolve"
	"github.com/robfig/ngc/selector"
)

// componentCompiler holds the state shared by all the views of one
// component template.
type componentCompiler struct {
	meta  *ComponentMeta
	bound *resolve.Bound
	file  *ast.File
	pool  *ConstantPool

	// consts is the component-wide array of attribute, reference and
	// message constants that creation instructions refer to by index.
	consts     []output.Expr
	constIndex map[string]int

	refSlots  map[*ast.Reference]int
	names     int
	fns       []output.Stmt // embedded view functions, innermost first
	ngContent []string      // selectors of the projection slots
	errs      errortypes.List
}

func newComponentCompiler(meta *ComponentMeta, bound *resolve.Bound, pool *ConstantPool) *componentCompiler {
	if bound == nil {
		bound = &resolve.Bound{File: &ast.File{}}
	}
	var file = bound.File
	if file == nil {
		file = &ast.File{}
	}
	return &componentCompiler{
		meta:       meta,
		bound:      bound,
		file:       file,
		pool:       pool,
		constIndex: make(map[string]int),
		refSlots:   make(map[*ast.Reference]int),
	}
}

// addConst returns the index of e in the consts array, adding it if new.
func (c *componentCompiler) addConst(e output.Expr) int {
	var key = output.PrintExpr(e, output.NewImports())
	if i, ok := c.constIndex[key]; ok {
		return i
	}
	var i = len(c.consts)
	c.consts = append(c.consts, e)
	c.constIndex[key] = i
	return i
}

func (c *componentCompiler) errorf(kind errortypes.Kind, span ast.Span, format string, args ...interface{}) {
	var line, col = c.file.Location(span.Start)
	c.errs.Add(kind, c.file.Path, line+1, col+1, format, args...)
}

// viewCompiler generates the template function of one view: the root view
// of the template or an embedded view.
type viewCompiler struct {
	comp        *componentCompiler
	level       int
	contextName string
	fnName      string
	host        bool // compiling host bindings rather than a template

	creation []output.Stmt
	update   []output.Stmt
	scope    *bindingScope
	temps    []string

	slots        int
	bindingSlots int
	pureSlots    int
	// pureOffsets are the slot arguments of pipe and pure function calls,
	// relative to the first slot after the bindings.
	pureOffsets []*output.Literal
	selected    int
	currentView string

	// nested builds the embedded views declared by this view, once all
	// its slots are known.
	nested []func()
}

func newViewCompiler(comp *componentCompiler, level int, contextName string) *viewCompiler {
	var v = &viewCompiler{
		comp:        comp,
		level:       level,
		contextName: contextName,
		fnName:      contextName + "_Template",
	}
	v.scope = newBindingScope(v)
	return v
}

var nonIdent = regexp.MustCompile(`\W`)

func sanitizeIdentifier(s string) string {
	return nonIdent.ReplaceAllString(s, "_")
}

// embedded returns the compiler of an embedded view of v.
func (v *viewCompiler) embedded(suffix string) *viewCompiler {
	return newViewCompiler(v.comp, v.level+1, v.contextName+"_"+suffix)
}

// build visits the nodes of the view and returns its template function.
func (v *viewCompiler) build(nodes []ast.Node) *output.Function {
	v.visitAll(nodes)
	for _, build := range v.nested {
		build()
	}
	for _, lit := range v.pureOffsets {
		lit.Value = lit.Value.(int) + v.bindingSlots
	}

	var creation []output.Stmt
	if v.currentView != "" {
		creation = append(creation, constDecl(v.currentView, output.CallFn(core(getCurrentView))))
	}
	if v.level == 0 && len(v.comp.ngContent) > 0 {
		creation = append(creation, output.Exec(v.projectionDef()))
	}
	creation = append(creation, v.creation...)

	var update []output.Stmt
	for _, tmp := range v.temps {
		update = append(update, &output.DeclareVar{Kind: "let", Name: tmp})
	}
	update = append(update, v.scope.declarations()...)
	update = append(update, v.update...)

	return &output.Function{
		Name:   v.fnName,
		Params: []string{"rf", "ctx"},
		Body:   renderFlagBlocks(creation, update),
	}
}

// renderFlagBlocks wraps creation and update statements in the checks of
// the render flags, rf & 1 and rf & 2.
func renderFlagBlocks(creation, update []output.Stmt) []output.Stmt {
	var body []output.Stmt
	var rf = output.Var("rf")
	if len(creation) > 0 {
		body = append(body, &output.If{Cond: &output.Binary{Op: "&", Left: rf, Right: output.Lit(1)}, Then: creation})
	}
	if len(update) > 0 {
		body = append(body, &output.If{Cond: &output.Binary{Op: "&", Left: rf, Right: output.Lit(2)}, Then: update})
	}
	return body
}

// vars returns the number of binding slots used by the view.
func (v *viewCompiler) vars() int {
	return v.bindingSlots + v.pureSlots
}

func (v *viewCompiler) allocSlot() int {
	var s = v.slots
	v.slots++
	return s
}

// allocPure reserves n slots after the bindings and returns the offset of
// the first one, patched once the number of bindings is known.
func (v *viewCompiler) allocPure(n int) *output.Literal {
	var lit = output.Lit(v.pureSlots)
	v.pureSlots += n
	v.pureOffsets = append(v.pureOffsets, lit)
	return lit
}

// currentViewVar returns the variable holding the view for listeners that
// restore it.
func (v *viewCompiler) currentViewVar() string {
	if v.currentView == "" {
		v.currentView = v.comp.fresh("")
	}
	return v.currentView
}

func (v *viewCompiler) instruction(name string, args ...output.Expr) output.Stmt {
	return output.Exec(output.CallFn(core(name), args...))
}

func (v *viewCompiler) create(name string, args ...output.Expr) {
	v.creation = append(v.creation, v.instruction(name, args...))
}

// updateAt appends update statements for the node in slot, advancing the
// selected node first.
func (v *viewCompiler) updateAt(slot int, stmts ...output.Stmt) {
	if len(stmts) == 0 {
		return
	}
	if slot > v.selected {
		v.update = append(v.update, v.instruction(advance, output.Lit(slot-v.selected)))
		v.selected = slot
	}
	v.update = append(v.update, stmts...)
}

// trailing appends the optional arguments to args, writing null for missing
// arguments before a present one.
func trailing(args []output.Expr, opt ...output.Expr) []output.Expr {
	var last = -1
	for i, o := range opt {
		if o != nil {
			last = i
		}
	}
	for _, o := range opt[:last+1] {
		if o == nil {
			o = output.Lit(nil)
		}
		args = append(args, o)
	}
	return args
}

func (v *viewCompiler) visitAll(nodes []ast.Node) {
	for _, n := range nodes {
		v.visit(n)
	}
}

func (v *viewCompiler) visit(n ast.Node) {
	switch n := n.(type) {
	case *ast.Element:
		v.element(n)
	case *ast.Template:
		v.template(n)
	case *ast.Text:
		v.create(text, output.Lit(v.allocSlot()), output.Lit(n.Value))
	case *ast.BoundText:
		v.boundText(n)
	case *ast.Content:
		v.content(n)
	case *ast.IfBlock:
		v.ifBlock(n)
	case *ast.SwitchBlock:
		v.switchBlock(n)
	case *ast.ForLoopBlock:
		v.forLoop(n)
	case *ast.Icu:
		v.icu(n)
	default:
		panic("ngjs: unexpected node " + n.Kind().String())
	}
}

func (v *viewCompiler) element(n *ast.Element) {
	var slot = v.allocSlot()
	var refs = v.references(n.References)
	var body = v.translate(n)

	var args = []output.Expr{output.Lit(slot)}
	var isContainer = n.Name == "ng-container"
	if !isContainer {
		args = append(args, output.Lit(n.Name))
	}
	args = trailing(args, v.comp.elementAttrs(n), refs)

	var start, end, single = elementStart, elementEnd, element
	if isContainer {
		start, end, single = elementContainerStart, elementContainerEnd, elementContainer
	}
	if len(body) == 0 && len(n.Outputs) == 0 {
		v.create(single, args...)
		v.bindings(slot, n.Inputs)
		return
	}
	v.create(start, args...)
	for _, out := range n.Outputs {
		v.creation = append(v.creation, v.listener(n.Name, slot, out))
	}
	v.bindings(slot, n.Inputs)
	v.visitAll(body)
	v.create(end)
}

// references allocates a slot for each reference and returns the index of
// their ["name", "exportAs"] constant, or nil without references.
func (v *viewCompiler) references(refs []*ast.Reference) output.Expr {
	if len(refs) == 0 {
		return nil
	}
	var arr = output.Arr()
	for _, r := range refs {
		v.comp.refSlots[r] = v.allocSlot()
		arr.Entries = append(arr.Entries, output.Lit(r.Name), output.Lit(r.Value))
	}
	return output.Lit(v.comp.addConst(arr))
}

// listener returns the ɵɵlistener instruction of an event on the node in
// slot.
func (v *viewCompiler) listener(tag string, slot int, ev *ast.BoundEvent) output.Stmt {
	var name = ev.Name
	if ev.Type == ast.EventAnimation {
		name = "@" + ev.Name + "." + ev.Phase
	}
	var fnName = v.fnName + "_" + sanitizeIdentifier(tag) + "_" + sanitizeIdentifier(name) + "_" +
		strconv.Itoa(slot) + "_listener"
	var args = []output.Expr{output.Lit(name), v.handler(fnName, ev.Handler)}
	if resolver := eventTarget(ev.Target); resolver != nil {
		args = append(args, output.Lit(false), resolver)
	}
	return v.instruction(listener, args...)
}

// handler compiles an event handler into a function of $event.
func (v *viewCompiler) handler(fnName string, action ast.Expr) *output.Function {
	var scope = newBindingScope(v)
	var temps []string
	var stmts = v.converter(scope, &temps, true).actionStatements(action)

	var body []output.Stmt
	if !scope.empty() && !v.host {
		body = append(body, v.instruction(restoreView, output.Var(v.currentViewVar())))
	}
	for _, tmp := range temps {
		body = append(body, &output.DeclareVar{Kind: "let", Name: tmp})
	}
	body = append(body, scope.declarations()...)
	body = append(body, stmts...)
	return &output.Function{Name: fnName, Params: []string{"$event"}, Body: body}
}

func eventTarget(target string) output.Expr {
	switch target {
	case "window":
		return core(resolveWindow)
	case "document":
		return core(resolveDocument)
	case "body":
		return core(resolveBody)
	}
	return nil
}

// bindings emits the update instructions of the inputs of the node in
// slot: styling first, then properties and attributes in order.
func (v *viewCompiler) bindings(slot int, inputs []*ast.BoundAttribute) {
	var conv = v.converter(v.scope, &v.temps, false)
	var styleMaps, classMaps, styleProps, classProps, props []output.Stmt
	for _, in := range inputs {
		switch {
		case in.Type == ast.BindingProperty && in.Name == "class":
			classMaps = append(classMaps, v.stylingMap(conv, classMap, in.Value))
		case in.Type == ast.BindingProperty && in.Name == "style":
			styleMaps = append(styleMaps, v.stylingMap(conv, styleMap, in.Value))
		case in.Type == ast.BindingClass:
			v.bindingSlots += 2
			classProps = append(classProps, v.instruction(classProp, output.Lit(in.Name), conv.convert(in.Value)))
		case in.Type == ast.BindingStyle:
			styleProps = append(styleProps, v.styleProp(conv, in))
		case in.Type == ast.BindingAttribute:
			props = append(props, v.namedBinding(conv, attribute, in.Name, in.Value, false))
		case in.Type == ast.BindingAnimation:
			props = append(props, v.namedBinding(conv, property, "@"+in.Name, in.Value, false))
		default:
			props = append(props, v.namedBinding(conv, property, in.Name, in.Value, true))
		}
	}
	var stmts []output.Stmt
	for _, list := range [][]output.Stmt{styleMaps, classMaps, styleProps, classProps, props} {
		stmts = append(stmts, list...)
	}
	v.updateAt(slot, stmts...)
}

// namedBinding emits instr(name, value), or its interpolation variant.
func (v *viewCompiler) namedBinding(conv *converter, instr, name string, value ast.Expr, bare bool) output.Stmt {
	if interp, ok := value.(*ast.Interpolation); ok {
		var args, n, isBare = conv.interpolation(interp)
		v.bindingSlots += n
		var fn = interpolated(instr+"Interpolate", n, bare && isBare)
		return v.instruction(fn, append([]output.Expr{output.Lit(name)}, args...)...)
	}
	v.bindingSlots++
	return v.instruction(instr, output.Lit(name), conv.convert(value))
}

func (v *viewCompiler) stylingMap(conv *converter, instr string, value ast.Expr) output.Stmt {
	v.bindingSlots += 2
	if interp, ok := value.(*ast.Interpolation); ok {
		var args, n, _ = conv.interpolation(interp)
		v.bindingSlots += n
		return v.instruction(interpolated(instr+"Interpolate", n, false), args...)
	}
	return v.instruction(instr, conv.convert(value))
}

func (v *viewCompiler) styleProp(conv *converter, in *ast.BoundAttribute) output.Stmt {
	v.bindingSlots += 2
	var unit output.Expr
	if in.Unit != "" {
		unit = output.Lit(in.Unit)
	}
	if interp, ok := in.Value.(*ast.Interpolation); ok {
		var args, n, _ = conv.interpolation(interp)
		v.bindingSlots += n
		var all = append([]output.Expr{output.Lit(in.Name)}, args...)
		return v.instruction(interpolated(styleProp+"Interpolate", n, false), trailing(all, unit)...)
	}
	return v.instruction(styleProp, trailing([]output.Expr{output.Lit(in.Name), conv.convert(in.Value)}, unit)...)
}

// interpolation returns the arguments of an interpolation instruction: the
// strings and converted expressions interleaved, a single expression when
// bare, or one array beyond eight expressions.
func (c *converter) interpolation(e *ast.Interpolation) (args []output.Expr, n int, bare bool) {
	n = len(e.Expressions)
	bare = n == 1 && e.Strings[0] == "" && e.Strings[1] == ""
	if bare {
		return []output.Expr{c.convert(e.Expressions[0])}, n, true
	}
	for i, s := range e.Strings {
		args = append(args, output.Lit(s))
		if i < n {
			args = append(args, c.convert(e.Expressions[i]))
		}
	}
	if n > 8 {
		args = []output.Expr{output.Arr(args...)}
	}
	return args, n, false
}

func (v *viewCompiler) boundText(n *ast.BoundText) {
	var slot = v.allocSlot()
	v.create(text, output.Lit(slot))
	var interp, ok = n.Value.(*ast.Interpolation)
	if !ok {
		return
	}
	var args, count, bare = v.converter(v.scope, &v.temps, false).interpolation(interp)
	v.bindingSlots += count
	v.updateAt(slot, v.instruction(interpolated(textInterpolate, count, bare), args...))
}

func (v *viewCompiler) template(n *ast.Template) {
	var slot = v.allocSlot()
	var refs = v.references(n.References)
	var child = v.embedded(sanitizeIdentifier(n.TagName) + "_" + strconv.Itoa(slot))
	var decls, vars = output.Lit(0), output.Lit(0)

	var args = []output.Expr{output.Lit(slot), output.Var(child.fnName), decls, vars}
	v.create(templateCreate, trailing(args, output.Lit(n.TagName), v.comp.templateAttrs(n), refs)...)
	for _, out := range n.Outputs {
		v.creation = append(v.creation, v.listener(n.TagName, slot, out))
	}

	var conv = v.converter(v.scope, &v.temps, false)
	var stmts []output.Stmt
	for _, attr := range n.TemplateAttrs {
		if in, ok := attr.(*ast.BoundAttribute); ok {
			stmts = append(stmts, v.namedBinding(conv, property, in.Name, in.Value, true))
		}
	}
	for _, in := range n.Inputs {
		stmts = append(stmts, v.namedBinding(conv, property, in.Name, in.Value, true))
	}
	v.updateAt(slot, stmts...)

	v.deferBuild(child, n.Body, decls, vars)
}

// deferBuild schedules the build of an embedded view, patching its decls and
// vars into the instruction that creates it.
func (v *viewCompiler) deferBuild(child *viewCompiler, body []ast.Node, decls, vars *output.Literal) {
	v.nested = append(v.nested, func() {
		var fn = child.build(body)
		decls.Value = child.slots
		vars.Value = child.vars()
		v.comp.fns = append(v.comp.fns, &output.DeclareFunction{Name: fn.Name, Params: fn.Params, Body: fn.Body})
	})
}

func (v *viewCompiler) content(n *ast.Content) {
	var slot = v.allocSlot()
	var index = len(v.comp.ngContent)
	v.comp.ngContent = append(v.comp.ngContent, n.Selector)

	var attrs = output.Arr()
	for _, a := range n.Attributes {
		if a.Name == "select" {
			continue
		}
		attrs.Entries = append(attrs.Entries, output.Lit(a.Name), output.Lit(a.Value))
	}
	var args = []output.Expr{output.Lit(slot)}
	switch {
	case len(attrs.Entries) > 0:
		args = append(args, output.Lit(index), attrs)
	case index != 0:
		args = append(args, output.Lit(index))
	}
	v.create(projection, args...)
}

// projectionDef returns the ɵɵprojectionDef call of the root view.  A
// single wildcard slot needs no argument.
func (v *viewCompiler) projectionDef() output.Expr {
	var slots = v.comp.ngContent
	if len(slots) == 1 && slots[0] == "*" {
		return output.CallFn(core(projectionDef))
	}
	var arr = output.Arr()
	for _, s := range slots {
		if s == "*" {
			arr.Entries = append(arr.Entries, output.Lit(s))
			continue
		}
		var list, err = selector.Parse(s)
		if err != nil {
			arr.Entries = append(arr.Entries, output.Lit(s))
			continue
		}
		arr.Entries = append(arr.Entries, selectorListLiteral(list))
	}
	return output.CallFn(core(projectionDef), v.comp.pool.literal(arr))
}

// selectorListLiteral returns the runtime encoding of a selector list.
func selectorListLiteral(list []*selector.Selector) *output.LiteralArray {
	var arr = output.Arr()
	for _, s := range list {
		arr.Entries = append(arr.Entries, asLiteral(s.R3()))
	}
	return arr
}

// asLiteral converts strings, ints and nested slices into literals.
func asLiteral(value interface{}) output.Expr {
	if list, ok := value.([]interface{}); ok {
		var arr = output.Arr()
		for _, v := range list {
			arr.Entries = append(arr.Entries, asLiteral(v))
		}
		return arr
	}
	return output.Lit(value)
}

// pipeBinding creates the pipe instance and returns the binding of its
// transform.
func (v *viewCompiler) pipeBinding(e *ast.PipeCall, value output.Expr, args []output.Expr) output.Expr {
	if v.host {
		v.comp.errs = append(v.comp.errs, errortypes.New(errortypes.ParseError,
			"%s: host bindings cannot contain pipes", v.contextName))
		return output.Lit(nil)
	}
	var slot = v.allocSlot()
	v.create(pipe, output.Lit(slot), output.Lit(e.Name))
	var offset = v.allocPure(2 + len(args))
	var all = append([]output.Expr{value}, args...)
	if len(args) > 3 {
		return output.CallFn(core(pipeBindV), output.Lit(slot), offset, output.Arr(all...))
	}
	return output.CallFn(core(pipeBind(len(args))), append([]output.Expr{output.Lit(slot), offset}, all...)...)
}

// pureFunction returns a memoized construction of an array or map literal.
func (v *viewCompiler) pureFunction(lit output.Expr) output.Expr {
	var fn, args = v.comp.pool.literalFactory(lit)
	var offset = v.allocPure(1 + len(args))
	if len(args) > 8 {
		return output.CallFn(core(pureFunctionV), offset, fn, output.Arr(args...))
	}
	return output.CallFn(core(pureFunction(len(args))), append([]output.Expr{offset, fn}, args...)...)
}
