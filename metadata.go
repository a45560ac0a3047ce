package ngc

import (
	"path"
	"strings"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/resolve"
	"github.com/robfig/ngc/scan"
	"github.com/robfig/ngc/vfs"
)

type declKind int

const (
	componentDecl declKind = iota
	directiveDecl
	pipeDecl
	injectableDecl
	moduleDecl
)

// class decorators, in order of precedence
var decoratorKinds = []struct {
	name string
	kind declKind
}{
	{"Component", componentDecl},
	{"Directive", directiveDecl},
	{"Pipe", pipeDecl},
	{"NgModule", moduleDecl},
	{"Injectable", injectableDecl},
}

var factoryTargets = map[declKind]ngjs.FactoryTarget{
	componentDecl:  ngjs.TargetComponent,
	directiveDecl:  ngjs.TargetDirective,
	pipeDecl:       ngjs.TargetPipe,
	injectableDecl: ngjs.TargetInjectable,
	moduleDecl:     ngjs.TargetNgModule,
}

// declaration is a decorated class and the metadata read from its
// decorator.  Exactly one of the meta fields is set, per kind.
type declaration struct {
	kind      declKind
	file      *scan.File
	class     *scan.Class
	index     int // position of the class in its file
	decorator *scan.Decorator

	factory    *ngjs.FactoryMeta
	directive  *ngjs.DirectiveMeta
	component  *ngjs.ComponentMeta
	pipe       *ngjs.PipeMeta
	injectable *ngjs.InjectableMeta
	module     *ngjs.NgModuleMeta
	injector   *ngjs.InjectorMeta

	// matcher describes a component or directive to the templates that use
	// it.
	matcher *resolve.Directive

	// standalone is set for components that list their own imports.
	standalone bool
	// imports, declarations and exports hold the class names referenced by
	// a component or module.
	imports      []string
	declarations []string
	exports      []string

	template *templateSource
}

// templateSource is the template of a component.
type templateSource struct {
	text string
	// path is the file the template was read from.  Inline templates are
	// located in the source file, from line and col (0-based) on, when
	// their text was written without escapes.
	path      string
	external  bool
	line, col int
	located   bool
}

// readDeclarations returns the decorated classes of f.  External templates
// and styles are read from tree.
func readDeclarations(tree *vfs.Tree, f *scan.File) ([]*declaration, error) {
	var decls []*declaration
	var errs errortypes.List
	for i, c := range f.Classes {
		var d = newDeclaration(f, c, i)
		if d == nil {
			continue
		}
		var arg = d.decorator.Arg(0)
		if arg != nil && arg.Kind != scan.ValueObject {
			var line, col = f.Location(arg.Start)
			errs.Add(errortypes.ConfigurationError, f.Path, line+1, col+1,
				"argument of @%s on %s must be an object literal", d.decorator.Name, c.Name)
			continue
		}
		if err := d.read(tree, arg); err != nil {
			addError(&errs, f.Path, err)
			continue
		}
		decls = append(decls, d)
	}
	return decls, errs.Err()
}

func newDeclaration(f *scan.File, c *scan.Class, index int) *declaration {
	for _, k := range decoratorKinds {
		if dec := c.Decorator(k.name); dec != nil {
			return &declaration{kind: k.kind, file: f, class: c, index: index, decorator: dec}
		}
	}
	return nil
}

func (d *declaration) read(tree *vfs.Tree, arg *scan.Value) error {
	var c = d.class
	var typ = output.Var(c.Name)
	d.factory = &ngjs.FactoryMeta{
		Name:   c.Name,
		Type:   typ,
		Deps:   constructorDeps(c),
		Target: factoryTargets[d.kind],
	}

	switch d.kind {
	case componentDecl:
		d.component = &ngjs.ComponentMeta{DirectiveMeta: directiveMeta(c, typ, arg)}
		d.directive = &d.component.DirectiveMeta
		if d.directive.Selector == "" {
			d.directive.Selector = "ng-component"
		}
		d.matcher = d.directive.Directive()
		d.matcher.IsComponent = true
		return d.readComponent(tree, arg)

	case directiveDecl:
		var meta = directiveMeta(c, typ, arg)
		d.directive = &meta
		d.matcher = meta.Directive()

	case pipeDecl:
		d.pipe = &ngjs.PipeMeta{
			Name:     c.Name,
			Type:     typ,
			Deps:     d.factory.Deps,
			PipeName: arg.Get("name").String(),
			Pure:     arg.Get("pure").Bool(true),
		}

	case injectableDecl:
		d.injectable = &ngjs.InjectableMeta{
			Name:        c.Name,
			Type:        typ,
			ProvidedIn:  maybeRef(arg.Get("providedIn")),
			UseClass:    maybeRef(arg.Get("useClass")),
			UseExisting: maybeRef(arg.Get("useExisting")),
			UseValue:    maybeRef(arg.Get("useValue")),
			UseFactory:  sourceExpr(arg.Get("useFactory")),
		}
		if deps := arg.Get("deps"); deps != nil {
			d.injectable.Deps = providerDeps(deps)
		}

	case moduleDecl:
		var imports = arg.Get("imports")
		d.module = &ngjs.NgModuleMeta{
			Name:         c.Name,
			Type:         typ,
			Bootstrap:    refs(arg.Get("bootstrap")),
			Declarations: refs(arg.Get("declarations")),
			Imports:      refs(imports),
			Exports:      refs(arg.Get("exports")),
			ID:           valueExpr(arg.Get("id")),
		}
		if schemas := arg.Get("schemas"); schemas != nil {
			for _, s := range schemas.Elements {
				d.module.Schemas = append(d.module.Schemas, sourceExpr(s))
			}
		}
		d.injector = &ngjs.InjectorMeta{
			Name:      c.Name,
			Type:      typ,
			Providers: sourceExpr(arg.Get("providers")),
		}
		for _, r := range refs(imports) {
			d.injector.Imports = append(d.injector.Imports, r.Expr)
		}
		d.imports = names(imports)
		d.declarations = names(arg.Get("declarations"))
		d.exports = names(arg.Get("exports"))
	}
	return nil
}

func directiveMeta(c *scan.Class, typ output.Expr, arg *scan.Value) ngjs.DirectiveMeta {
	var meta = ngjs.DirectiveMeta{
		Name:            c.Name,
		Type:            typ,
		Deps:            constructorDeps(c),
		Selector:        arg.Get("selector").String(),
		Inputs:          properties(arg.Get("inputs"), c.Fields, "Input"),
		Outputs:         properties(arg.Get("outputs"), c.Fields, "Output"),
		Host:            hostMeta(arg.Get("host"), c.Fields),
		Providers:       sourceExpr(arg.Get("providers")),
		UsesInheritance: c.Extends != "",
	}
	if exportAs := arg.Get("exportAs").String(); exportAs != "" {
		for _, name := range strings.Split(exportAs, ",") {
			meta.ExportAs = append(meta.ExportAs, strings.TrimSpace(name))
		}
	}
	for _, m := range c.Methods {
		if m == "ngOnChanges" {
			meta.UsesOnChanges = true
		}
	}
	return meta
}

var encapsulations = map[string]ngjs.ViewEncapsulation{
	"Emulated":  ngjs.EncapsulationEmulated,
	"None":      ngjs.EncapsulationNone,
	"ShadowDom": ngjs.EncapsulationShadowDom,
}

var changeDetections = map[string]ngjs.ChangeDetection{
	"Default": ngjs.ChangeDetectionDefault,
	"OnPush":  ngjs.ChangeDetectionOnPush,
}

func (d *declaration) readComponent(tree *vfs.Tree, arg *scan.Value) error {
	var meta = d.component
	var f = d.file
	meta.PreserveWhitespaces = arg.Get("preserveWhitespaces").Bool(false)
	meta.Animations = sourceExpr(arg.Get("animations"))
	meta.ViewProviders = sourceExpr(arg.Get("viewProviders"))
	if v := arg.Get("encapsulation"); v != nil {
		meta.Encapsulation = encapsulations[lastSegment(v.Text)]
	}
	if v := arg.Get("changeDetection"); v != nil {
		meta.ChangeDetection = changeDetections[lastSegment(v.Text)]
	}

	meta.Styles = arg.Get("styles").Strings()
	var styleURLs = arg.Get("styleUrls").Strings()
	styleURLs = append(styleURLs, arg.Get("styleUrl").Strings()...)
	for _, url := range styleURLs {
		var css, err = tree.Read(relative(f.Path, url))
		if err != nil {
			return err
		}
		meta.Styles = append(meta.Styles, css)
	}

	var imports = arg.Get("imports")
	d.standalone = arg.Get("standalone").Bool(imports != nil)
	d.imports = names(imports)

	switch tmpl, url := arg.Get("template"), arg.Get("templateUrl"); {
	case tmpl != nil && tmpl.Kind == scan.ValueString:
		var src = &templateSource{text: tmpl.Str, path: f.Path}
		if f.Text[tmpl.ContentStart:tmpl.ContentEnd] == tmpl.Str {
			src.line, src.col = f.Location(tmpl.ContentStart)
			src.located = true
		}
		d.template = src
		meta.IsInline = true
	case tmpl != nil:
		var line, col = f.Location(tmpl.Start)
		return errortypes.Newf(errortypes.ConfigurationError, f.Path, line+1, col+1,
			"template of %s must be a string literal", d.class.Name)
	case url != nil && url.Kind == scan.ValueString:
		var name = relative(f.Path, url.Str)
		var text, err = tree.Read(name)
		if err != nil {
			return err
		}
		d.template = &templateSource{text: text, path: name, external: true}
	default:
		var line, col = f.Location(d.decorator.Start)
		return errortypes.Newf(errortypes.ConfigurationError, f.Path, line+1, col+1,
			"component %s has no template", d.class.Name)
	}
	meta.Template = d.template.text
	return nil
}

// classMetadata returns the decorator of the class as written in the
// source.
func (d *declaration) classMetadata() *ngjs.ClassMetadata {
	var meta = &ngjs.ClassMetadata{Decorator: d.decorator.Name}
	if arg := d.decorator.Arg(0); arg != nil {
		meta.Multiline = arg.Multiline
		for _, e := range arg.Entries {
			meta.Args = append(meta.Args, output.MapEntry{
				Key:    e.Key,
				Quoted: e.Quoted,
				Value:  &output.Wrapped{Source: e.Value.Text},
			})
		}
	}
	for _, p := range d.class.Ctor {
		var typ = p.Type
		if typ == "" {
			typ = "undefined"
		}
		meta.CtorParams = append(meta.CtorParams, &output.Wrapped{Source: typ})
	}
	return meta
}

// members returns the declarations of the fields of the class.
func (d *declaration) members() []string {
	var out []string
	for _, f := range d.class.Fields {
		var typ = f.Type
		if typ == "" {
			typ = "any"
		}
		out = append(out, f.Name+": "+typ+";")
	}
	return out
}

// constructorDeps returns the dependencies of the constructor of c.  A class
// without a constructor inherits the one of its base class, if any.
func constructorDeps(c *scan.Class) []ngjs.Dependency {
	if c.Ctor == nil {
		if c.Extends != "" {
			return nil
		}
		return []ngjs.Dependency{}
	}
	var deps = make([]ngjs.Dependency, len(c.Ctor))
	for i, p := range c.Ctor {
		deps[i] = paramDependency(p)
	}
	return deps
}

func paramDependency(p *scan.Param) ngjs.Dependency {
	var dep = ngjs.Dependency{Token: typeToken(p.Type)}
	for _, d := range p.Decorators {
		switch d.Name {
		case "Inject":
			if arg := d.Arg(0); arg != nil {
				dep.Token = valueExpr(arg)
			}
		case "Attribute":
			dep.Attribute = true
			dep.Token = valueExpr(d.Arg(0))
		case "Optional":
			dep.Optional = true
		case "Self":
			dep.Self = true
		case "SkipSelf":
			dep.SkipSelf = true
		case "Host":
			dep.Host = true
		}
	}
	return dep
}

// type annotations that cannot serve as injection tokens
var primitiveTypes = map[string]bool{
	"any": true, "unknown": true, "never": true, "void": true, "object": true,
	"string": true, "number": true, "boolean": true, "bigint": true, "symbol": true,
	"null": true, "undefined": true,
}

// typeToken returns the token of a parameter type: the type name without
// type arguments, or nil when the type has no runtime value.
func typeToken(typ string) output.Expr {
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	typ = strings.TrimSpace(typ)
	if typ == "" || primitiveTypes[typ] || !isQualifiedName(typ) {
		return nil
	}
	return output.Var(typ)
}

func isQualifiedName(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			var letter = r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 0x7f
			if !letter && (i == 0 || r < '0' || r > '9') {
				return false
			}
		}
	}
	return true
}

var dependencyFlags = map[string]func(*ngjs.Dependency){
	"Optional": func(d *ngjs.Dependency) { d.Optional = true },
	"Self":     func(d *ngjs.Dependency) { d.Self = true },
	"SkipSelf": func(d *ngjs.Dependency) { d.SkipSelf = true },
	"Host":     func(d *ngjs.Dependency) { d.Host = true },
}

// providerDeps reads the deps of a provider: tokens, or arrays of flags
// and a token such as [new Optional(), Token].
func providerDeps(v *scan.Value) []ngjs.Dependency {
	var deps = []ngjs.Dependency{}
	for _, e := range v.Elements {
		if e.Kind != scan.ValueArray {
			deps = append(deps, ngjs.Dependency{Token: valueExpr(e)})
			continue
		}
		var dep ngjs.Dependency
		for _, part := range e.Elements {
			var name = strings.TrimSuffix(strings.TrimPrefix(part.Text, "new "), "()")
			if set, ok := dependencyFlags[name]; ok {
				set(&dep)
				continue
			}
			dep.Token = valueExpr(part)
		}
		deps = append(deps, dep)
	}
	return deps
}

// properties reads inputs or outputs from the decorator list, given as
// "name", "name: alias" or {name, alias}, and from decorated fields.
func properties(list *scan.Value, fields []*scan.Field, decorator string) []resolve.Property {
	var props []resolve.Property
	if list != nil {
		for _, e := range list.Elements {
			switch e.Kind {
			case scan.ValueString:
				var class, binding = e.Str, e.Str
				if i := strings.IndexByte(e.Str, ':'); i >= 0 {
					class, binding = strings.TrimSpace(e.Str[:i]), strings.TrimSpace(e.Str[i+1:])
				}
				props = append(props, resolve.Property{ClassName: class, BindingName: binding})
			case scan.ValueObject:
				var name = e.Get("name").String()
				var alias = e.Get("alias").String()
				if alias == "" {
					alias = name
				}
				props = append(props, resolve.Property{ClassName: name, BindingName: alias})
			}
		}
	}
	for _, f := range fields {
		for _, d := range f.Decorators {
			if d.Name != decorator {
				continue
			}
			var binding = f.Name
			if arg := d.Arg(0); arg != nil {
				if arg.Kind == scan.ValueString {
					binding = arg.Str
				} else if alias := arg.Get("alias").String(); alias != "" {
					binding = alias
				}
			}
			props = append(props, resolve.Property{ClassName: f.Name, BindingName: binding})
		}
	}
	return props
}

// hostMeta reads the host object of the decorator and the @HostBinding
// fields of the class.
func hostMeta(host *scan.Value, fields []*scan.Field) ngjs.HostMeta {
	var entries []ngjs.HostEntry
	if host != nil {
		for _, e := range host.Entries {
			var value = e.Value.Str
			if e.Value.Kind != scan.ValueString {
				value = e.Value.Text
			}
			entries = append(entries, ngjs.HostEntry{Key: e.Key, Value: value})
		}
	}
	for _, f := range fields {
		for _, d := range f.Decorators {
			if d.Name != "HostBinding" {
				continue
			}
			var target = f.Name
			if s := d.Arg(0).String(); s != "" {
				target = s
			}
			entries = append(entries, ngjs.HostEntry{Key: "[" + target + "]", Value: f.Name})
		}
	}
	return ngjs.ParseHost(entries)
}

// valueExpr returns the expression of a decorator argument.  Literals and
// identifiers are read; other expressions are carried over as source.
func valueExpr(v *scan.Value) output.Expr {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case scan.ValueString:
		return output.Lit(v.Str)
	case scan.ValueBool:
		return output.Lit(v.Text == "true")
	case scan.ValueNull:
		return output.Lit(nil)
	case scan.ValueIdent:
		return output.Var(v.Text)
	case scan.ValueForwardRef:
		var inner, _ = v.Unwrap()
		return valueExpr(inner)
	case scan.ValueArray:
		var arr = output.Arr()
		for _, e := range v.Elements {
			arr.Entries = append(arr.Entries, valueExpr(e))
		}
		return arr
	}
	return &output.Wrapped{Source: v.Text}
}

// sourceExpr returns the source of v as an expression, or nil.
func sourceExpr(v *scan.Value) output.Expr {
	if v == nil {
		return nil
	}
	return &output.Wrapped{Source: v.Text}
}

func maybeRef(v *scan.Value) *ngjs.MaybeForwardRef {
	if v == nil {
		return nil
	}
	var inner, forward = v.Unwrap()
	return &ngjs.MaybeForwardRef{Expr: valueExpr(inner), IsForwardRef: forward}
}

// refs returns the references of an array of classes.  Any other
// expression is passed through as one entry.
func refs(v *scan.Value) []*ngjs.MaybeForwardRef {
	if v == nil {
		return nil
	}
	if v.Kind != scan.ValueArray {
		return []*ngjs.MaybeForwardRef{ngjs.Direct(sourceExpr(v))}
	}
	var out []*ngjs.MaybeForwardRef
	for _, e := range v.Elements {
		out = append(out, maybeRef(e))
	}
	return out
}

// names returns the class names listed in an array.
func names(v *scan.Value) []string {
	if v == nil {
		return nil
	}
	var out []string
	for _, e := range v.Elements {
		if inner, _ := e.Unwrap(); inner.Kind == scan.ValueIdent {
			out = append(out, inner.Text)
		}
	}
	return out
}

func lastSegment(s string) string {
	return s[strings.LastIndexByte(s, '.')+1:]
}

// relative returns the tree path of url, given relative to the file at
// from.
func relative(from, url string) string {
	return vfs.Clean(path.Join(path.Dir(from), url))
}
