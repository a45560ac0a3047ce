package jit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/parse"
	"github.com/robfig/ngc/resolve"
)

var modes = []ngjs.Mode{ngjs.Full, ngjs.Partial}

func export(t *testing.T, rt *Runtime, src string) interface{} {
	t.Helper()
	var v, err = rt.Export(src)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return v
}

func run(t *testing.T, rt *Runtime, src string) {
	t.Helper()
	if _, err := rt.Run(src); err != nil {
		t.Fatalf("%s: %v", src, err)
	}
}

func TestLower(t *testing.T) {
	var rt = New()
	var err = rt.RunStmts([]output.Stmt{
		&output.DeclareVar{Kind: "const", Name: "x", Value: output.Lit(1)},
		&output.DeclareVar{Kind: "let", Name: "y"},
		&output.Class{Name: "C", Exported: true},
		output.Exec(&output.WriteProp{Receiver: output.Var("C"), Name: "x", Value: output.Var("x")}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := export(t, rt, `typeof C + ":" + C.x + ":" + typeof y`); got != "function:1:undefined" {
		t.Errorf("expected function:1:undefined, got %v", got)
	}
}

func TestRejectsOtherModules(t *testing.T) {
	var rt = New()
	var err = rt.RunStmts([]output.Stmt{
		output.Exec(output.CallFn(&output.External{Module: "@angular/common", Name: "NgIf"})),
	})
	if err == nil || !strings.Contains(err.Error(), "@angular/common") {
		t.Errorf("expected an error naming the module, got %v", err)
	}
}

// describe lists the known fields of an instance in a fixed order; otto
// does not keep insertion order for JSON.stringify.
const describe = `function describe(v) {
  if (typeof v !== "object") { return String(v); }
  var out = [];
  var keys = ["own", "impl", "dep", "opt"];
  for (var i = 0; i < keys.length; i++) {
    if (keys[i] in v) { out.push(keys[i] + "=" + v[keys[i]]); }
  }
  return out.join(" ");
}`

const depSource = `
function Dep() { this.dep = true; }
Dep.ɵfac = function (t) { return new (t || Dep)(); };
`

const implClassSource = `
function Impl(dep, opt) { this.impl = true; this.dep = !!(dep && dep.dep); this.opt = opt; }
Impl.ɵfac = function (t) { return new (t || Impl)(); };
`

const implSource = depSource + implClassSource

func TestInjectableModesAgree(t *testing.T) {
	var tests = []struct {
		name     string
		meta     *ngjs.InjectableMeta
		expected string
	}{
		{"own factory",
			&ngjs.InjectableMeta{Name: "Svc", Type: output.Var("Svc"), ProvidedIn: ngjs.Direct(output.Lit("root"))},
			"own=true"},
		{"forward useClass",
			&ngjs.InjectableMeta{Name: "Svc", Type: output.Var("Svc"), ProvidedIn: ngjs.Direct(output.Lit("root")),
				UseClass: ngjs.Forward(output.Var("Impl"))},
			"impl=true dep=false opt=undefined"},
		{"useClass with deps",
			&ngjs.InjectableMeta{Name: "Svc", Type: output.Var("Svc"), ProvidedIn: ngjs.Direct(output.Lit("root")),
				UseClass: ngjs.Forward(output.Var("Impl")),
				Deps:     []ngjs.Dependency{{Token: output.Var("Dep")}, {Token: output.Lit(nil), Optional: true}}},
			"impl=true dep=true opt=null"},
		{"useValue",
			&ngjs.InjectableMeta{Name: "Svc", Type: output.Var("Svc"), ProvidedIn: ngjs.Direct(output.Lit("root")),
				UseValue: ngjs.Direct(output.Lit("value"))},
			"value"},
	}
	for _, test := range tests {
		for _, mode := range modes {
			t.Run(test.name+"/"+mode.String(), func(t *testing.T) {
				var rt = New()
				// Partial declarations read deps eagerly, so their tokens
				// must exist before the definition.
				run(t, rt, describe+depSource+`function Svc() { this.own = true; }`)
				if _, err := rt.Define("Svc", "ɵfac", ngjs.CompileFactory(&ngjs.FactoryMeta{
					Name:   "Svc",
					Type:   output.Var("Svc"),
					Deps:   []ngjs.Dependency{},
					Target: ngjs.TargetInjectable,
				})); err != nil {
					t.Fatal(err)
				}
				if _, err := rt.Define("Svc", "ɵprov", ngjs.CompileInjectable(test.meta, mode)); err != nil {
					t.Fatal(err)
				}
				// Forward references resolve when the factory runs.
				run(t, rt, implClassSource)

				if got := export(t, rt, "Svc.ɵprov.providedIn"); got != "root" {
					t.Errorf("expected providedIn root, got %v", got)
				}
				if got := export(t, rt, "Svc.ɵprov.kind"); got != "injectable" {
					t.Errorf("expected an injectable definition, got %v", got)
				}
				if got := export(t, rt, "describe(Svc.ɵprov.factory())"); got != test.expected {
					t.Errorf("expected %s, got %v", test.expected, got)
				}
			})
		}
	}
}

func TestFactoryDependencies(t *testing.T) {
	var rt = New()
	run(t, rt, implSource+`function Svc(a, b, c) { this.args = [a, b, c]; }`)
	var _, err = rt.Define("Svc", "ɵfac", ngjs.CompileFactory(&ngjs.FactoryMeta{
		Name: "Svc",
		Type: output.Var("Svc"),
		Deps: []ngjs.Dependency{
			{Token: output.Var("Dep")},
			{Token: output.Lit(nil), Optional: true},
			{Token: output.Lit("title"), Attribute: true},
		},
		Target: ngjs.TargetDirective,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := export(t, rt, "JSON.stringify(Svc.ɵfac().args)"); got != `[{"dep":true},null,"@title"]` {
		t.Errorf("expected the injected dependencies, got %v", got)
	}
	if got := export(t, rt, "Svc.ɵfac(Impl) instanceof Impl"); got != true {
		t.Errorf("expected the factory to construct the requested type, got %v", got)
	}
}

func TestInheritedFactory(t *testing.T) {
	var rt = New()
	run(t, rt, `
function Parent(x) { this.x = x; }
Parent.ɵfac = function (t) { return new (t || Parent)("parent"); };
function Child() { Parent.apply(this, arguments); }
Child.prototype = Object.create(Parent.prototype);
Child.prototype.constructor = Child;
`)
	var _, err = rt.Define("Child", "ɵfac", ngjs.CompileFactory(&ngjs.FactoryMeta{Name: "Child", Type: output.Var("Child")}))
	if err != nil {
		t.Fatal(err)
	}
	if got := export(t, rt, `var c = Child.ɵfac(); (c instanceof Child) + ":" + c.x`); got != "true:parent" {
		t.Errorf("expected a child built by the parent factory, got %v", got)
	}
}

func TestInvalidFactory(t *testing.T) {
	var rt = New()
	run(t, rt, `function Svc() {}`)
	var _, err = rt.Define("Svc", "ɵfac", ngjs.CompileFactory(&ngjs.FactoryMeta{
		Name:        "Svc",
		Type:        output.Var("Svc"),
		InvalidDeps: true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Run("Svc.ɵfac()"); err == nil || !strings.Contains(err.Error(), "invalid factory") {
		t.Errorf("expected the factory to throw, got %v", err)
	}
}

func TestPipeModesAgree(t *testing.T) {
	for _, mode := range modes {
		var rt = New()
		run(t, rt, `function MyPipe() {}`)
		var _, err = rt.Define("MyPipe", "ɵpipe", ngjs.CompilePipe(&ngjs.PipeMeta{
			Name:     "MyPipe",
			Type:     output.Var("MyPipe"),
			PipeName: "my",
		}, mode))
		if err != nil {
			t.Fatal(err)
		}
		var got = export(t, rt, `[MyPipe.ɵpipe.kind, MyPipe.ɵpipe.name, MyPipe.ɵpipe.pure, MyPipe.ɵpipe.type === MyPipe].join()`)
		if got != "pipe,my,false,true" {
			t.Errorf("%s: expected pipe,my,false,true, got %v", mode, got)
		}
	}
}

func moduleFile(mode ngjs.Mode) *ngjs.File {
	var m = output.Var("M")
	var meta = &ngjs.NgModuleMeta{
		Name:         "M",
		Type:         m,
		Declarations: []*ngjs.MaybeForwardRef{ngjs.Direct(output.Var("A"))},
		Imports:      []*ngjs.MaybeForwardRef{ngjs.Forward(output.Var("B"))},
	}
	var f = ngjs.NewFile(nil, nil)
	f.Add(&ngjs.Class{
		Name: "M",
		Type: m,
		Fields: []ngjs.Field{
			{Name: "ɵfac", Compiled: ngjs.CompileFactory(&ngjs.FactoryMeta{Name: "M", Type: m, Deps: []ngjs.Dependency{}, Target: ngjs.TargetNgModule})},
			{Name: "ɵmod", Compiled: ngjs.CompileNgModule(meta, mode)},
			{Name: "ɵinj", Compiled: ngjs.CompileInjector(&ngjs.InjectorMeta{Name: "M", Type: m}, mode)},
		},
		Metadata: &ngjs.ClassMetadata{Decorator: "NgModule"},
	})
	return f
}

func TestNgModuleModesAgree(t *testing.T) {
	for _, mode := range modes {
		var rt = New()
		if err := rt.Declare("A", "B"); err != nil {
			t.Fatal(err)
		}
		if err := rt.RunFile(moduleFile(mode)); err != nil {
			t.Fatal(err)
		}
		var got = export(t, rt, `[
  M.ɵmod.kind,
  M.ɵmod.type === M,
  ngc.resolveAll(M.ɵmod.declarations)[0] === A,
  ngc.resolveAll(M.ɵmod.imports)[0] === B,
  M.ɵinj.kind,
  M.ɵfac() instanceof M
].join()`)
		if got != "ngModule,true,true,true,injector,true" {
			t.Errorf("%s: got %v", mode, got)
		}
		if got := export(t, rt, "typeof M.ɵmeta"); got != "undefined" {
			t.Errorf("%s: expected no class metadata outside dev mode, got %v", mode, got)
		}
	}
}

func TestClassMetadataInDevMode(t *testing.T) {
	var rt = New()
	rt.DevMode(true)
	if err := rt.Declare("NgModule", "A", "B"); err != nil {
		t.Fatal(err)
	}
	if err := rt.RunFile(moduleFile(ngjs.Full)); err != nil {
		t.Fatal(err)
	}
	if got := export(t, rt, "M.ɵmeta.decorators[0].type === NgModule"); got != true {
		t.Errorf("expected the decorator to be registered, got %v", got)
	}
}

func componentFile(t *testing.T, template string, mode ngjs.Mode) *ngjs.File {
	t.Helper()
	var file, err = parse.Parse(template, "app.html")
	if err != nil {
		t.Fatal(err)
	}
	bound, err := resolve.Resolve(file, nil)
	if err != nil {
		t.Fatal(err)
	}
	var app = output.Var("MyApp")
	var pool = ngjs.NewConstantPool()
	def, err := ngjs.CompileComponent(&ngjs.ComponentMeta{
		DirectiveMeta: ngjs.DirectiveMeta{Name: "MyApp", Type: app, Selector: "ng-component"},
		Template:      template,
		IsInline:      true,
	}, bound, pool, mode)
	if err != nil {
		t.Fatal(err)
	}
	var f = ngjs.NewFile(nil, pool)
	f.Add(&ngjs.Class{
		Name: "MyApp",
		Type: app,
		Fields: []ngjs.Field{
			{Name: "ɵfac", Compiled: ngjs.CompileFactory(&ngjs.FactoryMeta{Name: "MyApp", Type: app, Deps: []ngjs.Dependency{}, Target: ngjs.TargetComponent})},
			{Name: "ɵcmp", Compiled: def},
		},
	})
	return f
}

func render(t *testing.T, rt *Runtime, ctx string) []string {
	t.Helper()
	var log, err = rt.Render("MyApp", ctx)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(log, "\n")
}

func contains(lines []string, line string) bool {
	for _, l := range lines {
		if l == line {
			return true
		}
	}
	return false
}

func TestRender(t *testing.T) {
	var rt = New()
	var f = componentFile(t, `<span [title]="name" (click)="go()">{{ name }}</span>{#if show}<b>yes</b>{/if}`, ngjs.Full)
	if err := rt.RunFile(f); err != nil {
		t.Fatal(err)
	}

	var lines = render(t, rt, `{name: "World", show: true}`)
	for _, expected := range []string{
		`listener("click", fn)`,
		`elementEnd()`,
		`property("title", "World")`,
		`textInterpolate("World")`,
		`conditional(2, 2)`,
	} {
		if !contains(lines, expected) {
			t.Errorf("expected %s in:\n%s", expected, strings.Join(lines, "\n"))
		}
	}
	if lines[0] != `elementStart(0, "span", 0)` {
		t.Errorf("expected the element to be created first, got %s", lines[0])
	}

	lines = render(t, rt, `{name: "Again", show: false}`)
	if !contains(lines, `conditional(2, -1)`) || !contains(lines, `textInterpolate("Again")`) {
		t.Errorf("expected the hidden branch and new text, got:\n%s", strings.Join(lines, "\n"))
	}
}

func TestRenderModesAgree(t *testing.T) {
	const template = `<ul>{#for item of items; track item.id}<li>{{item.name}}</li>{/for}</ul>`
	var logs [][]string
	for _, mode := range modes {
		var rt = New()
		if err := rt.RunFile(componentFile(t, template, mode)); err != nil {
			t.Fatal(err)
		}
		if got := export(t, rt, "MyApp.ɵcmp.kind"); got != "component" {
			t.Errorf("%s: expected a component definition, got %v", mode, got)
		}
		if mode == ngjs.Full {
			logs = append(logs, render(t, rt, `{items: [{id: 1, name: "a"}]}`))
		}
	}
	if len(logs) != 1 || !contains(logs[0], `repeater(1, [{"id":1,"name":"a"}])`) {
		t.Errorf("expected the repeater to receive the items, got %v", logs)
	}
}

func TestInstructionsAreChainable(t *testing.T) {
	var rt = New()
	run(t, rt, `function MyApp() {}
MyApp.ɵcmp = { template: function (rf, ctx) {
  if (rf & 2) { i0.ɵɵproperty("a", 1)("b", ctx.b); }
} };`)
	var lines = render(t, rt, `{b: "x"}`)
	if diff := cmp.Diff([]string{`property("a", 1)`, `property("b", "x")`}, lines); diff != "" {
		t.Errorf("log (-expected +got):\n%s", diff)
	}
}
