package ngjs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/output"
)

func printed(e output.Expr) string {
	return output.PrintExpr(e, output.NewImports())
}

func TestDefinitionMap(t *testing.T) {
	var m DefinitionMap
	m.Set("a", output.Lit(1))
	m.Set("skipped", nil)
	m.Set("b", output.Lit(2))
	m.Set("a", output.Lit(3))
	if diff := cmp.Diff([]string{"a", "b"}, m.Keys()); diff != "" {
		t.Errorf("keys (-expected +got):\n%s", diff)
	}
	if got := printed(m.ToLiteralMap()); got != "{ a: 3, b: 2 }" {
		t.Errorf("expected { a: 3, b: 2 }, got %s", got)
	}
	if m.Get("skipped") != nil {
		t.Errorf("expected nil values to be ignored")
	}
}

func TestInjectable(t *testing.T) {
	var svc = output.Var("Svc")
	var deps = []Dependency{
		{Token: output.Var("A")},
		{Token: output.Var("B"), Optional: true, Self: true},
	}
	var tests = []struct {
		name     string
		meta     *InjectableMeta
		mode     Mode
		expected string
	}{
		{"partial",
			&InjectableMeta{Name: "Svc", Type: svc, ProvidedIn: Direct(output.Lit("root"))},
			Partial,
			`i0.ɵɵngDeclareInjectable({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: Svc, providedIn: "root" })`},
		{"partial null providedIn",
			&InjectableMeta{Name: "Svc", Type: svc, ProvidedIn: Direct(output.Lit(nil))},
			Partial,
			`i0.ɵɵngDeclareInjectable({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: Svc })`},
		{"partial forward refs and deps",
			&InjectableMeta{Name: "Svc", Type: svc, UseClass: Forward(output.Var("Impl")), Deps: deps},
			Partial,
			`i0.ɵɵngDeclareInjectable({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: Svc, ` +
				`useClass: i0.forwardRef(function () { return Impl; }), ` +
				`deps: [{ token: A }, { token: B, optional: true, self: true }] })`},
		{"partial empty deps",
			&InjectableMeta{Name: "Svc", Type: svc, UseFactory: output.Var("make"), Deps: []Dependency{}},
			Partial,
			`i0.ɵɵngDeclareInjectable({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: Svc, useFactory: make, deps: [] })`},
		{"full",
			&InjectableMeta{Name: "Svc", Type: svc},
			Full,
			`/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: Svc.ɵfac })`},
		{"full providedIn forward ref",
			&InjectableMeta{Name: "Svc", Type: svc, ProvidedIn: Forward(output.Var("Mod"))},
			Full,
			`/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: Svc.ɵfac, providedIn: Mod })`},
		{"full useClass",
			&InjectableMeta{Name: "Svc", Type: svc, UseClass: Direct(output.Var("Other"))},
			Full,
			`/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: function (t) { return Other.ɵfac(t); } })`},
		{"full factory without deps",
			&InjectableMeta{Name: "Svc", Type: svc, UseFactory: output.Var("make")},
			Full,
			`/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: function () { return make(); } })`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got = printed(CompileInjectable(test.meta, test.mode).Expression)
			if got != test.expected {
				t.Errorf("expected:\n%s\ngot:\n%s", test.expected, got)
			}
		})
	}
}

func TestInjectableFullDelegate(t *testing.T) {
	var c = CompileInjectable(&InjectableMeta{
		Name:     "Svc",
		Type:     output.Var("Svc"),
		UseClass: Forward(output.Var("Impl")),
		Deps: []Dependency{
			{Token: output.Var("A")},
			{Token: output.Var("B"), Optional: true, Self: true},
		},
	}, Full)
	var got = printed(c.Expression)
	for _, f := range []string{
		"factory: function Svc_Factory(t) {",
		"r = new (t || Svc)();",
		"r = new Impl(i0.ɵɵinject(A), i0.ɵɵinject(B, 10));",
		"return r;",
	} {
		if !strings.Contains(got, f) {
			t.Errorf("expected %q in:\n%s", f, got)
		}
	}
	if strings.Contains(got, "forwardRef") {
		t.Errorf("expected no forwardRef in full mode, got:\n%s", got)
	}
	if got := output.PrintType(c.Type, output.NewImports()); got != "i0.ɵɵInjectableDef<Svc>" {
		t.Errorf("expected i0.ɵɵInjectableDef<Svc>, got %s", got)
	}
}

func TestFactory(t *testing.T) {
	var app = output.Var("MyApp")
	var c = CompileFactory(&FactoryMeta{
		Name: "MyApp",
		Type: app,
		Deps: []Dependency{
			{Token: output.Var("A")},
			{Token: output.Lit("title"), Attribute: true},
			{Token: output.Var("C"), Host: true, SkipSelf: true},
			{},
		},
		Target: TargetComponent,
	})
	var expected = `function MyApp_Factory(t) { return new (t || MyApp)(i0.ɵɵdirectiveInject(A), ` +
		`i0.ɵɵinjectAttribute("title"), i0.ɵɵdirectiveInject(C, 5), i0.ɵɵinvalidFactoryDep(3)); }`
	if got := printed(c.Expression); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
	var expectedType = `i0.ɵɵFactoryDef<MyApp, [null, { "attribute": "title"; }, { "host": true; "skipSelf": true; }, null]>`
	if got := output.PrintType(c.Type, output.NewImports()); got != expectedType {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedType, got)
	}
}

func TestFactoryPipeFlags(t *testing.T) {
	var c = CompileFactory(&FactoryMeta{
		Name:   "MyPipe",
		Type:   output.Var("MyPipe"),
		Deps:   []Dependency{{Token: output.Var("A")}},
		Target: TargetPipe,
	})
	var expected = `function MyPipe_Factory(t) { return new (t || MyPipe)(i0.ɵɵdirectiveInject(A, 16)); }`
	if got := printed(c.Expression); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFactoryInherited(t *testing.T) {
	var c = CompileFactory(&FactoryMeta{Name: "Child", Type: output.Var("Child"), Target: TargetDirective})
	var got = printed(c.Expression)
	for _, f := range []string{
		"/*@__PURE__*/ (function () {",
		"let ɵChild_BaseFactory;",
		"return (ɵChild_BaseFactory || (ɵChild_BaseFactory = i0.ɵɵgetInheritedFactory(Child)))(t || Child);",
	} {
		if !strings.Contains(got, f) {
			t.Errorf("expected %q in:\n%s", f, got)
		}
	}
}

func TestFactoryInvalid(t *testing.T) {
	var c = CompileFactory(&FactoryMeta{Name: "Bad", Type: output.Var("Bad"), InvalidDeps: true})
	var expected = "function Bad_Factory(t) {\n  i0.ɵɵinvalidFactory();\n}"
	if got := printed(c.Expression); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestPipe(t *testing.T) {
	var pipe = output.Var("MyPipe")
	var tests = []struct {
		pure     bool
		mode     Mode
		expected string
	}{
		{true, Partial, `i0.ɵɵngDeclarePipe({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: MyPipe, name: "my" })`},
		{false, Partial, `i0.ɵɵngDeclarePipe({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: MyPipe, name: "my", pure: false })`},
		{true, Full, `/*@__PURE__*/ i0.ɵɵdefinePipe({ name: "my", type: MyPipe, pure: true })`},
		{false, Full, `/*@__PURE__*/ i0.ɵɵdefinePipe({ name: "my", type: MyPipe, pure: false })`},
	}
	for _, test := range tests {
		var c = CompilePipe(&PipeMeta{Name: "MyPipe", Type: pipe, PipeName: "my", Pure: test.pure}, test.mode)
		if got := printed(c.Expression); got != test.expected {
			t.Errorf("expected:\n%s\ngot:\n%s", test.expected, got)
		}
		if got := output.PrintType(c.Type, output.NewImports()); got != `i0.ɵɵPipeDefWithMeta<MyPipe, "my">` {
			t.Errorf("unexpected type %s", got)
		}
	}
}

func TestNgModule(t *testing.T) {
	var meta = &NgModuleMeta{
		Name:         "M",
		Type:         output.Var("M"),
		Declarations: []*MaybeForwardRef{Direct(output.Var("A"))},
		Imports:      []*MaybeForwardRef{Forward(output.Var("B"))},
	}

	var full = CompileNgModule(meta, Full)
	if got := printed(full.Expression); got != `/*@__PURE__*/ i0.ɵɵdefineNgModule({ type: M })` {
		t.Errorf("unexpected full definition %s", got)
	}
	var expectedScope = `(function () { (typeof ngJitMode === "undefined" || ngJitMode) && ` +
		`i0.ɵɵsetNgModuleScope(M, { declarations: [A], imports: function () { return [B]; } }); })();` + "\n"
	if got := output.PrintStmts(full.Statements, output.NewImports()); got != expectedScope {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedScope, got)
	}

	var inline = *meta
	inline.EmitInline = true
	var c = CompileNgModule(&inline, Full)
	var expectedInline = `/*@__PURE__*/ i0.ɵɵdefineNgModule({ type: M, declarations: [A], imports: function () { return [B]; } })`
	if got := printed(c.Expression); got != expectedInline {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedInline, got)
	}
	if len(c.Statements) != 0 {
		t.Errorf("expected no scope statement when emitting inline, got %d", len(c.Statements))
	}

	var partial = CompileNgModule(meta, Partial)
	var expectedPartial = `i0.ɵɵngDeclareNgModule({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: M, ` +
		`declarations: [A], imports: function () { return [B]; } })`
	if got := printed(partial.Expression); got != expectedPartial {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedPartial, got)
	}
	var expectedType = `i0.ɵɵNgModuleDefWithMeta<M, [typeof A], [typeof B], never>`
	if got := output.PrintType(partial.Type, output.NewImports()); got != expectedType {
		t.Errorf("expected %s, got %s", expectedType, got)
	}
}

func TestInjector(t *testing.T) {
	var meta = &InjectorMeta{Name: "M", Type: output.Var("M"), Imports: []output.Expr{output.Var("Common")}}
	if got := printed(CompileInjector(meta, Full).Expression); got != `/*@__PURE__*/ i0.ɵɵdefineInjector({ imports: [Common] })` {
		t.Errorf("unexpected full injector %s", got)
	}
	var expected = `i0.ɵɵngDeclareInjector({ version: "0.0.0-PLACEHOLDER", ngImport: i0, type: M, imports: [Common] })`
	if got := printed(CompileInjector(meta, Partial).Expression); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestDirectiveHostBindings(t *testing.T) {
	var meta = &DirectiveMeta{
		Name:     "Dir",
		Type:     output.Var("Dir"),
		Selector: "[dir]",
		Host: ParseHost([]HostEntry{
			{"class", "base"},
			{"(click)", "onClick()"},
			{"[class.active]", "active"},
			{"[title]", "title"},
		}),
	}
	var c, err = CompileDirective(meta, NewConstantPool(), Full)
	if err != nil {
		t.Fatal(err)
	}
	var m = definitionFields(t, c.Expression)
	if diff := cmp.Diff([]string{"type", "selectors", "hostAttrs", "hostVars", "hostBindings"}, m.Keys()); diff != "" {
		t.Errorf("keys (-expected +got):\n%s", diff)
	}
	if got := printed(m.Get("hostAttrs")); got != `[1, "base"]` {
		t.Errorf(`expected [1, "base"], got %s`, got)
	}
	expectLiteral(t, m, "hostVars", 3)
	var expected = `function Dir_HostBindings(rf, ctx) {
  if (rf & 1) {
    i0.ɵɵlistener("click", function Dir_click_HostBindingHandler($event) { return ctx.onClick(); });
  }
  if (rf & 2) {
    i0.ɵɵhostProperty("title", ctx.title);
    i0.ɵɵclassProp("active", ctx.active);
  }
}`
	if got := printed(m.Get("hostBindings")); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}

	var partial, _ = CompileDirective(meta, nil, Partial)
	var expectedPartial = `i0.ɵɵngDeclareDirective({ version: "0.0.0-PLACEHOLDER", type: Dir, selector: "[dir]", ` +
		`host: { listeners: { "click": "onClick()" }, properties: { "class.active": "active", "title": "title" }, ` +
		`classAttribute: "base" }, ngImport: i0 })`
	if got := printed(partial.Expression); got != expectedPartial {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedPartial, got)
	}
}

func TestFileStatementOrder(t *testing.T) {
	var pool = NewConstantPool()
	var file = NewFile(nil, pool)
	var m = output.Var("M")
	file.Add(&Class{
		Name: "M",
		Type: m,
		Fields: []Field{
			{"ɵmod", CompileNgModule(&NgModuleMeta{Name: "M", Type: m, Declarations: []*MaybeForwardRef{Direct(output.Var("A"))}}, Full)},
		},
		Metadata: &ClassMetadata{Decorator: "NgModule"},
	})
	var js, err = file.JS()
	if err != nil {
		t.Fatal(err)
	}
	var expected = `import * as i0 from "@angular/core";
export class M {
}
M.ɵmod = /*@__PURE__*/ i0.ɵɵdefineNgModule({ type: M });
(function () { (typeof ngJitMode === "undefined" || ngJitMode) && i0.ɵɵsetNgModuleScope(M, { declarations: [A] }); })();
(function () { (typeof ngDevMode === "undefined" || ngDevMode) && i0.ɵsetClassMetadata(M, [{
        type: NgModule
    }], null, null); })();
`
	if got := js; got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
	var dts = file.DTS()
	var expectedDTS = `import * as i0 from "@angular/core";
export declare class M {
    static ɵmod: i0.ɵɵNgModuleDefWithMeta<M, [typeof A], never, never>;
}
`
	if dts != expectedDTS {
		t.Errorf("expected:\n%s\ngot:\n%s", expectedDTS, dts)
	}
}
