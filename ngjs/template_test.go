package ngjs

import (
	"strings"
	"testing"

	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/parse"
	"github.com/robfig/ngc/resolve"
)

// compileTemplate compiles the template of an inline MyApp component in
// full mode and returns the printed template functions: the embedded
// templates first, then the root template.
func compileTemplate(t *testing.T, template string, scope *resolve.Scope) (string, *DefinitionMap) {
	t.Helper()
	var file, err = parse.Parse(template, "app.html")
	if err != nil {
		t.Fatal(err)
	}
	bound, err := resolve.Resolve(file, scope)
	if err != nil {
		t.Fatal(err)
	}
	var pool = NewConstantPool()
	cmp, err := CompileComponent(&ComponentMeta{
		DirectiveMeta: DirectiveMeta{Name: "MyApp", Type: output.Var("MyApp"), Selector: "ng-component"},
		Template:      template,
		IsInline:      true,
	}, bound, pool, Full)
	if err != nil {
		t.Fatal(err)
	}
	var m = definitionFields(t, cmp.Expression)
	var imports = output.NewImports()
	var js = output.PrintStmts(append(pool.Statements(), cmp.Statements...), imports) +
		output.PrintExpr(m.Get("template"), imports)
	return js, m
}

// definitionFields returns the fields of the object passed to a define
// call.
func definitionFields(t *testing.T, e output.Expr) *DefinitionMap {
	t.Helper()
	var call, ok = e.(*output.Call)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("expected a definition call, got %T", e)
	}
	lit, ok := call.Args[0].(*output.LiteralMap)
	if !ok {
		t.Fatalf("expected an object argument, got %T", call.Args[0])
	}
	var m DefinitionMap
	for _, entry := range lit.Entries {
		m.Set(entry.Key, entry.Value)
	}
	return &m
}

func expectContains(t *testing.T, js string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(js, f) {
			t.Errorf("expected output to contain %q, got:\n%s", f, js)
		}
	}
}

func expectLiteral(t *testing.T, m *DefinitionMap, key string, expected interface{}) {
	t.Helper()
	var lit, ok = m.Get(key).(*output.Literal)
	if !ok {
		t.Errorf("expected literal %s, got %T", key, m.Get(key))
		return
	}
	if lit.Value != expected {
		t.Errorf("expected %s: %v, got %v", key, expected, lit.Value)
	}
}

func TestForLoop(t *testing.T) {
	var js, m = compileTemplate(t, `<div>
  {{message}}
  {#for item of items; track item}
    {{item.name}}
  {/for}
</div>`, nil)

	expectContains(t, js,
		`function MyApp_For_3_Template(rf, ctx) {
  if (rf & 1) {
    i0.ɵɵtext(0);
  }
  if (rf & 2) {
    const item_r0 = ctx.$implicit;
    i0.ɵɵtextInterpolate1(" ", item_r0.name, " ");
  }
}`,
		`function MyApp_Template(rf, ctx) {
  if (rf & 1) {
    i0.ɵɵelementStart(0, "div");
    i0.ɵɵtext(1);
    i0.ɵɵrepeaterCreate(2, MyApp_For_3_Template, 1, 1, i0.ɵɵrepeaterTrackByIdentity);
    i0.ɵɵelementEnd();
  }
  if (rf & 2) {
    i0.ɵɵadvance(1);
    i0.ɵɵtextInterpolate1(" ", ctx.message, " ");
    i0.ɵɵadvance(1);
    i0.ɵɵrepeater(2, ctx.items);
  }
}`)
	expectLiteral(t, m, "decls", 4)
	expectLiteral(t, m, "vars", 2)
}

func TestForLoopTrackFunctions(t *testing.T) {
	var tests = []struct {
		name      string
		template  string
		fragments []string
	}{
		{"index", "{#for x of xs; track $index}{{x}}{/for}",
			[]string{"i0.ɵɵrepeaterCreate(0, MyApp_For_1_Template, 1, 1, i0.ɵɵrepeaterTrackByIndex);"}},
		{"item field", "{#for x of xs; track x.id}{{x}}{/for}",
			[]string{"function _forTrack0($index, $item) {\n  return $item.id;\n}",
				"i0.ɵɵrepeaterCreate(0, MyApp_For_1_Template, 1, 1, _forTrack0);"}},
		{"component method", "{#for x of xs; track trackFn($index)}{{x}}{/for}",
			[]string{"return this.trackFn($index);",
				"i0.ɵɵrepeaterCreate(0, MyApp_For_1_Template, 1, 1, _forTrack0, true);"}},
		{"empty", "{#for x of xs; track $index}{{x}}{:empty}none{/for}",
			[]string{"function MyApp_ForEmpty_2_Template(rf, ctx) {",
				`i0.ɵɵtext(0, "none");`,
				"i0.ɵɵrepeaterCreate(0, MyApp_For_1_Template, 1, 1, i0.ɵɵrepeaterTrackByIndex, false, MyApp_ForEmpty_2_Template, 1, 0);"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var js, _ = compileTemplate(t, test.template, nil)
			expectContains(t, js, test.fragments...)
		})
	}
}

func TestIfWithAlias(t *testing.T) {
	var js, m = compileTemplate(t, `<div>
  {#if value(); as alias}
    {{value()}} as {{alias}}
  {/if}
</div>`, nil)

	expectContains(t, js,
		`function MyApp_Conditional_1_Template(rf, ctx) {
  if (rf & 1) {
    i0.ɵɵtext(0);
  }
  if (rf & 2) {
    const alias_r1 = ctx;
    const ctx_r0 = i0.ɵɵnextContext();
    i0.ɵɵtextInterpolate2(" ", ctx_r0.value(), " as ", alias_r1, " ");
  }
}`,
		`function MyApp_Template(rf, ctx) {
  if (rf & 1) {
    i0.ɵɵelementStart(0, "div");
    i0.ɵɵtemplate(1, MyApp_Conditional_1_Template, 1, 2);
    i0.ɵɵelementEnd();
  }
  if (rf & 2) {
    let tmp_0_0;
    i0.ɵɵadvance(1);
    i0.ɵɵconditional(1, (tmp_0_0 = ctx.value()) ? 1 : -1, tmp_0_0);
  }
}`)
	expectLiteral(t, m, "decls", 2)
	expectLiteral(t, m, "vars", 1)
}

func TestIfElseChain(t *testing.T) {
	var js, _ = compileTemplate(t, "{#if a}A{:else if b}B{:else}C{/if}", nil)
	expectContains(t, js,
		"i0.ɵɵtemplate(0, MyApp_Conditional_0_Template, 1, 0);",
		"i0.ɵɵtemplate(1, MyApp_Conditional_1_Template, 1, 0);",
		"i0.ɵɵtemplate(2, MyApp_Conditional_2_Template, 1, 0);",
		"i0.ɵɵconditional(0, ctx.a ? 0 : ctx.b ? 1 : 2);")
}

func TestElementBindings(t *testing.T) {
	var scope = &resolve.Scope{Directives: []*resolve.Directive{{
		Name:     "Dir",
		Selector: "[dir]",
		Inputs:   []resolve.Property{{ClassName: "value", BindingName: "dir"}},
	}}}
	var js, m = compileTemplate(t,
		`<span dir [dir]="x" [title]="t" [class.on]="on" (click)="go($event)">{{a}}</span>`, scope)
	expectContains(t, js,
		`i0.ɵɵelementStart(0, "span", 0);`,
		`i0.ɵɵlistener("click", function MyApp_Template_span_click_0_listener($event) { return ctx.go($event); });`,
		`i0.ɵɵclassProp("on", ctx.on);`,
		`i0.ɵɵproperty("dir", ctx.x);`,
		`i0.ɵɵproperty("title", ctx.t);`,
		`i0.ɵɵtextInterpolate(ctx.a);`)
	if m.Get("directives") == nil {
		t.Errorf("expected used directives to be listed")
	}
	if m.Get("consts") == nil {
		t.Errorf("expected element attributes in consts")
	}
}
