package parse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
)

type parseTest struct {
	name     string
	input    string
	expected string // String() of the parsed nodes
}

var parseTests = []parseTest{
	{"empty", "", ""},
	{"text", "hello", "hello"},
	{"entities", "<p>a &amp; b&nbsp;c</p>", "<p>a & b\u00a0c</p>"},
	{"interpolation", "<p>Hi {{ name }}!</p>", "<p>Hi {{ name }}!</p>"},
	{"comment dropped", "a<!-- x -->b", "ab"},
	{"void elements", `<input [value]="v"><br>`, `<input [value]="v"/><br/>`},
	{"self closing", `<my-cmp/>`, `<my-cmp/>`},
	{"bindings", `<a [routerLink]="" (click)="go()" #link title="t">x</a>`,
		`<a title="t" [routerLink]="" (click)="go()" #link>x</a>`},
	{"bound without value", `<a [routerLink]>x</a>`, `<a [routerLink]>x</a>`},
	{"whitespace", "<div>\n  <span> a   b </span>\n</div>", "<div><span> a b </span></div>"},
	{"pre keeps whitespace", "<pre>\n a  b</pre>", "<pre>\n a  b</pre>"},
	{"preserve attribute", "<div ngPreserveWhitespaces> <b>x</b> </div>",
		`<div ngPreserveWhitespaces> <b>x</b> </div>`},
	{"for", "{#for item of items; track item}{{item.name}}{/for}",
		"{#for item of items; track item}{{ item.name }}{/for}"},
	{"for empty", "{#for x of xs; track $index}{{x}}{:empty}none{/for}",
		"{#for x of xs; track $index}{{ x }}{:empty}none{/for}"},
	{"if alias", "{#if value(); as alias}{{value()}} as {{alias}}{/if}",
		"{#if value(); as alias}{{ value() }} as {{ alias }}{/if}"},
	{"if else", "{#if a}A{:else if b}B{:else}C{/if}", "{#if a}A{:else if b}B{:else}C{/if}"},
	{"switch", "{#switch k}\n  {:case 1}one{:default}other{/switch}",
		"{#switch k}{:case 1}one{:default}other{/switch}"},
	{"icu", "{n, plural, =0 {none} other {many}}", "{n, plural, =0 {none} other {many}}"},
	{"ng-content", `<ng-content select=".a"></ng-content>`, `<ng-content select=".a"></ng-content>`},
	{"ng-template", `<ng-template let-x="y">{{x}}</ng-template>`, `<ng-template let-x="y">{{ x }}</ng-template>`},
	{"structural", `<li *ngFor="let item of items">{{item}}</li>`,
		`<ng-template let-item="$implicit"><li>{{ item }}</li></ng-template>`},
	{"script", `<script>a<b</script>`, `<script>a<b</script>`},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		var file, err = Parse(test.input, "test.html")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got := file.String(); got != test.expected {
			t.Errorf("%s:\nexpected\n\t%q\ngot\n\t%q", test.name, test.expected, got)
		}
	}
}

func TestPreserveWhitespaces(t *testing.T) {
	var input = "<div>\n  <span> a   b </span>\n</div>"
	var file, err = Options{PreserveWhitespaces: true}.Parse(input, "test.html")
	if err != nil {
		t.Fatal(err)
	}
	if got := file.String(); got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestForLoopBlock(t *testing.T) {
	var file, err = Parse("{#for item of items; track item; let i = $index}{{item.name}}{/for}", "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var loop, ok = file.Nodes[0].(*ast.ForLoopBlock)
	if !ok {
		t.Fatalf("expected for loop, got %T", file.Nodes[0])
	}
	if loop.Item.Name != "item" {
		t.Errorf("expected item variable, got %q", loop.Item.Name)
	}
	if got := loop.Expression.String(); got != "items" {
		t.Errorf("expected iterable items, got %q", got)
	}
	if got := loop.TrackBy.String(); got != "item" {
		t.Errorf("expected track item, got %q", got)
	}
	if span := loop.Expression.SourceSpan(); span != (ast.Span{Start: 14, End: 19}) {
		t.Errorf("expected iterable span 14-19, got %v", span)
	}

	var names []string
	for _, v := range loop.ContextVariables {
		names = append(names, v.Name+"="+v.Value)
	}
	var expected = []string{
		"$index=$index", "$first=$first", "$last=$last", "$even=$even",
		"$odd=$odd", "$count=$count", "i=$index",
	}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("context variables (-want +got):\n%s", diff)
	}
}

func TestIfBlockAlias(t *testing.T) {
	var file, err = Parse("{#if value(); as alias}{{alias}}{:else}no{/if}", "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var block = file.Nodes[0].(*ast.IfBlock)
	if len(block.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(block.Branches))
	}
	var first = block.Branches[0]
	if first.Alias == nil || first.Alias.Name != "alias" {
		t.Errorf("expected alias on first branch, got %v", first.Alias)
	}
	if got := first.Condition.String(); got != "value()" {
		t.Errorf("expected condition value(), got %q", got)
	}
	if block.Branches[1].Condition != nil || block.Branches[1].Alias != nil {
		t.Errorf("expected plain else branch, got %v", block.Branches[1])
	}
}

func TestBindingSpans(t *testing.T) {
	var tests = []struct {
		input     string
		keySpan   ast.Span
		valueSpan *ast.Span
		span      ast.Span
	}{
		{`<a [routerLink]>x</a>`, ast.Span{Start: 3, End: 15}, nil, ast.Span{Start: 3, End: 15}},
		{`<a [routerLink]="">x</a>`, ast.Span{Start: 3, End: 15}, &ast.Span{Start: 17, End: 17}, ast.Span{Start: 3, End: 18}},
		{`<a [routerLink]="['/a']">x</a>`, ast.Span{Start: 3, End: 15}, &ast.Span{Start: 17, End: 23}, ast.Span{Start: 3, End: 24}},
	}
	for _, test := range tests {
		var file, err = Parse(test.input, "test.html")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.input, err)
			continue
		}
		var attr = file.Nodes[0].(*ast.Element).Inputs[0]
		if attr.KeySpan != test.keySpan {
			t.Errorf("%s: expected key span %v, got %v", test.input, test.keySpan, attr.KeySpan)
		}
		if diff := cmp.Diff(test.valueSpan, attr.ValueSpan); diff != "" {
			t.Errorf("%s: value span (-want +got):\n%s", test.input, diff)
		}
		if attr.Span != test.span {
			t.Errorf("%s: expected span %v, got %v", test.input, test.span, attr.Span)
		}
	}

	var file, _ = Parse(`<a [routerLink]>x</a>`, "test.html")
	var value = file.Nodes[0].(*ast.Element).Inputs[0].Value
	if empty, ok := value.(*ast.EmptyExpr); !ok || empty.Span != (ast.Span{Start: 15, End: 15}) {
		t.Errorf("expected empty expression at 15, got %#v", value)
	}
}

func TestBindingKinds(t *testing.T) {
	var file, err = Parse(`<div [attr.role]="r" [class.on]="c" [style.width.px]="w" [@fade]="s"`+
		` (window:resize)="onResize($event)" (@fade.done)="d()" [(ngModel)]="name" bind-title="t" on-blur="b()"></div>`, "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var el = file.Nodes[0].(*ast.Element)

	type input struct {
		Name string
		Type ast.BindingType
		Unit string
	}
	var inputs []input
	for _, in := range el.Inputs {
		inputs = append(inputs, input{in.Name, in.Type, in.Unit})
	}
	var expectedInputs = []input{
		{"role", ast.BindingAttribute, ""},
		{"on", ast.BindingClass, ""},
		{"width", ast.BindingStyle, "px"},
		{"fade", ast.BindingAnimation, ""},
		{"ngModel", ast.BindingProperty, ""},
		{"title", ast.BindingProperty, ""},
	}
	if diff := cmp.Diff(expectedInputs, inputs); diff != "" {
		t.Errorf("inputs (-want +got):\n%s", diff)
	}

	var outputs []string
	for _, out := range el.Outputs {
		outputs = append(outputs, out.FullName()+"="+out.Handler.String())
	}
	var expectedOutputs = []string{
		"window:resize=onResize($event)",
		"@fade.done=d()",
		"ngModelChange=name = $event",
		"blur=b()",
	}
	if diff := cmp.Diff(expectedOutputs, outputs); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
}

func TestStructuralTemplate(t *testing.T) {
	var file, err = Parse(`<li *ngFor="let item of items; index as i" class="x">{{i}}</li>`, "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var tmpl = file.Nodes[0].(*ast.Template)
	if tmpl.TagName != "li" {
		t.Errorf("expected tag li, got %q", tmpl.TagName)
	}
	var attrs []string
	for _, n := range tmpl.TemplateAttrs {
		attrs = append(attrs, n.Kind().String()+":"+n.String())
	}
	var expected = []string{`TextAttribute:ngFor`, `BoundAttribute:ngForOf="items"`}
	if diff := cmp.Diff(expected, attrs); diff != "" {
		t.Errorf("template attributes (-want +got):\n%s", diff)
	}
	var vars []string
	for _, v := range tmpl.Variables {
		vars = append(vars, v.Name+"="+v.Value)
	}
	if diff := cmp.Diff([]string{"item=$implicit", "i=index"}, vars); diff != "" {
		t.Errorf("variables (-want +got):\n%s", diff)
	}
	var li = tmpl.Body[0].(*ast.Element)
	if len(li.Attributes) != 1 || li.Attributes[0].Name != "class" {
		t.Errorf("expected class attribute to stay on the element, got %v", li.Attributes)
	}
}

func TestInterpolatedAttribute(t *testing.T) {
	var file, err = Parse(`<img src="{{base}}/a.png" alt="x &lt; y">`, "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var img = file.Nodes[0].(*ast.Element)
	if len(img.Inputs) != 1 || img.Inputs[0].Name != "src" {
		t.Fatalf("expected src binding, got %v", img.Inputs)
	}
	if _, ok := img.Inputs[0].Value.(*ast.Interpolation); !ok {
		t.Errorf("expected interpolation, got %T", img.Inputs[0].Value)
	}
	if img.Attributes[0].Value != "x < y" {
		t.Errorf("expected decoded attribute value, got %q", img.Attributes[0].Value)
	}
}

func TestContentSelector(t *testing.T) {
	var file, err = Parse(`<ng-content></ng-content><ng-content select="[title]"/>`, "test.html")
	if err != nil {
		t.Fatal(err)
	}
	var selectors []string
	for _, n := range file.Nodes {
		selectors = append(selectors, n.(*ast.Content).Selector)
	}
	if diff := cmp.Diff([]string{"*", "[title]"}, selectors); diff != "" {
		t.Errorf("selectors (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		input string
		msg   string // expected error string, including position
	}{
		{"<div>", "test.html@1:1: unclosed element <div>"},
		{"<div></span>", "test.html@1:6: unexpected closing tag </span>; expected </div>"},
		{"</div>", "test.html@1:1: unexpected closing tag </div>"},
		{"\n\n  <div", "test.html@3:7: unterminated start tag <div"},
		{"{#for item of items}x{/for}", `test.html@1:1: for loop must have a "track" expression`},
		{"{#for item in items; track item}{/for}", `cannot parse for loop expression`},
		{"{#for x of xs; track x; track y}{/for}", `for loop can only have one "track" expression`},
		{"{#for x of xs; track x; let i = $foo}{/for}", `unknown for loop context variable "$foo"`},
		{"{#if a}x", "test.html@1:1: unclosed block {#if}"},
		{"{#if a}x{/for}", "unexpected {/for}; expected {/if}"},
		{"{#if a; as b; as c}{/if}", `conditional can only have one "as" expression`},
		{"{#if a}{:else}{:else if b}{/if}", "{:else} must be the last branch"},
		{"{#while a}{/while}", "unrecognized block {#while}"},
		{"{#switch a}x{:case 1}{/switch}", "switch block can only contain {:case} and {:default} blocks"},
		{"{:else}", "unexpected {:else}"},
		{"<p>{{ a = 1 }}</p>", "test.html@1:7: parser error: bindings cannot contain assignments"},
		{`<b (click)="a | p"></b>`, "cannot have a pipe in an action expression"},
		{`<div let-x="y"></div>`, `"let-" is only supported on ng-template elements`},
		{`<div *ngIf="a" *ngFor="let x of y"></div>`, "can't have multiple template bindings"},
		{`<input [(ngModel)]="a()">`, "unsupported expression in a two-way binding"},
		{`<a #my-ref></a>`, `"-" is not allowed in reference names`},
		{`<ng-content>x</ng-content>`, "<ng-content> element cannot have content"},
		{`{n, other, x {y}}`, `unknown ICU type "other"`},
	}
	for _, test := range tests {
		var file, err = Parse(test.input, "test.html")
		if err == nil {
			t.Errorf("%q: expected error, got %v", test.input, file)
			continue
		}
		if file != nil {
			t.Errorf("%q: expected no file on error", test.input)
		}
		if !strings.Contains(err.Error(), test.msg) {
			t.Errorf("%q: expected error containing\n\t%q\ngot\n\t%q", test.input, test.msg, err)
		}
		if !errortypes.Is(err, errortypes.ParseError) {
			t.Errorf("%q: expected a ParseError, got %T", test.input, err)
		}
	}
}

func TestParseErrorList(t *testing.T) {
	var _, err = Parse("<p>{{ a = 1 }}</p>\n<p [x]=\"b;c\"></p>", "test.html")
	var list, ok = err.(errortypes.List)
	if !ok {
		t.Fatalf("expected errortypes.List, got %T", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(list), list)
	}
	if list[0].Line() != 1 || list[1].Line() != 2 {
		t.Errorf("expected errors on lines 1 and 2, got %d and %d", list[0].Line(), list[1].Line())
	}
}

func TestParseGracefully(t *testing.T) {
	if file := ParseGracefully("<div", "test.html"); file != nil {
		t.Errorf("expected nil for malformed template, got %v", file)
	}
	if file := ParseGracefully("<div></div>", "test.html"); file == nil || len(file.Nodes) != 1 {
		t.Errorf("expected parsed template, got %v", file)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	var tests = []struct{ in, out string }{
		{"", ""},
		{"a b", "a b"},
		{"a  b", "a b"},
		{"\n a\n", " a "},
		{"a\t\tb\r\nc", "a b c"},
	}
	for _, test := range tests {
		if got := collapseWhitespace(test.in); got != test.out {
			t.Errorf("%q: expected %q, got %q", test.in, test.out, got)
		}
	}
}
