package routerlink

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/ast"
)

func TestAnalyze(t *testing.T) {
	var tests = []struct {
		name     string
		input    string
		expected []Site
	}{
		{"no value", `<a [routerLink]>x</a>`, []Site{{ast.Span{Start: 3, End: 15}, nil}}},
		{"empty value", `<a [routerLink]="">x</a>`, []Site{{ast.Span{Start: 3, End: 18}, &ast.Span{Start: 17, End: 17}}}},
		{"static empty", `<a routerLink="">x</a>`, []Site{{ast.Span{Start: 3, End: 16}, &ast.Span{Start: 15, End: 15}}}},
		{"commands", `<a [routerLink]="['/a']">x</a>`, []Site{}},
		{"bare static", `<a routerLink>x</a>`, []Site{}},
		{"other binding", `<a [title]="">x</a>`, []Site{}},
		{"nested", `<ng-template><div><a [routerLink]></a></div></ng-template>`, []Site{{ast.Span{Start: 21, End: 33}, nil}}},
	}
	for _, test := range tests {
		var got = Analyze(test.input, "test.html")
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Errorf("%s: sites (-expected +got):\n%s", test.name, diff)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	var tests = []struct {
		name     string
		in       ast.Expr
		expected bool
	}{
		{"nil", nil, false},
		{"empty", &ast.EmptyExpr{}, true},
		{"literal", &ast.LiteralPrimitive{Value: ""}, false},
	}
	for _, test := range tests {
		if got := isEmpty(test.in); got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.name, test.expected, got)
		}
	}
}

func TestAnalyzeUnparseable(t *testing.T) {
	if sites := Analyze(`<div><a [routerLink]></div>`, "broken.html"); sites != nil {
		t.Errorf("expected nil for a malformed template, got %v", sites)
	}
}

func TestFixTemplate(t *testing.T) {
	var tests = []struct {
		input, expected string
	}{
		{`<a [routerLink]>x</a>`, `<a [routerLink]="[]">x</a>`},
		{`<a [routerLink]="">x</a>`, `<a [routerLink]="[]">x</a>`},
		{`<a routerLink="">x</a>`, `<a routerLink="[]">x</a>`},
		{`<a [routerLink]="['/a']">x</a>`, `<a [routerLink]="['/a']">x</a>`},
		{
			`<a [routerLink]>one</a><p>between the links</p><a [routerLink]="">two</a>`,
			`<a [routerLink]="[]">one</a><p>between the links</p><a [routerLink]="[]">two</a>`,
		},
		{
			"{#if show}<a [routerLink]>a</a>{:else}<a [routerLink]=''>b</a>{/if}",
			"{#if show}<a [routerLink]=\"[]\">a</a>{:else}<a [routerLink]='[]'>b</a>{/if}",
		},
	}
	for _, test := range tests {
		var got, _, err = FixTemplate(test.input, "test.html")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.input, err)
			continue
		}
		if got != test.expected {
			t.Errorf("expected %s, got %s", test.expected, got)
		}

		again, sites, err := FixTemplate(got, "test.html")
		if err != nil || len(sites) != 0 || again != got {
			t.Errorf("%s: expected the second pass to find nothing, got %v", test.input, sites)
		}
	}
}

func TestFixesDescending(t *testing.T) {
	var input = `<a [routerLink]></a><b>..............</b><a [routerLink]></a>`
	var sites = Analyze(input, "test.html")
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(sites))
	}

	var forward, err = Fixes(sites).Apply(input)
	if err != nil {
		t.Fatal(err)
	}
	reversed, err := Fixes([]Site{sites[1], sites[0]}).Apply(input)
	if err != nil {
		t.Fatal(err)
	}
	if forward != reversed {
		t.Errorf("expected the order of sites not to matter:\n%s\n%s", forward, reversed)
	}
	if expected := `<a [routerLink]="[]"></a><b>..............</b><a [routerLink]="[]"></a>`; forward != expected {
		t.Errorf("expected %s, got %s", expected, forward)
	}
}
