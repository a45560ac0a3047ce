package selector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		input    string
		expected string
	}{
		{"div", "div"},
		{"[ngFor][ngForOf]", "[ngFor][ngForOf]"},
		{"button.Primary", "button.primary"},
		{"#main", "[id=main]"},
		{"a[routerLink], area[routerLink]", "a[routerLink],area[routerLink]"},
		{`[type="Text"]`, "[type=text]"},
		{"[role=tab]", "[role=tab]"},
		{":not(.x)", "*:not(.x)"},
		{"input:not([type=checkbox])", "input:not([type=checkbox])"},
		{`[a\$b]`, `[a\$b]`},
	}
	for _, test := range tests {
		var list, err = Parse(test.input)
		if err != nil {
			t.Errorf("%q: %v", test.input, err)
			continue
		}
		if got := ListString(list); got != test.expected {
			t.Errorf("%q: expected %q, got %q", test.input, test.expected, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []string{
		"",
		"div span",
		"a,",
		":not(:not(a))",
		":not(a, b)",
		":not(a",
		"[a",
		"[a$b]",
		`[a="b]`,
		"a)",
		"a>b",
	}
	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

func TestMatches(t *testing.T) {
	var tests = []struct {
		selector string
		target   Target
		expected bool
	}{
		{"div", NewTarget("div"), true},
		{"div", NewTarget("span"), false},
		{"*", NewTarget("span"), true},
		{"[routerLink]", NewTarget("a", Attr{"routerLink", ""}), true},
		{"[routerLink]", NewTarget("a", Attr{"routerlink", ""}), false},
		{"[type=text]", NewTarget("input", Attr{"type", "TEXT"}), true},
		{"[type=text]", NewTarget("input", Attr{"type", "radio"}), false},
		{".a.b", NewTarget("p", Attr{"class", "b  a c"}), true},
		{".a.b", NewTarget("p", Attr{"class", "a"}), false},
		{"[ngFor][ngForOf]", NewTarget("li", Attr{"ngFor", ""}, Attr{"ngForOf", ""}), true},
		{"[ngFor][ngForOf]", NewTarget("li", Attr{"ngForOf", ""}), false},
		{"input:not([type=checkbox])", NewTarget("input"), true},
		{"input:not([type=checkbox])", NewTarget("input", Attr{"type", "checkbox"}), false},
		{":not(.x)", NewTarget("b", Attr{"class", "x"}), false},
		{"a[routerLink], area[routerLink]", NewTarget("area", Attr{"routerLink", ""}), true},
	}
	for _, test := range tests {
		var got = MatchesAny(MustParse(test.selector), test.target)
		if got != test.expected {
			t.Errorf("%q against %v: expected %v, got %v", test.selector, test.target, test.expected, got)
		}
	}
}

func TestMatcher(t *testing.T) {
	var m Matcher
	m.Add(MustParse("[a]"), "A")
	m.Add(MustParse("div, [b]"), "DivOrB")
	m.Add(MustParse("span"), "Span")
	var got = m.Match(NewTarget("div", Attr{"a", ""}, Attr{"b", ""}))
	var expected = []interface{}{"A", "DivOrB"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("match (-expected +got):\n%s", diff)
	}
}

func TestR3(t *testing.T) {
	var tests = []struct {
		selector string
		expected []interface{}
	}{
		{"div", []interface{}{"div"}},
		{"[ngFor][ngForOf]", []interface{}{"", "ngFor", "", "ngForOf", ""}},
		{"button.a.b[x=y]", []interface{}{"button", "x", "y", FlagClass, "a", "b"}},
		{"*", []interface{}{""}},
		{":not(.x)", []interface{}{"", FlagNot | FlagClass, "x"}},
		{"a:not(b[c])", []interface{}{"a", FlagNot | FlagElement, "b", "c", ""}},
		{"[a]:not([b].c)", []interface{}{"", "a", "", FlagNot | FlagAttribute, "b", "", FlagClass, "c"}},
	}
	for _, test := range tests {
		var got = MustParse(test.selector)[0].R3()
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Errorf("%q (-expected +got):\n%s", test.selector, diff)
		}
	}
}
