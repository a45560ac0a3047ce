package i18n

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestPOBundle(t *testing.T) {
	var provider, err = Dir("testdata")
	if err != nil {
		t.Fatal(err)
	}

	var bundle = provider.Bundle("zz")
	var tests = []struct {
		id  string
		str string
	}{
		{"3329840836245051515", "zA ztrip zwas ztaken."},
		{"7224011416745566687", "zArchiveNoun"},
		{"4826315192146469447", "zArchiveVerb"},
		{"1234567890123456789", ""},
	}

	for _, test := range tests {
		var actual, ok = bundle.Translate(test.id)
		if ok != (test.str != "") {
			t.Errorf("%s: expected found=%v, got %v", test.id, test.str != "", ok)
		}
		if actual != test.str {
			t.Errorf("expected %q, got %q", test.str, actual)
		}
	}
}

func TestPOBundleNotFound(t *testing.T) {
	var provider, err = Dir("testdata")
	if err != nil {
		t.Fatal(err)
	}
	if bundle := provider.Bundle("xx"); bundle != nil {
		t.Errorf("expected null bundle, got %#v", bundle)
	}
	var none *Bundle
	if _, ok := none.Translate("1"); ok {
		t.Errorf("expected a nil bundle to translate nothing")
	}
}

func TestWritePO(t *testing.T) {
	var msgs = []*Message{
		{ID: "3329840836245051515", Text: "A trip was taken.", File: "app.html", Line: 3},
		{ID: "3329840836245051515", Text: "A trip was taken.", File: "other.html", Line: 1},
		{ID: "7224011416745566687", Meaning: "noun", Description: "a store", Text: "Archive", File: "app.html", Line: 9},
	}
	var buf bytes.Buffer
	if err := WritePO(&buf, msgs); err != nil {
		t.Fatal(err)
	}
	var out = buf.String()
	for _, want := range []string{
		`msgid "A trip was taken."`,
		`msgctxt "noun"`,
		"id=7224011416745566687",
		"a store",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "other.html") != 0 {
		t.Errorf("expected duplicate message to be written once, got:\n%s", out)
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name         string
		tag          language.Tag
		expectedTags []language.Tag
	}{
		{
			name:         "When given a generic locale code, no extra fallbacks are provided",
			tag:          language.MustParse("en"),
			expectedTags: []language.Tag{language.English},
		},
		{
			name:         "When given a regional locale code, generic fallback is provided",
			tag:          language.MustParse("en_US"),
			expectedTags: []language.Tag{language.AmericanEnglish, language.English},
		},
		{
			name: "When given a locale code with script and region, generic and script fallbacks are provided",
			tag:  language.MustParse("ar_Arab_EG"),
			expectedTags: []language.Tag{
				language.MustParse("ar_Arab_EG"),
				language.MustParse("ar_Arab"),
				language.Arabic,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fb := fallbacks(test.tag)
			for i, tag := range test.expectedTags {
				if fb[i] != tag {
					t.Errorf("Expected tag %+v, got tag %+v", tag, fb[i])
				}
			}
		})
	}
}
