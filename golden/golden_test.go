package golden

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var banner = strings.Repeat("*", 100)

func TestFormatParse(t *testing.T) {
	var sections = []Section{
		{Name: "a.js", Content: "export class A {\n}\n"},
		{Name: "a.d.ts", Content: "export declare class A {\n}"},
	}
	var text = Format(sections)
	var expected = "/" + banner + "\n * PARTIAL FILE: a.js\n " + banner + "/\nexport class A {\n}\n\n" +
		"/" + banner + "\n * PARTIAL FILE: a.d.ts\n " + banner + "/\nexport declare class A {\n}\n\n"
	if text != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, text)
	}

	var parsed, err = Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	sections[1].Content += "\n"
	if diff := cmp.Diff(sections, parsed); diff != "" {
		t.Errorf("(-expected +got)\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []string{
		"stray text\n",
		"/" + banner + "\nnot a label\n",
		"/" + banner + "\n * PARTIAL FILE: a.js\nno closing banner\n",
	}
	for _, text := range tests {
		if _, err := Parse(text); err == nil {
			t.Errorf("expected an error parsing %q", text)
		}
	}
}

func TestCompare(t *testing.T) {
	var snapshot = []Section{
		{Name: "a.js", Content: "x = 1;\ny = 2;\n"},
	}
	if m := Compare(snapshot, snapshot); len(m) != 0 {
		t.Errorf("expected no mismatch, got %v", m)
	}

	var m = Compare(snapshot, []Section{
		{Name: "a.js", Content: "x = 1;\ny = 3;\n"},
		{Name: "b.js", Content: ""},
	})
	if len(m) != 2 {
		t.Fatalf("expected 2 mismatches, got %d", len(m))
	}
	if m[0].Name != "a.js" || !strings.Contains(m[0].Diff, "y = 3;") {
		t.Errorf("expected a diff of a.js, got %v", m[0])
	}
	if m[1].Name != "b.js" {
		t.Errorf("expected b.js to be missing, got %v", m[1])
	}
}

func TestVerifyUpdate(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "out.golden")
	var sections = []Section{{Name: "a.js", Content: "x = 1;\n"}}
	if err := Verify(path, sections, true); err != nil {
		t.Fatal(err)
	}
	if err := Verify(path, sections, false); err != nil {
		t.Errorf("expected the updated snapshot to verify, got %v", err)
	}
	var err = Verify(path, []Section{{Name: "a.js", Content: "x = 2;\n"}}, false)
	if _, ok := err.(*Mismatch); !ok {
		t.Errorf("expected a mismatch, got %v", err)
	}
}
