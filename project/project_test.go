package project

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/vfs"
)

const workspace = `{
  // generated by the CLI
  "version": 1,
  "projects": {
    "app": {
      "root": "",
      "architect": {
        "build": {
          "options": {"tsConfig": "./tsconfig.app.json"},
          "configurations": {
            "production": {"tsConfig": "tsconfig.prod.json"},
            "missing": {"tsConfig": "tsconfig.missing.json"}
          }
        },
        "test": {"options": {"tsConfig": "tsconfig.spec.json"}},
        "lint": {"options": {"tsConfig": "tsconfig.lint.json"}},
      }
    },
    "lib": {
      "targets": {
        "build": {"options": {"tsConfig": "tsconfig.app.json"}}
      }
    }
  }
}`

func TestTsConfigPaths(t *testing.T) {
	var tree = vfs.NewMemory(map[string]string{
		"angular.json":       workspace,
		"tsconfig.app.json":  "{}",
		"tsconfig.prod.json": "{}",
		"tsconfig.spec.json": "{}",
		"tsconfig.lint.json": "{}",
	})
	var build, test, err = TsConfigPaths(tree)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"tsconfig.app.json", "tsconfig.prod.json"}, build); diff != "" {
		t.Errorf("build (-expected +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tsconfig.spec.json"}, test); diff != "" {
		t.Errorf("test (-expected +got):\n%s", diff)
	}
}

func TestTsConfigPathsWithoutWorkspace(t *testing.T) {
	var build, test, err = TsConfigPaths(vfs.NewMemory(nil))
	if err != nil || len(build) != 0 || len(test) != 0 {
		t.Errorf("expected no paths and no error, got %v %v %v", build, test, err)
	}

	_, _, err = TsConfigPaths(vfs.NewMemory(map[string]string{"angular.json": "{"}))
	if !errortypes.Is(err, errortypes.ConfigurationError) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestStripComments(t *testing.T) {
	var tests = []struct{ in, expected string }{
		{`{"a": 1} // done`, `{"a":1}`},
		{`{/* x */"a": "//not a comment",}`, `{"a":"//not a comment"}`},
		{"[1, 2, // two\n]", `[1,2]`},
		{`{"a": "quote \" /* kept */"}`, `{"a":"quote \" /* kept */"}`},
	}
	for _, test := range tests {
		var v interface{}
		if err := json.Unmarshal([]byte(stripComments(test.in)), &v); err != nil {
			t.Errorf("%s: %v", test.in, err)
			continue
		}
		var got, _ = json.Marshal(v)
		if string(got) != test.expected {
			t.Errorf("expected %s, got %s", test.expected, got)
		}
	}
}

func TestMatch(t *testing.T) {
	var tests = []struct {
		pattern, name string
		expected      bool
	}{
		{"src/**/*.ts", "src/app/app.component.ts", true},
		{"src/**/*.ts", "src/main.ts", true},
		{"src/**/*.ts", "lib/main.ts", false},
		{"src", "src/app/a.ts", true},
		{"src/main.ts", "src/main.ts", true},
		{"src/*.ts", "src/app/a.ts", false},
		{"**/*", "a/b/c.ts", true},
	}
	for _, test := range tests {
		if got := Match(test.pattern, test.name); got != test.expected {
			t.Errorf("Match(%q, %q): expected %v, got %v", test.pattern, test.name, test.expected, got)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	var tree = vfs.NewMemory(map[string]string{
		"tsconfig.json":                 `{"include": ["src/**/*.ts"], "exclude": ["src/**/*.spec.ts"]}`,
		"tsconfig.app.json":             `{"extends": "./tsconfig.json", "files": ["extra/main.ts"]}`,
		"src/app/app.component.ts":      "",
		"src/app/app.component.spec.ts": "",
		"src/typings.d.ts":              "",
		"extra/main.ts":                 "",
		"extra/other.ts":                "",
	})
	var cfg, err = LoadTsConfig(tree, "tsconfig.app.json")
	if err != nil {
		t.Fatal(err)
	}
	files, err := SourceFiles(tree, cfg)
	if err != nil {
		t.Fatal(err)
	}
	var expected = []string{"extra/main.ts", "src/app/app.component.ts"}
	if diff := cmp.Diff(expected, files); diff != "" {
		t.Errorf("files (-expected +got):\n%s", diff)
	}
}
