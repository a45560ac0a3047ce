package routerlink

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/scan"
	"github.com/robfig/ngc/vfs"
)

const aComponent = `import { Component } from '@angular/core';

@Component({selector: 'a-cmp', template: '<a [routerLink]>A</a>'})
export class ACmp {}

@Component({selector: 'a-ext', templateUrl: './shared.html'})
export class AExt {}
`

const bComponent = `import { Component } from '@angular/core';

@Component({selector: 'b-ext', templateUrl: './shared.html'})
export class BExt {}
`

func workspaceTree() *vfs.Tree {
	return vfs.NewMemory(map[string]string{
		"angular.json": `{"projects": {"app": {"architect": {
			"build": {"options": {"tsConfig": "tsconfig.app.json"}},
			"test": {"options": {"tsConfig": "tsconfig.spec.json"}}}}}}`,
		"tsconfig.app.json":      `{"include": ["src/**/*.ts"], "exclude": ["src/**/*.spec.ts"]}`,
		"tsconfig.spec.json":     `{"include": ["src/**/*.spec.ts"]}`,
		"src/app/a.component.ts": aComponent,
		"src/app/b.component.ts": bComponent,
		"src/app/shared.html":    "<p>\n<a [routerLink]=\"\">S</a></p>",
	})
}

func TestRun(t *testing.T) {
	var tree = workspaceTree()
	var out bytes.Buffer
	var result, err = Run(tree, log.New(&out, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	var expected = []string{"src/app/a.component.ts@3:46", "src/app/shared.html@2:4"}
	if diff := cmp.Diff(expected, result.Fixed); diff != "" {
		t.Errorf("fixed (-expected +got):\n%s", diff)
	}

	var a, _ = tree.Read("src/app/a.component.ts")
	if expected := strings.Replace(aComponent, "<a [routerLink]>", `<a [routerLink]="[]">`, 1); a != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, a)
	}
	var shared, _ = tree.Read("src/app/shared.html")
	if expected := "<p>\n<a [routerLink]=\"[]\">S</a></p>"; shared != expected {
		t.Errorf("expected the shared template to be fixed once, got %q", shared)
	}

	var lines = strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	var expectedLines = []string{
		"---- RouterLink empty assignment schematic ----",
		"The behavior of empty/`undefined` inputs for `routerLink` has changed",
		"from linking to the current page to instead completely disable the link.",
		"Read more about this change here: " + readmeURL,
		"",
		"The following empty `routerLink` inputs were found and fixed:",
		"⮑   src/app/a.component.ts@3:46",
		"⮑   src/app/shared.html@2:4",
	}
	if diff := cmp.Diff(expectedLines, lines); diff != "" {
		t.Errorf("log (-expected +got):\n%s", diff)
	}
}

func TestRunIdempotent(t *testing.T) {
	var tree = workspaceTree()
	if _, err := Run(tree, log.New(&bytes.Buffer{}, "", 0)); err != nil {
		t.Fatal(err)
	}
	var before, _ = tree.Read("src/app/a.component.ts")

	var out bytes.Buffer
	var result, err = Run(tree, log.New(&out, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Fixed) != 0 || out.Len() != 0 {
		t.Errorf("expected a second run to do nothing, got %v and %q", result.Fixed, out.String())
	}
	if after, _ := tree.Read("src/app/a.component.ts"); after != before {
		t.Errorf("expected the source to be unchanged, got\n%s", after)
	}
}

func TestRunWithoutTsConfig(t *testing.T) {
	var out bytes.Buffer
	var _, err = Run(vfs.NewMemory(map[string]string{"src/app.html": `<a [routerLink]></a>`}), log.New(&out, "", 0))
	if !errortypes.Is(err, errortypes.ConfigurationError) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if expected := "Could not find any tsconfig file. Cannot check templates for empty routerLinks."; err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestFixFilesUnreadable(t *testing.T) {
	var tree = vfs.NewMemory(map[string]string{"ok.html": `<a [routerLink]></a>`})
	var okFile, _ = scan.Scan(context.Background(), "ok.component.ts", "@Component({templateUrl: './ok.html'}) class Ok {}")
	var templates, err = scan.Templates(tree, okFile)
	if err != nil || len(templates) != 1 {
		t.Fatalf("expected one template, got %d (%v)", len(templates), err)
	}
	templates = append([]*scan.ResolvedTemplate{{Content: `<a [routerLink]></a>`, FilePath: "gone.html"}}, templates...)

	var out bytes.Buffer
	var fixed = fixFiles(tree, templates, log.New(&out, "", 0))
	if diff := cmp.Diff([]string{"ok.html@1:4"}, fixed); diff != "" {
		t.Errorf("fixed (-expected +got):\n%s", diff)
	}
	var expected = "error: Failed to read file containing template; cannot apply fixes for empty routerLink expressions in gone.html.\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}
