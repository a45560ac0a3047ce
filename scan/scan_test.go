package scan

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/ngc/vfs"
)

const source = `import { Component, Input, forwardRef } from '@angular/core';
import * as rx from 'rxjs';

@Component({
  selector: 'app-root',
  template: '<a [routerLink]>home</a>',
})
export class AppComponent {
  @Input() name: string;
  @Input('aliased') other = 1;
  constructor(private svc: DataService, @Optional() @Inject(TOKEN) cfg?: Config) {}
}

@Component({selector: "app-ext", templateUrl: './ext.html', providers: [forwardRef(() => Svc)]})
class ExtComponent extends Base {}
`

func scanSource(t *testing.T) *File {
	var f, err = Scan(context.Background(), "src/app/app.component.ts", source)
	if err != nil {
		t.Fatal(err)
	}
	if f.HasErrors {
		t.Errorf("unexpected syntax errors")
	}
	return f
}

func TestScanImports(t *testing.T) {
	var f = scanSource(t)
	var sources []string
	for _, imp := range f.Imports {
		sources = append(sources, imp.Source)
	}
	if diff := cmp.Diff([]string{"@angular/core", "rxjs"}, sources); diff != "" {
		t.Errorf("sources (-expected +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Component", "Input", "forwardRef"}, f.Imports[0].Names); diff != "" {
		t.Errorf("names (-expected +got):\n%s", diff)
	}
	if expected := "import * as rx from 'rxjs';"; f.ImportText()[1] != expected {
		t.Errorf("expected %q, got %q", expected, f.ImportText()[1])
	}
}

func TestScanClasses(t *testing.T) {
	var f = scanSource(t)
	if len(f.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(f.Classes))
	}

	var app = f.Class("AppComponent")
	if app == nil || !app.Exported {
		t.Fatalf("expected exported AppComponent, got %#v", app)
	}
	var meta = app.Decorator("Component").Arg(0)
	if meta.Kind != ValueObject || !meta.Multiline {
		t.Errorf("expected multiline object, got %v", meta.Kind)
	}
	if sel := meta.Get("selector").String(); sel != "app-root" {
		t.Errorf("expected app-root, got %q", sel)
	}

	var fields [][]string
	for _, field := range app.Fields {
		var row = []string{field.Name, field.Type}
		for _, d := range field.Decorators {
			row = append(row, d.Name, d.Arg(0).String())
		}
		fields = append(fields, row)
	}
	var expected = [][]string{{"name", "string", "Input", ""}, {"other", "", "Input", "aliased"}}
	if diff := cmp.Diff(expected, fields); diff != "" {
		t.Errorf("fields (-expected +got):\n%s", diff)
	}

	if len(app.Ctor) != 2 {
		t.Fatalf("expected 2 constructor parameters, got %d", len(app.Ctor))
	}
	var svc, cfg = app.Ctor[0], app.Ctor[1]
	if svc.Name != "svc" || svc.Type != "DataService" || len(svc.Decorators) != 0 {
		t.Errorf("unexpected first parameter %#v", svc)
	}
	if cfg.Type != "Config" || !cfg.Optional || len(cfg.Decorators) != 2 {
		t.Errorf("unexpected second parameter %#v", cfg)
	}
	if token := cfg.Decorators[1].Arg(0); token.Kind != ValueIdent || token.Str != "TOKEN" {
		t.Errorf("expected TOKEN, got %#v", token)
	}

	var ext = f.Class("ExtComponent")
	if ext.Exported || ext.Extends != "Base" || ext.Ctor != nil {
		t.Errorf("unexpected class %#v", ext)
	}
	var extMeta = ext.Decorator("Component").Arg(0)
	if extMeta.Multiline || extMeta.Get("selector").Quote != '"' {
		t.Errorf("expected a one-line object with a double-quoted selector")
	}
	var providers = extMeta.Get("providers")
	if providers.Kind != ValueArray || len(providers.Elements) != 1 {
		t.Fatalf("expected one provider, got %#v", providers)
	}
	if target, ok := providers.Elements[0].Unwrap(); !ok || target.Str != "Svc" {
		t.Errorf("expected forwardRef to Svc, got %#v", target)
	}
}

func TestTemplates(t *testing.T) {
	var f = scanSource(t)
	var tree = vfs.NewMemory(map[string]string{
		"src/app/ext.html": "<p>\n  <a [routerLink]=\"\">x</a>\n</p>",
	})
	var templates, err = Templates(tree, f)
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	var inline = templates[0]
	if !inline.Inline || inline.FilePath != "src/app/app.component.ts" || inline.Content != "<a [routerLink]>home</a>" {
		t.Errorf("unexpected inline template %#v", inline)
	}
	if expected := strings.Index(source, "<a [routerLink]>"); inline.Start != expected {
		t.Errorf("expected start %d, got %d", expected, inline.Start)
	}
	if line, col := inline.Position(3); line != 5 || col != 16 {
		t.Errorf("expected 5:16, got %d:%d", line, col)
	}

	var external = templates[1]
	if external.Inline || external.FilePath != "src/app/ext.html" || external.Start != 0 {
		t.Errorf("unexpected external template %#v", external)
	}
	if line, col := external.Position(8); line != 1 || col != 4 {
		t.Errorf("expected 1:4, got %d:%d", line, col)
	}
}

func TestTemplatesMissingFile(t *testing.T) {
	var templates, err = Templates(vfs.NewMemory(nil), scanSource(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) != 1 || !templates[0].Inline {
		t.Errorf("expected only the inline template, got %d", len(templates))
	}
}

func TestUnescape(t *testing.T) {
	var tests = []struct{ in, expected string }{
		{`plain`, "plain"},
		{`it\'s`, "it's"},
		{`a\nb`, "a\nb"},
		{`ét\xe9`, "été"},
		{`back\\slash`, `back\slash`},
	}
	for _, test := range tests {
		if got := unescape(test.in); got != test.expected {
			t.Errorf("unescape(%q): expected %q, got %q", test.in, test.expected, got)
		}
	}
}
