package ngc

import (
	"bytes"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/golden"
	"github.com/robfig/ngc/jit"
	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/vfs"
)

const animationSource = `import { Component, NgModule } from '@angular/core';

@Component({ selector: 'my-app', template: '<div @attr [@binding]="exp"></div>' })
export class MyApp {
  exp: any;
  any: any;
}

@NgModule({ declarations: [MyApp] })
export class MyModule {}
`

// The bundle reads the same metadata from source that the emitter's
// compliance case builds by hand.
func TestCompileStaticAnimationAttribute(t *testing.T) {
	var program, err = NewBundle().
		SetTree(vfs.NewMemory(nil)).
		SetMode(ngjs.Partial).
		AddSourceString("static_animation_attribute.ts", animationSource).
		Compile()
	if err != nil {
		t.Fatal(err)
	}
	var out = program.File("static_animation_attribute.ts")
	if out == nil {
		t.Fatalf("expected an output file, got %v", program.Files)
	}
	if out.JSPath() != "static_animation_attribute.js" || out.DTSPath() != "static_animation_attribute.d.ts" {
		t.Errorf("unexpected output paths %s, %s", out.JSPath(), out.DTSPath())
	}
	var sections = []golden.Section{
		{Name: "static_animation_attribute.js", Content: out.JS},
		{Name: "static_animation_attribute.d.ts", Content: out.DTS},
	}
	if err := golden.Verify("ngjs/testdata/static_animation_attribute.golden", sections, false); err != nil {
		t.Error(err)
	}
}

const appSource = `import { Component, Injectable, Input, NgModule } from '@angular/core';

@Injectable({providedIn: 'root'})
export class Greeter {}

@Component({
  selector: 'parent-cmp',
  template: '<child-cmp [value]="v"></child-cmp>',
})
export class Parent {
  v: string;
  constructor(greeter: Greeter) {}
}

@Component({selector: 'child-cmp', template: '{{value}}'})
export class Child {
  @Input() value: string;
}

@NgModule({declarations: [Parent, Child]})
export class AppModule {}
`

func TestCompileAndRun(t *testing.T) {
	var program, err = NewBundle().
		SetTree(vfs.NewMemory(nil)).
		AddSourceString("src/app.ts", appSource).
		Compile()
	if err != nil {
		t.Fatal(err)
	}
	var out = program.File("src/app.ts")
	if out == nil {
		t.Fatal("expected src/app.ts to be compiled")
	}
	if !strings.HasPrefix(out.JS, "import { Component, Injectable, Input, NgModule } from '@angular/core';\n") {
		t.Errorf("expected the source imports first, got:\n%s", out.JS)
	}

	var rt = jit.New()
	if err := rt.RunFile(out.File); err != nil {
		t.Fatal(err)
	}
	var checks = []struct {
		expr     string
		expected interface{}
	}{
		{"Greeter.ɵprov.providedIn", "root"},
		{"Parent.ɵfac() instanceof Parent", true},
		{"Parent.ɵcmp.selectors[0][0]", "parent-cmp"},
		{"ngc.resolveAll(Parent.ɵcmp.directives)[0] === Child", true},
		{"Child.ɵcmp.inputs.value", "value"},
		{"AppModule.ɵmod.declarations.length === 2", true},
	}
	for _, c := range checks {
		var got, err = rt.Export(c.expr)
		if err != nil {
			t.Errorf("%s: %v", c.expr, err)
			continue
		}
		if got != c.expected {
			t.Errorf("%s: expected %v, got %v", c.expr, c.expected, got)
		}
	}

	rendered, err := rt.Render("Parent", `{v: "x"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rendered, `property("value", "x")`) {
		t.Errorf("expected the input to be bound, got:\n%s", rendered)
	}
}

func TestCompileExternalTemplate(t *testing.T) {
	var tree = vfs.NewMemory(map[string]string{
		"src/a.component.ts": `import { Component } from '@angular/core';
@Component({selector: 'a-cmp', templateUrl: './a.component.html', styleUrls: ['./a.component.css']})
export class ACmp {}
`,
		"src/a.component.html": "<p>A</p>",
		"src/a.component.css":  "p { color: red; }",
	})
	var program, err = NewBundle().SetTree(tree).AddSourceDir("src").Compile()
	if err != nil {
		t.Fatal(err)
	}
	var out = program.File("src/a.component.ts")
	if out == nil {
		t.Fatal("expected src/a.component.ts to be compiled")
	}
	for _, expected := range []string{`i0.ɵɵtext(1, "A");`, `"p { color: red; }"`} {
		if !strings.Contains(out.JS, expected) {
			t.Errorf("expected %s in:\n%s", expected, out.JS)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	var tree = vfs.NewMemory(nil)
	var program, err = NewBundle().
		SetTree(tree).
		AddSourceString("src/ok.ts", "@Injectable() export class Ok {}\n").
		AddSourceString("src/broken.ts", "\n\n@Component({selector: 'b', template: '<div></span>'})\nexport class Broken {}\n").
		AddSourceString("src/missing.ts", "@Component({selector: 'm', templateUrl: './missing.html'})\nexport class Missing {}\n").
		Compile()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !errortypes.Is(err, errortypes.ParseError) || !errortypes.Is(err, errortypes.IOError) {
		t.Errorf("expected a parse error and an IO error, got %v", err)
	}
	if program == nil || program.File("src/ok.ts") == nil {
		t.Fatalf("expected the valid file to be compiled, got %v", program)
	}
	if program.File("src/broken.ts") != nil {
		t.Errorf("expected the broken file to be left out")
	}

	var list = err.(errortypes.List)
	var found bool
	for _, e := range list {
		if e.Kind == errortypes.ParseError {
			found = true
			if e.Path != "src/broken.ts" || e.LineNum != 3 {
				t.Errorf("expected the parse error at line 3 of src/broken.ts, got %v", e)
			}
		}
	}
	if !found {
		t.Errorf("expected a parse error in %v", list)
	}
}

func TestCompileStickyError(t *testing.T) {
	var _, err = NewBundle().
		SetTree(vfs.NewMemory(nil)).
		AddSourceFile("gone.ts").
		AddSourceString("ok.ts", "@Injectable() export class Ok {}").
		Compile()
	if !errortypes.Is(err, errortypes.IOError) {
		t.Errorf("expected the read error to stick, got %v", err)
	}
}

func TestWatchMemoryTree(t *testing.T) {
	var _, err = NewBundle().SetTree(vfs.NewMemory(nil)).WatchFiles(true).Compile()
	if err == nil {
		t.Error("expected watching a memory tree to fail")
	}
}

func TestMessages(t *testing.T) {
	var line = `@Component({selector: 'a', template: '<h1 i18n="site header|greeting">Hello</h1>'})`
	var msgs, err = NewBundle().
		SetTree(vfs.NewMemory(map[string]string{"src/b.html": "<p>\n  <span i18n>Bye</span></p>"})).
		AddSourceString("src/a.ts", "import { Component } from '@angular/core';\n"+line+"\nexport class A {}\n").
		AddSourceString("src/b.ts", "@Component({selector: 'b', templateUrl: './b.html'})\nexport class B {}\n").
		Messages()
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	var a, b = msgs[0], msgs[1]
	if a.Text != "Hello" || a.Meaning != "site header" || a.Description != "greeting" {
		t.Errorf("unexpected message %+v", a)
	}
	if expected := strings.Index(line, "<h1") + 1; a.File != "src/a.ts" || a.Line != 2 || a.Col != expected {
		t.Errorf("expected src/a.ts@2:%d, got %s@%d:%d", expected, a.File, a.Line, a.Col)
	}
	if b.Text != "Bye" || b.File != "src/b.html" || b.Line != 2 || b.Col != 3 {
		t.Errorf("expected Bye at src/b.html@2:3, got %+v", b)
	}
}

func captureLogger(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	var saved = Logger
	Logger = log.New(&buf, "", 0)
	t.Cleanup(func() { Logger = saved })
	return &buf
}

func TestUpdateKeepsCompiledFiles(t *testing.T) {
	var logged = captureLogger(t)
	var inUse = &Program{}
	var called *Program
	var b = NewBundle().SetRecompilationCallback(func(p *Program) { called = p })
	b.program = inUse

	var recompiled = &Program{Files: []*OutputFile{{Source: "src/ok.ts"}}}
	var err = errortypes.List{errortypes.Newf(errortypes.ParseError, "src/broken.ts", 1, 2, "oops")}
	if !b.update(recompiled, err) {
		t.Fatal("expected the program to be replaced")
	}
	if called != recompiled {
		t.Errorf("expected the callback to get the recompiled program")
	}
	if inUse.File("src/ok.ts") == nil {
		t.Errorf("expected the compiled file to replace the program, got %v", inUse.Files)
	}
	if !strings.Contains(logged.String(), "src/broken.ts@1:2: oops") {
		t.Errorf("expected the error to be logged, got %q", logged.String())
	}
}

func TestUpdateWithoutProgram(t *testing.T) {
	captureLogger(t)
	var inUse = &Program{Files: []*OutputFile{{Source: "a.ts"}}}
	var b = NewBundle().SetRecompilationCallback(func(*Program) {
		t.Error("expected no callback")
	})
	b.program = inUse
	if b.update(nil, errortypes.New(errortypes.IOError, "gone")) {
		t.Error("expected the program to be kept")
	}
	if inUse.File("a.ts") == nil {
		t.Error("expected the in-use program to be unchanged")
	}
}

func TestRecompileWatchedProgram(t *testing.T) {
	var dir = t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "a.ts"), []byte("@Injectable() export class A {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var b = NewBundle().SetTree(vfs.New(dir)).WatchFiles(true).AddSourceFile("a.ts")
	defer b.Close()

	var first, err = b.Compile()
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Compile()
	if err != nil {
		t.Fatal(err)
	}
	b.mu.Lock()
	var inUse = b.program
	b.mu.Unlock()
	if inUse != second || first == second {
		t.Errorf("expected the latest program to be the one updated")
	}

	recompiled, err := b.recompile()
	if err != nil {
		t.Fatal(err)
	}
	if !b.update(recompiled, nil) || second.File("a.ts") == nil {
		t.Errorf("expected the recompiled program in place, got %v", second.Files)
	}
}
