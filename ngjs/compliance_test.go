package ngjs

import (
	"flag"
	"testing"

	"github.com/robfig/ngc/golden"
	"github.com/robfig/ngc/output"
)

var update = flag.Bool("update", false, "rewrite golden files")

// animationFile compiles the module of the static animation attribute
// compliance case in partial mode.
func animationFile(t *testing.T) *File {
	var pool = NewConstantPool()
	var file = NewFile([]string{"import { Component, NgModule } from '@angular/core';"}, pool)
	var app, module = output.Var("MyApp"), output.Var("MyModule")
	var template = `<div @attr [@binding]="exp"></div>`

	var cmp, err = CompileComponent(&ComponentMeta{
		DirectiveMeta: DirectiveMeta{Name: "MyApp", Type: app, Selector: "my-app"},
		Template:      template,
		IsInline:      true,
	}, nil, pool, Partial)
	if err != nil {
		t.Fatal(err)
	}
	file.Add(&Class{
		Name:    "MyApp",
		Type:    app,
		Members: []string{"exp: any;", "any: any;"},
		Fields: []Field{
			{"ɵfac", CompileFactory(&FactoryMeta{Name: "MyApp", Type: app, Deps: []Dependency{}, Target: TargetComponent})},
			{"ɵcmp", cmp},
		},
		Metadata: &ClassMetadata{
			Decorator: "Component",
			Args: []output.MapEntry{
				{Key: "selector", Value: &output.Literal{Value: "my-app", SingleQuote: true}},
				{Key: "template", Value: &output.Literal{Value: template, SingleQuote: true}},
			},
		},
	})

	var declarations = []*MaybeForwardRef{Direct(app)}
	file.Add(&Class{
		Name: "MyModule",
		Type: module,
		Fields: []Field{
			{"ɵfac", CompileFactory(&FactoryMeta{Name: "MyModule", Type: module, Deps: []Dependency{}, Target: TargetNgModule})},
			{"ɵmod", CompileNgModule(&NgModuleMeta{Name: "MyModule", Type: module, Declarations: declarations}, Partial)},
			{"ɵinj", CompileInjector(&InjectorMeta{Name: "MyModule", Type: module}, Partial)},
		},
		Metadata: &ClassMetadata{
			Decorator: "NgModule",
			Args:      []output.MapEntry{{Key: "declarations", Value: output.Arr(app)}},
		},
	})
	return file
}

func TestStaticAnimationAttributeGolden(t *testing.T) {
	var file = animationFile(t)
	var js, err = file.JS()
	if err != nil {
		t.Fatal(err)
	}
	var sections = []golden.Section{
		{Name: "static_animation_attribute.js", Content: js},
		{Name: "static_animation_attribute.d.ts", Content: file.DTS()},
	}
	if err := golden.Verify("testdata/static_animation_attribute.golden", sections, *update); err != nil {
		t.Error(err)
	}
}
