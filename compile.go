package ngc

import (
	"errors"
	"sort"
	"strings"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/parse"
	"github.com/robfig/ngc/resolve"
	"github.com/robfig/ngc/scan"
)

// Program is the output of a compilation.
type Program struct {
	Files []*OutputFile
}

// File returns the output of the source file at path, or nil.
func (p *Program) File(source string) *OutputFile {
	for _, f := range p.Files {
		if f.Source == source {
			return f
		}
	}
	return nil
}

// OutputFile is the compiled form of one source file: its decorated classes
// with their static definitions, as JavaScript and a declaration file.
type OutputFile struct {
	Source string
	File   *ngjs.File
	JS     string
	DTS    string
}

// JSPath returns the path of the emitted JavaScript.
func (f *OutputFile) JSPath() string {
	return strings.TrimSuffix(f.Source, ".ts") + ".js"
}

// DTSPath returns the path of the declaration file.
func (f *OutputFile) DTSPath() string {
	return strings.TrimSuffix(f.Source, ".ts") + ".d.ts"
}

// registry indexes the declarations of a bundle by class name.
type registry map[string]*declaration

func newRegistry(decls [][]*declaration) registry {
	var r = registry{}
	for _, fileDecls := range decls {
		for _, d := range fileDecls {
			r[d.class.Name] = d
		}
	}
	return r
}

// scope returns the directives and pipes available to the template of a
// component: those it imports if it is standalone, or otherwise those
// declared and imported by the modules declaring it.  Modules contribute
// their exports, transitively.
func (r registry) scope(d *declaration) *resolve.Scope {
	var s = &resolve.Scope{}
	var seen = map[string]bool{}
	var add func(name string)
	add = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		var dep = r[name]
		if dep == nil {
			return
		}
		switch dep.kind {
		case componentDecl, directiveDecl:
			s.Directives = append(s.Directives, dep.matcher)
		case pipeDecl:
			s.Pipes = append(s.Pipes, &resolve.Pipe{
				Name:      dep.pipe.PipeName,
				ClassName: dep.class.Name,
				Pure:      dep.pipe.Pure,
			})
		case moduleDecl:
			for _, e := range dep.exports {
				add(e)
			}
		}
	}

	if d.standalone {
		for _, name := range d.imports {
			add(name)
		}
		return s
	}
	var modules []string
	for name, m := range r {
		if m.kind == moduleDecl && contains(m.declarations, d.class.Name) {
			modules = append(modules, name)
		}
	}
	sort.Strings(modules)
	for _, moduleName := range modules {
		var m = r[moduleName]
		for _, name := range m.declarations {
			add(name)
		}
		for _, name := range m.imports {
			add(name)
		}
	}
	return s
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// compiler emits the definitions of the declarations of a bundle.
type compiler struct {
	mode     ngjs.Mode
	cache    *parse.Cache
	messages ngjs.Translations
	registry registry
}

// compileFile compiles the decorated classes of f.  The classes of one file
// share a constant pool.
func (c *compiler) compileFile(f *scan.File, decls []*declaration) (*OutputFile, error) {
	var pool = ngjs.NewConstantPool()
	var out = ngjs.NewFile(f.ImportText(), pool)
	var errs errortypes.List
	for _, d := range decls {
		var class, err = c.compileClass(d, pool)
		if err != nil {
			addError(&errs, f.Path, err)
			continue
		}
		out.Add(class)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var js, err = out.JS()
	if err != nil {
		return nil, err
	}
	return &OutputFile{Source: f.Path, File: out, JS: js, DTS: out.DTS()}, nil
}

func (c *compiler) compileClass(d *declaration, pool *ngjs.ConstantPool) (*ngjs.Class, error) {
	var class = &ngjs.Class{
		Name:     d.class.Name,
		Type:     d.factory.Type,
		Members:  d.members(),
		Metadata: d.classMetadata(),
	}
	var field = func(name string, compiled ngjs.Compiled) {
		class.Fields = append(class.Fields, ngjs.Field{Name: name, Compiled: compiled})
	}
	field("ɵfac", ngjs.CompileFactory(d.factory))

	switch d.kind {
	case componentDecl:
		var compiled, err = c.compileComponent(d, pool)
		if err != nil {
			return nil, err
		}
		field("ɵcmp", compiled)
	case directiveDecl:
		var compiled, err = ngjs.CompileDirective(d.directive, pool, c.mode)
		if err != nil {
			return nil, err
		}
		field("ɵdir", compiled)
	case pipeDecl:
		field("ɵpipe", ngjs.CompilePipe(d.pipe, c.mode))
	case injectableDecl:
		field("ɵprov", ngjs.CompileInjectable(d.injectable, c.mode))
	case moduleDecl:
		field("ɵmod", ngjs.CompileNgModule(d.module, c.mode))
		field("ɵinj", ngjs.CompileInjector(d.injector, c.mode))
	}
	return class, nil
}

func (c *compiler) compileComponent(d *declaration, pool *ngjs.ConstantPool) (ngjs.Compiled, error) {
	var tmpl, err = parseTemplate(c.cache, d)
	if err != nil {
		return ngjs.Compiled{}, err
	}
	var scope = c.registry.scope(d)
	bound, err := resolve.Resolve(tmpl, scope)
	if err != nil {
		return ngjs.Compiled{}, relocate(d.template, err)
	}

	var meta = *d.component
	meta.Messages = c.messages
	meta.ForwardDeclared = map[string]bool{}
	for _, dir := range scope.Directives {
		c.forwardDeclared(d, dir.Name, meta.ForwardDeclared)
	}
	for _, p := range scope.Pipes {
		c.forwardDeclared(d, p.ClassName, meta.ForwardDeclared)
	}
	return ngjs.CompileComponent(&meta, bound, pool, c.mode)
}

// forwardDeclared records name if it is declared after d in the same file.
func (c *compiler) forwardDeclared(d *declaration, name string, set map[string]bool) {
	if dep := c.registry[name]; dep != nil && dep.file == d.file && dep.index > d.index {
		set[name] = true
	}
}

// parseTemplate parses the template of a component through the cache.
func parseTemplate(cache *parse.Cache, d *declaration) (*ast.File, error) {
	var src = d.template
	var key = src.path
	if !src.external {
		key += "#" + d.class.Name
	}
	var opts = parse.Options{PreserveWhitespaces: d.component.PreserveWhitespaces}
	var tmpl, err = cache.Parse(src.text, key, opts)
	if err != nil {
		return nil, relocate(src, err)
	}
	return tmpl, nil
}

// relocate rewrites the positions of errors in an inline template to
// positions in its source file.
func relocate(src *templateSource, err error) error {
	if src.external {
		return err
	}
	var list errortypes.List
	var e *errortypes.Error
	switch {
	case errors.As(err, &list):
	case errors.As(err, &e):
		list = errortypes.List{e}
	default:
		return err
	}
	var out = make(errortypes.List, len(list))
	for i, e := range list {
		var moved = *e
		moved.Path = src.path
		moved.LineNum, moved.ColNum = src.location(e.LineNum, e.ColNum)
		out[i] = &moved
	}
	return out
}

// location maps a 1-based position in the template to one in the file it
// was read from.
func (src *templateSource) location(line, col int) (int, int) {
	if src.external || !src.located || line == 0 {
		return line, col
	}
	if line == 1 {
		col += src.col
	}
	return line + src.line, col
}
