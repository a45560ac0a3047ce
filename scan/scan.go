// Package scan reads the decorated classes of TypeScript source files.
//
// Sources are parsed with tree-sitter.  Only the parts the compiler and the
// migrations consume are kept: import declarations, class decorators with
// their argument literals, decorated fields and constructor parameters.
// Decorator arguments are kept as Values, which record both their source
// text and byte offsets so that callers can edit the source in place.
package scan

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
)

// File is a scanned TypeScript source file.
type File struct {
	Path    string
	Text    string
	Imports []Import
	Classes []*Class

	// HasErrors reports whether the source contains syntax errors.  The
	// classes that could be read are returned regardless.
	HasErrors bool

	lines *ast.LineIndex
}

// Import is an import declaration.
type Import struct {
	Text   string // the declaration as written
	Source string // the module specifier
	Names  []string
}

// Class is a class declaration.
type Class struct {
	Name       string
	Exported   bool
	Extends    string
	Decorators []*Decorator
	Fields     []*Field
	// Ctor lists the constructor parameters; it is nil when the class
	// declares no constructor.
	Ctor    []*Param
	Methods []string
	Start   int
	End     int
}

// Decorator returns the decorator of c with the given name.
func (c *Class) Decorator(name string) *Decorator {
	for _, d := range c.Decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Field is a class property declaration.
type Field struct {
	Name       string
	Type       string // type annotation source, without the colon
	Text       string
	Decorators []*Decorator
}

// Param is a constructor parameter.
type Param struct {
	Name       string
	Type       string
	Optional   bool
	Decorators []*Decorator
}

// Decorator is one decorator application, e.g. @Component({...}).
type Decorator struct {
	Name string
	// Args are the call arguments; nil when the decorator is not called.
	Args  []*Value
	Call  bool
	Start int
	End   int
}

// Arg returns the i'th argument, or nil.
func (d *Decorator) Arg(i int) *Value {
	if d == nil || i >= len(d.Args) {
		return nil
	}
	return d.Args[i]
}

// Scan parses the TypeScript source text of the file at path.
func Scan(ctx context.Context, path, text string) (*File, error) {
	var parser = sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	var src = []byte(text)
	var tree, err = parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errortypes.Wrap(errortypes.ParseError, path, err)
	}
	defer tree.Close()

	var f = &File{Path: path, Text: text}
	var root = tree.RootNode()
	if root == nil {
		return f, nil
	}
	f.HasErrors = root.HasError()
	var s = scanner{src: src, file: f}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		s.statement(root.NamedChild(i))
	}
	return f, nil
}

// Location returns the 0-based line and column of a byte offset.
func (f *File) Location(offset int) (line, col int) {
	if f.lines == nil {
		f.lines = ast.NewLineIndex(f.Text)
	}
	return f.lines.Location(ast.Pos(offset))
}

// Class returns the class with the given name, or nil.
func (f *File) Class(name string) *Class {
	for _, c := range f.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ImportText returns the import declarations as written, in source order.
func (f *File) ImportText() []string {
	var out []string
	for _, imp := range f.Imports {
		out = append(out, imp.Text)
	}
	return out
}

type scanner struct {
	src  []byte
	file *File
}

func (s *scanner) text(n *sitter.Node) string {
	return string(s.src[n.StartByte():n.EndByte()])
}

func (s *scanner) statement(n *sitter.Node) {
	switch n.Type() {
	case "import_statement":
		s.importStatement(n)
	case "export_statement":
		var decorators []*Decorator
		for i := 0; i < int(n.NamedChildCount()); i++ {
			var child = n.NamedChild(i)
			switch child.Type() {
			case "decorator":
				decorators = append(decorators, s.decorator(child))
			case "class_declaration", "abstract_class_declaration":
				var c = s.class(child, true)
				c.Decorators = append(decorators, c.Decorators...)
				c.Start = int(n.StartByte())
			}
		}
	case "class_declaration", "abstract_class_declaration":
		s.class(n, false)
	}
}

func (s *scanner) importStatement(n *sitter.Node) {
	var imp = Import{Text: s.text(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		switch child.Type() {
		case "string":
			imp.Source = s.value(child).Str
		case "import_clause":
			s.importNames(child, &imp)
		}
	}
	s.file.Imports = append(s.file.Imports, imp)
}

func (s *scanner) importNames(n *sitter.Node, imp *Import) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.Names = append(imp.Names, s.text(child))
		case "import_specifier":
			var name = child.ChildByFieldName("alias")
			if name == nil {
				name = child.ChildByFieldName("name")
			}
			if name != nil {
				imp.Names = append(imp.Names, s.text(name))
			}
		case "named_imports", "namespace_import":
			s.importNames(child, imp)
		}
	}
}

func (s *scanner) class(n *sitter.Node, exported bool) *Class {
	var c = &Class{Exported: exported, Start: int(n.StartByte()), End: int(n.EndByte())}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = s.text(name)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		switch child.Type() {
		case "decorator":
			c.Decorators = append(c.Decorators, s.decorator(child))
		case "class_heritage":
			c.Extends = s.heritage(child)
		case "class_body":
			s.classBody(child, c)
		}
	}
	s.file.Classes = append(s.file.Classes, c)
	return c
}

func (s *scanner) heritage(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		if child.Type() == "extends_clause" {
			if v := child.ChildByFieldName("value"); v != nil {
				return s.text(v)
			}
			if child.NamedChildCount() > 0 {
				return s.text(child.NamedChild(0))
			}
		}
	}
	return ""
}

func (s *scanner) classBody(n *sitter.Node, c *Class) {
	// Decorators of a member may precede it as siblings in the body.
	var pending []*Decorator
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		switch child.Type() {
		case "decorator":
			pending = append(pending, s.decorator(child))
		case "public_field_definition", "field_definition":
			var f = &Field{Text: s.text(child), Decorators: pending}
			pending = nil
			for j := 0; j < int(child.NamedChildCount()); j++ {
				var gc = child.NamedChild(j)
				if gc.Type() == "decorator" {
					f.Decorators = append(f.Decorators, s.decorator(gc))
				}
			}
			if name := child.ChildByFieldName("name"); name != nil {
				f.Name = s.text(name)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				f.Type = typeText(s.text(typ))
			}
			c.Fields = append(c.Fields, f)
		case "method_definition":
			pending = nil
			var name = child.ChildByFieldName("name")
			if name == nil {
				continue
			}
			if s.text(name) != "constructor" {
				c.Methods = append(c.Methods, s.text(name))
				continue
			}
			c.Ctor = []*Param{}
			if params := child.ChildByFieldName("parameters"); params != nil {
				s.params(params, c)
			}
		default:
			pending = nil
		}
	}
}

func (s *scanner) params(n *sitter.Node, c *Class) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		if child.Type() != "required_parameter" && child.Type() != "optional_parameter" {
			continue
		}
		var p = &Param{Optional: child.Type() == "optional_parameter"}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			var gc = child.NamedChild(j)
			if gc.Type() == "decorator" {
				p.Decorators = append(p.Decorators, s.decorator(gc))
			}
		}
		if pattern := child.ChildByFieldName("pattern"); pattern != nil {
			p.Name = s.text(pattern)
		}
		if typ := child.ChildByFieldName("type"); typ != nil {
			p.Type = typeText(s.text(typ))
		}
		c.Ctor = append(c.Ctor, p)
	}
}

func typeText(annotation string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(annotation), ":"))
}

func (s *scanner) decorator(n *sitter.Node) *Decorator {
	var d = &Decorator{Start: int(n.StartByte()), End: int(n.EndByte())}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		var child = n.NamedChild(i)
		switch child.Type() {
		case "identifier", "member_expression":
			d.Name = lastName(s.text(child))
		case "call_expression":
			d.Call = true
			if fn := child.ChildByFieldName("function"); fn != nil {
				d.Name = lastName(s.text(fn))
			}
			if args := child.ChildByFieldName("arguments"); args != nil {
				for j := 0; j < int(args.NamedChildCount()); j++ {
					if arg := args.NamedChild(j); arg.Type() != "comment" {
						d.Args = append(d.Args, s.value(arg))
					}
				}
			}
		}
	}
	return d
}

// lastName returns the property name of a member expression such as
// core.Component.
func lastName(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}
