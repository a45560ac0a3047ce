package ngjs

import (
	"bytes"
	"strings"

	"github.com/robfig/ngc/output"
)

// File collects the compiled classes of one source file and renders the
// emitted JavaScript and declaration file.
type File struct {
	// SourceImports are the import declarations of the source file, kept
	// at the top of the output.
	SourceImports []string
	Pool          *ConstantPool
	Classes       []*Class
}

// Class is one compiled class: its static definition fields in emission
// order and its decorator metadata.
type Class struct {
	Name string
	Type output.Expr
	// Members are the declarations of the instance members of the class,
	// such as "item: any;", copied to the declaration file.
	Members  []string
	Fields   []Field
	Metadata *ClassMetadata
}

// Field is a static definition field, e.g. ɵcmp.
type Field struct {
	Name string
	Compiled
}

// ClassMetadata is the decorator of a class as written in the source.  It
// is registered with the runtime in development builds.
type ClassMetadata struct {
	Decorator string
	// Args are the entries of the decorator argument object, in source
	// order.  Values are usually carried over as source text.
	Args []output.MapEntry
	// Multiline reports whether the argument object spans several lines in
	// the source.
	Multiline bool
	// CtorParams are the types of the constructor parameters.
	CtorParams []output.Expr
}

// NewFile returns a File sharing pool across its classes.
func NewFile(sourceImports []string, pool *ConstantPool) *File {
	if pool == nil {
		pool = NewConstantPool()
	}
	return &File{SourceImports: sourceImports, Pool: pool}
}

// Add appends a class.
func (f *File) Add(c *Class) {
	f.Classes = append(f.Classes, c)
}

// Statements returns the statements of the emitted JavaScript, without
// import declarations.  Supporting function declarations of a class precede
// it; guarded calls follow its fields.
func (f *File) Statements() []output.Stmt {
	var stmts = append([]output.Stmt(nil), f.Pool.Statements()...)
	for _, c := range f.Classes {
		var after []output.Stmt
		for _, field := range c.Fields {
			for _, s := range field.Statements {
				if _, ok := s.(*output.Guarded); ok {
					after = append(after, s)
				} else {
					stmts = append(stmts, s)
				}
			}
		}
		stmts = append(stmts, &output.Class{Name: c.Name, Exported: true})
		for _, field := range c.Fields {
			stmts = append(stmts, output.Exec(&output.WriteProp{
				Receiver: c.Type,
				Name:     field.Name,
				Value:    field.Expression,
			}))
		}
		stmts = append(stmts, after...)
		if c.Metadata != nil {
			stmts = append(stmts, classMetadata(c))
		}
	}
	return stmts
}

// JS returns the emitted JavaScript.
func (f *File) JS() (string, error) {
	var stmts = f.Statements()
	var imports = output.NewImports()
	var body bytes.Buffer
	if err := output.Write(&body, stmts, imports); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, imp := range f.SourceImports {
		b.WriteString(imp + "\n")
	}
	b.WriteString(imports.String())
	b.Write(body.Bytes())
	return b.String(), nil
}

// DTS returns the declaration file.
func (f *File) DTS() string {
	var imports = output.NewImports()
	var body strings.Builder
	for _, c := range f.Classes {
		body.WriteString("export declare class " + c.Name + " {\n")
		for _, m := range c.Members {
			body.WriteString("    " + m + "\n")
		}
		for _, field := range c.Fields {
			body.WriteString("    static " + field.Name + ": " + output.PrintType(field.Type, imports) + ";\n")
		}
		body.WriteString("}\n")
	}
	return imports.String() + body.String()
}

// classMetadata returns the guarded ɵsetClassMetadata call of c.
func classMetadata(c *Class) output.Stmt {
	var meta = c.Metadata
	var ctor output.Expr = output.Lit(nil)
	if len(meta.CtorParams) > 0 {
		var params = output.Arr()
		for _, p := range meta.CtorParams {
			params.Entries = append(params.Entries, &output.LiteralMap{
				Entries: []output.MapEntry{{Key: "type", Value: p}},
			})
		}
		ctor = returning(params)
	}
	return &output.Guarded{
		Flag: "ngDevMode",
		Call: output.CallFn(core(setClassMetadata),
			c.Type,
			&output.Wrapped{Source: decoratorSource(meta)},
			ctor,
			output.Lit(nil)),
	}
}

// decoratorSource lays out the decorator array the way the source printer
// of the original toolchain does.
func decoratorSource(meta *ClassMetadata) string {
	var b strings.Builder
	b.WriteString("[{\n        type: " + meta.Decorator)
	if len(meta.Args) > 0 {
		b.WriteString(",\n        args: [")
		var entries = make([]string, len(meta.Args))
		for i, e := range meta.Args {
			var key = e.Key
			if e.Quoted {
				key = "'" + key + "'"
			}
			entries[i] = key + ": " + output.PrintExpr(e.Value, output.NewImports())
		}
		if meta.Multiline {
			b.WriteString("{\n                " + strings.Join(entries, ",\n                ") + "\n            }]")
		} else {
			b.WriteString("{ " + strings.Join(entries, ", ") + " }]")
		}
	}
	b.WriteString("\n    }]")
	return b.String()
}
