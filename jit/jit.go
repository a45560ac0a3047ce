// Package jit evaluates compiled definitions in a JavaScript interpreter.
//
// The interpreter is loaded with a stub of the core runtime.  Definition
// functions return their argument tagged with its kind; partial
// declarations are linked into the same shape the way the runtime linker
// links them, so the output of both compilation modes can be compared by
// behavior rather than text.  Template functions run against recording
// instructions:
//
//	var rt = jit.New()
//	rt.Declare("MyApp")
//	rt.RunFile(file)
//	log, err := rt.Render("MyApp", "{name: 'World'}")
//
// The interpreter implements ES5, so declarations are lowered before they
// are evaluated: let and const become var and classes become constructor
// functions.
package jit

import (
	"bytes"
	"fmt"

	"github.com/robertkrimen/otto"

	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/output"
)

// Runtime is an interpreter holding the stub runtime.  It is not safe for
// concurrent use.
type Runtime struct {
	vm *otto.Otto
}

// New returns a runtime with the stub core module bound to i0.
func New() *Runtime {
	var vm = otto.New()
	if _, err := vm.Run(stubSource()); err != nil {
		panic(fmt.Sprintf("jit: stub runtime: %v", err))
	}
	return &Runtime{vm}
}

// DevMode sets the ngDevMode flag, which guards class metadata.  The
// decorators named by the metadata must then be declared.
func (r *Runtime) DevMode(on bool) {
	r.vm.Set("ngDevMode", on)
}

// Declare defines empty classes with the given names.
func (r *Runtime) Declare(names ...string) error {
	for _, name := range names {
		if _, err := r.vm.Run("function " + name + "() {}"); err != nil {
			return err
		}
	}
	return nil
}

// Run evaluates JavaScript source.
func (r *Runtime) Run(src string) (otto.Value, error) {
	return r.vm.Run(src)
}

// RunStmts lowers and evaluates statements.
func (r *Runtime) RunStmts(stmts []output.Stmt) error {
	var src, err = printStmts(lowerStmts(stmts))
	if err != nil {
		return err
	}
	if _, err := r.vm.Run(src); err != nil {
		return fmt.Errorf("jit: %v\n%s", err, src)
	}
	return nil
}

// RunFile evaluates the statements of a compiled file.  The classes of the
// file are declared by it.
func (r *Runtime) RunFile(f *ngjs.File) error {
	return r.RunStmts(f.Statements())
}

// Define assigns the expression of c, and runs its statements, as the
// static field of class.  It returns the resulting definition.
func (r *Runtime) Define(class, field string, c ngjs.Compiled) (otto.Value, error) {
	var stmts = append([]output.Stmt(nil), c.Statements...)
	stmts = append(stmts, output.Exec(&output.WriteProp{
		Receiver: output.Var(class),
		Name:     field,
		Value:    c.Expression,
	}))
	if err := r.RunStmts(stmts); err != nil {
		return otto.UndefinedValue(), err
	}
	return r.vm.Run(class + "." + field)
}

// Eval lowers and evaluates an expression.
func (r *Runtime) Eval(e output.Expr) (otto.Value, error) {
	var src, err = printExpr(lowerExpr(e))
	if err != nil {
		return otto.UndefinedValue(), err
	}
	return r.vm.Run("(" + src + ")")
}

// Export evaluates src and converts the result to a Go value.
func (r *Runtime) Export(src string) (interface{}, error) {
	var v, err = r.vm.Run(src)
	if err != nil {
		return nil, err
	}
	return v.Export()
}

// Render runs the template function of a component in creation and update
// mode with the context object ctx, given as source.  It returns one line
// per instruction executed.
func (r *Runtime) Render(class, ctx string) (string, error) {
	var v, err = r.vm.Run("ngc.render(" + class + ", " + ctx + ")")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// printStmts returns the source of stmts.  Only the core module may be
// referenced.
func printStmts(stmts []output.Stmt) (string, error) {
	var imports = output.NewImports()
	var buf bytes.Buffer
	if err := output.Write(&buf, stmts, imports); err != nil {
		return "", err
	}
	return buf.String(), checkImports(imports)
}

func printExpr(e output.Expr) (string, error) {
	var imports = output.NewImports()
	var src = output.PrintExpr(e, imports)
	return src, checkImports(imports)
}

func checkImports(imports *output.Imports) error {
	for _, m := range imports.Modules() {
		if m != output.CoreModule {
			return fmt.Errorf("jit: module %q is not available", m)
		}
	}
	return nil
}
