// Package output contains the JavaScript AST that compiled definitions are
// built from, and a printer for JavaScript statements and TypeScript
// declaration types.
//
// Like the template AST, Expr, Stmt and Type are closed: only the types in
// this package implement them.
package output

// Expr is a JavaScript expression.
type Expr interface {
	expr()
}

// Stmt is a JavaScript statement.
type Stmt interface {
	stmt()
}

// Module names of the framework packages referenced by generated code.
const (
	CoreModule = "@angular/core"
)

// ReadVar reads a local variable or parameter.
type ReadVar struct {
	Name string
}

// External reads a symbol exported by a module, printed as alias.Name, or
// the module namespace itself when Name is empty.
type External struct {
	Module string
	Name   string
}

// ReadProp is receiver.name.
type ReadProp struct {
	Receiver Expr
	Name     string
}

// ReadKey is receiver[index].
type ReadKey struct {
	Receiver Expr
	Index    Expr
}

// WriteVar is name = value.
type WriteVar struct {
	Name  string
	Value Expr
}

// WriteProp is receiver.name = value.
type WriteProp struct {
	Receiver Expr
	Name     string
	Value    Expr
}

// WriteKey is receiver[index] = value.
type WriteKey struct {
	Receiver Expr
	Index    Expr
	Value    Expr
}

// Call is fn(args).  Pure calls are annotated for tree shakers.
type Call struct {
	Fn   Expr
	Args []Expr
	Pure bool
}

// New is new class(args).
type New struct {
	Class Expr
	Args  []Expr
}

// Undefined is the value of the undefined literal.
type Undefined struct{}

// Literal is a primitive: nil (null), Undefined{}, bool, int, float64 or
// string.  Strings are printed double-quoted unless SingleQuote is set.
type Literal struct {
	Value       interface{}
	SingleQuote bool
}

// LiteralArray is [entries].
type LiteralArray struct {
	Entries []Expr
}

// MapEntry is one key of a LiteralMap.  Keys that are not identifiers are
// always quoted.
type MapEntry struct {
	Key    string
	Quoted bool
	Value  Expr
}

// LiteralMap is {key: value, ...}.
type LiteralMap struct {
	Entries []MapEntry
}

// Conditional is cond ? t : f.
type Conditional struct {
	Cond  Expr
	True  Expr
	False Expr
}

// Binary is left op right.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix operator: "!", "-", "+", "typeof " or "void ".
type Unary struct {
	Op   string
	Expr Expr
}

// Function is a function expression.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Comma is a, b, c.
type Comma struct {
	Exprs []Expr
}

// Wrapped is source text carried over from the input file, printed
// verbatim.
type Wrapped struct {
	Source string
}

func (*ReadVar) expr()      {}
func (*External) expr()     {}
func (*ReadProp) expr()     {}
func (*ReadKey) expr()      {}
func (*WriteVar) expr()     {}
func (*WriteProp) expr()    {}
func (*WriteKey) expr()     {}
func (*Call) expr()         {}
func (*New) expr()          {}
func (*Literal) expr()      {}
func (*LiteralArray) expr() {}
func (*LiteralMap) expr()   {}
func (*Conditional) expr()  {}
func (*Binary) expr()       {}
func (*Unary) expr()        {}
func (*Function) expr()     {}
func (*Comma) expr()        {}
func (*Wrapped) expr()      {}

// DeclareVar is const/let/var name = value.  Value may be nil.
type DeclareVar struct {
	Kind  string // "const", "let" or "var"
	Name  string
	Value Expr
}

// DeclareFunction is a named function declaration.
type DeclareFunction struct {
	Name   string
	Params []string
	Body   []Stmt
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Expr Expr
}

// Return is return value; Value may be nil.
type Return struct {
	Value Expr
}

// If is if (cond) { then } else { otherwise }.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// Class is an (optionally exported) empty class declaration.
type Class struct {
	Name     string
	Exported bool
}

// Guarded calls Call only in builds where the global flag Flag, such as
// ngDevMode or ngJitMode, is undefined or true.  It is printed on one line
// as an immediately invoked function.
type Guarded struct {
	Flag string
	Call Expr
}

func (*DeclareVar) stmt()      {}
func (*DeclareFunction) stmt() {}
func (*ExprStmt) stmt()        {}
func (*Return) stmt()          {}
func (*If) stmt()              {}
func (*Class) stmt()           {}
func (*Guarded) stmt()         {}

// Helpers for building expressions.

// Var reads a local variable.
func Var(name string) *ReadVar { return &ReadVar{name} }

// Import reads a symbol of the core module.
func Import(name string) *External { return &External{CoreModule, name} }

// Lit returns a literal.
func Lit(v interface{}) *Literal { return &Literal{Value: v} }

// Prop reads a property.
func Prop(receiver Expr, name string) *ReadProp { return &ReadProp{receiver, name} }

// CallFn calls fn with args.
func CallFn(fn Expr, args ...Expr) *Call { return &Call{Fn: fn, Args: args} }

// Arr returns an array literal.
func Arr(entries ...Expr) *LiteralArray {
	if entries == nil {
		entries = []Expr{}
	}
	return &LiteralArray{entries}
}

// IsNullLiteral reports whether e is the null literal.
func IsNullLiteral(e Expr) bool {
	var lit, ok = e.(*Literal)
	return ok && lit.Value == nil
}

// Exec wraps an expression as a statement.
func Exec(e Expr) *ExprStmt { return &ExprStmt{e} }
