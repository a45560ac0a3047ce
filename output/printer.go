package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var reservedWords = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete", "do",
	"else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"implements", "import", "in", "instanceof", "interface", "let", "null", "new", "package",
	"private", "protected", "public", "return", "static", "super", "switch", "this", "throw",
	"true", "try", "typeof", "var", "void", "while", "with", "yield",
}

var reservedWordSet map[string]struct{}

func init() {
	reservedWordSet = make(map[string]struct{}, len(reservedWords))
	for _, word := range reservedWords {
		reservedWordSet[word] = struct{}{}
	}
}

// IsReserved reports whether name is a JavaScript reserved word.
func IsReserved(name string) bool {
	_, ok := reservedWordSet[name]
	return ok
}

// Imports assigns namespace aliases to the modules referenced by printed
// code.  The core module is always i0; other modules are numbered in the
// order they are first referenced.
type Imports struct {
	aliases map[string]string
	used    map[string]bool
	order   []string
}

// NewImports returns an alias table with the core module reserved as i0.
func NewImports() *Imports {
	var im = &Imports{aliases: make(map[string]string), used: make(map[string]bool)}
	im.aliases[CoreModule] = "i0"
	return im
}

// Alias returns the alias for module, marking it used.
func (im *Imports) Alias(module string) string {
	var alias, ok = im.aliases[module]
	if !ok {
		alias = "i" + strconv.Itoa(len(im.aliases))
		im.aliases[module] = alias
	}
	if !im.used[module] {
		im.used[module] = true
		im.order = append(im.order, module)
	}
	return alias
}

// Modules returns the referenced modules ordered by alias.
func (im *Imports) Modules() []string {
	var modules = append([]string(nil), im.order...)
	sort.SliceStable(modules, func(i, j int) bool {
		return aliasNum(im.aliases[modules[i]]) < aliasNum(im.aliases[modules[j]])
	})
	return modules
}

func aliasNum(alias string) int {
	var n, _ = strconv.Atoi(strings.TrimPrefix(alias, "i"))
	return n
}

// String returns one namespace import declaration per referenced module.
func (im *Imports) String() string {
	var b strings.Builder
	for _, m := range im.Modules() {
		fmt.Fprintf(&b, "import * as %s from %s;\n", im.aliases[m], quoteString(m, '"'))
	}
	return b.String()
}

// Operator precedence, lowest first.
const (
	precComma = iota + 1
	precAssign
	precConditional
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr, "??": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

type printer struct {
	wr           *bytes.Buffer
	indentLevels int
	imports      *Imports
}

// Write prints the statements to out, resolving module references through
// imports.
func Write(out io.Writer, stmts []Stmt, imports *Imports) (err error) {
	defer errRecover(&err)
	var p = &printer{wr: new(bytes.Buffer), imports: imports}
	for _, s := range stmts {
		p.stmt(s)
	}
	_, err = out.Write(p.wr.Bytes())
	return err
}

// PrintStmts returns the source of the statements.
func PrintStmts(stmts []Stmt, imports *Imports) string {
	var buf bytes.Buffer
	if err := Write(&buf, stmts, imports); err != nil {
		panic(err)
	}
	return buf.String()
}

// PrintExpr returns the source of an expression.
func PrintExpr(e Expr, imports *Imports) string {
	var p = &printer{wr: new(bytes.Buffer), imports: imports}
	p.expr(e, precComma)
	return p.wr.String()
}

// PrintType returns the source of a declaration type.
func PrintType(t Type, imports *Imports) string {
	var p = &printer{wr: new(bytes.Buffer), imports: imports}
	p.typ(t)
	return p.wr.String()
}

// errorf formats the error and terminates printing.
func (p *printer) errorf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// errRecover is the handler that turns panics into returns from the top
// level of Write.
func errRecover(errp *error) {
	e := recover()
	if e != nil {
		*errp = fmt.Errorf("output: %v", e)
	}
}

func (p *printer) js(args ...string) {
	for _, arg := range args {
		p.wr.WriteString(arg)
	}
}

func (p *printer) indent() {
	for i := 0; i < p.indentLevels; i++ {
		p.wr.WriteString("  ")
	}
}

func (p *printer) stmt(s Stmt) {
	p.indent()
	p.stmtBody(s)
	p.wr.WriteString("\n")
}

func (p *printer) block(stmts []Stmt) {
	p.js("{\n")
	p.indentLevels++
	for _, s := range stmts {
		p.stmt(s)
	}
	p.indentLevels--
	p.indent()
	p.js("}")
}

func (p *printer) stmtBody(s Stmt) {
	switch s := s.(type) {
	case *DeclareVar:
		p.js(s.Kind, " ", s.Name)
		if s.Value != nil {
			p.js(" = ")
			p.expr(s.Value, precAssign)
		}
		p.js(";")
	case *DeclareFunction:
		p.js("function ", s.Name, "(", strings.Join(s.Params, ", "), ") ")
		p.block(s.Body)
	case *ExprStmt:
		if startsAmbiguously(s.Expr) {
			p.js("(")
			p.expr(s.Expr, precComma)
			p.js(")")
		} else {
			p.expr(s.Expr, precComma)
		}
		p.js(";")
	case *Return:
		if s.Value == nil {
			p.js("return;")
			return
		}
		p.js("return ")
		p.expr(s.Value, precComma)
		p.js(";")
	case *If:
		p.js("if (")
		p.expr(s.Cond, precComma)
		p.js(") ")
		p.block(s.Then)
		if len(s.Else) == 1 {
			if elseIf, ok := s.Else[0].(*If); ok {
				p.js(" else ")
				p.stmtBody(elseIf)
				return
			}
		}
		if len(s.Else) > 0 {
			p.js(" else ")
			p.block(s.Else)
		}
	case *Class:
		if s.Exported {
			p.js("export ")
		}
		p.js("class ", s.Name, " {\n")
		p.indent()
		p.js("}")
	case *Guarded:
		p.js("(function () { (typeof ", s.Flag, ` === "undefined" || `, s.Flag, ") && ")
		p.expr(s.Call, precAnd+1)
		p.js("; })();")
	default:
		p.errorf("unknown statement %T", s)
	}
}

// startsAmbiguously reports whether an expression statement would begin with
// "function" or "{" and so must be parenthesized.
func startsAmbiguously(e Expr) bool {
	for {
		switch x := e.(type) {
		case *Function, *LiteralMap:
			return true
		case *Call:
			if _, ok := x.Fn.(*Function); ok {
				return false // the callee is parenthesized
			}
			e = x.Fn
		case *ReadProp:
			e = x.Receiver
		case *ReadKey:
			e = x.Receiver
		case *WriteProp:
			e = x.Receiver
		case *WriteKey:
			e = x.Receiver
		case *Binary:
			e = x.Left
		case *Conditional:
			e = x.Cond
		case *Comma:
			if len(x.Exprs) == 0 {
				return false
			}
			e = x.Exprs[0]
		default:
			return false
		}
	}
}

func (p *printer) expr(e Expr, prec int) {
	var own = precedence(e)
	if own < prec {
		p.js("(")
		defer p.js(")")
	}
	switch e := e.(type) {
	case *ReadVar:
		p.js(e.Name)
	case *External:
		if p.imports == nil {
			p.errorf("reference to %s.%s without an import table", e.Module, e.Name)
		}
		p.js(p.imports.Alias(e.Module))
		if e.Name != "" {
			p.js(".", e.Name)
		}
	case *ReadProp:
		p.expr(e.Receiver, precCall)
		p.js(".", e.Name)
	case *ReadKey:
		p.expr(e.Receiver, precCall)
		p.js("[")
		p.expr(e.Index, precComma)
		p.js("]")
	case *WriteVar:
		p.js(e.Name, " = ")
		p.expr(e.Value, precAssign)
	case *WriteProp:
		p.expr(e.Receiver, precCall)
		p.js(".", e.Name, " = ")
		p.expr(e.Value, precAssign)
	case *WriteKey:
		p.expr(e.Receiver, precCall)
		p.js("[")
		p.expr(e.Index, precComma)
		p.js("] = ")
		p.expr(e.Value, precAssign)
	case *Call:
		if e.Pure {
			p.js("/*@__PURE__*/ ")
		}
		if _, ok := e.Fn.(*Function); ok {
			p.js("(")
			p.expr(e.Fn, precComma)
			p.js(")")
		} else {
			p.expr(e.Fn, precCall)
		}
		p.args(e.Args)
	case *New:
		p.js("new ")
		if _, ok := e.Class.(*Call); ok {
			p.expr(e.Class, precPrimary)
		} else {
			p.expr(e.Class, precCall)
		}
		p.args(e.Args)
	case *Literal:
		p.literal(e)
	case *LiteralArray:
		p.js("[")
		for i, entry := range e.Entries {
			if i > 0 {
				p.js(", ")
			}
			p.expr(entry, precAssign)
		}
		p.js("]")
	case *LiteralMap:
		if len(e.Entries) == 0 {
			p.js("{}")
			return
		}
		p.js("{ ")
		for i, entry := range e.Entries {
			if i > 0 {
				p.js(", ")
			}
			if entry.Quoted || !isIdentifier(entry.Key) {
				p.js(quoteString(entry.Key, '"'))
			} else {
				p.js(entry.Key)
			}
			p.js(": ")
			p.expr(entry.Value, precAssign)
		}
		p.js(" }")
	case *Conditional:
		p.expr(e.Cond, precOr)
		p.js(" ? ")
		p.expr(e.True, precAssign)
		p.js(" : ")
		p.expr(e.False, precAssign)
	case *Binary:
		p.expr(e.Left, own)
		p.js(" ", e.Op, " ")
		p.expr(e.Right, own+1)
	case *Unary:
		p.js(e.Op)
		if (e.Op == "-" || e.Op == "+") && startsWithSign(e.Expr) {
			p.expr(e.Expr, precPrimary)
		} else {
			p.expr(e.Expr, precUnary)
		}
	case *Function:
		p.function(e)
	case *Wrapped:
		p.js(e.Source)
	case *Comma:
		for i, x := range e.Exprs {
			if i > 0 {
				p.js(", ")
			}
			p.expr(x, precAssign)
		}
	default:
		p.errorf("unknown expression %T", e)
	}
}

func precedence(e Expr) int {
	switch e := e.(type) {
	case *WriteVar, *WriteProp, *WriteKey:
		return precAssign
	case *Conditional:
		return precConditional
	case *Binary:
		var prec, ok = binaryPrec[e.Op]
		if !ok {
			panic(fmt.Sprintf("unknown binary operator %q", e.Op))
		}
		return prec
	case *Unary:
		return precUnary
	case *Comma:
		return precComma
	case *Call, *New, *ReadProp, *ReadKey:
		return precCall
	case *Literal:
		if f, ok := e.Value.(float64); ok && f < 0 {
			return precUnary
		}
		if n, ok := e.Value.(int); ok && n < 0 {
			return precUnary
		}
	}
	return precPrimary
}

func startsWithSign(e Expr) bool {
	switch e := e.(type) {
	case *Unary:
		return e.Op == "-" || e.Op == "+"
	case *Literal:
		return precedence(e) == precUnary
	}
	return false
}

func (p *printer) args(args []Expr) {
	p.js("(")
	for i, a := range args {
		if i > 0 {
			p.js(", ")
		}
		p.expr(a, precAssign)
	}
	p.js(")")
}

// function prints a function expression.  A body that is a single return
// statement stays on one line.
func (p *printer) function(f *Function) {
	p.js("function ")
	if f.Name != "" {
		p.js(f.Name)
	}
	p.js("(", strings.Join(f.Params, ", "), ") ")
	if len(f.Body) == 0 {
		p.js("{ }")
		return
	}
	if ret, ok := f.Body[0].(*Return); ok && len(f.Body) == 1 {
		p.js("{ ")
		p.stmtBody(ret)
		p.js(" }")
		return
	}
	p.block(f.Body)
}

func (p *printer) literal(lit *Literal) {
	switch v := lit.Value.(type) {
	case nil:
		p.js("null")
	case Undefined:
		p.js("undefined")
	case bool:
		p.js(strconv.FormatBool(v))
	case int:
		p.js(strconv.Itoa(v))
	case float64:
		p.js(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		var quote = '"'
		if lit.SingleQuote {
			quote = '\''
		}
		p.js(quoteString(v, quote))
	default:
		p.errorf("unknown literal type %T", v)
	}
}

func (p *printer) typ(t Type) {
	switch t := t.(type) {
	case *NamedType:
		if t.Module != "" {
			p.js(p.imports.Alias(t.Module), ".")
		}
		p.js(t.Name)
		if len(t.Args) > 0 {
			p.js("<")
			for i, a := range t.Args {
				if i > 0 {
					p.js(", ")
				}
				p.typ(a)
			}
			p.js(">")
		}
	case *LiteralType:
		p.js(quoteString(t.Value, '"'))
	case *TupleType:
		p.js("[")
		for i, el := range t.Elements {
			if i > 0 {
				p.js(", ")
			}
			p.typ(el)
		}
		p.js("]")
	case *MapType:
		if len(t.Keys) == 0 {
			p.js("{}")
			return
		}
		p.js("{ ")
		for i, k := range t.Keys {
			p.js(quoteString(k, '"'), ": ")
			p.typ(t.Values[i])
			p.js("; ")
		}
		p.js("}")
	case *TypeofType:
		p.js("typeof ")
		p.expr(t.Expr, precCall)
	default:
		p.errorf("unknown type %T", t)
	}
}

var escapes = map[rune]string{
	'\\':     `\\`,
	'\n':     `\n`,
	'\r':     `\r`,
	'\t':     `\t`,
	'\b':     `\b`,
	'\f':     `\f`,
	'\u2028': `\u2028`,
	'\u2029': `\u2029`,
}

// quoteString quotes s as a JavaScript string literal.
func quoteString(s string, quote rune) string {
	var q = make([]rune, 1, len(s)+10)
	q[0] = quote
	for _, ch := range s {
		if seq, ok := escapes[ch]; ok {
			q = append(q, []rune(seq)...)
			continue
		}
		if ch == quote {
			q = append(q, '\\')
		}
		q = append(q, ch)
	}
	return string(append(q, quote))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if ch == '_' || ch == '$' || unicode.IsLetter(ch) || i > 0 && unicode.IsDigit(ch) {
			continue
		}
		return false
	}
	return true
}
