package ast

import (
	"bytes"
	"strconv"
	"strings"
)

// Expr is a binding expression: the value of a property binding, the body of
// an interpolation or the handler of an event.
type Expr interface {
	ExprKind() ExprKind
	SourceSpan() Span
	String() string // String returns the expression source representation.
	expr()
}

// ExprKind identifies the type of an expression node.
type ExprKind int

const (
	ExprImplicitReceiver ExprKind = iota + 1
	ExprPropertyRead
	ExprSafePropertyRead
	ExprKeyedRead
	ExprMethodCall
	ExprSafeMethodCall
	ExprFunctionCall
	ExprLiteralPrimitive
	ExprLiteralArray
	ExprLiteralMap
	ExprConditional
	ExprBinary
	ExprPrefixNot
	ExprUnary
	ExprNonNullAssert
	ExprPipeCall
	ExprInterpolation
	ExprPropertyWrite
	ExprKeyedWrite
	ExprChain
	ExprEmpty

	numExprKinds
)

var exprKindNames = [...]string{
	ExprImplicitReceiver: "ImplicitReceiver",
	ExprPropertyRead:     "PropertyRead",
	ExprSafePropertyRead: "SafePropertyRead",
	ExprKeyedRead:        "KeyedRead",
	ExprMethodCall:       "MethodCall",
	ExprSafeMethodCall:   "SafeMethodCall",
	ExprFunctionCall:     "FunctionCall",
	ExprLiteralPrimitive: "LiteralPrimitive",
	ExprLiteralArray:     "LiteralArray",
	ExprLiteralMap:       "LiteralMap",
	ExprConditional:      "Conditional",
	ExprBinary:           "Binary",
	ExprPrefixNot:        "PrefixNot",
	ExprUnary:            "Unary",
	ExprNonNullAssert:    "NonNullAssert",
	ExprPipeCall:         "PipeCall",
	ExprInterpolation:    "Interpolation",
	ExprPropertyWrite:    "PropertyWrite",
	ExprKeyedWrite:       "KeyedWrite",
	ExprChain:            "Chain",
	ExprEmpty:            "EmptyExpr",
}

func (k ExprKind) String() string {
	if k > 0 && k < numExprKinds {
		return exprKindNames[k]
	}
	return "ExprKind(" + strconv.Itoa(int(k)) + ")"
}

// ImplicitReceiver is the component context that unqualified names are read
// from.  This is set for an explicit `this`.
type ImplicitReceiver struct {
	Span
	This bool
}

func (e *ImplicitReceiver) ExprKind() ExprKind { return ExprImplicitReceiver }

func (e *ImplicitReceiver) String() string {
	if e.This {
		return "this"
	}
	return ""
}

// PropertyRead is receiver.name, or a bare name on an implicit receiver.
type PropertyRead struct {
	Span
	NameSpan Span
	Receiver Expr
	Name     string
}

func (e *PropertyRead) ExprKind() ExprKind { return ExprPropertyRead }
func (e *PropertyRead) String() string     { return qualify(e.Receiver, ".", e.Name) }

// SafePropertyRead is receiver?.name.
type SafePropertyRead struct {
	Span
	NameSpan Span
	Receiver Expr
	Name     string
}

func (e *SafePropertyRead) ExprKind() ExprKind { return ExprSafePropertyRead }
func (e *SafePropertyRead) String() string     { return e.Receiver.String() + "?." + e.Name }

// KeyedRead is receiver[key].
type KeyedRead struct {
	Span
	Receiver Expr
	Key      Expr
}

func (e *KeyedRead) ExprKind() ExprKind { return ExprKeyedRead }
func (e *KeyedRead) String() string     { return e.Receiver.String() + "[" + e.Key.String() + "]" }

// MethodCall is receiver.name(args), or name(args) on an implicit receiver.
type MethodCall struct {
	Span
	NameSpan Span
	Receiver Expr
	Name     string
	Args     []Expr
}

func (e *MethodCall) ExprKind() ExprKind { return ExprMethodCall }
func (e *MethodCall) String() string     { return qualify(e.Receiver, ".", e.Name) + args(e.Args) }

// SafeMethodCall is receiver?.name(args).
type SafeMethodCall struct {
	Span
	NameSpan Span
	Receiver Expr
	Name     string
	Args     []Expr
}

func (e *SafeMethodCall) ExprKind() ExprKind { return ExprSafeMethodCall }
func (e *SafeMethodCall) String() string     { return e.Receiver.String() + "?." + e.Name + args(e.Args) }

// FunctionCall calls the result of an arbitrary expression, e.g. fns[0]().
type FunctionCall struct {
	Span
	Target Expr
	Args   []Expr
}

func (e *FunctionCall) ExprKind() ExprKind { return ExprFunctionCall }
func (e *FunctionCall) String() string     { return e.Target.String() + args(e.Args) }

// Undefined is the value of the `undefined` literal.
type Undefined struct{}

// LiteralPrimitive is a string, number, boolean, null or undefined literal.
// Value holds a string, float64, bool, nil or Undefined{}.
type LiteralPrimitive struct {
	Span
	Value interface{}
}

func (e *LiteralPrimitive) ExprKind() ExprKind { return ExprLiteralPrimitive }

func (e *LiteralPrimitive) String() string {
	switch v := e.Value.(type) {
	case nil:
		return "null"
	case Undefined:
		return "undefined"
	case string:
		return quoteString(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "?"
}

// LiteralArray is [a, b, c].
type LiteralArray struct {
	Span
	Elements []Expr
}

func (e *LiteralArray) ExprKind() ExprKind { return ExprLiteralArray }

func (e *LiteralArray) String() string {
	return "[" + strings.TrimSuffix(strings.TrimPrefix(args(e.Elements), "("), ")") + "]"
}

// LiteralMapKey is a key of a literal map.
type LiteralMapKey struct {
	Key    string
	Quoted bool
}

// LiteralMap is {key: value, ...}.  Keys and Values are parallel.
type LiteralMap struct {
	Span
	Keys   []LiteralMapKey
	Values []Expr
}

func (e *LiteralMap) ExprKind() ExprKind { return ExprLiteralMap }

func (e *LiteralMap) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	for i, k := range e.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		if k.Quoted {
			b.WriteString(quoteString(k.Key))
		} else {
			b.WriteString(k.Key)
		}
		b.WriteString(": ")
		b.WriteString(e.Values[i].String())
	}
	b.WriteString("}")
	return b.String()
}

// Conditional is cond ? trueExp : falseExp.
type Conditional struct {
	Span
	Condition Expr
	TrueExp   Expr
	FalseExp  Expr
}

func (e *Conditional) ExprKind() ExprKind { return ExprConditional }

func (e *Conditional) String() string {
	return e.Condition.String() + " ? " + e.TrueExp.String() + " : " + e.FalseExp.String()
}

// Binary is left op right.
type Binary struct {
	Span
	Operation string
	Left      Expr
	Right     Expr
}

func (e *Binary) ExprKind() ExprKind { return ExprBinary }

func (e *Binary) String() string {
	return e.Left.String() + " " + e.Operation + " " + e.Right.String()
}

// PrefixNot is !expr.
type PrefixNot struct {
	Span
	Expression Expr
}

func (e *PrefixNot) ExprKind() ExprKind { return ExprPrefixNot }
func (e *PrefixNot) String() string     { return "!" + e.Expression.String() }

// Unary is -expr or +expr.
type Unary struct {
	Span
	Operator   string
	Expression Expr
}

func (e *Unary) ExprKind() ExprKind { return ExprUnary }
func (e *Unary) String() string     { return e.Operator + e.Expression.String() }

// NonNullAssert is expr!.
type NonNullAssert struct {
	Span
	Expression Expr
}

func (e *NonNullAssert) ExprKind() ExprKind { return ExprNonNullAssert }
func (e *NonNullAssert) String() string     { return e.Expression.String() + "!" }

// PipeCall is expr | name:arg1:arg2.
type PipeCall struct {
	Span
	NameSpan   Span
	Expression Expr
	Name       string
	Args       []Expr
}

func (e *PipeCall) ExprKind() ExprKind { return ExprPipeCall }

func (e *PipeCall) String() string {
	var s = "(" + e.Expression.String() + " | " + e.Name
	for _, a := range e.Args {
		s += ":" + a.String()
	}
	return s + ")"
}

// Interpolation is text with embedded {{ expressions }}.  There is always one
// more string than expressions.
type Interpolation struct {
	Span
	Strings     []string
	Expressions []Expr
}

func (e *Interpolation) ExprKind() ExprKind { return ExprInterpolation }

func (e *Interpolation) String() string {
	var b bytes.Buffer
	for i, s := range e.Strings {
		b.WriteString(s)
		if i < len(e.Expressions) {
			b.WriteString("{{ " + e.Expressions[i].String() + " }}")
		}
	}
	return b.String()
}

// PropertyWrite is receiver.name = value.
type PropertyWrite struct {
	Span
	NameSpan Span
	Receiver Expr
	Name     string
	Value    Expr
}

func (e *PropertyWrite) ExprKind() ExprKind { return ExprPropertyWrite }

func (e *PropertyWrite) String() string {
	return qualify(e.Receiver, ".", e.Name) + " = " + e.Value.String()
}

// KeyedWrite is receiver[key] = value.
type KeyedWrite struct {
	Span
	Receiver Expr
	Key      Expr
	Value    Expr
}

func (e *KeyedWrite) ExprKind() ExprKind { return ExprKeyedWrite }

func (e *KeyedWrite) String() string {
	return e.Receiver.String() + "[" + e.Key.String() + "] = " + e.Value.String()
}

// Chain is a sequence of action expressions, a(); b().
type Chain struct {
	Span
	Expressions []Expr
}

func (e *Chain) ExprKind() ExprKind { return ExprChain }

func (e *Chain) String() string {
	var parts = make([]string, len(e.Expressions))
	for i, x := range e.Expressions {
		parts[i] = x.String()
	}
	return strings.Join(parts, "; ")
}

// EmptyExpr is a syntactically empty binding value, as in [routerLink]="".
type EmptyExpr struct {
	Span
}

func (e *EmptyExpr) ExprKind() ExprKind { return ExprEmpty }
func (e *EmptyExpr) String() string     { return "" }

// IsEmpty reports whether e is absent or an EmptyExpr.
func IsEmpty(e Expr) bool {
	if e == nil {
		return true
	}
	_, ok := e.(*EmptyExpr)
	return ok
}

func (*ImplicitReceiver) expr() {}
func (*PropertyRead) expr()     {}
func (*SafePropertyRead) expr() {}
func (*KeyedRead) expr()        {}
func (*MethodCall) expr()       {}
func (*SafeMethodCall) expr()   {}
func (*FunctionCall) expr()     {}
func (*LiteralPrimitive) expr() {}
func (*LiteralArray) expr()     {}
func (*LiteralMap) expr()       {}
func (*Conditional) expr()      {}
func (*Binary) expr()           {}
func (*PrefixNot) expr()        {}
func (*Unary) expr()            {}
func (*NonNullAssert) expr()    {}
func (*PipeCall) expr()         {}
func (*Interpolation) expr()    {}
func (*PropertyWrite) expr()    {}
func (*KeyedWrite) expr()       {}
func (*Chain) expr()            {}
func (*EmptyExpr) expr()        {}

func qualify(receiver Expr, sep, name string) string {
	if r, ok := receiver.(*ImplicitReceiver); ok && !r.This {
		return name
	}
	return receiver.String() + sep + name
}

func args(list []Expr) string {
	var parts = make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// quoteString quotes s with single quotes, escaping as a JS string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, ch := range s {
		switch ch {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
