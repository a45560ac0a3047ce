package ngjs

import (
	"strconv"

	"github.com/robfig/ngc/output"
)

// ConstantPool hoists shared constants out of definitions into top-level
// declarations, const _c0 = ...;.  Identical constants are declared once.
// A pool is shared by all the classes of one source file.
type ConstantPool struct {
	stmts  []output.Stmt
	byKey  map[string]*output.ReadVar
	consts int
	tracks int
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{byKey: make(map[string]*output.ReadVar)}
}

// Statements returns the declarations of the constants hoisted so far.
func (p *ConstantPool) Statements() []output.Stmt {
	return p.stmts
}

// literal returns a reference to a hoisted copy of e.
func (p *ConstantPool) literal(e output.Expr) output.Expr {
	var key = "lit:" + output.PrintExpr(e, output.NewImports())
	if v, ok := p.byKey[key]; ok {
		return v
	}
	return p.declare(key, "_c"+strconv.Itoa(p.next()), e)
}

// literalFactory returns a hoisted function building the array or map
// literal e from its non-constant parts, along with those parts.  A
// constant literal yields a factory without arguments.
func (p *ConstantPool) literalFactory(e output.Expr) (output.Expr, []output.Expr) {
	var args []output.Expr
	var params []string
	var body = replaceNonConstants(e, func(part output.Expr) output.Expr {
		var name = "a" + strconv.Itoa(len(args))
		args = append(args, part)
		params = append(params, name)
		return output.Var(name)
	})
	var fn = &output.Function{Params: params, Body: []output.Stmt{&output.Return{Value: body}}}
	var key = "fac:" + output.PrintExpr(fn, output.NewImports())
	if v, ok := p.byKey[key]; ok {
		return v, args
	}
	return p.declare(key, "_c"+strconv.Itoa(p.next()), fn), args
}

// trackFunction returns a hoisted track function for a repeater.
func (p *ConstantPool) trackFunction(body output.Expr) output.Expr {
	var key = "track:" + output.PrintExpr(body, output.NewImports())
	if v, ok := p.byKey[key]; ok {
		return v
	}
	var name = "_forTrack" + strconv.Itoa(p.tracks)
	p.tracks++
	var v = output.Var(name)
	p.byKey[key] = v
	p.stmts = append(p.stmts, &output.DeclareFunction{
		Name:   name,
		Params: []string{"$index", "$item"},
		Body:   []output.Stmt{&output.Return{Value: body}},
	})
	return v
}

func (p *ConstantPool) next() int {
	var n = p.consts
	p.consts++
	return n
}

func (p *ConstantPool) declare(key, name string, value output.Expr) *output.ReadVar {
	var v = output.Var(name)
	p.byKey[key] = v
	p.stmts = append(p.stmts, &output.DeclareVar{Kind: "const", Name: name, Value: value})
	return v
}

// isConstant reports whether e is built from literals only.
func isConstant(e output.Expr) bool {
	switch e := e.(type) {
	case *output.Literal:
		return true
	case *output.LiteralArray:
		for _, x := range e.Entries {
			if !isConstant(x) {
				return false
			}
		}
		return true
	case *output.LiteralMap:
		for _, x := range e.Entries {
			if !isConstant(x.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// replaceNonConstants rebuilds array and map literals, replacing every
// non-constant entry with the result of fn.
func replaceNonConstants(e output.Expr, fn func(output.Expr) output.Expr) output.Expr {
	switch e := e.(type) {
	case *output.LiteralArray:
		var arr = output.Arr()
		for _, x := range e.Entries {
			arr.Entries = append(arr.Entries, replaceNonConstants(x, fn))
		}
		return arr
	case *output.LiteralMap:
		var m = &output.LiteralMap{}
		for _, x := range e.Entries {
			m.Entries = append(m.Entries, output.MapEntry{Key: x.Key, Quoted: x.Quoted, Value: replaceNonConstants(x.Value, fn)})
		}
		return m
	case *output.Literal:
		return e
	}
	return fn(e)
}
