package jit

import (
	"fmt"

	"github.com/robfig/ngc/output"
)

// lowerStmts returns a copy of stmts that an ES5 interpreter accepts.
func lowerStmts(stmts []output.Stmt) []output.Stmt {
	if stmts == nil {
		return nil
	}
	var out = make([]output.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = lowerStmt(s)
	}
	return out
}

func lowerStmt(s output.Stmt) output.Stmt {
	switch s := s.(type) {
	case *output.DeclareVar:
		return &output.DeclareVar{Kind: "var", Name: s.Name, Value: lowerExpr(s.Value)}
	case *output.DeclareFunction:
		return &output.DeclareFunction{Name: s.Name, Params: s.Params, Body: lowerStmts(s.Body)}
	case *output.ExprStmt:
		return &output.ExprStmt{Expr: lowerExpr(s.Expr)}
	case *output.Return:
		return &output.Return{Value: lowerExpr(s.Value)}
	case *output.If:
		return &output.If{Cond: lowerExpr(s.Cond), Then: lowerStmts(s.Then), Else: lowerStmts(s.Else)}
	case *output.Class:
		return &output.DeclareFunction{Name: s.Name}
	case *output.Guarded:
		return &output.Guarded{Flag: s.Flag, Call: lowerExpr(s.Call)}
	}
	panic(fmt.Sprintf("jit: unhandled statement %T", s))
}

func lowerExprs(exprs []output.Expr) []output.Expr {
	if exprs == nil {
		return nil
	}
	var out = make([]output.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = lowerExpr(e)
	}
	return out
}

func lowerExpr(e output.Expr) output.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *output.ReadVar, *output.External, *output.Literal, *output.Wrapped:
		return e
	case *output.ReadProp:
		return &output.ReadProp{Receiver: lowerExpr(e.Receiver), Name: e.Name}
	case *output.ReadKey:
		return &output.ReadKey{Receiver: lowerExpr(e.Receiver), Index: lowerExpr(e.Index)}
	case *output.WriteVar:
		return &output.WriteVar{Name: e.Name, Value: lowerExpr(e.Value)}
	case *output.WriteProp:
		return &output.WriteProp{Receiver: lowerExpr(e.Receiver), Name: e.Name, Value: lowerExpr(e.Value)}
	case *output.WriteKey:
		return &output.WriteKey{Receiver: lowerExpr(e.Receiver), Index: lowerExpr(e.Index), Value: lowerExpr(e.Value)}
	case *output.Call:
		return &output.Call{Fn: lowerExpr(e.Fn), Args: lowerExprs(e.Args), Pure: e.Pure}
	case *output.New:
		return &output.New{Class: lowerExpr(e.Class), Args: lowerExprs(e.Args)}
	case *output.LiteralArray:
		return &output.LiteralArray{Entries: lowerExprs(e.Entries)}
	case *output.LiteralMap:
		var m = &output.LiteralMap{Entries: make([]output.MapEntry, len(e.Entries))}
		for i, entry := range e.Entries {
			entry.Value = lowerExpr(entry.Value)
			m.Entries[i] = entry
		}
		return m
	case *output.Conditional:
		return &output.Conditional{Cond: lowerExpr(e.Cond), True: lowerExpr(e.True), False: lowerExpr(e.False)}
	case *output.Binary:
		return &output.Binary{Op: e.Op, Left: lowerExpr(e.Left), Right: lowerExpr(e.Right)}
	case *output.Unary:
		return &output.Unary{Op: e.Op, Expr: lowerExpr(e.Expr)}
	case *output.Function:
		return &output.Function{Name: e.Name, Params: e.Params, Body: lowerStmts(e.Body)}
	case *output.Comma:
		return &output.Comma{Exprs: lowerExprs(e.Exprs)}
	}
	panic(fmt.Sprintf("jit: unhandled expression %T", e))
}
