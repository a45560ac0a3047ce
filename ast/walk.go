package ast

import "fmt"

// Inspect traverses the nodes in depth-first order, calling fn for each node
// before its children.  If fn returns false, the children of that node are
// skipped.  The traversal never modifies the tree.
func Inspect(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		inspect(n, fn)
	}
}

func inspect(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Text, *BoundText, *TextAttribute, *BoundAttribute, *BoundEvent, *Reference, *Variable:
		// leaves
	case *Element:
		Inspect(n.Children(), fn)
	case *Template:
		Inspect(n.Children(), fn)
	case *ForLoopBlock:
		Inspect(n.Children(), fn)
	case *ForLoopEmpty:
		Inspect(n.Body, fn)
	case *IfBlock:
		Inspect(n.Children(), fn)
	case *IfBlockBranch:
		Inspect(n.Children(), fn)
	case *SwitchBlock:
		Inspect(n.Children(), fn)
	case *SwitchCase:
		Inspect(n.Body, fn)
	case *Icu:
		Inspect(n.Children(), fn)
	case *IcuCase:
		Inspect(n.Body, fn)
	case *Content:
		Inspect(n.Children(), fn)
	default:
		panic(fmt.Sprintf("ast: unhandled node kind %v", n.Kind()))
	}
}

// Expressions returns the expressions owned directly by n, in source order.
func Expressions(n Node) []Expr {
	var exprs []Expr
	var add = func(e Expr) {
		if e != nil {
			exprs = append(exprs, e)
		}
	}
	switch n := n.(type) {
	case *Element, *Text, *TextAttribute, *Reference, *Variable, *Template,
		*ForLoopEmpty, *IfBlock, *IcuCase, *Content:
		// no expressions of their own
	case *BoundText:
		add(n.Value)
	case *BoundAttribute:
		add(n.Value)
	case *BoundEvent:
		add(n.Handler)
	case *ForLoopBlock:
		add(n.Expression)
		add(n.TrackBy)
	case *IfBlockBranch:
		add(n.Condition)
	case *SwitchBlock:
		add(n.Expression)
	case *SwitchCase:
		add(n.Expression)
	case *Icu:
		add(n.Switch)
	default:
		panic(fmt.Sprintf("ast: unhandled node kind %v", n.Kind()))
	}
	return exprs
}

// InspectExpr traverses an expression in depth-first order, calling fn for
// each node before its operands.  If fn returns false, the operands are
// skipped.
func InspectExpr(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Operands(e) {
		InspectExpr(child, fn)
	}
}

// Operands returns the direct sub-expressions of e in evaluation order.
func Operands(e Expr) []Expr {
	switch e := e.(type) {
	case *ImplicitReceiver, *LiteralPrimitive, *EmptyExpr:
		return nil
	case *PropertyRead:
		return []Expr{e.Receiver}
	case *SafePropertyRead:
		return []Expr{e.Receiver}
	case *KeyedRead:
		return []Expr{e.Receiver, e.Key}
	case *MethodCall:
		return append([]Expr{e.Receiver}, e.Args...)
	case *SafeMethodCall:
		return append([]Expr{e.Receiver}, e.Args...)
	case *FunctionCall:
		return append([]Expr{e.Target}, e.Args...)
	case *LiteralArray:
		return e.Elements
	case *LiteralMap:
		return e.Values
	case *Conditional:
		return []Expr{e.Condition, e.TrueExp, e.FalseExp}
	case *Binary:
		return []Expr{e.Left, e.Right}
	case *PrefixNot:
		return []Expr{e.Expression}
	case *Unary:
		return []Expr{e.Expression}
	case *NonNullAssert:
		return []Expr{e.Expression}
	case *PipeCall:
		return append([]Expr{e.Expression}, e.Args...)
	case *Interpolation:
		return e.Expressions
	case *PropertyWrite:
		return []Expr{e.Receiver, e.Value}
	case *KeyedWrite:
		return []Expr{e.Receiver, e.Key, e.Value}
	case *Chain:
		return e.Expressions
	default:
		panic(fmt.Sprintf("ast: unhandled expression kind %v", e.ExprKind()))
	}
}
