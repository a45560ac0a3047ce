package ngjs

import (
	"math"
	"strconv"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/output"
)

// converter translates template expressions into output expressions.
type converter struct {
	view *viewCompiler
	// symbol reads a template reference or variable; component reads the
	// component instance.
	symbol    func(ast.Node) output.Expr
	component func() output.Expr
	// temp allocates a temporary variable of the enclosing block.
	temp func() string
	// action is set for event handlers, where $event is in scope and
	// literals are created on every call.
	action bool
}

// converter returns a converter for expressions evaluated in scope.
func (v *viewCompiler) converter(scope *bindingScope, temps *[]string, action bool) *converter {
	return &converter{
		view:      v,
		symbol:    scope.symbol,
		component: scope.component,
		temp: func() string {
			var name = "tmp_" + strconv.Itoa(v.level) + "_" + strconv.Itoa(len(*temps))
			*temps = append(*temps, name)
			return name
		},
		action: action,
	}
}

func (c *converter) convert(e ast.Expr) output.Expr {
	switch e := e.(type) {
	case *ast.ImplicitReceiver:
		return c.component()
	case *ast.PropertyRead:
		if isImplicit(e.Receiver) {
			return c.implicitRead(e, e.Name)
		}
		return output.Prop(c.convert(e.Receiver), e.Name)
	case *ast.SafePropertyRead:
		return c.safe(e.Receiver, func(r output.Expr) output.Expr {
			return output.Prop(r, e.Name)
		})
	case *ast.KeyedRead:
		return &output.ReadKey{Receiver: c.convert(e.Receiver), Index: c.convert(e.Key)}
	case *ast.MethodCall:
		if isImplicit(e.Receiver) {
			if sym := c.target(e); sym != nil {
				return output.CallFn(c.symbol(sym), c.convertAll(e.Args)...)
			}
			return output.CallFn(output.Prop(c.component(), e.Name), c.convertAll(e.Args)...)
		}
		return output.CallFn(output.Prop(c.convert(e.Receiver), e.Name), c.convertAll(e.Args)...)
	case *ast.SafeMethodCall:
		return c.safe(e.Receiver, func(r output.Expr) output.Expr {
			return output.CallFn(output.Prop(r, e.Name), c.convertAll(e.Args)...)
		})
	case *ast.FunctionCall:
		return output.CallFn(c.convert(e.Target), c.convertAll(e.Args)...)
	case *ast.LiteralPrimitive:
		return primitive(e.Value)
	case *ast.LiteralArray, *ast.LiteralMap:
		var lit = c.literal(e)
		if c.action {
			return lit
		}
		return c.view.pureFunction(lit)
	case *ast.Conditional:
		return &output.Conditional{
			Cond:  c.convert(e.Condition),
			True:  c.convert(e.TrueExp),
			False: c.convert(e.FalseExp),
		}
	case *ast.Binary:
		return &output.Binary{Op: e.Operation, Left: c.convert(e.Left), Right: c.convert(e.Right)}
	case *ast.PrefixNot:
		return &output.Unary{Op: "!", Expr: c.convert(e.Expression)}
	case *ast.Unary:
		return &output.Unary{Op: e.Operator, Expr: c.convert(e.Expression)}
	case *ast.NonNullAssert:
		return c.convert(e.Expression)
	case *ast.PipeCall:
		return c.view.pipeBinding(e, c.convert(e.Expression), c.convertAll(e.Args))
	case *ast.PropertyWrite:
		var receiver output.Expr
		if isImplicit(e.Receiver) {
			receiver = c.component()
		} else {
			receiver = c.convert(e.Receiver)
		}
		return &output.WriteProp{Receiver: receiver, Name: e.Name, Value: c.convert(e.Value)}
	case *ast.KeyedWrite:
		return &output.WriteKey{Receiver: c.convert(e.Receiver), Index: c.convert(e.Key), Value: c.convert(e.Value)}
	case *ast.Chain:
		var exprs = c.convertAll(e.Expressions)
		if len(exprs) == 1 {
			return exprs[0]
		}
		return &output.Comma{Exprs: exprs}
	case *ast.EmptyExpr:
		return output.Lit(output.Undefined{})
	case *ast.Interpolation:
		panic("ngjs: interpolation converted as a plain expression")
	}
	panic("ngjs: unhandled expression " + e.ExprKind().String())
}

func (c *converter) convertAll(list []ast.Expr) []output.Expr {
	var out = make([]output.Expr, len(list))
	for i, e := range list {
		out[i] = c.convert(e)
	}
	return out
}

func (c *converter) target(e ast.Expr) ast.Node {
	if c.view == nil || c.view.comp.bound == nil {
		return nil
	}
	return c.view.comp.bound.Target(e)
}

func (c *converter) implicitRead(e ast.Expr, name string) output.Expr {
	if sym := c.target(e); sym != nil {
		return c.symbol(sym)
	}
	if c.action && name == "$event" {
		return output.Var("$event")
	}
	return output.Prop(c.component(), name)
}

// safe returns receiver == null ? null : access(receiver).  A receiver with
// side effects is evaluated once through a temporary.
func (c *converter) safe(receiver ast.Expr, access func(output.Expr) output.Expr) output.Expr {
	var r = c.convert(receiver)
	var test, use = r, r
	if hasSideEffects(r) {
		var tmp = c.temp()
		test = &output.WriteVar{Name: tmp, Value: r}
		use = output.Var(tmp)
	}
	return &output.Conditional{
		Cond:  &output.Binary{Op: "==", Left: test, Right: output.Lit(nil)},
		True:  output.Lit(nil),
		False: access(use),
	}
}

func hasSideEffects(e output.Expr) bool {
	switch e := e.(type) {
	case *output.Call, *output.Conditional, *output.WriteVar, *output.WriteProp, *output.WriteKey, *output.New:
		return true
	case *output.ReadProp:
		return hasSideEffects(e.Receiver)
	case *output.ReadKey:
		return hasSideEffects(e.Receiver) || hasSideEffects(e.Index)
	}
	return false
}

// literal converts an array or map literal without hoisting nested
// literals separately.
func (c *converter) literal(e ast.Expr) output.Expr {
	switch e := e.(type) {
	case *ast.LiteralArray:
		var arr = output.Arr()
		for _, el := range e.Elements {
			arr.Entries = append(arr.Entries, c.literal(el))
		}
		return arr
	case *ast.LiteralMap:
		var m = &output.LiteralMap{}
		for i, k := range e.Keys {
			m.Entries = append(m.Entries, output.MapEntry{Key: k.Key, Quoted: k.Quoted, Value: c.literal(e.Values[i])})
		}
		return m
	}
	return c.convert(e)
}

// primitive converts a literal value; integral numbers print without a
// fraction.
func primitive(v interface{}) output.Expr {
	switch v := v.(type) {
	case ast.Undefined:
		return output.Lit(output.Undefined{})
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return output.Lit(int(v))
		}
		return output.Lit(v)
	}
	return output.Lit(v)
}

func isImplicit(e ast.Expr) bool {
	var r, ok = e.(*ast.ImplicitReceiver)
	return ok && !r.This
}

// actionStatements converts an event handler into statements, returning the
// value of the last expression.
func (c *converter) actionStatements(handler ast.Expr) []output.Stmt {
	var exprs []ast.Expr
	switch h := handler.(type) {
	case *ast.Chain:
		exprs = h.Expressions
	case *ast.EmptyExpr:
	default:
		exprs = []ast.Expr{h}
	}
	var stmts []output.Stmt
	for i, e := range exprs {
		var x = c.convert(e)
		if i == len(exprs)-1 {
			stmts = append(stmts, &output.Return{Value: x})
		} else {
			stmts = append(stmts, output.Exec(x))
		}
	}
	return stmts
}
