package ngjs

import (
	"sort"
	"strconv"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/output"
)

// Declaration priorities of locals retrieved from the same view: a shared
// context is declared before the variables read from it.
const (
	priorityDefault = iota
	priorityShared
)

// local is a variable declared at the start of a block of generated code to
// read a template symbol or an outer context.
type local struct {
	name     string
	level    int // level of the view the value is retrieved from
	priority int
	seq      int
	declare  func(relative int) []output.Stmt
}

// bindingScope tracks the locals used by one block of generated code: the
// update block of a view, or a listener.  Reading a symbol of an outer view
// walks up the context chain with ɵɵnextContext; locals are declared from the
// closest view outwards so that each walk continues from the previous one.
type bindingScope struct {
	view   *viewCompiler
	level  int
	locals map[interface{}]*local
	// uses counts the symbols retrieved from each outer level
	uses map[int]int
}

type sharedKey int

func newBindingScope(v *viewCompiler) *bindingScope {
	return &bindingScope{
		view:   v,
		level:  v.level,
		locals: make(map[interface{}]*local),
		uses:   make(map[int]int),
	}
}

func (s *bindingScope) add(key interface{}, l *local) *local {
	l.seq = len(s.locals)
	s.locals[key] = l
	return l
}

// component returns the component instance.
func (s *bindingScope) component() output.Expr {
	if s.level == 0 {
		return output.Var("ctx")
	}
	var l = s.shared(0)
	s.uses[0] += 2
	return output.Var(l.name)
}

// shared returns the local holding the context of an outer view.
func (s *bindingScope) shared(level int) *local {
	if l, ok := s.locals[sharedKey(level)]; ok {
		return l
	}
	var l = s.add(sharedKey(level), &local{
		name:     s.view.comp.fresh("ctx"),
		level:    level,
		priority: priorityShared,
	})
	l.declare = func(relative int) []output.Stmt {
		return []output.Stmt{constDecl(l.name, nextContextExpr(relative))}
	}
	return l
}

// context returns the expression for the context of the view at level,
// given the number of views the context pointer must move.
func (s *bindingScope) context(level, relative int) output.Expr {
	if level == s.level {
		return output.Var("ctx")
	}
	if s.uses[level] > 1 {
		return output.Var(s.shared(level).name)
	}
	return nextContextExpr(relative)
}

func nextContextExpr(relative int) output.Expr {
	if relative > 1 {
		return output.CallFn(core(nextContext), output.Lit(relative))
	}
	return output.CallFn(core(nextContext))
}

// symbol returns the expression reading a reference or variable.
func (s *bindingScope) symbol(sym ast.Node) output.Expr {
	if l, ok := s.locals[sym]; ok {
		return output.Var(l.name)
	}
	var comp = s.view.comp
	var level = comp.bound.Level(comp.bound.ViewOf(sym))
	switch sym := sym.(type) {
	case *ast.Reference:
		var l = s.add(sym, &local{name: comp.fresh(""), level: level})
		l.declare = func(relative int) []output.Stmt {
			var stmts []output.Stmt
			if relative > 0 {
				stmts = append(stmts, output.Exec(nextContextExpr(relative)))
			}
			var slot = comp.refSlots[sym]
			return append(stmts, constDecl(l.name, output.CallFn(core(reference), output.Lit(slot))))
		}
		return output.Var(l.name)
	case *ast.Variable:
		var view = comp.bound.ViewOf(sym)
		var l = s.add(sym, &local{name: comp.fresh(sym.Name), level: level})
		if level != s.level {
			s.uses[level]++
			if variableReadsTwice(view, sym) {
				s.uses[level]++
			}
			if s.uses[level] > 1 {
				s.shared(level)
			}
		}
		l.declare = func(relative int) []output.Stmt {
			return []output.Stmt{constDecl(l.name, variableRead(view, sym, s.context(level, relative)))}
		}
		return output.Var(l.name)
	}
	panic("ngjs: unexpected symbol " + sym.Kind().String())
}

func constDecl(name string, value output.Expr) output.Stmt {
	return &output.DeclareVar{Kind: "const", Name: name, Value: value}
}

// empty reports whether no local has been requested.
func (s *bindingScope) empty() bool {
	return len(s.locals) == 0
}

// declarations returns the statements declaring the requested locals.
func (s *bindingScope) declarations() []output.Stmt {
	var locals []*local
	for key, l := range s.locals {
		if lvl, ok := key.(sharedKey); ok && s.uses[int(lvl)] < 2 {
			continue
		}
		locals = append(locals, l)
	}
	sort.Slice(locals, func(i, j int) bool {
		var a, b = locals[i], locals[j]
		if a.level != b.level {
			return a.level > b.level
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.seq < b.seq
	})

	var stmts []output.Stmt
	var current = 0
	for _, l := range locals {
		var diff = s.level - l.level
		stmts = append(stmts, l.declare(diff-current)...)
		current = diff
	}
	return stmts
}

// variableReadsTwice reports whether reading v needs its context twice.
func variableReadsTwice(view ast.Node, v *ast.Variable) bool {
	if _, ok := view.(*ast.ForLoopBlock); ok {
		return v.Value == "$last"
	}
	return false
}

// variableRead returns the expression reading variable v from ctx, the
// context object of its view.
func variableRead(view ast.Node, v *ast.Variable, ctx output.Expr) output.Expr {
	switch view.(type) {
	case *ast.IfBlockBranch:
		return ctx
	case *ast.ForLoopBlock:
		var index = output.Prop(ctx, "$index")
		var mod2 = &output.Binary{Op: "%", Left: index, Right: output.Lit(2)}
		switch v.Value {
		case "$first":
			return &output.Binary{Op: "===", Left: index, Right: output.Lit(0)}
		case "$last":
			var last = &output.Binary{Op: "-", Left: output.Prop(ctx, "$count"), Right: output.Lit(1)}
			return &output.Binary{Op: "===", Left: index, Right: last}
		case "$even":
			return &output.Binary{Op: "===", Left: mod2, Right: output.Lit(0)}
		case "$odd":
			return &output.Binary{Op: "!==", Left: mod2, Right: output.Lit(0)}
		}
	}
	var name = v.Value
	if name == "" {
		name = "$implicit"
	}
	return output.Prop(ctx, name)
}

// fresh returns a new local name, prefix_rN.
func (c *componentCompiler) fresh(prefix string) string {
	var name = prefix + "_r" + strconv.Itoa(c.names)
	c.names++
	return name
}
