package ngjs

import (
	"strconv"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/output"
)

// branch creates the embedded view of one control flow branch and returns
// its slot.
func (v *viewCompiler) branch(kind string, body []ast.Node) int {
	var slot = v.allocSlot()
	var child = v.embedded(kind + "_" + strconv.Itoa(slot))
	var decls, vars = output.Lit(0), output.Lit(0)
	v.create(templateCreate, output.Lit(slot), output.Var(child.fnName), decls, vars)
	v.deferBuild(child, body, decls, vars)
	return slot
}

// ifBlock emits one template per branch and a ɵɵconditional choosing the
// slot of the branch to display, or -1 for none.  An aliased condition is
// stored in a temporary and passed as the context of the view.
func (v *viewCompiler) ifBlock(n *ast.IfBlock) {
	var slots = make([]int, len(n.Branches))
	for i, b := range n.Branches {
		slots[i] = v.branch("Conditional", b.Body)
	}

	var conv = v.converter(v.scope, &v.temps, false)
	var conds = make([]output.Expr, len(n.Branches))
	var alias string
	for i, b := range n.Branches {
		if b.Condition == nil {
			continue
		}
		conds[i] = conv.convert(b.Condition)
		if b.Alias != nil && alias == "" {
			alias = conv.temp()
			conds[i] = &output.WriteVar{Name: alias, Value: conds[i]}
		}
	}

	var test output.Expr = output.Lit(-1)
	for i := len(n.Branches) - 1; i >= 0; i-- {
		if conds[i] == nil {
			test = output.Lit(slots[i])
			continue
		}
		test = &output.Conditional{Cond: conds[i], True: output.Lit(slots[i]), False: test}
	}

	var args = []output.Expr{output.Lit(slots[0]), test}
	if alias != "" {
		args = append(args, output.Var(alias))
	}
	v.bindingSlots++
	v.updateAt(slots[0], v.instruction(conditional, args...))
}

// switchBlock emits one template per case and a ɵɵconditional comparing
// the subject with each case in turn.
func (v *viewCompiler) switchBlock(n *ast.SwitchBlock) {
	if len(n.Cases) == 0 {
		return
	}
	var slots = make([]int, len(n.Cases))
	var matching int
	for i, c := range n.Cases {
		slots[i] = v.branch("Case", c.Body)
		if c.Expression != nil {
			matching++
		}
	}

	var conv = v.converter(v.scope, &v.temps, false)
	var subject = conv.convert(n.Expression)
	var first, rest = subject, subject
	if matching > 1 {
		var tmp = conv.temp()
		first = &output.WriteVar{Name: tmp, Value: subject}
		rest = output.Var(tmp)
	}

	var tests = make([]output.Expr, len(n.Cases))
	var used bool
	var fallback output.Expr = output.Lit(-1)
	for i, c := range n.Cases {
		if c.Expression == nil {
			fallback = output.Lit(slots[i])
			continue
		}
		var left = rest
		if !used {
			left, used = first, true
		}
		tests[i] = &output.Binary{Op: "===", Left: left, Right: conv.convert(c.Expression)}
	}
	var test = fallback
	for i := len(n.Cases) - 1; i >= 0; i-- {
		if tests[i] != nil {
			test = &output.Conditional{Cond: tests[i], True: output.Lit(slots[i]), False: test}
		}
	}
	v.bindingSlots++
	v.updateAt(slots[0], v.instruction(conditional, output.Lit(slots[0]), test))
}

// forLoop emits a repeater: its body template, the optional empty template
// and the track function identifying items across changes.
func (v *viewCompiler) forLoop(n *ast.ForLoopBlock) {
	var slot = v.allocSlot()
	var bodySlot = v.allocSlot()
	var body = v.embedded("For_" + strconv.Itoa(bodySlot))
	var decls, vars = output.Lit(0), output.Lit(0)
	var track, usesThis = v.trackFunction(n)

	var args = []output.Expr{output.Lit(slot), output.Var(body.fnName), decls, vars, track}
	if usesThis || n.Empty != nil {
		args = append(args, output.Lit(usesThis))
	}
	v.deferBuild(body, n.Body, decls, vars)

	if n.Empty != nil {
		var emptySlot = v.allocSlot()
		var empty = v.embedded("ForEmpty_" + strconv.Itoa(emptySlot))
		var emptyDecls, emptyVars = output.Lit(0), output.Lit(0)
		args = append(args, output.Var(empty.fnName), emptyDecls, emptyVars)
		v.deferBuild(empty, n.Empty.Body, emptyDecls, emptyVars)
	}
	v.create(repeaterCreate, args...)

	var conv = v.converter(v.scope, &v.temps, false)
	v.bindingSlots++
	v.updateAt(slot, v.instruction(repeater, output.Lit(slot), conv.convert(n.Expression)))
}

// trackFunction returns the track function of a loop and whether it reads
// the component instance.  Tracking by the item or $index uses the runtime
// functions; other expressions are hoisted into function ($index, $item).
func (v *viewCompiler) trackFunction(n *ast.ForLoopBlock) (output.Expr, bool) {
	var bound = v.comp.bound
	if read, ok := n.TrackBy.(*ast.PropertyRead); ok && isImplicit(read.Receiver) {
		switch sym := bound.Target(read).(type) {
		case *ast.Variable:
			if sym == n.Item {
				return core(trackByIdentity), false
			}
			if sym.Value == "$index" && bound.ViewOf(sym) == ast.Node(n) {
				return core(trackByIndex), false
			}
		}
	}

	var usesThis bool
	var conv = &converter{
		view: v,
		symbol: func(sym ast.Node) output.Expr {
			if variable, ok := sym.(*ast.Variable); ok && bound.ViewOf(sym) == ast.Node(n) {
				switch {
				case variable == n.Item:
					return output.Var("$item")
				case variable.Value == "$index":
					return output.Var("$index")
				}
			}
			v.comp.errorf(errortypes.ResolutionError, n.TrackBy.SourceSpan(),
				"track expressions may only read the loop item, $index and component members")
			return output.Lit(nil)
		},
		component: func() output.Expr {
			usesThis = true
			return output.Var("this")
		},
		temp: func() string {
			v.comp.errorf(errortypes.ParseError, n.TrackBy.SourceSpan(),
				"track expressions cannot use safe navigation on calls")
			return "_"
		},
		action: true,
	}
	var body = conv.convert(n.TrackBy)
	return v.comp.pool.trackFunction(body), usesThis
}
