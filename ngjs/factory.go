package ngjs

import "github.com/robfig/ngc/output"

// CompileFactory compiles the ɵfac factory of a class:
//
//	function MyApp_Factory(t) { return new (t || MyApp)(i0.ɵɵdirectiveInject(Dep)); }
//
// A class that inherits its constructor delegates to the factory of its
// base class, looked up once and cached.
func CompileFactory(meta *FactoryMeta) Compiled {
	return Compiled{
		Expression: factoryFunction(meta, nil),
		Type:       factoryType(meta),
	}
}

// factoryDelegate replaces the constructor call of a factory that was asked
// for a specific type t with another way of creating the instance.
type factoryDelegate struct {
	expr output.Expr // the instance expression when t is unset
}

func factoryFunction(meta *FactoryMeta, delegate *factoryDelegate) output.Expr {
	var t = output.Var("t")
	var typeForCtor output.Expr = &output.Binary{Op: "||", Left: t, Right: meta.Type}

	var ctorExpr output.Expr
	var baseFactory *output.ReadVar
	switch {
	case meta.InvalidDeps:
	case meta.Deps == nil:
		baseFactory = output.Var("ɵ" + meta.Name + "_BaseFactory")
		ctorExpr = output.CallFn(baseFactory, typeForCtor)
	default:
		ctorExpr = &output.New{Class: typeForCtor, Args: injectDependencies(meta.Deps, meta.Target)}
	}

	var body []output.Stmt
	var retExpr output.Expr
	if delegate != nil {
		var r = output.Var("r")
		body = append(body, &output.DeclareVar{Kind: "let", Name: "r", Value: output.Lit(nil)})
		var ctorStmt output.Stmt = output.Exec(output.CallFn(core(invalidFactory)))
		if ctorExpr != nil {
			ctorStmt = output.Exec(&output.WriteVar{Name: r.Name, Value: ctorExpr})
		}
		body = append(body, &output.If{
			Cond: t,
			Then: []output.Stmt{ctorStmt},
			Else: []output.Stmt{output.Exec(&output.WriteVar{Name: r.Name, Value: delegate.expr})},
		})
		retExpr = r
	} else {
		retExpr = ctorExpr
	}

	switch {
	case retExpr == nil:
		body = append(body, output.Exec(output.CallFn(core(invalidFactory))))
	case baseFactory != nil:
		var lookup = &output.Binary{
			Op:    "||",
			Left:  baseFactory,
			Right: &output.WriteVar{Name: baseFactory.Name, Value: output.CallFn(core(getInheritedFactory), meta.Type)},
		}
		body = append(body, &output.Return{Value: output.CallFn(lookup, typeForCtor)})
	default:
		body = append(body, &output.Return{Value: retExpr})
	}

	var fn output.Expr = &output.Function{Name: meta.Name + "_Factory", Params: []string{"t"}, Body: body}
	if baseFactory != nil {
		var wrapper = &output.Function{Body: []output.Stmt{
			&output.DeclareVar{Kind: "let", Name: baseFactory.Name},
			&output.Return{Value: fn},
		}}
		fn = &output.Call{Fn: wrapper, Pure: true}
	}
	return fn
}

func injectDependencies(deps []Dependency, target FactoryTarget) []output.Expr {
	var args = make([]output.Expr, len(deps))
	for i, dep := range deps {
		args[i] = injectDependency(dep, target, i)
	}
	return args
}

func injectDependency(dep Dependency, target FactoryTarget, index int) output.Expr {
	if dep.Token == nil {
		return output.CallFn(core(invalidFactoryDep), output.Lit(index))
	}
	if dep.Attribute {
		return output.CallFn(core(injectAttribute), dep.Token)
	}
	var flags = flagDefault
	if dep.Self {
		flags |= flagSelf
	}
	if dep.SkipSelf {
		flags |= flagSkipSelf
	}
	if dep.Host {
		flags |= flagHost
	}
	if dep.Optional {
		flags |= flagOptional
	}
	if target == TargetPipe {
		flags |= flagForPipe
	}
	var args = []output.Expr{dep.Token}
	if flags != flagDefault {
		args = append(args, output.Lit(flags))
	}
	var fn = inject
	switch target {
	case TargetComponent, TargetDirective, TargetPipe:
		fn = directiveInject
	}
	return output.CallFn(core(fn), args...)
}

// factoryType returns i0.ɵɵFactoryDef<T, CtorDeps>, where CtorDeps lists
// the attribute and flag metadata of each parameter or is never when no
// parameter carries any.
func factoryType(meta *FactoryMeta) output.Type {
	var ctorDeps output.Type = output.NeverType
	if !meta.InvalidDeps && hasDepMetadata(meta.Deps) {
		var tuple = &output.TupleType{}
		for _, dep := range meta.Deps {
			tuple.Elements = append(tuple.Elements, depType(dep))
		}
		ctorDeps = tuple
	}
	return output.CoreType(factoryDef, typeOf(meta.Type, meta.TypeArgumentCount), ctorDeps)
}

func hasDepMetadata(deps []Dependency) bool {
	for _, d := range deps {
		if d.Attribute || d.Host || d.Optional || d.Self || d.SkipSelf {
			return true
		}
	}
	return false
}

var nullType = &output.NamedType{Name: "null"}
var trueType = &output.NamedType{Name: "true"}

func depType(dep Dependency) output.Type {
	var m = &output.MapType{}
	var add = func(key string, t output.Type) {
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, t)
	}
	if dep.Attribute {
		if lit, ok := dep.Token.(*output.Literal); ok {
			if s, ok := lit.Value.(string); ok {
				add("attribute", &output.LiteralType{Value: s})
			}
		}
	}
	if dep.Optional {
		add("optional", trueType)
	}
	if dep.Host {
		add("host", trueType)
	}
	if dep.Self {
		add("self", trueType)
	}
	if dep.SkipSelf {
		add("skipSelf", trueType)
	}
	if len(m.Keys) == 0 {
		return nullType
	}
	return m
}
