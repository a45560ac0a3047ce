package ngjs

import "github.com/robfig/ngc/output"

// CompileInjectable compiles the ɵprov definition of an injectable.
func CompileInjectable(meta *InjectableMeta, mode Mode) Compiled {
	if mode == Partial {
		return Compiled{
			Expression: output.CallFn(core(declareInjectable), injectableDeclaration(meta).ToLiteralMap()),
			Type:       injectableType(meta),
		}
	}

	var m DefinitionMap
	m.Set("token", meta.Type)
	m.Set("factory", injectableFactory(meta))
	if provided := providedIn(meta); provided != nil {
		m.Set("providedIn", forwardRefExpr(provided, Full))
	}
	return Compiled{
		Expression: definition(defineInjectable, &m, Full),
		Type:       injectableType(meta),
	}
}

// injectableDeclaration gathers the fields of a partial declaration.
func injectableDeclaration(meta *InjectableMeta) *DefinitionMap {
	var m DefinitionMap
	declarationHeader(&m)
	m.Set("ngImport", ngImport)
	m.Set("type", meta.Type)
	if provided := providedIn(meta); provided != nil {
		m.Set("providedIn", forwardRefExpr(provided, Partial))
	}
	m.Set("useClass", forwardRefExpr(meta.UseClass, Partial))
	m.Set("useExisting", forwardRefExpr(meta.UseExisting, Partial))
	m.Set("useValue", forwardRefExpr(meta.UseValue, Partial))
	// Factories are functions already and are never forward references.
	m.Set("useFactory", meta.UseFactory)
	if meta.Deps != nil {
		var deps = output.Arr()
		for _, d := range meta.Deps {
			deps.Entries = append(deps.Entries, dependencyDeclaration(d))
		}
		m.Set("deps", deps)
	}
	return &m
}

// providedIn returns the providedIn reference, or nil when absent or null.
func providedIn(meta *InjectableMeta) *MaybeForwardRef {
	if meta.ProvidedIn == nil || meta.ProvidedIn.Expr == nil || output.IsNullLiteral(meta.ProvidedIn.Expr) {
		return nil
	}
	return meta.ProvidedIn
}

// dependencyDeclaration returns {token, attribute?, host?, optional?, self?,
// skipSelf?} with flags present only when set.
func dependencyDeclaration(dep Dependency) *output.LiteralMap {
	var m DefinitionMap
	var token = dep.Token
	if token == nil {
		token = output.Lit(nil)
	}
	m.Set("token", token)
	var flag = func(key string, set bool) {
		if set {
			m.Set(key, output.Lit(true))
		}
	}
	flag("attribute", dep.Attribute)
	flag("host", dep.Host)
	flag("optional", dep.Optional)
	flag("self", dep.Self)
	flag("skipSelf", dep.SkipSelf)
	return m.ToLiteralMap()
}

// injectableFactory returns the factory of a full-mode injectable.  Forward
// references in useClass and useExisting are emitted bare: the factory is
// only called after the module has been evaluated.
func injectableFactory(meta *InjectableMeta) output.Expr {
	var fac = &FactoryMeta{
		Name:              meta.Name,
		Type:              meta.Type,
		TypeArgumentCount: meta.TypeArgumentCount,
		Deps:              []Dependency{},
		Target:            TargetInjectable,
	}
	switch {
	case meta.UseClass != nil:
		if meta.Deps != nil {
			return factoryFunction(fac, &factoryDelegate{
				expr: &output.New{Class: meta.UseClass.Expr, Args: injectDependencies(meta.Deps, TargetInjectable)},
			})
		}
		if sameReference(meta.UseClass.Expr, meta.Type) {
			return factoryFunction(fac, nil)
		}
		return delegateToFactory(meta.UseClass.Expr)
	case meta.UseFactory != nil:
		if meta.Deps != nil {
			return factoryFunction(fac, &factoryDelegate{
				expr: output.CallFn(meta.UseFactory, injectDependencies(meta.Deps, TargetInjectable)...),
			})
		}
		return &output.Function{Body: []output.Stmt{&output.Return{Value: output.CallFn(meta.UseFactory)}}}
	case meta.UseValue != nil:
		return factoryFunction(fac, &factoryDelegate{expr: meta.UseValue.Expr})
	case meta.UseExisting != nil:
		return factoryFunction(fac, &factoryDelegate{
			expr: output.CallFn(core(inject), meta.UseExisting.Expr),
		})
	}
	return output.Prop(meta.Type, "ɵfac")
}

// delegateToFactory returns function (t) { return type.ɵfac(t); }.
func delegateToFactory(typ output.Expr) output.Expr {
	return &output.Function{
		Params: []string{"t"},
		Body: []output.Stmt{&output.Return{
			Value: output.CallFn(output.Prop(typ, "ɵfac"), output.Var("t")),
		}},
	}
}

func sameReference(a, b output.Expr) bool {
	switch a := a.(type) {
	case *output.ReadVar:
		b, ok := b.(*output.ReadVar)
		return ok && a.Name == b.Name
	case *output.External:
		b, ok := b.(*output.External)
		return ok && *a == *b
	}
	return false
}

func injectableType(meta *InjectableMeta) output.Type {
	return output.CoreType(injectableDef, typeOf(meta.Type, meta.TypeArgumentCount))
}
