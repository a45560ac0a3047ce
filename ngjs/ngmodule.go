package ngjs

import "github.com/robfig/ngc/output"

// CompileNgModule compiles the ɵmod definition of an NgModule.  Unless
// EmitInline is set, full mode leaves the declarations, imports and exports
// out of the definition and registers them with a separate scope call that
// only runs in JIT-capable builds.
func CompileNgModule(meta *NgModuleMeta, mode Mode) Compiled {
	var m DefinitionMap
	if mode == Partial {
		declarationHeader(&m)
		m.Set("ngImport", ngImport)
		m.Set("type", meta.Type)
		setRefs(&m, "bootstrap", meta.Bootstrap)
		setRefs(&m, "declarations", meta.Declarations)
		setRefs(&m, "imports", meta.Imports)
		setRefs(&m, "exports", meta.Exports)
		if len(meta.Schemas) > 0 {
			m.Set("schemas", output.Arr(meta.Schemas...))
		}
		m.Set("id", meta.ID)
		return Compiled{
			Expression: output.CallFn(core(declareNgModule), m.ToLiteralMap()),
			Type:       ngModuleType(meta),
		}
	}

	m.Set("type", meta.Type)
	setRefs(&m, "bootstrap", meta.Bootstrap)
	var stmts []output.Stmt
	if meta.EmitInline {
		setRefs(&m, "declarations", meta.Declarations)
		setRefs(&m, "imports", meta.Imports)
		setRefs(&m, "exports", meta.Exports)
	} else if scope := ngModuleScope(meta); scope != nil {
		stmts = append(stmts, &output.Guarded{Flag: "ngJitMode", Call: scope})
	}
	if len(meta.Schemas) > 0 {
		m.Set("schemas", output.Arr(meta.Schemas...))
	}
	m.Set("id", meta.ID)
	return Compiled{
		Expression: definition(defineNgModule, &m, Full),
		Type:       ngModuleType(meta),
		Statements: stmts,
	}
}

func setRefs(m *DefinitionMap, key string, refs []*MaybeForwardRef) {
	if len(refs) > 0 {
		m.Set(key, refsToArray(refs))
	}
}

// ngModuleScope returns i0.ɵɵsetNgModuleScope(T, { declarations, imports,
// exports }), or nil when the module has no scope.
func ngModuleScope(meta *NgModuleMeta) output.Expr {
	var scope DefinitionMap
	setRefs(&scope, "declarations", meta.Declarations)
	setRefs(&scope, "imports", meta.Imports)
	setRefs(&scope, "exports", meta.Exports)
	if scope.Len() == 0 {
		return nil
	}
	return output.CallFn(core(setNgModuleScope), meta.Type, scope.ToLiteralMap())
}

func ngModuleType(meta *NgModuleMeta) output.Type {
	return output.CoreType(ngModuleDef,
		typeOf(meta.Type, 0),
		typeofTuple(meta.Declarations),
		typeofTuple(meta.Imports),
		typeofTuple(meta.Exports))
}

// CompileInjector compiles the ɵinj definition of an NgModule.
func CompileInjector(meta *InjectorMeta, mode Mode) Compiled {
	var m DefinitionMap
	if mode == Partial {
		declarationHeader(&m)
		m.Set("ngImport", ngImport)
		m.Set("type", meta.Type)
	}
	m.Set("providers", meta.Providers)
	if len(meta.Imports) > 0 {
		m.Set("imports", output.Arr(meta.Imports...))
	}

	var t = output.CoreType(injectorDef, typeOf(meta.Type, 0))
	if mode == Partial {
		return Compiled{Expression: output.CallFn(core(declareInjector), m.ToLiteralMap()), Type: t}
	}
	return Compiled{Expression: definition(defineInjector, &m, Full), Type: t}
}
