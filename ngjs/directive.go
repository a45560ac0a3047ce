package ngjs

import (
	"strings"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/expr"
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/selector"
)

// CompileDirective compiles the ɵdir definition of a directive.
func CompileDirective(meta *DirectiveMeta, pool *ConstantPool, mode Mode) (Compiled, error) {
	if mode == Partial {
		var m = directiveDeclaration(meta)
		return Compiled{
			Expression: output.CallFn(core(declareDirective), m.ToLiteralMap()),
			Type:       directiveType(meta),
		}, nil
	}

	var m DefinitionMap
	var errs errortypes.List
	baseDirectiveFields(&m, meta, pool, &errs)
	addFeatures(&m, meta, nil)
	return Compiled{
		Expression: definition(defineDirective, &m, Full),
		Type:       directiveType(meta),
	}, errs.Err()
}

// baseDirectiveFields sets the fields shared by directives and components:
// type, selectors, host bindings, inputs, outputs and exportAs.
func baseDirectiveFields(m *DefinitionMap, meta *DirectiveMeta, pool *ConstantPool, errs *errortypes.List) {
	m.Set("type", meta.Type)
	if meta.Selector != "" {
		var list, err = selector.Parse(meta.Selector)
		if err != nil {
			errs.Add(errortypes.ParseError, "", 0, 0, "%s: invalid selector %q: %v", meta.Name, meta.Selector, err)
		} else {
			m.Set("selectors", selectorListLiteral(list))
		}
	}
	compileHostBindings(m, meta, pool, errs)
	m.Set("inputs", propertyMap(meta.Inputs, true))
	m.Set("outputs", propertyMap(meta.Outputs, false))
	m.Set("exportAs", stringArray(meta.ExportAs))
}

// addFeatures sets the features list: providers, inheritance and the
// ngOnChanges hook.
func addFeatures(m *DefinitionMap, meta *DirectiveMeta, viewProviders output.Expr) {
	var features []output.Expr
	if meta.Providers != nil || viewProviders != nil {
		var providers = meta.Providers
		if providers == nil {
			providers = output.Arr()
		}
		var args = []output.Expr{providers}
		if viewProviders != nil {
			args = append(args, viewProviders)
		}
		features = append(features, output.CallFn(core(providersFeature), args...))
	}
	if meta.UsesInheritance {
		features = append(features, core(inheritDefinition))
	}
	if meta.UsesOnChanges {
		features = append(features, core(ngOnChangesFeature))
	}
	if len(features) > 0 {
		m.Set("features", output.Arr(features...))
	}
}

// hostTarget is a parsed host property binding target.
type hostTarget struct {
	kind ast.BindingType
	name string
	unit string
}

func parseHostTarget(key string) hostTarget {
	switch {
	case strings.HasPrefix(key, "attr."):
		return hostTarget{kind: ast.BindingAttribute, name: key[len("attr."):]}
	case strings.HasPrefix(key, "class."):
		return hostTarget{kind: ast.BindingClass, name: key[len("class."):]}
	case strings.HasPrefix(key, "style."):
		var name, unit = key[len("style."):], ""
		if i := strings.Index(name, "."); i >= 0 {
			name, unit = name[:i], name[i+1:]
		}
		return hostTarget{kind: ast.BindingStyle, name: name, unit: unit}
	case strings.HasPrefix(key, "@"):
		return hostTarget{kind: ast.BindingAnimation, name: key}
	}
	return hostTarget{kind: ast.BindingProperty, name: key}
}

// compileHostBindings sets hostAttrs, hostVars and the hostBindings
// function of a directive.
func compileHostBindings(m *DefinitionMap, meta *DirectiveMeta, pool *ConstantPool, errs *errortypes.List) {
	var host = meta.Host
	var attrs attrSet
	for _, a := range host.Attributes {
		attrs.attribute(&ast.TextAttribute{Name: a.Key, Value: a.Value})
	}
	if entries := attrs.expr(nil); len(entries) > 0 {
		m.Set("hostAttrs", output.Arr(entries...))
	}
	if len(host.Listeners) == 0 && len(host.Properties) == 0 {
		return
	}

	var comp = newComponentCompiler(&ComponentMeta{DirectiveMeta: *meta}, nil, pool)
	var v = newViewCompiler(comp, 0, meta.Name)
	v.host = true
	v.fnName = meta.Name + "_HostBindings"

	for _, l := range host.Listeners {
		var handler, err = expr.ParseAction(l.Value, 0)
		if err != nil {
			errs.Add(errortypes.ParseError, "", 0, 0, "%s: host listener (%s): %v", meta.Name, l.Key, err)
			continue
		}
		var name, target = l.Key, ""
		if i := strings.Index(name, ":"); i >= 0 {
			target, name = name[:i], name[i+1:]
		}
		var fn = v.handler(meta.Name+"_"+sanitizeIdentifier(name)+"_HostBindingHandler", handler)
		var args = []output.Expr{output.Lit(name), fn}
		if resolver := eventTarget(target); resolver != nil {
			args = append(args, output.Lit(false), resolver)
		}
		var instr = listener
		if strings.HasPrefix(name, "@") {
			instr = syntheticHostListener
		}
		v.creation = append(v.creation, v.instruction(instr, args...))
	}

	var conv = v.converter(v.scope, &v.temps, false)
	var props, styling []output.Stmt
	for _, p := range host.Properties {
		var value, err = expr.Parse(p.Value, 0)
		if err != nil {
			errs.Add(errortypes.ParseError, "", 0, 0, "%s: host property [%s]: %v", meta.Name, p.Key, err)
			continue
		}
		var t = parseHostTarget(p.Key)
		switch {
		case t.kind == ast.BindingProperty && t.name == "class":
			v.bindingSlots += 2
			styling = append(styling, v.instruction(classMap, conv.convert(value)))
		case t.kind == ast.BindingProperty && t.name == "style":
			v.bindingSlots += 2
			styling = append(styling, v.instruction(styleMap, conv.convert(value)))
		case t.kind == ast.BindingClass:
			v.bindingSlots += 2
			styling = append(styling, v.instruction(classProp, output.Lit(t.name), conv.convert(value)))
		case t.kind == ast.BindingStyle:
			styling = append(styling, v.styleProp(conv, &ast.BoundAttribute{Name: t.name, Unit: t.unit, Value: value}))
		case t.kind == ast.BindingAttribute:
			v.bindingSlots++
			props = append(props, v.instruction(attribute, output.Lit(t.name), conv.convert(value)))
		case t.kind == ast.BindingAnimation:
			v.bindingSlots++
			props = append(props, v.instruction(syntheticHostProperty, output.Lit(t.name), conv.convert(value)))
		default:
			v.bindingSlots++
			props = append(props, v.instruction(hostProperty, output.Lit(t.name), conv.convert(value)))
		}
	}
	for _, lit := range v.pureOffsets {
		lit.Value = lit.Value.(int) + v.bindingSlots
	}
	*errs = append(*errs, comp.errs...)

	var update []output.Stmt
	for _, tmp := range v.temps {
		update = append(update, &output.DeclareVar{Kind: "let", Name: tmp})
	}
	update = append(update, props...)
	update = append(update, styling...)
	if vars := v.vars(); vars > 0 {
		m.Set("hostVars", output.Lit(vars))
	}
	m.Set("hostBindings", &output.Function{
		Name:   v.fnName,
		Params: []string{"rf", "ctx"},
		Body:   renderFlagBlocks(v.creation, update),
	})
}

// directiveDeclaration gathers the fields of a partial directive
// declaration.
func directiveDeclaration(meta *DirectiveMeta) *DefinitionMap {
	var m DefinitionMap
	declarationHeader(&m)
	m.Set("type", meta.Type)
	if meta.Selector != "" {
		m.Set("selector", output.Lit(meta.Selector))
	}
	m.Set("inputs", propertyMap(meta.Inputs, true))
	m.Set("outputs", propertyMap(meta.Outputs, false))
	m.Set("host", hostMetadata(meta.Host))
	m.Set("providers", meta.Providers)
	m.Set("exportAs", stringArray(meta.ExportAs))
	if meta.UsesInheritance {
		m.Set("usesInheritance", output.Lit(true))
	}
	if meta.UsesOnChanges {
		m.Set("usesOnChanges", output.Lit(true))
	}
	m.Set("ngImport", ngImport)
	return &m
}

// hostMetadata returns the host field of a partial declaration, or nil
// without host bindings.  Static class and style attributes are set apart.
func hostMetadata(h HostMeta) output.Expr {
	var m DefinitionMap
	var attrs = &output.LiteralMap{}
	var classAttr, styleAttr string
	for _, a := range h.Attributes {
		switch a.Key {
		case "class":
			classAttr = a.Value
		case "style":
			styleAttr = a.Value
		default:
			attrs.Entries = append(attrs.Entries, output.MapEntry{Key: a.Key, Quoted: true, Value: output.Lit(a.Value)})
		}
	}
	if len(attrs.Entries) > 0 {
		m.Set("attributes", attrs)
	}
	m.Set("listeners", quotedMap(h.Listeners))
	m.Set("properties", quotedMap(h.Properties))
	if styleAttr != "" {
		m.Set("styleAttribute", output.Lit(styleAttr))
	}
	if classAttr != "" {
		m.Set("classAttribute", output.Lit(classAttr))
	}
	if m.Len() == 0 {
		return nil
	}
	return m.ToLiteralMap()
}

func quotedMap(entries []HostEntry) output.Expr {
	if len(entries) == 0 {
		return nil
	}
	var lit = &output.LiteralMap{}
	for _, e := range entries {
		lit.Entries = append(lit.Entries, output.MapEntry{Key: e.Key, Quoted: true, Value: output.Lit(e.Value)})
	}
	return lit
}

// directiveTypeParams returns the type arguments shared by directive and
// component definitions.
func directiveTypeParams(meta *DirectiveMeta) []output.Type {
	return []output.Type{
		typeOf(meta.Type, meta.TypeArgumentCount),
		output.LiteralTypeOrNever(strings.Join(strings.Fields(meta.Selector), " ")),
		stringTupleType(meta.ExportAs),
		propertyMapType(meta.Inputs),
		propertyMapType(meta.Outputs),
		output.NeverType,
	}
}

func directiveType(meta *DirectiveMeta) output.Type {
	return output.CoreType(directiveDef, directiveTypeParams(meta)...)
}
