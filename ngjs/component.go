package ngjs

import (
	"strings"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/resolve"
	"github.com/robfig/ngc/selector"
)

// CompileComponent compiles the ɵcmp definition of a component from its
// metadata and its resolved template.  Full definitions carry the compiled
// template functions; partial declarations carry the template source.
func CompileComponent(meta *ComponentMeta, bound *resolve.Bound, pool *ConstantPool, mode Mode) (Compiled, error) {
	if mode == Partial {
		return Compiled{
			Expression: output.CallFn(core(declareComponent), componentDeclaration(meta, bound).ToLiteralMap()),
			Type:       componentType(meta, bound),
		}, nil
	}

	var m DefinitionMap
	var errs errortypes.List
	baseDirectiveFields(&m, &meta.DirectiveMeta, pool, &errs)
	addFeatures(&m, &meta.DirectiveMeta, meta.ViewProviders)
	if attrs := selectorAttrs(meta.Selector); attrs != nil {
		m.Set("attrs", pool.literal(attrs))
	}

	var comp = newComponentCompiler(meta, bound, pool)
	var nodes []ast.Node
	if bound != nil && bound.File != nil {
		nodes = bound.File.Nodes
	}
	var root = newViewCompiler(comp, 0, meta.Name)
	var fn = root.build(nodes)

	if len(comp.ngContent) > 0 {
		m.Set("ngContentSelectors", pool.literal(stringArray(comp.ngContent)))
	}
	m.Set("decls", output.Lit(root.slots))
	m.Set("vars", output.Lit(root.vars()))
	if len(comp.consts) > 0 {
		m.Set("consts", output.Arr(comp.consts...))
	}
	m.Set("template", fn)

	if dirs := usedDirectives(meta, comp.bound); len(dirs) > 0 {
		m.Set("directives", refsToArray(dirs))
	}
	if pipes := usedPipes(meta, comp.bound); len(pipes) > 0 {
		m.Set("pipes", refsToArray(pipes))
	}
	m.Set("styles", stringArray(meta.Styles))

	var encapsulation = meta.Encapsulation
	if encapsulation == EncapsulationEmulated && len(meta.Styles) == 0 {
		encapsulation = EncapsulationNone
	}
	if encapsulation != EncapsulationEmulated {
		m.Set("encapsulation", output.Lit(int(encapsulation)))
	}
	if meta.Animations != nil {
		m.Set("data", &output.LiteralMap{Entries: []output.MapEntry{{Key: "animation", Value: meta.Animations}}})
	}
	if meta.ChangeDetection == ChangeDetectionOnPush {
		m.Set("changeDetection", output.Lit(changeDetectionValues[ChangeDetectionOnPush]))
	}

	errs = append(errs, comp.errs...)
	errs.Sort()
	return Compiled{
		Expression: definition(defineComponent, &m, Full),
		Type:       componentType(meta, bound),
		Statements: comp.fns,
	}, errs.Err()
}

// selectorAttrs returns the attributes of the first selector of a
// component, which are set on its host element: class names first, then
// name/value pairs.
func selectorAttrs(sel string) output.Expr {
	if sel == "" {
		return nil
	}
	var list, err = selector.Parse(sel)
	if err != nil || len(list) == 0 {
		return nil
	}
	var first = list[0]
	var arr = output.Arr()
	if len(first.Classes) > 0 {
		arr.Entries = append(arr.Entries, output.Lit("class"), output.Lit(strings.Join(first.Classes, " ")))
	}
	for _, a := range first.Attrs {
		arr.Entries = append(arr.Entries, output.Lit(a.Name), output.Lit(a.Value))
	}
	if len(arr.Entries) == 0 {
		return nil
	}
	return arr
}

// classRef returns the reference to a declaration class, imported from
// its module when known.
func classRef(meta *ComponentMeta, name string) *MaybeForwardRef {
	var e output.Expr = output.Var(name)
	if module, ok := meta.Imports[name]; ok {
		e = &output.External{Module: module, Name: name}
	}
	return &MaybeForwardRef{Expr: e, IsForwardRef: meta.ForwardDeclared[name]}
}

func usedDirectives(meta *ComponentMeta, bound *resolve.Bound) []*MaybeForwardRef {
	var refs []*MaybeForwardRef
	for _, d := range bound.UsedDirectives() {
		refs = append(refs, classRef(meta, d.Name))
	}
	return refs
}

func usedPipes(meta *ComponentMeta, bound *resolve.Bound) []*MaybeForwardRef {
	var refs []*MaybeForwardRef
	for _, p := range bound.UsedPipes() {
		refs = append(refs, classRef(meta, p.ClassName))
	}
	return refs
}

// componentDeclaration gathers the fields of a partial component
// declaration.
func componentDeclaration(meta *ComponentMeta, bound *resolve.Bound) *DefinitionMap {
	var m = directiveDeclaration(&meta.DirectiveMeta)
	m.Set("template", &output.Literal{Value: meta.Template, SingleQuote: meta.IsInline})
	if meta.IsInline {
		m.Set("isInline", output.Lit(true))
	}
	m.Set("styles", stringArray(meta.Styles))

	if bound != nil {
		var components, directives []output.Expr
		for _, d := range bound.UsedDirectives() {
			var entry = usedDirectiveDeclaration(meta, d)
			if d.IsComponent {
				components = append(components, entry)
			} else {
				directives = append(directives, entry)
			}
		}
		if len(components) > 0 {
			m.Set("components", output.Arr(components...))
		}
		if len(directives) > 0 {
			m.Set("directives", output.Arr(directives...))
		}
		if pipes := bound.UsedPipes(); len(pipes) > 0 {
			var lit = &output.LiteralMap{}
			for _, p := range pipes {
				lit.Entries = append(lit.Entries, output.MapEntry{
					Key:    p.Name,
					Quoted: true,
					Value:  forwardRefExpr(classRef(meta, p.ClassName), Partial),
				})
			}
			m.Set("pipes", lit)
		}
	}

	m.Set("viewProviders", meta.ViewProviders)
	m.Set("animations", meta.Animations)
	if meta.ChangeDetection != 0 {
		m.Set("changeDetection", output.Prop(core(changeDetectionEnum), changeDetectionNames[meta.ChangeDetection]))
	}
	if meta.Encapsulation != EncapsulationEmulated {
		m.Set("encapsulation", output.Prop(core(viewEncapsulationEnum), encapsulationNames[meta.Encapsulation]))
	}
	if meta.PreserveWhitespaces {
		m.Set("preserveWhitespaces", output.Lit(true))
	}
	return m
}

// usedDirectiveDeclaration returns {type, selector, inputs?, outputs?,
// exportAs?} describing a directive used by the template.
func usedDirectiveDeclaration(meta *ComponentMeta, d *resolve.Directive) output.Expr {
	var m DefinitionMap
	m.Set("type", forwardRefExpr(classRef(meta, d.Name), Partial))
	m.Set("selector", output.Lit(d.Selector))
	var names = func(props []resolve.Property) []string {
		var out []string
		for _, p := range props {
			out = append(out, p.BindingName)
		}
		return out
	}
	m.Set("inputs", stringArray(names(d.Inputs)))
	m.Set("outputs", stringArray(names(d.Outputs)))
	m.Set("exportAs", stringArray(d.ExportAs))
	return m.ToLiteralMap()
}

// componentType returns i0.ɵɵComponentDefWithMeta<...>, whose last
// argument lists the projection selectors of the template.
func componentType(meta *ComponentMeta, bound *resolve.Bound) output.Type {
	var params = directiveTypeParams(&meta.DirectiveMeta)
	var selectors []string
	if bound != nil && bound.File != nil {
		ast.Inspect(bound.File.Nodes, func(n ast.Node) bool {
			if c, ok := n.(*ast.Content); ok {
				selectors = append(selectors, c.Selector)
			}
			return true
		})
	}
	params = append(params, stringTupleType(selectors))
	return output.CoreType(componentDef, params...)
}
