package ngjs

import (
	"regexp"

	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/resolve"
)

// forwardRefExpr returns the expression of ref as emitted in mode: wrapped
// again in forwardRef(function () { return expr; }) for partial
// declarations, and bare otherwise.
func forwardRefExpr(ref *MaybeForwardRef, mode Mode) output.Expr {
	if ref == nil {
		return nil
	}
	if ref.IsForwardRef && mode == Partial {
		return generateForwardRef(ref.Expr)
	}
	return ref.Expr
}

func generateForwardRef(e output.Expr) output.Expr {
	return output.CallFn(core(forwardRef), returning(e))
}

// returning returns function () { return e; }.
func returning(e output.Expr) *output.Function {
	return &output.Function{Body: []output.Stmt{&output.Return{Value: e}}}
}

// refsToArray returns the array of refs, deferred inside a function when
// any of them is forward-declared.
func refsToArray(refs []*MaybeForwardRef) output.Expr {
	var values = make([]output.Expr, len(refs))
	var deferred bool
	for i, r := range refs {
		values[i] = r.Expr
		deferred = deferred || r.IsForwardRef
	}
	var arr = output.Arr(values...)
	if deferred {
		return returning(arr)
	}
	return arr
}

// typeOf returns the declaration type of a class reference.
func typeOf(e output.Expr, typeArgumentCount int) output.Type {
	var t *output.NamedType
	switch e := e.(type) {
	case *output.ReadVar:
		t = &output.NamedType{Name: e.Name}
	case *output.External:
		t = &output.NamedType{Module: e.Module, Name: e.Name}
	default:
		return output.AnyType
	}
	for i := 0; i < typeArgumentCount; i++ {
		t.Args = append(t.Args, output.AnyType)
	}
	return t
}

var unsafeKey = regexp.MustCompile(`[-.]`)

// propertyMap returns the object literal mapping class property names to
// binding names, or nil when props is empty.  With keepDeclared, properties
// bound under a different name map to [bindingName, className].
func propertyMap(props []resolve.Property, keepDeclared bool) output.Expr {
	if len(props) == 0 {
		return nil
	}
	var m = &output.LiteralMap{}
	for _, p := range props {
		var value output.Expr = output.Lit(p.BindingName)
		if keepDeclared && p.BindingName != p.ClassName {
			value = output.Arr(output.Lit(p.BindingName), output.Lit(p.ClassName))
		}
		m.Entries = append(m.Entries, output.MapEntry{
			Key:    p.ClassName,
			Quoted: unsafeKey.MatchString(p.ClassName),
			Value:  value,
		})
	}
	return m
}

// propertyMapType returns { "className": "bindingName"; ... }.
func propertyMapType(props []resolve.Property) output.Type {
	var t = &output.MapType{}
	for _, p := range props {
		t.Keys = append(t.Keys, p.ClassName)
		t.Values = append(t.Values, &output.LiteralType{Value: p.BindingName})
	}
	return t
}

// stringArray returns ["a", "b"], or nil when values is empty.
func stringArray(values []string) output.Expr {
	if len(values) == 0 {
		return nil
	}
	var arr = output.Arr()
	for _, v := range values {
		arr.Entries = append(arr.Entries, output.Lit(v))
	}
	return arr
}

// stringTupleType returns ["a", "b"], or never when values is empty.
func stringTupleType(values []string) output.Type {
	if len(values) == 0 {
		return output.NeverType
	}
	var t = &output.TupleType{}
	for _, v := range values {
		t.Elements = append(t.Elements, &output.LiteralType{Value: v})
	}
	return t
}

// typeofTuple returns [typeof A, typeof B], or never when refs is empty.
func typeofTuple(refs []*MaybeForwardRef) output.Type {
	if len(refs) == 0 {
		return output.NeverType
	}
	var t = &output.TupleType{}
	for _, r := range refs {
		t.Elements = append(t.Elements, &output.TypeofType{Expr: r.Expr})
	}
	return t
}

// definition calls fn with the definition object, marked pure in full mode.
func definition(fn string, m *DefinitionMap, mode Mode) *output.Call {
	var call = output.CallFn(core(fn), m.ToLiteralMap())
	call.Pure = mode == Full
	return call
}

// placeholderVersion stamps partial declarations; the linker replaces it
// with the compiler version.
const placeholderVersion = "0.0.0-PLACEHOLDER"

// declarationHeader sets the version field of a partial declaration.
func declarationHeader(m *DefinitionMap) {
	m.Set("version", output.Lit(placeholderVersion))
}
