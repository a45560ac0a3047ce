package output

// Type is a TypeScript type in a declaration file.
type Type interface {
	typ()
}

// NamedType is a type reference, optionally imported from a module and
// parameterized, e.g. i0.ɵɵFactoryDef<MyApp, never>.
type NamedType struct {
	Module string
	Name   string
	Args   []Type
}

// LiteralType is a string literal type, "my-app".
type LiteralType struct {
	Value string
}

// TupleType is [A, B].
type TupleType struct {
	Elements []Type
}

// MapType is an object type { "key": Value; }.
type MapType struct {
	Keys   []string
	Values []Type
}

// TypeofType is typeof expr.
type TypeofType struct {
	Expr Expr
}

func (*NamedType) typ()   {}
func (*LiteralType) typ() {}
func (*TupleType) typ()   {}
func (*MapType) typ()     {}
func (*TypeofType) typ()  {}

// Built-in types.
var (
	NeverType = &NamedType{Name: "never"}
	AnyType   = &NamedType{Name: "any"}
)

// CoreType references a generic type exported by the core module.
func CoreType(name string, args ...Type) *NamedType {
	return &NamedType{Module: CoreModule, Name: name, Args: args}
}

// LiteralTypeOrNever returns "value", or never when value is empty.
func LiteralTypeOrNever(value string) Type {
	if value == "" {
		return NeverType
	}
	return &LiteralType{value}
}
