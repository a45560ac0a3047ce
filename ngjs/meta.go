package ngjs

import (
	"github.com/robfig/ngc/output"
	"github.com/robfig/ngc/resolve"
)

// Mode selects between self-contained definitions and linkable
// declarations.
type Mode int

const (
	Full Mode = iota
	Partial
)

func (m Mode) String() string {
	if m == Partial {
		return "partial"
	}
	return "full"
}

// Compiled is the result of compiling one definition.
type Compiled struct {
	Expression output.Expr
	Type       output.Type
	Statements []output.Stmt
}

// MaybeForwardRef is an expression that the source may have wrapped in
// forwardRef(() => expr).  Expr is always the unwrapped expression.
type MaybeForwardRef struct {
	Expr         output.Expr
	IsForwardRef bool
}

// Direct returns a reference that was not forward-declared.
func Direct(e output.Expr) *MaybeForwardRef {
	return &MaybeForwardRef{Expr: e}
}

// Forward returns a reference that the source wrapped in forwardRef.
func Forward(e output.Expr) *MaybeForwardRef {
	return &MaybeForwardRef{Expr: e, IsForwardRef: true}
}

// Dependency is one constructor parameter to inject.
type Dependency struct {
	// Token is the injection token; nil marks a parameter that cannot be
	// injected.
	Token output.Expr
	// Attribute is set for @Attribute parameters, whose Token is the
	// attribute name literal.
	Attribute bool
	Host      bool
	Optional  bool
	Self      bool
	SkipSelf  bool
}

// Injection flags passed to the inject functions.
const (
	flagDefault  = 0
	flagHost     = 1
	flagSelf     = 2
	flagSkipSelf = 4
	flagOptional = 8
	flagForPipe  = 16
)

// FactoryTarget names the kind of class a factory instantiates.
type FactoryTarget int

const (
	TargetDirective FactoryTarget = iota
	TargetComponent
	TargetInjectable
	TargetPipe
	TargetNgModule
)

// FactoryMeta describes the factory of a class.
type FactoryMeta struct {
	Name              string
	Type              output.Expr
	TypeArgumentCount int
	// Deps are the constructor dependencies.  A nil slice means the class
	// inherits its constructor, and the factory of the base class is used.
	Deps []Dependency
	// InvalidDeps is set when the constructor cannot be injected at all.
	InvalidDeps bool
	Target      FactoryTarget
}

// InjectableMeta describes an @Injectable class.
type InjectableMeta struct {
	Name              string
	Type              output.Expr
	TypeArgumentCount int
	// ProvidedIn is nil when the injectable is not provided anywhere.  The
	// null literal is treated the same way.
	ProvidedIn  *MaybeForwardRef
	UseClass    *MaybeForwardRef
	UseExisting *MaybeForwardRef
	UseValue    *MaybeForwardRef
	UseFactory  output.Expr
	// Deps are the dependencies passed to UseClass or UseFactory.  A nil
	// slice means none were given; an empty slice is emitted as [].
	Deps []Dependency
}

// HostMeta holds the host bindings of a directive, keyed as written in the
// decorator: "[prop]", "(event)" or a static attribute name.
type HostMeta struct {
	Attributes []HostEntry
	Listeners  []HostEntry
	Properties []HostEntry
}

// HostEntry is one host binding.  For listeners Key is the event name and
// Value the handler; for properties Key is the target, e.g. "class.active".
type HostEntry struct {
	Key   string
	Value string
}

// ParseHost sorts decorator host entries into attributes, listeners and
// properties.
func ParseHost(entries []HostEntry) HostMeta {
	var h HostMeta
	for _, e := range entries {
		var k = e.Key
		switch {
		case len(k) > 2 && k[0] == '[' && k[len(k)-1] == ']':
			h.Properties = append(h.Properties, HostEntry{k[1 : len(k)-1], e.Value})
		case len(k) > 2 && k[0] == '(' && k[len(k)-1] == ')':
			h.Listeners = append(h.Listeners, HostEntry{k[1 : len(k)-1], e.Value})
		default:
			h.Attributes = append(h.Attributes, e)
		}
	}
	return h
}

func (h HostMeta) empty() bool {
	return len(h.Attributes) == 0 && len(h.Listeners) == 0 && len(h.Properties) == 0
}

// DirectiveMeta describes a @Directive class.
type DirectiveMeta struct {
	Name              string
	Type              output.Expr
	TypeArgumentCount int
	Deps              []Dependency
	Selector          string
	Inputs            []resolve.Property
	Outputs           []resolve.Property
	Host              HostMeta
	ExportAs          []string
	Providers         output.Expr
	UsesInheritance   bool
	UsesOnChanges     bool
}

// Directive returns the description of the directive used for template
// matching.
func (m *DirectiveMeta) Directive() *resolve.Directive {
	return &resolve.Directive{
		Name:     m.Name,
		Selector: m.Selector,
		Inputs:   m.Inputs,
		Outputs:  m.Outputs,
		ExportAs: m.ExportAs,
	}
}

// ViewEncapsulation values.
type ViewEncapsulation int

const (
	EncapsulationEmulated  ViewEncapsulation = 0
	EncapsulationNone      ViewEncapsulation = 2
	EncapsulationShadowDom ViewEncapsulation = 3
)

var encapsulationNames = map[ViewEncapsulation]string{
	EncapsulationEmulated:  "Emulated",
	EncapsulationNone:      "None",
	EncapsulationShadowDom: "ShadowDom",
}

// ChangeDetection values.
type ChangeDetection int

const (
	ChangeDetectionDefault ChangeDetection = iota + 1
	ChangeDetectionOnPush
)

var changeDetectionNames = map[ChangeDetection]string{
	ChangeDetectionOnPush:  "OnPush",
	ChangeDetectionDefault: "Default",
}

// runtime value of each strategy
var changeDetectionValues = map[ChangeDetection]int{
	ChangeDetectionOnPush:  0,
	ChangeDetectionDefault: 1,
}

// ComponentMeta describes a @Component class.
type ComponentMeta struct {
	DirectiveMeta

	// Template is the template source, and IsInline reports whether it was
	// written in the decorator rather than loaded from templateUrl.
	Template            string
	IsInline            bool
	PreserveWhitespaces bool
	Styles              []string
	Encapsulation       ViewEncapsulation
	// ChangeDetection is zero when not specified.
	ChangeDetection ChangeDetection
	Animations      output.Expr
	ViewProviders   output.Expr

	// Imports maps declaration class names to the module that exports
	// them; classes without an entry are referenced by local name.
	Imports map[string]string
	// ForwardDeclared names the used directives and pipes that are declared
	// after the component and must be referenced lazily.
	ForwardDeclared map[string]bool

	// Messages supplies translations for i18n-marked elements.
	Messages Translations
}

// Translations looks up translated message text by message id.
type Translations interface {
	Translate(id string) (string, bool)
}

// PipeMeta describes a @Pipe class.
type PipeMeta struct {
	Name              string
	Type              output.Expr
	TypeArgumentCount int
	Deps              []Dependency
	PipeName          string
	Pure              bool
}

// NgModuleMeta describes an @NgModule class.
type NgModuleMeta struct {
	Name         string
	Type         output.Expr
	Bootstrap    []*MaybeForwardRef
	Declarations []*MaybeForwardRef
	Imports      []*MaybeForwardRef
	Exports      []*MaybeForwardRef
	Schemas      []output.Expr
	ID           output.Expr
	// EmitInline passes the declarations, imports and exports to the
	// definition instead of a separate scope call.
	EmitInline bool
}

// InjectorMeta describes the injector of an @NgModule class.
type InjectorMeta struct {
	Name      string
	Type      output.Expr
	Providers output.Expr
	Imports   []output.Expr
}
