package ngjs

import "github.com/robfig/ngc/output"

// Runtime symbols referenced by generated code.  All of them are exported by
// the core module.
const (
	// definitions
	defineComponent  = "ɵɵdefineComponent"
	defineDirective  = "ɵɵdefineDirective"
	definePipe       = "ɵɵdefinePipe"
	defineNgModule   = "ɵɵdefineNgModule"
	defineInjector   = "ɵɵdefineInjector"
	defineInjectable = "ɵɵdefineInjectable"
	setNgModuleScope = "ɵɵsetNgModuleScope"
	setClassMetadata = "ɵsetClassMetadata"

	// partial declarations
	declareComponent  = "ɵɵngDeclareComponent"
	declareDirective  = "ɵɵngDeclareDirective"
	declarePipe       = "ɵɵngDeclarePipe"
	declareNgModule   = "ɵɵngDeclareNgModule"
	declareInjector   = "ɵɵngDeclareInjector"
	declareInjectable = "ɵɵngDeclareInjectable"

	// dependency injection
	inject                = "ɵɵinject"
	directiveInject       = "ɵɵdirectiveInject"
	injectAttribute       = "ɵɵinjectAttribute"
	invalidFactory        = "ɵɵinvalidFactory"
	invalidFactoryDep     = "ɵɵinvalidFactoryDep"
	getInheritedFactory   = "ɵɵgetInheritedFactory"
	forwardRef            = "forwardRef"
	resolveForwardRef     = "resolveForwardRef"
	providersFeature      = "ɵɵProvidersFeature"
	inheritDefinition     = "ɵɵInheritDefinitionFeature"
	ngOnChangesFeature    = "ɵɵNgOnChangesFeature"
	changeDetectionEnum   = "ChangeDetectionStrategy"
	viewEncapsulationEnum = "ViewEncapsulation"

	// creation mode
	elementStart          = "ɵɵelementStart"
	elementEnd            = "ɵɵelementEnd"
	element               = "ɵɵelement"
	elementContainerStart = "ɵɵelementContainerStart"
	elementContainerEnd   = "ɵɵelementContainerEnd"
	elementContainer      = "ɵɵelementContainer"
	text                  = "ɵɵtext"
	templateCreate        = "ɵɵtemplate"
	listener              = "ɵɵlistener"
	syntheticHostListener = "ɵɵsyntheticHostListener"
	pipe                  = "ɵɵpipe"
	projectionDef         = "ɵɵprojectionDef"
	projection            = "ɵɵprojection"
	repeaterCreate        = "ɵɵrepeaterCreate"
	i18nStart             = "ɵɵi18n"
	getCurrentView        = "ɵɵgetCurrentView"
	restoreView           = "ɵɵrestoreView"
	resolveWindow         = "ɵɵresolveWindow"
	resolveDocument       = "ɵɵresolveDocument"
	resolveBody           = "ɵɵresolveBody"

	// update mode
	advance               = "ɵɵadvance"
	property              = "ɵɵproperty"
	hostProperty          = "ɵɵhostProperty"
	syntheticHostProperty = "ɵɵsyntheticHostProperty"
	attribute             = "ɵɵattribute"
	classProp             = "ɵɵclassProp"
	styleProp             = "ɵɵstyleProp"
	classMap              = "ɵɵclassMap"
	styleMap              = "ɵɵstyleMap"
	conditional           = "ɵɵconditional"
	repeater              = "ɵɵrepeater"
	i18nExp               = "ɵɵi18nExp"
	i18nApply             = "ɵɵi18nApply"
	nextContext           = "ɵɵnextContext"
	reference             = "ɵɵreference"
	trackByIdentity       = "ɵɵrepeaterTrackByIdentity"
	trackByIndex          = "ɵɵrepeaterTrackByIndex"
	pipeBindV             = "ɵɵpipeBindV"
	pureFunctionV         = "ɵɵpureFunctionV"
	textInterpolate       = "ɵɵtextInterpolate"
	textInterpolateV      = "ɵɵtextInterpolateV"

	// types
	factoryDef    = "ɵɵFactoryDef"
	injectableDef = "ɵɵInjectableDef"
	componentDef  = "ɵɵComponentDefWithMeta"
	directiveDef  = "ɵɵDirectiveDefWithMeta"
	pipeDef       = "ɵɵPipeDefWithMeta"
	ngModuleDef   = "ɵɵNgModuleDefWithMeta"
	injectorDef   = "ɵɵInjectorDef"
)

// interpolated returns the name of an interpolation instruction for n
// expressions: base for a single bare expression, baseN up to 8 and baseV
// beyond.
func interpolated(base string, n int, bare bool) string {
	switch {
	case n == 1 && bare:
		return base
	case n <= 8:
		return base + string(rune('0'+n))
	}
	return base + "V"
}

// pipeBind returns the pipe binding instruction for a pipe with n arguments
// after the piped value.
func pipeBind(n int) string {
	if n > 3 {
		return pipeBindV
	}
	return "ɵɵpipeBind" + string(rune('1'+n))
}

// pureFunction returns the pure function instruction for n arguments.
func pureFunction(n int) string {
	if n > 8 {
		return pureFunctionV
	}
	return "ɵɵpureFunction" + string(rune('0'+n))
}

func core(name string) *output.External {
	return output.Import(name)
}

// ngImport is the reference to the core module namespace itself.
var ngImport = &output.External{Module: output.CoreModule}
