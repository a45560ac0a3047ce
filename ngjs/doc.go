// Package ngjs compiles component, directive, pipe, module and injectable
// metadata into definition code.
//
// Every Compile function returns a Compiled value: the definition expression
// assigned to a static field of the class (ɵcmp, ɵdir, ɵpipe, ɵmod, ɵinj,
// ɵprov or ɵfac), the type of that field for declaration files, and the
// statements the expression depends on, such as embedded view functions and
// hoisted constants.
//
// Two modes are supported.  Full mode emits self-contained definitions that
// call the runtime's define functions with generated template functions:
//
//	MyApp.ɵcmp = /*@__PURE__*/ i0.ɵɵdefineComponent({ type: MyApp, selectors: [["my-app"]], decls: 1, vars: 0, template: function MyApp_Template(rf, ctx) { ... } });
//
// Partial mode emits stable declarations for library distribution that a
// linker completes later; templates are carried as source text:
//
//	MyApp.ɵcmp = i0.ɵɵngDeclareComponent({ version: "0.0.0-PLACEHOLDER", type: MyApp, selector: "my-app", ngImport: i0, template: '...', isInline: true });
//
// Factories are always emitted in full form.
//
// Definition objects are assembled with a DefinitionMap: keys are emitted in
// insertion order and absent values are skipped, so only present, non-default
// fields appear in the output.
package ngjs
