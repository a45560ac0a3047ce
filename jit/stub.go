package jit

import "strings"

// instructions are the template instructions of the stub runtime.  Each
// records its arguments in the render log and returns itself, so chained
// calls work.
var instructions = []string{
	"ɵɵelementStart", "ɵɵelementEnd", "ɵɵelement",
	"ɵɵelementContainerStart", "ɵɵelementContainerEnd", "ɵɵelementContainer",
	"ɵɵtext", "ɵɵtemplate", "ɵɵlistener", "ɵɵsyntheticHostListener",
	"ɵɵprojectionDef", "ɵɵprojection", "ɵɵrepeaterCreate", "ɵɵi18n",
	"ɵɵadvance", "ɵɵproperty", "ɵɵhostProperty", "ɵɵsyntheticHostProperty",
	"ɵɵattribute", "ɵɵclassProp", "ɵɵstyleProp", "ɵɵclassMap", "ɵɵstyleMap",
	"ɵɵconditional", "ɵɵrepeater", "ɵɵi18nExp", "ɵɵi18nApply", "ɵɵpipe",
	"ɵɵtextInterpolate", "ɵɵtextInterpolate1", "ɵɵtextInterpolate2",
	"ɵɵtextInterpolate3", "ɵɵtextInterpolate4", "ɵɵtextInterpolate5",
	"ɵɵtextInterpolate6", "ɵɵtextInterpolate7", "ɵɵtextInterpolate8",
	"ɵɵtextInterpolateV", "ɵɵpropertyInterpolate", "ɵɵpropertyInterpolate1",
	"ɵɵpropertyInterpolate2", "ɵɵpropertyInterpolate3", "ɵɵpropertyInterpolate4",
	"ɵɵpropertyInterpolate5", "ɵɵpropertyInterpolate6", "ɵɵpropertyInterpolate7",
	"ɵɵpropertyInterpolate8", "ɵɵpropertyInterpolateV", "ɵɵattributeInterpolate1",
	"ɵɵattributeInterpolate2", "ɵɵattributeInterpolateV",
}

// stubRuntime defines the global i0 namespace: definition functions that
// tag and return their argument, partial declaration functions that link
// their metadata the way the runtime linker does, a minimal injector and
// recording template instructions.  The ngc global holds helpers for
// inspecting the results.
const stubRuntime = `
var ngDevMode = false;
var ngJitMode = true;
var ngc = { log: [] };
var i0 = (function () {
  var core = {};

  function isForwardRef(fn) {
    return typeof fn === "function" && fn.__forward_ref__ === core.forwardRef;
  }
  function resolve(v) { return isForwardRef(v) ? v() : v; }
  function resolveAll(list) {
    list = resolve(list);
    if (typeof list === "function") { list = list(); }
    var out = [];
    for (var i = 0; list && i < list.length; i++) { out.push(resolve(list[i])); }
    return out;
  }
  ngc.resolveAll = resolveAll;

  core.forwardRef = function (fn) { fn.__forward_ref__ = core.forwardRef; return fn; };
  core.resolveForwardRef = resolve;

  function define(kind) {
    return function (def) { def.kind = kind; def.linked = false; return def; };
  }
  core.ɵɵdefineComponent = define("component");
  core.ɵɵdefineDirective = define("directive");
  core.ɵɵdefinePipe = define("pipe");
  core.ɵɵdefineNgModule = define("ngModule");
  core.ɵɵdefineInjector = define("injector");
  core.ɵɵdefineInjectable = define("injectable");
  core.ɵɵsetNgModuleScope = function (type, scope) {
    for (var key in scope) { type.ɵmod[key] = scope[key]; }
  };
  core.ɵsetClassMetadata = function (type, decorators, ctorParameters, propDecorators) {
    type.ɵmeta = { decorators: decorators, ctorParameters: ctorParameters, propDecorators: propDecorators };
  };
  core.ɵɵProvidersFeature = function (providers, viewProviders) {
    return { feature: "providers", providers: providers, viewProviders: viewProviders };
  };
  core.ɵɵInheritDefinitionFeature = { feature: "inherit" };
  core.ɵɵNgOnChangesFeature = { feature: "onChanges" };
  core.ChangeDetectionStrategy = { OnPush: 0, Default: 1 };
  core.ViewEncapsulation = { Emulated: 0, None: 2, ShadowDom: 3 };

  function construct(cls, args) {
    var obj = Object.create(cls.prototype);
    var out = cls.apply(obj, args);
    return (typeof out === "object" && out !== null) ? out : obj;
  }
  function instantiate(token, flags) {
    if (token === undefined || token === null) {
      if (flags & 8) { return null; }
      throw new Error("no provider for " + token);
    }
    if (token.ɵprov) { return token.ɵprov.factory(); }
    if (token.ɵfac) { return token.ɵfac(); }
    if (typeof token === "function") { return new token(); }
    return token;
  }
  function injectAll(deps) {
    var out = [];
    for (var i = 0; deps && i < deps.length; i++) {
      var d = deps[i];
      if (d.attribute) { out.push(core.ɵɵinjectAttribute(resolve(d.token))); continue; }
      var flags = (d.host ? 1 : 0) | (d.self ? 2 : 0) | (d.skipSelf ? 4 : 0) | (d.optional ? 8 : 0);
      out.push(core.ɵɵinject(resolve(d.token), flags));
    }
    return out;
  }
  core.ɵɵinject = function (token, flags) { return instantiate(token, flags || 0); };
  core.ɵɵdirectiveInject = core.ɵɵinject;
  core.ɵɵinjectAttribute = function (name) { return "@" + name; };
  core.ɵɵinvalidFactory = function () { throw new Error("invalid factory"); };
  core.ɵɵinvalidFactoryDep = function (index) { throw new Error("invalid factory dependency " + index); };
  core.ɵɵgetInheritedFactory = function (type) {
    var parent = Object.getPrototypeOf(type.prototype).constructor;
    return function (t) { return parent.ɵfac ? parent.ɵfac(t) : new t(); };
  };

  function declaration(kind, meta) {
    var def = { kind: kind, linked: true };
    for (var key in meta) {
      if (key !== "version" && key !== "ngImport") { def[key] = meta[key]; }
    }
    return def;
  }
  core.ɵɵngDeclareInjectable = function (meta) {
    var def = declaration("injectable", {});
    def.token = meta.type;
    def.providedIn = meta.providedIn === undefined ? null : resolve(meta.providedIn);
    def.factory = function (t) {
      if (t) { return new t(); }
      if (meta.useClass !== undefined) {
        var cls = resolve(meta.useClass);
        return meta.deps ? construct(cls, injectAll(meta.deps)) : instantiate(cls, 0);
      }
      if (meta.useFactory !== undefined) { return meta.useFactory.apply(null, injectAll(meta.deps)); }
      if (meta.useExisting !== undefined) { return core.ɵɵinject(resolve(meta.useExisting)); }
      if (meta.useValue !== undefined) { return resolve(meta.useValue); }
      return meta.type.ɵfac(t);
    };
    return def;
  };
  core.ɵɵngDeclareNgModule = function (meta) { return declaration("ngModule", meta); };
  core.ɵɵngDeclareInjector = function (meta) { return declaration("injector", meta); };
  core.ɵɵngDeclarePipe = function (meta) {
    var def = declaration("pipe", meta);
    def.pure = meta.pure !== false;
    return def;
  };
  core.ɵɵngDeclareDirective = function (meta) { return declaration("directive", meta); };
  core.ɵɵngDeclareComponent = function (meta) { return declaration("component", meta); };

  function record(name) {
    var fn = function () {
      var args = [];
      for (var i = 0; i < arguments.length; i++) {
        var a = arguments[i];
        args.push(typeof a === "function" ? "fn" : JSON.stringify(a));
      }
      ngc.log.push(name.replace("ɵɵ", "") + "(" + args.join(", ") + ")");
      return fn;
    };
    return fn;
  }
  INSTRUCTIONS

  function pure(fn, args) { return fn.apply(null, args); }
  for (var n = 0; n <= 8; n++) {
    core["ɵɵpureFunction" + n] = function (slot, fn) {
      return pure(fn, Array.prototype.slice.call(arguments, 2));
    };
  }
  core.ɵɵpureFunctionV = function (slot, fn, args) { return pure(fn, args); };
  for (var p = 1; p <= 4; p++) {
    core["ɵɵpipeBind" + p] = function (slot, offset, value) { return value; };
  }
  core.ɵɵpipeBindV = function (slot, offset, args) { return args[0]; };
  core.ɵɵrepeaterTrackByIdentity = function (index, item) { return item; };
  core.ɵɵrepeaterTrackByIndex = function (index) { return index; };
  core.ɵɵgetCurrentView = function () { return {}; };
  core.ɵɵrestoreView = function () { return ngc.ctx; };
  core.ɵɵnextContext = function () { return ngc.ctx; };
  core.ɵɵreference = function () { return null; };
  core.ɵɵresetView = function (v) { return v; };
  core.ɵɵresolveWindow = function () { return "window"; };
  core.ɵɵresolveDocument = function () { return "document"; };
  core.ɵɵresolveBody = function () { return "body"; };
  return core;
})();

ngc.render = function (type, ctx) {
  ngc.log = [];
  ngc.ctx = ctx;
  var tmpl = type.ɵcmp.template;
  tmpl(1, ctx);
  tmpl(2, ctx);
  return ngc.log.join("\n");
};
`

func stubSource() string {
	var b strings.Builder
	for _, name := range instructions {
		b.WriteString("core[\"" + name + "\"] = record(\"" + name + "\");\n  ")
	}
	return strings.Replace(stubRuntime, "INSTRUCTIONS", b.String(), 1)
}
