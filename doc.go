/*
Package ngc compiles the templates and decorated classes of an application
into the static definitions the runtime consumes.

Usage example

A bundle is given the TypeScript sources of an application.  Each decorated
class (@Component, @Directive, @Pipe, @Injectable, @NgModule) is compiled to
its factory and definition fields; components also get their template
compiled to a template function.  (Error checking is skipped.)

	program, _ := ngc.NewBundle().
		WatchFiles(mode == "dev").   // recompile on changes (in dev)
		SetMode(ngjs.Partial).       // emit linkable declarations
		AddSourceDir("src/app").     // load *.ts in all sub-directories
		Compile()

	for _, f := range program.Files {
		ioutil.WriteFile(f.JSPath(), []byte(f.JS), 0644)
	}

The template of a component is matched against the directives and pipes in
its compilation scope: those it imports when it is standalone, otherwise the
declarations and imports of the modules declaring it.

Advanced Usage

The ngc package provides a friendly interface to its sub-packages.  Tools
that work on templates directly, like migrations, will be better served by
using e.g. ngc/parse and ngc/scan directly.
*/
package ngc
