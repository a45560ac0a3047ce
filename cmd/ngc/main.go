// Command ngc compiles the templates of an application, extracts their i18n
// messages and runs the template migrations.
//
// Usage:
//
//	ngc compile [-mode full|partial] [-out dir] [-messages dir -locale xx] [-watch] [dir]
//	ngc extract-i18n [-o file] [dir]
//	ngc migrate-routerlink [dir]
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/robfig/ngc"
	"github.com/robfig/ngc/i18n"
	"github.com/robfig/ngc/migrate/routerlink"
	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/vfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name  string
	usage string
	run   func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"compile", "compile the decorated classes of a directory", compile},
	{"extract-i18n", "write the i18n messages of all templates as a PO template", extract},
	{"migrate-routerlink", "replace empty routerLink bindings", migrate},
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if err := c.run(args[1:], stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "ngc %s: %v\n", c.name, err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(stderr, "ngc: unknown command %q\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: ngc <command> [flags] [dir]")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-20s %s\n", c.name, c.usage)
	}
}

// dir returns the directory argument of a command, defaulting to the
// current directory.
func dir(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return ".", nil
	case 1:
		return fs.Arg(0), nil
	}
	return "", fmt.Errorf("expected one directory, got %d arguments", fs.NArg())
}

var modes = map[string]ngjs.Mode{
	ngjs.Full.String():    ngjs.Full,
	ngjs.Partial.String(): ngjs.Partial,
}

func compile(args []string, stdout, stderr io.Writer) error {
	var fs = flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		mode     = fs.String("mode", "full", "emit full definitions or partial declarations: full, partial")
		out      = fs.String("out", "", "output directory (default: next to the sources)")
		messages = fs.String("messages", "", "directory of <locale>.po translation files")
		locale   = fs.String("locale", "", "locale to translate templates to")
		watch    = fs.Bool("watch", false, "recompile when sources or templates change")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var root, err = dir(fs)
	if err != nil {
		return err
	}
	var m, ok = modes[*mode]
	if !ok {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	var bundle = ngc.NewBundle().
		SetTree(vfs.New(root)).
		SetMode(m).
		WatchFiles(*watch)
	if *messages != "" {
		var provider, err = i18n.Dir(*messages)
		if err != nil {
			return err
		}
		if b := provider.Bundle(*locale); b != nil {
			bundle.SetTranslations(b)
		} else {
			fmt.Fprintf(stderr, "warning: no translations for locale %q\n", *locale)
		}
	}

	var dest = vfs.New(root)
	if *out != "" {
		dest = vfs.New(*out)
	}
	var write = func(program *ngc.Program) error {
		for _, f := range program.Files {
			if err := dest.Write(f.JSPath(), f.JS); err != nil {
				return err
			}
			if err := dest.Write(f.DTSPath(), f.DTS); err != nil {
				return err
			}
		}
		return nil
	}
	bundle.SetRecompilationCallback(func(p *ngc.Program) {
		if err := write(p); err != nil {
			ngc.Logger.Println(err)
		}
	})

	program, err := bundle.AddSourceDir("").Compile()
	if program == nil {
		return err
	}
	if werr := write(program); werr != nil {
		return werr
	}
	fmt.Fprintf(stdout, "compiled %d files\n", len(program.Files))
	if !*watch {
		return err
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	select {}
}

func extract(args []string, stdout, stderr io.Writer) error {
	var fs = flag.NewFlagSet("extract-i18n", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var output = fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var root, err = dir(fs)
	if err != nil {
		return err
	}
	msgs, err := ngc.NewBundle().SetTree(vfs.New(root)).AddSourceDir("").Messages()
	if err != nil {
		return err
	}

	var w = stdout
	if *output != "" {
		var f, err = os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return i18n.WritePO(w, msgs)
}

func migrate(args []string, stdout, stderr io.Writer) error {
	var fs = flag.NewFlagSet("migrate-routerlink", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var root, err = dir(fs)
	if err != nil {
		return err
	}
	result, err := routerlink.Run(vfs.New(root), log.New(stderr, "", 0))
	if err != nil {
		return err
	}
	for _, name := range result.Fixed {
		fmt.Fprintf(stdout, "fixed %s\n", name)
	}
	return nil
}
