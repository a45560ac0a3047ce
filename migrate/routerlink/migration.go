package routerlink

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/project"
	"github.com/robfig/ngc/scan"
	"github.com/robfig/ngc/vfs"
)

const readmeURL = "https://github.com/angular/angular/blob/master/packages/core/schematics/migrations/router-link-empty-expression/README.md"

// Result lists the attributes fixed by a run, as path@line:col positions
// with 1-based line and column.
type Result struct {
	Fixed []string
}

// fixedTemplate is a template with empty routerLinks.
type fixedTemplate struct {
	template *scan.ResolvedTemplate
	sites    []Site
}

// Run fixes the empty routerLink attributes of every component template
// reachable from the build and test tsconfig files of the workspace.
//
// A workspace without tsconfig files is a ConfigurationError and nothing is
// changed.  A file that cannot be read or written is reported and skipped.
func Run(tree *vfs.Tree, logger *log.Logger) (*Result, error) {
	var build, test, err = project.TsConfigPaths(tree)
	if err != nil {
		return nil, err
	}
	if len(build) == 0 && len(test) == 0 {
		return nil, errortypes.New(errortypes.ConfigurationError,
			"Could not find any tsconfig file. Cannot check templates for empty routerLinks.")
	}

	var result = &Result{}
	for _, tsconfig := range append(build, test...) {
		var templates, err = resolveTemplates(tree, tsconfig, logger)
		if err != nil {
			return result, err
		}
		var fixed = fixFiles(tree, templates, logger)
		if len(fixed) > 0 {
			logger.Println("---- RouterLink empty assignment schematic ----")
			logger.Println("The behavior of empty/`undefined` inputs for `routerLink` has changed")
			logger.Println("from linking to the current page to instead completely disable the link.")
			logger.Println("Read more about this change here: " + readmeURL)
			logger.Println("")
			logger.Println("The following empty `routerLink` inputs were found and fixed:")
			for _, pos := range fixed {
				logger.Println("⮑   " + pos)
			}
		}
		result.Fixed = append(result.Fixed, fixed...)
	}
	return result, nil
}

// resolveTemplates returns the component templates of the sources selected
// by a tsconfig file.  Sources that cannot be read are skipped.
func resolveTemplates(tree *vfs.Tree, tsconfig string, logger *log.Logger) ([]*scan.ResolvedTemplate, error) {
	var cfg, err = project.LoadTsConfig(tree, tsconfig)
	if err != nil {
		return nil, err
	}
	sources, err := project.SourceFiles(tree, cfg)
	if err != nil {
		return nil, err
	}

	var templates []*scan.ResolvedTemplate
	for _, name := range sources {
		var text, err = tree.Read(name)
		if err != nil {
			logger.Println("warning: " + err.Error())
			continue
		}
		file, err := scan.Scan(context.Background(), name, text)
		if err != nil {
			logger.Println("warning: " + err.Error())
			continue
		}
		found, err := scan.Templates(tree, file)
		if err != nil {
			logger.Println("warning: " + err.Error())
		}
		templates = append(templates, found...)
	}
	return templates, nil
}

// fixFiles applies the fixes of each file in one update and returns the
// fixed positions.
func fixFiles(tree *vfs.Tree, templates []*scan.ResolvedTemplate, logger *log.Logger) []string {
	var order []string
	var byFile = make(map[string][]fixedTemplate)
	for _, t := range templates {
		var sites = Analyze(t.Content, t.FilePath)
		if len(sites) == 0 {
			continue
		}
		var existing, seen = byFile[t.FilePath]
		switch {
		case !seen:
			order = append(order, t.FilePath)
			byFile[t.FilePath] = []fixedTemplate{{t, sites}}
		case t.Inline:
			// An external template shared by several components is fixed
			// once; a source file may hold many inline templates.
			byFile[t.FilePath] = append(existing, fixedTemplate{t, sites})
		}
	}

	var fixed []string
	for _, name := range order {
		var rec, err = tree.BeginUpdate(name)
		if err != nil {
			logger.Printf("error: Failed to read file containing template; cannot apply fixes for empty routerLink expressions in %s.", name)
			continue
		}
		var positions []string
		for _, ft := range byFile[name] {
			for _, e := range Fixes(ft.sites).Shift(ft.template.Start) {
				rec.InsertLeft(e.Offset, e.Replacement)
			}
			for _, s := range ft.sites {
				var line, col = ft.template.Position(int(s.Span.Start))
				positions = append(positions, fmt.Sprintf("%s@%d:%d", name, line+1, col+1))
			}
		}
		if err := tree.Commit(rec); err != nil {
			logger.Println("error: " + err.Error())
			continue
		}
		fixed = append(fixed, positions...)
	}
	return fixed
}
