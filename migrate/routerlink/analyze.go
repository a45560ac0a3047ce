// Package routerlink migrates empty routerLink bindings.
//
// An empty routerLink used to link to the current page; it now disables the
// link.  The migration keeps the old behavior by rewriting
//
//	<a [routerLink]>          to  <a [routerLink]="[]">
//	<a [routerLink]="">       to  <a [routerLink]="[]">
//	<a routerLink="">         to  <a routerLink="[]">
//
// in every component template of the workspace.
package routerlink

import (
	"sort"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/edit"
	"github.com/robfig/ngc/parse"
)

const attrName = "routerLink"

// Site is a routerLink attribute with an empty value.
type Site struct {
	Span      ast.Span  // the attribute, from its name to its closing quote
	ValueSpan *ast.Span // nil when the attribute has no value at all
}

// Fix returns the edit that gives the attribute an empty command list.
func (s Site) Fix() edit.Edit {
	if s.ValueSpan == nil {
		return edit.Edit{Offset: int(s.Span.End), Replacement: `="[]"`}
	}
	return edit.Edit{Offset: int(s.ValueSpan.Start), Replacement: "[]"}
}

// Analyze returns the empty routerLink attributes of a template in source
// order.  It returns nil if the template cannot be parsed.
func Analyze(content, filePath string) []Site {
	var file = parse.ParseGracefully(content, filePath)
	if file == nil {
		return nil
	}
	var sites = []Site{}
	var seen = make(map[ast.Span]bool)
	var add = func(span ast.Span, value *ast.Span) {
		if !seen[span] {
			seen[span] = true
			sites = append(sites, Site{span, value})
		}
	}
	ast.Inspect(file.Nodes, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.BoundAttribute:
			if n.Type == ast.BindingProperty && n.Name == attrName && isEmpty(n.Value) {
				add(n.Span, n.ValueSpan)
			}
		case *ast.TextAttribute:
			if n.Name == attrName && n.ValueSpan != nil && n.ValueSpan.Len() == 0 {
				add(n.Span, n.ValueSpan)
			}
		}
		return true
	})
	sort.Slice(sites, func(i, j int) bool { return sites[i].Span.Start < sites[j].Span.Start })
	return sites
}

// isEmpty reports whether e is the empty expression the parser produces
// for a binding without a value or with a blank one.
func isEmpty(e ast.Expr) bool {
	var _, ok = e.(*ast.EmptyExpr)
	return ok
}

// Fixes returns the edits fixing sites.
func Fixes(sites []Site) edit.List {
	var edits edit.List
	for _, s := range sites {
		edits = append(edits, s.Fix())
	}
	return edits
}

// FixTemplate returns content with its empty routerLink attributes fixed,
// and the sites that were fixed.  Content that cannot be parsed is returned
// unchanged, with no sites.
func FixTemplate(content, filePath string) (string, []Site, error) {
	var sites = Analyze(content, filePath)
	if len(sites) == 0 {
		return content, nil, nil
	}
	var fixed, err = Fixes(sites).Apply(content)
	if err != nil {
		return content, nil, err
	}
	return fixed, sites, nil
}
