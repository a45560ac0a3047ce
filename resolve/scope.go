package resolve

import (
	"strings"

	"github.com/robfig/ngc/selector"
)

// Directive describes a directive or component that may match elements of a
// template.
type Directive struct {
	Name        string // class name
	Selector    string
	Inputs      []Property
	Outputs     []Property
	ExportAs    []string
	IsComponent bool

	selectors []*selector.Selector
}

// Property maps a class property to the name it is bound by in templates.
type Property struct {
	ClassName   string
	BindingName string
}

// Input returns the input bound by name.
func (d *Directive) Input(name string) (Property, bool) {
	return lookupProperty(d.Inputs, name)
}

// Output returns the output bound by name.
func (d *Directive) Output(name string) (Property, bool) {
	return lookupProperty(d.Outputs, name)
}

func lookupProperty(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.BindingName == name {
			return p, true
		}
	}
	return Property{}, false
}

// Selectors returns the parsed selector list.  It is only valid after the
// directive has been through Resolve.
func (d *Directive) Selectors() []*selector.Selector {
	return d.selectors
}

func (d *Directive) String() string {
	return d.Name
}

// Pipe describes a pipe usable in binding expressions.
type Pipe struct {
	Name      string // template name, e.g. "async"
	ClassName string
	Pure      bool
}

// Scope is the set of directives and pipes available to a template.
type Scope struct {
	Directives []*Directive
	Pipes      []*Pipe

	// Strict reports unknown elements: a tag that is neither a known HTML
	// element, a custom element (containing a dash), nor matched by a
	// component.
	Strict bool
}

func (s *Scope) pipe(name string) *Pipe {
	for _, p := range s.Pipes {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (d *Directive) exports(name string) bool {
	for _, e := range d.ExportAs {
		if strings.TrimSpace(e) == name {
			return true
		}
	}
	return false
}
