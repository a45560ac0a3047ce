package selector

import "strings"

// Target describes an element to match against: its tag name and the
// attribute names and values visible to directive matching.  The class
// attribute is split into class names.
type Target struct {
	Element string
	Attrs   []Attr
	Classes []string
}

// NewTarget builds a Target from a tag name and name/value pairs, splitting
// any class attribute on whitespace.  Values are compared case-insensitively.
func NewTarget(element string, attrs ...Attr) Target {
	var t = Target{Element: element}
	for _, a := range attrs {
		if a.Name == "class" {
			for _, c := range strings.Fields(a.Value) {
				t.Classes = append(t.Classes, strings.ToLower(c))
			}
			continue
		}
		t.Attrs = append(t.Attrs, Attr{a.Name, strings.ToLower(a.Value)})
	}
	return t
}

// Matches reports whether the selector matches the target.
func (s *Selector) Matches(t Target) bool {
	if !s.matchesSimple(t) {
		return false
	}
	for _, n := range s.Not {
		if n.matchesSimple(t) {
			return false
		}
	}
	return true
}

func (s *Selector) matchesSimple(t Target) bool {
	if s.Element != "" && s.Element != "*" && s.Element != t.Element {
		return false
	}
	for _, c := range s.Classes {
		if !contains(t.Classes, c) {
			return false
		}
	}
	for _, want := range s.Attrs {
		if !t.hasAttr(want) {
			return false
		}
	}
	return true
}

func (t Target) hasAttr(want Attr) bool {
	for _, a := range t.Attrs {
		if a.Name == want.Name && (want.Value == "" || a.Value == want.Value) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// MatchesAny reports whether any selector of the list matches the target.
func MatchesAny(list []*Selector, t Target) bool {
	for _, s := range list {
		if s.Matches(t) {
			return true
		}
	}
	return false
}

// Matcher matches targets against a registered set of selector lists, each
// associated with a value.
type Matcher struct {
	entries []matcherEntry
}

type matcherEntry struct {
	list  []*Selector
	value interface{}
}

// Add registers the selector list for value.
func (m *Matcher) Add(list []*Selector, value interface{}) {
	m.entries = append(m.entries, matcherEntry{list, value})
}

// Match returns the values whose selector list matches the target, in the
// order they were added.  A value is returned at most once per Add even if
// several selectors of its list match.
func (m *Matcher) Match(t Target) []interface{} {
	var result []interface{}
	for _, e := range m.entries {
		if MatchesAny(e.list, t) {
			result = append(result, e.value)
		}
	}
	return result
}
