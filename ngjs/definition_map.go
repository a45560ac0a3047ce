package ngjs

import "github.com/robfig/ngc/output"

// DefinitionMap accumulates the fields of a definition object in insertion
// order.
type DefinitionMap struct {
	entries []output.MapEntry
}

// Set sets key to value.  A nil value is ignored; setting a key again
// replaces its value in place.
func (m *DefinitionMap) Set(key string, value output.Expr) {
	if value == nil {
		return
	}
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, output.MapEntry{Key: key, Value: value})
}

// Get returns the value set for key, or nil.
func (m *DefinitionMap) Get(key string) output.Expr {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Keys returns the keys in emission order.
func (m *DefinitionMap) Keys() []string {
	var keys = make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of fields set.
func (m *DefinitionMap) Len() int {
	return len(m.entries)
}

// ToLiteralMap returns the object literal of the fields set so far.
func (m *DefinitionMap) ToLiteralMap() *output.LiteralMap {
	return &output.LiteralMap{Entries: append([]output.MapEntry{}, m.entries...)}
}
