// Package i18n computes message ids for i18n-marked template content,
// extracts messages into PO files and loads translations from them.
package i18n

import (
	"regexp"
	"strings"
)

// Meta is the parsed value of an i18n attribute: "meaning|description@@id".
// All parts are optional.
type Meta struct {
	Meaning     string
	Description string
	ID          string
}

// ParseMeta parses the value of an i18n attribute.
func ParseMeta(value string) Meta {
	var m Meta
	if i := strings.Index(value, "@@"); i >= 0 {
		value, m.ID = value[:i], strings.TrimSpace(value[i+2:])
	}
	if i := strings.Index(value, "|"); i >= 0 {
		m.Meaning, value = strings.TrimSpace(value[:i]), value[i+1:]
	}
	m.Description = strings.TrimSpace(value)
	return m
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace to one space and trims the
// ends, so that reformatting a template does not change message ids.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
