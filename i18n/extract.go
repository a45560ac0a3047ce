package i18n

import (
	"strconv"
	"strings"

	"github.com/robfig/ngc/ast"
)

// Message is a translatable message found in a template.
type Message struct {
	ID          string
	Meaning     string
	Description string
	// Text is the normalized content, with {$NAME} placeholders standing in
	// for interpolations and nested elements.
	Text string
	// Source location of the marked element, 1-based.
	File string
	Line int
	Col  int
}

// Extract returns the messages of the elements marked with an i18n
// attribute, in document order.  The content of each marked element forms
// one message; marked elements nested inside it are part of it.
func Extract(f *ast.File) []*Message {
	var msgs []*Message
	ast.Inspect(f.Nodes, func(n ast.Node) bool {
		var el, ok = n.(*ast.Element)
		if !ok {
			return true
		}
		var marker = i18nAttr(el)
		if marker == nil {
			return true
		}
		var meta = ParseMeta(marker.Value)
		var text = NormalizeText(messageText(el.Body))
		var id = meta.ID
		if id == "" {
			id = MessageID(text, meta.Meaning)
		}
		var line, col = f.Location(el.Span.Start)
		msgs = append(msgs, &Message{
			ID:          id,
			Meaning:     meta.Meaning,
			Description: meta.Description,
			Text:        text,
			File:        f.Path,
			Line:        line + 1,
			Col:         col + 1,
		})
		return false
	})
	return msgs
}

func i18nAttr(el *ast.Element) *ast.TextAttribute {
	for _, a := range el.Attributes {
		if a.Name == "i18n" {
			return a
		}
	}
	return nil
}

// messageText serializes the content of a marked element.
func messageText(nodes []ast.Node) string {
	var b strings.Builder
	var names = make(map[string]int)
	var placeholder = func(base string) string {
		var n = names[base]
		names[base]++
		if n > 0 {
			base += "_" + strconv.Itoa(n)
		}
		return "{$" + base + "}"
	}
	var write func([]ast.Node)
	write = func(nodes []ast.Node) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *ast.Text:
				b.WriteString(n.Value)
			case *ast.BoundText:
				var interp, ok = n.Value.(*ast.Interpolation)
				if !ok {
					b.WriteString(placeholder("INTERPOLATION"))
					continue
				}
				for i, s := range interp.Strings {
					b.WriteString(s)
					if i < len(interp.Expressions) {
						b.WriteString(placeholder("INTERPOLATION"))
					}
				}
			case *ast.Element:
				var tag = strings.ToUpper(strings.Replace(n.Name, "-", "_", -1))
				b.WriteString(placeholder("START_TAG_" + tag))
				write(n.Body)
				b.WriteString(placeholder("CLOSE_TAG_" + tag))
			case *ast.Icu:
				b.WriteString(placeholder("ICU"))
			}
		}
	}
	write(nodes)
	return b.String()
}
