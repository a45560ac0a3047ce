package i18n

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/gettext/po"
	"golang.org/x/text/language"
)

// WritePO writes the messages as a PO template.  Each message records its
// id and source location as references; messages with the same id are
// written once.
func WritePO(w io.Writer, msgs []*Message) error {
	var file = po.File{}
	var seen = make(map[string]bool)
	for _, m := range msgs {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		var comment = po.Comment{
			References: []string{"id=" + m.ID, fmt.Sprintf("%s:%d", m.File, m.Line)},
		}
		if m.Description != "" {
			comment.ExtractedComments = []string{m.Description}
		}
		file.Messages = append(file.Messages, po.Message{
			Comment: comment,
			Ctxt:    m.Meaning,
			Id:      m.Text,
		})
	}
	var ew = &errWriter{w: w}
	file.WriteTo(ew)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	var n int
	n, w.err = w.w.Write(p)
	return n, w.err
}

// Bundle holds the translations of one locale.  It satisfies the
// translation lookup of the emitter.
type Bundle struct {
	locale   string
	messages map[string]string
}

// Locale returns the locale of the bundle.
func (b *Bundle) Locale() string {
	return b.locale
}

// Translate returns the translated text of the message with the given id.
// Untranslated messages are not found.
func (b *Bundle) Translate(id string) (string, bool) {
	if b == nil {
		return "", false
	}
	var s, ok = b.messages[id]
	return s, ok
}

// LoadPO reads the translations of a PO file.  Messages are identified by
// their "id=" reference.
func LoadPO(locale string, r io.Reader) (*Bundle, error) {
	var file, err = po.Parse(r)
	if err != nil {
		return nil, err
	}
	var b = &Bundle{locale: locale, messages: make(map[string]string)}
	for _, msg := range file.Messages {
		if msg.Id == "" {
			continue
		}
		var id string
		for _, ref := range msg.References {
			if strings.HasPrefix(ref, "id=") {
				id = ref[len("id="):]
			}
		}
		if id == "" {
			return nil, fmt.Errorf("no id found in message: %q", msg.Id)
		}
		if len(msg.Str) > 0 && msg.Str[0] != "" {
			b.messages[id] = msg.Str[0]
		}
	}
	return b, nil
}

// Provider gives access to the bundles of several locales.
type Provider struct {
	bundles map[string]*Bundle
}

// Dir loads the bundles of a directory of PO files named <locale>.po.
func Dir(dirname string) (*Provider, error) {
	var names, err = filepath.Glob(filepath.Join(dirname, "*.po"))
	if err != nil {
		return nil, err
	}
	var p = &Provider{bundles: make(map[string]*Bundle)}
	for _, name := range names {
		var locale = strings.TrimSuffix(filepath.Base(name), ".po")
		var f, err = os.Open(name)
		if err != nil {
			return nil, err
		}
		var b, perr = LoadPO(locale, f)
		f.Close()
		if perr != nil {
			return nil, fmt.Errorf("%s: %w", name, perr)
		}
		p.bundles[locale] = b
	}
	return p, nil
}

// Bundle returns the bundle for locale, falling back to more generic
// locales (en_US to en).  It returns nil if none was loaded.
func (p *Provider) Bundle(locale string) *Bundle {
	if bundle, ok := p.bundles[locale]; ok {
		return bundle
	}
	var tag, err = language.Parse(locale)
	if err != nil {
		return nil
	}
	for _, fb := range fallbacks(tag) {
		if bundle, ok := p.bundles[fb.String()]; ok {
			return bundle
		}
	}
	return nil
}

// fallbacks returns a slice of tags that can be substituted for a tag,
// ordered by increasing generality.
func fallbacks(tag language.Tag) []language.Tag {
	result := []language.Tag{}
	lang, script, region := tag.Raw()
	// The language package returns ZZ for an unspecified region, similar quirk for script.
	if region.String() != "ZZ" {
		t, _ := language.Compose(lang, script, region)
		result = append(result, t)
	}
	if script.String() != "Zzzz" {
		t, _ := language.Compose(lang, script)
		result = append(result, t)
	}
	t, _ := language.Compose(lang)
	result = append(result, t)
	return result
}
