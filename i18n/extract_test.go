package i18n

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robfig/ngc/parse"
)

func TestExtract(t *testing.T) {
	var tests = []struct {
		template string
		messages []*Message
	}{
		{`<div>no messages</div>`, nil},
		{`<h1 i18n>A trip was taken.</h1>`, []*Message{
			{ID: "3329840836245051515", Text: "A trip was taken.", File: "t.html", Line: 1, Col: 1},
		}},
		{"<p>\n  <span i18n=\"noun|The word 'Archive' used as a noun\">Archive</span></p>", []*Message{
			{ID: "7224011416745566687", Meaning: "noun", Description: "The word 'Archive' used as a noun",
				Text: "Archive", File: "t.html", Line: 2, Col: 3},
		}},
		{`<p i18n="@@greeting">Hello {{name}}, <b>welcome</b> {{place}}</p>`, []*Message{
			{ID: "greeting", File: "t.html", Line: 1, Col: 1,
				Text: "Hello {$INTERPOLATION}, {$START_TAG_B}welcome{$CLOSE_TAG_B} {$INTERPOLATION_1}"},
		}},
	}

	for _, test := range tests {
		var f, err = parse.Parse(test.template, "t.html")
		if err != nil {
			t.Errorf("%s: %v", test.template, err)
			continue
		}
		if diff := cmp.Diff(test.messages, Extract(f)); diff != "" {
			t.Errorf("%s: (-expected +got)\n%s", test.template, diff)
		}
	}
}
