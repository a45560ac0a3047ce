package i18n

import "testing"

func TestMessageID(t *testing.T) {
	type test struct {
		text, meaning string
		id            string
	}

	// test data taken from closure-templates/examples/examples_extract.xlf
	var tests = []test{
		{"Archive", "noun", "7224011416745566687"},
		{"Archive", "verb", "4826315192146469447"},
		{"A trip was taken.", "", "3329840836245051515"},
	}

	for _, test := range tests {
		actual := MessageID(test.text, test.meaning)
		if actual != test.id {
			t.Errorf("(actual) %v != %v (expected)", actual, test.id)
		}
	}
}

func TestMessageIDIgnoresDescription(t *testing.T) {
	var a = ParseMeta("noun|The word 'Archive' used as a noun")
	var b = ParseMeta("noun|An information store")
	if MessageID("Archive", a.Meaning) != MessageID("Archive", b.Meaning) {
		t.Errorf("expected descriptions not to affect the id")
	}
}
