// Package golden reads and writes snapshot files of emitted code and
// compares fresh output against them.
//
// A snapshot is a concatenation of sections, one per emitted file:
//
//	/****************************************************************************************************
//	 * PARTIAL FILE: name.js
//	 ****************************************************************************************************/
//	<content>
//
// Each section is followed by one blank line.
package golden

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/andreyvit/diff"
)

var (
	bannerOpen  = "/" + strings.Repeat("*", 100)
	bannerClose = " " + strings.Repeat("*", 100) + "/"
)

const fileLabel = " * PARTIAL FILE: "

// Section is the content of one emitted file.
type Section struct {
	Name    string
	Content string
}

// Format returns the snapshot text of the sections.  Content that does not
// end in a newline gets one.
func Format(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(bannerOpen + "\n")
		b.WriteString(fileLabel + s.Name + "\n")
		b.WriteString(bannerClose + "\n")
		b.WriteString(s.Content)
		if !strings.HasSuffix(s.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Parse splits snapshot text into its sections.
func Parse(text string) ([]Section, error) {
	var sections []Section
	var current *Section
	var body []string
	var flush = func() {
		if current == nil {
			return
		}
		// drop the separating blank line
		if n := len(body); n > 0 && body[n-1] == "" {
			body = body[:n-1]
		}
		current.Content = strings.Join(body, "\n")
		if len(body) > 0 {
			current.Content += "\n"
		}
		sections = append(sections, *current)
	}

	var scanner = bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		var line = scanner.Text()
		if line != bannerOpen {
			if current == nil {
				if strings.TrimSpace(line) != "" {
					return nil, fmt.Errorf("line %d: content before the first section", lineNum)
				}
				continue
			}
			body = append(body, line)
			continue
		}

		flush()
		if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), fileLabel) {
			return nil, fmt.Errorf("line %d: expected %q after the banner", lineNum+1, strings.TrimSpace(fileLabel))
		}
		var name = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), fileLabel))
		if !scanner.Scan() || scanner.Text() != bannerClose {
			return nil, fmt.Errorf("line %d: unterminated banner of %s", lineNum+2, name)
		}
		lineNum += 2
		current, body = &Section{Name: name}, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return sections, nil
}

// Mismatch reports a section whose content differs from the snapshot.
type Mismatch struct {
	Name string
	// Diff is a line diff, expected lines prefixed with "-" and actual
	// lines with "+".
	Diff string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("golden: %s differs from the snapshot:\n%s", m.Name, m.Diff)
}

// Compare checks each actual section against the section of the same name
// in the snapshot.  Sections missing from the snapshot are mismatches too.
func Compare(snapshot []Section, actual []Section) []*Mismatch {
	var expected = make(map[string]string, len(snapshot))
	for _, s := range snapshot {
		expected[s.Name] = s.Content
	}
	var mismatches []*Mismatch
	for _, s := range actual {
		var want, ok = expected[s.Name]
		if !ok {
			mismatches = append(mismatches, &Mismatch{Name: s.Name, Diff: "section not found in the snapshot"})
			continue
		}
		if want != s.Content {
			mismatches = append(mismatches, &Mismatch{Name: s.Name, Diff: diff.LineDiff(want, s.Content)})
		}
	}
	return mismatches
}

// Verify compares actual sections against the snapshot file at path.  With
// update set, the file is rewritten with the actual sections instead.
func Verify(path string, actual []Section, update bool) error {
	if update {
		return ioutil.WriteFile(path, []byte(Format(actual)), 0644)
	}
	var content, err = ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	snapshot, err := Parse(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if mismatches := Compare(snapshot, actual); len(mismatches) > 0 {
		return mismatches[0]
	}
	return nil
}
