package project

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/vfs"
)

// TsConfig is the file selection of a tsconfig file.  Patterns are
// resolved to tree paths.
type TsConfig struct {
	Path    string
	Files   []string
	Include []string
	Exclude []string
}

type rawTsConfig struct {
	Extends string    `json:"extends"`
	Files   *[]string `json:"files"`
	Include *[]string `json:"include"`
	Exclude *[]string `json:"exclude"`
}

// LoadTsConfig reads the named tsconfig file.  Selections missing from it
// are inherited from the file it extends, when that is a relative path.
func LoadTsConfig(tree *vfs.Tree, name string) (*TsConfig, error) {
	return loadTsConfig(tree, vfs.Clean(name), 0)
}

func loadTsConfig(tree *vfs.Tree, name string, depth int) (*TsConfig, error) {
	if depth > 16 {
		return nil, errortypes.Newf(errortypes.ConfigurationError, name, 0, 0, "tsconfig extends itself")
	}
	var content, err = tree.Read(name)
	if err != nil {
		return nil, err
	}
	var raw rawTsConfig
	if err := json.Unmarshal([]byte(stripComments(content)), &raw); err != nil {
		return nil, &errortypes.Error{Kind: errortypes.ConfigurationError, Path: name, Msg: "invalid tsconfig: " + err.Error(), Err: err}
	}

	var cfg = &TsConfig{Path: name}
	if strings.HasPrefix(raw.Extends, ".") {
		var parentName = path.Join(path.Dir(name), raw.Extends)
		if !strings.HasSuffix(parentName, ".json") {
			parentName += ".json"
		}
		var parent, err = loadTsConfig(tree, vfs.Clean(parentName), depth+1)
		if err != nil {
			return nil, err
		}
		cfg.Files, cfg.Include, cfg.Exclude = parent.Files, parent.Include, parent.Exclude
	}

	var dir = path.Dir(name)
	var resolve = func(list *[]string, into *[]string) {
		if list == nil {
			return
		}
		*into = nil
		for _, p := range *list {
			*into = append(*into, vfs.Clean(path.Join(dir, p)))
		}
	}
	resolve(raw.Files, &cfg.Files)
	resolve(raw.Include, &cfg.Include)
	resolve(raw.Exclude, &cfg.Exclude)
	if raw.Files == nil && raw.Include == nil && cfg.Files == nil && cfg.Include == nil {
		cfg.Include = []string{vfs.Clean(path.Join(dir, "**/*"))}
	}
	return cfg, nil
}

// SourceFiles returns the TypeScript sources selected by cfg, in lexical
// order.  Declaration files and files under node_modules are never
// selected.
func SourceFiles(tree *vfs.Tree, cfg *TsConfig) ([]string, error) {
	var explicit = make(map[string]bool)
	for _, f := range cfg.Files {
		explicit[f] = true
	}
	var out []string
	var err = tree.Walk("", func(name string) error {
		if !strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".d.ts") {
			return nil
		}
		if explicit[name] || (matchAny(cfg.Include, name) && !matchAny(cfg.Exclude, name)) {
			out = append(out, name)
		}
		return nil
	})
	return out, err
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if Match(p, name) {
			return true
		}
	}
	return false
}

// Match reports whether the tree path name matches a tsconfig pattern.  A
// "**" segment matches any number of directories; a final segment without
// wildcards or extension names a directory and matches everything below it.
func Match(pattern, name string) bool {
	var pat = strings.Split(pattern, "/")
	if last := pat[len(pat)-1]; last != "**" && !strings.ContainsAny(last, "*?[.") {
		pat = append(pat, "**", "*")
	}
	return matchSegments(pat, strings.Split(name, "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			for i := 0; i <= len(segs); i++ {
				if matchSegments(pat[1:], segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], segs[0]); !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

// stripComments removes line and block comments and trailing commas from
// JSON with comments, as written in workspace and tsconfig files.
func stripComments(s string) string {
	return scanJSON(scanJSON(s, dropComment), dropTrailingComma)
}

// scanJSON copies s, letting drop skip bytes outside string literals.
// drop returns the number of bytes to skip at i and their replacement.
func scanJSON(s string, drop func(s string, i int) (int, string)) string {
	var b strings.Builder
	var inString, escaped bool
	for i := 0; i < len(s); i++ {
		var c = s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if n, repl := drop(s, i); n > 0 {
			b.WriteString(repl)
			i += n - 1
			continue
		}
		inString = c == '"'
		b.WriteByte(c)
	}
	return b.String()
}

func dropComment(s string, i int) (int, string) {
	switch {
	case strings.HasPrefix(s[i:], "//"):
		var end = strings.IndexByte(s[i:], '\n')
		if end < 0 {
			return len(s) - i, ""
		}
		return end, ""
	case strings.HasPrefix(s[i:], "/*"):
		var end = strings.Index(s[i+2:], "*/")
		if end < 0 {
			return len(s) - i, ""
		}
		return end + 4, " "
	}
	return 0, ""
}

func dropTrailingComma(s string, i int) (int, string) {
	if s[i] != ',' {
		return 0, ""
	}
	var rest = strings.TrimLeft(s[i+1:], " \t\r\n")
	if strings.HasPrefix(rest, "}") || strings.HasPrefix(rest, "]") {
		return 1, ""
	}
	return 0, ""
}
