package scan

import (
	"errors"
	"path"

	"github.com/robfig/ngc/ast"
	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/vfs"
)

// ResolvedTemplate is the template of a component, written inline in the
// decorator or loaded from its templateUrl.
type ResolvedTemplate struct {
	// Class is the name of the component.
	Class string
	// Content is the template text.  For inline templates it is the source
	// between the quotes, so offsets into it map back onto the file.
	Content string
	// FilePath is the file the content lives in: the source file for inline
	// templates, the template file otherwise.
	FilePath string
	// Start is the byte offset of Content in the file.
	Start  int
	Inline bool

	lines *ast.LineIndex
	base  int
}

// Position returns the 0-based line and column in the file of an offset
// into Content.
func (t *ResolvedTemplate) Position(offset int) (line, col int) {
	return t.lines.Location(ast.Pos(t.base + offset))
}

// Templates returns the templates of the components declared in f, in
// source order.  External templates are read from tree relative to the
// directory of f; those that do not exist are left out.  Templates that
// exist but cannot be read are reported as IOErrors and the rest are still
// returned.
func Templates(tree *vfs.Tree, f *File) ([]*ResolvedTemplate, error) {
	var out []*ResolvedTemplate
	var errs errortypes.List
	for _, c := range f.Classes {
		var meta = c.Decorator("Component").Arg(0)
		if meta == nil || meta.Kind != ValueObject {
			continue
		}
		if tmpl := meta.Get("template"); tmpl != nil && tmpl.Kind == ValueString {
			if f.lines == nil {
				f.lines = ast.NewLineIndex(f.Text)
			}
			out = append(out, &ResolvedTemplate{
				Class:    c.Name,
				Content:  f.Text[tmpl.ContentStart:tmpl.ContentEnd],
				FilePath: f.Path,
				Start:    tmpl.ContentStart,
				Inline:   true,
				lines:    f.lines,
				base:     tmpl.ContentStart,
			})
		}
		if url := meta.Get("templateUrl"); url != nil && url.Kind == ValueString {
			var name = vfs.Clean(path.Join(path.Dir(f.Path), url.Str))
			if !tree.Exists(name) {
				continue
			}
			var content, err = tree.Read(name)
			if err != nil {
				var e *errortypes.Error
				if !errors.As(err, &e) {
					e = errortypes.Wrap(errortypes.IOError, name, err)
				}
				errs = append(errs, e)
				continue
			}
			out = append(out, &ResolvedTemplate{
				Class:    c.Name,
				Content:  content,
				FilePath: name,
				lines:    ast.NewLineIndex(content),
			})
		}
	}
	return out, errs.Err()
}
