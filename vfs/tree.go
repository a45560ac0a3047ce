// Package vfs provides the file tree that migrations and the compiler read
// from and write to.
//
// A Tree is rooted at a directory on disk, or held entirely in memory for
// tests.  Paths are slash-separated and relative to the root.  Edits to a
// file are recorded against the content read when the update began and
// applied together by Commit:
//
//	var rec, err = tree.BeginUpdate("src/app/app.component.html")
//	rec.Remove(start, length)
//	rec.InsertLeft(start, replacement)
//	err = tree.Commit(rec)
package vfs

import (
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/ngc/edit"
	"github.com/robfig/ngc/errortypes"
)

// Tree is a file tree.  It is not safe for concurrent use.
type Tree struct {
	root  string            // directory on disk, or "" for a memory tree
	files map[string]string // memory tree contents
}

// New returns a tree of the files under the directory root.
func New(root string) *Tree {
	return &Tree{root: root}
}

// NewMemory returns an in-memory tree holding files, keyed by path.
func NewMemory(files map[string]string) *Tree {
	var t = &Tree{files: make(map[string]string)}
	for name, content := range files {
		t.files[Clean(name)] = content
	}
	return t
}

// Clean returns the canonical form of a tree path: slash-separated, relative
// to the root and without dot segments.
func Clean(name string) string {
	name = path.Clean("/" + filepath.ToSlash(name))
	return strings.TrimPrefix(name, "/")
}

// Root returns the directory the tree is rooted at, or "" for a memory tree.
func (t *Tree) Root() string {
	return t.root
}

func (t *Tree) diskPath(name string) string {
	return filepath.Join(t.root, filepath.FromSlash(name))
}

// Read returns the content of the named file.  Failures are IOErrors.
func (t *Tree) Read(name string) (string, error) {
	name = Clean(name)
	if t.files != nil {
		var content, ok = t.files[name]
		if !ok {
			return "", errortypes.Newf(errortypes.IOError, name, 0, 0, "file not found")
		}
		return content, nil
	}
	var content, err = ioutil.ReadFile(t.diskPath(name))
	if err != nil {
		return "", errortypes.Wrap(errortypes.IOError, name, err)
	}
	return string(content), nil
}

// Exists reports whether the named file exists.
func (t *Tree) Exists(name string) bool {
	name = Clean(name)
	if t.files != nil {
		var _, ok = t.files[name]
		return ok
	}
	var info, err = os.Stat(t.diskPath(name))
	return err == nil && !info.IsDir()
}

// Write replaces the content of the named file, creating it if needed.
func (t *Tree) Write(name, content string) error {
	name = Clean(name)
	if t.files != nil {
		t.files[name] = content
		return nil
	}
	var p = t.diskPath(name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errortypes.Wrap(errortypes.IOError, name, err)
	}
	if err := ioutil.WriteFile(p, []byte(content), 0644); err != nil {
		return errortypes.Wrap(errortypes.IOError, name, err)
	}
	return nil
}

// skipDir reports whether walking descends into the named directory.
func skipDir(name string) bool {
	return name == "node_modules" || (strings.HasPrefix(name, ".") && name != ".")
}

// Walk calls fn for every file under dir in lexical order, skipping
// node_modules and hidden directories.
func (t *Tree) Walk(dir string, fn func(name string) error) error {
	dir = Clean(dir)
	if t.files != nil {
		var names []string
		for name := range t.files {
			if dir == "" || dir == "." || strings.HasPrefix(name, dir+"/") {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	outer:
		for _, name := range names {
			for _, seg := range strings.Split(path.Dir(name), "/") {
				if skipDir(seg) {
					continue outer
				}
			}
			if err := fn(name); err != nil {
				return err
			}
		}
		return nil
	}

	var base = t.diskPath(dir)
	return filepath.Walk(base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errortypes.Wrap(errortypes.IOError, p, err)
		}
		if info.IsDir() {
			if p != base && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		var rel, relErr = filepath.Rel(t.root, p)
		if relErr != nil {
			return relErr
		}
		return fn(Clean(rel))
	})
}

// Recorder collects the edits of one update transaction on a file.  Offsets
// refer to the content of the file when the update began.
type Recorder struct {
	name     string
	original string
	edits    edit.List
}

// BeginUpdate starts recording edits to the named file.
func (t *Tree) BeginUpdate(name string) (*Recorder, error) {
	var content, err = t.Read(name)
	if err != nil {
		return nil, err
	}
	return &Recorder{name: Clean(name), original: content}, nil
}

// Path returns the path of the file being updated.
func (r *Recorder) Path() string {
	return r.name
}

// Original returns the content the offsets refer to.
func (r *Recorder) Original() string {
	return r.original
}

// InsertLeft inserts text at offset, to the left of anything inserted there
// later.
func (r *Recorder) InsertLeft(offset int, text string) *Recorder {
	r.edits.Insert(offset, text)
	return r
}

// Remove removes length bytes at offset.
func (r *Recorder) Remove(offset, length int) *Recorder {
	r.edits.Remove(offset, length)
	return r
}

// Edits returns the edits recorded so far.
func (r *Recorder) Edits() edit.List {
	return r.edits
}

// Commit applies the edits of r to its file in one step.  The file is left
// untouched when the edits conflict or it changed since the update began.
func (t *Tree) Commit(r *Recorder) error {
	var current, err = t.Read(r.name)
	if err != nil {
		return err
	}
	if current != r.original {
		return errortypes.Newf(errortypes.IOError, r.name, 0, 0, "file changed since the update began")
	}
	updated, err := r.edits.Apply(r.original)
	if err != nil {
		return errortypes.Wrap(errortypes.IOError, r.name, err)
	}
	if updated == current {
		return nil
	}
	return t.Write(r.name, updated)
}
