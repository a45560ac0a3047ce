package ngc

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/i18n"
	"github.com/robfig/ngc/ngjs"
	"github.com/robfig/ngc/parse"
	"github.com/robfig/ngc/scan"
	"github.com/robfig/ngc/vfs"
)

// Logger is used to print notifications and compile errors when using the
// "WatchFiles" feature.
var Logger = log.New(os.Stderr, "[ngc] ", 0)

type sourceFile struct {
	name, content string
	onDisk        bool
}

// Bundle is a collection of TypeScript sources.  It acts as input for the
// compiler.
type Bundle struct {
	files                 []sourceFile
	tree                  *vfs.Tree
	cache                 *parse.Cache
	mode                  ngjs.Mode
	messages              ngjs.Translations
	err                   error
	watcher               *fsnotify.Watcher
	recompilationCallback func(*Program)

	// mu guards program, the program the recompiler updates in place.
	mu          sync.Mutex
	program     *Program
	recompiling sync.Once
}

// NewBundle returns an empty bundle reading from the current directory.
func NewBundle() *Bundle {
	return &Bundle{tree: vfs.New("."), cache: parse.NewCache()}
}

// SetTree sets the file tree sources and templates are read from.  It
// should be called before adding any files.
func (b *Bundle) SetTree(tree *vfs.Tree) *Bundle {
	b.tree = tree
	return b
}

// SetMode selects full definitions or partial declarations.
func (b *Bundle) SetMode(mode ngjs.Mode) *Bundle {
	b.mode = mode
	return b
}

// SetCache shares a template cache across bundles.
func (b *Bundle) SetCache(cache *parse.Cache) *Bundle {
	b.cache = cache
	return b
}

// SetTranslations supplies the translations of i18n-marked elements.
func (b *Bundle) SetTranslations(t ngjs.Translations) *Bundle {
	b.messages = t
	return b
}

// WatchFiles tells ngc to watch any source files added to this bundle, and
// the templates they load, re-compile as necessary, and propagate the
// updates to the compiled program.  It should be called once, before adding
// any files.  Only files on disk can be watched.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	if !watch || b.err != nil || b.watcher != nil {
		return b
	}
	if b.tree.Root() == "" {
		b.err = errors.New("ngc: cannot watch files of a memory tree")
		return b
	}
	b.watcher, b.err = fsnotify.NewWatcher()
	return b
}

// AddSourceDir adds all *.ts files found within the given directory
// (including sub-directories) to the bundle.  Tests and declaration files
// are left out.
func (b *Bundle) AddSourceDir(root string) *Bundle {
	var err = b.tree.Walk(root, func(name string) error {
		if !strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".spec.ts") || strings.HasSuffix(name, ".d.ts") {
			return nil
		}
		b.AddSourceFile(name)
		return nil
	})
	if err != nil {
		b.err = err
	}
	return b
}

// AddSourceFile adds the given source file to this bundle.  If WatchFiles is
// on, it will be subsequently watched for updates.
func (b *Bundle) AddSourceFile(filename string) *Bundle {
	var content, err = b.tree.Read(filename)
	if err != nil {
		b.err = err
		return b
	}
	b.watch(filename)
	b.files = append(b.files, sourceFile{vfs.Clean(filename), content, true})
	return b
}

// AddSourceString adds the given source to the bundle.  The name locates
// the templates and styles the source refers to; it does not need to name
// a real file.
func (b *Bundle) AddSourceString(filename, source string) *Bundle {
	b.files = append(b.files, sourceFile{vfs.Clean(filename), source, false})
	return b
}

// SetRecompilationCallback assigns the bundle a function to call after
// recompilation.  This is called before updating the in-use program.
func (b *Bundle) SetRecompilationCallback(c func(*Program)) *Bundle {
	b.recompilationCallback = c
	return b
}

func (b *Bundle) watch(name string) {
	if b.err == nil && b.watcher != nil {
		b.err = b.watcher.Add(filepath.Join(b.tree.Root(), filepath.FromSlash(name)))
	}
}

// scan reads the decorated classes of every source of the bundle.
func (b *Bundle) scan(ctx context.Context) ([]*scan.File, [][]*declaration, error) {
	var files []*scan.File
	var decls [][]*declaration
	var errs errortypes.List
	for _, src := range b.files {
		var f, err = scan.Scan(ctx, src.name, src.content)
		if err != nil {
			addError(&errs, src.name, err)
			continue
		}
		if f.HasErrors {
			Logger.Printf("warning: %s contains syntax errors", src.name)
		}
		fileDecls, err := readDeclarations(b.tree, f)
		if err != nil {
			addError(&errs, src.name, err)
		}
		files = append(files, f)
		decls = append(decls, fileDecls)
	}
	return files, decls, errs.Err()
}

// Compile scans all of the sources in this bundle, compiles the templates
// of their components and returns the emitted files.  Files that fail to
// compile are left out of the program and their errors are returned,
// together with the rest of the program.
func (b *Bundle) Compile() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}

	var ctx = context.Background()
	var files, decls, err = b.scan(ctx)
	var errs errortypes.List
	if err != nil {
		addError(&errs, "", err)
	}

	var c = &compiler{
		mode:     b.mode,
		cache:    b.cache,
		messages: b.messages,
		registry: newRegistry(decls),
	}
	var program = &Program{}
	for i, f := range files {
		if len(decls[i]) == 0 {
			continue
		}
		var out, err = c.compileFile(f, decls[i])
		if err != nil {
			addError(&errs, f.Path, err)
			continue
		}
		program.Files = append(program.Files, out)
		for _, d := range decls[i] {
			if d.template != nil && d.template.external {
				b.watch(d.template.path)
			}
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	errs.Sort()

	if b.watcher != nil {
		b.mu.Lock()
		b.program = program
		b.mu.Unlock()
		b.recompiling.Do(func() { go b.recompiler() })
	}
	return program, errs.Err()
}

// Messages returns the i18n messages of the templates of all components in
// the bundle, in source order.
func (b *Bundle) Messages() ([]*i18n.Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	var _, decls, err = b.scan(context.Background())
	var errs errortypes.List
	if err != nil {
		addError(&errs, "", err)
	}
	var msgs []*i18n.Message
	for _, fileDecls := range decls {
		for _, d := range fileDecls {
			if d.template == nil {
				continue
			}
			var tmpl, err = parseTemplate(b.cache, d)
			if err != nil {
				addError(&errs, d.template.path, err)
				continue
			}
			for _, msg := range i18n.Extract(tmpl) {
				msg.File = d.template.path
				msg.Line, msg.Col = d.template.location(msg.Line, msg.Col)
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs, errs.Err()
}

func (b *Bundle) recompiler() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			// If it's a rename, then fsnotify has removed the watch.
			// Add it back, after a delay.
			if ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				time.Sleep(10 * time.Millisecond)
				if err := b.watcher.Add(ev.Name); err != nil {
					Logger.Println(err)
				}
			}
			if name, err := filepath.Rel(b.tree.Root(), ev.Name); err == nil {
				b.cache.Invalidate(filepath.ToSlash(name))
			}
			if b.update(b.recompile()) {
				Logger.Printf("update successful (%v)", ev)
			}

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			// Nothing to do with errors
			Logger.Println(err)
		}
	}
}

// recompile compiles all the sources of the bundle again.
func (b *Bundle) recompile() (*Program, error) {
	var bundle = NewBundle().
		SetTree(b.tree).
		SetCache(b.cache).
		SetMode(b.mode).
		SetTranslations(b.messages)
	for _, src := range b.files {
		if src.onDisk {
			bundle.AddSourceFile(src.name)
		} else {
			bundle.AddSourceString(src.name, src.content)
		}
	}
	return bundle.Compile()
}

// update replaces the in-use program with a recompiled one.  The files that
// compiled are kept even if others failed; errors are logged.  It reports
// whether the program was replaced.
func (b *Bundle) update(recompiled *Program, err error) bool {
	if err != nil {
		Logger.Println(err)
	}
	if recompiled == nil {
		return false
	}
	if b.recompilationCallback != nil {
		b.recompilationCallback(recompiled)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program != nil {
		*b.program = *recompiled
	}
	return true
}

// Close stops watching files.
func (b *Bundle) Close() error {
	if b.watcher == nil {
		return nil
	}
	return b.watcher.Close()
}

// addError appends err to errs, keeping the members of lists and the
// position of classified errors.
func addError(errs *errortypes.List, path string, err error) {
	var list errortypes.List
	var e *errortypes.Error
	switch {
	case errors.As(err, &list):
		*errs = append(*errs, list...)
	case errors.As(err, &e):
		*errs = append(*errs, e)
	default:
		*errs = append(*errs, errortypes.Wrap(errortypes.IOError, path, err))
	}
}
