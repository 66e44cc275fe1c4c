package world

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/funvibe/typeset/internal/file"
)

// FSWorld reads sources from the filesystem, rooted at a project
// directory. Sources are cached per instance, so a fresh FSWorld per
// compile attempt sees a consistent snapshot of files it has read.
type FSWorld struct {
	root string
	main file.ID

	mu      sync.Mutex
	sources map[file.ID]Source
}

// NewFS creates a world rooted at the directory of mainPath with
// mainPath as the entry file.
func NewFS(mainPath string) (*FSWorld, error) {
	abs, err := filepath.Abs(ensureExt(mainPath))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot open main file: %w", err)
	}
	return &FSWorld{
		root:    filepath.Dir(abs),
		main:    file.Intern(abs),
		sources: make(map[file.ID]Source),
	}, nil
}

// Root returns the project root directory.
func (w *FSWorld) Root() string {
	return w.root
}

func (w *FSWorld) Main() file.ID {
	return w.main
}

func (w *FSWorld) Source(id file.ID) (Source, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if src, ok := w.sources[id]; ok {
		return src, nil
	}
	text, err := os.ReadFile(id.Path())
	if err != nil {
		return Source{}, fmt.Errorf("cannot read %s: %w", id.Path(), err)
	}
	src := Source{ID: id, Text: string(text)}
	w.sources[id] = src
	return src, nil
}

func (w *FSWorld) Resolve(base file.ID, path string) (file.ID, error) {
	if path == "" {
		return 0, errResolve(base, path)
	}
	path = ensureExt(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(base.Path()), path)
	}
	return file.Intern(path), nil
}
