package world

import (
	"fmt"
	"path"

	"github.com/funvibe/typeset/internal/file"
)

// Virtual is an in-memory world for tests and embedding. Files live
// under a synthetic "virtual:" prefix so their IDs never collide with
// filesystem paths.
type Virtual struct {
	main  file.ID
	files map[file.ID]string
}

const virtualPrefix = "virtual:/"

// NewVirtual builds a world from a map of relative paths to sources.
// The entry file is mainPath, which must be present in files.
func NewVirtual(mainPath string, files map[string]string) *Virtual {
	v := &Virtual{files: make(map[file.ID]string)}
	for p, text := range files {
		id := file.Intern(virtualPrefix + ensureExt(p))
		v.files[id] = text
	}
	v.main = file.Intern(virtualPrefix + ensureExt(mainPath))
	return v
}

func (v *Virtual) Main() file.ID {
	return v.main
}

func (v *Virtual) Source(id file.ID) (Source, error) {
	text, ok := v.files[id]
	if !ok {
		return Source{}, fmt.Errorf("no virtual file %s", id.Path())
	}
	return Source{ID: id, Text: text}, nil
}

func (v *Virtual) Resolve(base file.ID, p string) (file.ID, error) {
	if p == "" {
		return 0, errResolve(base, p)
	}
	dir := path.Dir(trimVirtual(base.Path()))
	return file.Intern(virtualPrefix + ensureExt(path.Join(dir, p))), nil
}

func trimVirtual(p string) string {
	if len(p) > len(virtualPrefix) && p[:len(virtualPrefix)] == virtualPrefix {
		return p[len(virtualPrefix):]
	}
	return p
}
