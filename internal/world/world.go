// Package world provides the compilation environment: access to document
// sources and resolution of import paths. The engine only ever holds a
// read-only handle to a World; all mutation happens outside a compile
// attempt.
package world

import (
	"fmt"
	"strings"

	"github.com/funvibe/typeset/internal/config"
	"github.com/funvibe/typeset/internal/file"
)

// Source is the loaded text of one document file.
type Source struct {
	ID   file.ID
	Text string
}

// World supplies sources to the compiler. Implementations must be
// read-only for the duration of a compile attempt.
type World interface {
	// Main returns the entry file of the compilation.
	Main() file.ID

	// Source returns the text of the given file.
	Source(id file.ID) (Source, error)

	// Resolve maps an import path, relative to the importing file, to a
	// file ID. The target does not need to exist yet; existence is
	// checked by Source.
	Resolve(base file.ID, path string) (file.ID, error)
}

// ensureExt appends the default source extension when the path has no
// recognized one.
func ensureExt(path string) string {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return path
		}
	}
	return path + config.SourceFileExt
}

func errResolve(base file.ID, path string) error {
	return fmt.Errorf("cannot resolve import %q from %s", path, base.Path())
}
