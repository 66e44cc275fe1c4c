package file

import (
	"path/filepath"
	"sync"
)

// ID identifies an interned source file. The zero value is invalid.
// Interning makes equality checks along import chains a single integer
// comparison, no matter how the path was spelled.
type ID uint32

var interner = struct {
	mu     sync.RWMutex
	byPath map[string]ID
	paths  []string
}{byPath: make(map[string]ID)}

// Intern returns the ID for path, creating one on first use. Paths are
// cleaned so equivalent spellings intern to the same ID.
func Intern(path string) ID {
	path = filepath.Clean(path)

	interner.mu.RLock()
	id, ok := interner.byPath[path]
	interner.mu.RUnlock()
	if ok {
		return id
	}

	interner.mu.Lock()
	defer interner.mu.Unlock()
	if id, ok := interner.byPath[path]; ok {
		return id
	}
	interner.paths = append(interner.paths, path)
	id = ID(len(interner.paths))
	interner.byPath[path] = id
	return id
}

// Path returns the path this ID was interned under, or "" for the zero ID.
func (id ID) Path() string {
	interner.mu.RLock()
	defer interner.mu.RUnlock()
	if id == 0 || int(id) > len(interner.paths) {
		return ""
	}
	return interner.paths[id-1]
}

// IsValid reports whether the ID refers to an interned file.
func (id ID) IsValid() bool {
	return id != 0
}
