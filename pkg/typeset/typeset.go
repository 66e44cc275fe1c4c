// Package typeset is the embeddable compile API for Go applications
// that want to compile documents without touching the filesystem.
package typeset

import (
	"github.com/funvibe/typeset/internal/compiler"
	"github.com/funvibe/typeset/internal/world"
)

// Result re-exports the compiler result for embedders.
type Result = compiler.Result

// Compile compiles an in-memory file set with the given entry file.
func Compile(main string, files map[string]string) (*Result, error) {
	return compiler.Compile(world.NewVirtual(main, files), compiler.Options{})
}

// CompileString compiles a standalone document source and returns its
// rendered text.
func CompileString(src string) (string, error) {
	res, err := Compile("main", map[string]string{"main": src})
	if err != nil {
		return "", err
	}
	return res.Render(), nil
}
