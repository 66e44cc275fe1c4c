package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/typeset/internal/compiler"
	"github.com/funvibe/typeset/internal/config"
	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/project"
	"github.com/funvibe/typeset/internal/store"
	"github.com/funvibe/typeset/internal/world"
)

const usage = `typeset - incremental document compiler

Usage:
  typeset <file|dir>        compile a document or project and print it
  typeset watch <dir>       recompile whenever a source file changes
  typeset cache clear [dir] drop the project's stored artifacts
  typeset help              show this message
`

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	switch args[0] {
	case "help", "-h", "--help":
		fmt.Print(usage)
	case "watch":
		if len(args) < 2 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(1)
		}
		if err := runWatch(args[1]); err != nil {
			fatal(err)
		}
	case "cache":
		if len(args) < 2 || args[1] != "clear" {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(1)
		}
		dir := "."
		if len(args) > 2 {
			dir = args[2]
		}
		if err := clearCache(dir); err != nil {
			fatal(err)
		}
	default:
		res, err := runCompile(args[0])
		if err != nil {
			printDiagnostics(err, nil)
			os.Exit(1)
		}
		printDiagnostics(nil, res.Warnings)
		fmt.Print(res.Render())
	}
}

// setup resolves a file or project-directory argument into a world and
// compile options. The returned cleanup closes the artifact store.
func setup(path string) (*world.FSWorld, compiler.Options, func(), error) {
	noop := func() {}

	info, err := os.Stat(path)
	if err != nil {
		return nil, compiler.Options{}, noop, err
	}

	if !info.IsDir() {
		w, err := world.NewFS(path)
		return w, compiler.Options{}, noop, err
	}

	cfg, err := project.Load(path)
	if err != nil {
		return nil, compiler.Options{}, noop, err
	}
	w, err := world.NewFS(filepath.Join(path, cfg.Root))
	if err != nil {
		return nil, compiler.Options{}, noop, err
	}

	opts := compiler.Options{MaxIterations: cfg.MaxIterations}
	if cfg.CacheEnabled() {
		cacheDir := cfg.CacheDir
		if !filepath.IsAbs(cacheDir) {
			cacheDir = filepath.Join(path, cacheDir)
		}
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, compiler.Options{}, noop, err
		}
		s, err := store.Open(filepath.Join(cacheDir, config.CacheFileName))
		if err != nil {
			return nil, compiler.Options{}, noop, err
		}
		opts.Store = s
		return w, opts, func() { s.Close() }, nil
	}
	return w, opts, noop, nil
}

func runCompile(path string) (*compiler.Result, error) {
	w, opts, cleanup, err := setup(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return compiler.Compile(w, opts)
}

func runWatch(dir string) error {
	w, opts, cleanup, err := setup(dir)
	if err != nil {
		return err
	}
	defer cleanup()

	recompile := func(fsw *world.FSWorld) {
		res, err := compiler.Compile(fsw, opts)
		if err != nil {
			printDiagnostics(err, nil)
			return
		}
		printDiagnostics(nil, res.Warnings)
		fmt.Print(res.Render())
	}
	recompile(w)

	watcher, err := world.Watch(w.Root())
	if err != nil {
		return err
	}
	defer watcher.Close()

	fmt.Fprintf(os.Stderr, "watching %s\n", w.Root())
	for range watcher.Events() {
		// A fresh world per compile re-reads changed sources.
		fresh, err := world.NewFS(w.Main().Path())
		if err != nil {
			fatal(err)
		}
		recompile(fresh)
	}
	return nil
}

func clearCache(dir string) error {
	cfg, err := project.Load(dir)
	if err != nil {
		return err
	}
	cacheDir := cfg.CacheDir
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(dir, cacheDir)
	}
	s, err := store.Open(filepath.Join(cacheDir, config.CacheFileName))
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Clear()
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func colorize() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func printDiagnostics(err error, warnings []*diagnostics.SourceError) {
	tty := colorize()
	if err != nil {
		for _, e := range diagnostics.ToBatch(err) {
			if tty {
				fmt.Fprintf(os.Stderr, "%serror%s %s\n", ansiRed, ansiReset, e.Error())
			} else {
				fmt.Fprintf(os.Stderr, "error %s\n", e.Error())
			}
		}
		return
	}
	for _, w := range warnings {
		if tty {
			fmt.Fprintf(os.Stderr, "%swarning%s %s\n", ansiYellow, ansiReset, w.Error())
		} else {
			fmt.Fprintf(os.Stderr, "warning %s\n", w.Error())
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
