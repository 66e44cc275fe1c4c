// Package compiler runs the multi-pass convergence loop: the document is
// evaluated repeatedly against the previous pass's snapshot until its
// fingerprint stabilizes. Errors deferred during a pass are discarded
// when a later pass supersedes them and promoted to fatal diagnostics
// once the document has settled (or refuses to).
package compiler

import (
	"sort"
	"strings"

	"github.com/funvibe/typeset/internal/config"
	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/engine"
	"github.com/funvibe/typeset/internal/eval"
	"github.com/funvibe/typeset/internal/file"
	"github.com/funvibe/typeset/internal/introspector"
	"github.com/funvibe/typeset/internal/store"
	"github.com/funvibe/typeset/internal/tracer"
	"github.com/funvibe/typeset/internal/world"
)

// Options configure one compile run.
type Options struct {
	// Store, when set, is consulted before compiling and updated after a
	// clean compile, so unchanged documents skip evaluation entirely.
	Store *store.Store

	// MaxIterations caps the convergence loop. Zero means
	// config.MaxIterations.
	MaxIterations int
}

// Result is a successful compile.
type Result struct {
	Elements   []introspector.Element
	Warnings   []*diagnostics.SourceError
	Iterations int
	FromCache  bool
}

// Render flattens the document's content-bearing elements to text.
func (r *Result) Render() string {
	var b strings.Builder
	for _, el := range r.Elements {
		switch el.Kind {
		case "text", "ref":
			b.WriteString(el.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Compile compiles the world's main document. Returned errors are
// diagnostics.Batch values except for environment failures surfaced
// before the first pass.
func Compile(w world.World, opts Options) (*Result, error) {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = config.MaxIterations
	}

	mainSrc, err := w.Source(w.Main())
	if err != nil {
		return nil, diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE001, w.Main(), 0, err.Error(),
		))
	}

	if opts.Store != nil {
		if res, ok := fromStore(w, opts.Store, mainSrc); ok {
			return res, nil
		}
	}

	tr := tracer.New()
	ev := eval.New()
	insp := introspector.New(nil)

	var doc *eval.Document
	converged := false
	iterations := 0
	for i := 0; i < maxIter; i++ {
		iterations = i + 1
		tr.Reset()
		eng := engine.New(w, insp, tr)
		doc, err = ev.Module(eng, w.Main())
		if err != nil {
			return nil, diagnostics.ToBatch(err)
		}
		next := introspector.New(doc.Elements)
		if next.Fingerprint() == insp.Fingerprint() {
			insp = next
			converged = true
			break
		}
		insp = next
	}

	if !converged {
		b := diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE006, w.Main(), 0,
			"document did not converge within the iteration limit",
		))
		return nil, append(b, diagnostics.Flatten(tr.Delayed())...)
	}

	// The document settled; whatever is still deferred will never
	// resolve, so it becomes fatal now.
	if delayed := tr.Delayed(); len(delayed) > 0 {
		return nil, diagnostics.Flatten(delayed)
	}

	res := &Result{
		Elements:   insp.Elements(),
		Warnings:   tr.Warnings(),
		Iterations: iterations,
	}
	if opts.Store != nil && len(res.Warnings) == 0 {
		// Best effort; a failed write must not fail the compile.
		_ = toStore(w, opts.Store, mainSrc, doc, insp)
	}
	return res, nil
}

// fromStore reuses a stored artifact when the main source and every
// recorded dependency are byte-identical to the compile that produced it.
func fromStore(w world.World, s *store.Store, main world.Source) (*Result, bool) {
	art, ok, err := s.Get(store.Digest(main.Text))
	if err != nil || !ok {
		return nil, false
	}
	for _, dep := range art.Deps {
		src, err := w.Source(file.Intern(dep.Path))
		if err != nil || store.Digest(src.Text) != dep.Digest {
			return nil, false
		}
	}
	return &Result{Elements: art.Elements, FromCache: true}, true
}

func toStore(w world.World, s *store.Store, main world.Source, doc *eval.Document, insp *introspector.Introspector) error {
	seen := make(map[file.ID]bool)
	var deps []store.Dep
	for _, id := range doc.Deps {
		if seen[id] {
			continue
		}
		seen[id] = true
		src, err := w.Source(id)
		if err != nil {
			return err
		}
		deps = append(deps, store.Dep{Path: id.Path(), Digest: store.Digest(src.Text)})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Path < deps[j].Path })
	return s.Put(store.Digest(main.Text), store.Artifact{Deps: deps, Elements: insp.Elements()})
}
