// Package eval evaluates document modules. The source format is
// line-oriented: plain lines become text elements, and a small set of
// directives drives the interesting machinery:
//
//	#import <path>   splice another module (cycle-checked via the route)
//	#label <name>    an addressable anchor
//	#ref <name>      resolves against the previous pass's snapshot;
//	                 unresolved refs are deferred, not fatal
//	#begin / #end    nested block (bounded by the route's depth check)
//	#trace <value>   sample a value into the tracer, emit nothing
//
// Module evaluation is memoized per (module, tracked route handle,
// snapshot fingerprint).
package eval

import (
	"fmt"
	"strings"

	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/engine"
	"github.com/funvibe/typeset/internal/file"
	"github.com/funvibe/typeset/internal/introspector"
	"github.com/funvibe/typeset/internal/memo"
	"github.com/funvibe/typeset/internal/route"
	"github.com/funvibe/typeset/internal/world"
)

// Document is the result of evaluating one module, including every file
// it transitively depends on.
type Document struct {
	Elements []introspector.Element
	Deps     []file.ID
}

// Key identifies a memoized module evaluation. Route is the importing
// site's tracked handle: identical handles mean an identical ancestor
// chain, so every route query the evaluation could make (cycle check,
// depth check) repeats its answer.
type Key struct {
	Module file.ID
	Route  *route.Route
	State  [32]byte
}

// Evaluator owns the memoization cache for one compile attempt.
type Evaluator struct {
	cache *memo.Cache[Key, *Document]
}

func New() *Evaluator {
	return &Evaluator{cache: memo.New[Key, *Document]()}
}

// CacheStats exposes the memo counters, mainly for diagnostics output.
func (ev *Evaluator) CacheStats() (hits, misses int64) {
	return ev.cache.Stats()
}

// Module evaluates the module identified by id in a child engine whose
// route records the entry. Importing a module already on the route is a
// fatal circular-import error at this call site.
func (ev *Evaluator) Module(e *engine.Engine, id file.ID) (*Document, error) {
	if e.Route.Contains(id) {
		return nil, diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE003, id, 0,
			fmt.Sprintf("circular import of %s", id.Path()),
		))
	}

	key := Key{Module: id, Route: e.Route.Track(), State: e.Introspector.Fingerprint()}
	if doc, ok := ev.cache.Get(key); ok {
		return doc, nil
	}

	child := e.Enter(id)
	if child.Route.Exceeding() {
		return nil, diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE004, id, 0,
			"maximum nesting depth exceeded",
		))
	}

	src, err := child.World.Source(id)
	if err != nil {
		return nil, diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE001, id, 0, err.Error(),
		))
	}

	doc := &Document{Deps: []file.ID{id}}
	lines := strings.Split(src.Text, "\n")
	pos := 0
	els, err := ev.block(child, doc, src, lines, &pos, false)
	if err != nil {
		return nil, err
	}
	doc.Elements = els

	ev.cache.Put(key, doc)
	return doc, nil
}

// block evaluates lines until EOF, or until the #end matching an open
// #begin when inBlock is set.
func (ev *Evaluator) block(e *engine.Engine, doc *Document, src world.Source, lines []string, pos *int, inBlock bool) ([]introspector.Element, error) {
	var els []introspector.Element
	for *pos < len(lines) {
		lineNo := *pos + 1
		line := strings.TrimSpace(lines[*pos])
		*pos++

		directive, arg, _ := strings.Cut(line, " ")
		arg = strings.Trim(strings.TrimSpace(arg), `"`)

		switch {
		case line == "":
			// Blank lines carry no content.

		case directive == "#import":
			target, err := e.World.Resolve(src.ID, arg)
			if err != nil {
				return nil, diagnostics.NewBatch(diagnostics.NewError(
					diagnostics.ErrE001, src.ID, lineNo, err.Error(),
				))
			}
			sub, err := ev.Module(e, target)
			if err != nil {
				return nil, err
			}
			els = append(els, sub.Elements...)
			doc.Deps = append(doc.Deps, sub.Deps...)

		case directive == "#label":
			els = append(els, introspector.Element{
				Location: e.Locator.Locate("label:" + arg),
				Kind:     "label",
				Label:    arg,
				Content:  arg,
			})

		case directive == "#ref":
			name := arg
			loc := e.Locator.Locate("ref:" + name)
			content := engine.Delayed(e, func(e *engine.Engine) (string, error) {
				targets := e.Introspector.Query(name)
				if len(targets) == 0 {
					return "", diagnostics.NewBatch(diagnostics.NewError(
						diagnostics.ErrE005, src.ID, lineNo,
						fmt.Sprintf("unresolved reference %q", name),
					))
				}
				return "→" + targets[0].Content, nil
			})
			els = append(els, introspector.Element{Location: loc, Kind: "ref", Content: content})

		case directive == "#begin":
			release := e.Grow()
			if e.Route.Exceeding() {
				release()
				return nil, diagnostics.NewBatch(diagnostics.NewError(
					diagnostics.ErrE004, src.ID, lineNo,
					"maximum nesting depth exceeded",
				))
			}
			inner, err := ev.block(e, doc, src, lines, pos, true)
			release()
			if err != nil {
				return nil, err
			}
			els = append(els, introspector.Element{
				Location: e.Locator.Locate("block:" + arg),
				Kind:     "block",
				Content:  arg,
			})
			els = append(els, inner...)

		case directive == "#end":
			if !inBlock {
				return nil, diagnostics.NewBatch(diagnostics.NewError(
					diagnostics.ErrE007, src.ID, lineNo, "#end without matching #begin",
				))
			}
			return els, nil

		case directive == "#trace":
			// Sample a value for inspection without emitting content.
			e.Tracer.Trace(e.Locator.Locate("trace"), arg)

		case strings.HasPrefix(directive, "#"):
			e.Tracer.Warn(diagnostics.NewError(
				diagnostics.ErrE002, src.ID, lineNo,
				fmt.Sprintf("unknown directive %s", directive),
			))

		default:
			els = append(els, introspector.Element{
				Location: e.Locator.Locate("text"),
				Kind:     "text",
				Content:  line,
			})
		}
	}

	if inBlock {
		return nil, diagnostics.NewBatch(diagnostics.NewError(
			diagnostics.ErrE007, src.ID, len(lines), "#begin without matching #end",
		))
	}
	return els, nil
}
