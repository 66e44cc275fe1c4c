// Package engine holds all data needed during a compile attempt: the
// environment, the previous pass's document snapshot, the route taken
// through nested evaluation, the identity generator, and the diagnostics
// sink.
package engine

import (
	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/file"
	"github.com/funvibe/typeset/internal/introspector"
	"github.com/funvibe/typeset/internal/locator"
	"github.com/funvibe/typeset/internal/route"
	"github.com/funvibe/typeset/internal/tracer"
	"github.com/funvibe/typeset/internal/world"
)

// Engine is borrowed downward through the call graph, one exclusive
// mutable view at a time. World and Introspector are read-only handles
// owned by the caller for the whole compile pass; Route, Locator and
// Tracer are mutable.
type Engine struct {
	World        world.World
	Introspector *introspector.Introspector
	Route        *route.Route
	Locator      *locator.Locator
	Tracer       *tracer.Tracer
}

// New creates the root engine for a compile attempt.
func New(w world.World, in *introspector.Introspector, t *tracer.Tracer) *Engine {
	return &Engine{
		World:        w,
		Introspector: in,
		Route:        route.Root(),
		Locator:      locator.New(),
		Tracer:       t,
	}
}

// Delayed performs a fallible step that does not immediately terminate
// further execution. On failure the error batch is recorded in the
// tracer's deferred bucket and the zero value stands in, so surrounding
// fixed-point computation can continue; the convergence loop later
// promotes or discards what remains.
//
// This is a function rather than a method because Go methods cannot be
// generic.
func Delayed[T any](e *Engine, f func(*Engine) (T, error)) T {
	v, err := f(e)
	if err != nil {
		e.Tracer.Delay(diagnostics.ToBatch(err))
		var zero T
		return zero
	}
	return v
}

// Grow raises the nesting depth for the duration of a nested operation.
// The returned release function must be called when the operation
// unwinds, typically via defer.
func (e *Engine) Grow() func() {
	e.Route.Increase()
	return e.Route.Decrease
}

// Enter derives a child engine whose route records entry into the given
// module, with element identities scoped to that module. The child
// shares the parent's world, snapshot and tracer.
func (e *Engine) Enter(id file.ID) *Engine {
	child := *e
	child.Route = route.Insert(e.Route.Track(), id)
	child.Locator = locator.ForFile(id.Path())
	return &child
}

// Nest derives a child engine one plain nesting level deeper.
func (e *Engine) Nest() *Engine {
	child := *e
	child.Route = route.Extend(e.Route.Track())
	return &child
}
