// Package tracer collects the diagnostics and sampled values produced
// while compiling a document: warnings, delayed error batches, and
// values traced at specific element locations.
package tracer

import (
	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/locator"
)

// MaxTracedValues caps how many values are kept per location.
const MaxTracedValues = 16

// Tracer is the mutable diagnostics sink threaded through compilation.
// It is owned by one compile attempt and drained by the convergence loop.
type Tracer struct {
	warnings []*diagnostics.SourceError
	seen     map[string]bool
	delayed  []diagnostics.Batch
	values   map[locator.Location][]any
}

// New returns an empty tracer.
func New() *Tracer {
	return &Tracer{
		seen:   make(map[string]bool),
		values: make(map[locator.Location][]any),
	}
}

// Warn records a warning. Duplicate warnings (same code, position and
// message) are kept once, since convergence iterations re-run the same
// code repeatedly.
func (t *Tracer) Warn(w *diagnostics.SourceError) {
	key := w.Error()
	if t.seen[key] {
		return
	}
	t.seen[key] = true
	t.warnings = append(t.warnings, w)
}

// Warnings returns the recorded warnings in insertion order.
func (t *Tracer) Warnings() []*diagnostics.SourceError {
	return t.warnings
}

// Delay records an error batch whose promotion to a fatal diagnostic is
// deferred until the convergence loop decides the document has settled.
func (t *Tracer) Delay(b diagnostics.Batch) {
	if len(b) == 0 {
		return
	}
	t.delayed = append(t.delayed, b)
}

// Delayed returns the deferred batches recorded since the last Reset.
func (t *Tracer) Delayed() []diagnostics.Batch {
	return t.delayed
}

// Reset clears the deferred bucket for the next convergence iteration.
// Warnings and traced values accumulate across iterations.
func (t *Tracer) Reset() {
	t.delayed = nil
}

// Trace samples a value produced at the given location, up to
// MaxTracedValues per location.
func (t *Tracer) Trace(loc locator.Location, v any) {
	vs := t.values[loc]
	if len(vs) >= MaxTracedValues {
		return
	}
	t.values[loc] = append(vs, v)
}

// Values returns the values sampled at the given location.
func (t *Tracer) Values(loc locator.Location) []any {
	return t.values[loc]
}
