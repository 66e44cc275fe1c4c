package engine_test

import (
	"errors"
	"testing"

	"github.com/funvibe/typeset/internal/diagnostics"
	"github.com/funvibe/typeset/internal/engine"
	"github.com/funvibe/typeset/internal/file"
	"github.com/funvibe/typeset/internal/introspector"
	"github.com/funvibe/typeset/internal/tracer"
	"github.com/funvibe/typeset/internal/world"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	w := world.NewVirtual("main", map[string]string{"main": ""})
	return engine.New(w, introspector.New(nil), tracer.New())
}

// ---------------------------------------------------------------------------
// Delayed
// ---------------------------------------------------------------------------

func TestDelayed_SuccessPassesValueThrough(t *testing.T) {
	e := newEngine(t)
	got := engine.Delayed(e, func(e *engine.Engine) (int, error) {
		return 42, nil
	})
	if got != 42 {
		t.Errorf("Delayed returned %d, want 42", got)
	}
	if n := len(e.Tracer.Delayed()); n != 0 {
		t.Errorf("successful step recorded %d delayed batches", n)
	}
}

func TestDelayed_FailureRecordsBatchAndReturnsZero(t *testing.T) {
	e := newEngine(t)
	batch := diagnostics.NewBatch(diagnostics.NewError(diagnostics.ErrE005, 0, 0, "unresolved"))

	got := engine.Delayed(e, func(e *engine.Engine) (string, error) {
		return "partial", batch
	})
	if got != "" {
		t.Errorf("failed step returned %q, want zero value", got)
	}

	delayed := e.Tracer.Delayed()
	if len(delayed) != 1 {
		t.Fatalf("recorded %d delayed batches, want 1", len(delayed))
	}
	if len(delayed[0]) != 1 || delayed[0][0].Code != diagnostics.ErrE005 {
		t.Errorf("delayed batch does not match the produced error: %v", delayed[0])
	}
}

func TestDelayed_ForeignErrorIsWrapped(t *testing.T) {
	e := newEngine(t)
	engine.Delayed(e, func(e *engine.Engine) (struct{}, error) {
		return struct{}{}, errors.New("plain failure")
	})
	delayed := e.Tracer.Delayed()
	if len(delayed) != 1 {
		t.Fatalf("recorded %d delayed batches, want 1", len(delayed))
	}
	if delayed[0][0].Msg != "plain failure" {
		t.Errorf("wrapped error lost its message: %q", delayed[0][0].Msg)
	}
}

// ---------------------------------------------------------------------------
// Route helpers
// ---------------------------------------------------------------------------

func TestGrow_PairsIncreaseAndDecrease(t *testing.T) {
	e := newEngine(t).Nest()

	release := e.Grow()
	if !e.Route.Within(2) || e.Route.Within(1) {
		t.Error("Grow did not add exactly one nesting level")
	}
	release()
	if !e.Route.Within(1) || e.Route.Within(0) {
		t.Error("release did not restore the previous depth")
	}
}

func TestEnter_RecordsModuleOnRoute(t *testing.T) {
	e := newEngine(t)
	id := file.Intern("engine-test://module-a")

	child := e.Enter(id)
	if !child.Route.Contains(id) {
		t.Error("entered module not on the child route")
	}
	if e.Route.Contains(id) {
		t.Error("entering a module must not mutate the parent route")
	}
	if child.Tracer != e.Tracer || child.World != e.World {
		t.Error("child engine must share the parent's sink and world")
	}
}

func TestNest_AddsOneLevel(t *testing.T) {
	e := newEngine(t)
	child := e.Nest()
	if !child.Route.Within(1) || child.Route.Within(0) {
		t.Error("Nest did not add exactly one nesting level")
	}
	if !e.Route.Within(0) {
		t.Error("Nest must not deepen the parent route")
	}
}

func TestNest_DepthAccumulates(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 65; i++ {
		e = e.Nest()
	}
	if !e.Route.Exceeding() {
		t.Error("65 nesting levels should exceed the depth limit")
	}
}
