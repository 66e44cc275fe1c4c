// Package route tracks the path the compiler takes through nested
// evaluation: module imports, nested layout, show-rule application.
// It detects cyclic imports and bounds recursion depth.
//
// A Route doubles as a memoization key component, which shapes the whole
// design: frames are shared, compared by pointer identity, and the exact
// nesting depth is never materialized (distinct depths would make
// otherwise equal routes distinct cache keys and defeat memoization).
package route

import (
	"math"

	"github.com/funvibe/typeset/internal/file"
)

// MaxDepth is the maximum call/import/layout nesting depth.
const MaxDepth = 64

// unknown marks an upper bound that has not been established yet.
const unknown = math.MaxInt

// Route is one frame of the nesting chain. Many child frames may share a
// single parent; parents are reached only through the read-only outer
// handle. The sum of len over all frames up to the root is the true
// nesting depth.
type Route struct {
	// outer is the parent frame's tracked handle, nil at the root.
	outer *Route

	// id is set if this frame was created through the start of a module
	// evaluation. Duplicate ids along the chain signal an import cycle.
	id file.ID

	// len is this frame's own contribution to the nesting depth: 1 for a
	// plain nesting frame, 0 for an id-only frame, plus any balanced
	// Increase/Decrease bumps currently in flight.
	len int

	// upper caches an upper bound for the depth of the parent chain. It
	// only ever tightens, and only after a recursive check has proven the
	// smaller bound. It is mutated through shared references without a
	// lock: exactly one mutable path is active at a time, and narrowing
	// toward the one true value is idempotent. Within never consults it
	// to prove a negative answer.
	upper int
}

// Root returns a new, empty route.
func Root() *Route {
	return &Route{upper: 0}
}

// Insert returns a route that records entry into the module identified by
// id. The outer handle must outlive the returned route.
func Insert(outer *Route, id file.ID) *Route {
	return &Route{outer: outer, id: id, len: 0, upper: unknown}
}

// Extend returns a route one plain nesting level deeper, without an id.
func Extend(outer *Route) *Route {
	return &Route{outer: outer, len: 1, upper: unknown}
}

// Track returns this route as a shareable handle for use in cache keys.
// A frame that carries no id and contributes no depth is skipped in favor
// of its parent's handle, so structurally equivalent call sites at
// different depths produce identical keys. The collapse preserves
// identity: the returned pointer is the parent handle itself, not a copy.
func (r *Route) Track() *Route {
	if r.outer != nil && !r.id.IsValid() && r.len == 0 {
		return r.outer
	}
	return r
}

// Increase raises this frame's local nesting depth by one. Every call
// must be paired with exactly one Decrease when the nested operation
// unwinds.
func (r *Route) Increase() {
	r.len++
}

// Decrease undoes a prior Increase. Underflow is not checked; an
// unpaired call is a contract violation by the caller, not a recoverable
// condition.
func (r *Route) Decrease() {
	r.len--
}

// Exceeding reports whether the nesting depth exceeds MaxDepth.
func (r *Route) Exceeding() bool {
	return !r.Within(MaxDepth)
}

// Contains reports whether id occurs on the chain from this frame to the
// root. An invalid id is never contained.
func (r *Route) Contains(id file.ID) bool {
	if id.IsValid() && r.id == id {
		return true
	}
	return r.outer != nil && r.outer.Contains(id)
}

// Within reports whether the route's total depth is at most limit. The
// limit must be non-negative at the top-level call.
//
// The cached upper bound can short-circuit a positive answer; negative
// answers are always established from the lengths alone, so the answer
// never depends on which limits were queried before.
func (r *Route) Within(limit int) bool {
	// Equivalent to upper+len <= limit without overflowing when upper is
	// still unknown.
	if r.upper <= limit-r.len {
		return true
	}

	switch {
	case r.outer == nil:
		return true
	case limit < r.len:
		// Even a zero-depth parent chain would not fit.
		return false
	default:
		within := r.outer.Within(limit - r.len)
		if within && limit < r.upper {
			r.upper = limit
		}
		return within
	}
}
