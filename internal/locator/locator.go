// Package locator assigns stable identities to document elements.
//
// Identities must survive recompilation: an element that stays in place
// keeps its location across convergence iterations and across runs, so
// queries against the previous pass's snapshot keep resolving. They are
// therefore derived deterministically (name-based UUIDs) rather than
// handed out from a counter.
package locator

import (
	"strconv"

	"github.com/google/uuid"
)

// namespace roots all derived locations. Fixed forever; changing it would
// invalidate every stored artifact.
var namespace = uuid.MustParse("8c9e3efb-2a1d-47a5-9f6e-1d04c8a7b5e2")

// Location is the stable identity of one document element.
type Location uuid.UUID

func (l Location) String() string {
	return uuid.UUID(l).String()
}

// MarshalText lets locations round-trip through stored artifacts in
// their canonical UUID form.
func (l Location) MarshalText() ([]byte, error) {
	return uuid.UUID(l).MarshalText()
}

func (l *Location) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*l = Location(u)
	return nil
}

// Locator produces locations scoped to one parent location. Equal keys
// are disambiguated by occurrence count, so repeated elements within a
// scope stay distinct yet deterministic.
type Locator struct {
	parent Location
	counts map[string]int
}

// New returns a locator rooted at the global namespace.
func New() *Locator {
	return &Locator{parent: Location(namespace), counts: make(map[string]int)}
}

// Scoped returns a locator whose locations derive from the given parent
// location. Used when descending into an element's children or into an
// imported module.
func Scoped(parent Location) *Locator {
	return &Locator{parent: parent, counts: make(map[string]int)}
}

// ForFile returns a locator rooted at a per-file location, so a module
// produces the same element identities no matter where it was imported
// from.
func ForFile(path string) *Locator {
	return Scoped(Location(uuid.NewSHA1(namespace, []byte("file:"+path))))
}

// Locate derives the next location for the given key within this scope.
// The n-th call with equal keys yields the same location on every pass.
func (l *Locator) Locate(key string) Location {
	n := l.counts[key]
	l.counts[key]++
	data := key + "#" + strconv.Itoa(n)
	return Location(uuid.NewSHA1(uuid.UUID(l.parent), []byte(data)))
}
