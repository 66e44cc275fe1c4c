// Package introspector provides a read-only snapshot of the document
// produced by a previous convergence pass. The engine queries it to
// resolve references against "the document so far"; the convergence loop
// compares fingerprints across passes to decide when the document has
// stabilized.
package introspector

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/funvibe/typeset/internal/locator"
)

// Element is one unit of the compiled document.
type Element struct {
	Location locator.Location `json:"location"`
	Kind     string           `json:"kind"` // "text", "label", "ref", "block"
	Label    string           `json:"label,omitempty"`
	Content  string           `json:"content,omitempty"`
}

// Introspector is an immutable index over a pass's elements.
type Introspector struct {
	elements    []Element
	byLabel     map[string][]int
	byLocation  map[locator.Location]int
	fingerprint [32]byte
}

// New indexes the given elements. A nil slice yields the empty snapshot
// used for the first pass.
func New(elements []Element) *Introspector {
	in := &Introspector{
		elements:   elements,
		byLabel:    make(map[string][]int),
		byLocation: make(map[locator.Location]int),
	}
	h := sha256.New()
	for i, el := range elements {
		if el.Label != "" {
			in.byLabel[el.Label] = append(in.byLabel[el.Label], i)
		}
		if _, taken := in.byLocation[el.Location]; !taken {
			in.byLocation[el.Location] = i
		}
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00", el.Location, el.Kind, el.Label, el.Content)
	}
	h.Sum(in.fingerprint[:0])
	return in
}

// Len returns the number of elements in the snapshot.
func (in *Introspector) Len() int {
	return len(in.elements)
}

// Elements returns the snapshot's elements in document order. The
// returned slice must not be modified.
func (in *Introspector) Elements() []Element {
	return in.elements
}

// Query returns all elements carrying the given label, in document order.
func (in *Introspector) Query(label string) []Element {
	idxs := in.byLabel[label]
	out := make([]Element, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, in.elements[i])
	}
	return out
}

// At returns the first element with the given location.
func (in *Introspector) At(loc locator.Location) (Element, bool) {
	i, ok := in.byLocation[loc]
	if !ok {
		return Element{}, false
	}
	return in.elements[i], true
}

// Labels returns all distinct labels in the snapshot, sorted.
func (in *Introspector) Labels() []string {
	labels := make([]string, 0, len(in.byLabel))
	for l := range in.byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Fingerprint is a digest over the snapshot's observable content. Two
// passes with equal fingerprints are indistinguishable to any query, so
// the convergence loop may stop.
func (in *Introspector) Fingerprint() [32]byte {
	return in.fingerprint
}
