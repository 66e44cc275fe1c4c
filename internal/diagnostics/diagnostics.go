// Package diagnostics defines the stable error codes and error values
// produced during compilation.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/typeset/internal/file"
)

// ErrorCode is a stable, user-visible diagnostic code.
type ErrorCode string

const (
	ErrE001 ErrorCode = "E001" // cannot read source file
	ErrE002 ErrorCode = "E002" // unknown directive
	ErrE003 ErrorCode = "E003" // circular import
	ErrE004 ErrorCode = "E004" // maximum nesting depth exceeded
	ErrE005 ErrorCode = "E005" // unresolved reference
	ErrE006 ErrorCode = "E006" // document did not converge
	ErrE007 ErrorCode = "E007" // unbalanced block
)

// SourceError is a single diagnostic tied to a position in a source file.
type SourceError struct {
	Code ErrorCode
	File file.ID
	Line int // 1-based; 0 when the error has no line
	Msg  string
}

// NewError creates a diagnostic for the given position.
func NewError(code ErrorCode, id file.ID, line int, msg string) *SourceError {
	return &SourceError{Code: code, File: id, Line: line, Msg: msg}
}

func (e *SourceError) Error() string {
	switch {
	case e.File.IsValid() && e.Line > 0:
		return fmt.Sprintf("%s: %s:%d: %s", e.Code, e.File.Path(), e.Line, e.Msg)
	case e.File.IsValid():
		return fmt.Sprintf("%s: %s: %s", e.Code, e.File.Path(), e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
}

// Batch is a non-empty group of diagnostics produced by one failed step.
// It travels through ordinary error returns.
type Batch []*SourceError

// NewBatch groups diagnostics into a single error value.
func NewBatch(errs ...*SourceError) Batch {
	return Batch(errs)
}

func (b Batch) Error() string {
	msgs := make([]string, len(b))
	for i, e := range b {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ToBatch converts any error into a Batch. Errors that already are
// batches pass through unchanged; foreign errors are wrapped without a
// position so their message survives.
func ToBatch(err error) Batch {
	if b, ok := err.(Batch); ok {
		return b
	}
	if e, ok := err.(*SourceError); ok {
		return Batch{e}
	}
	return Batch{{Code: ErrE001, Msg: err.Error()}}
}

// Flatten joins batches into one, preserving order.
func Flatten(batches []Batch) Batch {
	var out Batch
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
