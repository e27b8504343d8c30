// Package coreerr defines the canonical error taxonomy returned by the
// core engine: OutOfRange, TypeMismatch, Parse, IOSpill,
// InvalidTransition. Search/replace and spill I/O failures are reported
// as a typed *Error, so callers can distinguish retryable conditions
// from permanent ones without parsing message text; the rest of the
// Document command surface reports success as a plain bool.
package coreerr

import (
	"fmt"
	"strings"
)

// Code is a canonical taxonomy code, independent of the specific message.
type Code string

const (
	// OutOfRange: frame/column/row index outside known bounds.
	OutOfRange Code = "OUT_OF_RANGE"
	// TypeMismatch: a value cannot be cast to a column's dtype.
	TypeMismatch Code = "TYPE_MISMATCH"
	// Parse: an A1 name or filter value failed to parse.
	Parse Code = "PARSE"
	// IOSpill: a temp spill file could not be written or read back.
	IOSpill Code = "IO_SPILL"
	// InvalidTransition: a structural mutation was clipped to a valid one
	// (e.g. deleting the header row); not itself fatal, but callers that
	// want to distinguish "did exactly what was asked" from "adjusted
	// the request" can check for it.
	InvalidTransition Code = "INVALID_TRANSITION"
)

// Entry documents a code's default message and retry semantics.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

var catalog = map[Code]Entry{
	OutOfRange:        {Code: OutOfRange, Message: "index out of range", Retryable: false, NextSteps: []string{"Verify frame/column/row bounds before calling"}},
	TypeMismatch:      {Code: TypeMismatch, Message: "value cannot be cast to column dtype", Retryable: false, NextSteps: []string{"Convert the column dtype first, or supply a compatible value"}},
	Parse:             {Code: Parse, Message: "failed to parse input", Retryable: true, NextSteps: []string{"Check A1 name or filter value syntax"}},
	IOSpill:           {Code: IOSpill, Message: "spill file write or read failed", Retryable: true, NextSteps: []string{"Verify the scratch directory is writable", "Retry the operation"}},
	InvalidTransition: {Code: InvalidTransition, Message: "request was clipped to a valid transition", Retryable: false, NextSteps: []string{"Inspect the adjusted span before assuming the original request applied"}},
}

// Error is the concrete error type returned by core operations. It carries
// the canonical Code plus an optional detail string.
type Error struct {
	Code      Code
	Detail    string
	Retryable bool
	NextSteps []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Detail != "" {
		b.WriteString(e.Detail)
	} else if entry, ok := catalog[e.Code]; ok {
		b.WriteString(entry.Message)
	}
	if len(e.NextSteps) > 0 {
		b.WriteString(" | next: ")
		b.WriteString(strings.Join(e.NextSteps, "; "))
	}
	return b.String()
}

// New builds an *Error for code with an optional formatted detail.
func New(code Code, format string, args ...any) *Error {
	entry, ok := catalog[code]
	if !ok {
		entry = Entry{Code: code}
	}
	detail := entry.Message
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Detail: detail, Retryable: entry.Retryable, NextSteps: entry.NextSteps}
}

// Is reports whether err is a *Error carrying the given code, supporting
// errors.Is-style checks without exposing the struct layout.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
