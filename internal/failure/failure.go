// Package failure defines the error taxonomy shared by every pipeline stage.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindInput       Kind = "INPUT_ERROR"
	KindDocument    Kind = "DOCUMENT_ERROR"
	KindLookup      Kind = "LOOKUP_ERROR"
	KindTranslation Kind = "TRANSLATION_ERROR"
	KindOutput      Kind = "OUTPUT_ERROR"
	KindCancelled   Kind = "CANCELLED"
	// KindAnnotation is non-fatal and only ever reported through the run summary.
	KindAnnotation Kind = "ANNOTATION_WARNING"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	Page    int    `json:"page,omitempty"` // 1-based, 0 when not page specific
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is(err, &Error{Kind: KindInput}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// New creates a classified error.
func New(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Input reports a missing or unreadable input.
func Input(op, message string, cause error) *Error {
	return New(KindInput, op, message, cause)
}

// Document reports a file that is not a usable PDF.
func Document(op, message string, cause error) *Error {
	return New(KindDocument, op, message, cause)
}

// Lookup reports a vocabulary backend failure.
func Lookup(op, message string, cause error) *Error {
	return New(KindLookup, op, message, cause)
}

// Translation reports a provider failure or a malformed provider response.
func Translation(op, message string, cause error) *Error {
	return New(KindTranslation, op, message, cause)
}

// Output reports a failure writing the annotated document.
func Output(op, message string, cause error) *Error {
	return New(KindOutput, op, message, cause)
}

// Cancelled reports a run stopped by its context.
func Cancelled(op string, cause error) *Error {
	return New(KindCancelled, op, "operation cancelled", cause)
}

// WithPage returns a copy of e tagged with a 1-based page number.
func (e *Error) WithPage(page int) *Error {
	cp := *e
	cp.Page = page
	return &cp
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Warning is a non-fatal condition surfaced in the run summary.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Page    int    `json:"page,omitempty"`
	Word    string `json:"word,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	s := string(w.Kind)
	if w.Page > 0 {
		s += fmt.Sprintf(" page %d", w.Page)
	}
	if w.Word != "" {
		s += fmt.Sprintf(" %q", w.Word)
	}
	return s + ": " + w.Message
}
