// Package apperr classifies the errors the store's services return so the
// HTTP layer can map them to status codes without matching message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a service error.
type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	InsufficientStock
	ProductInactive
	IllegalTransition
	EmptyOrder
)

// Error carries a kind alongside a caller-facing message.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// New builds a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 when err carries none (including
// wrapped errors, via errors.As).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
