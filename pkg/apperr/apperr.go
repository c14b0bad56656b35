package apperr

import "errors"

// Kind classifies an error for the transport boundary.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInvalidInput Kind = "invalid_input"
	KindInternal     Kind = "internal"
)

// Error is a domain error with a stable code. Sentinels are package-level
// *Error values compared with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NotFound(code, message string) *Error     { return New(KindNotFound, code, message) }
func Forbidden(code, message string) *Error    { return New(KindForbidden, code, message) }
func Conflict(code, message string) *Error     { return New(KindConflict, code, message) }
func InvalidInput(code, message string) *Error { return New(KindInvalidInput, code, message) }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
