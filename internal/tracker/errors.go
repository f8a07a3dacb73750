package tracker

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError wraps a user-facing message for a value outside its
// allowed set or a missing required field.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// MalformedError reports input that could not be decoded into the expected
// shape.
type MalformedError struct{ Msg string }

func (e *MalformedError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func malformedf(format string, args ...any) error {
	return &MalformedError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies errors for transports.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidValue
	KindMalformedRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidValue:
		return "InvalidValue"
	case KindMalformedRequest:
		return "MalformedRequest"
	}
	return "Internal"
}

// KindOf returns the kind of err. Unclassified errors are KindInternal.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	var me *MalformedError
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &ve):
		return KindInvalidValue
	case errors.As(err, &me):
		return KindMalformedRequest
	}
	return KindInternal
}
