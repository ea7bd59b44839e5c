package sanitize

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes sanitization failures.
type ErrorCode string

const (
	// CodeUnknownProperty indicates the class declares no such property.
	CodeUnknownProperty ErrorCode = "UNKNOWN_PROPERTY"

	// CodeTypeMismatch indicates no documented coercion turns the value into
	// the declared type, or an entity handle has the wrong class.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeUnsupportedCoercion indicates a null or missing value for a
	// non-nullable property.
	CodeUnsupportedCoercion ErrorCode = "UNSUPPORTED_COERCION"

	// CodeDepthExceeded indicates nested descriptions deeper than the limit.
	CodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// CodeCyclicInput indicates a description that contains itself.
	CodeCyclicInput ErrorCode = "CYCLIC_INPUT"
)

// Sentinels matched by *Error through errors.Is.
var (
	ErrUnknownProperty     = errors.New("unknown property")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrUnsupportedCoercion = errors.New("unsupported coercion")
	ErrDepthExceeded       = errors.New("nesting depth exceeded")
	ErrCyclicInput         = errors.New("cyclic input")
)

var sentinels = map[ErrorCode]error{
	CodeUnknownProperty:     ErrUnknownProperty,
	CodeTypeMismatch:        ErrTypeMismatch,
	CodeUnsupportedCoercion: ErrUnsupportedCoercion,
	CodeDepthExceeded:       ErrDepthExceeded,
	CodeCyclicInput:         ErrCyclicInput,
}

// Error reports why a raw value could not be sanitized.
// Nothing has been created in the store when an *Error is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Class and Property name the property being sanitized.
	Class    string
	Property string

	// Path is the dotted property path from the root, e.g.
	// "relatedFilm.director" or "films[2].title".
	Path string

	// Value is the offending raw value.
	Value any

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any (e.g. a store lookup failure).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Class, e.Property, e.Message)
	if e.Path != "" && e.Path != e.Property {
		msg += fmt.Sprintf(" (at %s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel of the error's code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
