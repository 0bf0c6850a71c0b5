package query

import "fmt"

type ErrorKind int

const (
	// ErrorKindUnknownName is a Get lookup that found nothing.
	ErrorKindUnknownName ErrorKind = iota
	// ErrorKindShapeMismatch is a composition or combinator argument whose
	// shape can't be realigned to fit.
	ErrorKindShapeMismatch
	// ErrorKindFunctionResolution is a lifted function that doesn't accept
	// the inferred argument types.
	ErrorKindFunctionResolution
	// ErrorKindMissingParameter is a name that resolved to neither a field
	// nor a supplied parameter.
	ErrorKindMissingParameter
)

// Error is an assembly failure. All assembly errors are raised eagerly,
// before any execution happens.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
