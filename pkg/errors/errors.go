package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error so that callers can branch with errors.Is without knowing which layer
// produced it.
type Kind string

func (x Kind) Error() string { return string(x) }

const (
	// ErrValidation indicates malformed or empty request arguments
	ErrValidation Kind = "ValidationError"
	// ErrUpstream indicates a network failure, non-success status or malformed payload from a feed
	ErrUpstream Kind = "UpstreamError"
	// ErrNormalization indicates a feed payload lacking fields the canonical shape requires
	ErrNormalization Kind = "NormalizationError"
	// ErrRunInProgress indicates another aggregation run holds the run guard
	ErrRunInProgress Kind = "RunInProgressError"
)

// Error is an error with a stack trace, key-value context and an optional Kind.
type Error struct {
	Values map[string]interface{}
	kind   Kind
	cause  error
}

// New creates a new Error with a stack trace
func New(msg string) *Error {
	return &Error{
		Values: make(map[string]interface{}),
		cause:  errors.New(msg),
	}
}

// Wrap annotates err with msg. Values and Kind of a wrapped *Error are inherited.
func Wrap(err error, msg string) *Error {
	e := &Error{
		Values: make(map[string]interface{}),
		cause:  errors.Wrap(err, msg),
	}

	var inner *Error
	if errors.As(err, &inner) {
		for k, v := range inner.Values {
			e.Values[k] = v
		}
		e.kind = inner.kind
	}

	return e
}

func (x *Error) Error() string {
	return x.cause.Error()
}

// Unwrap returns the annotated cause
func (x *Error) Unwrap() error {
	return x.cause
}

// Is reports true when target is the Kind of x
func (x *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && x.kind != "" && x.kind == k
}

// With adds a key-value pair describing the error context
func (x *Error) With(key string, value interface{}) *Error {
	x.Values[key] = value
	return x
}

// WithKind sets Kind of the error
func (x *Error) WithKind(kind Kind) *Error {
	x.kind = kind
	return x
}

// Kind returns Kind of the error. Empty if not classified.
func (x *Error) Kind() Kind {
	return x.kind
}

// StackTrace returns formatted stack trace of the origin of the error
func (x *Error) StackTrace() string {
	return fmt.Sprintf("%+v", x.cause)
}

// Is is errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// KindOf returns Kind of err if err or one of the wrapped errors is *Error.
func KindOf(err error) Kind {
	for _, k := range []Kind{ErrValidation, ErrUpstream, ErrNormalization, ErrRunInProgress} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ""
}
