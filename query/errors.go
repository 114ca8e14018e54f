package query

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a QueryError
type ErrorKind int

const (
	// KindSyntax covers malformed token streams, missing clause elements,
	// out-of-order clauses and unknown conversion types.
	KindSyntax ErrorKind = iota
	// KindUnboundParameter is returned when a placeholder is read or a
	// statement is executed before every placeholder has a value.
	KindUnboundParameter
	// KindUnsupported is raised by managers for constructs the backend
	// cannot serve.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindUnboundParameter:
		return "unbound parameter"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

var (
	// ErrSyntax matches every syntax QueryError with errors.Is
	ErrSyntax = &QueryError{Kind: KindSyntax, Msg: "syntax error"}

	// ErrUnboundParameter matches every unbound parameter QueryError
	ErrUnboundParameter = &QueryError{Kind: KindUnboundParameter, Msg: "unbound parameter"}

	// ErrUnsupported matches every unsupported QueryError
	ErrUnsupported = &QueryError{Kind: KindUnsupported, Msg: "unsupported operation"}

	// ErrNonUniqueResult is returned by SingleResult when more than one entity matches
	ErrNonUniqueResult = errors.New("query returned more than one entity")

	// ErrNilManager is returned when a statement is executed without a manager
	ErrNilManager = errors.New("manager is required")

	// ErrNilCallback is returned when an async execution is requested without a callback
	ErrNilCallback = errors.New("callback is required")
)

// QueryError is the error type returned by parsing, binding and execution
type QueryError struct {
	Kind ErrorKind
	Msg  string
	Err  error // optional cause
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the underlying cause
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a QueryError of the same kind. This lets
// callers test errors.Is(err, ErrSyntax) regardless of the message.
func (e *QueryError) Is(target error) bool {
	var t *QueryError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func syntaxError(format string, args ...interface{}) error {
	return &QueryError{Kind: KindSyntax, Msg: fmt.Sprintf(format, args...)}
}

func unboundError(names []string) error {
	return &QueryError{Kind: KindUnboundParameter, Msg: fmt.Sprintf("parameters not bound: %v", names)}
}

// Unsupported builds an unsupported QueryError. Managers use it to report
// constructs their backend cannot execute.
func Unsupported(format string, args ...interface{}) error {
	return &QueryError{Kind: KindUnsupported, Msg: fmt.Sprintf(format, args...)}
}

// IsSyntax reports whether err is a syntax error
func IsSyntax(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// IsUnboundParameter reports whether err is an unbound parameter error
func IsUnboundParameter(err error) bool {
	return errors.Is(err, ErrUnboundParameter)
}

// IsUnsupported reports whether err is an unsupported error
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
