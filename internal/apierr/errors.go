// Package apierr defines the classified failure value produced by every
// News API operation.
package apierr

import (
	"fmt"
)

// Kind classifies where a failure originated.
type Kind int

const (
	// KindInput is bad caller-supplied data or a missing collaborator.
	KindInput Kind = iota + 1
	// KindServer is a non-success status returned by the server.
	KindServer
	// KindTransport means no response was obtained at all.
	KindTransport
	// KindOutput means a response arrived but did not have the expected shape.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Severity tells a UI how serious a failure is.
type Severity int

const (
	// SeverityWarning means the operation was still performed.
	SeverityWarning Severity = iota + 1
	// SeverityCritical means the attempt was aborted but may be re-issued.
	SeverityCritical
	// SeverityFatal means re-issuing the attempt will not help without
	// changing configuration.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Machine readable refinements of a Kind.
const (
	CodeNotFound           = "not_found"
	CodeAlreadyExists      = "already_exists"
	CodeInvalidID          = "invalid_id"
	CodeInvalidValue       = "invalid_value"
	CodeEmptyValue         = "empty_value"
	CodeNoConfiguration    = "no_configuration"
	CodeNoHost             = "no_host"
	CodeMissingCredentials = "missing_credentials"
	CodeEmptyPayload       = "empty_payload"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeTimeout            = "timeout"
	CodeConnection         = "connection"
	CodeTLS                = "tls"
	CodeCanceled           = "canceled"
	CodeInvalidURL         = "invalid_url"
	CodeInvalidJSON        = "invalid_json"
	CodeEmptyResponse      = "empty_response"
	CodeUnexpectedShape    = "unexpected_shape"
	CodeMissingMember      = "missing_member"
)

// Error is an immutable description of one failed attempt.
type Error struct {
	kind     Kind
	severity Severity
	code     string
	message  string
	status   int
	cause    error
}

// Sentinels for errors.Is checks. Only Kind and Code are compared.
var (
	ErrNotFound     = &Error{kind: KindInput, code: CodeNotFound}
	ErrUnauthorized = &Error{kind: KindServer, code: CodeUnauthorized}
	ErrForbidden    = &Error{kind: KindServer, code: CodeForbidden}
	ErrTransport    = &Error{kind: KindTransport}
)

// New creates an error without a cause.
func New(kind Kind, severity Severity, code, message string) *Error {
	return &Error{
		kind:     kind,
		severity: severity,
		code:     code,
		message:  message,
	}
}

// Wrap creates an error carrying the given cause.
func Wrap(kind Kind, severity Severity, code, message string, cause error) *Error {
	e := New(kind, severity, code, message)
	e.cause = cause
	return e
}

// Input is shorthand for a critical input error.
func Input(code, message string) *Error {
	return New(KindInput, SeverityCritical, code, message)
}

// NotFound is the input error reported when a 404 hits a resource-scoped
// operation.
func NotFound(message string) *Error {
	e := New(KindInput, SeverityCritical, CodeNotFound, message)
	e.status = 404
	return e
}

// Output is shorthand for a critical output error.
func Output(code, message string) *Error {
	return New(KindOutput, SeverityCritical, code, message)
}

// WithStatus returns a copy of e that records the HTTP status behind it.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.status = status
	return &c
}

func (e *Error) Kind() Kind         { return e.kind }
func (e *Error) Severity() Severity { return e.severity }
func (e *Error) Code() string       { return e.code }
func (e *Error) Message() string    { return e.message }

// Status returns the HTTP status that caused the error, or 0.
func (e *Error) Status() int { return e.status }

// Cause returns the underlying error, if any.
func (e *Error) Cause() error { return e.cause }

// IsNotFound reports whether the error is the refined 404 input error.
func (e *Error) IsNotFound() bool {
	return e != nil && e.kind == KindInput && e.code == CodeNotFound
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.kind, e.message)
	if e.code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.code)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches on Kind, and on Code when the target sets one.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	if t.kind != e.kind {
		return false
	}
	return t.code == "" || t.code == e.code
}
