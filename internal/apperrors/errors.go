// Package apperrors defines the closed set of failure kinds a provisioning
// run can end with. Every error that reaches the command layer is one of
// these kinds; the kind alone decides the exit behavior.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	// KindUsage covers bad or missing command-line arguments.
	KindUsage Kind = "UsageError"
	// KindConfigNotFound means the configuration document does not exist.
	KindConfigNotFound Kind = "ConfigNotFound"
	// KindHostPathNotFound means the mount source directory does not exist.
	KindHostPathNotFound Kind = "HostPathNotFound"
	// KindControlPlane covers any non-success response from the control plane.
	KindControlPlane Kind = "ControlPlaneError"
)

// Sentinel causes for usage errors. Match them with errors.Is.
var (
	ErrMissingArgument  = errors.New("missing argument")
	ErrUnknownFlag      = errors.New("unknown flag")
	ErrBadMountSpec     = errors.New("bad mount spec")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrInvalidResource  = errors.New("invalid resource value")
)

// Error is a failure of a known kind with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error without a cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error around an existing cause.
func Wrap(err error, kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: err}
}

// Usage wraps one of the usage sentinels with a detail message.
func Usage(cause error, format string, args ...any) *Error {
	return Wrap(cause, KindUsage, "parse arguments", fmt.Sprintf(format, args...))
}

// ConfigNotFound reports a missing configuration document.
func ConfigNotFound(path string, cause error) *Error {
	return Wrap(cause, KindConfigNotFound, "resolve config", fmt.Sprintf("configuration file %q not found", path))
}

// HostPathNotFound reports a missing mount source directory.
func HostPathNotFound(path string, cause error) *Error {
	return Wrap(cause, KindHostPathNotFound, "attach mount", fmt.Sprintf("host directory %q not found", path))
}

// ControlPlane wraps a failed control-plane operation.
func ControlPlane(err error, op, message string) *Error {
	return Wrap(err, KindControlPlane, op, message)
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors that carry no kind are reported as KindControlPlane, the only
// category that can originate outside this program.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindControlPlane
}

// ShowsUsage reports whether the command layer should print usage text
// alongside the error. Every kind except control-plane failures does.
func ShowsUsage(err error) bool {
	switch KindOf(err) {
	case KindUsage, KindConfigNotFound, KindHostPathNotFound:
		return true
	default:
		return false
	}
}
