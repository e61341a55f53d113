// Package errs defines the error taxonomy of spec.md §7 as a single
// tagged Error type (kind + message + path/file/mode context), plus the
// bounded exponential-backoff retry combinator the Workspace wraps
// around transient I/O failures.
//
// Grounded on internal/model/errors.go's sentinel-errors + machine
// readable ErrorCode enum pattern from the teacher repository; see
// DESIGN.md.
package errs

import (
	"fmt"
	"strings"
)

// Kind is the machine-readable error taxonomy of spec.md §7.
type Kind string

const (
	KindParseError             Kind = "ParseError"
	KindPathSyntaxError        Kind = "PathSyntaxError"
	KindElementNotFoundError   Kind = "ElementNotFoundError"
	KindAmbiguityWarning       Kind = "AmbiguityWarning"
	KindWriteConflictError     Kind = "WriteConflictError"
	KindUnsupportedLanguageError Kind = "UnsupportedLanguageError"
	KindValidationError        Kind = "ValidationError"
	KindIOError                Kind = "IOError"
	KindTimeoutError           Kind = "TimeoutError"
	KindPluginError            Kind = "PluginError"
)

// Error is the single structured error type every public operation
// surfaces. User-facing messages include the path, file and mode where
// known, plus a short remediation hint; technical detail (Err) is
// reserved for verbose mode (spec §7).
type Error struct {
	Kind    Kind
	Message string
	Path    string // path expression, when relevant
	File    string // file path, when relevant
	Mode    string // manipulation mode, when relevant
	Hint    string
	Err     error // wrapped technical detail
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	var ctx []string
	if e.File != "" {
		ctx = append(ctx, "file="+e.File)
	}
	if e.Path != "" {
		ctx = append(ctx, "path="+e.Path)
	}
	if e.Mode != "" {
		ctx = append(ctx, "mode="+e.Mode)
	}
	if len(ctx) > 0 {
		s += " (" + strings.Join(ctx, " ") + ")"
	}
	if e.Hint != "" {
		s += " — " + e.Hint
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Retriable reports whether the retry utility may retry this error.
// Per spec §7/§4.J: only transient IOError is retried; logical errors
// (PathSyntaxError, ElementNotFoundError, WriteConflictError,
// ValidationError) and fatal ParseError/PluginError are never retried.
func (e *Error) Retriable() bool { return e.Kind == KindIOError }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping an underlying
// technical error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithContext returns a copy of e with path/file/mode context attached,
// for propagation policy call sites that know the operation's context
// but not its root cause.
func (e *Error) WithContext(path, file, mode string) *Error {
	c := *e
	c.Path = path
	c.File = file
	c.Mode = mode
	return &c
}

// Is allows errors.Is(err, errs.New(KindElementNotFoundError, "")) style
// matching on Kind alone, ignoring Message/context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if casted, ok := err.(*Error); ok {
			e = casted
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return "", false
	}
	return e.Kind, true
}
