// Package serrors defines the semantic error kinds used across the property
// data engine. A kind classifies a failure (scrape failed, blocked, invalid
// record, bad caller input) independently of the concrete cause, so callers
// branch on errors.Is(err, serrors.ErrScrapeFailed) instead of on strings.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category. Only values built by NewKind satisfy it.
type Kind interface {
	error
	isKind()
}

type kind struct{ name string }

func (k kind) Error() string { return k.name }
func (k kind) isKind()       {}

// NewKind returns a new comparable kind sentinel.
func NewKind(name string) Kind { return kind{name: name} }

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrBadRequest indicates unusable caller input such as an unparsable address.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrInternal indicates a programming or infrastructure error.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates a remote page did not answer in time.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrUnavailable indicates a backend (cache store, remote site) is unreachable.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrRateLimited indicates the remote site throttled us.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrBlocked indicates the remote site refused to serve the page (bot wall, 403).
	ErrBlocked = NewKind("BLOCKED")
	// ErrScrapeFailed indicates a page could not be fetched for any other reason.
	ErrScrapeFailed = NewKind("SCRAPE_FAILED")
	// ErrValidation indicates a value or record violates the record schema.
	ErrValidation = NewKind("VALIDATION")
)

// Error carries a kind, an optional cause and an optional message.
//
// errors.Is and errors.As match both the kind and anything in the cause chain.
// The message renders as "<msg>: <cause>", falling back to whichever part is
// set and finally to the kind name.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With builds an error of kind k with a formatted message and no cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap builds an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly builds an error that carries nothing but its kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return (e.kind != nil && errors.Is(e.kind, target)) || (e.err != nil && errors.Is(e.err, target))
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return (e.kind != nil && errors.As(e.kind, target)) || (e.err != nil && errors.As(e.err, target))
}

// Kind returns the kind sentinel, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the attached message.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, or nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the outermost kind found in err's chain, or nil when err
// carries no semantic kind.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

// IsScrapeFailure reports whether err is any of the remote fetch failure kinds.
func IsScrapeFailure(err error) bool {
	return errors.Is(err, ErrScrapeFailed) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrBlocked) ||
		errors.Is(err, ErrTimeout)
}
