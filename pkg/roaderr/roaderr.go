// Package roaderr provides the wrapped-error convention used across the
// tracker: a sentinel "code" plus a formatted message, so callers can
// errors.Is/As against the code while still getting a readable message.
package roaderr

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() error {
	return e.code
}

// Is reports whether target is e's code, so errors.Is matches the code as
// well as the wrapped cause reached through Unwrap.
func (e *Error) Is(target error) bool {
	return target == e.code
}

func Wrap(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

var (
	// ErrUnrepresentable signals that a ground/road projection could not be
	// placed on a candidate path within edgeLengthErrorTolerance.
	ErrUnrepresentable = errors.New("state not representable on path within tolerance")
	// ErrNotPositiveDefinite signals a covariance eigenvalue below the
	// negative-eigenvalue floor: an internal invariant violation.
	ErrNotPositiveDefinite = errors.New("covariance is not positive semi-definite")
	// ErrNoMergeableGeometry signals two polylines share no endpoint.
	ErrNoMergeableGeometry = errors.New("no shared endpoint between path geometries")
	// ErrInvalidObservation signals an observation of the wrong dimensionality.
	ErrInvalidObservation = errors.New("observation has unexpected dimensionality")
	// ErrDegenerateEdge signals a zero-length edge where a positive length
	// segment was required. pkg/rgraph's Save and Load also use it as the
	// code for graph-file I/O and parse failures.
	ErrDegenerateEdge = errors.New("edge has non-positive length")
)

// AssertInvariant panics with msg when cond is false. Used for conditions the
// design treats as programmer errors rather than recoverable input problems
// (e.g. a null path-state reaching a code path that only handles non-null
// paths).
func AssertInvariant(cond bool, msg string) {
	if !cond {
		panic("roadtrack: invariant violated: " + msg)
	}
}
