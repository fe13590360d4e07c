package simtop

import (
	"github.com/pkg/errors"
)

// Kind classifies generation failures.
type Kind int

const (
	// ResourceLoad: the template could not be loaded or is malformed.
	ResourceLoad Kind = iota + 1
	// AttributeResolution: an entity lacks a name, ports or widths.
	AttributeResolution
	// Write: the output file could not be written.
	Write
)

func (k Kind) String() string {
	switch k {
	case ResourceLoad:
		return "resource load"
	case AttributeResolution:
		return "attribute resolution"
	case Write:
		return "write"
	}
	return "unknown"
}

// Error is returned by every failed generation step.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause walk through an *Error.
func (e *Error) Cause() error { return e.Err }

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
