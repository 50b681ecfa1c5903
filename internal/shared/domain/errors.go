package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every bounded context. Callers match them with errors.Is
// and map them to user-facing messages.
var (
	ErrInvalidSpec       = errors.New("invalid spec")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrTaskUnavailable   = errors.New("task unavailable")
	ErrInvalidTarget     = errors.New("invalid target")
)

// Error is a domain failure tagged with one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// InvalidSpecf builds an ErrInvalidSpec error.
func InvalidSpecf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidSpec, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds an ErrForbidden error.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTargetf builds an ErrInvalidTarget error.
func InvalidTargetf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidTarget, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind wrapped by err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrTaskUnavailable,
		ErrInvalidTransition,
		ErrForbidden,
		ErrNotFound,
		ErrInvalidSpec,
		ErrInvalidTarget,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
