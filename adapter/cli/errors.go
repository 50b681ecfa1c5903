package cli

import (
	"errors"
	"strings"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// UserMessage renders err for the terminal. Domain failures are phrased by
// kind; anything else is shown as is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrConcurrentModification) {
		return "Someone else changed this record at the same time. Please try again."
	}

	detail := detailOf(err)
	switch domain.KindOf(err) {
	case domain.ErrTaskUnavailable:
		return "This task was just taken by someone else"
	case domain.ErrNotFound:
		return "Not found: " + detail
	case domain.ErrForbidden:
		return "Not allowed: " + detail
	case domain.ErrInvalidTransition:
		return "Not possible right now: " + detail
	case domain.ErrInvalidSpec:
		return "Invalid input: " + detail
	case domain.ErrInvalidTarget:
		return "Invalid target: " + detail
	default:
		return "Error: " + err.Error()
	}
}

// detailOf strips the kind prefix a *domain.Error puts in front of its message.
func detailOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	msg := err.Error()
	if kind := domain.KindOf(err); kind != nil {
		msg = strings.TrimPrefix(msg, kind.Error()+": ")
	}
	return msg
}
