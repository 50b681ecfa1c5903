package task

import (
	"fmt"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// TransitionError reports a lifecycle operation attempted from a status that
// does not permit it. Kind is domain.ErrInvalidTransition, or
// domain.ErrTaskUnavailable for a claim on a task that is no longer available.
type TransitionError struct {
	Kind      error
	TaskID    string
	Current   Status
	Attempted Status
}

func newTransitionError(taskID string, current, attempted Status) *TransitionError {
	return &TransitionError{
		Kind:      domain.ErrInvalidTransition,
		TaskID:    taskID,
		Current:   current,
		Attempted: attempted,
	}
}

func newUnavailableError(taskID string, current Status) *TransitionError {
	return &TransitionError{
		Kind:      domain.ErrTaskUnavailable,
		TaskID:    taskID,
		Current:   current,
		Attempted: StatusTodo,
	}
}

func (e *TransitionError) Error() string {
	if e.Kind == domain.ErrTaskUnavailable {
		return fmt.Sprintf("%s: task %s is %s and can no longer be claimed", e.Kind, e.TaskID, e.Current)
	}
	return fmt.Sprintf("%s: task %s cannot move from %s to %s", e.Kind, e.TaskID, e.Current, e.Attempted)
}

func (e *TransitionError) Unwrap() error { return e.Kind }
