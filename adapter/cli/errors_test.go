package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"concurrent", fmt.Errorf("save task: %w", domain.ErrConcurrentModification), "Someone else changed this record at the same time. Please try again."},
		{"unavailable", &domain.Error{Kind: domain.ErrTaskUnavailable, Msg: "task task-1 is todo"}, "This task was just taken by someone else"},
		{"not found", domain.NotFoundf("task %s", "task-1"), "Not found: task task-1"},
		{"forbidden", domain.Forbiddenf("developers cannot approve"), "Not allowed: developers cannot approve"},
		{"invalid spec wrapped", fmt.Errorf("create: %w", domain.InvalidSpecf("title is required")), "Invalid input: title is required"},
		{"invalid target", domain.InvalidTargetf("target must be positive"), "Invalid target: target must be positive"},
		{"bare kind", domain.ErrInvalidTransition, "Not possible right now: invalid transition"},
		{"other", errors.New("disk full"), "Error: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
