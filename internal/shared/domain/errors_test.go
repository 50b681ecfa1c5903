package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestError_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"invalid spec", domain.InvalidSpecf("story points %d not allowed", 4), domain.ErrInvalidSpec, "invalid spec: story points 4 not allowed"},
		{"not found", domain.NotFoundf("task %q", "t-9"), domain.ErrNotFound, `not found: task "t-9"`},
		{"forbidden", domain.Forbiddenf("caller is not the assignee"), domain.ErrForbidden, "forbidden: caller is not the assignee"},
		{"invalid target", domain.InvalidTargetf("target %d", 0), domain.ErrInvalidTarget, "invalid target: target 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.EqualError(t, tt.err, tt.msg)
			assert.Equal(t, tt.kind, domain.KindOf(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", domain.NotFoundf("user"))
	assert.Equal(t, domain.ErrNotFound, domain.KindOf(wrapped))
	assert.Nil(t, domain.KindOf(errors.New("boom")))
	assert.Nil(t, domain.KindOf(nil))
}

func TestError_EmptyMessage(t *testing.T) {
	err := &domain.Error{Kind: domain.ErrForbidden}
	assert.Equal(t, "forbidden", err.Error())
}
