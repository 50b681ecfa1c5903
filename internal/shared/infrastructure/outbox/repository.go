package outbox

import (
	"context"
	"time"
)

// Writer records events inside the caller's unit of work. Command handlers
// depend on this half only.
type Writer interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error
}

// Queue is the relay side of the outbox: it hands out due messages and
// records how each delivery attempt went.
type Queue interface {
	// GetUnpublished returns pending messages whose retry time has come,
	// oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64) error
	// MarkFailed bumps the retry count and parks the message until nextRetryAt.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error
	// DeleteOld drops published messages older than the retention window.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}

// Repository is a store serving both sides.
type Repository interface {
	Writer
	Queue
}
