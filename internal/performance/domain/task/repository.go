package task

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
)

// Filter narrows a task listing. Zero values match everything.
type Filter struct {
	ProjectID   string
	AssigneeID  string
	Status      *Status
	CompletedIn *calendar.Month
	OpenOnly    bool
	OrderByDue  bool
	Limit       int
}

// Repository defines the interface for task persistence.
//
// Save inserts a task whose version is zero and otherwise updates it only when
// the stored version still matches, returning domain.ErrConcurrentModification
// on a mismatch. A successful save increments the aggregate version.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter Filter) ([]*Task, error)
	CountByProject(ctx context.Context, projectID string) (total int, completed int, err error)
}
