package project

import "context"

// Repository defines the interface for project persistence. Save follows the
// same versioning contract as the task repository.
type Repository interface {
	Save(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)

	// AdjustCounters atomically adds the deltas to the cached counters and
	// bumps the version, so a concurrent reconcile fails its version check.
	AdjustCounters(ctx context.Context, id string, tasksDelta, completedDelta int) error
}
