package member

import "context"

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByTeam(ctx context.Context, teamID string) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
}

// TeamRepository defines the interface for team persistence.
type TeamRepository interface {
	Save(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
}
