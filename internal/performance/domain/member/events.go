package member

import (
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

const (
	UserAggregateType = "User"
	TeamAggregateType = "Team"

	RoutingKeyUserRegistered = "perf.user.registered"
	RoutingKeyTeamCreated    = "perf.team.created"
)

// UserRegistered is emitted when a user joins.
type UserRegistered struct {
	domain.BaseEvent
	Name   string `json:"name"`
	Role   string `json:"role"`
	TeamID string `json:"team_id,omitempty"`
}

// TeamCreated is emitted when a team is created.
type TeamCreated struct {
	domain.BaseEvent
	Name      string `json:"name"`
	ManagerID string `json:"manager_id,omitempty"`
}

func newUserRegistered(u *User, at time.Time) *UserRegistered {
	return &UserRegistered{
		BaseEvent: domain.NewBaseEvent(u.ID(), UserAggregateType, RoutingKeyUserRegistered, at),
		Name:      u.name,
		Role:      string(u.role),
		TeamID:    u.teamID,
	}
}

func newTeamCreated(t *Team, at time.Time) *TeamCreated {
	return &TeamCreated{
		BaseEvent: domain.NewBaseEvent(t.ID(), TeamAggregateType, RoutingKeyTeamCreated, at),
		Name:      t.name,
		ManagerID: t.managerID,
	}
}
