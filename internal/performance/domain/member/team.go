package member

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Team groups users whose monthly scores roll up into a team total.
type Team struct {
	domain.BaseAggregateRoot
	name      string
	managerID string
}

// NewTeam creates a team. The manager is optional.
func NewTeam(id, name, managerID string, now time.Time) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidSpecf("team name is required")
	}
	t := &Team{
		BaseAggregateRoot: domain.NewAggregateRoot(strings.TrimSpace(id), now),
		name:              name,
		managerID:         strings.TrimSpace(managerID),
	}
	t.AddDomainEvent(newTeamCreated(t, now))
	return t, nil
}

func (t *Team) Name() string      { return t.name }
func (t *Team) ManagerID() string { return t.managerID }

// RehydrateTeam recreates a team from persisted state.
func RehydrateTeam(id, name, managerID string, createdAt, updatedAt time.Time) *Team {
	return &Team{
		BaseAggregateRoot: domain.RestoreAggregateRoot(id, createdAt, updatedAt, 0),
		name:              name,
		managerID:         managerID,
	}
}
