package member

import (
	"net/mail"
	"strings"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// DefaultMonthlyTarget is used when neither the user nor configuration supplies one.
const DefaultMonthlyTarget = 50

// UserSpec is the input for registering a user.
type UserSpec struct {
	ID            string
	Name          string
	Email         string
	Role          string
	TeamID        string
	MonthlyTarget int
}

// User is a member of the organisation who creates or works on tasks.
type User struct {
	domain.BaseAggregateRoot
	name          string
	email         string
	role          Role
	teamID        string
	monthlyTarget int
}

// NewUser validates spec and registers a user. A zero target falls back to defaultTarget.
func NewUser(spec UserSpec, defaultTarget int, now time.Time) (*User, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, domain.InvalidSpecf("user name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(spec.Email))
	if err != nil {
		return nil, domain.InvalidSpecf("invalid email %q", spec.Email)
	}
	role, err := ParseRole(spec.Role)
	if err != nil {
		return nil, err
	}

	target := spec.MonthlyTarget
	if target == 0 {
		target = defaultTarget
	}
	if target <= 0 {
		return nil, domain.InvalidTargetf("monthly target must be positive, got %d", target)
	}

	u := &User{
		BaseAggregateRoot: domain.NewAggregateRoot(strings.TrimSpace(spec.ID), now),
		name:              name,
		email:             strings.ToLower(addr.Address),
		role:              role,
		teamID:            strings.TrimSpace(spec.TeamID),
		monthlyTarget:     target,
	}
	u.AddDomainEvent(newUserRegistered(u, now))
	return u, nil
}

func (u *User) Name() string       { return u.name }
func (u *User) Email() string      { return u.email }
func (u *User) Role() Role         { return u.role }
func (u *User) TeamID() string     { return u.teamID }
func (u *User) MonthlyTarget() int { return u.monthlyTarget }

// RehydrateUser recreates a user from persisted state without generating events.
func RehydrateUser(id, name, email string, role Role, teamID string, monthlyTarget int, createdAt, updatedAt time.Time) *User {
	return &User{
		BaseAggregateRoot: domain.RestoreAggregateRoot(id, createdAt, updatedAt, 0),
		name:              name,
		email:             email,
		role:              role,
		teamID:            teamID,
		monthlyTarget:     monthlyTarget,
	}
}
