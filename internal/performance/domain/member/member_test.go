package member_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)

func TestParseRole(t *testing.T) {
	tests := map[string]member.Role{
		"owner":        member.RoleOwner,
		"Team Manager": member.RoleTeamManager,
		"team-manager": member.RoleTeamManager,
		"PM":           member.RolePM,
		" developer ":  member.RoleDeveloper,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := member.ParseRole(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := member.ParseRole("intern")
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, member.RoleOwner.IsManagerial())
	assert.True(t, member.RoleTeamManager.IsManagerial())
	assert.True(t, member.RolePM.IsManagerial())
	assert.False(t, member.RoleDeveloper.IsManagerial())

	assert.True(t, member.RoleDeveloper.CanClaim())
	assert.False(t, member.RolePM.CanClaim())
}

func TestNewUser(t *testing.T) {
	u, err := member.NewUser(member.UserSpec{
		ID:     "dev-A",
		Name:   "Alice",
		Email:  "Alice@Example.com",
		Role:   "developer",
		TeamID: "team-1",
	}, member.DefaultMonthlyTarget, now)

	require.NoError(t, err)
	assert.Equal(t, "dev-A", u.ID())
	assert.Equal(t, "alice@example.com", u.Email())
	assert.Equal(t, member.RoleDeveloper, u.Role())
	assert.Equal(t, 50, u.MonthlyTarget())

	require.Len(t, u.DomainEvents(), 1)
	assert.Equal(t, member.RoutingKeyUserRegistered, u.DomainEvents()[0].RoutingKey())
}

func TestNewUser_Invalid(t *testing.T) {
	base := member.UserSpec{Name: "Bob", Email: "bob@example.com", Role: "pm"}

	spec := base
	spec.Name = ""
	_, err := member.NewUser(spec, 50, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	spec = base
	spec.Email = "not-an-email"
	_, err = member.NewUser(spec, 50, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	spec = base
	spec.Role = "boss"
	_, err = member.NewUser(spec, 50, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	spec = base
	spec.MonthlyTarget = -10
	_, err = member.NewUser(spec, 50, now)
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = member.NewUser(base, 0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestNewTeam(t *testing.T) {
	team, err := member.NewTeam("team-1", " Platform ", "mgr-1", now)
	require.NoError(t, err)
	assert.Equal(t, "Platform", team.Name())
	assert.Equal(t, "mgr-1", team.ManagerID())

	_, err = member.NewTeam("", "", "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}
