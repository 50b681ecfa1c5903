package member

import (
	"strings"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Role decides which lifecycle operations a user may invoke.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleTeamManager Role = "team_manager"
	RolePM          Role = "pm"
	RoleDeveloper   Role = "developer"
)

// ParseRole validates a role name, accepting hyphens or spaces in place of underscores.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
	switch r := Role(name); r {
	case RoleOwner, RoleTeamManager, RolePM, RoleDeveloper:
		return r, nil
	default:
		return "", domain.InvalidSpecf("role must be owner, team_manager, pm or developer, got %q", s)
	}
}

// IsManagerial reports whether the role may create, approve, reject, block and unblock tasks.
func (r Role) IsManagerial() bool {
	return r == RoleOwner || r == RoleTeamManager || r == RolePM
}

// CanClaim reports whether the role may claim available tasks.
func (r Role) CanClaim() bool { return r == RoleDeveloper }
