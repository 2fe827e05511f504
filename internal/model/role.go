package model

// Role is the closed set of roles carried by the external issuer's token.
// Unknown role strings degrade to TeamMember, whose checks all fall through
// to the per-project grant set.
type Role int

const (
	RoleTeamMember Role = iota
	RoleProjectManager
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleProjectManager:
		return "project_manager"
	default:
		return "team_member"
	}
}

// ParseRole maps the token's role claim onto the closed variant.
func ParseRole(raw string) Role {
	switch raw {
	case "admin":
		return RoleAdmin
	case "project_manager":
		return RoleProjectManager
	default:
		return RoleTeamMember
	}
}
