package domain

import "strings"

// Role is the access level the backend assigns to a user at login.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"

	RoleUnknown Role = ""
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleModerator, RoleClient, RoleFreelancer}

// ParseRole maps a backend role value or a dashboard path segment to a Role.
// Matching is case-insensitive; "Administrator" is the legacy spelling of admin.
// Unrecognised values yield RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	case "client":
		return RoleClient
	case "freelancer":
		return RoleFreelancer
	default:
		return RoleUnknown
	}
}

// Known reports whether r is one of the four dashboard roles.
func (r Role) Known() bool {
	return ParseRole(string(r)) == r && r != RoleUnknown
}

// Title is the human-facing name used in the dashboard header.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleModerator:
		return "Moderator"
	case RoleClient:
		return "Client"
	case RoleFreelancer:
		return "Freelancer"
	default:
		return ""
	}
}

func (r Role) String() string { return string(r) }
