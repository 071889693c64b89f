package service

import (
	"strings"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

// navEntry is a navigation item relative to its role's dashboard root.
type navEntry struct {
	title string
	path  string
	icon  string
}

// navigation holds each role's rail, defined independently per role so that
// an entry added to one menu never appears in another by accident.
var navigation = map[domain.Role][]navEntry{
	domain.RoleAdmin: {
		{"Project Status", "project-status", "bar-chart-3"},
		{"Documentation", "documentation", "file-text"},
		{"View Consultations", "consultations", "message-square"},
		{"Post Bidings", "post-bidings", "gavel"},
		{"Client Profiles", "client-profiles", "users"},
		{"Freelancer Profiles", "freelancer-profiles", "user-circle"},
		{"Settings", "settings", "settings"},
		{"Newsletter", "newsletter", "mail"},
		{"Blogs", "blogs", "book-open"},
		{"Support", "support", "life-buoy"},
		{"Contact Us", "contact-us", "message-circle"},
		{"Trash", "trash", "trash-2"},
	},
	domain.RoleModerator: {
		{"Project Status", "project-status", "bar-chart-3"},
		{"View Consultations", "consultations", "message-square"},
		{"Post Bidings", "post-bidings", "gavel"},
		{"Client Profiles", "client-profiles", "users"},
		{"Freelancer Profiles", "freelancer-profiles", "user-circle"},
		{"Newsletter", "newsletter", "mail"},
		{"Blogs", "blogs", "book-open"},
		{"Contact Us", "contact-us", "message-circle"},
		{"Settings", "settings", "settings"},
	},
	domain.RoleClient: {
		{"Projects", "projects", "folder-kanban"},
		{"Documentation", "documentation", "file-text"},
		{"Meetings", "meetings", "calendar"},
		{"Newsletter", "newsletter", "mail"},
		{"Blog", "blog", "book-open"},
	},
	domain.RoleFreelancer: {
		{"Documentation", "documentation", "file-text"},
		{"Project Status", "project-status", "bar-chart-3"},
		{"Project Bidding", "project-bidding", "gavel"},
		{"Contact Us", "contact-us", "message-circle"},
		{"Settings", "settings", "settings"},
		{"Applied Biddings", "applied-biddings", "file-check"},
		{"Newsletter", "newsletter", "mail"},
		{"Blog", "blog", "book-open"},
		{"Meetings", "meetings", "calendar"},
	},
}

// RoleRouter maps roles to their landing route and navigation rail.
// All methods are pure and total: unknown roles get the public route and an
// empty rail.
type RoleRouter struct{}

func NewRoleRouter() RoleRouter { return RoleRouter{} }

// DashboardRootFor returns /dashboard/<role>, or "" for an unknown role.
func (RoleRouter) DashboardRootFor(role domain.Role) string {
	if !role.Known() {
		return ""
	}
	return domain.DashboardRoot + "/" + string(role)
}

// LandingRouteFor returns where a role is sent right after login.
func (r RoleRouter) LandingRouteFor(role domain.Role) string {
	root := r.DashboardRootFor(role)
	if root == "" {
		return domain.PublicRoute
	}
	return root
}

// NavigationEntriesFor returns a fresh copy of the role's ordered rail.
func (r RoleRouter) NavigationEntriesFor(role domain.Role) []domain.NavigationEntry {
	root := r.DashboardRootFor(role)
	items := navigation[role]
	if root == "" || len(items) == 0 {
		return []domain.NavigationEntry{}
	}

	out := make([]domain.NavigationEntry, 0, len(items))
	for _, it := range items {
		out = append(out, domain.NavigationEntry{
			Title: it.title,
			Route: root + "/" + it.path,
			Icon:  it.icon,
		})
	}
	return out
}

// RoleSegment splits a role-scoped path. It returns the raw segment after
// /dashboard, the remainder of the path (including its leading slash, if
// any), and whether the path is under /dashboard at all. A bare /dashboard
// yields an empty segment.
func (RoleRouter) RoleSegment(path string) (segment, rest string, scoped bool) {
	if path != domain.DashboardRoot && !strings.HasPrefix(path, domain.DashboardRoot+"/") {
		return "", "", false
	}
	tail := strings.TrimPrefix(strings.TrimPrefix(path, domain.DashboardRoot), "/")
	if i := strings.IndexByte(tail, '/'); i >= 0 {
		return tail[:i], tail[i:], true
	}
	return tail, "", true
}
