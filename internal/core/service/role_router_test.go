package service

import (
	"strings"
	"testing"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

func TestRoleRouter_LandingRoute(t *testing.T) {
	r := NewRoleRouter()
	cases := map[domain.Role]string{
		domain.RoleAdmin:      "/dashboard/admin",
		domain.RoleModerator:  "/dashboard/moderator",
		domain.RoleClient:     "/dashboard/client",
		domain.RoleFreelancer: "/dashboard/freelancer",
		domain.RoleUnknown:    "/",
		"superuser":           "/",
	}
	for role, want := range cases {
		if got := r.LandingRouteFor(role); got != want {
			t.Fatalf("LandingRouteFor(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestRoleRouter_NavigationStaysUnderRoot(t *testing.T) {
	r := NewRoleRouter()
	for _, role := range domain.Roles {
		entries := r.NavigationEntriesFor(role)
		if len(entries) == 0 {
			t.Fatalf("%s: empty navigation", role)
		}
		root := r.DashboardRootFor(role) + "/"
		seen := make(map[string]bool)
		for _, e := range entries {
			if !strings.HasPrefix(e.Route, root) {
				t.Fatalf("%s: entry %q escapes %s", role, e.Route, root)
			}
			if e.Title == "" || e.Icon == "" {
				t.Fatalf("%s: incomplete entry %+v", role, e)
			}
			if seen[e.Route] {
				t.Fatalf("%s: duplicate route %q", role, e.Route)
			}
			seen[e.Route] = true
		}
	}
}

func TestRoleRouter_NavigationUnknownRole(t *testing.T) {
	entries := NewRoleRouter().NavigationEntriesFor("superuser")
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestRoleRouter_NavigationIsACopy(t *testing.T) {
	r := NewRoleRouter()
	first := r.NavigationEntriesFor(domain.RoleClient)
	first[0].Title = "mutated"
	if r.NavigationEntriesFor(domain.RoleClient)[0].Title == "mutated" {
		t.Fatalf("callers must not be able to mutate the static table")
	}
}

func TestRoleRouter_NavigationOrder(t *testing.T) {
	got := NewRoleRouter().NavigationEntriesFor(domain.RoleClient)
	want := []string{"Projects", "Documentation", "Meetings", "Newsletter", "Blog"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("entry %d: expected %q, got %q", i, title, got[i].Title)
		}
	}
}

func TestRoleRouter_RoleSegment(t *testing.T) {
	cases := []struct {
		path, segment, rest string
		scoped              bool
	}{
		{"/dashboard", "", "", true},
		{"/dashboard/", "", "", true},
		{"/dashboard/client", "client", "", true},
		{"/dashboard/client/projects/42", "client", "/projects/42", true},
		{"/dashboards", "", "", false},
		{"/login", "", "", false},
	}
	r := NewRoleRouter()
	for _, tc := range cases {
		seg, rest, scoped := r.RoleSegment(tc.path)
		if seg != tc.segment || rest != tc.rest || scoped != tc.scoped {
			t.Fatalf("RoleSegment(%q) = (%q, %q, %v)", tc.path, seg, rest, scoped)
		}
	}
}
