package service

import "github.com/pls-platform/dashboard/internal/core/domain"

// DecisionKind is the terminal state of a guard evaluation.
type DecisionKind int

const (
	// Allow lets the request through unchanged.
	Allow DecisionKind = iota
	// Rewrite serves Target within the same request cycle.
	Rewrite
	// Redirect sends the client to Target.
	Redirect
)

// Decision is the outcome of RouteGuard.Decide. Label names the rule that
// fired and is used as a metric label.
type Decision struct {
	Kind   DecisionKind
	Target string
	Label  string
}

// RouteGuard is the single authorization checkpoint for dashboard paths.
type RouteGuard struct {
	roles RoleRouter
}

func NewRouteGuard(roles RoleRouter) RouteGuard {
	return RouteGuard{roles: roles}
}

// Decide classifies a navigation to path for the given session (nil when
// none exists). The first matching rule wins; Decide never fails.
func (g RouteGuard) Decide(path string, session *domain.Session) Decision {
	if path == domain.PublicRoute {
		return Decision{Kind: Rewrite, Target: domain.LoginRoute, Label: "rewrite"}
	}

	segment, rest, scoped := g.roles.RoleSegment(path)
	if !scoped {
		return Decision{Kind: Allow, Label: "allow"}
	}

	if session == nil {
		return Decision{Kind: Redirect, Target: domain.LoginRoute, Label: "login"}
	}

	role := domain.ParseRole(segment)
	if role != session.Role {
		return Decision{Kind: Redirect, Target: g.roles.LandingRouteFor(session.Role), Label: "landing"}
	}

	if segment != string(role) {
		return Decision{Kind: Redirect, Target: g.roles.DashboardRootFor(role) + rest, Label: "canonical"}
	}

	return Decision{Kind: Allow, Label: "allow"}
}
