package domain

// NavigationEntry is one item of a dashboard navigation rail.
type NavigationEntry struct {
	Title string `json:"title"`
	Route string `json:"route"`
	Icon  string `json:"icon"`
}

const (
	// LoginRoute is where unauthenticated requests end up.
	LoginRoute = "/login"
	// PublicRoute is the landing route for sessions without a dashboard.
	PublicRoute = "/"
	// DashboardRoot prefixes every role-scoped route.
	DashboardRoot = "/dashboard"
)
