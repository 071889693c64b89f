package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
)

// NavItem is a navigation entry as rendered, with its highlight state.
type NavItem struct {
	domain.NavigationEntry
	Active bool
}

// Header is the identity block at the bottom of the rail.
// An empty Header renders as a blank block.
type Header struct {
	FullName string
	Email    string
	Initials string
}

// ShellView is everything a dashboard page needs besides its own content.
type ShellView struct {
	Role        domain.Role
	RoleTitle   string
	HomeRoute   string
	Path        string
	Nav         []NavItem
	ActiveTitle string
	Collapsed   bool

	// Header is filled from the session when it already carries identity;
	// otherwise HeaderPending tells the page to load it asynchronously.
	Header        Header
	HeaderPending bool
}

// Shell builds dashboard chrome for a session.
type Shell struct {
	roles          RoleRouter
	auth           ports.AuthGateway
	profileTimeout time.Duration
	log            zerolog.Logger
}

func NewShell(roles RoleRouter, auth ports.AuthGateway, profileTimeout time.Duration, log zerolog.Logger) *Shell {
	if profileTimeout <= 0 {
		profileTimeout = 3 * time.Second
	}
	return &Shell{roles: roles, auth: auth, profileTimeout: profileTimeout, log: log}
}

// View builds the shell for path. The active entry is an exact match so that
// nested routes never highlight two entries.
func (s *Shell) View(session domain.Session, path string, collapsed bool) ShellView {
	current := normalizePath(path)
	entries := s.roles.NavigationEntriesFor(session.Role)

	view := ShellView{
		Role:      session.Role,
		RoleTitle: session.Role.Title(),
		HomeRoute: s.roles.LandingRouteFor(session.Role),
		Path:      current,
		Nav:       make([]NavItem, 0, len(entries)),
		Collapsed: collapsed,
	}
	for _, e := range entries {
		active := e.Route == current
		if active {
			view.ActiveTitle = e.Title
		}
		view.Nav = append(view.Nav, NavItem{NavigationEntry: e, Active: active})
	}

	if session.HasIdentity() {
		view.Header = NewHeader(session.FullName, session.Email)
	} else {
		view.HeaderPending = true
	}
	return view
}

// Header loads the identity header for sid. Failures degrade to an empty
// header; they are logged, never returned.
func (s *Shell) Header(ctx context.Context, sid string) Header {
	ctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	profile, err := s.auth.CurrentUser(ctx, sid)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile fetch failed, rendering blank header")
		return Header{}
	}
	return NewHeader(profile.FullName, profile.Email)
}

// NewHeader derives the avatar initials from the full name.
func NewHeader(fullName, email string) Header {
	var b strings.Builder
	for _, word := range strings.Fields(fullName) {
		r := []rune(word)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return Header{FullName: fullName, Email: email, Initials: b.String()}
}

func normalizePath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
