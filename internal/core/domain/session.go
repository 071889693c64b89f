package domain

import (
	"context"
	"time"
)

// Session is the server-held record of an authenticated browser.
// It is created on login and replaced as a whole, never patched.
type Session struct {
	UID         string    `json:"uid"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName,omitempty"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Validate enforces the completeness invariant: identity, role, token and
// expiry must all be present. FullName and Email may be loaded later.
func (s Session) Validate() error {
	if s.UID == "" || s.Username == "" || s.AccessToken == "" || s.ExpiresAt.IsZero() {
		return ErrIncompleteSession
	}
	if !s.Role.Known() {
		return ErrIncompleteSession
	}
	return nil
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasIdentity reports whether the header can be rendered without a profile fetch.
func (s Session) HasIdentity() bool {
	return s.FullName != "" && s.Email != ""
}

// Profile is the authenticated user's identity as reported by the backend.
type Profile struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session attached by the route guard, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}
