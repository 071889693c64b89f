package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":         RoleAdmin,
		"Administrator": RoleAdmin,
		"ADMIN":         RoleAdmin,
		" moderator ":   RoleModerator,
		"Client":        RoleClient,
		"freelancer":    RoleFreelancer,
		"superuser":     RoleUnknown,
		"":              RoleUnknown,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoleKnown(t *testing.T) {
	for _, r := range Roles {
		if !r.Known() {
			t.Fatalf("%q should be known", r)
		}
	}
	for _, r := range []Role{RoleUnknown, "Administrator", "Admin", "root"} {
		if r.Known() {
			t.Fatalf("%q must not be known", r)
		}
	}
}

func validSession() Session {
	return Session{
		UID:         "u-1",
		Username:    "alice",
		Role:        RoleClient,
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestSessionValidate(t *testing.T) {
	if err := validSession().Validate(); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	broken := map[string]func(*Session){
		"uid":          func(s *Session) { s.UID = "" },
		"username":     func(s *Session) { s.Username = "" },
		"token":        func(s *Session) { s.AccessToken = "" },
		"expiry":       func(s *Session) { s.ExpiresAt = time.Time{} },
		"unknown role": func(s *Session) { s.Role = "superuser" },
		"legacy role":  func(s *Session) { s.Role = "Administrator" },
	}
	for name, mutate := range broken {
		s := validSession()
		mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrIncompleteSession) {
			t.Fatalf("%s: expected ErrIncompleteSession, got %v", name, err)
		}
	}
}

func TestSessionExpiredAndIdentity(t *testing.T) {
	s := validSession()
	if s.Expired(time.Now()) {
		t.Fatalf("fresh session reported expired")
	}
	if !s.Expired(s.ExpiresAt) {
		t.Fatalf("session must be expired at its expiry instant")
	}
	if s.HasIdentity() {
		t.Fatalf("no identity without full name and email")
	}
	s.FullName, s.Email = "Alice", "a@example.com"
	if !s.HasIdentity() {
		t.Fatalf("expected identity")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := SessionFromContext(ctx); ok {
		t.Fatalf("empty context has no session")
	}
	s := validSession()
	if got, ok := SessionFromContext(WithSession(ctx, s)); !ok || got.Username != s.Username {
		t.Fatalf("session not carried by context")
	}

	if meta := RequestMetaFromContext(ctx); meta != (RequestMeta{}) {
		t.Fatalf("expected zero meta, got %+v", meta)
	}
	meta := RequestMeta{RemoteAddr: "10.0.0.1", UserAgent: "ua", RequestID: "r-1"}
	if got := RequestMetaFromContext(WithRequestMeta(ctx, meta)); got != meta {
		t.Fatalf("meta not carried by context: %+v", got)
	}
}

func TestAuthErrorMatchesOnReason(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("login: %w", NewAuthError(ReasonNetworkFailure, cause))

	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected match on network failure")
	}
	if errors.Is(err, ErrServerError) {
		t.Fatalf("must not match another reason")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable")
	}

	var ae *AuthError
	if !errors.As(err, &ae) || ae.Reason != ReasonNetworkFailure {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestDecodeData(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	got, err := DecodeData[payload](Envelope{Success: true, Data: json.RawMessage(`{"name":"x"}`)})
	if err != nil || got.Name != "x" {
		t.Fatalf("decode failed: %v %+v", err, got)
	}

	for _, raw := range []string{"", "null"} {
		if _, err := DecodeData[payload](Envelope{Success: true, Data: json.RawMessage(raw)}); !errors.Is(err, ErrEmptyData) {
			t.Fatalf("data %q: expected ErrEmptyData, got %v", raw, err)
		}
	}

	if _, err := DecodeData[payload](Envelope{Data: json.RawMessage(`[1,2]`)}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestEnvelopeMessage(t *testing.T) {
	cases := []struct {
		env  Envelope
		want string
	}{
		{Envelope{Error: &EnvelopeError{Code: "X", Message: "bad"}}, "bad"},
		{Envelope{Error: &EnvelopeError{Code: "X"}}, "X"},
		{Envelope{StatusCode: 502}, "request failed with status 502"},
	}
	for _, tc := range cases {
		if got := tc.env.Message(); got != tc.want {
			t.Fatalf("Message() = %q, want %q", got, tc.want)
		}
	}
}
