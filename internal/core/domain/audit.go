package domain

import (
	"context"
	"time"
)

// LoginEventKind names an entry of the login audit trail.
type LoginEventKind string

const (
	EventLoginSucceeded LoginEventKind = "login_succeeded"
	EventLoginFailed    LoginEventKind = "login_failed"
	EventLogout         LoginEventKind = "logout"
)

// LoginEvent records one authentication action for the audit trail.
type LoginEvent struct {
	Kind       LoginEventKind `json:"kind"`
	Username   string         `json:"username"`
	Role       Role           `json:"role,omitempty"`
	Reason     AuthReason     `json:"reason,omitempty"`
	RemoteAddr string         `json:"remote_addr,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RequestMeta carries the transport details an audit entry is stamped with.
type RequestMeta struct {
	RemoteAddr string
	UserAgent  string
	RequestID  string
}

type requestMetaContextKey struct{}

// WithRequestMeta returns a copy of ctx carrying m.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaContextKey{}, m)
}

// RequestMetaFromContext returns the request details attached by the HTTP layer.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaContextKey{}).(RequestMeta)
	return m
}
