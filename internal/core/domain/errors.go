package domain

import (
	"errors"
	"fmt"
)

// AuthReason classifies why an authentication operation failed.
type AuthReason string

const (
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	ReasonUnauthorized       AuthReason = "unauthorized"
	ReasonNetworkFailure     AuthReason = "network_failure"
	ReasonServerError        AuthReason = "server_error"
)

// AuthError is returned by the auth gateway. errors.Is matches on Reason,
// so callers compare against the sentinels below.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + string(e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Reason == e.Reason
}

// NewAuthError wraps cause under reason.
func NewAuthError(reason AuthReason, cause error) *AuthError {
	return &AuthError{Reason: reason, Err: cause}
}

var (
	ErrInvalidCredentials = &AuthError{Reason: ReasonInvalidCredentials}
	ErrUnauthorized       = &AuthError{Reason: ReasonUnauthorized}
	ErrNetworkFailure     = &AuthError{Reason: ReasonNetworkFailure}
	ErrServerError        = &AuthError{Reason: ReasonServerError}
)

// ErrNetwork is a transport failure: no HTTP response was received.
var ErrNetwork = errors.New("network error")

// ErrStorage is a session storage fault. It never reaches the user.
var ErrStorage = errors.New("session storage unavailable")

var ErrIncompleteSession = errors.New("incomplete session")
var ErrSessionExpired = errors.New("session expired")
var ErrEmptyData = errors.New("envelope has no data")
