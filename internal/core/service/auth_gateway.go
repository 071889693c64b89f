package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/api/metrics"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
)

// Backend auth endpoints.
const (
	LoginPath   = "/auth/login"
	ProfilePath = "/auth/me"
	LogoutPath  = "/auth/logout"
)

var (
	errNoSession        = errors.New("no session")
	errMissingLoginData = errors.New("login response is missing identity fields")
	errExpiredToken     = errors.New("backend issued an already expired token")
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	AccessToken string `json:"accessToken"`
	UID         string `json:"uid"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// AuthGateway implements login, profile lookup and logout against the backend.
type AuthGateway struct {
	client     ports.ResourceClient
	store      ports.SessionStore
	audit      ports.AuditSink
	sessionTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewAuthGateway wires the gateway. sessionTTL bounds sessions whose access
// token carries no readable expiry. audit may be nil.
func NewAuthGateway(client ports.ResourceClient, store ports.SessionStore, audit ports.AuditSink, sessionTTL time.Duration, log zerolog.Logger) *AuthGateway {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if audit == nil {
		audit = discardAudit{}
	}
	return &AuthGateway{
		client:     client,
		store:      store,
		audit:      audit,
		sessionTTL: sessionTTL,
		now:        time.Now,
		log:        log,
	}
}

// Login exchanges credentials for a Session. The session is not persisted.
func (g *AuthGateway) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(domain.ReasonInvalidCredentials, errors.New("empty credentials")))
	}

	env, err := g.client.Request(ctx, http.MethodPost, LoginPath, loginRequest{Username: username, Password: password}, nil)
	if err != nil {
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(domain.ReasonNetworkFailure, err))
	}

	if !env.Success {
		// Only a real envelope rejected with a 4xx means bad credentials. A
		// foreign body (wrong base URL, proxy page) is a server-side fault.
		reason := domain.ReasonServerError
		if !env.Malformed() && env.StatusCode >= http.StatusBadRequest && env.StatusCode < http.StatusInternalServerError {
			reason = domain.ReasonInvalidCredentials
		}
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(reason, errors.New(env.Message())))
	}

	data, err := domain.DecodeData[loginData](env)
	if err != nil {
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(domain.ReasonServerError, err))
	}

	session := domain.Session{
		UID:         data.UID,
		Username:    data.Username,
		FullName:    data.FullName,
		Email:       data.Email,
		Role:        domain.ParseRole(data.Role),
		AccessToken: data.AccessToken,
		ExpiresAt:   g.expiryOf(data.AccessToken),
	}
	if err := session.Validate(); err != nil {
		g.log.Warn().Str("username", username).Str("role", data.Role).Msg("backend returned an unusable login payload")
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(domain.ReasonServerError, errMissingLoginData))
	}
	if session.Expired(g.now()) {
		return domain.Session{}, g.loginFailed(ctx, username, domain.NewAuthError(domain.ReasonServerError, errExpiredToken))
	}

	metrics.LoginsTotal.WithLabelValues("succeeded").Inc()
	g.audit.Enqueue(g.event(ctx, domain.EventLoginSucceeded, session.Username, session.Role, ""))
	g.log.Info().Str("username", session.Username).Str("role", session.Role.String()).Msg("login succeeded")

	return session, nil
}

// CurrentUser fetches the profile of the user behind sid. Once fetched, a
// session lacking display identity is replaced with one that carries it.
func (g *AuthGateway) CurrentUser(ctx context.Context, sid string) (domain.Profile, error) {
	session, ok := g.store.Get(ctx, sid)
	if !ok {
		metrics.ProfileFetchesTotal.WithLabelValues("unauthorized").Inc()
		return domain.Profile{}, domain.NewAuthError(domain.ReasonUnauthorized, errNoSession)
	}

	env, err := g.client.Request(domain.WithSession(ctx, session), http.MethodGet, ProfilePath, nil, nil)
	if err != nil {
		metrics.ProfileFetchesTotal.WithLabelValues("failed").Inc()
		return domain.Profile{}, domain.NewAuthError(domain.ReasonNetworkFailure, err)
	}

	if !env.Success {
		if env.StatusCode == http.StatusUnauthorized || env.StatusCode == http.StatusForbidden {
			metrics.ProfileFetchesTotal.WithLabelValues("unauthorized").Inc()
			return domain.Profile{}, domain.NewAuthError(domain.ReasonUnauthorized, errors.New(env.Message()))
		}
		metrics.ProfileFetchesTotal.WithLabelValues("failed").Inc()
		return domain.Profile{}, domain.NewAuthError(domain.ReasonServerError, errors.New(env.Message()))
	}

	profile, err := domain.DecodeData[domain.Profile](env)
	if err != nil {
		metrics.ProfileFetchesTotal.WithLabelValues("failed").Inc()
		return domain.Profile{}, domain.NewAuthError(domain.ReasonServerError, err)
	}
	metrics.ProfileFetchesTotal.WithLabelValues("ok").Inc()

	if !session.HasIdentity() && (profile.FullName != "" || profile.Email != "") {
		updated := session
		updated.FullName = profile.FullName
		updated.Email = profile.Email
		replaced, err := g.store.Replace(ctx, sid, updated)
		switch {
		case err != nil:
			g.log.Warn().Err(err).Str("username", session.Username).Msg("could not store profile on session")
		case !replaced:
			g.log.Debug().Str("username", session.Username).Msg("session ended during profile fetch")
		}
	}

	return profile, nil
}

// Logout invalidates the token upstream on a best-effort basis, then clears
// the local session. Local state is authoritative, so it never fails.
func (g *AuthGateway) Logout(ctx context.Context, sid string) {
	session, ok := g.store.Get(ctx, sid)
	if ok {
		env, err := g.client.Request(domain.WithSession(ctx, session), http.MethodPost, LogoutPath, nil, nil)
		switch {
		case err != nil:
			g.log.Warn().Err(err).Str("username", session.Username).Msg("backend logout failed")
		case !env.Success:
			g.log.Warn().Str("username", session.Username).Str("error", env.Message()).Msg("backend rejected logout")
		}
	}

	if err := g.store.Clear(ctx, sid); err != nil {
		g.log.Warn().Err(err).Msg("clear session failed")
	}

	metrics.LogoutsTotal.Inc()
	if ok {
		g.audit.Enqueue(g.event(ctx, domain.EventLogout, session.Username, session.Role, ""))
	}
}

func (g *AuthGateway) loginFailed(ctx context.Context, username string, err *domain.AuthError) error {
	metrics.LoginsTotal.WithLabelValues(string(err.Reason)).Inc()
	g.audit.Enqueue(g.event(ctx, domain.EventLoginFailed, username, domain.RoleUnknown, err.Reason))

	ev := g.log.Info()
	if err.Reason != domain.ReasonInvalidCredentials {
		ev = g.log.Warn()
	}
	ev.Err(err).Str("username", username).Msg("login failed")
	return err
}

func (g *AuthGateway) event(ctx context.Context, kind domain.LoginEventKind, username string, role domain.Role, reason domain.AuthReason) domain.LoginEvent {
	meta := domain.RequestMetaFromContext(ctx)
	return domain.LoginEvent{
		Kind:       kind,
		Username:   username,
		Role:       role,
		Reason:     reason,
		RemoteAddr: meta.RemoteAddr,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
		OccurredAt: g.now().UTC(),
	}
}

// expiryOf reads the exp claim of a JWT access token without verifying it;
// the backend remains the verifier. Opaque tokens get the configured TTL.
func (g *AuthGateway) expiryOf(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time.UTC()
		}
	}
	return g.now().Add(g.sessionTTL).UTC()
}

type discardAudit struct{}

func (discardAudit) Enqueue(domain.LoginEvent) {}
