package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/api/middleware"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/service"
)

type stubAuditReader struct {
	gotUsername string
	gotLimit    int64
	events      []domain.LoginEvent
	err         error
}

func (s *stubAuditReader) RecentByUsername(_ context.Context, username string, limit int64) ([]domain.LoginEvent, error) {
	s.gotUsername, s.gotLimit = username, limit
	return s.events, s.err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return env
}

func apiContext(target string, s *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
	if s != nil {
		c.Set(middleware.ContextSession, *s)
	}
	return c, rec
}

func TestSessionHandler_Current(t *testing.T) {
	s := testSession(domain.RoleModerator)
	c, rec := apiContext("/api/session", &s)

	h := NewSessionHandler(service.NewRoleRouter(), nil, zerolog.Nop())
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var data sessionResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !env.Success || data.Username != "alice" || data.Role != "moderator" || data.HomeRoute != "/dashboard/moderator" {
		t.Fatalf("unexpected session payload: %+v", data)
	}
	if len(data.Navigation) != 9 || data.Navigation[0].Route != "/dashboard/moderator/project-status" {
		t.Fatalf("unexpected navigation: %+v", data.Navigation)
	}
	if containsToken(env.Data) {
		t.Fatalf("access token must never be exposed")
	}
}

func containsToken(raw json.RawMessage) bool {
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	_, ok := m["accessToken"]
	return ok
}

func TestSessionHandler_Activity(t *testing.T) {
	s := testSession(domain.RoleClient)
	reader := &stubAuditReader{events: []domain.LoginEvent{{Kind: domain.EventLoginSucceeded, Username: "alice"}}}
	c, rec := apiContext("/api/session/activity?limit=5", &s)

	h := NewSessionHandler(service.NewRoleRouter(), reader, zerolog.Nop())
	if err := h.Activity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if reader.gotUsername != "alice" || reader.gotLimit != 5 {
		t.Fatalf("unexpected query: %s/%d", reader.gotUsername, reader.gotLimit)
	}

	var data activityResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Events) != 1 || data.Events[0].Kind != domain.EventLoginSucceeded {
		t.Fatalf("unexpected events: %+v", data.Events)
	}
}

func TestSessionHandler_Activity_DefaultsAndErrors(t *testing.T) {
	s := testSession(domain.RoleClient)

	t.Run("default limit and empty list", func(t *testing.T) {
		reader := &stubAuditReader{}
		c, rec := apiContext("/api/session/activity", &s)
		if err := NewSessionHandler(service.NewRoleRouter(), reader, zerolog.Nop()).Activity(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if reader.gotLimit != defaultActivityLimit {
			t.Fatalf("expected default limit, got %d", reader.gotLimit)
		}
		var data map[string]any
		_ = json.Unmarshal(decodeEnvelope(t, rec).Data, &data)
		if events, ok := data["events"].([]any); !ok || len(events) != 0 {
			t.Fatalf("expected empty events array, got %v", data["events"])
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		c, rec := apiContext("/api/session/activity?limit=1000", &s)
		if err := NewSessionHandler(service.NewRoleRouter(), &stubAuditReader{}, zerolog.Nop()).Activity(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("audit disabled", func(t *testing.T) {
		c, rec := apiContext("/api/session/activity", &s)
		if err := NewSessionHandler(service.NewRoleRouter(), nil, zerolog.Nop()).Activity(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusServiceUnavailable || decodeEnvelope(t, rec).Error.Code != "AUDIT_DISABLED" {
			t.Fatalf("expected 503 AUDIT_DISABLED, got %d", rec.Code)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		boom := errors.New("mongo down")
		c, _ := apiContext("/api/session/activity", &s)
		err := NewSessionHandler(service.NewRoleRouter(), &stubAuditReader{err: boom}, zerolog.Nop()).Activity(c)
		if !errors.Is(err, boom) {
			t.Fatalf("expected repository error to reach the error handler, got %v", err)
		}
	})
}

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := apiContext("/health", nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandler_NoDependencies(t *testing.T) {
	c, rec := apiContext("/health/ready", nil)
	if err := NewReadinessHandler(nil, nil).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with nothing to probe, got %d", rec.Code)
	}
}

func TestReadinessHandler_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	c, rec := apiContext("/health/ready", nil)
	if err := NewReadinessHandler(nil, rdb).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("expected redis unhealthy, got %+v", resp.Dependencies)
	}
}
