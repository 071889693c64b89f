package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pls-platform/dashboard/internal/core/service"
	"github.com/pls-platform/dashboard/internal/devbackend"
	"github.com/pls-platform/dashboard/internal/infrastructure/backend"
	"github.com/pls-platform/dashboard/internal/infrastructure/db/memory"
)

var csrfField = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type app struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

// newApp wires the dashboard against an in-process development backend.
func newApp(t *testing.T, minimalLogin bool) *app {
	t.Helper()

	users, err := devbackend.Seed("password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	upstream := httptest.NewServer(devbackend.NewServer(users, devbackend.NewIssuer("e2e-secret-123", time.Hour), minimalLogin, zerolog.Nop()).Router())
	t.Cleanup(upstream.Close)

	rc, err := backend.NewClient(backend.Config{BaseURL: upstream.URL, Timeout: 2 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}

	store := memory.NewSessionStore()
	roles := service.NewRoleRouter()
	gateway := service.NewAuthGateway(rc, store, nil, time.Hour, zerolog.Nop())
	e, err := NewRouter(Deps{
		Store:   store,
		Gateway: gateway,
		Shell:   service.NewShell(roles, gateway, time.Second, zerolog.Nop()),
		Roles:   roles,
		Log:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &app{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *app) get(path string, headers ...string) (*http.Response, string) {
	a.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return a.do(req)
}

func (a *app) post(path string, form url.Values) (*http.Response, string) {
	a.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *app) do(req *http.Request) (*http.Response, string) {
	a.t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// csrf loads a page carrying a form and returns its token.
func (a *app) csrf(path string) string {
	a.t.Helper()
	_, body := a.get(path)
	m := csrfField.FindStringSubmatch(body)
	if m == nil {
		a.t.Fatalf("no csrf token on %s", path)
	}
	return m[1]
}

func (a *app) login(username string) *http.Response {
	a.t.Helper()
	token := a.csrf("/login")
	resp, _ := a.post("/login", url.Values{"username": {username}, "password": {"password"}, "_csrf": {token}})
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, status int, location string) {
	t.Helper()
	if resp.StatusCode != status || resp.Header.Get("Location") != location {
		t.Fatalf("expected %d to %q, got %d to %q", status, location, resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestRouter_LoginNavigateLogout(t *testing.T) {
	a := newApp(t, false)

	resp, body := a.get("/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Login to your PLS account") {
		t.Fatalf("root should serve the login page in place, got %d", resp.StatusCode)
	}

	resp, _ = a.get("/dashboard/client/projects")
	expectRedirect(t, resp, http.StatusFound, "/login")

	resp = a.login("client")
	expectRedirect(t, resp, http.StatusSeeOther, "/dashboard/client")

	resp, body = a.get("/dashboard/client/projects")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<title>Projects | PLS</title>") {
		t.Fatalf("expected projects page, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Carl Client") {
		t.Fatalf("identity from login should render inline")
	}

	resp, _ = a.get("/dashboard/admin/trash")
	expectRedirect(t, resp, http.StatusFound, "/dashboard/client")

	resp, _ = a.get("/dashboard")
	expectRedirect(t, resp, http.StatusFound, "/dashboard/client")

	resp, _ = a.get("/login")
	expectRedirect(t, resp, http.StatusFound, "/dashboard/client")

	resp, body = a.get("/api/session")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api session: %d", resp.StatusCode)
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Role      string `json:"role"`
			HomeRoute string `json:"homeRoute"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &env); err != nil || env.Data.Role != "client" || env.Data.HomeRoute != "/dashboard/client" {
		t.Fatalf("unexpected api session body: %s", body)
	}

	token := a.csrf("/dashboard/client")
	resp, _ = a.post("/logout", url.Values{"_csrf": {token}})
	expectRedirect(t, resp, http.StatusSeeOther, "/login")

	resp, _ = a.get("/dashboard/client")
	expectRedirect(t, resp, http.StatusFound, "/login")

	resp, _ = a.get("/api/session")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRouter_InvalidCredentials(t *testing.T) {
	a := newApp(t, false)
	token := a.csrf("/login")

	resp, body := a.post("/login", url.Values{"username": {"client"}, "password": {"wrong"}, "_csrf": {token}})
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "Invalid username or password") {
		t.Fatalf("expected inline invalid credentials, got %d", resp.StatusCode)
	}

	resp, _ = a.get("/dashboard/client")
	expectRedirect(t, resp, http.StatusFound, "/login")
}

func TestRouter_LoginRequiresCSRFToken(t *testing.T) {
	a := newApp(t, false)
	a.get("/login")

	resp, _ := a.post("/login", url.Values{"username": {"client"}, "password": {"password"}})
	if resp.StatusCode < 400 {
		t.Fatalf("post without csrf token must be rejected, got %d", resp.StatusCode)
	}
}

func TestRouter_AsyncHeader(t *testing.T) {
	a := newApp(t, true)
	expectRedirect(t, a.login("freelancer"), http.StatusSeeOther, "/dashboard/freelancer")

	_, body := a.get("/dashboard/freelancer")
	if !strings.Contains(body, `data-src="/dashboard/freelancer/header"`) {
		t.Fatalf("expected async header placeholder")
	}

	resp, body := a.get("/dashboard/freelancer/header", "HX-Request", "true")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Fay Freelancer") || !strings.Contains(body, "FF") {
		t.Fatalf("unexpected header fragment %d: %s", resp.StatusCode, body)
	}

	// The profile is now part of the session, so the next page renders it inline.
	_, body = a.get("/dashboard/freelancer/meetings")
	if !strings.Contains(body, "Fay Freelancer") || strings.Contains(body, "data-src=") {
		t.Fatalf("header should be inline once the profile is known")
	}
}

func TestRouter_FragmentWithoutSession(t *testing.T) {
	a := newApp(t, false)
	resp, _ := a.get("/dashboard/client/header", "HX-Request", "true")
	if resp.StatusCode != http.StatusUnauthorized || resp.Header.Get("HX-Redirect") != "/login" {
		t.Fatalf("expected 401 with HX-Redirect, got %d %q", resp.StatusCode, resp.Header.Get("HX-Redirect"))
	}
}

func TestRouter_LegacyAdministrator(t *testing.T) {
	a := newApp(t, false)
	expectRedirect(t, a.login("legacy"), http.StatusSeeOther, "/dashboard/admin")

	resp, _ := a.get("/dashboard/Administrator/trash")
	expectRedirect(t, resp, http.StatusFound, "/dashboard/admin/trash")

	resp, body := a.get("/dashboard/admin/trash")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<title>Trash | PLS</title>") {
		t.Fatalf("expected trash page, got %d", resp.StatusCode)
	}
}

func TestRouter_SidebarToggle(t *testing.T) {
	a := newApp(t, false)
	a.login("moderator")

	token := a.csrf("/dashboard/moderator/blogs")
	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+"/dashboard/moderator/sidebar", strings.NewReader(url.Values{"_csrf": {token}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", a.srv.URL+"/dashboard/moderator/blogs")
	resp, _ := a.do(req)
	expectRedirect(t, resp, http.StatusSeeOther, "/dashboard/moderator/blogs")

	_, body := a.get("/dashboard/moderator/blogs")
	if !strings.Contains(body, `class="dashboard collapsed"`) {
		t.Fatalf("rail should be collapsed after the toggle")
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	a := newApp(t, false)

	if resp, _ := a.get("/health"); resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}
	if resp, _ := a.get("/health/ready"); resp.StatusCode != http.StatusOK {
		t.Fatalf("ready: %d", resp.StatusCode)
	}

	a.get("/login")
	resp, body := a.get("/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "dashboard_http_requests_total") || !strings.Contains(body, "go_goroutines") {
		t.Fatalf("metrics should expose http and runtime metrics, got %d", resp.StatusCode)
	}

	resp, body = a.get("/swagger/doc.json")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "/api/session/activity") {
		t.Fatalf("swagger doc missing, got %d", resp.StatusCode)
	}

	resp, body = a.get("/api/session")
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, `"UNAUTHORIZED"`) {
		t.Fatalf("anonymous api call must get a 401 envelope, got %d %s", resp.StatusCode, body)
	}

	resp, body = a.get("/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, `"NOT_FOUND"`) {
		t.Fatalf("unknown route should be a 404 envelope, got %d %s", resp.StatusCode, body)
	}
}
