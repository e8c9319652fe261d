package gorouter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	require.Error(t, err)

	var r router.Router[struct{}]
	err = Register(Config[struct{}]{Router: r, Controller: dashboard.NewController(dashboard.ControllerOptions{})})
	require.EqualError(t, err, "gorouter: router is required")
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Login: "/signin"})
	assert.Equal(t, RouteConfig{
		State:    "/_state/:page",
		Leads:    "/leads",
		Login:    "/signin",
		Health:   "/healthz",
		Assets:   dashboard.DefaultEChartsAssetsPath,
		Activity: "/ws/activity",
	}, routes)
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", loginURL("", "/login"))
	assert.Equal(t, "/login", loginURL("/", "/login"))
	assert.Equal(t, "/admin/loans/login", loginURL("/admin/loans", "/login"))
	assert.Equal(t, "/admin/loans/login", loginURL("/admin/loans/", "login"))
}

// backend answers every loan API call with status and remembers the
// Authorization headers it saw.
type backend struct {
	mu     sync.Mutex
	status int
	auth   []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = w.Write([]byte(`{"detail":"rejected"}`))
}

func (b *backend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.auth) == 0 {
		return ""
	}
	return b.auth[len(b.auth)-1]
}

func newTestApp(t *testing.T, upstream *backend, basePath string) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := loanapi.NewHTTPClient(loanapi.HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	service := dashboard.NewService(dashboard.Options{API: client})
	templates, err := dashboard.NewTemplateRenderer()
	require.NoError(t, err)
	controller := dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: templates})

	server := router.NewFiberAdapter()
	require.NoError(t, Register(Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		BasePath:   basePath,
	}))
	return server.WrappedRouter()
}

func doRequest(t *testing.T, app *fiber.App, method, target string, cookie string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRegisterRedirectsRejectedSession(t *testing.T) {
	upstream := &backend{status: http.StatusUnauthorized}
	app := newTestApp(t, upstream, "")

	for _, target := range []string{"/", "/dashboard", "/lead-scoring", "/_state/insights"} {
		t.Run(target, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodGet, target, "theme=dark; authToken=secret")
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/login", resp.Header.Get("Location"))
			assert.Equal(t, httpapi.ExpiredCookie(), resp.Header.Get("Set-Cookie"))
			assert.Contains(t, body, "session expired")
			assert.Equal(t, "Bearer secret", upstream.lastAuth())
		})
	}
}

func TestRegisterRendersFallbackPages(t *testing.T) {
	upstream := &backend{status: http.StatusInternalServerError}
	app := newTestApp(t, upstream, "")

	for _, id := range dashboard.AllPages {
		t.Run(string(id), func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodGet, id.Path(), "")
			require.Equal(t, http.StatusOK, resp.StatusCode, body)
			assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
			assert.Contains(t, body, dashboard.BrandName)
			assert.Contains(t, body, id.ErrorMessage()+" - "+dashboard.FallbackNotice)
			assert.Empty(t, upstream.lastAuth())
		})
	}
}

func TestRegisterServesPageState(t *testing.T) {
	app := newTestApp(t, &backend{status: http.StatusInternalServerError}, "")

	resp, body := doRequest(t, app, http.MethodGet, "/_state/lead-scoring?filter=high&sort=amount", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var view struct {
		Meta    dashboard.PageMeta `json:"meta"`
		Showing string             `json:"showing"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &view))
	assert.Equal(t, dashboard.PageLeadScoring, view.Meta.ID)
	assert.True(t, view.Meta.Fallback)
	assert.Equal(t, "Showing 2 of 2 leads", view.Showing)

	resp, _ = doRequest(t, app, http.MethodGet, "/_state/settings", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterRedirectUsesBasePath(t *testing.T) {
	app := newTestApp(t, &backend{status: http.StatusUnauthorized}, "/admin/loans")

	resp, _ := doRequest(t, app, http.MethodGet, "/admin/loans/insights", "authToken=secret")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/loans/login", resp.Header.Get("Location"))

	resp, body := doRequest(t, app, http.MethodGet, "/admin/loans/login", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, dashboard.BrandName)
}
