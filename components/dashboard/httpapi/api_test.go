package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[T, R any] struct {
	last   T
	calls  int
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(ctx context.Context, msg T) (R, error) {
	s.last = msg
	s.calls++
	return s.result, s.err
}

func TestHandleCreateLead(t *testing.T) {
	create := &stubCommander[commands.CreateLeadInput]{}
	api := &Handlers{CreateLead: create}
	buf, _ := json.Marshal(map[string]any{"name": "Jane Doe", "email": "jane@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleCreateLead(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if create.calls != 1 || create.last.Lead.Email != "jane@example.com" || create.last.Result == nil {
		t.Fatalf("expected create to execute with payload, got %+v", create.last)
	}
}

func TestHandleCreateLeadBadJSON(t *testing.T) {
	api := &Handlers{CreateLead: &stubCommander[commands.CreateLeadInput]{}}
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.HandleCreateLead(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCreateLeadValidationError(t *testing.T) {
	input := dashboard.CreateLeadInput{Name: "Jane"}
	verr := dashboard.ValidateLeadInput(nil, input)
	api := &Handlers{CreateLead: &stubCommander[commands.CreateLeadInput]{err: verr}}
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"name":"Jane"}`))
	rec := httptest.NewRecorder()
	api.HandleCreateLead(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid lead, got %d", rec.Code)
	}
}

func TestHandlePageState(t *testing.T) {
	pages := &stubQuerier[queries.PageViewInput, any]{result: map[string]string{"page": "leads"}}
	api := &Handlers{PageView: pages}
	req := httptest.NewRequest(http.MethodGet, "/_state/lead-scoring?filter=high&sort=amount", nil)
	rec := httptest.NewRecorder()
	api.HandlePageState(rec, req, "lead-scoring")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if pages.last.Page != dashboard.PageLeadScoring || pages.last.Params.Filter != dashboard.FilterHigh || pages.last.Params.Sort != dashboard.SortByAmount {
		t.Fatalf("unexpected query input %+v", pages.last)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json, got %s", ct)
	}
}

func TestHandlePageStateUnknownPage(t *testing.T) {
	pages := &stubQuerier[queries.PageViewInput, any]{}
	api := &Handlers{PageView: pages}
	rec := httptest.NewRecorder()
	api.HandlePageState(rec, httptest.NewRequest(http.MethodGet, "/_state/settings", nil), "settings")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if pages.calls != 0 {
		t.Fatalf("unknown pages must not be queried")
	}
}

func TestHandleHealthReportsUpstream(t *testing.T) {
	health := &stubQuerier[struct{}, dashboard.HealthStatus]{result: dashboard.FixtureHealthStatus()}
	api := &Handlers{Health: health}
	rec := httptest.NewRecorder()
	api.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var report HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "ok" || report.Upstream == nil {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestHandleHealthDegraded(t *testing.T) {
	health := &stubQuerier[struct{}, dashboard.HealthStatus]{err: errors.New("connection refused")}
	api := &Handlers{Health: health}
	rec := httptest.NewRecorder()
	api.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 while process is up, got %d", rec.Code)
	}
	var report HealthReport
	_ = json.Unmarshal(rec.Body.Bytes(), &report)
	if report.Status != "degraded" || report.UpstreamError != "connection refused" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", dashboard.ErrUnknownPage), http.StatusNotFound},
		{&loanapi.APIError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized},
		{&loanapi.APIError{StatusCode: http.StatusUnprocessableEntity}, http.StatusUnprocessableEntity},
		{&loanapi.APIError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

type recordingBackend struct {
	status int
	auth   chan string
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case b.auth <- r.Header.Get("Authorization"):
	default:
	}
	w.WriteHeader(b.status)
	_, _ = w.Write([]byte(`{"detail":"rejected"}`))
}

func newTestMux(t *testing.T, status int) (*http.ServeMux, *recordingBackend) {
	t.Helper()
	upstream := &recordingBackend{status: status, auth: make(chan string, 16)}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := loanapi.NewHTTPClient(loanapi.HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewHTTPClient returned error: %v", err)
	}
	service := dashboard.NewService(dashboard.Options{API: client})
	templates, err := dashboard.NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer returned error: %v", err)
	}
	handlers := &Handlers{
		Controller: dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: templates}),
		CreateLead: commands.NewCreateLeadCommand(service, nil),
		PageView:   queries.NewPageViewQuery(service),
		Health:     queries.NewHealthQuery(service),
	}
	mux := http.NewServeMux()
	handlers.Mount(mux)
	return mux, upstream
}

func TestMountForwardsTokenAndRedirectsOnRejection(t *testing.T) {
	mux, upstream := newTestMux(t, http.StatusUnauthorized)
	for _, target := range []string{"/", "/insights", "/_state/forecasting"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "secret"})
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != DefaultLoginPath {
			t.Fatalf("%s: expected login redirect, got %q", target, loc)
		}
		if cookie := rec.Header().Get("Set-Cookie"); cookie != ExpiredCookie() {
			t.Fatalf("%s: expected cookie cleared, got %q", target, cookie)
		}
		if auth := <-upstream.auth; auth != "Bearer secret" {
			t.Fatalf("%s: expected caller token upstream, got %q", target, auth)
		}
	}
}

func TestMountCreateLeadRedirectsOnRejection(t *testing.T) {
	mux, _ := newTestMux(t, http.StatusUnauthorized)
	body, _ := json.Marshal(map[string]any{
		"name":           "Lisa Brown",
		"email":          "lisa.brown@email.com",
		"phone":          "(555) 345-6789",
		"credit_score":   720,
		"income":         95000,
		"loan_amount":    380000,
		"debt_to_income": 0.3,
		"loan_type":      "Conventional",
		"stage":          "New",
	})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMountRendersFallbackPages(t *testing.T) {
	mux, _ := newTestMux(t, http.StatusInternalServerError)
	for _, id := range dashboard.AllPages {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, id.Path(), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", id, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), id.ErrorMessage()+" - "+dashboard.FallbackNotice) {
			t.Fatalf("%s: expected fallback banner", id)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultLoginPath, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), dashboard.BrandName) {
		t.Fatalf("expected login page, got %d", rec.Code)
	}
}
