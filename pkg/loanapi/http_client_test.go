package loanapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg HTTPConfig) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.BaseURL = server.URL + "/"
	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{BaseURL: "  "})
	require.EqualError(t, err, "loanapi: base url is required")
}

func TestNewHTTPClientDefaultsTimeout(t *testing.T) {
	client, err := NewHTTPClient(HTTPConfig{BaseURL: "http://api.local/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.client.Timeout)
	assert.Equal(t, "http://api.local", client.BaseURL())
}

func TestBaseURLFromEnv(t *testing.T) {
	t.Setenv(envBaseURL, "")
	t.Setenv(envLegacyBaseURL, "")
	assert.Equal(t, DefaultBaseURL, BaseURLFromEnv())

	t.Setenv(envLegacyBaseURL, "http://legacy:9000")
	assert.Equal(t, "http://legacy:9000", BaseURLFromEnv())

	t.Setenv(envBaseURL, "http://primary:8000")
	assert.Equal(t, "http://primary:8000", BaseURLFromEnv())
}

func TestHTTPClientDashboardOverview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathOverview {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("expected json content type, got %s", got)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Fatalf("expected request id header")
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"total_leads":150,"revenue_this_month":875000,"conversion_rate":28.5,"goal_progress":82.3,"last_updated":"2024-01-15T10:30:00.123456"}}`))
	}, HTTPConfig{Session: NewMemorySession("secret")})

	overview, err := client.DashboardOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150, overview.TotalLeads)
	assert.Equal(t, 875000.0, overview.RevenueThisMonth)
	assert.Equal(t, 2024, overview.LastUpdated.Year())
}

func TestHTTPClientOmitsEmptyBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Fatalf("expected no auth header, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"message":"Loan Officer Performance Intelligence API","status":"active","version":"1.0.0"}`))
	}, HTTPConfig{Session: NewMemorySession("")})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "active", health.Status)
}

func TestHTTPClientLeadScoringReadsModelInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"id": 1, "name": "Sarah Johnson", "probability_score": 92.3, "urgency": "High", "created_date": "2024-01-15T00:00:00"}],
			"model_info": {"accuracy": 0.85, "last_trained": "2024-01-15", "features_used": ["credit_score"]}
		}`))
	}, HTTPConfig{})

	result, err := client.LeadScoring(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, dashboard.UrgencyHigh, result.Leads[0].Urgency)
	require.NotNil(t, result.ModelInfo)
	assert.Equal(t, 0.85, result.ModelInfo.Accuracy)
}

func TestHTTPClientCreateLead(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathLeads {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["email"] != "jane@example.com" {
			t.Fatalf("unexpected payload %#v", payload)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Lead created successfully","data":{"name":"Jane Doe","probability_score":81.2},"lead_score":81.2}`))
	}, HTTPConfig{})

	result, err := client.CreateLead(context.Background(), dashboard.CreateLeadInput{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Lead created successfully", result.Message)
	assert.Equal(t, 81.2, result.LeadScore)
	assert.Equal(t, "Jane Doe", result.Lead.Name)
}

func TestHTTPClientUnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"data":null}`))
	}, HTTPConfig{})

	_, err := client.Recommendations(context.Background())
	require.ErrorIs(t, err, ErrUnsuccessful)
}

func TestHTTPClientNon2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}, HTTPConfig{})

	_, err := client.PerformanceTrends(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, PathPerformance, apiErr.Path)
	assert.Contains(t, apiErr.Body, "boom")
	assert.False(t, IsUnauthorized(err))
}

func TestHTTPClientUnauthorizedClearsSession(t *testing.T) {
	session := NewMemorySession("expired")
	var redirected atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, HTTPConfig{
		Session:        session,
		OnUnauthorized: func(context.Context) { redirected.Add(1) },
	})

	_, err := client.RevenueForecast(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Empty(t, session.Token())
	assert.EqualValues(t, 1, redirected.Load())
}

func TestHTTPClientWithSessionIsolatesTokens(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"data":{"stages":[]}}`))
	}, HTTPConfig{Session: NewMemorySession("base")})

	_, err := client.WithSession(NewMemorySession("request")).PipelineStages(context.Background())
	require.NoError(t, err)
	_, err = client.PipelineStages(context.Background())
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer request", "Bearer base"}, seen)
}

func TestHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	_, err = client.DashboardOverview(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "loanapi: GET /api/dashboard/overview"), err.Error())
}

func TestHTTPClientEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, HTTPConfig{})
	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response body")
}

func TestHTTPClientPrefersContextSession(t *testing.T) {
	base := NewMemorySession("base")
	scoped := NewMemorySession("cookie-token")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer cookie-token" {
			t.Fatalf("expected scoped token, got %s", got)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}, HTTPConfig{Session: base})

	ctx := ContextWithSession(context.Background(), scoped)
	_, err := client.DashboardOverview(ctx)
	require.True(t, IsUnauthorized(err))
	assert.Empty(t, scoped.Token())
	assert.Equal(t, "base", base.Token())
}
