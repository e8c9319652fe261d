package loanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

const (
	// DefaultBaseURL is used when neither the config nor the environment name a backend.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	envBaseURL       = "LOAN_API_URL"
	envLegacyBaseURL = "REACT_APP_API_URL"
	maxErrorBody     = 512
)

// Backend paths.
const (
	PathHealth          = "/"
	PathOverview        = "/api/dashboard/overview"
	PathLeadScoring     = "/api/leads/scoring"
	PathPerformance     = "/api/performance/trends"
	PathForecast        = "/api/forecasting/revenue"
	PathRecommendations = "/api/insights/recommendations"
	PathPipeline        = "/api/pipeline/stages"
	PathLeads           = "/api/leads"
)

// HTTPConfig configures the HTTP loan API client.
type HTTPConfig struct {
	BaseURL        string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Session        Session
	OnUnauthorized func(ctx context.Context)
	Logger         zerolog.Logger
}

// HTTPClient talks to the loan backend over REST.
type HTTPClient struct {
	baseURL        string
	client         *http.Client
	session        Session
	onUnauthorized func(ctx context.Context)
	logger         zerolog.Logger
	newRequestID   func() string
}

var _ dashboard.LoanAPI = (*HTTPClient)(nil)

// BaseURLFromEnv returns LOAN_API_URL, then REACT_APP_API_URL, then the default.
func BaseURLFromEnv() string {
	for _, key := range []string{envBaseURL, envLegacyBaseURL} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return DefaultBaseURL
}

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("loanapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	session := cfg.Session
	if session == nil {
		session = anonymousSession{}
	}
	return &HTTPClient{
		baseURL:        base,
		client:         httpClient,
		session:        session,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         cfg.Logger,
		newRequestID:   uuid.NewString,
	}, nil
}

// WithSession returns a shallow copy that reads the token from session.
func (c *HTTPClient) WithSession(session Session) *HTTPClient {
	clone := *c
	if session == nil {
		session = anonymousSession{}
	}
	clone.session = session
	return &clone
}

// WithUnauthorizedHandler returns a shallow copy that calls fn after a 401.
func (c *HTTPClient) WithUnauthorizedHandler(fn func(ctx context.Context)) *HTTPClient {
	clone := *c
	clone.onUnauthorized = fn
	return &clone
}

// BaseURL returns the normalized backend address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) DashboardOverview(ctx context.Context) (dashboard.DashboardSnapshot, error) {
	var env envelope[dashboard.DashboardSnapshot]
	if err := c.call(ctx, http.MethodGet, PathOverview, nil, &env); err != nil {
		return dashboard.DashboardSnapshot{}, err
	}
	return env.Data, nil
}

// LeadScoring returns the scored leads; model metadata sits beside data in the envelope.
func (c *HTTPClient) LeadScoring(ctx context.Context) (dashboard.LeadScoringResult, error) {
	var env envelope[[]dashboard.Lead]
	if err := c.call(ctx, http.MethodGet, PathLeadScoring, nil, &env); err != nil {
		return dashboard.LeadScoringResult{}, err
	}
	return dashboard.LeadScoringResult{Leads: env.Data, ModelInfo: env.ModelInfo}, nil
}

func (c *HTTPClient) PerformanceTrends(ctx context.Context) (dashboard.PerformanceTrends, error) {
	var env envelope[dashboard.PerformanceTrends]
	if err := c.call(ctx, http.MethodGet, PathPerformance, nil, &env); err != nil {
		return dashboard.PerformanceTrends{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) RevenueForecast(ctx context.Context) (dashboard.RevenueForecast, error) {
	var env envelope[dashboard.RevenueForecast]
	if err := c.call(ctx, http.MethodGet, PathForecast, nil, &env); err != nil {
		return dashboard.RevenueForecast{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) Recommendations(ctx context.Context) ([]dashboard.Recommendation, error) {
	var env envelope[[]dashboard.Recommendation]
	if err := c.call(ctx, http.MethodGet, PathRecommendations, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) PipelineStages(ctx context.Context) (dashboard.PipelineStages, error) {
	var env envelope[dashboard.PipelineStages]
	if err := c.call(ctx, http.MethodGet, PathPipeline, nil, &env); err != nil {
		return dashboard.PipelineStages{}, err
	}
	return env.Data, nil
}

// CreateLead posts a new lead and returns it with the backend-assigned score.
func (c *HTTPClient) CreateLead(ctx context.Context, input dashboard.CreateLeadInput) (dashboard.CreateLeadResult, error) {
	var env envelope[dashboard.Lead]
	if err := c.call(ctx, http.MethodPost, PathLeads, input, &env); err != nil {
		return dashboard.CreateLeadResult{}, err
	}
	return dashboard.CreateLeadResult{
		Message:   env.Message,
		Lead:      env.Data,
		LeadScore: env.LeadScore,
	}, nil
}

// Health is the only endpoint that answers without the envelope.
func (c *HTTPClient) Health(ctx context.Context) (dashboard.HealthStatus, error) {
	var status dashboard.HealthStatus
	if err := c.call(ctx, http.MethodGet, PathHealth, nil, &status); err != nil {
		return dashboard.HealthStatus{}, err
	}
	return status, nil
}

type envelope[T any] struct {
	Success   *bool                    `json:"success"`
	Data      T                        `json:"data"`
	ModelInfo *dashboard.LeadModelInfo `json:"model_info,omitempty"`
	Message   string                   `json:"message,omitempty"`
	LeadScore float64                  `json:"lead_score,omitempty"`
}

func (e envelope[T]) failed() bool {
	return e.Success != nil && !*e.Success
}

type outcome interface{ failed() bool }

// call runs do and logs any failure with the request coordinates.
func (c *HTTPClient) call(ctx context.Context, method, path string, payload, target any) error {
	requestID := c.newRequestID()
	status, err := c.do(ctx, requestID, method, path, payload, target)
	if err == nil {
		if o, ok := target.(outcome); ok && o.failed() {
			err = fmt.Errorf("%w: %s %s", ErrUnsuccessful, method, path)
		}
	}
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("request_id", requestID).
			Msg("loan api request failed")
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, requestID, method, path string, payload, target any) (int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("loanapi: encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("loanapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	session := c.session
	if scoped, ok := SessionFromContext(ctx); ok {
		session = scoped
	}
	if token := session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("loanapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			session.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx)
			}
		}
		return resp.StatusCode, apiErr
	}
	if target == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("loanapi: %s %s: empty response body", method, path)
		}
		return resp.StatusCode, fmt.Errorf("loanapi: decode response: %w", err)
	}
	return resp.StatusCode, nil
}
