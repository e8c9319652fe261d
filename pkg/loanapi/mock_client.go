package loanapi

import (
	"context"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

// MockData seeds deterministic loan API responses for tests or local demos.
type MockData struct {
	Overview        dashboard.DashboardSnapshot
	Leads           dashboard.LeadScoringResult
	Performance     dashboard.PerformanceTrends
	Forecast        dashboard.RevenueForecast
	Recommendations []dashboard.Recommendation
	Pipeline        dashboard.PipelineStages
	Health          dashboard.HealthStatus
	// LeadScore is the score assigned to created leads.
	LeadScore float64
	// Err, when set, is returned by every call.
	Err error
}

// FixtureMockData returns the demo dataset shown when the backend is down.
func FixtureMockData() MockData {
	return MockData{
		Overview:        dashboard.FixtureDashboardSnapshot(),
		Leads:           dashboard.FixtureLeads(),
		Performance:     dashboard.FixturePerformanceTrends(),
		Forecast:        dashboard.FixtureRevenueForecast(),
		Recommendations: dashboard.FixtureRecommendations(),
		Pipeline:        dashboard.FixturePipelineStages(),
		Health:          dashboard.FixtureHealthStatus(),
		LeadScore:       75,
	}
}

// MockClient implements dashboard.LoanAPI using in-memory fixtures.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	created []dashboard.Lead
	now     func() time.Time
}

var _ dashboard.LoanAPI = (*MockClient)(nil)

// NewMockClient builds a mock loan API client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data, now: time.Now}
}

func (c *MockClient) DashboardOverview(context.Context) (dashboard.DashboardSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.DashboardSnapshot{}, c.data.Err
	}
	return c.data.Overview, nil
}

// LeadScoring returns the seeded leads followed by any leads created through the mock.
func (c *MockClient) LeadScoring(context.Context) (dashboard.LeadScoringResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.LeadScoringResult{}, c.data.Err
	}
	out := dashboard.CloneLeadScoring(c.data.Leads)
	out.Leads = append(out.Leads, c.created...)
	return out, nil
}

func (c *MockClient) PerformanceTrends(context.Context) (dashboard.PerformanceTrends, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.PerformanceTrends{}, c.data.Err
	}
	out := c.data.Performance
	out.MonthlyTrends = append([]dashboard.MonthlyTrend(nil), out.MonthlyTrends...)
	out.WeeklyTrends = append([]dashboard.WeeklyTrend(nil), out.WeeklyTrends...)
	return out, nil
}

func (c *MockClient) RevenueForecast(context.Context) (dashboard.RevenueForecast, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.RevenueForecast{}, c.data.Err
	}
	out := c.data.Forecast
	out.HistoricalData = append([]dashboard.HistoricalRevenue(nil), out.HistoricalData...)
	out.ForecastData = append([]dashboard.ForecastMonth(nil), out.ForecastData...)
	out.MarketFactors = append([]dashboard.MarketFactor(nil), out.MarketFactors...)
	return out, nil
}

func (c *MockClient) Recommendations(context.Context) ([]dashboard.Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return nil, c.data.Err
	}
	out := make([]dashboard.Recommendation, len(c.data.Recommendations))
	for i, rec := range c.data.Recommendations {
		rec.ActionItems = append([]string(nil), rec.ActionItems...)
		out[i] = rec
	}
	return out, nil
}

func (c *MockClient) PipelineStages(context.Context) (dashboard.PipelineStages, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.PipelineStages{}, c.data.Err
	}
	out := c.data.Pipeline
	out.Stages = append([]dashboard.PipelineStage(nil), out.Stages...)
	out.Bottlenecks = append([]string(nil), out.Bottlenecks...)
	return out, nil
}

// CreateLead stores the lead in memory with the configured score.
func (c *MockClient) CreateLead(_ context.Context, input dashboard.CreateLeadInput) (dashboard.CreateLeadResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Err != nil {
		return dashboard.CreateLeadResult{}, c.data.Err
	}
	lead := dashboard.Lead{
		ID:               len(c.data.Leads.Leads) + len(c.created) + 1,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		CreditScore:      input.CreditScore,
		Income:           input.Income,
		LoanAmount:       input.LoanAmount,
		DebtToIncome:     input.DebtToIncome,
		LoanType:         input.LoanType,
		Stage:            input.Stage,
		ProbabilityScore: c.data.LeadScore,
		Urgency:          urgencyFor(c.data.LeadScore),
		DaysSinceContact: daysSince(input.LastContact, c.now()),
		CreatedDate:      input.CreatedDate,
	}
	c.created = append(c.created, lead)
	return dashboard.CreateLeadResult{
		Message:   "Lead created successfully",
		Lead:      lead,
		LeadScore: c.data.LeadScore,
	}, nil
}

func (c *MockClient) Health(context.Context) (dashboard.HealthStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Err != nil {
		return dashboard.HealthStatus{}, c.data.Err
	}
	return c.data.Health, nil
}

func urgencyFor(score float64) dashboard.Urgency {
	switch {
	case score >= 80:
		return dashboard.UrgencyHigh
	case score >= 60:
		return dashboard.UrgencyMedium
	default:
		return dashboard.UrgencyLow
	}
}

func daysSince(ts dashboard.Timestamp, now time.Time) int {
	if ts.IsZero() || ts.After(now) {
		return 0
	}
	return int(now.Sub(ts.Time).Hours() / 24)
}
