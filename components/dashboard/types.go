package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LoanAPI is the backend contract the pages load from. pkg/loanapi provides
// the HTTP and fixture-backed implementations.
type LoanAPI interface {
	DashboardOverview(ctx context.Context) (DashboardSnapshot, error)
	LeadScoring(ctx context.Context) (LeadScoringResult, error)
	PerformanceTrends(ctx context.Context) (PerformanceTrends, error)
	RevenueForecast(ctx context.Context) (RevenueForecast, error)
	Recommendations(ctx context.Context) ([]Recommendation, error)
	PipelineStages(ctx context.Context) (PipelineStages, error)
	CreateLead(ctx context.Context, input CreateLeadInput) (CreateLeadResult, error)
	Health(ctx context.Context) (HealthStatus, error)
}

// Urgency is the categorical priority label on a lead.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Impact grades recommendations and market factors.
type Impact string

const (
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
	ImpactLow      Impact = "low"
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

// Timestamp accepts RFC 3339 values with or without a zone, which is what
// the backend emits for lead dates.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses any of the accepted layouts as UTC when no zone is given.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("dashboard: invalid timestamp %q", value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// MarshalYAML renders the timestamp as RFC 3339.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339), nil
}

// DashboardSnapshot holds the overview KPIs.
type DashboardSnapshot struct {
	TotalLeads       int       `json:"total_leads" yaml:"total_leads"`
	ActivePipeline   int       `json:"active_pipeline" yaml:"active_pipeline"`
	ClosedThisMonth  int       `json:"closed_this_month" yaml:"closed_this_month"`
	RevenueThisMonth float64   `json:"revenue_this_month" yaml:"revenue_this_month"`
	ConversionRate   float64   `json:"conversion_rate" yaml:"conversion_rate"`
	AvgDealSize      float64   `json:"avg_deal_size" yaml:"avg_deal_size"`
	PipelineValue    float64   `json:"pipeline_value" yaml:"pipeline_value"`
	GoalProgress     float64   `json:"goal_progress" yaml:"goal_progress"`
	PerformanceTrend string    `json:"performance_trend" yaml:"performance_trend"`
	LastUpdated      Timestamp `json:"last_updated" yaml:"last_updated,omitempty"`
}

// Lead is a scored sales prospect. Leads are read-only on this side.
type Lead struct {
	ID               int       `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Email            string    `json:"email" yaml:"email"`
	Phone            string    `json:"phone" yaml:"phone"`
	CreditScore      int       `json:"credit_score" yaml:"credit_score"`
	Income           float64   `json:"income" yaml:"income"`
	LoanAmount       float64   `json:"loan_amount" yaml:"loan_amount"`
	DebtToIncome     float64   `json:"debt_to_income" yaml:"debt_to_income"`
	LoanType         string    `json:"loan_type" yaml:"loan_type"`
	Stage            string    `json:"stage" yaml:"stage"`
	ProbabilityScore float64   `json:"probability_score" yaml:"probability_score"`
	Urgency          Urgency   `json:"urgency" yaml:"urgency"`
	DaysSinceContact int       `json:"days_since_contact" yaml:"days_since_contact"`
	CreatedDate      Timestamp `json:"created_date" yaml:"created_date"`
}

// LeadModelInfo describes the scoring model that produced the lead scores.
type LeadModelInfo struct {
	Accuracy     float64  `json:"accuracy" yaml:"accuracy"`
	LastTrained  string   `json:"last_trained" yaml:"last_trained"`
	FeaturesUsed []string `json:"features_used" yaml:"features_used"`
}

// LeadScoringResult is the scored lead list plus model metadata.
type LeadScoringResult struct {
	Leads     []Lead         `json:"leads" yaml:"leads"`
	ModelInfo *LeadModelInfo `json:"model_info,omitempty" yaml:"model_info,omitempty"`
}

// MonthlyTrend is one row of the performance history.
type MonthlyTrend struct {
	Month          string  `json:"month,omitempty" yaml:"month,omitempty"`
	MonthName      string  `json:"month_name" yaml:"month_name"`
	LeadsGenerated int     `json:"leads_generated" yaml:"leads_generated"`
	LeadsConverted int     `json:"leads_converted" yaml:"leads_converted"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`
	Revenue        float64 `json:"revenue" yaml:"revenue"`
	AvgDealSize    float64 `json:"avg_deal_size,omitempty" yaml:"avg_deal_size,omitempty"`
	PipelineValue  float64 `json:"pipeline_value,omitempty" yaml:"pipeline_value,omitempty"`
}

// WeeklyTrend is one row of the short-range history.
type WeeklyTrend struct {
	Week           string  `json:"week" yaml:"week"`
	WeekStart      string  `json:"week_start" yaml:"week_start"`
	LeadsGenerated int     `json:"leads_generated" yaml:"leads_generated"`
	LeadsConverted int     `json:"leads_converted" yaml:"leads_converted"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`
	Revenue        float64 `json:"revenue" yaml:"revenue"`
	AvgDealSize    float64 `json:"avg_deal_size" yaml:"avg_deal_size"`
}

// MetricComparison compares the current and previous period.
type MetricComparison struct {
	Current  float64 `json:"current" yaml:"current"`
	Previous float64 `json:"previous" yaml:"previous"`
	Change   float64 `json:"change" yaml:"change"`
}

// KeyMetrics summarizes the performance history.
type KeyMetrics struct {
	AvgMonthlyLeads   float64 `json:"avg_monthly_leads" yaml:"avg_monthly_leads"`
	AvgConversionRate float64 `json:"avg_conversion_rate" yaml:"avg_conversion_rate"`
	AvgMonthlyRevenue float64 `json:"avg_monthly_revenue" yaml:"avg_monthly_revenue"`
	TotalRevenueYTD   float64 `json:"total_revenue_ytd" yaml:"total_revenue_ytd"`
	TotalDealsYTD     int     `json:"total_deals_ytd,omitempty" yaml:"total_deals_ytd,omitempty"`
}

// PerformanceTrends is the historical trend payload.
type PerformanceTrends struct {
	MonthlyTrends         []MonthlyTrend              `json:"monthly_trends" yaml:"monthly_trends"`
	WeeklyTrends          []WeeklyTrend               `json:"weekly_trends,omitempty" yaml:"weekly_trends,omitempty"`
	PerformanceComparison map[string]MetricComparison `json:"performance_comparison,omitempty" yaml:"performance_comparison,omitempty"`
	KeyMetrics            KeyMetrics                  `json:"key_metrics" yaml:"key_metrics"`
}

// HistoricalRevenue is an actual revenue point preceding the forecast.
type HistoricalRevenue struct {
	Month         string  `json:"month" yaml:"month"`
	MonthName     string  `json:"month_name" yaml:"month_name"`
	ActualRevenue float64 `json:"actual_revenue" yaml:"actual_revenue"`
}

// ForecastMonth is one predicted month.
type ForecastMonth struct {
	Month            string  `json:"month,omitempty" yaml:"month,omitempty"`
	MonthName        string  `json:"month_name" yaml:"month_name"`
	PredictedRevenue float64 `json:"predicted_revenue" yaml:"predicted_revenue"`
	LowerBound       float64 `json:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
	UpperBound       float64 `json:"upper_bound,omitempty" yaml:"upper_bound,omitempty"`
	Confidence       float64 `json:"confidence" yaml:"confidence"`
}

// ForecastInsights summarizes the forecast window.
type ForecastInsights struct {
	TotalForecast6Months float64       `json:"total_forecast_6months" yaml:"total_forecast_6months"`
	AvgMonthlyForecast   float64       `json:"avg_monthly_forecast,omitempty" yaml:"avg_monthly_forecast,omitempty"`
	GrowthRate           float64       `json:"growth_rate" yaml:"growth_rate"`
	BestMonth            ForecastMonth `json:"best_month" yaml:"best_month"`
	RiskFactors          []string      `json:"risk_factors,omitempty" yaml:"risk_factors,omitempty"`
	Opportunities        []string      `json:"opportunities,omitempty" yaml:"opportunities,omitempty"`
}

// MarketFactor is an external driver of the forecast.
type MarketFactor struct {
	Factor      string  `json:"factor" yaml:"factor"`
	Impact      Impact  `json:"impact" yaml:"impact"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

// RevenueForecast is the forward-looking revenue payload.
type RevenueForecast struct {
	HistoricalData []HistoricalRevenue `json:"historical_data,omitempty" yaml:"historical_data,omitempty"`
	ForecastData   []ForecastMonth     `json:"forecast_data" yaml:"forecast_data"`
	Insights       ForecastInsights    `json:"insights" yaml:"insights"`
	MarketFactors  []MarketFactor      `json:"market_factors" yaml:"market_factors"`
}

// Recommendation is a suggested action with an estimated revenue impact.
type Recommendation struct {
	ID               int      `json:"id" yaml:"id"`
	Type             string   `json:"type" yaml:"type"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Impact           Impact   `json:"impact" yaml:"impact"`
	EstimatedRevenue float64  `json:"estimated_revenue" yaml:"estimated_revenue"`
	ActionItems      []string `json:"action_items" yaml:"action_items"`
}

// PipelineStage is one bucket of the loan pipeline.
type PipelineStage struct {
	Name    string  `json:"name" yaml:"name"`
	Count   int     `json:"count" yaml:"count"`
	Value   float64 `json:"value" yaml:"value"`
	AvgDays float64 `json:"avg_days" yaml:"avg_days"`
}

// PipelineStages is the pipeline breakdown payload.
type PipelineStages struct {
	Stages             []PipelineStage    `json:"stages" yaml:"stages"`
	ConversionRates    map[string]float64 `json:"conversion_rates" yaml:"conversion_rates"`
	Bottlenecks        []string           `json:"bottlenecks" yaml:"bottlenecks"`
	TotalPipelineValue float64            `json:"total_pipeline_value" yaml:"total_pipeline_value"`
}

// CreateLeadInput is the payload accepted by POST /api/leads.
type CreateLeadInput struct {
	Name         string    `json:"name" yaml:"name"`
	Email        string    `json:"email" yaml:"email"`
	Phone        string    `json:"phone" yaml:"phone"`
	LoanAmount   float64   `json:"loan_amount" yaml:"loan_amount"`
	CreditScore  int       `json:"credit_score" yaml:"credit_score"`
	Income       float64   `json:"income" yaml:"income"`
	DebtToIncome float64   `json:"debt_to_income" yaml:"debt_to_income"`
	LoanType     string    `json:"loan_type" yaml:"loan_type"`
	Stage        string    `json:"stage" yaml:"stage"`
	CreatedDate  Timestamp `json:"created_date" yaml:"created_date"`
	LastContact  Timestamp `json:"last_contact" yaml:"last_contact"`
}

// CreateLeadResult is the backend's answer to a lead creation.
type CreateLeadResult struct {
	Message   string  `json:"message" yaml:"message"`
	Lead      Lead    `json:"lead" yaml:"lead"`
	LeadScore float64 `json:"lead_score" yaml:"lead_score"`
}

// HealthStatus is the backend liveness payload.
type HealthStatus struct {
	Message string `json:"message" yaml:"message"`
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version" yaml:"version"`
}
