package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ettle/strcase"
)

// FallbackNotice is appended to a page's error message when fixture data is shown.
const FallbackNotice = "Showing demo data for preview"

// MonthlyRevenueTarget is the revenue goal tracked by the overview goal card.
const MonthlyRevenueTarget = 1065000

type pageInfo struct {
	title        string
	subtitle     string
	errorMessage string
}

var pageCatalog = map[PageID]pageInfo{
	PageDashboard: {
		title:        "Performance Dashboard",
		subtitle:     "AI-powered insights for your loan pipeline",
		errorMessage: "Failed to load dashboard data",
	},
	PageLeadScoring: {
		title:        "AI Lead Scoring",
		subtitle:     "Machine learning powered conversion probability analysis",
		errorMessage: "Failed to load lead scoring data",
	},
	PagePerformance: {
		title:        "Performance Analytics",
		subtitle:     "Track your sales trends and performance metrics",
		errorMessage: "Failed to load performance data",
	},
	PageForecasting: {
		title:        "Revenue Forecasting",
		subtitle:     "AI-powered predictions for future performance",
		errorMessage: "Failed to load forecast data",
	},
	PageInsights: {
		title:        "AI Insights & Recommendations",
		subtitle:     "Personalized suggestions to optimize your performance",
		errorMessage: "Failed to load insights data",
	},
}

// ErrorMessage is the log and banner text used when the page falls back.
func (id PageID) ErrorMessage() string {
	return pageCatalog[id].errorMessage
}

// PageMeta is the header block shared by every page view.
type PageMeta struct {
	ID       PageID `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Path     string `json:"path"`
	Status   string `json:"status"`
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`
}

func newPageMeta[T any](id PageID, state PageState[T]) PageMeta {
	info := pageCatalog[id]
	meta := PageMeta{
		ID:       id,
		Title:    info.title,
		Subtitle: info.subtitle,
		Path:     id.Path(),
		Status:   state.Status().String(),
		Fallback: state.UsedFallback(),
	}
	if meta.Fallback {
		meta.Warning = info.errorMessage + " - " + FallbackNotice
	}
	return meta
}

// StatCard is a KPI tile.
type StatCard struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Change      string `json:"change,omitempty"`
	Trend       string `json:"trend,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// GoalProgress backs the monthly goal card.
type GoalProgress struct {
	Percent   float64 `json:"percent"`
	Label     string  `json:"label"`
	Width     string  `json:"width"`
	Summary   string  `json:"summary"`
	Remaining string  `json:"remaining"`
}

// ActivityRow is a rendered activity entry.
type ActivityRow struct {
	Action string `json:"action"`
	Client string `json:"client"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// QuickAction is a shortcut tile on the overview page.
type QuickAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var quickActions = []QuickAction{
	{Title: "Add New Lead", Description: "Start tracking a new prospect", Icon: "users"},
	{Title: "Update Pipeline", Description: "Move leads to next stage", Icon: "trending-up"},
	{Title: "Generate Report", Description: "Export monthly summary", Icon: "dollar-sign"},
}

// DashboardView is the overview page model.
type DashboardView struct {
	Meta          PageMeta      `json:"meta"`
	Stats         []StatCard    `json:"stats"`
	RevenueChart  Chart         `json:"revenue_chart"`
	PipelineChart Chart         `json:"pipeline_chart"`
	Goal          GoalProgress  `json:"goal"`
	Activity      []ActivityRow `json:"activity"`
	QuickActions  []QuickAction `json:"quick_actions"`
}

// BuildDashboardView renders the overview page from its page state.
func BuildDashboardView(state PageState[DashboardSnapshot], charts *ChartBuilder, activity []ActivityItem) DashboardView {
	snap := state.Data()
	palette := charts.Palette()
	view := DashboardView{
		Meta: newPageMeta(PageDashboard, state),
		Stats: []StatCard{
			{Title: "Total Revenue", Value: FormatCurrency(snap.RevenueThisMonth), Change: "+12.5%", Trend: "up", Description: "This month", Icon: "dollar-sign"},
			{Title: "Conversion Rate", Value: FormatPercent(snap.ConversionRate), Change: "+2.1%", Trend: "up", Description: "Lead to close ratio", Icon: "target"},
			{Title: "Active Pipeline", Value: FormatNumber(float64(snap.ActivePipeline)), Change: "+8 leads", Trend: "up", Description: "Currently in process", Icon: "users"},
			{Title: "Pipeline Value", Value: FormatCurrency(snap.PipelineValue), Change: "+15.2%", Trend: "up", Description: "Total potential revenue", Icon: "trending-up"},
		},
		RevenueChart: charts.Line(RevenueTrendData(palette), LineOptions{
			Height: 280,
			Fill:   true,
			Color:  palette.Primary.Main,
		}),
		PipelineChart: charts.Doughnut(PipelineBreakdownData(palette), DoughnutOptions{Height: 280}),
		Goal:          BuildGoalProgress(snap.RevenueThisMonth, snap.GoalProgress),
		QuickActions:  append([]QuickAction{}, quickActions...),
	}
	for _, item := range activity {
		view.Activity = append(view.Activity, ActivityRow{
			Action: item.Action,
			Client: item.Client,
			Time:   item.TimeAgo(),
			Status: string(item.Status),
		})
	}
	return view
}

// BuildGoalProgress fills the goal card against MonthlyRevenueTarget.
func BuildGoalProgress(revenue, percent float64) GoalProgress {
	remaining := MonthlyRevenueTarget - revenue
	if remaining < 0 {
		remaining = 0
	}
	width := percent
	switch {
	case width < 0:
		width = 0
	case width > 100:
		width = 100
	}
	return GoalProgress{
		Percent:   percent,
		Label:     FormatPercent(percent),
		Width:     strconv.FormatFloat(width, 'f', -1, 64) + "%",
		Summary:   fmt.Sprintf("%s of %s target", FormatCurrency(revenue), FormatCurrency(MonthlyRevenueTarget)),
		Remaining: FormatCurrency(remaining) + " remaining to reach goal",
	}
}

// SelectOption is an entry of a select control.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// LeadRow is one rendered lead.
type LeadRow struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Initials     string `json:"initials"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Added        string `json:"added"`
	Score        string `json:"score"`
	ScoreClass   string `json:"score_class"`
	Urgency      string `json:"urgency"`
	UrgencyClass string `json:"urgency_class"`
	LoanAmount   string `json:"loan_amount"`
	LoanType     string `json:"loan_type"`
	Credit       string `json:"credit"`
	Stage        string `json:"stage"`
	LastContact  string `json:"last_contact"`
}

// ModelInfoView describes the scoring model.
type ModelInfoView struct {
	Accuracy    string `json:"accuracy"`
	LastTrained string `json:"last_trained"`
	Features    string `json:"features"`
}

// LeadScoringView is the lead table page model.
type LeadScoringView struct {
	Meta    PageMeta       `json:"meta"`
	Summary LeadSummary    `json:"summary"`
	Cards   []StatCard     `json:"cards"`
	Filters []SelectOption `json:"filters"`
	Sorts   []SelectOption `json:"sorts"`
	Showing string         `json:"showing"`
	Rows    []LeadRow      `json:"rows"`
	Model   *ModelInfoView `json:"model,omitempty"`
}

var filterLabels = []SelectOption{
	{Value: string(FilterAll), Label: "All Leads"},
	{Value: string(FilterHigh), Label: "High Priority"},
	{Value: string(FilterMedium), Label: "Medium Priority"},
	{Value: string(FilterLow), Label: "Low Priority"},
}

var sortLabels = []SelectOption{
	{Value: string(SortByScore), Label: "Conversion Score"},
	{Value: string(SortByDate), Label: "Date Added"},
	{Value: string(SortByAmount), Label: "Loan Amount"},
}

// BuildLeadScoringView filters and sorts the leads for display. The summary
// cards always cover the unfiltered list.
func BuildLeadScoringView(state PageState[LeadScoringResult], filter LeadFilter, sort LeadSort) LeadScoringView {
	result := state.Data()
	visible := SortLeads(FilterLeads(result.Leads, filter), sort)
	summary := SummarizeLeads(result.Leads)

	view := LeadScoringView{
		Meta:    newPageMeta(PageLeadScoring, state),
		Summary: summary,
		Filters: selectOptions(filterLabels, string(filter)),
		Sorts:   selectOptions(sortLabels, string(sort)),
		Showing: fmt.Sprintf("Showing %d of %d leads", len(visible), len(result.Leads)),
		Rows:    make([]LeadRow, 0, len(visible)),
	}
	if result.ModelInfo != nil {
		model := BuildModelInfo(*result.ModelInfo)
		view.Model = &model
	}
	accuracy := "N/A"
	if view.Model != nil {
		accuracy = view.Model.Accuracy
	}
	view.Cards = []StatCard{
		{Title: "High Priority", Value: strconv.Itoa(summary.HighPriority), Icon: "alert-triangle"},
		{Title: "Avg Score", Value: strconv.Itoa(summary.AverageScore) + "%", Icon: "target"},
		{Title: "Pipeline Value", Value: FormatCurrency(summary.PipelineValue), Icon: "dollar-sign"},
		{Title: "Model Accuracy", Value: accuracy, Icon: "brain"},
	}
	for _, lead := range visible {
		view.Rows = append(view.Rows, LeadRow{
			ID:           lead.ID,
			Name:         lead.Name,
			Initials:     Initials(lead.Name),
			Email:        lead.Email,
			Phone:        lead.Phone,
			Added:        "Added " + FormatShortDate(lead.CreatedDate),
			Score:        FormatPercent(lead.ProbabilityScore),
			ScoreClass:   ScoreClass(lead.ProbabilityScore),
			Urgency:      string(lead.Urgency),
			UrgencyClass: UrgencyClass(lead.Urgency),
			LoanAmount:   FormatCurrency(lead.LoanAmount),
			LoanType:     lead.LoanType,
			Credit:       fmt.Sprintf("Credit: %d | DTI: %s", lead.CreditScore, FormatDTI(lead.DebtToIncome)),
			Stage:        lead.Stage,
			LastContact:  fmt.Sprintf("Last contact: %d days ago", lead.DaysSinceContact),
		})
	}
	return view
}

func selectOptions(options []SelectOption, selected string) []SelectOption {
	out := make([]SelectOption, len(options))
	for i, opt := range options {
		opt.Selected = opt.Value == selected
		out[i] = opt
	}
	return out
}

var featureLabels = map[string]string{
	"debt_to_income": "DTI",
}

// BuildModelInfo formats the model metadata: accuracy as a percentage, the
// training date as "Jan 15, 2024" and feature names title cased.
func BuildModelInfo(info LeadModelInfo) ModelInfoView {
	trained := info.LastTrained
	if ts, err := ParseTimestamp(info.LastTrained); err == nil && !ts.IsZero() {
		trained = ts.Format("Jan 2, 2006")
	}
	features := make([]string, 0, len(info.FeaturesUsed))
	for _, f := range info.FeaturesUsed {
		if label, ok := featureLabels[f]; ok {
			features = append(features, label)
			continue
		}
		features = append(features, strcase.ToCase(f, strcase.TitleCase, ' '))
	}
	return ModelInfoView{
		Accuracy:    FormatPercent(info.Accuracy * 100),
		LastTrained: trained,
		Features:    strings.Join(features, ", "),
	}
}

// TrendRow is one month of the performance table.
type TrendRow struct {
	Period         string `json:"period"`
	Leads          string `json:"leads"`
	Converted      string `json:"converted"`
	ConversionRate string `json:"conversion_rate"`
	Revenue        string `json:"revenue"`
}

// PerformanceView is the performance analytics page model.
type PerformanceView struct {
	Meta            PageMeta   `json:"meta"`
	Metrics         []StatCard `json:"metrics"`
	RevenueChart    Chart      `json:"revenue_chart"`
	ConversionChart Chart      `json:"conversion_chart"`
	Rows            []TrendRow `json:"rows"`
}

// BuildPerformanceView renders the key metrics, both trend charts and the
// monthly table.
func BuildPerformanceView(state PageState[PerformanceTrends], charts *ChartBuilder) PerformanceView {
	trends := state.Data()
	palette := charts.Palette()
	km := trends.KeyMetrics
	view := PerformanceView{
		Meta: newPageMeta(PagePerformance, state),
		Metrics: []StatCard{
			{Title: "YTD Revenue", Value: FormatCurrency(km.TotalRevenueYTD), Icon: "dollar-sign"},
			{Title: "Avg Conversion Rate", Value: FormatPercent(km.AvgConversionRate), Icon: "target"},
			{Title: "Monthly Leads", Value: FormatNumber(km.AvgMonthlyLeads), Icon: "users"},
			{Title: "Avg Monthly Revenue", Value: FormatCurrency(km.AvgMonthlyRevenue), Icon: "trending-up"},
		},
		RevenueChart: charts.Bar(PerformanceRevenueData(palette), BarOptions{
			Color: palette.Success.Main,
		}),
		ConversionChart: charts.Line(ConversionTrendData(palette), LineOptions{
			Fill:  true,
			Color: palette.Primary.Main,
		}),
		Rows: make([]TrendRow, 0, len(trends.MonthlyTrends)),
	}
	for _, m := range trends.MonthlyTrends {
		view.Rows = append(view.Rows, TrendRow{
			Period:         m.MonthName,
			Leads:          FormatNumber(float64(m.LeadsGenerated)),
			Converted:      FormatNumber(float64(m.LeadsConverted)),
			ConversionRate: formatRawPercent(m.ConversionRate),
			Revenue:        FormatCurrency(m.Revenue),
		})
	}
	return view
}

// ForecastRow is one predicted month.
type ForecastRow struct {
	Month      string `json:"month"`
	Confidence string `json:"confidence"`
	Revenue    string `json:"revenue"`
}

// MarketFactorRow is a rendered market factor.
type MarketFactorRow struct {
	Factor      string `json:"factor"`
	Description string `json:"description,omitempty"`
	Impact      string `json:"impact"`
	ImpactClass string `json:"impact_class"`
	Confidence  string `json:"confidence"`
}

// ModelNote is the static explainer box under a page.
type ModelNote struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Details     []Detail `json:"details"`
}

// Detail is a label and value pair.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var forecastModelNote = ModelNote{
	Title: "Forecasting Model",
	Description: "Our AI model uses time series analysis combined with market indicators and seasonal patterns " +
		"to predict future revenue with 85% accuracy.",
	Details: []Detail{
		{Label: "Methodology", Value: "Time Series + Market Analysis"},
		{Label: "Data Points", Value: "24 months historical data"},
		{Label: "Last Updated", Value: "January 15, 2024"},
	},
}

// ForecastingView is the revenue forecast page model.
type ForecastingView struct {
	Meta          PageMeta          `json:"meta"`
	Cards         []StatCard        `json:"cards"`
	Chart         Chart             `json:"chart"`
	Months        []ForecastRow     `json:"months"`
	MarketFactors []MarketFactorRow `json:"market_factors"`
	RiskFactors   []string          `json:"risk_factors,omitempty"`
	Opportunities []string          `json:"opportunities,omitempty"`
	Model         ModelNote         `json:"model"`
}

// BuildForecastingView renders the forecast cards, chart, monthly
// predictions and market factors.
func BuildForecastingView(state PageState[RevenueForecast], charts *ChartBuilder) ForecastingView {
	forecast := state.Data()
	ins := forecast.Insights
	view := ForecastingView{
		Meta: newPageMeta(PageForecasting, state),
		Cards: []StatCard{
			{Title: "6-Month Forecast", Value: FormatCurrency(ins.TotalForecast6Months), Change: "+" + formatRawPercent(ins.GrowthRate) + " growth", Trend: "up", Icon: "dollar-sign"},
			{Title: "Best Month", Value: ins.BestMonth.MonthName, Description: FormatCurrency(ins.BestMonth.PredictedRevenue), Icon: "calendar"},
			{Title: "Forecast Accuracy", Value: "85%", Description: "Based on historical data", Icon: "trending-up"},
		},
		Chart: charts.Line(RevenueForecastData(charts.Palette()), LineOptions{
			Title:  "Revenue Forecast - Next 6 Months",
			Height: 350,
		}),
		Months:        make([]ForecastRow, 0, len(forecast.ForecastData)),
		MarketFactors: make([]MarketFactorRow, 0, len(forecast.MarketFactors)),
		RiskFactors:   append([]string(nil), ins.RiskFactors...),
		Opportunities: append([]string(nil), ins.Opportunities...),
		Model:         forecastModelNote,
	}
	for _, m := range forecast.ForecastData {
		view.Months = append(view.Months, ForecastRow{
			Month:      m.MonthName,
			Confidence: "Confidence: " + formatRawPercent(m.Confidence),
			Revenue:    FormatCurrency(m.PredictedRevenue),
		})
	}
	for _, f := range forecast.MarketFactors {
		view.MarketFactors = append(view.MarketFactors, MarketFactorRow{
			Factor:      f.Factor,
			Description: f.Description,
			Impact:      string(f.Impact),
			ImpactClass: MarketImpactClass(f.Impact),
			Confidence:  "Confidence: " + formatRawPercent(f.Confidence),
		})
	}
	return view
}

// MarketImpactClass colors a market factor by direction.
func MarketImpactClass(impact Impact) string {
	switch impact {
	case ImpactPositive:
		return "impact--positive"
	case ImpactNegative:
		return "impact--negative"
	default:
		return "impact--neutral"
	}
}

// RecommendationSummary aggregates the recommendation list.
type RecommendationSummary struct {
	Active           int     `json:"active"`
	PotentialRevenue float64 `json:"potential_revenue"`
	HighImpact       int     `json:"high_impact"`
}

// SummarizeRecommendations totals estimated revenue and counts high impact items.
func SummarizeRecommendations(recs []Recommendation) RecommendationSummary {
	summary := RecommendationSummary{Active: len(recs)}
	amounts := make([]float64, 0, len(recs))
	for _, r := range recs {
		amounts = append(amounts, r.EstimatedRevenue)
		if r.Impact == ImpactHigh {
			summary.HighImpact++
		}
	}
	summary.PotentialRevenue = SumCurrency(amounts...)
	return summary
}

// RecommendationRow is a rendered recommendation card.
type RecommendationRow struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	ImpactLabel string   `json:"impact_label"`
	ImpactClass string   `json:"impact_class"`
	Potential   string   `json:"potential"`
	ActionCount string   `json:"action_count"`
	ActionItems []string `json:"action_items"`
}

var insightsEngineNote = ModelNote{
	Title: "AI Recommendation Engine",
	Description: "Our AI analyzes your performance data, market trends, and best practices to provide " +
		"personalized recommendations that can increase your conversion rates and revenue.",
	Details: []Detail{
		{Label: "Analysis Frequency", Value: "Real-time updates"},
		{Label: "Success Rate", Value: "78% of recommendations followed show improvement"},
	},
}

// InsightsView is the recommendations page model.
type InsightsView struct {
	Meta            PageMeta              `json:"meta"`
	Summary         RecommendationSummary `json:"summary"`
	Cards           []StatCard            `json:"cards"`
	Recommendations []RecommendationRow   `json:"recommendations"`
	Engine          ModelNote             `json:"engine"`
}

// BuildInsightsView renders the recommendation cards and their aggregates.
func BuildInsightsView(state PageState[[]Recommendation]) InsightsView {
	recs := state.Data()
	summary := SummarizeRecommendations(recs)
	view := InsightsView{
		Meta:    newPageMeta(PageInsights, state),
		Summary: summary,
		Cards: []StatCard{
			{Title: "Active Recommendations", Value: strconv.Itoa(summary.Active), Icon: "lightbulb"},
			{Title: "Potential Revenue", Value: FormatCurrency(summary.PotentialRevenue), Icon: "dollar-sign"},
			{Title: "High Priority", Value: strconv.Itoa(summary.HighImpact), Icon: "alert-triangle"},
		},
		Recommendations: make([]RecommendationRow, 0, len(recs)),
		Engine:          insightsEngineNote,
	}
	for _, r := range recs {
		view.Recommendations = append(view.Recommendations, RecommendationRow{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Icon:        RecommendationIcon(r.Type),
			ImpactLabel: strings.ToUpper(string(r.Impact)) + " IMPACT",
			ImpactClass: RecommendationImpactClass(r.Impact),
			Potential:   FormatCurrency(r.EstimatedRevenue) + " potential",
			ActionCount: plural(len(r.ActionItems), "action item"),
			ActionItems: append([]string{}, r.ActionItems...),
		})
	}
	return view
}

// RecommendationIcon picks the icon for a recommendation type.
func RecommendationIcon(kind string) string {
	switch kind {
	case "conversion":
		return "target"
	case "pipeline":
		return "trending-up"
	case "market":
		return "dollar-sign"
	default:
		return "lightbulb"
	}
}

// RecommendationImpactClass grades a recommendation badge.
func RecommendationImpactClass(impact Impact) string {
	switch impact {
	case ImpactHigh:
		return "impact--high"
	case ImpactMedium:
		return "impact--medium"
	case ImpactLow:
		return "impact--low"
	default:
		return "impact--neutral"
	}
}

// formatRawPercent prints the backend value as-is with a % suffix, e.g. 95%
// or 28.6%.
func formatRawPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// FormatUpdated renders the header timestamp, e.g. "Mon, Jan 15, 2024, 10:30 AM".
func FormatUpdated(t time.Time) string {
	return t.Format("Mon, Jan 2, 2006, 3:04 PM")
}
