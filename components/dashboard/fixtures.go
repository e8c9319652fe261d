package dashboard

import "time"

// Named fixtures substituted when the backend cannot be reached. Every
// accessor returns a deep copy so callers can never mutate the shared value.

var fixtureDashboardSnapshot = DashboardSnapshot{
	TotalLeads:       150,
	ActivePipeline:   45,
	ClosedThisMonth:  12,
	RevenueThisMonth: 875000,
	ConversionRate:   28.5,
	AvgDealSize:      72916,
	PipelineValue:    3250000,
	GoalProgress:     82.3,
	PerformanceTrend: "up",
}

var fixtureLeads = []Lead{
	{
		ID:               1,
		Name:             "Sarah Johnson",
		Email:            "sarah.johnson@email.com",
		Phone:            "(555) 123-4567",
		CreditScore:      785,
		Income:           125000,
		LoanAmount:       450000,
		DebtToIncome:     0.23,
		LoanType:         "Conventional",
		Stage:            "Qualified",
		ProbabilityScore: 92.3,
		Urgency:          UrgencyHigh,
		DaysSinceContact: 2,
		CreatedDate:      Timestamp{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	},
	{
		ID:               2,
		Name:             "Mike Chen",
		Email:            "mike.chen@email.com",
		Phone:            "(555) 234-5678",
		CreditScore:      720,
		Income:           95000,
		LoanAmount:       380000,
		DebtToIncome:     0.31,
		LoanType:         "FHA",
		Stage:            "Application",
		ProbabilityScore: 89.1,
		Urgency:          UrgencyHigh,
		DaysSinceContact: 1,
		CreatedDate:      Timestamp{Time: time.Date(2024, 1, 14, 14, 20, 0, 0, time.UTC)},
	},
}

var fixtureLeadModelInfo = LeadModelInfo{
	Accuracy:     0.853,
	LastTrained:  "2024-01-15",
	FeaturesUsed: []string{"credit_score", "income", "debt_to_income", "loan_type", "contact_frequency"},
}

var fixturePerformanceTrends = PerformanceTrends{
	MonthlyTrends: []MonthlyTrend{
		{MonthName: "January 2024", LeadsGenerated: 42, LeadsConverted: 12, ConversionRate: 28.6, Revenue: 864000},
		{MonthName: "February 2024", LeadsGenerated: 38, LeadsConverted: 11, ConversionRate: 28.9, Revenue: 792000},
	},
	KeyMetrics: KeyMetrics{
		AvgMonthlyLeads:   45,
		AvgConversionRate: 28.5,
		AvgMonthlyRevenue: 875000,
		TotalRevenueYTD:   5250000,
	},
}

var fixtureRevenueForecast = RevenueForecast{
	ForecastData: []ForecastMonth{
		{MonthName: "February", PredictedRevenue: 920000, Confidence: 95},
		{MonthName: "March", PredictedRevenue: 980000, Confidence: 90},
		{MonthName: "April", PredictedRevenue: 1050000, Confidence: 85},
	},
	Insights: ForecastInsights{
		TotalForecast6Months: 5800000,
		GrowthRate:           12.5,
		BestMonth:            ForecastMonth{MonthName: "June", PredictedRevenue: 1200000},
	},
	MarketFactors: []MarketFactor{
		{Factor: "Interest Rate Trends", Impact: ImpactPositive, Confidence: 75},
		{Factor: "Housing Market", Impact: ImpactNeutral, Confidence: 80},
	},
}

var fixtureRecommendations = []Recommendation{
	{
		ID:               1,
		Type:             "conversion",
		Title:            "Focus on High-Score Leads",
		Description:      "Prioritize 8 leads with 85%+ conversion probability this week",
		Impact:           ImpactHigh,
		EstimatedRevenue: 180000,
		ActionItems: []string{
			"Schedule follow-up calls with Sarah Johnson (92% score)",
			"Send updated rate quote to Mike Chen (89% score)",
			"Schedule property viewing with Lisa Brown (87% score)",
		},
	},
	{
		ID:               2,
		Type:             "pipeline",
		Title:            "Optimize Pipeline Flow",
		Description:      "Reduce time in Document Review stage by 2.3 days",
		Impact:           ImpactMedium,
		EstimatedRevenue: 95000,
		ActionItems: []string{
			"Create document checklist template",
			"Set up automated reminder system",
			"Partner with processing team for faster turnaround",
		},
	},
	{
		ID:               3,
		Type:             "market",
		Title:            "Capitalize on Rate Drop",
		Description:      "Reach out to previous prospects - rates dropped 0.25%",
		Impact:           ImpactHigh,
		EstimatedRevenue: 240000,
		ActionItems: []string{
			"Send rate update email to 23 warm prospects",
			"Schedule refinance consultations",
			"Update marketing materials with new rates",
		},
	},
}

var fixturePipelineStages = PipelineStages{
	Stages: []PipelineStage{
		{Name: "New Lead", Count: 28, Value: 2100000, AvgDays: 2},
		{Name: "Qualified", Count: 22, Value: 1650000, AvgDays: 5},
		{Name: "Application", Count: 18, Value: 1350000, AvgDays: 7},
		{Name: "Processing", Count: 15, Value: 1125000, AvgDays: 12},
		{Name: "Underwriting", Count: 12, Value: 900000, AvgDays: 8},
		{Name: "Clear to Close", Count: 8, Value: 600000, AvgDays: 3},
		{Name: "Closed", Count: 5, Value: 375000, AvgDays: 1},
	},
	ConversionRates: map[string]float64{
		"lead_to_qualified":          78.6,
		"qualified_to_application":   81.8,
		"application_to_processing":  83.3,
		"processing_to_underwriting": 80.0,
		"underwriting_to_close":      66.7,
		"overall_conversion":         28.5,
	},
	Bottlenecks:        []string{"Processing", "Underwriting"},
	TotalPipelineValue: 2100000,
}

var fixtureHealthStatus = HealthStatus{
	Message: "Loan Officer Performance Intelligence API",
	Status:  "active",
	Version: "1.0.0",
}

// FixtureDashboardSnapshot is the overview fallback.
func FixtureDashboardSnapshot() DashboardSnapshot {
	return fixtureDashboardSnapshot
}

// FixtureLeads is the lead scoring fallback.
func FixtureLeads() LeadScoringResult {
	info := cloneModelInfo(fixtureLeadModelInfo)
	return LeadScoringResult{
		Leads:     cloneLeads(fixtureLeads),
		ModelInfo: &info,
	}
}

// FixturePerformanceTrends is the performance fallback.
func FixturePerformanceTrends() PerformanceTrends {
	return clonePerformanceTrends(fixturePerformanceTrends)
}

// FixtureRevenueForecast is the forecasting fallback.
func FixtureRevenueForecast() RevenueForecast {
	return cloneRevenueForecast(fixtureRevenueForecast)
}

// FixtureRecommendations is the insights fallback.
func FixtureRecommendations() []Recommendation {
	return cloneRecommendations(fixtureRecommendations)
}

// FixturePipelineStages is the pipeline breakdown fallback.
func FixturePipelineStages() PipelineStages {
	return clonePipelineStages(fixturePipelineStages)
}

// FixtureHealthStatus is the liveness payload used in demo mode.
func FixtureHealthStatus() HealthStatus {
	return fixtureHealthStatus
}

func cloneLeads(in []Lead) []Lead {
	if in == nil {
		return nil
	}
	out := make([]Lead, len(in))
	copy(out, in)
	return out
}

func cloneModelInfo(in LeadModelInfo) LeadModelInfo {
	in.FeaturesUsed = cloneStrings(in.FeaturesUsed)
	return in
}

// CloneLeadScoring deep copies a lead scoring result.
func CloneLeadScoring(in LeadScoringResult) LeadScoringResult {
	out := LeadScoringResult{Leads: cloneLeads(in.Leads)}
	if in.ModelInfo != nil {
		info := cloneModelInfo(*in.ModelInfo)
		out.ModelInfo = &info
	}
	return out
}

func clonePerformanceTrends(in PerformanceTrends) PerformanceTrends {
	out := in
	if in.MonthlyTrends != nil {
		out.MonthlyTrends = append([]MonthlyTrend(nil), in.MonthlyTrends...)
	}
	if in.WeeklyTrends != nil {
		out.WeeklyTrends = append([]WeeklyTrend(nil), in.WeeklyTrends...)
	}
	if in.PerformanceComparison != nil {
		out.PerformanceComparison = make(map[string]MetricComparison, len(in.PerformanceComparison))
		for k, v := range in.PerformanceComparison {
			out.PerformanceComparison[k] = v
		}
	}
	return out
}

func cloneRevenueForecast(in RevenueForecast) RevenueForecast {
	out := in
	if in.HistoricalData != nil {
		out.HistoricalData = append([]HistoricalRevenue(nil), in.HistoricalData...)
	}
	if in.ForecastData != nil {
		out.ForecastData = append([]ForecastMonth(nil), in.ForecastData...)
	}
	if in.MarketFactors != nil {
		out.MarketFactors = append([]MarketFactor(nil), in.MarketFactors...)
	}
	out.Insights.RiskFactors = cloneStrings(in.Insights.RiskFactors)
	out.Insights.Opportunities = cloneStrings(in.Insights.Opportunities)
	return out
}

func cloneRecommendations(in []Recommendation) []Recommendation {
	if in == nil {
		return nil
	}
	out := make([]Recommendation, len(in))
	for i, rec := range in {
		rec.ActionItems = cloneStrings(rec.ActionItems)
		out[i] = rec
	}
	return out
}

func clonePipelineStages(in PipelineStages) PipelineStages {
	out := in
	if in.Stages != nil {
		out.Stages = append([]PipelineStage(nil), in.Stages...)
	}
	if in.ConversionRates != nil {
		out.ConversionRates = make(map[string]float64, len(in.ConversionRates))
		for k, v := range in.ConversionRates {
			out.ConversionRates[k] = v
		}
	}
	out.Bottlenecks = cloneStrings(in.Bottlenecks)
	return out
}
