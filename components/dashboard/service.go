package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	errMissingAPI = errors.New("dashboard: loan api not configured")
	// ErrUnknownPage is returned when a page id has no view builder.
	ErrUnknownPage = errors.New("dashboard: unknown page")
)

// activityLimit caps the recent activity card.
const activityLimit = 4

// Options configures the dashboard Service. Every collaborator is an
// interface or value so applications can swap implementations.
type Options struct {
	API       LoanAPI
	Charts    *ChartBuilder
	Activity  ActivityFeed
	Events    LeadEventHook
	Validator PayloadValidator
	Logger    zerolog.Logger
	Telemetry Telemetry
	Clock     func() time.Time
}

// Service mounts pages against the loan API and turns their states into views.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Charts == nil {
		opts.Charts = NewChartBuilder(WithChartLogger(opts.Logger))
	}
	if opts.Activity == nil {
		opts.Activity = DefaultActivityFeed()
	}
	if opts.Validator == nil {
		opts.Validator = defaultValidator
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// ViewParams carries the per-request controls of a page.
type ViewParams struct {
	Filter LeadFilter
	Sort   LeadSort
}

func (s *Service) pageOptions() PageOptions {
	return PageOptions{Logger: s.opts.Logger, Telemetry: s.opts.Telemetry}
}

func (s *Service) api() (LoanAPI, error) {
	if s.opts.API == nil {
		return nil, errMissingAPI
	}
	return s.opts.API, nil
}

// DashboardPage returns an unmounted overview page.
func (s *Service) DashboardPage() (*Page[DashboardSnapshot], error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}
	return NewPage(PageLoader[DashboardSnapshot]{
		ID:           PageDashboard,
		Fetch:        api.DashboardOverview,
		Fixture:      FixtureDashboardSnapshot,
		ErrorMessage: PageDashboard.ErrorMessage(),
	}, s.pageOptions()), nil
}

// LeadScoringPage returns an unmounted lead scoring page.
func (s *Service) LeadScoringPage() (*Page[LeadScoringResult], error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}
	return NewPage(PageLoader[LeadScoringResult]{
		ID:           PageLeadScoring,
		Fetch:        api.LeadScoring,
		Fixture:      FixtureLeads,
		ErrorMessage: PageLeadScoring.ErrorMessage(),
	}, s.pageOptions()), nil
}

// PerformancePage returns an unmounted performance page.
func (s *Service) PerformancePage() (*Page[PerformanceTrends], error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}
	return NewPage(PageLoader[PerformanceTrends]{
		ID:           PagePerformance,
		Fetch:        api.PerformanceTrends,
		Fixture:      FixturePerformanceTrends,
		ErrorMessage: PagePerformance.ErrorMessage(),
	}, s.pageOptions()), nil
}

// ForecastingPage returns an unmounted forecasting page.
func (s *Service) ForecastingPage() (*Page[RevenueForecast], error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}
	return NewPage(PageLoader[RevenueForecast]{
		ID:           PageForecasting,
		Fetch:        api.RevenueForecast,
		Fixture:      FixtureRevenueForecast,
		ErrorMessage: PageForecasting.ErrorMessage(),
	}, s.pageOptions()), nil
}

// InsightsPage returns an unmounted insights page.
func (s *Service) InsightsPage() (*Page[[]Recommendation], error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}
	return NewPage(PageLoader[[]Recommendation]{
		ID:           PageInsights,
		Fetch:        api.Recommendations,
		Fixture:      FixtureRecommendations,
		ErrorMessage: PageInsights.ErrorMessage(),
	}, s.pageOptions()), nil
}

// Dashboard loads and renders the overview page.
func (s *Service) Dashboard(ctx context.Context) (DashboardView, error) {
	page, err := s.DashboardPage()
	if err != nil {
		return DashboardView{}, err
	}
	state, err := page.Load(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	activity, err := s.opts.Activity.Recent(ctx, activityLimit)
	if err != nil {
		s.opts.Logger.Warn().Err(err).Msg("recent activity unavailable")
		activity = nil
	}
	return BuildDashboardView(state, s.opts.Charts, activity), nil
}

// LeadScoring loads the leads and applies the filter and sort controls.
func (s *Service) LeadScoring(ctx context.Context, filter LeadFilter, sort LeadSort) (LeadScoringView, error) {
	page, err := s.LeadScoringPage()
	if err != nil {
		return LeadScoringView{}, err
	}
	state, err := page.Load(ctx)
	if err != nil {
		return LeadScoringView{}, err
	}
	return BuildLeadScoringView(state, filter, sort), nil
}

// Performance loads and renders the performance page.
func (s *Service) Performance(ctx context.Context) (PerformanceView, error) {
	page, err := s.PerformancePage()
	if err != nil {
		return PerformanceView{}, err
	}
	state, err := page.Load(ctx)
	if err != nil {
		return PerformanceView{}, err
	}
	return BuildPerformanceView(state, s.opts.Charts), nil
}

// Forecasting loads and renders the forecasting page.
func (s *Service) Forecasting(ctx context.Context) (ForecastingView, error) {
	page, err := s.ForecastingPage()
	if err != nil {
		return ForecastingView{}, err
	}
	state, err := page.Load(ctx)
	if err != nil {
		return ForecastingView{}, err
	}
	return BuildForecastingView(state, s.opts.Charts), nil
}

// Insights loads and renders the insights page.
func (s *Service) Insights(ctx context.Context) (InsightsView, error) {
	page, err := s.InsightsPage()
	if err != nil {
		return InsightsView{}, err
	}
	state, err := page.Load(ctx)
	if err != nil {
		return InsightsView{}, err
	}
	return BuildInsightsView(state), nil
}

// BuildView dispatches to the page's loader and builder.
func (s *Service) BuildView(ctx context.Context, id PageID, params ViewParams) (any, error) {
	switch id {
	case PageDashboard:
		return s.Dashboard(ctx)
	case PageLeadScoring:
		return s.LeadScoring(ctx, ParseLeadFilter(string(params.Filter)), ParseLeadSort(string(params.Sort)))
	case PagePerformance:
		return s.Performance(ctx)
	case PageForecasting:
		return s.Forecasting(ctx)
	case PageInsights:
		return s.Insights(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, id)
	}
}

// Shell builds the layout for the current path at the service clock's time.
func (s *Service) Shell(currentPath string) Shell {
	return BuildShell(currentPath, s.opts.Clock())
}

// Pipeline loads the stage breakdown with the same fallback rules as a page.
func (s *Service) Pipeline(ctx context.Context) (PageState[PipelineStages], error) {
	api, err := s.api()
	if err != nil {
		return Loading[PipelineStages](), err
	}
	page := NewPage(PageLoader[PipelineStages]{
		ID:           "Pipeline",
		Fetch:        api.PipelineStages,
		Fixture:      FixturePipelineStages,
		ErrorMessage: "Failed to load pipeline data",
	}, s.pageOptions())
	return page.Load(ctx)
}

// Health reports upstream liveness. Errors are returned, never masked.
func (s *Service) Health(ctx context.Context) (HealthStatus, error) {
	api, err := s.api()
	if err != nil {
		return HealthStatus{}, err
	}
	return api.Health(ctx)
}

// CreateLead fills missing dates from the clock, validates the payload and
// forwards it to the backend.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) (CreateLeadResult, error) {
	api, err := s.api()
	if err != nil {
		return CreateLeadResult{}, err
	}
	now := s.opts.Clock().UTC()
	if input.CreatedDate.IsZero() {
		input.CreatedDate = Timestamp{Time: now}
	}
	if input.LastContact.IsZero() {
		input.LastContact = Timestamp{Time: now}
	}
	if err := ValidateLeadInput(s.opts.Validator, input); err != nil {
		return CreateLeadResult{}, err
	}
	result, err := api.CreateLead(ctx, input)
	if err != nil {
		s.opts.Logger.Error().Err(err).Str("email", input.Email).Msg("create lead failed")
		return CreateLeadResult{}, err
	}
	s.opts.Telemetry.Record(ctx, "dashboard.lead.create", map[string]any{
		"lead_id":    result.Lead.ID,
		"lead_score": result.LeadScore,
	})
	if s.opts.Events != nil {
		event := LeadEvent{
			LeadID:    result.Lead.ID,
			Client:    result.Lead.Name,
			LeadScore: result.LeadScore,
			Urgency:   result.Lead.Urgency,
			At:        now,
		}
		if err := s.opts.Events.LeadCreated(ctx, event); err != nil {
			s.opts.Logger.Warn().Err(err).Int("lead_id", result.Lead.ID).Msg("lead event not delivered")
		}
	}
	return result, nil
}
