package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

type cli struct {
	Config kong.ConfigFlag `help:"YAML file with defaults for any flag not set on the command line or environment." type:"path"`

	Env           string        `default:"development" env:"ENV" help:"Runtime environment; anything but production logs to a console writer."`
	LogLevel      string        `default:"info" env:"LOG_LEVEL" enum:"trace,debug,info,warn,error" help:"Minimum log level."`
	APIURL        string        `name:"api-url" default:"${default_api_url}" env:"LOAN_API_URL,REACT_APP_API_URL" help:"Loan API base URL."`
	APITimeout    time.Duration `name:"api-timeout" default:"10s" env:"LOAN_API_TIMEOUT" help:"Per-request timeout for the loan API."`
	APIToken      string        `name:"api-token" env:"LOAN_API_TOKEN" help:"Bearer token used by CLI commands."`
	Demo          bool          `env:"LOAN_DASHBOARD_DEMO" help:"Serve fixture data instead of calling the loan API."`
	ChartTheme    string        `name:"chart-theme" default:"${default_chart_theme}" env:"LOAN_DASHBOARD_CHART_THEME" help:"ECharts theme name."`
	EChartsCDN    string        `name:"echarts-cdn" env:"GO_DASHBOARD_ECHARTS_CDN" help:"Host serving the ECharts runtime."`
	ChartCacheTTL time.Duration `name:"chart-cache-ttl" default:"5m" env:"LOAN_DASHBOARD_CHART_CACHE_TTL" help:"How long rendered charts are reused; 0 disables caching."`

	Serve      serveCmd      `cmd:"" default:"withargs" help:"Serve the dashboard."`
	Check      checkCmd      `cmd:"" help:"Report the loan API health."`
	Leads      leadsCmd      `cmd:"" help:"List scored leads."`
	Snapshot   snapshotCmd   `cmd:"" help:"Build every page view and print it."`
	CreateLead createLeadCmd `cmd:"" name:"create-lead" help:"Validate and submit a new lead."`
	Pipeline   pipelineCmd   `cmd:"" help:"Show the pipeline stage breakdown."`
}

func main() {
	_ = godotenv.Load()

	var app cli
	ctx := kong.Parse(&app,
		kong.Name("loandash"),
		kong.Description("Loan origination sales dashboard."),
		kong.UsageOnError(),
		kong.Configuration(yamlConfigLoader),
		kong.Vars{
			"default_api_url":     loanapi.DefaultBaseURL,
			"default_chart_theme": dashboard.DefaultChartTheme.Name,
		},
	)
	ctx.BindTo(context.Background(), (*context.Context)(nil))
	ctx.Bind(&app)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// runtime holds the collaborators every command shares.
type runtime struct {
	logger   zerolog.Logger
	api      dashboard.LoanAPI
	service  *dashboard.Service
	activity *dashboard.LeadActivityHub
	out      io.Writer
}

func (c *cli) runtime(out io.Writer) (*runtime, error) {
	logger, err := newLogger(c.Env, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	api, err := c.loanAPI(logger)
	if err != nil {
		return nil, err
	}
	telemetry := dashboard.LogTelemetry{Logger: logger.With().Str("component", "telemetry").Logger()}
	renderer := dashboard.NewEChartsRenderer(
		dashboard.WithEChartsAssetsHost(dashboard.ResolveEChartsAssetsHost(c.EChartsCDN)),
	)
	theme := dashboard.DefaultChartTheme
	theme.Name = c.ChartTheme
	charts := dashboard.NewChartBuilder(
		dashboard.WithChartRenderer(renderer),
		dashboard.WithChartCache(dashboard.NewChartCache(c.ChartCacheTTL)),
		dashboard.WithChartTheme(theme),
		dashboard.WithChartLogger(logger),
	)
	activity := dashboard.NewLeadActivityHub(dashboard.DefaultActivityFeed())
	service := dashboard.NewService(dashboard.Options{
		API:       api,
		Charts:    charts,
		Activity:  activity,
		Events:    activity,
		Logger:    logger,
		Telemetry: telemetry,
	})
	return &runtime{logger: logger, api: api, service: service, activity: activity, out: out}, nil
}

func (c *cli) loanAPI(logger zerolog.Logger) (dashboard.LoanAPI, error) {
	if c.Demo {
		logger.Info().Msg("demo mode: serving fixture data")
		return loanapi.NewMockClient(loanapi.FixtureMockData()), nil
	}
	client, err := loanapi.NewHTTPClient(loanapi.HTTPConfig{
		BaseURL: c.APIURL,
		Timeout: c.APITimeout,
		Session: loanapi.NewMemorySession(c.APIToken),
		Logger:  logger.With().Str("component", "loanapi").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("loandash: %w", err)
	}
	return client, nil
}

// newLogger mirrors the service convention: console output outside production,
// JSON lines in production.
func newLogger(env, level string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("loandash: log level: %w", err)
	}
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
