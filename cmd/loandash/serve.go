package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/queries"
)

type serveCmd struct {
	Addr      string `default:":8080" env:"LOAN_DASHBOARD_ADDR" help:"Listen address."`
	Transport string `default:"fiber" enum:"fiber,http" env:"LOAN_DASHBOARD_TRANSPORT" help:"HTTP stack: go-router on fiber, or the standard library mux."`
	AssetsDir string `name:"assets-dir" type:"existingdir" env:"LOAN_DASHBOARD_ASSETS_DIR" help:"Directory with self-hosted ECharts files, mounted at /assets/echarts/."`
}

func (cmd *serveCmd) Run(_ context.Context, app *cli) error {
	if cmd.AssetsDir != "" && app.EChartsCDN == "" {
		app.EChartsCDN = dashboard.DefaultEChartsAssetsPath
	}
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	templates, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  rt.service,
		Renderer: templates,
	})

	createLead := commands.NewCreateLeadCommand(rt.service, dashboard.LogTelemetry{Logger: rt.logger})
	health := queries.NewHealthQuery(rt.service)

	rt.logger.Info().
		Str("addr", cmd.Addr).
		Str("transport", cmd.Transport).
		Bool("demo", app.Demo).
		Str("api_url", app.APIURL).
		Msg("dashboard listening")

	if cmd.Transport == "http" {
		handlers := &httpapi.Handlers{
			Controller: controller,
			CreateLead: createLead,
			PageView:   queries.NewPageViewQuery(rt.service),
			Health:     health,
			Activity:   rt.activity,
			Logger:     rt.logger,
		}
		mux := http.NewServeMux()
		handlers.Mount(mux)
		if cmd.AssetsDir != "" {
			mux.Handle("GET "+dashboard.DefaultEChartsAssetsPath, http.StripPrefix(dashboard.DefaultEChartsAssetsPath, http.FileServerFS(os.DirFS(cmd.AssetsDir))))
		}
		return http.ListenAndServe(cmd.Addr, mux)
	}

	cfg := gorouter.Config[*fiber.App]{
		Controller: controller,
		CreateLead: createLead,
		Health:     health,
		Activity:   rt.activity,
		Logger:     rt.logger,
	}
	if cmd.AssetsDir != "" {
		cfg.Assets = os.DirFS(cmd.AssetsDir)
	}

	server := router.NewFiberAdapter()
	cfg.Router = server.Router()
	if err := gorouter.Register(cfg); err != nil {
		return err
	}
	return server.Serve(cmd.Addr)
}
