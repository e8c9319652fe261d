package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/httpapi"
)

// AuthCookie holds the bearer token forwarded to the loan API.
const AuthCookie = httpapi.AuthCookie

// Config wires go-router with the dashboard controller, commands and queries.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	CreateLead gocommand.Commander[commands.CreateLeadInput]
	Health     gocommand.Querier[struct{}, dashboard.HealthStatus]
	Activity   *dashboard.LeadActivityHub
	// Assets serves self-hosted ECharts files when set.
	Assets   fs.FS
	Logger   zerolog.Logger
	BasePath string
	Routes   RouteConfig
}

// RouteConfig customizes the relative paths used for non-page endpoints.
type RouteConfig struct {
	State    string
	Leads    string
	Login    string
	Health   string
	Assets   string
	Activity string
}

// Register mounts the page, state, lead, health and activity routes on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)

	r := cfg.Router
	if cfg.BasePath != "" {
		r = cfg.Router.Group(cfg.BasePath)
	}

	if cfg.Assets != nil {
		r.Static(routes.Assets, ".", router.Static{
			FS:     cfg.Assets,
			Root:   ".",
			MaxAge: 86400,
		})
	}

	r.Get(dashboard.RootPath, pageHandler(cfg, routes, dashboard.PageDashboard, dashboard.RootPath))
	for _, id := range dashboard.AllPages {
		r.Get(id.Path(), pageHandler(cfg, routes, id, id.Path()))
	}

	r.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		id, ok := dashboard.ResolvePath("/" + ctx.Param("page"))
		if !ok {
			return respondError(ctx, http.StatusNotFound, dashboard.ErrUnknownPage)
		}
		session := newRequestSession(ctx)
		view, err := cfg.Controller.View(session.Bind(ctx.Context()), id, viewParams(ctx))
		if session.Expired() {
			return rejectSession(ctx, loginURL(cfg.BasePath, routes.Login))
		}
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderLogin(&buf); err != nil {
			cfg.Logger.Error().Err(err).Msg("login render failed")
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	r.Get(routes.Health, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, httpapi.BuildHealthReport(ctx.Context(), cfg.Health))
	}))

	if cfg.CreateLead != nil {
		r.Post(routes.Leads, router.WrapHandler(func(ctx router.Context) error {
			var payload dashboard.CreateLeadInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			session := newRequestSession(ctx)
			var result dashboard.CreateLeadResult
			err := cfg.CreateLead.Execute(session.Bind(ctx.Context()), commands.CreateLeadInput{Lead: payload, Result: &result})
			if session.Expired() {
				return rejectSession(ctx, loginURL(cfg.BasePath, routes.Login))
			}
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, result)
		}))
	}

	if cfg.Activity != nil {
		registerWebSocket(r, cfg.Activity, routes.Activity)
	}

	return nil
}

func registerWebSocket[T any](r router.Router[T], hub *dashboard.LeadActivityHub, path string) {
	r.WebSocket(path, router.DefaultWebSocketConfig(), func(ws router.WebSocketContext) error {
		events, cancel := hub.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func pageHandler[T any](cfg Config[T], routes RouteConfig, id dashboard.PageID, path string) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		session := newRequestSession(ctx)
		var buf bytes.Buffer
		err := cfg.Controller.RenderPage(session.Bind(ctx.Context()), id, path, viewParams(ctx), &buf)
		if session.Expired() {
			return rejectSession(ctx, loginURL(cfg.BasePath, routes.Login))
		}
		if err != nil {
			cfg.Logger.Error().Err(err).Str("page", string(id)).Msg("page render failed")
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return sendHTML(ctx, buf.Bytes())
	})
}

func viewParams(ctx router.Context) dashboard.ViewParams {
	return dashboard.ViewParams{
		Filter: dashboard.ParseLeadFilter(ctx.Query("filter")),
		Sort:   dashboard.ParseLeadSort(ctx.Query("sort")),
	}
}

func newRequestSession(ctx router.Context) *httpapi.RequestSession {
	local, _ := ctx.Locals("auth_token").(string)
	return httpapi.NewRequestSession(httpapi.ResolveToken(local, ctx.Header("Authorization"), ctx.Header("Cookie")))
}

// rejectSession drops the auth cookie and sends the browser to the login page.
func rejectSession(ctx router.Context, login string) error {
	ctx.SetHeader("Set-Cookie", httpapi.ExpiredCookie())
	ctx.SetHeader("Location", login)
	return ctx.JSON(http.StatusSeeOther, httpapi.SessionExpiredBody(login))
}

// loginURL is the redirect target for a rejected session, under the base path
// the login route was mounted on.
func loginURL(basePath, login string) string {
	if basePath == "" || basePath == "/" {
		return login
	}
	return strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(login, "/")
}

func sendHTML(ctx router.Context, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.State == "" {
		routes.State = "/_state/:page"
	}
	if routes.Leads == "" {
		routes.Leads = "/leads"
	}
	if routes.Login == "" {
		routes.Login = httpapi.DefaultLoginPath
	}
	if routes.Health == "" {
		routes.Health = "/healthz"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultEChartsAssetsPath
	}
	if routes.Activity == "" {
		routes.Activity = "/ws/activity"
	}
	return routes
}
