package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
// Every backend call runs with the caller's token; a rejected token sends
// the browser to LoginPath.
type Handlers struct {
	Controller *dashboard.Controller
	CreateLead gocommand.Commander[commands.CreateLeadInput]
	PageView   gocommand.Querier[queries.PageViewInput, any]
	Health     gocommand.Querier[struct{}, dashboard.HealthStatus]
	Activity   *dashboard.LeadActivityHub
	Logger     zerolog.Logger
	LoginPath  string
}

// Mount registers the page, state, lead, login, health and activity routes on mux.
func (h *Handlers) Mount(mux *http.ServeMux) {
	if h.Controller != nil {
		mux.HandleFunc("GET /{$}", h.HandlePage(dashboard.PageDashboard, dashboard.RootPath))
		for _, id := range dashboard.AllPages {
			mux.HandleFunc("GET "+id.Path(), h.HandlePage(id, id.Path()))
		}
		mux.HandleFunc("GET "+h.loginPath(), h.HandleLogin)
	}
	if h.PageView != nil {
		mux.HandleFunc("GET /_state/{page}", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePageState(w, r, r.PathValue("page"))
		})
	}
	if h.CreateLead != nil {
		mux.HandleFunc("POST /leads", h.HandleCreateLead)
	}
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	if h.Activity != nil {
		mux.HandleFunc("GET /ws/activity", h.Activity.ServeWebSocket)
	}
}

func (h *Handlers) loginPath() string {
	if h.LoginPath == "" {
		return DefaultLoginPath
	}
	return h.LoginPath
}

// HandlePage renders the page HTML for id; path drives the active menu entry.
func (h *Handlers) HandlePage(id dashboard.PageID, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromRequest(r)
		var buf bytes.Buffer
		err := h.Controller.RenderPage(session.Bind(r.Context()), id, path, viewParams(r), &buf)
		if session.Expired() {
			RejectSession(w, h.loginPath())
			return
		}
		if err != nil {
			h.Logger.Error().Err(err).Str("page", string(id)).Msg("page render failed")
			h.fail(w, err)
			return
		}
		writeHTML(w, buf.Bytes())
	}
}

// HandleLogin renders the signed-out landing page.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Controller.RenderLogin(&buf); err != nil {
		h.Logger.Error().Err(err).Msg("login render failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeHTML(w, buf.Bytes())
}

func viewParams(r *http.Request) dashboard.ViewParams {
	query := r.URL.Query()
	return dashboard.ViewParams{
		Filter: dashboard.ParseLeadFilter(query.Get("filter")),
		Sort:   dashboard.ParseLeadSort(query.Get("sort")),
	}
}

// HealthReport is the /healthz payload. Upstream is omitted when the backend is down.
type HealthReport struct {
	Status        string                  `json:"status"`
	Time          time.Time               `json:"time"`
	Upstream      *dashboard.HealthStatus `json:"upstream,omitempty"`
	UpstreamError string                  `json:"upstream_error,omitempty"`
}

// HandlePageState writes the view model of the page named by slug as JSON.
func (h *Handlers) HandlePageState(w http.ResponseWriter, r *http.Request, slug string) {
	id, ok := dashboard.ResolvePath("/" + slug)
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}
	session := SessionFromRequest(r)
	view, err := h.PageView.Query(session.Bind(r.Context()), queries.PageViewInput{
		Page:   id,
		Params: viewParams(r),
	})
	if session.Expired() {
		RejectSession(w, h.loginPath())
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCreateLead validates the posted lead and forwards it to the backend.
func (h *Handlers) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session := SessionFromRequest(r)
	var result dashboard.CreateLeadResult
	err := h.CreateLead.Execute(session.Bind(r.Context()), commands.CreateLeadInput{Lead: payload, Result: &result})
	if session.Expired() {
		RejectSession(w, h.loginPath())
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleHealth always answers 200 while this process is up; upstream failures
// are reported in the body.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	session := SessionFromRequest(r)
	writeJSON(w, http.StatusOK, BuildHealthReport(session.Bind(r.Context()), h.Health))
}

// BuildHealthReport asks the upstream through query and folds the answer into a report.
func BuildHealthReport(ctx context.Context, query gocommand.Querier[struct{}, dashboard.HealthStatus]) HealthReport {
	report := HealthReport{Status: "ok", Time: time.Now().UTC()}
	if query == nil {
		return report
	}
	upstream, err := query.Query(ctx, struct{}{})
	if err != nil {
		report.Status = "degraded"
		report.UpstreamError = err.Error()
		return report
	}
	report.Upstream = &upstream
	return report
}

// StatusFor maps a service error to the HTTP status returned to the browser.
func StatusFor(err error) int {
	var apiErr *loanapi.APIError
	switch {
	case dashboard.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownPage):
		return http.StatusNotFound
	case loanapi.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= 500 {
		h.Logger.Error().Err(err).Int("status", status).Msg("dashboard request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
