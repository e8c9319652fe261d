package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func newTestController(api LoanAPI, renderer Renderer) *Controller {
	service := NewService(Options{
		API:    api,
		Charts: testCharts(),
		Clock:  func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) },
	})
	return NewController(ControllerOptions{Service: service, Renderer: renderer})
}

func TestControllerRenderPage(t *testing.T) {
	renderer := &stubRenderer{}
	controller := newTestController(&fakeLoanAPI{fail: true}, renderer)

	var buf bytes.Buffer
	if err := controller.RenderPage(context.Background(), PageDashboard, "/", ViewParams{}, &buf); err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	if renderer.lastTemplate != "dashboard.html" {
		t.Fatalf("expected dashboard template, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
	page, ok := renderer.lastPayload["page"].(map[string]any)
	if !ok {
		t.Fatalf("expected page payload, got %#v", renderer.lastPayload)
	}
	meta := page["meta"].(map[string]any)
	if meta["warning"] != "Failed to load dashboard data - Showing demo data for preview" {
		t.Fatalf("unexpected warning %v", meta["warning"])
	}
	chart := page["revenue_chart"].(map[string]any)
	if chart["container"] == "" {
		t.Fatalf("expected chart container markup")
	}
	shell := renderer.lastPayload["shell"].(map[string]any)
	menu := shell["menu"].([]any)
	if first := menu[0].(map[string]any); first["active"] != true {
		t.Fatalf("expected dashboard menu entry active for root path")
	}
}

func TestControllerTemplateNames(t *testing.T) {
	if got := TemplateFor(PageLeadScoring); got != "lead_scoring.html" {
		t.Fatalf("unexpected template %s", got)
	}
}

func TestControllerRenderPropagatesRendererError(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("template missing")}
	controller := newTestController(&fakeLoanAPI{}, renderer)
	err := controller.RenderPage(context.Background(), PageInsights, "/insights", ViewParams{}, io.Discard)
	if err == nil {
		t.Fatalf("expected render error")
	}
}

func TestControllerRequiresCollaborators(t *testing.T) {
	controller := NewController(ControllerOptions{})
	if _, err := controller.View(context.Background(), PageDashboard, ViewParams{}); !errors.Is(err, errMissingService) {
		t.Fatalf("expected missing service error, got %v", err)
	}
	if err := controller.RenderPage(context.Background(), PageDashboard, "/", ViewParams{}, io.Discard); !errors.Is(err, errMissingRenderer) {
		t.Fatalf("expected missing renderer error, got %v", err)
	}
}

func TestControllerRenderLogin(t *testing.T) {
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{Renderer: renderer})
	if err := controller.RenderLogin(io.Discard); err != nil {
		t.Fatalf("RenderLogin returned error: %v", err)
	}
	if renderer.lastTemplate != LoginTemplate || renderer.lastPayload["brand"] != BrandName {
		t.Fatalf("unexpected login render %s %v", renderer.lastTemplate, renderer.lastPayload)
	}
}
