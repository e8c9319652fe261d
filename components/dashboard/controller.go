package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ViewBuilder is the slice of Service the controller needs.
type ViewBuilder interface {
	BuildView(ctx context.Context, id PageID, params ViewParams) (any, error)
	Shell(currentPath string) Shell
}

// ControllerOptions wires the controller dependencies.
type ControllerOptions struct {
	Service  ViewBuilder
	Renderer Renderer
}

// Controller turns page views into template payloads and rendered HTML.
type Controller struct {
	service  ViewBuilder
	renderer Renderer
}

var (
	errMissingService  = errors.New("dashboard: controller service not configured")
	errMissingRenderer = errors.New("dashboard: controller renderer not configured")
)

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{service: opts.Service, renderer: opts.Renderer}
}

// TemplateFor returns the template rendered for a page.
func TemplateFor(id PageID) string {
	return id.TemplateName() + ".html"
}

// View returns the page view model, used by the JSON state endpoint.
func (c *Controller) View(ctx context.Context, id PageID, params ViewParams) (any, error) {
	if c.service == nil {
		return nil, errMissingService
	}
	return c.service.BuildView(ctx, id, params)
}

// PagePayload builds the template data for a page: the view under "page"
// and the layout under "shell", both keyed by their JSON field names.
func (c *Controller) PagePayload(ctx context.Context, id PageID, currentPath string, params ViewParams) (map[string]any, error) {
	view, err := c.View(ctx, id, params)
	if err != nil {
		return nil, err
	}
	page, err := toTemplateData(view)
	if err != nil {
		return nil, err
	}
	shell, err := toTemplateData(c.service.Shell(currentPath))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"page_id": string(id),
		"page":    page,
		"shell":   shell,
	}, nil
}

// RenderPage writes the page HTML to out.
func (c *Controller) RenderPage(ctx context.Context, id PageID, currentPath string, params ViewParams, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	payload, err := c.PagePayload(ctx, id, currentPath, params)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(TemplateFor(id), payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", id, err)
	}
	return nil
}

// LoginTemplate is rendered when the backend rejects the session.
const LoginTemplate = "login.html"

// RenderLogin writes the signed-out landing page.
func (c *Controller) RenderLogin(out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	data := map[string]any{"brand": BrandName}
	if _, err := c.renderer.Render(LoginTemplate, data, out); err != nil {
		return fmt.Errorf("dashboard: render login: %w", err)
	}
	return nil
}

// toTemplateData flattens a view into maps so templates see the same keys as
// the JSON state endpoint.
func toTemplateData(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode view: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("dashboard: decode view: %w", err)
	}
	return out, nil
}
