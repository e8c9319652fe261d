package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

// PageViewInput identifies a page and its list controls.
type PageViewInput struct {
	Page   dashboard.PageID
	Params dashboard.ViewParams
}

type viewService interface {
	BuildView(ctx context.Context, id dashboard.PageID, params dashboard.ViewParams) (any, error)
}

// PageViewQuery mounts a page and returns its view model.
type PageViewQuery struct {
	service viewService
}

// NewPageViewQuery builds the query.
func NewPageViewQuery(service viewService) *PageViewQuery {
	return &PageViewQuery{service: service}
}

var _ gocommand.Querier[PageViewInput, any] = (*PageViewQuery)(nil)

// Query builds the view for the requested page.
func (q *PageViewQuery) Query(ctx context.Context, input PageViewInput) (any, error) {
	return q.service.BuildView(ctx, input.Page, input.Params)
}
