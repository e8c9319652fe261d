package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

type pipelineService interface {
	Pipeline(ctx context.Context) (dashboard.PageState[dashboard.PipelineStages], error)
}

// PipelineQuery loads the pipeline breakdown, falling back to the fixture.
type PipelineQuery struct {
	service pipelineService
}

// NewPipelineQuery builds the query.
func NewPipelineQuery(service pipelineService) *PipelineQuery {
	return &PipelineQuery{service: service}
}

var _ gocommand.Querier[struct{}, dashboard.PageState[dashboard.PipelineStages]] = (*PipelineQuery)(nil)

func (q *PipelineQuery) Query(ctx context.Context, _ struct{}) (dashboard.PageState[dashboard.PipelineStages], error) {
	return q.service.Pipeline(ctx)
}

type healthService interface {
	Health(ctx context.Context) (dashboard.HealthStatus, error)
}

// HealthQuery asks the backend for its liveness payload. Errors are not masked.
type HealthQuery struct {
	service healthService
}

// NewHealthQuery builds the query.
func NewHealthQuery(service healthService) *HealthQuery {
	return &HealthQuery{service: service}
}

var _ gocommand.Querier[struct{}, dashboard.HealthStatus] = (*HealthQuery)(nil)

func (q *HealthQuery) Query(ctx context.Context, _ struct{}) (dashboard.HealthStatus, error) {
	return q.service.Health(ctx)
}
