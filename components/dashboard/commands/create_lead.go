package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

// CreateLeadInput carries the lead payload. When Result is set the command
// stores the backend answer there.
type CreateLeadInput struct {
	Lead   dashboard.CreateLeadInput
	Result *dashboard.CreateLeadResult
}

type leadCreator interface {
	CreateLead(ctx context.Context, input dashboard.CreateLeadInput) (dashboard.CreateLeadResult, error)
}

// CreateLeadCommand validates and submits a new lead through the dashboard service.
type CreateLeadCommand struct {
	service   leadCreator
	telemetry Telemetry
}

// NewCreateLeadCommand creates a command instance.
func NewCreateLeadCommand(service leadCreator, telemetry Telemetry) *CreateLeadCommand {
	return &CreateLeadCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateLeadInput] = (*CreateLeadCommand)(nil)

// Execute delegates to the dashboard service. Rejections are recorded; the
// service records successful creations itself.
func (c *CreateLeadCommand) Execute(ctx context.Context, msg CreateLeadInput) error {
	if c.service == nil {
		return errors.New("create lead command requires service")
	}
	result, err := c.service.CreateLead(ctx, msg.Lead)
	if err != nil {
		c.telemetry.Record(ctx, "dashboard.lead.rejected", map[string]any{
			"email": msg.Lead.Email,
			"error": err.Error(),
		})
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	return nil
}
