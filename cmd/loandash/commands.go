package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/queries"
)

type checkCmd struct{}

func (cmd *checkCmd) Run(ctx context.Context, app *cli) error {
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	health, err := queries.NewHealthQuery(rt.service).Query(ctx, struct{}{})
	if err != nil {
		return fmt.Errorf("loandash: loan api unreachable at %s: %w", app.APIURL, err)
	}
	fmt.Fprintf(rt.out, "✓ %s (%s, v%s)\n", health.Message, health.Status, health.Version)
	return nil
}

type leadsCmd struct {
	Filter string `default:"all" enum:"all,high,medium,low" help:"Urgency filter."`
	Sort   string `default:"score" enum:"score,date,amount" help:"Sort order."`
	Format string `default:"table" enum:"table,json,yaml" help:"Output format."`
}

func (cmd *leadsCmd) Run(ctx context.Context, app *cli) error {
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	view, err := rt.service.LeadScoring(ctx, dashboard.ParseLeadFilter(cmd.Filter), dashboard.ParseLeadSort(cmd.Sort))
	if err != nil {
		return err
	}
	if view.Meta.Warning != "" {
		rt.logger.Warn().Msg(view.Meta.Warning)
	}
	if cmd.Format != "table" {
		return writeStructured(rt.out, cmd.Format, view)
	}
	return writeLeadTable(rt.out, view)
}

type snapshotCmd struct {
	Page    []string      `help:"Pages to include (dashboard, lead-scoring, performance, forecasting, insights). Defaults to all."`
	Format  string        `default:"yaml" enum:"json,yaml" help:"Output format."`
	Timeout time.Duration `default:"30s" help:"Overall deadline for all page loads."`
}

func (cmd *snapshotCmd) Run(ctx context.Context, app *cli) error {
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	pages, err := parsePages(cmd.Page)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	var snapshot commands.Snapshot
	run := commands.NewSnapshotCommand(rt.service, dashboard.LogTelemetry{Logger: rt.logger})
	if err := run.Execute(ctx, commands.SnapshotInput{Pages: pages, Result: &snapshot}); err != nil {
		return err
	}
	return writeStructured(rt.out, cmd.Format, snapshotDocument(snapshot))
}

func parsePages(values []string) ([]dashboard.PageID, error) {
	pages := make([]dashboard.PageID, 0, len(values))
	for _, value := range values {
		id, ok := dashboard.ResolvePath("/" + value)
		if !ok {
			return nil, fmt.Errorf("loandash: %w: %q", dashboard.ErrUnknownPage, value)
		}
		pages = append(pages, id)
	}
	return pages, nil
}

type createLeadCmd struct {
	Name         string  `required:"" help:"Full name."`
	Email        string  `required:"" help:"Email address."`
	Phone        string  `required:"" help:"Phone number."`
	LoanAmount   float64 `name:"loan-amount" required:"" help:"Requested loan amount in USD."`
	CreditScore  int     `name:"credit-score" required:"" help:"FICO score (300-850)."`
	Income       float64 `required:"" help:"Annual income in USD."`
	DebtToIncome float64 `name:"dti" required:"" help:"Debt-to-income ratio as a fraction, e.g. 0.28."`
	LoanType     string  `name:"loan-type" default:"Conventional" help:"Loan product."`
	Stage        string  `default:"New Lead" help:"Pipeline stage."`
}

func (cmd *createLeadCmd) Run(ctx context.Context, app *cli) error {
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	var result dashboard.CreateLeadResult
	create := commands.NewCreateLeadCommand(rt.service, dashboard.LogTelemetry{Logger: rt.logger})
	err = create.Execute(ctx, commands.CreateLeadInput{Lead: cmd.input(), Result: &result})
	if dashboard.IsValidationError(err) {
		return fmt.Errorf("loandash: invalid lead: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✓ %s: %s scored %s\n", result.Message, result.Lead.Name, dashboard.FormatPercent(result.LeadScore))
	return nil
}

func (cmd *createLeadCmd) input() dashboard.CreateLeadInput {
	return dashboard.CreateLeadInput{
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		LoanAmount:   cmd.LoanAmount,
		CreditScore:  cmd.CreditScore,
		Income:       cmd.Income,
		DebtToIncome: cmd.DebtToIncome,
		LoanType:     cmd.LoanType,
		Stage:        cmd.Stage,
	}
}

type pipelineCmd struct {
	Format string `default:"table" enum:"table,json,yaml" help:"Output format."`
}

func (cmd *pipelineCmd) Run(ctx context.Context, app *cli) error {
	rt, err := app.runtime(os.Stdout)
	if err != nil {
		return err
	}
	state, err := queries.NewPipelineQuery(rt.service).Query(ctx, struct{}{})
	if err != nil {
		return err
	}
	if state.UsedFallback() {
		rt.logger.Warn().Err(state.Err()).Msg("pipeline unavailable, showing demo data")
	}
	if !state.IsReady() {
		return errors.New("loandash: pipeline did not load")
	}
	if cmd.Format != "table" {
		return writeStructured(rt.out, cmd.Format, state.Data())
	}
	return writePipelineTable(rt.out, state.Data())
}
