package commands

import (
	"context"
	"errors"
	"sync"

	gocommand "github.com/goliatone/go-command"
	"golang.org/x/sync/errgroup"

	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

// Snapshot maps each page to its built view.
type Snapshot map[dashboard.PageID]any

// SnapshotInput selects the pages to build. An empty Pages list means every page.
type SnapshotInput struct {
	Pages  []dashboard.PageID
	Params dashboard.ViewParams
	Result *Snapshot
}

type viewBuilder interface {
	BuildView(ctx context.Context, id dashboard.PageID, params dashboard.ViewParams) (any, error)
}

// SnapshotCommand mounts the requested pages concurrently, one request each.
type SnapshotCommand struct {
	service   viewBuilder
	telemetry Telemetry
}

// NewSnapshotCommand creates the command.
func NewSnapshotCommand(service viewBuilder, telemetry Telemetry) *SnapshotCommand {
	return &SnapshotCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SnapshotInput] = (*SnapshotCommand)(nil)

// Execute builds every page view; the first error cancels the rest.
func (c *SnapshotCommand) Execute(ctx context.Context, msg SnapshotInput) error {
	if c.service == nil {
		return errors.New("snapshot command requires service")
	}
	pages := msg.Pages
	if len(pages) == 0 {
		pages = dashboard.AllPages
	}

	var (
		mu  sync.Mutex
		out = make(Snapshot, len(pages))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for _, id := range pages {
		group.Go(func() error {
			view, err := c.service.BuildView(groupCtx, id, msg.Params)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = view
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	c.telemetry.Record(ctx, "dashboard.snapshot", map[string]any{
		"pages": len(out),
	})
	if msg.Result != nil {
		*msg.Result = out
	}
	return nil
}
