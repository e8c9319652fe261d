package dashboard

import (
	core "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Controller exposes the page controller.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// PageID re-export for convenience.
type PageID = core.PageID

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewController proxies to the internal constructor.
func NewController(opts ControllerOptions) *Controller {
	return core.NewController(opts)
}

// Pages lists the dashboard pages in menu order.
func Pages() []PageID {
	return append([]PageID{}, core.AllPages...)
}
