package goadmin

import (
	"context"
	"errors"
	"path"

	core "github.com/goliatone/go-loan-dashboard/components/dashboard"
	dashboardpkg "github.com/goliatone/go-loan-dashboard/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label       string
	Route       string
	Icon        string
	Description string
	Position    int
}

// Config wires the dashboard service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	// BasePath is the prefix the host mounts the dashboard routes under.
	BasePath string
	// StartPosition offsets the positions given to the page entries.
	StartPosition int
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// MenuItems returns one host menu entry per dashboard page.
func (a *Admin) MenuItems() []MenuItem {
	pages := core.MenuItems("")
	items := make([]MenuItem, 0, len(pages))
	for i, page := range pages {
		items = append(items, MenuItem{
			Label:       page.Name,
			Route:       path.Join(a.cfg.BasePath, page.Path),
			Icon:        page.Icon,
			Description: page.Description,
			Position:    a.cfg.StartPosition + i,
		})
	}
	return items
}

// Bootstrap seeds menu entries when dashboard support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return err
		}
	}
	return nil
}
