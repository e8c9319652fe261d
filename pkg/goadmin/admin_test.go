package goadmin_test

import (
	"context"
	"errors"
	"testing"

	dashboardpkg "github.com/goliatone/go-loan-dashboard/pkg/dashboard"
	"github.com/goliatone/go-loan-dashboard/pkg/goadmin"
	"github.com/goliatone/go-loan-dashboard/pkg/loanapi"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	codes []string
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, code string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	s.items = append(s.items, item)
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := dashboardpkg.NewService(dashboardpkg.Options{API: loanapi.NewMockClient(loanapi.FixtureMockData())})
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         service,
		MenuBuilder:     builder,
		BasePath:        "/admin/loans",
		StartPosition:   10,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != len(dashboardpkg.Pages()) {
		t.Fatalf("expected %d items, got %d", len(dashboardpkg.Pages()), len(builder.items))
	}
	first := builder.items[0]
	if first.Label != "Dashboard" || first.Route != "/admin/loans/dashboard" || first.Position != 10 {
		t.Fatalf("unexpected first item %+v", first)
	}
	if last := builder.items[4]; last.Route != "/admin/loans/insights" || last.Icon != "brain" {
		t.Fatalf("unexpected last item %+v", last)
	}
	if builder.codes[0] != "admin.main" {
		t.Fatalf("expected default menu code, got %s", builder.codes[0])
	}
	if admin.Dashboard() == nil {
		t.Fatalf("expected dashboard service")
	}
}

func TestAdminBootstrapStopsOnError(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu locked")}
	service := dashboardpkg.NewService(dashboardpkg.Options{})
	admin, err := goadmin.New(goadmin.Config{EnableDashboard: true, Service: service, MenuBuilder: builder})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected menu error")
	}
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableDashboard: true}); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: false,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected 0 calls, got %d", len(builder.items))
	}
	if admin.Dashboard() != nil {
		t.Fatalf("expected nil dashboard when disabled")
	}
}
