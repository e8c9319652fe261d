package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	dashboard "github.com/goliatone/go-loan-dashboard/components/dashboard"
)

func TestCreateLeadCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewCreateLeadCommand(service, telemetry)
	var result dashboard.CreateLeadResult
	input := CreateLeadInput{
		Lead:   dashboard.CreateLeadInput{Name: "Jane Doe", Email: "jane@example.com"},
		Result: &result,
	}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.createCalls != 1 {
		t.Fatalf("expected create call")
	}
	if result.LeadScore != 81.2 || result.Lead.Name != "Jane Doe" {
		t.Fatalf("expected result to be stored, got %+v", result)
	}
	if telemetry.count() != 0 {
		t.Fatalf("expected no rejection telemetry")
	}
}

func TestCreateLeadCommandRecordsRejection(t *testing.T) {
	service := &stubService{err: errors.New("dashboard: lead_input failed validation")}
	telemetry := &stubTelemetry{}
	cmd := NewCreateLeadCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), CreateLeadInput{}); err == nil {
		t.Fatalf("expected error")
	}
	if telemetry.count() != 1 || telemetry.events[0] != "dashboard.lead.rejected" {
		t.Fatalf("expected rejection event, got %v", telemetry.events)
	}
}

func TestCreateLeadCommandRequiresService(t *testing.T) {
	cmd := NewCreateLeadCommand(nil, nil)
	if err := cmd.Execute(context.Background(), CreateLeadInput{}); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestSnapshotCommandBuildsEveryPage(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSnapshotCommand(service, telemetry)
	var snapshot Snapshot
	if err := cmd.Execute(context.Background(), SnapshotInput{Result: &snapshot}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(snapshot) != len(dashboard.AllPages) {
		t.Fatalf("expected %d pages, got %d", len(dashboard.AllPages), len(snapshot))
	}
	if snapshot[dashboard.PageInsights] != dashboard.PageInsights {
		t.Fatalf("unexpected insights view %v", snapshot[dashboard.PageInsights])
	}
	if telemetry.count() != 1 {
		t.Fatalf("expected snapshot telemetry")
	}
}

func TestSnapshotCommandSelectedPagesAndErrors(t *testing.T) {
	service := &stubService{failPage: dashboard.PageForecasting}
	cmd := NewSnapshotCommand(service, nil)
	var snapshot Snapshot
	err := cmd.Execute(context.Background(), SnapshotInput{
		Pages:  []dashboard.PageID{dashboard.PagePerformance, dashboard.PageForecasting},
		Result: &snapshot,
	})
	if err == nil {
		t.Fatalf("expected error from failing page")
	}
	if snapshot != nil {
		t.Fatalf("expected no partial snapshot, got %v", snapshot)
	}
	if service.viewCalls() != 2 {
		t.Fatalf("expected two page builds, got %d", service.viewCalls())
	}
}

type stubService struct {
	mu          sync.Mutex
	createCalls int
	views       int
	err         error
	failPage    dashboard.PageID
}

func (s *stubService) CreateLead(_ context.Context, input dashboard.CreateLeadInput) (dashboard.CreateLeadResult, error) {
	s.createCalls++
	if s.err != nil {
		return dashboard.CreateLeadResult{}, s.err
	}
	return dashboard.CreateLeadResult{Lead: dashboard.Lead{Name: input.Name}, LeadScore: 81.2}, nil
}

func (s *stubService) BuildView(_ context.Context, id dashboard.PageID, _ dashboard.ViewParams) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views++
	if id == s.failPage {
		return nil, dashboard.ErrUnknownPage
	}
	return id, nil
}

func (s *stubService) viewCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views
}

type stubTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *stubTelemetry) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
