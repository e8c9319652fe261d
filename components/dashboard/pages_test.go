package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name    string
	payload map[string]any
}

type telemetryStub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (t *telemetryStub) Record(_ context.Context, event string, payload map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, recordedEvent{name: event, payload: payload})
}

func (t *telemetryStub) names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.events))
	for i, e := range t.events {
		out[i] = e.name
	}
	return out
}

func TestPageStateTransitions(t *testing.T) {
	t.Parallel()
	initial := Loading[int]()
	assert.Equal(t, StatusLoading, initial.Status())
	assert.False(t, initial.IsReady())

	ready := initial.Resolve(7)
	assert.Equal(t, StatusReady, ready.Status())
	assert.Equal(t, 7, ready.Data())
	assert.NoError(t, ready.Err())

	boom := errors.New("boom")
	fallback := initial.Fallback(42, boom)
	assert.Equal(t, StatusReadyWithFallback, fallback.Status())
	assert.True(t, fallback.UsedFallback())
	assert.Equal(t, 42, fallback.Data())
	assert.Equal(t, boom, fallback.Err())

	assert.Equal(t, ready, ready.Fallback(1, boom), "ready is terminal")
	assert.Equal(t, fallback, fallback.Resolve(1), "fallback is terminal")
	assert.Equal(t, "ready_with_fallback", fallback.Status().String())
}

func TestPageLoadSuccessStoresPayloadVerbatim(t *testing.T) {
	t.Parallel()
	calls := 0
	telemetry := &telemetryStub{}
	payload := DashboardSnapshot{TotalLeads: 9, RevenueThisMonth: 1}
	page := NewPage(PageLoader[DashboardSnapshot]{
		ID: PageDashboard,
		Fetch: func(context.Context) (DashboardSnapshot, error) {
			calls++
			return payload, nil
		},
		Fixture:      FixtureDashboardSnapshot,
		ErrorMessage: "Failed to load dashboard data",
	}, PageOptions{Telemetry: telemetry})

	state, err := page.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, state.Status())
	assert.Equal(t, payload, state.Data())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"dashboard.page.load"}, telemetry.names())
}

func TestPageNetworkFailureFallsBackToFixture(t *testing.T) {
	t.Parallel()
	telemetry := &telemetryStub{}
	page := NewPage(PageLoader[DashboardSnapshot]{
		ID: PageDashboard,
		Fetch: func(context.Context) (DashboardSnapshot, error) {
			return DashboardSnapshot{}, errors.New("dial tcp: connection refused")
		},
		Fixture:      FixtureDashboardSnapshot,
		ErrorMessage: "Failed to load dashboard data",
	}, PageOptions{Telemetry: telemetry})

	state, err := page.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReadyWithFallback, state.Status())
	assert.Equal(t, FixtureDashboardSnapshot(), state.Data())
	assert.EqualError(t, state.Err(), "dial tcp: connection refused")
	assert.Equal(t, []string{"dashboard.page.fallback"}, telemetry.names())
}

func TestPageMountOnlyOnce(t *testing.T) {
	t.Parallel()
	page := NewPage(PageLoader[int]{
		Fetch:   func(context.Context) (int, error) { return 1, nil },
		Fixture: func() int { return 0 },
	}, PageOptions{})

	require.NoError(t, page.Mount(context.Background()))
	assert.ErrorIs(t, page.Mount(context.Background()), ErrPageMounted)
	_, err := page.Wait(context.Background())
	require.NoError(t, err)
}

func TestPageUnmountDiscardsLateResponse(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	started := make(chan struct{})
	page := NewPage(PageLoader[int]{
		ID: PageInsights,
		Fetch: func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 99, nil
		},
		Fixture: func() int { return -1 },
	}, PageOptions{})

	require.NoError(t, page.Mount(context.Background()))
	<-started
	page.Unmount()
	close(release)

	state, err := page.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPageUnmounted)
	assert.Equal(t, StatusLoading, state.Status())
	assert.Equal(t, 0, state.Data())
}

func TestPageUnmountCancelsRequest(t *testing.T) {
	t.Parallel()
	cancelled := make(chan struct{})
	started := make(chan struct{})
	page := NewPage(PageLoader[int]{
		Fetch: func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		},
		Fixture: func() int { return -1 },
	}, PageOptions{})

	require.NoError(t, page.Mount(context.Background()))
	<-started
	page.Unmount()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("fetch context was not cancelled")
	}
	_, err := page.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPageUnmounted)
	assert.Equal(t, StatusLoading, page.State().Status())
}

func TestPageWaitHonorsContext(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	defer close(release)
	page := NewPage(PageLoader[int]{
		Fetch: func(context.Context) (int, error) {
			<-release
			return 1, nil
		},
		Fixture: func() int { return 0 },
	}, PageOptions{})
	require.NoError(t, page.Mount(context.Background()))
	defer page.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := page.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPageIDNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "lead-scoring", PageLeadScoring.Slug())
	assert.Equal(t, "lead_scoring", PageLeadScoring.TemplateName())
	assert.Equal(t, "dashboard", PageDashboard.Slug())
}
