package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/ettle/strcase"
	"github.com/rs/zerolog"
)

var (
	// ErrPageMounted is returned when Mount is called twice on the same page.
	ErrPageMounted = errors.New("dashboard: page already mounted")
	// ErrPageUnmounted is returned by Wait when the page was unmounted before
	// its request finished.
	ErrPageUnmounted = errors.New("dashboard: page unmounted before ready")
)

// PageStatus enumerates the page lifecycle.
type PageStatus int

const (
	StatusLoading PageStatus = iota
	StatusReady
	StatusReadyWithFallback
)

func (s PageStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusReadyWithFallback:
		return "ready_with_fallback"
	default:
		return "loading"
	}
}

// PageState is the Loading | Ready | ReadyWithFallback union. Transitions
// are pure and only leave Loading; both ready states are terminal.
type PageState[T any] struct {
	status PageStatus
	data   T
	err    error
}

// Loading returns the initial state.
func Loading[T any]() PageState[T] {
	return PageState[T]{status: StatusLoading}
}

// Resolve stores the payload verbatim and moves to Ready.
func (s PageState[T]) Resolve(data T) PageState[T] {
	if s.status != StatusLoading {
		return s
	}
	return PageState[T]{status: StatusReady, data: data}
}

// Fallback stores the fixture, keeps the error and moves to ReadyWithFallback.
func (s PageState[T]) Fallback(fixture T, err error) PageState[T] {
	if s.status != StatusLoading {
		return s
	}
	return PageState[T]{status: StatusReadyWithFallback, data: fixture, err: err}
}

// Status reports the current state.
func (s PageState[T]) Status() PageStatus { return s.status }

// Data returns the stored payload. It is the zero value while loading.
func (s PageState[T]) Data() T { return s.data }

// Err is the failure that caused a fallback.
func (s PageState[T]) Err() error { return s.err }

// IsReady reports whether either ready state has been reached.
func (s PageState[T]) IsReady() bool { return s.status != StatusLoading }

// UsedFallback reports whether fixture data is being shown.
func (s PageState[T]) UsedFallback() bool { return s.status == StatusReadyWithFallback }

// PageID names one of the dashboard pages.
type PageID string

const (
	PageDashboard   PageID = "Dashboard"
	PageLeadScoring PageID = "LeadScoring"
	PagePerformance PageID = "Performance"
	PageForecasting PageID = "Forecasting"
	PageInsights    PageID = "Insights"
)

// AllPages lists the pages in menu order.
var AllPages = []PageID{PageDashboard, PageLeadScoring, PagePerformance, PageForecasting, PageInsights}

// Slug is the kebab-cased page id used in routes.
func (id PageID) Slug() string {
	return strcase.ToKebab(string(id))
}

// TemplateName is the snake-cased page id used to pick the page template.
func (id PageID) TemplateName() string {
	return strcase.ToSnake(string(id))
}

// PageLoader describes how a page fetches its resource and what it shows
// when that fails.
type PageLoader[T any] struct {
	ID           PageID
	Fetch        func(ctx context.Context) (T, error)
	Fixture      func() T
	ErrorMessage string
}

// PageOptions carries the ambient collaborators of a page.
type PageOptions struct {
	Logger    zerolog.Logger
	Telemetry Telemetry
}

// Page runs the single fetch of a mounted page and guards against applying a
// response after unmount.
type Page[T any] struct {
	loader    PageLoader[T]
	logger    zerolog.Logger
	telemetry Telemetry

	mu      sync.Mutex
	state   PageState[T]
	mounted bool
	used    bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPage builds an unmounted page in the Loading state.
func NewPage[T any](loader PageLoader[T], opts PageOptions) *Page[T] {
	return &Page[T]{
		loader:    loader,
		logger:    opts.Logger,
		telemetry: normalizeTelemetry(opts.Telemetry),
		state:     Loading[T](),
		done:      make(chan struct{}),
	}
}

// Mount issues exactly one fetch. A page can only be mounted once.
func (p *Page[T]) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.used {
		p.mu.Unlock()
		return ErrPageMounted
	}
	p.used = true
	p.mounted = true
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(fetchCtx)
	return nil
}

func (p *Page[T]) run(ctx context.Context) {
	defer close(p.done)
	data, err := p.loader.Fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		p.logger.Debug().Str("page", string(p.loader.ID)).Msg("discarding response for unmounted page")
		return
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("page", string(p.loader.ID)).Msg(p.loader.ErrorMessage)
		p.state = p.state.Fallback(p.loader.Fixture(), err)
		p.telemetry.Record(ctx, "dashboard.page.fallback", map[string]any{
			"page":  string(p.loader.ID),
			"error": err.Error(),
		})
		return
	}
	p.state = p.state.Resolve(data)
	p.telemetry.Record(ctx, "dashboard.page.load", map[string]any{
		"page": string(p.loader.ID),
	})
}

// Unmount cancels an in-flight request. A response arriving afterwards is
// discarded and the state stays as it was.
func (p *Page[T]) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mounted = false
	if p.cancel != nil {
		p.cancel()
	}
}

// State returns the current state snapshot.
func (p *Page[T]) State() PageState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until the fetch settles or ctx is done.
func (p *Page[T]) Wait(ctx context.Context) (PageState[T], error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return p.State(), ctx.Err()
	}
	state := p.State()
	if !state.IsReady() {
		return state, ErrPageUnmounted
	}
	return state, nil
}

// Load mounts the page, waits for it and unmounts it.
func (p *Page[T]) Load(ctx context.Context) (PageState[T], error) {
	if err := p.Mount(ctx); err != nil {
		return p.State(), err
	}
	defer p.Unmount()
	return p.Wait(ctx)
}
