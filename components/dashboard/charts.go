package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ChartKind identifies one of the supported chart wrappers.
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartLine     ChartKind = "line"
	ChartDoughnut ChartKind = "doughnut"
)

// DefaultChartHeight is the pixel height used when callers do not set one.
const DefaultChartHeight = 300

// NoDataMessage is shown instead of a chart when the input cannot be drawn.
const NoDataMessage = "No data available"

var sharedChartCache = NewChartCache(5 * time.Minute)

// Dataset is one series of values aligned with ChartData.Labels. Missing
// points are encoded as NaN.
type Dataset struct {
	Label            string    `json:"label"`
	Data             []float64 `json:"data"`
	BackgroundColor  string    `json:"backgroundColor,omitempty"`
	BackgroundColors []string  `json:"backgroundColors,omitempty"`
	BorderColor      string    `json:"borderColor,omitempty"`
	Dashed           bool      `json:"dashed,omitempty"`
}

// ChartData is the generic labels plus datasets shape consumed by every wrapper.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Valid reports whether the data can be drawn: labels and datasets must be
// present and every dataset must carry one value per label.
func (d ChartData) Valid() bool {
	if d.Labels == nil || d.Datasets == nil {
		return false
	}
	for _, ds := range d.Datasets {
		if len(ds.Data) != len(d.Labels) {
			return false
		}
	}
	return true
}

// BarOptions customizes a bar chart.
type BarOptions struct {
	Title      string
	Height     int
	Horizontal bool
	Color      string
	Class      string
	Style      string
}

// LineOptions customizes a line chart.
type LineOptions struct {
	Title  string
	Height int
	Fill   bool
	Color  string
	Class  string
	Style  string
}

// DoughnutOptions customizes a doughnut chart.
type DoughnutOptions struct {
	Title      string
	Height     int
	HideLegend bool
	Class      string
	Style      string
}

// SeriesSpec is a fully resolved series, colors included.
type SeriesSpec struct {
	Name            string
	Values          []float64
	BackgroundColor string
	BorderColor     string
	SliceColors     []string
	Dashed          bool
}

// ChartSpec is the library-neutral description handed to a ChartRenderer.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	Labels      []string
	Series      []SeriesSpec
	Horizontal  bool
	Fill        bool
	ShowLegend  bool
	Height      int
	Theme       ChartTheme
	Percentages []float64
}

// ID is a stable identifier derived from the spec contents.
func (s ChartSpec) ID() string {
	h := sha1.New()
	fmt.Fprintf(h, "%#v", s)
	return "chart_" + hex.EncodeToString(h.Sum(nil))[:16]
}

// ChartRenderer turns a ChartSpec into HTML markup.
type ChartRenderer interface {
	RenderChart(spec ChartSpec) (string, error)
}

// ChartRendererFunc adapts a function to ChartRenderer.
type ChartRendererFunc func(spec ChartSpec) (string, error)

// RenderChart implements ChartRenderer.
func (f ChartRendererFunc) RenderChart(spec ChartSpec) (string, error) {
	return f(spec)
}

// Chart is the rendered output of a wrapper.
type Chart struct {
	Kind        ChartKind `json:"kind"`
	HTML        string    `json:"html"`
	Placeholder bool      `json:"placeholder"`
	Height      int       `json:"height"`
	Class       string    `json:"class,omitempty"`
	Style       string    `json:"style,omitempty"`
	// Container is Markup precomputed for templates that cannot call methods.
	Container string `json:"container"`
}

func (c Chart) withContainer() Chart {
	c.Container = c.Markup()
	return c
}

// Markup wraps the chart in its sized container.
func (c Chart) Markup() string {
	var b strings.Builder
	class := "chart"
	if c.Placeholder {
		class = "chart-placeholder"
	}
	if c.Class != "" {
		class += " " + c.Class
	}
	style := fmt.Sprintf("height: %dpx;", c.Height)
	if c.Style != "" {
		style += " " + c.Style
	}
	fmt.Fprintf(&b, `<div class="%s" style="%s">`, html.EscapeString(class), html.EscapeString(style))
	if c.Placeholder {
		fmt.Fprintf(&b, `<p class="chart-placeholder__message">%s</p>`, NoDataMessage)
	} else {
		b.WriteString(c.HTML)
	}
	b.WriteString("</div>")
	return b.String()
}

// ChartBuilder resolves wrapper input into specs and renders them.
type ChartBuilder struct {
	renderer ChartRenderer
	cache    RenderCache
	palette  Palette
	theme    ChartTheme
	logger   zerolog.Logger
}

// ChartBuilderOption customizes a ChartBuilder.
type ChartBuilderOption func(*ChartBuilder)

// WithChartRenderer swaps the rendering backend.
func WithChartRenderer(renderer ChartRenderer) ChartBuilderOption {
	return func(b *ChartBuilder) {
		if renderer != nil {
			b.renderer = renderer
		}
	}
}

// WithChartCache injects a render cache. Passing nil disables caching.
func WithChartCache(cache RenderCache) ChartBuilderOption {
	return func(b *ChartBuilder) {
		b.cache = cache
	}
}

// WithPalette overrides the default palette.
func WithPalette(p Palette) ChartBuilderOption {
	return func(b *ChartBuilder) {
		b.palette = p
	}
}

// WithChartTheme overrides the shared chart theme.
func WithChartTheme(theme ChartTheme) ChartBuilderOption {
	return func(b *ChartBuilder) {
		b.theme = theme.withDefaults()
	}
}

// WithChartLogger sets the logger used for render failures.
func WithChartLogger(logger zerolog.Logger) ChartBuilderOption {
	return func(b *ChartBuilder) {
		b.logger = logger
	}
}

// NewChartBuilder returns a builder backed by go-echarts and the shared cache.
func NewChartBuilder(opts ...ChartBuilderOption) *ChartBuilder {
	b := &ChartBuilder{
		renderer: NewEChartsRenderer(),
		cache:    sharedChartCache,
		palette:  DefaultPalette,
		theme:    DefaultChartTheme,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Palette returns the palette the builder resolves defaults from.
func (b *ChartBuilder) Palette() Palette {
	return b.palette
}

// Bar renders categorical bars.
func (b *ChartBuilder) Bar(data ChartData, o BarOptions) Chart {
	height := chartHeight(o.Height)
	if !data.Valid() {
		return placeholderChart(ChartBar, height, o.Class, o.Style)
	}
	return b.render(b.barSpec(data, o), o.Class, o.Style)
}

// Line renders a line series, optionally filled.
func (b *ChartBuilder) Line(data ChartData, o LineOptions) Chart {
	height := chartHeight(o.Height)
	if !data.Valid() {
		return placeholderChart(ChartLine, height, o.Class, o.Style)
	}
	return b.render(b.lineSpec(data, o), o.Class, o.Style)
}

// Doughnut renders a proportional doughnut whose legend and tooltip carry
// each entry's share of the first dataset.
func (b *ChartBuilder) Doughnut(data ChartData, o DoughnutOptions) Chart {
	height := chartHeight(o.Height)
	if !data.Valid() || len(data.Datasets) == 0 {
		return placeholderChart(ChartDoughnut, height, o.Class, o.Style)
	}
	return b.render(b.doughnutSpec(data, o), o.Class, o.Style)
}

func (b *ChartBuilder) barSpec(data ChartData, o BarOptions) ChartSpec {
	color := firstNonEmpty(o.Color, b.palette.Primary.Main)
	spec := ChartSpec{
		Kind:       ChartBar,
		Title:      o.Title,
		Labels:     cloneStrings(data.Labels),
		Horizontal: o.Horizontal,
		ShowLegend: true,
		Height:     chartHeight(o.Height),
		Theme:      b.theme,
	}
	for _, ds := range data.Datasets {
		spec.Series = append(spec.Series, SeriesSpec{
			Name:            ds.Label,
			Values:          cloneFloats(ds.Data),
			BackgroundColor: firstNonEmpty(ds.BackgroundColor, fadeColor(color, barFillAlpha)),
			BorderColor:     firstNonEmpty(ds.BorderColor, color),
			Dashed:          ds.Dashed,
		})
	}
	return spec
}

func (b *ChartBuilder) lineSpec(data ChartData, o LineOptions) ChartSpec {
	color := firstNonEmpty(o.Color, b.palette.Primary.Main)
	spec := ChartSpec{
		Kind:       ChartLine,
		Title:      o.Title,
		Labels:     cloneStrings(data.Labels),
		Fill:       o.Fill,
		ShowLegend: true,
		Height:     chartHeight(o.Height),
		Theme:      b.theme,
	}
	for _, ds := range data.Datasets {
		border := firstNonEmpty(ds.BorderColor, color)
		background := transparentColor
		if o.Fill {
			background = firstNonEmpty(ds.BackgroundColor, fadeColor(border, lineFillAlpha))
		}
		spec.Series = append(spec.Series, SeriesSpec{
			Name:            ds.Label,
			Values:          cloneFloats(ds.Data),
			BackgroundColor: background,
			BorderColor:     border,
			Dashed:          ds.Dashed,
		})
	}
	return spec
}

func (b *ChartBuilder) doughnutSpec(data ChartData, o DoughnutOptions) ChartSpec {
	first := data.Datasets[0]
	colors := first.BackgroundColors
	if len(colors) == 0 && first.BackgroundColor != "" {
		colors = []string{first.BackgroundColor}
	}
	if len(colors) == 0 {
		colors = b.palette.SliceColors()
	}
	slices := make([]string, len(data.Labels))
	for i := range slices {
		slices[i] = colors[i%len(colors)]
	}
	return ChartSpec{
		Kind:       ChartDoughnut,
		Title:      o.Title,
		Labels:     cloneStrings(data.Labels),
		ShowLegend: !o.HideLegend,
		Height:     chartHeight(o.Height),
		Theme:      b.theme,
		Series: []SeriesSpec{{
			Name:        first.Label,
			Values:      cloneFloats(first.Data),
			BorderColor: firstNonEmpty(first.BorderColor, sliceBorderColor),
			SliceColors: slices,
		}},
		Percentages: DoughnutPercentages(first.Data),
	}
}

func (b *ChartBuilder) render(spec ChartSpec, class, style string) Chart {
	renderFn := func() (string, error) {
		return b.renderer.RenderChart(spec)
	}
	var (
		markup string
		err    error
	)
	if b.cache != nil {
		markup, err = b.cache.GetOrRender(spec.ID(), renderFn)
	} else {
		markup, err = renderFn()
	}
	if err != nil {
		b.logger.Warn().Err(err).Str("chart", string(spec.Kind)).Msg("chart render failed")
		return placeholderChart(spec.Kind, spec.Height, class, style)
	}
	return Chart{
		Kind:   spec.Kind,
		HTML:   markup,
		Height: spec.Height,
		Class:  class,
		Style:  style,
	}.withContainer()
}

// DoughnutPercentages returns each value's share of the total rounded to one
// decimal. A zero total yields zero for every entry.
func DoughnutPercentages(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			total += v
		}
	}
	if total == 0 {
		return out
	}
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out[i] = math.Round(v/total*1000) / 10
	}
	return out
}

func placeholderChart(kind ChartKind, height int, class, style string) Chart {
	return Chart{
		Kind:        kind,
		Placeholder: true,
		Height:      chartHeight(height),
		Class:       class,
		Style:       style,
	}.withContainer()
}

func chartHeight(h int) int {
	if h <= 0 {
		return DefaultChartHeight
	}
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
