package dashboard

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missingValue is how ECharts encodes a gap in a series.
const missingValue = "-"

// EChartsRenderer renders chart specs to server-side go-echarts markup.
type EChartsRenderer struct {
	assetsHost string
}

// EChartsOption customizes the renderer.
type EChartsOption func(*EChartsRenderer)

// WithEChartsAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithEChartsAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds the default renderer.
func NewEChartsRenderer(opts ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ChartRenderer = (*EChartsRenderer)(nil)

// RenderChart implements ChartRenderer.
func (r *EChartsRenderer) RenderChart(spec ChartSpec) (string, error) {
	spec = sanitizeSpec(spec)
	switch spec.Kind {
	case ChartBar:
		return r.renderBarChart(spec)
	case ChartLine:
		return r.renderLineChart(spec)
	case ChartDoughnut:
		return r.renderDoughnutChart(spec)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", spec.Kind)
	}
}

func (r *EChartsRenderer) renderBarChart(spec ChartSpec) (string, error) {
	bar := charts.NewBar()
	category, value := "category", "value"
	if spec.Horizontal {
		category, value = value, category
	}
	globals := append(r.globalChartOptions(spec),
		charts.WithTooltipOpts(axisTooltip(spec.Theme)),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      category,
			SplitLine: gridLine(!spec.Horizontal, spec.Theme),
			AxisLabel: &opts.AxisLabel{Color: spec.Theme.TickColor},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      value,
			SplitLine: gridLine(spec.Horizontal, spec.Theme),
			AxisLabel: &opts.AxisLabel{Color: spec.Theme.TickColor},
		}),
	)
	bar.SetGlobalOptions(globals...)
	bar.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		bar.AddSeries(s.Name, toBarData(spec.Labels, s.Values),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:        s.BackgroundColor,
				BorderColor:  s.BorderColor,
				BorderWidth:  1,
				BorderRadius: "4",
			}),
		)
	}
	if spec.Horizontal {
		bar.XYReversal()
	}
	return renderChart(bar)
}

func (r *EChartsRenderer) renderLineChart(spec ChartSpec) (string, error) {
	line := charts.NewLine()
	globals := append(r.globalChartOptions(spec),
		charts.WithTooltipOpts(axisTooltip(spec.Theme)),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitLine: gridLine(false, spec.Theme),
			AxisLabel: &opts.AxisLabel{Color: spec.Theme.TickColor},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			SplitLine: gridLine(true, spec.Theme),
			AxisLabel: &opts.AxisLabel{Color: spec.Theme.TickColor},
		}),
	)
	line.SetGlobalOptions(globals...)
	line.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		lineStyle := opts.LineStyle{Color: s.BorderColor, Width: 2}
		if s.Dashed {
			lineStyle.Type = "dashed"
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ConnectNulls: opts.Bool(false)}),
			charts.WithLineStyleOpts(lineStyle),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.BorderColor}),
		}
		if spec.Fill && s.BackgroundColor != transparentColor {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Color:   s.BackgroundColor,
				Opacity: opts.Float(1),
			}))
		}
		line.AddSeries(s.Name, toLineData(spec.Labels, s.Values), seriesOpts...)
	}
	return renderChart(line)
}

func (r *EChartsRenderer) renderDoughnutChart(spec ChartSpec) (string, error) {
	pie := charts.NewPie()
	lookup := percentLookup(spec.Labels, spec.Percentages)
	legend := opts.Legend{Show: opts.Bool(false)}
	if spec.ShowLegend {
		legend = opts.Legend{
			Show:      opts.Bool(true),
			Orient:    "vertical",
			Right:     "0",
			Top:       "middle",
			Formatter: opts.FuncOpts("function (name) { " + lookup + " return name + ' (' + share(name) + '%)'; }"),
		}
	}
	globals := append(r.globalChartOptions(spec),
		charts.WithLegendOpts(legend),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:            opts.Bool(true),
			Trigger:         "item",
			BackgroundColor: spec.Theme.TooltipBackground,
			Formatter:       opts.FuncOpts("function (params) { " + lookup + " return params.name + ': ' + params.value + ' (' + share(params.name) + '%)'; }"),
		}),
	)
	pie.SetGlobalOptions(globals...)
	for _, s := range spec.Series {
		pie.AddSeries(s.Name, toPieData(spec.Labels, s.Values, s.SliceColors),
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"60%", "80%"}}),
			charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: s.BorderColor, BorderWidth: 2}),
		)
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:   spec.Theme.Name,
		Width:   "100%",
		Height:  fmt.Sprintf("%dpx", chartHeight(spec.Height)),
		ChartID: spec.ID(),
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.ShowLegend), Top: "top"}),
	}
	if spec.Title != "" {
		globals = append(globals, charts.WithTitleOpts(opts.Title{
			Title: spec.Title,
			TitleStyle: &opts.TextStyle{
				Color:      spec.Theme.TitleColor,
				FontFamily: spec.Theme.FontFamily,
				FontWeight: "bold",
			},
		}))
	}
	return globals
}

func axisTooltip(theme ChartTheme) opts.Tooltip {
	return opts.Tooltip{
		Show:            opts.Bool(true),
		Trigger:         "axis",
		BackgroundColor: theme.TooltipBackground,
	}
}

func gridLine(show bool, theme ChartTheme) *opts.SplitLine {
	return &opts.SplitLine{
		Show:      opts.Bool(show),
		LineStyle: &opts.LineStyle{Color: theme.GridColor},
	}
}

// percentLookup emits a JS snippet defining share(name), which returns the
// precomputed percentage for a label. Labels are percent-encoded so the
// snippet never carries quotes or backslashes from user data.
func percentLookup(labels []string, percentages []float64) string {
	names := make([]string, len(labels))
	shares := make([]string, len(labels))
	for i, label := range labels {
		p := 0.0
		if i < len(percentages) {
			p = percentages[i]
		}
		names[i] = "decodeURIComponent('" + percentEncode(sliceName(label, i)) + "')"
		shares[i] = "'" + strconv.FormatFloat(p, 'f', 1, 64) + "'"
	}
	return "var n = [" + strings.Join(names, ", ") + "]; var p = [" + strings.Join(shares, ", ") + "];" +
		" var share = function (name) { var i = n.indexOf(name); return i < 0 ? '0.0' : p[i]; };"
}

func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(strings.ToValidUTF8(s, "\uFFFD")) {
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// sanitizeSpec escapes text that ends up inside the inline chart script.
func sanitizeSpec(spec ChartSpec) ChartSpec {
	spec.Title = html.EscapeString(spec.Title)
	labels := make([]string, len(spec.Labels))
	for i, label := range spec.Labels {
		labels[i] = html.EscapeString(label)
	}
	spec.Labels = labels
	series := make([]SeriesSpec, len(spec.Series))
	for i, s := range spec.Series {
		s.Name = html.EscapeString(s.Name)
		series[i] = s
	}
	spec.Series = series
	return spec
}

func pointValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingValue
	}
	return v
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{
			Name:  labels[i],
			Value: pointValue(v),
		}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{
			Name:  labels[i],
			Value: pointValue(v),
		}
	}
	return data
}

func toPieData(labels []string, values []float64, colors []string) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, v := range values {
		item := opts.PieData{
			Name:  sliceName(labels[i], i),
			Value: pointValue(v),
		}
		if i < len(colors) && colors[i] != "" {
			item.ItemStyle = &opts.ItemStyle{Color: colors[i]}
		}
		data[i] = item
	}
	return data
}

// sliceName is the legend name of slice i; unlabeled slices get "Slice N".
func sliceName(label string, i int) string {
	if label == "" {
		return fmt.Sprintf("Slice %d", i+1)
	}
	return label
}
