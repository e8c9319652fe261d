package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// ColorScale is a named color with its light and dark variants.
type ColorScale struct {
	Main  string `json:"main" yaml:"main"`
	Light string `json:"light" yaml:"light"`
	Dark  string `json:"dark" yaml:"dark"`
}

// Palette is the shared color set used by every chart.
type Palette struct {
	Primary ColorScale `json:"primary" yaml:"primary"`
	Success ColorScale `json:"success" yaml:"success"`
	Warning ColorScale `json:"warning" yaml:"warning"`
	Danger  ColorScale `json:"danger" yaml:"danger"`
	Purple  ColorScale `json:"purple" yaml:"purple"`
	Gray    ColorScale `json:"gray" yaml:"gray"`
}

// DefaultPalette mirrors the brand colors of the dashboard.
var DefaultPalette = Palette{
	Primary: ColorScale{Main: "#0EA5E9", Light: "#38BDF8", Dark: "#0284C7"},
	Success: ColorScale{Main: "#22C55E", Light: "#4ADE80", Dark: "#16A34A"},
	Warning: ColorScale{Main: "#F59E0B", Light: "#FBBF24", Dark: "#D97706"},
	Danger:  ColorScale{Main: "#EF4444", Light: "#F87171", Dark: "#DC2626"},
	Purple:  ColorScale{Main: "#8B5CF6", Light: "#A78BFA", Dark: "#7C3AED"},
	Gray:    ColorScale{Main: "#6B7280", Light: "#9CA3AF", Dark: "#4B5563"},
}

// SliceColors returns the default doughnut slice order.
func (p Palette) SliceColors() []string {
	return []string{
		p.Primary.Main,
		p.Success.Main,
		p.Warning.Main,
		p.Danger.Main,
		p.Purple.Main,
		p.Gray.Main,
	}
}

const (
	barFillAlpha     = 0.5
	lineFillAlpha    = 0.125
	transparentColor = "transparent"
	sliceBorderColor = "#ffffff"
)

// ChartTheme carries the visual settings shared by all charts.
type ChartTheme struct {
	Name              string `json:"name" yaml:"name"`
	FontFamily        string `json:"font_family" yaml:"font_family"`
	TitleColor        string `json:"title_color" yaml:"title_color"`
	TickColor         string `json:"tick_color" yaml:"tick_color"`
	GridColor         string `json:"grid_color" yaml:"grid_color"`
	TooltipBackground string `json:"tooltip_background" yaml:"tooltip_background"`
}

// DefaultChartTheme is applied when no theme is configured.
var DefaultChartTheme = ChartTheme{
	Name:              types.ThemeWesteros,
	FontFamily:        "Inter, system-ui, sans-serif",
	TitleColor:        "#1F2937",
	TickColor:         "#6B7280",
	GridColor:         "#F3F4F6",
	TooltipBackground: "rgba(0, 0, 0, 0.8)",
}

func (t ChartTheme) withDefaults() ChartTheme {
	if t.Name == "" {
		t.Name = DefaultChartTheme.Name
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultChartTheme.FontFamily
	}
	if t.TitleColor == "" {
		t.TitleColor = DefaultChartTheme.TitleColor
	}
	if t.TickColor == "" {
		t.TickColor = DefaultChartTheme.TickColor
	}
	if t.GridColor == "" {
		t.GridColor = DefaultChartTheme.GridColor
	}
	if t.TooltipBackground == "" {
		t.TooltipBackground = DefaultChartTheme.TooltipBackground
	}
	return t
}

// fadeColor converts a #RRGGBB color into an rgba() string with the given
// alpha. Values that are not six digit hex colors are returned unchanged.
func fadeColor(color string, alpha float64) string {
	hex := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(hex) != 6 {
		return color
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color
	}
	r := (rgb >> 16) & 0xff
	g := (rgb >> 8) & 0xff
	b := rgb & 0xff
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
