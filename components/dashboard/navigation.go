package dashboard

import (
	"strings"
	"time"
)

// RootPath is served by the overview page.
const RootPath = "/"

// Path is the route of the page, e.g. /lead-scoring.
func (id PageID) Path() string {
	return "/" + id.Slug()
}

// MenuItem is one sidebar entry.
type MenuItem struct {
	Page        PageID `json:"page"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

var menu = []MenuItem{
	{Page: PageDashboard, Name: "Dashboard", Icon: "home", Description: "Overview & Key Metrics"},
	{Page: PageLeadScoring, Name: "Lead Scoring", Icon: "target", Description: "AI-Powered Lead Intelligence"},
	{Page: PagePerformance, Name: "Performance", Icon: "bar-chart", Description: "Trends & Analytics"},
	{Page: PageForecasting, Name: "Forecasting", Icon: "trending-up", Description: "Revenue Predictions"},
	{Page: PageInsights, Name: "AI Insights", Icon: "brain", Description: "Smart Recommendations"},
}

// ResolvePath maps a request path to its page. The root path aliases the
// overview page; trailing slashes are ignored.
func ResolvePath(path string) (PageID, bool) {
	path = strings.TrimSpace(path)
	if path != RootPath {
		path = strings.TrimRight(path, "/")
	}
	if path == "" || path == RootPath {
		return PageDashboard, true
	}
	for _, id := range AllPages {
		if id.Path() == path {
			return id, true
		}
	}
	return "", false
}

// IsActive reports whether the menu entry for page matches the current path.
func IsActive(page PageID, currentPath string) bool {
	id, ok := ResolvePath(currentPath)
	return ok && id == page
}

// MenuItems returns the sidebar entries with the active flag set for currentPath.
func MenuItems(currentPath string) []MenuItem {
	out := make([]MenuItem, len(menu))
	for i, item := range menu {
		item.Path = item.Page.Path()
		item.Active = IsActive(item.Page, currentPath)
		out[i] = item
	}
	return out
}

// QuickStat is a figure in the sidebar footer.
type QuickStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BrandName is shown in the sidebar and page titles.
const BrandName = "LoanSense AI"

// Shell is the layout around every page: sidebar, header and quick stats.
type Shell struct {
	Brand      string      `json:"brand"`
	Tagline    string      `json:"tagline"`
	User       string      `json:"user"`
	Role       string      `json:"role"`
	Menu       []MenuItem  `json:"menu"`
	QuickStats []QuickStat `json:"quick_stats"`
	Updated    string      `json:"updated"`
}

// BuildShell assembles the layout for the current path.
func BuildShell(currentPath string, now time.Time) Shell {
	return Shell{
		Brand:   BrandName,
		Tagline: "Performance Intelligence",
		User:    "Demo User",
		Role:    "Loan Officer",
		Menu:    MenuItems(currentPath),
		QuickStats: []QuickStat{
			{Label: "Pipeline Health", Value: "85%"},
			{Label: "This Month", Value: "12"},
			{Label: "Pipeline Value", Value: "$2.1M"},
		},
		Updated: "Updated: " + FormatUpdated(now),
	}
}
