package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsCDN is the public host go-echarts publishes its runtime and themes on.
	DefaultEChartsCDN = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// DefaultEChartsAssetsPath is where self-hosted ECharts assets are mounted.
	DefaultEChartsAssetsPath = "/assets/echarts/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a CDN or self-hosted bucket).
	envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the assets host, respecting GO_DASHBOARD_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	return ResolveEChartsAssetsHost("")
}

// ResolveEChartsAssetsHost picks the first non-empty host from the explicit
// value, the environment and the public CDN.
func ResolveEChartsAssetsHost(explicit string) string {
	if host := strings.TrimSpace(explicit); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsCDN
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
