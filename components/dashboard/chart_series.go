package dashboard

import "math"

// The trend charts are drawn from fixed demo series; the backend payloads
// only feed the cards and tables around them.

var trendMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep"}

var (
	trendRevenue    = []float64{650000, 720000, 680000, 780000, 820000, 750000, 890000, 920000, 875000}
	trendConversion = []float64{25.2, 26.8, 24.5, 27.1, 28.3, 26.9, 29.2, 30.1, 28.5}
)

var pipelineBreakdownLabels = []string{"New Leads", "Qualified", "Application", "Processing", "Underwriting", "Clear to Close"}

var pipelineBreakdownCounts = []float64{28, 22, 18, 15, 12, 8}

var forecastMonths = []string{"Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024", "Jul 2024"}

var forecastPredicted = []float64{920000, 980000, 1050000, 1100000, 1200000, 1150000}

// RevenueTrendData is the monthly revenue series on the overview page.
func RevenueTrendData(p Palette) ChartData {
	return ChartData{
		Labels: cloneStrings(trendMonths),
		Datasets: []Dataset{{
			Label:       "Monthly Revenue",
			Data:        cloneFloats(trendRevenue),
			BorderColor: p.Primary.Main,
		}},
	}
}

// PipelineBreakdownData is the stage distribution on the overview page.
func PipelineBreakdownData(p Palette) ChartData {
	return ChartData{
		Labels: cloneStrings(pipelineBreakdownLabels),
		Datasets: []Dataset{{
			Label: "Pipeline Stages",
			Data:  cloneFloats(pipelineBreakdownCounts),
			BackgroundColors: []string{
				p.Primary.Main,
				p.Success.Main,
				p.Warning.Main,
				"#FF6B6B",
				p.Purple.Main,
				"#4ECDC4",
			},
		}},
	}
}

// PerformanceRevenueData is the monthly revenue bar series.
func PerformanceRevenueData(p Palette) ChartData {
	return ChartData{
		Labels: cloneStrings(trendMonths),
		Datasets: []Dataset{{
			Label:       "Revenue",
			Data:        cloneFloats(trendRevenue),
			BorderColor: p.Success.Main,
		}},
	}
}

// ConversionTrendData is the monthly conversion rate series.
func ConversionTrendData(p Palette) ChartData {
	return ChartData{
		Labels: cloneStrings(trendMonths),
		Datasets: []Dataset{{
			Label:       "Conversion Rate (%)",
			Data:        cloneFloats(trendConversion),
			BorderColor: p.Primary.Main,
		}},
	}
}

// RevenueForecastData overlays the predicted months on the last actual value.
// The historical series is a single point followed by gaps.
func RevenueForecastData(p Palette) ChartData {
	historical := make([]float64, len(forecastMonths))
	for i := range historical {
		historical[i] = math.NaN()
	}
	historical[0] = 875000
	return ChartData{
		Labels: cloneStrings(forecastMonths),
		Datasets: []Dataset{
			{
				Label:       "Predicted Revenue",
				Data:        cloneFloats(forecastPredicted),
				BorderColor: p.Purple.Main,
				Dashed:      true,
			},
			{
				Label:           "Historical Revenue",
				Data:            historical,
				BorderColor:     p.Primary.Main,
				BackgroundColor: transparentColor,
			},
		},
	}
}
