package dashboard

import (
	"math"
	"sort"
	"strings"
)

// LeadFilter selects leads by urgency.
type LeadFilter string

const (
	FilterAll    LeadFilter = "all"
	FilterHigh   LeadFilter = "high"
	FilterMedium LeadFilter = "medium"
	FilterLow    LeadFilter = "low"
)

// LeadSort orders the lead table.
type LeadSort string

const (
	SortByScore  LeadSort = "score"
	SortByDate   LeadSort = "date"
	SortByAmount LeadSort = "amount"
)

// ParseLeadFilter normalizes user input, defaulting to FilterAll.
func ParseLeadFilter(value string) LeadFilter {
	switch f := LeadFilter(strings.ToLower(strings.TrimSpace(value))); f {
	case FilterHigh, FilterMedium, FilterLow:
		return f
	default:
		return FilterAll
	}
}

// ParseLeadSort normalizes user input, defaulting to SortByScore.
func ParseLeadSort(value string) LeadSort {
	switch s := LeadSort(strings.ToLower(strings.TrimSpace(value))); s {
	case SortByDate, SortByAmount:
		return s
	default:
		return SortByScore
	}
}

// FilterLeads returns the leads matching the urgency filter. The input is
// never modified.
func FilterLeads(leads []Lead, filter LeadFilter) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, lead := range leads {
		if matchesFilter(lead, filter) {
			out = append(out, lead)
		}
	}
	return out
}

func matchesFilter(lead Lead, filter LeadFilter) bool {
	switch filter {
	case FilterHigh:
		return lead.Urgency == UrgencyHigh
	case FilterMedium:
		return lead.Urgency == UrgencyMedium
	case FilterLow:
		return lead.Urgency == UrgencyLow
	default:
		return true
	}
}

// SortLeads returns a stably sorted copy: score and amount descending, date
// most recent first. Unknown keys keep the input order.
func SortLeads(leads []Lead, by LeadSort) []Lead {
	out := cloneLeads(leads)
	if out == nil {
		out = []Lead{}
	}
	var less func(a, b Lead) bool
	switch by {
	case SortByScore:
		less = func(a, b Lead) bool { return a.ProbabilityScore > b.ProbabilityScore }
	case SortByDate:
		less = func(a, b Lead) bool { return a.CreatedDate.After(b.CreatedDate.Time) }
	case SortByAmount:
		less = func(a, b Lead) bool { return a.LoanAmount > b.LoanAmount }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// LeadSummary holds the aggregates shown above the lead table.
type LeadSummary struct {
	Total         int     `json:"total" yaml:"total"`
	HighPriority  int     `json:"high_priority" yaml:"high_priority"`
	AverageScore  int     `json:"average_score" yaml:"average_score"`
	PipelineValue float64 `json:"pipeline_value" yaml:"pipeline_value"`
}

// SummarizeLeads computes the summary cards over the unfiltered list.
func SummarizeLeads(leads []Lead) LeadSummary {
	summary := LeadSummary{Total: len(leads)}
	if len(leads) == 0 {
		return summary
	}
	scoreSum := 0.0
	amounts := make([]float64, 0, len(leads))
	for _, lead := range leads {
		if lead.Urgency == UrgencyHigh {
			summary.HighPriority++
		}
		scoreSum += lead.ProbabilityScore
		amounts = append(amounts, lead.LoanAmount)
	}
	summary.AverageScore = int(roundHalfUp(scoreSum / float64(len(leads))))
	summary.PipelineValue = SumCurrency(amounts...)
	return summary
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// ScoreClass grades a probability score for badge styling.
func ScoreClass(score float64) string {
	switch {
	case score >= 80:
		return "score--high"
	case score >= 60:
		return "score--medium"
	default:
		return "score--low"
	}
}

// UrgencyClass maps an urgency label to its badge class.
func UrgencyClass(u Urgency) string {
	switch strings.ToLower(string(u)) {
	case "high":
		return "badge--danger"
	case "medium":
		return "badge--warning"
	case "low":
		return "badge--success"
	default:
		return "badge--neutral"
	}
}

// Initials returns the first letter of each name part.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		b.WriteRune(r[0])
	}
	return b.String()
}

// FormatDTI renders a debt-to-income fraction as a percentage.
func FormatDTI(ratio float64) string {
	return defaultFormatter.Percent(ratio*100, 1)
}

// FormatShortDate renders a lead date as "Jan 15".
func FormatShortDate(ts Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("Jan 2")
}
