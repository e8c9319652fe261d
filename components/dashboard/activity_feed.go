package dashboard

import (
	"context"
	"fmt"
	"time"
)

// ActivityStatus tags an activity entry for its icon.
type ActivityStatus string

const (
	ActivitySuccess ActivityStatus = "success"
	ActivityInfo    ActivityStatus = "info"
	ActivityWarning ActivityStatus = "warning"
)

// ActivityItem is a recent pipeline event shown on the overview page.
type ActivityItem struct {
	Action string         `json:"action" yaml:"action"`
	Client string         `json:"client" yaml:"client"`
	Status ActivityStatus `json:"status" yaml:"status"`
	Ago    time.Duration  `json:"ago" yaml:"ago"`
}

// TimeAgo renders the entry age as "2 hours ago".
func (a ActivityItem) TimeAgo() string {
	return humanizeAgo(a.Ago)
}

// ActivityFeed fetches recent activity entries.
type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]ActivityItem, error)
}

// StaticActivityFeed returns fixed entries.
type StaticActivityFeed struct {
	Items []ActivityItem
}

// Recent returns up to limit items from the static list.
func (f StaticActivityFeed) Recent(_ context.Context, limit int) ([]ActivityItem, error) {
	if limit <= 0 || limit >= len(f.Items) {
		return append([]ActivityItem{}, f.Items...), nil
	}
	return append([]ActivityItem{}, f.Items[:limit]...), nil
}

// DefaultActivityFeed provides the demo entries for the recent activity card.
func DefaultActivityFeed() ActivityFeed {
	return StaticActivityFeed{
		Items: []ActivityItem{
			{Action: "Lead converted", Client: "Sarah Johnson", Status: ActivitySuccess, Ago: 2 * time.Hour},
			{Action: "New application", Client: "Mike Chen", Status: ActivityInfo, Ago: 4 * time.Hour},
			{Action: "Document received", Client: "Lisa Brown", Status: ActivityInfo, Ago: 6 * time.Hour},
			{Action: "Lead scored high", Client: "David Wilson", Status: ActivityWarning, Ago: 8 * time.Hour},
		},
	}
}

func humanizeAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
