package analytics

import (
	"sort"
	"strconv"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// Aggregation limits.
const (
	TopN         = 10
	RecentEvents = 20
)

// KeyCount is one entry of a top list.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Top returns the n entries with the highest counts, ties ordered by key.
func Top(counts map[string]int, n int) []KeyCount {
	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Key < out[j].Key
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}

// Stats is the result of ProcessStats.
type Stats struct {
	TotalEvents int            `json:"totalEvents"`
	EventTypes  map[string]int `json:"eventTypes"`
	Browsers    map[string]int `json:"browsers"`
	Devices     map[string]int `json:"devices"`
	Countries   map[string]int `json:"countries"`
	DailyStats  map[string]int `json:"dailyStats"`
	HourlyStats map[string]int `json:"hourlyStats"`
}

// DayKey is the daily bucket of an event, YYYY-MM-DD in UTC.
func DayKey(e *models.AnalyticsEvent) string {
	return e.CreatedAt.UTC().Format("2006-01-02")
}

// HourKey is the hourly bucket of an event, "YYYY-MM-DD H:00" in UTC without hour padding.
func HourKey(e *models.AnalyticsEvent) string {
	t := e.CreatedAt.UTC()

	return t.Format("2006-01-02") + " " + strconv.Itoa(t.Hour()) + ":00"
}

// ProcessStats counts events by type, browser, device, country, day and hour in one pass.
func ProcessStats(events []models.AnalyticsEvent) Stats {
	s := Stats{
		TotalEvents: len(events),
		EventTypes:  map[string]int{},
		Browsers:    map[string]int{},
		Devices:     map[string]int{},
		Countries:   map[string]int{},
		DailyStats:  map[string]int{},
		HourlyStats: map[string]int{},
	}

	for i := range events {
		e := &events[i]

		s.EventTypes[string(e.EventType)]++

		if e.UserAgent.Browser != "" {
			s.Browsers[e.UserAgent.Browser]++
		}

		if e.UserAgent.Device != "" {
			s.Devices[string(e.UserAgent.Device)]++
		}

		if e.Location.Country != "" {
			s.Countries[e.Location.Country]++
		}

		s.DailyStats[DayKey(e)]++
		s.HourlyStats[HourKey(e)]++
	}

	return s
}

// Realtime is the result of ProcessRealtime.
type Realtime struct {
	RecentEvents []models.AnalyticsEvent `json:"recentEvents"`
	EventCounts  map[string]int          `json:"eventCounts"`
	TopPages     []KeyCount              `json:"topPages"`
	TopTools     []KeyCount              `json:"topTools"`
}

// ProcessRealtime summarises recent events. events must be ordered newest first.
func ProcessRealtime(events []models.AnalyticsEvent) Realtime {
	r := Realtime{
		RecentEvents: events[:min(len(events), RecentEvents)],
		EventCounts:  map[string]int{},
		TopPages:     TopPages(events),
		TopTools:     TopTools(events),
	}

	if r.RecentEvents == nil {
		r.RecentEvents = []models.AnalyticsEvent{}
	}

	for i := range events {
		r.EventCounts[string(events[i].EventType)]++
	}

	return r
}

// TopPages ranks page urls.
func TopPages(events []models.AnalyticsEvent) []KeyCount {
	counts := map[string]int{}

	for i := range events {
		if u := events[i].PageInfo.URL; u != "" {
			counts[u]++
		}
	}

	return Top(counts, TopN)
}

func toolCounts(events []models.AnalyticsEvent) map[string]int {
	counts := map[string]int{}

	for i := range events {
		if id := events[i].ToolID; id != nil {
			counts[strconv.FormatUint(*id, 10)]++
		}
	}

	return counts
}

// TopTools ranks tool ids.
func TopTools(events []models.AnalyticsEvent) []KeyCount {
	return Top(toolCounts(events), TopN)
}

// ActiveUsers counts distinct visitors: the user id when known, else the session id.
func ActiveUsers(events []models.AnalyticsEvent) int {
	seen := map[string]struct{}{}

	for i := range events {
		e := &events[i]

		switch {
		case e.UserID != nil:
			seen["u:"+strconv.FormatUint(*e.UserID, 10)] = struct{}{}
		case e.SessionID != "":
			seen["s:"+e.SessionID] = struct{}{}
		}
	}

	return len(seen)
}

// UserBehavior is the result of AnalyzeUserBehavior.
type UserBehavior struct {
	TotalEvents     int         `json:"totalEvents"`
	SessionCount    int         `json:"sessionCount"`
	MostUsedTools   []KeyCount  `json:"mostUsedTools"`
	ActivityPattern map[int]int `json:"activityPattern"`
	// AverageSessionDuration in minutes.
	AverageSessionDuration float64 `json:"averageSessionDuration"`
}

// AnalyzeUserBehavior summarises the events of one user.
func AnalyzeUserBehavior(events []models.AnalyticsEvent) UserBehavior {
	type span struct{ first, last int64 }

	sessions := map[string]*span{}
	pattern := map[int]int{}

	for i := range events {
		e := &events[i]
		ts := e.CreatedAt.UnixMilli()

		pattern[e.CreatedAt.UTC().Hour()]++

		s, ok := sessions[e.SessionID]
		if !ok {
			sessions[e.SessionID] = &span{first: ts, last: ts}
			continue
		}

		s.first = min(s.first, ts)
		s.last = max(s.last, ts)
	}

	var avg float64

	if len(sessions) > 0 {
		var total int64
		for _, s := range sessions {
			total += s.last - s.first
		}

		avg = float64(total) / float64(len(sessions)) / 1000 / 60 //nolint:mnd
	}

	return UserBehavior{
		TotalEvents:            len(events),
		SessionCount:           len(sessions),
		MostUsedTools:          TopTools(events),
		ActivityPattern:        pattern,
		AverageSessionDuration: avg,
	}
}

// ToolUsage is the result of AnalyzeToolUsage.
type ToolUsage struct {
	TotalUsage int            `json:"totalUsage"`
	ToolStats  map[string]int `json:"toolStats"`
	TopTools   []KeyCount     `json:"topTools"`
}

// AnalyzeToolUsage counts usage events per tool.
func AnalyzeToolUsage(events []models.AnalyticsEvent) ToolUsage {
	counts := toolCounts(events)

	return ToolUsage{
		TotalUsage: len(events),
		ToolStats:  counts,
		TopTools:   Top(counts, TopN),
	}
}
