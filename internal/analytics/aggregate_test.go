package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

func ptr[T any](v T) *T { return &v }

func ev(typ models.EventType, at time.Time, opts ...func(*models.AnalyticsEvent)) models.AnalyticsEvent {
	e := models.AnalyticsEvent{EventName: string(typ), EventType: typ, CreatedAt: at}
	for _, o := range opts {
		o(&e)
	}

	return e
}

func withTool(id uint64) func(*models.AnalyticsEvent) {
	return func(e *models.AnalyticsEvent) { e.ToolID = ptr(id) }
}

func withSession(s string) func(*models.AnalyticsEvent) {
	return func(e *models.AnalyticsEvent) { e.SessionID = s }
}

func TestTop(t *testing.T) {
	counts := map[string]int{"b": 3, "a": 3, "c": 5, "d": 1}

	assert.Equal(t, []KeyCount{{"c", 5}, {"a", 3}, {"b", 3}}, Top(counts, 3))
	assert.Len(t, Top(counts, 10), 4)
	assert.Empty(t, Top(map[string]int{}, 10))
}

func TestTopCapsAtTen(t *testing.T) {
	var events []models.AnalyticsEvent

	now := time.Now()
	for i := range 15 {
		for range i + 1 {
			events = append(events, ev(models.EventToolUsage, now, withTool(uint64(i+1))))
		}
	}

	top := TopTools(events)
	require.Len(t, top, TopN)
	assert.Equal(t, KeyCount{Key: "15", Count: 15}, top[0])
	assert.Equal(t, KeyCount{Key: "6", Count: 6}, top[9])
}

func TestProcessStats(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	events := []models.AnalyticsEvent{
		// 2026-03-02 01:30 in UTC+8 is 2026-03-01 17:30 UTC
		ev(models.EventPageView, time.Date(2026, 3, 2, 1, 30, 0, 0, loc), func(e *models.AnalyticsEvent) {
			e.UserAgent = models.UserAgentInfo{Browser: "Chrome", Device: models.DeviceDesktop}
			e.Location.Country = Unknown
		}),
		ev(models.EventPageView, time.Date(2026, 3, 1, 17, 5, 0, 0, time.UTC), func(e *models.AnalyticsEvent) {
			e.UserAgent = models.UserAgentInfo{Browser: "Safari", Device: models.DeviceMobile}
		}),
		ev(models.EventToolUsage, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}

	s := ProcessStats(events)

	assert.Equal(t, 3, s.TotalEvents)
	assert.Equal(t, map[string]int{"page_view": 2, "tool_usage": 1}, s.EventTypes)
	assert.Equal(t, map[string]int{"Chrome": 1, "Safari": 1}, s.Browsers)
	assert.Equal(t, map[string]int{"desktop": 1, "mobile": 1}, s.Devices)
	assert.Equal(t, map[string]int{Unknown: 1}, s.Countries)
	assert.Equal(t, map[string]int{"2026-03-01": 3}, s.DailyStats)
	assert.Equal(t, map[string]int{"2026-03-01 17:00": 2, "2026-03-01 9:00": 1}, s.HourlyStats)
}

func TestProcessStatsEmpty(t *testing.T) {
	s := ProcessStats(nil)

	assert.Zero(t, s.TotalEvents)
	assert.NotNil(t, s.EventTypes)
	assert.Empty(t, s.DailyStats)
}

func TestProcessRealtime(t *testing.T) {
	now := time.Now()

	var events []models.AnalyticsEvent
	for i := range 25 {
		events = append(events, ev(models.EventPageView, now.Add(-time.Duration(i)*time.Second), func(e *models.AnalyticsEvent) {
			e.PageInfo.URL = fmt.Sprintf("/p/%d", i%2)
			e.SessionID = fmt.Sprintf("s%d", i%3)
		}))
	}

	events = append(events, ev(models.EventToolUsage, now, withTool(7), func(e *models.AnalyticsEvent) {
		e.UserID = ptr(uint64(1))
	}))

	r := ProcessRealtime(events)

	assert.Len(t, r.RecentEvents, RecentEvents)
	assert.Equal(t, map[string]int{"page_view": 25, "tool_usage": 1}, r.EventCounts)
	assert.Equal(t, []KeyCount{{"/p/0", 13}, {"/p/1", 12}}, r.TopPages)
	assert.Equal(t, []KeyCount{{"7", 1}}, r.TopTools)
	assert.Equal(t, 4, ActiveUsers(events), "3 sessions plus one known user")

	empty := ProcessRealtime(nil)
	assert.NotNil(t, empty.RecentEvents)
	assert.Zero(t, ActiveUsers(nil))
}

func TestAnalyzeUserBehavior(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	events := []models.AnalyticsEvent{
		ev(models.EventPageView, base, withSession("a")),
		ev(models.EventToolUsage, base.Add(10*time.Minute), withSession("a"), withTool(2)),
		ev(models.EventToolUsage, base.Add(3*time.Hour), withSession("b"), withTool(2)),
		ev(models.EventToolUsage, base.Add(3*time.Hour+20*time.Minute), withSession("b"), withTool(5)),
		ev(models.EventPageView, base.Add(5*time.Hour), withSession("c")),
	}

	b := AnalyzeUserBehavior(events)

	assert.Equal(t, 5, b.TotalEvents)
	assert.Equal(t, 3, b.SessionCount)
	assert.Equal(t, []KeyCount{{"2", 2}, {"5", 1}}, b.MostUsedTools)
	assert.Equal(t, map[int]int{10: 2, 13: 2, 15: 1}, b.ActivityPattern)
	assert.InDelta(t, 10.0, b.AverageSessionDuration, 0.0001, "(10 + 20 + 0) / 3 minutes")

	assert.Zero(t, AnalyzeUserBehavior(nil).AverageSessionDuration)
}

func TestAnalyzeToolUsage(t *testing.T) {
	now := time.Now()
	events := []models.AnalyticsEvent{
		ev(models.EventToolUsage, now, withTool(1)),
		ev(models.EventToolUsage, now, withTool(1)),
		ev(models.EventToolUsage, now, withTool(3)),
		ev(models.EventToolUsage, now),
	}

	u := AnalyzeToolUsage(events)

	assert.Equal(t, 4, u.TotalUsage)
	assert.Equal(t, map[string]int{"1": 2, "3": 1}, u.ToolStats)
	assert.Equal(t, []KeyCount{{"1", 2}, {"3", 1}}, u.TopTools)
}

func TestUsagePeriodDays(t *testing.T) {
	assert.Equal(t, 1, UsagePeriodDays("1d"))
	assert.Equal(t, 7, UsagePeriodDays("7d"))
	assert.Equal(t, 30, UsagePeriodDays("30d"))
	assert.Equal(t, 7, UsagePeriodDays("90d"))
	assert.Equal(t, 7, UsagePeriodDays(""))
}
