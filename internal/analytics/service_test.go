package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/db/dbtest"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

func newService(t *testing.T, realtime bool) (*Service, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)
	svc := NewService(db, &config.Config{
		Version:     "2.0.0",
		Environment: config.EnvStaging,
		Analytics:   config.Analytics{Enabled: true, RealTimeEnabled: realtime},
	})

	return svc, db
}

func TestBuildEvent(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.FixedZone("x", 3600))
	tid := uint64(9)
	zero := uint64(0)

	e := BuildEvent(&Payload{
		EventName: "tool_run",
		ToolID:    &tid,
		UserID:    &zero,
		URL:       "/tools/x",
		Language:  "zh-CN",
	}, Request{UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0", IP: "203.0.113.7"}, Meta{Version: "2.0.0", Environment: "production"}, now)

	assert.Equal(t, models.EventToolUsage, e.EventType)
	assert.Equal(t, &tid, e.ToolID)
	assert.Nil(t, e.UserID, "zero id means anonymous")
	assert.NotEmpty(t, e.SessionID, "a session id is generated")
	assert.Equal(t, "Firefox", e.UserAgent.Browser)
	assert.Equal(t, "zh-CN", e.UserAgent.Language)
	assert.Equal(t, "203.0.113.***", e.Location.IP)
	assert.Equal(t, Unknown, e.Location.Country)
	assert.Equal(t, "web", e.Metadata.Source)
	assert.Equal(t, "production", e.Metadata.Environment)
	assert.False(t, e.Metadata.Processed)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.Empty(t, e.ErrorInfo.Severity)

	// payload values win over the request
	e = BuildEvent(&Payload{EventName: "js_error", UserAgent: "curl/8", IP: "10.1.2.3", SessionID: "s-1", Source: "api", ErrorMessage: "boom"},
		Request{UserAgent: "Chrome/1", IP: "1.1.1.1"}, Meta{}, now)

	assert.Equal(t, "curl/8", e.UserAgent.Raw)
	assert.Equal(t, "10.1.2.***", e.Location.IP)
	assert.Equal(t, "s-1", e.SessionID)
	assert.Equal(t, "api", e.Metadata.Source)
	assert.Equal(t, models.SeverityMedium, e.ErrorInfo.Severity)
}

func TestTrackRealtimeIncrementsToolUsage(t *testing.T) {
	svc, db := newService(t, true)
	ctx := context.Background()

	tl := &models.Tool{Name: "Hasher", Description: "d", Category: models.CategorySecurity, DockerImage: "hasher:1"}
	require.NoError(t, tool.Create(db, tl))

	e, err := svc.Track(ctx, &Payload{EventName: "tool_hash", ToolID: &tl.ID}, Request{IP: "1.2.3.4"})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.True(t, e.Metadata.Processed)

	stored, err := eventstore.Get(ctx, db, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.Metadata.Processed)
	assert.Equal(t, "2.0.0", stored.Metadata.Version)
	assert.Equal(t, config.EnvStaging, stored.Metadata.Environment)

	got, err := tool.Get(db, tl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UsageCount)

	// unknown tool does not fail tracking
	missing := uint64(999)
	_, err = svc.Track(ctx, &Payload{EventName: "tool_x", ToolID: &missing}, Request{})
	require.NoError(t, err)
}

func TestTrackWithoutRealtime(t *testing.T) {
	svc, db := newService(t, false)
	ctx := context.Background()

	tl := &models.Tool{Name: "Hasher", Description: "d", Category: models.CategorySecurity, DockerImage: "hasher:1"}
	require.NoError(t, tool.Create(db, tl))

	e, err := svc.Track(ctx, &Payload{EventName: "tool_hash", ToolID: &tl.ID}, Request{})
	require.NoError(t, err)
	assert.False(t, e.Metadata.Processed)

	got, err := tool.Get(db, tl.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsageCount)

	_, err = svc.Realtime(ctx, 5)
	require.ErrorIs(t, err, ErrRealtimeDisabled)
}

func TestTrackBatch(t *testing.T) {
	svc, _ := newService(t, false)
	ctx := context.Background()

	_, err := svc.TrackBatch(ctx, nil, Request{})
	require.ErrorIs(t, err, ErrEmptyBatch)

	events, err := svc.TrackBatch(ctx, []Payload{{EventName: "page_view"}, {EventName: "cta_click", SessionID: "x"}}, Request{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotZero(t, events[0].ID)
	assert.Equal(t, models.EventButtonClick, events[1].EventType)
}

func TestStatsAndCaps(t *testing.T) {
	svc, _ := newService(t, true)
	svc.cfg.StatsLimit = 3
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		_, err := svc.Track(ctx, &Payload{EventName: "page_view", UserAgent: "Firefox/1"}, Request{})
		require.NoError(t, err)
	}

	res, err := svc.Stats(ctx, &StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total, "total counts every match")
	assert.Equal(t, 3, res.Data.TotalEvents, "aggregation sees the capped fetch")
	assert.Equal(t, map[string]int{"2026-04-01 12:00": 1, "2026-04-01 11:00": 1, "2026-04-01 10:00": 1}, res.Data.HourlyStats)

	from, to := base.Add(time.Hour), base.Add(2*time.Hour)
	res, err = svc.Stats(ctx, &StatsQuery{Query: eventstore.Query{From: &from, To: &to}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total, "range is inclusive")
}

func TestRealtimeWindowIsBounded(t *testing.T) {
	svc, _ := newService(t, true)
	ctx := context.Background()

	now := time.Now().UTC()
	svc.now = func() time.Time { return now.Add(-time.Minute) }

	_, err := svc.Track(ctx, &Payload{EventName: "page_view", URL: "/", SessionID: "s1"}, Request{})
	require.NoError(t, err)

	svc.now = func() time.Time { return now }

	rt, err := svc.Realtime(ctx, 200000000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rt.Total)
	assert.Equal(t, maxWindowDays*24*60, rt.Minutes)

	svc.cfg.RetentionDays = 2

	rt, err = svc.Realtime(ctx, 1<<62)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rt.Total)
	assert.Equal(t, 2*24*60, rt.Minutes)
}

func TestRealtimeBehaviorUsage(t *testing.T) {
	svc, _ := newService(t, true)
	ctx := context.Background()

	now := time.Now().UTC()
	uid := uint64(42)
	tid := uint64(7)

	track := func(at time.Time, p Payload) {
		t.Helper()

		svc.now = func() time.Time { return at }
		_, err := svc.Track(ctx, &p, Request{})
		require.NoError(t, err)
	}

	track(now.Add(-2*time.Minute), Payload{EventName: "page_view", URL: "/", SessionID: "s1"})
	track(now.Add(-time.Minute), Payload{EventName: "tool_run", ToolID: &tid, UserID: &uid, SessionID: "s2"})
	track(now.Add(-10*time.Minute), Payload{EventName: "page_view", URL: "/old", SessionID: "s3"})
	track(now.AddDate(0, 0, -3), Payload{EventName: "tool_run", ToolID: &tid, UserID: &uid, SessionID: "s4"})
	track(now.AddDate(0, 0, -40), Payload{EventName: "tool_run", ToolID: &tid, UserID: &uid, SessionID: "s5"})

	svc.now = func() time.Time { return now }

	rt, err := svc.Realtime(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRealtimeMinutes, rt.Minutes)
	assert.Equal(t, int64(2), rt.Total)
	assert.Equal(t, 2, rt.ActiveUsers)
	assert.Equal(t, []KeyCount{{"/", 1}}, rt.Data.TopPages)

	ub, err := svc.UserBehavior(ctx, uid, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBehaviorDays, ub.Days)
	assert.Equal(t, int64(2), ub.TotalEvents)
	assert.Equal(t, 2, ub.Data.SessionCount)

	usage, err := svc.ToolUsage(ctx, "7d")
	require.NoError(t, err)
	assert.Equal(t, 7, usage.Days)
	assert.Equal(t, int64(2), usage.TotalUsage)
	assert.Equal(t, map[string]int{"7": 2}, usage.Data.ToolStats)

	usage, err = svc.ToolUsage(ctx, "1d")
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.TotalUsage)

	usage, err = svc.ToolUsage(ctx, "bogus")
	require.NoError(t, err)
	assert.Equal(t, 7, usage.Days)
}
