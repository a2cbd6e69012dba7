package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/db/dbtest"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

func seed(t *testing.T, db *gorm.DB, at time.Time, typ models.EventType, userID *uint64) *models.AnalyticsEvent {
	t.Helper()

	e := &models.AnalyticsEvent{
		EventName: string(typ),
		EventType: typ,
		UserID:    userID,
		SessionID: "s1",
		EventData: models.JSONMap{"k": "v"},
		CreatedAt: at,
	}
	require.NoError(t, Create(context.Background(), db, e))

	return e
}

func TestFindCountInclusiveRange(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seed(t, db, base.Add(-time.Hour), models.EventPageView, nil)
	seed(t, db, base, models.EventPageView, nil)
	seed(t, db, base.Add(time.Hour), models.EventToolUsage, nil)
	seed(t, db, base.Add(2*time.Hour), models.EventPageView, nil)

	from, to := base, base.Add(time.Hour)

	events, err := Find(ctx, db, Query{From: &from, To: &to}, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt), "newest first")
	assert.Equal(t, "v", events[0].EventData["k"])

	n, err := Count(ctx, db, Query{EventType: models.EventPageView})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	capped, err := Find(ctx, db, Query{}, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestDeleteOlderThanKeepsBoundary(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seed(t, db, cutoff.Add(-time.Second), models.EventPageView, nil)
	seed(t, db, cutoff.Add(-48*time.Hour), models.EventPageView, nil)
	onBoundary := seed(t, db, cutoff, models.EventPageView, nil)
	seed(t, db, cutoff.Add(time.Second), models.EventPageView, nil)

	deleted, err := DeleteOlderThan(ctx, db, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = Get(ctx, db, onBoundary.ID)
	require.NoError(t, err, "boundary-equal event is kept")

	again, err := DeleteOlderThan(ctx, db, cutoff)
	require.NoError(t, err)
	assert.Zero(t, again, "sweep is idempotent")
}

func TestBatchListDelete(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	uid := uint64(3)
	now := time.Now().UTC()

	require.NoError(t, CreateBatch(ctx, db, []*models.AnalyticsEvent{
		{EventName: "a", EventType: models.EventCustom, UserID: &uid, CreatedAt: now},
		{EventName: "b", EventType: models.EventCustom, CreatedAt: now},
	}))
	require.NoError(t, CreateBatch(ctx, db, nil))

	page, err := List(ctx, db, Query{UserID: &uid}, paging.Params{})
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)

	require.NoError(t, Delete(ctx, db, page.Docs[0].ID))
	require.ErrorIs(t, Delete(ctx, db, page.Docs[0].ID), ErrEventNotFound)
}
