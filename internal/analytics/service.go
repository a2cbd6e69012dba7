package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// Defaults of the read endpoints.
const (
	DefaultRealtimeMinutes = 5
	DefaultBehaviorDays    = 30
	DefaultUsagePeriod     = "7d"
)

var (
	// ErrRealtimeDisabled is returned by Realtime when real-time analytics is off.
	ErrRealtimeDisabled = errors.New("real-time analytics is disabled")
	// ErrEmptyBatch is returned by TrackBatch for an empty batch.
	ErrEmptyBatch = errors.New("events array must not be empty")
)

// usagePeriods maps the accepted period names to days. Anything else is 7 days.
var usagePeriods = map[string]int{"1d": 1, "7d": 7, "30d": 30} //nolint:gochecknoglobals,mnd

// UsagePeriodDays returns the number of days of a tools usage period.
func UsagePeriodDays(period string) int {
	if d, ok := usagePeriods[period]; ok {
		return d
	}

	return usagePeriods[DefaultUsagePeriod]
}

// Service stores events and answers the analytics queries.
type Service struct {
	db   *gorm.DB
	cfg  config.Analytics
	meta Meta
	now  func() time.Time
}

// Fetch caps used when the configuration leaves them at zero.
const (
	DefaultStatsLimit        = 10000
	DefaultRealtimeLimit     = 500
	DefaultUserBehaviorLimit = 1000
	DefaultToolUsageLimit    = 10000
)

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}

	return v
}

// maxWindowDays bounds the look back of the read endpoints when no retention is configured.
const maxWindowDays = 366

// windowDays is the longest look back in days. Older events are swept anyway.
func (s *Service) windowDays() int {
	if s.cfg.RetentionDays > 0 {
		return s.cfg.RetentionDays
	}

	return maxWindowDays
}

// NewService creates the analytics service.
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	a := cfg.Analytics
	a.StatsLimit = orDefault(a.StatsLimit, DefaultStatsLimit)
	a.RealtimeLimit = orDefault(a.RealtimeLimit, DefaultRealtimeLimit)
	a.UserBehaviorLimit = orDefault(a.UserBehaviorLimit, DefaultUserBehaviorLimit)
	a.ToolUsageLimit = orDefault(a.ToolUsageLimit, DefaultToolUsageLimit)

	return &Service{
		db:   db,
		cfg:  a,
		meta: Meta{Version: cfg.Version, Environment: cfg.Environment},
		now:  time.Now,
	}
}

// Track stores one event.
func (s *Service) Track(ctx context.Context, p *Payload, req Request) (*models.AnalyticsEvent, error) {
	e := BuildEvent(p, req, s.meta, s.now())

	if err := eventstore.Create(ctx, s.db, e); err != nil {
		return nil, fmt.Errorf("store event: %w", err)
	}

	s.processed(ctx, e)

	return e, nil
}

// TrackBatch stores a batch of events in one transaction.
func (s *Service) TrackBatch(ctx context.Context, payloads []Payload, req Request) ([]*models.AnalyticsEvent, error) {
	if len(payloads) == 0 {
		return nil, ErrEmptyBatch
	}

	now := s.now()
	events := make([]*models.AnalyticsEvent, 0, len(payloads))

	for i := range payloads {
		events = append(events, BuildEvent(&payloads[i], req, s.meta, now))
	}

	if err := eventstore.CreateBatch(ctx, s.db, events); err != nil {
		return nil, fmt.Errorf("store events: %w", err)
	}

	for _, e := range events {
		s.processed(ctx, e)
	}

	return events, nil
}

// processed counts a stored event and, with real-time processing on, applies its side effects.
// Failures are logged, the event itself is already stored.
func (s *Service) processed(ctx context.Context, e *models.AnalyticsEvent) {
	eventsTracked.WithLabelValues(string(e.EventType)).Inc()

	if !s.cfg.RealTimeEnabled {
		return
	}

	if e.EventType == models.EventToolUsage && e.ToolID != nil {
		err := tool.IncrementUsage(s.db.WithContext(ctx), *e.ToolID)

		switch {
		case errors.Is(err, tool.ErrToolNotFound):
			log.Debug().Uint64("toolId", *e.ToolID).Msg("usage event for unknown tool")
		case err != nil:
			log.Error().Err(err).Uint64("toolId", *e.ToolID).Msg("can't increment tool usage")

			return
		}
	}

	err := s.db.WithContext(ctx).Model(e).UpdateColumn("meta_processed", true).Error
	if err != nil {
		log.Error().Err(err).Uint64("eventId", e.ID).Msg("can't mark event processed")

		return
	}

	e.Metadata.Processed = true

	eventsProcessed.WithLabelValues(string(e.EventType)).Inc()
}

// StatsQuery selects the events of a stats request.
type StatsQuery struct {
	eventstore.Query

	GroupBy string `json:"groupBy"`
	Metrics string `json:"metrics"`
}

// StatsResult is the answer of Stats.
type StatsResult struct {
	Data  Stats `json:"data"`
	Total int64 `json:"total"`
}

// Stats aggregates up to cfg.StatsLimit matching events. Total counts all matching events.
func (s *Service) Stats(ctx context.Context, q *StatsQuery) (*StatsResult, error) {
	events, err := eventstore.Find(ctx, s.db, q.Query, s.cfg.StatsLimit)
	if err != nil {
		return nil, err
	}

	total, err := eventstore.Count(ctx, s.db, q.Query)
	if err != nil {
		return nil, err
	}

	return &StatsResult{Data: ProcessStats(events), Total: total}, nil
}

// RealtimeResult is the answer of Realtime.
type RealtimeResult struct {
	Data        Realtime  `json:"data"`
	ActiveUsers int       `json:"activeUsers"`
	CurrentTime time.Time `json:"currentTime"`
	Minutes     int       `json:"minutes"`
	Total       int64     `json:"total"`
}

// Realtime summarises the events of the last minutes.
func (s *Service) Realtime(ctx context.Context, minutes int) (*RealtimeResult, error) {
	if !s.cfg.RealTimeEnabled {
		return nil, ErrRealtimeDisabled
	}

	if minutes <= 0 {
		minutes = DefaultRealtimeMinutes
	}

	// keeps the duration below the int64 limit
	if limit := s.windowDays() * 24 * 60; minutes > limit {
		minutes = limit
	}

	now := s.now().UTC()
	since := now.Add(-time.Duration(minutes) * time.Minute)
	q := eventstore.Query{From: &since}

	events, err := eventstore.Find(ctx, s.db, q, s.cfg.RealtimeLimit)
	if err != nil {
		return nil, err
	}

	total, err := eventstore.Count(ctx, s.db, q)
	if err != nil {
		return nil, err
	}

	return &RealtimeResult{
		Data:        ProcessRealtime(events),
		ActiveUsers: ActiveUsers(events),
		CurrentTime: now,
		Minutes:     minutes,
		Total:       total,
	}, nil
}

// BehaviorResult is the answer of UserBehavior.
type BehaviorResult struct {
	Data        UserBehavior `json:"data"`
	Days        int          `json:"days"`
	TotalEvents int64        `json:"totalEvents"`
}

// UserBehavior analyses the events of one user over the last days.
func (s *Service) UserBehavior(ctx context.Context, userID uint64, days int) (*BehaviorResult, error) {
	if days <= 0 {
		days = DefaultBehaviorDays
	}

	days = min(days, s.windowDays())

	since := s.now().UTC().AddDate(0, 0, -days)
	q := eventstore.Query{From: &since, UserID: &userID}

	events, err := eventstore.Find(ctx, s.db, q, s.cfg.UserBehaviorLimit)
	if err != nil {
		return nil, err
	}

	total, err := eventstore.Count(ctx, s.db, q)
	if err != nil {
		return nil, err
	}

	return &BehaviorResult{Data: AnalyzeUserBehavior(events), Days: days, TotalEvents: total}, nil
}

// UsageResult is the answer of ToolUsage.
type UsageResult struct {
	Data       ToolUsage `json:"data"`
	Days       int       `json:"days"`
	TotalUsage int64     `json:"totalUsage"`
}

// ToolUsage counts tool_usage events per tool over a period of 1d, 7d or 30d.
func (s *Service) ToolUsage(ctx context.Context, period string) (*UsageResult, error) {
	days := UsagePeriodDays(period)
	since := s.now().UTC().AddDate(0, 0, -days)
	q := eventstore.Query{From: &since, EventType: models.EventToolUsage}

	events, err := eventstore.Find(ctx, s.db, q, s.cfg.ToolUsageLimit)
	if err != nil {
		return nil, err
	}

	total, err := eventstore.Count(ctx, s.db, q)
	if err != nil {
		return nil, err
	}

	return &UsageResult{Data: AnalyzeToolUsage(events), Days: days, TotalUsage: total}, nil
}
