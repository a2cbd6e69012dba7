package analytics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
	"gorm.io/gorm"

	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = 24 * time.Hour

// ErrSweepInProgress is returned by Sweep while another sweep is running.
var ErrSweepInProgress = errors.New("retention sweep already in progress")

// Sweeper periodically deletes events older than the retention period.
// It implements suture.Service.
type Sweeper struct {
	db            *gorm.DB
	retentionDays int
	interval      time.Duration
	running       atomic.Bool
	now           func() time.Time
}

// NewSweeper creates a sweeper. retentionDays <= 0 disables it.
func NewSweeper(db *gorm.DB, retentionDays int, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		db:            db,
		retentionDays: retentionDays,
		interval:      interval,
		now:           time.Now,
	}
}

// Enabled reports whether a retention period is configured.
func (s *Sweeper) Enabled() bool {
	return s.retentionDays > 0
}

// Cutoff is the creation time before which events are deleted.
func (s *Sweeper) Cutoff() time.Time {
	return s.now().UTC().AddDate(0, 0, -s.retentionDays)
}

// Sweep deletes expired events once and returns how many were removed.
// Events created exactly at the cutoff are kept. Sweeps never overlap.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}

	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer s.running.Store(false)

	deleted, err := eventstore.DeleteOlderThan(ctx, s.db, s.Cutoff())
	if err != nil {
		sweepRuns.WithLabelValues("error").Inc()

		return 0, err
	}

	sweepRuns.WithLabelValues("ok").Inc()
	sweepDeleted.Add(float64(deleted))

	return deleted, nil
}

// Serve implements suture.Service. It sweeps every interval until ctx is done.
func (s *Sweeper) Serve(ctx context.Context) error {
	if !s.Enabled() {
		log.Info().Msg("analytics retention disabled, sweeper not started")

		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	deleted, err := s.Sweep(ctx)

	switch {
	case errors.Is(err, ErrSweepInProgress):
		log.Warn().Msg("previous retention sweep still running, skipping")
	case err != nil:
		log.Error().Err(err).Msg("retention sweep failed")
	case deleted > 0:
		log.Info().Int64("deleted", deleted).Int("retentionDays", s.retentionDays).Msg("expired analytics events removed")
	}
}

// String implements fmt.Stringer, suture uses it in its log events.
func (s *Sweeper) String() string {
	return "analytics-retention-sweeper"
}
