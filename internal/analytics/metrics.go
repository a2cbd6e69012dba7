package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTracked = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "analytics_events_tracked_total",
		Help: "Number of stored analytics events, by event type.",
	}, []string{"type"})

	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "analytics_events_processed_total",
		Help: "Number of analytics events handled by the real-time processor, by event type.",
	}, []string{"type"})

	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "analytics_sweep_runs_total",
		Help: "Number of retention sweeps, by result.",
	}, []string{"result"})

	sweepDeleted = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "analytics_sweep_deleted_total",
		Help: "Number of analytics events deleted by the retention sweep.",
	})
)
