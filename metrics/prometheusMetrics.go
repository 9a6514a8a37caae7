package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalSpansProcessed counts spans accepted from the transport layer.
	TotalSpansProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagelens_observer_spans_processed_total",
		Help: "Total spans processed by the observer.",
	},
		[]string{"projectId"})

	// TotalSpansMalformed counts spans skipped because of shape errors.
	TotalSpansMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_spans_malformed_total",
		Help: "Total spans skipped due to missing or malformed fields.",
	})

	// TotalSpansOrphaned counts spans currently unassignable to a session.
	TotalSpansOrphaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_spans_orphaned_total",
		Help: "Total spans that entered the orphan set.",
	})

	// TotalOrphanRetries counts orphan re-resolution attempts. The retry is
	// O(orphans) per ingested span; this counter makes that cost visible.
	TotalOrphanRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_orphan_retries_total",
		Help: "Total orphan span re-resolution attempts.",
	})

	// TotalNavigationEvents counts navigation events accepted.
	TotalNavigationEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_navigation_events_total",
		Help: "Total navigation events processed.",
	})

	// TotalSessionsBuilt counts session (re)builds.
	TotalSessionsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_sessions_built_total",
		Help: "Total page session builds, including rebuilds.",
	})

	// TotalSessionsEvicted counts sessions dropped by the session limit.
	TotalSessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_sessions_evicted_total",
		Help: "Total page sessions evicted by the session limit.",
	})

	// TotalIssuesDetected counts detector findings by issue type.
	TotalIssuesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagelens_observer_issues_detected_total",
		Help: "Total issues detected, labelled by issue type.",
	},
		[]string{"type"})

	// TotalDetectorPanics counts detectors that panicked and were skipped.
	TotalDetectorPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagelens_observer_detector_panics_total",
		Help: "Total detector invocations recovered from a panic.",
	})
)
