package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swiftsight_extraction_seconds",
		Help:    "Time spent extracting symbol occurrences from a source file.",
		Buckets: prometheus.DefBuckets,
	})

	OccurrencesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftsight_occurrences_total",
		Help: "Total symbol occurrences extracted, by kind.",
	}, []string{"kind"})

	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swiftsight_resolution_seconds",
		Help:    "Time spent resolving the usages of one file.",
		Buckets: prometheus.DefBuckets,
	})

	ResolutionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftsight_resolution_outcomes_total",
		Help: "Total resolution decisions, by origin.",
	}, []string{"origin"})

	IndexPrewarmDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swiftsight_index_prewarm_seconds",
		Help:    "Time spent prewarming the global program index.",
		Buckets: prometheus.DefBuckets,
	})

	InterfaceBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftsight_interface_builds_total",
		Help: "Total interface index builds performed.",
	})

	InterfaceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftsight_interface_cache_hits_total",
		Help: "Total interface index lookups served from cache.",
	})

	FilesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftsight_files_analyzed_total",
		Help: "Total source files run through the analysis pipeline.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftsight_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
