package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCalls counts remote service call attempts by operation and outcome
	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_remote_calls_total",
			Help: "Total number of remote extraction service call attempts",
		},
		[]string{"op", "outcome"},
	)

	RateLimitWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_rate_limit_waits_total",
			Help: "Total number of waits caused by remote rate limiting",
		},
		[]string{"op"},
	)

	// JobOutcomes counts finished document jobs by outcome
	JobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_jobs_total",
			Help: "Total number of document jobs by outcome",
		},
		[]string{"outcome"},
	)

	JobRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldextract_job_retries_total",
			Help: "Total number of document job retries",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldextract_job_duration_seconds",
			Help:    "Duration of a single document job attempt",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)

	GroupDegradations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldextract_group_degradations_total",
			Help: "Total number of document groups replaced by placeholders after a group-level failure",
		},
	)

	TemplateCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_template_creations_total",
			Help: "Total number of shared job template creations by outcome",
		},
		[]string{"outcome"},
	)

	// ResourceReleases counts remote resource cleanup attempts
	ResourceReleases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_resource_releases_total",
			Help: "Total number of remote resource releases by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DocumentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldextract_document_results_total",
			Help: "Total number of document results by source",
		},
		[]string{"source"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldextract_batch_duration_seconds",
			Help:    "Duration of a full batch request",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)
