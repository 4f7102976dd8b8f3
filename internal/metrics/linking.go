package metrics

import "github.com/prometheus/client_golang/prometheus"

// Link maintenance Prometheus metrics.
var (
	LinksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "links_created_total",
			Help:      "Total number of vision-product links created",
		},
		[]string{"trigger"}, // "vision_create" / "product_create" / "backfill"
	)

	LinkEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "link_evictions_total",
			Help:      "Total number of links evicted from vision top-3 maps",
		},
	)

	BackfillRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "backfill_runs_total",
			Help:      "Backfill passes after product deletion",
		},
		[]string{"outcome"}, // "recovered" / "empty" / "error"
	)

	LinkRetryAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "link_retry_attempts_total",
			Help:      "Retry attempts made while searching products for a new vision",
		},
	)

	DuplicatesDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "duplicates_detected_total",
			Help:      "Vision submissions rejected as duplicates",
		},
		[]string{"method"}, // "vector" / "exact"
	)

	ClicksRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "visionlink",
			Name:      "clicks_recorded_total",
			Help:      "Link click events recorded",
		},
	)
)

var linkMetricsRegistered bool

// RegisterLinkingMetrics registers Prometheus linking metrics. Must be called once from main.
func RegisterLinkingMetrics() {
	if linkMetricsRegistered {
		return
	}
	prometheus.MustRegister(LinksCreatedTotal)
	prometheus.MustRegister(LinkEvictionsTotal)
	prometheus.MustRegister(BackfillRunsTotal)
	prometheus.MustRegister(LinkRetryAttemptsTotal)
	prometheus.MustRegister(DuplicatesDetectedTotal)
	prometheus.MustRegister(ClicksRecordedTotal)
	linkMetricsRegistered = true
}
