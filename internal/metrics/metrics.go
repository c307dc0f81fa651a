package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks the latency of service procedures
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dealswipe_request_duration_seconds",
			Help: "Duration of service procedures in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"procedure", "status"}, // status: success or failure
	)

	// GesturesTotal counts feed gestures by command and outcome
	GesturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealswipe_gestures_total",
			Help: "Feed gestures applied, by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	// TelemetryWritesTotal counts telemetry writes by path
	TelemetryWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealswipe_telemetry_writes_total",
			Help: "Telemetry writes by path (enhanced, basic, skipped, failed)",
		},
		[]string{"kind", "path"},
	)

	// GeoResolutionsTotal counts which fallback tier resolved a location
	GeoResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealswipe_geo_resolutions_total",
			Help: "Geo resolutions by fallback tier",
		},
		[]string{"source"},
	)

	// FeedFallbacksTotal counts feeds served from the built-in sample dataset
	FeedFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealswipe_feed_sample_fallbacks_total",
			Help: "Feeds served from the built-in sample dataset because the deal store failed",
		},
	)
)

// RecordRequestDuration records the duration of a service procedure
func RecordRequestDuration(procedure, status string, duration float64) {
	RequestDuration.WithLabelValues(procedure, status).Observe(duration)
}

// RecordGesture counts a feed gesture
func RecordGesture(command, outcome string) {
	GesturesTotal.WithLabelValues(command, outcome).Inc()
}

// RecordTelemetryWrite counts a telemetry write; kind is session or action
func RecordTelemetryWrite(kind, path string) {
	TelemetryWritesTotal.WithLabelValues(kind, path).Inc()
}

// RecordGeoResolution counts a resolved location by tier
func RecordGeoResolution(source string) {
	GeoResolutionsTotal.WithLabelValues(source).Inc()
}

// RecordFeedFallback counts a sample-data fallback
func RecordFeedFallback() {
	FeedFallbacksTotal.Inc()
}
