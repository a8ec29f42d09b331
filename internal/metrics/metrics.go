// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MarksWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_marks_written_total",
			Help: "Total number of attendance marks upserted",
		},
		[]string{"module", "presence"},
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_session_events_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"module", "action"},
	)

	AbsenceHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_summary_absences",
			Help:    "Distribution of absence counts seen in summaries",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
		[]string{"module"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
