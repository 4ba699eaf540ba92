// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of submissions handled, by track and outcome",
		},
		[]string{"track", "outcome", "error_code"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Duration of submission processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_remote_calls_total",
			Help: "Total number of calls to the remote table/document service",
		},
		[]string{"operation", "outcome"},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_remote_call_duration_seconds",
			Help:    "Duration of remote calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	TokenExchangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_token_exchanges_total",
			Help: "Number of tenant credential exchanges performed",
		},
	)
)

// ObserveRemoteCall records one remote round trip.
func ObserveRemoteCall(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	RemoteCallsTotal.WithLabelValues(operation, outcome).Inc()
	RemoteCallDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
