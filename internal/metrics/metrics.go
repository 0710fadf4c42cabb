// internal/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	JudgeFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aoj_judge_fetch_total",
			Help: "Total number of judge API fetches by outcome",
		},
		[]string{"kind", "outcome"},
	)

	JudgeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aoj_judge_fetch_duration_seconds",
			Help:    "Judge API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	SlotReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aoj_slot_reconcile_total",
			Help: "Total number of reconciled slots by result",
		},
		[]string{"result"},
	)

	SlotScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aoj_slot_score",
			Help:    "Distribution of stored scores after an update",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"problem"},
	)

	RankedUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aoj_ranked_users",
			Help: "Number of users present in the latest ranking",
		},
		[]string{"table"},
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

// Push sends the default registry to a Prometheus pushgateway. CLI runs
// are too short-lived to be scraped.
func Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
