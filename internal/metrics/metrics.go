package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RatingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_ratings_total",
			Help: "Votes written to the rating ledger",
		},
		[]string{"kind", "polarity"},
	)

	CascadeDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_cascade_deletions_total",
			Help: "Committed cascade deletions by root kind",
		},
		[]string{"root"},
	)

	CascadeRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_cascade_rows_total",
			Help: "Rows removed by committed cascade deletions",
		},
		[]string{"table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func Polarity(isPositive bool) string {
	if isPositive {
		return "up"
	}
	return "down"
}
