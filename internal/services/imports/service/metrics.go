package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackerhub_import_conversations_total",
		Help: "Conversations seen by imports, by outcome (upserted, rejected, failed).",
	}, []string{"env", "outcome"})

	activityInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackerhub_import_activity_inserted_total",
		Help: "Activity records back-filled from imported trackers.",
	}, []string{"env"})

	unresolvedParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackerhub_import_unresolved_parse_data_total",
		Help: "Parse data left out of activity because no model matched.",
	}, []string{"env"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trackerhub_import_duration_seconds",
		Help:    "Wall time of one import batch.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"env", "status"})
)

func observe(env string, upserted, rejected, failed, inserted, unresolved int, status string, seconds float64) {
	conversationsTotal.WithLabelValues(env, "upserted").Add(float64(upserted))
	conversationsTotal.WithLabelValues(env, "rejected").Add(float64(rejected))
	conversationsTotal.WithLabelValues(env, "failed").Add(float64(failed))
	activityInserted.WithLabelValues(env).Add(float64(inserted))
	unresolvedParses.WithLabelValues(env).Add(float64(unresolved))
	importDuration.WithLabelValues(env, status).Observe(seconds)
}
