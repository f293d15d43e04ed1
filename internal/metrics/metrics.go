package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "riskview"

var (
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time taken to fetch and project one backend slice.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"slice"})

	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Count of fetch cycles by outcome (committed, network_error, mapping_error, stale, discarded).",
	}, []string{"slice", "outcome"})

	SliceRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "slice_records",
		Help:      "Number of records held in a view slice after the last commit.",
	}, []string{"slice"})

	LastCommitTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "slice_last_commit_timestamp_seconds",
		Help:      "Unix timestamp of the last committed fetch.",
	}, []string{"slice"})

	EntitiesByBand = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entities_by_band",
		Help:      "Number of entities per risk band.",
	}, []string{"band"})

	AlertActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_actions_total",
		Help:      "Local alert triage actions by action and whether the status changed.",
	}, []string{"action", "changed"})
)
