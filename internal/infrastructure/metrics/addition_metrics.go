// Package metrics holds the Prometheus metrics of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/regroup/internal/domain/group"
)

// AdditionMetrics contains Prometheus metrics for add-member attempts.
type AdditionMetrics struct {
	OutcomesTotal    *prometheus.CounterVec
	MembersRequested prometheus.Histogram
	AddDuration      *prometheus.HistogramVec
	PurgesTotal      prometheus.Counter
}

// NewAdditionMetrics creates and registers addition metrics with the given registerer.
func NewAdditionMetrics(registerer prometheus.Registerer) *AdditionMetrics {
	metrics := &AdditionMetrics{
		OutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regroup_addition_outcomes_total",
				Help: "Total number of classified add-member attempts",
			},
			[]string{"category", "reason"},
		),
		MembersRequested: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "regroup_addition_members_requested",
			Help:    "Number of members proposed in each attempt",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
		AddDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regroup_addition_duration_seconds",
				Help:    "Time spent applying an add-member attempt",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		PurgesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regroup_addition_purges_total",
			Help: "Total number of attempts after which pending records were purged",
		}),
	}

	registerer.MustRegister(
		metrics.OutcomesTotal,
		metrics.MembersRequested,
		metrics.AddDuration,
		metrics.PurgesTotal,
	)

	return metrics
}

// RecordOutcome records one classified attempt.
func (m *AdditionMetrics) RecordOutcome(c group.Classification, reason string, count int, elapsed time.Duration) {
	category := c.Category.String()
	if reason == "" {
		reason = "none"
	}
	m.OutcomesTotal.WithLabelValues(category, reason).Inc()
	m.MembersRequested.Observe(float64(count))
	m.AddDuration.WithLabelValues(category).Observe(elapsed.Seconds())
	if c.ShouldPurgePendingRecords {
		m.PurgesTotal.Inc()
	}
}
