package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collector's Prometheus instruments.
type Metrics struct {
	ReadingsReceived      prometheus.Counter
	ReadingsInserted      prometheus.Counter
	BatchesRejected       prometheus.Counter
	AggregatesComputed    prometheus.Counter
	AggregatesDistributed prometheus.Counter
	AggregatesAcked       prometheus.Counter
	IngestDuration        prometheus.Histogram
}

// NewMetrics creates the collector metrics and registers them with reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadingsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_readings_received_total",
			Help: "Readings received in valid batches, duplicates included.",
		}),
		ReadingsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_readings_inserted_total",
			Help: "Readings stored for the first time.",
		}),
		BatchesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_batches_rejected_total",
			Help: "Batches rejected as malformed.",
		}),
		AggregatesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_aggregates_computed_total",
			Help: "Rolling averages computed.",
		}),
		AggregatesDistributed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_aggregates_distributed_total",
			Help: "Pending aggregates included in sync responses, resends included.",
		}),
		AggregatesAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_collector_aggregates_acked_total",
			Help: "Aggregates newly flagged as transmitted.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensorsync_collector_ingest_duration_seconds",
			Help:    "Time to validate, store and aggregate one batch.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ReadingsReceived,
			m.ReadingsInserted,
			m.BatchesRejected,
			m.AggregatesComputed,
			m.AggregatesDistributed,
			m.AggregatesAcked,
			m.IngestDuration,
		)
	}

	return m
}
