package syncclient

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK        = "ok"
	resultSkipped   = "skipped"
	resultTransport = "transport_error"
	resultProtocol  = "protocol_error"
	resultStorage   = "storage_error"
	resultBusy      = "busy"
)

// Metrics are the node's sync instruments.
type Metrics struct {
	Cycles             *prometheus.CounterVec
	ReadingsSent       prometheus.Counter
	ReadingsAccepted   prometheus.Counter
	AggregatesReceived prometheus.Counter
	AcksSent           prometheus.Counter
	OutboxPending      prometheus.Gauge
	CycleDuration      prometheus.Histogram
}

// NewMetrics creates the sync metrics and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensorsync_node_sync_cycles_total",
			Help: "Sync cycles by outcome.",
		}, []string{"result"}),
		ReadingsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_node_readings_sent_total",
			Help: "Readings submitted, retransmissions included.",
		}),
		ReadingsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_node_readings_accepted_total",
			Help: "Readings marked transmitted after the collector accepted them.",
		}),
		AggregatesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_node_aggregates_received_total",
			Help: "Aggregates received from the collector, resends included.",
		}),
		AcksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensorsync_node_acks_sent_total",
			Help: "Aggregate ids acknowledged to the collector.",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorsync_node_outbox_pending",
			Help: "Untransmitted readings in the first batch of the last cycle, at most max_batch_size.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensorsync_node_sync_cycle_duration_seconds",
			Help:    "Duration of a sync cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Cycles,
			m.ReadingsSent,
			m.ReadingsAccepted,
			m.AggregatesReceived,
			m.AcksSent,
			m.OutboxPending,
			m.CycleDuration,
		)
	}

	return m
}
