package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "raid_alerts"

// Metrics owns a private registry so that tests and multiple services in
// one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	MessagesTotal    *prometheus.CounterVec
	ProcessDuration  prometheus.Histogram
	VerifierTotal    *prometheus.CounterVec
	VerifierDuration prometheus.Histogram
	DeliveriesTotal  *prometheus.CounterVec
	HistoryPurged    prometheus.Counter
	EngineState      *prometheus.GaugeVec
	StreamClients    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Messages processed by the filter, by outcome",
			},
			[]string{"outcome"},
		),
		ProcessDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "process_duration_seconds",
				Help:      "Time spent in the filter per message, verifier included",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		VerifierTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifier_verdicts_total",
				Help:      "Verifier verdicts by kind (confirmed, changed, rejected)",
			},
			[]string{"verdict"},
		),
		VerifierDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verifier_duration_seconds",
				Help:      "Latency of verifier calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
		DeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Alert deliveries to subscribers by result (sent, failed, dropped)",
			},
			[]string{"result"},
		),
		HistoryPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_purged_total",
				Help:      "Alert history rows removed by retention",
			},
		),
		EngineState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engine_state_entries",
				Help:      "Live filter state sizes (sources, context_entries, dedup_entries, status_latches)",
			},
			[]string{"kind"},
		),
		StreamClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stream_clients",
				Help:      "Connected alert stream clients",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.MessagesTotal,
		m.ProcessDuration,
		m.VerifierTotal,
		m.VerifierDuration,
		m.DeliveriesTotal,
		m.HistoryPurged,
		m.EngineState,
		m.StreamClients,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:          m.registry,
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) ObserveMessage(outcome string, took time.Duration) {
	m.MessagesTotal.WithLabelValues(outcome).Inc()
	m.ProcessDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveVerdict(verdict string, took time.Duration) {
	m.VerifierTotal.WithLabelValues(verdict).Inc()
	m.VerifierDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveDelivery(result string) {
	m.DeliveriesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetEngineState(sources, contextEntries, dedupEntries, statusLatches int) {
	m.EngineState.WithLabelValues("sources").Set(float64(sources))
	m.EngineState.WithLabelValues("context_entries").Set(float64(contextEntries))
	m.EngineState.WithLabelValues("dedup_entries").Set(float64(dedupEntries))
	m.EngineState.WithLabelValues("status_latches").Set(float64(statusLatches))
}
