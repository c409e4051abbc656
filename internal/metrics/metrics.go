package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the donation pipeline collectors on a private registry.
type Metrics struct {
	DonationsRecorded *prometheus.CounterVec
	WebhookOutcomes   *prometheus.CounterVec
	PaymentsCreated   *prometheus.CounterVec
	StreamDropped     prometheus.Counter
	StreamConnections *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		DonationsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuoitoi",
			Name:      "donations_recorded_total",
			Help:      "Donations written to the store.",
		}, []string{"verified"}),
		WebhookOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuoitoi",
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		PaymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuoitoi",
			Name:      "payment_requests_total",
			Help:      "Payment requests by result.",
		}, []string{"result"}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nuoitoi",
			Name:      "stream_messages_dropped_total",
			Help:      "Messages dropped for slow stream clients.",
		}),
		StreamConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nuoitoi",
			Name:      "stream_connections",
			Help:      "Open streaming connections.",
		}, []string{"transport"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.DonationsRecorded,
		m.WebhookOutcomes,
		m.PaymentsCreated,
		m.StreamDropped,
		m.StreamConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
