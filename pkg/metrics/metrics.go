package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the chat, QA and booking flows.
type Metrics struct {
	inboundTotal      *prometheus.CounterVec
	answersTotal      *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	extractionLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bengkel",
			Subsystem: "chat",
			Name:      "inbound_total",
			Help:      "Inbound chat events by kind",
		}, []string{"kind"}),
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bengkel",
			Subsystem: "qa",
			Name:      "answers_total",
			Help:      "Question answering outcomes by mode",
		}, []string{"mode", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bengkel",
			Subsystem: "booking",
			Name:      "job_cards_total",
			Help:      "Job card booking attempts by status",
		}, []string{"status"}),
		extractionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bengkel",
			Subsystem: "qa",
			Name:      "extraction_latency_seconds",
			Help:      "Latency of answer extraction calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.answersTotal, m.bookingsTotal, m.extractionLatency)
	return m
}

func (m *Metrics) ObserveInbound(kind string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveAnswer(mode, outcome string) {
	if m == nil {
		return
	}
	m.answersTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveExtraction(seconds float64) {
	if m == nil {
		return
	}
	m.extractionLatency.Observe(seconds)
}
