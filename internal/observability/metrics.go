package observability

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters and histograms for the WhatsApp ingestion
// pipeline. A nil *WebhookMetrics is valid and records nothing.
type WebhookMetrics struct {
	messagesTotal   *prometheus.CounterVec
	statusesTotal   *prometheus.CounterVec
	templateTotal   *prometheus.CounterVec
	extractionTotal *prometheus.CounterVec
	payloadLatency  prometheus.Histogram
}

// NewWebhookMetrics builds the collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil).
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Subsystem: "webhook",
			Name:      "messages_total",
			Help:      "Inbound WhatsApp messages by outcome (created, appended, duplicate, error).",
		}, []string{"outcome"}),
		statusesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Subsystem: "webhook",
			Name:      "statuses_total",
			Help:      "Delivery status callbacks by status and whether a stored message matched.",
		}, []string{"status", "matched"}),
		templateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Subsystem: "webhook",
			Name:      "welcome_templates_total",
			Help:      "Welcome template sends by result.",
		}, []string{"result"}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Subsystem: "webhook",
			Name:      "extractions_total",
			Help:      "Lead data extraction calls by result (updated, empty, error).",
		}, []string{"result"}),
		payloadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leads",
			Subsystem: "webhook",
			Name:      "payload_duration_seconds",
			Help:      "Time spent processing one webhook payload.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.statusesTotal, m.templateTotal, m.extractionTotal, m.payloadLatency)
	return m
}

// ObserveMessage counts one inbound message under outcome.
func (m *WebhookMetrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveStatus counts a delivery status callback; matched reports whether a
// stored message carried its id.
func (m *WebhookMetrics) ObserveStatus(status string, matched bool) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.statusesTotal.WithLabelValues(status, label).Inc()
}

// ObserveTemplate counts one welcome template send attempt.
func (m *WebhookMetrics) ObserveTemplate(result string) {
	if m == nil {
		return
	}
	m.templateTotal.WithLabelValues(result).Inc()
}

// ObserveExtraction counts one extraction call by result.
func (m *WebhookMetrics) ObserveExtraction(result string) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(result).Inc()
}

// ObservePayload records the processing time of one webhook payload.
func (m *WebhookMetrics) ObservePayload(seconds float64) {
	if m == nil {
		return
	}
	m.payloadLatency.Observe(seconds)
}
