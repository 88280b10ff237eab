package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWebhookMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)

	m.ObserveMessage("created")
	m.ObserveMessage("created")
	m.ObserveMessage("duplicate")
	m.ObserveStatus("read", true)
	m.ObserveStatus("read", false)
	m.ObserveTemplate("ok")
	m.ObserveExtraction("error")
	m.ObservePayload(0.02)

	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("created")); got != 2 {
		t.Fatalf("created = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("duplicate = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.statusesTotal.WithLabelValues("read", "true")); got != 1 {
		t.Fatalf("matched statuses = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.templateTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("templates = %v; want 1", got)
	}
	if n := testutil.CollectAndCount(reg); n == 0 {
		t.Fatalf("expected registered collectors")
	}
}

func TestWebhookMetrics_NilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveMessage("created")
	m.ObserveStatus("sent", false)
	m.ObserveTemplate("error")
	m.ObserveExtraction("empty")
	m.ObservePayload(1)
}
