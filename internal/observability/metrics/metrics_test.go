package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPipelineMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)
	m.ObserveTicketCreated("transportation", "HIGH")
	m.ObserveNotification("chatops", "ok")
	m.ObserveThrottled()
	m.ObserveChatLatency(0.25)
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveTicketCreated("events", "MEDIUM")
	m.ObserveNotification("sms", "error")
	m.ObserveThrottled()
	m.ObserveChatLatency(0.1)
}
