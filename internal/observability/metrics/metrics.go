package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the service request pipeline.
type PipelineMetrics struct {
	ticketsCreated        *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	notificationsThrottle prometheus.Counter
	chatLatency           prometheus.Histogram
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		ticketsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asteria",
			Subsystem: "pipeline",
			Name:      "tickets_created_total",
			Help:      "Total service tickets created",
		}, []string{"bucket", "urgency"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asteria",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total notification deliveries by channel and outcome",
		}, []string{"channel", "status"}),
		notificationsThrottle: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asteria",
			Subsystem: "notify",
			Name:      "notifications_throttled_total",
			Help:      "Total notifications deferred into a batch window",
		}),
		chatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asteria",
			Subsystem: "chat",
			Name:      "request_seconds",
			Help:      "Latency of chat turn processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ticketsCreated, m.notificationsTotal, m.notificationsThrottle, m.chatLatency)
	return m
}

func (m *PipelineMetrics) ObserveTicketCreated(bucket, urgency string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(bucket, urgency).Inc()
}

func (m *PipelineMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *PipelineMetrics) ObserveThrottled() {
	if m == nil {
		return
	}
	m.notificationsThrottle.Inc()
}

func (m *PipelineMetrics) ObserveChatLatency(seconds float64) {
	if m == nil {
		return
	}
	m.chatLatency.Observe(seconds)
}
