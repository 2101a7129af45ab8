package outbox

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordOutboxLag(lag int)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordEventProcessed(string, bool, time.Duration) {}
func (NoOpMetricsCollector) RecordBatchProcessed(int, time.Duration)          {}
func (NoOpMetricsCollector) RecordOutboxLag(int)                              {}
func (NoOpMetricsCollector) RecordPublishAttempt(string, int, bool)           {}

// MetricPublisher times every publish of the wrapped Publisher.
type MetricPublisher struct {
	publisher Publisher
	duration  *prometheus.HistogramVec
}

func NewMetricPublisher(publisher Publisher, reg prometheus.Registerer) *MetricPublisher {
	p := &MetricPublisher{
		publisher: publisher,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outbox",
			Name:      "bus_publish_seconds",
			Help:      "Latency of single publish calls to the event bus.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type", "success"}),
	}
	reg.MustRegister(p.duration)
	return p
}

func (p *MetricPublisher) Publish(ctx context.Context, env events.Envelope) error {
	start := time.Now()
	err := p.publisher.Publish(ctx, env)
	p.duration.WithLabelValues(string(env.EventType), strconv.FormatBool(err == nil)).
		Observe(time.Since(start).Seconds())
	return err
}

// PrometheusMetrics implements MetricsCollector with client_golang collectors.
type PrometheusMetrics struct {
	eventCounter    *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	batchSize       prometheus.Histogram
	batchDuration   prometheus.Histogram
	outboxLag       prometheus.Gauge
	publishAttempts *prometheus.CounterVec
}

func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		eventCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbox",
			Name:      "events_processed_total",
			Help:      "Outbox events relayed, by type and outcome.",
		}, []string{"event_type", "success"}),
		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outbox",
			Name:      "event_duration_seconds",
			Help:      "Time to relay one event including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outbox",
			Name:      "batch_size",
			Help:      "Events relayed per fallback poll.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outbox",
			Name:      "batch_duration_seconds",
			Help:      "Time spent on one fallback poll.",
			Buckets:   prometheus.DefBuckets,
		}),
		outboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbox",
			Name:      "unsent_events",
			Help:      "Outbox rows not yet relayed.",
		}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbox",
			Name:      "publish_attempts_total",
			Help:      "Publish attempts, by attempt number and outcome.",
		}, []string{"event_type", "attempt", "success"}),
	}

	reg.MustRegister(
		m.eventCounter,
		m.eventDuration,
		m.batchSize,
		m.batchDuration,
		m.outboxLag,
		m.publishAttempts,
	)
	return m
}

func (m *PrometheusMetrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	m.eventCounter.WithLabelValues(eventType, strconv.FormatBool(success)).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordBatchProcessed(count int, duration time.Duration) {
	m.batchSize.Observe(float64(count))
	m.batchDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordOutboxLag(lag int) {
	m.outboxLag.Set(float64(lag))
}

func (m *PrometheusMetrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	m.publishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), strconv.FormatBool(success)).Inc()
}
