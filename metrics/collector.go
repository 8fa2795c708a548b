// Package metrics exports hedwig message processing metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "hedwig"
	subsystem = "consumer"
)

// PrometheusCollector implements interceptors.MetricsCollector on top of
// Prometheus counters and a duration histogram
type PrometheusCollector struct {
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewPrometheusCollector registers the collector's metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_total",
				Help:      "Total number of messages processed by message type",
			},
			[]string{"message_type"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "processing_duration_seconds",
				Help:      "Time taken to process a message",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"message_type"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed messages by message type and reason",
			},
			[]string{"message_type", "reason"},
		),
	}
}

// IncrementMessageCount implements interceptors.MetricsCollector
func (c *PrometheusCollector) IncrementMessageCount(messageType string) {
	c.messages.WithLabelValues(messageType).Inc()
}

// RecordProcessingTime implements interceptors.MetricsCollector
func (c *PrometheusCollector) RecordProcessingTime(messageType string, duration time.Duration) {
	c.duration.WithLabelValues(messageType).Observe(duration.Seconds())
}

// IncrementErrorCount implements interceptors.MetricsCollector
func (c *PrometheusCollector) IncrementErrorCount(messageType string, errorType string) {
	c.errors.WithLabelValues(messageType, errorType).Inc()
}
