package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics - метрики Prometheus сервиса отчетов.
//
// Все метрики имеют префикс "civic_":
//   - civic_reports_submitted_total{type,severity}
//   - civic_reviews_total{action}
//   - civic_status_changes_total{status}
//   - civic_verifications_total{outcome}
//   - civic_webhook_deliveries_total{result}
//   - civic_realtime_subscribers
//   - civic_http_request_duration_seconds{method,route,code}
type Metrics struct {
	ReportsSubmitted    *prometheus.CounterVec
	Reviews             *prometheus.CounterVec
	StatusChanges       *prometheus.CounterVec
	Verifications       *prometheus.CounterVec
	WebhookDeliveries   *prometheus.CounterVec
	RealtimeSubscribers prometheus.Gauge
	HTTPDuration        *prometheus.HistogramVec
}

// New регистрирует метрики один раз на процесс
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ReportsSubmitted: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civic_reports_submitted_total",
					Help: "Total number of submitted incident reports",
				},
				[]string{"type", "severity"},
			),
			Reviews: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civic_reviews_total",
					Help: "Total number of admin review decisions",
				},
				[]string{"action"}, // "confirm" or "reject"
			),
			StatusChanges: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civic_status_changes_total",
					Help: "Total number of report status changes",
				},
				[]string{"status"},
			),
			Verifications: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civic_verifications_total",
					Help: "Total number of AI verification attempts",
				},
				[]string{"outcome"}, // "verified", "fake", "error"
			),
			WebhookDeliveries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civic_webhook_deliveries_total",
					Help: "Total number of dispatch webhook deliveries",
				},
				[]string{"result"},
			),
			RealtimeSubscribers: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "civic_realtime_subscribers",
					Help: "Current number of realtime subscribers",
				},
			),
			HTTPDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "civic_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route", "code"},
			),
		}
	})
	return globalMetrics
}

// Middleware измеряет длительность запросов по шаблону маршрута
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler отдает метрики в формате Prometheus
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
