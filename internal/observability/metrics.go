package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reviewsTotal    *prometheus.CounterVec
	debitRejected   *prometheus.CounterVec
	outboxPublished *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hr_portal_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reviews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_reviews_total",
		Help: "Review decisions by request kind, target status and outcome.",
	}, []string{"kind", "status", "outcome"})
	debits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_balance_debit_rejected_total",
		Help: "Leave approvals refused because the balance was too low.",
	}, []string{"category"})
	outbox := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_portal_outbox_events_total",
		Help: "Outbox publish attempts by topic and result.",
	}, []string{"topic", "result"})
	registry.MustRegister(requests, duration, reviews, debits, outbox)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		reviewsTotal:    reviews,
		debitRejected:   debits,
		outboxPublished: outbox,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency for every gin route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveReview(kind, status string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.reviewsTotal.WithLabelValues(kind, status, outcome).Inc()
}

func (m *Metrics) ObserveDebitRejected(category string) {
	if m == nil {
		return
	}
	m.debitRejected.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveOutbox(topic string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.outboxPublished.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
