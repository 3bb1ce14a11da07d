// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	LoginFailures *prometheus.CounterVec
	Lockouts      prometheus.Counter
	TokenFailures *prometheus.CounterVec

	// Asset metrics
	AssetOrphans *prometheus.CounterVec
	AssetUploads *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		LoginFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_failures_total",
				Help: "Failed login attempts by reason",
			},
			[]string{"reason"},
		),
		Lockouts: f.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_lockouts_total",
				Help: "Accounts locked after repeated failures",
			},
		),
		TokenFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_failures_total",
				Help: "Rejected session tokens by failure kind",
			},
			[]string{"kind"},
		),
		AssetOrphans: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_orphans_total",
				Help: "Stored assets left behind after a failed delete or save",
			},
			[]string{"stage"},
		),
		AssetUploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_uploads_total",
				Help: "Asset uploads by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// RecordLoginFailure counts a failed login.
func (m *Metrics) RecordLoginFailure(reason string) {
	if m == nil {
		return
	}
	m.LoginFailures.WithLabelValues(reason).Inc()
}

// RecordLockout counts an account entering the locked state.
func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}

// RecordTokenFailure counts a rejected token.
func (m *Metrics) RecordTokenFailure(kind string) {
	if m == nil {
		return
	}
	m.TokenFailures.WithLabelValues(kind).Inc()
}

// RecordOrphan counts an asset that could not be cleaned up.
func (m *Metrics) RecordOrphan(stage string) {
	if m == nil {
		return
	}
	m.AssetOrphans.WithLabelValues(stage).Inc()
}

// RecordUpload counts an upload attempt.
func (m *Metrics) RecordUpload(kind, outcome string) {
	if m == nil {
		return
	}
	m.AssetUploads.WithLabelValues(kind, outcome).Inc()
}

// Middleware tracks request count and latency per route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
