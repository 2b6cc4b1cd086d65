// Package metrics defines the Prometheus instruments for the auth and HTTP
// surfaces. All instruments are registered on an injected registry; there is
// no package-level state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every instrument the service records.
type Metrics struct {
	LoginSuccess    *prometheus.CounterVec
	LoginFailed     *prometheus.CounterVec
	TokenRefresh    *prometheus.CounterVec
	SessionsRevoked *prometheus.CounterVec

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ActiveUsers    prometheus.Gauge
	ActiveSessions prometheus.Gauge
}

// New registers and returns the service instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginSuccess: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_success_total",
			Help: "Successful logins by method.",
		}, []string{"method"}),
		LoginFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_failed_total",
			Help: "Failed logins by reason.",
		}, []string{"reason"}),
		TokenRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_refresh_total",
			Help: "Refresh attempts by outcome.",
		}, []string{"status"}),
		SessionsRevoked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sessions_revoked_total",
			Help: "Sessions revoked, by scope (one or all).",
		}, []string{"scope"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		ActiveUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "users_active_total",
			Help: "Number of registered users.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sessions_active_total",
			Help: "Number of non-revoked, unexpired sessions.",
		}),
	}
}
