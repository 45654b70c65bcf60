// Package metric provides Prometheus metrics for the provisioning services.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "provisiond"

// Registry holds all application metrics for one service process.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Check-in metrics
	CheckinsAccepted prometheus.Counter
	CheckinsRejected *prometheus.CounterVec
	CheckinBytes     prometheus.Histogram

	// Key serving metrics
	KeyRequests *prometheus.CounterVec

	// Transport metrics
	TLSHandshakeErrors prometheus.Counter
	CertReloads        *prometheus.CounterVec
}

// NewRegistry creates a registry whose series all carry service=<service>.
// Go runtime and process collectors are included.
func NewRegistry(service string) *Registry {
	labels := prometheus.Labels{"service": service}

	r := &Registry{
		reg: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by method and status code.",
			ConstLabels: labels,
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency by method.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "rate_limited_total",
			Help:        "Requests rejected by the per-client rate limit.",
			ConstLabels: labels,
		}),

		CheckinsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "checkin",
			Name:        "accepted_total",
			Help:        "Check-ins appended to the check-in log.",
			ConstLabels: labels,
		}),
		CheckinsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "checkin",
			Name:        "rejected_total",
			Help:        "Check-ins refused, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		CheckinBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "checkin",
			Name:        "body_bytes",
			Help:        "Size of accepted check-in bodies.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(64, 4, 8),
		}),

		KeyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "sshkey",
			Name:        "requests_total",
			Help:        "Key file requests by result (served, not_found, error).",
			ConstLabels: labels,
		}, []string{"result"}),

		TLSHandshakeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "tls",
			Name:        "handshake_errors_total",
			Help:        "TLS handshakes that failed; the connection was dropped.",
			ConstLabels: labels,
		}),
		CertReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "tls",
			Name:        "cert_reloads_total",
			Help:        "Certificate reload attempts by result (ok, error).",
			ConstLabels: labels,
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.CheckinsAccepted,
		r.CheckinsRejected,
		r.CheckinBytes,
		r.KeyRequests,
		r.TLSHandshakeErrors,
		r.CertReloads,
	)

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveCertReload records the outcome of a certificate reload.
func (r *Registry) ObserveCertReload(err error) {
	if err != nil {
		r.CertReloads.WithLabelValues("error").Inc()
		return
	}
	r.CertReloads.WithLabelValues("ok").Inc()
}
