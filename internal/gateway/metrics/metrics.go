// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records the gateway's metrics. It satisfies the
// resolver layer's Recorder interface.
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	resolverErrors *prometheus.CounterVec
	upstreamStatus *prometheus.CounterVec
}

// NewCollector builds and registers the collector against reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upgate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "upgate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		resolverErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upgate",
			Name:      "resolver_errors_total",
			Help:      "Resolver aborts by error kind.",
		}, []string{"kind"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upgate",
			Name:      "upstream_responses_total",
			Help:      "Upbank API responses by status code.",
		}, []string{"status"}),
	}

	reg.MustRegister(c.httpRequests, c.httpDuration, c.resolverErrors, c.upstreamStatus)
	return c
}

// RecordResolverError counts one resolver abort of the given kind.
func (c *Collector) RecordResolverError(kind string) {
	c.resolverErrors.WithLabelValues(kind).Inc()
}

// RecordUpstreamStatus counts one upstream response.
func (c *Collector) RecordUpstreamStatus(code int) {
	c.upstreamStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

// HTTPMiddleware records request counts and latency per route pattern.
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		c.httpRequests.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		c.httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
