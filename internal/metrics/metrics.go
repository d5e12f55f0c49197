// Package metrics exposes Prometheus collectors for upstream calls, façade
// results and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketdash/internal/httpx"
)

const namespace = "marketdash"

type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Results          *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound provider requests by outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound provider request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Aggregation results by operation and outcome.",
		}, []string{"operation", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests served.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{m.UpstreamRequests, m.UpstreamLatency, m.Results, m.HTTPRequests, m.HTTPLatency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveResult counts one façade operation outcome.
func (m *Metrics) ObserveResult(operation string, ok bool) {
	m.Results.WithLabelValues(operation, outcome(ok)).Inc()
}

// Instrument wraps next so every outbound request is counted and timed under provider.
func (m *Metrics) Instrument(provider string, next httpx.Doer) httpx.Doer {
	return &instrumented{m: m, provider: provider, next: next}
}

type instrumented struct {
	m        *Metrics
	provider string
	next     httpx.Doer
}

func (i *instrumented) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := i.next.Do(req)
	i.m.UpstreamLatency.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		i.m.UpstreamRequests.WithLabelValues(i.provider, "transport_error").Inc()
	case !httpx.IsSuccess(resp.StatusCode):
		i.m.UpstreamRequests.WithLabelValues(i.provider, "http_"+strconv.Itoa(resp.StatusCode)).Inc()
	default:
		i.m.UpstreamRequests.WithLabelValues(i.provider, "ok").Inc()
	}
	return resp, err
}

// Middleware records API requests by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPLatency.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
