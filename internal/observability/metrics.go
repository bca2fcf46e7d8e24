package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics counts dispatches by request type and result code and
// tracks their latency.
type DispatchMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewDispatchMetrics registers the dispatch collectors on reg.
func NewDispatchMetrics(reg prometheus.Registerer) (*DispatchMetrics, error) {
	m := &DispatchMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediator",
			Name:      "requests_total",
			Help:      "Dispatches by request type and result code.",
		}, []string{"request", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mediator",
			Name:      "request_duration_seconds",
			Help:      "Dispatch latency by request type.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"request"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DispatchMetrics) Observe(request, code string, dur time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(request, code).Inc()
	m.latency.WithLabelValues(request).Observe(dur.Seconds())
}

// HTTPMetrics tracks transport-level request counts, latency and in-flight
// requests by route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "http",
			Name:      "requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency, m.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *HTTPMetrics) Observe(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.latency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *HTTPMetrics) InflightInc() {
	if m != nil {
		m.inflight.Inc()
	}
}

func (m *HTTPMetrics) InflightDec() {
	if m != nil {
		m.inflight.Dec()
	}
}
