package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/spatialgo"
)

// PrometheusCollector exports space metrics as Prometheus series labeled
// by backend.
type PrometheusCollector struct {
	latency  *prometheus.HistogramVec
	loaded   *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	results  *prometheus.HistogramVec
	elements *prometheus.GaugeVec
}

// NewPrometheusCollector creates the collector and registers its series with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spatialgo_operation_latency_seconds",
			Help:    "Latency of space operations",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"backend", "op", "status"}),
		loaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spatialgo_elements_loaded_total",
			Help: "Elements offered to Load",
		}, []string{"backend"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spatialgo_elements_dropped_total",
			Help: "Elements dropped by Load",
		}, []string{"backend"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spatialgo_query_results",
			Help:    "References returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"backend"}),
		elements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spatialgo_elements",
			Help: "Elements in the space after the last rebuild",
		}, []string{"backend"}),
	}

	reg.MustRegister(c.latency, c.loaded, c.dropped, c.results, c.elements)
	return c
}

// For returns a MetricsCollector that records under the given backend label.
func (c *PrometheusCollector) For(backend string) spatialgo.MetricsCollector {
	return &backendCollector{c: c, backend: backend}
}

type backendCollector struct {
	c       *PrometheusCollector
	backend string
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (b *backendCollector) observe(op string, d time.Duration, err error) {
	b.c.latency.WithLabelValues(b.backend, op, status(err)).Observe(d.Seconds())
}

func (b *backendCollector) RecordInsert(d time.Duration, err error) {
	b.observe("insert", d, err)
}

func (b *backendCollector) RecordLoad(count, dropped int, d time.Duration) {
	b.observe("load", d, nil)
	b.c.loaded.WithLabelValues(b.backend).Add(float64(count))
	b.c.dropped.WithLabelValues(b.backend).Add(float64(dropped))
}

func (b *backendCollector) RecordRebuild(count int, d time.Duration, err error) {
	b.observe("rebuild", d, err)
	if err == nil {
		b.c.elements.WithLabelValues(b.backend).Set(float64(count))
	}
}

func (b *backendCollector) RecordQuery(results int, d time.Duration, err error) {
	b.observe("query", d, err)
	if err == nil {
		b.c.results.WithLabelValues(b.backend).Observe(float64(results))
	}
}

func (b *backendCollector) RecordFanout(queries, neighbors int, d time.Duration, err error) {
	b.observe("fanout", d, err)
}

// metricsServer serves a registry on /metrics until Close.
type metricsServer struct {
	srv  *http.Server
	ln   net.Listener
	errc chan error
}

func serveMetrics(addr string, reg *prometheus.Registry) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s := &metricsServer{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		errc: make(chan error, 1),
	}
	go func() {
		s.errc <- s.srv.Serve(ln)
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *metricsServer) Addr() string { return s.ln.Addr().String() }

func (s *metricsServer) Close(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-s.errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
