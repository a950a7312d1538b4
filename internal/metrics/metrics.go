// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonemap_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zonemap_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	PipelineDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zonemap_pipeline_duration_ms",
		Help:    "Render pipeline duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	MalformedGeometryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonemap_malformed_geometry_total",
		Help: "Malformed geometry entries found in ingested or fetched zone collections",
	}, []string{"kind"})
	FetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonemap_fetch_failures_total",
		Help: "Upstream zone fetch failures by reason",
	}, []string{"reason"})
	StaleResponsesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonemap_stale_responses_total",
		Help: "Fetch responses discarded because a newer fetch superseded them",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonemap_cache_hits_total",
		Help: "Envelope cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonemap_cache_misses_total",
		Help: "Envelope cache misses",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonemap_rate_limited_total",
		Help: "Requests rejected by the per-IP rate limiter",
	})
)

// Geometry kinds for MalformedGeometryTotal.
const (
	KindPolygonVertex = "polygon_vertex"
	KindPolygonEmpty  = "polygon_empty"
	KindCentroid      = "centroid"
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(PipelineDurationMs)
	prometheus.MustRegister(MalformedGeometryTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}
