// Package prometheus defines the application metrics and their
// registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "markintel"

var (
	httpDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	analysisDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	recordCountBuckets      = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
)

// Metrics holds every application metric on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DocumentsIngested  *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	RecordsExtracted   prometheus.Histogram

	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	CandidatesCompared   prometheus.Histogram
	EmbeddingCacheHits   prometheus.Counter
	EmbeddingCacheMiss   prometheus.Counter
	EmbeddingErrorsTotal prometheus.Counter

	StoredRecords  prometheus.Gauge
	IndexedVectors prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path, and status code.",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   httpDurationBuckets,
	}, []string{"method", "path"})

	m.DocumentsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_ingested_total",
		Help:      "Documents processed by extraction outcome.",
	}, []string{"status"})

	m.ExtractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "End-to-end document extraction duration.",
		Buckets:   analysisDurationBuckets,
	})

	m.RecordsExtracted = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "records_extracted_per_document",
		Help:      "Valid records extracted per document.",
		Buckets:   recordCountBuckets,
	})

	m.AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Similarity analyses by outcome.",
	}, []string{"status"})

	m.AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Similarity analysis duration.",
		Buckets:   analysisDurationBuckets,
	})

	m.CandidatesCompared = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_candidates_compared",
		Help:      "Corpus records compared per analysis.",
		Buckets:   recordCountBuckets,
	})

	m.EmbeddingCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_cache_hits_total",
		Help:      "Embedding cache hits.",
	})

	m.EmbeddingCacheMiss = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_cache_misses_total",
		Help:      "Embedding cache misses.",
	})

	m.EmbeddingErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_errors_total",
		Help:      "Failed embedding service calls.",
	})

	m.StoredRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_records",
		Help:      "Trademark records currently stored.",
	})

	m.IndexedVectors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "indexed_vectors",
		Help:      "Vectors currently in the similarity index.",
	})

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.DocumentsIngested, m.ExtractionDuration, m.RecordsExtracted,
		m.AnalysesTotal, m.AnalysisDuration, m.CandidatesCompared,
		m.EmbeddingCacheHits, m.EmbeddingCacheMiss, m.EmbeddingErrorsTotal,
		m.StoredRecords, m.IndexedVectors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
