package service

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbdsaraiva/academia-api/internal/models"
)

const metricsNamespace = "academia"

// Report labels used by ObserveReport.
const (
	reportLabelStudents          = "students"
	reportLabelCourses           = "courses"
	reportLabelEnrollmentSummary = "enrollment_summary"
	reportLabelDashboard         = "dashboard"
)

// MetricsService owns the Prometheus registry. Besides HTTP traffic it
// tracks how report and dashboard payloads are served and how often the
// catalogue is written.
type MetricsService struct {
	registry       *prometheus.Registry
	handler        http.Handler
	httpDuration   *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	cacheWrite     prometheus.Histogram
	reportDuration *prometheus.HistogramVec
	writesTotal    *prometheus.CounterVec

	requests    atomic.Uint64
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	writes      atomic.Uint64

	mu            sync.Mutex
	reportsServed map[string]uint64
}

// NewMetricsService registers the academia collectors plus the Go runtime
// and process collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route template",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cache_lookups_total",
		Help:      "Redis lookups for report payloads by result",
	}, []string{"result"})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "cache_write_seconds",
		Help:      "Latency of storing report payloads in Redis",
		Buckets:   prometheus.DefBuckets,
	})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "report_duration_seconds",
		Help:      "Time to serve a report or the dashboard, by source",
		Buckets:   prometheus.DefBuckets,
	}, []string{"report", "source"})

	writesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "writes_total",
		Help:      "Successful writes by entity and operation",
	}, []string{"entity", "operation"})

	registry.MustRegister(
		httpDuration, cacheLookups, cacheWrite, reportDuration, writesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:       registry,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		httpDuration:   httpDuration,
		cacheLookups:   cacheLookups,
		cacheWrite:     cacheWrite,
		reportDuration: reportDuration,
		writesTotal:    writesTotal,
		reportsServed:  make(map[string]uint64),
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one request against its route template.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.Add(1)
}

// RecordCacheLookup counts a Redis lookup as a hit or a miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of storing a payload.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveReport records one served report. hit selects the "cache" source
// label, otherwise the payload was built from Postgres.
func (m *MetricsService) ObserveReport(report string, hit bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	source := "database"
	if hit {
		source = "cache"
	}
	m.reportDuration.WithLabelValues(report, source).Observe(elapsed.Seconds())
	m.mu.Lock()
	m.reportsServed[report]++
	m.mu.Unlock()
}

// CountWrite records a successful create, update or delete of an entity.
func (m *MetricsService) CountWrite(entity, operation string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(entity, operation).Inc()
	m.writes.Add(1)
}

// Snapshot returns the counters shown by the JSON metrics summary.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{ReportsServed: map[string]uint64{}}
	}
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	m.mu.Lock()
	served := make(map[string]uint64, len(m.reportsServed))
	for report, n := range m.reportsServed {
		served[report] = n
	}
	m.mu.Unlock()

	return models.SystemMetrics{
		RequestsTotal: m.requests.Load(),
		CacheHits:     hits,
		CacheMisses:   misses,
		CacheHitRatio: ratio,
		ReportsServed: served,
		WritesTotal:   m.writes.Load(),
		GeneratedAt:   time.Now().UTC(),
	}
}
