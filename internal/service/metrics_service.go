package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	sourceLoadDuration *prometheus.HistogramVec
	plansGenerated     *prometheus.CounterVec
	vacancies          prometheus.Counter
	unassigned         prometheus.Counter
	planDuration       prometheus.Histogram
	liveBoardRefresh   prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	planCount            uint64
	vacancyCount         uint64
	unassignedCount      uint64
	sourceLoadCount      uint64
	sourceLoadTotal      uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sourceLoadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_source_load_seconds",
		Help:    "Duration of timetable source loads",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	plansGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "substitution_plans_generated_total",
		Help: "Substitution plans generated per day",
	}, []string{"day"})

	vacancies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_vacancies_total",
		Help: "Vacant slots processed by plan generation",
	})

	unassigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_unassigned_total",
		Help: "Vacant slots left without a substitute",
	})

	planDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "substitution_plan_duration_seconds",
		Help:    "Time spent computing a substitution plan",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	liveBoardRefresh := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "live_board_refresh_total",
		Help: "Live board snapshot refreshes",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		sourceLoadDuration, plansGenerated, vacancies, unassigned, planDuration, liveBoardRefresh, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		sourceLoadDuration: sourceLoadDuration,
		plansGenerated:     plansGenerated,
		vacancies:          vacancies,
		unassigned:         unassigned,
		planDuration:       planDuration,
		liveBoardRefresh:   liveBoardRefresh,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSourceLoad records how long a timetable source took to load.
func (m *MetricsService) ObserveSourceLoad(source string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sourceLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	atomic.AddUint64(&m.sourceLoadCount, 1)
	atomic.AddUint64(&m.sourceLoadTotal, uint64(duration.Nanoseconds()))
}

// ObservePlan records one plan generation.
func (m *MetricsService) ObservePlan(day string, vacancies, unassigned int, duration time.Duration) {
	if m == nil {
		return
	}
	m.plansGenerated.WithLabelValues(day).Inc()
	m.vacancies.Add(float64(vacancies))
	m.unassigned.Add(float64(unassigned))
	m.planDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.planCount, 1)
	atomic.AddUint64(&m.vacancyCount, uint64(vacancies))
	atomic.AddUint64(&m.unassignedCount, uint64(unassigned))
}

// ObserveLiveBoardRefresh counts live board refreshes.
func (m *MetricsService) ObserveLiveBoardRefresh() {
	if m == nil {
		return
	}
	m.liveBoardRefresh.Inc()
}

// Snapshot returns aggregated metrics suitable for the dashboard.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	loads := atomic.LoadUint64(&m.sourceLoadCount)
	loadDuration := atomic.LoadUint64(&m.sourceLoadTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgLoadMs float64
	if loads > 0 {
		avgLoadMs = float64(loadDuration) / float64(loads) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		PlansGenerated:           atomic.LoadUint64(&m.planCount),
		VacanciesTotal:           atomic.LoadUint64(&m.vacancyCount),
		UnassignedTotal:          atomic.LoadUint64(&m.unassignedCount),
		SourceLoadCount:          loads,
		AverageSourceLoadMs:      avgLoadMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
