package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the server-level metrics.  Engine metrics (training,
// inference, verdicts) live in internal/intelligence/common.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec
	RateLimitedTotal    CounterVec

	// Reference data
	ReferenceLoadDuration HistogramVec
	ReferenceLoadTotal    CounterVec
	ReferenceChangesTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultReferenceDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5}
	DefaultSizeBuckets              = []float64{100, 1000, 10000, 100000, 1000000}
)

// NewAppMetrics registers all server metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")
	m.RateLimitedTotal = collector.RegisterCounter("http_rate_limited_total", "Requests rejected by the rate limiter", "route")

	m.ReferenceLoadDuration = collector.RegisterHistogram("reference_load_duration_seconds", "Reference table load duration", DefaultReferenceDurationBuckets, "source", "table")
	m.ReferenceLoadTotal = collector.RegisterCounter("reference_load_total", "Reference table loads", "source", "table", "status")
	m.ReferenceChangesTotal = collector.RegisterCounter("reference_changes_total", "Reference table edits seen by the watcher", "table")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

func RecordHTTPRequest(metrics *AppMetrics, method, route string, statusCode int, duration time.Duration, respSize int64) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(respSize))
}

func RecordReferenceLoad(metrics *AppMetrics, source, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ReferenceLoadTotal.WithLabelValues(source, table, status).Inc()
	metrics.ReferenceLoadDuration.WithLabelValues(source, table).Observe(duration.Seconds())
}

func RecordHealth(metrics *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
