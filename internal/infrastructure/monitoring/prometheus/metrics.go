package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric exported by cnsipo-attrs.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Classifiers
	ClassificationsTotal CounterVec

	// Auxiliary-table filler
	AuxRecordsTotal   CounterVec
	AuxBatchesTotal   CounterVec
	AuxBatchDuration  HistogramVec
	AuxActiveWorkers  GaugeVec
	AuxRunDuration    HistogramVec
	RefDataTableSizes GaugeVec

	ErrorsTotal CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultBatchDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultRunDurationBuckets   = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.ClassificationsTotal = collector.RegisterCounter("classifications_total", "Classifier invocations by kind and outcome", "kind", "outcome")

	m.AuxRecordsTotal = collector.RegisterCounter("aux_records_total", "Source records processed by the auxiliary-table filler", "field", "year", "status")
	m.AuxBatchesTotal = collector.RegisterCounter("aux_batches_total", "Batches written by the auxiliary-table filler", "field", "status")
	m.AuxBatchDuration = collector.RegisterHistogram("aux_batch_duration_seconds", "Duration of one batch write", DefaultBatchDurationBuckets, "field")
	m.AuxActiveWorkers = collector.RegisterGauge("aux_active_workers", "Years currently being processed", "field")
	m.AuxRunDuration = collector.RegisterHistogram("aux_run_duration_seconds", "Duration of one fill run", DefaultRunDurationBuckets, "field")
	m.RefDataTableSizes = collector.RegisterGauge("refdata_entries", "Entries per loaded reference table", "table")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordClassification(metrics *AppMetrics, kind, outcome string) {
	if metrics == nil {
		return
	}
	metrics.ClassificationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordBatch accounts one written (or failed) batch of n records.
func RecordBatch(metrics *AppMetrics, field string, year, n int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AuxBatchesTotal.WithLabelValues(field, status).Inc()
	metrics.AuxBatchDuration.WithLabelValues(field).Observe(duration.Seconds())
	metrics.AuxRecordsTotal.WithLabelValues(field, strconv.Itoa(year), status).Add(float64(n))
}

func RecordSkipped(metrics *AppMetrics, field string, year, n int) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.AuxRecordsTotal.WithLabelValues(field, strconv.Itoa(year), "skipped").Add(float64(n))
}

func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// RecordRefDataSizes publishes the size of each loaded reference table.
func RecordRefDataSizes(metrics *AppMetrics, sizes map[string]int) {
	if metrics == nil {
		return
	}
	for table, n := range sizes {
		metrics.RefDataTableSizes.WithLabelValues(table).Set(float64(n))
	}
}

//Personal.AI order the ending
