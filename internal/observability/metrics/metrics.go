package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "helpdesk_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	recordSubmissions *prometheus.CounterVec
	recordLatency     *prometheus.HistogramVec

	reportGenerateTotal   *prometheus.CounterVec
	reportGenerateLatency *prometheus.HistogramVec
	reportExportTotal     *prometheus.CounterVec
	reportExportLatency   *prometheus.HistogramVec
	reportRowsSkipped     prometheus.Counter

	ticketEventsTotal    *prometheus.CounterVec
	workOrderEventsTotal *prometheus.CounterVec

	notifyTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		recordSubmissions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_submissions_total",
				Help: "Total daily record submissions by result",
			},
			[]string{"result"},
		)
		recordLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "record_submission_latency_seconds",
				Help:    "Daily record submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reportGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_generate_total",
				Help: "Total usage report generations by result",
			},
			[]string{"result"},
		)
		reportGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_generate_latency_seconds",
				Help:    "Usage report generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total usage report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Usage report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		reportRowsSkipped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_rows_skipped_total",
				Help: "Report rows skipped because of malformed record data",
			},
		)

		ticketEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticket_events_total",
				Help: "Total ticket lifecycle events by type",
			},
			[]string{"event"},
		)
		workOrderEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "work_order_events_total",
				Help: "Total work order lifecycle events by type",
			},
			[]string{"event"},
		)

		notifyTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total WhatsApp notifications by kind and result",
			},
			[]string{"kind", "result"},
		)

		prometheus.MustRegister(
			recordSubmissions,
			recordLatency,
			reportGenerateTotal,
			reportGenerateLatency,
			reportExportTotal,
			reportExportLatency,
			reportRowsSkipped,
			ticketEventsTotal,
			workOrderEventsTotal,
			notifyTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveRecordSubmission records submission duration and result.
func ObserveRecordSubmission(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if recordSubmissions != nil {
		recordSubmissions.WithLabelValues(result).Inc()
	}
	if recordLatency != nil {
		recordLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportGenerate records report generation latency and result.
func ObserveReportGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportGenerateTotal != nil {
		reportGenerateTotal.WithLabelValues(result).Inc()
	}
	if reportGenerateLatency != nil {
		reportGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddReportRowsSkipped counts rows dropped during assembly.
func AddReportRowsSkipped(count int) {
	if count <= 0 {
		return
	}
	if reportRowsSkipped != nil {
		reportRowsSkipped.Add(float64(count))
	}
}

// IncTicketEvent increments ticket lifecycle counters.
func IncTicketEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if ticketEventsTotal != nil {
		ticketEventsTotal.WithLabelValues(event).Inc()
	}
}

// IncWorkOrderEvent increments work order lifecycle counters.
func IncWorkOrderEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if workOrderEventsTotal != nil {
		workOrderEventsTotal.WithLabelValues(event).Inc()
	}
}

// IncNotify increments notification counters.
func IncNotify(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if notifyTotal != nil {
		notifyTotal.WithLabelValues(kind, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
