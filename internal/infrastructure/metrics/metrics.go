package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ingestion metrics
	FilesIngested     *prometheus.CounterVec
	RowsIngested      prometheus.Counter
	BatchesWritten    *prometheus.CounterVec
	IngestDuration    prometheus.Histogram
	ParserWarnings    prometheus.Counter
	IngestionFailures *prometheus.CounterVec

	// Classification metrics
	ClassificationRuns *prometheus.CounterVec
	RowsClassified     *prometheus.CounterVec

	// Analyst metrics
	ModelRequests *prometheus.CounterVec
	ModelDuration *prometheus.HistogramVec
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilesIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_files_ingested_total",
				Help: "Statement files processed, by outcome",
			},
			[]string{"status"},
		),
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "finpipe_rows_ingested_total",
			Help: "Raw movements appended to the raw table",
		}),
		BatchesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_batches_written_total",
				Help: "Append batches written, by table",
			},
			[]string{"table"},
		),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "finpipe_ingest_duration_seconds",
			Help:    "Duration of a file ingestion",
			Buckets: prometheus.DefBuckets,
		}),
		ParserWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "finpipe_parser_warnings_total",
			Help: "Recoverable spreadsheet layout warnings",
		}),
		IngestionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_ingestion_failures_total",
				Help: "Ingestion failures by stage",
			},
			[]string{"stage"},
		),
		ClassificationRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_classification_runs_total",
				Help: "Classification runs by outcome",
			},
			[]string{"status"},
		),
		RowsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_rows_classified_total",
				Help: "Classified movements written, by category",
			},
			[]string{"category"},
		),
		ModelRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpipe_model_requests_total",
				Help: "Language model requests by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		ModelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpipe_model_request_duration_seconds",
				Help:    "Language model request duration",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
	}
}

// ObserveIngest records a finished file ingestion.
func (m *Metrics) ObserveIngest(status string, rows, warnings int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FilesIngested.WithLabelValues(status).Inc()
	m.RowsIngested.Add(float64(rows))
	m.ParserWarnings.Add(float64(warnings))
	m.IngestDuration.Observe(elapsed.Seconds())
}

// IngestFailed records the stage at which an ingestion stopped.
func (m *Metrics) IngestFailed(stage string) {
	if m == nil {
		return
	}
	m.IngestionFailures.WithLabelValues(stage).Inc()
}

// BatchWritten records one append batch.
func (m *Metrics) BatchWritten(table string) {
	if m == nil {
		return
	}
	m.BatchesWritten.WithLabelValues(table).Inc()
}

// ClassificationRun records a finished classification run.
func (m *Metrics) ClassificationRun(status string) {
	if m == nil {
		return
	}
	m.ClassificationRuns.WithLabelValues(status).Inc()
}

// Classified records one classified movement.
func (m *Metrics) Classified(category string) {
	if m == nil {
		return
	}
	m.RowsClassified.WithLabelValues(category).Inc()
}

// ModelRequest records one language model call.
func (m *Metrics) ModelRequest(kind, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ModelRequests.WithLabelValues(kind, status).Inc()
	m.ModelDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
