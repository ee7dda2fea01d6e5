// Package telemetry exposes Prometheus counters for imports and persistence.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crowdlog/internal/services/dataloader"
)

const namespace = "crowdlog"

var (
	imports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "File imports by result.",
	}, []string{"result"})

	skippedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_rows_total",
		Help:      "Data rows dropped during import by reason.",
	}, []string{"reason"})

	unknownUnitRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unknown_unit_rows_total",
		Help:      "Rows whose unit was not recognised and were read as hours.",
	})

	datasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_records",
		Help:      "Records in the current dataset.",
	})

	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Snapshot reads and writes that failed.",
	}, []string{"op"})
)

// RecordImport counts one import attempt and its row-level outcome
func RecordImport(report *dataloader.ParseReport, err error) {
	if err != nil {
		imports.WithLabelValues("failure").Inc()
		return
	}
	imports.WithLabelValues("success").Inc()
	if report == nil {
		return
	}

	skippedRows.WithLabelValues("no_employee").Add(float64(report.SkippedNoEmployee))
	skippedRows.WithLabelValues("unknown_type").Add(float64(report.SkippedUnknownType))
	for _, n := range report.UnknownUnits {
		unknownUnitRows.Add(float64(n))
	}
}

// SetDatasetRecords reports the size of the current dataset
func SetDatasetRecords(n int) {
	datasetRecords.Set(float64(n))
}

// RecordPersistenceFailure counts a failed snapshot operation
func RecordPersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// Handler serves the metrics in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
