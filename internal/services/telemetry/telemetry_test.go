package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdlog/internal/services/dataloader"
)

func TestRecordImport(t *testing.T) {
	before := value(t, imports.WithLabelValues("success"))
	beforeUnits := value(t, unknownUnitRows)

	RecordImport(&dataloader.ParseReport{
		SkippedNoEmployee: 2,
		UnknownUnits:      map[string]int{"pts": 3},
	}, nil)

	assert.Equal(t, before+1, value(t, imports.WithLabelValues("success")))
	assert.Equal(t, beforeUnits+3, value(t, unknownUnitRows))

	failures := value(t, imports.WithLabelValues("failure"))
	RecordImport(nil, errors.New("boom"))
	assert.Equal(t, failures+1, value(t, imports.WithLabelValues("failure")))
}

func TestSetDatasetRecords(t *testing.T) {
	SetDatasetRecords(42)
	assert.Equal(t, 42.0, value(t, datasetRecords))
}

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}
