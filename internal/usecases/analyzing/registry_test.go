package analyzing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/dataset"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
)

func sampleRows() []*domain.MetricRow {
	day := func(value string) time.Time {
		date, _ := time.Parse("2006-01-02", value)
		return date
	}

	return []*domain.MetricRow{
		{WorkspaceID: "ws1", Date: day("2024-01-02"), Campaign: "verao", Platform: "meta", Spend: 100, Revenue: 400, Conversions: 10},
		{WorkspaceID: "ws1", Date: day("2024-01-05"), Campaign: "inverno", Platform: "google", Spend: 50, Revenue: 100, Conversions: 4},
		{WorkspaceID: "ws1", Date: day("2024-01-06"), Campaign: "verao", Platform: "meta", Spend: 420, Revenue: 500, Conversions: 12},
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(aggregating.NewService(dataset.NewFromRows(sampleRows())))
}

func rangeArgs(start, end string) map[string]any {
	return map[string]any{"start": start, "end": end}
}

func TestDispatchComFerramentaDesconhecida(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Dispatch("ws1", "summon_insights", nil)

	var unknownErr *UnknownToolError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "summon_insights", unknownErr.Name)
}

func TestDispatchSemWorkspace(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Dispatch("", string(ToolGetKPIs), map[string]any{
		"dateRange": rangeArgs("2024-01-01", "2024-01-07"),
	})

	var invalidErr *InvalidArgumentsError
	require.ErrorAs(t, err, &invalidErr)
}

func TestDispatchSemPeriodoObrigatorio(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Dispatch("ws1", string(ToolGetKPIs), map[string]any{})

	var invalidErr *InvalidArgumentsError
	require.ErrorAs(t, err, &invalidErr)
	assert.Contains(t, err.Error(), "dateRange")
}

func TestDispatchComPeriodoInvertido(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Dispatch("ws1", string(ToolGetKPIs), map[string]any{
		"dateRange": rangeArgs("2024-01-07", "2024-01-01"),
	})

	var invalidErr *InvalidArgumentsError
	require.ErrorAs(t, err, &invalidErr)
}

func TestDispatchAplicaMetricasPadrao(t *testing.T) {
	registry := newTestRegistry()

	result, err := registry.Dispatch("ws1", string(ToolGetKPIs), map[string]any{
		"dateRange": rangeArgs("2024-01-01", "2024-01-07"),
	})
	require.NoError(t, err)

	metrics := result["metrics"].(map[string]float64)
	assert.Equal(t, 570.0, metrics["spend"])
	assert.Equal(t, 1000.0, metrics["revenue"])
	assert.Equal(t, 26.0, metrics["conversions"])
	assert.Equal(t, 1.75, metrics["roas"])
}

func TestDispatchConverteArgumentosDoModelo(t *testing.T) {
	registry := newTestRegistry()

	// Argumentos como chegam do JSON do modelo: []any e float64
	result, err := registry.Dispatch("ws1", string(ToolGetKPIs), map[string]any{
		"dateRange": rangeArgs("2024-01-01", "2024-01-07"),
		"metrics":   []any{"revenue"},
	})
	require.NoError(t, err)

	metrics := result["metrics"].(map[string]float64)
	assert.Equal(t, 1000.0, metrics["revenue"])
	_, hasSpend := metrics["spend"]
	assert.False(t, hasSpend)

	anomalies, err := registry.Dispatch("ws1", string(ToolDetectAnomalies), map[string]any{
		"dateRange":   rangeArgs("2024-01-01", "2024-01-07"),
		"sensitivity": 1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "spend", anomalies["metric"])
	assert.Equal(t, 1.0, anomalies["sensitivity"])
}

func TestSpecsEmOrdemEstavel(t *testing.T) {
	registry := newTestRegistry()

	specs := registry.Specs()
	require.Len(t, specs, 4)

	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}

	assert.Equal(t, []string{"compare_periods", "detect_anomalies", "get_kpis", "get_timeseries"}, names)
}
