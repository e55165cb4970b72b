package analyzing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

func TestNewEvidenceComMapaDeMetricas(t *testing.T) {
	result := domain.ToolResult{
		"metrics": map[string]float64{"spend": 570, "revenue": 1000.5},
	}

	evidence := newEvidence("get_kpis", "{}", result)

	assert.Equal(t, "get_kpis", evidence.Tool)
	assert.NotEmpty(t, evidence.ID)
	assert.Equal(t, []string{"metric=revenue value=1000.5", "metric=spend value=570"}, evidence.KeyResults)
}

func TestNewEvidenceLimitaOsResultadosChave(t *testing.T) {
	result := domain.ToolResult{
		"metrics": map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6},
	}

	evidence := newEvidence("get_kpis", "{}", result)

	require.Len(t, evidence.KeyResults, 4)
	assert.Equal(t, "metric=a value=1", evidence.KeyResults[0])
}

func TestNewEvidenceUsaOPeriodoAtualComoReserva(t *testing.T) {
	result := domain.ToolResult{
		"current":  map[string]float64{"revenue": 500},
		"previous": map[string]float64{"revenue": 0},
	}

	evidence := newEvidence("compare_periods", "{}", result)

	assert.Equal(t, []string{"metric=revenue value=500"}, evidence.KeyResults)
}

func TestNewEvidenceColetaEscalaresDoNivelSuperior(t *testing.T) {
	result := domain.ToolResult{
		"metric":    "spend",
		"mean":      28.0,
		"threshold": 82.0,
		"anomalies": []domain.AnomalyRecord{},
	}

	evidence := newEvidence("detect_anomalies", "{}", result)

	assert.Contains(t, evidence.KeyResults, "metric=mean value=28")
	assert.Contains(t, evidence.KeyResults, "metric=threshold value=82")
}
