package aggregating

import (
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

// Aggregator define as quatro ferramentas de agregação sobre o dataset de
// métricas. Todas filtram primeiro pelo workspace e depois pelo(s) período(s)
// solicitado(s), com semântica de data de calendário.
type Aggregator interface {
	// GetKPISnapshot soma as métricas solicitadas no período e deriva o ROAS,
	// incluindo as 3 campanhas de maior gasto como breakdown de contribuição
	GetKPISnapshot(workspaceID string, rng domain.DateRange, metrics []string) (domain.ToolResult, error)

	// ComparePeriods computa as mesmas somas de forma independente para dois
	// períodos disjuntos, com até 5 campanhas de maior gasto do período atual
	ComparePeriods(workspaceID string, current, previous domain.DateRange, metrics []string) (domain.ToolResult, error)

	// GetTimeSeries agrupa as linhas por data, soma as métricas solicitadas e
	// anexa o ROAS por ponto. Apenas a granularidade diária é implementada.
	GetTimeSeries(workspaceID string, rng domain.DateRange, granularity string, metrics []string) (domain.ToolResult, error)

	// DetectAnomalies marca as linhas cujo valor da métrica ultrapassa
	// mean + sensitivity*stddev (somente picos; quedas não são detectadas)
	DetectAnomalies(workspaceID string, rng domain.DateRange, metric, granularity, groupBy string, sensitivity float64) (domain.ToolResult, error)
}
