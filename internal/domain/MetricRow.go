package domain

import (
	"time"

	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// Nomes das métricas conhecidas pelas ferramentas de agregação
const (
	MetricSpend       = "spend"
	MetricRevenue     = "revenue"
	MetricConversions = "conversions"
	MetricClicks      = "clicks"
	MetricImpressions = "impressions"
	MetricROAS        = "roas"
)

// DefaultMetrics é a lista de métricas usada quando o chamador não informa nenhuma
var DefaultMetrics = []string{MetricSpend, MetricRevenue, MetricConversions}

// MetricRow representa uma observação diária de campanha dentro de um workspace.
// As linhas são carregadas uma única vez no início do processo e tratadas como
// somente leitura durante todo o ciclo de vida da aplicação.
type MetricRow struct {
	WorkspaceID string    `json:"workspace_id"`
	Date        time.Time `json:"date"`
	Campaign    string    `json:"campaign"`
	Platform    string    `json:"platform"`
	Spend       float64   `json:"spend"`
	Revenue     float64   `json:"revenue"`
	Conversions float64   `json:"conversions"`
	Clicks      float64   `json:"clicks"`
	Impressions float64   `json:"impressions"`
}

// ROAS calcula o retorno sobre o investimento em anúncios da linha.
// Retorna 0 quando o gasto é 0 para nunca propagar NaN/Infinity.
func (m *MetricRow) ROAS() float64 {
	return utils.SafeRatio(m.Revenue, m.Spend)
}

// ValueOf retorna o valor da métrica informada nesta linha.
// Métricas desconhecidas retornam 0.
func (m *MetricRow) ValueOf(metric string) float64 {
	switch metric {
	case MetricSpend:
		return m.Spend
	case MetricRevenue:
		return m.Revenue
	case MetricConversions:
		return m.Conversions
	case MetricClicks:
		return m.Clicks
	case MetricImpressions:
		return m.Impressions
	case MetricROAS:
		return m.ROAS()
	default:
		return 0
	}
}

// IsKnownMetric informa se o nome de métrica é reconhecido pelas ferramentas
func IsKnownMetric(metric string) bool {
	switch metric {
	case MetricSpend, MetricRevenue, MetricConversions, MetricClicks, MetricImpressions, MetricROAS:
		return true
	}
	return false
}
