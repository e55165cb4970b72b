package aggregating

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// DefaultSensitivity é o multiplicador de desvio padrão usado quando o
// chamador não informa a sensibilidade da detecção de anomalias
const DefaultSensitivity = 1.5

// Service implementa Aggregator sobre o repositório de métricas somente leitura
type Service struct {
	metricRepo repository.MetricRowRepository
}

func NewService(metricRepo repository.MetricRowRepository) Aggregator {
	return &Service{
		metricRepo: metricRepo,
	}
}

// GetKPISnapshot soma cada métrica solicitada nas linhas filtradas e deriva o
// ROAS com guarda de divisão por zero
func (s *Service) GetKPISnapshot(workspaceID string, rng domain.DateRange, metrics []string) (domain.ToolResult, error) {
	rows, err := s.filterRows(workspaceID, rng)
	if err != nil {
		return nil, err
	}

	if len(metrics) == 0 {
		metrics = domain.DefaultMetrics
	}

	sums := sumMetrics(rows, metrics)

	// ROAS é sempre derivado das somas brutas, nunca da média dos ROAS diários
	sums[domain.MetricROAS] = utils.RoundWithTwoDecimalPlace(
		utils.SafeRatio(sumMetric(rows, domain.MetricRevenue), sumMetric(rows, domain.MetricSpend)),
	)

	return domain.ToolResult{
		"metrics":       sums,
		"top_campaigns": topCampaigns(rows, 3),
	}, nil
}

// ComparePeriods computa as somas de forma independente para os dois períodos.
// Variação percentual é responsabilidade do chamador, que deve aplicar a mesma
// guarda de denominador zero.
func (s *Service) ComparePeriods(workspaceID string, current, previous domain.DateRange, metrics []string) (domain.ToolResult, error) {
	currentRows, err := s.filterRows(workspaceID, current)
	if err != nil {
		return nil, err
	}

	previousRows, err := s.filterRows(workspaceID, previous)
	if err != nil {
		return nil, err
	}

	if len(metrics) == 0 {
		metrics = domain.DefaultMetrics
	}

	return domain.ToolResult{
		"current":       sumMetrics(currentRows, metrics),
		"previous":      sumMetrics(previousRows, metrics),
		"top_campaigns": topCampaigns(currentRows, 5),
	}, nil
}

// GetTimeSeries agrupa por data e soma as métricas solicitadas por ponto.
// A granularidade é aceita mas apenas o agrupamento diário é implementado.
func (s *Service) GetTimeSeries(workspaceID string, rng domain.DateRange, granularity string, metrics []string) (domain.ToolResult, error) {
	rows, err := s.filterRows(workspaceID, rng)
	if err != nil {
		return nil, err
	}

	if len(metrics) == 0 {
		metrics = domain.DefaultMetrics
	}

	if granularity != "" && granularity != "daily" {
		logrus.WithField("granularity", granularity).Debug("Granularidade não suportada na série temporal, usando diária")
	}

	type dayAccumulator struct {
		sums    map[string]float64
		spend   float64
		revenue float64
	}

	byDate := make(map[string]*dayAccumulator)
	for _, row := range rows {
		date := row.Date.Format("2006-01-02")
		acc, ok := byDate[date]
		if !ok {
			acc = &dayAccumulator{sums: make(map[string]float64)}
			byDate[date] = acc
		}

		for _, metric := range metrics {
			acc.sums[metric] += row.ValueOf(metric)
		}
		acc.spend += row.Spend
		acc.revenue += row.Revenue
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	series := make([]domain.TimeSeriesPoint, 0, len(dates))
	for _, date := range dates {
		acc := byDate[date]
		point := domain.TimeSeriesPoint{
			Date:    date,
			Metrics: acc.sums,
		}
		point.Metrics[domain.MetricROAS] = utils.RoundWithTwoDecimalPlace(utils.SafeRatio(acc.revenue, acc.spend))
		series = append(series, point)
	}

	return domain.ToolResult{
		"granularity": "daily",
		"series":      series,
	}, nil
}

// DetectAnomalies calcula média e desvio padrão populacional da métrica nas
// linhas filtradas e marca toda linha estritamente acima do limiar
func (s *Service) DetectAnomalies(workspaceID string, rng domain.DateRange, metric, granularity, groupBy string, sensitivity float64) (domain.ToolResult, error) {
	rows, err := s.filterRows(workspaceID, rng)
	if err != nil {
		return nil, err
	}

	if metric == "" {
		metric = domain.MetricSpend
	}
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}

	anomalies := make([]domain.AnomalyRecord, 0)

	// Caso degenerado: sem linhas não há média nem desvio, retorna lista vazia
	if len(rows) == 0 {
		return domain.ToolResult{
			"metric":      metric,
			"sensitivity": sensitivity,
			"mean":        0.0,
			"std_dev":     0.0,
			"threshold":   0.0,
			"anomalies":   anomalies,
		}, nil
	}

	var sum float64
	for _, row := range rows {
		sum += row.ValueOf(metric)
	}
	mean := sum / float64(len(rows))

	var variance float64
	for _, row := range rows {
		diff := row.ValueOf(metric) - mean
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(len(rows)))

	threshold := mean + sensitivity*stdDev

	for _, row := range rows {
		value := row.ValueOf(metric)
		if value > threshold {
			anomalies = append(anomalies, domain.AnomalyRecord{
				Date:      row.Date.Format("2006-01-02"),
				Campaign:  row.Campaign,
				Metric:    metric,
				Value:     value,
				Threshold: utils.RoundWithTwoDecimalPlace(threshold),
			})
		}
	}

	return domain.ToolResult{
		"metric":      metric,
		"sensitivity": sensitivity,
		"mean":        utils.RoundWithTwoDecimalPlace(mean),
		"std_dev":     utils.RoundWithTwoDecimalPlace(stdDev),
		"threshold":   utils.RoundWithTwoDecimalPlace(threshold),
		"anomalies":   anomalies,
	}, nil
}

func (s *Service) filterRows(workspaceID string, rng domain.DateRange) ([]*domain.MetricRow, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.metricRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domain.MetricRow, 0, len(rows))
	for _, row := range rows {
		if rng.Contains(row.Date) {
			filtered = append(filtered, row)
		}
	}

	return filtered, nil
}

func sumMetric(rows []*domain.MetricRow, metric string) float64 {
	var sum float64
	for _, row := range rows {
		sum += row.ValueOf(metric)
	}
	return sum
}

func sumMetrics(rows []*domain.MetricRow, metrics []string) map[string]float64 {
	sums := make(map[string]float64, len(metrics))
	for _, metric := range metrics {
		if metric == domain.MetricROAS {
			// ROAS é uma razão, somá-lo linha a linha não faz sentido
			sums[metric] = utils.RoundWithTwoDecimalPlace(
				utils.SafeRatio(sumMetric(rows, domain.MetricRevenue), sumMetric(rows, domain.MetricSpend)),
			)
			continue
		}
		sums[metric] = sumMetric(rows, metric)
	}
	return sums
}

// topCampaigns agrupa pelo par (campanha, plataforma), soma e ordena por gasto
// decrescente, limitando ao tamanho solicitado. Valores monetários saem
// arredondados por serem dado de apresentação.
func topCampaigns(rows []*domain.MetricRow, limit int) []domain.CampaignContribution {
	type key struct {
		campaign string
		platform string
	}

	grouped := make(map[key]*domain.CampaignContribution)
	order := make([]key, 0)
	for _, row := range rows {
		k := key{campaign: row.Campaign, platform: row.Platform}
		entry, ok := grouped[k]
		if !ok {
			entry = &domain.CampaignContribution{Campaign: row.Campaign, Platform: row.Platform}
			grouped[k] = entry
			order = append(order, k)
		}
		entry.Spend += row.Spend
		entry.Revenue += row.Revenue
		entry.Conversions += row.Conversions
	}

	contributions := make([]domain.CampaignContribution, 0, len(order))
	for _, k := range order {
		entry := grouped[k]
		entry.Spend = utils.RoundWithTwoDecimalPlace(entry.Spend)
		entry.Revenue = utils.RoundWithTwoDecimalPlace(entry.Revenue)
		contributions = append(contributions, *entry)
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Spend > contributions[j].Spend
	})

	if len(contributions) > limit {
		contributions = contributions[:limit]
	}

	return contributions
}
