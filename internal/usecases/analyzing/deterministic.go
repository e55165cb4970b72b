package analyzing

import (
	"context"
	"fmt"
	"strings"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// DeterministicAgent produz uma análise completa sem nenhuma chamada a modelo:
// invoca as quatro ferramentas do catálogo em ordem fixa e monta uma
// FinalResponse de formato fixo (2 findings, 1 action, 1 evidência) cujas
// métricas citadas vêm todas da própria evidência, de modo que a checagem de
// evidências nunca a rebaixa. É o fallback de última instância do pipeline.
type DeterministicAgent struct {
	registry *Registry
}

func NewDeterministicAgent(registry *Registry) *DeterministicAgent {
	return &DeterministicAgent{registry: registry}
}

func (a *DeterministicAgent) Analyze(_ context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rangeArgs := map[string]any{
		"start": req.DateRange.Start.Format("2006-01-02"),
		"end":   req.DateRange.End.Format("2006-01-02"),
	}
	previous := req.DateRange.PreviousPeriod()
	previousArgs := map[string]any{
		"start": previous.Start.Format("2006-01-02"),
		"end":   previous.End.Format("2006-01-02"),
	}

	kpis, err := a.registry.Dispatch(req.WorkspaceID, string(ToolGetKPIs), map[string]any{
		"dateRange": rangeArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular KPIs do período: %w", err)
	}

	comparison, err := a.registry.Dispatch(req.WorkspaceID, string(ToolComparePeriods), map[string]any{
		"currentRange":  rangeArgs,
		"previousRange": previousArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao comparar períodos: %w", err)
	}

	if _, err = a.registry.Dispatch(req.WorkspaceID, string(ToolGetTimeSeries), map[string]any{
		"dateRange": rangeArgs,
	}); err != nil {
		return nil, fmt.Errorf("erro ao montar série temporal: %w", err)
	}

	anomalies, err := a.registry.Dispatch(req.WorkspaceID, string(ToolDetectAnomalies), map[string]any{
		"dateRange": rangeArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao detectar anomalias: %w", err)
	}

	// Uma única evidência (o snapshot de KPIs) respalda todas as métricas
	// citadas abaixo: spend, revenue, conversions e roas
	evidence := newEvidence(
		string(ToolGetKPIs),
		paramsSummary(map[string]any{"dateRange": rangeArgs}),
		kpis,
	)

	spend := metricValue(kpis, domain.MetricSpend)
	revenue := metricValue(kpis, domain.MetricRevenue)
	roas := metricValue(kpis, domain.MetricROAS)
	previousRevenue := nestedMetricValue(comparison, "previous", domain.MetricRevenue)

	headline := fmt.Sprintf(
		"Investimento de %.2f gerou receita de %.2f (ROAS %.2f) em %s",
		spend, revenue, roas, req.DateRange.String(),
	)

	findings := []domain.Finding{
		{
			Title:             "Desempenho consolidado do período",
			Detail:            fmt.Sprintf("O workspace investiu %.2f e gerou %.2f de receita no período %s, com ROAS de %.2f.", spend, revenue, req.DateRange.String(), roas),
			Impact:            "medium",
			SupportingMetrics: []string{domain.MetricSpend, domain.MetricRevenue, domain.MetricROAS},
		},
		{
			Title:             "Comparativo com o período anterior",
			Detail:            fmt.Sprintf("A receita atual de %.2f compara-se a %.2f no período anterior de mesma duração (%s); %d dia(s) com pico de gasto acima do limiar estatístico.", revenue, previousRevenue, previous.String(), anomalyCount(anomalies)),
			Impact:            "medium",
			SupportingMetrics: []string{domain.MetricRevenue, domain.MetricConversions},
		},
	}

	actions := []domain.Action{
		{
			Action:            "Realocar orçamento para as campanhas de maior ROAS",
			Impact:            "medium",
			Priority:          "medium",
			Rationale:         fmt.Sprintf("Com ROAS agregado de %.2f, concentrar o gasto nas campanhas mais eficientes tende a elevar a receita sem aumentar o investimento total.", roas),
			ExpectedImpact:    "Aumento do ROAS agregado no próximo período de mesma duração",
			HowToValidate:     "Repetir a comparação de períodos após a realocação e verificar a variação de roas e revenue",
			SupportingMetrics: []string{domain.MetricROAS, domain.MetricSpend},
		},
	}

	objective := strings.TrimSpace(req.Question)
	if objective == "" {
		objective = fmt.Sprintf("Análise de desempenho do workspace %s no período %s", req.WorkspaceID, req.DateRange.String())
	}

	doc := &domain.FinalResponse{
		Status:      domain.StatusOK,
		Objective:   objective,
		Assumptions: []string{"Análise determinística sobre as métricas padrão, sem interpretação por modelo de linguagem"},
		Findings:    findings,
		Actions:     actions,
		Evidence:    []domain.Evidence{evidence},
		DashboardSpec: map[string]any{
			"tiles": []any{
				map[string]any{"type": "kpi", "metrics": domain.DefaultMetrics, "dateRange": rangeArgs},
				map[string]any{"type": "timeseries", "metric": domain.MetricRevenue, "granularity": "daily"},
				map[string]any{"type": "comparison", "currentRange": rangeArgs, "previousRange": previousArgs},
			},
		},
		ExecSummary: &domain.ExecSummary{
			Headline:     &headline,
			WhatChanged:  []string{fmt.Sprintf("Receita de %.2f contra %.2f no período anterior", revenue, previousRevenue)},
			Why:          []string{fmt.Sprintf("Investimento de %.2f com ROAS de %.2f no período analisado", spend, roas)},
			WhatToDoNext: []string{"Realocar orçamento para as campanhas de maior ROAS"},
		},
	}

	return BindEvidence(doc), nil
}

// metricValue lê um valor do mapa "metrics" de um resultado de ferramenta
func metricValue(result domain.ToolResult, name string) float64 {
	return nestedMetricValue(result, "metrics", name)
}

func nestedMetricValue(result domain.ToolResult, key, name string) float64 {
	switch m := result[key].(type) {
	case map[string]float64:
		return utils.RoundWithTwoDecimalPlace(m[name])
	case map[string]any:
		if v, ok := m[name].(float64); ok {
			return utils.RoundWithTwoDecimalPlace(v)
		}
	}
	return 0
}

func anomalyCount(result domain.ToolResult) int {
	switch v := result["anomalies"].(type) {
	case []domain.AnomalyRecord:
		return len(v)
	case []any:
		return len(v)
	}
	return 0
}
