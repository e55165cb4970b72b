package analyzing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

func validDocument() *domain.FinalResponse {
	headline := "Receita cresceu no período"
	return &domain.FinalResponse{
		Status:    domain.StatusOK,
		Objective: "Avaliar o desempenho da semana",
		Findings: []domain.Finding{
			{Title: "Receita em alta", Detail: "Receita subiu", Impact: "medium", SupportingMetrics: []string{"revenue"}},
		},
		Actions: []domain.Action{
			{Action: "Manter orçamento", Impact: "low", Priority: "low", Rationale: "tendência positiva", SupportingMetrics: []string{"spend"}},
		},
		Evidence: []domain.Evidence{
			{ID: "ev1", Tool: "get_kpis", ParamsSummary: "{}", KeyResults: []string{"metric=revenue value=500", "metric=spend value=150"}},
		},
		DashboardSpec: map[string]any{"tiles": []any{}},
		ExecSummary: &domain.ExecSummary{
			Headline:     &headline,
			WhatChanged:  []string{"Receita subiu"},
			Why:          []string{"Campanha de verão"},
			WhatToDoNext: []string{"Manter orçamento"},
		},
	}
}

func TestParseFinalResponseComDocumentoValido(t *testing.T) {
	raw := `{
		"status": "ok",
		"objective": "Avaliar a semana",
		"findings": [{"title": "t", "detail": "d", "impact": "low", "supporting_metrics": ["spend"]}],
		"actions": [{"action": "a", "impact": "low", "priority": "low", "rationale": "r", "expected_impact": "e", "supporting_metrics": ["spend"]}],
		"evidence": [{"id": "ev1", "tool": "get_kpis", "params_summary": "{}", "key_results": ["metric=spend value=10"]}],
		"dashboard_spec": {},
		"exec_summary": {"headline": "h", "what_changed": [], "why": [], "what_to_do_next": []}
	}`

	doc, err := ParseFinalResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Evidence, 1)
}

func TestParseFinalResponseRemoveCercasDeCodigo(t *testing.T) {
	raw := "```json\n" + `{
		"status": "insufficient_data",
		"objective": "x",
		"findings": [],
		"actions": [],
		"evidence": [],
		"dashboard_spec": {},
		"exec_summary": {"headline": "not enough data to answer", "what_changed": [], "why": [], "what_to_do_next": []}
	}` + "\n```"

	doc, err := ParseFinalResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInsufficientData, doc.Status)
}

func TestParseFinalResponseComTextoInvalido(t *testing.T) {
	_, err := ParseFinalResponse("certamente! aqui está a análise...")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "final response", parseErr.Label)
	assert.Contains(t, err.Error(), "Failed to parse final response")
}

func TestParseFinalResponseRejeitaChaveForaDoContrato(t *testing.T) {
	raw := `{
		"status": "ok",
		"objective": "x",
		"findings": [],
		"actions": [],
		"evidence": [],
		"dashboard_spec": {},
		"exec_summary": {"headline": "h", "what_changed": [], "why": [], "what_to_do_next": []},
		"confidence": 0.9
	}`

	_, err := ParseFinalResponse(raw)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "confidence")
}

func TestValidateFinalResponseFalhaNaPrimeiraClausula(t *testing.T) {
	// Status inválido e objective vazio ao mesmo tempo: o erro reportado deve
	// ser o da primeira cláusula da ordem fixa
	doc := validDocument()
	doc.Status = "maybe"
	doc.Objective = ""

	err := ValidateFinalResponse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestValidateFinalResponseExigeSubChavesDoExecSummary(t *testing.T) {
	doc := validDocument()
	doc.ExecSummary.WhatChanged = nil

	err := ValidateFinalResponse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "what_changed")
}

func TestValidateFinalResponseComStatusOkExigeConteudo(t *testing.T) {
	doc := validDocument()
	doc.Findings = []domain.Finding{}

	err := ValidateFinalResponse(doc)
	require.Error(t, err)

	doc = validDocument()
	doc.Findings[0].SupportingMetrics = nil

	err = ValidateFinalResponse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supporting_metrics")
}

func TestValidateFinalResponseAceitaInsuficienciaExplicada(t *testing.T) {
	headline := "not enough data to answer"
	doc := &domain.FinalResponse{
		Status:        domain.StatusInsufficientData,
		Objective:     "x",
		Findings:      []domain.Finding{},
		Actions:       []domain.Action{},
		Evidence:      []domain.Evidence{},
		DashboardSpec: map[string]any{},
		ExecSummary: &domain.ExecSummary{
			Headline:     &headline,
			WhatChanged:  []string{},
			Why:          []string{},
			WhatToDoNext: []string{},
		},
	}

	// Arrays vazios são permitidos quando o status é insufficient_data
	assert.NoError(t, ValidateFinalResponse(doc))
}

func TestValidateFinalResponseRejeitaInsuficienciaSemExplicacao(t *testing.T) {
	headline := "tudo certo"
	doc := validDocument()
	doc.Status = domain.StatusInsufficientData
	doc.ExecSummary.Headline = &headline
	doc.Findings[0].Detail = "nenhum problema"

	err := ValidateFinalResponse(doc)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
