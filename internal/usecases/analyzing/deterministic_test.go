package analyzing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

func sampleRequest() *domain.AnalystRequest {
	return &domain.AnalystRequest{
		WorkspaceID: "ws1",
		Question:    "Como foi o desempenho da primeira semana de janeiro?",
		DateRange: domain.DateRange{
			Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestDeterministicAgentProduzFormatoFixo(t *testing.T) {
	agent := NewDeterministicAgent(newTestRegistry())

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Findings, 2)
	assert.Len(t, doc.Actions, 1)
	assert.Len(t, doc.Evidence, 1)

	assert.Equal(t, string(ToolGetKPIs), doc.Evidence[0].Tool)
	require.NotNil(t, doc.ExecSummary)
	require.NotNil(t, doc.ExecSummary.Headline)
	assert.NotEmpty(t, *doc.ExecSummary.Headline)
}

func TestDeterministicAgentPassaNaValidacaoENaoERebaixado(t *testing.T) {
	agent := NewDeterministicAgent(newTestRegistry())

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	require.NoError(t, ValidateFinalResponse(doc))

	// Toda métrica citada está respaldada pela evidência: religar não muda nada
	rebound := BindEvidence(doc)
	assert.Equal(t, domain.StatusOK, rebound.Status)
	assert.Equal(t, doc.Findings, rebound.Findings)
}

func TestDeterministicAgentComWorkspaceSemDados(t *testing.T) {
	agent := NewDeterministicAgent(newTestRegistry())

	req := sampleRequest()
	req.WorkspaceID = "ws-sem-dados"

	// Mesmo sem nenhuma linha o formato é o mesmo, com métricas zeradas
	doc, err := agent.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Findings, 2)
	assert.Len(t, doc.Actions, 1)
	assert.Len(t, doc.Evidence, 1)
}

func TestDeterministicAgentComRequisicaoInvalida(t *testing.T) {
	agent := NewDeterministicAgent(newTestRegistry())

	req := sampleRequest()
	req.WorkspaceID = ""

	_, err := agent.Analyze(context.Background(), req)
	assert.Error(t, err)
}

func TestDeterministicAgentUsaAPerguntaComoObjetivo(t *testing.T) {
	agent := NewDeterministicAgent(newTestRegistry())

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Como foi o desempenho da primeira semana de janeiro?", doc.Objective)

	req := sampleRequest()
	req.Question = "   "
	doc, err = agent.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, doc.Objective, "ws1")
}
