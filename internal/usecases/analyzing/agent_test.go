package analyzing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing/mocks"
	"go.uber.org/mock/gomock"
)

const planResponse = `["obter o snapshot de KPIs", "comparar com o período anterior"]`

const selectGetKPIs = `{
	"next": {
		"name": "get_kpis",
		"arguments": {"dateRange": {"start": "2024-01-01", "end": "2024-01-07"}}
	},
	"done": false
}`

const selectComparePeriods = `{
	"next": {
		"name": "compare_periods",
		"arguments": {
			"currentRange": {"start": "2024-01-01", "end": "2024-01-07"},
			"previousRange": {"start": "2023-12-25", "end": "2023-12-31"}
		}
	},
	"done": false
}`

const selectDone = `{"done": true}`

const selectUnknownTool = `{
	"next": {"name": "invent_insights", "arguments": {}},
	"done": false
}`

const validSynthesis = `{
	"status": "ok",
	"objective": "Avaliar o desempenho da primeira semana de janeiro",
	"findings": [
		{"title": "Gasto concentrado", "detail": "O gasto somou 570 no período", "impact": "medium", "supporting_metrics": ["spend"]}
	],
	"actions": [
		{"action": "Manter o investimento atual", "impact": "low", "priority": "low", "rationale": "receita estável", "expected_impact": "manutenção do ROAS", "supporting_metrics": ["revenue"]}
	],
	"evidence": [
		{"id": "ev1", "tool": "get_kpis", "params_summary": "{}", "key_results": ["metric=spend value=570", "metric=revenue value=1000"]}
	],
	"dashboard_spec": {"tiles": []},
	"exec_summary": {"headline": "Semana estável", "what_changed": ["nada relevante"], "why": ["gasto constante"], "what_to_do_next": ["manter investimento"]}
}`

const invalidSynthesis = `{
	"status": "ok",
	"objective": "x",
	"findings": [],
	"actions": [],
	"evidence": [],
	"dashboard_spec": {},
	"exec_summary": {"headline": "h", "what_changed": [], "why": [], "what_to_do_next": []},
	"confidence": 0.9
}`

// queueCompleter devolve cada resposta da fila em ordem, uma por chamada
func queueCompleter(t *testing.T, responses []string) *mocks.MockCompleter {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	calls := 0
	completer.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string) (string, error) {
			require.Less(t, calls, len(responses), "mais chamadas ao modelo do que o esperado")
			response := responses[calls]
			calls++
			return response, nil
		},
	).Times(len(responses))

	return completer
}

func TestModelAgentComFluxoCompleto(t *testing.T) {
	completer := queueCompleter(t, []string{
		planResponse,
		selectGetKPIs,
		selectComparePeriods,
		selectDone,
		validSynthesis,
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, doc.Status)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, []string{"spend"}, doc.Findings[0].SupportingMetrics)
}

func TestModelAgentComPlanoInvalido(t *testing.T) {
	completer := queueCompleter(t, []string{
		"não consigo montar um plano para isso",
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	_, err := agent.Analyze(context.Background(), sampleRequest())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "plan", parseErr.Label)
}

func TestModelAgentComSelecaoInvalida(t *testing.T) {
	completer := queueCompleter(t, []string{
		planResponse,
		"vou usar a ferramenta get_kpis",
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	_, err := agent.Analyze(context.Background(), sampleRequest())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "tool selection", parseErr.Label)
}

func TestModelAgentIgnoraFerramentaForaDoCatalogo(t *testing.T) {
	// O modelo insiste em uma ferramenta inexistente em todas as iterações:
	// o loop esgota o limite sem derrubar a execução e ainda sintetiza
	responses := []string{planResponse}
	for i := 0; i < 8; i++ {
		responses = append(responses, selectUnknownTool)
	}
	responses = append(responses, validSynthesis)

	completer := queueCompleter(t, responses)

	agent := NewModelAgent(newTestRegistry(), completer)

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, doc.Status)
}

func TestModelAgentNaoEncerraSemColetaMinima(t *testing.T) {
	// done antes de 2 invocações não encerra o loop; o agente segue coletando
	completer := queueCompleter(t, []string{
		planResponse,
		selectDone,
		selectGetKPIs,
		selectComparePeriods,
		selectDone,
		validSynthesis,
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, doc.Status)
}

func TestModelAgentReparaSinteseInvalida(t *testing.T) {
	completer := queueCompleter(t, []string{
		planResponse,
		selectGetKPIs,
		selectComparePeriods,
		selectDone,
		invalidSynthesis,
		validSynthesis,
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, doc.Status)
}

func TestModelAgentPropagaFalhaDoReparo(t *testing.T) {
	completer := queueCompleter(t, []string{
		planResponse,
		selectGetKPIs,
		selectComparePeriods,
		selectDone,
		invalidSynthesis,
		invalidSynthesis,
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	_, err := agent.Analyze(context.Background(), sampleRequest())

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestModelAgentReligaEvidenciaAposSintese(t *testing.T) {
	// A síntese cita uma métrica que a evidência não respalda: o documento
	// final sai rebaixado com o finding sintético
	unsupported := `{
		"status": "ok",
		"objective": "x",
		"findings": [
			{"title": "CTR em queda", "detail": "d", "impact": "high", "supporting_metrics": ["ctr"]}
		],
		"actions": [
			{"action": "Revisar criativos", "impact": "medium", "priority": "medium", "rationale": "r", "expected_impact": "e", "supporting_metrics": ["spend"]}
		],
		"evidence": [
			{"id": "ev1", "tool": "get_kpis", "params_summary": "{}", "key_results": ["metric=spend value=570"]}
		],
		"dashboard_spec": {},
		"exec_summary": {"headline": "h", "what_changed": [], "why": [], "what_to_do_next": []}
	}`

	completer := queueCompleter(t, []string{
		planResponse,
		selectGetKPIs,
		selectComparePeriods,
		selectDone,
		unsupported,
	})

	agent := NewModelAgent(newTestRegistry(), completer)

	doc, err := agent.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInsufficientData, doc.Status)
	require.Len(t, doc.Findings, 2)
	assert.Equal(t, "Evidence binding failed", doc.Findings[1].Title)
}
