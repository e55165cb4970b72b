package analyzing

import (
	"fmt"
	"strings"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

func buildPlanPrompt(req *domain.AnalystRequest, specs []ToolSpec) string {
	var b strings.Builder

	b.WriteString("Você é um analista de marketing digital. Monte um plano curto para responder à pergunta abaixo usando as ferramentas disponíveis.\n\n")
	fmt.Fprintf(&b, "Pergunta: %s\n", req.Question)
	fmt.Fprintf(&b, "Período: %s\n", req.DateRange.String())
	if req.PrimaryKPI != "" {
		fmt.Fprintf(&b, "KPI principal: %s\n", req.PrimaryKPI)
	}

	b.WriteString("\nFerramentas disponíveis:\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Description)
	}

	fmt.Fprintf(&b, "\nResponda SOMENTE com um array JSON de no máximo %d passos, cada passo uma string curta. Sem texto adicional.\n", maxPlanSteps)

	return b.String()
}

func buildToolPrompt(req *domain.AnalystRequest, plan []string, evidence []domain.Evidence, summaries []string, specs []ToolSpec) string {
	var b strings.Builder

	b.WriteString("Você está executando um plano de análise de marketing. Escolha a próxima ferramenta ou sinalize que terminou.\n\n")
	fmt.Fprintf(&b, "Pergunta: %s\n", req.Question)
	fmt.Fprintf(&b, "Período padrão: %s\n", req.DateRange.String())

	b.WriteString("\nPlano:\n")
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\nFerramentas (name e parameters em JSON Schema):\n")
	if specsJSON, err := json.Marshal(specs); err == nil {
		b.Write(specsJSON)
		b.WriteString("\n")
	}

	if len(evidence) > 0 {
		b.WriteString("\nEvidências acumuladas:\n")
		if evidenceJSON, err := json.Marshal(evidence); err == nil {
			b.Write(evidenceJSON)
			b.WriteString("\n")
		}
	}

	if len(summaries) > 0 {
		b.WriteString("\nResumo dos resultados anteriores:\n")
		for _, summary := range summaries {
			fmt.Fprintf(&b, "- %s\n", summary)
		}
	}

	b.WriteString("\nResponda SOMENTE com JSON no formato {\"next\": {\"name\": \"...\", \"arguments\": {...}}, \"done\": false}. ")
	b.WriteString("Use \"done\": true quando as evidências forem suficientes. Datas sempre no formato YYYY-MM-DD. Sem texto adicional.\n")

	return b.String()
}

func buildSynthesisPrompt(req *domain.AnalystRequest, plan []string, evidence []domain.Evidence, summaries []string) string {
	var b strings.Builder

	b.WriteString("Produza o documento final da análise de marketing como JSON.\n\n")
	fmt.Fprintf(&b, "Pergunta: %s\n", req.Question)
	fmt.Fprintf(&b, "Período: %s\n", req.DateRange.String())

	b.WriteString("\nPlano executado:\n")
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\nEvidências:\n")
	if evidenceJSON, err := json.Marshal(evidence); err == nil {
		b.Write(evidenceJSON)
		b.WriteString("\n")
	}

	b.WriteString("\nResumo dos resultados:\n")
	for _, summary := range summaries {
		fmt.Fprintf(&b, "- %s\n", summary)
	}

	b.WriteString(`
O documento deve ter EXATAMENTE estas chaves: status, objective, assumptions (opcional), findings, actions, evidence, dashboard_spec, exec_summary.
- status: "ok" ou "insufficient_data"
- findings: [{title, detail, impact, supporting_metrics}]
- actions: [{action, impact, priority, rationale, expected_impact, risk, how_to_validate, supporting_metrics}]
- evidence: copie o array de evidências recebido acima, sem alterações
- exec_summary: {headline, what_changed, why, what_to_do_next}
Toda métrica em supporting_metrics DEVE aparecer em algum key_results das evidências.
Responda SOMENTE com o JSON. Sem cercas de código, sem texto adicional.
`)

	return b.String()
}

func buildRepairPrompt(validationErr error, raw string, evidence []domain.Evidence) string {
	var b strings.Builder

	b.WriteString("O documento JSON abaixo violou o contrato estrutural da resposta final.\n\n")
	fmt.Fprintf(&b, "Erro de validação: %s\n", validationErr.Error())

	b.WriteString("\nDocumento rejeitado:\n")
	b.WriteString(raw)
	b.WriteString("\n")

	b.WriteString("\nEvidências da execução:\n")
	if evidenceJSON, err := json.Marshal(evidence); err == nil {
		b.Write(evidenceJSON)
		b.WriteString("\n")
	}

	b.WriteString("\nCorrija o documento e responda SOMENTE com o JSON corrigido. Sem texto adicional.\n")

	return b.String()
}
