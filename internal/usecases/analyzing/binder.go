package analyzing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

// bindingFailureTitle identifica o finding sintético anexado quando o
// documento cita métricas sem respaldo nas evidências
const bindingFailureTitle = "Evidence binding failed"

// metricNamePattern extrai o nome da métrica de um key_result "metric=<name> value=<v>"
var metricNamePattern = regexp.MustCompile(`(?i)metric=([a-z0-9_.]+)`)

// BindEvidence é a última linha de defesa contra alucinação do modelo: uma
// checagem mecânica (somente operações de string e conjunto, sem novas
// chamadas ao modelo) de que toda métrica citada em findings e actions foi de
// fato computada por alguma ferramenta na mesma execução.
//
// A função é pura: retorna um novo documento e nunca altera o recebido.
// Também é idempotente: aplicá-la duas vezes produz o mesmo resultado.
func BindEvidence(doc *domain.FinalResponse) *domain.FinalResponse {
	if doc == nil {
		return nil
	}

	bound := doc.Clone()

	known := evidenceMetricSet(bound.Evidence)

	var lacking []string
	var missing []string

	for _, finding := range bound.Findings {
		// O finding sintético de uma passada anterior não entra na checagem
		if finding.Title == bindingFailureTitle {
			continue
		}

		if len(finding.SupportingMetrics) == 0 {
			lacking = append(lacking, finding.Title)
			continue
		}
		missing = append(missing, unsupportedMetrics(finding.SupportingMetrics, known)...)
	}

	for _, action := range bound.Actions {
		if len(action.SupportingMetrics) == 0 {
			lacking = append(lacking, action.Action)
			continue
		}
		missing = append(missing, unsupportedMetrics(action.SupportingMetrics, known)...)
	}

	if len(lacking) == 0 && len(missing) == 0 {
		return bound
	}

	bound.Status = domain.StatusInsufficientData

	// Se o finding sintético já existe, o documento já foi rebaixado por esta
	// mesma checagem; anexar outro quebraria a idempotência
	for _, finding := range bound.Findings {
		if finding.Title == bindingFailureTitle {
			return bound
		}
	}

	bound.Findings = append(bound.Findings, buildFailureFinding(lacking, missing))

	return bound
}

func evidenceMetricSet(evidence []domain.Evidence) map[string]bool {
	known := make(map[string]bool)
	for _, entry := range evidence {
		for _, keyResult := range entry.KeyResults {
			for _, match := range metricNamePattern.FindAllStringSubmatch(keyResult, -1) {
				known[strings.ToLower(match[1])] = true
			}
		}
	}
	return known
}

func unsupportedMetrics(cited []string, known map[string]bool) []string {
	var missing []string
	for _, metric := range cited {
		if !known[strings.ToLower(metric)] {
			missing = append(missing, strings.ToLower(metric))
		}
	}
	return missing
}

func buildFailureFinding(lacking, missing []string) domain.Finding {
	var details []string
	if len(lacking) > 0 {
		details = append(details, fmt.Sprintf("itens sem supporting_metrics: %s", strings.Join(lacking, "; ")))
	}
	if len(missing) > 0 {
		details = append(details, fmt.Sprintf("métricas citadas sem evidência correspondente: %s", strings.Join(dedupe(missing), ", ")))
	}

	// O próprio finding sintético precisa satisfazer a pós-condição de
	// supporting_metrics não vazio
	supporting := dedupe(missing)
	if len(supporting) == 0 {
		supporting = []string{"evidence_binding"}
	}

	return domain.Finding{
		Title:             bindingFailureTitle,
		Detail:            strings.Join(details, ". "),
		Impact:            "high",
		SupportingMetrics: supporting,
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			result = append(result, value)
		}
	}
	return result
}
