package analyzing

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// allowedTopLevelKeys é a allow-list fixa de chaves da FinalResponse
var allowedTopLevelKeys = map[string]bool{
	"status":         true,
	"objective":      true,
	"assumptions":    true,
	"findings":       true,
	"actions":        true,
	"evidence":       true,
	"dashboard_spec": true,
	"exec_summary":   true,
}

// Termos aceitos como explicação textual de dados insuficientes
var insufficientDataTerms = []string{"insufficient", "not enough", "missing"}

// stripCodeFences remove cercas de código Markdown que alguns modelos colocam
// em volta do JSON solicitado
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Descarta o rótulo da cerca (ex.: "json")
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

// ParseFinalResponse desserializa a saída do modelo em uma FinalResponse
// tipada e valida o contrato estrutural em um único passo: ou o resultado é
// um documento tipado válido, ou um erro tipado (*ParseError / *ValidationError).
func ParseFinalResponse(raw string) (*domain.FinalResponse, error) {
	text := stripCodeFences(raw)

	var asMap map[string]any
	if err := json.Unmarshal([]byte(text), &asMap); err != nil {
		return nil, &ParseError{Label: "final response", Reason: err.Error()}
	}
	if asMap == nil {
		return nil, validationErrorf("a resposta final deve ser um objeto não nulo")
	}

	// Allow-list de chaves: qualquer chave fora do contrato é violação
	for key := range asMap {
		if !allowedTopLevelKeys[key] {
			return nil, validationErrorf("chave de nível superior não permitida: %q", key)
		}
	}

	var doc domain.FinalResponse
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseError{Label: "final response", Reason: err.Error()}
	}

	if err := ValidateFinalResponse(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// ValidateFinalResponse aplica o contrato estrutural na ordem fixa de
// cláusulas, falhando na primeira violação com mensagem que identifica a
// cláusula exata. Não acumula múltiplos erros.
func ValidateFinalResponse(doc *domain.FinalResponse) error {
	if doc == nil {
		return validationErrorf("a resposta final deve ser um objeto não nulo")
	}

	if doc.Status != domain.StatusOK && doc.Status != domain.StatusInsufficientData {
		return validationErrorf("status deve ser %q ou %q, recebido %q", domain.StatusOK, domain.StatusInsufficientData, doc.Status)
	}

	if strings.TrimSpace(doc.Objective) == "" {
		return validationErrorf("objective deve ser uma string não vazia")
	}

	if doc.DashboardSpec == nil {
		return validationErrorf("dashboard_spec deve ser um objeto não nulo")
	}

	if doc.ExecSummary == nil {
		return validationErrorf("exec_summary deve ser um objeto não nulo")
	}

	// A presença das quatro sub-chaves basta; arrays vazios são aceitos
	if doc.ExecSummary.Headline == nil {
		return validationErrorf("exec_summary não contém a chave obrigatória: headline")
	}
	if doc.ExecSummary.WhatChanged == nil {
		return validationErrorf("exec_summary não contém a chave obrigatória: what_changed")
	}
	if doc.ExecSummary.Why == nil {
		return validationErrorf("exec_summary não contém a chave obrigatória: why")
	}
	if doc.ExecSummary.WhatToDoNext == nil {
		return validationErrorf("exec_summary não contém a chave obrigatória: what_to_do_next")
	}

	if doc.Findings == nil {
		return validationErrorf("findings deve ser um array")
	}
	if doc.Actions == nil {
		return validationErrorf("actions deve ser um array")
	}
	if doc.Evidence == nil {
		return validationErrorf("evidence deve ser um array")
	}

	if doc.Status == domain.StatusOK {
		if len(doc.Findings) == 0 || len(doc.Actions) == 0 || len(doc.Evidence) == 0 {
			return validationErrorf("com status %q, findings, actions e evidence devem ser não vazios", domain.StatusOK)
		}

		for _, finding := range doc.Findings {
			if len(finding.SupportingMetrics) == 0 {
				return validationErrorf("finding %q não possui supporting_metrics", finding.Title)
			}
		}
		for _, action := range doc.Actions {
			if len(action.SupportingMetrics) == 0 {
				return validationErrorf("action %q não possui supporting_metrics", action.Action)
			}
		}

		return nil
	}

	// status=insufficient_data: o headline ou o detail de algum finding precisa
	// explicar textualmente a insuficiência
	if explainsShortfall(*doc.ExecSummary.Headline) {
		return nil
	}
	for _, finding := range doc.Findings {
		if explainsShortfall(finding.Detail) {
			return nil
		}
	}

	return validationErrorf(
		"com status %q, o headline ou o detail de algum finding deve explicar a insuficiência (termos aceitos: %s)",
		domain.StatusInsufficientData,
		strings.Join(insufficientDataTerms, ", "),
	)
}

func explainsShortfall(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range insufficientDataTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
