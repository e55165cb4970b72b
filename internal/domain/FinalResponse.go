package domain

// Status possíveis de uma FinalResponse
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)

// FinalResponse é o documento de recomendação que carrega o contrato do analista.
// Construída a cada invocação do agente, passa pelo validador e pelo binder de
// evidências antes de ser devolvida ao chamador; nunca é mutada depois disso.
type FinalResponse struct {
	Status        string         `json:"status"`
	Objective     string         `json:"objective"`
	Assumptions   []string       `json:"assumptions,omitempty"`
	Findings      []Finding      `json:"findings"`
	Actions       []Action       `json:"actions"`
	Evidence      []Evidence     `json:"evidence"`
	DashboardSpec map[string]any `json:"dashboard_spec"`
	ExecSummary   *ExecSummary   `json:"exec_summary"`
}

// Finding é uma constatação sustentada por métricas computadas na execução
type Finding struct {
	Title             string   `json:"title"`
	Detail            string   `json:"detail"`
	Impact            string   `json:"impact"`
	SupportingMetrics []string `json:"supporting_metrics"`
}

// Action é uma recomendação acionável, com a mesma exigência de métricas de suporte
type Action struct {
	Action            string   `json:"action"`
	Impact            string   `json:"impact"`
	Priority          string   `json:"priority"`
	Rationale         string   `json:"rationale"`
	ExpectedImpact    string   `json:"expected_impact"`
	Risk              string   `json:"risk,omitempty"`
	HowToValidate     string   `json:"how_to_validate,omitempty"`
	SupportingMetrics []string `json:"supporting_metrics"`
}

// ExecSummary é o sumário executivo da resposta. Os campos usam ponteiro/slice
// para distinguir chave ausente de valor vazio na validação do contrato.
type ExecSummary struct {
	Headline     *string  `json:"headline"`
	WhatChanged  []string `json:"what_changed"`
	Why          []string `json:"why"`
	WhatToDoNext []string `json:"what_to_do_next"`
}

// Clone devolve uma cópia profunda da resposta. O binder de evidências trabalha
// sobre a cópia para nunca alterar o documento recebido do chamador.
func (f *FinalResponse) Clone() *FinalResponse {
	if f == nil {
		return nil
	}

	clone := *f

	clone.Assumptions = append([]string(nil), f.Assumptions...)

	clone.Findings = make([]Finding, len(f.Findings))
	for i, finding := range f.Findings {
		finding.SupportingMetrics = append([]string(nil), finding.SupportingMetrics...)
		clone.Findings[i] = finding
	}

	clone.Actions = make([]Action, len(f.Actions))
	for i, action := range f.Actions {
		action.SupportingMetrics = append([]string(nil), action.SupportingMetrics...)
		clone.Actions[i] = action
	}

	clone.Evidence = make([]Evidence, len(f.Evidence))
	for i, ev := range f.Evidence {
		ev.KeyResults = append([]string(nil), ev.KeyResults...)
		clone.Evidence[i] = ev
	}

	if f.DashboardSpec != nil {
		clone.DashboardSpec = make(map[string]any, len(f.DashboardSpec))
		for k, v := range f.DashboardSpec {
			clone.DashboardSpec[k] = v
		}
	}

	if f.ExecSummary != nil {
		summary := *f.ExecSummary
		if f.ExecSummary.Headline != nil {
			headline := *f.ExecSummary.Headline
			summary.Headline = &headline
		}
		summary.WhatChanged = append([]string(nil), f.ExecSummary.WhatChanged...)
		summary.Why = append([]string(nil), f.ExecSummary.Why...)
		summary.WhatToDoNext = append([]string(nil), f.ExecSummary.WhatToDoNext...)
		clone.ExecSummary = &summary
	}

	return &clone
}
