package domain

import "time"

// Origem da execução de uma análise
const (
	AnalysisTriggerAPI       = "api"
	AnalysisTriggerScheduler = "scheduler"
)

// AnalystRequest é a entrada de uma execução do analista, já resolvida pelo handler
type AnalystRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Question    string    `json:"question"`
	DateRange   DateRange `json:"date_range"`
	CompareMode string    `json:"compare_mode,omitempty"`
	PrimaryKPI  string    `json:"primary_kpi,omitempty"`
}

// Validate verifica os campos obrigatórios da requisição
func (r *AnalystRequest) Validate() error {
	if r.WorkspaceID == "" {
		return ErrMissingWorkspaceID
	}
	return r.DateRange.Validate()
}

// AnalysisRun é o registro persistido de uma execução do analista
type AnalysisRun struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	Question    string         `json:"question"`
	Status      string         `json:"status"`
	TriggeredBy string         `json:"triggered_by"`
	Response    *FinalResponse `json:"response"`
	CreatedAt   time.Time      `json:"created_at"`
}
