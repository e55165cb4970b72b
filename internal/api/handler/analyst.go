package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-analyst-api/pkg/log"
	"github.com/vfg2006/marketing-analyst-api/pkg/middleware"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// AnalystRequestBody é o corpo da requisição de análise; as datas chegam como
// strings YYYY-MM-DD
type AnalystRequestBody struct {
	Question  string `json:"question"`
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date_range"`
	CompareMode string `json:"compare_mode,omitempty"`
	PrimaryKPI  string `json:"primary_kpi,omitempty"`
}

// FailureEnvelope é a resposta genérica quando a análise não pôde ser
// concluída; nunca vaza stack trace para o cliente
type FailureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RunAnalyst executa o analista para o workspace da URL e devolve a
// FinalResponse validada e com evidências vinculadas, sem reempacotamento
func RunAnalyst(service *analyzing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		var body AnalystRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Warn("analyst: invalid request body")

			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		start, err := utils.ParseDate(body.DateRange.Start)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "date_range.start inválido: "+err.Error(), nil)
			return
		}

		end, err := utils.ParseDate(body.DateRange.End)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "date_range.end inválido: "+err.Error(), nil)
			return
		}

		req := &domain.AnalystRequest{
			WorkspaceID: workspaceID,
			Question:    body.Question,
			DateRange:   domain.DateRange{Start: start, End: end},
			CompareMode: body.CompareMode,
			PrimaryKPI:  body.PrimaryKPI,
		}

		if err := req.Validate(); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		logger.WithFields(log.Fields{
			"workspace_id": workspaceID,
		}).Info("analyst: running analysis")

		response, err := service.Analyze(r.Context(), req)
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("analyst: analysis failed")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(FailureEnvelope{
				Success: false,
				Message: "Não foi possível concluir a análise",
			})
			return
		}

		logger.WithFields(log.Fields{
			"workspace_id": workspaceID,
			"status":       response.Status,
		}).Info("analyst: analysis completed")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("analyst: failed to encode response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// ListAnalysisRuns devolve o histórico de execuções do workspace
func ListAnalysisRuns(service *analyzing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		runs, err := service.History(workspaceID, limit)
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("analyst: failed to list analysis runs")

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("analyst: failed to encode runs response")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// workspaceAllowed verifica se o usuário autenticado pode consultar o
// workspace; administradores têm acesso irrestrito
func workspaceAllowed(r *http.Request, workspaceID string) bool {
	if workspaceID == "" {
		return false
	}

	claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
	if !ok {
		return false
	}

	if claims.UserRoleID == middleware.RoleAdmin {
		return true
	}

	return claims.HasWorkspace(workspaceID)
}
