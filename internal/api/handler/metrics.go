package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
	"github.com/vfg2006/marketing-analyst-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-analyst-api/pkg/log"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// GetKPIs devolve o snapshot de KPIs do workspace no período informado
func GetKPIs(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		rng, ok := queryRange(w, r, "start_date", "end_date")
		if !ok {
			return
		}

		logger.WithFields(log.Fields{
			"workspace_id": workspaceID,
			"start_date":   rng.Start.Format(time.DateOnly),
			"end_date":     rng.End.Format(time.DateOnly),
		}).Debug("metrics: fetching KPI snapshot")

		result, err := service.GetKPISnapshot(workspaceID, rng, queryMetrics(r))
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("metrics: failed to get KPI snapshot")

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeToolResult(w, logger, workspaceID, result)
	})
}

// ComparePeriods compara as métricas do período informado com o período
// anterior; sem previous_start_date/previous_end_date, usa a janela
// imediatamente anterior de mesma duração
func ComparePeriods(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		current, ok := queryRange(w, r, "start_date", "end_date")
		if !ok {
			return
		}

		previous := current.PreviousPeriod()
		if r.URL.Query().Get("previous_start_date") != "" || r.URL.Query().Get("previous_end_date") != "" {
			previous, ok = queryRange(w, r, "previous_start_date", "previous_end_date")
			if !ok {
				return
			}
		}

		result, err := service.ComparePeriods(workspaceID, current, previous, queryMetrics(r))
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("metrics: failed to compare periods")

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeToolResult(w, logger, workspaceID, result)
	})
}

// GetTimeSeries devolve a série temporal diária das métricas do workspace
func GetTimeSeries(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		rng, ok := queryRange(w, r, "start_date", "end_date")
		if !ok {
			return
		}

		result, err := service.GetTimeSeries(workspaceID, rng, r.URL.Query().Get("granularity"), queryMetrics(r))
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("metrics: failed to get time series")

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeToolResult(w, logger, workspaceID, result)
	})
}

// DetectAnomalies marca os dias cujo valor da métrica ultrapassa o limiar
// estatístico configurado pela sensibilidade
func DetectAnomalies(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		workspaceID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if !workspaceAllowed(r, workspaceID) {
			apiErrors.WriteError(w, apiErrors.ErrWorkspaceForbidden, "Você não tem acesso a este workspace", nil)
			return
		}

		rng, ok := queryRange(w, r, "start_date", "end_date")
		if !ok {
			return
		}

		metric := r.URL.Query().Get("metric")
		if metric == "" {
			metric = domain.MetricSpend
		}

		sensitivity := aggregating.DefaultSensitivity
		if raw := r.URL.Query().Get("sensitivity"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "sensitivity deve ser um número positivo", nil)
				return
			}
			sensitivity = parsed
		}

		result, err := service.DetectAnomalies(
			workspaceID,
			rng,
			metric,
			r.URL.Query().Get("granularity"),
			r.URL.Query().Get("group_by"),
			sensitivity,
		)
		if err != nil {
			logger.WithFields(log.Fields{
				"workspace_id": workspaceID,
				"error":        err.Error(),
			}).Error("metrics: failed to detect anomalies")

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeToolResult(w, logger, workspaceID, result)
	})
}

func queryRange(w http.ResponseWriter, r *http.Request, startKey, endKey string) (domain.DateRange, bool) {
	start, err := utils.ParseDate(r.URL.Query().Get(startKey))
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, startKey+" inválido: "+err.Error(), nil)
		return domain.DateRange{}, false
	}

	end, err := utils.ParseDate(r.URL.Query().Get(endKey))
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, endKey+" inválido: "+err.Error(), nil)
		return domain.DateRange{}, false
	}

	rng := domain.DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
		return domain.DateRange{}, false
	}

	return rng, true
}

func queryMetrics(r *http.Request) []string {
	raw := r.URL.Query().Get("metrics")
	if raw == "" {
		return domain.DefaultMetrics
	}

	metrics := make([]string, 0)
	for _, metric := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(metric); trimmed != "" {
			metrics = append(metrics, trimmed)
		}
	}

	if len(metrics) == 0 {
		return domain.DefaultMetrics
	}

	return metrics
}

func writeToolResult(w http.ResponseWriter, logger log.Logger, workspaceID string, result domain.ToolResult) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.WithFields(log.Fields{
			"workspace_id": workspaceID,
			"error":        err.Error(),
		}).Error("metrics: failed to encode response")

		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
