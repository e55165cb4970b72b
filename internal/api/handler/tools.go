package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst-api/pkg/log"
)

// ListTools expõe o catálogo de ferramentas do analista, com os schemas de
// parâmetros usados tanto pela seleção guiada por modelo quanto pela API
func ListTools(service *analyzing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"tools": service.Tools(),
		}); err != nil {
			logger.WithField("error", err.Error()).Error("tools: failed to encode catalog")

			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
