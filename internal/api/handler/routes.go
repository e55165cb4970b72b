package handler

import (
	"net/http"

	"github.com/vfg2006/marketing-analyst-api/internal/api/handler/router"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-analyst-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Analyst(service *analyzing.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/workspaces/:id/analyst",
			Method:      http.MethodPost,
			Handler:     RunAnalyst(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/workspaces/:id/analyst/runs",
			Method:      http.MethodGet,
			Handler:     ListAnalysisRuns(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/analyst/tools",
			Method:      http.MethodGet,
			Handler:     ListTools(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Metrics(service aggregating.Aggregator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/workspaces/:id/metrics/kpis",
			Method:      http.MethodGet,
			Handler:     GetKPIs(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/workspaces/:id/metrics/compare",
			Method:      http.MethodGet,
			Handler:     ComparePeriods(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/workspaces/:id/metrics/timeseries",
			Method:      http.MethodGet,
			Handler:     GetTimeSeries(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/workspaces/:id/metrics/anomalies",
			Method:      http.MethodGet,
			Handler:     DetectAnomalies(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrAnalyst()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrAnalyst()},
		},
	}
}
