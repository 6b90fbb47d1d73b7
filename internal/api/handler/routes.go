package handler

import (
	"net/http"

	"github.com/vfg2006/csfa-report/internal/api/handler/router"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/pkg/middleware"
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

func Reports(services ReportServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reports/run",
			Method:      http.MethodPost,
			Handler:     RunReport(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.RequireScope(domain.ScopeReportRun)},
		},
		{
			Path:        "/v1/reports/status",
			Method:      http.MethodGet,
			Handler:     GetReportStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.RequireScope(domain.ScopeReportRead)},
		},
		{
			Path:        "/v1/reports/preview",
			Method:      http.MethodGet,
			Handler:     PreviewReport(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.RequireScope(domain.ScopeReportRead)},
		},
		{
			Path:        "/v1/reports/runs",
			Method:      http.MethodGet,
			Handler:     ListReportRuns(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.RequireScope(domain.ScopeReportRead)},
		},
	}
}
