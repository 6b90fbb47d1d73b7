package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/internal/usecases/reporting"
	"github.com/vfg2006/csfa-report/pkg/apiErrors"
	"github.com/vfg2006/csfa-report/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRunsLimit = 100

// ReportScheduler dispara execuções em segundo plano e informa o estado do agendador
type ReportScheduler interface {
	TriggerManualSync(period domain.Period, force bool) error
	GetStatus() map[string]any
}

// RunHistory lista as execuções registradas
type RunHistory interface {
	List(ctx context.Context, limit int) ([]*domain.ReportRun, error)
}

// ReportServices reúne as dependências das rotas de relatório; History é opcional
type ReportServices struct {
	Scheduler ReportScheduler
	Reporter  reporting.Reporter
	History   RunHistory
	Location  *time.Location
	Now       func() time.Time
}

func (s ReportServices) period(r *http.Request) (domain.Period, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	q := r.URL.Query()
	return domain.ParsePeriod(q.Get("date"), q.Get("from"), q.Get("to"), now(), s.Location)
}

// RunReport dispara uma execução completa; a resposta volta antes do término
func RunReport(services ReportServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		period, err := services.period(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidPeriod, err.Error(), nil)
			return
		}

		force := false
		if raw := r.URL.Query().Get("force"); raw != "" {
			force, err = strconv.ParseBool(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro force deve ser booleano", nil)
				return
			}
		}

		if err := services.Scheduler.TriggerManualSync(period, force); err != nil {
			logger.WithError(err).Warn("Execução manual recusada")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Execução do relatório iniciada",
			"period":  period,
			"force":   force,
		})
	}
}

// GetReportStatus retorna o estado do agendador e da última execução
func GetReportStatus(services ReportServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(services.Scheduler.GetStatus())
	}
}

// PreviewReport gera o relatório de forma síncrona, sem gravar planilha nem enviar e-mail
func PreviewReport(services ReportServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := services.period(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidPeriod, err.Error(), nil)
			return
		}

		report, err := services.Reporter.Generate(r.Context(), period)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("period", period.String()).
				Error("Erro ao gerar prévia do relatório")
			apiErrors.WriteFromError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar resposta")
		}
	}
}

// ListReportRuns lista as execuções mais recentes registradas no banco
func ListReportRuns(services ReportServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if services.History == nil {
			apiErrors.WriteError(w, apiErrors.ErrCommunication, "Histórico de execuções desabilitado", nil)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxRunsLimit {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit deve estar entre 1 e 100", nil)
				return
			}
			limit = n
		}

		runs, err := services.History.List(r.Context(), limit)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao listar execuções")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar execuções", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"runs": runs})
	}
}
