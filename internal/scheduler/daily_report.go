package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/internal/usecases/reporting"
)

// DailyReportConfig representa a configuração do agendador do relatório diário
type DailyReportConfig struct {
	CronSchedule string
	LookbackDays int
	Enabled      bool
	Deliver      bool
}

// DailyReportService agenda a execução do relatório e permite disparos manuais
type DailyReportService struct {
	scheduler *gocron.Scheduler
	config    DailyReportConfig
	location  *time.Location
	reporter  reporting.Reporter
	now       func() time.Time

	ctx                 context.Context
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncError       string
}

func NewDailyReportService(reporter reporting.Reporter, appConfig *config.Config) *DailyReportService {
	reportConfig := DailyReportConfig{
		CronSchedule: appConfig.Scheduler.CronSchedule,
		LookbackDays: appConfig.Scheduler.LookbackDays,
		Enabled:      appConfig.Scheduler.Enabled,
		Deliver:      appConfig.Email.Enabled,
	}
	location := appConfig.App.Location()

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reportConfig.CronSchedule,
		"lookback_days": reportConfig.LookbackDays,
		"enabled":       reportConfig.Enabled,
		"deliver":       reportConfig.Deliver,
		"timezone":      location.String(),
	}).Info("Configuração do agendador do relatório carregada")

	return &DailyReportService{
		scheduler: gocron.NewScheduler(location),
		config:    reportConfig,
		location:  location,
		reporter:  reporter,
		now:       time.Now,
		ctx:       context.Background(),
	}
}

// Start inicia o agendador; ele para quando o contexto for cancelado
func (s *DailyReportService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Agendamento do relatório desabilitado por configuração")
		return nil
	}

	s.ctx = ctx
	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do relatório diário")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runReport(s.ctx, s.ScheduledPeriod(), domain.RunOptions{
			Trigger: domain.TriggerScheduled,
			Deliver: s.config.Deliver,
		})
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar relatório diário: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do relatório diário")
		s.scheduler.Stop()
	}()

	return nil
}

// ScheduledPeriod é o dia coberto pela execução agendada: hoje menos LookbackDays, no fuso configurado
func (s *DailyReportService) ScheduledPeriod() domain.Period {
	today := domain.Day(s.now(), s.location)
	return domain.SingleDay(today.AddDate(0, 0, -s.config.LookbackDays))
}

func (s *DailyReportService) runReport(ctx context.Context, period domain.Period, opts domain.RunOptions) {
	s.track(period, opts, func() (*domain.ReportRun, error) {
		return s.reporter.Run(ctx, period, opts)
	})
}

// track executa fn registrando início, fim e erro no status do agendador
func (s *DailyReportService) track(period domain.Period, opts domain.RunOptions, fn func() (*domain.ReportRun, error)) {
	startTime := s.now()
	s.syncMutex.Lock()
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	run, err := fn()

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if err != nil {
		s.lastSyncError = err.Error()
		logrus.WithError(err).WithFields(logrus.Fields{
			"period":  period.String(),
			"trigger": opts.Trigger,
		}).Error("Relatório não foi concluído")
		return
	}

	s.lastSyncError = ""
	s.lastSyncCompletedAt = s.now()
	logrus.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"period":    period.String(),
		"delivered": run.Delivered,
		"duration":  s.lastSyncCompletedAt.Sub(startTime).String(),
	}).Info("Relatório concluído pelo agendador")
}

// TriggerManualSync reserva a execução e a dispara em segundo plano, retornando imediatamente
func (s *DailyReportService) TriggerManualSync(period domain.Period, force bool) error {
	opts := domain.RunOptions{
		Trigger: domain.TriggerManual,
		Deliver: s.config.Deliver,
		Force:   force,
	}

	start, err := s.reporter.TryStart(period, opts)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			logrus.Info("Relatório já em andamento, ignorando solicitação manual")
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"period": period.String(),
		"force":  force,
	}).Info("Iniciando execução manual do relatório")

	ctx := s.ctx
	go s.track(period, opts, func() (*domain.ReportRun, error) {
		return start(ctx)
	})

	return nil
}

// GetStatus retorna o status atual do agendador
func (s *DailyReportService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"deliver":                s.config.Deliver,
		"timezone":               s.location.String(),
		"running":                s.reporter.Running(),
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
	if s.lastSyncError != "" {
		status["last_sync_error"] = s.lastSyncError
	}
	if run := s.reporter.LastRun(); run != nil {
		status["last_run"] = run
	}
	if s.config.Enabled {
		if _, next := s.scheduler.NextRun(); !next.IsZero() {
			status["next_run_at"] = next
		}
	}

	return status
}
