package reporting

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/infrastructure/integrator/csfa"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/internal/usecases/aggregating"
	"github.com/vfg2006/csfa-report/internal/usecases/normalizing"
	"github.com/vfg2006/csfa-report/pkg/log"
	"github.com/vfg2006/csfa-report/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Políticas para registros que não passam na normalização
const (
	SchemaPolicySkip  = "skip"
	SchemaPolicyAbort = "abort"
)

// Service orquestra uma execução: busca concorrente dos feeds, normalização, agregação e
// entrega aos destinos. Apenas uma execução roda por vez.
type Service struct {
	integrator   csfa.CSFAIntegrator
	normalizer   normalizing.RecordNormalizer
	aggregator   aggregating.ReportAggregator
	writer       ReportWriter
	notifier     Notifier
	ledger       RunLedger
	optional     map[domain.FeedKind]bool
	schemaPolicy string
	runTimeout   time.Duration
	now          func() time.Time

	runMutex sync.Mutex
	running  bool
	lastRun  *domain.ReportRun
}

// NewService cria o orquestrador; destinos e histórico são opcionais (WithDelivery, WithLedger)
func NewService(
	cfg config.Report,
	integrator csfa.CSFAIntegrator,
	normalizer normalizing.RecordNormalizer,
	aggregator aggregating.ReportAggregator,
) *Service {
	optional := make(map[domain.FeedKind]bool)
	for _, name := range cfg.OptionalFeeds {
		feed, err := domain.ParseFeedKind(name)
		if err != nil {
			logrus.WithError(err).Warn("Feed opcional ignorado na configuração")
			continue
		}
		optional[feed] = true
	}

	policy := strings.ToLower(strings.TrimSpace(cfg.SchemaPolicy))
	if policy != SchemaPolicyAbort {
		policy = SchemaPolicySkip
	}

	return &Service{
		integrator:   integrator,
		normalizer:   normalizer,
		aggregator:   aggregator,
		optional:     optional,
		schemaPolicy: policy,
		runTimeout:   cfg.RunTimeout,
		now:          time.Now,
	}
}

// WithDelivery habilita a gravação da planilha e o envio do e-mail
func (s *Service) WithDelivery(writer ReportWriter, notifier Notifier) *Service {
	s.writer = writer
	s.notifier = notifier
	return s
}

// WithLedger habilita o histórico de execuções
func (s *Service) WithLedger(ledger RunLedger) *Service {
	s.ledger = ledger
	return s
}

func (s *Service) Generate(ctx context.Context, period domain.Period) (*domain.Report, error) {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	raws, skipped, err := s.fetchAll(ctx, period)
	if err != nil {
		return nil, err
	}

	fragments := make([]domain.Fragment, 0)
	for i, feed := range domain.AllFeeds {
		if raws[i] == nil {
			continue
		}
		frags, violations := s.normalizer.NormalizeAll(feed, raws[i])
		for _, v := range violations {
			log.ForContext(ctx).WithFields(log.Fields{
				"feed":  feed,
				"index": v.Index,
				"field": v.Field,
			}).Warn(v.Error())
		}
		if len(violations) > 0 && s.schemaPolicy == SchemaPolicyAbort {
			return nil, errors.Wrapf(violations[0], "%d registro(s) inválido(s) no feed %s", len(violations), feed)
		}
		fragments = append(fragments, frags...)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "execução cancelada antes da agregação")
	}

	report, err := s.aggregator.Aggregate(period, fragments, skipped)
	if err != nil {
		return nil, err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"period":                 period.String(),
		"report_representatives": len(report.Summary()),
		"report_interactions":    report.InteractionCount(),
		"report_total":           report.Totals().TotalValue.String(),
		"report_skipped_feeds":   skipped,
	}).Info("Relatório gerado")

	return report, nil
}

// fetchAll busca os quatro feeds em paralelo. Cada goroutine escreve apenas na sua posição;
// um feed opcional com falha transitória ou resposta malformada é marcado como ignorado.
func (s *Service) fetchAll(ctx context.Context, period domain.Period) ([][]domain.RawRecord, []domain.FeedKind, error) {
	raws := make([][]domain.RawRecord, len(domain.AllFeeds))
	skippedAt := make([]bool, len(domain.AllFeeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range domain.AllFeeds {
		g.Go(func() error {
			records, err := s.integrator.Fetch(gctx, feed, period)
			if err != nil {
				if s.skippable(feed, err) {
					log.ForContext(ctx).WithFields(log.Fields{
						"feed":  feed,
						"error": err.Error(),
					}).Warn("Feed opcional ignorado após falha")
					skippedAt[i] = true
					return nil
				}
				return errors.Wrapf(err, "falha ao buscar feed %s", feed)
			}
			if records == nil {
				records = []domain.RawRecord{}
			}
			raws[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var skipped []domain.FeedKind
	for i, feed := range domain.AllFeeds {
		if skippedAt[i] {
			skipped = append(skipped, feed)
		}
	}
	return raws, skipped, nil
}

// skippable indica se a falha do feed pode ser tolerada; autenticação e cancelamento nunca são
func (s *Service) skippable(feed domain.FeedKind, err error) bool {
	if !s.optional[feed] {
		return false
	}
	if errors.Is(err, domain.ErrAuthentication) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, domain.ErrTransientFetch) || errors.Is(err, domain.ErrMalformedResponse)
}

func (s *Service) Run(ctx context.Context, period domain.Period, opts domain.RunOptions) (*domain.ReportRun, error) {
	if !s.claim() {
		return nil, domain.ErrRunInProgress
	}
	defer s.release()

	return s.run(ctx, period, opts)
}

// TryStart reserva a vaga de execução na hora e devolve a função que executa o fluxo.
// A reserva só é liberada quando a função devolvida termina.
func (s *Service) TryStart(period domain.Period, opts domain.RunOptions) (func(ctx context.Context) (*domain.ReportRun, error), error) {
	if !s.claim() {
		return nil, domain.ErrRunInProgress
	}

	return func(ctx context.Context) (*domain.ReportRun, error) {
		defer s.release()
		return s.run(ctx, period, opts)
	}, nil
}

func (s *Service) claim() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) release() {
	s.runMutex.Lock()
	s.running = false
	s.runMutex.Unlock()
}

func (s *Service) run(ctx context.Context, period domain.Period, opts domain.RunOptions) (*domain.ReportRun, error) {
	if opts.Trigger == "" {
		opts.Trigger = domain.TriggerManual
	}

	if opts.Deliver && !opts.Force && s.ledger != nil {
		delivered, err := s.ledger.Delivered(ctx, period)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao consultar histórico de execuções")
		}
		if delivered {
			return nil, errors.Wrapf(domain.ErrAlreadyDelivered, "período %s", period)
		}
	}

	runID, err := utils.GenerateRunID()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao gerar id da execução")
	}

	run := &domain.ReportRun{
		ID:          runID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Trigger:     opts.Trigger,
		Status:      domain.RunStatusRunning,
		StartedAt:   s.now(),
	}
	s.setLastRun(run)

	ctx = log.WithRunID(ctx, runID)
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"period":         period.String(),
		"report_trigger": opts.Trigger,
		"report_deliver": opts.Deliver,
	})
	logger.Info("Iniciando execução do relatório")

	if s.ledger != nil {
		if err := s.ledger.Create(ctx, run); err != nil {
			logger.WithError(err).Warn("Não foi possível registrar início da execução")
		}
	}

	err = s.execute(ctx, period, opts, run)
	s.finish(ctx, run, err)
	s.setLastRun(run)

	if err != nil {
		logger.WithError(err).Error("Execução do relatório falhou")
		return run, err
	}

	logger.WithFields(log.Fields{
		"duration_ms":         run.Duration().Milliseconds(),
		"report_interactions": run.Interactions,
		"report_delivered":    run.Delivered,
	}).Info("Execução do relatório concluída")

	return run, nil
}

// execute gera o relatório e, quando pedido, grava a planilha e envia o e-mail
func (s *Service) execute(ctx context.Context, period domain.Period, opts domain.RunOptions, run *domain.ReportRun) error {
	report, err := s.Generate(ctx, period)
	if err != nil {
		return err
	}

	totals := report.Totals()
	run.Representatives = totals.Representatives
	run.Interactions = report.InteractionCount()
	run.TotalValue = totals.TotalValue
	for _, feed := range report.SkippedFeeds() {
		run.SkippedFeeds = append(run.SkippedFeeds, feed.String())
	}

	if !opts.Deliver {
		return nil
	}
	if s.writer == nil || s.notifier == nil {
		return errors.New("entrega solicitada sem planilha ou e-mail configurados")
	}

	path, err := s.writer.Write(ctx, report)
	if err != nil {
		return errors.Wrap(err, "erro ao gravar planilha")
	}
	run.Artifact = path

	if err := s.notifier.Send(ctx, report, path); err != nil {
		return errors.Wrap(err, "erro ao enviar e-mail")
	}
	run.Delivered = true

	return nil
}

func (s *Service) finish(ctx context.Context, run *domain.ReportRun, runErr error) {
	finishedAt := s.now()
	run.FinishedAt = &finishedAt
	run.Status = domain.RunStatusSucceeded
	if runErr != nil {
		msg := runErr.Error()
		run.Status = domain.RunStatusFailed
		run.Error = &msg
	}

	if s.ledger == nil {
		return
	}
	// A execução pode ter sido cancelada; o registro final ainda deve ser gravado
	if err := s.ledger.Finish(context.WithoutCancel(ctx), run); err != nil {
		log.ForContext(ctx).WithError(err).Warn("Não foi possível registrar fim da execução")
	}
}

// setLastRun guarda uma cópia; a execução em andamento continua sendo alterada
func (s *Service) setLastRun(run *domain.ReportRun) {
	snapshot := *run
	s.runMutex.Lock()
	s.lastRun = &snapshot
	s.runMutex.Unlock()
}

// Running indica se há uma execução em andamento
func (s *Service) Running() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	return s.running
}

func (s *Service) LastRun() *domain.ReportRun {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}
