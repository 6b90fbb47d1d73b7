package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/infrastructure/database/postgres"
	"github.com/vfg2006/csfa-report/infrastructure/integrator/csfa"
	"github.com/vfg2006/csfa-report/infrastructure/integrator/csfa/csfaclient"
	"github.com/vfg2006/csfa-report/infrastructure/mailer"
	"github.com/vfg2006/csfa-report/infrastructure/migration"
	"github.com/vfg2006/csfa-report/infrastructure/repository"
	"github.com/vfg2006/csfa-report/infrastructure/spreadsheet"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/usecases/aggregating"
	"github.com/vfg2006/csfa-report/internal/usecases/normalizing"
	"github.com/vfg2006/csfa-report/internal/usecases/reporting"
)

// pipeline reúne o orquestrador e os recursos que precisam ser liberados no fim
type pipeline struct {
	reporter *reporting.Service
	writer   *spreadsheet.XLSXWriter
	history  repository.ReportRunRepository
	conn     *postgres.Connection
}

func (p *pipeline) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// buildPipeline monta cliente, normalizador, agregador e destinos a partir da configuração
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	tokens, err := cfg.CSFA.Tokens()
	if err != nil {
		return nil, errors.Wrap(err, "tokens do CSFA inválidos, rode check-tokens")
	}

	doer := csfaclient.NewRetryingDoer(csfaclient.NewHTTPClient(cfg.CSFA), cfg.CSFA)
	client := csfaclient.NewClient(cfg.CSFA, tokens, doer)
	integrator := csfa.New(cfg.CSFA, client)

	writer := spreadsheet.NewXLSXWriter(cfg.Report)
	reporter := reporting.NewService(
		cfg.Report,
		integrator,
		normalizing.New(cfg.App.Location()),
		aggregating.New(),
	).WithDelivery(writer, mailer.NewSMTPNotifier(cfg.Email, cfg.Report))

	p := &pipeline{
		reporter: reporter,
		writer:   writer,
	}

	if !cfg.Database.Enabled {
		logrus.Info("Histórico de execuções desabilitado (DATABASE_ENABLED=false)")
		return p, nil
	}

	conn, err := pgconn(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := migration.Apply(ctx, conn); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "erro ao aplicar migrações")
	}

	p.conn = conn
	p.history = repository.NewReportRunRepository(conn)
	reporter.WithLedger(p.history)

	return p, nil
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn, nil
}
