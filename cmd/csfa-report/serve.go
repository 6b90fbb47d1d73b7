package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/csfa-report/internal/api"
	"github.com/vfg2006/csfa-report/internal/api/handler"
	"github.com/vfg2006/csfa-report/internal/scheduler"
	"github.com/vfg2006/csfa-report/internal/usecases/authenticating"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia o agendador do relatório diário e a API de operação",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	dailyReport := scheduler.NewDailyReportService(p.reporter, cfg)
	if err := dailyReport.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do relatório diário")
		return err
	}
	logrus.Info("Agendador do relatório diário iniciado com sucesso")

	services := handler.ReportServices{
		Scheduler: dailyReport,
		Reporter:  p.reporter,
		Location:  cfg.App.Location(),
	}
	// Sem banco o histórico fica nulo e a rota /runs responde 503
	if p.history != nil {
		services.History = p.history
	}

	server, err := api.New(cfg, authenticating.NewService(cfg.Auth), services)
	if err != nil {
		return err
	}

	return server.Run(ctx)
}
