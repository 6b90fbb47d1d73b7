package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/csfa-report/internal/config"
)

const (
	runModeOnce  = "once"
	runModeServe = "serve"
)

var cfg *config.Config

func main() {
	configureLogger()

	rootCmd := &cobra.Command{
		Use:           "csfa-report",
		Short:         "Relatório diário de visitas e ligações da força de vendas (CSFA)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig()
		},
		// Sem subcomando, RUN_MODE decide entre uma execução única e o modo serviço
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.App.RunMode == runModeServe {
				return runServe(cmd, args)
			}
			return runOnce(cmd, runFlags{})
		},
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(checkTokensCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("Execução encerrada com erro")
		stop()
		os.Exit(1)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func loadConfig() error {
	var err error
	cfg, err = config.NewConfig()
	if err != nil {
		return err
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Debugf("Nível de log configurado para: %s", logLevel)

	return nil
}
