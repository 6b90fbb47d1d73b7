package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/pkg/utils"
)

type runFlags struct {
	date    string
	from    string
	to      string
	noEmail bool
	dryRun  bool
	force   bool
}

func runCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Gera o relatório de um dia ou intervalo e envia por e-mail",
		Long: `Gera o relatório do período informado. Sem datas, usa ORDER_DATE/ORDER_DATE_RANGE
ou, na falta delas, o dia anterior no fuso configurado.

Exemplos:
  csfa-report run
  csfa-report run --date 2024-03-05
  csfa-report run --from 2024-03-01 --to 2024-03-05 --no-email
  csfa-report run --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.date, "date", "", "dia do relatório (2006-01-02)")
	cmd.Flags().StringVar(&flags.from, "from", "", "início do intervalo (2006-01-02)")
	cmd.Flags().StringVar(&flags.to, "to", "", "fim do intervalo (2006-01-02)")
	cmd.Flags().BoolVar(&flags.noEmail, "no-email", false, "grava a planilha sem enviar e-mail")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "imprime o relatório em JSON sem gravar nem enviar")
	cmd.Flags().BoolVar(&flags.force, "force", false, "reenvia mesmo que o período já tenha sido entregue")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("date", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")

	return cmd
}

// resolvePeriod prioriza as flags e cai para as datas fixas da configuração
func resolvePeriod(flags runFlags, report config.Report, now time.Time, loc *time.Location) (domain.Period, error) {
	date, from, to := flags.date, flags.from, flags.to
	if date == "" && from == "" && to == "" {
		date = report.Date
		if date == "" {
			var err error
			if from, to, err = utils.SplitDateRange(report.DateRange); err != nil {
				return domain.Period{}, fmt.Errorf("%w: ORDER_DATE_RANGE: %v", domain.ErrInvalidPeriod, err)
			}
		}
	}
	return domain.ParsePeriod(date, from, to, now, loc)
}

func runOnce(cmd *cobra.Command, flags runFlags) error {
	ctx := cmd.Context()

	period, err := resolvePeriod(flags, cfg.Report, time.Now(), cfg.App.Location())
	if err != nil {
		return err
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	logger := logrus.WithField("period", period.String())

	if flags.dryRun {
		report, err := p.reporter.Generate(ctx, period)
		if err != nil {
			return err
		}
		out, err := utils.PrettyJson(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	if flags.noEmail || !cfg.Email.Enabled {
		report, err := p.reporter.Generate(ctx, period)
		if err != nil {
			return err
		}
		path, err := p.writer.Write(ctx, report)
		if err != nil {
			return err
		}
		logger.WithField("file", path).Info("Planilha gravada, e-mail não enviado")
		return nil
	}

	run, err := p.reporter.Run(ctx, period, domain.RunOptions{
		Trigger: domain.TriggerCLI,
		Deliver: true,
		Force:   flags.force,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"run_id":        run.ID,
		"file":          run.Artifact,
		"interactions":  run.Interactions,
		"skipped_feeds": run.SkippedFeeds,
	}).Info("Relatório gerado e enviado")
	return nil
}
