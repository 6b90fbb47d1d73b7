package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/vfg2006/csfa-report/internal/usecases/authenticating"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		scopes  []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um token de acesso para a API de operação",
		Long: `Emite um token HS256 assinado com AUTH_SECRET.

Exemplos:
  csfa-report token --subject painel --scope report:read
  csfa-report token --subject operador --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := authenticating.NewService(cfg.Auth).IssueToken(subject, ttl, scopes...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "identificação de quem vai usar o token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validade do token")
	cmd.Flags().StringSliceVar(&scopes, "scope", domain.AllScopes, "escopos concedidos (report:read, report:run)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
