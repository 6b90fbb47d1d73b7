package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func checkTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-tokens",
		Short: "Verifica os tokens do CSFA sem exibir os valores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			diagnostics := cfg.CSFA.Diagnose()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOKEN\tSTATUS\tTAMANHO\tPRÉVIA\tAVISOS")

			failed := 0
			for _, d := range diagnostics {
				status := "ok"
				if !d.OK() {
					status = "erro: " + d.Error
					failed++
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.Name, status, d.Length, d.Preview, strings.Join(d.Warnings, "; "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if _, err := cfg.CSFA.Tokens(); err != nil {
				return errors.Wrap(err, "o bundle de tokens não pode ser usado")
			}
			if failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d token(s) opcionais com problema\n", failed)
			}
			return nil
		},
	}
}
