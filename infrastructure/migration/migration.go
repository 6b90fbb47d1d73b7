package migration

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/infrastructure/database/postgres"
)

//go:embed sql/*.sql
var scripts embed.FS

// Apply executa os scripts em ordem de nome, todos na mesma transação. Os scripts são
// idempotentes (IF NOT EXISTS), então rodar de novo não altera um banco já migrado.
func Apply(ctx context.Context, conn postgres.Conn) error {
	names, err := fs.Glob(scripts, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			content, err := scripts.ReadFile(name)
			if err != nil {
				return errors.Wrapf(err, "erro ao ler script %s", name)
			}
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return errors.Wrapf(err, "erro ao executar script %s", name)
			}
			logrus.WithField("script", name).Debug("Script de migração aplicado")
		}
		return nil
	})
}
