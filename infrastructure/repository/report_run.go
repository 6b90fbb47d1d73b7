package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/infrastructure/database/postgres"
	"github.com/vfg2006/csfa-report/internal/domain"
)

const (
	reportRunsTable = "report_runs"
	defaultRunLimit = 20
)

var reportRunColumns = []string{
	"id", "period_start", "period_end", "trigger", "status", "representatives", "interactions",
	"total_value", "skipped_feeds", "delivered", "artifact", "error", "started_at", "finished_at",
}

type ReportRunRepository interface {
	Create(ctx context.Context, run *domain.ReportRun) error
	Finish(ctx context.Context, run *domain.ReportRun) error
	Delivered(ctx context.Context, period domain.Period) (bool, error)
	List(ctx context.Context, limit int) ([]*domain.ReportRun, error)
}

type reportRunRepository struct {
	conn postgres.Queryer
}

func NewReportRunRepository(conn postgres.Queryer) ReportRunRepository {
	return &reportRunRepository{
		conn: conn,
	}
}

func (r *reportRunRepository) Create(ctx context.Context, run *domain.ReportRun) error {
	query, args, err := squirrel.
		Insert(reportRunsTable).
		Columns("id", "period_start", "period_end", "trigger", "status", "skipped_feeds", "started_at").
		Values(
			run.ID,
			run.PeriodStart,
			run.PeriodEnd,
			string(run.Trigger),
			string(run.Status),
			pq.Array(nonNil(run.SkippedFeeds)),
			run.StartedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "erro ao registrar execução %s", run.ID)
	}

	logrus.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"period":  run.Period().String(),
		"trigger": run.Trigger,
	}).Debug("Execução registrada")

	return nil
}

func (r *reportRunRepository) Finish(ctx context.Context, run *domain.ReportRun) error {
	query, args, err := squirrel.
		Update(reportRunsTable).
		Set("status", string(run.Status)).
		Set("representatives", run.Representatives).
		Set("interactions", run.Interactions).
		Set("total_value", run.TotalValue).
		Set("skipped_feeds", pq.Array(nonNil(run.SkippedFeeds))).
		Set("delivered", run.Delivered).
		Set("artifact", nullString(run.Artifact)).
		Set("error", run.Error).
		Set("finished_at", run.FinishedAt).
		Where(squirrel.Eq{"id": run.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "erro ao finalizar execução %s", run.ID)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.Errorf("execução %s não encontrada", run.ID)
	}

	return nil
}

// Delivered indica se já existe uma execução entregue exatamente para este período
func (r *reportRunRepository) Delivered(ctx context.Context, period domain.Period) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(reportRunsTable).
		Where(squirrel.Eq{
			"period_start": period.Start,
			"period_end":   period.End,
			"delivered":    true,
		}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var found int
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "erro ao consultar execuções entregues")
	}

	return true, nil
}

// List devolve as execuções mais recentes primeiro
func (r *reportRunRepository) List(ctx context.Context, limit int) ([]*domain.ReportRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	query, args, err := squirrel.
		Select(reportRunColumns...).
		From(reportRunsTable).
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar execuções")
	}
	defer rows.Close()

	runs := make([]*domain.ReportRun, 0)
	for rows.Next() {
		run, err := r.deserializeReportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *reportRunRepository) deserializeReportRun(rows *sql.Rows) (*domain.ReportRun, error) {
	run := &domain.ReportRun{}
	var (
		trigger  string
		status   string
		skipped  pq.StringArray
		artifact sql.NullString
		runErr   sql.NullString
		finished sql.NullTime
	)

	if err := rows.Scan(
		&run.ID,
		&run.PeriodStart,
		&run.PeriodEnd,
		&trigger,
		&status,
		&run.Representatives,
		&run.Interactions,
		&run.TotalValue,
		&skipped,
		&run.Delivered,
		&artifact,
		&runErr,
		&run.StartedAt,
		&finished,
	); err != nil {
		return nil, errors.Wrap(err, "erro ao ler execução")
	}

	run.Trigger = domain.RunTrigger(trigger)
	run.Status = domain.RunStatus(status)
	run.SkippedFeeds = []string(skipped)
	run.Artifact = artifact.String
	if runErr.Valid {
		run.Error = &runErr.String
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}

	return run, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
