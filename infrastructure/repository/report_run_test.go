package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/domain"
)

var (
	day       = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	startedAt = time.Date(2024, 3, 6, 19, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (ReportRunRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRunRepository(db), mock
}

func TestReportRunRepository_Create(t *testing.T) {
	repo, mock := newMock(t)

	run := &domain.ReportRun{
		ID:          "abc123def456",
		PeriodStart: day,
		PeriodEnd:   day,
		Trigger:     domain.TriggerScheduled,
		Status:      domain.RunStatusRunning,
		StartedAt:   startedAt,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_runs (id,period_start,period_end,trigger,status,skipped_feeds,started_at) VALUES ($1,$2,$3,$4,$5,$6,$7)")).
		WithArgs("abc123def456", day, day, "scheduled", "running", "{}", startedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRunRepository_Finish(t *testing.T) {
	finishedAt := startedAt.Add(2 * time.Minute)
	run := &domain.ReportRun{
		ID:              "abc123def456",
		Status:          domain.RunStatusSucceeded,
		Representatives: 2,
		Interactions:    5,
		TotalValue:      decimal.RequireFromString("1500.50"),
		SkippedFeeds:    []string{"call"},
		Delivered:       true,
		Artifact:        "CSFA_Report_2024-03-05.xlsx",
		FinishedAt:      &finishedAt,
	}

	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  bool
	}{
		{name: "Atualiza a execução", affected: 1},
		{name: "Execução inexistente", affected: 0, wantErr: true},
		{name: "Erro no banco", execErr: errors.New("conn closed"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)

			exec := mock.ExpectExec(regexp.QuoteMeta("UPDATE report_runs SET status = $1")).
				WithArgs(
					"succeeded", 2, 5, sqlmock.AnyArg(), "{\"call\"}", true,
					"CSFA_Report_2024-03-05.xlsx", nil, sqlmock.AnyArg(), "abc123def456",
				)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := repo.Finish(context.Background(), run)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReportRunRepository_Delivered(t *testing.T) {
	query := regexp.QuoteMeta("SELECT 1 FROM report_runs WHERE delivered = $1 AND period_end = $2 AND period_start = $3 LIMIT 1")

	t.Run("Período já entregue", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(query).
			WithArgs(true, day, day).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		delivered, err := repo.Delivered(context.Background(), domain.SingleDay(day))
		require.NoError(t, err)
		assert.True(t, delivered)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Período sem entrega", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(query).
			WithArgs(true, day, day).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

		delivered, err := repo.Delivered(context.Background(), domain.SingleDay(day))
		require.NoError(t, err)
		assert.False(t, delivered)
	})

	t.Run("Erro na consulta", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("timeout"))

		_, err := repo.Delivered(context.Background(), domain.SingleDay(day))
		assert.Error(t, err)
	})
}

func TestReportRunRepository_List(t *testing.T) {
	repo, mock := newMock(t)
	finishedAt := startedAt.Add(time.Minute)

	rows := sqlmock.NewRows(reportRunColumns).
		AddRow("run2", day, day, "manual", "failed", 0, 0, "0", "{}", false, nil, "auth failed", startedAt, finishedAt).
		AddRow("run1", day, day, "scheduled", "succeeded", 2, 5, "1500.50", "{call}", true, "CSFA_Report_2024-03-05.xlsx", nil, startedAt, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_runs ORDER BY started_at DESC LIMIT 20")).
		WillReturnRows(rows)

	runs, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run2", runs[0].ID)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, "auth failed", *runs[0].Error)
	require.NotNil(t, runs[0].FinishedAt)

	assert.Equal(t, domain.TriggerScheduled, runs[1].Trigger)
	assert.True(t, runs[1].TotalValue.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, []string{"call"}, runs[1].SkippedFeeds)
	assert.Equal(t, "CSFA_Report_2024-03-05.xlsx", runs[1].Artifact)
	assert.Nil(t, runs[1].Error)
	assert.Nil(t, runs[1].FinishedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}
