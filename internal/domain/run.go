package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus é a situação de uma execução do relatório
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// RunTrigger indica quem disparou a execução
type RunTrigger string

const (
	TriggerScheduled RunTrigger = "scheduled"
	TriggerManual    RunTrigger = "manual"
	TriggerCLI       RunTrigger = "cli"
)

// ReportRun registra o resultado de uma execução. O conteúdo do relatório não é persistido.
type ReportRun struct {
	ID              string          `json:"id"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	Trigger         RunTrigger      `json:"trigger"`
	Status          RunStatus       `json:"status"`
	Representatives int             `json:"representatives"`
	Interactions    int             `json:"interactions"`
	TotalValue      decimal.Decimal `json:"total_value"`
	SkippedFeeds    []string        `json:"skipped_feeds,omitempty"`
	Delivered       bool            `json:"delivered"`
	Artifact        string          `json:"artifact,omitempty"`
	Error           *string         `json:"error,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
}

// Period devolve o período coberto pela execução
func (r ReportRun) Period() Period {
	return Period{Start: r.PeriodStart, End: r.PeriodEnd}
}

// Duration é o tempo de execução; zero enquanto a execução não terminou
func (r ReportRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunOptions controla uma execução individual
type RunOptions struct {
	Trigger RunTrigger
	// Deliver envia planilha e e-mail; falso gera apenas o relatório
	Deliver bool
	// Force reenvia mesmo que o período já tenha sido entregue
	Force bool
}
