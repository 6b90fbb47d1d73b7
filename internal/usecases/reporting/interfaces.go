package reporting

import (
	"context"

	"github.com/vfg2006/csfa-report/internal/domain"
)

// Reporter gera o relatório de um período e, opcionalmente, entrega aos destinos
type Reporter interface {
	// Generate busca os feeds, normaliza e agrega, sem entregar nada
	Generate(ctx context.Context, period domain.Period) (*domain.Report, error)

	// Run executa o fluxo completo e registra o resultado no histórico de execuções
	Run(ctx context.Context, period domain.Period, opts domain.RunOptions) (*domain.ReportRun, error)

	// TryStart reserva a execução imediatamente ou falha com ErrRunInProgress; a função
	// devolvida executa o fluxo como Run
	TryStart(period domain.Period, opts domain.RunOptions) (func(ctx context.Context) (*domain.ReportRun, error), error)

	// LastRun devolve a última execução concluída ou em andamento
	LastRun() *domain.ReportRun

	Running() bool
}

// ReportWriter grava o relatório como arquivo e devolve o caminho gerado
type ReportWriter interface {
	Write(ctx context.Context, report *domain.Report) (string, error)
}

// Notifier entrega o resumo do relatório com o arquivo em anexo
type Notifier interface {
	Send(ctx context.Context, report *domain.Report, attachment string) error
}

// RunLedger persiste o resultado das execuções (nunca o conteúdo do relatório)
type RunLedger interface {
	Create(ctx context.Context, run *domain.ReportRun) error
	Finish(ctx context.Context, run *domain.ReportRun) error
	// Delivered indica se o período já teve uma execução entregue com sucesso
	Delivered(ctx context.Context, period domain.Period) (bool, error)
}
