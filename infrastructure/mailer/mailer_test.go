package mailer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	gomail "github.com/wneessen/go-mail"
)

var day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func sampleReport(skipped ...domain.FeedKind) *domain.Report {
	summary := []domain.RepresentativeSummary{
		{RepresentativeName: "Ana", CustomersVisited: 2, VisitValue: decimal.NewFromInt(1234567), CallValue: decimal.Zero},
		{RepresentativeName: "Beto", CustomersCalled: 1, VisitValue: decimal.Zero, CallValue: decimal.RequireFromString("10.5")},
	}
	return domain.NewReport(domain.SingleDay(day), summary, nil, skipped)
}

func newNotifier() *SMTPNotifier {
	return NewSMTPNotifier(config.Email{
		SenderEmail:   "reports@example.com",
		SenderName:    "CSFA Reports",
		To:            []string{"gestor@example.com"},
		Cc:            []string{"copia@example.com"},
		Subject:       "Tintas Berger CSFA Report - {date}",
		RecipientName: "Team",
	}, config.Report{Company: "Tintas Berger", Currency: "MZN"})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0.00"},
		{"10.5", "10.50"},
		{"999.999", "1,000.00"},
		{"1234567.891", "1,234,567.89"},
		{"-4500", "-4,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Relatório 2024-03-05", Subject("Relatório {date}", domain.SingleDay(day)))

	period, err := domain.NewPeriod(day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "CSFA Report - 2024-03-05 - 2024-03-06", Subject("", period))
}

func TestRenderSummary(t *testing.T) {
	n := newNotifier()

	t.Run("Relatório completo", func(t *testing.T) {
		body, err := n.RenderSummary(sampleReport(), "/tmp/saida/CSFA_Report_2024-03-05.xlsx")
		require.NoError(t, err)

		assert.Contains(t, body, "Tintas Berger CSFA Daily Report")
		assert.Contains(t, body, "Dear Team,")
		assert.Contains(t, body, "1,234,567.00")
		assert.Contains(t, body, "1,234,577.50 MZN")
		assert.Contains(t, body, "CSFA_Report_2024-03-05.xlsx")
		assert.Contains(t, body, "#4F81BD")
		assert.NotContains(t, body, "Partial report")
	})

	t.Run("Relatório parcial lista os feeds ignorados", func(t *testing.T) {
		body, err := n.RenderSummary(sampleReport(domain.FeedCall, domain.FeedOrder), "")
		require.NoError(t, err)

		assert.Contains(t, body, "Partial report")
		assert.Contains(t, body, "call, order")
		assert.NotContains(t, body, "Attachment:")
	})

	t.Run("Sem atividade", func(t *testing.T) {
		body, err := n.RenderSummary(domain.NewReport(domain.SingleDay(day), nil, nil, nil), "")
		require.NoError(t, err)
		assert.Contains(t, body, "No field activity was recorded")
	})
}

func TestSMTPNotifier_Send(t *testing.T) {
	attachment := filepath.Join(t.TempDir(), "CSFA_Report_2024-03-05.xlsx")
	require.NoError(t, os.WriteFile(attachment, []byte("planilha"), 0o600))

	t.Run("Monta e envia a mensagem", func(t *testing.T) {
		n := newNotifier()
		var sent *gomail.Msg
		n.send = func(_ context.Context, msg *gomail.Msg) error {
			sent = msg
			return nil
		}

		require.NoError(t, n.Send(context.Background(), sampleReport(), attachment))
		require.NotNil(t, sent)

		assert.Equal(t, []string{"Tintas Berger CSFA Report - 2024-03-05"}, sent.GetGenHeader(gomail.HeaderSubject))

		recipients, err := sent.GetRecipients()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"<gestor@example.com>", "<copia@example.com>"}, recipients)

		attachments := sent.GetAttachments()
		require.Len(t, attachments, 1)
		assert.Equal(t, "CSFA_Report_2024-03-05.xlsx", attachments[0].Name)
	})

	t.Run("Erro no envio", func(t *testing.T) {
		n := newNotifier()
		smtpErr := errors.New("connection refused")
		n.send = func(context.Context, *gomail.Msg) error { return smtpErr }

		err := n.Send(context.Background(), sampleReport(), attachment)
		assert.ErrorIs(t, err, smtpErr)
	})

	t.Run("Anexo inexistente", func(t *testing.T) {
		n := newNotifier()
		n.send = func(context.Context, *gomail.Msg) error {
			t.Fatal("não deveria enviar")
			return nil
		}

		err := n.Send(context.Background(), sampleReport(), filepath.Join(t.TempDir(), "nada.xlsx"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSMTPNotifier_BuildMessageValidation(t *testing.T) {
	n := NewSMTPNotifier(config.Email{SenderEmail: "reports@example.com"}, config.Report{})
	_, err := n.BuildMessage(sampleReport(), "")
	assert.ErrorIs(t, err, ErrNoRecipients)

	n = NewSMTPNotifier(config.Email{To: []string{"gestor@example.com"}}, config.Report{})
	_, err = n.BuildMessage(sampleReport(), "")
	assert.ErrorIs(t, err, ErrNoSender)
}
