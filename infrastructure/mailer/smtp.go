package mailer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	gomail "github.com/wneessen/go-mail"
)

var (
	ErrNoRecipients = errors.New("nenhum destinatário configurado")
	ErrNoSender     = errors.New("remetente não configurado")
)

// sendFunc entrega uma mensagem já montada
type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPNotifier envia o resumo do relatório em HTML com a planilha anexada
type SMTPNotifier struct {
	cfg      config.Email
	company  string
	currency string
	send     sendFunc
}

func NewSMTPNotifier(cfg config.Email, report config.Report) *SMTPNotifier {
	n := &SMTPNotifier{
		cfg:      cfg,
		company:  report.Company,
		currency: report.Currency,
	}
	if n.currency == "" {
		n.currency = "MZN"
	}
	n.send = n.dialAndSend
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, report *domain.Report, attachment string) error {
	msg, err := n.BuildMessage(report, attachment)
	if err != nil {
		return err
	}

	if err := n.send(ctx, msg); err != nil {
		return errors.Wrapf(err, "erro ao enviar e-mail via %s", n.cfg.SMTPServer)
	}

	logrus.WithFields(logrus.Fields{
		"to":         n.cfg.To,
		"cc":         len(n.cfg.Cc),
		"bcc":        len(n.cfg.Bcc),
		"period":     report.Period().String(),
		"attachment": filepath.Base(attachment),
	}).Info("E-mail do relatório enviado")

	return nil
}

// BuildMessage monta a mensagem completa: destinatários, assunto, corpo e anexo
func (n *SMTPNotifier) BuildMessage(report *domain.Report, attachment string) (*gomail.Msg, error) {
	if n.cfg.SenderEmail == "" {
		return nil, ErrNoSender
	}
	if len(n.cfg.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(n.cfg.SenderName, n.cfg.SenderEmail); err != nil {
		return nil, errors.Wrap(err, "remetente inválido")
	}
	if err := msg.To(n.cfg.To...); err != nil {
		return nil, errors.Wrap(err, "destinatário inválido")
	}
	if len(n.cfg.Cc) > 0 {
		if err := msg.Cc(n.cfg.Cc...); err != nil {
			return nil, errors.Wrap(err, "destinatário em cópia inválido")
		}
	}
	if len(n.cfg.Bcc) > 0 {
		if err := msg.Bcc(n.cfg.Bcc...); err != nil {
			return nil, errors.Wrap(err, "destinatário em cópia oculta inválido")
		}
	}
	msg.Subject(Subject(n.cfg.Subject, report.Period()))

	body, err := n.RenderSummary(report, attachment)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(gomail.TypeTextHTML, body)

	if attachment != "" {
		content, err := os.ReadFile(attachment)
		if err != nil {
			return nil, errors.Wrapf(err, "erro ao ler anexo %s", attachment)
		}
		msg.AttachReader(filepath.Base(attachment), bytes.NewReader(content))
	}

	return msg, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.cfg.SenderEmail),
		gomail.WithPassword(n.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if n.cfg.SMTPPort > 0 {
		opts = append(opts, gomail.WithPort(n.cfg.SMTPPort))
	}
	if n.cfg.SMTPTimeout > 0 {
		opts = append(opts, gomail.WithTimeout(n.cfg.SMTPTimeout))
	}

	client, err := gomail.NewClient(n.cfg.SMTPServer, opts...)
	if err != nil {
		return errors.Wrap(err, "erro ao criar cliente SMTP")
	}

	return client.DialAndSendWithContext(ctx, msg)
}
