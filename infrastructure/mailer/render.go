package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/csfa-report/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/report.html"),
)

type card struct {
	Title    string
	Value    string
	Subtitle string
	Color    template.CSS
}

type summaryRow struct {
	Name       string
	Visited    int
	VisitValue string
	Called     int
	CallValue  string
}

type reportEmailData struct {
	Company       string
	DateLabel     string
	RecipientName string
	SenderName    string
	Currency      string
	Cards         []card
	Rows          []summaryRow
	Total         summaryRow
	SkippedFeeds  []string
	Attachment    string
}

// RenderSummary gera o corpo HTML do e-mail: cartões de indicadores e a tabela resumo
func (n *SMTPNotifier) RenderSummary(report *domain.Report, attachment string) (string, error) {
	totals := report.Totals()
	currency := n.currency

	data := reportEmailData{
		Company:       n.company,
		DateLabel:     report.Period().String(),
		RecipientName: n.cfg.RecipientName,
		SenderName:    n.cfg.SenderName,
		Currency:      currency,
		Cards: []card{
			{
				Title:    "Total Customers",
				Value:    formatInt(totals.TotalCustomers()),
				Subtitle: fmt.Sprintf("%d visited, %d called", totals.CustomersVisited, totals.CustomersCalled),
				Color:    "#4F81BD",
			},
			{
				Title:    "Total Revenue",
				Value:    FormatMoney(totals.TotalValue) + " " + currency,
				Subtitle: fmt.Sprintf("From %d salespersons", totals.Representatives),
				Color:    "#28a745",
			},
			{
				Title:    "Avg. Customers/Rep",
				Value:    totals.AvgCustomersPerRep.StringFixed(1),
				Subtitle: "Per salesperson",
				Color:    "#ff6b6b",
			},
			{
				Title:    "Avg. Order Value",
				Value:    FormatMoney(totals.AvgOrderValue) + " " + currency,
				Subtitle: "Per customer",
				Color:    "#ffa500",
			},
		},
		Total: summaryRow{
			Name:       "TOTAL",
			Visited:    totals.CustomersVisited,
			VisitValue: FormatMoney(totals.VisitValue),
			Called:     totals.CustomersCalled,
			CallValue:  FormatMoney(totals.CallValue),
		},
	}

	for _, row := range report.Summary() {
		data.Rows = append(data.Rows, summaryRow{
			Name:       row.RepresentativeName,
			Visited:    row.CustomersVisited,
			VisitValue: FormatMoney(row.VisitValue),
			Called:     row.CustomersCalled,
			CallValue:  FormatMoney(row.CallValue),
		})
	}
	for _, feed := range report.SkippedFeeds() {
		data.SkippedFeeds = append(data.SkippedFeeds, feed.String())
	}
	if attachment != "" {
		data.Attachment = filepath.Base(attachment)
	}

	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report", data); err != nil {
		return "", errors.Wrap(err, "erro ao montar corpo do e-mail")
	}
	return buf.String(), nil
}

// Subject troca {date} no modelo de assunto pelo período do relatório
func Subject(tmpl string, period domain.Period) string {
	if tmpl == "" {
		tmpl = "CSFA Report - {date}"
	}
	return strings.ReplaceAll(tmpl, "{date}", period.String())
}

// FormatMoney formata com duas casas e separador de milhar: 1234.5 -> 1,234.50
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "." + frac
}

func formatInt(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + groupThousands(s[1:])
	}
	return groupThousands(s)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
