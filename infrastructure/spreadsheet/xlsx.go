package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	NoOrdersText = "No orders for this customer"

	maxSheetName = 31
	// Formato numérico embutido do Excel para "#,##0.00"
	moneyFormat = 4
)

// XLSXWriter grava o relatório como planilha: uma aba de resumo e uma aba por representante
type XLSXWriter struct {
	outputDir string
	prefix    string
	currency  string
}

func NewXLSXWriter(cfg config.Report) *XLSXWriter {
	prefix := cfg.FilePrefix
	if prefix == "" {
		prefix = "CSFA_Report"
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "MZN"
	}
	return &XLSXWriter{
		outputDir: cfg.OutputDir,
		prefix:    prefix,
		currency:  currency,
	}
}

// FileName monta o nome do arquivo a partir do período
func (w *XLSXWriter) FileName(period domain.Period) string {
	if period.IsSingleDay() {
		return fmt.Sprintf("%s_%s.xlsx", w.prefix, period.Start.Format(time.DateOnly))
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", w.prefix, period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly))
}

func (w *XLSXWriter) Write(ctx context.Context, report *domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := w.Build(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	dir := w.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "erro ao criar diretório %s", dir)
	}

	path := filepath.Join(dir, w.FileName(report.Period()))
	if err := f.SaveAs(path); err != nil {
		return "", errors.Wrapf(err, "erro ao salvar planilha %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"sheets": len(f.GetSheetList()),
	}).Info("Planilha do relatório gravada")

	return path, nil
}

// Build monta a planilha em memória
func (w *XLSXWriter) Build(report *domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "erro ao criar aba de resumo")
	}
	if err := w.writeSummary(f, st, report.Summary()); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "erro ao escrever aba de resumo")
	}

	names := newSheetNames(SummarySheet)
	for _, detail := range report.Details() {
		sheet := names.next(detail.RepresentativeName)
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "erro ao criar aba %s", sheet)
		}
		if err := w.writeDetail(f, st, sheet, detail, !report.Period().IsSingleDay()); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "erro ao escrever aba %s", sheet)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (w *XLSXWriter) writeSummary(f *excelize.File, st *styles, rows []domain.RepresentativeSummary) error {
	header := []any{
		"Salesperson",
		"Customers Visited",
		fmt.Sprintf("Order Value From Visits (%s)", w.currency),
		"Customers Called",
		fmt.Sprintf("Order Value From Calls (%s)", w.currency),
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "E1", st.header); err != nil {
		return err
	}

	for i, row := range rows {
		r := i + 2
		values := []any{
			row.RepresentativeName,
			row.CustomersVisited,
			row.VisitValue.InexactFloat64(),
			row.CustomersCalled,
			row.CallValue.InexactFloat64(),
		}
		if err := f.SetSheetRow(SummarySheet, cell(1, r), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(1, r), cell(1, r), st.body); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(2, r), cell(2, r), st.count); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(3, r), cell(3, r), st.money); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(4, r), cell(4, r), st.count); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(5, r), cell(5, r), st.money); err != nil {
			return err
		}
	}

	for col, width := range map[string]float64{"A": 25, "B": 18, "C": 26, "D": 18, "E": 26} {
		if err := f.SetColWidth(SummarySheet, col, col, width); err != nil {
			return err
		}
	}

	return f.SetPanes(SummarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeDetail lista as interações do representante; em períodos de vários dias o cliente
// leva a data ao lado do nome
func (w *XLSXWriter) writeDetail(f *excelize.File, st *styles, sheet string, detail domain.RepresentativeDetail, multiDay bool) error {
	columns := []struct {
		name  string
		width float64
	}{
		{"Product/Customer", 40},
		{"Visit Type", 15},
		{"Time Spent", 12},
		{"Qty", 10},
		{fmt.Sprintf("Unit Cost (%s)", w.currency), 15},
		{fmt.Sprintf("Order Value (%s)", w.currency), 18},
	}
	for i, c := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, c.width); err != nil {
			return err
		}
	}

	if err := f.MergeCell(sheet, "A1", "F1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", "Sales Activity Report - "+detail.RepresentativeName); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", st.title); err != nil {
		return err
	}

	r := 3
	for _, it := range detail.Interactions {
		label := it.CustomerName
		if multiDay {
			label = fmt.Sprintf("%s (%s)", it.CustomerName, it.Date.Format("02/01"))
		}
		customer := []any{label, it.Kind.Label(), FormatDuration(it.TimeSpent), nil, nil, it.OrderValue.InexactFloat64()}
		if err := f.SetSheetRow(sheet, cell(1, r), &customer); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, r), cell(5, r), st.customer); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(6, r), cell(6, r), st.customerMoney); err != nil {
			return err
		}
		r++

		switch {
		case len(it.Lines) > 0:
			header := make([]any, len(columns))
			for i, c := range columns {
				header[i] = c.name
			}
			if err := f.SetSheetRow(sheet, cell(1, r), &header); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell(1, r), cell(6, r), st.productHeader); err != nil {
				return err
			}
			r++

			for _, line := range it.Lines {
				values := []any{
					line.ProductName, nil, nil,
					line.Quantity.InexactFloat64(),
					line.UnitPrice.InexactFloat64(),
					line.Total().InexactFloat64(),
				}
				if err := f.SetSheetRow(sheet, cell(1, r), &values); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell(1, r), cell(3, r), st.body); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell(4, r), cell(6, r), st.money); err != nil {
					return err
				}
				r++
			}
		case it.OrderValue.IsZero():
			if err := f.MergeCell(sheet, cell(1, r), cell(6, r)); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell(1, r), NoOrdersText); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell(1, r), cell(6, r), st.noOrders); err != nil {
				return err
			}
			r++
		}

		// Linha em branco entre clientes
		r++
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	})
}

// FormatDuration exibe o tempo gasto como HH:MM:SS; sem informação, "-"
func FormatDuration(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// sheetNames gera nomes de aba válidos e únicos (sem distinção de caixa, como o Excel)
type sheetNames struct {
	used map[string]struct{}
}

func newSheetNames(reserved ...string) *sheetNames {
	n := &sheetNames{used: make(map[string]struct{})}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = struct{}{}
	}
	return n
}

var sheetReplacer = strings.NewReplacer(
	".", "_", " ", "_", ":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_", "'", "",
)

// SanitizeSheetName troca caracteres proibidos e limita o nome a 31 caracteres
func SanitizeSheetName(name string) string {
	s := sheetReplacer.Replace(strings.TrimSpace(name))
	if s == "" {
		s = "Sheet"
	}
	return truncate(s, maxSheetName)
}

func (n *sheetNames) next(name string) string {
	base := SanitizeSheetName(name)
	candidate := base
	for i := 2; ; i++ {
		if _, taken := n.used[strings.ToLower(candidate)]; !taken {
			break
		}
		suffix := fmt.Sprintf("_%d", i)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
