package spreadsheet

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// styles guarda os ids de estilo registrados no arquivo
type styles struct {
	header        int
	body          int
	count         int
	money         int
	title         int
	customer      int
	customerMoney int
	productHeader int
	noOrders      int
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

type styleDef struct {
	id    *int
	style *excelize.Style
}

func newStyles(f *excelize.File) (*styles, error) {
	st := &styles{}
	defs := []styleDef{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: "FFFFFF"},
			Fill:      solid("4472C4"),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thinBorder(),
		}},
		{&st.body, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "left"},
			Border:    thinBorder(),
		}},
		{&st.count, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    thinBorder(),
		}},
		{&st.money, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    thinBorder(),
			NumFmt:    moneyFormat,
		}},
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 14, Bold: true, Color: "1F4E78"},
			Fill:      solid("E7E6E6"),
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&st.customer, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: "1F4E78"},
			Fill:      solid("D9E1F2"),
			Alignment: &excelize.Alignment{Horizontal: "left"},
			Border:    thinBorder(),
		}},
		{&st.customerMoney, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: "1F4E78"},
			Fill:      solid("D9E1F2"),
			Alignment: &excelize.Alignment{Horizontal: "right"},
			Border:    thinBorder(),
			NumFmt:    moneyFormat,
		}},
		{&st.productHeader, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 10, Bold: true, Color: "FFFFFF"},
			Fill:      solid("5B9BD5"),
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    thinBorder(),
		}},
		{&st.noOrders, &excelize.Style{
			Font:      &excelize.Font{Family: "Calibri", Size: 11, Bold: true, Color: "C00000"},
			Fill:      solid("FFF2CC"),
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    thinBorder(),
		}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao registrar estilo da planilha")
		}
		*d.id = id
	}

	return st, nil
}
