package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RepresentativeSummary é a linha de um representante na tabela resumo
type RepresentativeSummary struct {
	RepresentativeID   string          `json:"representative_id"`
	RepresentativeName string          `json:"representative_name"`
	CustomersVisited   int             `json:"customers_visited"`
	VisitValue         decimal.Decimal `json:"visit_value"`
	CustomersCalled    int             `json:"customers_called"`
	CallValue          decimal.Decimal `json:"call_value"`
}

// Total é a soma dos valores de visitas e ligações
func (s RepresentativeSummary) Total() decimal.Decimal {
	return s.VisitValue.Add(s.CallValue)
}

// RepresentativeDetail é a tabela de detalhe de um representante
type RepresentativeDetail struct {
	RepresentativeID   string        `json:"representative_id"`
	RepresentativeName string        `json:"representative_name"`
	Interactions       []Interaction `json:"interactions"`
}

// Totals agrega os indicadores da frota inteira, exibidos nos cartões do e-mail
type Totals struct {
	Representatives    int             `json:"representatives"`
	CustomersVisited   int             `json:"customers_visited"`
	CustomersCalled    int             `json:"customers_called"`
	VisitValue         decimal.Decimal `json:"visit_value"`
	CallValue          decimal.Decimal `json:"call_value"`
	TotalValue         decimal.Decimal `json:"total_value"`
	AvgCustomersPerRep decimal.Decimal `json:"avg_customers_per_rep"`
	AvgOrderValue      decimal.Decimal `json:"avg_order_value"`
}

// TotalCustomers soma clientes visitados e contatados por telefone
func (t Totals) TotalCustomers() int {
	return t.CustomersVisited + t.CustomersCalled
}

// SummarizeTotals calcula os totais da frota a partir das linhas do resumo
func SummarizeTotals(rows []RepresentativeSummary) Totals {
	t := Totals{
		Representatives: len(rows),
		VisitValue:      decimal.Zero,
		CallValue:       decimal.Zero,
	}
	for _, r := range rows {
		t.CustomersVisited += r.CustomersVisited
		t.CustomersCalled += r.CustomersCalled
		t.VisitValue = t.VisitValue.Add(r.VisitValue)
		t.CallValue = t.CallValue.Add(r.CallValue)
	}
	t.TotalValue = t.VisitValue.Add(t.CallValue)
	t.AvgCustomersPerRep = decimal.Zero
	t.AvgOrderValue = decimal.Zero
	if t.Representatives > 0 {
		t.AvgCustomersPerRep = decimal.NewFromInt(int64(t.TotalCustomers())).
			DivRound(decimal.NewFromInt(int64(t.Representatives)), 1)
	}
	if t.TotalCustomers() > 0 {
		t.AvgOrderValue = t.TotalValue.DivRound(decimal.NewFromInt(int64(t.TotalCustomers())), 2)
	}
	return t
}

// Report é o modelo entregue aos destinos (planilha e e-mail). É construído uma única vez
// pelo agregador e nunca alterado; os acessores devolvem cópias.
type Report struct {
	period  Period
	summary []RepresentativeSummary
	details []RepresentativeDetail
	totals  Totals
	skipped []FeedKind
}

// NewReport monta o relatório; os slices recebidos passam a pertencer ao relatório
func NewReport(period Period, summary []RepresentativeSummary, details []RepresentativeDetail, skipped []FeedKind) *Report {
	return &Report{
		period:  period,
		summary: summary,
		details: details,
		totals:  SummarizeTotals(summary),
		skipped: append([]FeedKind(nil), skipped...),
	}
}

func (r *Report) Period() Period {
	return r.period
}

func (r *Report) Totals() Totals {
	return r.totals
}

// Summary devolve uma cópia da tabela resumo
func (r *Report) Summary() []RepresentativeSummary {
	return append([]RepresentativeSummary(nil), r.summary...)
}

// Details devolve uma cópia das tabelas de detalhe, na mesma ordem do resumo
func (r *Report) Details() []RepresentativeDetail {
	out := make([]RepresentativeDetail, len(r.details))
	for i, d := range r.details {
		out[i] = RepresentativeDetail{
			RepresentativeID:   d.RepresentativeID,
			RepresentativeName: d.RepresentativeName,
			Interactions:       make([]Interaction, len(d.Interactions)),
		}
		for j, it := range d.Interactions {
			out[i].Interactions[j] = it.clone()
		}
	}
	return out
}

// SkippedFeeds lista os feeds ignorados por política nesta execução
func (r *Report) SkippedFeeds() []FeedKind {
	return append([]FeedKind(nil), r.skipped...)
}

// IsPartial indica que ao menos um feed foi ignorado
func (r *Report) IsPartial() bool {
	return len(r.skipped) > 0
}

// InteractionCount conta as interações de todas as tabelas de detalhe
func (r *Report) InteractionCount() int {
	n := 0
	for _, d := range r.details {
		n += len(d.Interactions)
	}
	return n
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Period       Period                  `json:"period"`
		Summary      []RepresentativeSummary `json:"summary"`
		Details      []RepresentativeDetail  `json:"details"`
		Totals       Totals                  `json:"totals"`
		SkippedFeeds []FeedKind              `json:"skipped_feeds,omitempty"`
	}{
		Period:       r.period,
		Summary:      r.summary,
		Details:      r.details,
		Totals:       r.totals,
		SkippedFeeds: r.skipped,
	})
}
