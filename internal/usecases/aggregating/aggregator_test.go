package aggregating

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/csfa-report/internal/domain"
)

var day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func minutes(n int) *time.Duration {
	d := time.Duration(n) * time.Minute
	return &d
}

func visit(rep, customer, value string) domain.Fragment {
	return domain.Fragment{
		Feed:               domain.FeedVisit,
		RepresentativeName: rep,
		CustomerName:       customer,
		Date:               day,
		Kind:               domain.InteractionVisited,
		OrderValue:         dec(value),
	}
}

func call(rep, customer, value string) domain.Fragment {
	return domain.Fragment{
		Feed:               domain.FeedCall,
		RepresentativeName: rep,
		CustomerName:       customer,
		Date:               day,
		Kind:               domain.InteractionCalled,
		OrderValue:         dec(value),
	}
}

func order(rep, customer, id, value string, lines ...domain.ProductLine) domain.Fragment {
	return domain.Fragment{
		Feed:               domain.FeedOrder,
		RepresentativeName: rep,
		CustomerName:       customer,
		Date:               day,
		Kind:               domain.InteractionUnresolved,
		OrderValue:         dec(value),
		OrderIDs:           []string{id},
		Lines:              lines,
	}
}

func line(orderID string, no int, product, qty, price string) domain.ProductLine {
	return domain.ProductLine{
		OrderID:     orderID,
		LineNo:      no,
		ProductName: product,
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	period := domain.SingleDay(day)

	tests := []struct {
		name      string
		fragments []domain.Fragment
		validate  func(t *testing.T, report *domain.Report, err error)
	}{
		{
			name: "Visita e pedido do mesmo cliente no mesmo dia viram uma interação",
			fragments: []domain.Fragment{
				visit("Ana", "Loja A", "500"),
				order("Ana", "Loja A", "77", "500",
					line("77", 1, "Tinta A", "2", "100"),
					line("77", 2, "Tinta B", "1", "300"),
				),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)

				details := report.Details()
				require.Len(t, details, 1)
				require.Len(t, details[0].Interactions, 1)

				it := details[0].Interactions[0]
				assert.Equal(t, domain.InteractionVisited, it.Kind)
				assert.True(t, dec("1000").Equal(it.OrderValue))
				assert.Len(t, it.Lines, 2)
				assert.Equal(t, []string{"77"}, it.OrderIDs)

				summary := report.Summary()
				require.Len(t, summary, 1)
				assert.Equal(t, "Ana", summary[0].RepresentativeName)
				assert.Equal(t, 1, summary[0].CustomersVisited)
				assert.True(t, dec("1000").Equal(summary[0].VisitValue))
				assert.Equal(t, 0, summary[0].CustomersCalled)
				assert.True(t, summary[0].CallValue.IsZero())
			},
		},
		{
			name: "Ligação e visita a clientes diferentes ficam separadas",
			fragments: []domain.Fragment{
				call("Beto", "Loja B", "200"),
				visit("Beto", "Loja C", "300"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)

				details := report.Details()
				require.Len(t, details, 1)
				require.Len(t, details[0].Interactions, 2)
				assert.Equal(t, "Loja B", details[0].Interactions[0].CustomerName)
				assert.Equal(t, domain.InteractionCalled, details[0].Interactions[0].Kind)
				assert.Equal(t, "Loja C", details[0].Interactions[1].CustomerName)
				assert.Equal(t, domain.InteractionVisited, details[0].Interactions[1].Kind)

				summary := report.Summary()[0]
				assert.Equal(t, 1, summary.CustomersVisited)
				assert.True(t, dec("300").Equal(summary.VisitValue))
				assert.Equal(t, 1, summary.CustomersCalled)
				assert.True(t, dec("200").Equal(summary.CallValue))
			},
		},
		{
			name: "Pedido sem visita é anexado à ligação do mesmo dia",
			fragments: []domain.Fragment{
				call("Beto", "Loja B", "0"),
				order("Beto", "Loja B", "90", "150"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				rows := report.Details()[0].Interactions
				require.Len(t, rows, 1)
				assert.Equal(t, domain.InteractionCalled, rows[0].Kind)
				assert.True(t, dec("150").Equal(rows[0].OrderValue))
			},
		},
		{
			name: "Pedido sem visita nem ligação conta como ligação",
			fragments: []domain.Fragment{
				order("Carla", "Loja D", "91", "80"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				summary := report.Summary()[0]
				assert.Equal(t, 0, summary.CustomersVisited)
				assert.Equal(t, 1, summary.CustomersCalled)
				assert.True(t, dec("80").Equal(summary.CallValue))
			},
		},
		{
			name: "Visita e ligação ao mesmo cliente no mesmo dia são interações distintas",
			fragments: []domain.Fragment{
				visit("Ana", "Loja A", "100"),
				call("Ana", "Loja A", "50"),
				order("Ana", "Loja A", "12", "10"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				rows := report.Details()[0].Interactions
				require.Len(t, rows, 2)
				assert.Equal(t, domain.InteractionVisited, rows[0].Kind)
				assert.True(t, dec("110").Equal(rows[0].OrderValue))
				assert.Equal(t, domain.InteractionCalled, rows[1].Kind)
				assert.True(t, dec("50").Equal(rows[1].OrderValue))
			},
		},
		{
			name: "Itens repetidos entre pedido e feed de itens não são duplicados",
			fragments: []domain.Fragment{
				visit("Ana", "Loja A", "0"),
				order("Ana", "Loja A", "77", "200", line("77", 1, "Tinta A", "2", "100")),
				{
					Feed:               domain.FeedProductLine,
					RepresentativeName: "Ana",
					CustomerName:       "Loja A",
					Date:               day,
					Kind:               domain.InteractionUnresolved,
					OrderValue:         decimal.Zero,
					OrderIDs:           []string{"77"},
					Lines:              []domain.ProductLine{line("77", 1, "Tinta A", "2", "100")},
				},
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				it := report.Details()[0].Interactions[0]
				assert.Len(t, it.Lines, 1)
				assert.Equal(t, []string{"77"}, it.OrderIDs)
				assert.True(t, dec("200").Equal(it.OrderValue))
			},
		},
		{
			name: "Tempo explícito vence o derivado",
			fragments: func() []domain.Fragment {
				explicit := visit("Ana", "Loja A", "0")
				explicit.TimeSpent = minutes(15)
				explicit.TimeSource = domain.TimeSourceExplicit
				derived := visit("Ana", "Loja A", "0")
				derived.TimeSpent = minutes(40)
				derived.TimeSource = domain.TimeSourceDerived
				return []domain.Fragment{derived, explicit}
			}(),
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				it := report.Details()[0].Interactions[0]
				require.NotNil(t, it.TimeSpent)
				assert.Equal(t, 15*time.Minute, *it.TimeSpent)
			},
		},
		{
			name: "Na mesma fonte vale o maior tempo",
			fragments: func() []domain.Fragment {
				a := visit("Ana", "Loja A", "0")
				a.TimeSpent = minutes(10)
				a.TimeSource = domain.TimeSourceExplicit
				b := visit("Ana", "Loja A", "0")
				b.TimeSpent = minutes(25)
				b.TimeSource = domain.TimeSourceExplicit
				return []domain.Fragment{a, b}
			}(),
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				it := report.Details()[0].Interactions[0]
				require.NotNil(t, it.TimeSpent)
				assert.Equal(t, 25*time.Minute, *it.TimeSpent)
			},
		},
		{
			name: "Sem tempo em nenhum fragmento - duração nula",
			fragments: []domain.Fragment{
				visit("Ana", "Loja A", "0"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				assert.Nil(t, report.Details()[0].Interactions[0].TimeSpent)
			},
		},
		{
			name: "Representante sem interações não aparece no relatório",
			fragments: []domain.Fragment{
				visit("Ana", "Loja A", "0"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				require.Len(t, report.Summary(), 1)
				assert.Equal(t, "Ana", report.Summary()[0].RepresentativeName)
			},
		},
		{
			name: "Fragmento só com nome herda o id do mesmo cliente",
			fragments: func() []domain.Fragment {
				v := visit("Ana", "Loja A", "0")
				v.CustomerID = "C001"
				o := order("Ana", "loja a", "5", "40")
				return []domain.Fragment{v, o}
			}(),
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				rows := report.Details()[0].Interactions
				require.Len(t, rows, 1)
				assert.Equal(t, "C001", rows[0].CustomerID)
				assert.Equal(t, "Loja A", rows[0].CustomerName)
				assert.True(t, dec("40").Equal(rows[0].OrderValue))
			},
		},
		{
			name: "Representante e cliente com o mesmo id mantêm nomes próprios",
			fragments: func() []domain.Fragment {
				v := visit("Ana", "Loja A", "10")
				v.RepresentativeID = "12"
				v.CustomerID = "12"
				return []domain.Fragment{v}
			}(),
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				summary := report.Summary()
				require.Len(t, summary, 1)
				assert.Equal(t, "Ana", summary[0].RepresentativeName)
				assert.Equal(t, "12", summary[0].RepresentativeID)

				rows := report.Details()[0].Interactions
				require.Len(t, rows, 1)
				assert.Equal(t, "Loja A", rows[0].CustomerName)
				assert.Equal(t, "12", rows[0].CustomerID)
			},
		},
		{
			name: "Cliente com o nome de um representante mantém a própria grafia",
			fragments: []domain.Fragment{
				visit("ana", "Loja A", "10"),
				visit("Beto", "Ana", "20"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				summary := report.Summary()
				require.Len(t, summary, 2)
				assert.Equal(t, "ana", summary[0].RepresentativeName)
				assert.Equal(t, "Beto", summary[1].RepresentativeName)

				details := report.Details()
				require.Len(t, details, 2)
				assert.Equal(t, "Loja A", details[0].Interactions[0].CustomerName)
				assert.Equal(t, "Ana", details[1].Interactions[0].CustomerName)
			},
		},
		{
			name: "Nomes com caixa e espaços diferentes são o mesmo representante",
			fragments: []domain.Fragment{
				visit("Ana  Silva", "Loja A", "10"),
				call("ana silva", "Loja B", "20"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				summary := report.Summary()
				require.Len(t, summary, 1)
				assert.Equal(t, "Ana Silva", summary[0].RepresentativeName)
				assert.True(t, dec("30").Equal(summary[0].Total()))
			},
		},
		{
			name: "Mesmo cliente em dias diferentes conta uma vez",
			fragments: func() []domain.Fragment {
				a := visit("Ana", "Loja A", "10")
				b := visit("Ana", "Loja A", "20")
				b.Date = day.AddDate(0, 0, 1)
				return []domain.Fragment{b, a}
			}(),
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				rows := report.Details()[0].Interactions
				require.Len(t, rows, 2)
				assert.True(t, rows[0].Date.Before(rows[1].Date))
				assert.Equal(t, 1, report.Summary()[0].CustomersVisited)
				assert.True(t, dec("30").Equal(report.Summary()[0].VisitValue))
			},
		},
		{
			name: "Representantes e clientes ordenados por nome",
			fragments: []domain.Fragment{
				visit("Zeca", "Loja Z", "1"),
				visit("Ana", "loja b", "1"),
				call("Ana", "Loja A", "1"),
			},
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				summary := report.Summary()
				require.Len(t, summary, 2)
				assert.Equal(t, "Ana", summary[0].RepresentativeName)
				assert.Equal(t, "Zeca", summary[1].RepresentativeName)

				rows := report.Details()[0].Interactions
				assert.Equal(t, "Loja A", rows[0].CustomerName)
				assert.Equal(t, "loja b", rows[1].CustomerName)
			},
		},
		{
			name:      "Sem fragmentos - relatório vazio",
			fragments: nil,
			validate: func(t *testing.T, report *domain.Report, err error) {
				require.NoError(t, err)
				assert.Empty(t, report.Summary())
				assert.Equal(t, 0, report.InteractionCount())
				assert.True(t, report.Totals().TotalValue.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := New().Aggregate(period, tt.fragments, nil)
			tt.validate(t, report, err)
		})
	}
}

func TestAggregator_TotalsReconcile(t *testing.T) {
	fragments := []domain.Fragment{
		visit("Ana", "Loja A", "500"),
		order("Ana", "Loja A", "77", "500"),
		call("Beto", "Loja B", "200"),
		visit("Beto", "Loja C", "300"),
		order("Carla", "Loja D", "91", "80.50"),
	}

	report, err := New().Aggregate(domain.SingleDay(day), fragments, []domain.FeedKind{domain.FeedProductLine})
	require.NoError(t, err)

	totals := report.Totals()
	assert.Equal(t, 3, totals.Representatives)
	assert.Equal(t, 2, totals.CustomersVisited)
	assert.Equal(t, 2, totals.CustomersCalled)
	assert.True(t, dec("1580.50").Equal(totals.TotalValue))

	detailTotal := decimal.Zero
	for _, d := range report.Details() {
		for _, it := range d.Interactions {
			detailTotal = detailTotal.Add(it.OrderValue)
		}
	}
	assert.True(t, totals.TotalValue.Equal(detailTotal))

	assert.True(t, report.IsPartial())
	assert.Equal(t, []domain.FeedKind{domain.FeedProductLine}, report.SkippedFeeds())
}

func TestAggregator_Idempotent(t *testing.T) {
	explicit := visit("Ana", "Loja A", "0")
	explicit.TimeSpent = minutes(12)
	explicit.TimeSource = domain.TimeSourceExplicit

	fragments := []domain.Fragment{
		explicit,
		visit("Ana", "Loja A", "500"),
		order("Ana", "Loja A", "77", "500",
			line("77", 1, "Tinta A", "2", "100"),
			line("77", 2, "Tinta B", "1", "300"),
		),
		order("Ana", "LOJA A", "78", "25"),
		call("Beto", "Loja B", "200"),
		visit("Beto", "Loja C", "300"),
		order("Carla", "Loja D", "91", "80"),
	}

	period := domain.SingleDay(day)
	first, err := New().Aggregate(period, fragments, nil)
	require.NoError(t, err)
	want, err := json.Marshal(first)
	require.NoError(t, err)

	again, err := New().Aggregate(period, fragments, nil)
	require.NoError(t, err)
	got, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]domain.Fragment(nil), fragments...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		report, err := New().Aggregate(period, shuffled, nil)
		require.NoError(t, err)
		got, err := json.Marshal(report)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestAggregator_DoesNotMutateInput(t *testing.T) {
	fragments := []domain.Fragment{
		order("Ana", "Loja A", "77", "500", line("77", 1, "Tinta A", "2", "100")),
		visit("Ana", "Loja A", "0"),
	}

	_, err := New().Aggregate(domain.SingleDay(day), fragments, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.FeedOrder, fragments[0].Feed)
	assert.Equal(t, domain.InteractionUnresolved, fragments[0].Kind)
	assert.Len(t, fragments[0].Lines, 1)
}

func TestReconcile(t *testing.T) {
	row := domain.RepresentativeSummary{
		RepresentativeName: "Ana",
		CustomersVisited:   1,
		VisitValue:         dec("100"),
		CallValue:          decimal.Zero,
	}
	detail := domain.RepresentativeDetail{
		RepresentativeName: "Ana",
		Interactions: []domain.Interaction{
			{CustomerName: "Loja A", Kind: domain.InteractionVisited, OrderValue: dec("100")},
		},
	}

	tests := []struct {
		name    string
		summary []domain.RepresentativeSummary
		details []domain.RepresentativeDetail
		input   decimal.Decimal
		check   string
	}{
		{
			name:    "Tudo confere",
			summary: []domain.RepresentativeSummary{row},
			details: []domain.RepresentativeDetail{detail},
			input:   dec("100"),
		},
		{
			name:    "Quantidade de tabelas diferente do resumo",
			summary: []domain.RepresentativeSummary{row},
			details: nil,
			input:   dec("100"),
			check:   "summary rows vs detail tables",
		},
		{
			name:    "Total de detalhe diferente do resumo",
			summary: []domain.RepresentativeSummary{{RepresentativeName: "Ana", CustomersVisited: 1, VisitValue: dec("90"), CallValue: decimal.Zero}},
			details: []domain.RepresentativeDetail{detail},
			input:   dec("90"),
			check:   "detail total of Ana",
		},
		{
			name:    "Contagem de clientes diferente",
			summary: []domain.RepresentativeSummary{{RepresentativeName: "Ana", CustomersVisited: 2, VisitValue: dec("100"), CallValue: decimal.Zero}},
			details: []domain.RepresentativeDetail{detail},
			input:   dec("100"),
			check:   "customer counts of Ana",
		},
		{
			name:    "Entrada diferente das interações",
			summary: []domain.RepresentativeSummary{row},
			details: []domain.RepresentativeDetail{detail},
			input:   dec("120"),
			check:   "interactions vs input fragments",
		},
		{
			name:    "Interação sem tipo resolvido",
			summary: []domain.RepresentativeSummary{row},
			details: []domain.RepresentativeDetail{{
				RepresentativeName: "Ana",
				Interactions: []domain.Interaction{
					{CustomerName: "Loja A", Kind: domain.InteractionUnresolved, OrderValue: dec("100")},
				},
			}},
			input: dec("100"),
			check: "kind of interaction with Loja A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reconcile(tt.summary, tt.details, tt.input)
			if tt.check == "" {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrAggregationInvariant)
			var invariantErr *domain.InvariantError
			require.ErrorAs(t, err, &invariantErr)
			assert.Equal(t, tt.check, invariantErr.Check)
		})
	}
}
