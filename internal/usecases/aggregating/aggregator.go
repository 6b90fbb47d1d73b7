package aggregating

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/internal/domain"
)

type ReportAggregator interface {
	Aggregate(period domain.Period, fragments []domain.Fragment, skipped []domain.FeedKind) (*domain.Report, error)
}

// Aggregator consolida fragmentos em interações e monta o relatório. Não guarda estado
// entre chamadas; a mesma entrada sempre produz o mesmo relatório.
type Aggregator struct{}

func New() *Aggregator {
	return &Aggregator{}
}

type interactionKey struct {
	rep      string
	customer string
	day      string
	kind     domain.InteractionKind
}

func (k interactionKey) contact() contactKey {
	return contactKey{rep: k.rep, customer: k.customer, day: k.day}
}

type contactKey struct {
	rep      string
	customer string
	day      string
}

func (k contactKey) with(kind domain.InteractionKind) interactionKey {
	return interactionKey{rep: k.rep, customer: k.customer, day: k.day, kind: kind}
}

// builder acumula os fragmentos de uma interação
type builder struct {
	repKey      string
	customerKey string
	interaction domain.Interaction
	timeSource  domain.TimeSource
	orderIDs    map[string]struct{}
	lineIDs     map[string]struct{}
}

func newBuilder(repKey, customerKey string, kind domain.InteractionKind, date time.Time) *builder {
	return &builder{
		repKey:      repKey,
		customerKey: customerKey,
		interaction: domain.Interaction{
			Date:       date,
			Kind:       kind,
			OrderValue: decimal.Zero,
		},
		orderIDs: make(map[string]struct{}),
		lineIDs:  make(map[string]struct{}),
	}
}

// merge soma o valor, une pedidos e itens e escolhe o tempo gasto: fonte explícita vence
// a derivada e, na mesma fonte, vale o maior valor
func (b *builder) merge(f domain.Fragment) {
	it := &b.interaction

	it.OrderValue = it.OrderValue.Add(f.OrderValue)

	for _, id := range f.OrderIDs {
		if _, seen := b.orderIDs[id]; seen {
			continue
		}
		b.orderIDs[id] = struct{}{}
		it.OrderIDs = append(it.OrderIDs, id)
	}

	for _, line := range f.Lines {
		if id, ok := line.Identity(); ok {
			if _, seen := b.lineIDs[id]; seen {
				continue
			}
			b.lineIDs[id] = struct{}{}
		}
		it.Lines = append(it.Lines, line)
	}

	if f.TimeSpent != nil {
		switch {
		case it.TimeSpent == nil, f.TimeSource > b.timeSource:
			d := *f.TimeSpent
			it.TimeSpent = &d
			b.timeSource = f.TimeSource
		case f.TimeSource == b.timeSource && *f.TimeSpent > *it.TimeSpent:
			d := *f.TimeSpent
			it.TimeSpent = &d
		}
	}
}

func (a *Aggregator) Aggregate(period domain.Period, fragments []domain.Fragment, skipped []domain.FeedKind) (*domain.Report, error) {
	ordered := canonicalOrder(fragments)

	reps, customers := newResolver(), newResolver()
	for _, f := range ordered {
		reps.observe(f.RepresentativeID, f.RepresentativeName)
		customers.observe(f.CustomerID, f.CustomerName)
	}

	// Cada representante e cliente recebe um único id e nome de exibição. As chaves dos
	// dois lados podem coincidir, por isso cada um tem o seu diretório
	repNames, customerNames := newDirectory(), newDirectory()
	for _, f := range ordered {
		repKey, repID := reps.key(f.RepresentativeID, f.RepresentativeName)
		repNames.add(repKey, repID, f.RepresentativeName)
		customerKey, customerID := customers.key(f.CustomerID, f.CustomerName)
		customerNames.add(customerKey, customerID, f.CustomerName)
	}

	builders := make(map[interactionKey]*builder)
	keys := make([]interactionKey, 0)
	var unresolved []domain.Fragment
	inputTotal := decimal.Zero

	get := func(key interactionKey, date time.Time) *builder {
		if b, ok := builders[key]; ok {
			return b
		}
		b := newBuilder(key.rep, key.customer, key.kind, date)
		builders[key] = b
		keys = append(keys, key)
		return b
	}

	// Merge das visitas e ligações
	for _, f := range ordered {
		inputTotal = inputTotal.Add(f.OrderValue)

		if f.Kind != domain.InteractionVisited && f.Kind != domain.InteractionCalled {
			unresolved = append(unresolved, f)
			continue
		}

		repKey, _ := reps.key(f.RepresentativeID, f.RepresentativeName)
		customerKey, _ := customers.key(f.CustomerID, f.CustomerName)
		key := interactionKey{rep: repKey, customer: customerKey, day: f.Date.Format(time.DateOnly), kind: f.Kind}
		get(key, f.Date).merge(f)
	}

	// Pedidos e itens vão para a visita do mesmo contato; sem visita, para a ligação;
	// sem nenhum dos dois, o pedido conta como ligação
	attached := 0
	for _, f := range unresolved {
		repKey, _ := reps.key(f.RepresentativeID, f.RepresentativeName)
		customerKey, _ := customers.key(f.CustomerID, f.CustomerName)
		contact := contactKey{rep: repKey, customer: customerKey, day: f.Date.Format(time.DateOnly)}

		target := contact.with(domain.InteractionCalled)
		if _, ok := builders[contact.with(domain.InteractionVisited)]; ok {
			target = contact.with(domain.InteractionVisited)
			attached++
		} else if _, ok := builders[target]; ok {
			attached++
		}
		get(target, f.Date).merge(f)
	}

	logrus.WithFields(logrus.Fields{
		"fragments":    len(fragments),
		"interactions": len(builders),
		"orders":       len(unresolved),
		"attached":     attached,
	}).Debug("Fragmentos consolidados")

	summary, details := rollUp(builders, keys, repNames, customerNames)

	if err := reconcile(summary, details, inputTotal); err != nil {
		return nil, err
	}

	return domain.NewReport(period, summary, details, skipped), nil
}

type repAccumulator struct {
	key          string
	summary      domain.RepresentativeSummary
	visited      map[string]struct{}
	called       map[string]struct{}
	interactions []*builder
}

// rollUp agrupa as interações por representante e ordena as duas visões
func rollUp(builders map[interactionKey]*builder, keys []interactionKey, repNames, customerNames *directory) ([]domain.RepresentativeSummary, []domain.RepresentativeDetail) {
	byRep := make(map[string]*repAccumulator)
	order := make([]string, 0)

	for _, key := range keys {
		b := builders[key]
		acc, ok := byRep[key.rep]
		if !ok {
			repID, repName := repNames.get(key.rep)
			acc = &repAccumulator{
				key: key.rep,
				summary: domain.RepresentativeSummary{
					RepresentativeID:   repID,
					RepresentativeName: repName,
					VisitValue:         decimal.Zero,
					CallValue:          decimal.Zero,
				},
				visited: make(map[string]struct{}),
				called:  make(map[string]struct{}),
			}
			byRep[key.rep] = acc
			order = append(order, key.rep)
		}

		b.interaction.CustomerID, b.interaction.CustomerName = customerNames.get(key.customer)
		it := b.interaction

		switch it.Kind {
		case domain.InteractionVisited:
			acc.visited[key.customer] = struct{}{}
			acc.summary.VisitValue = acc.summary.VisitValue.Add(it.OrderValue)
		case domain.InteractionCalled:
			acc.called[key.customer] = struct{}{}
			acc.summary.CallValue = acc.summary.CallValue.Add(it.OrderValue)
		}
		acc.interactions = append(acc.interactions, b)
	}

	accs := make([]*repAccumulator, 0, len(order))
	for _, k := range order {
		acc := byRep[k]
		acc.summary.CustomersVisited = len(acc.visited)
		acc.summary.CustomersCalled = len(acc.called)
		accs = append(accs, acc)
	}

	sort.SliceStable(accs, func(i, j int) bool {
		ni, nj := fold(accs[i].summary.RepresentativeName), fold(accs[j].summary.RepresentativeName)
		if ni != nj {
			return ni < nj
		}
		return accs[i].key < accs[j].key
	})

	summary := make([]domain.RepresentativeSummary, 0, len(accs))
	details := make([]domain.RepresentativeDetail, 0, len(accs))
	for _, acc := range accs {
		sortInteractions(acc.interactions)

		rows := make([]domain.Interaction, 0, len(acc.interactions))
		for _, b := range acc.interactions {
			it := b.interaction
			it.RepresentativeID = acc.summary.RepresentativeID
			it.RepresentativeName = acc.summary.RepresentativeName
			rows = append(rows, it)
		}

		summary = append(summary, acc.summary)
		details = append(details, domain.RepresentativeDetail{
			RepresentativeID:   acc.summary.RepresentativeID,
			RepresentativeName: acc.summary.RepresentativeName,
			Interactions:       rows,
		})
	}

	return summary, details
}

// sortInteractions ordena por nome do cliente, visita antes de ligação, e data
func sortInteractions(rows []*builder) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		na, nb := fold(displayCustomer(a)), fold(displayCustomer(b))
		if na != nb {
			return na < nb
		}
		if ra, rb := a.interaction.Kind.Rank(), b.interaction.Kind.Rank(); ra != rb {
			return ra < rb
		}
		if !a.interaction.Date.Equal(b.interaction.Date) {
			return a.interaction.Date.Before(b.interaction.Date)
		}
		return a.customerKey < b.customerKey
	})
}

func displayCustomer(b *builder) string {
	return b.interaction.CustomerName
}
