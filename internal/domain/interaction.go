package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InteractionKind indica como o representante contatou o cliente
type InteractionKind string

const (
	InteractionVisited InteractionKind = "visited"
	InteractionCalled  InteractionKind = "called"
	// InteractionUnresolved só aparece em fragmentos de pedidos e itens; o agregador decide o destino
	InteractionUnresolved InteractionKind = "unresolved"
)

// Rank ordena visitas antes de ligações
func (k InteractionKind) Rank() int {
	switch k {
	case InteractionVisited:
		return 0
	case InteractionCalled:
		return 1
	}
	return 2
}

// Label é o texto exibido nas planilhas e no e-mail
func (k InteractionKind) Label() string {
	switch k {
	case InteractionVisited:
		return "Visited"
	case InteractionCalled:
		return "Called"
	}
	return "No Visit"
}

// TimeSource indica a origem do tempo gasto informado por um feed
type TimeSource int

const (
	TimeSourceNone TimeSource = iota
	TimeSourceDerived
	TimeSourceExplicit
)

// ProductLine é um item de pedido
type ProductLine struct {
	OrderID     string          `json:"order_id,omitempty"`
	LineNo      int             `json:"line_no,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total é quantidade vezes preço unitário
func (l ProductLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Identity identifica a linha dentro do pedido; vazio quando o feed não informa
func (l ProductLine) Identity() (string, bool) {
	if l.OrderID == "" || l.LineNo <= 0 {
		return "", false
	}
	return l.OrderID + "#" + strconv.Itoa(l.LineNo), true
}

// Fragment carrega apenas os campos que um feed consegue fornecer sobre uma interação
type Fragment struct {
	Feed               FeedKind
	RepresentativeID   string
	RepresentativeName string
	CustomerID         string
	CustomerName       string
	Date               time.Time
	Kind               InteractionKind
	TimeSpent          *time.Duration
	TimeSource         TimeSource
	OrderValue         decimal.Decimal
	OrderIDs           []string
	Lines              []ProductLine
}

// Interaction é o registro consolidado de um contato de um representante com um cliente num dia
type Interaction struct {
	RepresentativeID   string          `json:"representative_id"`
	RepresentativeName string          `json:"representative_name"`
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	Date               time.Time       `json:"date"`
	Kind               InteractionKind `json:"kind"`
	TimeSpent          *time.Duration  `json:"time_spent,omitempty"`
	OrderValue         decimal.Decimal `json:"order_value"`
	OrderIDs           []string        `json:"order_ids,omitempty"`
	Lines              []ProductLine   `json:"lines,omitempty"`
}

// LinesTotal soma o valor dos itens, usado apenas para exibição
func (i Interaction) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (i Interaction) clone() Interaction {
	c := i
	if i.TimeSpent != nil {
		d := *i.TimeSpent
		c.TimeSpent = &d
	}
	c.OrderIDs = append([]string(nil), i.OrderIDs...)
	c.Lines = append([]ProductLine(nil), i.Lines...)
	return c
}
