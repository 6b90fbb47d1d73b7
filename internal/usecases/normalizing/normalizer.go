package normalizing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/csfa-report/internal/domain"
)

// Aliases de campos aceitos em qualquer feed
var (
	repIDKeys        = []string{"rep_id", "sales_rep_id", "user_id"}
	repNameKeys      = []string{"rep_name", "sales_rep", "sales_rep_name", "user_name"}
	customerIDKeys   = []string{"erp_code", "customer_code", "customer_id"}
	customerNameKeys = []string{"shop_name", "customer_name", "outlet_name"}
	dateKeys         = []string{"timesheet_date", "checkin_time", "call_date", "order_date", "created_at", "date"}

	orderValueKeys  = []string{"balance", "order_value", "total", "amount"}
	orderIDKeys     = []string{"id", "order_id", "order_number"}
	productNameKeys = []string{"product_name", "product_id", "product", "name"}
	quantityKeys    = []string{"sold_qty", "quantity", "qty"}
	unitPriceKeys   = []string{"unit_cost", "unit_price", "price"}
)

type RecordNormalizer interface {
	Normalize(feed domain.FeedKind, raw domain.RawRecord) (domain.Fragment, error)
	NormalizeAll(feed domain.FeedKind, raws []domain.RawRecord) ([]domain.Fragment, []*domain.SchemaError)
}

// Normalizer converte registros brutos em fragmentos tipados. Apenas classifica registros
// inválidos; a decisão de ignorar ou abortar é do chamador.
type Normalizer struct {
	loc *time.Location
}

// New cria o normalizador; loc resolve datas sem fuso para o dia civil correto
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

func (n *Normalizer) Normalize(feed domain.FeedKind, raw domain.RawRecord) (domain.Fragment, error) {
	frag, err := n.identity(feed, raw)
	if err != nil {
		return domain.Fragment{}, err
	}

	switch feed {
	case domain.FeedVisit:
		err = n.visit(&frag, raw)
	case domain.FeedCall:
		err = n.call(&frag, raw)
	case domain.FeedOrder:
		err = n.order(&frag, raw)
	case domain.FeedProductLine:
		err = n.productLine(&frag, raw)
	default:
		return domain.Fragment{}, fmt.Errorf("feed desconhecido: %q", feed)
	}
	if err != nil {
		return domain.Fragment{}, err
	}

	return frag, nil
}

// NormalizeAll normaliza o feed inteiro, devolvendo os fragmentos válidos e os erros por registro
func (n *Normalizer) NormalizeAll(feed domain.FeedKind, raws []domain.RawRecord) ([]domain.Fragment, []*domain.SchemaError) {
	fragments := make([]domain.Fragment, 0, len(raws))
	var violations []*domain.SchemaError

	for i, raw := range raws {
		frag, err := n.Normalize(feed, raw)
		if err != nil {
			var schemaErr *domain.SchemaError
			if !errors.As(err, &schemaErr) {
				schemaErr = domain.NewSchemaError(feed, "", err.Error())
			}
			schemaErr.Index = i
			violations = append(violations, schemaErr)
			continue
		}
		fragments = append(fragments, frag)
	}

	return fragments, violations
}

// identity extrai representante, cliente e data, obrigatórios em todos os feeds
func (n *Normalizer) identity(feed domain.FeedKind, raw domain.RawRecord) (domain.Fragment, error) {
	frag := domain.Fragment{
		Feed:               feed,
		RepresentativeID:   idField(raw, repIDKeys...),
		RepresentativeName: textField(raw, repNameKeys...),
		CustomerID:         idField(raw, customerIDKeys...),
		CustomerName:       textField(raw, customerNameKeys...),
		OrderValue:         decimal.Zero,
	}

	if frag.RepresentativeID == "" && frag.RepresentativeName == "" {
		return frag, domain.NewSchemaError(feed, "representative", "sem id nem nome do representante")
	}
	if frag.CustomerID == "" && frag.CustomerName == "" {
		return frag, domain.NewSchemaError(feed, "customer", "sem código nem nome do cliente")
	}

	v, key, ok := lookup(raw, dateKeys...)
	if !ok {
		return frag, domain.NewSchemaError(feed, "date", "data ausente")
	}
	day, ok := parseDay(v, n.loc)
	if !ok {
		return frag, domain.NewSchemaError(feed, key, fmt.Sprintf("data %v ilegível", v))
	}
	frag.Date = day

	return frag, nil
}

func (n *Normalizer) visit(frag *domain.Fragment, raw domain.RawRecord) error {
	frag.Kind = domain.InteractionVisited

	if v, key, ok := lookup(raw, "timespent", "time_spent"); ok {
		d, err := parseDuration(v, time.Minute)
		if err != nil {
			return domain.NewSchemaError(frag.Feed, key, err.Error())
		}
		frag.TimeSpent = &d
		frag.TimeSource = domain.TimeSourceExplicit
	} else if d, ok := n.derivedDuration(raw); ok {
		frag.TimeSpent = &d
		frag.TimeSource = domain.TimeSourceDerived
	}

	value, err := decimalField(frag.Feed, raw, "order_value")
	if err != nil {
		return err
	}
	frag.OrderValue = value
	return nil
}

// derivedDuration calcula checkout - checkin quando os dois horários estão presentes
func (n *Normalizer) derivedDuration(raw domain.RawRecord) (time.Duration, bool) {
	in, out := text(raw["checkin_time"]), text(raw["checkout_time"])
	if in == "" || out == "" {
		return 0, false
	}
	start, ok := parseTime(in, n.loc)
	if !ok {
		return 0, false
	}
	end, ok := parseTime(out, n.loc)
	if !ok || end.Before(start) {
		return 0, false
	}
	return end.Sub(start), true
}

func (n *Normalizer) call(frag *domain.Fragment, raw domain.RawRecord) error {
	frag.Kind = domain.InteractionCalled

	if v, key, ok := lookup(raw, "call_duration", "duration"); ok {
		d, err := parseDuration(v, time.Second)
		if err != nil {
			return domain.NewSchemaError(frag.Feed, key, err.Error())
		}
		frag.TimeSpent = &d
		frag.TimeSource = domain.TimeSourceExplicit
	}

	value, err := decimalField(frag.Feed, raw, "order_value")
	if err != nil {
		return err
	}
	frag.OrderValue = value
	return nil
}

func (n *Normalizer) order(frag *domain.Fragment, raw domain.RawRecord) error {
	frag.Kind = domain.InteractionUnresolved

	value, err := decimalField(frag.Feed, raw, orderValueKeys...)
	if err != nil {
		return err
	}
	frag.OrderValue = value

	orderID := idField(raw, orderIDKeys...)
	if orderID != "" {
		frag.OrderIDs = []string{orderID}
	}

	entries, ok := raw["entries"].([]any)
	if !ok {
		return nil
	}
	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return domain.NewSchemaError(frag.Feed, "entries", fmt.Sprintf("item %d não é um objeto", i))
		}
		line, err := parseLine(frag.Feed, entry)
		if err != nil {
			return err
		}
		line.OrderID = orderID
		line.LineNo = i + 1
		frag.Lines = append(frag.Lines, line)
	}
	return nil
}

func (n *Normalizer) productLine(frag *domain.Fragment, raw domain.RawRecord) error {
	frag.Kind = domain.InteractionUnresolved

	line, err := parseLine(frag.Feed, raw)
	if err != nil {
		return err
	}
	line.OrderID = idField(raw, "order_id")
	if s := text(raw["line_no"]); s != "" {
		lineNo, err := strconv.Atoi(s)
		if err != nil {
			return domain.NewSchemaError(frag.Feed, "line_no", fmt.Sprintf("valor %q ilegível", s))
		}
		line.LineNo = lineNo
	}

	if line.OrderID != "" {
		frag.OrderIDs = []string{line.OrderID}
	}
	frag.Lines = []domain.ProductLine{line}
	return nil
}

// parseLine lê nome do produto, quantidade e preço unitário; valores ausentes resultam em zero
func parseLine(feed domain.FeedKind, raw domain.RawRecord) (domain.ProductLine, error) {
	line := domain.ProductLine{ProductName: textField(raw, productNameKeys...)}
	if line.ProductName == "" {
		return line, domain.NewSchemaError(feed, "product_name", "item sem produto")
	}

	var err error
	if line.Quantity, err = decimalField(feed, raw, quantityKeys...); err != nil {
		return line, err
	}
	if line.UnitPrice, err = decimalField(feed, raw, unitPriceKeys...); err != nil {
		return line, err
	}
	return line, nil
}
