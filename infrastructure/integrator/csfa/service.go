package csfa

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/csfa-report/infrastructure/integrator/csfa/csfaclient"
	"github.com/vfg2006/csfa-report/internal/config"
	"github.com/vfg2006/csfa-report/internal/domain"
	"golang.org/x/sync/errgroup"
)

// maxPages protege contra uma API que nunca sinaliza a última página
const maxPages = 1000

type CSFAIntegrator interface {
	Fetch(ctx context.Context, feed domain.FeedKind, period domain.Period) ([]domain.RawRecord, error)
}

type CSFAService struct {
	cfg    config.CSFA
	Client csfaclient.Client
}

func New(cfg config.CSFA, client csfaclient.Client) CSFAIntegrator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
	if cfg.DetailWorkers <= 0 {
		cfg.DetailWorkers = 1
	}
	return &CSFAService{
		cfg:    cfg,
		Client: client,
	}
}

// Fetch devolve todos os registros do feed no período, com a paginação totalmente drenada
func (s *CSFAService) Fetch(ctx context.Context, feed domain.FeedKind, period domain.Period) ([]domain.RawRecord, error) {
	start := time.Now()

	var (
		records []domain.RawRecord
		err     error
	)

	switch feed {
	case domain.FeedVisit:
		records, err = s.fetchTimesheet(ctx, period)
	case domain.FeedCall:
		records, err = s.fetchPages(ctx, period, s.Client.GetCalls)
	case domain.FeedOrder:
		records, err = s.fetchPages(ctx, period, s.Client.GetOrders)
	case domain.FeedProductLine:
		records, err = s.fetchProductLines(ctx, period)
	default:
		return nil, fmt.Errorf("feed desconhecido: %q", feed)
	}

	if err != nil {
		return nil, tagFeed(err, feed)
	}

	logrus.WithFields(logrus.Fields{
		"feed":     feed,
		"period":   period.String(),
		"records":  len(records),
		"duration": time.Since(start).String(),
	}).Info("Feed recuperado da API do CSFA")

	return records, nil
}

type pageFunc func(ctx context.Context, params csfaclient.OrdersParams) (csfaclient.PageResponse, error)

// fetchPages drena a paginação do Laravel até current_page >= last_page
func (s *CSFAService) fetchPages(ctx context.Context, period domain.Period, get pageFunc) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0)

	for page := 1; page <= maxPages; page++ {
		resp, err := get(ctx, csfaclient.OrdersParams{
			StartDate: period.Start,
			EndDate:   period.End,
			Page:      page,
			PerPage:   s.cfg.PageSize,
		})
		if err != nil {
			return nil, err
		}

		if resp.CurrentPage != 0 && resp.CurrentPage != page {
			return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
				errors.Errorf("página %d solicitada, API devolveu %d", page, resp.CurrentPage))
		}

		// Página cheia sem last_page: não há como saber se existem mais páginas
		if !resp.Paginated() && len(resp.Data) >= s.cfg.PageSize {
			return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
				errors.Errorf("página %d cheia sem last_page", page))
		}

		records = append(records, resp.Data...)
		if !resp.HasMore() {
			return records, nil
		}
	}

	return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
		errors.Errorf("paginação excedeu %d páginas", maxPages))
}

// fetchTimesheet drena a paginação DataTables avançando start até recordsFiltered
func (s *CSFAService) fetchTimesheet(ctx context.Context, period domain.Period) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0)
	offset := 0

	for draw := 1; draw <= maxPages; draw++ {
		resp, err := s.Client.GetTimesheet(ctx, csfaclient.TimesheetParams{
			StartDate: period.Start,
			EndDate:   period.End,
			Draw:      draw,
			Start:     offset,
			Length:    s.cfg.PageSize,
		})
		if err != nil {
			return nil, err
		}

		if resp.RecordsFiltered == 0 && len(resp.Data) >= s.cfg.PageSize {
			return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
				errors.Errorf("página %d cheia sem recordsFiltered", draw))
		}

		records = append(records, resp.Data...)
		offset += len(resp.Data)

		if len(resp.Data) == 0 || offset >= resp.RecordsFiltered {
			return records, nil
		}
	}

	return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
		errors.Errorf("paginação excedeu %d páginas", maxPages))
}

// fetchProductLines busca os itens de cada pedido do período em paralelo. Cada item recebe
// a identidade do pedido pai; a falha de qualquer pedido falha o feed inteiro.
func (s *CSFAService) fetchProductLines(ctx context.Context, period domain.Period) ([]domain.RawRecord, error) {
	orders, err := s.fetchPages(ctx, period, s.Client.GetOrders)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		if ids[i] = stringField(order, "id", "order_id"); ids[i] == "" {
			return nil, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
				errors.Errorf("pedido #%d sem id", i))
		}
	}

	results := make([][]domain.RawRecord, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DetailWorkers)

	for i, order := range orders {
		orderID := ids[i]
		g.Go(func() error {
			details, err := s.Client.GetOrderDetails(gctx, orderID)
			if err != nil {
				return errors.Wrapf(err, "pedido %s", orderID)
			}

			items := details.Items()
			lines := make([]domain.RawRecord, 0, len(items))
			for n, item := range items {
				lines = append(lines, stampLine(item, order, orderID, n+1))
			}
			results[i] = lines
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0)
	for _, lines := range results {
		records = append(records, lines...)
	}

	logrus.WithFields(logrus.Fields{
		"orders": len(orders),
		"lines":  len(records),
	}).Debug("Itens de pedidos recuperados")

	return records, nil
}

// parentFields são copiados do pedido para cada item, sem sobrescrever o que o item já traz
var parentFields = map[string][]string{
	"sales_rep":     {"sales_rep", "rep_name"},
	"sales_rep_id":  {"sales_rep_id", "rep_id", "user_id"},
	"customer_name": {"customer_name", "shop_name"},
	"customer_code": {"customer_code", "erp_code", "customer_id"},
	"order_date":    {"order_date", "created_at", "date"},
}

func stampLine(item, order domain.RawRecord, orderID string, lineNo int) domain.RawRecord {
	line := make(domain.RawRecord, len(item)+len(parentFields)+2)
	for k, v := range item {
		line[k] = v
	}

	line["order_id"] = orderID
	if _, ok := line["line_no"]; !ok {
		line["line_no"] = lineNo
	}

	for target, sources := range parentFields {
		if v, ok := line[target]; ok && v != nil && v != "" {
			continue
		}
		for _, src := range sources {
			if v, ok := order[src]; ok && v != nil && v != "" {
				line[target] = v
				break
			}
		}
	}
	return line
}

func stringField(r domain.RawRecord, keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// tagFeed registra o feed no FetchError para que a política do orquestrador saiba a origem
func tagFeed(err error, feed domain.FeedKind) error {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Feed == "" {
		fetchErr.Feed = feed
	}
	return err
}
