package csfaclient

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/csfa-report/internal/domain"
)

const (
	ordersPath = "/api/v1/get-v2-orders"
	// Formato de data aceito pela listagem de pedidos, ex.: "Mon Jan 02 2006"
	ordersDateLayout = "Mon Jan 02 2006"
)

type OrdersParams struct {
	StartDate time.Time
	EndDate   time.Time
	Page      int
	PerPage   int
}

func (c *CSFAClient) ordersQuery(params OrdersParams) url.Values {
	query := url.Values{}
	query.Set("start_date", params.StartDate.Format(ordersDateLayout))
	query.Set("end_date", params.EndDate.Format(ordersDateLayout))
	query.Set("country_id[]", c.cfg.CountryID)
	query.Set("stage", "0")
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("orderWorkflowId", "1")
	return query
}

func (c *CSFAClient) GetOrders(ctx context.Context, params OrdersParams) (PageResponse, error) {
	return c.getPage(ctx, ordersPath, params)
}

// getPage busca uma página no formato do Laravel; "data" ausente é resposta malformada
func (c *CSFAClient) getPage(ctx context.Context, path string, params OrdersParams) (PageResponse, error) {
	var response PageResponse

	rawURL, err := c.endpoint(path, c.ordersQuery(params))
	if err != nil {
		return response, err
	}

	req, err := c.bearerRequest(ctx, rawURL)
	if err != nil {
		return response, err
	}

	if err := c.do(req, &response); err != nil {
		return response, err
	}

	if response.Data == nil {
		return response, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
			errors.Errorf("campo data ausente na resposta de %s", path))
	}

	return response, nil
}
