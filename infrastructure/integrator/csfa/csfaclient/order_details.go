package csfaclient

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/vfg2006/csfa-report/internal/domain"
)

const orderDetailsPath = "/api/v1/get-v2-order-details/"

func (c *CSFAClient) GetOrderDetails(ctx context.Context, orderID string) (OrderDetailsResponse, error) {
	var response OrderDetailsResponse

	rawURL, err := c.endpoint(orderDetailsPath+url.PathEscape(orderID), nil)
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

	if !response.HasItems() {
		return response, domain.NewFetchError(domain.ErrMalformedResponse, "", 0,
			errors.Errorf("campo entries ausente nos detalhes do pedido %s", orderID))
	}

	return response, nil
}
