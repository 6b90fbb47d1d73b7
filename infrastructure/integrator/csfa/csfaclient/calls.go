package csfaclient

import (
	"context"
)

// GetCalls usa o mesmo formato de consulta da listagem de pedidos, no caminho configurado
func (c *CSFAClient) GetCalls(ctx context.Context, params OrdersParams) (PageResponse, error) {
	return c.getPage(ctx, c.cfg.CallsPath, params)
}
