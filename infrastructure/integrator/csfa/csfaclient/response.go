package csfaclient

import (
	"github.com/vfg2006/csfa-report/internal/domain"
)

// PageResponse é a paginação no formato do Laravel usada por pedidos e ligações
type PageResponse struct {
	Data        []domain.RawRecord `json:"data"`
	CurrentPage int                `json:"current_page"`
	LastPage    int                `json:"last_page"`
	PerPage     int                `json:"per_page"`
	Total       int                `json:"total"`
}

// Paginated indica se a resposta trouxe os campos de paginação
func (p PageResponse) Paginated() bool {
	return p.LastPage != 0
}

// HasMore indica se ainda há páginas a buscar
func (p PageResponse) HasMore() bool {
	if p.LastPage == 0 {
		return false
	}
	return p.CurrentPage < p.LastPage
}

// TimesheetResponse é a paginação no formato DataTables da rota /timesheet-list
type TimesheetResponse struct {
	Draw            int                `json:"draw"`
	RecordsTotal    int                `json:"recordsTotal"`
	RecordsFiltered int                `json:"recordsFiltered"`
	Data            []domain.RawRecord `json:"data"`
}

// OrderDetailsResponse traz os itens de um pedido, na raiz ou dentro de "data"
type OrderDetailsResponse struct {
	Entries []domain.RawRecord `json:"entries"`
	Data    *struct {
		Entries []domain.RawRecord `json:"entries"`
	} `json:"data"`
}

// Items devolve os itens independentemente do envelope
func (r OrderDetailsResponse) Items() []domain.RawRecord {
	if r.Entries != nil {
		return r.Entries
	}
	if r.Data != nil {
		return r.Data.Entries
	}
	return nil
}

// HasItems indica que a resposta trouxe a lista de itens, mesmo vazia
func (r OrderDetailsResponse) HasItems() bool {
	return r.Entries != nil || (r.Data != nil && r.Data.Entries != nil)
}
