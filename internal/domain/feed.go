package domain

import (
	"fmt"
	"strings"
)

// FeedKind identifica um dos quatro fluxos de registros retornados pela API do CSFA
type FeedKind string

const (
	FeedVisit       FeedKind = "visit"
	FeedCall        FeedKind = "call"
	FeedOrder       FeedKind = "order"
	FeedProductLine FeedKind = "product-line"
)

// AllFeeds lista os feeds na ordem canônica de processamento
var AllFeeds = []FeedKind{FeedVisit, FeedCall, FeedOrder, FeedProductLine}

// RawRecord é um objeto JSON decodificado de um feed, sem nenhuma tipagem
type RawRecord map[string]any

func (f FeedKind) String() string {
	return string(f)
}

// Valid indica se o feed é um dos quatro conhecidos
func (f FeedKind) Valid() bool {
	switch f {
	case FeedVisit, FeedCall, FeedOrder, FeedProductLine:
		return true
	}
	return false
}

// Rank devolve a posição do feed em AllFeeds, usada para ordenação determinística
func (f FeedKind) Rank() int {
	for i, feed := range AllFeeds {
		if feed == f {
			return i
		}
	}
	return len(AllFeeds)
}

// ParseFeedKind converte o nome de um feed, aceitando algumas variações usadas na configuração
func ParseFeedKind(s string) (FeedKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visit", "visits", "timesheet":
		return FeedVisit, nil
	case "call", "calls":
		return FeedCall, nil
	case "order", "orders":
		return FeedOrder, nil
	case "product-line", "product-lines", "product_line", "productline", "lines":
		return FeedProductLine, nil
	}
	return "", fmt.Errorf("feed desconhecido: %q", s)
}

// ParseFeedKinds converte uma lista de nomes, ignorando entradas vazias
func ParseFeedKinds(values []string) ([]FeedKind, error) {
	feeds := make([]FeedKind, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		feed, err := ParseFeedKind(v)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
