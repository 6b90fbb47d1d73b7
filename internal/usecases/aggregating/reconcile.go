package aggregating

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/csfa-report/internal/domain"
)

// reconcile confere que resumo, detalhes e entrada somam o mesmo valor. Uma divergência
// indica erro de consolidação, nunca dado ruim, e é sempre fatal.
func reconcile(summary []domain.RepresentativeSummary, details []domain.RepresentativeDetail, inputTotal decimal.Decimal) error {
	if len(summary) != len(details) {
		return &domain.InvariantError{
			Check:    "summary rows vs detail tables",
			Expected: strconv.Itoa(len(summary)),
			Actual:   strconv.Itoa(len(details)),
		}
	}

	summaryTotal := decimal.Zero
	interactionTotal := decimal.Zero

	for i, row := range summary {
		summaryTotal = summaryTotal.Add(row.Total())

		detail := details[i]
		if len(detail.Interactions) == 0 {
			return &domain.InvariantError{
				Check:    fmt.Sprintf("interactions of %s", row.RepresentativeName),
				Expected: "at least 1",
				Actual:   "0",
			}
		}

		detailTotal := decimal.Zero
		visited, called := make(map[string]struct{}), make(map[string]struct{})
		for _, it := range detail.Interactions {
			detailTotal = detailTotal.Add(it.OrderValue)
			customer := it.CustomerID + "|" + fold(it.CustomerName)
			switch it.Kind {
			case domain.InteractionVisited:
				visited[customer] = struct{}{}
			case domain.InteractionCalled:
				called[customer] = struct{}{}
			default:
				return &domain.InvariantError{
					Check:    fmt.Sprintf("kind of interaction with %s", it.CustomerName),
					Expected: "visited or called",
					Actual:   string(it.Kind),
				}
			}
		}
		interactionTotal = interactionTotal.Add(detailTotal)

		if !detailTotal.Equal(row.Total()) {
			return &domain.InvariantError{
				Check:    fmt.Sprintf("detail total of %s", row.RepresentativeName),
				Expected: row.Total().String(),
				Actual:   detailTotal.String(),
			}
		}
		if len(visited) != row.CustomersVisited || len(called) != row.CustomersCalled {
			return &domain.InvariantError{
				Check:    fmt.Sprintf("customer counts of %s", row.RepresentativeName),
				Expected: fmt.Sprintf("%d visited/%d called", row.CustomersVisited, row.CustomersCalled),
				Actual:   fmt.Sprintf("%d visited/%d called", len(visited), len(called)),
			}
		}
	}

	if !summaryTotal.Equal(interactionTotal) {
		return &domain.InvariantError{
			Check:    "fleet total vs interactions",
			Expected: interactionTotal.String(),
			Actual:   summaryTotal.String(),
		}
	}
	if !interactionTotal.Equal(inputTotal) {
		return &domain.InvariantError{
			Check:    "interactions vs input fragments",
			Expected: inputTotal.String(),
			Actual:   interactionTotal.String(),
		}
	}

	return nil
}
