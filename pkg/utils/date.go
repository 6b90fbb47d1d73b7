package utils

import (
	"strings"

	"github.com/pkg/errors"
)

// SplitDateRange separa "2006-01-02 - 2006-01-02" (ou "2006-01-02,2006-01-02") em início e fim
func SplitDateRange(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", nil
	}

	for _, sep := range []string{" - ", ",", " to "} {
		if from, to, found := strings.Cut(raw, sep); found {
			return strings.TrimSpace(from), strings.TrimSpace(to), nil
		}
	}

	return "", "", errors.Errorf("intervalo de datas inválido: %q", raw)
}
