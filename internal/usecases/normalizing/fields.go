package normalizing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/csfa-report/internal/domain"
)

// Formatos de data e hora observados nos feeds
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z07:00",
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
}

// lookup devolve o primeiro campo presente e não vazio entre as chaves
func lookup(r domain.RawRecord, keys ...string) (any, string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, k, true
	}
	return nil, "", false
}

// text converte o valor em texto; objetos aninhados usam "name" ou "id"
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		for _, k := range []string{"name", "full_name", "id"} {
			if s := text(t[k]); s != "" {
				return s
			}
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// textField devolve o primeiro campo de texto não vazio
func textField(r domain.RawRecord, keys ...string) string {
	for _, k := range keys {
		if s := text(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// idField é como textField, mas objetos aninhados usam "id"
func idField(r domain.RawRecord, keys ...string) string {
	for _, k := range keys {
		v := r[k]
		if m, ok := v.(map[string]any); ok {
			v = m["id"]
		}
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

// parseDecimal aceita números JSON e texto com separador de milhar ("1,250.50")
func parseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		s := strings.TrimSpace(t)
		for _, prefix := range []string{"MZN", "MT"} {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}
	return decimal.Zero, fmt.Errorf("tipo não numérico %T", v)
}

// decimalField lê um valor opcional: ausente resulta em zero, ilegível em erro
func decimalField(feed domain.FeedKind, r domain.RawRecord, keys ...string) (decimal.Decimal, error) {
	v, key, ok := lookup(r, keys...)
	if !ok {
		return decimal.Zero, nil
	}
	d, err := parseDecimal(v)
	if err != nil {
		return decimal.Zero, domain.NewSchemaError(feed, key, fmt.Sprintf("valor %v ilegível: %v", v, err))
	}
	return d, nil
}

// parseDay interpreta uma data ou data-hora e devolve o dia civil em loc
func parseDay(v any, loc *time.Location) (time.Time, bool) {
	s := text(v)
	if s == "" {
		return time.Time{}, false
	}
	t, ok := parseTime(s, loc)
	if !ok {
		return time.Time{}, false
	}
	return domain.Day(t, loc), true
}

func parseTime(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseClock interpreta "HH:MM:SS" ou "MM:SS"
func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		values[i] = n
	}

	if len(values) == 2 {
		return time.Duration(values[0])*time.Minute + time.Duration(values[1])*time.Second, true
	}
	return time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second, true
}

// parseDuration aceita relógio, texto de duração do Go ou número na unidade informada
func parseDuration(v any, unit time.Duration) (time.Duration, error) {
	s := text(v)
	if s == "" {
		return 0, fmt.Errorf("duração vazia")
	}
	if d, ok := parseClock(s); ok {
		return d, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("duração %q ilegível", s)
	}
	return time.Duration(n * float64(unit)), nil
}
