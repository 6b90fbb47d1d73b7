package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Period é o intervalo de dias (inclusivo) coberto por um relatório. Um único dia tem Start == End.
type Period struct {
	Start time.Time
	End   time.Time
}

// Day normaliza um instante para a meia-noite UTC do mesmo dia civil em loc
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SingleDay cria um período de um único dia
func SingleDay(day time.Time) Period {
	d := Day(day, nil)
	return Period{Start: d, End: d}
}

// NewPeriod cria um período inclusivo, validando a ordem das datas
func NewPeriod(start, end time.Time) (Period, error) {
	s, e := Day(start, nil), Day(end, nil)
	if e.Before(s) {
		return Period{}, fmt.Errorf("%w: data final %s anterior à inicial %s", ErrInvalidPeriod,
			e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	return Period{Start: s, End: e}, nil
}

// Yesterday é o período padrão quando o chamador não informa datas
func Yesterday(now time.Time, loc *time.Location) Period {
	return SingleDay(Day(now, loc).AddDate(0, 0, -1))
}

// ParsePeriod interpreta "2006-01-02" ou o par from/to. Strings vazias resultam em ontem.
func ParsePeriod(date, from, to string, now time.Time, loc *time.Location) (Period, error) {
	switch {
	case date != "" && (from != "" || to != ""):
		return Period{}, fmt.Errorf("%w: informe a data ou o intervalo, não ambos", ErrInvalidPeriod)
	case date != "":
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
		}
		return SingleDay(d), nil
	case from != "" || to != "":
		if from == "" || to == "" {
			return Period{}, fmt.Errorf("%w: intervalo exige início e fim", ErrInvalidPeriod)
		}
		start, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
		}
		end, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
		}
		return NewPeriod(start, end)
	}
	return Yesterday(now, loc), nil
}

func (p Period) IsSingleDay() bool {
	return p.Start.Equal(p.End)
}

// Contains indica se o dia pertence ao período
func (p Period) Contains(day time.Time) bool {
	d := Day(day, nil)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days devolve todos os dias do período em ordem crescente
func (p Period) Days() []time.Time {
	days := make([]time.Time, 0)
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String usa o formato de exibição do relatório: "2006-01-02" ou "2006-01-02 - 2006-01-02"
func (p Period) String() string {
	if p.IsSingleDay() {
		return p.Start.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s - %s", p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: p.Start.Format(time.DateOnly),
		End:   p.End.Format(time.DateOnly),
	})
}
