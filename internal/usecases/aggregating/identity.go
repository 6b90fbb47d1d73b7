package aggregating

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vfg2006/csfa-report/internal/domain"
)

// fold normaliza nomes para comparação: sem espaços extras e sem diferença de caixa
func fold(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// resolver decide a chave de representantes e clientes. O id tem prioridade; um fragmento
// só com nome herda o id quando outro fragmento associa aquele nome a exatamente um id.
type resolver struct {
	nameToIDs map[string]map[string]struct{}
}

func newResolver() *resolver {
	return &resolver{nameToIDs: make(map[string]map[string]struct{})}
}

func (r *resolver) observe(id, name string) {
	if id == "" || fold(name) == "" {
		return
	}
	ids, ok := r.nameToIDs[fold(name)]
	if !ok {
		ids = make(map[string]struct{})
		r.nameToIDs[fold(name)] = ids
	}
	ids[id] = struct{}{}
}

// key devolve a chave canônica e o id associado (vazio quando só há nome)
func (r *resolver) key(id, name string) (string, string) {
	if id != "" {
		return "id:" + id, id
	}
	if ids := r.nameToIDs[fold(name)]; len(ids) == 1 {
		for only := range ids {
			return "id:" + only, only
		}
	}
	return "name:" + fold(name), ""
}

// canonicalOrder ordena os fragmentos por todo o seu conteúdo, tornando o resultado
// independente da ordem de chegada
func canonicalOrder(fragments []domain.Fragment) []domain.Fragment {
	sorted := make([]domain.Fragment, len(fragments))
	copy(sorted, fragments)

	keys := make(map[int]string, len(sorted))
	index := make([]int, len(sorted))
	for i := range sorted {
		index[i] = i
		keys[i] = fragmentKey(sorted[i])
	}

	sort.SliceStable(index, func(a, b int) bool {
		return keys[index[a]] < keys[index[b]]
	})

	out := make([]domain.Fragment, len(sorted))
	for i, idx := range index {
		out[i] = sorted[idx]
	}
	return out
}

func fragmentKey(f domain.Fragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d|%s|%s|%s|%s|%s|%s|%s|%d|",
		f.Feed.Rank(),
		fold(f.RepresentativeName), f.RepresentativeID,
		fold(f.CustomerName), f.CustomerID,
		f.Date.Format(time.DateOnly),
		f.Kind,
		f.OrderValue.String(),
		f.TimeSource,
	)
	if f.TimeSpent != nil {
		fmt.Fprintf(&b, "%020d", int64(*f.TimeSpent))
	}
	b.WriteString("|")
	b.WriteString(strings.Join(f.OrderIDs, ","))
	for _, l := range f.Lines {
		fmt.Fprintf(&b, "|%s#%06d:%s:%s:%s", l.OrderID, l.LineNo, l.ProductName, l.Quantity.String(), l.UnitPrice.String())
	}
	// Nomes exatos por último, para desempatar grafias diferentes do mesmo nome
	fmt.Fprintf(&b, "|%s|%s", f.RepresentativeName, f.CustomerName)
	return b.String()
}

// directory guarda o id e o nome de exibição de cada chave, fixados pelo primeiro
// fragmento (em ordem canônica) que os informa
type directory struct {
	ids   map[string]string
	names map[string]string
}

func newDirectory() *directory {
	return &directory{ids: make(map[string]string), names: make(map[string]string)}
}

func (d *directory) add(key, id, name string) {
	if _, ok := d.ids[key]; !ok {
		d.ids[key] = id
	}
	if d.names[key] == "" {
		d.names[key] = strings.Join(strings.Fields(name), " ")
	}
}

// get devolve id e nome; sem nome conhecido, o id é exibido no lugar
func (d *directory) get(key string) (string, string) {
	id, name := d.ids[key], d.names[key]
	if name == "" {
		name = id
	}
	return id, name
}
