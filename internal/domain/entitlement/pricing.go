package entitlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// SortModules ordena por tipo ascendente y luego por ID, para resúmenes de precio estables.
func SortModules(modules []*entity.Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Type != modules[j].Type {
			return modules[i].Type < modules[j].Type
		}
		return modules[i].ID < modules[j].ID
	})
}

// Total suma los precios de los módulos.
func Total(modules []*entity.Module) decimal.Decimal {
	total := decimal.Zero
	for _, m := range modules {
		total = total.Add(m.Price)
	}
	return total
}

// DedupeIDs elimina ids repetidos conservando el primer orden de aparición.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
