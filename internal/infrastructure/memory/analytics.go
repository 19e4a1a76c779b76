package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de lectura sobre las órdenes en memoria.
type AnalyticsRepo struct{ h handle }

func NewAnalyticsRepository(s *Store) *AnalyticsRepo { return &AnalyticsRepo{h: s} }

func (r *AnalyticsRepo) GetSpendByModule(ctx context.Context, companyID string, start, end time.Time) ([]repository.ModuleSpendResult, error) {
	out := make([]repository.ModuleSpendResult, 0)
	err := r.h.view(ctx, func(st *state) error {
		byModule := make(map[string]*repository.ModuleSpendResult)
		for _, o := range st.orders {
			if o.CompanyID != companyID || o.SaleDate.Before(start) || o.SaleDate.After(end) {
				continue
			}
			for _, d := range st.details[o.ID] {
				row, ok := byModule[d.ModuleID]
				if !ok {
					m := st.modules[d.ModuleID]
					row = &repository.ModuleSpendResult{ModuleID: d.ModuleID, ModuleType: m.Type, ModuleName: m.Name, Revenue: decimal.Zero}
					byModule[d.ModuleID] = row
				}
				// UNIQUE (order_id, module_id): una línea por orden y módulo.
				row.OrderCount++
				row.Revenue = row.Revenue.Add(d.Price)
			}
		}
		for _, row := range byModule {
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ModuleType < out[j].ModuleType
	})
	return out, nil
}
