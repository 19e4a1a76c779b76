package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre órdenes y sus líneas.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSpendByModule agrupa gasto y número de órdenes por módulo en el período (extremos inclusivos).
func (r *AnalyticsRepo) GetSpendByModule(ctx context.Context, companyID string, start, end time.Time) ([]repository.ModuleSpendResult, error) {
	const query = `
	SELECT
	    m.id,
	    m.type,
	    m.name,
	    COUNT(DISTINCT o.id) AS order_count,
	    SUM(d.price)         AS revenue
	FROM orders o
	JOIN order_details d ON d.order_id = o.id
	JOIN modules       m ON m.id       = d.module_id
	WHERE o.company_id = $1
	  AND o.sale_date BETWEEN $2 AND $3
	GROUP BY m.id, m.type, m.name
	ORDER BY revenue DESC, m.type COLLATE "C"`

	rows, err := r.q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSpendByModule: %w", err)
	}
	defer rows.Close()

	results := make([]repository.ModuleSpendResult, 0)
	for rows.Next() {
		var (
			row repository.ModuleSpendResult
			t   string
		)
		if err := rows.Scan(&row.ModuleID, &t, &row.ModuleName, &row.OrderCount, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetSpendByModule scan: %w", err)
		}
		row.ModuleType = entity.ModuleType(t)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetSpendByModule rows: %w", err)
	}
	return results, nil
}
