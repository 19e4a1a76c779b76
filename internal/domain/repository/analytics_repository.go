package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// ModuleSpendResult resultado crudo del gasto de una empresa en un módulo.
// Lo produce el store; el use case lo convierte en DTO.
type ModuleSpendResult struct {
	ModuleID   string
	ModuleType entity.ModuleType
	ModuleName string
	OrderCount int             // órdenes distintas que incluyen el módulo
	Revenue    decimal.Decimal // suma de order_details.price
}

// AnalyticsRepository consultas de lectura sobre las compras. Las implementaciones no modifican datos.
type AnalyticsRepository interface {
	// GetSpendByModule agrupa las líneas de orden de la empresa con sale_date en [start, end]
	// por módulo, ordenadas por Revenue descendente y luego por tipo.
	GetSpendByModule(ctx context.Context, companyID string, start, end time.Time) ([]ModuleSpendResult, error)
}
